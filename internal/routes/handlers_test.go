package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func allowAll(c *fiber.Ctx) error { return c.Next() }

func newRoutesApp(svc *Service) *fiber.App {
	app := fiber.New()
	RegisterRoutes(app.Group("/routes"), svc, allowAll)
	return app
}

func TestHandlerGpx(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`SELECT path FROM routes`).
		WithArgs("route-1").
		WillReturnRows(pgxmock.NewRows([]string{"path"}).
			AddRow([]byte(`[{"lat":-17.9257,"lng":25.8526},{"lat":-17.93,"lng":25.86}]`)))

	app := newRoutesApp(NewService(mock))
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/routes/route-1/gpx", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("gpx status: %v", err)
	}

	var envelope struct {
		Success bool        `json:"success"`
		Data    []PathPoint `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(envelope.Data) != 2 || envelope.Data[1].Lng != 25.86 {
		t.Fatalf("unexpected payload: %+v", envelope.Data)
	}
}

func TestHandlerGpxMissing(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`SELECT path FROM routes`).
		WithArgs("route-2").
		WillReturnError(pgErr)

	app := newRoutesApp(NewService(mock))
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/routes/route-2/gpx", nil))
	if err != nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected not found")
	}
}

func TestHandlerActivate(t *testing.T) {
	mock := newMock(t)

	mock.ExpectExec(`UPDATE routes SET status='active'`).
		WithArgs("route-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`FROM routes WHERE id`).
		WithArgs("route-1").
		WillReturnRows(routeRows().
			AddRow("route-1", "City Loop", "", 42.2, 310.0, "active", true, time.Now(), time.Now()))

	app := newRoutesApp(NewService(mock))
	resp, err := app.Test(httptest.NewRequest(http.MethodPut, "/routes/route-1/activate", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("activate status: %v", err)
	}
}

func TestHandlerSetPathTooShort(t *testing.T) {
	app := newRoutesApp(NewService(nil))

	body, _ := json.Marshal([]PathPoint{{Lat: 1, Lng: 2}})
	req := httptest.NewRequest(http.MethodPut, "/routes/route-1/path", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request")
	}
}
