package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
	"golang.org/x/crypto/bcrypt"
)

func newAuthApp(svc *Service) *fiber.App {
	app := fiber.New()
	RegisterRoutes(app.Group("/auth"), svc, JWTMiddleware("test-secret"))
	return app
}

func TestAuthHandlersLogin(t *testing.T) {
	mock := newMock(t)
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	mock.ExpectQuery(`SELECT id, name, email, password_hash, role, status`).
		WithArgs("admin@example.com").
		WillReturnRows(adminRow("admin-1", "admin@example.com", string(hash), "active"))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), "admin-1", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	app := newAuthApp(NewService("test-secret", mock))

	body, _ := json.Marshal(LoginRequest{Email: "admin@example.com", Password: "password123"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("login status: %v", err)
	}

	var envelope struct {
		Success bool          `json:"success"`
		Data    TokenResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !envelope.Success || envelope.Data.AccessToken == "" {
		t.Fatalf("expected token payload")
	}
}

func TestAuthHandlersLoginBadRequest(t *testing.T) {
	app := newAuthApp(NewService("test-secret", nil))

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte(`{"email":""}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request")
	}
}

func TestAuthHandlersRefreshInvalid(t *testing.T) {
	app := newAuthApp(NewService("test-secret", nil))

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewReader([]byte(`{"refreshToken":"bad"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized")
	}
}

func TestAuthHandlersCreateAdminRequiresToken(t *testing.T) {
	app := newAuthApp(NewService("test-secret", nil))

	body, _ := json.Marshal(CreateAdminRequest{Name: "X", Email: "x@example.com", Password: "pass"})
	req := httptest.NewRequest(http.MethodPost, "/auth/create-admin", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized without bearer")
	}
}

func TestAuthHandlersCreateAdmin(t *testing.T) {
	mock := newMock(t)

	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), "admin-1", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	svc := NewService("test-secret", mock)
	tokens, err := svc.generateTokens(context.Background(), AdminUser{ID: "admin-1", Role: "super-admin"})
	if err != nil {
		t.Fatalf("generate tokens: %v", err)
	}

	mock.ExpectQuery(`INSERT INTO admin_users`).
		WithArgs(pgxmock.AnyArg(), "Admin Two", "two@example.com", pgxmock.AnyArg(), "admin", "active").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(time.Now(), time.Now()))

	app := newAuthApp(svc)

	body, _ := json.Marshal(CreateAdminRequest{Name: "Admin Two", Email: "two@example.com", Password: "password123"})
	req := httptest.NewRequest(http.MethodPost, "/auth/create-admin", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("create admin status: %v", err)
	}
}

func TestAuthHandlersAdminsCRUD(t *testing.T) {
	mock := newMock(t)

	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), "admin-1", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	svc := NewService("test-secret", mock)
	tokens, err := svc.generateTokens(context.Background(), AdminUser{ID: "admin-1", Role: "admin"})
	if err != nil {
		t.Fatalf("generate tokens: %v", err)
	}
	app := newAuthApp(svc)
	auth := "Bearer " + tokens.AccessToken

	mock.ExpectQuery(`SELECT id, name, email, role, status, created_at, updated_at`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "role", "status", "created_at", "updated_at"}).
			AddRow("a-1", "One", "one@example.com", "admin", "active", time.Now(), time.Now()))

	req := httptest.NewRequest(http.MethodGet, "/auth/admins", nil)
	req.Header.Set("Authorization", auth)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("list status: %v", err)
	}

	mock.ExpectExec(`DELETE FROM admin_users`).
		WithArgs("a-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	req = httptest.NewRequest(http.MethodDelete, "/auth/admins/a-1", nil)
	req.Header.Set("Authorization", auth)
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBearerFromHeader(t *testing.T) {
	if bearerFromHeader("bad") != "" {
		t.Fatalf("expected empty token")
	}
	if bearerFromHeader("Bearer token") != "token" {
		t.Fatalf("expected token")
	}
}
