package routes

import (
	"context"
	"encoding/json"
	"errors"

	"marathon-admin/internal/db"

	"github.com/google/uuid"
)

type Service struct {
	db db.Querier
}

func NewService(q db.Querier) *Service {
	return &Service{db: q}
}

const routeColumns = `
	id, name, COALESCE(description, ''), COALESCE(distance_km, 0),
	COALESCE(elevation_gain_m, 0), status, path IS NOT NULL, created_at, updated_at`

func scanRoute(row interface{ Scan(...any) error }) (Route, error) {
	var r Route
	if err := row.Scan(&r.ID, &r.Name, &r.Description, &r.DistanceKm, &r.ElevationGainM, &r.Status, &r.HasTrace, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return Route{}, err
	}
	return r, nil
}

func (s *Service) List(ctx context.Context) ([]Route, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+routeColumns+`
		FROM routes ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []Route{}
	for rows.Next() {
		r, err := scanRoute(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, r)
	}
	return list, rows.Err()
}

func (s *Service) Get(ctx context.Context, id string) (Route, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+routeColumns+`
		FROM routes WHERE id = $1
	`, id)
	return scanRoute(row)
}

func (s *Service) Create(ctx context.Context, input Route) (Route, error) {
	if input.Name == "" {
		return Route{}, errors.New("name required")
	}
	input.ID = uuid.NewString()
	if input.Status == "" {
		input.Status = "inactive"
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO routes (id, name, description, distance_km, elevation_gain_m, status)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at, updated_at
	`, input.ID, input.Name, input.Description, input.DistanceKm, input.ElevationGainM, input.Status)
	if err := row.Scan(&input.CreatedAt, &input.UpdatedAt); err != nil {
		return Route{}, err
	}
	return input, nil
}

func (s *Service) Update(ctx context.Context, id string, patch Route) (Route, error) {
	route, err := s.Get(ctx, id)
	if err != nil {
		return Route{}, err
	}
	if patch.Name != "" {
		route.Name = patch.Name
	}
	if patch.Description != "" {
		route.Description = patch.Description
	}
	if patch.DistanceKm > 0 {
		route.DistanceKm = patch.DistanceKm
	}
	if patch.ElevationGainM > 0 {
		route.ElevationGainM = patch.ElevationGainM
	}
	if patch.Status != "" {
		route.Status = patch.Status
	}

	row := s.db.QueryRow(ctx, `
		UPDATE routes
		SET name=$2, description=$3, distance_km=$4, elevation_gain_m=$5, status=$6, updated_at=NOW()
		WHERE id=$1
		RETURNING updated_at
	`, id, route.Name, route.Description, route.DistanceKm, route.ElevationGainM, route.Status)
	if err := row.Scan(&route.UpdatedAt); err != nil {
		return Route{}, err
	}
	return route, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM routes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("route not found")
	}
	return nil
}

// Activate marks one route active for upcoming events.
func (s *Service) Activate(ctx context.Context, id string) (Route, error) {
	tag, err := s.db.Exec(ctx, `UPDATE routes SET status='active', updated_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return Route{}, err
	}
	if tag.RowsAffected() == 0 {
		return Route{}, errors.New("route not found")
	}
	return s.Get(ctx, id)
}

// Path returns the stored course trace. Routes without an uploaded
// trace return an error rather than an empty polyline.
func (s *Service) Path(ctx context.Context, id string) ([]PathPoint, error) {
	var raw []byte
	row := s.db.QueryRow(ctx, `SELECT path FROM routes WHERE id = $1 AND path IS NOT NULL`, id)
	if err := row.Scan(&raw); err != nil {
		return nil, err
	}

	var points []PathPoint
	if err := json.Unmarshal(raw, &points); err != nil {
		return nil, err
	}
	return points, nil
}

func (s *Service) SetPath(ctx context.Context, id string, points []PathPoint) error {
	if len(points) < 2 {
		return errors.New("a course trace needs at least two points")
	}
	raw, err := json.Marshal(points)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx, `UPDATE routes SET path=$2, updated_at=NOW() WHERE id=$1`, id, raw)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("route not found")
	}
	return nil
}
