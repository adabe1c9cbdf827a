package races

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"marathon-admin/internal/db"
	"marathon-admin/internal/shared/geo"
	"marathon-admin/internal/stream"
)

type Service struct {
	db  db.Querier
	hub *stream.Hub
}

func NewService(q db.Querier, hub *stream.Hub) *Service {
	return &Service{db: q, hub: hub}
}

const raceColumns = `
	r.id, ru.id, ru.name, ru.runner_number,
	rt.id, rt.name, rt.path IS NOT NULL,
	r.category, r.status, r.start_time, r.finish_time,
	COALESCE(r.completion_time_seconds, 0), COALESCE(r.average_pace, 0), r.last_update`

func scanRace(row interface{ Scan(...any) error }) (Race, error) {
	var race Race
	var finishTime, lastUpdate *time.Time
	if err := row.Scan(
		&race.ID, &race.Runner.ID, &race.Runner.Name, &race.Runner.Number,
		&race.Route.ID, &race.Route.Name, &race.Route.HasTrace,
		&race.Category, &race.Status, &race.StartTime, &finishTime,
		&race.CompletionTime, &race.AveragePace, &lastUpdate,
	); err != nil {
		return Race{}, err
	}
	if finishTime != nil {
		race.FinishTime = *finishTime
	}
	if lastUpdate != nil {
		race.LastUpdate = *lastUpdate
	}
	race.TrackingData = []TrackPoint{}
	race.CheckpointTimes = []Checkpoint{}
	return race, nil
}

// List returns race rows without track history. Detail fetches hydrate
// the full track and checkpoint crossings.
func (s *Service) List(ctx context.Context, f Filters) ([]Race, error) {
	query := `
		SELECT ` + raceColumns + `
		FROM races r
		JOIN runners ru ON ru.id = r.runner_id
		JOIN routes rt ON rt.id = r.route_id`

	var conditions []string
	var args []any
	if f.Status != "" {
		args = append(args, f.Status)
		conditions = append(conditions, fmt.Sprintf("r.status = $%d", len(args)))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		conditions = append(conditions, fmt.Sprintf("r.category = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(ru.name ILIKE $%d OR ru.runner_number ILIKE $%d)", len(args), len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY r.start_time DESC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	races := []Race{}
	for rows.Next() {
		race, err := scanRace(rows)
		if err != nil {
			return nil, err
		}
		races = append(races, race)
	}
	return races, rows.Err()
}

func (s *Service) Get(ctx context.Context, id string) (Race, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+raceColumns+`
		FROM races r
		JOIN runners ru ON ru.id = r.runner_id
		JOIN routes rt ON rt.id = r.route_id
		WHERE r.id = $1
	`, id)
	race, err := scanRace(row)
	if err != nil {
		return Race{}, err
	}

	if race.TrackingData, err = s.trackPoints(ctx, id); err != nil {
		return Race{}, err
	}
	if race.CheckpointTimes, err = s.checkpoints(ctx, id); err != nil {
		return Race{}, err
	}
	return race, nil
}

func (s *Service) trackPoints(ctx context.Context, raceID string) ([]TrackPoint, error) {
	rows, err := s.db.Query(ctx, `
		SELECT ST_X(location::geometry), ST_Y(location::geometry),
		       COALESCE(elevation_m, 0), COALESCE(speed_kmh, 0), recorded_at
		FROM race_track_points
		WHERE race_id = $1
		ORDER BY recorded_at
	`, raceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := []TrackPoint{}
	for rows.Next() {
		var p TrackPoint
		if err := rows.Scan(&p.Location.Longitude, &p.Location.Latitude, &p.Elevation, &p.Speed, &p.Timestamp); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (s *Service) checkpoints(ctx context.Context, raceID string) ([]Checkpoint, error) {
	rows, err := s.db.Query(ctx, `
		SELECT name, distance_km, crossed_at,
		       ST_X(location::geometry), ST_Y(location::geometry)
		FROM race_checkpoints
		WHERE race_id = $1
		ORDER BY distance_km
	`, raceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	crossings := []Checkpoint{}
	for rows.Next() {
		var cp Checkpoint
		var lng, lat *float64
		if err := rows.Scan(&cp.Name, &cp.DistanceFromStart, &cp.Time, &lng, &lat); err != nil {
			return nil, err
		}
		if lng != nil && lat != nil {
			cp.Location = &geo.Point{Longitude: *lng, Latitude: *lat}
		}
		crossings = append(crossings, cp)
	}
	return crossings, rows.Err()
}

// AddTrackPoint records a tracker position and pushes it to live
// dashboards on the runner-location channel.
func (s *Service) AddTrackPoint(ctx context.Context, raceID string, input TrackPointInput) (TrackPoint, error) {
	if input.Timestamp.IsZero() {
		input.Timestamp = time.Now()
	}

	point := TrackPoint{
		Location:  geo.Point{Longitude: input.Lng, Latitude: input.Lat},
		Timestamp: input.Timestamp,
		Elevation: input.Elevation,
		Speed:     input.Speed,
	}
	if !point.Location.Valid() {
		return TrackPoint{}, errors.New("location out of range")
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO race_track_points (race_id, location, elevation_m, speed_kmh, recorded_at)
		VALUES ($1, ST_SetSRID(ST_MakePoint($2,$3), 4326)::geography, $4, $5, $6)
		RETURNING recorded_at
	`, raceID, input.Lng, input.Lat, input.Elevation, input.Speed, input.Timestamp)
	if err := row.Scan(&point.Timestamp); err != nil {
		return TrackPoint{}, err
	}

	var runnerID, runnerNumber string
	row = s.db.QueryRow(ctx, `
		UPDATE races r
		SET last_update = $2,
		    status = CASE WHEN r.status = 'started' THEN 'in-progress' ELSE r.status END
		FROM runners ru
		WHERE r.id = $1 AND ru.id = r.runner_id
		RETURNING ru.id, ru.runner_number
	`, raceID, point.Timestamp)
	if err := row.Scan(&runnerID, &runnerNumber); err != nil {
		return TrackPoint{}, err
	}

	if s.hub != nil {
		payload, _ := json.Marshal(locationEvent{
			RaceID:       raceID,
			RunnerID:     runnerID,
			RunnerNumber: runnerNumber,
			Location:     point.Location,
			Timestamp:    point.Timestamp,
			Elevation:    point.Elevation,
			Speed:        point.Speed,
		})
		s.hub.Broadcast(stream.ChannelRunnerLocation, payload)
	}
	return point, nil
}

// RecordCheckpoint stores a checkpoint crossing for the race. Crossings
// surface in the detail view's split table on the next fetch.
func (s *Service) RecordCheckpoint(ctx context.Context, raceID string, input Checkpoint) (Checkpoint, error) {
	if input.Name == "" {
		return Checkpoint{}, errors.New("name required")
	}
	if input.Time.IsZero() {
		input.Time = time.Now()
	}

	var lng, lat any
	if input.Location != nil {
		if !input.Location.Valid() {
			return Checkpoint{}, errors.New("location out of range")
		}
		lng, lat = input.Location.Longitude, input.Location.Latitude
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO race_checkpoints (race_id, name, distance_km, crossed_at, location)
		VALUES ($1,$2,$3,$4, CASE WHEN $5::float8 IS NULL THEN NULL
		        ELSE ST_SetSRID(ST_MakePoint($5,$6), 4326)::geography END)
		RETURNING crossed_at
	`, raceID, input.Name, input.DistanceFromStart, input.Time, lng, lat)
	if err := row.Scan(&input.Time); err != nil {
		return Checkpoint{}, err
	}
	return input, nil
}

// CompleteResult is what a finish line posting gets back.
type CompleteResult struct {
	RaceID         string    `json:"raceId"`
	Status         string    `json:"status"`
	FinishTime     time.Time `json:"finishTime"`
	CompletionTime int       `json:"completionTime"`
	AveragePace    float64   `json:"averagePace,omitempty"`
}

// Complete marks a race finished, derives completion time and average
// pace from the recorded track, and announces it on race-completed.
func (s *Service) Complete(ctx context.Context, raceID string, req CompleteRequest) (CompleteResult, error) {
	finish := req.FinishTime
	if finish.IsZero() {
		finish = time.Now()
	}

	var startTime time.Time
	var status string
	row := s.db.QueryRow(ctx, `SELECT start_time, status FROM races WHERE id = $1`, raceID)
	if err := row.Scan(&startTime, &status); err != nil {
		return CompleteResult{}, err
	}
	if status == "completed" {
		return CompleteResult{}, errors.New("race already completed")
	}

	completion := int(finish.Sub(startTime).Seconds())
	if completion < 0 {
		completion = 0
	}

	points, err := s.trackPoints(ctx, raceID)
	if err != nil {
		return CompleteResult{}, err
	}
	distanceKm := 0.0
	for i := 1; i < len(points); i++ {
		distanceKm += geo.HaversineKm(
			points[i-1].Location.Latitude, points[i-1].Location.Longitude,
			points[i].Location.Latitude, points[i].Location.Longitude,
		)
	}
	pace := 0.0
	if distanceKm > 0 {
		pace = (float64(completion) / 60.0) / distanceKm
	}

	if _, err := s.db.Exec(ctx, `
		UPDATE races
		SET status = 'completed', finish_time = $2,
		    completion_time_seconds = $3, average_pace = $4, last_update = $2
		WHERE id = $1
	`, raceID, finish, completion, pace); err != nil {
		return CompleteResult{}, err
	}

	result := CompleteResult{
		RaceID:         raceID,
		Status:         "completed",
		FinishTime:     finish,
		CompletionTime: completion,
		AveragePace:    pace,
	}

	if s.hub != nil {
		payload, _ := json.Marshal(completedEvent{
			RaceID:         raceID,
			FinishTime:     finish,
			CompletionTime: completion,
			AveragePace:    pace,
		})
		s.hub.Broadcast(stream.ChannelRaceCompleted, payload)
	}
	return result, nil
}

// Certificate returns the stored finisher certificate PDF. Generation
// happens out of band; this only serves what was uploaded.
func (s *Service) Certificate(ctx context.Context, raceID string) ([]byte, error) {
	var pdf []byte
	row := s.db.QueryRow(ctx, `SELECT pdf FROM race_certificates WHERE race_id = $1`, raceID)
	if err := row.Scan(&pdf); err != nil {
		return nil, err
	}
	return pdf, nil
}
