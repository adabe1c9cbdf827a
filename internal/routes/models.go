package routes

import "time"

// PathPoint is one waypoint of the planned course polyline, in the
// order the course is run.
type PathPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Route struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	DistanceKm     float64   `json:"distanceKm"`
	ElevationGainM float64   `json:"elevationGainM"`
	Status         string    `json:"status"`
	HasTrace       bool      `json:"hasTrace"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
