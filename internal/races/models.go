package races

import (
	"time"

	"marathon-admin/internal/shared/geo"
)

type RunnerInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Number string `json:"runnerNumber"`
}

type RouteInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	HasTrace bool   `json:"hasTrace"`
}

type TrackPoint struct {
	Location  geo.Point `json:"location"`
	Timestamp time.Time `json:"timestamp"`
	Elevation float64   `json:"elevation"`
	Speed     float64   `json:"speed"`
}

type Checkpoint struct {
	Name              string     `json:"name"`
	DistanceFromStart float64    `json:"distanceFromStart"`
	Time              time.Time  `json:"time"`
	Location          *geo.Point `json:"location,omitempty"`
}

// Race is the wire shape live dashboards consume.
type Race struct {
	ID              string       `json:"id"`
	Runner          RunnerInfo   `json:"runner"`
	Route           RouteInfo    `json:"route"`
	Category        string       `json:"category"`
	Status          string       `json:"status"`
	StartTime       time.Time    `json:"startTime"`
	FinishTime      time.Time    `json:"finishTime,omitempty"`
	CompletionTime  int          `json:"completionTime,omitempty"`
	AveragePace     float64      `json:"averagePace,omitempty"`
	TrackingData    []TrackPoint `json:"trackingData"`
	CheckpointTimes []Checkpoint `json:"checkpointTimes"`
	LastUpdate      time.Time    `json:"lastUpdate,omitempty"`
}

type Filters struct {
	Status   string
	Category string
	Search   string
}

// TrackPointInput is the body posted by tracker devices.
type TrackPointInput struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Elevation float64   `json:"elevation"`
	Speed     float64   `json:"speed"`
	Timestamp time.Time `json:"timestamp"`
}

type CompleteRequest struct {
	FinishTime time.Time `json:"finishTime"`
}

// locationEvent mirrors the runner-location push frame.
type locationEvent struct {
	RaceID       string    `json:"raceId"`
	RunnerID     string    `json:"runnerId,omitempty"`
	RunnerNumber string    `json:"runnerNumber,omitempty"`
	Location     geo.Point `json:"location"`
	Timestamp    time.Time `json:"timestamp"`
	Elevation    float64   `json:"elevation,omitempty"`
	Speed        float64   `json:"speed,omitempty"`
}

type completedEvent struct {
	RaceID         string    `json:"raceId"`
	FinishTime     time.Time `json:"finishTime"`
	CompletionTime int       `json:"completionTime"`
	AveragePace    float64   `json:"averagePace,omitempty"`
}
