package live

import (
	"time"

	"marathon-admin/internal/shared/geo"
)

type Status string

const (
	StatusRegistered Status = "registered"
	StatusStarted    Status = "started"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// TrackPoint is one observed position. Never mutated after insertion.
type TrackPoint struct {
	Position        geo.Point `json:"location"`
	Timestamp       time.Time `json:"timestamp"`
	ElevationMeters float64   `json:"elevation"`
	SpeedKmh        float64   `json:"speed"`
}

// Track is the append-only history of positions for one race. Insertion
// order is arrival order; it is only ever replaced wholesale when a full
// snapshot fetch supersedes it.
type Track []TrackPoint

func (t Track) Last() (TrackPoint, bool) {
	if len(t) == 0 {
		return TrackPoint{}, false
	}
	return t[len(t)-1], true
}

type CheckpointCrossing struct {
	CheckpointName      string     `json:"name"`
	DistanceFromStartKm float64    `json:"distanceFromStart"`
	CrossingTime        time.Time  `json:"time"`
	Location            *geo.Point `json:"location,omitempty"`
}

type RunnerRef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Number string `json:"runnerNumber"`
}

type RouteRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	HasTrace bool   `json:"hasTrace"`
}

// RaceSnapshot is the backend-sourced state of one race as last
// confirmed by a fetch, plus any push events applied since.
type RaceSnapshot struct {
	ID                    string               `json:"id"`
	Runner                RunnerRef            `json:"runner"`
	Route                 RouteRef             `json:"route"`
	Category              string               `json:"category"`
	Status                Status               `json:"status"`
	StartTime             time.Time            `json:"startTime"`
	FinishTime            time.Time            `json:"finishTime,omitempty"`
	CompletionTimeSeconds int                  `json:"completionTime,omitempty"`
	AveragePaceMinPerKm   float64              `json:"averagePace,omitempty"`
	Track                 Track                `json:"trackingData"`
	Checkpoints           []CheckpointCrossing `json:"checkpointTimes"`
	LastUpdate            time.Time            `json:"lastUpdate,omitempty"`
}

// Clone returns a copy whose Track and Checkpoints do not alias the
// receiver's. The focused detail view holds a clone so that list and
// detail state stay independently consistent.
func (r RaceSnapshot) Clone() RaceSnapshot {
	out := r
	out.Track = append(Track(nil), r.Track...)
	out.Checkpoints = append([]CheckpointCrossing(nil), r.Checkpoints...)
	return out
}

// LocationEvent is a "runner location update" push payload.
type LocationEvent struct {
	RaceID       string    `json:"raceId"`
	RunnerID     string    `json:"runnerId,omitempty"`
	RunnerNumber string    `json:"runnerNumber,omitempty"`
	Location     geo.Point `json:"location"`
	Timestamp    time.Time `json:"timestamp,omitempty"`
	Elevation    float64   `json:"elevation,omitempty"`
	Speed        float64   `json:"speed,omitempty"`
}

// CompletedEvent is a "race completed" push payload. Optional fields
// are pointers so a zero value can be told apart from an absent one.
type CompletedEvent struct {
	RaceID         string    `json:"raceId"`
	FinishTime     time.Time `json:"finishTime,omitempty"`
	CompletionTime *int      `json:"completionTime,omitempty"`
	AveragePace    *float64  `json:"averagePace,omitempty"`
}

// Notifier surfaces user-visible, dismissible messages. Implementations
// must not block.
type Notifier interface {
	Success(msg string)
	Error(msg string)
	Info(msg string)
}
