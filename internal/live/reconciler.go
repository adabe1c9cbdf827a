package live

import (
	"fmt"
	"time"

	"marathon-admin/internal/shared/format"
)

// Reconciler applies push events onto the registry and, when the event
// targets the focused race, onto the focused snapshot as well. The two
// copies are updated independently so list and detail views never share
// mutable state.
//
// Events carry no idempotence key: a duplicate delivery of the same
// physical point appends twice. Deduplication would need a
// (raceId, timestamp) key on the transport side.
type Reconciler struct {
	registry *Registry
	notifier Notifier
	now      func() time.Time
}

func NewReconciler(registry *Registry, notifier Notifier) *Reconciler {
	return &Reconciler{registry: registry, notifier: notifier, now: time.Now}
}

// ApplyLocation appends a track point built from the event. Events with
// no race id, or for races not in the registry, are dropped without
// fabricating a snapshot.
func (rc *Reconciler) ApplyLocation(ev LocationEvent) {
	if ev.RaceID == "" {
		return
	}
	snap, ok := rc.registry.Get(ev.RaceID)
	if !ok {
		return
	}

	point := TrackPoint{
		Position:        ev.Location,
		Timestamp:       ev.Timestamp,
		ElevationMeters: ev.Elevation,
		SpeedKmh:        ev.Speed,
	}
	if point.Timestamp.IsZero() {
		point.Timestamp = rc.now()
	}

	snap.Track = append(snap.Track, point)
	snap.LastUpdate = rc.now()

	if focused := rc.registry.Focused(); focused != nil && focused.ID == ev.RaceID {
		focused.Track = append(focused.Track, point)
		focused.LastUpdate = rc.now()
	}
}

// ApplyCompleted marks the race completed and carries over whichever
// result fields the payload includes.
func (rc *Reconciler) ApplyCompleted(ev CompletedEvent) {
	if ev.RaceID == "" {
		return
	}
	snap, ok := rc.registry.Get(ev.RaceID)
	if !ok {
		return
	}

	apply := func(s *RaceSnapshot) {
		s.Status = StatusCompleted
		s.FinishTime = ev.FinishTime
		if s.FinishTime.IsZero() {
			s.FinishTime = rc.now()
		}
		if ev.CompletionTime != nil {
			s.CompletionTimeSeconds = *ev.CompletionTime
		}
		if ev.AveragePace != nil {
			s.AveragePaceMinPerKm = *ev.AveragePace
		}
	}
	apply(snap)

	focused := rc.registry.Focused()
	if focused == nil || focused.ID != ev.RaceID {
		return
	}
	apply(focused)

	if rc.notifier != nil {
		elapsed := "N/A"
		if ev.CompletionTime != nil {
			elapsed = format.Duration(*ev.CompletionTime)
		}
		rc.notifier.Success(fmt.Sprintf("Race completed by %s in %s!", focused.Runner.Name, elapsed))
	}
}
