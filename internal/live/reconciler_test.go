package live

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"marathon-admin/internal/shared/geo"
)

type recordingNotifier struct {
	successes []string
	errors    []string
	infos     []string
}

func (n *recordingNotifier) Success(msg string) { n.successes = append(n.successes, msg) }
func (n *recordingNotifier) Error(msg string)   { n.errors = append(n.errors, msg) }
func (n *recordingNotifier) Info(msg string)    { n.infos = append(n.infos, msg) }

func TestApplyLocationAppends(t *testing.T) {
	reg := NewRegistry()
	reg.ReplaceAll([]RaceSnapshot{snapshot("R1", StatusInProgress)})
	rc := NewReconciler(reg, nil)

	var ev LocationEvent
	payload := `{"raceId":"R1","location":{"coordinates":[25.85,-17.93]},"elevation":900,"speed":10}`
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	rc.ApplyLocation(ev)

	r1, _ := reg.Get("R1")
	if len(r1.Track) != 1 {
		t.Fatalf("expected track length 1, got %d", len(r1.Track))
	}
	point := r1.Track[0]
	if point.Position.Longitude != 25.85 || point.Position.Latitude != -17.93 {
		t.Fatalf("unexpected position: %+v", point.Position)
	}
	if point.ElevationMeters != 900 || point.SpeedKmh != 10 {
		t.Fatalf("unexpected metadata: %+v", point)
	}
	if point.Timestamp.IsZero() {
		t.Fatalf("timestamp should default to reception time")
	}
	if r1.LastUpdate.IsZero() {
		t.Fatalf("last update should be set")
	}
}

func TestApplyLocationAppendOnly(t *testing.T) {
	reg := NewRegistry()
	reg.ReplaceAll([]RaceSnapshot{snapshot("R1", StatusInProgress)})
	rc := NewReconciler(reg, nil)

	for i := 0; i < 5; i++ {
		rc.ApplyLocation(LocationEvent{RaceID: "R1", Location: geo.Point{Longitude: 25.85, Latitude: -17.93}})
		r1, _ := reg.Get("R1")
		if len(r1.Track) != i+1 {
			t.Fatalf("after %d events track length is %d", i+1, len(r1.Track))
		}
	}
}

func TestApplyLocationUnknownRaceNoop(t *testing.T) {
	reg := NewRegistry()
	reg.ReplaceAll([]RaceSnapshot{snapshot("R1", StatusInProgress)})
	rc := NewReconciler(reg, nil)

	rc.ApplyLocation(LocationEvent{RaceID: "ghost", Location: geo.Point{Longitude: 1, Latitude: 1}})
	rc.ApplyLocation(LocationEvent{Location: geo.Point{Longitude: 1, Latitude: 1}})

	r1, _ := reg.Get("R1")
	if len(r1.Track) != 0 || reg.Len() != 1 {
		t.Fatalf("registry must be unchanged")
	}
}

func TestApplyLocationUpdatesFocusedIndependently(t *testing.T) {
	reg := NewRegistry()
	reg.ReplaceAll([]RaceSnapshot{snapshot("R1", StatusInProgress)})
	focused, _ := reg.Focus("R1")
	rc := NewReconciler(reg, nil)

	rc.ApplyLocation(LocationEvent{RaceID: "R1", Location: geo.Point{Longitude: 25.85, Latitude: -17.93}})

	r1, _ := reg.Get("R1")
	if len(r1.Track) != 1 || len(focused.Track) != 1 {
		t.Fatalf("both copies must receive the point")
	}
	if &r1.Track[0] == &focused.Track[0] {
		t.Fatalf("copies must not share backing storage")
	}
}

func TestApplyLocationDuplicateDeliveryDoubleAppends(t *testing.T) {
	reg := NewRegistry()
	reg.ReplaceAll([]RaceSnapshot{snapshot("R1", StatusInProgress)})
	rc := NewReconciler(reg, nil)

	ts := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	ev := LocationEvent{RaceID: "R1", Location: geo.Point{Longitude: 25.85, Latitude: -17.93}, Timestamp: ts}
	rc.ApplyLocation(ev)
	rc.ApplyLocation(ev)

	r1, _ := reg.Get("R1")
	if len(r1.Track) != 2 {
		t.Fatalf("duplicate delivery double-appends: expected 2, got %d", len(r1.Track))
	}
}

func TestApplyCompleted(t *testing.T) {
	reg := NewRegistry()
	reg.ReplaceAll([]RaceSnapshot{snapshot("R1", StatusInProgress)})
	rc := NewReconciler(reg, nil)

	seconds := 5025
	rc.ApplyCompleted(CompletedEvent{RaceID: "R1", CompletionTime: &seconds})

	r1, _ := reg.Get("R1")
	if r1.Status != StatusCompleted {
		t.Fatalf("expected completed status, got %s", r1.Status)
	}
	if r1.CompletionTimeSeconds != 5025 {
		t.Fatalf("unexpected completion time: %d", r1.CompletionTimeSeconds)
	}
	if r1.FinishTime.IsZero() {
		t.Fatalf("finish time should default to now")
	}
}

func TestApplyCompletedNotifiesWhenFocused(t *testing.T) {
	reg := NewRegistry()
	reg.ReplaceAll([]RaceSnapshot{snapshot("R1", StatusInProgress)})
	reg.Focus("R1")

	notifier := &recordingNotifier{}
	rc := NewReconciler(reg, notifier)

	seconds := 5025
	pace := 5.5
	rc.ApplyCompleted(CompletedEvent{RaceID: "R1", CompletionTime: &seconds, AveragePace: &pace})

	if len(notifier.successes) != 1 {
		t.Fatalf("expected one success notification")
	}
	msg := notifier.successes[0]
	if !strings.Contains(msg, "Runner R1") || !strings.Contains(msg, "01:23:45") {
		t.Fatalf("unexpected notification: %q", msg)
	}

	focused := reg.Focused()
	if focused.Status != StatusCompleted || focused.AveragePaceMinPerKm != 5.5 {
		t.Fatalf("focused snapshot not updated: %+v", focused)
	}
}

func TestApplyCompletedUnknownRaceNoop(t *testing.T) {
	reg := NewRegistry()
	reg.ReplaceAll([]RaceSnapshot{snapshot("R1", StatusInProgress)})
	notifier := &recordingNotifier{}
	rc := NewReconciler(reg, notifier)

	rc.ApplyCompleted(CompletedEvent{RaceID: "ghost"})
	rc.ApplyCompleted(CompletedEvent{})

	r1, _ := reg.Get("R1")
	if r1.Status != StatusInProgress || len(notifier.successes) != 0 {
		t.Fatalf("registry must be unchanged")
	}
}

func TestApplyCompletedNotFocusedNoNotification(t *testing.T) {
	reg := NewRegistry()
	reg.ReplaceAll([]RaceSnapshot{snapshot("R1", StatusInProgress), snapshot("R2", StatusInProgress)})
	reg.Focus("R2")

	notifier := &recordingNotifier{}
	rc := NewReconciler(reg, notifier)
	rc.ApplyCompleted(CompletedEvent{RaceID: "R1"})

	if len(notifier.successes) != 0 {
		t.Fatalf("completion of an unfocused race must not notify")
	}
}
