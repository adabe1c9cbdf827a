package mapview

import (
	"fmt"
	"log"

	"marathon-admin/internal/live"
	"marathon-admin/internal/shared/format"
)

type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateFallback
	StateTornDown
)

const (
	boundsPadding = 50
	defaultZoom   = 14
)

// defaultCenter is Victoria Falls, the event's home course.
var defaultCenter = LatLng{Lat: -17.9257, Lng: 25.8526}

// Renderer projects one focused race onto a map surface: the track
// polyline, start and current-position markers, checkpoint markers and
// an optional dashed planned-route polyline. A race switch rebuilds the
// surface from scratch; new points within one race extend incrementally
// without recomputing the viewport.
type Renderer struct {
	provider  Provider
	container string

	state   State
	raceID  string
	surface Surface

	trackLine    Polyline
	current      Marker
	lastPoint    *LatLng
	fallbackText string
}

func NewRenderer(provider Provider, container string) *Renderer {
	return &Renderer{provider: provider, container: container}
}

func (r *Renderer) State() State   { return r.state }
func (r *Renderer) RaceID() string { return r.raceID }

// FallbackText is the textual stand-in shown when the map library
// could not be loaded.
func (r *Renderer) FallbackText() string { return r.fallbackText }

// Show performs a full rebuild for the given race. Any surface bound to
// a previous race is released first. A surface-creation failure switches
// the renderer to a textual fallback instead of failing the view.
func (r *Renderer) Show(snap *live.RaceSnapshot, plannedRoute []LatLng) {
	if r.state == StateTornDown {
		return
	}
	r.release()
	r.state = StateLoading
	r.raceID = snap.ID
	r.trackLine = nil
	r.current = nil
	r.lastPoint = nil

	surface, err := r.provider.NewSurface(r.container)
	if err != nil {
		r.fallbackText = fallbackFor(snap)
		r.state = StateFallback
		return
	}
	r.surface = surface

	var boundsPoints []LatLng

	trackPoints := make([]LatLng, 0, len(snap.Track))
	for _, tp := range snap.Track {
		trackPoints = append(trackPoints, LatLng{Lat: tp.Position.Latitude, Lng: tp.Position.Longitude})
	}
	if len(trackPoints) > 0 {
		boundsPoints = append(boundsPoints, trackPoints...)
		r.trackLine = surface.AddPolyline(trackPoints, trackStyle)

		start := surface.AddMarker(trackPoints[0], startMarker)
		start.BindPopup("Start point")

		last := trackPoints[len(trackPoints)-1]
		r.current = surface.AddMarker(last, currentMarker)
		r.current.BindPopup("Current position")
		r.lastPoint = &last
	}

	for i, cp := range snap.Checkpoints {
		if cp.Location == nil {
			continue
		}
		at := LatLng{Lat: cp.Location.Latitude, Lng: cp.Location.Longitude}
		boundsPoints = append(boundsPoints, at)
		m := surface.AddMarker(at, checkpointStyle)
		m.BindPopup(fmt.Sprintf("Checkpoint %d: %s", i+1, cp.CheckpointName))
	}

	if len(plannedRoute) > 0 {
		boundsPoints = append(boundsPoints, plannedRoute...)
		surface.AddPolyline(plannedRoute, plannedStyle)
	}

	r.fitViewport(boundsPoints)
	r.state = StateReady
}

// fitViewport is only invoked at initialization; incremental updates
// never move the camera.
func (r *Renderer) fitViewport(points []LatLng) {
	switch {
	case len(points) >= 2:
		r.surface.FitBounds(boundsOf(points), boundsPadding)
	case len(points) == 1:
		r.surface.SetView(points[0], defaultZoom)
	default:
		r.surface.SetView(defaultCenter, defaultZoom)
	}
}

// Append extends the rendered track with one new point for the current
// race. The viewport is left alone so the camera does not jump on every
// update. Points for other races are ignored.
func (r *Renderer) Append(raceID string, point LatLng) {
	if r.raceID != raceID {
		return
	}
	switch r.state {
	case StateFallback:
		r.fallbackText = "Last known position: " + format.Coordinates(point.Lat, point.Lng)
		return
	case StateReady:
	default:
		return
	}

	if r.trackLine == nil {
		r.trackLine = r.surface.AddPolyline([]LatLng{point}, trackStyle)
		start := r.surface.AddMarker(point, startMarker)
		start.BindPopup("Start point")
		r.current = r.surface.AddMarker(point, currentMarker)
		r.current.BindPopup("Current position")
	} else {
		r.trackLine.Extend(point)
		r.current.MoveTo(point)
	}
	r.lastPoint = &point
}

// Resize recomputes the surface's internal size after a container or
// window resize. A redraw, not a re-fit: camera bounds stay put.
func (r *Renderer) Resize() {
	if r.state == StateReady {
		r.surface.InvalidateSize()
	}
}

// Close releases the surface and makes the renderer terminal. Cleanup
// failures are logged and swallowed so navigation away is never blocked.
func (r *Renderer) Close() {
	r.release()
	r.state = StateTornDown
}

func (r *Renderer) release() {
	if r.surface == nil {
		return
	}
	if err := r.surface.Remove(); err != nil {
		log.Printf("map surface cleanup error: %v", err)
	}
	r.surface = nil
	r.trackLine = nil
	r.current = nil
}

func fallbackFor(snap *live.RaceSnapshot) string {
	if last, ok := snap.Track.Last(); ok {
		return "Last known position: " + format.Coordinates(last.Position.Latitude, last.Position.Longitude)
	}
	return "No tracking data available"
}
