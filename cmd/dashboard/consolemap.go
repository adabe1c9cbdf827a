package main

import (
	"marathon-admin/internal/mapview"

	"go.uber.org/zap"
)

// consoleProvider is the headless map binding: surfaces render as log
// lines instead of tiles, which keeps the full dashboard flow usable
// over SSH during events.
type consoleProvider struct {
	log *zap.Logger
}

func newConsoleProvider(log *zap.Logger) *consoleProvider {
	return &consoleProvider{log: log}
}

func (p *consoleProvider) NewSurface(container string) (mapview.Surface, error) {
	p.log.Info("map surface created", zap.String("container", container))
	return &consoleSurface{log: p.log}, nil
}

type consoleSurface struct {
	log *zap.Logger
}

func (s *consoleSurface) AddPolyline(points []mapview.LatLng, style mapview.PolylineStyle) mapview.Polyline {
	s.log.Debug("polyline drawn", zap.Int("points", len(points)), zap.String("color", style.Color))
	return &consolePolyline{log: s.log}
}

func (s *consoleSurface) AddMarker(at mapview.LatLng, style mapview.MarkerStyle) mapview.Marker {
	s.log.Debug("marker placed", zap.Float64("lat", at.Lat), zap.Float64("lng", at.Lng), zap.String("color", style.Color))
	return &consoleMarker{log: s.log}
}

func (s *consoleSurface) FitBounds(b mapview.Bounds, padding int) {
	s.log.Debug("viewport fitted",
		zap.Float64("minLat", b.MinLat), zap.Float64("maxLat", b.MaxLat),
		zap.Float64("minLng", b.MinLng), zap.Float64("maxLng", b.MaxLng),
		zap.Int("padding", padding))
}

func (s *consoleSurface) SetView(center mapview.LatLng, zoom int) {
	s.log.Debug("viewport centered", zap.Float64("lat", center.Lat), zap.Float64("lng", center.Lng), zap.Int("zoom", zoom))
}

func (s *consoleSurface) InvalidateSize() {}

func (s *consoleSurface) Remove() error {
	s.log.Info("map surface released")
	return nil
}

type consolePolyline struct {
	log *zap.Logger
}

func (l *consolePolyline) Extend(point mapview.LatLng) {
	l.log.Debug("polyline extended", zap.Float64("lat", point.Lat), zap.Float64("lng", point.Lng))
}

type consoleMarker struct {
	log *zap.Logger
}

func (m *consoleMarker) MoveTo(point mapview.LatLng) {
	m.log.Debug("marker moved", zap.Float64("lat", point.Lat), zap.Float64("lng", point.Lng))
}

func (m *consoleMarker) BindPopup(text string) {
	m.log.Debug("marker labelled", zap.String("text", text))
}
