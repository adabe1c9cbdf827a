package geo

import (
	"encoding/json"
	"fmt"
	"math"
)

const earthRadiusKm = 6371.0

// Point is a single WGS84 coordinate. Longitude first on the wire
// (GeoJSON convention), latitude first everywhere humans read it.
type Point struct {
	Longitude float64
	Latitude  float64
}

func (p Point) Valid() bool {
	return p.Longitude >= -180 && p.Longitude <= 180 &&
		p.Latitude >= -90 && p.Latitude <= 90
}

func (p Point) IsZero() bool {
	return p.Longitude == 0 && p.Latitude == 0
}

// wirePoint is the GeoJSON-style envelope the API and push transport use:
// {"type":"Point","coordinates":[lng,lat]}.
type wirePoint struct {
	Type        string     `json:"type,omitempty"`
	Coordinates [2]float64 `json:"coordinates"`
}

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(wirePoint{Type: "Point", Coordinates: [2]float64{p.Longitude, p.Latitude}})
}

func (p *Point) UnmarshalJSON(data []byte) error {
	var w wirePoint
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	p.Longitude = w.Coordinates[0]
	p.Latitude = w.Coordinates[1]
	if !p.Valid() {
		return fmt.Errorf("coordinates out of range: %v", w.Coordinates)
	}
	return nil
}

// HaversineKm returns the great-circle distance between two coordinates.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
