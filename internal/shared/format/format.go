package format

import (
	"fmt"
	"math"
)

// Duration renders whole seconds as HH:MM:SS with zero-padded fields.
func Duration(seconds int) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	remaining := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, remaining)
}

// Pace renders decimal minutes-per-km as M:SS/km.
func Pace(minPerKm float64) string {
	minutes := int(math.Floor(minPerKm))
	seconds := int(math.Round((minPerKm - float64(minutes)) * 60))
	return fmt.Sprintf("%d:%02d/km", minutes, seconds)
}

// Coordinates is the short form used in detail lists.
func Coordinates(lat, lng float64) string {
	return fmt.Sprintf("%.4f, %.4f", lat, lng)
}

// CoordinatesCompass is the long form used in popup headers. Suffixes
// are fixed N/E with the sign kept on the value, so southern latitudes
// read as negative N.
func CoordinatesCompass(lat, lng float64) string {
	return fmt.Sprintf("%.6f° N, %.6f° E", lat, lng)
}
