package mapview

// Provider abstracts the interactive map library. The real dashboard
// binds a browser-side tile map; tests inject doubles. Surfaces hold
// native resources (DOM handles, event listeners) and must be released
// through Remove, not merely dropped.
type Provider interface {
	NewSurface(container string) (Surface, error)
}

type Surface interface {
	AddPolyline(points []LatLng, style PolylineStyle) Polyline
	AddMarker(at LatLng, style MarkerStyle) Marker
	FitBounds(b Bounds, padding int)
	SetView(center LatLng, zoom int)
	InvalidateSize()
	Remove() error
}

type Polyline interface {
	Extend(point LatLng)
}

type Marker interface {
	MoveTo(point LatLng)
	BindPopup(text string)
}

type LatLng struct {
	Lat float64
	Lng float64
}

type Bounds struct {
	MinLat float64
	MinLng float64
	MaxLat float64
	MaxLng float64
}

func (b *Bounds) Extend(p LatLng) {
	if p.Lat < b.MinLat {
		b.MinLat = p.Lat
	}
	if p.Lat > b.MaxLat {
		b.MaxLat = p.Lat
	}
	if p.Lng < b.MinLng {
		b.MinLng = p.Lng
	}
	if p.Lng > b.MaxLng {
		b.MaxLng = p.Lng
	}
}

func boundsOf(points []LatLng) Bounds {
	b := Bounds{MinLat: points[0].Lat, MaxLat: points[0].Lat, MinLng: points[0].Lng, MaxLng: points[0].Lng}
	for _, p := range points[1:] {
		b.Extend(p)
	}
	return b
}

type PolylineStyle struct {
	Color     string
	Weight    int
	Opacity   float64
	DashArray string
}

type MarkerStyle struct {
	Color  string
	SizePx int
}

// Styles mirror the operator dashboard's palette.
var (
	trackStyle      = PolylineStyle{Color: "#0067a5", Weight: 4, Opacity: 0.8}
	plannedStyle    = PolylineStyle{Color: "#9CA3AF", Weight: 3, Opacity: 0.6, DashArray: "5, 5"}
	startMarker     = MarkerStyle{Color: "#6bb944", SizePx: 12}
	currentMarker   = MarkerStyle{Color: "#ed1c25", SizePx: 16}
	checkpointStyle = MarkerStyle{Color: "#6fb7e3", SizePx: 14}
)
