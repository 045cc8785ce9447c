package forecast

import (
	"context"
	"errors"
	"sort"
)

// ErrUnknownStation is returned when a station ID has no known location.
var ErrUnknownStation = errors.New("forecast: unknown station")

// Station is a buoy with a known position.
type Station struct {
	ID  string  `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// StationLocator resolves buoy metadata. Production deployments back this
// with the NDBC station registry; tests and the demo server use the static
// table below.
type StationLocator interface {
	// Locate returns the position of a station.
	Locate(ctx context.Context, stationID string) (Station, error)

	// WithinBBox lists known stations inside a bounding box, sorted by ID.
	WithinBBox(ctx context.Context, box BBox) ([]Station, error)
}

// StaticLocator is an in-memory StationLocator.
type StaticLocator struct {
	stations map[string]Station
}

// NewStaticLocator builds a locator over a fixed station set.
func NewStaticLocator(stations []Station) *StaticLocator {
	m := make(map[string]Station, len(stations))
	for _, s := range stations {
		m[s.ID] = s
	}
	return &StaticLocator{stations: m}
}

// DefaultStations is a small NDBC subset covering the demo regions.
func DefaultStations() []Station {
	return []Station{
		{ID: "46042", Lat: 36.785, Lon: -122.398}, // Monterey Bay
		{ID: "46026", Lat: 37.755, Lon: -122.839}, // San Francisco
		{ID: "46222", Lat: 33.618, Lon: -118.317}, // San Pedro
		{ID: "51001", Lat: 24.453, Lon: -162.008}, // NW Hawaii
		{ID: "41002", Lat: 31.759, Lon: -74.936},  // South Hatteras
		{ID: "44013", Lat: 42.346, Lon: -70.651},  // Boston
		{ID: "42001", Lat: 25.926, Lon: -89.662},  // Mid Gulf
	}
}

func (l *StaticLocator) Locate(_ context.Context, stationID string) (Station, error) {
	s, ok := l.stations[stationID]
	if !ok {
		return Station{}, ErrUnknownStation
	}
	return s, nil
}

func (l *StaticLocator) WithinBBox(_ context.Context, box BBox) ([]Station, error) {
	var out []Station
	for _, s := range l.stations {
		if box.Contains(s.Lat, s.Lon) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
