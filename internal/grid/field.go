// Package grid models gridded numerical forecast fields and the spatial and
// temporal preprocessing applied to them before sequence assembly.
//
// # Field layout
//
// A Field holds one forecast cycle's worth of data for one upstream product
// (WW3 waves or GFS atmosphere), laid out as a dense row-major float32 array
// indexed [time][variable][lat][lon]. The coordinate vectors are part of the
// field itself: latitude and longitude values are attached once, at
// construction, together with the longitude encoding convention. Callers
// never re-discover coordinate names per operation; a field either carries
// coordinates or extraction fails with ErrMissingCoordinate.
//
// # Longitude conventions
//
// Upstream products disagree about longitude encoding. WW3 global grids use
// [0, 360) while buoy registries report [-180, 180). The convention is
// detected when the field is built and queries are normalized against it in
// Extract, so "-122.4" finds the right column on a 0..360 grid.
package grid

import (
	"errors"
	"fmt"
	"time"
)

// LonConvention identifies how a field encodes longitude values.
type LonConvention int

const (
	// LonSigned means longitudes are in [-180, 180).
	LonSigned LonConvention = iota
	// LonPositive means longitudes are in [0, 360).
	LonPositive
)

// ErrMissingCoordinate is returned when a field lacks usable latitude or
// longitude coordinate vectors.
var ErrMissingCoordinate = errors.New("grid: field has no latitude/longitude coordinates")

// ErrShapeMismatch is returned when array dimensions disagree with the
// declared coordinate vectors, or when two fields that must be parallel are
// not.
var ErrShapeMismatch = errors.New("grid: shape mismatch")

// Field is a gridded forecast field: [time][variable][lat][lon] float32.
// Times is nil for static fields (no time axis), in which case the time
// dimension has length 1.
type Field struct {
	Vars  []string
	Times []time.Time
	Lats  []float64
	Lons  []float64
	Data  []float32

	lonConv LonConvention
}

// NewField validates coordinate/array consistency and builds a Field.
// times may be nil for a static field. Coordinate vectors must be monotonic;
// times must be strictly increasing.
func NewField(vars []string, times []time.Time, lats, lons []float64, data []float32) (*Field, error) {
	if len(vars) == 0 {
		return nil, fmt.Errorf("%w: no variables", ErrShapeMismatch)
	}
	timeLen := len(times)
	if timeLen == 0 {
		timeLen = 1
	}
	want := timeLen * len(vars) * len(lats) * len(lons)
	if len(data) != want {
		return nil, fmt.Errorf("%w: data has %d values, want %d (t=%d v=%d lat=%d lon=%d)",
			ErrShapeMismatch, len(data), want, timeLen, len(vars), len(lats), len(lons))
	}
	if !monotonic(lats) {
		return nil, fmt.Errorf("%w: latitude coordinates are not monotonic", ErrShapeMismatch)
	}
	if !monotonic(lons) {
		return nil, fmt.Errorf("%w: longitude coordinates are not monotonic", ErrShapeMismatch)
	}
	for i := 1; i < len(times); i++ {
		if !times[i].After(times[i-1]) {
			return nil, fmt.Errorf("%w: time coordinate is not strictly increasing at index %d", ErrShapeMismatch, i)
		}
	}

	return &Field{
		Vars:    vars,
		Times:   times,
		Lats:    lats,
		Lons:    lons,
		Data:    data,
		lonConv: detectLonConvention(lons),
	}, nil
}

// HasTime reports whether the field carries a time axis.
func (f *Field) HasTime() bool { return len(f.Times) > 0 }

// TimeLen returns the length of the time dimension (1 for static fields).
func (f *Field) TimeLen() int {
	if len(f.Times) == 0 {
		return 1
	}
	return len(f.Times)
}

// HasCoords reports whether the field carries spatial coordinate vectors.
func (f *Field) HasCoords() bool { return len(f.Lats) > 0 && len(f.Lons) > 0 }

// LonConvention returns the longitude encoding detected at construction.
func (f *Field) LonConvention() LonConvention { return f.lonConv }

// At returns the value at (time t, variable v, lat row i, lon col j).
func (f *Field) At(t, v, i, j int) float32 {
	return f.Data[((t*len(f.Vars)+v)*len(f.Lats)+i)*len(f.Lons)+j]
}

// timeSlab returns the contiguous data slice for time index t.
func (f *Field) timeSlab(t int) []float32 {
	size := len(f.Vars) * len(f.Lats) * len(f.Lons)
	return f.Data[t*size : (t+1)*size]
}

func detectLonConvention(lons []float64) LonConvention {
	for _, v := range lons {
		if v < 0 {
			return LonSigned
		}
	}
	return LonPositive
}

func monotonic(vals []float64) bool {
	if len(vals) < 2 {
		return true
	}
	asc := vals[1] > vals[0]
	for i := 1; i < len(vals); i++ {
		if asc && vals[i] <= vals[i-1] {
			return false
		}
		if !asc && vals[i] >= vals[i-1] {
			return false
		}
	}
	return true
}
