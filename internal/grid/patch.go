package grid

import (
	"errors"
	"fmt"
	"math"
)

// BoundaryPolicy controls what happens when the requested patch center is
// close enough to the grid edge that a full window cannot be centered on it.
type BoundaryPolicy int

const (
	// BoundaryClamp shifts the window inward so it never runs off the grid.
	// Patches near a domain edge are full-size but off-center.
	BoundaryClamp BoundaryPolicy = iota
	// BoundaryReject fails with ErrOutsideGrid instead of shifting.
	BoundaryReject
)

// ErrOutsideGrid is returned under BoundaryReject when the patch window
// cannot be centered on the nearest grid point without leaving the grid.
var ErrOutsideGrid = errors.New("grid: patch window falls outside the grid")

// Patch is a fixed-size square crop of a Field, centered as closely as the
// boundary policy allows on a target coordinate. Immutable once produced.
type Patch struct {
	Field

	// LatStart and LonStart are the crop origin indices in the source field.
	LatStart int
	LonStart int
}

// Size returns the spatial extent of the patch (patches are square).
func (p *Patch) Size() int { return len(p.Lats) }

// Extract crops a patchSize×patchSize window from f around (lat, lon).
//
// The query longitude is normalized to the field's encoding convention
// first, then the nearest grid index is located independently per axis
// (1-D nearest neighbor, not a great-circle search). The window start on
// each axis is idx−patchSize/2 clamped to [0, axisLen−patchSize]; under
// BoundaryClamp the clamp silently shifts the window off-center near
// edges, under BoundaryReject any shift is an error.
func Extract(f *Field, lat, lon float64, patchSize int, policy BoundaryPolicy) (*Patch, error) {
	if !f.HasCoords() {
		return nil, ErrMissingCoordinate
	}
	if patchSize <= 0 {
		return nil, fmt.Errorf("%w: patch size %d", ErrShapeMismatch, patchSize)
	}
	if len(f.Lats) < patchSize || len(f.Lons) < patchSize {
		return nil, fmt.Errorf("%w: grid %dx%d smaller than patch size %d",
			ErrShapeMismatch, len(f.Lats), len(f.Lons), patchSize)
	}

	lon = normalizeLon(lon, f.lonConv)

	latIdx := nearestIndex(f.Lats, lat)
	lonIdx := nearestIndex(f.Lons, lon)

	k := patchSize / 2
	latStart, latShifted := clampStart(latIdx-k, len(f.Lats)-patchSize)
	lonStart, lonShifted := clampStart(lonIdx-k, len(f.Lons)-patchSize)

	if policy == BoundaryReject && (latShifted || lonShifted) {
		return nil, fmt.Errorf("%w: center (%.4f, %.4f) is within %d cells of the domain edge",
			ErrOutsideGrid, lat, lon, k)
	}

	return crop(f, latStart, lonStart, patchSize), nil
}

// crop copies the window into a fresh Patch so it owns its data.
func crop(f *Field, latStart, lonStart, patchSize int) *Patch {
	timeLen := f.TimeLen()
	data := make([]float32, timeLen*len(f.Vars)*patchSize*patchSize)
	pos := 0
	for t := 0; t < timeLen; t++ {
		for v := range f.Vars {
			for i := 0; i < patchSize; i++ {
				for j := 0; j < patchSize; j++ {
					data[pos] = f.At(t, v, latStart+i, lonStart+j)
					pos++
				}
			}
		}
	}

	lats := make([]float64, patchSize)
	copy(lats, f.Lats[latStart:latStart+patchSize])
	lons := make([]float64, patchSize)
	copy(lons, f.Lons[lonStart:lonStart+patchSize])

	return &Patch{
		Field: Field{
			Vars:    f.Vars,
			Times:   f.Times,
			Lats:    lats,
			Lons:    lons,
			Data:    data,
			lonConv: f.lonConv,
		},
		LatStart: latStart,
		LonStart: lonStart,
	}
}

// normalizeLon maps a query longitude onto the field's convention. A negative
// query against a [0, 360) grid gains 360; everything else passes through.
func normalizeLon(lon float64, conv LonConvention) float64 {
	if conv == LonPositive && lon < 0 {
		return math.Mod(lon+360, 360)
	}
	return lon
}

// nearestIndex returns the index of the coordinate value with minimum
// absolute distance to x. Coordinate vectors are short enough (hundreds to
// low thousands) that a linear scan is fine.
func nearestIndex(vals []float64, x float64) int {
	best := 0
	bestDist := math.Abs(vals[0] - x)
	for i := 1; i < len(vals); i++ {
		if d := math.Abs(vals[i] - x); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

func clampStart(start, maxStart int) (clamped int, shifted bool) {
	if start < 0 {
		return 0, true
	}
	if start > maxStart {
		return maxStart, true
	}
	return start, false
}
