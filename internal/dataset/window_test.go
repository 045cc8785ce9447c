package dataset_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marinecast/wave-forecast/internal/dataset"
	"github.com/marinecast/wave-forecast/internal/grid"
)

// makePatchSeries builds a P×P patch with timeLen steps and the given
// variables, where every value encodes its own indices:
// t*1000000 + v*100000 + row*1000 + col.
func makePatchSeries(t *testing.T, timeLen, patchSize int, vars []string) *grid.Patch {
	t.Helper()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	times := make([]time.Time, timeLen)
	for i := range times {
		times[i] = base.Add(time.Duration(i) * time.Hour)
	}
	lats := make([]float64, patchSize)
	lons := make([]float64, patchSize)
	for i := 0; i < patchSize; i++ {
		lats[i] = 30 + float64(i)
		lons[i] = 200 + float64(i)
	}

	data := make([]float32, timeLen*len(vars)*patchSize*patchSize)
	pos := 0
	for ts := 0; ts < timeLen; ts++ {
		for v := range vars {
			for i := 0; i < patchSize; i++ {
				for j := 0; j < patchSize; j++ {
					data[pos] = float32(ts*1000000 + v*100000 + i*1000 + j)
					pos++
				}
			}
		}
	}

	f, err := grid.NewField(vars, times, lats, lons, data)
	require.NoError(t, err)
	p, err := grid.Extract(f, lats[patchSize/2], lons[patchSize/2], patchSize, grid.BoundaryClamp)
	require.NoError(t, err)
	return p
}

func encodedValue(ts, v, row, col int) float32 {
	return float32(ts*1000000 + v*100000 + row*1000 + col)
}

func TestBuildSequences_SampleCount(t *testing.T) {
	cases := []struct {
		name    string
		length  int
		wantN   int
	}{
		{"exactly one window", 18, 1},
		{"one step short", 17, 0},
		{"three windows", 20, 3},
		{"far too short", 5, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			primary := makePatchSeries(t, tc.length, 5, []string{"swh", "mwp", "mwd"})
			secondary := makePatchSeries(t, tc.length, 5, []string{"u10", "v10", "prmsl"})

			set, err := dataset.BuildSequences(primary, secondary, 12, 6)
			require.NoError(t, err)
			assert.Equal(t, tc.wantN, set.N)
			assert.Equal(t, tc.wantN == 0, set.Empty())
		})
	}
}

func TestBuildSequences_TargetIsCenterPixelOfFutureSteps(t *testing.T) {
	const (
		timeSteps = 12
		horizon   = 6
		length    = 20
		patchSize = 5
	)
	primary := makePatchSeries(t, length, patchSize, []string{"swh", "mwp"})
	secondary := makePatchSeries(t, length, patchSize, []string{"u10"})

	set, err := dataset.BuildSequences(primary, secondary, timeSteps, horizon)
	require.NoError(t, err)
	require.Equal(t, 3, set.N)

	center := patchSize / 2

	// Sample 0 targets time steps [12, 18), sample 2 targets [14, 20),
	// always variable 0 at the center pixel.
	for h := 0; h < horizon; h++ {
		assert.Equal(t, encodedValue(timeSteps+h, 0, center, center), set.Target[0*horizon+h])
		assert.Equal(t, encodedValue(14+h, 0, center, center), set.Target[2*horizon+h])
	}
}

func TestBuildSequences_WindowsAreChronologicalCopies(t *testing.T) {
	primary := makePatchSeries(t, 20, 3, []string{"swh"})
	secondary := makePatchSeries(t, 20, 3, []string{"u10", "v10"})

	set, err := dataset.BuildSequences(primary, secondary, 12, 6)
	require.NoError(t, err)

	// Sample 1's primary window starts at time step 1: first value is
	// (t=1, v=0, row=0, col=0).
	sampleLen := set.PrimarySampleLen()
	assert.Equal(t, encodedValue(1, 0, 0, 0), set.Primary[1*sampleLen])

	// Secondary window of sample 0 starts at time step 0 with two channels.
	secLen := set.SecondarySampleLen()
	assert.Equal(t, encodedValue(0, 0, 0, 0), set.Secondary[0])
	assert.Equal(t, 12*2*3*3, secLen)
}

func TestBuildSequences_MismatchedTimeLength(t *testing.T) {
	primary := makePatchSeries(t, 20, 5, []string{"swh"})
	secondary := makePatchSeries(t, 19, 5, []string{"u10"})

	_, err := dataset.BuildSequences(primary, secondary, 12, 6)
	assert.ErrorIs(t, err, dataset.ErrShapeMismatch)
}

func TestBuildSequences_MismatchedPatchSize(t *testing.T) {
	primary := makePatchSeries(t, 20, 5, []string{"swh"})
	secondary := makePatchSeries(t, 20, 3, []string{"u10"})

	_, err := dataset.BuildSequences(primary, secondary, 12, 6)
	assert.ErrorIs(t, err, dataset.ErrShapeMismatch)
}

func TestBuildSequences_InvalidWindowParams(t *testing.T) {
	primary := makePatchSeries(t, 20, 3, []string{"swh"})
	secondary := makePatchSeries(t, 20, 3, []string{"u10"})

	_, err := dataset.BuildSequences(primary, secondary, 0, 6)
	assert.ErrorIs(t, err, dataset.ErrShapeMismatch)

	_, err = dataset.BuildSequences(primary, secondary, 12, -1)
	assert.ErrorIs(t, err, dataset.ErrShapeMismatch)
}
