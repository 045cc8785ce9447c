package grid_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marinecast/wave-forecast/internal/grid"
)

func singleCellField(t *testing.T, times []time.Time, values []float32) *grid.Field {
	t.Helper()
	f, err := grid.NewField([]string{"v"}, times, []float64{30}, []float64{200}, values)
	require.NoError(t, err)
	return f
}

func hourly(base time.Time, hours ...int) []time.Time {
	ts := make([]time.Time, len(hours))
	for i, h := range hours {
		ts[i] = base.Add(time.Duration(h) * time.Hour)
	}
	return ts
}

func TestAlignTime_ResamplesCoarserFieldToReference(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	// Reference: hourly over 6 hours. Secondary: 3-hourly.
	ref := singleCellField(t, hourly(base, 0, 1, 2, 3, 4, 5, 6), []float32{0, 1, 2, 3, 4, 5, 6})
	coarse := singleCellField(t, hourly(base, 0, 3, 6), []float32{10, 13, 16})

	out, err := grid.AlignTime([]*grid.Field{ref, coarse}, time.Hour)
	require.NoError(t, err)
	require.Len(t, out, 2)

	require.Equal(t, 7, out[0].TimeLen())
	require.Equal(t, 7, out[1].TimeLen())
	assert.True(t, out[0].Times[3].Equal(out[1].Times[3]))

	// Reference is unchanged value-wise.
	wantRef := []float32{0, 1, 2, 3, 4, 5, 6}
	assert.Empty(t, cmp.Diff(wantRef, out[0].Data))

	// Nearest resampling of the 3-hourly field: hours 0,1 -> 10; 2,3,4 -> 13; 5,6 -> 16.
	// Ties (hour 1.5 has no sample; hour 1 is nearer to 0 than 3) resolve to the earlier step.
	wantCoarse := []float32{10, 10, 13, 13, 13, 16, 16}
	assert.Empty(t, cmp.Diff(wantCoarse, out[1].Data))
}

func TestAlignTime_OutOfRangeTakesNearestEndpoint(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	ref := singleCellField(t, hourly(base, 0, 1, 2, 3, 4), []float32{0, 1, 2, 3, 4})
	// Secondary only covers hours 2..3: timeline points outside its range
	// take the nearest endpoint value.
	short := singleCellField(t, hourly(base, 2, 3), []float32{20, 30})

	out, err := grid.AlignTime([]*grid.Field{ref, short}, time.Hour)
	require.NoError(t, err)

	want := []float32{20, 20, 20, 30, 30}
	assert.Empty(t, cmp.Diff(want, out[1].Data))
}

func TestAlignTime_StaticFieldPassesThrough(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	ref := singleCellField(t, hourly(base, 0, 1, 2), []float32{0, 1, 2})
	static := singleCellField(t, nil, []float32{7})

	out, err := grid.AlignTime([]*grid.Field{ref, static}, time.Hour)
	require.NoError(t, err)

	assert.Same(t, static, out[1])
	assert.False(t, out[1].HasTime())
}

func TestAlignTime_ReferenceWithoutTimeAxis(t *testing.T) {
	a := singleCellField(t, nil, []float32{1})
	b := singleCellField(t, nil, []float32{2})

	out, err := grid.AlignTime([]*grid.Field{a, b}, time.Hour)
	require.NoError(t, err)
	assert.Same(t, a, out[0])
	assert.Same(t, b, out[1])
}

func TestAlignTime_EmptyInput(t *testing.T) {
	out, err := grid.AlignTime(nil, time.Hour)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestAlignTime_InvalidFrequency(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	ref := singleCellField(t, hourly(base, 0, 1), []float32{0, 1})

	_, err := grid.AlignTime([]*grid.Field{ref}, 0)
	assert.Error(t, err)
}

func TestAlignTime_CoarserFrequencyDownsamples(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	ref := singleCellField(t, hourly(base, 0, 1, 2, 3, 4, 5, 6), []float32{0, 1, 2, 3, 4, 5, 6})

	out, err := grid.AlignTime([]*grid.Field{ref}, 3*time.Hour)
	require.NoError(t, err)

	require.Equal(t, 3, out[0].TimeLen())
	assert.Empty(t, cmp.Diff([]float32{0, 3, 6}, out[0].Data))
}
