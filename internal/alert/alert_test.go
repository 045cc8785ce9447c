package alert

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_ThresholdComparison(t *testing.T) {
	ev, err := Evaluate("46042", []int{1, 2, 3}, []float64{3.9, 4.0, 4.5}, 4.0)
	require.NoError(t, err)

	assert.Equal(t, "46042", ev.StationID)
	assert.Equal(t, 4.0, ev.ThresholdM)
	assert.Equal(t, []int{0, 1, 1}, ev.Exceed)
	assert.True(t, ev.Triggered())
}

func TestEvaluate_NothingExceeds(t *testing.T) {
	ev, err := Evaluate("46026", []int{1, 2}, []float64{1.2, 0.8}, 4.0)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 0}, ev.Exceed)
	assert.False(t, ev.Triggered())
}

func TestEvaluate_Idempotent(t *testing.T) {
	a, err := Evaluate("46042", []int{1, 2, 3}, []float64{3.9, 4.0, 4.5}, 4.0)
	require.NoError(t, err)
	b, err := Evaluate("46042", []int{1, 2, 3}, []float64{3.9, 4.0, 4.5}, 4.0)
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(a, b))
	assert.NotEmpty(t, a.ID)
}

func TestEvaluate_IDChangesWithInputs(t *testing.T) {
	a, err := Evaluate("46042", []int{1, 2}, []float64{1.0, 2.0}, 4.0)
	require.NoError(t, err)
	b, err := Evaluate("46042", []int{1, 2}, []float64{1.0, 2.1}, 4.0)
	require.NoError(t, err)
	c, err := Evaluate("46026", []int{1, 2}, []float64{1.0, 2.0}, 4.0)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.ID, c.ID)
}

func TestEvaluate_ShapeMismatch(t *testing.T) {
	_, err := Evaluate("46042", []int{1, 2, 3}, []float64{1.0}, 4.0)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestEvaluate_CopiesInputs(t *testing.T) {
	hours := []int{1, 2}
	preds := []float64{5.0, 5.5}

	ev, err := Evaluate("46042", hours, preds, 4.0)
	require.NoError(t, err)

	hours[0] = 99
	preds[0] = -1
	assert.Equal(t, 1, ev.LeadHours[0])
	assert.Equal(t, 5.0, ev.SWH[0])
}

func TestEvaluate_EmptyHorizon(t *testing.T) {
	ev, err := Evaluate("46042", nil, nil, 4.0)
	require.NoError(t, err)
	assert.Empty(t, ev.Exceed)
	assert.False(t, ev.Triggered())
}
