package dataset_test

import (
	"context"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marinecast/wave-forecast/internal/dataset"
)

func buildTestSet(t *testing.T, length int) *dataset.SampleSet {
	t.Helper()
	primary := makePatchSeries(t, length, 3, []string{"swh"})
	secondary := makePatchSeries(t, length, 3, []string{"u10"})
	set, err := dataset.BuildSequences(primary, secondary, 4, 2)
	require.NoError(t, err)
	return set
}

func TestPrefetcher_DeliversEveryBatchOnce(t *testing.T) {
	set := buildTestSet(t, 16) // N = 16-6+1 = 11 samples
	require.Equal(t, 11, set.N)

	pf, err := dataset.NewPrefetcher(set, 4, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, pf.NumBatches())

	ch, wait := pf.Run(context.Background())

	var batches []dataset.Batch
	for b := range ch {
		batches = append(batches, b)
	}
	require.NoError(t, wait())
	require.Len(t, batches, 3)

	sort.Slice(batches, func(i, j int) bool { return batches[i].Start < batches[j].Start })
	assert.Equal(t, 0, batches[0].Start)
	assert.Equal(t, 4, batches[0].Size)
	assert.Equal(t, 8, batches[2].Start)
	assert.Equal(t, 3, batches[2].Size) // last batch is short

	// Reassembling the batches reproduces the source target array.
	var targets []float32
	for _, b := range batches {
		targets = append(targets, b.Target...)
	}
	assert.Empty(t, cmp.Diff(set.Target, targets))
}

func TestPrefetcher_BatchesAreCopies(t *testing.T) {
	set := buildTestSet(t, 10)

	pf, err := dataset.NewPrefetcher(set, 2, 1, 1)
	require.NoError(t, err)

	ch, wait := pf.Run(context.Background())
	first := <-ch
	want := first.Primary[0]

	set.Primary[first.Start*set.PrimarySampleLen()] = -12345
	assert.Equal(t, want, first.Primary[0])

	for range ch {
	}
	require.NoError(t, wait())
}

func TestPrefetcher_ContextCancellation(t *testing.T) {
	set := buildTestSet(t, 40)

	pf, err := dataset.NewPrefetcher(set, 1, 2, 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	ch, wait := pf.Run(ctx)

	<-ch
	cancel()
	for range ch {
	}
	assert.ErrorIs(t, wait(), context.Canceled)
}

func TestPrefetcher_EmptySet(t *testing.T) {
	set := buildTestSet(t, 5) // below T+H, empty
	require.True(t, set.Empty())

	pf, err := dataset.NewPrefetcher(set, 4, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, pf.NumBatches())

	ch, wait := pf.Run(context.Background())
	_, open := <-ch
	assert.False(t, open)
	require.NoError(t, wait())
}

func TestNewPrefetcher_InvalidBatchSize(t *testing.T) {
	set := buildTestSet(t, 10)
	_, err := dataset.NewPrefetcher(set, 0, 1, 1)
	assert.Error(t, err)
}
