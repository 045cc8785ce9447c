package dataset_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marinecast/wave-forecast/internal/dataset"
)

func TestArchiveRoundTrip(t *testing.T) {
	primary := makePatchSeries(t, 20, 5, []string{"swh", "mwp", "mwd"})
	secondary := makePatchSeries(t, 20, 5, []string{"u10", "v10", "prmsl"})

	set, err := dataset.BuildSequences(primary, secondary, 12, 6)
	require.NoError(t, err)
	require.Equal(t, 3, set.N)

	path := filepath.Join(t.TempDir(), "samples.wsa")
	require.NoError(t, dataset.WriteArchive(path, set))

	got, err := dataset.ReadArchive(path)
	require.NoError(t, err)

	assert.Equal(t, set.N, got.N)
	assert.Equal(t, set.TimeSteps, got.TimeSteps)
	assert.Equal(t, set.Horizon, got.Horizon)
	assert.Equal(t, set.PatchSize, got.PatchSize)
	assert.Empty(t, cmp.Diff(set.Primary, got.Primary))
	assert.Empty(t, cmp.Diff(set.Secondary, got.Secondary))
	assert.Empty(t, cmp.Diff(set.Target, got.Target))
}

func TestReadArchive_RejectsWrongMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.wsa")
	require.NoError(t, os.WriteFile(path, []byte("definitely not an archive"), 0o644))

	_, err := dataset.ReadArchive(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a sample archive")
}

func TestReadArchive_MissingFile(t *testing.T) {
	_, err := dataset.ReadArchive(filepath.Join(t.TempDir(), "nope.wsa"))
	assert.Error(t, err)
}
