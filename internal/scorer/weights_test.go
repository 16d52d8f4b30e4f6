package scorer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultWeights_Valid(t *testing.T) {
	t.Parallel()
	assert.NoError(t, DefaultWeights().Validate())
}

func TestWeights_Validate(t *testing.T) {
	t.Parallel()

	w := DefaultWeights()
	w.Quality = 0.5
	err := w.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sum to 1")

	w = DefaultWeights()
	w.DelayCeilingDays = 0
	assert.Error(t, w.Validate())

	w = DefaultWeights()
	w.PriceCeiling = -1
	assert.Error(t, w.Validate())
}

func TestLoadWeights_EmptyPath(t *testing.T) {
	t.Parallel()

	w, err := LoadWeights("")
	require.NoError(t, err)
	assert.Equal(t, DefaultWeights(), w)
}

func TestLoadWeights_FromYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "weights.yaml")
	require.NoError(t, os.WriteFile(path, []byte("quality: 0.5\ndelivery: 0.25\nprice: 0.25\n"), 0o644))

	w, err := LoadWeights(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, w.Quality, 0.0001)
	assert.InDelta(t, 0.25, w.Delivery, 0.0001)
	// Ceilings keep their defaults when the file omits them.
	assert.InDelta(t, 30, w.DelayCeilingDays, 0.0001)
	assert.InDelta(t, 1000, w.PriceCeiling, 0.0001)
}

func TestLoadWeights_InvalidSum(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "weights.yaml")
	require.NoError(t, os.WriteFile(path, []byte("quality: 0.9\ndelivery: 0.9\nprice: 0.9\n"), 0o644))

	_, err := LoadWeights(path)
	assert.Error(t, err)
}

func TestLoadWeights_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadWeights(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
