package plotting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hammal/ssid/modal"
	"github.com/hammal/ssid/spectral"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Positive(t, info.Size())
}

func TestSpectrum(t *testing.T) {
	s := &spectral.Spectrum{
		Freqs:     []float64{1, 2, 3, 4},
		Amplitude: []float64{1, 5, 2, 1},
		Dt:        0.01,
	}
	modes := modal.ModeSet{"a": {ID: "a", Freq: 2, Shape: []complex128{1}}}
	path := filepath.Join(t.TempDir(), "spectrum.png")
	require.NoError(t, Spectrum(path, s, modes))
	requireFile(t, path)

	require.Error(t, Spectrum(path, nil, modes))
	assert.InDelta(t, 3.5, interpolate(s, 2.5), 1e-12)
	assert.InDelta(t, 1, interpolate(s, 10), 1e-12)
}

func TestModeShapes(t *testing.T) {
	modes := modal.ModeSet{
		"a": {ID: "a", Freq: 1, Shape: []complex128{1, 0.5, -0.2}},
		"b": {ID: "b", Freq: 3, Shape: []complex128{1, -1 + 0.1i, 0.3}},
	}
	path := filepath.Join(t.TempDir(), "modes.svg")
	require.NoError(t, ModeShapes(path, modes))
	requireFile(t, path)

	require.Error(t, ModeShapes(path, nil))
	assert.Equal(t, -0.5, signedAmplitude(-0.5))
	assert.Equal(t, 2., signedAmplitude(2i))
}

func TestSingularValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "singular.png")
	require.NoError(t, SingularValues(path, []float64{10, 1, 1e-3, 0}))
	requireFile(t, path)

	require.Error(t, SingularValues(path, []float64{0, 0}))
}
