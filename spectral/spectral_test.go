package spectral

import (
	"math"
	"testing"

	"github.com/hammal/ssid/errs"
	"github.com/hammal/ssid/signal"
	"github.com/hammal/ssid/ssm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

const dt = 0.01

// structure returns a 2 Hz, 5% damped oscillator observed through its
// absolute acceleration.
func structure(t *testing.T) *ssm.StateSpaceModel {
	t.Helper()
	w := 2 * math.Pi * 2
	Ac, err := ssm.Modal([]float64{2}, []float64{0.05})
	require.NoError(t, err)
	model, err := ssm.Continuous(
		Ac,
		mat.NewDense(2, 1, []float64{0, -1}),
		mat.NewDense(1, 2, []float64{-w * w, -2 * 0.05 * w}),
		nil,
		dt,
	)
	require.NoError(t, err)
	return model
}

func TestFourierTransfer(t *testing.T) {
	model := structure(t)
	u := signal.WhiteNoise(1, 4096, 21)
	y, err := model.Simulate(nil, u, 4096)
	require.NoError(t, err)

	spectrum, modes, err := Fourier(u, y, dt, WithPeaks(1))
	require.NoError(t, err)
	require.Len(t, spectrum.Freqs, 2048)
	require.Len(t, modes, 1)
	mode := modes.Sorted()[0]
	assert.InDelta(t, 2, mode.Freq, 0.06)
	assert.Greater(t, mode.Damp, 0.02)
	assert.Less(t, mode.Damp, 0.12)
	assert.Equal(t, 1., mode.EMAC)
	require.Len(t, mode.Shape, 1)
	assert.InDelta(t, 1, real(mode.Shape[0]), 1e-12)
}

func TestFourierOutputOnly(t *testing.T) {
	Ac, err := ssm.Modal([]float64{2, 7}, []float64{0.02, 0.02})
	require.NoError(t, err)
	model, err := ssm.Continuous(Ac, nil, mat.NewDense(2, 4, []float64{1, 0, 1, 0, 1, 0, -1, 0}), nil, dt)
	require.NoError(t, err)
	y, err := model.Simulate(mat.NewVecDense(4, []float64{1, 0, 0.2, 0}), nil, 2048)
	require.NoError(t, err)

	spectrum, err := TransferSpectrum(nil, y, dt, WithSmoothing(1))
	require.NoError(t, err)
	require.Len(t, spectrum.Freqs, 1024)
	require.Len(t, spectrum.Channels, 2)

	modes := spectrum.Modes(2)
	require.Len(t, modes, 2)
	sorted := modes.Sorted()
	assert.InDelta(t, 2, sorted[0].Freq, 0.1)
	assert.InDelta(t, 7, sorted[1].Freq, 0.1)
	for _, mode := range sorted {
		assert.Positive(t, mode.Damp)
		assert.GreaterOrEqual(t, mode.MPC, 0.)
		assert.LessOrEqual(t, mode.MPC, 1.)
	}
}

func TestResponseSpectrum(t *testing.T) {
	model := structure(t)
	u := signal.WhiteNoise(1, 2000, 22)
	y, err := model.Simulate(nil, u, 2000)
	require.NoError(t, err)

	spectrum, modes, err := ResponseSpectrum(u, y, dt, WithGrid(120, 0.5, 10))
	require.NoError(t, err)
	require.Len(t, spectrum.Freqs, 120)
	require.Len(t, modes, 1)
	mode := modes.Sorted()[0]
	assert.InDelta(t, 2, mode.Freq, 0.2)
	assert.Positive(t, mode.Damp)
}

func TestPseudoAcceleration(t *testing.T) {
	// a very stiff oscillator follows the ground, so Sa tends to the peak
	// ground acceleration
	accel := mat.NewDense(1, 400, nil)
	for k := 0; k < 400; k++ {
		accel.Set(0, k, math.Sin(2*math.Pi*0.5*float64(k)*dt))
	}
	sa, err := PseudoAcceleration(accel, 20, 0.05, dt)
	require.NoError(t, err)
	assert.InDelta(t, 1, sa, 0.05)

	_, err = PseudoAcceleration(accel, 0, 0.05, dt)
	require.ErrorIs(t, err, errs.ErrInvalidConfiguration)
}

func TestPeaksAndHalfPower(t *testing.T) {
	spectrum := &Spectrum{
		Freqs:     []float64{1, 2, 3, 4, 5, 6, 7},
		Amplitude: []float64{0, 1, 4, 1, 0, 2, 0},
		Dt:        dt,
	}
	require.Equal(t, []int{2, 5}, spectrum.Peaks(2))
	require.Equal(t, []int{2}, spectrum.Peaks(1))

	damp, ok := spectrum.HalfPower(2)
	require.True(t, ok)
	level := 4 / math.Sqrt2
	f1 := 2 + (level-1)/3
	f2 := 3 + (level-4)/(1-4)
	assert.InDelta(t, (f2-f1)/(2*3), damp, 1e-12)

	flat := &Spectrum{Freqs: []float64{1, 2, 3}, Amplitude: []float64{1, 1, 1}}
	_, ok = flat.HalfPower(1)
	require.False(t, ok)
}

func TestMovingAverage(t *testing.T) {
	assert.Equal(t, []float64{1.5, 2, 3, 3.5}, movingAverage([]float64{1, 2, 3, 4}, 3))
	assert.Equal(t, []float64{1, 2}, movingAverage([]float64{1, 2}, 1))
}

func TestSpectralRejects(t *testing.T) {
	y := signal.WhiteNoise(1, 100, 23)

	_, _, err := ResponseSpectrum(nil, y, dt)
	require.ErrorIs(t, err, errs.ErrInvalidConfiguration)

	_, _, err = Fourier(nil, signal.WhiteNoise(1, 4, 24), dt)
	require.ErrorIs(t, err, errs.ErrInsufficientData)

	_, _, err = Fourier(signal.WhiteNoise(1, 99, 25), y, dt)
	require.ErrorIs(t, err, errs.ErrInvalidConfiguration)

	_, _, err = Fourier(nil, y, 0)
	require.ErrorIs(t, err, errs.ErrInvalidConfiguration)

	_, _, err = Fourier(nil, y, dt, WithPeaks(0))
	require.ErrorIs(t, err, errs.ErrInvalidConfiguration)

	_, _, err = ResponseSpectrum(y, y, dt, WithDamping(1))
	require.ErrorIs(t, err, errs.ErrInvalidConfiguration)

	_, _, err = ResponseSpectrum(y, y, dt, WithGrid(10, 5, 1))
	require.ErrorIs(t, err, errs.ErrInvalidConfiguration)
}
