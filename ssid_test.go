package ssid

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"github.com/hammal/ssid/errs"
	"github.com/hammal/ssid/modal"
	"github.com/hammal/ssid/signal"
	"github.com/hammal/ssid/ssm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// oscillator is a 2 Hz, 5% damped structure excited at its base and observed
// through its absolute acceleration.
func oscillator(t *testing.T) *ssm.StateSpaceModel {
	t.Helper()
	w := 2 * math.Pi * 2
	Ac, err := ssm.Modal([]float64{2}, []float64{0.05})
	require.NoError(t, err)
	model, err := ssm.Continuous(
		Ac,
		mat.NewDense(2, 1, []float64{0, -1}),
		mat.NewDense(1, 2, []float64{-w * w, -2 * 0.05 * w}),
		nil,
		0.01,
	)
	require.NoError(t, err)
	return model
}

// building has modes at 1.5 and 4 Hz, one input and two outputs.
func building(t *testing.T) *ssm.StateSpaceModel {
	t.Helper()
	Ac, err := ssm.Modal([]float64{1.5, 4}, []float64{0.03, 0.05})
	require.NoError(t, err)
	model, err := ssm.Continuous(
		Ac,
		mat.NewDense(4, 1, []float64{0, 1, 0, 1}),
		mat.NewDense(2, 4, []float64{10, 0, 5, 0, 0, 1, 0, 2}),
		nil,
		0.02,
	)
	require.NoError(t, err)
	return model
}

func records(t *testing.T, model *ssm.StateSpaceModel, samples int, seed int64) (signal.Series, signal.Series) {
	t.Helper()
	u := signal.WhiteNoise(model.InputSpaceOrder(), samples, seed)
	y, err := model.Simulate(nil, u, samples)
	require.NoError(t, err)
	inputs, err := signal.FromDense(u, model.Dt)
	require.NoError(t, err)
	outputs, err := signal.FromDense(y, model.Dt)
	require.NoError(t, err)
	return inputs, outputs
}

// noisy returns a copy of series with white measurement noise of level times
// the standard deviation of each channel added.
func noisy(t *testing.T, series signal.Series, level float64, seed int64) signal.Series {
	t.Helper()
	channels, samples := series.Data.Dims()
	noise := signal.WhiteNoise(channels, samples, seed)
	data := mat.DenseCopyOf(series.Data)
	for channel := 0; channel < channels; channel++ {
		std := stat.StdDev(mat.Row(nil, channel, series.Data), nil)
		for k := 0; k < samples; k++ {
			data.Set(channel, k, data.At(channel, k)+level*std*noise.At(channel, k))
		}
	}
	res, err := signal.FromDense(data, series.Dt)
	require.NoError(t, err)
	return res
}

// nearest splits modes into the one closest to freq and the rest.
func nearest(t *testing.T, modes modal.ModeSet, freq float64) (modal.Mode, []modal.Mode) {
	t.Helper()
	sorted := modes.Sorted()
	require.NotEmpty(t, sorted)
	best := 0
	for index, mode := range sorted {
		if math.Abs(mode.Freq-freq) < math.Abs(sorted[best].Freq-freq) {
			best = index
		}
	}
	rest := append(append([]modal.Mode(nil), sorted[:best]...), sorted[best+1:]...)
	return sorted[best], rest
}

func config(t *testing.T, opts ...Option) Config {
	t.Helper()
	cfg, err := NewConfig(opts...)
	require.NoError(t, err)
	return cfg
}

func TestOKIDRoundTrip(t *testing.T) {
	inputs, outputs := records(t, oscillator(t), 1000, 31)

	result, err := Identify(inputs, outputs, config(t, WithMethod(MethodOKID)))
	require.NoError(t, err)
	require.Equal(t, KindSingle, result.Kind)
	identification := result.Single
	require.Equal(t, MethodOKID, identification.Method)
	require.NotNil(t, identification.Realization)
	require.Equal(t, 2, identification.Realization.EffectiveOrder)
	require.Len(t, identification.Modes, 1)

	mode := identification.Modes.Sorted()[0]
	assert.InEpsilon(t, 2, mode.Freq, 0.01)
	assert.InEpsilon(t, 0.05, mode.Damp, 0.1)
	assert.Greater(t, mode.MPC, 0.95)
	assert.InDelta(t, 1, mode.EMAC, 1e-4)
}

func TestSRIMIdentify(t *testing.T) {
	inputs, outputs := records(t, building(t), 1000, 32)

	result, err := Identify(inputs, outputs, config(t))
	require.NoError(t, err)
	identification := result.Single
	require.Equal(t, MethodSRIM, identification.Method)

	n := identification.Realization.Model.StateSpaceOrder()
	require.GreaterOrEqual(t, n, 1)
	require.LessOrEqual(t, n, 4)
	require.True(t, identification.Realization.Model.Finite())

	modes := identification.Modes.Sorted()
	require.Len(t, modes, 2)
	assert.InDelta(t, 1.5, modes[0].Freq, 1e-5)
	assert.InDelta(t, 4, modes[1].Freq, 1e-5)
	assert.InDelta(t, 0.03, modes[0].Damp, 1e-5)
	assert.InDelta(t, 0.05, modes[1].Damp, 1e-5)
	for _, mode := range modes {
		assert.GreaterOrEqual(t, mode.EMAC, 0.)
		assert.LessOrEqual(t, mode.EMAC, 1.)
		assert.GreaterOrEqual(t, mode.MPC, 0.)
		assert.LessOrEqual(t, mode.MPC, 1.)
	}
}

// Asking for more states than the data supports leaves the physical modes
// unchanged.
func TestOrderInvariance(t *testing.T) {
	inputs, outputs := records(t, building(t), 1000, 33)

	low, err := Identify(inputs, outputs, config(t, WithOrder(4)))
	require.NoError(t, err)
	high, err := Identify(inputs, outputs, config(t, WithOrder(8)))
	require.NoError(t, err)

	lowModes, highModes := low.Single.Modes.Sorted(), high.Single.Modes.Sorted()
	require.Len(t, highModes, len(lowModes))
	for index := range lowModes {
		assert.InDelta(t, lowModes[index].Freq, highModes[index].Freq, 1e-6)
		assert.InDelta(t, lowModes[index].Damp, highModes[index].Damp, 1e-6)
	}
}

// Measurement noise lowers the quality of the estimate but never fails it.
func TestNoisyRecords(t *testing.T) {
	inputs, outputs := records(t, oscillator(t), 4000, 39)
	outputs = noisy(t, outputs, 0.05, 40)

	for _, tc := range []struct {
		method Method
		order  int
	}{
		{MethodSRIM, 2},
		{MethodSRIM, 6},
		{MethodOKID, 2},
		{MethodOKID, 6},
	} {
		t.Run(fmt.Sprintf("%s/%d", tc.method, tc.order), func(t *testing.T) {
			result, err := Identify(inputs, outputs, config(t, WithMethod(tc.method), WithOrder(tc.order), WithP(12)))
			require.NoError(t, err)
			require.True(t, result.Single.Realization.Model.Finite())
			mode, _ := nearest(t, result.Single.Modes, 2)
			assert.InEpsilon(t, 2, mode.Freq, 0.01)
			assert.Greater(t, mode.EMAC, 0.9)
		})
	}
}

// Modes fitted to noise do not extrapolate through the observability matrix
// and score below the physical mode.
func TestEMACSeparatesSpuriousModes(t *testing.T) {
	inputs, outputs := records(t, oscillator(t), 4000, 41)
	outputs = noisy(t, outputs, 0.05, 42)

	for _, method := range []Method{MethodSRIM, MethodOKID} {
		t.Run(string(method), func(t *testing.T) {
			result, err := Identify(inputs, outputs, config(t, WithMethod(method), WithOrder(10), WithP(12)))
			require.NoError(t, err)
			physical, spurious := nearest(t, result.Single.Modes, 2)
			assert.InEpsilon(t, 2, physical.Freq, 0.01)
			assert.Greater(t, physical.EMAC, 0.9)
			for _, mode := range spurious {
				assert.Lessf(t, mode.EMAC, physical.EMAC, "mode at %v Hz", mode.Freq)
			}
		})
	}
}

func TestDeterminism(t *testing.T) {
	inputs, outputs := records(t, building(t), 600, 34)
	cfg := config(t, WithMethod(MethodTest))

	first, err := Identify(inputs, outputs, cfg)
	require.NoError(t, err)
	second, err := Identify(inputs, outputs, cfg)
	require.NoError(t, err)

	for name, identification := range first.Identifications() {
		other := second.Identifications()[name]
		require.Equal(t, identification.Modes, other.Modes)
		require.True(t, mat.Equal(identification.Realization.Model.A, other.Realization.Model.A))
	}

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	require.JSONEq(t, string(a), string(b))
}

func TestMethodTestCollection(t *testing.T) {
	inputs, outputs := records(t, oscillator(t), 800, 35)

	result, err := Identify(inputs, outputs, config(t, WithMethod(MethodTest)))
	require.NoError(t, err)
	require.Equal(t, KindCollection, result.Kind)
	require.Len(t, result.Collection, 2)
	require.Contains(t, result.Collection, "srim")
	require.Contains(t, result.Collection, "okid")

	raw, err := json.Marshal(result)
	require.NoError(t, err)
	var decoded map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 2)
	require.Len(t, decoded["okid"], 1)
}

func TestOutputOnly(t *testing.T) {
	model := building(t)
	y, err := model.Simulate(mat.NewVecDense(4, []float64{1, 0, 1, 0}), nil, 500)
	require.NoError(t, err)
	outputs, err := signal.FromDense(y, model.Dt)
	require.NoError(t, err)

	result, err := Identify(signal.Series{}, outputs, config(t))
	require.NoError(t, err)
	require.Nil(t, result.Single.Realization.Model.B)
	modes := result.Single.Modes.Sorted()
	require.Len(t, modes, 2)
	assert.InDelta(t, 1.5, modes[0].Freq, 1e-5)
	assert.InDelta(t, 4, modes[1].Freq, 1e-5)

	_, err = Identify(signal.Series{}, outputs, config(t, WithMethod(MethodOKID)))
	require.ErrorIs(t, err, errs.ErrInvalidConfiguration)

	_, err = Identify(signal.Series{}, outputs, config(t, WithMethod(MethodSpectral)))
	require.ErrorIs(t, err, errs.ErrInvalidConfiguration)

	four, err := Identify(signal.Series{}, outputs, config(t, WithMethod(MethodFourier)))
	require.NoError(t, err)
	require.NotNil(t, four.Single.Spectrum)
	require.Nil(t, four.Single.Realization)
	require.Len(t, four.Single.Modes, 2)
}

func TestSpectralMethods(t *testing.T) {
	inputs, outputs := records(t, oscillator(t), 2048, 36)

	for _, method := range []Method{MethodSpectral, MethodFourier} {
		t.Run(string(method), func(t *testing.T) {
			result, err := Identify(inputs, outputs, config(t, WithMethod(method), WithOrder(2)))
			require.NoError(t, err)
			require.NotNil(t, result.Single.Spectrum)
			require.Len(t, result.Single.Modes, 1)
			assert.InDelta(t, 2, result.Single.Modes.Sorted()[0].Freq, 0.25)
		})
	}
}

func TestWindow(t *testing.T) {
	model := oscillator(t)
	noise := signal.WhiteNoise(1, 800, 37)
	u := mat.NewDense(1, 1000, nil)
	u.Slice(0, 1, 100, 900).(*mat.Dense).Copy(noise)
	y, err := model.Simulate(nil, u, 1000)
	require.NoError(t, err)
	inputs, err := signal.FromDense(u, model.Dt)
	require.NoError(t, err)
	outputs, err := signal.FromDense(y, model.Dt)
	require.NoError(t, err)

	cfg := config(t, WithWindow(signal.Arias, 0.005, 0.995))
	windowedInputs, windowedOutputs, err := Window(inputs, outputs, cfg)
	require.NoError(t, err)
	require.Equal(t, windowedInputs.Samples(), windowedOutputs.Samples())
	assert.Greater(t, windowedInputs.Samples(), 700)
	assert.Less(t, windowedInputs.Samples(), 800)

	result, err := Identify(inputs, outputs, cfg)
	require.NoError(t, err)
	require.Len(t, result.Single.Modes, 1)
	assert.InEpsilon(t, 2, result.Single.Modes.Sorted()[0].Freq, 0.01)
}

func TestIdentifyRejects(t *testing.T) {
	inputs, outputs := records(t, oscillator(t), 100, 38)

	_, err := Identify(inputs, outputs, Config{})
	require.ErrorIs(t, err, errs.ErrInvalidConfiguration)

	short, err := inputs.Truncate(0, 50)
	require.NoError(t, err)
	_, err = Identify(short, outputs, config(t))
	require.ErrorIs(t, err, errs.ErrInvalidConfiguration)

	_, err = Identify(inputs, outputs, config(t, WithP(100)))
	require.ErrorIs(t, err, errs.ErrInsufficientData)

	_, err = Identify(inputs, signal.Series{}, config(t))
	require.ErrorIs(t, err, errs.ErrInvalidConfiguration)
}
