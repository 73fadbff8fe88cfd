package okid

import (
	"testing"

	"github.com/hammal/ssid/errs"
	"github.com/hammal/ssid/signal"
	"github.com/hammal/ssid/ssm"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// twoModes returns a two input, two output system with modes at 1.5 and 4 Hz.
func twoModes(t *testing.T) *ssm.StateSpaceModel {
	t.Helper()
	Ac, err := ssm.Modal([]float64{1.5, 4}, []float64{0.03, 0.05})
	require.NoError(t, err)
	Bc := mat.NewDense(4, 2, []float64{
		0, 0,
		1, 0.5,
		0, 0,
		0.3, 1,
	})
	Cc := mat.NewDense(2, 4, []float64{
		10, 0, 5, 0,
		0, 1, 0, 2,
	})
	Dc := mat.NewDense(2, 2, []float64{0.1, 0, 0, 0.2})
	model, err := ssm.Continuous(Ac, Bc, Cc, Dc, 0.02)
	require.NoError(t, err)
	return model
}

func requireMarkovEqual(t *testing.T, want, got []*mat.Dense, tol float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for k := range want {
		require.Truef(t, mat.EqualApprox(want[k], got[k], tol),
			"Y(%d): want\n%v\ngot\n%v", k, mat.Formatted(want[k]), mat.Formatted(got[k]))
	}
}

func TestEstimateRecoversImpulseResponse(t *testing.T) {
	model := twoModes(t)
	u := signal.WhiteNoise(2, 600, 1)
	y, err := model.Simulate(nil, u, 600)
	require.NoError(t, err)

	markov, err := Estimate(u, y, 6)
	require.NoError(t, err)
	requireMarkovEqual(t, model.ImpulseResponse(13), markov, 1e-5)
}

func TestEstimateCount(t *testing.T) {
	model := twoModes(t)
	u := signal.WhiteNoise(2, 400, 2)
	y, err := model.Simulate(nil, u, 400)
	require.NoError(t, err)

	markov, err := Estimate(u, y, 5, WithCount(30))
	require.NoError(t, err)
	requireMarkovEqual(t, model.ImpulseResponse(30), markov, 1e-5)
}

func TestEstimateSingleChannel(t *testing.T) {
	model, err := ssm.Oscillator(2, 0.05, 0.01)
	require.NoError(t, err)
	u := signal.WhiteNoise(1, 300, 3)
	y, err := model.Simulate(nil, u, 300)
	require.NoError(t, err)

	markov, err := Estimate(u, y, 4)
	require.NoError(t, err)
	requireMarkovEqual(t, model.ImpulseResponse(9), markov, 1e-9)
}

func TestEstimateZeroInputIsIllConditioned(t *testing.T) {
	u := mat.NewDense(1, 100, nil)
	y := signal.WhiteNoise(1, 100, 4)
	_, err := Estimate(u, y, 3)
	require.ErrorIs(t, err, errs.ErrIllConditionedRegression)

	// a lowered rank floor accepts the regression
	markov, err := Estimate(u, y, 3, WithMinRank(1))
	require.NoError(t, err)
	require.Len(t, markov, 7)
}

func TestEstimateRejects(t *testing.T) {
	u := signal.WhiteNoise(1, 10, 5)
	y := signal.WhiteNoise(1, 10, 6)

	_, err := Estimate(u, y, 10)
	require.ErrorIs(t, err, errs.ErrInsufficientData)

	_, err = Estimate(nil, y, 3)
	require.ErrorIs(t, err, errs.ErrInvalidConfiguration)

	_, err = Estimate(u, signal.WhiteNoise(1, 9, 6), 3)
	require.ErrorIs(t, err, errs.ErrInvalidConfiguration)

	_, err = Estimate(u, y, 0)
	require.ErrorIs(t, err, errs.ErrInvalidConfiguration)

	_, err = Estimate(u, y, 3, WithCount(0))
	require.ErrorIs(t, err, errs.ErrInvalidConfiguration)

	_, err = Estimate(u, y, 3, WithRCond(2))
	require.ErrorIs(t, err, errs.ErrInvalidConfiguration)

	_, err = Estimate(u, y, 3, WithMinRank(-1))
	require.ErrorIs(t, err, errs.ErrInvalidConfiguration)
}
