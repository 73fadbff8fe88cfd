package ssm

import (
	"fmt"
	"math"

	"github.com/hammal/ssid/errs"
	"gonum.org/v1/gonum/mat"
)

// Continuous discretises the continuous-time system
//
// x'(t) = Ac x(t) + Bc u(t)
//
// y(t) = Cc x(t) + Dc u(t)
//
// with a zero order hold on the input. Both discrete matrices come from a
// single matrix exponential
//
// exp([Ac Bc; 0 0] dt) = [Ad Bd; 0 I]
//
// which also covers singular Ac. Bc and Dc may be nil for an autonomous system.
func Continuous(Ac, Bc, Cc, Dc *mat.Dense, dt float64) (*StateSpaceModel, error) {
	if Ac == nil || Cc == nil {
		return nil, fmt.Errorf("%w: Ac and Cc are required", errs.ErrInvalidConfiguration)
	}
	n, _ := Ac.Dims()
	r, _ := Cc.Dims()
	if Bc == nil {
		var Ad mat.Dense
		computeStateTransition(dt, Ac, &Ad)
		return NewStateSpaceModel(&Ad, nil, mat.DenseCopyOf(Cc), nil, dt)
	}

	_, m := Bc.Dims()
	augmented := mat.NewDense(n+m, n+m, nil)
	augmented.Slice(0, n, 0, n).(*mat.Dense).Copy(Ac)
	augmented.Slice(0, n, n, n+m).(*mat.Dense).Copy(Bc)

	var phi mat.Dense
	computeStateTransition(dt, augmented, &phi)

	Ad := mat.DenseCopyOf(phi.Slice(0, n, 0, n))
	Bd := mat.DenseCopyOf(phi.Slice(0, n, n, n+m))
	Dd := mat.NewDense(r, m, nil)
	if Dc != nil {
		Dd.Copy(Dc)
	}
	return NewStateSpaceModel(Ad, Bd, mat.DenseCopyOf(Cc), Dd, dt)
}

// computeStateTransition computes e^(At) where A is a square matrix and
// t is a scalar.
func computeStateTransition(t float64, a mat.Matrix, dst *mat.Dense) {
	var scaled mat.Dense
	scaled.Scale(t, a)
	dst.Exp(&scaled)
}

// Oscillator returns the discrete single degree of freedom oscillator with
// natural frequency f (Hz) and damping ratio zeta driven by base acceleration
//
// x'' + 2 zeta w x' + w^2 x = -a(t)
//
// observed through its relative displacement x.
func Oscillator(f, zeta, dt float64) (*StateSpaceModel, error) {
	if !(f > 0) || zeta < 0 {
		return nil, fmt.Errorf("%w: oscillator needs f > 0 and zeta >= 0, got %v, %v",
			errs.ErrInvalidConfiguration, f, zeta)
	}
	w := 2 * math.Pi * f
	Ac := mat.NewDense(2, 2, []float64{0, 1, -w * w, -2 * zeta * w})
	Bc := mat.NewDense(2, 1, []float64{0, -1})
	Cc := mat.NewDense(1, 2, []float64{1, 0})
	return Continuous(Ac, Bc, Cc, nil, dt)
}

// Modal returns the continuous-time block diagonal model of uncoupled modes
// with frequencies freqs (Hz) and damping ratios damps. Each mode contributes
// the 2x2 block [0 1; -w^2 -2 zeta w] acting on (displacement, velocity).
func Modal(freqs, damps []float64) (*mat.Dense, error) {
	if len(freqs) == 0 || len(freqs) != len(damps) {
		return nil, fmt.Errorf("%w: %d frequencies and %d damping ratios",
			errs.ErrInvalidConfiguration, len(freqs), len(damps))
	}
	n := 2 * len(freqs)
	Ac := mat.NewDense(n, n, nil)
	for index, f := range freqs {
		w := 2 * math.Pi * f
		i := 2 * index
		Ac.Set(i, i+1, 1)
		Ac.Set(i+1, i, -w*w)
		Ac.Set(i+1, i+1, -2*damps[index]*w)
	}
	return Ac, nil
}
