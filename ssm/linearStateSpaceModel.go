package ssm

import (
	"fmt"
	"math"

	"github.com/hammal/ssid/errs"
	"gonum.org/v1/gonum/mat"
)

// ImpulseResponse returns the first count Markov parameters
//
// Y(0) = D, Y(k) = C A^(k-1) B
//
// each an (r x m) matrix. Output-only models have no impulse response and
// return nil.
func (model StateSpaceModel) ImpulseResponse(count int) []*mat.Dense {
	if model.B == nil || count < 1 {
		return nil
	}
	res := make([]*mat.Dense, count)
	res[0] = mat.DenseCopyOf(model.D)

	// tmp = A^(k-1) B
	tmp := mat.DenseCopyOf(model.B)
	for k := 1; k < count; k++ {
		var y mat.Dense
		y.Mul(model.C, tmp)
		res[k] = &y
		var next mat.Dense
		next.Mul(model.A, tmp)
		tmp = &next
	}
	return res
}

// Simulate computes samples steps of the response starting from state x0
// (zero when nil) under the input u (m x samples). u may be nil for the free
// response. The result is (r x samples).
func (model StateSpaceModel) Simulate(x0 mat.Vector, u mat.Matrix, samples int) (*mat.Dense, error) {
	n := model.StateSpaceOrder()
	r := model.ObservationSpaceOrder()
	m := model.InputSpaceOrder()
	if samples < 1 {
		return nil, fmt.Errorf("%w: cannot simulate %d samples", errs.ErrInvalidConfiguration, samples)
	}
	if u != nil {
		mu, nu := u.Dims()
		if mu != m || nu < samples {
			return nil, fmt.Errorf("%w: input is %dx%d, model needs %dx%d",
				errs.ErrInvalidConfiguration, mu, nu, m, samples)
		}
	}

	state := mat.NewVecDense(n, nil)
	if x0 != nil {
		if x0.Len() != n {
			return nil, fmt.Errorf("%w: initial state has %d entries, model order is %d",
				errs.ErrInvalidConfiguration, x0.Len(), n)
		}
		state.CopyVec(x0)
	}

	res := mat.NewDense(r, samples, nil)
	var (
		y, next, bu, du mat.VecDense
		input           *mat.VecDense
	)
	if u != nil && m > 0 {
		input = mat.NewVecDense(m, nil)
	}
	for k := 0; k < samples; k++ {
		y.MulVec(model.C, state)
		next.MulVec(model.A, state)
		if input != nil {
			for index := 0; index < m; index++ {
				input.SetVec(index, u.At(index, k))
			}
			du.MulVec(model.D, input)
			y.AddVec(&y, &du)
			bu.MulVec(model.B, input)
			next.AddVec(&next, &bu)
		}
		res.SetCol(k, y.RawVector().Data)
		state.CopyVec(&next)
	}
	return res, nil
}

// FrequencyResponse evaluates the transfer function
//
// H(z) = C (zI - A)^-1 B + D, z = exp(i 2 pi f dt)
//
// at frequency f in Hz and returns it as an (r x m) complex matrix.
func (model StateSpaceModel) FrequencyResponse(f float64) (*mat.CDense, error) {
	if model.B == nil {
		return nil, fmt.Errorf("%w: output-only model has no transfer function", errs.ErrInvalidConfiguration)
	}
	n := model.StateSpaceOrder()
	r := model.ObservationSpaceOrder()
	m := model.InputSpaceOrder()
	theta := 2 * math.Pi * f * model.Dt

	// The complex system (zI - A) X = B is solved in its real form
	// [Mr -Mi; Mi Mr] [Xr; Xi] = [B; 0]
	system := mat.NewDense(2*n, 2*n, nil)
	rhs := mat.NewDense(2*n, m, nil)
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			re := -model.A.At(row, col)
			if row == col {
				re += math.Cos(theta)
				system.Set(row, n+col, -math.Sin(theta))
				system.Set(n+row, col, math.Sin(theta))
			}
			system.Set(row, col, re)
			system.Set(n+row, n+col, re)
		}
		for col := 0; col < m; col++ {
			rhs.Set(row, col, model.B.At(row, col))
		}
	}
	var x mat.Dense
	if err := x.Solve(system, rhs); err != nil {
		if _, ok := err.(mat.Condition); !ok {
			return nil, fmt.Errorf("%w: transfer function at %v Hz: %v", errs.ErrRealization, f, err)
		}
	}

	var hr, hi mat.Dense
	hr.Mul(model.C, x.Slice(0, n, 0, m))
	hr.Add(&hr, model.D)
	hi.Mul(model.C, x.Slice(n, 2*n, 0, m))

	res := mat.NewCDense(r, m, nil)
	for row := 0; row < r; row++ {
		for col := 0; col < m; col++ {
			res.Set(row, col, complex(hr.At(row, col), hi.At(row, col)))
		}
	}
	return res, nil
}
