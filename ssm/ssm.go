// Package ssm holds the discrete-time linear state space model
//
// x(k+1) = A x(k) + B u(k)
//
// y(k) = C x(k) + D u(k)
//
// produced by the realization algorithms, together with its impulse, forced and
// frequency responses and a zero order hold discretisation of continuous models.
package ssm

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/hammal/ssid/errs"
	"github.com/hammal/ssid/gonumExtensions"
	"gonum.org/v1/gonum/mat"
)

// StateSpaceModel is a discrete-time realization (A, B, C, D) with sample
// interval Dt. B and D are nil for output-only models.
type StateSpaceModel struct {
	// State dynamics (n x n)
	A *mat.Dense
	// Input matrix (n x m)
	B *mat.Dense
	// Observation matrix (r x n)
	C *mat.Dense
	// Feedthrough matrix (r x m)
	D *mat.Dense
	// Sample interval in seconds
	Dt float64
	// Extended observability matrix [C; CA; ...] as recovered from data by the
	// realization, nil for models that were not identified.
	Observability *mat.Dense
}

// NewStateSpaceModel checks that the system parameters match and returns the
// model. B and D must either both be nil or both be set.
func NewStateSpaceModel(A, B, C, D *mat.Dense, dt float64) (*StateSpaceModel, error) {
	if A == nil || C == nil {
		return nil, fmt.Errorf("%w: A and C are required", errs.ErrInvalidConfiguration)
	}
	n, nA := A.Dims()
	r, nC := C.Dims()
	if n != nA || nC != n {
		return nil, fmt.Errorf("%w: A is %dx%d and C is %dx%d", errs.ErrInvalidConfiguration, n, nA, r, nC)
	}
	if (B == nil) != (D == nil) {
		return nil, fmt.Errorf("%w: B and D must both be present or both be absent", errs.ErrInvalidConfiguration)
	}
	if B != nil {
		nB, m := B.Dims()
		rD, mD := D.Dims()
		if nB != n || rD != r || mD != m {
			return nil, fmt.Errorf("%w: B is %dx%d and D is %dx%d for n=%d, r=%d",
				errs.ErrInvalidConfiguration, nB, m, rD, mD, n, r)
		}
	}
	if !(dt > 0) {
		return nil, fmt.Errorf("%w: sample interval must be positive, got %v", errs.ErrInvalidConfiguration, dt)
	}
	return &StateSpaceModel{A: A, B: B, C: C, D: D, Dt: dt}, nil
}

// StateSpaceOrder returns n.
func (ssm StateSpaceModel) StateSpaceOrder() int {
	m, _ := ssm.A.Dims()
	return m
}

// ObservationSpaceOrder returns the number of outputs r.
func (ssm StateSpaceModel) ObservationSpaceOrder() int {
	m, _ := ssm.C.Dims()
	return m
}

// InputSpaceOrder returns the number of inputs m, zero for output-only models.
func (ssm StateSpaceModel) InputSpaceOrder() int {
	if ssm.B == nil {
		return 0
	}
	_, m := ssm.B.Dims()
	return m
}

// Finite reports whether every matrix of the model is free of NaN and Inf.
func (ssm StateSpaceModel) Finite() bool {
	for _, matrix := range []*mat.Dense{ssm.A, ssm.B, ssm.C, ssm.D, ssm.Observability} {
		if matrix != nil && gonumExtensions.NANORINF(matrix) {
			return false
		}
	}
	return true
}

// Fingerprint returns a 64 bit digest of the model matrices and sample interval.
// Identical realizations always give identical fingerprints.
func (ssm StateSpaceModel) Fingerprint() uint64 {
	digest := xxhash.New()
	var buf [8]byte
	write := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = digest.Write(buf[:])
	}
	for _, matrix := range []*mat.Dense{ssm.A, ssm.B, ssm.C, ssm.D} {
		if matrix == nil {
			write(0)
			continue
		}
		r, c := matrix.Dims()
		write(uint64(r))
		write(uint64(c))
		for row := 0; row < r; row++ {
			for col := 0; col < c; col++ {
				write(math.Float64bits(matrix.At(row, col)))
			}
		}
	}
	write(math.Float64bits(ssm.Dt))
	return digest.Sum64()
}
