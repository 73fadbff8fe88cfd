// Package modal extracts the modal properties of an identified state space
// model: natural frequencies, damping ratios, complex mode shapes and the EMAC
// and MPC quality indicators.
package modal

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/google/uuid"
	"github.com/hammal/ssid/errs"
	"github.com/hammal/ssid/gonumExtensions"
	"github.com/hammal/ssid/internal/options"
	"github.com/hammal/ssid/ssm"
	"gonum.org/v1/gonum/mat"
)

// ModeID identifies a mode. It is a name based UUID derived from the model the
// mode was extracted from and the position of its eigenvalue, so identical
// models always give identical IDs.
type ModeID string

var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/hammal/ssid/modal"))

// ID returns the ModeID of eigenvalue index of a model with the given seed.
func ID(seed []byte, index int) ModeID {
	name := make([]byte, len(seed), len(seed)+8)
	copy(name, seed)
	name = binary.BigEndian.AppendUint64(name, uint64(index))
	return ModeID(uuid.NewSHA1(namespace, name).String())
}

// Mode is a single identified mode.
type Mode struct {
	ID ModeID
	// Discrete eigenvalue of A
	Eigenvalue complex128
	// Natural frequency in Hz
	Freq float64
	// Damping ratio
	Damp float64
	// Observed mode shape C v, scaled so its largest entry is 1
	Shape                []complex128
	EMAC                 float64
	MPC                  float64
	EnergyCondensedEMACO float64
}

// Period returns 1/Freq in seconds.
func (m Mode) Period() float64 {
	return 1 / m.Freq
}

// Decompose returns the modes of model.
//
// Complex eigenvalues are represented by the member of their conjugate pair
// with positive imaginary part. Zero and negative real eigenvalues carry no
// physical mode and are dropped, positive real ones are kept only with
// WithOverdamped(true). Each eigenvalue maps to continuous time through
// s = ln(lambda)/dt with
//
//	freq = |s| / 2pi
//	damp = -Re(s) / |s|
//
// Eigenvalues on or just outside the unit circle are kept with zero or
// negative damping.
//
// EMAC compares the last block row of the data observability matrix stored in
// the model with the first block row propagated by the eigenvalue. Models
// without one score 1.
func Decompose(model *ssm.StateSpaceModel, opts ...Option) (ModeSet, error) {
	var cfg Config
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}
	if model == nil {
		return nil, fmt.Errorf("%w: no model to decompose", errs.ErrInvalidConfiguration)
	}
	n := model.StateSpaceOrder()
	r := model.ObservationSpaceOrder()

	var eig mat.Eigen
	if !eig.Factorize(model.A, mat.EigenRight) {
		return nil, fmt.Errorf("%w: eigen decomposition of %dx%d state matrix did not converge",
			errs.ErrRealization, n, n)
	}
	values := eig.Values(nil)
	var vectors mat.CDense
	eig.VectorsTo(&vectors)

	op := model.C
	if model.Observability != nil {
		op = model.Observability
	}
	rows, _ := op.Dims()
	blocks := rows / r
	last := gonumExtensions.Rows(op, (blocks-1)*r, blocks*r)

	var seed [8]byte
	binary.BigEndian.PutUint64(seed[:], model.Fingerprint())

	set := make(ModeSet)
	for index, lambda := range values {
		if !physical(lambda, cfg.Overdamped) {
			continue
		}
		s := cmplx.Log(lambda) / complex(model.Dt, 0)
		freq := cmplx.Abs(s) / (2 * math.Pi)
		if math.IsNaN(freq) || math.IsInf(freq, 0) || freq <= 0 {
			continue
		}

		v := gonumExtensions.Column(&vectors, index)
		shape := gonumExtensions.MulVecComplex(model.C, v)
		observed := gonumExtensions.MulVecComplex(last, v)
		growth := cmplx.Pow(lambda, complex(float64(blocks-1), 0))
		extrapolated := make([]complex128, r)
		for j, phi := range shape {
			extrapolated[j] = phi * growth
		}

		id := ID(seed[:], index)
		set[id] = Mode{
			ID:                   id,
			Eigenvalue:           lambda,
			Freq:                 freq,
			Damp:                 -real(s) / cmplx.Abs(s),
			Shape:                Normalise(shape),
			EMAC:                 EMAC(observed, extrapolated),
			MPC:                  MPC(shape),
			EnergyCondensedEMACO: EnergyCondensedEMACO(observed, extrapolated, shape),
		}
	}
	return set, nil
}

func physical(lambda complex128, overdamped bool) bool {
	switch {
	case cmplx.Abs(lambda) == 0:
		return false
	case imag(lambda) > 0:
		return true
	case imag(lambda) < 0:
		return false
	case real(lambda) > 0:
		return overdamped
	}
	return false
}

// Normalise scales shape so that its largest modulus entry becomes 1.
func Normalise(shape []complex128) []complex128 {
	res := make([]complex128, len(shape))
	var peak complex128
	for _, value := range shape {
		if cmplx.Abs(value) > cmplx.Abs(peak) {
			peak = value
		}
	}
	if peak == 0 {
		copy(res, shape)
		return res
	}
	for index, value := range shape {
		res[index] = value / peak
	}
	return res
}
