package modal

import (
	"math"
	"math/cmplx"
)

// MPC returns the modal phase collinearity of shape
//
//	MPC = ((Sxx - Syy)^2 + 4 Sxy^2) / (Sxx + Syy)^2
//
// with x and y the real and imaginary parts. It is 1 for a shape whose entries
// share a single phase (up to sign) and falls towards 0 as the entries spread
// over the complex plane. A zero vector scores 0.
func MPC(shape []complex128) float64 {
	var sxx, syy, sxy float64
	for _, value := range shape {
		x, y := real(value), imag(value)
		sxx += x * x
		syy += y * y
		sxy += x * y
	}
	if sxx+syy == 0 {
		return 0
	}
	mpc := ((sxx-syy)*(sxx-syy) + 4*sxy*sxy) / ((sxx + syy) * (sxx + syy))
	return math.Min(1, math.Max(0, mpc))
}

// ChannelEMAC returns the extended modal amplitude coherence of every channel.
// observed holds the modal response identified from data at the last block
// row of the observability matrix, extrapolated the same response predicted
// from the first block row by the identified eigenvalue. A channel scores the
// product of its amplitude coherence min(|o|, |e|)/max(|o|, |e|) and its phase
// coherence max(0, 1 - |arg(o/e)|/(pi/4)).
func ChannelEMAC(observed, extrapolated []complex128) []float64 {
	scores := make([]float64, len(observed))
	for index, o := range observed {
		e := extrapolated[index]
		ao, ae := cmplx.Abs(o), cmplx.Abs(e)
		switch {
		case ao == 0 && ae == 0:
			scores[index] = 1
			continue
		case ao == 0 || ae == 0:
			continue
		}
		amplitude := math.Min(ao, ae) / math.Max(ao, ae)
		phase := math.Max(0, 1-math.Abs(cmplx.Phase(o/e))/(math.Pi/4))
		scores[index] = amplitude * phase
	}
	return scores
}

// EMAC returns the channel average of ChannelEMAC.
func EMAC(observed, extrapolated []complex128) float64 {
	scores := ChannelEMAC(observed, extrapolated)
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

// EnergyCondensedEMACO returns the channel EMAC weighted by the energy |shape_j|^2
// each channel carries in the mode.
func EnergyCondensedEMACO(observed, extrapolated, shape []complex128) float64 {
	scores := ChannelEMAC(observed, extrapolated)
	var sum, energy float64
	for index, s := range scores {
		w := real(shape[index])*real(shape[index]) + imag(shape[index])*imag(shape[index])
		sum += w * s
		energy += w
	}
	if energy == 0 {
		return 0
	}
	return sum / energy
}
