// Package spectral identifies modes directly from spectra: the ratio of
// output to input Fourier transforms and the ratio of output to input
// response spectra. Peaks of the spectrum give the natural frequencies and
// their half-power bandwidth the damping.
package spectral

import (
	"encoding/binary"
	"math"
	"math/cmplx"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/hammal/ssid/modal"
	"gonum.org/v1/gonum/floats"
)

// Spectrum is an amplitude spectrum over a frequency grid.
type Spectrum struct {
	// Frequency grid in Hz, ascending.
	Freqs []float64
	// Channel averaged amplitude at every frequency.
	Amplitude []float64
	// Complex value of every output channel at every frequency, used for mode
	// shapes.
	Channels [][]complex128
	// Sample interval of the records the spectrum was computed from.
	Dt float64
}

// Peaks returns the indices of the count largest local maxima of the
// amplitude in ascending frequency.
func (s *Spectrum) Peaks(count int) []int {
	var peaks []int
	for k := 1; k+1 < len(s.Amplitude); k++ {
		if s.Amplitude[k] > s.Amplitude[k-1] && s.Amplitude[k] >= s.Amplitude[k+1] {
			peaks = append(peaks, k)
		}
	}
	sort.SliceStable(peaks, func(i, j int) bool {
		return s.Amplitude[peaks[i]] > s.Amplitude[peaks[j]]
	})
	if len(peaks) > count {
		peaks = peaks[:count]
	}
	sort.Ints(peaks)
	return peaks
}

// HalfPower returns the damping ratio (f2 - f1) / 2f of the peak at index k,
// where f1 and f2 are the frequencies at which the amplitude falls to
// 1/sqrt(2) of the peak. When only one side crosses the level, that side is
// mirrored. ok is false if neither side does.
func (s *Spectrum) HalfPower(k int) (damp float64, ok bool) {
	level := s.Amplitude[k] / math.Sqrt2
	f := s.Freqs[k]

	left, leftOK := math.NaN(), false
	for i := k; i > 0; i-- {
		if s.Amplitude[i-1] <= level {
			left, leftOK = s.crossing(i-1, i, level), true
			break
		}
	}
	right, rightOK := math.NaN(), false
	for i := k; i+1 < len(s.Amplitude); i++ {
		if s.Amplitude[i+1] <= level {
			right, rightOK = s.crossing(i, i+1, level), true
			break
		}
	}
	switch {
	case leftOK && rightOK:
		return (right - left) / (2 * f), true
	case leftOK:
		return (f - left) / f, true
	case rightOK:
		return (right - f) / f, true
	}
	return 0, false
}

// crossing interpolates the frequency between bins i and j at which the
// amplitude equals level.
func (s *Spectrum) crossing(i, j int, level float64) float64 {
	ai, aj := s.Amplitude[i], s.Amplitude[j]
	if ai == aj {
		return s.Freqs[i]
	}
	return s.Freqs[i] + (level-ai)/(aj-ai)*(s.Freqs[j]-s.Freqs[i])
}

// Modes picks count peaks and returns them as modes. EMAC is not defined for
// spectral estimates and is reported as 1.
func (s *Spectrum) Modes(count int) modal.ModeSet {
	seed := s.fingerprint()
	set := make(modal.ModeSet)
	for _, k := range s.Peaks(count) {
		damp, ok := s.HalfPower(k)
		if !ok {
			continue
		}
		shape := make([]complex128, len(s.Channels))
		for j, channel := range s.Channels {
			shape[j] = channel[k]
		}
		f := s.Freqs[k]
		w := 2 * math.Pi * f
		pole := complex(-damp*w, w*math.Sqrt(math.Max(0, 1-damp*damp)))

		id := modal.ID(seed, k)
		set[id] = modal.Mode{
			ID:                   id,
			Eigenvalue:           cmplx.Exp(pole * complex(s.Dt, 0)),
			Freq:                 f,
			Damp:                 damp,
			Shape:                modal.Normalise(shape),
			EMAC:                 1,
			MPC:                  modal.MPC(shape),
			EnergyCondensedEMACO: 1,
		}
	}
	return set
}

func (s *Spectrum) fingerprint() []byte {
	digest := xxhash.New()
	var buf [8]byte
	for _, values := range [][]float64{s.Freqs, s.Amplitude} {
		for _, v := range values {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			_, _ = digest.Write(buf[:])
		}
	}
	return binary.BigEndian.AppendUint64(nil, digest.Sum64())
}

// movingAverage returns the centred moving average of values over window
// samples, shrinking the window at the edges.
func movingAverage(values []float64, window int) []float64 {
	if window <= 1 {
		return append([]float64(nil), values...)
	}
	half := window / 2
	res := make([]float64, len(values))
	for index := range values {
		from, to := max(0, index-half), min(len(values), index+half+1)
		res[index] = floats.Sum(values[from:to]) / float64(to-from)
	}
	return res
}
