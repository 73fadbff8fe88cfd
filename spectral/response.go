package spectral

import (
	"fmt"
	"math"

	"github.com/hammal/ssid/errs"
	"github.com/hammal/ssid/internal/options"
	"github.com/hammal/ssid/modal"
	"github.com/hammal/ssid/ssm"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// PseudoAcceleration returns the pseudo spectral acceleration w^2 max|x| of a
// damped oscillator with natural frequency f excited at its base by accel.
func PseudoAcceleration(accel mat.Matrix, f, zeta, dt float64) (float64, error) {
	oscillator, err := ssm.Oscillator(f, zeta, dt)
	if err != nil {
		return 0, err
	}
	_, samples := accel.Dims()
	x, err := oscillator.Simulate(nil, accel, samples)
	if err != nil {
		return 0, err
	}
	peak := math.Max(math.Abs(mat.Max(x)), math.Abs(mat.Min(x)))
	w := 2 * math.Pi * f
	return w * w * peak, nil
}

// ResponseSpectrumRatio returns, over a logarithmic frequency grid, the
// pseudo acceleration spectrum of every output channel divided by that of the
// first input channel. All records are treated as base accelerations.
func ResponseSpectrumRatio(inputs, outputs *mat.Dense, dt float64, opts ...Option) (*Spectrum, error) {
	cfg := defaultConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}
	if inputs == nil {
		return nil, fmt.Errorf("%w: response spectrum ratio needs an input record", errs.ErrInvalidConfiguration)
	}
	if err := checkRecords(inputs, outputs, dt); err != nil {
		return nil, err
	}
	r, samples := outputs.Dims()

	minFreq, maxFreq := cfg.MinFreq, cfg.MaxFreq
	if minFreq == 0 {
		minFreq = 2 / (float64(samples) * dt)
	}
	if maxFreq == 0 {
		maxFreq = 0.25 / dt
	}
	if !(maxFreq > minFreq) {
		return nil, fmt.Errorf("%w: response spectrum range [%v, %v] Hz is empty",
			errs.ErrInsufficientData, minFreq, maxFreq)
	}
	freqs := floats.LogSpan(make([]float64, cfg.Points), minFreq, maxFreq)

	ground := inputs.Slice(0, 1, 0, samples)
	amplitude := make([]float64, len(freqs))
	channels := make([][]complex128, r)
	for j := range channels {
		channels[j] = make([]complex128, len(freqs))
	}
	for k, f := range freqs {
		reference, err := PseudoAcceleration(ground, f, cfg.Damping, dt)
		if err != nil {
			return nil, err
		}
		if reference == 0 {
			continue
		}
		for j := 0; j < r; j++ {
			sa, err := PseudoAcceleration(outputs.Slice(j, j+1, 0, samples), f, cfg.Damping, dt)
			if err != nil {
				return nil, err
			}
			ratio := sa / reference
			channels[j][k] = complex(ratio, 0)
			amplitude[k] += ratio / float64(r)
		}
	}
	return &Spectrum{
		Freqs:     freqs,
		Amplitude: amplitude,
		Channels:  channels,
		Dt:        dt,
	}, nil
}

// ResponseSpectrum identifies modes from the peaks of ResponseSpectrumRatio
// and returns them with the spectrum they were picked from.
func ResponseSpectrum(inputs, outputs *mat.Dense, dt float64, opts ...Option) (*Spectrum, modal.ModeSet, error) {
	cfg := defaultConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, nil, err
	}
	spectrum, err := ResponseSpectrumRatio(inputs, outputs, dt, opts...)
	if err != nil {
		return nil, nil, err
	}
	return spectrum, spectrum.Modes(cfg.Peaks), nil
}
