package spectral

import (
	"fmt"
	"math"

	"github.com/hammal/ssid/errs"
	"github.com/hammal/ssid/gonumExtensions"
	"github.com/hammal/ssid/internal/options"
	"github.com/hammal/ssid/modal"
	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/mat"
)

// minSamples is the shortest record a spectrum is computed from.
const minSamples = 8

// TransferSpectrum returns the smoothed Fourier amplitude of every output
// channel divided by the transform of the first input channel. Without inputs
// the output amplitude spectrum is returned. The grid holds the bins 1..N/2.
func TransferSpectrum(inputs, outputs *mat.Dense, dt float64, opts ...Option) (*Spectrum, error) {
	cfg := defaultConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}
	if err := checkRecords(inputs, outputs, dt); err != nil {
		return nil, err
	}
	r, samples := outputs.Dims()

	var reference []complex128
	if inputs != nil {
		reference = fft.FFTReal(mat.Row(nil, 0, inputs))
	}

	bins := samples / 2
	freqs := make([]float64, bins)
	for k := range freqs {
		freqs[k] = float64(k+1) / (float64(samples) * dt)
	}
	power := make([]float64, bins)
	channels := make([][]complex128, r)
	for j := range channels {
		transform := fft.FFTReal(mat.Row(nil, j, outputs))
		re := make([]float64, bins)
		im := make([]float64, bins)
		for k := 0; k < bins; k++ {
			v := transform[k+1]
			if reference != nil {
				if u := reference[k+1]; u != 0 {
					v /= u
				} else {
					v = 0
				}
			}
			re[k], im[k] = real(v), imag(v)
			power[k] += real(v)*real(v) + imag(v)*imag(v)
		}
		re = movingAverage(re, cfg.Smoothing)
		im = movingAverage(im, cfg.Smoothing)
		channels[j] = make([]complex128, bins)
		for k := range channels[j] {
			channels[j][k] = complex(re[k], im[k])
		}
	}

	amplitude := make([]float64, bins)
	for k, p := range power {
		amplitude[k] = math.Sqrt(p / float64(r))
	}
	return &Spectrum{
		Freqs:     freqs,
		Amplitude: movingAverage(amplitude, cfg.Smoothing),
		Channels:  channels,
		Dt:        dt,
	}, nil
}

// Fourier identifies modes from the peaks of TransferSpectrum and returns
// them with the spectrum they were picked from.
func Fourier(inputs, outputs *mat.Dense, dt float64, opts ...Option) (*Spectrum, modal.ModeSet, error) {
	cfg := defaultConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, nil, err
	}
	spectrum, err := TransferSpectrum(inputs, outputs, dt, opts...)
	if err != nil {
		return nil, nil, err
	}
	return spectrum, spectrum.Modes(cfg.Peaks), nil
}

func checkRecords(inputs, outputs *mat.Dense, dt float64) error {
	if outputs == nil {
		return fmt.Errorf("%w: no output record", errs.ErrInvalidConfiguration)
	}
	if !(dt > 0) {
		return fmt.Errorf("%w: sample interval must be positive, got %v", errs.ErrInvalidConfiguration, dt)
	}
	_, samples := outputs.Dims()
	if inputs != nil {
		if _, inSamples := inputs.Dims(); inSamples != samples {
			return fmt.Errorf("%w: %d input samples but %d output samples",
				errs.ErrInvalidConfiguration, inSamples, samples)
		}
		if gonumExtensions.NANORINF(inputs) {
			return fmt.Errorf("%w: input record contains NaN or Inf", errs.ErrInvalidConfiguration)
		}
	}
	if gonumExtensions.NANORINF(outputs) {
		return fmt.Errorf("%w: output record contains NaN or Inf", errs.ErrInvalidConfiguration)
	}
	if samples < minSamples {
		return fmt.Errorf("%w: spectra need at least %d samples, have %d",
			errs.ErrInsufficientData, minSamples, samples)
	}
	return nil
}
