// Package plotting renders identification results as images. The file format
// follows the extension of the output path (png, svg, pdf, eps).
package plotting

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/hammal/ssid/modal"
	"github.com/hammal/ssid/spectral"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Size of the saved figures.
var (
	Width  = 6 * vg.Inch
	Height = 4 * vg.Inch
)

// Spectrum plots the amplitude of s against frequency and marks the
// frequencies of modes.
func Spectrum(path string, s *spectral.Spectrum, modes modal.ModeSet) error {
	if s == nil || len(s.Freqs) == 0 {
		return fmt.Errorf("plotting: empty spectrum")
	}
	p := plot.New()
	p.Title.Text = "Amplitude spectrum"
	p.X.Label.Text = "frequency (Hz)"
	p.Y.Label.Text = "amplitude"

	pts := make(plotter.XYs, len(s.Freqs))
	for i := range pts {
		pts[i].X = s.Freqs[i]
		pts[i].Y = s.Amplitude[i]
	}
	if err := plotutil.AddLines(p, "spectrum", pts); err != nil {
		return err
	}

	if len(modes) > 0 {
		peaks := make(plotter.XYs, 0, len(modes))
		for _, mode := range modes.Sorted() {
			peaks = append(peaks, plotter.XY{X: mode.Freq, Y: interpolate(s, mode.Freq)})
		}
		if err := plotutil.AddScatters(p, "modes", peaks); err != nil {
			return err
		}
	}
	return p.Save(Width, Height, path)
}

// ModeShapes plots the real part of every mode shape, signed by the phase of
// each entry, against the output channel.
func ModeShapes(path string, modes modal.ModeSet) error {
	if len(modes) == 0 {
		return fmt.Errorf("plotting: no modes")
	}
	p := plot.New()
	p.Title.Text = "Mode shapes"
	p.X.Label.Text = "channel"
	p.Y.Label.Text = "normalised amplitude"

	var lines []interface{}
	for _, mode := range modes.Sorted() {
		pts := make(plotter.XYs, len(mode.Shape))
		for i, value := range mode.Shape {
			pts[i].X = float64(i + 1)
			pts[i].Y = signedAmplitude(value)
		}
		lines = append(lines, fmt.Sprintf("T = %.3g s", mode.Period()), pts)
	}
	if err := plotutil.AddLinePoints(p, lines...); err != nil {
		return err
	}
	return p.Save(Width, Height, path)
}

// SingularValues plots the singular value spectrum on a log scale.
func SingularValues(path string, values []float64) error {
	if len(values) == 0 {
		return fmt.Errorf("plotting: no singular values")
	}
	p := plot.New()
	p.Title.Text = "Singular values"
	p.X.Label.Text = "index"
	p.Y.Label.Text = "singular value"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{}

	pts := make(plotter.XYs, 0, len(values))
	for i, v := range values {
		// zero cannot be drawn on a log axis
		if v > 0 {
			pts = append(pts, plotter.XY{X: float64(i + 1), Y: v})
		}
	}
	if len(pts) == 0 {
		return fmt.Errorf("plotting: all singular values are zero")
	}
	if err := plotutil.AddLinePoints(p, "singular values", pts); err != nil {
		return err
	}
	return p.Save(Width, Height, path)
}

// signedAmplitude projects a complex shape entry onto the real axis keeping
// its modulus.
func signedAmplitude(value complex128) float64 {
	amplitude := cmplx.Abs(value)
	if math.Abs(cmplx.Phase(value)) > math.Pi/2 {
		return -amplitude
	}
	return amplitude
}

func interpolate(s *spectral.Spectrum, f float64) float64 {
	for i := 1; i < len(s.Freqs); i++ {
		if s.Freqs[i] >= f {
			f0, f1 := s.Freqs[i-1], s.Freqs[i]
			return s.Amplitude[i-1] + (f-f0)/(f1-f0)*(s.Amplitude[i]-s.Amplitude[i-1])
		}
	}
	return s.Amplitude[len(s.Amplitude)-1]
}
