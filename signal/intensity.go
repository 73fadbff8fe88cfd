package signal

import (
	"fmt"
	"math"
	"strings"

	"github.com/hammal/ssid/errs"
	"gonum.org/v1/gonum/floats"
)

// IntensityMeasure selects the cumulative measure used to find the strong
// motion part of a record.
type IntensityMeasure string

const (
	// Arias is the cumulative squared acceleration.
	Arias IntensityMeasure = "arias"
	// Isaacson is treated as the cumulative squared acceleration.
	Isaacson IntensityMeasure = "isaacson"
	// CAV is the cumulative absolute acceleration.
	CAV IntensityMeasure = "cav"
	// PGA is the running peak absolute acceleration.
	PGA IntensityMeasure = "pga"
	// PGV is the running peak absolute velocity (cumulative sum of acceleration).
	PGV IntensityMeasure = "pgv"
)

// Default bounds on the normalised cumulative intensity.
const (
	DefaultLowerBound = 0.005
	DefaultUpperBound = 0.995
)

// ParseIntensityMeasure maps a measure name to an IntensityMeasure.
func ParseIntensityMeasure(name string) (IntensityMeasure, error) {
	switch measure := IntensityMeasure(strings.ToLower(name)); measure {
	case Arias, Isaacson, CAV, PGA, PGV:
		return measure, nil
	}
	return "", fmt.Errorf("%w: %q", errs.ErrUnknownIntensityMeasure, name)
}

// Husid returns the cumulative intensity of accel normalised by its final
// value, so the curve rises monotonically to 1.
func Husid(accel []float64, measure IntensityMeasure) ([]float64, error) {
	if len(accel) == 0 {
		return nil, fmt.Errorf("%w: empty record", errs.ErrInsufficientData)
	}
	intensity := make([]float64, len(accel))
	switch measure {
	case Arias, Isaacson:
		for index, a := range accel {
			intensity[index] = a * a
		}
		floats.CumSum(intensity, intensity)
	case CAV:
		for index, a := range accel {
			intensity[index] = math.Abs(a)
		}
		floats.CumSum(intensity, intensity)
	case PGA:
		runningMax(intensity, accel)
	case PGV:
		velocity := floats.CumSum(make([]float64, len(accel)), accel)
		runningMax(intensity, velocity)
	default:
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownIntensityMeasure, string(measure))
	}

	last := intensity[len(intensity)-1]
	if last == 0 {
		return nil, fmt.Errorf("%w: record has zero %s intensity", errs.ErrInsufficientData, measure)
	}
	floats.Scale(1/last, intensity)
	return intensity, nil
}

// runningMax writes the running maximum of |src| into dst.
func runningMax(dst, src []float64) {
	peak := 0.
	for index, v := range src {
		peak = math.Max(peak, math.Abs(v))
		dst[index] = peak
	}
}

// IntensityBounds returns the first sample indices at which the normalised
// cumulative intensity exceeds lb and ub respectively. The strong motion
// window is [ilb, iub).
func IntensityBounds(accel []float64, lb, ub float64, measure IntensityMeasure) (ilb, iub int, err error) {
	if lb < 0 || ub >= 1 || lb >= ub {
		return 0, 0, fmt.Errorf("%w: intensity bounds must satisfy 0 <= lb < ub < 1, got %v, %v",
			errs.ErrInvalidConfiguration, lb, ub)
	}
	cumulative, err := Husid(accel, measure)
	if err != nil {
		return 0, 0, err
	}
	ilb, iub = -1, -1
	for index, value := range cumulative {
		if ilb < 0 && value > lb {
			ilb = index
		}
		if value > ub {
			iub = index
			break
		}
	}
	if iub <= ilb {
		return 0, 0, fmt.Errorf("%w: intensity window [%d, %d) is empty", errs.ErrInsufficientData, ilb, iub)
	}
	return ilb, iub, nil
}
