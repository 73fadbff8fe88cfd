package modal

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// ModeSet holds the modes of one identification keyed by their ID.
type ModeSet map[ModeID]Mode

// Sorted returns the modes in ascending frequency, ties broken by ID.
func (set ModeSet) Sorted() []Mode {
	modes := make([]Mode, 0, len(set))
	for _, mode := range set {
		modes = append(modes, mode)
	}
	sort.Slice(modes, func(i, j int) bool {
		if modes[i].Freq != modes[j].Freq {
			return modes[i].Freq < modes[j].Freq
		}
		return modes[i].ID < modes[j].ID
	})
	return modes
}

// Periods returns the periods in ascending frequency order.
func (set ModeSet) Periods() []float64 {
	modes := set.Sorted()
	res := make([]float64, len(modes))
	for index, mode := range modes {
		res[index] = mode.Period()
	}
	return res
}

// Damping returns the damping ratios in ascending frequency order.
func (set ModeSet) Damping() []float64 {
	modes := set.Sorted()
	res := make([]float64, len(modes))
	for index, mode := range modes {
		res[index] = mode.Damp
	}
	return res
}

// Summary holds population statistics over the modes of a set.
type Summary struct {
	Count       int
	MeanPeriod  float64
	StdPeriod   float64
	MeanDamping float64
	StdDamping  float64
}

// Summary returns the mean and population standard deviation of the periods
// and damping ratios. An empty set gives NaN statistics.
func (set ModeSet) Summary() Summary {
	if len(set) == 0 {
		nan := math.NaN()
		return Summary{MeanPeriod: nan, StdPeriod: nan, MeanDamping: nan, StdDamping: nan}
	}
	meanPeriod, varPeriod := stat.PopMeanVariance(set.Periods(), nil)
	meanDamping, varDamping := stat.PopMeanVariance(set.Damping(), nil)
	return Summary{
		Count:       len(set),
		MeanPeriod:  meanPeriod,
		StdPeriod:   math.Sqrt(varPeriod),
		MeanDamping: meanDamping,
		StdDamping:  math.Sqrt(varDamping),
	}
}

// WriteTable prints the modes in ascending frequency followed by the period
// statistics.
func (set ModeSet) WriteTable(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%12s %10s %10s %10s %10s\n", "T(s)", "damping", "EMACO", "MPC", "EMACO*MPC"); err != nil {
		return err
	}
	for _, mode := range set.Sorted() {
		_, err := fmt.Fprintf(w, "%12.4g %10.4g %10.4g %10.4g %10.4g\n",
			mode.Period(), mode.Damp, mode.EnergyCondensedEMACO, mode.MPC, mode.EnergyCondensedEMACO*mode.MPC)
		if err != nil {
			return err
		}
	}
	summary := set.Summary()
	_, err := fmt.Fprintf(w, "Mean Period(s): %.6g\nStandard Dev(s): %.6g\n", summary.MeanPeriod, summary.StdPeriod)
	return err
}

type modeJSON struct {
	Freq                 float64      `json:"freq"`
	Period               float64      `json:"period"`
	Damp                 float64      `json:"damp"`
	Shape                [][2]float64 `json:"mode_shape"`
	EMAC                 float64      `json:"emac"`
	MPC                  float64      `json:"mpc"`
	EnergyCondensedEMACO float64      `json:"energy_condensed_emaco"`
}

// MarshalJSON encodes the mode with its shape as [re, im] pairs.
func (m Mode) MarshalJSON() ([]byte, error) {
	shape := make([][2]float64, len(m.Shape))
	for index, value := range m.Shape {
		shape[index] = [2]float64{real(value), imag(value)}
	}
	return json.Marshal(modeJSON{
		Freq:                 m.Freq,
		Period:               m.Period(),
		Damp:                 m.Damp,
		Shape:                shape,
		EMAC:                 m.EMAC,
		MPC:                  m.MPC,
		EnergyCondensedEMACO: m.EnergyCondensedEMACO,
	})
}

// Nearest is the mode of one set whose period lies closest to the mean period
// over several sets.
type Nearest struct {
	Mode Mode `json:"mode"`
	// Signed distance from the mean in standard deviations.
	Distance float64 `json:"distance"`
}

// NearestToMean pools the periods of all sets and returns, for every
// non-empty set, the mode closest to the pooled mean period.
func NearestToMean(sets []ModeSet) []Nearest {
	var periods []float64
	for _, set := range sets {
		periods = append(periods, set.Periods()...)
	}
	if len(periods) == 0 {
		return nil
	}
	mean, variance := stat.PopMeanVariance(periods, nil)
	std := math.Sqrt(variance)

	var res []Nearest
	for _, set := range sets {
		modes := set.Sorted()
		if len(modes) == 0 {
			continue
		}
		best := modes[0]
		for _, mode := range modes[1:] {
			if math.Abs(mode.Period()-mean) < math.Abs(best.Period()-mean) {
				best = mode
			}
		}
		distance := 0.
		if std > 0 {
			distance = (best.Period() - mean) / std
		}
		res = append(res, Nearest{Mode: best, Distance: distance})
	}
	return res
}
