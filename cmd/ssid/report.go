package main

import (
	"encoding/json"
	"math"
	"path/filepath"

	"github.com/hammal/ssid"
	"github.com/hammal/ssid/plotting"
	"gonum.org/v1/gonum/mat"
)

// encode renders the result as indented JSON. Without writes it is the mode
// set of every identification, otherwise an object holding the requested
// quantities.
func encode(result ssid.Result, writes []string) ([]byte, error) {
	if len(writes) == 0 {
		return json.MarshalIndent(result, "", "    ")
	}
	if result.Kind == ssid.KindSingle {
		return json.MarshalIndent(quantities(result.Single, writes), "", "    ")
	}
	reports := make(map[string]map[string]any, len(result.Collection))
	for name, identification := range result.Collection {
		reports[name] = quantities(identification, writes)
	}
	return json.MarshalIndent(reports, "", "    ")
}

func quantities(identification ssid.Identification, writes []string) map[string]any {
	modes := identification.Modes.Sorted()
	res := make(map[string]any, len(writes))
	for _, name := range writes {
		switch name {
		case "ABCD":
			if identification.Realization == nil {
				continue
			}
			model := identification.Realization.Model
			res[name] = map[string][][]float64{
				"A": rows(model.A),
				"B": rows(model.B),
				"C": rows(model.C),
				"D": rows(model.D),
			}
		case "d":
			res[name] = identification.Modes.Damping()
		case "freq", "cycl":
			values := make([]float64, len(modes))
			for index, mode := range modes {
				values[index] = mode.Freq
				if name == "freq" {
					values[index] *= 2 * math.Pi
				}
			}
			res[name] = values
		case "t":
			res[name] = identification.Modes.Periods()
		case "m":
			res[name] = identification.Modes
		case "c":
			if identification.Realization != nil {
				res[name] = finite(identification.Realization.ConditionNumber())
			}
		}
	}
	return res
}

// rows converts a matrix to nested lists, nil for an absent matrix.
func rows(m *mat.Dense) [][]float64 {
	if m == nil {
		return nil
	}
	r, _ := m.Dims()
	res := make([][]float64, r)
	for i := range res {
		res[i] = mat.Row(nil, i, m)
	}
	return res
}

// finite maps values JSON cannot carry to nil.
func finite(x float64) any {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	return x
}

// plot saves the requested figures of one identification in dir.
func plot(dir string, identification ssid.Identification, plots []string) ([]string, error) {
	var paths []string
	for _, name := range plots {
		var (
			path string
			err  error
		)
		prefix := filepath.Join(dir, string(identification.Method))
		switch name {
		case "a":
			path = prefix + "-spectrum.png"
			err = plotting.Spectrum(path, identification.Spectrum, identification.Modes)
		case "m":
			path = prefix + "-modes.png"
			err = plotting.ModeShapes(path, identification.Modes)
		case "s":
			path = prefix + "-singular.png"
			err = plotting.SingularValues(path, identification.Realization.SingularValues)
		}
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
