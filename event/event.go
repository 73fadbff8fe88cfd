// Package event reads recorded ground motion and structural response from
// text files. A file holds a header row of channel names followed by one row
// per sample; the first column is time. Columns are separated by commas or
// whitespace, blank lines and lines starting with # are skipped. Files ending
// in .zst, .lz4 or .s2 are decompressed first.
package event

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/hammal/ssid/errs"
	"github.com/hammal/ssid/signal"
)

// dtTolerance is the relative spread of time steps accepted as uniform.
const dtTolerance = 1e-6

// Event is a parsed record.
type Event struct {
	// Channel names, excluding the time column.
	Names []string
	Time  []float64
	// Columns[i] holds the samples of channel Names[i].
	Columns [][]float64
	// Sample interval derived from the time column.
	Dt float64
}

// Read reads and parses the event file at path.
func Read(path string) (*Event, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data, err := CodecFor(path).Decompress(raw)
	if err != nil {
		return nil, fmt.Errorf("decompressing %s: %w", path, err)
	}
	ev, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ev, nil
}

// Parse reads an event from r.
func Parse(r io.Reader) (*Event, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var (
		ev     Event
		header bool
		line   int
	)
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := split(text)
		if !header {
			if len(fields) < 2 {
				return nil, fmt.Errorf("%w: line %d: header needs a time column and at least one channel",
					errs.ErrInvalidConfiguration, line)
			}
			ev.Names = fields[1:]
			ev.Columns = make([][]float64, len(ev.Names))
			header = true
			continue
		}
		if len(fields) != len(ev.Names)+1 {
			return nil, fmt.Errorf("%w: line %d: %d fields, header has %d",
				errs.ErrInvalidConfiguration, line, len(fields), len(ev.Names)+1)
		}
		values := make([]float64, len(fields))
		for index, field := range fields {
			value, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", errs.ErrInvalidConfiguration, line, err)
			}
			values[index] = value
		}
		ev.Time = append(ev.Time, values[0])
		for index := range ev.Columns {
			ev.Columns[index] = append(ev.Columns[index], values[index+1])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !header {
		return nil, fmt.Errorf("%w: no header row", errs.ErrInvalidConfiguration)
	}
	if len(ev.Time) < 2 {
		return nil, fmt.Errorf("%w: %d samples, need at least 2 to derive dt",
			errs.ErrInsufficientData, len(ev.Time))
	}

	ev.Dt = (ev.Time[len(ev.Time)-1] - ev.Time[0]) / float64(len(ev.Time)-1)
	if !(ev.Dt > 0) {
		return nil, fmt.Errorf("%w: time column is not increasing", errs.ErrInvalidConfiguration)
	}
	for k := 1; k < len(ev.Time); k++ {
		if step := ev.Time[k] - ev.Time[k-1]; math.Abs(step-ev.Dt) > dtTolerance*ev.Dt+1e-12 {
			return nil, fmt.Errorf("%w: time step %v at sample %d differs from %v",
				errs.ErrInvalidConfiguration, step, k, ev.Dt)
		}
	}
	return &ev, nil
}

func split(text string) []string {
	if !strings.Contains(text, ",") {
		return strings.Fields(text)
	}
	fields := strings.Split(text, ",")
	for index := range fields {
		fields[index] = strings.TrimSpace(fields[index])
	}
	return fields
}

// Index returns the column of the channel selected by name or by 1-based
// position.
func (ev *Event) Index(selector string) (int, error) {
	for index, name := range ev.Names {
		if name == selector {
			return index, nil
		}
	}
	if position, err := strconv.Atoi(selector); err == nil && position >= 1 && position <= len(ev.Names) {
		return position - 1, nil
	}
	return 0, fmt.Errorf("%w: no channel %q among %v", errs.ErrInvalidConfiguration, selector, ev.Names)
}

// Select returns the selected channels as a Series, in selector order. No
// selectors give an empty Series.
func (ev *Event) Select(selectors []string) (signal.Series, error) {
	channels := make([][]float64, 0, len(selectors))
	for _, selector := range selectors {
		index, err := ev.Index(selector)
		if err != nil {
			return signal.Series{}, err
		}
		channels = append(channels, ev.Columns[index])
	}
	return signal.NewSeries(channels, ev.Dt)
}

// ReadChannels reads one channel from each file, the first channel after the
// time column, and returns them as a single Series. All files must share
// sample count and interval. No paths give an empty Series.
func ReadChannels(paths []string) (signal.Series, error) {
	if len(paths) == 0 {
		return signal.Series{}, nil
	}
	channels := make([][]float64, 0, len(paths))
	var dt float64
	for index, path := range paths {
		ev, err := Read(path)
		if err != nil {
			return signal.Series{}, err
		}
		if index > 0 && math.Abs(ev.Dt-dt) > dtTolerance*dt {
			return signal.Series{}, fmt.Errorf("%w: %s has dt %v, %s has %v",
				errs.ErrInvalidConfiguration, path, ev.Dt, paths[0], dt)
		}
		dt = ev.Dt
		channels = append(channels, ev.Columns[0])
	}
	return signal.NewSeries(channels, dt)
}

// WriteFile writes data to path, compressed according to its extension.
func WriteFile(path string, data []byte) error {
	compressed, err := CodecFor(path).Compress(data)
	if err != nil {
		return fmt.Errorf("compressing %s: %w", path, err)
	}
	return os.WriteFile(path, compressed, 0o644)
}
