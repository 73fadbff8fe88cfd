// Command ssid identifies the modes of a structure from recorded excitation
// and response and prints them as JSON.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/hammal/ssid"
	"github.com/hammal/ssid/event"
	"github.com/hammal/ssid/modal"
	"github.com/hammal/ssid/signal"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns its exit code: 0 on success, 1 when
// identification fails and 2 for bad arguments.
func run(args []string, stdout, stderr io.Writer) int {
	logger := log.New(stderr, "ssid: ", 0)

	a, err := parseArgs(args)
	if errors.Is(err, errHelp) {
		fmt.Fprint(stdout, usage)
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "ssid: %v\n\n%s", err, usage)
		return 2
	}
	cfg, err := ssid.ConfigFromEnv(a.opts...)
	if err != nil {
		fmt.Fprintf(stderr, "ssid: %v\n\n%s", err, usage)
		return 2
	}

	inputs, outputs, err := a.load()
	if err != nil {
		logger.Printf("reading records: %v", err)
		return 1
	}
	result, err := ssid.Identify(inputs, outputs, cfg)
	if err != nil {
		logger.Printf("identification failed: %v", err)
		return 1
	}
	for name, identification := range result.Identifications() {
		logger.Printf("%s: %d modes in %v", name, len(identification.Modes), identification.Elapsed)
		if a.table {
			if err := identification.Modes.WriteTable(stderr); err != nil {
				logger.Printf("writing table: %v", err)
				return 1
			}
		}
	}

	if a.table && result.Kind == ssid.KindCollection {
		sets := make([]modal.ModeSet, 0, len(result.Collection))
		for _, identification := range result.Collection {
			sets = append(sets, identification.Modes)
		}
		for _, nearest := range modal.NearestToMean(sets) {
			fmt.Fprintf(stderr, "Nearest to mean: T = %.4g s (%+.2f std)\n", nearest.Mode.Period(), nearest.Distance)
		}
	}

	data, err := encode(result, a.writes)
	if err != nil {
		logger.Printf("encoding result: %v", err)
		return 1
	}
	if len(a.plots) > 0 {
		paths, err := plot(a.plotDir, result.Single, a.plots)
		if err != nil {
			logger.Printf("plotting: %v", err)
			return 1
		}
		for _, path := range paths {
			logger.Printf("saved %s", path)
		}
	}

	if a.out != "" {
		if err := event.WriteFile(a.out, data); err != nil {
			logger.Printf("writing %s: %v", a.out, err)
			return 1
		}
		return 0
	}
	fmt.Fprintf(stdout, "%s\n", data)
	return 0
}

func (a *arguments) load() (signal.Series, signal.Series, error) {
	if a.files {
		inputs, err := event.ReadChannels(a.inputs)
		if err != nil {
			return signal.Series{}, signal.Series{}, err
		}
		outputs, err := event.ReadChannels(a.outputs)
		return inputs, outputs, err
	}
	ev, err := event.Read(a.event)
	if err != nil {
		return signal.Series{}, signal.Series{}, err
	}
	inputs, err := ev.Select(a.inputs)
	if err != nil {
		return signal.Series{}, signal.Series{}, err
	}
	outputs, err := ev.Select(a.outputs)
	return inputs, outputs, err
}
