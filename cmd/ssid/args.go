package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hammal/ssid"
	"github.com/hammal/ssid/internal/options"
	"github.com/hammal/ssid/signal"
)

const usage = `ssid [-p|-w <name>]... <method> [options] <event> [<inputs> <outputs>]
ssid [-p|-w <name>]... <method> [options] -i FILE... -o FILE...

Methods:
  <method>  <writes>         <plots>
  srim      ABCD,d,freq,cycl,t,m,c   m,s
  okid      ABCD,d,freq,cycl,t,m,c   m,s
  spec      d,freq,cycl,t,m          a,m
  four      d,freq,cycl,t,m          a,m
  test      d,freq,cycl,t,m,c

Before the method:
  -p/--plot NAME     a  amplitude spectrum
                     m  mode shapes
                     s  singular values
  -w/--write NAME    ABCD  system matrices
                     d     damping
                     freq  angular frequency
                     cycl  cyclic frequency
                     t     period
                     m     modes
                     c     condition number
  -h/--help

After the method:
  -p N               observer order and Hankel block rows
  -n N               model order
  --dt X             sample interval override
  --window           cut the records to their strong motion part
  --intensity NAME   arias, isaacson, cav, pga or pgv
  --lb X, --ub X     cumulative intensity bounds of the window
  --overdamped       keep real positive eigenvalues
  --out FILE         write the JSON report to FILE (.zst, .lz4, .s2 compress)
  --plot-dir DIR     directory of the plots, default .
  --table            print a table of the modes to stderr
  --inputs [1,2]     input channels of the event, by name or index
  --outputs [3,4]    output channels of the event
  -i FILE...         one input channel per file
  -o FILE...         one output channel per file

Defaults are read from the SSID_* environment variables.
`

var errHelp = errors.New("help requested")

var (
	writeNames = []string{"ABCD", "d", "freq", "cycl", "t", "m", "c"}
	plotNames  = []string{"a", "m", "s"}
)

type arguments struct {
	method  ssid.Method
	writes  []string
	plots   []string
	opts    []ssid.Option
	event   string
	inputs  []string
	outputs []string
	// one channel per file instead of channels of an event
	files   bool
	out     string
	plotDir string
	table   bool
}

func parseArgs(args []string) (*arguments, error) {
	a := &arguments{plotDir: "."}
	rest, err := a.parseGlobal(args)
	if err != nil {
		return nil, err
	}
	if err := a.parseMethod(rest); err != nil {
		return nil, err
	}
	if err := a.check(); err != nil {
		return nil, err
	}
	return a, nil
}

// parseGlobal consumes the options before the method and the method itself.
func (a *arguments) parseGlobal(args []string) ([]string, error) {
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "-h", "--help":
			return nil, errHelp
		case "--":
		case "-p", "--plot", "-w", "--write":
			i++
			if i == len(args) {
				return nil, fmt.Errorf("%s needs a value", arg)
			}
			if arg == "-p" || arg == "--plot" {
				a.plots = append(a.plots, args[i])
			} else {
				a.writes = append(a.writes, args[i])
			}
		default:
			method, err := ssid.ParseMethod(arg)
			if err != nil {
				return nil, err
			}
			a.method = method
			return args[i+1:], nil
		}
	}
	return nil, errors.New("missing method")
}

// parseMethod consumes the method options, the event and the channels.
func (a *arguments) parseMethod(args []string) error {
	a.opts = append(a.opts, ssid.WithMethod(a.method))
	var positional []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		value := func() (string, error) {
			i++
			if i == len(args) {
				return "", fmt.Errorf("%s needs a value", arg)
			}
			return args[i], nil
		}
		switch arg {
		case "-h", "--help":
			return errHelp
		case "--":
		case "-p", "-n":
			text, err := value()
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(text)
			if err != nil {
				return fmt.Errorf("%s: %w", arg, err)
			}
			if arg == "-p" {
				a.opts = append(a.opts, ssid.WithP(n))
			} else {
				a.opts = append(a.opts, ssid.WithOrder(n))
			}
		case "--dt", "--lb", "--ub":
			text, err := value()
			if err != nil {
				return err
			}
			x, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return fmt.Errorf("%s: %w", arg, err)
			}
			switch arg {
			case "--dt":
				a.opts = append(a.opts, ssid.WithDt(x))
			case "--lb":
				a.opts = append(a.opts, lowerBound(x))
			case "--ub":
				a.opts = append(a.opts, upperBound(x))
			}
		case "--window":
			a.opts = append(a.opts, ssid.WithWindowing(true))
		case "--overdamped":
			a.opts = append(a.opts, ssid.WithOverdamped(true))
		case "--table":
			a.table = true
		case "--intensity":
			text, err := value()
			if err != nil {
				return err
			}
			a.opts = append(a.opts, ssid.WithIntensity(signal.IntensityMeasure(text)))
		case "--out", "--plot-dir":
			text, err := value()
			if err != nil {
				return err
			}
			if arg == "--out" {
				a.out = text
			} else {
				a.plotDir = text
			}
		case "--inputs", "--outputs":
			text, err := value()
			if err != nil {
				return err
			}
			if arg == "--inputs" {
				a.inputs = channelList(text)
			} else {
				a.outputs = channelList(text)
			}
		case "-i", "-o":
			a.files = true
			var paths []string
			for i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++
				paths = append(paths, args[i])
			}
			if len(paths) == 0 {
				return fmt.Errorf("%s needs at least one file", arg)
			}
			if arg == "-i" {
				a.inputs = append(a.inputs, paths...)
			} else {
				a.outputs = append(a.outputs, paths...)
			}
		default:
			if strings.HasPrefix(arg, "-") && len(arg) > 1 {
				return fmt.Errorf("unknown option %s", arg)
			}
			positional = append(positional, arg)
		}
	}

	if a.files {
		if len(positional) > 0 {
			return fmt.Errorf("unexpected arguments %v", positional)
		}
		return nil
	}
	switch len(positional) {
	case 1:
		a.event = positional[0]
	case 3:
		a.event = positional[0]
		a.inputs = channelList(positional[1])
		a.outputs = channelList(positional[2])
	default:
		return errors.New("expected an event file, optionally followed by input and output channels")
	}
	return nil
}

func (a *arguments) check() error {
	if len(a.outputs) == 0 {
		return errors.New("no output channels")
	}
	for _, name := range a.writes {
		if !contains(writeNames, name) {
			return fmt.Errorf("unknown write %q", name)
		}
		if !a.method.StateSpace() && (name == "ABCD" || name == "c") {
			return fmt.Errorf("method %s cannot write %s", a.method, name)
		}
	}
	for _, name := range a.plots {
		if !contains(plotNames, name) {
			return fmt.Errorf("unknown plot %q", name)
		}
		switch {
		case a.method == ssid.MethodTest:
			return fmt.Errorf("method %s cannot plot", a.method)
		case name == "a" && a.method.StateSpace(), name == "s" && !a.method.StateSpace():
			return fmt.Errorf("method %s cannot plot %s", a.method, name)
		}
	}
	return nil
}

func lowerBound(lb float64) ssid.Option {
	return options.NoError(func(c *ssid.Config) { c.LowerBound = lb })
}

func upperBound(ub float64) ssid.Option {
	return options.NoError(func(c *ssid.Config) { c.UpperBound = ub })
}

// channelList splits "[1,2]", "1,2" or "1" into selectors.
func channelList(text string) []string {
	text = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(text), "["), "]")
	var res []string
	for _, field := range strings.Split(text, ",") {
		if field = strings.TrimSpace(field); field != "" {
			res = append(res, field)
		}
	}
	return res
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
