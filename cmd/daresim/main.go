// Command daresim runs an encode/lossy-channel/decode pipeline entirely
// in-process from a YAML scenario file, or (with -list-params) prints every
// legal (R, W) combination and its generator-line degree.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	dare "github.com/loradare/dare/src"
)

// scenario describes one end-to-end run: a coding configuration, a
// data-unit count, and a fixed, named set of frame counters to drop, so a
// run is exactly reproducible.
type scenario struct {
	Name   string   `yaml:"name"`
	Size   int      `yaml:"size"`
	Rate   int      `yaml:"rate"`
	Window int      `yaml:"window"`
	RMax   int      `yaml:"rmax"`
	WMax   int      `yaml:"wmax"`
	Count  int      `yaml:"count"`
	Drop   []uint64 `yaml:"drop"`
}

func main() {
	DaresimMain()
}

// DaresimMain runs the daresim command against the current pflag.CommandLine
// and os.Args, split out from main so tests can drive it directly (see
// setupPflag in main_test.go).
func DaresimMain() {
	scenarioPath := pflag.StringP("scenario", "f", "", "Scenario YAML file to run.")
	listParams := pflag.Bool("list-params", false, "Print every legal (R, W) combination and stop.")
	verbose := pflag.BoolP("verbose", "v", false, "Enable debug logging.")
	version := pflag.Bool("version", false, "Print version information and exit.")
	help := pflag.Bool("help", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: daresim -f scenario.yaml\n       daresim -list-params\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		return
	}
	if *version {
		dare.PrintVersion(*verbose)
		return
	}

	if *listParams {
		printParams()
		return
	}

	if *scenarioPath == "" {
		pflag.Usage()
		os.Exit(1)
	}

	logger := dare.NewSilentLogger()
	if *verbose {
		logger = log.New(os.Stderr)
		logger.SetLevel(log.DebugLevel)
	}

	sc, err := loadScenario(*scenarioPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "daresim: %v\n", err)
		os.Exit(1)
	}

	if err := runScenario(sc, logger); err != nil {
		fmt.Fprintf(os.Stderr, "daresim: %v\n", err)
		os.Exit(1)
	}
}

func printParams() {
	fmt.Printf("%4s %4s %4s\n", "R", "W", "degree")
	for _, p := range dare.AllParams() {
		fmt.Printf("%4d %4d %4d\n", p.R, p.W, p.Degree())
	}
}

func loadScenario(path string) (scenario, error) {
	var sc scenario
	b, err := os.ReadFile(path)
	if err != nil {
		return sc, err
	}
	if err := yaml.Unmarshal(b, &sc); err != nil {
		return sc, err
	}
	return sc, nil
}

func runScenario(sc scenario, logger *log.Logger) error {
	drop := make(map[uint64]bool, len(sc.Drop))
	for _, fcnt := range sc.Drop {
		drop[fcnt] = true
	}

	enc := dare.NewEncoder()
	enc.SetLogger(logger)
	if err := enc.Configure(sc.RMax, sc.WMax, sc.Size); err != nil {
		return err
	}
	if !enc.Set(sc.Rate, sc.Window) {
		return fmt.Errorf("rate/window %d/%d exceeds configured maximum", sc.Rate, sc.Window)
	}

	dec := dare.NewDecoder()
	dec.SetLogger(logger)
	var losses []dare.PermanentLossEvent
	dec.OnPermanentLoss = func(ev dare.PermanentLossEvent) {
		losses = append(losses, ev)
	}
	if err := dec.Configure(sc.Size, sc.Count, sc.WMax, sc.RMax); err != nil {
		return err
	}

	dataUnit := make([]byte, sc.Size)
	for fcnt := uint64(1); fcnt <= uint64(sc.Count); fcnt++ {
		for i := range dataUnit {
			dataUnit[i] = byte(fcnt) + byte(i)
		}

		payload, err := enc.Encode(dataUnit, fcnt)
		if err != nil {
			return err
		}

		if drop[fcnt] {
			continue
		}

		if err := dec.Decode(payload, fcnt); err != nil {
			fmt.Printf("scenario %s: decode fcnt=%d: %v\n", sc.Name, fcnt, err)
		}
	}

	dec.Flush()
	stats := dec.Results()

	fmt.Printf("scenario:           %s\n", sc.Name)
	fmt.Printf("data units:         %d\n", sc.Count)
	fmt.Printf("dropped frames:     %d\n", len(sc.Drop))
	fmt.Printf("recovered:          %d\n", stats.Recovered)
	fmt.Printf("phase breakdown:    %v\n", stats.RecoverPhase)
	fmt.Printf("permanent losses:   %d\n", len(losses))
	fmt.Printf("recovery rate:      %.2f%%\n", stats.RecoveryRate())
	fmt.Printf("mean delay:         %.3f\n", stats.MeanDelay())

	return nil
}
