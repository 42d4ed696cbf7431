package main

import (
	"os"
	"testing"

	"github.com/spf13/pflag"

	dare "github.com/loradare/dare/src"
)

// setupPflag resets the global flag set between test-driven Main() calls,
// since pflag (like the standard flag package) assumes Parse is called once.
func setupPflag(args []string) {
	os.Args = args
	pflag.CommandLine = pflag.NewFlagSet(args[0], pflag.ExitOnError)
}

func TestDaresimListParams(t *testing.T) {
	dare.AssertOutputContains(t, func() {
		setupPflag([]string{"daresim", "--list-params"})
		DaresimMain()
	}, "degree")
}

func TestDaresimRunsLosslessScenario(t *testing.T) {
	dare.AssertOutputContains(t, func() {
		setupPflag([]string{"daresim", "-f", "../../testdata/scenarios/lossless.yaml"})
		DaresimMain()
	}, "recovered:          10")
}

func TestDaresimVersion(t *testing.T) {
	dare.AssertOutputContains(t, func() {
		setupPflag([]string{"daresim", "--version"})
		DaresimMain()
	}, "dare - Version")
}
