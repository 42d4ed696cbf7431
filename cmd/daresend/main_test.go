package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dare "github.com/loradare/dare/src"
)

// setupPflag resets the global flag set between test-driven Main() calls,
// since pflag (like the standard flag package) assumes Parse is called once.
func setupPflag(args []string) {
	os.Args = args
	pflag.CommandLine = pflag.NewFlagSet(args[0], pflag.ExitOnError)
}

func TestDaresendWritesFramesToFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "frames.bin")

	dare.AssertOutputContains(t, func() {
		setupPflag([]string{"daresend", "-n", "5", "-s", "4", "-o", file})
		DaresendMain()
	}, "wrote 5 frames")

	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestDaresendVersion(t *testing.T) {
	dare.AssertOutputContains(t, func() {
		setupPflag([]string{"daresend", "--version"})
		DaresendMain()
	}, "dare - Version")
}
