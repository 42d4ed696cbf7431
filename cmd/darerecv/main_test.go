package main

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	dare "github.com/loradare/dare/src"
)

// setupPflag resets the global flag set between test-driven Main() calls,
// since pflag (like the standard flag package) assumes Parse is called once.
func setupPflag(args []string) {
	os.Args = args
	pflag.CommandLine = pflag.NewFlagSet(args[0], pflag.ExitOnError)
}

// writeTestFrames encodes count data units at the given rate/window and
// writes them to path in daresend's wire format, for a darerecv test to
// read back without depending on the daresend binary.
func writeTestFrames(t *testing.T, path string, size, rate, window, count int) {
	t.Helper()

	enc := dare.NewEncoder()
	require.NoError(t, enc.Configure(5, 64, size))
	require.True(t, enc.Set(rate, window))

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	dataUnit := make([]byte, size)
	for fcnt := uint64(1); fcnt <= uint64(count); fcnt++ {
		for i := range dataUnit {
			dataUnit[i] = byte(fcnt) + byte(i)
		}

		payload, err := enc.Encode(dataUnit, fcnt)
		require.NoError(t, err)

		var header [12]byte
		binary.BigEndian.PutUint64(header[0:8], fcnt)
		binary.BigEndian.PutUint32(header[8:12], uint32(len(payload)))
		_, err = f.Write(header[:])
		require.NoError(t, err)
		_, err = f.Write(payload)
		require.NoError(t, err)
	}
}

func TestDarerecvRecoversLosslessStream(t *testing.T) {
	file := filepath.Join(t.TempDir(), "frames.bin")
	writeTestFrames(t, file, 4, 2, 8, 10)

	dare.AssertOutputContains(t, func() {
		setupPflag([]string{"darerecv", "-i", file, "-s", "4", "-n", "10", "-l", "0", "--verify"})
		DarerecvMain()
	}, "recovery rate:      100.00%")
}

func TestDarerecvVersion(t *testing.T) {
	dare.AssertOutputContains(t, func() {
		setupPflag([]string{"darerecv", "--version"})
		DarerecvMain()
	}, "dare - Version")
}
