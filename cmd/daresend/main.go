// Command daresend encodes a stream of synthetic data units with the dare
// coding scheme and writes the resulting frames to stdout (or -out), one
// length-prefixed record per frame: a uint64 fcnt, a uint32 payload length,
// then the payload itself. darerecv reads that same format back.
package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	dare "github.com/loradare/dare/src"
)

func main() {
	DaresendMain()
}

// DaresendMain runs the daresend command against the current pflag.CommandLine
// and os.Args, split out from main so tests can drive it directly (see
// setupPflag in main_test.go).
func DaresendMain() {
	size := pflag.IntP("size", "s", 16, "Data-unit size in bytes.")
	rate := pflag.IntP("rate", "r", 2, "Coding rate denominator R (2-5).")
	window := pflag.IntP("window", "w", 8, "Window size W (0,1,2,4,8,16,32,64).")
	rMax := pflag.Int("rmax", 5, "Maximum rate denominator to allocate for.")
	wMax := pflag.Int("wmax", 64, "Maximum window size to allocate for.")
	count := pflag.IntP("count", "n", 1000, "Number of data units to send.")
	out := pflag.StringP("out", "o", "", "Output file (default stdout).")
	verbose := pflag.BoolP("verbose", "v", false, "Enable debug logging.")
	version := pflag.Bool("version", false, "Print version information and exit.")
	help := pflag.Bool("help", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: daresend [flags]\n\n")
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

	logger := dare.NewSilentLogger()
	if *verbose {
		logger = log.New(os.Stderr)
		logger.SetLevel(log.DebugLevel)
	}

	w := io.Writer(os.Stdout)
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "daresend: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	enc := dare.NewEncoder()
	enc.SetLogger(logger)
	if err := enc.Configure(*rMax, *wMax, *size); err != nil {
		fmt.Fprintf(os.Stderr, "daresend: %v\n", err)
		os.Exit(1)
	}
	if !enc.Set(*rate, *window) {
		fmt.Fprintf(os.Stderr, "daresend: rate/window %d/%d exceeds configured maximum\n", *rate, *window)
		os.Exit(1)
	}

	dataUnit := make([]byte, *size)
	for fcnt := uint64(1); fcnt <= uint64(*count); fcnt++ {
		fillDataUnit(dataUnit, fcnt)

		payload, err := enc.Encode(dataUnit, fcnt)
		if err != nil {
			fmt.Fprintf(os.Stderr, "daresend: encode fcnt=%d: %v\n", fcnt, err)
			os.Exit(1)
		}

		if err := writeRecord(w, fcnt, payload); err != nil {
			fmt.Fprintf(os.Stderr, "daresend: write fcnt=%d: %v\n", fcnt, err)
			os.Exit(1)
		}
	}

	// With no -out the frame stream itself is on stdout, so the summary goes
	// to stderr to keep that stream readable by darerecv.
	summary := io.Writer(os.Stdout)
	if *out == "" {
		summary = os.Stderr
	}
	fmt.Fprintf(summary, "wrote %d frames (%d-byte data units, R=%d, W=%d)\n", *count, *size, *rate, *window)
}

// fillDataUnit deterministically derives data-unit bytes from fcnt, so a
// downstream darerecv -verify pass can tell a correctly recovered unit from
// a corrupted one without any side channel.
func fillDataUnit(dataUnit []byte, fcnt uint64) {
	for i := range dataUnit {
		dataUnit[i] = byte(fcnt) + byte(i)
	}
}

func writeRecord(w io.Writer, fcnt uint64, payload []byte) error {
	var header [12]byte
	binary.BigEndian.PutUint64(header[0:8], fcnt)
	binary.BigEndian.PutUint32(header[8:12], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}
