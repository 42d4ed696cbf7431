// Command darerecv reads daresend's length-prefixed frame stream, simulates
// a lossy channel by dropping frames at random, feeds survivors through the
// dare decoder, and reports recovery statistics.
package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	dare "github.com/loradare/dare/src"
)

func main() {
	DarerecvMain()
}

// DarerecvMain runs the darerecv command against the current pflag.CommandLine
// and os.Args, split out from main so tests can drive it directly (see
// setupPflag in main_test.go).
func DarerecvMain() {
	size := pflag.IntP("size", "s", 16, "Data-unit size in bytes, must match the sender.")
	rMax := pflag.Int("rmax", 5, "Maximum rate denominator, must match the sender.")
	wMax := pflag.Int("wmax", 64, "Maximum window size, must match the sender.")
	count := pflag.IntP("count", "n", 1000, "Number of data units the sender sent.")
	in := pflag.StringP("in", "i", "", "Input file (default stdin).")
	loss := pflag.Float64P("loss", "l", 0.1, "Per-frame probability of simulated loss, in [0,1).")
	verify := pflag.Bool("verify", false, "Check recovered bytes against daresend's deterministic pattern.")
	verbose := pflag.BoolP("verbose", "v", false, "Enable debug logging.")
	version := pflag.Bool("version", false, "Print version information and exit.")
	help := pflag.Bool("help", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: darerecv [flags]\n\n")
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

	r := io.Reader(os.Stdin)
	if *in != "" {
		f, err := os.Open(*in)
		if err != nil {
			fmt.Fprintf(os.Stderr, "darerecv: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		r = f
	}

	dec := dare.NewDecoder()
	dec.SetLogger(logger)
	dec.OnPermanentLoss = func(ev dare.PermanentLossEvent) {
		fmt.Fprintf(os.Stderr, "darerecv: data unit %d permanently lost (detected at fcnt %d)\n", ev.Index, ev.DetectedAtFcnt)
	}
	if err := dec.Configure(*size, *count, *wMax, *rMax); err != nil {
		fmt.Fprintf(os.Stderr, "darerecv: %v\n", err)
		os.Exit(1)
	}

	dropped := 0
	received := 0
	for {
		fcnt, payload, err := readRecord(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "darerecv: %v\n", err)
			os.Exit(1)
		}

		if rand.Float64() < *loss {
			dropped++
			continue
		}
		received++

		if err := dec.Decode(payload, fcnt); err != nil {
			fmt.Fprintf(os.Stderr, "darerecv: decode fcnt=%d: %v\n", fcnt, err)
		}
	}

	dec.Flush()

	stats := dec.Results()
	fmt.Printf("frames received:   %d\n", received)
	fmt.Printf("frames dropped:     %d\n", dropped)
	fmt.Printf("data units recovered (all phases): %d\n", stats.Recovered)
	fmt.Printf("phase breakdown (direct, single-fresh, single-peeled, solved-inline, solved-flush): %v\n", stats.RecoverPhase)
	fmt.Printf("permanent losses:   %d\n", stats.PermanentLosses)
	fmt.Printf("recovery rate:      %.2f%%\n", stats.RecoveryRate())
	fmt.Printf("mean delay:         %.3f frames\n", stats.MeanDelay())
	fmt.Printf("delay variance:     %.3f\n", stats.VarianceDelay())

	if *verify {
		mismatches := 0
		for i := 0; i < *count; i++ {
			data, ok := dec.DataUnit(i)
			if !ok {
				continue
			}
			fcnt := uint64(i + 1)
			for b, got := range data {
				want := byte(fcnt) + byte(b)
				if got != want {
					mismatches++
					break
				}
			}
		}
		fmt.Printf("verify: %d mismatches out of %d available data units\n", mismatches, stats.Recovered)
	}
}

func readRecord(r io.Reader) (fcnt uint64, payload []byte, err error) {
	var header [12]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, nil, err
	}

	fcnt = binary.BigEndian.Uint64(header[0:8])
	length := binary.BigEndian.Uint32(header[8:12])

	payload = make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, err
	}

	return fcnt, payload, nil
}
