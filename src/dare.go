// Package dare implements the Data Recovery (DaRe) coding scheme: a
// forward-erasure-correction layer for constrained uplink telemetry
// (the canonical deployment is LoRaWAN class-A uplinks).
//
// Every transmitted frame carries the current data unit plus R-1 XOR parity
// checks computed over a sliding window of the last W data units. A receiver
// that misses frames can reconstruct them from later parity-bearing frames,
// by peeling known data units out of pending equations and, where peeling
// alone is not enough, row-reducing the remaining equations over GF(2).
//
// The package is transport-agnostic: it only produces and consumes fixed
// layout payloads. Carrying frames, detecting loss, and deciding what a data
// unit's bytes mean is the caller's job.
package dare

import "math"

// WMax is the hard ceiling on window size. No W tag can exceed it.
const WMax = 64

// DecBuf is the fixed capacity of the decoder's pending-equation buffer set.
const DecBuf = 50

const (
	w2dA = 0.75
	w2dB = -0.0625
	w2dC = 0.25
)

// Params is a coding-rate/window-size pair: the (R, W) coding parameters.
type Params struct {
	R int
	W int
}

// AllParams enumerates every legal (R, W) combination, in tag order. This is
// the parameter sweep original_source/dare/DaRe.cpp performed ad hoc when
// printing per-pair generator-line degrees; here it is a reusable pure
// function so cmd/daresim -list-params and tests share one source of truth.
func AllParams() []Params {
	var out []Params
	for _, r := range rDenominators {
		for _, w := range wSizes {
			out = append(out, Params{R: r, W: w})
		}
	}
	return out
}

// w2d computes the degree fraction used by the PRLG: small windows get dense
// checks (fraction near 1), large windows thin out toward 1/4.
func w2d(w int) float64 {
	return w2dA*math.Exp(w2dB*float64(w)) + w2dC
}

// Degree returns D, the number of ones the generator line for window size W
// carries, per the formula D = round(W * w2d(W)).
func (p Params) Degree() int {
	return int(math.Round(float64(p.W) * w2d(p.W)))
}

// Degree is the package-level form of Params.Degree, usable without building
// a Params value first.
func Degree(w int) int {
	return int(math.Round(float64(w) * w2d(w)))
}
