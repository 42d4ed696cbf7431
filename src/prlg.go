package dare

// prlg builds the length-W generator line for window size w, frame counter
// fcnt, and parity index r: a boolean vector with exactly Degree(w) ones,
// deterministically derived so sender and receiver compute the identical
// line without it ever going on the wire.
//
// w must be one of the enumerated window sizes (a power of two, or 0); the
// caller only ever consults the first windowSize = min(w, fcnt-1) entries.
func prlg(w int, fcnt uint64, r int) []bool {
	line := make([]bool, w)
	if w == 0 {
		return line
	}

	d := Degree(w)
	if d > w {
		d = w
	}

	seed := uint32(fcnt) + uint32(r<<3)
	index := uint32(fcnt)
	onesAdded := 0

	for onesAdded < d {
		candidate := prng(uint8(w), index, seed)

		// The retry walk below advances a local cursor, tmp, never the
		// outer index: only the final accepted candidate feeds the next
		// draw's starting index. This asymmetry is deliberate (see
		// DESIGN.md's Open Question 1) and must be preserved exactly for
		// sender/receiver interoperability.
		if line[candidate] {
			tmp := index
			for line[candidate] {
				tmp += 7
				candidate = prng(uint8(w), tmp, seed)
			}
		}

		line[candidate] = true
		index = uint32(candidate)
		onesAdded++
	}

	return line
}
