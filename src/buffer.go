package dare

// bufferEntry is one pending parity equation: residual = XOR of the still-
// unknown data units selected by line's first windowSize bits. Value type,
// held inline in Decoder.buffers so admission/eviction never allocates.
type bufferEntry struct {
	inUse      bool
	fcnt       uint64
	windowSize int
	line       []bool // length wMax; only [0,windowSize) is meaningful
	residual   []byte // length s
}

// admit installs entry into the buffer set, reusing the first unused slot or
// evicting the entry with the smallest fcnt (the one referencing the oldest
// data units, and so least likely ever to be solved) if the set is full.
// Eviction is silent per spec §4.6/§7 BufferSaturation — not surfaced to the
// caller.
func (d *Decoder) admit(fcnt uint64, windowSize int, line []bool, residual []byte) {
	slot := -1
	for i := range d.buffers {
		if !d.buffers[i].inUse {
			slot = i
			break
		}
	}

	if slot == -1 {
		oldest := 0
		for i := range d.buffers {
			if d.buffers[i].fcnt < d.buffers[oldest].fcnt {
				oldest = i
			}
		}
		slot = oldest
		d.logger.Debug("buffer saturated, evicting oldest", "evictedFcnt", d.buffers[slot].fcnt)
	}

	e := &d.buffers[slot]
	e.inUse = true
	e.fcnt = fcnt
	e.windowSize = windowSize
	if e.line == nil {
		e.line = make([]bool, d.wMax)
	}
	for i := range e.line {
		e.line[i] = i < len(line) && line[i]
	}
	if e.residual == nil {
		e.residual = make([]byte, d.s)
	}
	copy(e.residual, residual)
}

// evict marks slot i unused. Buffers are never shrunk — only the flag moves.
func (d *Decoder) evict(i int) {
	d.buffers[i].inUse = false
}

// inUseCount reports how many buffer slots currently hold a pending
// equation (testable property: this must never exceed DecBuf).
func (d *Decoder) inUseCount() int {
	n := 0
	for i := range d.buffers {
		if d.buffers[i].inUse {
			n++
		}
	}
	return n
}

// reverseRowIntoGeneratorLine builds the generator line for a buffer entry
// being (re)admitted from a reduced solver row spanning row[firstOne:lastOne+1].
// Index 0 of the result is the newest referenced data unit, matching the
// convention prlg/Encode use (index j means "j+1 behind the frame"); the
// solver's row is indexed oldest-relative and increasing, so it is reversed
// into place. Only the solver's reinsertion path calls it: a fresh parity
// check's line is already in this convention and is admitted as-is, so both
// admission paths store equations of the same shape (see DESIGN.md).
func reverseRowIntoGeneratorLine(row []bool, firstOne, lastOne int) []bool {
	windowSize := lastOne - firstOne + 1
	line := make([]bool, windowSize)
	for j := 0; j < windowSize; j++ {
		line[windowSize-1-j] = row[firstOne+j]
	}
	return line
}
