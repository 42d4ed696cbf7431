package dare

// bitRow is one row of the GF(2) coefficient matrix, word-packed.
type bitRow []uint64

func newBitRow(width int) bitRow {
	return make(bitRow, (width+63)/64)
}

func (r bitRow) get(col int) bool {
	return r[col/64]&(1<<uint(col%64)) != 0
}

func (r bitRow) set(col int) {
	r[col/64] |= 1 << uint(col%64)
}

func (r bitRow) clear(col int) {
	r[col/64] &^= 1 << uint(col%64)
}

func (r bitRow) xor(other bitRow) {
	for i := range r {
		r[i] ^= other[i]
	}
}

// countOnes reports how many bits are set in r[:width], and the column of
// the last one found (meaningful only when the count is 1).
func (r bitRow) countOnes(width int) (ones, lastCol int) {
	for c := 0; c < width; c++ {
		if r.get(c) {
			ones++
			lastCol = c
		}
	}
	return ones, lastCol
}

// firstLastSet reports the first and last set columns in r[:width]. found is
// false for an all-zero row.
func (r bitRow) firstLastSet(width int) (first, last int, found bool) {
	first, last = -1, -1
	for c := 0; c < width; c++ {
		if r.get(c) {
			if first == -1 {
				first = c
			}
			last = c
		}
	}
	return first, last, first != -1
}

func (r bitRow) toBoolSlice(width int) []bool {
	out := make([]bool, width)
	for c := 0; c < width; c++ {
		out[c] = r.get(c)
	}
	return out
}

// solveBuffers row-reduces every pending equation over GF(2), extracting
// every data unit that reduces to a single unknown, then — unless flush is
// set — reinserts whatever remains as fresh buffer entries (or reports a
// permanent loss for a remainder that references data no longer
// receivable). currentFcnt is the frame counter to charge recovery delay
// against; Flush passes the configured frame horizon instead of a live fcnt,
// mirroring original_source's displayResults() call convention.
//
// Column j of the matrix corresponds to data-unit index oldest+j, where
// oldest is the smallest index referenced by any pending equation. Columns
// are filled from lineDataIndex, which already applies the "pos+1 behind
// the frame" offset, so a single-bit row at column c yields data-unit index
// oldest+c, and reinsertion uses the same convention. See DESIGN.md's entry
// for this file.
func (d *Decoder) solveBuffers(flush bool, currentFcnt uint64) {
	var active []int
	for i := range d.buffers {
		if d.buffers[i].inUse {
			active = append(active, i)
		}
	}
	height := len(active)
	if height == 0 {
		return
	}
	if height == 1 {
		if flush {
			d.evict(active[0])
		}
		return
	}

	var oldest, newest int64
	first := true
	for _, slot := range active {
		e := &d.buffers[slot]
		for p := 0; p < e.windowSize; p++ {
			if !e.line[p] {
				continue
			}
			k := lineDataIndex(e.fcnt, p)
			if first || k < oldest {
				oldest = k
				first = false
			}
			if k > newest {
				newest = k
			}
		}
	}
	width := int(newest-oldest) + 1

	A := make([]bitRow, height)
	X := make([][]byte, height)
	for i, slot := range active {
		e := &d.buffers[slot]
		row := newBitRow(width)
		for p := 0; p < e.windowSize; p++ {
			if !e.line[p] {
				continue
			}
			k := lineDataIndex(e.fcnt, p)
			row.set(int(k - oldest))
		}
		A[i] = row
		xs := make([]byte, d.s)
		copy(xs, e.residual)
		X[i] = xs
	}

	for _, slot := range active {
		d.evict(slot)
	}

	i, j := 0, 0
	for i < height && j < width {
		pivot := -1
		for a := i; a < height; a++ {
			if A[a].get(j) {
				pivot = a
				break
			}
		}
		if pivot == -1 {
			j++
			continue
		}
		A[i], A[pivot] = A[pivot], A[i]
		X[i], X[pivot] = X[pivot], X[i]

		for a := 0; a < height; a++ {
			if a != i && A[a].get(j) {
				A[a].xor(A[i])
				xorInto(X[a], X[i])
			}
		}
		i++
		j++
	}

	phase := PhaseSolvedInline
	if flush {
		phase = PhaseSolvedFlush
	}

	for progress := true; progress; {
		progress = false
		for idx := 0; idx < height; idx++ {
			ones, col := A[idx].countOnes(width)
			if ones != 1 {
				continue
			}
			dataIdx := oldest + int64(col)
			d.storeDataPoint(dataIdx, X[idx], currentFcnt, phase)

			A[idx].clear(col)
			for a := 0; a < height; a++ {
				if a != idx && A[a].get(col) {
					A[a].clear(col)
					xorInto(X[a], X[idx])
				}
			}
			progress = true
		}
	}

	if flush {
		return
	}

	oldestReceivable := int64(0)
	if int64(currentFcnt)-1 > int64(d.wMax) {
		oldestReceivable = int64(currentFcnt) - 1 - int64(d.wMax)
	}

	for idx := 0; idx < height; idx++ {
		firstOne, lastOne, found := A[idx].firstLastSet(width)
		if !found {
			continue
		}

		if oldest+int64(firstOne) < oldestReceivable {
			d.reportPermanentLoss(oldest+int64(firstOne), currentFcnt)
			continue
		}

		newFcnt := uint64(oldest + int64(lastOne) + 2)
		row := A[idx].toBoolSlice(width)
		line := reverseRowIntoGeneratorLine(row, firstOne, lastOne)
		d.admit(newFcnt, lastOne-firstOne+1, line, X[idx])
	}
}
