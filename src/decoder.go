package dare

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// Decoder reassembles a stream of Encoder frames, recovering data units lost
// in transit from the parity checks carried by later frames. It holds the
// entire frame horizon's worth of data units in memory (the caller decides
// how large a horizon makes sense) and a fixed DecBuf-sized set of pending
// equations it has not yet been able to solve.
//
// A Decoder is not reentrant: Decode must be called with strictly increasing
// fcnt, in the order frames actually arrived.
type Decoder struct {
	s               int
	wMax, rMax      int
	totalDataPoints int

	isReceived []bool
	received   [][]byte
	delay      []int
	delayKnown []bool

	lastFcnt     uint64
	tryToRecover bool

	recovered    int
	recoverPhase [5]int

	permanentLosses int
	lossReported    map[int64]bool

	// OnPermanentLoss, if set, is called the first (and only) time the
	// solver determines a data unit can never be recovered. It is called
	// synchronously from Decode or Flush.
	OnPermanentLoss func(PermanentLossEvent)

	buffers [DecBuf]bufferEntry

	logger *log.Logger
}

// NewDecoder returns a Decoder that must be Configure'd before use.
func NewDecoder() *Decoder {
	return &Decoder{logger: nopLogger}
}

// SetLogger installs a verbosity sink. A nil logger silences output again.
func (d *Decoder) SetLogger(l *log.Logger) {
	d.logger = useLogger(l)
}

// Configure allocates the decoder for a frame horizon of frameHorizon data
// units (1..frameHorizon), a data-unit size of s bytes, and the largest W
// and R the sender will ever use. wMax and rMax are this port's own
// addition beyond the wire format itself — sizing the buffer-entry
// generator lines and bounding the permanent-loss check both require
// knowing them up front (see DESIGN.md).
func (d *Decoder) Configure(s, frameHorizon, wMax, rMax int) error {
	if s <= 0 {
		return &ConfigError{Field: "s", Value: s, Msg: "must be positive"}
	}
	if frameHorizon <= 0 {
		return &ConfigError{Field: "frameHorizon", Value: frameHorizon, Msg: "must be positive"}
	}
	if wMax < 0 || wMax > WMax {
		return &ConfigError{Field: "wMax", Value: wMax, Msg: "must be in [0,64]"}
	}
	if rMax < 2 || rMax > 5 {
		return &ConfigError{Field: "rMax", Value: rMax, Msg: "must be in [2,5]"}
	}

	d.s = s
	d.totalDataPoints = frameHorizon
	d.wMax = wMax
	d.rMax = rMax

	d.isReceived = make([]bool, frameHorizon)
	d.received = make([][]byte, frameHorizon)
	d.delay = make([]int, frameHorizon)
	d.delayKnown = make([]bool, frameHorizon)

	for i := range d.buffers {
		d.buffers[i] = bufferEntry{}
	}

	d.lastFcnt = 0
	d.tryToRecover = false
	d.recovered = 0
	d.recoverPhase = [5]int{}
	d.permanentLosses = 0
	d.lossReported = make(map[int64]bool)

	return nil
}

// Decode processes one received frame at 1-based frame counter fcnt. fcnt
// must strictly increase between calls; violating that is a programmer
// error and panics rather than returning an error, matching the way Encode
// trusts its caller's counters. A malformed header or short payload is
// reported as an error and otherwise ignored — no state changes.
func (d *Decoder) Decode(payload []byte, fcnt uint64) error {
	if fcnt <= d.lastFcnt {
		panic(fmt.Sprintf("dare: non-monotonic fcnt: got %d, last was %d", fcnt, d.lastFcnt))
	}

	if len(payload) < 1 {
		return fmt.Errorf("%w: empty payload", ErrMalformedHeader)
	}
	r, w, err := decodeParams(payload[0])
	if err != nil {
		d.logger.Debug("malformed header", "fcnt", fcnt, "err", err)
		return err
	}
	expectedLen := 1 + d.s*r
	if len(payload) < expectedLen {
		return fmt.Errorf("%w: payload too short for R=1/%d", ErrMalformedHeader, r)
	}

	dIndex := int64(fcnt) - 1
	d.storeDataPoint(dIndex, payload[1:1+d.s], fcnt, PhaseDirect)

	if fcnt > d.lastFcnt+1 {
		d.tryToRecover = true
	}
	d.lastFcnt = fcnt

	if !d.tryToRecover {
		return nil
	}

	windowSize := w
	if int(fcnt-1) < windowSize {
		windowSize = int(fcnt - 1)
	}

	progress := false

	for ri := 0; ri < r-1; ri++ {
		line := prlg(w, fcnt, ri)
		parity := payload[1+d.s*(1+ri) : 1+d.s*(2+ri)]

		for j := 0; j < windowSize; j++ {
			if !line[j] {
				continue
			}
			idx := lineDataIndex(fcnt, j)
			if idx >= 0 && d.isReceived[idx] {
				line[j] = false
				xorInto(parity, d.received[idx])
			}
		}

		ones, lastPos := countLineOnes(line, windowSize)
		switch ones {
		case 0:
			// Every term in this check is already known: dead equation.
		case 1:
			d.storeDataPoint(lineDataIndex(fcnt, lastPos), parity, fcnt, PhaseSingleFresh)
			progress = true
		default:
			residual := make([]byte, d.s)
			copy(residual, parity)
			d.admit(fcnt, windowSize, line, residual)
		}
	}

	for progress {
		progress = false
		for i := range d.buffers {
			e := &d.buffers[i]
			if !e.inUse {
				continue
			}

			for j := 0; j < e.windowSize; j++ {
				if !e.line[j] {
					continue
				}
				idx := lineDataIndex(e.fcnt, j)
				if idx >= 0 && d.isReceived[idx] {
					e.line[j] = false
					xorInto(e.residual, d.received[idx])
				}
			}

			ones, lastPos := countLineOnes(e.line, e.windowSize)
			switch ones {
			case 0:
				d.evict(i)
			case 1:
				d.storeDataPoint(lineDataIndex(e.fcnt, lastPos), e.residual, fcnt, PhaseSinglePeeled)
				d.evict(i)
				progress = true
			}
		}
	}

	d.solveBuffers(false, fcnt)

	if d.recovered == int(fcnt) {
		d.tryToRecover = false
	}

	return nil
}

// Flush row-reduces every remaining pending equation one last time, with no
// reinsertion: whatever doesn't solve is permanently unrecoverable. Call it
// once the stream has ended. Calling it again is a no-op.
func (d *Decoder) Flush() {
	d.solveBuffers(true, uint64(d.totalDataPoints))
	d.tryToRecover = false
}

// Results returns a snapshot of recovery statistics gathered so far.
func (d *Decoder) Results() Stats {
	return Stats{
		Recovered:       d.recovered,
		RecoverPhase:    d.recoverPhase,
		PermanentLosses: d.permanentLosses,
		totalDataPoints: d.totalDataPoints,
		delays:          append([]int(nil), d.delay...),
		delayKnown:      append([]bool(nil), d.delayKnown...),
	}
}

// DataUnit returns data unit index (0-based) if it has been received or
// recovered, and whether it was available at all.
func (d *Decoder) DataUnit(index int) ([]byte, bool) {
	if index < 0 || index >= d.totalDataPoints || !d.isReceived[index] {
		return nil, false
	}
	out := make([]byte, d.s)
	copy(out, d.received[index])
	return out, true
}

// storeDataPoint records data at 0-based index index, charging it a
// recovery delay of currentFcnt - (index+1) and crediting phase's counter.
// Once stored, a data unit is never revised — a second store for the same
// index (which Decode's strict fcnt monotonicity should make unreachable
// for PhaseDirect, but which peeling or the solver could in principle
// re-derive) is silently ignored.
func (d *Decoder) storeDataPoint(index int64, data []byte, currentFcnt uint64, phase Phase) {
	if index < 0 || index >= int64(d.totalDataPoints) {
		return
	}
	i := int(index)
	if d.isReceived[i] {
		return
	}

	if d.received[i] == nil {
		d.received[i] = make([]byte, d.s)
	}
	copy(d.received[i], data)
	d.isReceived[i] = true
	d.delay[i] = int(currentFcnt) - (i + 1)
	d.delayKnown[i] = true

	d.recovered++
	d.recoverPhase[phase-1]++

	d.logger.Debug("recovered data unit", "index", i, "phase", int(phase), "delay", d.delay[i])
}

// reportPermanentLoss fires OnPermanentLoss at most once per index.
func (d *Decoder) reportPermanentLoss(index int64, fcnt uint64) {
	if d.lossReported[index] {
		return
	}
	d.lossReported[index] = true
	d.permanentLosses++

	d.logger.Warn("data unit permanently lost", "index", index, "fcnt", fcnt)
	if d.OnPermanentLoss != nil {
		d.OnPermanentLoss(PermanentLossEvent{Index: index, DetectedAtFcnt: fcnt})
	}
}
