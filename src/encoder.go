package dare

import (
	"github.com/charmbracelet/log"
)

// Encoder maintains a circular history of recent data units and assembles
// the per-frame payload: header, current data unit, and R-1 parity checks.
// It is not reentrant and owns no transport; the caller sends the bytes
// Encode returns however it likes.
type Encoder struct {
	rMax, wMax int
	s          int

	r, w       int
	rTag, wTag byte

	history [][]byte // wMax slots of s bytes each, indexed fcnt-1 mod wMax
	payload []byte   // scratch sized for the worst case: 1 + 2*s*rMax

	logger *log.Logger
}

// NewEncoder returns an unconfigured Encoder. Configure must be called
// before Set or Encode.
func NewEncoder() *Encoder {
	return &Encoder{logger: nopLogger}
}

// SetLogger installs a verbosity sink. A nil logger silences output again.
func (e *Encoder) SetLogger(l *log.Logger) {
	e.logger = useLogger(l)
}

// Configure allocates the history ring and payload scratch for the worst
// case the encoder will ever see: window size wMax, rate denominator rMax,
// data units of s bytes.
func (e *Encoder) Configure(rMax, wMax, s int) error {
	if rMax < 2 || rMax > 5 {
		return &ConfigError{Field: "rMax", Value: rMax, Msg: "must be in [2,5]"}
	}
	if wMax < 0 || wMax > WMax {
		return &ConfigError{Field: "wMax", Value: wMax, Msg: "must be in [0,64]"}
	}
	if s <= 0 {
		return &ConfigError{Field: "s", Value: s, Msg: "must be positive"}
	}

	e.rMax = rMax
	e.wMax = wMax
	e.s = s

	e.history = make([][]byte, wMax)
	for i := range e.history {
		e.history[i] = make([]byte, s)
	}

	e.payload = make([]byte, 1+2*s*rMax)

	return nil
}

// Set selects the (R, W) this encoder will use for subsequent Encode calls.
// It reports false, without mutating state, if either value exceeds the
// maximum given to Configure.
func (e *Encoder) Set(r, w int) bool {
	rTag, rOK := rTagByDenominator[r]
	wTag, wOK := wTagBySize[w]
	if !rOK || !wOK || r > e.rMax || w > e.wMax {
		e.logger.Debug("encoder set rejected", "r", r, "w", w, "rMax", e.rMax, "wMax", e.wMax)
		return false
	}

	e.r, e.w = r, w
	e.rTag, e.wTag = rTag, wTag
	return true
}

// Encode produces the payload for data unit dataUnit at 1-based frame
// counter fcnt: header || d[fcnt] || x_0 ... x_{R-2}. fcnt must be >= 1; an
// fcnt of 0 is a programmer error (undefined per spec, not validated here
// for the same reason Decode's monotonicity check is the only enforced
// invariant — the core trusts its caller's counters).
func (e *Encoder) Encode(dataUnit []byte, fcnt uint64) ([]byte, error) {
	if len(dataUnit) != e.s {
		return nil, &ConfigError{Field: "dataUnit", Value: len(dataUnit), Msg: "must match configured data-unit size"}
	}

	payloadSize := 1 + e.s*e.r
	payload := e.payload[:payloadSize]
	for i := range payload {
		payload[i] = 0
	}

	payload[0] = EncodeHeader(e.rTag, e.wTag)
	copy(payload[1:1+e.s], dataUnit)

	windowSize := e.w
	if int(fcnt-1) < windowSize {
		windowSize = int(fcnt - 1)
	}

	for r := 0; r < e.r-1; r++ {
		line := prlg(e.w, fcnt, r)
		parity := payload[1+e.s*(1+r) : 1+e.s*(2+r)]

		for j := 1; j <= windowSize; j++ {
			if !line[j-1] {
				continue
			}
			slot := e.history[historySlot(fcnt, j, e.wMax)]
			for b := 0; b < e.s; b++ {
				parity[b] ^= slot[b]
			}
		}
	}

	if e.wMax > 0 {
		copy(e.history[historySlot(fcnt, 0, e.wMax)], dataUnit)
	}

	e.logger.Debug("encoded frame", "fcnt", fcnt, "r", e.r, "w", e.w, "size", payloadSize)

	return payload, nil
}

// historySlot returns the ring index of the data unit offset j behind frame
// fcnt (j=0 means the current frame itself, about to be written).
func historySlot(fcnt uint64, j int, wMax int) int {
	return int((fcnt - 1 - uint64(j)) % uint64(wMax))
}
