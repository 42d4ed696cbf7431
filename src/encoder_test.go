package dare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEncoder(t *testing.T, rMax, wMax, s int) *Encoder {
	t.Helper()
	e := NewEncoder()
	require.NoError(t, e.Configure(rMax, wMax, s))
	require.True(t, e.Set(2, wMax))
	return e
}

func TestEncoderRejectsBadConfig(t *testing.T) {
	e := NewEncoder()
	assert.Error(t, e.Configure(1, 8, 2))
	assert.Error(t, e.Configure(6, 8, 2))
	assert.Error(t, e.Configure(2, 65, 2))
	assert.Error(t, e.Configure(2, 8, 0))
}

func TestEncoderSetRejectsOutOfRange(t *testing.T) {
	e := NewEncoder()
	require.NoError(t, e.Configure(2, 8, 2))
	assert.False(t, e.Set(3, 8))
	assert.False(t, e.Set(2, 16))
	assert.False(t, e.Set(7, 8))
}

func TestEncodeHeaderAndLength(t *testing.T) {
	e := newTestEncoder(t, 5, 8, 2)

	payload, err := e.Encode([]byte{1, 2}, 1)
	require.NoError(t, err)
	require.Len(t, payload, 1+2*2)

	rTag, wTag := DecodeHeader(payload[0])
	r, rOK := rFromTag(rTag)
	w, wOK := wFromTag(wTag)
	require.True(t, rOK)
	require.True(t, wOK)
	assert.Equal(t, 2, r)
	assert.Equal(t, 8, w)

	assert.Equal(t, []byte{1, 2}, payload[1:3])
}

func TestEncodeFirstFrameParityIsZero(t *testing.T) {
	// fcnt=1: windowSize clamps to 0, so every parity slot is all zeros.
	e := newTestEncoder(t, 5, 8, 2)

	payload, err := e.Encode([]byte{0xAA, 0xBB}, 1)
	require.NoError(t, err)

	parity := payload[3:5]
	assert.Equal(t, []byte{0, 0}, parity)
}

func TestEncodeRejectsWrongSizedDataUnit(t *testing.T) {
	e := newTestEncoder(t, 5, 8, 2)
	_, err := e.Encode([]byte{1, 2, 3}, 1)
	assert.Error(t, err)
}

func TestEncodeWithZeroWindow(t *testing.T) {
	e := NewEncoder()
	require.NoError(t, e.Configure(2, 0, 2))
	require.True(t, e.Set(2, 0))

	for fcnt := uint64(1); fcnt <= 5; fcnt++ {
		payload, err := e.Encode([]byte{byte(fcnt), 0}, fcnt)
		require.NoError(t, err)
		assert.Equal(t, []byte{0, 0}, payload[3:5], "W=0 degenerates to systematic-only")
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	a := newTestEncoder(t, 5, 8, 2)
	b := newTestEncoder(t, 5, 8, 2)

	for fcnt := uint64(1); fcnt <= 20; fcnt++ {
		data := []byte{byte(fcnt), byte(fcnt * 3)}
		pa, err := a.Encode(data, fcnt)
		require.NoError(t, err)
		pb, err := b.Encode(data, fcnt)
		require.NoError(t, err)
		assert.Equal(t, pa, pb)
	}
}
