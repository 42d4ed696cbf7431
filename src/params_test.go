package dare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestHeaderRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rTag := byte(rapid.IntRange(0, 3).Draw(t, "rTag"))
		wTag := byte(rapid.IntRange(0, 7).Draw(t, "wTag"))

		header := EncodeHeader(rTag, wTag)
		gotR, gotW := DecodeHeader(header)

		assert.Equal(t, rTag, gotR)
		assert.Equal(t, wTag, gotW)
	})
}

func TestDecodeParamsRejectsUnknownTags(t *testing.T) {
	header := EncodeHeader(0x0f, 0x0f)
	_, _, err := decodeParams(header)
	assert.ErrorIs(t, err, ErrMalformedHeader)
}

func TestAllParamsCoversEveryTag(t *testing.T) {
	all := AllParams()
	assert.Len(t, all, len(rDenominators)*len(wSizes))

	seen := map[Params]bool{}
	for _, p := range all {
		seen[p] = true
	}
	for _, r := range rDenominators {
		for _, w := range wSizes {
			assert.True(t, seen[Params{R: r, W: w}])
		}
	}
}

func TestParamsDegreeMatchesPackageFunc(t *testing.T) {
	for _, w := range wSizes {
		p := Params{R: 2, W: w}
		assert.Equal(t, Degree(w), p.Degree())
	}
}
