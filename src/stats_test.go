package dare

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatsRecoveryRateAndEmptyDefaults(t *testing.T) {
	var s Stats
	assert.Equal(t, 0.0, s.RecoveryRate())
	assert.Equal(t, 0.0, s.MeanDelay())
	assert.Equal(t, 0.0, s.VarianceDelay())
}

func TestStatsMeanAndVarianceDelay(t *testing.T) {
	s := Stats{
		totalDataPoints: 4,
		delays:          []int{0, 2, 4, 0},
		delayKnown:      []bool{true, true, true, false},
	}

	// mean of {0, 2, 4} = 2
	assert.InDelta(t, 2.0, s.MeanDelay(), 1e-9)
	// variance = ((0-2)^2 + (2-2)^2 + (4-2)^2) / 3 = 8/3
	assert.InDelta(t, 8.0/3.0, s.VarianceDelay(), 1e-9)
}

func TestStatsRecoveryRateUsesTotalDataPoints(t *testing.T) {
	s := Stats{Recovered: 3, totalDataPoints: 12}
	assert.InDelta(t, 25.0, s.RecoveryRate(), 1e-9)
}

func TestRecoverPhaseSumsToRecovered(t *testing.T) {
	dec := runPipeline(t, 2, 8, 2, 10, map[uint64]bool{3: true})
	stats := dec.Results()

	sum := 0
	for _, c := range stats.RecoverPhase {
		sum += c
	}
	assert.Equal(t, stats.Recovered, sum)
}
