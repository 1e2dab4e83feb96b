package committees

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestWeightThresholdToBuildQuorum tests the supermajority threshold
// required to certify an output.
func TestWeightThresholdToBuildQuorum(t *testing.T) {
	for i := 1; i <= 302; i++ {
		threshold := WeightThresholdToBuildQuorum(uint64(i))

		boundaryValue := float64(i) * 2.0 / 3.0
		assert.True(t, boundaryValue < float64(threshold))
		assert.False(t, boundaryValue < float64(threshold-1))
	}
	assert.Equal(t, uint64(6667), WeightThresholdToBuildQuorum(10000))
}

