package cashback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputePercent(t *testing.T) {
	// 5% of Rs 1000 (100000 paise) = Rs 50
	assert.Equal(t, int64(5000), Compute(100000, "PERCENT", 5, 0))
}

func TestComputePercentCapped(t *testing.T) {
	// Rs 10000 order at 5% = Rs 500, capped at Rs 300
	assert.Equal(t, int64(30000), Compute(1000000, "PERCENT", 5, 30000))
}

func TestComputePercentUnderCap(t *testing.T) {
	assert.Equal(t, int64(5000), Compute(100000, "PERCENT", 5, 30000))
}

func TestComputeFlat(t *testing.T) {
	// Flat Rs 75 regardless of order value
	assert.Equal(t, int64(7500), Compute(100, "FLAT", 75, 0))
}

func TestComputeFlatCapped(t *testing.T) {
	assert.Equal(t, int64(5000), Compute(100, "FLAT", 75, 5000))
}

func TestComputeRoundsHalfUp(t *testing.T) {
	// 2.5% of 101 paise = 2.525 paise -> 3
	assert.Equal(t, int64(3), Compute(101, "PERCENT", 2.5, 0))
	// 2.5% of 98 paise = 2.45 paise -> 2
	assert.Equal(t, int64(2), Compute(98, "PERCENT", 2.5, 0))
	// exact half rounds up: 1% of 50 paise = 0.5 -> 1
	assert.Equal(t, int64(1), Compute(50, "PERCENT", 1, 0))
}

func TestComputeNegativeClampsToZero(t *testing.T) {
	assert.Equal(t, int64(0), Compute(100000, "PERCENT", -5, 0))
}

func TestCommission(t *testing.T) {
	assert.Equal(t, int64(8000), Commission(100000, 8))
	assert.Equal(t, int64(0), Commission(100000, -1))
}

func TestRupeesToPaise(t *testing.T) {
	assert.Equal(t, int64(2000000), RupeesToPaise(20000))
	assert.Equal(t, int64(10050), RupeesToPaise(100.495)) // half-up at paise
	assert.Equal(t, int64(99), RupeesToPaise(0.994))
}
