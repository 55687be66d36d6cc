package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateHoldCashflowScore(t *testing.T) {
	tests := []struct {
		name     string
		cashflow float64
		units    int
		expected int
	}{
		{"at target", 200, 1, 8},
		{"just under target", 199.99, 1, 7},
		{"mid bucket", 160, 1, 6},
		{"low positive", 10, 1, 1},
		{"zero", 0, 1, 1},
		{"negative", -1, 1, 0},
		{"duplex at per-unit target", 400, 2, 8},
		{"duplex below per-unit target", 300, 2, 3},
		{"zero units treated as one", 200, 0, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CalculateHoldCashflowScore(tt.cashflow, tt.units))
		})
	}
}

func TestCalculateHoldRentRatioScore(t *testing.T) {
	assert.Equal(t, 2, CalculateHoldRentRatioScore(0.01))
	assert.Equal(t, 2, CalculateHoldRentRatioScore(0.015))
	assert.Equal(t, 1, CalculateHoldRentRatioScore(0.008))
	assert.Equal(t, 0, CalculateHoldRentRatioScore(0.0079))
	assert.Equal(t, 0, CalculateHoldRentRatioScore(0))
}

func TestCalculateFlipARVRatioScore(t *testing.T) {
	tests := []struct {
		name     string
		ratio    float64
		expected int
	}{
		{"at target", 0.65, 10},
		{"below target", 0.50, 10},
		{"one step above", 0.685, 9},
		{"two steps above", 0.72, 8},
		{"deep above", 0.90, 2},
		{"floor", 2.0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CalculateFlipARVRatioScore(tt.ratio))
		})
	}

	t.Run("monotonic non-increasing", func(t *testing.T) {
		prev := CalculateFlipARVRatioScore(0.40)
		for ratio := 0.40; ratio <= 1.50; ratio += 0.005 {
			score := CalculateFlipARVRatioScore(ratio)
			assert.LessOrEqual(t, score, prev, "ratio %.3f", ratio)
			prev = score
		}
	})
}

func TestCalculateFlipEquityScore(t *testing.T) {
	assert.Equal(t, 2, CalculateFlipEquityScore(75000))
	assert.Equal(t, 1, CalculateFlipEquityScore(60000))
	assert.Equal(t, 0, CalculateFlipEquityScore(59999))
	assert.Equal(t, 0, CalculateFlipEquityScore(-10000))
}

func TestCalculateHoldBreakdown(t *testing.T) {
	b := CalculateHoldBreakdown(2500, 200000, 30000, 300000, 1)

	// cashflow ~256/unit -> 8, rent ratio ~1.087% -> 2, total clamped at 10
	assert.Equal(t, 8, b.CashflowScore)
	assert.Equal(t, 2, b.RentRatioScore)
	assert.Equal(t, 10, b.TotalScore)
}

func TestCalculateFlipBreakdown(t *testing.T) {
	b := CalculateFlipBreakdown(200000, 30000, 300000)

	// ratio 230/300 = 0.7667 -> 10 - 3 = 7; equity 90k -> 2 but excluded
	assert.Equal(t, 7, b.ARVRatioScore)
	assert.Equal(t, 2, b.EquityScore)
	assert.Equal(t, 7, b.TotalScore, "equity sub-score must not inflate the total")
}

func TestScoresAlwaysInRange(t *testing.T) {
	cases := []struct {
		rent, offer, rehab, arv float64
		units                   int
	}{
		{0, 0, 0, 0, 0},
		{2500, 200000, 30000, 300000, 1},
		{-500, 100000, 0, 50000, 1},
		{10000, 50000, 5000, 400000, 4},
		{100, 900000, 200000, 100000, 2},
	}

	for _, c := range cases {
		hold := CalculateHoldScore(c.rent, c.offer, c.rehab, c.arv, c.units)
		flip := CalculateFlipScore(c.offer, c.rehab, c.arv)
		assert.GreaterOrEqual(t, hold, 1)
		assert.LessOrEqual(t, hold, 10)
		assert.GreaterOrEqual(t, flip, 1)
		assert.LessOrEqual(t, flip, 10)
	}
}

func TestBreakdownTotalsMatchScores(t *testing.T) {
	hold := CalculateHoldBreakdown(1800, 150000, 20000, 220000, 2)
	assert.Equal(t, hold.TotalScore, CalculateHoldScore(1800, 150000, 20000, 220000, 2))

	flip := CalculateFlipBreakdown(150000, 20000, 220000)
	assert.Equal(t, flip.TotalScore, CalculateFlipScore(150000, 20000, 220000))
}
