package scoring

import "math"

// Score thresholds. The inverse solves in targets.go invert the top bucket of
// each; keep them in sync.
const (
	// TargetCashflowPerUnit is the per-unit monthly cashflow for a max
	// Hold cashflow sub-score, in dollars
	TargetCashflowPerUnit = 200.0

	// TargetRentRatio is the rent ratio for a max Hold rent-ratio sub-score (1%)
	TargetRentRatio = 0.01

	// GoodRentRatio earns a partial rent-ratio sub-score (0.8%)
	GoodRentRatio = 0.008

	// TargetARVRatio is the all-in cost fraction of ARV for a max Flip score (65%)
	TargetARVRatio = 0.65

	// arvRatioDecayStep: one Flip point lost per full 3.5 percentage points
	// above TargetARVRatio
	arvRatioDecayStep = 0.035

	// Equity thresholds for the informational Flip equity sub-score
	equityStrong = 75000.0
	equityGood   = 60000.0
)

// HoldBreakdown carries the Hold score sub-scores for tooltip rendering
type HoldBreakdown struct {
	CashflowScore  int `json:"cashflow_score"`
	RentRatioScore int `json:"rent_ratio_score"`
	TotalScore     int `json:"total_score"`
}

// FlipBreakdown carries the Flip score sub-scores for tooltip rendering.
// EquityScore is informational: it is shown in the tooltip but intentionally
// excluded from TotalScore, which is driven by the ARV ratio alone.
type FlipBreakdown struct {
	ARVRatioScore int `json:"arv_ratio_score"`
	EquityScore   int `json:"equity_score"`
	TotalScore    int `json:"total_score"`
}

// CalculateHoldCashflowScore buckets monthly cashflow per unit into a 0-8
// sub-score. First threshold met from the top wins. Units at or below zero
// are treated as a single unit.
func CalculateHoldCashflowScore(cashflow float64, units int) int {
	if units <= 0 {
		units = 1
	}
	perUnit := cashflow / float64(units)

	switch {
	case perUnit >= TargetCashflowPerUnit:
		return 8
	case perUnit >= 175:
		return 7
	case perUnit >= 150:
		return 6
	case perUnit >= 125:
		return 5
	case perUnit >= 100:
		return 4
	case perUnit >= 75:
		return 3
	case perUnit >= 50:
		return 2
	case perUnit >= 0:
		return 1
	default:
		return 0
	}
}

// CalculateHoldRentRatioScore buckets the rent ratio into a 0-2 sub-score
func CalculateHoldRentRatioScore(rentRatio float64) int {
	switch {
	case rentRatio >= TargetRentRatio:
		return 2
	case rentRatio >= GoodRentRatio:
		return 1
	default:
		return 0
	}
}

// CalculateFlipARVRatioScore buckets the ARV ratio into a 0-10 sub-score:
// 10 at or below 65%, then one point lost per full 3.5 percentage points
// above that, floored at 0.
func CalculateFlipARVRatioScore(arvRatio float64) int {
	if arvRatio <= TargetARVRatio {
		return 10
	}

	deductions := int(math.Floor((arvRatio - TargetARVRatio) / arvRatioDecayStep))
	score := 10 - deductions
	if score < 0 {
		return 0
	}
	return score
}

// CalculateFlipEquityScore buckets home equity into a 0-2 sub-score.
// Shown in the Flip breakdown only; never added into the Flip total.
func CalculateFlipEquityScore(equity float64) int {
	switch {
	case equity >= equityStrong:
		return 2
	case equity >= equityGood:
		return 1
	default:
		return 0
	}
}

// CalculateHoldScore returns the 1-10 buy-and-rent quality score:
// cashflow sub-score plus rent-ratio sub-score, clamped to [1, 10].
func CalculateHoldScore(rent, offerPrice, rehabCosts, arv float64, units int) int {
	return CalculateHoldBreakdown(rent, offerPrice, rehabCosts, arv, units).TotalScore
}

// CalculateHoldBreakdown recomputes the Hold sub-scores and total from raw
// inputs. The total is always the clamped sum of the listed sub-scores so
// the tooltip and the badge can never disagree.
func CalculateHoldBreakdown(rent, offerPrice, rehabCosts, arv float64, units int) HoldBreakdown {
	newLoan := NewLoan(offerPrice, rehabCosts, arv)
	cashflow := Cashflow(rent, offerPrice, newLoan)
	rentRatio := RentRatio(rent, offerPrice, rehabCosts)

	cashflowScore := CalculateHoldCashflowScore(cashflow, units)
	rentRatioScore := CalculateHoldRentRatioScore(rentRatio)

	return HoldBreakdown{
		CashflowScore:  cashflowScore,
		RentRatioScore: rentRatioScore,
		TotalScore:     clampScore(cashflowScore + rentRatioScore),
	}
}

// CalculateFlipScore returns the 1-10 buy-and-resell quality score: the ARV
// ratio sub-score alone, clamped to [1, 10].
func CalculateFlipScore(offerPrice, rehabCosts, arv float64) int {
	return CalculateFlipBreakdown(offerPrice, rehabCosts, arv).TotalScore
}

// CalculateFlipBreakdown recomputes the Flip sub-scores and total from raw
// inputs. The equity sub-score is carried for display but excluded from the
// total (the margin between cost and ARV alone drives the grade).
func CalculateFlipBreakdown(offerPrice, rehabCosts, arv float64) FlipBreakdown {
	arvRatioScore := CalculateFlipARVRatioScore(ARVRatio(offerPrice, rehabCosts, arv))
	equityScore := CalculateFlipEquityScore(HomeEquity(offerPrice, rehabCosts, arv))

	return FlipBreakdown{
		ARVRatioScore: arvRatioScore,
		EquityScore:   equityScore,
		TotalScore:    clampScore(arvRatioScore),
	}
}

// clampScore clamps a score to the [1, 10] display range
func clampScore(score int) int {
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}
