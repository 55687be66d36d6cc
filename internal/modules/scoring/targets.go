package scoring

import "math"

// CalculatePerfectRentForHoldScore returns the minimum whole-dollar monthly
// rent that earns a perfect Hold score: cashflow per unit must reach
// TargetCashflowPerUnit AND the rent ratio must reach TargetRentRatio.
//
// The cashflow requirement inverts the Cashflow formula algebraically. With
// rent appearing only in the rent and management-fee terms,
//
//	rent = (target + taxes + fixed + mortgage) / (1 - ManagementFeeRate)
//
// where target is the total cashflow needed across all units. The rent-ratio
// requirement is simply 1% of total investment. The larger of the two wins.
func CalculatePerfectRentForHoldScore(offerPrice, rehabCosts, arv float64, units int) float64 {
	if units <= 0 {
		units = 1
	}

	mortgage := MonthlyMortgage(NewLoan(offerPrice, rehabCosts, arv), DefaultInterestRate, DefaultTermYears)
	propertyTaxes := PropertyTaxRate * offerPrice / 12
	targetCashflow := TargetCashflowPerUnit * float64(units)

	rentForCashflow := (targetCashflow + propertyTaxes + FixedMonthlyExpenses + mortgage) / (1 - ManagementFeeRate)
	rentForRatio := (offerPrice + rehabCosts) * TargetRentRatio

	return math.Ceil(math.Max(rentForCashflow, rentForRatio))
}

// CalculatePerfectARVForFlipScore returns the minimum whole-dollar ARV that
// earns a perfect Flip score, solving (offer + rehab) / arv <= TargetARVRatio
// for arv.
func CalculatePerfectARVForFlipScore(offerPrice, rehabCosts float64) float64 {
	return math.Ceil((offerPrice + rehabCosts) / TargetARVRatio)
}
