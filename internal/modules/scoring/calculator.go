// Package scoring implements the investment heuristics behind the dashboard:
// financial derivations (loan sizing, cashflow, equity), the 1-10 Hold and
// Flip deal-quality scores, and the closed-form inverse solves that power the
// "perfect value" hints next to rent/ARV inputs.
//
// Every function here is pure arithmetic over plain numbers. There is no
// caching and no I/O; callers recompute on every request so the totals and
// the tooltip breakdowns can never drift apart. Division-by-zero guards
// return 0 (spreadsheet-like tolerance of missing data, e.g. a lead with no
// ARV yet). Inputs are not validated: negative or NaN values propagate, and
// the HTTP layer is responsible for sanitizing user input first.
package scoring

import "math"

// Underwriting constants. These encode the buy-box the whole dashboard is
// built around; changing one without revisiting the score thresholds and the
// inverse solves in targets.go is a correctness bug.
const (
	// DownPaymentRate is the fraction of total investment paid in cash
	DownPaymentRate = 0.25

	// CashOutTarget is the fixed amount of cash the investor wants back out
	// of the deal after the cash-out refinance, in dollars
	CashOutTarget = 20000.0

	// DefaultInterestRate is the assumed annual mortgage rate
	DefaultInterestRate = 0.07

	// DefaultTermYears is the assumed mortgage term
	DefaultTermYears = 30

	// ManagementFeeRate is the property management fee as a fraction of rent
	ManagementFeeRate = 0.12

	// PropertyTaxRate is the annual property tax as a fraction of offer price
	PropertyTaxRate = 0.025

	// FixedMonthlyExpenses covers insurance and lawn care, in dollars/month
	FixedMonthlyExpenses = 130.0

	// RefinanceLTV is the loan-to-value ratio for the simpler refinance
	// sizing variant (75% of ARV)
	RefinanceLTV = 0.75
)

// RentRatio returns monthly rent as a fraction of total investment
// (offer price + rehab). Returns 0 when the investment total is 0.
func RentRatio(rent, offerPrice, rehabCosts float64) float64 {
	total := offerPrice + rehabCosts
	if total == 0 {
		return 0
	}
	return rent / total
}

// ARVRatio returns total investment as a fraction of after-repair value.
// Lower is better for a flip. Returns 0 when ARV is 0.
func ARVRatio(offerPrice, rehabCosts, arv float64) float64 {
	if arv == 0 {
		return 0
	}
	return (offerPrice + rehabCosts) / arv
}

// DownPayment returns the cash down payment on the total investment
func DownPayment(offerPrice, rehabCosts float64) float64 {
	return DownPaymentRate * (offerPrice + rehabCosts)
}

// LoanAmount returns the initial purchase loan: total investment minus down payment
func LoanAmount(offerPrice, rehabCosts float64) float64 {
	return (offerPrice + rehabCosts) - DownPayment(offerPrice, rehabCosts)
}

// CashRemaining returns the fixed investor cash-out target
func CashRemaining() float64 {
	return CashOutTarget
}

// NewLoan returns the post-refinance loan amount under cash-out sizing: the
// loan is grown by however much of the down payment exceeds the cash the
// investor wants to leave in the deal.
//
// arv is accepted for interface symmetry with the other derivations but does
// not enter this formula; the 75%-of-ARV rule lives in RefinanceLoan.
func NewLoan(offerPrice, rehabCosts, arv float64) float64 {
	_ = arv
	return LoanAmount(offerPrice, rehabCosts) + (DownPayment(offerPrice, rehabCosts) - CashRemaining())
}

// MonthlyMortgage returns the fixed-rate amortized monthly payment
// P*r*(1+r)^n / ((1+r)^n - 1) with r the monthly rate and n the total number
// of payments. Returns 0 for a non-positive loan amount.
func MonthlyMortgage(loanAmount, annualRate float64, termYears int) float64 {
	if loanAmount <= 0 {
		return 0
	}

	monthlyRate := annualRate / 12
	numPayments := float64(termYears * 12)

	factor := math.Pow(1+monthlyRate, numPayments)
	return loanAmount * monthlyRate * factor / (factor - 1)
}

// Cashflow returns the monthly cashflow after management fee (12% of rent),
// property taxes (2.5% of offer price annually), fixed insurance/lawn costs,
// and the mortgage on the post-refinance loan.
func Cashflow(rent, offerPrice, newLoanAmount float64) float64 {
	managementFee := ManagementFeeRate * rent
	propertyTaxes := PropertyTaxRate * offerPrice / 12
	mortgage := MonthlyMortgage(newLoanAmount, DefaultInterestRate, DefaultTermYears)

	return rent - managementFee - propertyTaxes - FixedMonthlyExpenses - mortgage
}

// HomeEquity returns ARV minus the post-refinance loan
func HomeEquity(offerPrice, rehabCosts, arv float64) float64 {
	return arv - NewLoan(offerPrice, rehabCosts, arv)
}

// RefinanceLoan returns the loan amount under the simpler 75%-of-ARV sizing
// rule. This is the alternate calculation path; the primary scores use the
// cash-out sizing in NewLoan.
func RefinanceLoan(arv float64) float64 {
	return RefinanceLTV * arv
}

// RefinanceCashflow returns monthly cashflow with the loan sized at 75% of ARV
func RefinanceCashflow(rent, offerPrice, arv float64) float64 {
	return Cashflow(rent, offerPrice, RefinanceLoan(arv))
}

// RefinanceEquity returns equity with the loan sized at 75% of ARV
func RefinanceEquity(arv float64) float64 {
	return arv - RefinanceLoan(arv)
}
