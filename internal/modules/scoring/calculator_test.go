package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRentRatio(t *testing.T) {
	assert.InDelta(t, 0.01, RentRatio(2300, 200000, 30000), 1e-9)
	assert.Equal(t, 0.0, RentRatio(2500, 0, 0), "zero investment must not divide")
}

func TestARVRatio(t *testing.T) {
	assert.InDelta(t, 230000.0/300000.0, ARVRatio(200000, 30000, 300000), 1e-9)
	assert.Equal(t, 0.0, ARVRatio(200000, 30000, 0), "zero ARV must not divide")
}

func TestLoanSizing(t *testing.T) {
	// offer 200k + rehab 30k: 25% down, loan is the rest
	assert.InDelta(t, 57500, DownPayment(200000, 30000), 1e-9)
	assert.InDelta(t, 172500, LoanAmount(200000, 30000), 1e-9)

	// cash-out sizing: loan grows by down payment minus the 20k the investor
	// keeps in the deal
	assert.InDelta(t, 210000, NewLoan(200000, 30000, 300000), 1e-9)

	// ARV does not enter the cash-out formula
	assert.Equal(t, NewLoan(200000, 30000, 300000), NewLoan(200000, 30000, 999999))
}

func TestMonthlyMortgage(t *testing.T) {
	t.Run("standard amortization", func(t *testing.T) {
		// 210k at 7% over 30 years
		payment := MonthlyMortgage(210000, 0.07, 30)
		assert.InDelta(t, 1397.11, payment, 0.5)
	})

	t.Run("non-positive loan", func(t *testing.T) {
		assert.Equal(t, 0.0, MonthlyMortgage(0, 0.07, 30))
		assert.Equal(t, 0.0, MonthlyMortgage(-100, 0.07, 30))
	})
}

func TestCashflow(t *testing.T) {
	newLoan := NewLoan(200000, 30000, 300000)
	cashflow := Cashflow(2500, 200000, newLoan)

	// 2500 - 300 mgmt - 416.67 taxes - 130 fixed - ~1397 mortgage
	assert.InDelta(t, 256, cashflow, 1.0)
}

func TestHomeEquity(t *testing.T) {
	assert.InDelta(t, 90000, HomeEquity(200000, 30000, 300000), 1e-9)
}

func TestRefinanceVariant(t *testing.T) {
	assert.InDelta(t, 225000, RefinanceLoan(300000), 1e-9)
	assert.InDelta(t, 75000, RefinanceEquity(300000), 1e-9)

	// refinance cashflow is the same formula with the 75%-LTV loan
	want := Cashflow(2500, 200000, 225000)
	assert.Equal(t, want, RefinanceCashflow(2500, 200000, 300000))
}

func TestCashRemaining(t *testing.T) {
	assert.Equal(t, CashOutTarget, CashRemaining())
}

func TestMortgageFactorIsFinite(t *testing.T) {
	// sanity across a range of rates and terms
	for _, rate := range []float64{0.03, 0.05, 0.07, 0.10} {
		for _, years := range []int{15, 20, 30} {
			p := MonthlyMortgage(150000, rate, years)
			assert.False(t, math.IsNaN(p) || math.IsInf(p, 0))
			assert.Greater(t, p, 0.0)
		}
	}
}
