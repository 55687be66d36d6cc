package scoring

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Snapshot is the property financial input set as entered on the dashboard.
// It is a value object: the scoring package never mutates or retains it.
type Snapshot struct {
	OfferPrice    float64 `json:"offer_price" msgpack:"offer_price"`
	RehabCosts    float64 `json:"rehab_costs" msgpack:"rehab_costs"`
	ARV           float64 `json:"arv" msgpack:"arv"`
	PotentialRent float64 `json:"potential_rent" msgpack:"potential_rent"`
	Units         int     `json:"units" msgpack:"units"`
}

// Hash returns a stable key for this input set, used by the evaluation
// snapshot cache. Two snapshots with identical inputs share a hash.
func (s Snapshot) Hash() string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%.2f|%.2f|%.2f|%.2f|%d",
		s.OfferPrice, s.RehabCosts, s.ARV, s.PotentialRent, s.Units)))
	return hex.EncodeToString(sum[:16])
}

// Evaluation is the full derived view of a snapshot: every metric the tables,
// cards and dialogs render. Recomputed from inputs on every call; nothing in
// here is authoritative state.
type Evaluation struct {
	RentRatio       float64 `json:"rent_ratio" msgpack:"rent_ratio"`
	ARVRatio        float64 `json:"arv_ratio" msgpack:"arv_ratio"`
	DownPayment     float64 `json:"down_payment" msgpack:"down_payment"`
	LoanAmount      float64 `json:"loan_amount" msgpack:"loan_amount"`
	NewLoanAmount   float64 `json:"new_loan_amount" msgpack:"new_loan_amount"`
	MonthlyMortgage float64 `json:"monthly_mortgage" msgpack:"monthly_mortgage"`
	MonthlyCashflow float64 `json:"monthly_cashflow" msgpack:"monthly_cashflow"`
	HomeEquity      float64 `json:"home_equity" msgpack:"home_equity"`

	HoldScore int           `json:"hold_score" msgpack:"hold_score"`
	FlipScore int           `json:"flip_score" msgpack:"flip_score"`
	Hold      HoldBreakdown `json:"hold_breakdown" msgpack:"hold_breakdown"`
	Flip      FlipBreakdown `json:"flip_breakdown" msgpack:"flip_breakdown"`

	// "What would make this deal perfect" hints for the edit dialogs
	PerfectRent float64 `json:"perfect_rent" msgpack:"perfect_rent"`
	PerfectARV  float64 `json:"perfect_arv" msgpack:"perfect_arv"`

	// Deprecated composite score, kept for saved-search compatibility
	LegacyScore float64 `json:"legacy_score" msgpack:"legacy_score"`

	// Alternate loan sizing at 75% of ARV
	Refinance RefinanceMetrics `json:"refinance" msgpack:"refinance"`
}

// RefinanceMetrics is the alternate calculation path with the loan sized at
// a fixed 75% of ARV instead of the cash-out formula.
type RefinanceMetrics struct {
	LoanAmount      float64 `json:"loan_amount" msgpack:"loan_amount"`
	MonthlyCashflow float64 `json:"monthly_cashflow" msgpack:"monthly_cashflow"`
	HomeEquity      float64 `json:"home_equity" msgpack:"home_equity"`
}

// Evaluate derives every dashboard metric from a snapshot.
// Units at or below zero are treated as a single unit.
func Evaluate(s Snapshot) Evaluation {
	units := s.Units
	if units <= 0 {
		units = 1
	}

	newLoan := NewLoan(s.OfferPrice, s.RehabCosts, s.ARV)

	return Evaluation{
		RentRatio:       RentRatio(s.PotentialRent, s.OfferPrice, s.RehabCosts),
		ARVRatio:        ARVRatio(s.OfferPrice, s.RehabCosts, s.ARV),
		DownPayment:     DownPayment(s.OfferPrice, s.RehabCosts),
		LoanAmount:      LoanAmount(s.OfferPrice, s.RehabCosts),
		NewLoanAmount:   newLoan,
		MonthlyMortgage: MonthlyMortgage(newLoan, DefaultInterestRate, DefaultTermYears),
		MonthlyCashflow: Cashflow(s.PotentialRent, s.OfferPrice, newLoan),
		HomeEquity:      HomeEquity(s.OfferPrice, s.RehabCosts, s.ARV),

		HoldScore: CalculateHoldScore(s.PotentialRent, s.OfferPrice, s.RehabCosts, s.ARV, units),
		FlipScore: CalculateFlipScore(s.OfferPrice, s.RehabCosts, s.ARV),
		Hold:      CalculateHoldBreakdown(s.PotentialRent, s.OfferPrice, s.RehabCosts, s.ARV, units),
		Flip:      CalculateFlipBreakdown(s.OfferPrice, s.RehabCosts, s.ARV),

		PerfectRent: CalculatePerfectRentForHoldScore(s.OfferPrice, s.RehabCosts, s.ARV, units),
		PerfectARV:  CalculatePerfectARVForFlipScore(s.OfferPrice, s.RehabCosts),

		LegacyScore: CalculateLegacyScore(s.PotentialRent, s.OfferPrice, s.RehabCosts, s.ARV),

		Refinance: RefinanceMetrics{
			LoanAmount:      RefinanceLoan(s.ARV),
			MonthlyCashflow: RefinanceCashflow(s.PotentialRent, s.OfferPrice, s.ARV),
			HomeEquity:      RefinanceEquity(s.ARV),
		},
	}
}
