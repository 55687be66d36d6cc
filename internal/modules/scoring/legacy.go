package scoring

// Legacy composite score weights. Retained for backward compatibility with
// saved searches that sorted on the old single score.
const (
	legacyRentRatioWeight = 0.35
	legacyARVRatioWeight  = 0.30
	legacyEquityWeight    = 0.20
	legacyCashflowWeight  = 0.15
)

// CalculateLegacyScore returns the deprecated composite deal score: a
// weighted sum of 0-10 bucket scores for rent ratio, ARV ratio, equity and
// cashflow. The thresholds must not be changed; existing saved data was
// ranked with exactly these buckets.
//
// Deprecated: new code should use CalculateHoldScore and CalculateFlipScore.
func CalculateLegacyScore(rent, offerPrice, rehabCosts, arv float64) float64 {
	rentRatio := RentRatio(rent, offerPrice, rehabCosts)
	arvRatio := ARVRatio(offerPrice, rehabCosts, arv)
	equity := HomeEquity(offerPrice, rehabCosts, arv)
	cashflow := Cashflow(rent, offerPrice, NewLoan(offerPrice, rehabCosts, arv))

	return float64(legacyRentRatioBucket(rentRatio))*legacyRentRatioWeight +
		float64(legacyARVRatioBucket(arvRatio))*legacyARVRatioWeight +
		float64(legacyEquityBucket(equity))*legacyEquityWeight +
		float64(legacyCashflowBucket(cashflow))*legacyCashflowWeight
}

func legacyRentRatioBucket(ratio float64) int {
	switch {
	case ratio >= 0.0125:
		return 10
	case ratio >= 0.01:
		return 8
	case ratio >= 0.008:
		return 5
	case ratio >= 0.006:
		return 2
	default:
		return 0
	}
}

func legacyARVRatioBucket(ratio float64) int {
	// A zero ratio means no ARV on file, not a perfect deal
	if ratio <= 0 {
		return 0
	}
	switch {
	case ratio <= 0.60:
		return 10
	case ratio <= 0.70:
		return 7
	case ratio <= 0.80:
		return 4
	case ratio <= 0.90:
		return 1
	default:
		return 0
	}
}

func legacyEquityBucket(equity float64) int {
	switch {
	case equity >= 100000:
		return 10
	case equity >= 75000:
		return 7
	case equity >= 50000:
		return 4
	case equity >= 25000:
		return 1
	default:
		return 0
	}
}

func legacyCashflowBucket(cashflow float64) int {
	switch {
	case cashflow >= 300:
		return 10
	case cashflow >= 200:
		return 7
	case cashflow >= 100:
		return 4
	case cashflow >= 0:
		return 1
	default:
		return 0
	}
}
