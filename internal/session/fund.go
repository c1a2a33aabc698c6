package session

// FundPolicy decides whether the Pro Fund is ready for payout.
type FundPolicy struct {
	ThresholdAmount float64
	ThresholdCount  int
}

// Ready is true once both the balance and the conversion count have reached
// their thresholds.
func (p FundPolicy) Ready(balance float64, conversionCount int) bool {
	return balance >= p.ThresholdAmount && conversionCount >= p.ThresholdCount
}
