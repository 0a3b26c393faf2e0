package raffle

import (
	"fmt"

	"github.com/ArowuTest/raffle-backend/internal/models"
)

// Summary is the part of an order the eligibility rule looks at.
type Summary struct {
	ItemCount  int
	TotalValue float64
}

// IsEligible applies cfg's rule to s. The reason explains a rejection and
// is empty when s is eligible.
func IsEligible(s Summary, cfg models.RaffleConfig) (bool, string) {
	switch cfg.RuleType {
	case models.RuleItemCount:
		if float64(s.ItemCount) >= cfg.Threshold {
			return true, ""
		}
		return false, fmt.Sprintf("order has %d items, minimum is %g", s.ItemCount, cfg.Threshold)
	case models.RuleOrderValue:
		if s.TotalValue >= cfg.Threshold {
			return true, ""
		}
		return false, fmt.Sprintf("order total %.2f is below minimum %.2f", s.TotalValue, cfg.Threshold)
	default:
		return false, fmt.Sprintf("unknown rule type %q", cfg.RuleType)
	}
}
