package model

import "github.com/shopspring/decimal"

// LegOdds is a single selectable outcome with its decimal odds multiplier.
// Decimal odds are always > 1.0 for an open selection.
type LegOdds struct {
	SelectionID string
	Decimal     decimal.Decimal
}

// ParlayPlan is a fully sized multi-leg bet ready for submission.
// Combined odds are the product of the leg odds.
type ParlayPlan struct {
	Legs           []LegOdds
	CombinedOdds   decimal.Decimal
	Stake          decimal.Decimal
	ExpectedPayout decimal.Decimal
}

// Valid reports whether the plan is safe to submit against the given balance.
func (p *ParlayPlan) Valid(balance decimal.Decimal) bool {
	if p == nil || len(p.Legs) == 0 {
		return false
	}
	if !p.Stake.IsPositive() {
		return false
	}
	return p.Stake.LessThanOrEqual(balance)
}
