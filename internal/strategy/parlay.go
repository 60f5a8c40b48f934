package strategy

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"BetPilot/internal/config"
	"BetPilot/internal/model"
)

// ErrNoViableParlay means no plan satisfying the policy could be built from
// the available selections. The caller treats this as "no bet this run".
var ErrNoViableParlay = errors.New("no viable parlay from available selections")

// Policy holds the betting policy knobs. All amounts are in account currency.
type Policy struct {
	GoalBalance         decimal.Decimal
	MinStake            decimal.Decimal
	StakeFraction       decimal.Decimal
	SafeOddsMin         decimal.Decimal
	SafeOddsMax         decimal.Decimal
	MinPayout           decimal.Decimal // zero disables the bound
	MaxPayout           decimal.Decimal // zero disables the bound
	MaxLegs             int
	CapPayoutAtGoal     bool
	GoalOvershootMargin decimal.Decimal
}

// PolicyFromConfig converts the config betting section into a Policy.
func PolicyFromConfig(cfg *config.Config) Policy {
	b := cfg.Betting
	return Policy{
		GoalBalance:         decimal.NewFromFloat(b.GoalBalance),
		MinStake:            decimal.NewFromFloat(b.MinStake),
		StakeFraction:       decimal.NewFromFloat(b.StakeFraction),
		SafeOddsMin:         decimal.NewFromFloat(b.SafeOddsMin),
		SafeOddsMax:         decimal.NewFromFloat(b.SafeOddsMax),
		MinPayout:           decimal.NewFromFloat(b.MinPayout),
		MaxPayout:           decimal.NewFromFloat(b.MaxPayout),
		MaxLegs:             b.MaxLegs,
		CapPayoutAtGoal:     *b.CapPayoutAtGoal,
		GoalOvershootMargin: decimal.NewFromFloat(b.GoalOvershootMargin),
	}
}

// BuildParlay selects low-risk legs and sizes a stake for them.
//
// Legs outside the safe odds band are discarded; the rest are taken in
// ascending-odds order up to MaxLegs, combining multiplicatively. The stake
// starts at StakeFraction of the balance. With CapPayoutAtGoal, the stake is
// trimmed so the expected payout lands at most GoalOvershootMargin past the
// goal; MinStake wins over the cap since the book will not accept less.
func BuildParlay(available []model.LegOdds, balance decimal.Decimal, p Policy) (*model.ParlayPlan, error) {
	var safe []model.LegOdds
	for _, leg := range available {
		if leg.Decimal.GreaterThanOrEqual(p.SafeOddsMin) && leg.Decimal.LessThanOrEqual(p.SafeOddsMax) {
			safe = append(safe, leg)
		}
	}
	if len(safe) == 0 {
		return nil, ErrNoViableParlay
	}

	sort.Slice(safe, func(i, j int) bool {
		return safe[i].Decimal.LessThan(safe[j].Decimal)
	})

	maxLegs := p.MaxLegs
	if maxLegs < 1 {
		maxLegs = 1
	}
	if len(safe) > maxLegs {
		safe = safe[:maxLegs]
	}

	combined := decimal.NewFromInt(1)
	for _, leg := range safe {
		combined = combined.Mul(leg.Decimal)
	}

	stake := balance.Mul(p.StakeFraction).RoundDown(2)

	if p.CapPayoutAtGoal {
		ceiling := p.GoalBalance.Add(p.GoalOvershootMargin)
		maxStake := ceiling.Div(combined).RoundDown(2)
		if maxStake.LessThan(stake) {
			stake = maxStake
		}
	}
	if p.MaxPayout.IsPositive() {
		maxStake := p.MaxPayout.Div(combined).RoundDown(2)
		if maxStake.LessThan(stake) {
			stake = maxStake
		}
	}
	if stake.LessThan(p.MinStake) {
		stake = p.MinStake
	}
	if stake.GreaterThan(balance) {
		return nil, ErrNoViableParlay
	}

	payout := stake.Mul(combined).Round(2)
	if p.MinPayout.IsPositive() && payout.LessThan(p.MinPayout) {
		return nil, ErrNoViableParlay
	}

	plan := &model.ParlayPlan{
		Legs:           safe,
		CombinedOdds:   combined,
		Stake:          stake,
		ExpectedPayout: payout,
	}
	if !plan.Valid(balance) {
		return nil, ErrNoViableParlay
	}
	return plan, nil
}
