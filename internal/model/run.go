package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Action describes what a single run did to the account.
type Action string

const (
	ActionNone          Action = "NONE"
	ActionClaimed       Action = "CLAIMED"
	ActionBet           Action = "BET"
	ActionClaimedAndBet Action = "CLAIMED_AND_BET"
)

// RunState is the live account state a run works from. It is rebuilt from
// fresh session reads on every invocation and never persisted.
type RunState struct {
	Balance    decimal.Decimal
	Goal       decimal.Decimal
	OpenWagers int
	StartedAt  time.Time
}

// RewardClaim is the result of one pass over the claimable rewards.
type RewardClaim struct {
	Claimed bool
	Amount  decimal.Decimal
}

// RunOutcome is produced exactly once per run and drives both the operator
// notification and the self-disable decision.
type RunOutcome struct {
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	GoalReached   bool
	Action        Action
	Claim         RewardClaim
	Plan          *ParlayPlan
	Err           error
	FinishedAt    time.Time
}

// WithClaim folds a reward claim into the action taken so far.
func (a Action) WithClaim() Action {
	switch a {
	case ActionBet:
		return ActionClaimedAndBet
	case ActionNone:
		return ActionClaimed
	}
	return a
}

// WithBet folds a placed bet into the action taken so far.
func (a Action) WithBet() Action {
	switch a {
	case ActionClaimed:
		return ActionClaimedAndBet
	case ActionNone:
		return ActionBet
	}
	return a
}
