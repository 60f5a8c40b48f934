package recorder

import (
	"time"

	"BetPilot/internal/model"
)

// RunRecord holds one run's outcome for the history table.
type RunRecord struct {
	StartedAt     time.Time
	FinishedAt    time.Time
	BalanceBefore string
	BalanceAfter  string
	Action        string
	GoalReached   bool
	Claimed       bool
	ErrorText     string
}

// BetRecord holds a placed parlay.
type BetRecord struct {
	Stake          string
	CombinedOdds   string
	ExpectedPayout string
	Legs           int
}

// Recorder persists run history for later inspection.
type Recorder interface {
	RecordRun(rec *RunRecord) error
	RecordBet(rec *BetRecord) error
	Close() error
}

// FromOutcome converts a run outcome into its history records. The bet
// record is nil when no parlay was placed.
func FromOutcome(out *model.RunOutcome, startedAt time.Time) (*RunRecord, *BetRecord) {
	run := &RunRecord{
		StartedAt:     startedAt,
		FinishedAt:    out.FinishedAt,
		BalanceBefore: out.BalanceBefore.StringFixed(2),
		BalanceAfter:  out.BalanceAfter.StringFixed(2),
		Action:        string(out.Action),
		GoalReached:   out.GoalReached,
		Claimed:       out.Claim.Claimed,
	}
	if out.Err != nil {
		run.ErrorText = out.Err.Error()
	}
	var bet *BetRecord
	if out.Plan != nil {
		bet = &BetRecord{
			Stake:          out.Plan.Stake.StringFixed(2),
			CombinedOdds:   out.Plan.CombinedOdds.StringFixed(4),
			ExpectedPayout: out.Plan.ExpectedPayout.StringFixed(2),
			Legs:           len(out.Plan.Legs),
		}
	}
	return run, bet
}
