package notifier

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"BetPilot/internal/model"
)

func TestFormatRunReport(t *testing.T) {
	out := &model.RunOutcome{
		BalanceBefore: decimal.RequireFromString("7.00"),
		BalanceAfter:  decimal.RequireFromString("4.00"),
		Action:        model.ActionClaimedAndBet,
		Claim:         model.RewardClaim{Claimed: true, Amount: decimal.RequireFromString("1.00")},
		Plan: &model.ParlayPlan{
			Legs:           []model.LegOdds{{SelectionID: "a", Decimal: decimal.RequireFromString("1.2")}},
			CombinedOdds:   decimal.RequireFromString("1.2"),
			Stake:          decimal.RequireFromString("4.00"),
			ExpectedPayout: decimal.RequireFromString("4.80"),
		},
	}
	msg := FormatRunReport(out)
	for _, want := range []string{"CLAIMED_AND_BET", "$7.00", "$4.00", "+$1.00", "$4.80"} {
		if !strings.Contains(msg, want) {
			t.Errorf("report missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatGoalReached(t *testing.T) {
	out := &model.RunOutcome{
		BalanceAfter: decimal.RequireFromString("10.50"),
		GoalReached:  true,
	}
	msg := FormatGoalReached(out)
	if !strings.Contains(msg, "$10.50") {
		t.Errorf("announcement missing final balance:\n%s", msg)
	}
	if !strings.Contains(msg, "disabled") {
		t.Errorf("announcement should mention the disabled workflow:\n%s", msg)
	}
}
