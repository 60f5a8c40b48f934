package notifier

import (
	"fmt"
	"strings"
	"time"

	"BetPilot/internal/model"
)

// FormatRunReport formats a completed run into a Telegram message.
func FormatRunReport(out *model.RunOutcome) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>BetPilot run</b> | %s\n\n", time.Now().Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Action: %s\n", out.Action))
	b.WriteString(fmt.Sprintf("Balance: $%s → $%s\n", out.BalanceBefore.StringFixed(2), out.BalanceAfter.StringFixed(2)))

	if out.Claim.Claimed {
		b.WriteString(fmt.Sprintf("Rewards claimed: +$%s\n", out.Claim.Amount.StringFixed(2)))
	}
	if out.Plan != nil {
		b.WriteString("\n🎯 <b>Parlay placed:</b>\n")
		b.WriteString(fmt.Sprintf("  Legs: %d\n", len(out.Plan.Legs)))
		b.WriteString(fmt.Sprintf("  Stake: $%s\n", out.Plan.Stake.StringFixed(2)))
		b.WriteString(fmt.Sprintf("  Combined odds: %s\n", out.Plan.CombinedOdds.StringFixed(4)))
		b.WriteString(fmt.Sprintf("  Potential payout: $%s\n", out.Plan.ExpectedPayout.StringFixed(2)))
	}
	if out.Err != nil {
		b.WriteString(fmt.Sprintf("\n⚠️ Partial failure: %v\n", out.Err))
	}
	return b.String()
}

// FormatGoalReached formats the terminal goal announcement.
func FormatGoalReached(out *model.RunOutcome) string {
	var b strings.Builder
	b.WriteString("🎉 <b>Goal reached!</b>\n\n")
	b.WriteString(fmt.Sprintf("Final balance: $%s\n", out.BalanceAfter.StringFixed(2)))
	b.WriteString(fmt.Sprintf("Time: %s\n\n", time.Now().Format("2006-01-02 15:04:05")))
	b.WriteString("The scheduled workflow has been disabled and will not run again until manually re-enabled.")
	return b.String()
}

// FormatFailure formats a run-aborting error report.
func FormatFailure(err error) string {
	var b strings.Builder
	b.WriteString("❌ <b>Run failed</b>\n\n")
	b.WriteString(fmt.Sprintf("Error: %v\n", err))
	b.WriteString(fmt.Sprintf("Time: %s\n\n", time.Now().Format("2006-01-02 15:04:05")))
	b.WriteString("The scheduler will try again on the next cycle.")
	return b.String()
}
