package bot

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"BetPilot/internal/model"
	"BetPilot/internal/strategy"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type fakeSession struct {
	loginErr error

	balances     []string // consumed one per Balance call, last value repeats
	balanceCalls int
	balanceErr   error

	claim      model.RewardClaim
	claimErr   error
	claimCalls int

	openWagers int
	legs       []model.LegOdds
	placeErr   error
	placed     *model.ParlayPlan

	closed int
}

func (f *fakeSession) Login(context.Context) error { return f.loginErr }

func (f *fakeSession) Balance(context.Context) (decimal.Decimal, error) {
	if f.balanceErr != nil {
		return decimal.Zero, f.balanceErr
	}
	i := f.balanceCalls
	f.balanceCalls++
	if i >= len(f.balances) {
		i = len(f.balances) - 1
	}
	return dec(f.balances[i]), nil
}

func (f *fakeSession) ClaimRewards(context.Context) (model.RewardClaim, error) {
	f.claimCalls++
	if f.claimErr != nil {
		return model.RewardClaim{}, f.claimErr
	}
	return f.claim, nil
}

func (f *fakeSession) OpenWagers(context.Context) (int, error) { return f.openWagers, nil }

func (f *fakeSession) AvailableLegs(context.Context) ([]model.LegOdds, error) {
	return f.legs, nil
}

func (f *fakeSession) PlaceParlay(_ context.Context, plan *model.ParlayPlan) error {
	if f.placeErr != nil {
		return f.placeErr
	}
	f.placed = plan
	return nil
}

func (f *fakeSession) Screenshot(context.Context) ([]byte, error) {
	return []byte("png"), nil
}

func (f *fakeSession) BetSlipScreenshot(context.Context) ([]byte, error) {
	return []byte("png"), nil
}

func (f *fakeSession) Close() { f.closed++ }

type fakeNotifier struct {
	texts   []string
	photos  int
	sendErr error
}

func (f *fakeNotifier) Send(text string) error {
	f.texts = append(f.texts, text)
	return f.sendErr
}

func (f *fakeNotifier) SendPhoto([]byte, string) error {
	f.photos++
	return f.sendErr
}

type fakeDisabler struct {
	calls int
	err   error
}

func (f *fakeDisabler) Disable(context.Context) error {
	f.calls++
	return f.err
}

func testPolicy() strategy.Policy {
	return strategy.Policy{
		GoalBalance:         dec("10.00"),
		MinStake:            dec("1.80"),
		StakeFraction:       dec("0.5"),
		SafeOddsMin:         dec("1.05"),
		SafeOddsMax:         dec("1.5"),
		MaxLegs:             3,
		CapPayoutAtGoal:     false,
		GoalOvershootMargin: dec("0.50"),
	}
}

func newTestController(sess *fakeSession, n *fakeNotifier, d *fakeDisabler) *Controller {
	return New(sess, n, d, nil, testPolicy(), 3, time.Millisecond)
}

func TestRun_GoalAlreadyMet(t *testing.T) {
	sess := &fakeSession{balances: []string{"10.00"}}
	n := &fakeNotifier{}
	d := &fakeDisabler{}

	out, err := newTestController(sess, n, d).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Action != model.ActionNone {
		t.Errorf("action = %s, want NONE", out.Action)
	}
	if !out.GoalReached {
		t.Error("expected goal reached")
	}
	if d.calls != 1 {
		t.Errorf("disabler invoked %d times, want exactly 1", d.calls)
	}
	if sess.claimCalls != 0 {
		t.Errorf("claim attempted %d times when goal already met", sess.claimCalls)
	}
	if sess.placed != nil {
		t.Error("bet placed when goal already met")
	}
	if len(n.texts) != 1 {
		t.Errorf("expected exactly 1 notification, got %d", len(n.texts))
	}
	if sess.closed == 0 {
		t.Error("session not closed")
	}
}

func TestRun_ClaimAndBet(t *testing.T) {
	// Balance 7.00, claim adds 1.00, stake_fraction 0.5: stake <= 4.00.
	sess := &fakeSession{
		balances: []string{"7.00", "8.00", "4.00"},
		claim:    model.RewardClaim{Claimed: true},
		legs: []model.LegOdds{
			{SelectionID: "a", Decimal: dec("1.1")},
			{SelectionID: "b", Decimal: dec("1.2")},
		},
	}
	n := &fakeNotifier{}
	d := &fakeDisabler{}

	out, err := newTestController(sess, n, d).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Action != model.ActionClaimedAndBet {
		t.Errorf("action = %s, want CLAIMED_AND_BET", out.Action)
	}
	if out.GoalReached {
		t.Error("goal must not be reached")
	}
	if sess.placed == nil {
		t.Fatal("expected a parlay to be placed")
	}
	if sess.placed.Stake.GreaterThan(dec("4.00")) {
		t.Errorf("stake %s exceeds half of post-claim balance", sess.placed.Stake)
	}
	if !out.Claim.Amount.Equal(dec("1.00")) {
		t.Errorf("claim amount = %s, want 1.00", out.Claim.Amount)
	}
	if d.calls != 0 {
		t.Errorf("disabler invoked %d times before goal", d.calls)
	}
}

func TestRun_ClaimExhaustionIsNonFatal(t *testing.T) {
	// Claim fails all attempts; betting is still evaluated against 9.50.
	sess := &fakeSession{
		balances: []string{"9.50"},
		claimErr: model.Transient("claim rewards", fmt.Errorf("timeout")),
		legs:     []model.LegOdds{{SelectionID: "a", Decimal: dec("1.2")}},
	}
	n := &fakeNotifier{}
	d := &fakeDisabler{}

	out, err := newTestController(sess, n, d).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.claimCalls != 3 {
		t.Errorf("claim attempted %d times, want exactly 3", sess.claimCalls)
	}
	if out.Action == model.ActionClaimed || out.Action == model.ActionClaimedAndBet {
		t.Errorf("action %s must not include CLAIMED", out.Action)
	}
	if sess.placed == nil {
		t.Fatal("betting should still be evaluated after claim failure")
	}
	if sess.placed.Stake.GreaterThan(dec("4.75")) {
		t.Errorf("stake %s exceeds half of 9.50", sess.placed.Stake)
	}
	if out.Err == nil {
		t.Error("outcome should carry the claim failure")
	}
}

func TestRun_AuthErrorIsFatal(t *testing.T) {
	sess := &fakeSession{
		loginErr: &model.AuthError{Reason: "bad credentials"},
		balances: []string{"0"},
	}
	n := &fakeNotifier{}
	d := &fakeDisabler{}

	_, err := newTestController(sess, n, d).Run(context.Background())
	var authErr *model.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if sess.balanceCalls != 0 {
		t.Errorf("balance read %d times after auth failure", sess.balanceCalls)
	}
	if len(n.texts) != 1 {
		t.Errorf("expected exactly 1 failure notification, got %d", len(n.texts))
	}
	if sess.closed == 0 {
		t.Error("session not closed on auth failure")
	}
}

func TestRun_OpenWagersBlockBetting(t *testing.T) {
	sess := &fakeSession{
		balances:   []string{"7.00"},
		openWagers: 1,
		legs:       []model.LegOdds{{SelectionID: "a", Decimal: dec("1.2")}},
	}
	n := &fakeNotifier{}
	d := &fakeDisabler{}

	out, err := newTestController(sess, n, d).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.placed != nil {
		t.Error("bet placed despite open wagers")
	}
	if out.Action != model.ActionNone {
		t.Errorf("action = %s, want NONE", out.Action)
	}
}

func TestRun_BetErrorDoesNotAbort(t *testing.T) {
	sess := &fakeSession{
		balances: []string{"8.00"},
		legs:     []model.LegOdds{{SelectionID: "a", Decimal: dec("1.2")}},
		placeErr: fmt.Errorf("submit rejected"),
	}
	n := &fakeNotifier{}
	d := &fakeDisabler{}

	out, err := newTestController(sess, n, d).Run(context.Background())
	if err != nil {
		t.Fatalf("run must complete despite bet failure: %v", err)
	}
	var betErr *model.BetError
	if !errors.As(out.Err, &betErr) {
		t.Errorf("outcome should carry a BetError, got %v", out.Err)
	}
	if !out.BalanceAfter.Equal(dec("8.00")) {
		t.Errorf("pre-bet balance should be reported, got %s", out.BalanceAfter)
	}
}

func TestRun_GoalReachedAfterClaim(t *testing.T) {
	sess := &fakeSession{
		balances: []string{"9.50", "10.50", "10.50"},
		claim:    model.RewardClaim{Claimed: true},
	}
	n := &fakeNotifier{}
	d := &fakeDisabler{}

	out, err := newTestController(sess, n, d).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.GoalReached {
		t.Error("expected goal reached after claim")
	}
	if d.calls != 1 {
		t.Errorf("disabler invoked %d times, want 1", d.calls)
	}
}

func TestRun_DisableErrorDoesNotBlockOutcome(t *testing.T) {
	sess := &fakeSession{balances: []string{"10.00"}}
	n := &fakeNotifier{}
	d := &fakeDisabler{err: &model.DisableError{Err: fmt.Errorf("api down")}}

	out, err := newTestController(sess, n, d).Run(context.Background())
	if err != nil {
		t.Fatalf("disable failure must not fail the run: %v", err)
	}
	if !out.GoalReached {
		t.Error("expected goal reached")
	}
}

func TestRun_NotificationFailureNeverCrashes(t *testing.T) {
	sess := &fakeSession{balances: []string{"10.00"}}
	n := &fakeNotifier{sendErr: fmt.Errorf("telegram down")}
	d := &fakeDisabler{}

	if _, err := newTestController(sess, n, d).Run(context.Background()); err != nil {
		t.Fatalf("notification failure must be swallowed: %v", err)
	}
}

func TestRun_BalanceReadExhaustionAborts(t *testing.T) {
	sess := &fakeSession{
		balances:   []string{"0"},
		balanceErr: model.Transient("read balance", fmt.Errorf("timeout")),
	}
	n := &fakeNotifier{}
	d := &fakeDisabler{}

	_, err := newTestController(sess, n, d).Run(context.Background())
	if err == nil {
		t.Fatal("expected run abort on balance read exhaustion")
	}
	var tErr *model.TransientIOError
	if !errors.As(err, &tErr) {
		t.Errorf("expected TransientIOError, got %v", err)
	}
	// Failure notification plus diagnostic screenshot.
	if len(n.texts) != 1 {
		t.Errorf("expected 1 failure notification, got %d", len(n.texts))
	}
	if n.photos != 1 {
		t.Errorf("expected 1 diagnostic photo, got %d", n.photos)
	}
	if sess.closed == 0 {
		t.Error("session not closed on abort")
	}
}

func TestRun_BelowMinStakeNoBet(t *testing.T) {
	sess := &fakeSession{
		balances: []string{"1.00"},
		legs:     []model.LegOdds{{SelectionID: "a", Decimal: dec("1.2")}},
	}
	n := &fakeNotifier{}
	d := &fakeDisabler{}

	out, err := newTestController(sess, n, d).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.placed != nil {
		t.Error("bet placed below minimum stake threshold")
	}
	if out.Action != model.ActionNone {
		t.Errorf("action = %s, want NONE", out.Action)
	}
}
