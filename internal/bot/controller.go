package bot

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"BetPilot/internal/model"
	"BetPilot/internal/notifier"
	"BetPilot/internal/recorder"
	"BetPilot/internal/retry"
	"BetPilot/internal/strategy"
)

// Session is the authenticated browsing capability set the controller
// consumes. The chromedp driver implements it; tests use fakes.
type Session interface {
	Login(ctx context.Context) error
	Balance(ctx context.Context) (decimal.Decimal, error)
	ClaimRewards(ctx context.Context) (model.RewardClaim, error)
	OpenWagers(ctx context.Context) (int, error)
	AvailableLegs(ctx context.Context) ([]model.LegOdds, error)
	PlaceParlay(ctx context.Context, plan *model.ParlayPlan) error
	Screenshot(ctx context.Context) ([]byte, error)
	BetSlipScreenshot(ctx context.Context) ([]byte, error)
	Close()
}

// Notifier reports run outcomes to the operator channel. Send failures are
// swallowed by the controller: a run must never crash on notification.
type Notifier interface {
	Send(text string) error
	SendPhoto(photo []byte, caption string) error
}

// Disabler flips the external scheduler's enabled flag. Best-effort.
type Disabler interface {
	Disable(ctx context.Context) error
}

// Controller is the single-shot run decision procedure. It keeps no state
// between invocations; every run rebuilds its view from live session reads.
type Controller struct {
	session  Session
	notifier Notifier
	disabler Disabler
	recorder recorder.Recorder

	policy       strategy.Policy
	claimRetries int
	backoff      time.Duration
}

// New wires a controller from its collaborators.
func New(sess Session, n Notifier, d Disabler, rec recorder.Recorder, policy strategy.Policy, claimRetries int, backoff time.Duration) *Controller {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Controller{
		session:      sess,
		notifier:     n,
		disabler:     d,
		recorder:     rec,
		policy:       policy,
		claimRetries: claimRetries,
		backoff:      backoff,
	}
}

// Run executes one full decision cycle: authenticate, goal check, claim,
// bet, goal check, notify. The session is released on every exit path.
// Exactly one notification is sent per run, success or failure.
func (c *Controller) Run(ctx context.Context) (*model.RunOutcome, error) {
	startedAt := time.Now()
	defer c.session.Close()

	if err := c.session.Login(ctx); err != nil {
		var authErr *model.AuthError
		if errors.As(err, &authErr) {
			// Bad credentials cannot succeed on retry; report and stop.
			log.Printf("[ERROR] %v", err)
			c.trySend(notifier.FormatFailure(err))
			c.recordFailed(startedAt, err)
			return nil, err
		}
		return c.abort(ctx, startedAt, err)
	}

	balance, err := c.readBalance(ctx)
	if err != nil {
		return c.abort(ctx, startedAt, err)
	}

	out := &model.RunOutcome{
		BalanceBefore: balance,
		BalanceAfter:  balance,
		Action:        model.ActionNone,
	}

	if balance.GreaterThanOrEqual(c.policy.GoalBalance) {
		return c.finishGoalReached(ctx, out, startedAt)
	}

	var partial []error

	claim, claimErr := c.claimRewards(ctx)
	if claimErr != nil {
		log.Printf("[WARN] reward claim abandoned: %v", claimErr)
		partial = append(partial, claimErr)
	}

	balanceAfterClaim, err := c.readBalance(ctx)
	if err != nil {
		return c.abort(ctx, startedAt, err)
	}
	if claim.Claimed {
		delta := balanceAfterClaim.Sub(balance)
		if delta.IsNegative() {
			delta = decimal.Zero
		}
		out.Claim = model.RewardClaim{Claimed: true, Amount: delta}
		out.Action = out.Action.WithClaim()
	}

	if betErr := c.maybeBet(ctx, out, balanceAfterClaim); betErr != nil {
		log.Printf("[WARN] betting skipped: %v", betErr)
		partial = append(partial, betErr)
	}

	final, err := c.readBalance(ctx)
	if err != nil {
		return c.abort(ctx, startedAt, err)
	}
	out.BalanceAfter = final
	out.Err = errors.Join(partial...)
	out.FinishedAt = time.Now()

	if final.GreaterThanOrEqual(c.policy.GoalBalance) {
		return c.finishGoalReached(ctx, out, startedAt)
	}

	c.trySend(notifier.FormatRunReport(out))
	c.record(out, startedAt)
	return out, nil
}

// maybeBet evaluates the betting policy and submits a parlay when one can be
// built. Returned errors degrade the outcome; they never abort the run.
func (c *Controller) maybeBet(ctx context.Context, out *model.RunOutcome, balance decimal.Decimal) error {
	if balance.LessThan(c.policy.MinStake) {
		log.Printf("[INFO] balance %s below minimum stake, skipping bet", balance.StringFixed(2))
		return nil
	}

	var open int
	err := retry.Do(ctx, "open wagers", c.claimRetries, c.backoff, func() error {
		var inner error
		open, inner = c.session.OpenWagers(ctx)
		return inner
	})
	if err != nil {
		return err
	}
	if open > 0 {
		log.Printf("[INFO] %d open wagers pending, skipping bet", open)
		return nil
	}

	var legs []model.LegOdds
	err = retry.Do(ctx, "available legs", c.claimRetries, c.backoff, func() error {
		var inner error
		legs, inner = c.session.AvailableLegs(ctx)
		return inner
	})
	if err != nil {
		return err
	}

	plan, err := strategy.BuildParlay(legs, balance, c.policy)
	if errors.Is(err, strategy.ErrNoViableParlay) {
		log.Println("[INFO] no viable parlay this run")
		return nil
	}
	if err != nil {
		return err
	}

	if err := c.session.PlaceParlay(ctx, plan); err != nil {
		return &model.BetError{Err: err}
	}
	out.Plan = plan
	out.Action = out.Action.WithBet()

	if shot, err := c.session.BetSlipScreenshot(ctx); err == nil {
		if err := c.notifier.SendPhoto(shot, "Bet slip confirmation"); err != nil {
			log.Printf("[ERROR] send bet slip photo: %v", err)
		}
	}
	return nil
}

func (c *Controller) readBalance(ctx context.Context) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := retry.Do(ctx, "read balance", c.claimRetries, c.backoff, func() error {
		var inner error
		balance, inner = c.session.Balance(ctx)
		return inner
	})
	return balance, err
}

func (c *Controller) claimRewards(ctx context.Context) (model.RewardClaim, error) {
	var claim model.RewardClaim
	err := retry.Do(ctx, "claim rewards", c.claimRetries, c.backoff, func() error {
		var inner error
		claim, inner = c.session.ClaimRewards(ctx)
		return inner
	})
	return claim, err
}

// finishGoalReached marks the terminal state: disable the external schedule
// (best-effort), announce, record.
func (c *Controller) finishGoalReached(ctx context.Context, out *model.RunOutcome, startedAt time.Time) (*model.RunOutcome, error) {
	out.GoalReached = true
	if out.FinishedAt.IsZero() {
		out.FinishedAt = time.Now()
	}
	if err := c.disabler.Disable(ctx); err != nil {
		log.Printf("[ERROR] %v", err)
	}
	log.Printf("[INFO] goal reached at balance %s", out.BalanceAfter.StringFixed(2))
	c.trySend(notifier.FormatGoalReached(out))
	c.record(out, startedAt)
	return out, nil
}

// abort handles a run-ending failure: capture a diagnostic screenshot,
// attach it to the failure notification, record, and propagate.
func (c *Controller) abort(ctx context.Context, startedAt time.Time, err error) (*model.RunOutcome, error) {
	log.Printf("[ERROR] run aborted: %v", err)
	c.trySend(notifier.FormatFailure(err))
	if shot, shotErr := c.session.Screenshot(ctx); shotErr == nil {
		if sendErr := c.notifier.SendPhoto(shot, "Diagnostic screenshot"); sendErr != nil {
			log.Printf("[ERROR] send diagnostic photo: %v", sendErr)
		}
	} else {
		log.Printf("[WARN] diagnostic screenshot failed: %v", shotErr)
	}
	c.recordFailed(startedAt, err)
	return nil, err
}

func (c *Controller) record(out *model.RunOutcome, startedAt time.Time) {
	run, bet := recorder.FromOutcome(out, startedAt)
	if err := c.recorder.RecordRun(run); err != nil {
		log.Printf("[ERROR] record run: %v", err)
	}
	if bet != nil {
		if err := c.recorder.RecordBet(bet); err != nil {
			log.Printf("[ERROR] record bet: %v", err)
		}
	}
}

func (c *Controller) recordFailed(startedAt time.Time, err error) {
	rec := &recorder.RunRecord{
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		Action:     string(model.ActionNone),
		ErrorText:  err.Error(),
	}
	if recErr := c.recorder.RecordRun(rec); recErr != nil {
		log.Printf("[ERROR] record failed run: %v", recErr)
	}
}

func (c *Controller) trySend(text string) {
	if err := c.notifier.Send(text); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
