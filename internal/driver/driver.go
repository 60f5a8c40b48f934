package driver

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"github.com/shopspring/decimal"

	"BetPilot/internal/config"
	"BetPilot/internal/model"
)

// UI selectors verified against the live app.
const (
	selLoginButton     = `.ticket-submit-button__label`
	selAccountNav      = `div.nav-account`
	selBalance         = `div.balances__item span.balances__balance`
	selBetSlip         = `.mobile-ticket-container`
	selStakeInput      = `.risk-amount-input__amount`
	selSubmitBet       = `.ticket-submit-button__label`
	selBetConfirmation = `.ticket-submit-button__bonus-text`
	selLocationPrompt  = `.button__label`
)

const (
	shopClaimJS = `(() => {
		const b = document.querySelector('.free-coins-plaque__claim-button');
		if (b) { b.click(); return 1; }
		return 0;
	})()`

	rewardsClaimJS = `(() => {
		let n = 0;
		for (const b of document.querySelectorAll('.claim-button')) {
			if (b.textContent.toLowerCase().includes('claim')) { b.click(); n++; }
		}
		return n;
	})()`

	openWagersJS = `document.querySelectorAll('.bet-slip').length`

	// Unlocked proposals on the sports page, positional id + raw odds text.
	availableLegsJS = `Array.from(document.querySelectorAll('div.card-home-proposal'))
		.filter(p => !p.querySelector('img[alt="lock"]'))
		.map((p, i) => {
			const label = p.querySelector('.card-cell-label');
			return { id: String(i), odds: label ? label.textContent.trim() : '' };
		})`

	loginErrorJS = `(() => {
		const e = document.querySelector('.login-error, .error-message');
		return e ? e.textContent.trim() : '';
	})()`
)

// Driver runs a headless Chrome session against the Fliff web app.
type Driver struct {
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	baseURL  string
	username string
	password string
	timeout  time.Duration
}

// New launches the browser with mobile emulation and geolocation override.
// The caller owns the session and must Close it on every exit path.
func New(cfg *config.Config) (*Driver, error) {
	opts := headlessFlags(cfg.Proxy)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, ctxCancel := chromedp.NewContext(allocCtx)
	cancel := func() {
		ctxCancel()
		allocCancel()
	}

	err := chromedp.Run(ctx,
		chromedp.EmulateViewport(375, 812),
		browser.GrantPermissions([]browser.PermissionType{browser.PermissionTypeGeolocation}),
		emulation.SetGeolocationOverride().
			WithLatitude(cfg.Fliff.Latitude).
			WithLongitude(cfg.Fliff.Longitude).
			WithAccuracy(100),
		chromedp.Navigate(cfg.Fliff.BaseURL),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	return &Driver{
		ctx:      ctx,
		cancel:   cancel,
		baseURL:  cfg.Fliff.BaseURL,
		username: cfg.Fliff.Username,
		password: cfg.Fliff.Password,
		timeout:  cfg.OperationTimeout(),
	}, nil
}

// op derives a per-operation deadline from the browser context. chromedp
// actions must run inside the browser context, so the caller context only
// gates early cancellation.
func (d *Driver) op(parent context.Context) (context.Context, context.CancelFunc, error) {
	if err := parent.Err(); err != nil {
		return nil, nil, err
	}
	octx, cancel := context.WithTimeout(d.ctx, d.timeout)
	return octx, cancel, nil
}

// Login authenticates the session. Rejected credentials surface as AuthError
// and are never retried; everything else is transient.
func (d *Driver) Login(ctx context.Context) error {
	if d.username == "" || d.password == "" {
		return &model.AuthError{Reason: "missing credentials"}
	}

	octx, cancel, err := d.op(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	err = chromedp.Run(octx,
		chromedp.Navigate(d.baseURL+"/login"),
		chromedp.WaitVisible(selLoginButton, chromedp.ByQuery),
		chromedp.SendKeys(`input[type="text"]`, d.username, chromedp.ByQuery),
		chromedp.SendKeys(`input[type="password"]`, d.password, chromedp.ByQuery),
		chromedp.Click(selLoginButton, chromedp.ByQuery),
	)
	if err != nil {
		return model.Transient("login form", err)
	}

	d.dismissLocationPrompt()

	wctx, wcancel, err := d.op(ctx)
	if err != nil {
		return err
	}
	defer wcancel()
	if err := chromedp.Run(wctx, chromedp.WaitVisible(selAccountNav, chromedp.ByQuery)); err != nil {
		var loginErr string
		_ = chromedp.Run(d.ctx, chromedp.Evaluate(loginErrorJS, &loginErr))
		if loginErr != "" {
			return &model.AuthError{Reason: loginErr}
		}
		return model.Transient("login confirmation", err)
	}
	log.Println("[INFO] login completed")
	return nil
}

// dismissLocationPrompt clicks through the location consent dialog if it
// appears. Absence of the prompt is not an error.
func (d *Driver) dismissLocationPrompt() {
	pctx, cancel := context.WithTimeout(d.ctx, 5*time.Second)
	defer cancel()
	if err := chromedp.Run(pctx,
		chromedp.WaitVisible(selLocationPrompt, chromedp.ByQuery),
		chromedp.Click(selLocationPrompt, chromedp.ByQuery),
	); err == nil {
		log.Println("[INFO] location prompt dismissed")
	}
}

// Balance reads the current cash balance from the account view.
func (d *Driver) Balance(ctx context.Context) (decimal.Decimal, error) {
	octx, cancel, err := d.op(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	defer cancel()

	var text string
	err = chromedp.Run(octx,
		chromedp.Click(selAccountNav, chromedp.ByQuery),
		chromedp.WaitVisible(selBalance, chromedp.ByQuery),
		chromedp.Text(selBalance, &text, chromedp.ByQuery),
	)
	if err != nil {
		return decimal.Zero, model.Transient("read balance", err)
	}
	bal, err := ParseBalance(text)
	if err != nil {
		return decimal.Zero, model.Transient("read balance", err)
	}
	return bal, nil
}

// ClaimRewards clicks through the shop free-coins plaque and the rewards
// page claim buttons. The claimed amount is not visible at click time; the
// caller derives it from the balance delta.
func (d *Driver) ClaimRewards(ctx context.Context) (model.RewardClaim, error) {
	octx, cancel, err := d.op(ctx)
	if err != nil {
		return model.RewardClaim{}, err
	}
	defer cancel()

	var shopClicks, rewardClicks int
	err = chromedp.Run(octx,
		chromedp.Navigate(d.baseURL+"/shop"),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(shopClaimJS, &shopClicks),
		chromedp.Sleep(2*time.Second), // claim animation
		chromedp.Navigate(d.baseURL+"/rewards"),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(rewardsClaimJS, &rewardClicks),
	)
	if err != nil {
		return model.RewardClaim{}, model.Transient("claim rewards", err)
	}
	total := shopClicks + rewardClicks
	log.Printf("[INFO] clicked %d claim buttons", total)
	return model.RewardClaim{Claimed: total > 0}, nil
}

// OpenWagers counts pending bet slips on the activity page.
func (d *Driver) OpenWagers(ctx context.Context) (int, error) {
	octx, cancel, err := d.op(ctx)
	if err != nil {
		return 0, err
	}
	defer cancel()

	var count int
	err = chromedp.Run(octx,
		chromedp.Navigate(d.baseURL+"/activity"),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(openWagersJS, &count),
	)
	if err != nil {
		return 0, model.Transient("open wagers", err)
	}
	return count, nil
}

// AvailableLegs scrapes unlocked selections from the sports page. Selection
// IDs are positional within the current page's proposal list, so a parlay
// built from them must be placed before the page changes.
func (d *Driver) AvailableLegs(ctx context.Context) ([]model.LegOdds, error) {
	octx, cancel, err := d.op(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var raw []struct {
		ID   string `json:"id"`
		Odds string `json:"odds"`
	}
	err = chromedp.Run(octx,
		chromedp.Navigate(d.baseURL+"/sports"),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(availableLegsJS, &raw),
	)
	if err != nil {
		return nil, model.Transient("available legs", err)
	}

	legs := make([]model.LegOdds, 0, len(raw))
	for _, r := range raw {
		odds, err := AmericanToDecimal(r.Odds)
		if err != nil {
			continue // unreadable cell, skip the selection
		}
		legs = append(legs, model.LegOdds{SelectionID: r.ID, Decimal: odds})
	}
	log.Printf("[INFO] found %d readable selections", len(legs))
	return legs, nil
}

// PlaceParlay clicks the plan's selections, fills the stake, and submits.
// Any failure is a BetError; the run completes reporting pre-bet state.
func (d *Driver) PlaceParlay(ctx context.Context, plan *model.ParlayPlan) error {
	octx, cancel, err := d.op(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	for _, leg := range plan.Legs {
		clickJS := fmt.Sprintf(`(() => {
			const open = Array.from(document.querySelectorAll('div.card-home-proposal'))
				.filter(p => !p.querySelector('img[alt="lock"]'));
			const target = open[%s];
			if (!target) return false;
			target.click();
			return true;
		})()`, leg.SelectionID)
		var clicked bool
		if err := chromedp.Run(octx,
			chromedp.Evaluate(clickJS, &clicked),
			chromedp.Sleep(time.Second), // bet slip refresh
		); err != nil {
			return &model.BetError{Err: fmt.Errorf("select leg %s: %w", leg.SelectionID, err)}
		}
		if !clicked {
			return &model.BetError{Err: fmt.Errorf("selection %s no longer available", leg.SelectionID)}
		}
	}

	err = chromedp.Run(octx,
		chromedp.WaitVisible(selBetSlip, chromedp.ByQuery),
		chromedp.Click(selStakeInput, chromedp.ByQuery),
		chromedp.SetValue(selStakeInput, plan.Stake.StringFixed(2), chromedp.ByQuery),
		chromedp.Click(selSubmitBet, chromedp.ByQuery),
		chromedp.WaitVisible(selBetConfirmation, chromedp.ByQuery),
	)
	if err != nil {
		return &model.BetError{Err: err}
	}
	log.Printf("[INFO] parlay submitted: stake %s at %s", plan.Stake.StringFixed(2), plan.CombinedOdds.StringFixed(4))
	return nil
}

// Screenshot captures a full-page PNG for failure diagnostics.
func (d *Driver) Screenshot(ctx context.Context) ([]byte, error) {
	octx, cancel, err := d.op(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var buf []byte
	if err := chromedp.Run(octx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return nil, model.Transient("screenshot", err)
	}
	return buf, nil
}

// BetSlipScreenshot captures just the bet slip element for confirmations.
func (d *Driver) BetSlipScreenshot(ctx context.Context) ([]byte, error) {
	octx, cancel, err := d.op(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var buf []byte
	if err := chromedp.Run(octx, chromedp.Screenshot(selBetSlip, &buf, chromedp.ByQuery)); err != nil {
		return nil, model.Transient("bet slip screenshot", err)
	}
	return buf, nil
}

// Close releases the browser contexts. Safe to call more than once.
func (d *Driver) Close() {
	d.closeOnce.Do(func() {
		d.cancel()
		log.Println("[INFO] browser session closed")
	})
}
