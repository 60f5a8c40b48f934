package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if cfg.Betting.GoalBalance != 10.00 {
		t.Errorf("goal_balance default = %v, want 10.00", cfg.Betting.GoalBalance)
	}
	if cfg.Betting.MinStake != 1.80 {
		t.Errorf("min_stake default = %v, want 1.80", cfg.Betting.MinStake)
	}
	if cfg.Betting.SafeOddsMin != 1.05 || cfg.Betting.SafeOddsMax != 1.5 {
		t.Errorf("safe odds band default = [%v, %v]", cfg.Betting.SafeOddsMin, cfg.Betting.SafeOddsMax)
	}
	if cfg.Run.ClaimRetries != 3 {
		t.Errorf("claim_retries default = %d, want 3", cfg.Run.ClaimRetries)
	}
	if cfg.OperationTimeout() != 30*time.Second {
		t.Errorf("operation timeout default = %v, want 30s", cfg.OperationTimeout())
	}
	if cfg.RetryBackoff() != 2*time.Second {
		t.Errorf("retry backoff default = %v, want 2s", cfg.RetryBackoff())
	}
	if cfg.Betting.CapPayoutAtGoal == nil || !*cfg.Betting.CapPayoutAtGoal {
		t.Error("cap_payout_at_goal should default to true")
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
fliff:
  username: file_user
betting:
  goal_balance: 25.0
`)
	t.Setenv("FLIFF_USERNAME", "env_user")
	t.Setenv("FLIFF_PASSWORD", "env_pass")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Fliff.Username != "env_user" {
		t.Errorf("env should override file, got %q", cfg.Fliff.Username)
	}
	if cfg.Fliff.Password != "env_pass" {
		t.Errorf("password = %q, want env_pass", cfg.Fliff.Password)
	}
	if cfg.Betting.GoalBalance != 25.0 {
		t.Errorf("goal_balance = %v, want 25.0", cfg.Betting.GoalBalance)
	}
}

func TestValidate(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation failure with no credentials")
	}

	cfg.Fliff.Username = "u"
	cfg.Fliff.Password = "p"
	cfg.Telegram.BotToken = "t"
	cfg.Telegram.ChatID = "c"
	cfg.GitHub.Token = "g"
	cfg.GitHub.Repository = "owner/repo"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}

	cfg.Betting.SafeOddsMin = 0.9
	if err := cfg.Validate(); err == nil {
		t.Error("expected failure for safe_odds_min <= 1.0")
	}
}
