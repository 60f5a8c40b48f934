package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Fliff struct {
		Username  string  `yaml:"username"`
		Password  string  `yaml:"password"`
		BaseURL   string  `yaml:"base_url"`
		Latitude  float64 `yaml:"latitude"`
		Longitude float64 `yaml:"longitude"`
	} `yaml:"fliff"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	GitHub struct {
		Token        string `yaml:"token"`
		Repository   string `yaml:"repository"`
		WorkflowFile string `yaml:"workflow_file"`
	} `yaml:"github"`
	Betting struct {
		GoalBalance         float64 `yaml:"goal_balance"`
		MinStake            float64 `yaml:"min_stake"`
		StakeFraction       float64 `yaml:"stake_fraction"`
		SafeOddsMin         float64 `yaml:"safe_odds_min"`
		SafeOddsMax         float64 `yaml:"safe_odds_max"`
		MinPayout           float64 `yaml:"min_payout"`
		MaxPayout           float64 `yaml:"max_payout"`
		MaxLegs             int     `yaml:"max_legs"`
		CapPayoutAtGoal     *bool   `yaml:"cap_payout_at_goal"`
		GoalOvershootMargin float64 `yaml:"goal_overshoot_margin"`
	} `yaml:"betting"`
	Run struct {
		ClaimRetries         int     `yaml:"claim_retries"`
		RetryBackoffSeconds  float64 `yaml:"retry_backoff_seconds"`
		OperationTimeoutSecs int     `yaml:"operation_timeout_seconds"`
		ScreenshotDir        string  `yaml:"screenshot_dir"`
	} `yaml:"run"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("FLIFF_USERNAME"); v != "" {
		cfg.Fliff.Username = v
	}
	if v := os.Getenv("FLIFF_PASSWORD"); v != "" {
		cfg.Fliff.Password = v
	}
	if v := os.Getenv("GEOLOCATION_LATITUDE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Fliff.Latitude = f
		}
	}
	if v := os.Getenv("GEOLOCATION_LONGITUDE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Fliff.Longitude = f
		}
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		cfg.GitHub.Token = v
	}
	if v := os.Getenv("GITHUB_REPOSITORY"); v != "" {
		cfg.GitHub.Repository = v
	}
	if v := os.Getenv("GOAL_BALANCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Betting.GoalBalance = f
		}
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Fliff.BaseURL == "" {
		cfg.Fliff.BaseURL = "https://fliff.com"
	}
	if cfg.Fliff.Latitude == 0 && cfg.Fliff.Longitude == 0 {
		cfg.Fliff.Latitude = 40.7128
		cfg.Fliff.Longitude = -74.0060
	}
	if cfg.GitHub.WorkflowFile == "" {
		cfg.GitHub.WorkflowFile = "main.yml"
	}
	if cfg.Betting.GoalBalance == 0 {
		cfg.Betting.GoalBalance = 10.00
	}
	if cfg.Betting.MinStake == 0 {
		cfg.Betting.MinStake = 1.80
	}
	if cfg.Betting.StakeFraction == 0 {
		cfg.Betting.StakeFraction = 0.5
	}
	if cfg.Betting.SafeOddsMin == 0 {
		cfg.Betting.SafeOddsMin = 1.05
	}
	if cfg.Betting.SafeOddsMax == 0 {
		cfg.Betting.SafeOddsMax = 1.5
	}
	if cfg.Betting.MaxLegs == 0 {
		cfg.Betting.MaxLegs = 3
	}
	if cfg.Betting.CapPayoutAtGoal == nil {
		t := true
		cfg.Betting.CapPayoutAtGoal = &t
	}
	if cfg.Betting.GoalOvershootMargin == 0 {
		cfg.Betting.GoalOvershootMargin = 0.50
	}
	if cfg.Run.ClaimRetries == 0 {
		cfg.Run.ClaimRetries = 3
	}
	if cfg.Run.RetryBackoffSeconds == 0 {
		cfg.Run.RetryBackoffSeconds = 2
	}
	if cfg.Run.OperationTimeoutSecs == 0 {
		cfg.Run.OperationTimeoutSecs = 30
	}
	if cfg.Run.ScreenshotDir == "" {
		cfg.Run.ScreenshotDir = "screenshots"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Fliff.Username == "" {
		return fmt.Errorf("fliff.username is required")
	}
	if c.Fliff.Password == "" {
		return fmt.Errorf("fliff.password is required")
	}
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if c.GitHub.Token == "" {
		return fmt.Errorf("github.token is required")
	}
	if c.GitHub.Repository == "" {
		return fmt.Errorf("github.repository is required")
	}
	if c.Betting.GoalBalance <= 0 {
		return fmt.Errorf("betting.goal_balance must be positive")
	}
	if c.Betting.StakeFraction <= 0 || c.Betting.StakeFraction > 1 {
		return fmt.Errorf("betting.stake_fraction must be in (0, 1]")
	}
	if c.Betting.SafeOddsMin <= 1.0 {
		return fmt.Errorf("betting.safe_odds_min must be greater than 1.0")
	}
	if c.Betting.SafeOddsMax < c.Betting.SafeOddsMin {
		return fmt.Errorf("betting.safe_odds_max must be >= safe_odds_min")
	}
	if c.Run.ClaimRetries < 1 {
		return fmt.Errorf("run.claim_retries must be at least 1")
	}
	return nil
}

// OperationTimeout returns the per-operation deadline for session calls.
func (c *Config) OperationTimeout() time.Duration {
	return time.Duration(c.Run.OperationTimeoutSecs) * time.Second
}

// RetryBackoff returns the base delay between retry attempts.
func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.Run.RetryBackoffSeconds * float64(time.Second))
}
