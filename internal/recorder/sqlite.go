package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at     INTEGER NOT NULL,
			finished_at    INTEGER NOT NULL,
			balance_before TEXT,
			balance_after  TEXT,
			action         TEXT,
			goal_reached   INTEGER,
			claimed        INTEGER,
			error          TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS bets (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp       INTEGER NOT NULL,
			stake           TEXT,
			combined_odds   TEXT,
			expected_payout TEXT,
			legs            INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bets_ts ON bets(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(rec *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO runs
		(started_at, finished_at, balance_before, balance_after, action, goal_reached, claimed, error)
		VALUES (?,?,?,?,?,?,?,?)`,
		rec.StartedAt.Unix(), rec.FinishedAt.Unix(),
		rec.BalanceBefore, rec.BalanceAfter, rec.Action,
		boolToInt(rec.GoalReached), boolToInt(rec.Claimed), rec.ErrorText,
	)
	return err
}

func (r *SQLiteRecorder) RecordBet(rec *BetRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO bets
		(timestamp, stake, combined_odds, expected_payout, legs)
		VALUES (?,?,?,?,?)`,
		time.Now().Unix(), rec.Stake, rec.CombinedOdds, rec.ExpectedPayout, rec.Legs,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
