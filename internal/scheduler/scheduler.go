package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"BetPilot/internal/model"
	"BetPilot/internal/notifier"
)

// Runner executes one full bot run. Each invocation builds a fresh session,
// so the scheduler never holds browser state between ticks.
type Runner func(ctx context.Context) (*model.RunOutcome, error)

// Scheduler drives recurring runs for self-hosted operation. The production
// deployment uses an external cron instead and never constructs one of these.
type Scheduler struct {
	Cron *cron.Cron
	Ctx  context.Context

	run Runner

	mu          sync.Mutex
	running     bool
	goalReached bool
	last        *model.RunOutcome
}

// NewScheduler creates a scheduler around a run function.
func NewScheduler(ctx context.Context, run Runner) *Scheduler {
	return &Scheduler{
		Cron: cron.New(cron.WithSeconds()),
		Ctx:  ctx,
		run:  run,
	}
}

// Register adds the recurring run at the given cron spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.task); err != nil {
		return fmt.Errorf("register run task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the task immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.task()
}

func (s *Scheduler) task() {
	s.mu.Lock()
	if s.goalReached || s.running {
		s.mu.Unlock()
		log.Println("[INFO] run skipped (goal reached or already running)")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	log.Println("[INFO] scheduled run starting")
	out, err := s.run(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] scheduled run: %v", err)
		return
	}

	s.mu.Lock()
	s.last = out
	if out.GoalReached {
		s.goalReached = true
	}
	s.mu.Unlock()

	if out.GoalReached {
		// The external workflow is already disabled by the controller;
		// stop the local schedule too.
		log.Println("[INFO] goal reached, stopping local schedule")
		s.Cron.Stop()
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/run":
		go s.task()
		return "Run started."
	case "/status":
		return s.status()
	default:
		return "Available commands:\n• /run — execute a run now\n• /status — last run outcome"
	}
}

func (s *Scheduler) status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.goalReached {
		return "Goal reached. Scheduling is stopped."
	}
	if s.last == nil {
		return "No completed runs yet."
	}
	return notifier.FormatRunReport(s.last)
}
