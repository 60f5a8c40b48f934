package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"BetPilot/internal/bot"
	"BetPilot/internal/config"
	"BetPilot/internal/driver"
	"BetPilot/internal/model"
	"BetPilot/internal/notifier"
	"BetPilot/internal/recorder"
	"BetPilot/internal/scheduler"
	"BetPilot/internal/strategy"
	"BetPilot/internal/workflow"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] BetPilot starting...")

	loop := flag.Bool("loop", false, "run on an in-process cron schedule instead of one-shot")
	enable := flag.Bool("enable-workflow", false, "re-enable the scheduled workflow and exit")
	flag.Parse()

	// .env is optional; CI injects real env vars.
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	wf := workflow.NewManager(cfg.GitHub.Token, cfg.GitHub.Repository, cfg.GitHub.WorkflowFile, cfg.Proxy)

	if *enable {
		if err := wf.Enable(context.Background()); err != nil {
			log.Fatalf("[FATAL] %v", err)
		}
		return
	}

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	policy := strategy.PolicyFromConfig(cfg)

	// Every run builds a fresh browser session and a fresh controller; the
	// controller owns the session and closes it on every exit path.
	runOnce := func(ctx context.Context) (*model.RunOutcome, error) {
		drv, err := driver.New(cfg)
		if err != nil {
			return nil, err
		}
		ctl := bot.New(drv, tn, wf, rec, policy, cfg.Run.ClaimRetries, cfg.RetryBackoff())
		return ctl.Run(ctx)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if !*loop {
		// One-shot: the external scheduler reads our exit status.
		if _, err := runOnce(ctx); err != nil {
			log.Printf("[ERROR] run failed: %v", err)
			os.Exit(1)
		}
		log.Println("[INFO] run completed")
		return
	}

	if cfg.Schedule.Cron == "" {
		log.Fatal("[FATAL] schedule.cron is required in loop mode")
	}

	sched := scheduler.NewScheduler(ctx, runOnce)
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		log.Fatalf("[FATAL] register cron task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Println("[INFO] Telegram polling started")

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing run now")
		go sched.RunNow()
	}

	log.Println("[INFO] BetPilot is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] BetPilot stopped")
}
