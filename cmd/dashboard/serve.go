package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"CompteClient/internal/config"
	"CompteClient/internal/dashboard"
	"CompteClient/internal/gateway"
	"CompteClient/internal/notifier"
	"CompteClient/internal/scheduler"
	"CompteClient/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	log.Println("[INFO] Compte client dashboard starting...")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	gw := gateway.New(cfg.Database.Driver, cfg.Database.Path)
	svc := dashboard.NewService(gw)
	log.Printf("[INFO] data source: %s", cfg.Database.Driver)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var n scheduler.Notifier
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		n = tn
	}

	sched := scheduler.NewScheduler(ctx, svc, n, cfg.Snapshot.Path)
	if cfg.Snapshot.Cron != "" {
		if err := sched.Register(cfg.Snapshot.Cron); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, writing snapshot now")
		go sched.RunSnapshotNow()
	}

	err = server.New(svc, gw).ListenAndServe(ctx, cfg.Server.Addr)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	log.Println("[INFO] Compte client dashboard stopped")
	return nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Database.Path = db
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}
