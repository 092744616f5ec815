package scheduler

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/robfig/cron/v3"

	"CompteClient/internal/dashboard"
	"CompteClient/internal/notifier"
	"CompteClient/internal/render"
)

// Notifier delivers digests. It is nil when Telegram is not configured.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

const sendRetries = 3

// Scheduler publishes dashboard snapshots on a cron schedule.
type Scheduler struct {
	Cron         *cron.Cron
	Dashboard    *dashboard.Service
	Notifier     Notifier
	SnapshotPath string
	Ctx          context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, svc *dashboard.Service, n Notifier, snapshotPath string) *Scheduler {
	return &Scheduler{
		Cron:         cron.New(cron.WithSeconds()),
		Dashboard:    svc,
		Notifier:     n,
		SnapshotPath: snapshotPath,
		Ctx:          ctx,
	}
}

// Register schedules the snapshot task.
func (s *Scheduler) Register(snapshotCron string) error {
	if _, err := s.Cron.AddFunc(snapshotCron, s.snapshotTask); err != nil {
		return fmt.Errorf("register snapshot task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunSnapshotNow executes the snapshot task immediately.
func (s *Scheduler) RunSnapshotNow() {
	s.snapshotTask()
}

func (s *Scheduler) snapshotTask() {
	log.Println("[INFO] running snapshot task")
	snap, err := s.Dashboard.Snapshot(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] snapshot load: %v", err)
		s.trySend(notifier.FormatLoadFailure(err))
		return
	}

	if err := writeSnapshot(s.SnapshotPath, snap); err != nil {
		log.Printf("[ERROR] write snapshot: %v", err)
	} else {
		log.Printf("[INFO] snapshot %s written to %s", snap.Meta.RenderID, s.SnapshotPath)
	}

	s.trySend(notifier.FormatDigest(snap))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	switch command {
	case "/risk", "/concentration", "risque":
		snap, err := s.Dashboard.Snapshot(ctx)
		if err != nil {
			return notifier.FormatLoadFailure(err)
		}
		return notifier.FormatDigest(snap)
	default:
		return "Commandes disponibles:\n• /risk : concentration de risque et encours total"
	}
}

// writeSnapshot replaces the file at path with the rendered page. The page
// is rendered fully before the file is touched.
func writeSnapshot(path string, snap *dashboard.Snapshot) error {
	var buf bytes.Buffer
	if err := render.Page(&buf, snap.Layout, snap.Meta); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return os.Rename(tmp, path)
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, sendRetries); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
