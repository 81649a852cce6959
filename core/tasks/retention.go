// Package tasks runs the periodic housekeeping jobs: expired session purge
// and audit log retention.
package tasks

import (
	"context"
	"sync"
	"time"

	"campus-soporte/config"
	"campus-soporte/core/store"
	"campus-soporte/core/utils"

	"github.com/robfig/cron/v3"
)

type RetentionWorker struct {
	cfg      config.RetentionConfig
	sessions store.SessionStore
	audits   store.AuditStore
	logger   *utils.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

func NewRetentionWorker(cfg config.RetentionConfig, sessions store.SessionStore, audits store.AuditStore, logger *utils.Logger) *RetentionWorker {
	return &RetentionWorker{cfg: cfg, sessions: sessions, audits: audits, logger: logger}
}

func (w *RetentionWorker) StartWithContext(ctx context.Context) {
	if w == nil || !w.cfg.Enabled {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	c := cron.New()
	spec := w.cfg.CronSpec
	if spec == "" {
		spec = "@hourly"
	}
	if _, err := c.AddFunc(spec, func() { w.RunOnce(ctx, time.Now().UTC()) }); err != nil {
		w.logger.Errorf("retention cron spec %q: %v", spec, err)
		return
	}
	c.Start()
	w.cron = c
	w.running = true
	w.logger.Printf("retention worker started spec=%q", spec)
}

func (w *RetentionWorker) StopWithContext(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running || w.cron == nil {
		return nil
	}
	stopCtx := w.cron.Stop()
	w.running = false
	select {
	case <-stopCtx.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *RetentionWorker) RunOnce(ctx context.Context, now time.Time) {
	if n, err := w.sessions.DeleteExpired(ctx, now); err != nil {
		w.logger.Errorf("retention: purge sessions: %v", err)
	} else if n > 0 {
		w.logger.Printf("retention: purged %d expired sessions", n)
	}
	if w.cfg.AuditMaxDays > 0 {
		cutoff := now.AddDate(0, 0, -w.cfg.AuditMaxDays)
		if n, err := w.audits.DeleteOlderThan(ctx, cutoff); err != nil {
			w.logger.Errorf("retention: purge audit log: %v", err)
		} else if n > 0 {
			w.logger.Printf("retention: purged %d audit entries", n)
		}
	}
}
