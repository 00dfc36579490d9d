package services

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"invoice-extraction-platform/internal/logger"
)

// RetentionService periodically deletes finished runs past the
// configured retention window.
type RetentionService struct {
	store     *RunStore
	retention time.Duration
	scheduler *gocron.Scheduler
}

func NewRetentionService(store *RunStore, retentionDays, sweepMinutes int) *RetentionService {
	s := gocron.NewScheduler(time.UTC)

	rs := &RetentionService{
		store:     store,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		scheduler: s,
	}

	s.Every(sweepMinutes).Minutes().Do(rs.sweep)
	return rs
}

func (r *RetentionService) Start() {
	logger.Info("Starting run retention service", "retention", r.retention.String())
	r.scheduler.StartAsync()
}

func (r *RetentionService) Stop() {
	r.scheduler.Stop()
}

func (r *RetentionService) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	deleted, err := r.store.DeleteOlderThan(ctx, time.Now().Add(-r.retention))
	if err != nil {
		logger.Error("Retention sweep failed", "error", err)
		return
	}
	if deleted > 0 {
		logger.Info("Retention sweep removed expired runs", "count", deleted)
	}
}
