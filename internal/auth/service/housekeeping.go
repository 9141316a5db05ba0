package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
)

// HousekeepingService periodically removes rows that can no longer affect an
// authentication decision: expired blacklist entries, expired refresh tokens
// and finished rate windows. It also deactivates sessions whose refresh
// lifetime has run out.
type HousekeepingService struct {
	Store store.Store

	// RateWindows is swept as well. Defaults to Store.RateWindows().
	RateWindows store.RateWindows

	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:       st,
		RateWindows: st.RateWindows(),
		Logger:      logger,
		Interval:    interval,
		Now:         time.Now,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup runs one sweep. Each step is independent, a failure in one does
// not stop the others. It returns the number of rows touched.
func (s *HousekeepingService) Cleanup(ctx context.Context) int64 {
	now := s.Now()
	s.Logger.Debug("starting housekeeping cleanup")

	steps := []struct {
		name string
		fn   func(context.Context, time.Time) (int64, error)
	}{
		{"expired blacklist entries", s.Store.Blacklist().DeleteExpired},
		{"expired refresh tokens", s.Store.RefreshTokens().DeleteExpired},
		{"finished rate windows", s.RateWindows.DeleteExpired},
		{"stale sessions", s.Store.Sessions().ExpireStale},
	}

	var total int64
	for _, step := range steps {
		n, err := step.fn(ctx, now)
		if err != nil {
			s.Logger.Error("housekeeping step failed", "step", step.name, "error", err)
			continue
		}
		s.Logger.Debug("housekeeping step completed", "step", step.name, "rows", n)
		total += n
	}

	s.Logger.Info("housekeeping cleanup completed", "rows", total)
	return total
}
