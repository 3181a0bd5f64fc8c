package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/store"
)

// HousekeepingService periodically purges verification codes that expired
// longer than Retention ago. The lifecycle operations never delete codes,
// so without it the table only grows.
type HousekeepingService struct {
	Store     store.Store
	Logger    *slog.Logger
	Interval  time.Duration
	Retention time.Duration
	Clock     Clock

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(
	store store.Store,
	logger *slog.Logger,
	interval, retention time.Duration,
) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:     store,
		Logger:    logger,
		Interval:  interval,
		Retention: retention,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started",
		slog.Duration("interval", s.Interval),
		slog.Duration("retention", s.Retention),
	)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
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

// Cleanup deletes codes whose expiry is older than the retention window
// and returns how many were removed.
func (s *HousekeepingService) Cleanup(ctx context.Context) int64 {
	cutoff := s.Clock.now().Add(-s.Retention)

	n, err := s.Store.VerificationCodes().DeleteExpiredBefore(ctx, cutoff)
	if err != nil {
		s.Logger.Error("failed to delete expired verification codes", slog.Any("error", err))
		return 0
	}
	s.Logger.Info("housekeeping cleanup completed",
		slog.Int64("verification_codes_deleted", n),
		slog.Time("cutoff", cutoff),
	)
	return n
}
