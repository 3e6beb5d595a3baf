package app

import (
	"context"
	"errors"
	"lincognito/internal/config"
	apphttp "lincognito/internal/http"
	"lincognito/internal/infra/cache"
	"lincognito/internal/jobs"
	"lincognito/internal/repository/postgres"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Service is the assembled application.
type Service struct {
	config    *config.Config
	log       *logrus.Logger
	db        *postgres.DB
	memory    *cache.MemoryStore
	urlCache  *cache.URLCache
	scheduler *jobs.Scheduler
	weekly    *jobs.WeeklyReport
	server    *apphttp.Server
	closers   closers

	stopSweep context.CancelFunc
}

// Start runs the scheduler and background sweeps, then blocks serving HTTP until
// Shutdown is called.
func (s *Service) Start() error {
	if s.server == nil {
		return errors.New("service was built without an HTTP server")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.stopSweep = cancel
	go s.startCacheCleanup(ctx)

	s.scheduler.Start()

	addr := ":" + s.config.Server.Port
	s.log.WithField("addr", addr).Info("Starting HTTP server")
	if err := s.server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// startCacheCleanup drops expired presigned URLs and in-memory stats.
func (s *Service) startCacheCleanup(ctx context.Context) {
	ticker := time.NewTicker(cacheSweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.urlCache.Clear()
			if s.memory != nil {
				s.memory.Sweep()
			}
		}
	}
}

// RunWeeklyReport sends the weekly report once, outside the cron schedule.
func (s *Service) RunWeeklyReport(ctx context.Context) error {
	return s.scheduler.RunNow(ctx, s.weekly)
}

// Shutdown stops cron first, drains HTTP, then releases pools and clients.
func (s *Service) Shutdown(ctx context.Context) error {
	var errs []error

	s.scheduler.Stop(ctx)
	if s.stopSweep != nil {
		s.stopSweep()
	}
	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	runClosers(s.closers, s.log)
	return errors.Join(errs...)
}

func runClosers(c closers, log *logrus.Logger) {
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			log.WithError(err).Warn("Failed to release resource")
		}
	}
}
