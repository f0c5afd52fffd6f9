// Package cleanup reclaims expired work logs from the registry.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/regulata/researchd/pkg/config"
	"github.com/regulata/researchd/pkg/registry"
)

// Service periodically purges work logs whose residency window has lapsed.
// A purge only drops the registry's reference; runs still holding the work
// log keep using it. Safe to start once per process.
type Service struct {
	config   *config.RetentionConfig
	registry *registry.Registry

	cancel context.CancelFunc
	done   chan struct{}
}

// NewService creates a new cleanup service.
func NewService(cfg *config.RetentionConfig, reg *registry.Registry) *Service {
	return &Service{
		config:   cfg,
		registry: reg,
	}
}

// Start launches the background purge loop.
func (s *Service) Start(ctx context.Context) {
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(ctx)

	slog.Info("Cleanup service started",
		"worklog_ttl", s.config.WorkLogTTL,
		"interval", s.config.PurgeInterval)
}

// Stop signals the purge loop to exit and waits for it to finish.
func (s *Service) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	slog.Info("Cleanup service stopped")
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)

	s.purge()

	ticker := time.NewTicker(s.config.PurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.purge()
		}
	}
}

func (s *Service) purge() {
	count := s.registry.PurgeExpired()
	if count > 0 {
		slog.Info("Retention: purged expired work logs", "count", count)
	}
}
