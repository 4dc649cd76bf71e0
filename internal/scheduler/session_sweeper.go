package scheduler

import (
	"context"
	"time"

	"github.com/homemeal/homemeal-backend/internal/metrics"
	"github.com/homemeal/homemeal-backend/internal/session"
	"github.com/homemeal/homemeal-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

const sweepTimeout = 30 * time.Second

// SessionSweeper periodically removes expired sessions so abandoned logins do not pile up.
type SessionSweeper struct {
	cron     *cron.Cron
	registry session.Registry
	schedule string
	metrics  *metrics.Metrics
}

// NewSessionSweeper 세션 정리 스케줄러 생성
func NewSessionSweeper(registry session.Registry, schedule string, m *metrics.Metrics) *SessionSweeper {
	if schedule == "" {
		schedule = "@every 5m"
	}
	return &SessionSweeper{
		cron:     cron.New(),
		registry: registry,
		schedule: schedule,
		metrics:  m,
	}
}

// Start 스케줄러 시작
func (s *SessionSweeper) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.RunOnce(context.Background()); err != nil {
			logger.Error("Failed to sweep sessions from scheduler", err)
		}
	})
	if err != nil {
		logger.Error("Failed to add cron job for session sweep", err, map[string]interface{}{
			"schedule": s.schedule,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Session sweeper started", map[string]interface{}{
		"schedule": s.schedule,
	})
	return nil
}

// RunOnce sweeps expired sessions and refreshes the active-session gauge.
func (s *SessionSweeper) RunOnce(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	removed, err := s.registry.Sweep(ctx)
	if err != nil {
		return 0, err
	}

	active, err := s.registry.Count(ctx)
	if err != nil {
		return removed, err
	}

	s.metrics.RecordSweep(removed, active)
	logger.Info("Session sweep completed", map[string]interface{}{
		"removed": removed,
		"active":  active,
	})
	return removed, nil
}

// Stop 스케줄러 중지
func (s *SessionSweeper) Stop() {
	logger.Info("Stopping session sweeper...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Session sweeper stopped", nil)
}
