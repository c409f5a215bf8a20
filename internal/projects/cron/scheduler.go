package cronjob

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultSpec runs every five minutes (seconds field first).
const DefaultSpec = "0 */5 * * * *"

// Refresher rescans the catalog and reports how many projects it found.
type Refresher interface {
	Refresh(ctx context.Context) (int, error)
}

type Scheduler struct {
	cron    *cron.Cron
	target  Refresher
	spec    string
	timeout time.Duration
	log     *zap.Logger
}

func NewScheduler(target Refresher, spec string, timeout time.Duration, log *zap.Logger) *Scheduler {
	if spec == "" {
		spec = DefaultSpec
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		target:  target,
		spec:    spec,
		timeout: timeout,
		log:     log,
	}
}

// Start registers the refresh job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.RunOnce); err != nil {
		return fmt.Errorf("schedule catalog refresh %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.log.Info("catalog refresh scheduled", zap.String("spec", s.spec))
	return nil
}

// Stop halts scheduling and waits for a running refresh, or for ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("catalog refresh still running at shutdown")
	}
}

// RunOnce performs one bounded refresh and logs the outcome.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	n, err := s.target.Refresh(ctx)
	if err != nil {
		s.log.Error("catalog refresh failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return
	}
	s.log.Info("catalog refreshed", zap.Int("projects", n), zap.Duration("elapsed", time.Since(start)))
}
