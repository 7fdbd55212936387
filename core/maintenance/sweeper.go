// Package maintenance runs periodic cleanup over the mock state: lapsed
// temporary bans are lifted, expired MFA lockouts cleared, and stale
// authorization flows pruned. Sweeps keep the store invariants (ban flag
// agreement, audited unbans) without any test driving them.
package maintenance

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"clipper-mock/core/flow"
	"clipper-mock/core/mfa"
	"clipper-mock/core/moderation"
	"clipper-mock/core/utils"
)

type Config struct {
	// Schedule is a cron spec; descriptors like "@every 1m" are accepted.
	Schedule string
	// FlowTTL bounds how long an unfinished authorization flow is kept.
	FlowTTL time.Duration
}

func (c Config) withDefaults() Config {
	if c.Schedule == "" {
		c.Schedule = "@every 1m"
	}
	if c.FlowTTL <= 0 {
		c.FlowTTL = 10 * time.Minute
	}
	return c
}

type Sweeper struct {
	cfg        Config
	moderation *moderation.Service
	mfa        *mfa.Service
	flows      *flow.Registry
	logger     *utils.Logger
	now        func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	cancel  context.CancelFunc
	running bool
}

func NewSweeper(cfg Config, mod *moderation.Service, mfaSvc *mfa.Service, flows *flow.Registry, logger *utils.Logger) *Sweeper {
	return &Sweeper{
		cfg:        cfg.withDefaults(),
		moderation: mod,
		mfa:        mfaSvc,
		flows:      flows,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *Sweeper) StartWithContext(ctx context.Context) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	c := cron.New()
	if _, err := c.AddFunc(s.cfg.Schedule, func() { s.runOnce(runCtx) }); err != nil {
		cancel()
		s.logger.Errorf("maintenance schedule %q: %v", s.cfg.Schedule, err)
		return
	}
	c.Start()
	s.cron = c
	s.cancel = cancel
	s.running = true
	s.logger.Printf("maintenance sweeper started schedule=%s", s.cfg.Schedule)
}

func (s *Sweeper) StopWithContext(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	c := s.cron
	cancel := s.cancel
	s.cron = nil
	s.cancel = nil
	s.running = false
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if c == nil {
		return nil
	}
	select {
	case <-c.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Sweep runs one cleanup pass and reports what it did. Exposed so tests
// and the sync-complete path can sweep without waiting for the schedule.
type SweepReport struct {
	BansLifted      int
	LockoutsCleared int
	FlowsPruned     int
}

func (s *Sweeper) Sweep(ctx context.Context) (SweepReport, error) {
	var rep SweepReport
	if s.moderation != nil {
		n, err := s.moderation.SweepExpiredBans(ctx)
		rep.BansLifted = n
		if err != nil {
			return rep, err
		}
	}
	if s.mfa != nil {
		n, err := s.mfa.SweepExpiredLockouts(ctx)
		rep.LockoutsCleared = n
		if err != nil {
			return rep, err
		}
	}
	if s.flows != nil {
		rep.FlowsPruned = s.flows.PruneStale(s.now().UTC().Add(-s.cfg.FlowTTL))
	}
	return rep, nil
}

func (s *Sweeper) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	rep, err := s.Sweep(ctx)
	if err != nil {
		s.logger.Errorf("maintenance sweep: %v", err)
		return
	}
	if rep.BansLifted > 0 || rep.LockoutsCleared > 0 || rep.FlowsPruned > 0 {
		s.logger.Printf("maintenance sweep bans=%d lockouts=%d flows=%d", rep.BansLifted, rep.LockoutsCleared, rep.FlowsPruned)
	}
}
