// Package maintenance runs the periodic cleanup of expired invites,
// sessions and password reset tokens.
package maintenance

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"einsatzplan/internal/storage"
	logx "einsatzplan/pkg/logx"
)

// Config controls the cleanup schedule.
type Config struct {
	Enabled  bool
	Schedule string // cron spec or descriptor; default "@hourly"
	Timezone string // IANA name; empty means local
}

type Service struct {
	mu sync.Mutex

	log   logx.Logger
	cfg   Config
	store *storage.Store

	parser cron.Parser
	c      *cron.Cron
}

func New(cfg Config, store *storage.Store, log logx.Logger) *Service {
	return &Service{
		log:    log.With(logx.String("component", "maintenance")),
		cfg:    cfg,
		store:  store,
		parser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
	}
}

func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cfg.Enabled || s.c != nil {
		return nil
	}

	loc := time.Local
	if tz := strings.TrimSpace(s.cfg.Timezone); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			s.log.Warn("bad timezone, using local", logx.String("tz", tz), logx.Err(err))
		} else {
			loc = l
		}
	}

	spec := strings.TrimSpace(s.cfg.Schedule)
	if spec == "" {
		spec = "@hourly"
	}

	c := cron.New(cron.WithParser(s.parser), cron.WithLocation(loc))
	if _, err := c.AddFunc(spec, func() { s.runOnce(ctx) }); err != nil {
		return err
	}
	c.Start()
	s.c = c
	s.log.Info("maintenance started", logx.String("schedule", spec), logx.String("tz", loc.String()))
	return nil
}

func (s *Service) Stop() {
	s.mu.Lock()
	c := s.c
	s.c = nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	s.log.Info("maintenance stopped")
}

// RunOnce prunes immediately, outside the schedule.
func (s *Service) RunOnce(ctx context.Context) { s.runOnce(ctx) }

func (s *Service) runOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	n, err := s.store.PruneExpired(ctx, time.Now())
	if err != nil {
		s.log.Error("prune failed", logx.Err(err))
		return
	}
	if n > 0 {
		s.log.Info("pruned expired tokens", logx.Int64("rows", n))
	}
}
