package janitor

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"spotcircle/internal/service"
)

// Janitor drives the two periodic governance sweeps: expiring stale active
// votes and deleting resolved votes past their cleanup deadline. The sweeps
// are independent and idempotent, so they run on separate tickers and are
// safe alongside live API traffic.
type Janitor interface {
	Start(ctx context.Context)
	Shutdown()
}

type Config struct {
	SweepInterval time.Duration
	Logger        *logrus.Logger
}

type janitor struct {
	cfg    Config
	voting service.VotingService

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func New(cfg Config, voting service.VotingService) Janitor {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 10 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &janitor{
		cfg:    cfg,
		voting: voting,
	}
}

func (j *janitor) Start(ctx context.Context) {
	ctx, j.cancel = context.WithCancel(ctx)

	j.wg.Add(2)
	go j.loop(ctx, j.sweepExpired)
	go j.loop(ctx, j.sweepCleanup)

	j.cfg.Logger.Infof("janitor started, sweep interval %s", j.cfg.SweepInterval)
}

func (j *janitor) Shutdown() {
	if j.cancel != nil {
		j.cancel()
	}
	j.wg.Wait()
	j.cfg.Logger.Info("janitor stopped")
}

func (j *janitor) loop(ctx context.Context, sweep func(context.Context)) {
	defer j.wg.Done()

	ticker := time.NewTicker(j.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep(ctx)
		}
	}
}

func (j *janitor) sweepExpired(ctx context.Context) {
	swept, err := j.voting.SweepExpired(ctx)
	if err != nil {
		j.cfg.Logger.Warnf("expiry sweep: %v", err)
	}
	if swept > 0 {
		j.cfg.Logger.Infof("expired %d stale votes", swept)
	}
}

func (j *janitor) sweepCleanup(ctx context.Context) {
	removed, err := j.voting.SweepCleanup(ctx)
	if err != nil {
		j.cfg.Logger.Warnf("cleanup sweep: %v", err)
	}
	if removed > 0 {
		j.cfg.Logger.Infof("cleaned up %d closed votes", removed)
	}
}
