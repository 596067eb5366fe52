package app

import (
	"botdash/config"
	"botdash/internal/dashboard"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const defaultPollInterval = 5 * time.Second

// ErrPollerStopped is returned by Start on a poller that was already stopped.
var ErrPollerStopped = errors.New("poller stopped")

// DashboardFetcher fetches one raw dashboard payload from the backend.
type DashboardFetcher interface {
	FetchDashboard(ctx context.Context) (dashboard.RawPayload, error)
}

// PollerConfig holds poller configuration.
type PollerConfig struct {
	Interval     time.Duration
	DiscardStale bool
}

// Poller fetches the dashboard payload once on Start and then on a fixed
// period. Cycles are not serialized: a slow fetch may still be in flight when
// the next one starts.
type Poller struct {
	logger  *zap.Logger
	fetcher DashboardFetcher
	state   *ViewState
	cfg     PollerConfig
	now     func() time.Time

	// mu guards mounted and serializes applying results with Stop, so nothing
	// is written to the state after Stop returns.
	mu      sync.Mutex
	mounted bool
	stopped bool
	cron    *cron.Cron
	job     cron.Job
	entry   cron.EntryID

	seq      atomic.Uint64
	inflight sync.WaitGroup
}

// NewPoller creates a poller writing into state.
func NewPoller(logger *zap.Logger, fetcher DashboardFetcher, state *ViewState, cfg PollerConfig) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultPollInterval
	}
	return &Poller{
		logger:  logger,
		fetcher: fetcher,
		state:   state,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Start issues the first fetch immediately and arms the repeating timer.
// ctx values are passed to fetches but its cancellation does not abort them;
// call Stop to deactivate the poller.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return ErrPollerStopped
	}
	if p.mounted {
		return nil
	}
	p.mounted = true

	fetchCtx := context.WithoutCancel(ctx)
	clog := cronLogger{p.logger.Sugar()}
	p.cron = cron.New(
		cron.WithLogger(clog),
		cron.WithChain(cron.Recover(clog)),
	)
	p.job = cron.FuncJob(func() {
		p.runCycle(fetchCtx)
	})
	p.entry = p.cron.Schedule(fixedDelay(p.cfg.Interval), p.job)

	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		_ = p.Poll(fetchCtx)
	}()

	p.cron.Start()
	p.logger.Info("dashboard poller started",
		zap.Duration("interval", p.cfg.Interval),
		zap.Bool("discardStale", p.cfg.DiscardStale),
	)
	return nil
}

// runCycle registers with inflight under mu so that no cycle is added once
// Stop has returned.
func (p *Poller) runCycle(ctx context.Context) {
	p.mu.Lock()
	if !p.mounted {
		p.mu.Unlock()
		return
	}
	p.inflight.Add(1)
	p.mu.Unlock()

	defer p.inflight.Done()
	_ = p.Poll(ctx)
}

// Stop cancels the timer and suppresses the effect of any fetch still in
// flight. It does not wait for those fetches; see Wait.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}
	p.stopped = true
	p.mounted = false
	if p.cron != nil {
		p.cron.Stop()
	}
	p.logger.Info("dashboard poller stopped")
}

// OnConfigUpdate applies the reloadable poller settings of cfg.
func (p *Poller) OnConfigUpdate(cfg *config.Config) {
	p.Reconfigure(PollerConfig{
		Interval:     cfg.Dashboard.PollInterval,
		DiscardStale: cfg.Dashboard.DiscardStale,
	})
}

// Reconfigure replaces the poller settings. A running timer is re-armed when
// the interval changes; cycles already in flight are not affected.
func (p *Poller) Reconfigure(cfg PollerConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultPollInterval
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	previous := p.cfg
	p.cfg = cfg
	if p.mounted && cfg.Interval != previous.Interval {
		p.cron.Remove(p.entry)
		p.entry = p.cron.Schedule(fixedDelay(cfg.Interval), p.job)
	}
	p.logger.Info("dashboard poller reconfigured",
		zap.Duration("interval", cfg.Interval),
		zap.Bool("discardStale", cfg.DiscardStale),
	)
}

// Interval returns the current poll period.
func (p *Poller) Interval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg.Interval
}

// Wait blocks until every cycle started so far has finished. Call it after
// Stop.
func (p *Poller) Wait() {
	p.inflight.Wait()
}

// Mounted reports whether results are currently applied to the view state.
func (p *Poller) Mounted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mounted
}

// Poll runs a single fetch cycle and applies its outcome to the view state.
// The fetch error, if any, is returned after being logged.
func (p *Poller) Poll(ctx context.Context) error {
	seq := p.seq.Add(1)
	started := p.now()

	payload, err := p.fetcher.FetchDashboard(ctx)
	finished := p.now()
	latency := finished.Sub(started)

	if err != nil {
		p.logger.Error("failed to fetch dashboard data",
			zap.Uint64("cycle", seq),
			zap.Duration("latency", latency),
			zap.Error(err),
		)
		p.apply(func() bool {
			return p.state.applyFailure(seq, err, finished, latency, p.cfg.DiscardStale)
		})
		return err
	}

	metrics, trades := payload.Normalize()
	applied := p.apply(func() bool {
		return p.state.applySuccess(seq, metrics, trades, finished, latency, p.cfg.DiscardStale)
	})
	if applied {
		p.logger.Debug("dashboard data updated",
			zap.Uint64("cycle", seq),
			zap.Int("metrics", len(metrics)),
			zap.Int("trades", len(trades)),
			zap.Duration("latency", latency),
		)
	} else {
		p.logger.Debug("dashboard result discarded", zap.Uint64("cycle", seq))
	}
	return nil
}

// apply runs fn only while the poller is mounted.
func (p *Poller) apply(fn func() bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.mounted {
		return false
	}
	return fn()
}

// fixedDelay fires exactly d after the previous activation. cron.Every
// truncates to whole seconds and aligns on second boundaries.
type fixedDelay time.Duration

func (d fixedDelay) Next(t time.Time) time.Time {
	return t.Add(time.Duration(d))
}

// cronLogger adapts zap to the cron.Logger interface.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
