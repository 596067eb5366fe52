package app

import (
	clts "botdash/clients"
	"botdash/config"
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Build info - populated from embedded VCS info at init time
var (
	BuildCommit = "dev"
	BuildTime   = "unknown"
)

func init() {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				if setting.Value != "" {
					BuildCommit = setting.Value
				}
			case "vcs.time":
				BuildTime = setting.Value
			}
		}
	}
}

// shutdownTimeout bounds graceful shutdown of the dashboard server.
const shutdownTimeout = 5 * time.Second

type Runner struct {
	clients    *clts.Clients
	liveConfig *config.LiveConfig
	state      *ViewState
	poller     *Poller
	server     *http.Server
	startTime  time.Time
}

// ServiceStats holds service statistics.
type ServiceStats struct {
	// Build info
	Build struct {
		Commit    string `json:"commit"`
		Time      string `json:"time,omitempty"`
		GoVersion string `json:"go_version"`
	} `json:"build"`

	// Service info
	StartTime string `json:"start_time"`
	Uptime    string `json:"uptime"`
	UptimeSec int64  `json:"uptime_seconds"`

	// Poller stats
	Poller struct {
		Endpoint     string        `json:"endpoint"`
		Interval     string        `json:"interval"`
		DiscardStale bool          `json:"discard_stale"`
		Mounted      bool          `json:"mounted"`
		Loading      bool          `json:"loading"`
		Status       BackendStatus `json:"status"`
		Successes    uint64        `json:"successes"`
		Failures     uint64        `json:"failures"`
		LastError    string        `json:"last_error,omitempty"`
		Metrics      int           `json:"metrics"`
		Trades       int           `json:"trades"`
	} `json:"poller"`

	// Runtime stats
	Runtime struct {
		Goroutines  int    `json:"goroutines"`
		HeapAllocMB uint64 `json:"heap_alloc_mb"`
		NumGC       uint32 `json:"num_gc"`
		GOOS        string `json:"goos"`
		GOARCH      string `json:"goarch"`
	} `json:"runtime"`
}

func NewRunner(clients *clts.Clients, liveConfig *config.LiveConfig) *Runner {
	if liveConfig == nil {
		liveConfig = config.NewLiveConfig(nil)
	}
	cfg := liveConfig.Get()
	state := NewViewState()
	poller := NewPoller(clients.Logger.Named("poller"), clients.Dashboard, state, PollerConfig{
		Interval:     cfg.Dashboard.PollInterval,
		DiscardStale: cfg.Dashboard.DiscardStale,
	})
	liveConfig.AddObserver(poller)

	return &Runner{
		clients:    clients,
		liveConfig: liveConfig,
		state:      state,
		poller:     poller,
	}
}

// State returns the view state fed by the poller.
func (r *Runner) State() *ViewState {
	return r.state
}

// Reload swaps in cfg. Poll interval and stale-result gating apply at once;
// endpoint, timeout and server settings take effect on the next start.
func (r *Runner) Reload(cfg *config.Config) error {
	current := r.liveConfig.Get()
	if err := r.liveConfig.Update(cfg); err != nil {
		return fmt.Errorf("reload config: %w", err)
	}

	if cfg.Dashboard.APIURL != current.Dashboard.APIURL ||
		cfg.Dashboard.HTTPTimeout != current.Dashboard.HTTPTimeout ||
		cfg.Server != current.Server {
		r.clients.Logger.Warn("endpoint and server settings changed, restart to apply")
	}
	r.clients.Logger.Info("configuration reloaded")
	return nil
}

// Run starts the poller and, if enabled, the dashboard server, and blocks
// until ctx is cancelled or the server fails.
func (r *Runner) Run(ctx context.Context) error {
	r.startTime = time.Now()
	logger := r.clients.Logger
	cfg := r.liveConfig.Get()

	g, gctx := errgroup.WithContext(ctx)

	logger.Info("starting dashboard poller",
		zap.String("endpoint", r.clients.Dashboard.Endpoint()),
		zap.Duration("interval", cfg.Dashboard.PollInterval),
	)
	if err := r.poller.Start(gctx); err != nil {
		return fmt.Errorf("start poller: %w", err)
	}

	g.Go(func() error {
		<-gctx.Done()
		r.poller.Stop()
		return nil
	})

	if cfg.Server.Enabled {
		r.server = &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           r.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g.Go(func() error {
			logger.Info("dashboard server started", zap.Int("port", cfg.Server.Port))
			if err := r.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("dashboard server: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return r.server.Shutdown(shutdownCtx)
		})
	}

	err := g.Wait()
	logger.Info("runner shutting down")
	return err
}

// GetStats returns service statistics.
func (r *Runner) GetStats() ServiceStats {
	var stats ServiceStats

	// Build info
	stats.Build.Commit = BuildCommit
	stats.Build.Time = BuildTime
	stats.Build.GoVersion = runtime.Version()

	// Service info
	if !r.startTime.IsZero() {
		uptime := time.Since(r.startTime)
		stats.StartTime = r.startTime.UTC().Format(time.RFC3339)
		stats.Uptime = uptime.Round(time.Second).String()
		stats.UptimeSec = int64(uptime.Seconds())
	}

	// Poller stats
	snap := r.state.Snapshot()
	stats.Poller.Endpoint = r.clients.Dashboard.Endpoint()
	cfg := r.liveConfig.Get()
	stats.Poller.Interval = r.poller.Interval().String()
	stats.Poller.DiscardStale = cfg.Dashboard.DiscardStale
	stats.Poller.Mounted = r.poller.Mounted()
	stats.Poller.Loading = snap.Loading
	stats.Poller.Status = snap.Backend.Status
	stats.Poller.Successes = snap.Backend.Successes
	stats.Poller.Failures = snap.Backend.Failures
	stats.Poller.LastError = snap.Backend.LastError
	stats.Poller.Metrics = len(snap.Metrics)
	stats.Poller.Trades = len(snap.Trades)

	// Runtime stats
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	stats.Runtime.Goroutines = runtime.NumGoroutine()
	stats.Runtime.HeapAllocMB = mem.HeapAlloc / 1024 / 1024
	stats.Runtime.NumGC = mem.NumGC
	stats.Runtime.GOOS = runtime.GOOS
	stats.Runtime.GOARCH = runtime.GOARCH

	return stats
}
