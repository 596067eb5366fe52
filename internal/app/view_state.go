package app

import (
	"botdash/internal/dashboard"
	"sync"
	"time"
)

// BackendStatus describes the health of the polled backend as shown on the
// status card.
type BackendStatus string

const (
	BackendOperational BackendStatus = "operational"
	BackendDegraded    BackendStatus = "degraded"
	BackendDown        BackendStatus = "down"
	BackendMaintenance BackendStatus = "maintenance"
)

// ViewState is the in-memory state rendered by the dashboard. Lists are
// replaced wholesale on every successful cycle.
type ViewState struct {
	mu sync.RWMutex

	metrics    []dashboard.DisplayMetric
	trades     []dashboard.DisplayTrade
	loading    bool
	lastUpdate time.Time

	status      BackendStatus
	lastLatency time.Duration
	lastError   string
	lastAttempt time.Time
	successes   uint64
	failures    uint64

	// appliedSeq is the newest cycle whose result was applied.
	appliedSeq uint64
}

// BackendSnapshot is the backend health part of a Snapshot.
type BackendSnapshot struct {
	Status      BackendStatus `json:"status"`
	LatencyMs   int64         `json:"latency_ms"`
	LastError   string        `json:"last_error,omitempty"`
	LastAttempt time.Time     `json:"last_attempt"`
	Successes   uint64        `json:"successes"`
	Failures    uint64        `json:"failures"`
}

// Snapshot is a consistent copy of the view state.
type Snapshot struct {
	Metrics    []dashboard.DisplayMetric `json:"metrics"`
	Trades     []dashboard.DisplayTrade  `json:"trades"`
	Loading    bool                      `json:"loading"`
	LastUpdate time.Time                 `json:"last_update"`
	Backend    BackendSnapshot           `json:"backend"`
}

// NewViewState returns a state that is loading and has no data.
func NewViewState() *ViewState {
	return &ViewState{
		metrics: []dashboard.DisplayMetric{},
		trades:  []dashboard.DisplayTrade{},
		loading: true,
		status:  BackendMaintenance,
	}
}

// applySuccess replaces the displayed lists with the result of cycle seq.
// With discardStale set, results older than the newest applied cycle are
// dropped and false is returned.
func (s *ViewState) applySuccess(seq uint64, metrics []dashboard.DisplayMetric, trades []dashboard.DisplayTrade, at time.Time, latency time.Duration, discardStale bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if discardStale && seq < s.appliedSeq {
		return false
	}
	if seq > s.appliedSeq {
		s.appliedSeq = seq
	}

	s.metrics = metrics
	s.trades = trades
	s.lastUpdate = at
	s.loading = false

	s.status = BackendOperational
	s.lastLatency = latency
	s.lastError = ""
	s.lastAttempt = at
	s.successes++
	return true
}

// applyFailure records a failed cycle. Displayed data is left untouched.
func (s *ViewState) applyFailure(seq uint64, err error, at time.Time, latency time.Duration, discardStale bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading = false
	s.failures++

	if discardStale && seq < s.appliedSeq {
		return false
	}
	if seq > s.appliedSeq {
		s.appliedSeq = seq
	}

	if s.successes > 0 {
		s.status = BackendDegraded
	} else {
		s.status = BackendDown
	}
	s.lastLatency = latency
	if err != nil {
		s.lastError = err.Error()
	}
	s.lastAttempt = at
	return true
}

// Snapshot returns a copy of the current state.
func (s *ViewState) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metrics := make([]dashboard.DisplayMetric, len(s.metrics))
	copy(metrics, s.metrics)
	trades := make([]dashboard.DisplayTrade, len(s.trades))
	copy(trades, s.trades)

	return Snapshot{
		Metrics:    metrics,
		Trades:     trades,
		Loading:    s.loading,
		LastUpdate: s.lastUpdate,
		Backend: BackendSnapshot{
			Status:      s.status,
			LatencyMs:   s.lastLatency.Milliseconds(),
			LastError:   s.lastError,
			LastAttempt: s.lastAttempt,
			Successes:   s.successes,
			Failures:    s.failures,
		},
	}
}
