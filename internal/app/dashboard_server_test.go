package app

import (
	clts "botdash/clients"
	"botdash/config"
	"botdash/internal/dashboard"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestRunner(t *testing.T, apiURL string) *Runner {
	t.Helper()
	cfg := config.Defaults()
	cfg.Dashboard.APIURL = apiURL
	cfg.Dashboard.PollInterval = time.Hour
	cfg.Server.Enabled = false
	return NewRunner(clts.NewClients(zap.NewNop(), cfg), config.NewLiveConfig(cfg))
}

func get(t *testing.T, h http.Handler, path string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	resp := rec.Result()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return resp, string(body)
}

func TestHandler_Health(t *testing.T) {
	r := newTestRunner(t, "http://127.0.0.1:1/api/dashboard")

	resp, body := get(t, r.Handler(), "/health")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if body != "ok" {
		t.Errorf("unexpected body: %q", body)
	}
}

func TestHandler_LoadingBeforeFirstCycle(t *testing.T) {
	r := newTestRunner(t, "http://127.0.0.1:1/api/dashboard")

	resp, body := get(t, r.Handler(), "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("unexpected content type: %s", ct)
	}
	if !strings.Contains(body, `id="loading"`) {
		t.Error("expected loading indicator")
	}
	if strings.Contains(body, `id="metrics"`) {
		t.Error("expected no metrics grid while loading")
	}
	if !strings.Contains(body, "En attente...") {
		t.Error("expected placeholder for last update")
	}
	if !strings.Contains(body, "Performance en Direct") {
		t.Error("expected page title")
	}
}

func TestHandler_EmptyPayload(t *testing.T) {
	r := newTestRunner(t, "http://127.0.0.1:1/api/dashboard")
	r.state.applySuccess(1, []dashboard.DisplayMetric{}, []dashboard.DisplayTrade{}, time.Now(), 0, false)

	_, body := get(t, r.Handler(), "/")

	if strings.Contains(body, `id="loading"`) {
		t.Error("expected loading indicator to be gone")
	}
	if !strings.Contains(body, `id="metrics"`) {
		t.Error("expected metrics grid")
	}
	if n := strings.Count(body, `class="card metric-card"`); n != 0 {
		t.Errorf("expected zero metric cards, got %d", n)
	}
	if !strings.Contains(body, "Aucune position récente") {
		t.Error("expected empty trades message")
	}
	if strings.Contains(body, "En attente...") {
		t.Error("expected last update time to be shown")
	}
}

func TestHandler_RendersData(t *testing.T) {
	r := newTestRunner(t, "http://127.0.0.1:1/api/dashboard")
	metrics, trades := mustPayload(t, twoMetricsPayload).Normalize()
	r.state.applySuccess(1, metrics, trades, time.Now(), 12*time.Millisecond, false)

	_, body := get(t, r.Handler(), "/")

	if n := strings.Count(body, `class="card metric-card"`); n != 2 {
		t.Errorf("expected 2 metric cards, got %d", n)
	}
	for _, want := range []string{"1234.50 €", "Win Rate", "62%", "ETH-USD", "side-badge short", "pnl loss", "Operational", "12ms"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected body to contain %q", want)
		}
	}
	if strings.Contains(body, "Aucune position récente") {
		t.Error("expected trades to be listed")
	}
}

func TestHandler_StatusCardReflectsFailure(t *testing.T) {
	r := newTestRunner(t, "http://127.0.0.1:1/api/dashboard")
	r.state.applyFailure(1, io.ErrUnexpectedEOF, time.Now(), 0, false)

	_, body := get(t, r.Handler(), "/")
	if !strings.Contains(body, "Outage") {
		t.Error("expected outage status")
	}
	if !strings.Contains(body, "Aucune position récente") {
		t.Error("expected empty trades message after a failed first cycle")
	}
}

func TestHandler_SecondaryPages(t *testing.T) {
	r := newTestRunner(t, "http://127.0.0.1:1/api/dashboard")
	h := r.Handler()

	_, body := get(t, h, "/history")
	if !strings.Contains(body, "historique des trades") {
		t.Error("expected history notice")
	}
	if !strings.Contains(body, `class="nav-link active">⟲ Historique`) {
		t.Error("expected history link to be active")
	}

	_, body = get(t, h, "/config")
	if !strings.Contains(body, "configuration du bot") {
		t.Error("expected config notice")
	}
	if !strings.Contains(body, `class="nav-link active">⚙ Configuration`) {
		t.Error("expected config link to be active")
	}
	if !strings.Contains(body, `id="config"`) || !strings.Contains(body, "api_url") {
		t.Error("expected effective configuration to be shown")
	}

	_, body = get(t, h, "/")
	if strings.Contains(body, `id="config"`) {
		t.Error("expected configuration only on the config page")
	}
}

func TestHandler_UnknownRoute(t *testing.T) {
	r := newTestRunner(t, "http://127.0.0.1:1/api/dashboard")

	resp, _ := get(t, r.Handler(), "/nope")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestHandler_APIViewAfterPoll(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(twoMetricsPayload))
	}))
	defer backend.Close()

	r := newTestRunner(t, backend.URL)
	if err := r.poller.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer r.poller.Stop()
	waitFor(t, "first cycle", func() bool { return !r.state.Snapshot().Loading })

	resp, body := get(t, r.Handler(), "/api/view")
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type: %s", ct)
	}

	var view struct {
		Metrics []struct {
			ID    string `json:"id"`
			Value string `json:"value"`
			Icon  string `json:"icon"`
		} `json:"metrics"`
		Trades []struct {
			Pair string  `json:"pair"`
			Type string  `json:"type"`
			PnL  float64 `json:"pnl"`
		} `json:"trades"`
		Loading bool `json:"loading"`
		Backend struct {
			Status string `json:"status"`
		} `json:"backend"`
	}
	if err := json.Unmarshal([]byte(body), &view); err != nil {
		t.Fatalf("failed to decode view: %v", err)
	}

	if view.Loading {
		t.Error("expected loading false")
	}
	if len(view.Metrics) != 2 || view.Metrics[0].Value != "1234.50 €" || view.Metrics[0].Icon != "wallet" {
		t.Errorf("unexpected metrics: %+v", view.Metrics)
	}
	if len(view.Trades) != 1 || view.Trades[0].Type != "short" || view.Trades[0].PnL != -12.5 {
		t.Errorf("unexpected trades: %+v", view.Trades)
	}
	if view.Backend.Status != "operational" {
		t.Errorf("unexpected backend status: %s", view.Backend.Status)
	}
}

func TestHandler_Stats(t *testing.T) {
	r := newTestRunner(t, "https://bot.example.com/api/dashboard")

	resp, body := get(t, r.Handler(), "/stats")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var stats ServiceStats
	if err := json.Unmarshal([]byte(body), &stats); err != nil {
		t.Fatalf("failed to decode stats: %v", err)
	}
	if stats.Build.Commit != BuildCommit {
		t.Errorf("unexpected commit: %s", stats.Build.Commit)
	}
	if stats.Poller.Endpoint != "https://bot.example.com/api/dashboard" {
		t.Errorf("unexpected endpoint: %s", stats.Poller.Endpoint)
	}
	if stats.Poller.Interval != "1h0m0s" {
		t.Errorf("unexpected interval: %s", stats.Poller.Interval)
	}
	if !stats.Poller.Loading || stats.Poller.Status != BackendMaintenance {
		t.Errorf("unexpected poller stats: %+v", stats.Poller)
	}
}

func TestBuildPageView(t *testing.T) {
	snap := NewViewState().Snapshot()

	view := buildPageView(snap, "/", "http://api", "abc1234", 1500*time.Millisecond)
	if view.RefreshSeconds != 2 {
		t.Errorf("expected refresh rounded up to 2s, got %d", view.RefreshSeconds)
	}
	if !view.Nav[0].Active || view.Nav[1].Active || view.Nav[2].Active {
		t.Errorf("unexpected active nav: %+v", view.Nav)
	}
	if view.Backend.Uptime != "—" {
		t.Errorf("unexpected uptime: %s", view.Backend.Uptime)
	}

	view = buildPageView(snap, "/", "http://api", "abc1234", 0)
	if view.RefreshSeconds != 1 {
		t.Errorf("expected minimum refresh of 1s, got %d", view.RefreshSeconds)
	}
}

func TestUptimeRatio(t *testing.T) {
	tests := []struct {
		ok, failed uint64
		want       string
	}{
		{0, 0, "—"},
		{1, 0, "100.0%"},
		{3, 1, "75.0%"},
		{0, 2, "0.0%"},
	}

	for _, tt := range tests {
		if got := uptimeRatio(tt.ok, tt.failed); got != tt.want {
			t.Errorf("uptimeRatio(%d, %d) = %q, want %q", tt.ok, tt.failed, got, tt.want)
		}
	}
}
