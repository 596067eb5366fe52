package app

import (
	"botdash/internal/dashboard"
	"context"
	"sync"
	"testing"
	"time"
)

// MockFetcher is a scripted DashboardFetcher. Each call is numbered from 1
// and answered by fn.
type MockFetcher struct {
	mu    sync.Mutex
	calls int
	times []time.Time
	fn    func(call int) (dashboard.RawPayload, error)

	// called, if set, receives the number of each call as it starts.
	called chan int
}

// NewMockFetcher creates a fetcher that answers with fn and reports calls on
// a buffered channel.
func NewMockFetcher(fn func(call int) (dashboard.RawPayload, error)) *MockFetcher {
	return &MockFetcher{
		fn:     fn,
		called: make(chan int, 64),
	}
}

// FetchDashboard implements DashboardFetcher.
func (m *MockFetcher) FetchDashboard(ctx context.Context) (dashboard.RawPayload, error) {
	m.mu.Lock()
	m.calls++
	n := m.calls
	m.times = append(m.times, time.Now())
	m.mu.Unlock()

	if m.called != nil {
		m.called <- n
	}
	return m.fn(n)
}

// Calls returns how many fetches were issued.
func (m *MockFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// CallTimes returns when each fetch started.
func (m *MockFetcher) CallTimes() []time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Time, len(m.times))
	copy(out, m.times)
	return out
}

// waitCall blocks until the fetcher reports call want, or fails the test.
func (m *MockFetcher) waitCall(t *testing.T, want int) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case n := <-m.called:
			if n >= want {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for fetch call %d", want)
		}
	}
}

func mustPayload(t *testing.T, body string) dashboard.RawPayload {
	t.Helper()
	p, err := dashboard.ParsePayload([]byte(body))
	if err != nil {
		t.Fatalf("failed to parse payload: %v", err)
	}
	return p
}

// waitFor polls cond until it holds, or fails the test.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
