package dashboardapi

import (
	"botdash/config"
	"botdash/internal/dashboard"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 10 << 20

// ErrUnexpectedStatus is returned when the backend answers with a non-2xx status.
var ErrUnexpectedStatus = errors.New("unexpected status")

type DashboardApiClient struct {
	logger     *zap.Logger
	httpClient *http.Client
	endpoint   string
}

func NewDashboardApiClient(logger *zap.Logger, cfg *config.Config) *DashboardApiClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := cfg.Dashboard.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &DashboardApiClient{
		logger: logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		endpoint: cfg.Dashboard.APIURL,
	}
}

// Endpoint returns the URL polled by the client.
func (c *DashboardApiClient) Endpoint() string {
	return c.endpoint
}

// FetchDashboard GETs the dashboard payload, bypassing any HTTP cache.
// Transport failures, non-2xx statuses and malformed JSON are all errors.
func (c *DashboardApiClient) FetchDashboard(ctx context.Context) (dashboard.RawPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return dashboard.RawPayload{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return dashboard.RawPayload{}, fmt.Errorf("fetch dashboard: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Debug("dashboard backend returned error body",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return dashboard.RawPayload{}, fmt.Errorf("%w: HTTP %s", ErrUnexpectedStatus, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return dashboard.RawPayload{}, fmt.Errorf("read body: %w", err)
	}

	payload, err := dashboard.ParsePayload(body)
	if err != nil {
		return dashboard.RawPayload{}, err
	}
	return payload, nil
}
