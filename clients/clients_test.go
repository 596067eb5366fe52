package clients

import (
	"botdash/config"
	"testing"

	"go.uber.org/zap"
)

func TestNewClients(t *testing.T) {
	cfg := config.Defaults()
	cfg.Dashboard.APIURL = "https://bot.example.com/api/dashboard"

	logger := zap.NewNop()
	clients := NewClients(logger, cfg)

	if clients.Logger != logger {
		t.Error("unexpected logger")
	}
	if clients.Dashboard == nil {
		t.Fatal("expected Dashboard client to be set")
	}
	if clients.Dashboard.Endpoint() != "https://bot.example.com/api/dashboard" {
		t.Errorf("unexpected endpoint: %s", clients.Dashboard.Endpoint())
	}
}

func TestNewClients_NilLogger(t *testing.T) {
	clients := NewClients(nil, config.Defaults())

	if clients.Logger == nil {
		t.Error("expected nop logger to be substituted")
	}
	if clients.Dashboard == nil {
		t.Error("expected Dashboard client to be set")
	}
}
