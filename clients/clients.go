package clients

import (
	"botdash/clients/dashboardapi"
	"botdash/config"

	"go.uber.org/zap"
)

type Clients struct {
	Logger *zap.Logger

	Dashboard *dashboardapi.DashboardApiClient
}

func NewClients(logger *zap.Logger, cfg *config.Config) *Clients {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Clients{
		Logger:    logger,
		Dashboard: dashboardapi.NewDashboardApiClient(logger.Named("dashboardapi"), cfg),
	}
}
