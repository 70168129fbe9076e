package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/internal/config"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/civiltime"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/notify"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/postgres"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg      *config.Config
	Database *postgres.DB
	Registry *notify.Registry
	Notifier notify.Notifier
	Clock    *civiltime.Clock
	Logger   *zap.Logger
	Ctx      context.Context
}
