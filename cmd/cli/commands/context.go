package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/staffrota/shiftplanner/internal/config"
	"github.com/staffrota/shiftplanner/pkg/db"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg      *config.Config
	Database db.Store
	Logger   *zap.Logger
	Ctx      context.Context
}
