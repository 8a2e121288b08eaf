package app

import (
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/vendora/vendora/config"
	"github.com/vendora/vendora/internal/ledger"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// LedgerProvider provides the order ledger service
type LedgerProvider interface {
	Ledger() *ledger.Ledger
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// AppContext combines all provider interfaces for full application context.
// Services should depend on specific providers or this combined interface.
type AppContext interface {
	DBProvider
	ConfigProvider
	LedgerProvider
	SchedulerProvider

	// Application lifecycle methods
	MigrateDB(track bool) error
	InitDb()
	DropAll()
}
