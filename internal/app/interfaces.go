package app

import (
	"context"

	"github.com/khadamati/khadamati/config"
	"github.com/khadamati/khadamati/internal/catalog"
	"github.com/khadamati/khadamati/internal/requests"
	"github.com/khadamati/khadamati/pkg/metrics"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// LifecycleProvider provides the request lifecycle engine and its collaborators
type LifecycleProvider interface {
	Requests() *requests.Service
	Catalog() *catalog.GormCatalog
	History() *requests.History
}

// MetricsProvider provides the prometheus counters
type MetricsProvider interface {
	Metrics() *metrics.Metrics
}

// AppContext combines all provider interfaces for full application context
// Handlers should depend on specific providers or this combined interface
type AppContext interface {
	DBProvider
	ConfigProvider
	SchedulerProvider
	LifecycleProvider
	MetricsProvider

	// Application lifecycle methods
	MigrateDB(track bool) error
	InitDb()
	DropAll()
	// SeedDemo loads the demo catalog
	SeedDemo(ctx context.Context) error
	// PurgeHistory removes audit events older than lifecycle.history_days
	PurgeHistory(ctx context.Context) (int64, error)
	// WaitEvents flushes asynchronous event handlers
	WaitEvents()
}
