package app

import (
	"context"
	"os"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"github.com/asaskevich/EventBus"
	"github.com/khadamati/khadamati/config"
	"github.com/khadamati/khadamati/internal/catalog"
	"github.com/khadamati/khadamati/internal/domain"
	"github.com/khadamati/khadamati/internal/requests"
	"github.com/khadamati/khadamati/pkg/common"
	"github.com/khadamati/khadamati/pkg/metrics"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"
)

const (
	StoreDatabase = "database"
	StoreMemory   = "memory"
)

type Application struct {
	appConfig *config.AppConfig
	gormDB    *gorm.DB
	sched     *cron.Cron
	bus       EventBus.Bus
	metrics   *metrics.Metrics
	store     requests.Store
	catalog   *catalog.GormCatalog
	history   *requests.History
	service   *requests.Service
}

// Ensure Application implements all interfaces
var (
	_ DBProvider        = (*Application)(nil)
	_ ConfigProvider    = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ LifecycleProvider = (*Application)(nil)
	_ MetricsProvider   = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

// OverrideDB replaces the application's database handle (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
}

// Open configures logging and connects the database. Commands that only
// touch the schema stop here.
func (a *Application) Open(cfg *config.AppConfig) error {
	a.appConfig = cfg
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	initLogger(cfg)

	if err := common.SetNodeID(cfg.System.NodeID); err != nil {
		return errors.Wrapf(err, "snowflake node %d", cfg.System.NodeID)
	}

	a.gormDB, err = getDatabase(cfg.Database, cfg.GetDataDir())
	if err != nil {
		return err
	}
	zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)
	return nil
}

// Init opens the application, migrates the schema and starts the lifecycle
// engine with its background jobs.
func (a *Application) Init(cfg *config.AppConfig) error {
	if err := a.Open(cfg); err != nil {
		return err
	}

	if err := a.MigrateDB(false); err != nil {
		return errors.Wrap(err, "database migration")
	}

	if err := a.Setup(); err != nil {
		return err
	}

	if cfg.Lifecycle.SeedDemo {
		if err := a.SeedDemo(context.Background()); err != nil {
			zap.L().Error("demo catalog seed failed", zap.Error(err))
		}
	}

	a.initJob()
	return nil
}

func initLogger(cfg *config.AppConfig) {
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller())
	} else {
		zapConfig.OutputPaths = []string{"stdout"}
		var err error
		logger, err = zapConfig.Build(zap.AddCaller())
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)
}

// Setup builds the request lifecycle engine on top of the current database
// handle. The event bus, history recorder and metrics are wired here.
func (a *Application) Setup() error {
	lc := a.appConfig.Lifecycle

	switch lc.Store {
	case StoreMemory:
		a.store = requests.NewMemoryStore(time.Now)
	case StoreDatabase, "":
		a.store = requests.NewGormStore(a.gormDB, time.Now, lc.OpTimeout)
	default:
		return errors.Errorf("unknown lifecycle store %q", lc.Store)
	}

	a.metrics = metrics.New()
	a.bus = EventBus.New()
	a.catalog = catalog.NewGormCatalog(a.gormDB)
	a.history = requests.NewHistory(a.gormDB)
	if err := a.subscribe(); err != nil {
		return err
	}

	a.service = requests.NewService(a.store, a.catalog, requests.Options{
		Policy: requests.Policy{
			AdminOverride:            lc.AdminOverride,
			ProviderCancelInProgress: lc.ProviderCancelInProgress,
		},
		Bus:      a.bus,
		Clock:    time.Now,
		Location: time.Local,
	})

	zap.L().Info("request lifecycle ready",
		zap.String("namespace", "lifecycle"),
		zap.String("store", lc.Store),
		zap.Bool("admin_override", lc.AdminOverride),
		zap.Bool("provider_cancel_in_progress", lc.ProviderCancelInProgress),
	)
	return nil
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEGUB_TRACE") != "" {
				debug.PrintStack()
			}
			err2, ok := err1.(error)
			if ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	db := a.gormDB
	if track {
		db = db.Debug()
	}
	return db.Migrator().AutoMigrate(domain.Tables...)
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

func (a *Application) InitDb() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
	err := a.gormDB.Migrator().AutoMigrate(domain.Tables...)
	if err != nil {
		zap.S().Error(err)
	}
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

func (a *Application) Requests() *requests.Service {
	return a.service
}

func (a *Application) Catalog() *catalog.GormCatalog {
	return a.catalog
}

func (a *Application) History() *requests.History {
	return a.history
}

func (a *Application) Metrics() *metrics.Metrics {
	return a.metrics
}

// WaitEvents blocks until every asynchronous event handler has returned.
func (a *Application) WaitEvents() {
	if a.bus != nil {
		a.bus.WaitAsync()
	}
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		<-a.sched.Stop().Done()
	}
	a.WaitEvents()
	_ = zap.L().Sync()
}
