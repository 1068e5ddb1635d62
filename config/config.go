package config

import (
	"os"
	"path"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DBConfig database configuration
type DBConfig struct {
	Type     string `yaml:"type" env:"KHADAMATI_DB_TYPE"` // postgres or sqlite
	Host     string `yaml:"host" env:"KHADAMATI_DB_HOST"`
	Port     int    `yaml:"port" env:"KHADAMATI_DB_PORT"`
	Name     string `yaml:"name" env:"KHADAMATI_DB_NAME"`
	User     string `yaml:"user" env:"KHADAMATI_DB_USER"`
	Passwd   string `yaml:"passwd" env:"KHADAMATI_DB_PWD"`
	MaxConn  int    `yaml:"max_conn" env:"KHADAMATI_DB_MAX_CONN"`
	IdleConn int    `yaml:"idle_conn" env:"KHADAMATI_DB_IDLE_CONN"`
	Debug    bool   `yaml:"debug" env:"KHADAMATI_DB_DEBUG"`
}

// SysConfig system configuration
type SysConfig struct {
	Appid    string `yaml:"appid" env:"KHADAMATI_SYSTEM_APPID"`
	Location string `yaml:"location" env:"KHADAMATI_SYSTEM_LOCATION"`
	Workdir  string `yaml:"workdir" env:"KHADAMATI_SYSTEM_WORKER_DIR"`
	NodeID   int64  `yaml:"node_id" env:"KHADAMATI_SYSTEM_NODE_ID"`
	Debug    bool   `yaml:"debug" env:"KHADAMATI_SYSTEM_DEBUG"`
}

// WebConfig web server configuration
type WebConfig struct {
	Host   string `yaml:"host" env:"KHADAMATI_WEB_HOST"`
	Port   int    `yaml:"port" env:"KHADAMATI_WEB_PORT"`
	Secret string `yaml:"secret" env:"KHADAMATI_WEB_SECRET"` // HMAC key for bearer tokens
}

// LogConfig logging configuration
type LogConfig struct {
	Mode       string `yaml:"mode" env:"KHADAMATI_LOGGER_MODE"`
	FileEnable bool   `yaml:"file_enable" env:"KHADAMATI_LOGGER_FILE_ENABLE"`
	Filename   string `yaml:"filename" env:"KHADAMATI_LOGGER_FILENAME"`
}

// LifecycleConfig controls the request lifecycle engine.
type LifecycleConfig struct {
	Store                    string        `yaml:"store" env:"KHADAMATI_LIFECYCLE_STORE"` // database or memory
	AdminOverride            bool          `yaml:"admin_override" env:"KHADAMATI_LIFECYCLE_ADMIN_OVERRIDE"`
	ProviderCancelInProgress bool          `yaml:"provider_cancel_in_progress" env:"KHADAMATI_LIFECYCLE_PROVIDER_CANCEL_IN_PROGRESS"`
	OpTimeout                time.Duration `yaml:"op_timeout" env:"KHADAMATI_LIFECYCLE_OP_TIMEOUT"`
	HistoryDays              int           `yaml:"history_days" env:"KHADAMATI_LIFECYCLE_HISTORY_DAYS"`
	SeedDemo                 bool          `yaml:"seed_demo" env:"KHADAMATI_LIFECYCLE_SEED_DEMO"`
}

type AppConfig struct {
	System    SysConfig       `yaml:"system"`
	Web       WebConfig       `yaml:"web"`
	Database  DBConfig        `yaml:"database"`
	Logger    LogConfig       `yaml:"logger"`
	Lifecycle LifecycleConfig `yaml:"lifecycle"`
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return path.Join(c.System.Workdir, "data")
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "Khadamati",
		Location: "Asia/Beirut",
		Workdir:  "/var/khadamati",
		NodeID:   1,
		Debug:    true,
	},
	Web: WebConfig{
		Host:   "0.0.0.0",
		Port:   1816,
		Secret: "9b6de5cc-0731-1203-xxtt-0f568ac9da37",
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "khadamati",
		User:     "postgres",
		Passwd:   "myroot",
		MaxConn:  100,
		IdleConn: 10,
		Debug:    false,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/khadamati/khadamati.log",
	},
	Lifecycle: LifecycleConfig{
		Store:       "database",
		OpTimeout:   5 * time.Second,
		HistoryDays: 365,
	},
}

// LoadConfig reads the YAML file at cfile (when it exists), then applies
// environment overrides. An empty cfile yields the defaults plus overrides.
func LoadConfig(cfile string) (*AppConfig, error) {
	cfg := new(AppConfig)
	*cfg = *DefaultAppConfig
	if cfile != "" {
		data, err := os.ReadFile(cfile)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errors.Wrapf(err, "parse config %s", cfile)
			}
		case !os.IsNotExist(err):
			return nil, errors.Wrapf(err, "read config %s", cfile)
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "parse environment")
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Database.Type == "" {
		c.Database.Type = "postgres"
	}
	if c.Lifecycle.Store == "" {
		c.Lifecycle.Store = "database"
	}
	if c.Lifecycle.OpTimeout <= 0 {
		c.Lifecycle.OpTimeout = 5 * time.Second
	}
	if c.Lifecycle.HistoryDays <= 0 {
		c.Lifecycle.HistoryDays = 365
	}
	if c.Web.Port == 0 {
		c.Web.Port = 1816
	}
}
