package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"

	ProgressPlain   = "plain"
	ProgressPercent = "percent"

	BudgetActive = "active"
	BudgetAll    = "all"
)

type Config struct {
	Store         string
	DBDSN         string
	SQLitePath    string
	ServerPort    string
	SessionSecret string
	LogLevel      string

	// CSVProgress selects "75" (plain) or "75%" (percent) in CSV exports.
	CSVProgress string
	// BudgetScope selects which projects feed the budget variance.
	BudgetScope string
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Store:         strings.ToLower(os.Getenv("STORE")),
		DBDSN:         os.Getenv("DB_DSN"),
		SQLitePath:    os.Getenv("SQLITE_PATH"),
		ServerPort:    os.Getenv("SERVER_PORT"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		CSVProgress:   strings.ToLower(os.Getenv("CSV_PROGRESS_FORMAT")),
		BudgetScope:   strings.ToLower(os.Getenv("BUDGET_SCOPE")),
	}

	if cfg.Store == "" {
		cfg.Store = StoreMemory
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = "./data/tracker.db"
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.CSVProgress == "" {
		cfg.CSVProgress = ProgressPlain
	}
	if cfg.BudgetScope == "" {
		cfg.BudgetScope = BudgetActive
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if c.DBDSN == "" {
			return fmt.Errorf("DB_DSN is not set")
		}
	default:
		return fmt.Errorf("unknown STORE %q (want memory, postgres or sqlite)", c.Store)
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is not set")
	}
	switch c.CSVProgress {
	case ProgressPlain, ProgressPercent:
	default:
		return fmt.Errorf("unknown CSV_PROGRESS_FORMAT %q", c.CSVProgress)
	}
	switch c.BudgetScope {
	case BudgetActive, BudgetAll:
	default:
		return fmt.Errorf("unknown BUDGET_SCOPE %q", c.BudgetScope)
	}
	return nil
}
