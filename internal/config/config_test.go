package config

import (
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"STORE", "DB_DSN", "SQLITE_PATH", "SERVER_PORT", "SESSION_SECRET",
		"LOG_LEVEL", "CSV_PROGRESS_FORMAT", "BUDGET_SCOPE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_SECRET", "s3cret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store != StoreMemory {
		t.Errorf("store = %q, want memory", cfg.Store)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("port = %q, want 8080", cfg.ServerPort)
	}
	if cfg.CSVProgress != ProgressPlain {
		t.Errorf("csv progress = %q, want plain", cfg.CSVProgress)
	}
	if cfg.BudgetScope != BudgetActive {
		t.Errorf("budget scope = %q, want active", cfg.BudgetScope)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level = %q, want info", cfg.LogLevel)
	}
}

func TestLoadPolicies(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("CSV_PROGRESS_FORMAT", "Percent")
	t.Setenv("BUDGET_SCOPE", "all")
	t.Setenv("STORE", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.CSVProgress != ProgressPercent || cfg.BudgetScope != BudgetAll {
		t.Fatalf("unexpected policies: %+v", cfg)
	}
	if cfg.Store != StoreSQLite || cfg.SQLitePath != "/tmp/x.db" {
		t.Fatalf("unexpected store settings: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing secret", map[string]string{}, "SESSION_SECRET"},
		{"postgres without dsn", map[string]string{"SESSION_SECRET": "x", "STORE": "postgres"}, "DB_DSN"},
		{"unknown store", map[string]string{"SESSION_SECRET": "x", "STORE": "mongo"}, "STORE"},
		{"bad progress format", map[string]string{"SESSION_SECRET": "x", "CSV_PROGRESS_FORMAT": "fraction"}, "CSV_PROGRESS_FORMAT"},
		{"bad budget scope", map[string]string{"SESSION_SECRET": "x", "BUDGET_SCOPE": "some"}, "BUDGET_SCOPE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %s", err, tt.want)
			}
		})
	}
}
