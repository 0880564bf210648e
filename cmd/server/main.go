package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"maint-tracker/internal/config"
	"maint-tracker/internal/database"
	"maint-tracker/internal/logutils"
	"maint-tracker/internal/server"
	"maint-tracker/internal/tracker"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "server",
	Short:         "Maintenance project tracker",
	Long:          `Tracks facility maintenance projects with notes, photos and a full audit trail.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, store, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		r := server.NewRouter(cfg, newService(cfg, store))

		addr := fmt.Sprintf(":%s", cfg.ServerPort)
		logutils.Log.WithField("store", cfg.Store).Infof("starting server on %s", addr)
		return r.Run(addr)
	},
}

var (
	exportOut      string
	exportProgress string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the active projects as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, store, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		if exportProgress != "" {
			cfg.CSVProgress = exportProgress
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		out, err := newService(cfg, store).ExportCSV(cmd.Context(), tracker.Filter{})
		if err != nil {
			return err
		}
		return writeOutput(exportOut, func(w io.Writer) error {
			_, err := fmt.Fprintln(w, out)
			return err
		})
	},
}

var backupOut string

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a JSON backup of every record",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, store, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		b, err := newService(cfg, store).Backup(cmd.Context())
		if err != nil {
			return err
		}
		return writeOutput(backupOut, func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(b)
		})
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&exportProgress, "progress", "", "progress column format: plain or percent")
	backupCmd.Flags().StringVarP(&backupOut, "out", "o", "", "output file (default stdout)")

	rootCmd.AddCommand(serveCmd, exportCmd, backupCmd)
}

// setup loads configuration and opens a seeded store.
func setup(ctx context.Context) (*config.Config, database.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	if err := logutils.SetLevel(cfg.LogLevel); err != nil {
		return nil, nil, err
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Seed(ctx, store); err != nil {
		store.Close()
		return nil, nil, err
	}
	return cfg, store, nil
}

func openStore(ctx context.Context, cfg *config.Config) (database.Store, error) {
	switch cfg.Store {
	case config.StorePostgres:
		return database.OpenPostgres(ctx, cfg.DBDSN)
	case config.StoreSQLite:
		return database.OpenSQLite(cfg.SQLitePath)
	default:
		return database.NewMemoryStore(), nil
	}
}

func newService(cfg *config.Config, store database.Store) *tracker.Service {
	return tracker.New(store,
		tracker.WithBudgetScope(tracker.BudgetScope(cfg.BudgetScope)),
		tracker.WithProgressFormat(tracker.ProgressFormat(cfg.CSVProgress)),
	)
}

func writeOutput(path string, write func(io.Writer) error) error {
	if path == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logutils.Log.Fatal(err)
	}
}
