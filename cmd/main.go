package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gratten/lapgpx/internal/config"
	"github.com/gratten/lapgpx/internal/db"
	"github.com/gratten/lapgpx/internal/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds what every subcommand needs; it is built lazily from the root flags.
type app struct {
	cfg   config.Config
	log   *zap.Logger
	store *db.Store
}

func (a *app) close() {
	if a.store != nil {
		_ = a.store.Close()
	}
	_ = a.log.Sync()
}

type rootFlags struct {
	configPath string
	dbPath     string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "lapgpx",
		Short:         "Export recorded activities as GPX",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", os.Getenv("LAPGPX_CONFIG"), "YAML config file")
	root.PersistentFlags().StringVar(&flags.dbPath, "db", "", "activity database path (overrides config)")

	root.AddCommand(newServeCmd(flags))
	root.AddCommand(newExportCmd(flags))
	root.AddCommand(newActivitiesCmd(flags))
	return root
}

func loadApp(flags *rootFlags) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.dbPath != "" {
		cfg.DBPath = flags.dbPath
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, "lapgpx")
	if err != nil {
		return nil, err
	}
	store, err := db.Open(cfg.DBPath, log)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	return &app{cfg: cfg, log: log, store: store}, nil
}
