// Package main implements the opening lines server: a REST API for storing
// lines, editing their move trees and practicing them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chesslines/cmd/linesd/cli"
	"chesslines/internal/server/config"
	"chesslines/internal/server/http"
	"chesslines/internal/server/rules"
	"chesslines/internal/server/service"
	"chesslines/internal/server/storage"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const gracefulShutdownTimeout = 5 * time.Second

var (
	configFile string
	v          = config.New()
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "linesd",
	Short: "Opening lines server",
	Long: `linesd stores chess opening lines, serves their move trees for editing
and drills them move by move.

Settings come from flags, CHESSLINES_* environment variables and an optional
linesd.yaml in the working directory or ~/.chesslines.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server (default)",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: linesd.yaml or ~/.chesslines/linesd.yaml)")

	flags := rootCmd.PersistentFlags()
	flags.String("api-host", "localhost", "API server host")
	flags.Int("api-port", 8080, "API server port")
	flags.Bool("dev", false, "Development mode (relaxed rate limits, console logs)")
	flags.String("storage-path", "", "Path to SQLite database file (disables persistence if empty)")
	flags.String("pid", "", "Optional path to write PID file")
	flags.Bool("pid-lock", false, "Lock PID file to allow only one instance (requires --pid)")
	flags.Duration("session-ttl", service.DefaultSessionTTL, "Idle time before a session is dropped")
	flags.Duration("cleanup-interval", service.CleanupJobInterval, "Interval of the idle session sweep")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")

	for key, flag := range map[string]string{
		config.KeyAPIHost:         "api-host",
		config.KeyAPIPort:         "api-port",
		config.KeyDev:             "dev",
		config.KeyStoragePath:     "storage-path",
		config.KeyPID:             "pid",
		config.KeyPIDLock:         "pid-lock",
		config.KeySessionTTL:      "session-ttl",
		config.KeyCleanupInterval: "cleanup-interval",
		config.KeyLogLevel:        "log-level",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(cli.DBCommand())
	rootCmd.AddCommand(cli.DecodeCommand())
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return err
	}
	log := cfg.Logger()

	if cfg.PIDPath != "" {
		cleanup, err := managePIDFile(cfg.PIDPath, cfg.PIDLock)
		if err != nil {
			return fmt.Errorf("failed to manage PID file: %w", err)
		}
		defer cleanup()
		log.Info().Str("path", cfg.PIDPath).Bool("lock", cfg.PIDLock).Msg("PID file created")
	}

	store, err := openStore(cfg, log)
	if err != nil {
		return err
	}

	svc := service.New(store, rules.New(), log)
	svc.SetSessionTTL(cfg.SessionTTL)

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	go svc.RunCleanupJob(cleanupCtx, cfg.CleanupInterval)

	app := http.NewFiberApp(svc, cfg.Dev)

	listenErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", "http://"+cfg.Addr()).
			Bool("dev", cfg.Dev).
			Str("storage", svc.GetStorageHealth()).
			Dur("sessionTTL", cfg.SessionTTL).
			Msg("API server starting")
		listenErr <- app.Listen(cfg.Addr())
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-listenErr:
		if err != nil {
			log.Error().Err(err).Msg("API server listen error")
		}
	}

	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("server forced to shutdown")
	}

	cleanupCancel()
	if err := svc.Shutdown(gracefulShutdownTimeout); err != nil {
		log.Warn().Err(err).Msg("service shutdown error")
	}

	log.Info().Msg("server exited")
	return nil
}

func openStore(cfg *config.Config, log zerolog.Logger) (service.LineStore, error) {
	if cfg.StoragePath == "" {
		log.Info().Msg("persistent storage disabled, lines live in memory (use --storage-path to enable)")
		return service.NewMemoryStore(), nil
	}

	store, err := storage.NewStore(cfg.StoragePath, cfg.Dev, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	if err := store.InitDB(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	log.Info().Str("path", cfg.StoragePath).Msg("persistent storage enabled")
	return store, nil
}
