package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"telecast/internal/config"
	"telecast/internal/db"
	"telecast/internal/logger"
	"telecast/internal/server"
)

const shutdownTimeout = 10 * time.Second

var migrationsPath string

var rootCmd = &cobra.Command{
	Use:   "telecast",
	Short: "Telecast streams a Telegram channel's videos as an ordered playback queue.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&migrationsPath, "migrations", "file://./migrations", "migrations source path")
	rootCmd.AddCommand(migrateCmd)
}

// openDatabase loads config, initializes logging, and opens the store
func openDatabase() (*config.Config, *db.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Pretty)

	database, err := db.New(cfg.Database.Path, cfg.Database.EnableWAL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	return cfg, database, nil
}

func runMigrate() error {
	_, database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	sqlDB, err := database.GetSQLDB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if err := db.RunMigrations(sqlDB, migrationsPath); err != nil {
		return err
	}

	logger.Log.Info().Msg("Migrations applied")
	return nil
}

func runServe() error {
	cfg, database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	sqlDB, err := database.GetSQLDB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := db.RunMigrations(sqlDB, migrationsPath); err != nil {
		return err
	}

	srv, err := server.New(cfg, database)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logger.Log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(ctx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
