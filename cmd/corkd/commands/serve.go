package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/corkboard/corkd/internal/auth"
	"github.com/corkboard/corkd/internal/config"
	"github.com/corkboard/corkd/internal/printer"
	"github.com/corkboard/corkd/internal/server"
	"github.com/corkboard/corkd/internal/store"
	"github.com/corkboard/corkd/pkg/board"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the corkd API server",
	Long: `Run the corkd HTTP API server.

Connects to the configured database and Redis, then serves the board API
and the per-board event streams until interrupted.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return printer.Error("Invalid configuration", err.Error(), []string{
			"Fix corkd.yml",
			"Override settings with CORKD_* environment variables",
		})
	}

	st, err := store.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return printer.Error("Database unreachable", err.Error(), []string{
			"Check database.driver and database.dsn in corkd.yml",
		})
	}
	defer st.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return printer.Error("Invalid Redis URL", err.Error(), nil)
	}
	feed, err := board.NewFeed(redisOpts, cfg.Namespace)
	if err != nil {
		return printer.Error("Failed to create event feed", err.Error(), nil)
	}
	defer feed.Close()

	ctx := context.Background()
	if err := feed.Ping(ctx); err != nil {
		return printer.Error("Redis unreachable", err.Error(), []string{
			"Check that Redis is running at " + cfg.RedisURL,
		})
	}

	authSvc, err := auth.NewService(cfg.JWTSecret, cfg.TokenTTL.Std())
	if err != nil {
		return printer.Error("Invalid auth configuration", err.Error(), []string{
			"Set jwt_secret in corkd.yml or the CORKD_JWT_SECRET environment variable",
		})
	}

	srv := server.New(cfg, st, feed, authSvc)
	if err := srv.Start(); err != nil {
		return printer.Error("Failed to start server", err.Error(), nil)
	}

	printer.Success("corkd is up\n")
	printer.Field("listen", "%s", cfg.ListenAddr)
	printer.Field("database", "%s", cfg.Database.Driver)
	printer.Field("namespace", "%s", cfg.Namespace)

	// Block until interrupted, then drain in-flight requests.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	printer.Info("Shutting down...\n")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		printer.Warning("Shutdown did not finish cleanly: %v\n", err)
	}
	return nil
}
