package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/boardscore/boardscore/internal/api"
	"github.com/boardscore/boardscore/internal/factory"
	"github.com/boardscore/boardscore/internal/services/identity"
	redisstorage "github.com/boardscore/boardscore/internal/storage/redis"
)

func main() {
	cmd := newServerCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newServerCommand() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:           "boardscore-server",
		Short:         "Real-time scoreboard server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(v)
		},
	}

	flags := cmd.Flags()
	flags.String("host", "", "Listen host")
	flags.Int("port", 8080, "Listen port")
	flags.String("storage", factory.StorageTypeMemory, "Storage backend (memory or redis)")
	flags.String("redis-url", "", "Redis connection URL (required for redis storage)")
	flags.String("history-path", "", "Path for the session history file (in-memory if empty)")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.Duration("session-duration", 24*time.Hour, "Sign-in session lifetime")

	v.SetEnvPrefix("BOARDSCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(flags)

	return cmd
}

func run(v *viper.Viper) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(v.GetString("log-level")),
	}))
	slog.SetDefault(logger)

	cfg := factory.Config{
		Logger:      logger,
		StorageType: v.GetString("storage"),
		HistoryPath: v.GetString("history-path"),
		IdentityConfig: identity.Config{
			SessionDuration: v.GetDuration("session-duration"),
		},
	}

	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := v.GetString("redis-url")
		if redisURL == "" {
			logger.Error("redis-url required when storage is redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		return err
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:          logger,
		Clock:           app.Clock,
		IdentityService: app.IdentityService,
		RoomController:  app.RoomController,
		BoardController: app.BoardController,
		UserService:     app.UserService,
		HistoryStore:    app.HistoryStore,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = v.GetString("host")
	serverConfig.Port = v.GetInt("port")
	server := api.NewServer(router, serverConfig, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			return err
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			return err
		}
	}

	logger.Info("server stopped")
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
