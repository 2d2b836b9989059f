package main

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"clinic-management-api/internal/auth"
	"clinic-management-api/internal/config"
	"clinic-management-api/internal/grpcweb"
	"clinic-management-api/internal/handler"
	"clinic-management-api/internal/middleware"
	"clinic-management-api/internal/monitoring"
	"clinic-management-api/internal/service"
	"clinic-management-api/internal/store"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		reportFailure(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "clinic-server",
		Short:         "Clinic management API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(userCmd())
	return rootCmd
}

func reportFailure(w io.Writer, err error) {
	l := zerolog.New(w).With().Timestamp().Logger()
	l.Error().Err(err).Msg("command failed")
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the gRPC server and the grpc-web gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	if err := monitoring.InitSentry(cfg.SentryDSN, cfg.Env, version); err != nil {
		logger.Warn().Err(err).Msg("sentry disabled")
	}
	defer monitoring.FlushSentry()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// database
	pool, err := store.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info().Msg("connected to postgres")

	if cfg.AutoMigrate {
		n, err := store.NewMigrator(pool).Up(ctx)
		if err != nil {
			return err
		}
		logger.Info().Int("applied", n).Msg("migrations up to date")
	}

	st := store.New(pool)
	metrics := monitoring.New()
	metrics.RegisterPool(func() monitoring.PoolStats {
		s := st.Stats()
		return monitoring.PoolStats{
			TotalConns:    s.TotalConns,
			IdleConns:     s.IdleConns,
			AcquiredConns: s.AcquiredConns,
			MaxConns:      s.MaxConns,
		}
	})

	svc := service.New(st, auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL),
		service.WithLocation(cfg.Location()),
		service.WithLogger(logger),
	)

	// grpc server
	rl := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go rl.Run(ctx)
	srv, hs := handler.NewServer(handler.New(svc, logger), logger, metrics, rl)

	lis, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return err
	}
	go func() {
		logger.Info().Str("port", cfg.Port).Msg("grpc listening")
		if err := srv.Serve(lis); err != nil {
			logger.Error().Err(err).Msg("grpc server stopped")
		}
	}()

	// grpc-web gateway -> forwards browser requests to grpc on localhost
	bridge, err := grpcweb.New("localhost:"+cfg.Port, logger)
	if err != nil {
		return err
	}
	defer bridge.Close()

	e := grpcweb.NewGateway(grpcweb.GatewayConfig{
		Bridge:      bridge,
		Health:      st,
		Metrics:     metrics,
		Log:         logger,
		CORSOrigins: cfg.CORSOrigins,
	})
	go func() {
		logger.Info().Str("port", cfg.WebPort).Msg("grpc-web gateway listening")
		if err := e.Start(":" + cfg.WebPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("gateway stopped")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")
	hs.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("gateway shutdown failed")
	}

	stopped := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-shutdownCtx.Done():
		srv.Stop()
	}
	logger.Info().Msg("server stopped")
	return nil
}
