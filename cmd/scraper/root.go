package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/registry-scraper/internal/adapter/memory"
	"github.com/user/registry-scraper/internal/adapter/postgres"
	"github.com/user/registry-scraper/internal/delivery/http/handler"
	"github.com/user/registry-scraper/internal/delivery/http/router"
	"github.com/user/registry-scraper/internal/repository"
	"github.com/user/registry-scraper/pkg/config"
	"github.com/user/registry-scraper/pkg/logger"
	"github.com/user/registry-scraper/pkg/metrics"
)

// app carries what every subcommand needs. It is filled in before any
// subcommand runs.
type app struct {
	envFile string
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "scraper",
		Short:         "scraper ingests public company register search results into the companies table.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.envFile)
			if err != nil {
				return err
			}
			l, err := logger.New(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			zap.ReplaceGlobals(l)
			a.cfg = cfg
			a.logger = l
			a.metrics = metrics.New(nil)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "optional env file with configuration")

	root.AddCommand(
		newRunCmd(a),
		newStatsCmd(a),
		newExportCmd(a),
		newLookupCmd(a),
		newMigrateCmd(a),
		newServeCmd(a),
	)
	return root
}

// openStore connects to Postgres, or returns the in-memory store for dry runs.
// The returned close function is never nil.
func (a *app) openStore(ctx context.Context, dryRun bool) (repository.CompanyStore, func(), error) {
	if dryRun {
		a.logger.Info("dry run, companies are kept in memory")
		return memory.NewCompanyStore(), func() {}, nil
	}
	pool, err := postgres.Connect(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	a.logger.Info("postgres connection pool established")
	return postgres.NewCompanyRepo(pool), pool.Close, nil
}

func (a *app) openRedis(ctx context.Context) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     a.cfg.RedisAddr,
		Password: a.cfg.RedisPassword,
		DB:       a.cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", a.cfg.RedisAddr, err)
	}
	a.logger.Info("redis connection established", zap.String("addr", a.cfg.RedisAddr))
	return rdb, nil
}

func (a *app) newServer(addr string, store repository.CompanyStore, checks map[string]handler.Check) *http.Server {
	h := handler.NewHandler(store, checks, a.logger)
	return &http.Server{
		Addr:         addr,
		Handler:      router.New(h, a.metrics, a.logger),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// startServer serves in the background and returns a shutdown function.
func (a *app) startServer(srv *http.Server) func() {
	go func() {
		a.logger.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("could not start server", zap.Error(err))
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			a.logger.Error("server forced to shutdown", zap.Error(err))
		}
	}
}
