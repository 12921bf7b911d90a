package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	redisadapter "github.com/user/registry-scraper/internal/adapter/redis"
	"github.com/user/registry-scraper/internal/delivery/http/handler"
	"github.com/user/registry-scraper/pkg/config"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve metrics, health and the stored companies over HTTP.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.ListenAddr
			}
			if addr == "" {
				addr = ":8080"
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, closeStore, err := a.openStore(ctx, false)
			if err != nil {
				return err
			}
			defer closeStore()

			checks := map[string]handler.Check{}
			if a.cfg.DedupBackend == config.DedupRedis {
				rdb, err := a.openRedis(ctx)
				if err != nil {
					return err
				}
				defer rdb.Close()
				checks["redis"] = func(ctx context.Context) error { return redisadapter.Ping(ctx, rdb) }
			}

			shutdown := a.startServer(a.newServer(addr, store, checks))
			<-ctx.Done()
			a.logger.Info("shutting down server...")
			shutdown()
			a.logger.Info("server exiting", zap.String("addr", addr))
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, defaults to LISTEN_ADDR or :8080")
	return cmd
}
