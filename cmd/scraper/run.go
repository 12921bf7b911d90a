package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/registry-scraper/internal/adapter/chromedp_crawler"
	"github.com/user/registry-scraper/internal/adapter/httpfetch"
	"github.com/user/registry-scraper/internal/adapter/memory"
	redisadapter "github.com/user/registry-scraper/internal/adapter/redis"
	"github.com/user/registry-scraper/internal/delivery/http/handler"
	"github.com/user/registry-scraper/internal/parser"
	"github.com/user/registry-scraper/internal/proxy"
	"github.com/user/registry-scraper/internal/report"
	"github.com/user/registry-scraper/internal/repository"
	"github.com/user/registry-scraper/internal/usecase"
	"github.com/user/registry-scraper/pkg/config"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		dryRun   bool
		sectors  string
		maxPages int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scrape every configured sector and upsert the results.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("sectors") {
				a.cfg.SectorList = sectors
			}
			if cmd.Flags().Changed("max-pages") {
				a.cfg.MaxPages = maxPages
			}
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.run(ctx, dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "keep results in memory instead of writing to the database")
	cmd.Flags().StringVar(&sectors, "sectors", "", "comma separated sector keywords, overrides SECTORS")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "result pages per sector, overrides MAX_PAGES")
	return cmd
}

func (a *app) run(ctx context.Context, dryRun bool) error {
	cfg := a.cfg
	runID := uuid.NewString()
	log := a.logger.With(zap.String("run_id", runID))

	// Everything below fails before the first sector is touched.
	store, closeStore, err := a.openStore(ctx, dryRun)
	if err != nil {
		return err
	}
	defer closeStore()

	checks := map[string]handler.Check{}
	var seen repository.SeenIndex
	var redisSeen *redisadapter.SeenIndexImpl
	switch cfg.DedupBackend {
	case config.DedupRedis:
		rdb, err := a.openRedis(ctx)
		if err != nil {
			return err
		}
		defer rdb.Close()
		redisSeen = redisadapter.NewSeenIndex(rdb, runID, cfg.DedupTTL())
		seen = redisSeen
		checks["redis"] = func(ctx context.Context) error { return redisadapter.Ping(ctx, rdb) }
		log.Info("dedup index in redis", zap.String("key", redisSeen.Key()))
	default:
		seen = memory.NewSeenIndex()
	}

	fetcher, closeFetcher, err := a.newFetcher()
	if err != nil {
		return err
	}
	defer closeFetcher()

	p, err := parser.New(cfg.BaseURL)
	if err != nil {
		return err
	}

	if cfg.ListenAddr != "" {
		defer a.startServer(a.newServer(cfg.ListenAddr, store, checks))()
	}

	if snap, err := store.Snapshot(ctx); err != nil {
		log.Warn("could not read statistics before run", zap.Error(err))
	} else {
		report.Snapshot(os.Stdout, snap)
	}

	scraper := usecase.NewScraper(fetcher, p, seen, store, usecase.Options{
		RunID:        runID,
		MaxPages:     cfg.MaxPages,
		RequestDelay: cfg.RequestDelay(),
		SectorDelay:  cfg.SectorDelay(),
	}, a.metrics, a.logger)

	stats, runErr := scraper.Run(ctx, cfg.Sectors())
	report.RunSummary(os.Stdout, stats)

	// The context may be cancelled already.
	if snap, err := store.Snapshot(context.WithoutCancel(ctx)); err != nil {
		log.Warn("could not read statistics after run", zap.Error(err))
	} else {
		report.Snapshot(os.Stdout, snap)
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			log.Warn("run interrupted", zap.Int("saved", stats.TotalSaved()))
		}
		return runErr
	}
	if redisSeen != nil {
		if err := redisSeen.Clear(ctx); err != nil {
			log.Warn("could not clear dedup index", zap.Error(err))
		}
	}
	return nil
}

func (a *app) newFetcher() (repository.PageFetcher, func(), error) {
	cfg := a.cfg
	if cfg.FetchMode == config.FetchBrowser {
		f, err := chromedp_crawler.NewChromedpFetcher(cfg.BaseURL, cfg.SearchPath, cfg.UserAgent, cfg.RequestTimeout, cfg.RequestDelay(), a.metrics, a.logger)
		if err != nil {
			return nil, nil, err
		}
		return f, f.Close, nil
	}

	pm, err := proxy.NewManager(cfg.UserAgent, cfg.Proxies())
	if err != nil {
		return nil, nil, fmt.Errorf("invalid proxy list: %w", err)
	}
	a.logger.Info("search client ready",
		zap.String("url", cfg.BaseURL+cfg.SearchPath),
		zap.Int("proxies", len(cfg.Proxies())),
	)
	return httpfetch.New(httpfetch.Options{
		BaseURL:     cfg.BaseURL,
		SearchPath:  cfg.SearchPath,
		Timeout:     cfg.RequestTimeout,
		MinInterval: cfg.RequestDelay(),
	}, pm, a.metrics, a.logger), func() {}, nil
}
