package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/registry-scraper/internal/adapter/chapi"
	"github.com/user/registry-scraper/internal/report"
)

func newLookupCmd(a *app) *cobra.Command {
	var (
		search  string
		perPage int
		start   int
	)

	cmd := &cobra.Command{
		Use:   "lookup [company-number]",
		Short: "Query the authenticated registry API for a company profile or a search.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if search == "" && len(args) == 0 {
				return errors.New("give a company number or --search")
			}
			client, err := chapi.New(a.cfg.APIBaseURL, a.cfg.APIKey, a.cfg.UserAgent, a.cfg.RequestTimeout, a.logger)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if search != "" {
				page, err := client.Search(ctx, search, perPage, start)
				if err != nil {
					return err
				}
				report.SearchResults(os.Stdout, page)
				return nil
			}

			profile, err := client.Company(ctx, args[0])
			if err != nil {
				return err
			}
			officers, err := client.Officers(ctx, args[0])
			if err != nil {
				return err
			}
			report.Profile(os.Stdout, profile, officers)
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "search the registry instead of fetching one profile")
	cmd.Flags().IntVar(&perPage, "items-per-page", 20, "search page size, at most 100")
	cmd.Flags().IntVar(&start, "start-index", 0, "search result offset")
	return cmd
}
