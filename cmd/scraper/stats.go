package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/user/registry-scraper/internal/report"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print counts of the stored companies.",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := a.openStore(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer closeStore()

			snap, err := store.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			report.Snapshot(os.Stdout, snap)
			return nil
		},
	}
}
