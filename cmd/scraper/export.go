package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/registry-scraper/internal/export"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every stored company as CSV or JSON.",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := export.Format(format)
			if f != export.FormatCSV && f != export.FormatJSON {
				return fmt.Errorf("--format must be csv or json, got %q", format)
			}

			store, closeStore, err := a.openStore(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer closeStore()

			var w io.Writer = os.Stdout
			if out != "" && out != "-" {
				file, err := os.Create(out)
				if err != nil {
					return err
				}
				defer file.Close()
				w = file
			}

			n, err := export.Write(cmd.Context(), store, f, w)
			if err != nil {
				return err
			}
			a.logger.Info("export finished", zap.Int("rows", n), zap.String("format", format), zap.String("out", out))
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "csv or json")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file, - for stdout")
	return cmd
}
