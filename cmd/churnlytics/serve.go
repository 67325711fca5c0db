package main

import (
	"github.com/smallbiznis/churnlytics/internal/analytics"
	"github.com/smallbiznis/churnlytics/internal/dataset"
	"github.com/smallbiznis/churnlytics/internal/export"
	"github.com/smallbiznis/churnlytics/internal/importer"
	"github.com/smallbiznis/churnlytics/internal/migration"
	"github.com/smallbiznis/churnlytics/internal/seed"
	"github.com/smallbiznis/churnlytics/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fx.New(
				coreOptions(),
				migration.Module,
				dataset.Module,
				seed.Module,

				analytics.Module,
				importer.Module,
				export.Module,

				server.Module,
			)
			if err := app.Err(); err != nil {
				return err
			}
			app.Run()
			return nil
		},
	}
}
