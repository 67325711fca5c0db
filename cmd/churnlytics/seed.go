package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/smallbiznis/churnlytics/internal/config"
	"github.com/smallbiznis/churnlytics/internal/dataset"
	datasetdomain "github.com/smallbiznis/churnlytics/internal/dataset/domain"
	"github.com/smallbiznis/churnlytics/internal/migration"
	"github.com/smallbiznis/churnlytics/internal/seed"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func seedCmd() *cobra.Command {
	var (
		dataDir string
		replace bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load members, check-ins, sales and leads from flat files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				seeder *seed.Seeder
				cfg    config.Config
			)
			app := fx.New(
				coreOptions(),
				migration.Module,
				dataset.Module,
				fx.Provide(seed.New),
				fx.Populate(&seeder, &cfg),
				fx.NopLogger,
			)

			mode := datasetdomain.ModeAppend
			if replace {
				mode = datasetdomain.ModeReplace
			}

			return runOnce(cmd.Context(), app, func(ctx context.Context) error {
				dir := strings.TrimSpace(dataDir)
				if dir == "" {
					dir = cfg.DataDir
				}
				counts, err := seeder.Load(ctx, dir, mode)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "loaded %d members, %d check-ins, %d sales, %d leads from %s\n",
					counts.Members, counts.Checkins, counts.Sales, counts.Leads, dir)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "", "directory holding members.csv, checkins.csv, sales.csv and leads.csv (default DATA_DIR)")
	cmd.Flags().BoolVar(&replace, "replace", false, "replace existing rows instead of appending")
	return cmd
}
