package main

import (
	"context"
	"fmt"

	"github.com/smallbiznis/churnlytics/internal/migration"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fx.New(
				coreOptions(),
				migration.Module,
				fx.NopLogger,
			)
			return runOnce(cmd.Context(), app, func(context.Context) error {
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			})
		},
	}
}
