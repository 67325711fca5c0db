package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/smallbiznis/churnlytics/internal/dataset"
	"github.com/smallbiznis/churnlytics/internal/export"
	exportdomain "github.com/smallbiznis/churnlytics/internal/export/domain"
	"github.com/smallbiznis/churnlytics/internal/migration"
	"github.com/smallbiznis/churnlytics/pkg/apperror"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func exportCmd() *cobra.Command {
	var (
		outDir string
		format string
	)

	cmd := &cobra.Command{
		Use:   "export <overview|at-risk|churn-analysis|revenue>",
		Short: "Write a report download to disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := exportdomain.ParseKind(args[0])
			if err != nil {
				return err
			}
			format = strings.ToLower(strings.TrimSpace(format))
			if format == "pdf" && kind != exportdomain.KindOverview {
				return apperror.Validation("pdf is only available for the overview report")
			}
			if format != "pdf" && format != "xlsx" {
				return apperror.Validation("unknown format %q", format)
			}

			var svc exportdomain.Service
			app := fx.New(
				coreOptions(),
				migration.Module,
				dataset.Module,
				export.Module,
				fx.Populate(&svc),
				fx.NopLogger,
			)

			return runOnce(cmd.Context(), app, func(ctx context.Context) error {
				var file exportdomain.File
				if format == "pdf" {
					file, err = svc.OverviewPDF(ctx)
				} else {
					file, err = svc.Export(ctx, kind)
				}
				if err != nil {
					return err
				}

				if err := os.MkdirAll(outDir, 0o755); err != nil {
					return err
				}
				path := filepath.Join(outDir, file.Name)
				if err := os.WriteFile(path, file.Data, 0o644); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().StringVar(&format, "format", "xlsx", "xlsx or pdf (overview only)")
	return cmd
}
