package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/churnlytics/internal/clock"
	"github.com/smallbiznis/churnlytics/internal/config"
	"github.com/smallbiznis/churnlytics/internal/observability"
	"github.com/smallbiznis/churnlytics/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var rootCmd = &cobra.Command{
	Use:           "churnlytics",
	Short:         "Gym membership analytics backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(serveCmd(), seedCmd(), migrateCmd(), exportCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// coreOptions are the modules every command needs: configuration, logging,
// ids, the clock and the database connection.
func coreOptions() fx.Option {
	return fx.Options(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
	)
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

// runOnce starts app, runs fn and stops app again.
func runOnce(ctx context.Context, app *fx.App, fn func(context.Context) error) error {
	if err := app.Err(); err != nil {
		return err
	}
	if err := app.Start(ctx); err != nil {
		return err
	}
	runErr := fn(ctx)
	stopErr := app.Stop(context.Background())
	if runErr != nil {
		return runErr
	}
	return stopErr
}
