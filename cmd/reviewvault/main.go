package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/reviewvault/internal/clock"
	"github.com/smallbiznis/reviewvault/internal/config"
	"github.com/smallbiznis/reviewvault/internal/ingest"
	"github.com/smallbiznis/reviewvault/internal/loadaudit"
	"github.com/smallbiznis/reviewvault/internal/migration"
	"github.com/smallbiznis/reviewvault/internal/observability"
	"github.com/smallbiznis/reviewvault/internal/review"
	"github.com/smallbiznis/reviewvault/internal/stage"
	"github.com/smallbiznis/reviewvault/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

const (
	startTimeout = 30 * time.Second
	stopTimeout  = 15 * time.Second
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "reviewvault",
		Short:         "Ingest review exports into the review store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newIngestCmd(),
		newSchemaCmd(),
		newMetricsCmd(),
		newDQCmd(),
		newReviewsCmd(),
		newStatusCmd(),
	)
	return root
}

// withApp populates targets from the container, starts the app and calls run.
// Schema setup runs on start when migrate is set.
func withApp(ctx context.Context, migrate bool, run func(context.Context) error, targets ...any) error {
	options := []fx.Option{
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		review.Module,
		loadaudit.Module,
		stage.Module,
		ingest.Module,

		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		fx.StartTimeout(startTimeout),
		fx.StopTimeout(stopTimeout),
		fx.Populate(targets...),
	}
	if migrate {
		options = append(options, migration.Module)
	}

	app := fx.New(options...)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	runErr := run(ctx)

	stopCtx, cancelStop := context.WithTimeout(context.WithoutCancel(ctx), stopTimeout)
	defer cancelStop()
	if err := app.Stop(stopCtx); err != nil && runErr == nil {
		return err
	}
	return runErr
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
