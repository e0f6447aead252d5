package main

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/posbridge/internal/clock"
	"github.com/smallbiznis/posbridge/internal/config"
	"github.com/smallbiznis/posbridge/internal/extract"
	"github.com/smallbiznis/posbridge/internal/lake"
	"github.com/smallbiznis/posbridge/internal/observability"
	"github.com/smallbiznis/posbridge/internal/pipeline"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// The ingestor lands raw envelopes in the data lake and nothing else.
// No database modules are wired, so the runner skips the warehouse leg.
func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		clock.Module,

		extract.Module,
		lake.Module,
		pipeline.Module,

		fx.Invoke(runIngestion),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

func runIngestion(lc fx.Lifecycle, runner *pipeline.Runner, shutdowner fx.Shutdowner, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := runner.Run(context.Background()); err != nil {
					log.Error("ingestion run failed", zap.Error(err))
				}
				_ = shutdowner.Shutdown()
			}()
			return nil
		},
	})
}
