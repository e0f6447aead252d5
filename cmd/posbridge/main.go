package main

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/posbridge/internal/clock"
	"github.com/smallbiznis/posbridge/internal/config"
	"github.com/smallbiznis/posbridge/internal/extract"
	"github.com/smallbiznis/posbridge/internal/lake"
	"github.com/smallbiznis/posbridge/internal/loader"
	"github.com/smallbiznis/posbridge/internal/migration"
	"github.com/smallbiznis/posbridge/internal/normalizer"
	"github.com/smallbiznis/posbridge/internal/observability"
	"github.com/smallbiznis/posbridge/internal/pipeline"
	"github.com/smallbiznis/posbridge/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		// Functional Domains
		extract.Module,
		lake.Module,
		normalizer.Module,
		loader.Module,
		migration.Module,
		pipeline.Module,

		fx.Invoke(runPipeline),
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

// runPipeline executes one full pass once the app has started, then
// shuts the process down.
func runPipeline(lc fx.Lifecycle, runner *pipeline.Runner, shutdowner fx.Shutdowner, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := runner.Run(context.Background()); err != nil {
					log.Error("pipeline run failed", zap.Error(err))
				}
				_ = shutdowner.Shutdown()
			}()
			return nil
		},
	})
}
