package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/posbridge/internal/clock"
	"github.com/smallbiznis/posbridge/internal/config"
	extractdomain "github.com/smallbiznis/posbridge/internal/extract/domain"
	lakedomain "github.com/smallbiznis/posbridge/internal/lake/domain"
	loaderdomain "github.com/smallbiznis/posbridge/internal/loader/domain"
	normdomain "github.com/smallbiznis/posbridge/internal/normalizer/domain"
	obslogger "github.com/smallbiznis/posbridge/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/posbridge/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("pipeline: missing required dependency")

type Params struct {
	fx.In

	Log     *zap.Logger
	Config  config.Config
	Clock   clock.Clock
	GenID   *snowflake.Node
	Extract extractdomain.Service
	Lake    lakedomain.Store

	// Normalizer and Loader are absent in ingestion-only deployments;
	// the runner then lands raw envelopes and skips the warehouse leg.
	Normalizer normdomain.Service          `optional:"true"`
	Loader     loaderdomain.Service        `optional:"true"`
	Metrics    *obsmetrics.PipelineMetrics `optional:"true"`
}

// Runner drives one end-to-end pass: pull every endpoint for every
// configured store, land the raw envelope in the lake, and for guest
// checks flatten and load into the warehouse. Failures stay scoped to
// the document that caused them.
type Runner struct {
	log        *zap.Logger
	cfg        config.Config
	clock      clock.Clock
	genID      *snowflake.Node
	extract    extractdomain.Service
	lake       lakedomain.Store
	normalizer normdomain.Service
	loader     loaderdomain.Service
	metrics    *obsmetrics.PipelineMetrics
}

func New(p Params) (*Runner, error) {
	if p.Log == nil || p.Clock == nil || p.GenID == nil || p.Extract == nil || p.Lake == nil {
		return nil, ErrInvalidConfig
	}
	return &Runner{
		log:        p.Log.Named("pipeline").With(zap.String("component", "pipeline")),
		cfg:        p.Config,
		clock:      p.Clock,
		genID:      p.GenID,
		extract:    p.Extract,
		lake:       p.Lake,
		normalizer: p.Normalizer,
		loader:     p.Loader,
		metrics:    p.Metrics,
	}, nil
}

// Run executes one live pass over every store and endpoint. The returned
// error aggregates per-document failures; a non-nil error still means
// every unaffected document was processed.
func (r *Runner) Run(ctx context.Context) error {
	start := r.clock.Now()
	runID := r.genID.Generate().String()
	busDt := start

	log := obslogger.WithRun(r.log, runID)
	log.Info("pipeline run started",
		zap.Time("bus_dt", busDt),
		zap.Strings("stores", r.cfg.Stores),
	)

	var errs []error
	for _, storeID := range r.cfg.Stores {
		for _, api := range extractdomain.Endpoints {
			if err := ctx.Err(); err != nil {
				return errors.Join(append(errs, err)...)
			}
			if err := r.processEndpoint(ctx, log, api, busDt, storeID); err != nil {
				errs = append(errs, err)
			}
		}
	}

	err := errors.Join(errs...)
	r.metrics.ObserveRun("live", r.clock.Now().Sub(start), err)
	if err != nil {
		log.Warn("pipeline run finished with failures", zap.Int("failures", len(errs)))
	} else {
		log.Info("pipeline run finished")
	}
	return err
}

func (r *Runner) processEndpoint(ctx context.Context, log *zap.Logger, api string, busDt time.Time, storeID string) error {
	log = obslogger.WithPartition(log, api, busDt.Format("2006-01-02"), storeID)

	env, err := r.extract.Fetch(ctx, api, busDt, storeID)
	if err != nil {
		r.metrics.IncPipelineError(obsmetrics.PipelineErrorTypeExtract)
		log.Error("extract failed", zap.Error(err))
		return fmt.Errorf("extract %s store %s: %w", api, storeID, err)
	}
	r.metrics.IncDocumentExtracted(api)

	partition := lakedomain.Partition{
		API:          api,
		BusinessDate: busDt,
		StoreID:      storeID,
	}
	objectPath, err := r.lake.Write(ctx, partition, env)
	if err != nil {
		r.metrics.IncLakeWriteFailure(api)
		log.Error("lake write failed", zap.Error(err))
		return fmt.Errorf("lake write %s store %s: %w", api, storeID, err)
	}
	r.metrics.IncLakeWrite(api)
	log.Debug("raw envelope landed", zap.String("path", objectPath))

	if api != extractdomain.APIGuestChecks {
		return nil
	}
	return r.normalizeAndLoad(ctx, log, env)
}

func (r *Runner) normalizeAndLoad(ctx context.Context, log *zap.Logger, env extractdomain.Envelope) error {
	if r.normalizer == nil || r.loader == nil {
		return nil
	}

	doc, err := env.GuestCheckDocument()
	if err != nil {
		r.metrics.IncPipelineError(obsmetrics.PipelineErrorTypeNormalize)
		log.Error("document assembly failed", zap.Error(err))
		return fmt.Errorf("assemble document store %s: %w", env.Payload.StoreID, err)
	}

	batch, err := r.normalizer.Normalize(doc)
	if errors.Is(err, normdomain.ErrEmptyBatch) {
		r.metrics.IncEmptyBatch(doc.LocRef)
		log.Warn("document produced no rows, skipping load")
		return nil
	}
	if err != nil {
		r.metrics.IncPipelineError(obsmetrics.PipelineErrorTypeNormalize)
		log.Error("normalize failed", zap.Error(err))
		return fmt.Errorf("normalize store %s: %w", doc.LocRef, err)
	}

	loadStart := r.clock.Now()
	if err := r.loader.Load(ctx, batch); err != nil {
		r.metrics.IncPipelineError(obsmetrics.PipelineErrorTypeLoad)
		var tableErr *loaderdomain.TableError
		if errors.As(err, &tableErr) {
			r.metrics.IncLoadFailure(tableErr.Table)
		} else {
			r.metrics.IncLoadFailure("")
		}
		log.Error("load failed, batch rolled back", zap.Error(err))
		return fmt.Errorf("load store %s: %w", doc.LocRef, err)
	}
	r.metrics.ObserveLoadDuration(doc.LocRef, r.clock.Now().Sub(loadStart))

	for _, table := range batch.Tables() {
		r.metrics.AddRowsLoaded(table.Name, table.Count)
	}
	log.Info("batch loaded",
		zap.Int("guest_checks", len(batch.GuestChecks)),
		zap.Int("detail_lines", len(batch.DetailLines)),
	)
	return nil
}

// Replay re-drives normalization and load from raw guest-check envelopes
// already landed in the lake. Documents are independent: a failed one is
// reported and the rest still load.
func (r *Runner) Replay(ctx context.Context) error {
	if r.normalizer == nil || r.loader == nil {
		return ErrInvalidConfig
	}

	start := r.clock.Now()
	runID := r.genID.Generate().String()
	log := obslogger.WithRun(r.log, runID).With(zap.String("mode", "replay"))

	paths, err := r.lake.Scan(extractdomain.APIGuestChecks)
	if err != nil {
		r.metrics.ObserveRun("replay", r.clock.Now().Sub(start), err)
		return fmt.Errorf("scan lake: %w", err)
	}
	log.Info("replay started", zap.Int("documents", len(paths)))

	var errs []error
	for _, objectPath := range paths {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}
		var env extractdomain.Envelope
		if err := r.lake.Read(objectPath, &env); err != nil {
			r.metrics.IncPipelineError(obsmetrics.PipelineErrorTypeLakeWrite)
			log.Error("read raw envelope failed", zap.String("path", objectPath), zap.Error(err))
			errs = append(errs, fmt.Errorf("read %s: %w", objectPath, err))
			continue
		}
		if err := r.normalizeAndLoad(ctx, log.With(zap.String("path", objectPath)), env); err != nil {
			errs = append(errs, err)
		}
	}

	runErr := errors.Join(errs...)
	r.metrics.ObserveRun("replay", r.clock.Now().Sub(start), runErr)
	if runErr != nil {
		log.Warn("replay finished with failures", zap.Int("failures", len(errs)))
	} else {
		log.Info("replay finished")
	}
	return runErr
}
