package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	PipelineErrorTypeExtract   = "extract"
	PipelineErrorTypeLakeWrite = "lake_write"
	PipelineErrorTypeNormalize = "normalize"
	PipelineErrorTypeLoad      = "load"
	PipelineErrorTypeUnknown   = "unknown"
)

// Config carries the constant labels stamped onto every pipeline metric.
type Config struct {
	ServiceName string
	Environment string
}

// PipelineMetrics captures ETL pipeline health signals.
type PipelineMetrics struct {
	runsTotal      *prometheus.CounterVec
	runDuration    *prometheus.HistogramVec
	documents      *prometheus.CounterVec
	lakeWrites     *prometheus.CounterVec
	lakeFailures   *prometheus.CounterVec
	batchesEmpty   *prometheus.CounterVec
	rowsLoaded     *prometheus.CounterVec
	loadFailures   *prometheus.CounterVec
	loadDuration   *prometheus.HistogramVec
	pipelineErrors *prometheus.CounterVec
}

var (
	pipelineMetricsOnce sync.Once
	pipelineMetrics     *PipelineMetrics
)

// Pipeline returns the singleton pipeline metrics registry.
func Pipeline() *PipelineMetrics {
	return PipelineWithConfig(Config{})
}

// PipelineWithConfig returns the singleton pipeline metrics registry using config labels.
func PipelineWithConfig(cfg Config) *PipelineMetrics {
	pipelineMetricsOnce.Do(func() {
		pipelineMetrics = newPipelineMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return pipelineMetrics
}

// ResetPipelineMetricsForTest resets the pipeline metrics singleton for tests.
func ResetPipelineMetricsForTest() {
	pipelineMetricsOnce = sync.Once{}
	pipelineMetrics = nil
}

func newPipelineMetrics(registerer prometheus.Registerer, cfg Config) *PipelineMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "posbridge"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	runsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "posbridge_pipeline_runs_total",
		Help:        "Pipeline runs by outcome.",
		ConstLabels: constLabels,
	}, []string{"outcome"})
	runDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "posbridge_pipeline_run_duration_seconds",
		Help:        "End-to-end pipeline run latency.",
		Buckets:     []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		ConstLabels: constLabels,
	}, []string{"mode"})
	documents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "posbridge_documents_extracted_total",
		Help:        "Source documents fetched per endpoint.",
		ConstLabels: constLabels,
	}, []string{"api"})
	lakeWrites := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "posbridge_lake_writes_total",
		Help:        "Raw envelopes persisted to the data lake.",
		ConstLabels: constLabels,
	}, []string{"api"})
	lakeFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "posbridge_lake_write_failures_total",
		Help:        "Data lake write failures per endpoint.",
		ConstLabels: constLabels,
	}, []string{"api"})
	batchesEmpty := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "posbridge_batches_empty_total",
		Help:        "Documents that normalized to an empty batch.",
		ConstLabels: constLabels,
	}, []string{"store_id"})
	rowsLoaded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "posbridge_rows_loaded_total",
		Help:        "Rows appended to the warehouse per table.",
		ConstLabels: constLabels,
	}, []string{"table"})
	loadFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "posbridge_load_failures_total",
		Help:        "Warehouse load transactions rolled back.",
		ConstLabels: constLabels,
	}, []string{"table"})
	loadDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "posbridge_load_duration_seconds",
		Help:        "Warehouse load transaction latency.",
		Buckets:     []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		ConstLabels: constLabels,
	}, []string{"store_id"})
	pipelineErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "posbridge_pipeline_errors_total",
		Help:        "Pipeline errors by stage for triage.",
		ConstLabels: constLabels,
	}, []string{"stage"})

	registerer.MustRegister(
		runsTotal,
		runDuration,
		documents,
		lakeWrites,
		lakeFailures,
		batchesEmpty,
		rowsLoaded,
		loadFailures,
		loadDuration,
		pipelineErrors,
	)

	return &PipelineMetrics{
		runsTotal:      runsTotal,
		runDuration:    runDuration,
		documents:      documents,
		lakeWrites:     lakeWrites,
		lakeFailures:   lakeFailures,
		batchesEmpty:   batchesEmpty,
		rowsLoaded:     rowsLoaded,
		loadFailures:   loadFailures,
		loadDuration:   loadDuration,
		pipelineErrors: pipelineErrors,
	}
}

// ObserveRun records the outcome and duration of a complete pipeline run.
func (m *PipelineMetrics) ObserveRun(mode string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.runsTotal.WithLabelValues(outcome).Inc()
	m.runDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// IncDocumentExtracted counts a fetched source document.
func (m *PipelineMetrics) IncDocumentExtracted(api string) {
	if m == nil {
		return
	}
	m.documents.WithLabelValues(api).Inc()
}

// IncLakeWrite counts a successful raw-zone write.
func (m *PipelineMetrics) IncLakeWrite(api string) {
	if m == nil {
		return
	}
	m.lakeWrites.WithLabelValues(api).Inc()
}

// IncLakeWriteFailure counts a failed raw-zone write.
func (m *PipelineMetrics) IncLakeWriteFailure(api string) {
	if m == nil {
		return
	}
	m.lakeFailures.WithLabelValues(api).Inc()
}

// IncEmptyBatch counts a document that produced no rows.
func (m *PipelineMetrics) IncEmptyBatch(storeID string) {
	if m == nil {
		return
	}
	m.batchesEmpty.WithLabelValues(storeID).Inc()
}

// AddRowsLoaded counts rows appended to a warehouse table.
func (m *PipelineMetrics) AddRowsLoaded(table string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rowsLoaded.WithLabelValues(table).Add(float64(n))
}

// IncLoadFailure counts a rolled-back load transaction.
func (m *PipelineMetrics) IncLoadFailure(table string) {
	if m == nil {
		return
	}
	if strings.TrimSpace(table) == "" {
		table = "unknown"
	}
	m.loadFailures.WithLabelValues(table).Inc()
}

// ObserveLoadDuration records the latency of a load transaction.
func (m *PipelineMetrics) ObserveLoadDuration(storeID string, duration time.Duration) {
	if m == nil {
		return
	}
	m.loadDuration.WithLabelValues(storeID).Observe(duration.Seconds())
}

// IncPipelineError counts a pipeline error by stage.
func (m *PipelineMetrics) IncPipelineError(stage string) {
	if m == nil {
		return
	}
	if strings.TrimSpace(stage) == "" {
		stage = PipelineErrorTypeUnknown
	}
	m.pipelineErrors.WithLabelValues(stage).Inc()
}
