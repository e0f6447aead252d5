package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)
	return zap.New(core), logs
}

func TestWithRunAttachesRunID(t *testing.T) {
	log, logs := observedLogger()

	WithRun(log, " 1234567890 ").Info("run started")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "1234567890", fields["run_id"])
}

func TestWithPartitionAttachesIdentityFields(t *testing.T) {
	log, logs := observedLogger()

	WithPartition(log, "getGuestChecks", "2024-03-07", "101").Info("landed")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "getGuestChecks", fields["api"])
	assert.Equal(t, "2024-03-07", fields["bus_dt"])
	assert.Equal(t, "101", fields["store_id"])
}

func TestCorrelationHelpersNilSafe(t *testing.T) {
	assert.Nil(t, WithRun(nil, "1"))
	assert.Nil(t, WithPartition(nil, "a", "b", "c"))
}

func TestNormalizeFormat(t *testing.T) {
	assert.Equal(t, "console", normalizeFormat(" Console "))
	assert.Equal(t, "json", normalizeFormat("json"))
	assert.Equal(t, "json", normalizeFormat(""))
	assert.Equal(t, "json", normalizeFormat("logfmt"))
}
