package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// memoryExporter keeps exported records for assertions.
type memoryExporter struct {
	mu      sync.Mutex
	records []sdklog.Record
}

func (e *memoryExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range records {
		e.records = append(e.records, r.Clone())
	}
	return nil
}

func (e *memoryExporter) Shutdown(context.Context) error   { return nil }
func (e *memoryExporter) ForceFlush(context.Context) error { return nil }

func (e *memoryExporter) bodies() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.records))
	for _, r := range e.records {
		out = append(out, r.Body().AsString())
	}
	return out
}

func newTestLoggerProvider(t *testing.T, exp sdklog.Exporter) *LoggerProvider {
	t.Helper()
	return &LoggerProvider{
		provider: sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exp))),
		logger:   zaptest.NewLogger(t),
		config:   LogsConfig{Enabled: true, ServiceName: "ordersync-test"},
	}
}

func TestNewLoggerProvider_Disabled(t *testing.T) {
	lp, err := NewLoggerProvider(context.Background(), LogsConfig{}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())

	base := zaptest.NewLogger(t)
	assert.Same(t, base, lp.Bridge(base, zapcore.InfoLevel))
	assert.NoError(t, lp.ForceFlush(context.Background()))
	assert.NoError(t, lp.Shutdown(context.Background()))
}

func TestLoggerProvider_Bridge(t *testing.T) {
	exp := &memoryExporter{}
	lp := newTestLoggerProvider(t, exp)
	core, local := observer.New(zapcore.DebugLevel)

	log := lp.Bridge(zap.New(core), zapcore.WarnLevel).With(zap.String("shop", "Acme"))
	log.Info("File processed")
	log.Warn("Row failed", zap.Int("row", 3))
	require.NoError(t, lp.ForceFlush(context.Background()))

	assert.Equal(t, 2, local.Len(), "local output keeps every entry")
	assert.Equal(t, []string{"Row failed"}, exp.bodies())

	exp.mu.Lock()
	rec := exp.records[0]
	exp.mu.Unlock()
	assert.Equal(t, otellog.SeverityWarn, rec.Severity())

	attrs := map[string]otellog.Value{}
	rec.WalkAttributes(func(kv otellog.KeyValue) bool {
		attrs[kv.Key] = kv.Value
		return true
	})
	assert.Equal(t, "Acme", attrs["shop"].AsString())
	assert.Equal(t, int64(3), attrs["row"].AsInt64())

	require.NoError(t, lp.Shutdown(context.Background()))
}

func TestLevelFilterCore(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	filtered := &levelFilterCore{Core: core, minLevel: zapcore.ErrorLevel}

	assert.False(t, filtered.Enabled(zapcore.WarnLevel))
	assert.True(t, filtered.Enabled(zapcore.ErrorLevel))

	log := zap.New(filtered).With(zap.String("k", "v"))
	log.Warn("dropped")
	log.Error("kept")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
	assert.Equal(t, "v", logs.All()[0].ContextMap()["k"])
}
