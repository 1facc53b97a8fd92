package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{Logger: zap.NewNop()})

	require.Error(t, err)
	assert.Nil(t, bm)
	assert.Equal(t, "NewBusinessMetrics: meter cannot be nil", err.Error())
}

func TestBusinessMetrics_NilReceiver(t *testing.T) {
	var bm *telemetry.BusinessMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		bm.RecordDocumentWritten(ctx, uuid.New(), "SALE", telemetry.OperationCreate)
		bm.RecordStockMovements(ctx, uuid.New(), "GRN", 3)
		bm.RecordInsufficientStock(ctx, uuid.New())
		bm.RecordJournalPosted(ctx, uuid.New(), "SALE")
		bm.RecordJournalFailed(ctx, uuid.New(), "SALE")
		bm.RecordJournalReversed(ctx, uuid.New())
		bm.Stop()
	})
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					out[m.Name] += dp.Value
				}
			case metricdata.Gauge[int64]:
				for _, dp := range data.DataPoints {
					out[m.Name] += dp.Value
				}
			}
		}
	}
	return out
}

func TestBusinessMetrics_Counters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{Meter: provider.Meter("test")})
	require.NoError(t, err)

	ctx := context.Background()
	tenantID := uuid.New()

	bm.RecordDocumentWritten(ctx, tenantID, "GRN", telemetry.OperationCreate)
	bm.RecordDocumentWritten(ctx, tenantID, "SALE", telemetry.OperationUpdate)
	bm.RecordStockMovements(ctx, tenantID, "GRN", 3)
	bm.RecordStockMovements(ctx, tenantID, "GRN", 0)
	bm.RecordInsufficientStock(ctx, tenantID)
	bm.RecordJournalPosted(ctx, tenantID, "SALE")
	bm.RecordJournalReversed(ctx, tenantID)

	got := collect(t, reader)
	assert.Equal(t, int64(2), got["erp_document_written_total"])
	assert.Equal(t, int64(3), got["erp_stock_movement_total"])
	assert.Equal(t, int64(1), got["erp_insufficient_stock_total"])
	assert.Equal(t, int64(1), got["erp_journal_posted_total"])
	assert.Equal(t, int64(1), got["erp_journal_reversed_total"])
	assert.Zero(t, got["erp_journal_failed_total"])
}

type stubBacklog struct {
	counts map[uuid.UUID]int64
	err    error
}

func (s stubBacklog) CountUnposted(_ context.Context, tenantID uuid.UUID) (int64, error) {
	return s.counts[tenantID], s.err
}

type stubTenants []uuid.UUID

func (s stubTenants) GetActiveTenantIDs(context.Context) ([]uuid.UUID, error) {
	return s, nil
}

func TestBusinessMetrics_PeriodicBacklog(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	a, b := uuid.New(), uuid.New()

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:           provider.Meter("test"),
		BacklogProvider: stubBacklog{counts: map[uuid.UUID]int64{a: 2, b: 5}},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bm.StartPeriodicCollection(ctx, stubTenants{a, b}, time.Hour)
	defer bm.Stop()

	assert.Eventually(t, func() bool {
		return collect(t, reader)["erp_journal_backlog"] == 7
	}, time.Second, 10*time.Millisecond)
}

func TestBusinessMetrics_BacklogErrorIsSkipped(t *testing.T) {
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:           noop.NewMeterProvider().Meter("test"),
		BacklogProvider: stubBacklog{err: errors.New("db down")},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	bm.StartPeriodicCollection(ctx, stubTenants{uuid.New()}, time.Hour)
	cancel()
	bm.Stop()
	bm.Stop()
}
