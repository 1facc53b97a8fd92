package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics counts document writes, stock movements and journal
// postings. All Record methods are safe on a nil receiver so services can
// run without metrics.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	documentWrittenTotal   *Counter
	stockMovementTotal     *Counter
	insufficientStockTotal *Counter
	journalPostedTotal     *Counter
	journalFailedTotal     *Counter
	journalReversedTotal   *Counter

	journalBacklog *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	backlogProvider JournalBacklogProvider
}

// JournalBacklogProvider reports journal postings that have not completed
type JournalBacklogProvider interface {
	// CountUnposted returns sources in PENDING or FAILED journal status
	CountUnposted(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// TenantProvider lists the tenants to collect gauges for
type TenantProvider interface {
	GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	BacklogProvider JournalBacklogProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:           cfg.Meter,
		logger:          logger,
		stopChan:        make(chan struct{}),
		backlogProvider: cfg.BacklogProvider,
	}

	counters := []struct {
		target **Counter
		name   string
		desc   string
		unit   string
	}{
		{&bm.documentWrittenTotal, "erp_document_written_total", "Documents created, updated or deleted", "{documents}"},
		{&bm.stockMovementTotal, "erp_stock_movement_total", "Stock movements written to the ledger", "{movements}"},
		{&bm.insufficientStockTotal, "erp_insufficient_stock_total", "Stock operations rejected for insufficient stock", "{operations}"},
		{&bm.journalPostedTotal, "erp_journal_posted_total", "Journal entries posted", "{entries}"},
		{&bm.journalFailedTotal, "erp_journal_failed_total", "Journal requests that failed", "{requests}"},
		{&bm.journalReversedTotal, "erp_journal_reversed_total", "Journal entries reversed", "{entries}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(cfg.Meter, c.name, c.desc, c.unit)
		if err != nil {
			return nil, err
		}
		*c.target = counter
	}

	var err error
	bm.journalBacklog, err = NewGauge(cfg.Meter,
		"erp_journal_backlog",
		"Sources waiting for or failing journal posting",
		"{sources}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// RecordDocumentWritten counts a document write
func (bm *BusinessMetrics) RecordDocumentWritten(ctx context.Context, tenantID uuid.UUID, kind, operation string) {
	if bm == nil {
		return
	}
	bm.documentWrittenTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrDocumentKind.String(kind),
		AttrOperation.String(operation),
	)
}

// RecordStockMovements counts movements written by one operation
func (bm *BusinessMetrics) RecordStockMovements(ctx context.Context, tenantID uuid.UUID, source string, n int) {
	if bm == nil || n <= 0 {
		return
	}
	bm.stockMovementTotal.Add(ctx, int64(n),
		AttrTenantID.String(tenantID.String()),
		AttrMovementSource.String(source),
	)
}

// RecordInsufficientStock counts a rejected stock operation
func (bm *BusinessMetrics) RecordInsufficientStock(ctx context.Context, tenantID uuid.UUID) {
	if bm == nil {
		return
	}
	bm.insufficientStockTotal.Inc(ctx, AttrTenantID.String(tenantID.String()))
}

// RecordJournalPosted counts a posted entry
func (bm *BusinessMetrics) RecordJournalPosted(ctx context.Context, tenantID uuid.UUID, source string) {
	if bm == nil {
		return
	}
	bm.journalPostedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrJournalSource.String(source),
	)
}

// RecordJournalFailed counts a failed journal request
func (bm *BusinessMetrics) RecordJournalFailed(ctx context.Context, tenantID uuid.UUID, source string) {
	if bm == nil {
		return
	}
	bm.journalFailedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrJournalSource.String(source),
	)
}

// RecordJournalReversed counts a reversal
func (bm *BusinessMetrics) RecordJournalReversed(ctx context.Context, tenantID uuid.UUID) {
	if bm == nil {
		return
	}
	bm.journalReversedTotal.Inc(ctx, AttrTenantID.String(tenantID.String()))
}

// RecordJournalBacklog sets the backlog gauge of a tenant
func (bm *BusinessMetrics) RecordJournalBacklog(ctx context.Context, tenantID uuid.UUID, count int64) {
	if bm == nil {
		return
	}
	bm.journalBacklog.Record(ctx, count, AttrTenantID.String(tenantID.String()))
}

// StartPeriodicCollection samples the journal backlog every interval
// (default 5 minutes) until Stop is called or ctx is done.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, tenants TenantProvider, interval time.Duration) {
	if bm == nil {
		return
	}
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go bm.runPeriodicCollection(ctx, tenants, interval)
	})
}

func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, tenants TenantProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	bm.collectBacklog(ctx, tenants)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			bm.collectBacklog(ctx, tenants)
		}
	}
}

func (bm *BusinessMetrics) collectBacklog(ctx context.Context, tenants TenantProvider) {
	if bm.backlogProvider == nil {
		return
	}
	ids, err := tenants.GetActiveTenantIDs(ctx)
	if err != nil {
		bm.logger.Error("Failed to get tenant IDs for metrics collection", zap.Error(err))
		return
	}
	for _, tenantID := range ids {
		count, err := bm.backlogProvider.CountUnposted(ctx, tenantID)
		if err != nil {
			bm.logger.Warn("Failed to count journal backlog",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
			continue
		}
		bm.RecordJournalBacklog(ctx, tenantID, count)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	if bm == nil {
		return
	}
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
