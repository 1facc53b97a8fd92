package event

import (
	"context"
	"sync"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/infrastructure/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OutboxProcessorConfig holds configuration for the outbox processor
type OutboxProcessorConfig struct {
	BatchSize    int
	PollInterval time.Duration
	// ProcessingTimeout is how long a claim may stay unresolved before
	// another processor takes it over
	ProcessingTimeout time.Duration
	CleanupEnabled   bool
	CleanupRetention time.Duration
	CleanupInterval  time.Duration
}

// DefaultOutboxProcessorConfig returns default configuration
func DefaultOutboxProcessorConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{
		BatchSize:         100,
		PollInterval:      time.Second,
		ProcessingTimeout: shared.DefaultProcessingTimeout,
		CleanupEnabled:   true,
		CleanupRetention: 7 * 24 * time.Hour,
		CleanupInterval:  time.Hour,
	}
}

// OutboxProcessor delivers outbox entries to the event bus in the background.
// Failed deliveries are retried with backoff until the entry is dead.
type OutboxProcessor struct {
	repo       shared.OutboxRepository
	eventBus   shared.EventPublisher
	serializer *EventSerializer
	config     OutboxProcessorConfig
	metrics    *metrics.OutboxMetrics
	logger     *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOutboxProcessor creates a new outbox processor
func NewOutboxProcessor(
	repo shared.OutboxRepository,
	eventBus shared.EventPublisher,
	serializer *EventSerializer,
	config OutboxProcessorConfig,
	m *metrics.OutboxMetrics,
	logger *zap.Logger,
) *OutboxProcessor {
	defaults := DefaultOutboxProcessorConfig()
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.ProcessingTimeout <= 0 {
		config.ProcessingTimeout = defaults.ProcessingTimeout
	}
	if config.CleanupRetention <= 0 {
		config.CleanupRetention = defaults.CleanupRetention
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = defaults.CleanupInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutboxProcessor{
		repo:       repo,
		eventBus:   eventBus,
		serializer: serializer,
		config:     config,
		metrics:    m,
		logger:     logger,
	}
}

// Start starts the background loops
func (p *OutboxProcessor) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.processLoop(ctx)

	if p.config.CleanupEnabled {
		p.wg.Add(1)
		go p.cleanupLoop(ctx)
	}

	p.logger.Info("outbox processor started",
		zap.Int("batch_size", p.config.BatchSize),
		zap.Duration("poll_interval", p.config.PollInterval),
	)
	return nil
}

// Stop gracefully stops the processor
func (p *OutboxProcessor) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("outbox processor stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *OutboxProcessor) processLoop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.ProcessOnce(ctx)
		}
	}
}

// ProcessOnce delivers one batch of pending entries and one batch of due
// retries. It returns the number of entries delivered successfully.
func (p *OutboxProcessor) ProcessOnce(ctx context.Context) int {
	start := time.Now()
	defer func() { p.metrics.ObserveBatch(time.Since(start)) }()

	sent := 0
	pending, err := p.repo.FindPending(ctx, p.config.BatchSize)
	if err != nil {
		p.logger.Error("failed to find pending entries", zap.Error(err))
		return sent
	}
	sent += p.processEntries(ctx, pending)

	now := time.Now()
	retryable, err := p.repo.FindRetryable(ctx, now, now.Add(-p.config.ProcessingTimeout), p.config.BatchSize)
	if err != nil {
		p.logger.Error("failed to find retryable entries", zap.Error(err))
		return sent
	}
	sent += p.processEntries(ctx, retryable)

	p.sampleBacklog(ctx)
	return sent
}

func (p *OutboxProcessor) processEntries(ctx context.Context, entries []*shared.OutboxEntry) int {
	if len(entries) == 0 {
		return 0
	}
	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}

	claimed, err := p.repo.MarkProcessing(ctx, ids, time.Now().Add(-p.config.ProcessingTimeout))
	if err != nil {
		p.logger.Error("failed to mark entries as processing", zap.Error(err))
		return 0
	}

	sent := 0
	for _, entry := range claimed {
		if entry.IsDead() {
			p.reportDead(entry)
			continue
		}
		p.metrics.AddClaimed(1)
		if p.processEntry(ctx, entry) {
			sent++
		}
	}
	return sent
}

func (p *OutboxProcessor) processEntry(ctx context.Context, entry *shared.OutboxEntry) bool {
	ctx, log := logger.WithEventID(ctx, p.logger, entry.EventID.String())
	ctx, log = logger.WithTenantID(ctx, log, entry.TenantID.String())

	event, err := p.serializer.Deserialize(entry.EventType, entry.Payload)
	if err == nil {
		err = p.eventBus.Publish(ctx, event)
	}
	if err != nil {
		p.fail(ctx, entry, err)
		return false
	}

	entry.MarkSent()
	if err := p.repo.Update(ctx, entry); err != nil {
		log.Error("failed to mark entry as sent", zap.Error(err))
		return false
	}
	p.metrics.ObserveDelivery(entry.EventType, metrics.OutboxResultSent)
	log.Debug("event delivered", zap.String("event_type", entry.EventType))
	return true
}

// fail expects ctx to carry the entry's logger from processEntry.
func (p *OutboxProcessor) fail(ctx context.Context, entry *shared.OutboxEntry, cause error) {
	entry.MarkFailed(cause.Error())
	log := logger.FromContext(ctx)

	if err := p.repo.Update(ctx, entry); err != nil {
		log.Error("failed to update entry", zap.Error(err))
	}
	if entry.IsDead() {
		p.reportDead(entry)
		return
	}
	log.Warn("event delivery failed",
		zap.String("event_type", entry.EventType),
		zap.Int("retry_count", entry.RetryCount),
		zap.Timep("next_retry_at", entry.NextRetryAt),
		zap.Error(cause),
	)
	p.metrics.ObserveDelivery(entry.EventType, metrics.OutboxResultFailed)
}

func (p *OutboxProcessor) reportDead(entry *shared.OutboxEntry) {
	p.logger.Error("event moved to dead letter queue",
		zap.String("event_id", entry.EventID.String()),
		zap.String("tenant_id", entry.TenantID.String()),
		zap.String("event_type", entry.EventType),
		zap.String("aggregate_type", entry.AggregateType),
		zap.String("aggregate_id", entry.AggregateID.String()),
		zap.Int("retry_count", entry.RetryCount),
		zap.String("last_error", entry.LastError),
	)
	p.metrics.ObserveDelivery(entry.EventType, metrics.OutboxResultDead)
}

// RequeueDead puts a dead entry back in the pending queue
func (p *OutboxProcessor) RequeueDead(ctx context.Context, id uuid.UUID) error {
	entry, err := p.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := entry.ResetForRetry(); err != nil {
		return shared.NewInvalidStateError("%s", err.Error())
	}
	if err := p.repo.Update(ctx, entry); err != nil {
		return err
	}
	p.logger.Info("dead event requeued",
		zap.String("event_id", entry.EventID.String()),
		zap.String("event_type", entry.EventType),
	)
	return nil
}

func (p *OutboxProcessor) sampleBacklog(ctx context.Context) {
	if p.metrics == nil {
		return
	}
	counts, err := p.repo.CountByStatus(ctx)
	if err != nil {
		p.logger.Warn("failed to count outbox entries", zap.Error(err))
		return
	}
	byStatus := make(map[string]int64, len(counts))
	for status, n := range counts {
		byStatus[string(status)] = n
	}
	p.metrics.SetBacklog(byStatus)
}

func (p *OutboxProcessor) cleanupLoop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Cleanup(ctx)
		}
	}
}

// Cleanup removes sent entries older than the retention period
func (p *OutboxProcessor) Cleanup(ctx context.Context) {
	cutoff := time.Now().Add(-p.config.CleanupRetention)
	deleted, err := p.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		p.logger.Error("failed to cleanup old entries", zap.Error(err))
		return
	}
	p.metrics.AddCleaned(deleted)
	if deleted > 0 {
		p.logger.Info("cleaned up old outbox entries",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
}
