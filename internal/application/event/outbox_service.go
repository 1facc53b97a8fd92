// Package event exposes the transactional outbox to operators: dead
// entries can be inspected and requeued once their cause is fixed.
package event

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OutboxService inspects and requeues outbox entries
type OutboxService struct {
	repo   shared.OutboxRepository
	logger *zap.Logger
}

// NewOutboxService creates an OutboxService
func NewOutboxService(repo shared.OutboxRepository, logger *zap.Logger) *OutboxService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutboxService{repo: repo, logger: logger}
}

// OutboxEntryResponse is an outbox entry without its payload
type OutboxEntryResponse struct {
	ID            uuid.UUID  `json:"id"`
	TenantID      uuid.UUID  `json:"tenant_id"`
	EventID       uuid.UUID  `json:"event_id"`
	EventType     string     `json:"event_type"`
	AggregateID   uuid.UUID  `json:"aggregate_id"`
	AggregateType string     `json:"aggregate_type"`
	Status        string     `json:"status"`
	RetryCount    int        `json:"retry_count"`
	MaxRetries    int        `json:"max_retries"`
	LastError     string     `json:"last_error,omitempty"`
	NextRetryAt   *time.Time `json:"next_retry_at,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// OutboxStatsResponse counts entries per status
type OutboxStatsResponse struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Sent       int64 `json:"sent"`
	Failed     int64 `json:"failed"`
	Dead       int64 `json:"dead"`
	Total      int64 `json:"total"`
}

// ListDead pages through entries that exhausted their retries
func (s *OutboxService) ListDead(ctx context.Context, filter shared.Filter) (shared.Paginated[OutboxEntryResponse], error) {
	page := max(filter.Page, 1)
	entries, total, err := s.repo.FindDead(ctx, page, filter.Limit())
	if err != nil {
		return shared.Paginated[OutboxEntryResponse]{}, fmt.Errorf("find dead outbox entries: %w", err)
	}
	items := make([]OutboxEntryResponse, len(entries))
	for i, e := range entries {
		items[i] = toOutboxEntryResponse(e)
	}
	return shared.NewPaginated(items, total, page, filter.Limit()), nil
}

// Get returns one entry
func (s *OutboxService) Get(ctx context.Context, id uuid.UUID) (*OutboxEntryResponse, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toOutboxEntryResponse(entry)
	return &resp, nil
}

// Requeue puts a dead entry back to PENDING with a fresh retry budget.
// Journal requests are idempotent, so requeueing never double-posts.
func (s *OutboxService) Requeue(ctx context.Context, id uuid.UUID) (*OutboxEntryResponse, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := entry.ResetForRetry(); err != nil {
		return nil, shared.NewInvalidStateError("%s", err.Error()).WithEntity(id)
	}
	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("requeue outbox entry: %w", err)
	}

	s.logger.Info("dead outbox entry requeued",
		zap.String("outbox_id", id.String()),
		zap.String("event_type", entry.EventType),
		zap.String("tenant_id", entry.TenantID.String()),
	)
	resp := toOutboxEntryResponse(entry)
	return &resp, nil
}

// RequeueAll requeues every dead entry and returns how many were reset
func (s *OutboxService) RequeueAll(ctx context.Context) (int64, error) {
	const pageSize = 100
	var count int64
	for {
		// Requeued entries leave the dead set, so the first page always
		// holds what is left.
		entries, _, err := s.repo.FindDead(ctx, 1, pageSize)
		if err != nil {
			return count, fmt.Errorf("find dead outbox entries: %w", err)
		}
		if len(entries) == 0 {
			break
		}
		requeued := 0
		for _, entry := range entries {
			if err := entry.ResetForRetry(); err != nil {
				continue
			}
			if err := s.repo.Update(ctx, entry); err != nil {
				s.logger.Error("failed to requeue outbox entry",
					zap.String("outbox_id", entry.ID.String()),
					zap.Error(err),
				)
				continue
			}
			requeued++
		}
		count += int64(requeued)
		if requeued == 0 || len(entries) < pageSize {
			break
		}
	}

	s.logger.Info("dead outbox entries requeued", zap.Int64("count", count))
	return count, nil
}

// Stats counts entries per status
func (s *OutboxService) Stats(ctx context.Context) (*OutboxStatsResponse, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count outbox entries: %w", err)
	}
	var total int64
	for _, n := range counts {
		total += n
	}
	return &OutboxStatsResponse{
		Pending:    counts[shared.OutboxStatusPending],
		Processing: counts[shared.OutboxStatusProcessing],
		Sent:       counts[shared.OutboxStatusSent],
		Failed:     counts[shared.OutboxStatusFailed],
		Dead:       counts[shared.OutboxStatusDead],
		Total:      total,
	}, nil
}

func toOutboxEntryResponse(e *shared.OutboxEntry) OutboxEntryResponse {
	return OutboxEntryResponse{
		ID:            e.ID,
		TenantID:      e.TenantID,
		EventID:       e.EventID,
		EventType:     e.EventType,
		AggregateID:   e.AggregateID,
		AggregateType: e.AggregateType,
		Status:        string(e.Status),
		RetryCount:    e.RetryCount,
		MaxRetries:    e.MaxRetries,
		LastError:     e.LastError,
		NextRetryAt:   e.NextRetryAt,
		ProcessedAt:   e.ProcessedAt,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}
