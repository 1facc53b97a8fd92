// Package numbering assigns human-readable document numbers from a
// per-tenant counter. Numbers are never reused once handed out.
package numbering

import (
	"context"
	"fmt"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// Kind identifies a counter
type Kind string

const (
	KindQuote        Kind = "QUOTE"
	KindOrder        Kind = "ORDER"
	KindDeliveryNote Kind = "DELIVERY_NOTE"
	KindGRN          Kind = "GRN"
	KindJournalEntry Kind = "JOURNAL_ENTRY"
)

var prefixes = map[Kind]string{
	KindQuote:        "QT",
	KindOrder:        "ORD",
	KindDeliveryNote: "DN",
	KindGRN:          "GRN",
	KindJournalEntry: "JE",
}

// Prefix returns the number prefix of the kind, or "" when the kind has no counter
func (k Kind) Prefix() string {
	return prefixes[k]
}

// IsValid reports whether the kind has a counter
func (k Kind) IsValid() bool {
	_, ok := prefixes[k]
	return ok
}

// Format renders a counter value as PREFIX-0001. Values past 9999 widen.
func Format(prefix string, value int64) string {
	return fmt.Sprintf("%s-%04d", prefix, value)
}

// Sequence is the stored counter row of a (tenant, kind)
type Sequence struct {
	TenantID uuid.UUID
	Kind     Kind
	Value    int64
}

// SequenceRepository persists counters. Implementations must run inside the
// caller's transaction so a rollback also rolls back the increment.
type SequenceRepository interface {
	// Increment bumps the counter and returns the new value.
	// found is false when the counter row does not exist yet.
	Increment(ctx context.Context, tenantID uuid.UUID, kind Kind) (value int64, found bool, err error)
	// Seed creates the counter with a starting value; an existing row is left untouched
	Seed(ctx context.Context, tenantID uuid.UUID, kind Kind, value int64) error
}

// SeedSource counts the records that already carry numbers of a kind,
// soft-deleted ones included, so a fresh counter starts past them.
type SeedSource interface {
	CountNumbered(ctx context.Context, tenantID uuid.UUID, kind Kind) (int64, error)
}

// Generator hands out the next number of a kind
type Generator struct {
	sequences SequenceRepository
	seeds     SeedSource
}

// NewGenerator creates a Generator
func NewGenerator(sequences SequenceRepository, seeds SeedSource) *Generator {
	return &Generator{sequences: sequences, seeds: seeds}
}

// Next returns the next formatted number for the tenant and kind
func (g *Generator) Next(ctx context.Context, tenantID uuid.UUID, kind Kind) (string, error) {
	if !kind.IsValid() {
		return "", shared.NewValidationError("kind %s has no numbering sequence", kind)
	}

	value, found, err := g.sequences.Increment(ctx, tenantID, kind)
	if err != nil {
		return "", fmt.Errorf("increment sequence %s: %w", kind, err)
	}
	if !found {
		existing, err := g.seeds.CountNumbered(ctx, tenantID, kind)
		if err != nil {
			return "", fmt.Errorf("count existing %s: %w", kind, err)
		}
		if err := g.sequences.Seed(ctx, tenantID, kind, existing); err != nil {
			return "", fmt.Errorf("seed sequence %s: %w", kind, err)
		}
		value, found, err = g.sequences.Increment(ctx, tenantID, kind)
		if err != nil {
			return "", fmt.Errorf("increment sequence %s: %w", kind, err)
		}
		if !found {
			return "", fmt.Errorf("sequence %s missing after seeding", kind)
		}
	}

	return Format(kind.Prefix(), value), nil
}
