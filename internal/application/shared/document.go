package shared

import (
	"context"
	"fmt"
	"strings"
	"time"

	apptax "github.com/erp/ledger/internal/application/tax"
	"github.com/erp/ledger/internal/domain/identity"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/trade"
	"github.com/google/uuid"
)

// CreateDocumentCommand carries everything needed to create a document
type CreateDocumentCommand struct {
	TenantID uuid.UUID
	Kind     trade.DocumentKind
	PartyID  uuid.UUID
	Date     time.Time
	// InvoiceNumber is required for sales and purchases, ignored otherwise
	InvoiceNumber    string
	TaxID            *uuid.UUID
	SourceDocumentID *uuid.UUID
	Notes            string
	Lines            []trade.LineInput
	CreatedBy        *uuid.UUID
}

// UpdateDocumentCommand replaces a document's editable fields and its line set
type UpdateDocumentCommand struct {
	TenantID   uuid.UUID
	Kind       trade.DocumentKind
	DocumentID uuid.UUID
	PartyID    *uuid.UUID
	Date       *time.Time
	TaxID      *uuid.UUID
	Notes      *string
	Lines      []trade.LineInput
}

// DocumentPreparer validates input and builds documents ready to persist.
// It never writes; callers persist inside their own transaction.
type DocumentPreparer struct {
	taxes *apptax.Engine
}

// NewDocumentPreparer creates a DocumentPreparer
func NewDocumentPreparer(taxes *apptax.Engine) *DocumentPreparer {
	return &DocumentPreparer{taxes: taxes}
}

// LoadTenant returns the tenant or NOT_FOUND
func LoadTenant(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID) (*identity.Tenant, error) {
	tenant, err := repos.Tenants().FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

// Prepare validates the lines, snapshots tax and assigns the document number
func (p *DocumentPreparer) Prepare(ctx context.Context, repos TransactionalRepositories, cmd CreateDocumentCommand) (*trade.Document, *identity.Tenant, error) {
	tenant, err := LoadTenant(ctx, repos, cmd.TenantID)
	if err != nil {
		return nil, nil, err
	}

	doc, err := trade.NewDocument(tenant.ID, cmd.Kind, cmd.PartyID, cmd.Date)
	if err != nil {
		return nil, nil, err
	}
	doc.Notes = strings.TrimSpace(cmd.Notes)
	if cmd.CreatedBy != nil {
		doc.SetCreatedBy(*cmd.CreatedBy)
	}

	if cmd.SourceDocumentID != nil {
		source, err := repos.Documents().FindByIDForTenant(ctx, tenant.ID, *cmd.SourceDocumentID, false)
		if err != nil {
			return nil, nil, err
		}
		if err := doc.LinkSource(source); err != nil {
			return nil, nil, err
		}
	}

	if err := p.applyLines(ctx, repos, tenant, doc, cmd.TaxID, cmd.Lines); err != nil {
		return nil, nil, err
	}

	number, err := p.nextNumber(ctx, repos, tenant.ID, cmd.Kind, cmd.InvoiceNumber)
	if err != nil {
		return nil, nil, err
	}
	if err := doc.AssignNumber(number); err != nil {
		return nil, nil, err
	}

	return doc, tenant, nil
}

// Revise applies an update command to a loaded document
func (p *DocumentPreparer) Revise(ctx context.Context, repos TransactionalRepositories, tenant *identity.Tenant, doc *trade.Document, cmd UpdateDocumentCommand) error {
	if cmd.PartyID != nil {
		if *cmd.PartyID == uuid.Nil {
			return shared.NewValidationError("document needs a party")
		}
		doc.PartyID = *cmd.PartyID
	}
	if cmd.Date != nil && !cmd.Date.IsZero() {
		doc.Date = *cmd.Date
	}
	if cmd.Notes != nil {
		doc.Notes = strings.TrimSpace(*cmd.Notes)
	}
	if err := p.applyLines(ctx, repos, tenant, doc, cmd.TaxID, cmd.Lines); err != nil {
		return err
	}
	doc.MarkUpdated()
	return nil
}

func (p *DocumentPreparer) applyLines(ctx context.Context, repos TransactionalRepositories, tenant *identity.Tenant, doc *trade.Document, taxRef *uuid.UUID, lines []trade.LineInput) error {
	level := tenant.Settings.TaxLevel
	if doc.Kind.IsPriced() {
		taxID, rate, err := p.taxes.DocumentRate(ctx, repos.Taxes(), tenant, taxRef)
		if err != nil {
			return err
		}
		doc.SetDocumentTax(taxID, rate)
	} else if taxRef != nil {
		return shared.NewValidationError("%s carries no tax", doc.Kind)
	}

	set, err := trade.NewItemSetValidator(repos.Items(), repos.Taxes()).Validate(ctx, tenant.ID, doc.Kind, level, lines)
	if err != nil {
		return err
	}
	doc.ReplaceLines(set.Lines, level)
	return nil
}

func (p *DocumentPreparer) nextNumber(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, kind trade.DocumentKind, invoice string) (string, error) {
	if nk, ok := kind.NumberingKind(); ok {
		return Numbers(repos).Next(ctx, tenantID, nk)
	}

	invoice = strings.TrimSpace(invoice)
	if invoice == "" {
		return "", shared.NewValidationError("%s needs an invoice number", strings.ToLower(string(kind)))
	}
	exists, err := repos.Documents().ExistsByNumber(ctx, tenantID, kind, invoice)
	if err != nil {
		return "", fmt.Errorf("check invoice number: %w", err)
	}
	if exists {
		return "", shared.NewValidationError("invoice number %s is already used", invoice)
	}
	return invoice, nil
}

// LoadForUpdate locks a live document of the expected kind
func LoadForUpdate(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, kind trade.DocumentKind, id uuid.UUID) (*trade.Document, error) {
	doc, err := repos.Documents().FindByIDForUpdate(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if doc.Kind != kind {
		return nil, shared.NewNotFoundError(strings.ToLower(string(kind)), id)
	}
	return doc, nil
}
