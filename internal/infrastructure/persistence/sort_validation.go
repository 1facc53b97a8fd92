package persistence

import (
	"strings"

	"github.com/erp/ledger/internal/domain/shared"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// DocumentSortFields contains allowed sort fields for trade documents
var DocumentSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"date":       true,
	"number":     true,
	"kind":       true,
	"total":      true,
}

// JournalEntrySortFields contains allowed sort fields for journal entries
var JournalEntrySortFields = map[string]bool{
	"created_at":   true,
	"entry_date":   true,
	"posting_date": true,
	"entry_number": true,
}

// orderClause builds an ORDER BY clause from a filter. created_at is always
// appended as a tiebreaker so paging is stable.
func orderClause(filter shared.Filter, allowed map[string]bool, defaultField string) string {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	dir := ValidateSortOrder(filter.OrderDir)
	if field == "created_at" {
		return field + " " + dir
	}
	return field + " " + dir + ", created_at " + dir
}
