package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	itemID := uuid.New()
	detailed := ErrInsufficientStock.WithEntity(itemID)

	assert.True(t, errors.Is(detailed, ErrInsufficientStock))
	assert.False(t, errors.Is(detailed, ErrNotFound))

	wrapped := fmt.Errorf("apply delivery note: %w", detailed)
	assert.True(t, errors.Is(wrapped, ErrInsufficientStock))

	var domainErr *DomainError
	assert.True(t, errors.As(wrapped, &domainErr))
	assert.Equal(t, itemID.String(), domainErr.EntityID)
}

func TestDomainError_Error(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, "Item not found ("+id.String()+")", NewNotFoundError("Item", id).Error())
	assert.Equal(t, "quantity must be positive", NewValidationError("quantity must be %s", "positive").Error())
}

func TestWithEntity_DoesNotMutateSentinel(t *testing.T) {
	_ = ErrUnbalanced.WithEntity(uuid.New())
	assert.Empty(t, ErrUnbalanced.EntityID)
}

func TestFilter(t *testing.T) {
	f := Filter{Page: 3, PageSize: 10}
	assert.Equal(t, 20, f.Offset())
	assert.Equal(t, 10, f.Limit())

	assert.Equal(t, 100, Filter{PageSize: 1000}.Limit())
	assert.Equal(t, 0, Filter{}.Offset())

	page := NewPaginated([]int{1, 2}, 21, 1, 10)
	assert.Equal(t, 3, page.TotalPages)
}
