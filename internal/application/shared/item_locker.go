package shared

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ItemLocker serialises stock writers per (tenant, item). Lock acquires
// every key in ascending item order; release frees them all.
type ItemLocker interface {
	Lock(ctx context.Context, tenantID uuid.UUID, itemIDs []uuid.UUID) (release func(), err error)
}

// StockLockKey is the key guarding one item's stock
func StockLockKey(tenantID, itemID uuid.UUID) string {
	return fmt.Sprintf("stock:%s:%s", tenantID, itemID)
}

// HeldLocks collects lock releases taken inside a transaction so they can
// be freed once the transaction has committed or rolled back.
type HeldLocks struct {
	releases []func()
}

// Hold remembers a release func
func (h *HeldLocks) Hold(release func()) {
	if release != nil {
		h.releases = append(h.releases, release)
	}
}

// Release frees every held lock in reverse acquisition order
func (h *HeldLocks) Release() {
	for i := len(h.releases) - 1; i >= 0; i-- {
		h.releases[i]()
	}
	h.releases = nil
}
