package port

import (
	"context"
	"errors"

	"github.com/rl1809/inheritance/internal/core/domain"
)

// ErrOptimisticLock is returned by Update when the stored ledger is not at
// the expected version.
var ErrOptimisticLock = errors.New("optimistic lock conflict")

type LedgerRepository interface {
	// Create persists a new ledger together with its deployment event
	Create(ctx context.Context, ledger domain.Ledger, event domain.Event) error

	// Get retrieves a ledger by ID, returns nil if it does not exist
	Get(ctx context.Context, id string) (*domain.Ledger, error)

	// Update stores ledger and appends event atomically. The stored ledger must
	// be at ledger.Version-1, otherwise ErrOptimisticLock is returned.
	Update(ctx context.Context, ledger domain.Ledger, event domain.Event) error

	// ListEvents returns the journal of a ledger ordered by sequence
	ListEvents(ctx context.Context, id string) ([]domain.Event, error)
}
