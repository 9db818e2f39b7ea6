package port

import (
	"context"

	"github.com/rl1809/inheritance/internal/core/domain"
)

type CacheRepository interface {
	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// ReleaseIdempotency removes a key so that a failed request can be retried
	ReleaseIdempotency(ctx context.Context, key string) error

	// GetLedger returns the cached snapshot, nil on miss
	GetLedger(ctx context.Context, id string) (*domain.Ledger, error)

	// SetLedger caches a snapshot unless a newer version is already cached
	SetLedger(ctx context.Context, ledger domain.Ledger) error
}
