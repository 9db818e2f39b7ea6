package port

import (
	"context"

	"github.com/rl1809/inheritance/internal/core/domain"
)

type EventPublisher interface {
	// Publish delivers a committed ledger event to subscribers
	Publish(ctx context.Context, event domain.Event) error
}
