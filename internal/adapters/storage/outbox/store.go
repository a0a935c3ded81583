package outbox

import (
	"context"

	domain "vitrine/internal/domain/outbox"
)

// Store defines the interface for outbox entry persistence.
type Store interface {
	// GetByID retrieves an outbox entry by its ID.
	GetByID(ctx context.Context, id string) (domain.Entry, error)

	// Save persists an outbox entry (insert or update).
	Save(ctx context.Context, e domain.Entry) error

	// ListPending returns entries awaiting replay (pending or retrying),
	// oldest first, up to limit.
	ListPending(ctx context.Context, limit int) ([]domain.Entry, error)

	// List returns the most recent entries regardless of status, for the
	// admin outbox view.
	List(ctx context.Context, limit int) ([]domain.Entry, error)

	// Delete removes a terminal outbox entry.
	Delete(ctx context.Context, id string) error
}
