package message

import (
	"context"

	domain "vitrine/internal/domain/message"
)

// Store is the gateway to the durable message tables. Implementations
// normalize every transport or query failure into a *StoreError.
type Store interface {
	// List retrieves all messages newest-first, each carrying its responses
	// in insertion order.
	List(ctx context.Context) ([]domain.Message, error)

	// Insert persists a draft and returns the stored message with its
	// assigned identifier and timestamps. Status is always "new".
	// PRE: draft has been validated by the caller
	Insert(ctx context.Context, draft domain.Draft) (domain.Message, error)

	// UpdateStatus sets the status of an existing message and refreshes its
	// update timestamp. The returned message does not carry responses.
	// POST: fails with a not-found *StoreError if id does not exist
	UpdateStatus(ctx context.Context, id string, status domain.Status) (domain.Message, error)

	// InsertResponse records one immutable response against a message.
	// POST: fails with *StoreError if the parent is missing or text is empty
	InsertResponse(ctx context.Context, messageID, text string, kind domain.ResponseKind) (domain.Response, error)

	// Delete removes a message; its responses cascade at the store level.
	// POST: fails with a not-found *StoreError if id does not exist
	Delete(ctx context.Context, id string) error
}
