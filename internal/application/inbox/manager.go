package inbox

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	messageStore "vitrine/internal/adapters/storage/message"
	"vitrine/internal/application/notify"
	domain "vitrine/internal/domain/message"
)

// Notifier is the notification collaborator invoked after a successful
// respond. It reports an outcome value and never fails the caller.
type Notifier interface {
	Dispatch(ctx context.Context, req notify.Request) notify.Delivery
}

// RespondResult carries the outcome of a Respond operation. Delivery is
// informational: a failed notification does not make the operation fail.
type RespondResult struct {
	Message  domain.Message
	Response domain.Response
	Delivery notify.Delivery
}

// Manager owns the in-memory mirror of inbound messages and is the only
// writer to it. Every mutation goes through the store first; the mirror is
// updated locally after the store confirms, never from a background poll.
//
// The mutex protects the mirror's memory. It does not serialize overlapping
// operations against the same message; callers are expected to hold back
// re-invocation while a call for the same entity is pending.
type Manager struct {
	store    messageStore.Store
	notifier Notifier

	mu     sync.RWMutex
	mirror []domain.Message
}

// NewManager creates a Manager with an empty mirror. Call Refresh to load.
func NewManager(store messageStore.Store, notifier Notifier) *Manager {
	return &Manager{store: store, notifier: notifier}
}

// Refresh reloads the mirror from the store, replacing it atomically.
// POST: on error the previous mirror is kept unchanged
func (m *Manager) Refresh(ctx context.Context) error {
	messages, err := m.store.List(ctx)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.mirror = messages
	m.mu.Unlock()
	slog.Info("inbox_event", "event", "mirror_refreshed", "count", len(messages))
	return nil
}

// Snapshot returns a deep copy of the mirror, newest message first.
// Callers never receive references into the mirror itself.
func (m *Manager) Snapshot() []domain.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Message, len(m.mirror))
	for i, msg := range m.mirror {
		out[i] = copyMessage(msg)
	}
	return out
}

// Create validates and persists a visitor's contact submission, then
// prepends it to the mirror.
// POST: on any error the mirror is unchanged and no partial write exists
func (m *Manager) Create(ctx context.Context, draft domain.Draft) (domain.Message, error) {
	if err := draft.Validate(); err != nil {
		return domain.Message{}, &ValidationError{Err: err}
	}

	created, err := m.store.Insert(ctx, draft)
	if err != nil {
		return domain.Message{}, err
	}

	m.mu.Lock()
	m.mirror = append([]domain.Message{copyMessage(created)}, m.mirror...)
	m.mu.Unlock()

	slog.Info("inbox_event", "event", "message_created", "message_id", created.ID, "email", created.Email)
	return created, nil
}

// Respond records a reply against a message, marks it responded and makes a
// best-effort notification attempt.
//
// The two store writes are independent fallible steps: if the response
// insert fails nothing happened; if the status update fails afterwards the
// response is durably persisted, the mirror is NOT updated (its status
// would contradict the reply) and a *PartialFailure is returned — recover
// with Refresh, do not blindly retry.
func (m *Manager) Respond(ctx context.Context, messageID, text string, kind domain.ResponseKind) (RespondResult, error) {
	if strings.TrimSpace(text) == "" {
		return RespondResult{}, &ValidationError{Err: domain.ErrEmptyReply}
	}
	if kind == "" {
		kind = domain.KindCustom
	}
	if !kind.Valid() {
		return RespondResult{}, &ValidationError{Err: domain.ErrInvalidKind}
	}

	target, ok := m.lookup(messageID)
	if !ok {
		return RespondResult{}, &NotFoundError{MessageID: messageID}
	}

	resp, err := m.store.InsertResponse(ctx, messageID, text, kind)
	if err != nil {
		return RespondResult{}, err
	}

	updated, err := m.store.UpdateStatus(ctx, messageID, domain.StatusResponded)
	if err != nil {
		slog.Error("inbox_event", "event", "respond_partial_failure",
			"message_id", messageID, "response_id", resp.ID, "error", err.Error())
		return RespondResult{}, &PartialFailure{MessageID: messageID, ResponseID: resp.ID, Err: err}
	}

	m.mu.Lock()
	for i := range m.mirror {
		if m.mirror[i].ID == messageID {
			m.mirror[i].Status = updated.Status
			m.mirror[i].UpdatedAt = updated.UpdatedAt
			m.mirror[i].Responses = append(m.mirror[i].Responses, resp)
			break
		}
	}
	m.mu.Unlock()

	delivery := m.notifier.Dispatch(ctx, notify.Request{
		To:              target.Email,
		Name:            target.Name,
		ResponseText:    text,
		OriginalMessage: target.Body,
	})

	slog.Info("inbox_event", "event", "message_responded",
		"message_id", messageID, "response_id", resp.ID, "kind", string(kind), "delivered", delivery.Delivered)

	result, _ := m.lookup(messageID)
	return RespondResult{Message: result, Response: resp, Delivery: delivery}, nil
}

// Archive moves a message into the terminal archived state.
// POST: on any error the mirror is unchanged
func (m *Manager) Archive(ctx context.Context, messageID string) (domain.Message, error) {
	target, ok := m.lookup(messageID)
	if !ok {
		return domain.Message{}, &NotFoundError{MessageID: messageID}
	}
	if !target.Status.CanArchive() {
		return domain.Message{}, &ValidationError{Err: domain.ErrNotArchivable}
	}

	updated, err := m.store.UpdateStatus(ctx, messageID, domain.StatusArchived)
	if err != nil {
		return domain.Message{}, err
	}

	m.mu.Lock()
	for i := range m.mirror {
		if m.mirror[i].ID == messageID {
			m.mirror[i].Status = updated.Status
			m.mirror[i].UpdatedAt = updated.UpdatedAt
			break
		}
	}
	m.mu.Unlock()

	slog.Info("inbox_event", "event", "message_archived", "message_id", messageID)
	result, _ := m.lookup(messageID)
	return result, nil
}

// Delete removes a message and, by store cascade, its responses.
// POST: on store failure the mirror is unchanged
func (m *Manager) Delete(ctx context.Context, messageID string) error {
	if err := m.store.Delete(ctx, messageID); err != nil {
		return err
	}

	m.mu.Lock()
	for i := range m.mirror {
		if m.mirror[i].ID == messageID {
			m.mirror = append(m.mirror[:i], m.mirror[i+1:]...)
			break
		}
	}
	m.mu.Unlock()

	slog.Info("inbox_event", "event", "message_deleted", "message_id", messageID)
	return nil
}

// lookup returns a deep copy of the mirrored message with the given id.
func (m *Manager) lookup(messageID string) (domain.Message, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, msg := range m.mirror {
		if msg.ID == messageID {
			return copyMessage(msg), true
		}
	}
	return domain.Message{}, false
}

func copyMessage(msg domain.Message) domain.Message {
	c := msg
	if msg.Responses != nil {
		c.Responses = append([]domain.Response(nil), msg.Responses...)
	}
	return c
}
