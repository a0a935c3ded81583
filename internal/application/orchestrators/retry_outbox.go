package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	outboxStore "vitrine/internal/adapters/storage/outbox"
	"vitrine/internal/application/notify"
	domain "vitrine/internal/domain/outbox"
)

// Notifier re-attempts a reply notification during outbox replay.
type Notifier interface {
	Dispatch(ctx context.Context, req notify.Request) notify.Delivery
}

// EnqueueFailedNotification records a failed reply email for later replay.
// The dispatcher itself never retries; only deliveries it already reported
// as failed end up here.
// PRE: req is the dispatch request that failed; reason is non-empty
// POST: A pending outbox entry exists for the reply
func EnqueueFailedNotification(ctx context.Context, store outboxStore.Store, messageID string, req notify.Request, reason string) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	entry := domain.Entry{
		ID:           uuid.New().String(),
		ActionType:   domain.ActionTypeReplyEmail,
		MessageID:    messageID,
		Payload:      string(payload),
		Status:       domain.StatusPending,
		MaxAttempts:  5,
		CreatedAt:    time.Now().UTC(),
		ErrorMessage: reason,
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	if err := store.Save(ctx, entry); err != nil {
		return fmt.Errorf("save outbox entry: %w", err)
	}
	slog.Info("outbox_enqueued", "entry_id", entry.ID, "message_id", messageID, "reason", reason)
	return nil
}

// OutboxProcessor replays failed reply notifications with backoff.
type OutboxProcessor struct {
	store     outboxStore.Store
	notifier  Notifier
	baseDelay time.Duration
	maxDelay  time.Duration
	batchSize int
}

// NewOutboxProcessor creates a new outbox processor.
func NewOutboxProcessor(store outboxStore.Store, notifier Notifier) *OutboxProcessor {
	return &OutboxProcessor{
		store:     store,
		notifier:  notifier,
		baseDelay: 30 * time.Second,
		maxDelay:  1 * time.Hour,
		batchSize: 10,
	}
}

// ProcessPending replays pending outbox entries that are due.
// PRE: Context is valid
// POST: Due entries are attempted once each; failures stay queued until the
// attempt budget runs out
func (p *OutboxProcessor) ProcessPending(ctx context.Context) error {
	entries, err := p.store.ListPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("list pending outbox entries: %w", err)
	}

	for _, entry := range entries {
		if err := p.processEntry(ctx, entry); err != nil {
			slog.Error("outbox_process_failed", "entry_id", entry.ID, "error", err.Error())
		}
	}

	return nil
}

// processEntry replays a single outbox entry if its backoff window elapsed.
func (p *OutboxProcessor) processEntry(ctx context.Context, entry domain.Entry) error {
	if !entry.LastAttemptedAt.IsZero() {
		delay := entry.NextRetryDelay(p.baseDelay, p.maxDelay)
		if time.Since(entry.LastAttemptedAt) < delay {
			return nil // not due yet
		}
	}
	return p.attempt(ctx, entry)
}

// ProcessSingle replays one entry immediately (admin retry).
// PRE: entryID is non-empty
// POST: Entry is attempted once, status updated
func (p *OutboxProcessor) ProcessSingle(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}
	if entry.IsTerminal() {
		return fmt.Errorf("entry %s is in terminal state and cannot be retried", entryID)
	}
	return p.attempt(ctx, entry)
}

// StartBackgroundWorker runs ProcessPending on a ticker until stopCh closes.
func StartBackgroundWorker(p *OutboxProcessor, interval time.Duration, stopCh <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := p.ProcessPending(context.Background()); err != nil {
					slog.Error("outbox_worker_failed", "error", err.Error())
				}
			case <-stopCh:
				return
			}
		}
	}()
}

// AbandonEntry marks an entry as abandoned so it is never replayed again.
// PRE: entryID is non-empty, entry is not terminal
// POST: Entry status is abandoned
func (p *OutboxProcessor) AbandonEntry(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}
	if entry.IsTerminal() {
		return fmt.Errorf("entry %s is already in terminal state", entryID)
	}
	entry.MarkAbandoned()
	if err := p.store.Save(ctx, entry); err != nil {
		return fmt.Errorf("save outbox entry: %w", err)
	}
	slog.Info("outbox_abandoned", "entry_id", entryID)
	return nil
}

func (p *OutboxProcessor) attempt(ctx context.Context, entry domain.Entry) error {
	if entry.ActionType != domain.ActionTypeReplyEmail {
		entry.MarkFailed(fmt.Errorf("unknown action type: %s", entry.ActionType))
		return p.store.Save(ctx, entry)
	}

	var req notify.Request
	if err := json.Unmarshal([]byte(entry.Payload), &req); err != nil {
		entry.MarkFailed(fmt.Errorf("corrupt payload: %w", err))
		return p.store.Save(ctx, entry)
	}

	entry.MarkAttempt()
	delivery := p.notifier.Dispatch(ctx, req)
	if delivery.Delivered {
		entry.MarkSuccess(delivery.MessageID)
		slog.Info("outbox_replay_delivered", "entry_id", entry.ID, "message_id", entry.MessageID, "provider_id", delivery.MessageID)
	} else {
		entry.MarkFailed(errors.New(delivery.Reason))
		slog.Warn("outbox_replay_failed", "entry_id", entry.ID, "attempt", entry.Attempts, "reason", delivery.Reason)
	}

	return p.store.Save(ctx, entry)
}
