package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"vitrine/internal/adapters/http/middleware"
	messageStore "vitrine/internal/adapters/storage/message"
	"vitrine/internal/application/inbox"
	"vitrine/internal/application/notify"
	"vitrine/internal/application/orchestrators"
	messageDomain "vitrine/internal/domain/message"
)

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeInboxError maps the message-lifecycle error taxonomy onto HTTP statuses.
// Unknown errors (including store failures) become 500s with a generic body.
func writeInboxError(w http.ResponseWriter, err error) {
	var vErr *inbox.ValidationError
	var nfErr *inbox.NotFoundError
	var pErr *inbox.PartialFailure
	switch {
	case errors.As(err, &vErr):
		http.Error(w, vErr.Error(), http.StatusBadRequest)
	case errors.As(err, &nfErr):
		http.Error(w, nfErr.Error(), http.StatusNotFound)
	case errors.As(err, &pErr):
		// Stored state and the mirror disagree until the next refresh.
		http.Error(w, pErr.Error(), http.StatusConflict)
	case errors.Is(err, messageStore.ErrNotFound):
		http.Error(w, "message not found", http.StatusNotFound)
	default:
		internalError(w, err)
	}
}

// handleContact handles POST /api/contact — the public contact form.
func handleContact(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var input struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Phone   string `json:"phone"`
		Company string `json:"company"`
		Message string `json:"message"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	draft := messageDomain.Draft{
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		Company: input.Company,
		Body:    input.Message,
	}
	msg, err := messages.Create(r.Context(), draft)
	if err != nil {
		writeInboxError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// handleLogin handles POST /api/login.
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    input.Email,
		Password: input.Password,
	}, orchestrators.LoginDeps{
		AccountStore: stores.AccountStore,
	})
	if err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, orchestrators.ErrAccountLocked) {
			status = http.StatusForbidden
		}
		http.Error(w, err.Error(), status)
		return
	}

	token, err := sessions.Create(result.AccountID, result.Email)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]string{"email": result.Email})
}

// handleLogout handles POST /api/logout.
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err == nil {
		sessions.Delete(cookie.Value)
	}
	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleAdminMessages handles GET /api/admin/messages: the mirror snapshot,
// newest first, responses nested.
func handleAdminMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	snapshot := messages.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	if len(snapshot) == 0 {
		w.Write([]byte("[]"))
		return
	}
	json.NewEncoder(w).Encode(snapshot)
}

// handleAdminMessagesRefresh handles POST /api/admin/messages/refresh: re-read
// the full list from the store and swap the mirror.
func handleAdminMessagesRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err := messages.Refresh(r.Context()); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages.Snapshot())
}

// handleAdminMessageAction routes per-message operations:
// POST /api/admin/messages/{id}/respond, POST /api/admin/messages/{id}/archive,
// DELETE /api/admin/messages/{id}.
func handleAdminMessageAction(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	// parts: ["api", "admin", "messages", id, action?]
	if len(parts) < 4 || parts[3] == "" {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}
	messageID := parts[3]

	if r.Method == "DELETE" && len(parts) == 4 {
		if err := messages.Delete(r.Context(), messageID); err != nil {
			writeInboxError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if r.Method != "POST" || len(parts) != 5 {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	switch parts[4] {
	case "respond":
		handleMessageRespond(w, r, messageID)
	case "archive":
		msg, err := messages.Archive(r.Context(), messageID)
		if err != nil {
			writeInboxError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, msg)
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
	}
}

// handleMessageRespond records a reply and reports the notification outcome.
// A failed notification does not fail the request; the delivery is queued for
// replay and its state reported in the response body.
func handleMessageRespond(w http.ResponseWriter, r *http.Request, messageID string) {
	ctx := r.Context()

	var input struct {
		Text string `json:"text"`
		Kind string `json:"kind"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	result, err := messages.Respond(ctx, messageID, input.Text, messageDomain.ResponseKind(input.Kind))
	if err != nil {
		writeInboxError(w, err)
		return
	}

	if !result.Delivery.Delivered {
		req := notify.Request{
			To:              result.Message.Email,
			Name:            result.Message.Name,
			ResponseText:    result.Response.Text,
			OriginalMessage: result.Message.Body,
		}
		if err := orchestrators.EnqueueFailedNotification(ctx, stores.OutboxStore, messageID, req, result.Delivery.Reason); err != nil {
			slog.Error("outbox_enqueue_failed", "message_id", messageID, "error", err.Error())
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":  result.Message,
		"response": result.Response,
		"delivery": map[string]any{
			"delivered": result.Delivery.Delivered,
			"messageId": result.Delivery.MessageID,
			"reason":    result.Delivery.Reason,
		},
	})
}

// handleQuickReplies handles GET /api/admin/quick-replies.
func handleQuickReplies(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, messageDomain.QuickReplies)
}
