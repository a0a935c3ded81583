package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"vitrine/internal/application/orchestrators"
)

// handleAdminOutbox handles admin endpoints for the notification outbox.
// Routes: GET /api/admin/outbox (list entries),
// POST /api/admin/outbox/{id}/retry (manual replay),
// POST /api/admin/outbox/{id}/abandon.
func handleAdminOutbox(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case "GET":
		limitStr := r.URL.Query().Get("limit")
		limit := 50
		if limitStr != "" {
			if n, err := strconv.Atoi(limitStr); err == nil && n > 0 && n <= 100 {
				limit = n
			}
		}

		entries, err := stores.OutboxStore.List(ctx, limit)
		if err != nil {
			internalError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if entries == nil {
			w.Write([]byte("[]"))
			return
		}
		json.NewEncoder(w).Encode(entries)

	case "POST":
		// Extract entry ID from path: /api/admin/outbox/{id}/{action}
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 5 || parts[2] != "outbox" {
			http.Error(w, "invalid path", http.StatusBadRequest)
			return
		}
		entryID := parts[3]
		action := parts[4]

		processor := orchestrators.NewOutboxProcessor(stores.OutboxStore, notifier)

		switch action {
		case "retry":
			if err := processor.ProcessSingle(ctx, entryID); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "retry triggered"})

		case "abandon":
			if err := processor.AbandonEntry(ctx, entryID); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "abandoned"})

		default:
			http.Error(w, "unknown action", http.StatusBadRequest)
		}

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
