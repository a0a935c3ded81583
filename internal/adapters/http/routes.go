package web

import (
	"net/http"

	"vitrine/internal/adapters/http/middleware"
)

// registerRoutes wires all API endpoints onto the mux.
// Public routes are open; /api/admin/ routes require a session.
func registerRoutes(mux *http.ServeMux) {
	// Public
	mux.HandleFunc("/api/contact", handleContact)
	mux.HandleFunc("/api/projects", handleProjects)
	mux.HandleFunc("/api/projects/", handleProjectDetail)

	// Auth
	mux.HandleFunc("/api/login", handleLogin)
	mux.HandleFunc("/api/logout", handleLogout)

	// Admin
	admin := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireAuth(h)
	}
	mux.Handle("/api/admin/messages", admin(handleAdminMessages))
	mux.Handle("/api/admin/messages/refresh", admin(handleAdminMessagesRefresh))
	mux.Handle("/api/admin/messages/", admin(handleAdminMessageAction))
	mux.Handle("/api/admin/quick-replies", admin(handleQuickReplies))
	mux.Handle("/api/admin/projects", admin(handleAdminProjects))
	mux.Handle("/api/admin/projects/", admin(handleAdminProjectDetail))
	mux.Handle("/api/admin/outbox", admin(handleAdminOutbox))
	mux.Handle("/api/admin/outbox/", admin(handleAdminOutbox))
}
