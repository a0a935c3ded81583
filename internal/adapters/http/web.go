package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"vitrine/internal/adapters/http/middleware"
	accountStore "vitrine/internal/adapters/storage/account"
	outboxStore "vitrine/internal/adapters/storage/outbox"
	projectStore "vitrine/internal/adapters/storage/project"
	"vitrine/internal/application/inbox"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore accountStore.Store
	ProjectStore projectStore.Store
	OutboxStore  outboxStore.Store
}

// loadCSRFKey reads the CSRF secret from VITRINE_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("VITRINE_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("VITRINE_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("VITRINE_ENV") == "production" {
		log.Fatal("VITRINE_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set VITRINE_CSRF_KEY for production.")
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// Global inbox manager (set by NewMux). Single writer to the message mirror.
var messages *inbox.Manager

// Global notifier for outbox replays (set by NewMux)
var notifier inbox.Notifier

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// NewMux wires HTTP handlers for the app.
func NewMux(staticDir string, s *Stores, mgr *inbox.Manager, n inbox.Notifier) http.Handler {
	stores = s
	messages = mgr
	notifier = n
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = os.Getenv("VITRINE_ENV") == "production"

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	registerRoutes(mux)

	// CSRF key: 32-byte hex-encoded secret from env var
	csrfKey := loadCSRFKey()

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(),
	)
}
