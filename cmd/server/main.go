package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	emailPkg "vitrine/internal/adapters/email"
	web "vitrine/internal/adapters/http"
	"vitrine/internal/adapters/storage"
	accountStorePkg "vitrine/internal/adapters/storage/account"
	messageStorePkg "vitrine/internal/adapters/storage/message"
	outboxStorePkg "vitrine/internal/adapters/storage/outbox"
	projectStorePkg "vitrine/internal/adapters/storage/project"
	"vitrine/internal/application/inbox"
	"vitrine/internal/application/notify"
	"vitrine/internal/application/orchestrators"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	// Initialize database with WAL mode, foreign keys, and busy timeout
	dbPath := envOrDefault("VITRINE_DB_PATH", "vitrine.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	// Health check
	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	log.Println("Database initialized successfully!")

	// Create store instances
	acctStore := accountStorePkg.NewSQLiteStore(db)
	msgStore := messageStorePkg.NewSQLiteStore(db)
	stores := &web.Stores{
		AccountStore: acctStore,
		ProjectStore: projectStorePkg.NewSQLiteStore(db),
		OutboxStore:  outboxStorePkg.NewSQLiteStore(db),
	}

	// Seed the admin account on first boot
	adminEmail := envOrDefault("VITRINE_ADMIN_EMAIL", "admin@empresa.com.br")
	adminPassword := envOrDefault("VITRINE_ADMIN_PASSWORD", "troque-esta-senha")
	seedDeps := orchestrators.SeedAdminDeps{
		AccountStore: acctStore,
		GenerateID:   func() string { return uuid.New().String() },
		Now:          time.Now,
	}
	if err := orchestrators.ExecuteSeedAdmin(context.Background(), seedDeps, adminEmail, adminPassword); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	// Configure email sender
	resendKey := os.Getenv("VITRINE_RESEND_KEY")
	emailFrom := envOrDefault("VITRINE_EMAIL_FROM", "Empresa <noreply@empresa.com.br>")
	emailReply := envOrDefault("VITRINE_REPLY_TO", "contato@empresa.com.br")
	var sender emailPkg.Sender
	if resendKey != "" {
		sender = emailPkg.NewResendSender(resendKey, emailFrom)
		log.Println("Email sender configured (Resend)")
	} else {
		sender = emailPkg.NewNoopSender()
		if os.Getenv("VITRINE_ENV") == "production" {
			log.Println("WARNING: VITRINE_RESEND_KEY is not set — email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set VITRINE_RESEND_KEY for real delivery)")
		}
	}
	dispatcher := notify.NewDispatcher(sender, emailFrom, emailReply)

	// Message lifecycle manager: load the mirror before serving
	manager := inbox.NewManager(msgStore, dispatcher)
	if err := manager.Refresh(context.Background()); err != nil {
		log.Fatalf("failed to load messages: %v", err)
	}
	slog.Info("inbox_loaded", "messages", len(manager.Snapshot()))

	// Background worker replays failed notifications
	outboxStopCh := make(chan struct{})
	outboxProcessor := orchestrators.NewOutboxProcessor(stores.OutboxStore, dispatcher)
	orchestrators.StartBackgroundWorker(outboxProcessor, 1*time.Minute, outboxStopCh)
	defer close(outboxStopCh)

	// Create HTTP handler with middleware
	mux := web.NewMux("static", stores, manager, dispatcher)

	// Start server
	addr := envOrDefault("VITRINE_ADDR", ":8080")
	log.Printf("Vitrine %s starting on %s (env=%s)", version, addr, envOrDefault("VITRINE_ENV", "development"))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
