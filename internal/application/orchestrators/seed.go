package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	accountStore "vitrine/internal/adapters/storage/account"
	domain "vitrine/internal/domain/account"
)

// SeedAdminDeps holds dependencies for the admin seed.
type SeedAdminDeps struct {
	AccountStore accountStore.Store
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteSeedAdmin creates the admin account on first boot. Idempotent: if
// any account exists, nothing happens.
// PRE: email and password are non-empty
// POST: Exactly one admin account exists
func ExecuteSeedAdmin(ctx context.Context, deps SeedAdminDeps, email, password string) error {
	count, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return fmt.Errorf("count accounts: %w", err)
	}
	if count > 0 {
		return nil
	}

	a := domain.Account{
		ID:        deps.GenerateID(),
		Email:     email,
		CreatedAt: deps.Now(),
	}
	if err := a.SetPassword(password); err != nil {
		return fmt.Errorf("set admin password: %w", err)
	}
	if err := deps.AccountStore.Save(ctx, a); err != nil {
		return fmt.Errorf("save admin account: %w", err)
	}

	slog.Info("auth_event", "event", "admin_seeded", "email", email)
	return nil
}
