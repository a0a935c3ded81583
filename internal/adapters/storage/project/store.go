package project

import (
	"context"

	domain "vitrine/internal/domain/project"
)

// Store persists portfolio Project state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Project, error)
	List(ctx context.Context) ([]domain.Project, error)
	Save(ctx context.Context, p domain.Project) error
	Delete(ctx context.Context, id string) error
}
