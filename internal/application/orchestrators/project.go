package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	projectStore "vitrine/internal/adapters/storage/project"
	domain "vitrine/internal/domain/project"
)

// --- Save Project ---

// SaveProjectInput carries input for creating or updating a portfolio entry.
type SaveProjectInput struct {
	ProjectID       string // empty for new, set for updating
	Title           string
	Description     string
	FullDescription string
	Image           string
	Tech            []string
	Category        string
	Repository      string
	LiveDemo        string
	Images          []string
	Features        []string
	Challenges      []string
	Results         []string
}

// SaveProjectDeps holds dependencies for SaveProject.
type SaveProjectDeps struct {
	ProjectStore projectStore.Store
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteSaveProject creates or updates a portfolio project.
// PRE: Title, Description, Category are non-empty
// POST: Project persisted; CreatedAt preserved on update
func ExecuteSaveProject(ctx context.Context, input SaveProjectInput, deps SaveProjectDeps) (domain.Project, error) {
	now := deps.Now()
	p := domain.Project{
		ID:              input.ProjectID,
		Title:           input.Title,
		Description:     input.Description,
		FullDescription: input.FullDescription,
		Image:           input.Image,
		Tech:            input.Tech,
		Category:        input.Category,
		Repository:      input.Repository,
		LiveDemo:        input.LiveDemo,
		Images:          input.Images,
		Features:        input.Features,
		Challenges:      input.Challenges,
		Results:         input.Results,
		UpdatedAt:       now,
	}

	if input.ProjectID == "" {
		p.ID = deps.GenerateID()
		p.CreatedAt = now
	} else {
		existing, err := deps.ProjectStore.GetByID(ctx, input.ProjectID)
		if err != nil {
			return domain.Project{}, err
		}
		p.CreatedAt = existing.CreatedAt
	}

	if err := p.Validate(); err != nil {
		return domain.Project{}, err
	}

	if err := deps.ProjectStore.Save(ctx, p); err != nil {
		return domain.Project{}, err
	}

	slog.Info("project_event", "event", "project_saved", "project_id", p.ID, "title", p.Title)
	return p, nil
}

// --- Delete Project ---

// DeleteProjectDeps holds dependencies for DeleteProject.
type DeleteProjectDeps struct {
	ProjectStore projectStore.Store
}

// ExecuteDeleteProject removes a portfolio project.
// PRE: projectID is non-empty and exists
// POST: Project removed
func ExecuteDeleteProject(ctx context.Context, projectID string, deps DeleteProjectDeps) error {
	if projectID == "" {
		return errors.New("project ID is required")
	}
	if _, err := deps.ProjectStore.GetByID(ctx, projectID); err != nil {
		return err
	}
	if err := deps.ProjectStore.Delete(ctx, projectID); err != nil {
		return err
	}
	slog.Info("project_event", "event", "project_deleted", "project_id", projectID)
	return nil
}
