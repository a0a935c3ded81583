package project

import (
	"errors"
	"strings"
	"time"
)

// Domain errors
var (
	ErrEmptyTitle       = errors.New("project title cannot be empty")
	ErrEmptyDescription = errors.New("project description cannot be empty")
	ErrEmptyCategory    = errors.New("project category cannot be empty")
)

// Project is one entry of the public portfolio catalog.
type Project struct {
	ID              string
	Title           string
	Description     string
	FullDescription string
	Image           string
	Tech            []string
	Category        string
	Repository      string // optional
	LiveDemo        string // optional
	Images          []string
	Features        []string
	Challenges      []string
	Results         []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Validate checks if the Project has valid data.
// PRE: Project struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(p.Description) == "" {
		return ErrEmptyDescription
	}
	if strings.TrimSpace(p.Category) == "" {
		return ErrEmptyCategory
	}
	if p.CreatedAt.IsZero() {
		return errors.New("created_at must be set")
	}
	return nil
}
