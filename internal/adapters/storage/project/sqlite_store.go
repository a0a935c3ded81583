package project

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	domain "vitrine/internal/domain/project"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const projectColumns = `id, title, description, full_description, image, tech, category,
	repository, live_demo, images, features, challenges, results, created_at, updated_at`

// GetByID retrieves a Project by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	return scanProject(row)
}

// List retrieves all projects, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Save persists a Project to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, p domain.Project) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (`+projectColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title=excluded.title, description=excluded.description,
		   full_description=excluded.full_description, image=excluded.image,
		   tech=excluded.tech, category=excluded.category,
		   repository=excluded.repository, live_demo=excluded.live_demo,
		   images=excluded.images, features=excluded.features,
		   challenges=excluded.challenges, results=excluded.results,
		   updated_at=excluded.updated_at`,
		p.ID, p.Title, p.Description, p.FullDescription, p.Image,
		jsonList(p.Tech), p.Category, nullStr(p.Repository), nullStr(p.LiveDemo),
		jsonList(p.Images), jsonList(p.Features), jsonList(p.Challenges), jsonList(p.Results),
		p.CreatedAt.Format(timeLayout), p.UpdatedAt.Format(timeLayout))
	return err
}

// Delete removes a Project from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (domain.Project, error) {
	var p domain.Project
	var repository, liveDemo sql.NullString
	var tech, images, features, challenges, results string
	var createdAt, updatedAt string
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.FullDescription, &p.Image,
		&tech, &p.Category, &repository, &liveDemo,
		&images, &features, &challenges, &results, &createdAt, &updatedAt)
	if err != nil {
		return domain.Project{}, err
	}
	p.Tech = parseList(tech)
	p.Images = parseList(images)
	p.Features = parseList(features)
	p.Challenges = parseList(challenges)
	p.Results = parseList(results)
	p.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	p.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
	if repository.Valid {
		p.Repository = repository.String
	}
	if liveDemo.Valid {
		p.LiveDemo = liveDemo.String
	}
	return p, nil
}

// jsonList encodes a string slice as a JSON array column value.
func jsonList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func parseList(data string) []string {
	var items []string
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil
	}
	return items
}

func nullStr(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
