package message

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	domain "vitrine/internal/domain/message"
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

// List retrieves all messages newest-first with nested responses.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, phone, company, message, status, created_at, updated_at
		 FROM messages ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, storeErr("list", err)
	}
	defer rows.Close()

	var messages []domain.Message
	index := make(map[string]int)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, storeErr("list", err)
		}
		index[m.ID] = len(messages)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list", err)
	}

	respRows, err := s.db.QueryContext(ctx,
		`SELECT id, message_id, response_text, response_type, created_at
		 FROM message_responses ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return nil, storeErr("list responses", err)
	}
	defer respRows.Close()

	for respRows.Next() {
		var r domain.Response
		var createdAt string
		if err := respRows.Scan(&r.ID, &r.MessageID, &r.Text, (*string)(&r.Kind), &createdAt); err != nil {
			return nil, storeErr("list responses", err)
		}
		r.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		if i, ok := index[r.MessageID]; ok {
			messages[i].Responses = append(messages[i].Responses, r)
		}
	}
	if err := respRows.Err(); err != nil {
		return nil, storeErr("list responses", err)
	}

	return messages, nil
}

// Insert persists a draft as a new message.
// POST: returned message has a fresh ID, status new and empty responses
func (s *SQLiteStore) Insert(ctx context.Context, draft domain.Draft) (domain.Message, error) {
	now := time.Now().UTC()
	m := domain.Message{
		ID:        uuid.New().String(),
		Name:      draft.Name,
		Email:     draft.Email,
		Phone:     draft.Phone,
		Company:   draft.Company,
		Body:      draft.Body,
		Status:    domain.StatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, name, email, phone, company, message, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.Email, nullStr(m.Phone), nullStr(m.Company), m.Body,
		string(m.Status), m.CreatedAt.Format(timeLayout), m.UpdatedAt.Format(timeLayout))
	if err != nil {
		return domain.Message{}, storeErr("insert", err)
	}
	return m, nil
}

// UpdateStatus sets the status of a message and refreshes updated_at.
func (s *SQLiteStore) UpdateStatus(ctx context.Context, id string, status domain.Status) (domain.Message, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE messages SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), now.Format(timeLayout), id)
	if err != nil {
		return domain.Message{}, storeErr("update status", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Message{}, storeErr("update status", err)
	}
	if affected == 0 {
		return domain.Message{}, storeErr("update status", ErrNotFound)
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, phone, company, message, status, created_at, updated_at
		 FROM messages WHERE id = ?`, id)
	m, err := scanMessage(row)
	if err != nil {
		return domain.Message{}, storeErr("update status", err)
	}
	return m, nil
}

// InsertResponse records one response against an existing message.
func (s *SQLiteStore) InsertResponse(ctx context.Context, messageID, text string, kind domain.ResponseKind) (domain.Response, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Response{}, storeErr("insert response", domain.ErrEmptyReply)
	}

	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE id = ?`, messageID).Scan(&exists)
	if err != nil {
		return domain.Response{}, storeErr("insert response", err)
	}
	if exists == 0 {
		return domain.Response{}, storeErr("insert response", ErrNotFound)
	}

	r := domain.Response{
		ID:        uuid.New().String(),
		MessageID: messageID,
		Text:      text,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO message_responses (id, message_id, response_text, response_type, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.MessageID, r.Text, string(r.Kind), r.CreatedAt.Format(timeLayout))
	if err != nil {
		return domain.Response{}, storeErr("insert response", err)
	}
	return r, nil
}

// Delete removes a message; responses cascade via the schema.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return storeErr("delete", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storeErr("delete", err)
	}
	if affected == 0 {
		return storeErr("delete", ErrNotFound)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(row scanner) (domain.Message, error) {
	var m domain.Message
	var phone, company sql.NullString
	var status, createdAt, updatedAt string
	err := row.Scan(&m.ID, &m.Name, &m.Email, &phone, &company, &m.Body, &status, &createdAt, &updatedAt)
	if err != nil {
		return domain.Message{}, err
	}
	m.Status = domain.Status(status)
	m.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	m.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
	if phone.Valid {
		m.Phone = phone.String
	}
	if company.Valid {
		m.Company = company.String
	}
	return m, nil
}

func nullStr(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
