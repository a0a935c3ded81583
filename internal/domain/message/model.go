package message

import (
	"errors"
	"strings"
	"time"
)

// Status is the closed set of lifecycle states for an inbound message.
type Status string

const (
	StatusNew       Status = "new"
	StatusResponded Status = "responded"
	StatusArchived  Status = "archived"
)

// Valid reports whether s is a member of the status taxonomy.
// INVARIANT: every switch over Status handles all three values
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusResponded, StatusArchived:
		return true
	}
	return false
}

// CanArchive reports whether a message in status s may be archived.
// Archived is terminal; it is reachable from both other states.
func (s Status) CanArchive() bool {
	switch s {
	case StatusNew, StatusResponded:
		return true
	case StatusArchived:
		return false
	}
	return false
}

// ResponseKind distinguishes free-typed replies from canned presets.
type ResponseKind string

const (
	KindCustom ResponseKind = "custom"
	KindQuick  ResponseKind = "quick"
)

// Valid reports whether k is a known response kind.
func (k ResponseKind) Valid() bool {
	return k == KindCustom || k == KindQuick
}

// Domain errors
var (
	ErrEmptyName     = errors.New("sender name cannot be empty")
	ErrEmptyEmail    = errors.New("sender email cannot be empty")
	ErrEmptyBody     = errors.New("message body cannot be empty")
	ErrEmptyReply    = errors.New("response text cannot be empty")
	ErrInvalidKind   = errors.New("response type must be custom or quick")
	ErrNotArchivable = errors.New("message is already archived")
)

// Message represents one inbound contact submission from a site visitor.
type Message struct {
	ID        string
	Name      string
	Email     string
	Phone     string // optional
	Company   string // optional
	Body      string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
	Responses []Response
}

// Response represents one outbound reply recorded against a Message.
// Responses are immutable once created; they are only removed when the
// parent message is deleted.
type Response struct {
	ID        string
	MessageID string
	Text      string
	Kind      ResponseKind
	CreatedAt time.Time
}

// Draft carries caller-supplied, not-yet-persisted message fields.
type Draft struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Body    string
}

// Validate checks that the Draft can be persisted.
// PRE: Draft is populated by the caller
// POST: Returns nil if valid, a domain error otherwise
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(d.Email) == "" {
		return ErrEmptyEmail
	}
	if strings.TrimSpace(d.Body) == "" {
		return ErrEmptyBody
	}
	return nil
}

// QuickReplies are the canned reply presets offered in the admin reply form.
var QuickReplies = []string{
	"Obrigado pelo seu interesse! Entraremos em contato em breve.",
	"Agendamos uma reunião para discutir seu projeto em detalhes.",
	"Enviamos uma proposta detalhada para seu e-mail.",
	"Seu projeto foi analisado e temos algumas sugestões interessantes.",
	"Ficamos honrados com seu interesse. Vamos elaborar um orçamento personalizado.",
}
