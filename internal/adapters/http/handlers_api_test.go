package web

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vitrine/internal/adapters/http/middleware"
	messageStore "vitrine/internal/adapters/storage/message"
	"vitrine/internal/application/inbox"
	"vitrine/internal/application/notify"
	accountDomain "vitrine/internal/domain/account"
	messageDomain "vitrine/internal/domain/message"
	outboxDomain "vitrine/internal/domain/outbox"
	projectDomain "vitrine/internal/domain/project"
)

// --- Mock stores ---

type mockAccountStore struct {
	accounts map[string]accountDomain.Account
}

// GetByEmail implements the mock AccountStore for testing.
// PRE: valid parameters
// POST: returns expected result
func (m *mockAccountStore) GetByEmail(ctx context.Context, email string) (accountDomain.Account, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return accountDomain.Account{}, sql.ErrNoRows
}

// Save implements the mock AccountStore for testing.
// PRE: valid parameters
// POST: returns expected result
func (m *mockAccountStore) Save(ctx context.Context, a accountDomain.Account) error {
	m.accounts[a.ID] = a
	return nil
}

// Count implements the mock AccountStore for testing.
// PRE: valid parameters
// POST: returns expected result
func (m *mockAccountStore) Count(ctx context.Context) (int, error) {
	return len(m.accounts), nil
}

type mockProjectStore struct {
	projects map[string]projectDomain.Project
}

func (m *mockProjectStore) GetByID(ctx context.Context, id string) (projectDomain.Project, error) {
	if p, ok := m.projects[id]; ok {
		return p, nil
	}
	return projectDomain.Project{}, sql.ErrNoRows
}

func (m *mockProjectStore) List(ctx context.Context) ([]projectDomain.Project, error) {
	var list []projectDomain.Project
	for _, p := range m.projects {
		list = append(list, p)
	}
	return list, nil
}

func (m *mockProjectStore) Save(ctx context.Context, p projectDomain.Project) error {
	m.projects[p.ID] = p
	return nil
}

func (m *mockProjectStore) Delete(ctx context.Context, id string) error {
	delete(m.projects, id)
	return nil
}

type mockOutboxStore struct {
	entries map[string]outboxDomain.Entry
}

func (m *mockOutboxStore) GetByID(ctx context.Context, id string) (outboxDomain.Entry, error) {
	if e, ok := m.entries[id]; ok {
		return e, nil
	}
	return outboxDomain.Entry{}, sql.ErrNoRows
}

func (m *mockOutboxStore) Save(ctx context.Context, e outboxDomain.Entry) error {
	m.entries[e.ID] = e
	return nil
}

func (m *mockOutboxStore) ListPending(ctx context.Context, limit int) ([]outboxDomain.Entry, error) {
	var list []outboxDomain.Entry
	for _, e := range m.entries {
		if e.Status == outboxDomain.StatusPending || e.Status == outboxDomain.StatusRetrying {
			list = append(list, e)
		}
	}
	return list, nil
}

func (m *mockOutboxStore) List(ctx context.Context, limit int) ([]outboxDomain.Entry, error) {
	var list []outboxDomain.Entry
	for _, e := range m.entries {
		list = append(list, e)
	}
	return list, nil
}

func (m *mockOutboxStore) Delete(ctx context.Context, id string) error {
	delete(m.entries, id)
	return nil
}

// mockMessageStore is an in-memory stand-in for the message gateway.
type mockMessageStore struct {
	messages map[string]messageDomain.Message
	order    []string // insertion order, oldest first
	seq      int
}

func newMockMessageStore() *mockMessageStore {
	return &mockMessageStore{messages: make(map[string]messageDomain.Message)}
}

func (m *mockMessageStore) List(ctx context.Context) ([]messageDomain.Message, error) {
	var list []messageDomain.Message
	for i := len(m.order) - 1; i >= 0; i-- {
		list = append(list, m.messages[m.order[i]])
	}
	return list, nil
}

func (m *mockMessageStore) Insert(ctx context.Context, draft messageDomain.Draft) (messageDomain.Message, error) {
	m.seq++
	msg := messageDomain.Message{
		ID:        "msg-" + string(rune('0'+m.seq)),
		Name:      draft.Name,
		Email:     draft.Email,
		Phone:     draft.Phone,
		Company:   draft.Company,
		Body:      draft.Body,
		Status:    messageDomain.StatusNew,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	m.messages[msg.ID] = msg
	m.order = append(m.order, msg.ID)
	return msg, nil
}

func (m *mockMessageStore) UpdateStatus(ctx context.Context, id string, status messageDomain.Status) (messageDomain.Message, error) {
	msg, ok := m.messages[id]
	if !ok {
		return messageDomain.Message{}, &messageStore.StoreError{Op: "update status", Err: messageStore.ErrNotFound}
	}
	msg.Status = status
	msg.UpdatedAt = time.Now().UTC()
	m.messages[id] = msg
	return msg, nil
}

func (m *mockMessageStore) InsertResponse(ctx context.Context, messageID, text string, kind messageDomain.ResponseKind) (messageDomain.Response, error) {
	msg, ok := m.messages[messageID]
	if !ok {
		return messageDomain.Response{}, &messageStore.StoreError{Op: "insert response", Err: messageStore.ErrNotFound}
	}
	m.seq++
	resp := messageDomain.Response{
		ID:        "resp-" + string(rune('0'+m.seq)),
		MessageID: messageID,
		Text:      text,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
	msg.Responses = append(msg.Responses, resp)
	m.messages[messageID] = msg
	return resp, nil
}

func (m *mockMessageStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.messages[id]; !ok {
		return &messageStore.StoreError{Op: "delete message", Err: messageStore.ErrNotFound}
	}
	delete(m.messages, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// mockNotifier records dispatches and can simulate an outage.
type mockNotifier struct {
	calls int
	fail  bool
}

func (n *mockNotifier) Dispatch(ctx context.Context, req notify.Request) notify.Delivery {
	n.calls++
	if n.fail {
		return notify.Delivery{Reason: "transport down"}
	}
	return notify.Delivery{Delivered: true, MessageID: "re_test"}
}

// --- Test helpers ---

// setupTest wires the package globals with fresh mocks.
func setupTest() (*mockMessageStore, *mockNotifier) {
	msgStore := newMockMessageStore()
	n := &mockNotifier{}
	stores = &Stores{
		AccountStore: &mockAccountStore{accounts: make(map[string]accountDomain.Account)},
		ProjectStore: &mockProjectStore{projects: make(map[string]projectDomain.Project)},
		OutboxStore:  &mockOutboxStore{entries: make(map[string]outboxDomain.Entry)},
	}
	messages = inbox.NewManager(msgStore, n)
	notifier = n
	sessions = middleware.NewSessionStore()
	return msgStore, n
}

// authRequest returns a request with the given session injected into context.
func authRequest(method, url string, body string, sess middleware.Session) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, url, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	ctx := middleware.ContextWithSession(req.Context(), sess)
	return req.WithContext(ctx)
}

var adminSession = middleware.Session{
	AccountID: "admin-001",
	Email:     "admin@test.com",
	CreatedAt: time.Now(),
}

// --- Tests: /api/contact ---

// TestHandleContact_Valid tests the corresponding handler.
func TestHandleContact_Valid(t *testing.T) {
	setupTest()
	body := `{"name":"Ana","email":"ana@example.com","phone":"11 99999-0000","company":"Acme","message":"Olá!"}`
	req := httptest.NewRequest("POST", "/api/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handleContact(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("got %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var msg messageDomain.Message
	json.NewDecoder(rec.Body).Decode(&msg)
	if msg.Status != messageDomain.StatusNew {
		t.Errorf("status = %q, want new", msg.Status)
	}
	if msg.ID == "" {
		t.Error("expected a store-assigned ID")
	}
}

// TestHandleContact_MissingFields tests the corresponding handler.
func TestHandleContact_MissingFields(t *testing.T) {
	msgStore, _ := setupTest()
	body := `{"name":"","email":"ana@example.com","message":"Olá!"}`
	req := httptest.NewRequest("POST", "/api/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handleContact(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if len(msgStore.messages) != 0 {
		t.Error("invalid draft must not reach the store")
	}
}

// --- Tests: /api/admin/messages ---

// TestHandleAdminMessages_Snapshot tests the corresponding handler.
func TestHandleAdminMessages_Snapshot(t *testing.T) {
	setupTest()
	if _, err := messages.Create(context.Background(), messageDomain.Draft{
		Name: "Ana", Email: "ana@example.com", Body: "Oi",
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	req := authRequest("GET", "/api/admin/messages", "", adminSession)
	rec := httptest.NewRecorder()
	handleAdminMessages(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want %d", rec.Code, http.StatusOK)
	}
	var list []messageDomain.Message
	json.NewDecoder(rec.Body).Decode(&list)
	if len(list) != 1 {
		t.Errorf("got %d messages, want 1", len(list))
	}
}

// TestHandleAdminMessages_EmptyIsArray tests the corresponding handler.
func TestHandleAdminMessages_EmptyIsArray(t *testing.T) {
	setupTest()
	req := authRequest("GET", "/api/admin/messages", "", adminSession)
	rec := httptest.NewRecorder()
	handleAdminMessages(rec, req)

	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("empty snapshot should encode as [], got %q", rec.Body.String())
	}
}

// TestHandleAdminMessageAction_Respond tests the corresponding handler.
func TestHandleAdminMessageAction_Respond(t *testing.T) {
	_, n := setupTest()
	msg, err := messages.Create(context.Background(), messageDomain.Draft{
		Name: "Ana", Email: "ana@example.com", Body: "Oi",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	req := authRequest("POST", "/api/admin/messages/"+msg.ID+"/respond",
		`{"text":"Obrigado pelo contato!","kind":"custom"}`, adminSession)
	rec := httptest.NewRecorder()
	handleAdminMessageAction(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if n.calls != 1 {
		t.Errorf("notifier calls = %d, want 1", n.calls)
	}
	var out struct {
		Message  messageDomain.Message  `json:"message"`
		Delivery map[string]any         `json:"delivery"`
		Response messageDomain.Response `json:"response"`
	}
	json.NewDecoder(rec.Body).Decode(&out)
	if out.Message.Status != messageDomain.StatusResponded {
		t.Errorf("status = %q, want responded", out.Message.Status)
	}
	if out.Delivery["delivered"] != true {
		t.Errorf("delivery.delivered = %v, want true", out.Delivery["delivered"])
	}
}

// TestHandleAdminMessageAction_RespondFailureEnqueues tests that a failed
// notification lands in the outbox while the request still succeeds.
func TestHandleAdminMessageAction_RespondFailureEnqueues(t *testing.T) {
	_, n := setupTest()
	n.fail = true
	msg, err := messages.Create(context.Background(), messageDomain.Draft{
		Name: "Ana", Email: "ana@example.com", Body: "Oi",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	req := authRequest("POST", "/api/admin/messages/"+msg.ID+"/respond",
		`{"text":"Obrigado!","kind":"custom"}`, adminSession)
	rec := httptest.NewRecorder()
	handleAdminMessageAction(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	outbox := stores.OutboxStore.(*mockOutboxStore)
	if len(outbox.entries) != 1 {
		t.Fatalf("got %d outbox entries, want 1", len(outbox.entries))
	}
	for _, e := range outbox.entries {
		if e.MessageID != msg.ID {
			t.Errorf("outbox entry message id = %q, want %q", e.MessageID, msg.ID)
		}
	}
}

// TestHandleAdminMessageAction_RespondUnknownID tests the corresponding handler.
func TestHandleAdminMessageAction_RespondUnknownID(t *testing.T) {
	setupTest()
	req := authRequest("POST", "/api/admin/messages/nope/respond",
		`{"text":"Oi","kind":"custom"}`, adminSession)
	rec := httptest.NewRecorder()
	handleAdminMessageAction(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

// TestHandleAdminMessageAction_Archive tests the corresponding handler.
func TestHandleAdminMessageAction_Archive(t *testing.T) {
	setupTest()
	msg, err := messages.Create(context.Background(), messageDomain.Draft{
		Name: "Ana", Email: "ana@example.com", Body: "Oi",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	req := authRequest("POST", "/api/admin/messages/"+msg.ID+"/archive", "", adminSession)
	rec := httptest.NewRecorder()
	handleAdminMessageAction(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var out messageDomain.Message
	json.NewDecoder(rec.Body).Decode(&out)
	if out.Status != messageDomain.StatusArchived {
		t.Errorf("status = %q, want archived", out.Status)
	}
}

// TestHandleAdminMessageAction_Delete tests the corresponding handler.
func TestHandleAdminMessageAction_Delete(t *testing.T) {
	msgStore, _ := setupTest()
	msg, err := messages.Create(context.Background(), messageDomain.Draft{
		Name: "Ana", Email: "ana@example.com", Body: "Oi",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	req := authRequest("DELETE", "/api/admin/messages/"+msg.ID, "", adminSession)
	rec := httptest.NewRecorder()
	handleAdminMessageAction(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("got %d, want %d", rec.Code, http.StatusNoContent)
	}
	if len(msgStore.messages) != 0 {
		t.Error("message should be gone from the store")
	}
}

// TestHandleQuickReplies tests the corresponding handler.
func TestHandleQuickReplies(t *testing.T) {
	setupTest()
	req := authRequest("GET", "/api/admin/quick-replies", "", adminSession)
	rec := httptest.NewRecorder()
	handleQuickReplies(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want %d", rec.Code, http.StatusOK)
	}
	var replies []string
	json.NewDecoder(rec.Body).Decode(&replies)
	if len(replies) != len(messageDomain.QuickReplies) {
		t.Errorf("got %d quick replies, want %d", len(replies), len(messageDomain.QuickReplies))
	}
}

// --- Tests: login ---

// TestHandleLogin_Success tests the corresponding handler.
func TestHandleLogin_Success(t *testing.T) {
	setupTest()
	a := accountDomain.Account{ID: "acc-1", Email: "admin@test.com", CreatedAt: time.Now()}
	if err := a.SetPassword("correct-horse-battery"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	stores.AccountStore.Save(context.Background(), a)

	req := httptest.NewRequest("POST", "/api/login",
		strings.NewReader(`{"email":"admin@test.com","password":"correct-horse-battery"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handleLogin(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	cookies := rec.Result().Cookies()
	found := false
	for _, c := range cookies {
		if c.Name == middleware.SessionCookieName && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("expected a session cookie")
	}
}

// TestHandleLogin_WrongPassword tests the corresponding handler.
func TestHandleLogin_WrongPassword(t *testing.T) {
	setupTest()
	a := accountDomain.Account{ID: "acc-1", Email: "admin@test.com", CreatedAt: time.Now()}
	if err := a.SetPassword("correct-horse-battery"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	stores.AccountStore.Save(context.Background(), a)

	req := httptest.NewRequest("POST", "/api/login",
		strings.NewReader(`{"email":"admin@test.com","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handleLogin(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

// --- Tests: projects ---

// TestHandleProjects_List tests the corresponding handler.
func TestHandleProjects_List(t *testing.T) {
	setupTest()
	stores.ProjectStore.Save(context.Background(), projectDomain.Project{
		ID: "p1", Title: "Vitrine", Description: "Site", Category: "web", CreatedAt: time.Now(),
	})

	req := httptest.NewRequest("GET", "/api/projects", nil)
	rec := httptest.NewRecorder()
	handleProjects(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want %d", rec.Code, http.StatusOK)
	}
	var list []projectDomain.Project
	json.NewDecoder(rec.Body).Decode(&list)
	if len(list) != 1 {
		t.Errorf("got %d projects, want 1", len(list))
	}
}

// TestHandleProjectDetail_NotFound tests the corresponding handler.
func TestHandleProjectDetail_NotFound(t *testing.T) {
	setupTest()
	req := httptest.NewRequest("GET", "/api/projects/nope", nil)
	rec := httptest.NewRecorder()
	handleProjectDetail(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

// TestHandleAdminProjects_Create tests the corresponding handler.
func TestHandleAdminProjects_Create(t *testing.T) {
	setupTest()
	body := `{"title":"Vitrine","description":"Site institucional","category":"web","tech":["go","sqlite"]}`
	req := authRequest("POST", "/api/admin/projects", body, adminSession)
	rec := httptest.NewRecorder()
	handleAdminProjects(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("got %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var p projectDomain.Project
	json.NewDecoder(rec.Body).Decode(&p)
	if p.ID == "" {
		t.Error("expected a generated project ID")
	}
}

// --- Tests: outbox admin ---

// TestHandleAdminOutbox_RetryDelivers tests the corresponding handler.
func TestHandleAdminOutbox_RetryDelivers(t *testing.T) {
	_, n := setupTest()
	entry := outboxDomain.Entry{
		ID:         "e1",
		ActionType: outboxDomain.ActionTypeReplyEmail,
		MessageID:  "msg-1",
		Payload:    `{"to":"ana@example.com","name":"Ana","responseText":"Oi","originalMessage":"Olá"}`,
		Status:     outboxDomain.StatusPending, MaxAttempts: 5, CreatedAt: time.Now(),
	}
	stores.OutboxStore.Save(context.Background(), entry)

	req := authRequest("POST", "/api/admin/outbox/e1/retry", "", adminSession)
	rec := httptest.NewRecorder()
	handleAdminOutbox(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if n.calls != 1 {
		t.Errorf("notifier calls = %d, want 1", n.calls)
	}
	e, _ := stores.OutboxStore.GetByID(context.Background(), "e1")
	if e.Status != outboxDomain.StatusDone {
		t.Errorf("status = %q, want done", e.Status)
	}
}

// TestHandleAdminOutbox_List tests the corresponding handler.
func TestHandleAdminOutbox_List(t *testing.T) {
	setupTest()
	req := authRequest("GET", "/api/admin/outbox", "", adminSession)
	rec := httptest.NewRecorder()
	handleAdminOutbox(rec, req)

	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("empty outbox should encode as [], got %q", rec.Body.String())
	}
}
