package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"vitrine/internal/adapters/email"
)

// fakeSender records send requests and can be told to fail.
type fakeSender struct {
	calls   int
	lastReq email.SendRequest
	fail    error
}

func (f *fakeSender) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	f.calls++
	f.lastReq = req
	if f.fail != nil {
		return email.SendResult{}, f.fail
	}
	return email.SendResult{MessageID: "re_123"}, nil
}

var validReq = Request{
	To:              "ana@x.com",
	Name:            "Ana",
	ResponseText:    "Vamos agendar uma call",
	OriginalMessage: "Preciso de um site",
}

// TestDispatch_Delivered tests a successful dispatch.
func TestDispatch_Delivered(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(sender, "Suporte <onboarding@resend.dev>", "contato@suaempresa.com")

	out := d.Dispatch(context.Background(), validReq)
	if !out.Delivered {
		t.Fatalf("expected delivery, got reason %q", out.Reason)
	}
	if out.MessageID != "re_123" {
		t.Errorf("message ID = %q, want re_123", out.MessageID)
	}
	if sender.calls != 1 {
		t.Errorf("expected exactly one send attempt, got %d", sender.calls)
	}
	if sender.lastReq.To != "ana@x.com" {
		t.Errorf("to = %q", sender.lastReq.To)
	}
	if sender.lastReq.Subject != "Resposta da sua mensagem - Empresa" {
		t.Errorf("subject = %q", sender.lastReq.Subject)
	}
}

// TestDispatch_TransportFailure tests that transport errors become a failed
// Delivery value rather than propagating.
func TestDispatch_TransportFailure(t *testing.T) {
	sender := &fakeSender{fail: errors.New("connection refused")}
	d := NewDispatcher(sender, "Suporte <onboarding@resend.dev>", "")

	out := d.Dispatch(context.Background(), validReq)
	if out.Delivered {
		t.Fatal("expected failed delivery")
	}
	if out.Reason != "connection refused" {
		t.Errorf("reason = %q", out.Reason)
	}
}

// TestDispatch_MissingFields tests rejection before any send attempt.
func TestDispatch_MissingFields(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(sender, "x", "")

	for _, req := range []Request{
		{Name: "Ana", ResponseText: "Oi"},
		{To: "ana@x.com", ResponseText: "Oi"},
		{To: "ana@x.com", Name: "Ana"},
	} {
		out := d.Dispatch(context.Background(), req)
		if out.Delivered {
			t.Errorf("expected rejection for %+v", req)
		}
	}
	if sender.calls != 0 {
		t.Errorf("expected zero send attempts, got %d", sender.calls)
	}
}

// TestDispatch_NoDeduplication tests that identical requests each dispatch.
func TestDispatch_NoDeduplication(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(sender, "x", "")

	d.Dispatch(context.Background(), validReq)
	d.Dispatch(context.Background(), validReq)
	if sender.calls != 2 {
		t.Errorf("expected two send attempts, got %d", sender.calls)
	}
}

// TestRenderBody_Template checks the fixed template pieces.
func TestRenderBody_Template(t *testing.T) {
	body := renderBody(Request{
		To:              "ana@x.com",
		Name:            "Ana <script>",
		ResponseText:    "**Vamos** agendar",
		OriginalMessage: "Preciso de um site",
	})

	for _, want := range []string{
		"Olá Ana &lt;script&gt;!",
		"Sua mensagem original:",
		"Preciso de um site",
		"Nossa resposta:",
		"<strong>Vamos</strong>",
		"Este e-mail foi enviado automaticamente pelo nosso sistema.",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}
