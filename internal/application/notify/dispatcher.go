package notify

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/yuin/goldmark"

	"vitrine/internal/adapters/email"
)

// Request carries everything needed to notify a message's sender of a reply.
// The field names follow the notification collaborator contract.
type Request struct {
	To              string `json:"to"`
	Name            string `json:"name"`
	ResponseText    string `json:"responseText"`
	OriginalMessage string `json:"originalMessage"`
}

// Delivery is the outcome of one dispatch attempt. It is a value, never an
// error: a notification outage must not fail the operation that triggered it.
type Delivery struct {
	Delivered bool
	MessageID string // provider ID when delivered
	Reason    string // failure reason when not delivered
}

const subject = "Resposta da sua mensagem - Empresa"

// Dispatcher formats and sends reply-notification emails. One call makes
// exactly one delivery attempt; there is no retry or deduplication here.
type Dispatcher struct {
	sender  email.Sender
	from    string
	replyTo string
}

// NewDispatcher creates a Dispatcher over the given transport.
func NewDispatcher(sender email.Sender, from, replyTo string) *Dispatcher {
	return &Dispatcher{sender: sender, from: from, replyTo: replyTo}
}

// Dispatch attempts to deliver the reply notification.
// POST: never panics or returns an error; transport failures come back as
// Delivery{Delivered: false}
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Delivery {
	if strings.TrimSpace(req.To) == "" || strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.ResponseText) == "" {
		slog.Warn("notify_rejected", "reason", "missing fields", "to", req.To)
		return Delivery{Reason: "missing required fields: to, name, or responseText"}
	}

	result, err := d.sender.Send(ctx, email.SendRequest{
		To:      req.To,
		From:    d.from,
		Subject: subject,
		HTML:    renderBody(req),
		ReplyTo: d.replyTo,
	})
	if err != nil {
		slog.Warn("notify_failed", "to", req.To, "error", err.Error())
		return Delivery{Reason: err.Error()}
	}

	slog.Info("notify_delivered", "to", req.To, "message_id", result.MessageID)
	return Delivery{Delivered: true, MessageID: result.MessageID}
}

// renderBody builds the fixed reply template: greeting, quoted original
// message, the reply (markdown rendered to HTML) and a static footer.
func renderBody(req Request) string {
	var sb strings.Builder

	sb.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">`)
	fmt.Fprintf(&sb, `<h2 style="color: #333; margin-bottom: 20px;">Olá %s!</h2>`, html.EscapeString(req.Name))
	sb.WriteString(`<p style="color: #666; margin-bottom: 20px;">Obrigado por entrar em contato conosco. Aqui está nossa resposta para sua mensagem:</p>`)

	sb.WriteString(`<div style="background-color: #f8f9fa; padding: 20px; border-radius: 8px; margin: 20px 0;">`)
	sb.WriteString(`<h3 style="color: #333; margin-bottom: 10px;">Sua mensagem original:</h3>`)
	fmt.Fprintf(&sb, `<p style="color: #666; font-style: italic;">&quot;%s&quot;</p>`, html.EscapeString(req.OriginalMessage))
	sb.WriteString(`</div>`)

	sb.WriteString(`<div style="background-color: #e8f5e8; padding: 20px; border-radius: 8px; margin: 20px 0; border-left: 4px solid #28a745;">`)
	sb.WriteString(`<h3 style="color: #333; margin-bottom: 10px;">Nossa resposta:</h3>`)
	sb.WriteString(renderMarkdown(req.ResponseText))
	sb.WriteString(`</div>`)

	sb.WriteString(`<p style="color: #666; margin-top: 30px;">Se você tiver alguma dúvida adicional, não hesite em nos contatar novamente.</p>`)
	sb.WriteString(`<hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">`)
	sb.WriteString(`<p style="color: #999; font-size: 14px; text-align: center;">Este e-mail foi enviado automaticamente pelo nosso sistema.<br>&copy; Empresa. Todos os direitos reservados.</p>`)
	sb.WriteString(`</div>`)

	return sb.String()
}

// renderMarkdown converts the operator's reply to HTML. Falls back to
// escaped plain text if conversion fails.
func renderMarkdown(text string) string {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(text), &buf); err != nil {
		return "<p>" + html.EscapeString(text) + "</p>"
	}
	return buf.String()
}
