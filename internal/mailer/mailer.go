// Package mailer turns queued mail messages into e-mails and sends them.
package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"path/filepath"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wneessen/go-mail"
)

var ErrUnknownType = errors.New("unsupported mail type")

type kind struct {
	file    string
	subject string
}

var kinds = map[string]kind{
	domain.MailTypeShiftAssignment: {file: "shift_assignment.html", subject: "Care Shift - new shift"},
	domain.MailTypeShiftRemoval:    {file: "shift_removal.html", subject: "Care Shift - shift removed"},
}

// Renderer holds the parsed templates of every supported mail type.
type Renderer struct {
	from      string
	templates map[string]*template.Template
}

func NewRenderer(dir, from string) (*Renderer, error) {
	r := &Renderer{from: from, templates: make(map[string]*template.Template, len(kinds))}
	for typ, k := range kinds {
		tmpl, err := template.ParseFiles(filepath.Join(dir, k.file))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", k.file, err)
		}
		r.templates[typ] = tmpl
	}
	return r, nil
}

func (r *Renderer) Build(m domain.MailMessage) (*mail.Msg, error) {
	k, ok := kinds[m.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, m.Type)
	}

	msg := mail.NewMsg()
	if err := msg.From(r.from); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(k.subject)

	data, err := templateData(m.Data)
	if err != nil {
		return nil, err
	}
	if err := msg.SetBodyHTMLTemplate(r.templates[m.Type], data); err != nil {
		return nil, fmt.Errorf("render body: %w", err)
	}
	return msg, nil
}

// templateData gives templates the JSON field names whether the message was
// built in process or decoded from the queue.
func templateData(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode mail data: %w", err)
	}
	data := map[string]any{}
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("mail data must be an object: %w", err)
	}
	return data, nil
}

type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type Worker struct {
	renderer *Renderer
	sender   Sender
	logger   *slog.Logger
}

func NewWorker(renderer *Renderer, sender Sender, logger *slog.Logger) *Worker {
	return &Worker{renderer: renderer, sender: sender, logger: logger}
}

// Handle processes one delivery. Messages that can never be sent are dropped,
// send failures are requeued.
func (w *Worker) Handle(ctx context.Context, d amqp.Delivery) {
	var m domain.MailMessage
	if err := json.Unmarshal(d.Body, &m); err != nil {
		w.logger.Error("failed to decode mail message", slog.String("error", err.Error()))
		_ = d.Nack(false, false)
		return
	}

	msg, err := w.renderer.Build(m)
	if err != nil {
		w.logger.Error("failed to build mail", slog.String("type", m.Type), slog.String("error", err.Error()))
		_ = d.Nack(false, false)
		return
	}

	if err := w.sender.DialAndSendWithContext(ctx, msg); err != nil {
		w.logger.Error("failed to send mail", slog.String("type", m.Type), slog.String("error", err.Error()))
		_ = d.Nack(false, true)
		return
	}

	w.logger.Info("mail sent", slog.String("type", m.Type))
	_ = d.Ack(false)
}

// Run consumes deliveries until ctx is done or the channel closes.
func (w *Worker) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			w.Handle(ctx, d)
		}
	}
}
