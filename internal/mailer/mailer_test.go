package mailer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/carehome-dev/care-shift/backend/internal/mailer"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

const templateDir = "../../templates"

type acknowledger struct {
	acked    bool
	nacked   bool
	requeued bool
}

func (a *acknowledger) Ack(uint64, bool) error { a.acked = true; return nil }

func (a *acknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked = true
	a.requeued = requeue
	return nil
}

func (a *acknowledger) Reject(_ uint64, requeue bool) error {
	return a.Nack(0, false, requeue)
}

type sender struct {
	err  error
	sent []*mail.Msg
}

func (s *sender) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, messages...)
	return nil
}

func delivery(t *testing.T, ack *acknowledger, m domain.MailMessage) amqp.Delivery {
	t.Helper()

	body, err := json.Marshal(m)
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: ack, Body: body}
}

func assignment() domain.MailMessage {
	return domain.MailMessage{
		Type: domain.MailTypeShiftAssignment,
		To:   "ana@example.com",
		Data: domain.ShiftAssignmentMailData{
			FullName:     "Ana Souza",
			ShiftDate:    "2025-03-10",
			TemplateName: "T-MANHA",
			StartTime:    "06:00",
			EndTime:      "14:00",
		},
	}
}

func newWorker(t *testing.T, s mailer.Sender) *mailer.Worker {
	t.Helper()

	renderer, err := mailer.NewRenderer(templateDir, "escala@example.com")
	require.NoError(t, err)
	return mailer.NewWorker(renderer, s, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRendererBuildsAssignmentMail(t *testing.T) {
	renderer, err := mailer.NewRenderer(templateDir, "escala@example.com")
	require.NoError(t, err)

	msg, err := renderer.Build(assignment())
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Subject: Care Shift - new shift")
	assert.Contains(t, out, "ana@example.com")
	assert.Contains(t, out, "Ana Souza")
	assert.Contains(t, out, "T-MANHA")
}

func TestRendererRejectsUnknownType(t *testing.T) {
	renderer, err := mailer.NewRenderer(templateDir, "escala@example.com")
	require.NoError(t, err)

	_, err = renderer.Build(domain.MailMessage{Type: "welcome", To: "ana@example.com"})
	assert.ErrorIs(t, err, mailer.ErrUnknownType)
}

func TestNewRendererNeedsEveryTemplate(t *testing.T) {
	_, err := mailer.NewRenderer(t.TempDir(), "escala@example.com")
	assert.Error(t, err)
}

func TestWorkerAcksSentMail(t *testing.T) {
	s := &sender{}
	ack := &acknowledger{}

	newWorker(t, s).Handle(context.Background(), delivery(t, ack, assignment()))

	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)
	assert.Len(t, s.sent, 1)
}

func TestWorkerRequeuesOnSendFailure(t *testing.T) {
	s := &sender{err: errors.New("smtp down")}
	ack := &acknowledger{}

	newWorker(t, s).Handle(context.Background(), delivery(t, ack, assignment()))

	assert.True(t, ack.nacked)
	assert.True(t, ack.requeued)
}

func TestWorkerDropsUndeliverableMessages(t *testing.T) {
	s := &sender{}

	// unknown type
	ack := &acknowledger{}
	newWorker(t, s).Handle(context.Background(), delivery(t, ack, domain.MailMessage{Type: "welcome", To: "ana@example.com"}))
	assert.True(t, ack.nacked)
	assert.False(t, ack.requeued)

	// malformed body
	ack = &acknowledger{}
	newWorker(t, s).Handle(context.Background(), amqp.Delivery{Acknowledger: ack, Body: []byte("{")})
	assert.True(t, ack.nacked)
	assert.False(t, ack.requeued)

	assert.Empty(t, s.sent)
}

func TestWorkerRunStopsWhenChannelCloses(t *testing.T) {
	s := &sender{}
	ack := &acknowledger{}

	deliveries := make(chan amqp.Delivery, 1)
	deliveries <- delivery(t, ack, assignment())
	close(deliveries)

	newWorker(t, s).Run(context.Background(), deliveries)

	assert.True(t, ack.acked)
	assert.Len(t, s.sent, 1)
}
