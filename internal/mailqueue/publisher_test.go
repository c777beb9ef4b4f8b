package mailqueue_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/carehome-dev/care-shift/backend/internal/mailqueue"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	keys     []string
	messages []amqp.Publishing
	err      error
}

func (c *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.keys = append(c.keys, key)
	c.messages = append(c.messages, msg)
	return nil
}

func shiftOn(date domain.Date) *domain.Shift {
	return &domain.Shift{
		Date: date,
		Template: &domain.ShiftTemplate{
			Name:      "T-MANHA",
			StartTime: "06:00:00",
			EndTime:   "14:00:00",
		},
	}
}

func TestPublisher_ShiftAssigned(t *testing.T) {
	ch := &fakeChannel{}
	p := mailqueue.NewPublisher(ch, "email_queue", time.Second)
	worker := &domain.Worker{FullName: "Ana Silva", Email: "ana@example.com"}

	err := p.ShiftAssigned(context.Background(), worker, shiftOn(domain.NewDate(2025, time.March, 10)), "cover")
	require.NoError(t, err)

	require.Len(t, ch.messages, 1)
	assert.Equal(t, "email_queue", ch.keys[0])
	assert.Equal(t, "application/json", ch.messages[0].ContentType)

	var msg struct {
		Type string                         `json:"type"`
		To   string                         `json:"to"`
		Data domain.ShiftAssignmentMailData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(ch.messages[0].Body, &msg))
	assert.Equal(t, domain.MailTypeShiftAssignment, msg.Type)
	assert.Equal(t, "ana@example.com", msg.To)
	assert.Equal(t, domain.ShiftAssignmentMailData{
		FullName:     "Ana Silva",
		ShiftDate:    "2025-03-10",
		TemplateName: "T-MANHA",
		StartTime:    "06:00:00",
		EndTime:      "14:00:00",
		Reason:       "cover",
	}, msg.Data)
}

func TestPublisher_ShiftRemoved(t *testing.T) {
	ch := &fakeChannel{}
	p := mailqueue.NewPublisher(ch, "email_queue", time.Second)

	err := p.ShiftRemoved(context.Background(), &domain.Worker{FullName: "Bruno", Email: "bruno@example.com"}, shiftOn(domain.NewDate(2025, time.March, 11)), "")
	require.NoError(t, err)

	var msg domain.MailMessage
	require.NoError(t, json.Unmarshal(ch.messages[0].Body, &msg))
	assert.Equal(t, domain.MailTypeShiftRemoval, msg.Type)
}

func TestPublisher_SkipsWorkersWithoutEmail(t *testing.T) {
	ch := &fakeChannel{}
	p := mailqueue.NewPublisher(ch, "email_queue", time.Second)

	require.NoError(t, p.ShiftAssigned(context.Background(), &domain.Worker{FullName: "Sem Email"}, shiftOn(domain.NewDate(2025, time.March, 10)), ""))
	assert.Empty(t, ch.messages)
}

func TestPublisher_WrapsChannelErrors(t *testing.T) {
	ch := &fakeChannel{err: amqp.ErrClosed}
	p := mailqueue.NewPublisher(ch, "email_queue", time.Second)

	err := p.ShiftAssigned(context.Background(), &domain.Worker{Email: "a@example.com"}, shiftOn(domain.NewDate(2025, time.March, 10)), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, amqp.ErrClosed))
}
