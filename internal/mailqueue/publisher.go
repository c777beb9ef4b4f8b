// Package mailqueue publishes notification mails to the RabbitMQ queue read
// by the mail worker.
package mailqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/carehome-dev/care-shift/backend/internal/metrics"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Channel is the part of *amqp.Channel the publisher uses.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Publisher struct {
	ch      Channel
	queue   string
	timeout time.Duration
}

func NewPublisher(ch Channel, queue string, timeout time.Duration) *Publisher {
	return &Publisher{ch: ch, queue: queue, timeout: timeout}
}

// Publish serializes the message and puts it on the queue.
func (p *Publisher) Publish(ctx context.Context, msg domain.MailMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.ch.PublishWithContext(
		ctx,
		"",
		p.queue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	); err != nil {
		return fmt.Errorf("publish %s mail: %w", msg.Type, err)
	}

	metrics.MailsQueued.WithLabelValues(msg.Type).Inc()
	return nil
}

func (p *Publisher) ShiftAssigned(ctx context.Context, worker *domain.Worker, shift *domain.Shift, reason string) error {
	if worker.Email == "" {
		return nil
	}

	data := domain.ShiftAssignmentMailData{
		FullName:  worker.FullName,
		ShiftDate: shift.Date.String(),
		Reason:    reason,
	}
	if shift.Template != nil {
		data.TemplateName = shift.Template.Name
		data.StartTime = shift.Template.StartTime
		data.EndTime = shift.Template.EndTime
	}

	return p.Publish(ctx, domain.MailMessage{
		Type: domain.MailTypeShiftAssignment,
		To:   worker.Email,
		Data: data,
	})
}

func (p *Publisher) ShiftRemoved(ctx context.Context, worker *domain.Worker, shift *domain.Shift, reason string) error {
	if worker.Email == "" {
		return nil
	}

	data := domain.ShiftRemovalMailData{
		FullName:  worker.FullName,
		ShiftDate: shift.Date.String(),
		Reason:    reason,
	}
	if shift.Template != nil {
		data.TemplateName = shift.Template.Name
	}

	return p.Publish(ctx, domain.MailMessage{
		Type: domain.MailTypeShiftRemoval,
		To:   worker.Email,
		Data: data,
	})
}
