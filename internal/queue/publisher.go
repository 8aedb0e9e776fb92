package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/studycafe/seat-reservation/internal/logger"
)

const confirmedQueueName = "reservation.confirmed"

// Publisher publishes reservation confirmations to RabbitMQ. Messages
// are marked persistent so they survive broker restarts. Publishing is
// fire-and-forget from the caller's point of view: the reservation has
// already committed, so broker errors are logged and swallowed.
type Publisher struct {
	url string
}

// NewPublisher returns a publisher that dials the broker at url on each
// publish. Connections are short-lived; the confirmation volume of a
// study cafe does not justify a channel pool.
func NewPublisher(url string) *Publisher { return &Publisher{url: url} }

// PublishConfirmed sends a ReservationConfirmedEvent to the
// reservation.confirmed queue on a background goroutine.
func (p *Publisher) PublishConfirmed(ev ReservationConfirmedEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := p.publish(ctx, ev); err != nil {
			logger.Error("reservation.confirmed publish failed",
				zap.Uint64("reservation_id", ev.ReservationID),
				zap.Error(err))
		}
	}()
}

func (p *Publisher) publish(ctx context.Context, ev ReservationConfirmedEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive
	// broker restarts.
	if _, err := ch.QueueDeclare(confirmedQueueName, true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx,
		"",                 // default exchange
		confirmedQueueName, // routing key = queue name
		false,              // mandatory
		false,              // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}
