package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/starter-webapi/internal/application"
)

// UserEventsBinding matches every user.* routing key.
const UserEventsBinding = "user.*"

// Publisher sends user events to a durable topic exchange keyed by event type.
type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	Exchange string
}

var _ application.EventPublisher = (*Publisher)(nil)

func declareExchange(ch *amqp.Channel, exchange string) error {
	return ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	)
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := declareExchange(ch, exchange); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, ch: ch, Exchange: exchange}, nil
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// encode builds the AMQP message for ev.
func encode(ev application.UserEvent) (amqp.Publishing, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         ev.Type,
		Timestamp:    ev.OccurredAt,
		Body:         b,
	}, nil
}

func decode(body []byte) (application.UserEvent, error) {
	var ev application.UserEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return ev, err
	}
	if ev.Type == "" || ev.UserID == "" {
		return ev, errors.New("user event without type or user id")
	}
	return ev, nil
}

func (p *Publisher) PublishUserEvent(ctx context.Context, ev application.UserEvent) error {
	msg, err := encode(ev)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx,
		p.Exchange,
		ev.Type, // routing key
		false,   // mandatory
		false,   // immediate
		msg,
	)
}

// Handler processes one user event. A returned error requeues the message once.
type Handler func(ctx context.Context, ev application.UserEvent) error

// Consume binds queue to the exchange and hands every user event to h until
// ctx is cancelled or the channel closes.
func Consume(ctx context.Context, url, exchange, queue string, prefetch int, logger *logrus.Logger, h Handler) error {
	conn, err := amqp.Dial(url)
	if err != nil {
		return fmt.Errorf("amqp dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(prefetch, 0, false); err != nil {
		return fmt.Errorf("qos: %w", err)
	}
	if err := declareExchange(ch, exchange); err != nil {
		return fmt.Errorf("exchange declare: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if err := ch.QueueBind(queue, UserEventsBinding, exchange, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}

	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("amqp delivery channel closed")
			}
			handleDelivery(ctx, msg, logger, h)
		}
	}
}

// acker is the part of amqp.Delivery the consumer loop needs.
type acker interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

type delivery struct {
	acker
	body        []byte
	redelivered bool
}

func handleDelivery(ctx context.Context, msg amqp.Delivery, logger *logrus.Logger, h Handler) {
	dispatch(ctx, delivery{acker: msg, body: msg.Body, redelivered: msg.Redelivered}, logger, h)
}

func dispatch(ctx context.Context, d delivery, logger *logrus.Logger, h Handler) {
	ev, err := decode(d.body)
	if err != nil {
		if logger != nil {
			logger.WithError(err).Warn("dropping malformed user event")
		}
		_ = d.Nack(false, false)
		return
	}
	if err := h(ctx, ev); err != nil {
		if logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{"event": ev.Type, "user_id": ev.UserID}).Warn("user event handler failed")
		}
		_ = d.Nack(false, !d.redelivered)
		return
	}
	_ = d.Ack(false)
}
