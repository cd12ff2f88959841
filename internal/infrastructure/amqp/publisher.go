package amqp

import (
	"context"
	"encoding/json"
	"fmt"

	domoutbox "github.com/Denis-77/megano-store/internal/domain/outbox"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher pushes domain events to a RabbitMQ topic exchange, keyed by the
// event name, as JSON. It satisfies the outbox.Publisher port so the order
// service can fan out order.created to external consumers.
type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp: channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("amqp: declare exchange: %w", err)
	}
	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *Publisher) Publish(ctx context.Context, e domoutbox.Event) error {
	if e == nil {
		return nil
	}
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("amqp: marshal event: %w", err)
	}
	err = p.ch.PublishWithContext(ctx, p.exchange, e.EventName(), false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("amqp: publish %s: %w", e.EventName(), err)
	}
	return nil
}

func (p *Publisher) Close() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
