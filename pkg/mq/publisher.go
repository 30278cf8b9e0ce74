package mq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher emits domain events to interested consumers. A nil *RabbitPublisher
// satisfies it as a no-op, so callers never need to branch on whether events
// are enabled.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

// Event is the envelope wrapped around every published payload.
type Event struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// RabbitPublisher publishes JSON events to a durable topic exchange.
type RabbitPublisher struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	logger   *zap.Logger
}

// NewRabbitPublisher dials RabbitMQ and declares the exchange.
func NewRabbitPublisher(url, exchange string, logger *zap.Logger) (*RabbitPublisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, err
	}
	return &RabbitPublisher{conn: conn, channel: ch, exchange: exchange, logger: logger}, nil
}

// Publish wraps the payload in an Event envelope and sends it to the exchange.
// Safe to call on a nil receiver.
func (p *RabbitPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	if p == nil {
		return nil
	}
	body, err := json.Marshal(Event{
		Type:       routingKey,
		OccurredAt: time.Now().UTC(),
		Data:       payload,
	})
	if err != nil {
		return err
	}
	return p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp091.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

// Close releases the channel and connection.
func (p *RabbitPublisher) Close() error {
	if p == nil {
		return nil
	}
	if err := p.channel.Close(); err != nil {
		p.logger.Sugar().Warnw("failed to close channel", "error", err)
	}
	return p.conn.Close()
}
