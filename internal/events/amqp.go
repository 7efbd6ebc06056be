package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher is the slice of *amqp.Channel the bridge needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPBridge forwards events to a topic exchange so kitchen displays can follow along.
type AMQPBridge struct {
	publisher Publisher
	exchange  string
	source    string
}

// NewAMQPBridge builds a bridge over an open channel.
func NewAMQPBridge(publisher Publisher, exchange, source string) *AMQPBridge {
	return &AMQPBridge{publisher: publisher, exchange: exchange, source: source}
}

// RoutingKey is "pos.<event type>".
func RoutingKey(t EventType) string {
	return "pos." + string(t)
}

// Handle publishes one event. It has the EventHandler signature.
func (b *AMQPBridge) Handle(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = b.publisher.PublishWithContext(ctx, b.exchange, RoutingKey(event.Type), false, false, amqp.Publishing{
		DeliveryMode: amqp.Transient,
		ContentType:  "application/json",
		MessageId:    event.ID,
		Timestamp:    event.Timestamp,
		Type:         string(event.Type),
		Headers:      amqp.Table{"x-source": b.source},
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// AMQPConnection owns the broker connection behind a bridge.
type AMQPConnection struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// DialAMQP connects and declares the durable topic exchange.
func DialAMQP(url, exchange string) (*AMQPConnection, error) {
	if url == "" {
		return nil, errors.New("amqp url is empty")
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &AMQPConnection{conn: conn, ch: ch}, nil
}

// Channel returns the publishing channel.
func (c *AMQPConnection) Channel() *amqp.Channel {
	return c.ch
}

// Close closes channel and connection.
func (c *AMQPConnection) Close() {
	if c == nil {
		return
	}
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}
