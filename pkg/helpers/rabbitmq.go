package helpers

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// declareQueue declares a durable, non-exclusive queue. Publisher and
// consumer must agree on these arguments or the broker rejects the second.
func declareQueue(ch *amqp.Channel, queue string) error {
	_, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	return err
}

// dialChannel opens a connection and one channel on it.
func dialChannel(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}

// RabbitPublisher publishes JSON jobs to one queue via the default exchange.
type RabbitPublisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	Queue string
}

func NewRabbitPublisher(url, queue string) (*RabbitPublisher, error) {
	conn, ch, err := dialChannel(url)
	if err != nil {
		return nil, err
	}
	if err := declareQueue(ch, queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &RabbitPublisher{conn: conn, ch: ch, Queue: queue}, nil
}

func (p *RabbitPublisher) Close() {
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

// PublishJSON publishes body as a persistent message.
func (p *RabbitPublisher) PublishJSON(ctx context.Context, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, "", p.Queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         b,
	})
}

// RabbitConsumer delivers messages from one queue with manual acks.
type RabbitConsumer struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	Queue string
}

// NewRabbitConsumer declares queue and limits unacked deliveries to prefetch.
func NewRabbitConsumer(url, queue string, prefetch int) (*RabbitConsumer, error) {
	conn, ch, err := dialChannel(url)
	if err != nil {
		return nil, err
	}
	fail := func(err error) (*RabbitConsumer, error) {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return fail(err)
	}
	if err := declareQueue(ch, queue); err != nil {
		return fail(err)
	}
	return &RabbitConsumer{conn: conn, ch: ch, Queue: queue}, nil
}

// Deliveries starts consuming. The channel closes when the consumer closes.
func (c *RabbitConsumer) Deliveries() (<-chan amqp.Delivery, error) {
	return c.ch.Consume(c.Queue, "", false, false, false, false, nil)
}

func (c *RabbitConsumer) Close() {
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
