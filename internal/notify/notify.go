// Package notify publishes pipeline lifecycle events over AMQP. When no
// broker is configured the notifier is a no-op, and publish failures
// never abort a run.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"pdw/internal/log"
)

// Notifier publishes run events. The zero-value (or nil-backed)
// Notifier discards every event.
type Notifier struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
	log          *log.Logger
}

// NewNotifier connects to the broker and declares the exchange and
// queue. An empty URL yields a disabled notifier without error.
func NewNotifier(url, exchangeName, queueName string, logger *log.Logger) (*Notifier, error) {
	n := &Notifier{
		exchangeName: exchangeName,
		queueName:    queueName,
		log:          logger.WithComponent("notify"),
	}
	if url == "" {
		return n, nil
	}

	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	n.conn = conn
	n.channel = channel

	if err := n.setup(); err != nil {
		n.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}
	return n, nil
}

func (n *Notifier) setup() error {
	err := n.channel.ExchangeDeclare(
		n.exchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = n.channel.QueueDeclare(
		n.queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	err = n.channel.QueueBind(
		n.queueName,
		n.queueName, // routing key, same as queue name for direct exchange
		n.exchangeName,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// Enabled reports whether a broker connection is active.
func (n *Notifier) Enabled() bool {
	return n != nil && n.channel != nil
}

// Publish sends one run event with persistent delivery. Failures are
// logged and swallowed.
func (n *Notifier) Publish(ctx context.Context, event *RunEvent) {
	if !n.Enabled() {
		return
	}
	body, err := event.ToJSON()
	if err != nil {
		n.log.Warn("marshal run event failed", "event", event.Event, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = n.channel.PublishWithContext(
		ctx,
		n.exchangeName,
		n.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		n.log.Warn("publish run event failed", "event", event.Event, "error", err)
		return
	}
	n.log.Debug("published run event",
		"event", event.Event,
		"run_id", event.RunID,
		"exchange", n.exchangeName,
		"queue", n.queueName)
}

func (n *Notifier) Close() error {
	if n == nil {
		return nil
	}
	if n.channel != nil {
		n.channel.Close()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}
