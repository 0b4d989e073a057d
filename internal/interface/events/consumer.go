package events

import (
	"context"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Consumer subscribes a durable queue to the shared store exchange and feeds
// deliveries into the Dispatcher. Delivery is at-least-once; replays of
// idempotent mutations are harmless by construction.
type Consumer struct {
	conn       *amqp.Connection
	ch         *amqp.Channel
	queue      string
	dispatcher *Dispatcher
	logger     *logrus.Logger
}

func NewConsumer(url, exchange, bindingKey string, d *Dispatcher, logger *logrus.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := ch.Qos(16, 0, false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	q, err := ch.QueueDeclare(bindingKey+"_queue", true, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	if err := ch.QueueBind(q.Name, bindingKey, exchange, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Consumer{conn: conn, ch: ch, queue: q.Name, dispatcher: d, logger: logger}, nil
}

// Run consumes deliveries until ctx is cancelled or the channel closes.
// Malformed payloads are rejected without requeue, unknown kinds are acked
// (logged and dropped), and store failures are requeued for redelivery.
func (c *Consumer) Run(ctx context.Context) error {
	msgs, err := c.ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}
	c.logger.WithField("queue", c.queue).Info("event consumer listening")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("amqp delivery channel closed")
			}
			c.handle(ctx, msg)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg amqp.Delivery) {
	err := c.dispatcher.Dispatch(ctx, msg.Body)
	switch {
	case err == nil:
		_ = msg.Ack(false)
	case errors.Is(err, ErrMalformedEnvelope):
		c.logger.WithError(err).Error("rejecting malformed envelope")
		_ = msg.Nack(false, false)
	case errors.Is(err, ErrUnknownEvent):
		// already logged by the dispatcher; drop the delivery
		_ = msg.Ack(false)
	default:
		// store failure: leave it for redelivery
		c.logger.WithError(err).Warn("event handling failed, requeueing")
		_ = msg.Nack(false, true)
	}
}

func (c *Consumer) Close() {
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
