package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"restaurant-pos/logger"
	"restaurant-pos/models"

	"github.com/rabbitmq/amqp091-go"
)

// channel is the subset of *amqp091.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
	IsClosed() bool
}

// AMQPNotifier publishes events as JSON to the pos_events topic exchange.
type AMQPNotifier struct {
	mu   sync.Mutex
	url  string
	conn *amqp091.Connection
	ch   channel
	log  *logger.Logger

	dial func() error
}

// Dial connects to the broker, retrying with a growing pause, and declares
// the exchange.
func Dial(url string, log *logger.Logger) (*AMQPNotifier, error) {
	n := &AMQPNotifier{url: url, log: log}
	n.dial = n.connect

	const maxRetries = 5
	var err error
	for i := 0; i < maxRetries; i++ {
		if err = n.connect(); err == nil {
			return n, nil
		}
		if i < maxRetries-1 {
			wait := time.Duration(i+1) * 2 * time.Second
			log.Error("rabbitmq_connection_failed", "startup",
				fmt.Sprintf("failed to connect to RabbitMQ, retrying in %v", wait), err)
			time.Sleep(wait)
		}
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxRetries, err)
}

func (n *AMQPNotifier) connect() error {
	conn, err := amqp091.Dial(n.url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}
	if err := ch.ExchangeDeclare(
		Exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("failed to declare %s exchange: %w", Exchange, err)
	}
	n.conn = conn
	n.ch = ch
	return nil
}

// closed reports whether publishing needs a fresh channel. A channel can
// close on its own (e.g. after a broker-side error) while the connection lives.
func (n *AMQPNotifier) closed() bool {
	return n.ch == nil || n.ch.IsClosed() || (n.conn != nil && n.conn.IsClosed())
}

// reset drops the stale channel and connection before a redial.
func (n *AMQPNotifier) reset() {
	if n.ch != nil {
		_ = n.ch.Close()
		n.ch = nil
	}
	if n.conn != nil {
		if !n.conn.IsClosed() {
			_ = n.conn.Close()
		}
		n.conn = nil
	}
}

func (n *AMQPNotifier) KitchenTicket(ctx context.Context, o *models.Order) error {
	return n.publish(ctx, KeyKitchenTicket, NewKitchenTicketMessage(o), 5)
}

func (n *AMQPNotifier) OrderStatusChanged(ctx context.Context, o *models.Order) error {
	return n.publish(ctx, StatusRoutingKey(o.Status), NewOrderStatusMessage(o), 0)
}

func (n *AMQPNotifier) InvoiceSettled(ctx context.Context, inv *models.Invoice) error {
	return n.publish(ctx, KeyInvoiceSettled, NewInvoiceSettledMessage(inv), 0)
}

func (n *AMQPNotifier) publish(ctx context.Context, routingKey string, message any, priority uint8) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed() && n.dial != nil {
		n.reset()
		if err := n.dial(); err != nil {
			return fmt.Errorf("failed to reconnect: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err = n.ch.PublishWithContext(ctx, Exchange, routingKey, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp091.Persistent,
		Priority:     priority,
		Timestamp:    time.Now(),
	})
	if err != nil {
		n.log.Error("message_publish_failed", "", "failed to publish message", err,
			slog.String("exchange", Exchange),
			slog.String("routing_key", routingKey),
		)
		return fmt.Errorf("failed to publish message: %w", err)
	}

	n.log.Debug("message_published", "", "published message",
		slog.String("exchange", Exchange),
		slog.String("routing_key", routingKey),
		slog.Int("message_size", len(body)),
	)
	return nil
}

func (n *AMQPNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.ch != nil {
		n.ch.Close()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}
