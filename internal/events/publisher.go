package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"storefront/internal/domain"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// OrderPlaced is published after an order has been persisted.
type OrderPlaced struct {
	OrderID       string               `json:"orderId"`
	UserID        string               `json:"userId"`
	Amount        int64                `json:"amount"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
	Status        domain.OrderStatus   `json:"status"`
	Items         int                  `json:"items"`
	PlacedAt      time.Time            `json:"placedAt"`
}

// NewOrderPlaced summarizes an order for publishing.
func NewOrderPlaced(order domain.Order) OrderPlaced {
	return OrderPlaced{
		OrderID:       order.ID,
		UserID:        order.UserID,
		Amount:        order.Amount,
		PaymentMethod: order.PaymentMethod,
		Status:        order.Status,
		Items:         len(order.Items),
		PlacedAt:      order.Timestamp,
	}
}

type Publisher interface {
	PublishOrderPlaced(ctx context.Context, order domain.Order) error
}

// Nop discards events.
type Nop struct{}

func (Nop) PublishOrderPlaced(context.Context, domain.Order) error { return nil }

// channel is the subset of *amqp.Channel used for publishing.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes JSON events to a durable queue on the default exchange.
type AMQPPublisher struct {
	conn   *amqp.Connection
	queue  string
	logger logrus.FieldLogger

	mu sync.Mutex
	ch channel
}

// DialAMQP connects and declares the queue.
func DialAMQP(url, queue string, logger logrus.FieldLogger) (*AMQPPublisher, error) {
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return &AMQPPublisher{
		conn:   conn,
		queue:  queue,
		logger: logger.WithFields(logrus.Fields{"component": "events", "queue": queue}),
		ch:     ch,
	}, nil
}

func (p *AMQPPublisher) PublishOrderPlaced(ctx context.Context, order domain.Order) error {
	body, err := json.Marshal(NewOrderPlaced(order))
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.PublishWithContext(ctx,
		"",      // exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    order.ID,
			Timestamp:    time.Now().UTC(),
			Type:         "order.placed",
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish order %s: %w", order.ID, err)
	}
	p.logger.WithField("order_id", order.ID).Debug("order event published")
	return nil
}

// Close closes the channel and connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.Close(); err != nil {
		p.logger.WithError(err).Warn("close channel")
	}
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}
