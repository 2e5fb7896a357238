package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"storefront/internal/domain"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

type stubChannel struct {
	lastKey string
	lastMsg amqp.Publishing
	err     error
	closed  bool
}

func (s *stubChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	s.lastKey = key
	s.lastMsg = msg
	return s.err
}

func (s *stubChannel) Close() error {
	s.closed = true
	return nil
}

func TestAMQPPublisher_PublishOrderPlaced(t *testing.T) {
	ch := &stubChannel{}
	p := &AMQPPublisher{queue: "orders.placed", logger: logrus.New(), ch: ch}
	order := domain.Order{
		ID:            "COD_1700000000000",
		UserID:        "u1",
		Amount:        25000,
		PaymentMethod: domain.PaymentMethodCOD,
		Status:        domain.OrderStatusPending,
		Items:         []domain.OrderLine{{ProductID: "p1", Quantity: 2}},
		Timestamp:     time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	if err := p.PublishOrderPlaced(context.Background(), order); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if ch.lastKey != "orders.placed" || ch.lastMsg.MessageId != order.ID || ch.lastMsg.ContentType != "application/json" {
		t.Fatalf("unexpected publishing: key=%s msg=%+v", ch.lastKey, ch.lastMsg)
	}
	var evt OrderPlaced
	if err := json.Unmarshal(ch.lastMsg.Body, &evt); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if evt.OrderID != order.ID || evt.Amount != 25000 || evt.Items != 1 {
		t.Fatalf("unexpected event %+v", evt)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !ch.closed {
		t.Fatalf("expected channel to be closed")
	}
}

func TestAMQPPublisher_PublishError(t *testing.T) {
	p := &AMQPPublisher{queue: "q", logger: logrus.New(), ch: &stubChannel{err: errors.New("channel closed")}}
	if err := p.PublishOrderPlaced(context.Background(), domain.Order{ID: "x"}); err == nil {
		t.Fatalf("expected publish error")
	}
}
