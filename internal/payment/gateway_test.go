package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/domain"
)

func newBroker(timeout time.Duration) *Broker {
	return NewBroker(Config{KeyID: "rzp_test", Currency: "INR", MerchantName: "Shop", Timeout: timeout}, nil)
}

func TestInitiate_BuildsCheckoutOptions(t *testing.T) {
	b := newBroker(time.Minute)
	in, err := b.Initiate(context.Background(), Request{
		Amount:   25000,
		Customer: domain.CustomerDetails{Name: "Asha", Email: "asha@example.com", Phone: "98765", Address: "MG Road"},
	})
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if in.ID == "" || in.Key != "rzp_test" || in.Amount != 25000 || in.Currency != "INR" {
		t.Fatalf("unexpected intent: %+v", in)
	}
	if in.Prefill.Contact != "98765" || in.Notes["address"] != "MG Road" {
		t.Fatalf("expected prefill and notes, got %+v", in)
	}
	if b.Pending() != 1 {
		t.Fatalf("expected one pending intent")
	}
}

func TestInitiate_RejectsNonPositiveAmount(t *testing.T) {
	b := newBroker(time.Minute)
	_, err := b.Initiate(context.Background(), Request{Amount: 0})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestAwait_Success(t *testing.T) {
	b := newBroker(time.Minute)
	in, _ := b.Initiate(context.Background(), Request{Amount: 100})

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = b.Resolve(in.ID, Outcome{PaymentID: "pay_123"})
	}()

	conf, err := b.Await(context.Background(), in.ID)
	if err != nil {
		t.Fatalf("await: %v", err)
	}
	if conf.PaymentID != "pay_123" {
		t.Fatalf("unexpected confirmation %+v", conf)
	}
	if b.Pending() != 0 {
		t.Fatalf("expected intent to be forgotten")
	}
}

func TestAwait_ResolvedBeforeAwait(t *testing.T) {
	b := newBroker(time.Minute)
	in, _ := b.Initiate(context.Background(), Request{Amount: 100})
	if err := b.Resolve(in.ID, Outcome{PaymentID: "pay_early"}); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if err := b.Resolve(in.ID, Outcome{PaymentID: "pay_again"}); !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved, got %v", err)
	}
	conf, err := b.Await(context.Background(), in.ID)
	if err != nil || conf.PaymentID != "pay_early" {
		t.Fatalf("expected early confirmation, got %+v %v", conf, err)
	}
}

func TestAwait_FailureIsGatewayError(t *testing.T) {
	b := newBroker(time.Minute)
	in, _ := b.Initiate(context.Background(), Request{Amount: 100})
	_ = b.Resolve(in.ID, Outcome{ErrorCode: "BAD_REQUEST_ERROR", ErrorDescription: "Card declined"})

	_, err := b.Await(context.Background(), in.ID)
	var gerr *domain.GatewayError
	if !errors.As(err, &gerr) || gerr.Message != "Card declined" {
		t.Fatalf("expected GatewayError with description, got %v", err)
	}
}

func TestAwait_Timeout(t *testing.T) {
	b := newBroker(20 * time.Millisecond)
	in, _ := b.Initiate(context.Background(), Request{Amount: 100})
	_, err := b.Await(context.Background(), in.ID)
	var gerr *domain.GatewayError
	if !errors.As(err, &gerr) || gerr.Code != "TIMEOUT" {
		t.Fatalf("expected timeout GatewayError, got %v", err)
	}
}

func TestAwait_ContextCancelled(t *testing.T) {
	b := newBroker(time.Minute)
	in, _ := b.Initiate(context.Background(), Request{Amount: 100})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := b.Await(ctx, in.ID); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestResolve_UnknownIntent(t *testing.T) {
	b := newBroker(time.Minute)
	if err := b.Resolve("nope", Outcome{PaymentID: "x"}); !errors.Is(err, ErrUnknownIntent) {
		t.Fatalf("expected ErrUnknownIntent, got %v", err)
	}
}
