package payment

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrUnknownIntent   = errors.New("unknown payment intent")
	ErrAlreadyResolved = errors.New("payment intent already resolved")
)

// Gateway initiates a payment and waits for the payer's outcome. A failure
// outcome is returned as *domain.GatewayError.
type Gateway interface {
	Initiate(ctx context.Context, req Request) (Intent, error)
	Await(ctx context.Context, intentID string) (Confirmation, error)
}

// Request describes the charge. Amount is in minor currency units.
type Request struct {
	Amount   int64
	Customer domain.CustomerDetails
	UserID   string
}

type Prefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

// Intent carries the options the browser passes to the gateway checkout script.
type Intent struct {
	ID          string            `json:"intentId"`
	Key         string            `json:"key"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Prefill     Prefill           `json:"prefill"`
	Notes       map[string]string `json:"notes"`
	ExpiresAt   time.Time         `json:"expiresAt"`
}

// Confirmation is a successful payment.
type Confirmation struct {
	PaymentID string
}

// Outcome is the gateway callback relayed by the browser. A non-empty
// ErrorDescription or ErrorCode marks a failure.
type Outcome struct {
	PaymentID        string `json:"paymentId"`
	ErrorCode        string `json:"errorCode"`
	ErrorDescription string `json:"error"`
}

func (o Outcome) failed() bool {
	return o.ErrorCode != "" || o.ErrorDescription != ""
}

type Config struct {
	KeyID        string
	Currency     string
	MerchantName string
	Timeout      time.Duration
}

type intent struct {
	outcome  chan Outcome
	resolved bool
	deadline time.Time
}

// Broker turns the gateway's browser callbacks into a blocking Await.
type Broker struct {
	cfg    Config
	logger logrus.FieldLogger

	mu      sync.Mutex
	intents map[string]*intent
}

func NewBroker(cfg Config, logger logrus.FieldLogger) *Broker {
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Minute
	}
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	return &Broker{
		cfg:     cfg,
		logger:  logger.WithField("component", "payment"),
		intents: make(map[string]*intent),
	}
}

// Initiate registers a pending intent and returns the checkout options.
func (b *Broker) Initiate(_ context.Context, req Request) (Intent, error) {
	if req.Amount <= 0 {
		return Intent{}, &domain.ValidationError{Message: "Invalid total amount!"}
	}
	id := uuid.NewString()
	deadline := time.Now().Add(b.cfg.Timeout)

	b.mu.Lock()
	b.intents[id] = &intent{outcome: make(chan Outcome, 1), deadline: deadline}
	b.mu.Unlock()

	b.logger.WithFields(logrus.Fields{"intent_id": id, "amount": req.Amount, "user_id": req.UserID}).Info("payment initiated")

	return Intent{
		ID:          id,
		Key:         b.cfg.KeyID,
		Amount:      req.Amount,
		Currency:    b.cfg.Currency,
		Name:        b.cfg.MerchantName,
		Description: "Order payment",
		Prefill: Prefill{
			Name:    req.Customer.Name,
			Email:   req.Customer.Email,
			Contact: req.Customer.Phone,
		},
		Notes:     map[string]string{"address": req.Customer.Address},
		ExpiresAt: deadline,
	}, nil
}

// Resolve delivers the browser callback for an intent exactly once.
func (b *Broker) Resolve(intentID string, out Outcome) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	in, ok := b.intents[intentID]
	if !ok {
		return ErrUnknownIntent
	}
	if in.resolved {
		return ErrAlreadyResolved
	}
	in.resolved = true
	in.outcome <- out
	return nil
}

// Await blocks until the intent is resolved, ctx is done, or the intent expires.
func (b *Broker) Await(ctx context.Context, intentID string) (Confirmation, error) {
	b.mu.Lock()
	in, ok := b.intents[intentID]
	b.mu.Unlock()
	if !ok {
		return Confirmation{}, ErrUnknownIntent
	}
	defer b.forget(intentID)

	timer := time.NewTimer(time.Until(in.deadline))
	defer timer.Stop()

	select {
	case out := <-in.outcome:
		if out.failed() {
			b.logger.WithFields(logrus.Fields{"intent_id": intentID, "code": out.ErrorCode}).Warn("payment failed")
			msg := out.ErrorDescription
			if msg == "" {
				msg = "payment declined"
			}
			return Confirmation{}, &domain.GatewayError{Code: out.ErrorCode, Message: msg}
		}
		if out.PaymentID == "" {
			return Confirmation{}, &domain.GatewayError{Message: "gateway returned no payment id"}
		}
		return Confirmation{PaymentID: out.PaymentID}, nil
	case <-timer.C:
		return Confirmation{}, &domain.GatewayError{Code: "TIMEOUT", Message: "payment window expired"}
	case <-ctx.Done():
		return Confirmation{}, ctx.Err()
	}
}

func (b *Broker) forget(intentID string) {
	b.mu.Lock()
	delete(b.intents, intentID)
	b.mu.Unlock()
}

// Pending reports how many intents are awaiting an outcome.
func (b *Broker) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.intents)
}
