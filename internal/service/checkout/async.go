package checkout

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain"
	"storefront/internal/payment"
)

type AttemptState string

const (
	AttemptPending AttemptState = "pending"
	AttemptPlaced  AttemptState = "placed"
	AttemptFailed  AttemptState = "failed"
)

// Attempt tracks a gateway checkout started with Begin.
type Attempt struct {
	IntentID string        `json:"intentId"`
	UserID   string        `json:"-"`
	State    AttemptState  `json:"state"`
	Status   string        `json:"status"`
	Order    *domain.Order `json:"order,omitempty"`

	finishedAt time.Time
}

// attemptRetention bounds how long finished attempts stay queryable.
const attemptRetention = time.Hour

var ErrAttemptNotFound = errors.New("checkout attempt not found")

// Begin validates a gateway checkout, creates the payment intent and completes
// the order in the background once the gateway outcome is resolved. The
// background work is detached from ctx and cannot be aborted midway.
func (s *Service) Begin(ctx context.Context, req Request) (payment.Intent, error) {
	if req.Method != domain.PaymentMethodGateway {
		return payment.Intent{}, &domain.ValidationError{Message: "Begin requires the gateway payment method"}
	}
	if err := Validate(req); err != nil {
		s.record(req.Method, err)
		return payment.Intent{}, err
	}
	intent, err := s.gateway.Initiate(ctx, s.paymentRequest(req))
	if err != nil {
		s.record(req.Method, err)
		return payment.Intent{}, err
	}

	s.mu.Lock()
	s.pruneLocked(s.now())
	s.attempts[intent.ID] = &Attempt{
		IntentID: intent.ID,
		UserID:   req.Principal.UserID,
		State:    AttemptPending,
		Status:   ProcessingMessage,
	}
	s.mu.Unlock()

	go s.complete(context.WithoutCancel(ctx), intent.ID, req)
	return intent, nil
}

func (s *Service) complete(ctx context.Context, intentID string, req Request) {
	conf, err := s.gateway.Await(ctx, intentID)
	if err != nil {
		s.record(req.Method, err)
		s.finish(intentID, nil, err)
		return
	}
	result, err := s.place(ctx, req, conf.PaymentID)
	if err != nil {
		s.finish(intentID, nil, err)
		return
	}
	s.finish(intentID, &result, nil)
}

func (s *Service) finish(intentID string, result *Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[intentID]
	if !ok {
		return
	}
	a.finishedAt = s.now()
	if err != nil {
		a.State = AttemptFailed
		a.Status = StatusMessage(err)
		return
	}
	a.State = AttemptPlaced
	a.Status = result.Status
	order := result.Order
	a.Order = &order
}

// Status returns the attempt for intentID if it belongs to userID.
func (s *Service) Status(intentID, userID string) (Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[intentID]
	if !ok || a.UserID != userID {
		return Attempt{}, ErrAttemptNotFound
	}
	return *a, nil
}

// Resolve forwards the browser's gateway callback for an attempt owned by userID.
func (s *Service) Resolve(intentID, userID string, out payment.Outcome) error {
	if _, err := s.Status(intentID, userID); err != nil {
		return err
	}
	return s.gateway.Resolve(intentID, out)
}

func (s *Service) pruneLocked(now time.Time) {
	for id, a := range s.attempts {
		if !a.finishedAt.IsZero() && now.Sub(a.finishedAt) > attemptRetention {
			delete(s.attempts, id)
		}
	}
}
