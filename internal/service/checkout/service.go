package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/metrics"
	"storefront/internal/payment"
	"storefront/internal/service/store"

	"github.com/sirupsen/logrus"
)

type productCatalog interface {
	GetProduct(ctx context.Context, id string) (domain.Product, error)
	UpdateStock(ctx context.Context, id string, stock int) error
}

type orderWriter interface {
	CreateOrder(ctx context.Context, order domain.Order) error
}

type cartClearer interface {
	Clear(ctx context.Context, session string, which store.Collection) error
}

type gateway interface {
	payment.Gateway
	Resolve(intentID string, out payment.Outcome) error
}

// Request is a checkout of a cart snapshot.
type Request struct {
	Principal domain.Principal
	Cart      []domain.CartItem
	Customer  domain.CustomerDetails
	Method    domain.PaymentMethod
}

// Result is a placed order and the status line shown to the customer.
type Result struct {
	Order  domain.Order `json:"order"`
	Status string       `json:"status"`
}

// Service places orders. The stock loop reads and then writes each product's
// stock with no locking and no compensation: a failure partway leaves earlier
// items decremented, a retry decrements them again, and concurrent checkouts of
// the same product can lose updates.
type Service struct {
	catalog productCatalog
	orders  orderWriter
	cart    cartClearer
	gateway gateway
	events  events.Publisher
	logger  logrus.FieldLogger
	now     func() time.Time

	mu       sync.Mutex
	attempts map[string]*Attempt
}

type Deps struct {
	Catalog productCatalog
	Orders  orderWriter
	Cart    cartClearer
	Gateway gateway
	Events  events.Publisher
	Logger  logrus.FieldLogger
	Now     func() time.Time
}

func New(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	pub := d.Events
	if pub == nil {
		pub = events.Nop{}
	}
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		catalog:  d.Catalog,
		orders:   d.Orders,
		cart:     d.Cart,
		gateway:  d.Gateway,
		events:   pub,
		logger:   logger.WithField("component", "checkout"),
		now:      now,
		attempts: make(map[string]*Attempt),
	}
}

// Validate checks a request before any backend or gateway call.
func Validate(req Request) error {
	if len(req.Cart) == 0 {
		return &domain.ValidationError{Message: "Cart is empty!"}
	}
	if !req.Customer.Complete() {
		return &domain.ValidationError{Message: "Please fill all customer details!"}
	}
	if !req.Method.Valid() {
		return &domain.ValidationError{Message: fmt.Sprintf("Unsupported payment method: %s", req.Method)}
	}
	for _, item := range req.Cart {
		if item.ID == "" || item.Quantity < 1 {
			return &domain.ValidationError{Message: "Cart contains an invalid item"}
		}
	}
	if !domain.CartTotal(req.Cart).IsPositive() {
		return &domain.ValidationError{Message: "Invalid total amount!"}
	}
	if req.Principal.UserID == "" {
		return &domain.ValidationError{Message: "User not authenticated"}
	}
	return nil
}

// Checkout runs a checkout to completion. On the gateway path it initiates a
// payment and blocks until the gateway outcome arrives; a failed payment never
// reaches the stock loop.
func (s *Service) Checkout(ctx context.Context, req Request) (Result, error) {
	if err := Validate(req); err != nil {
		s.record(req.Method, err)
		return Result{}, err
	}
	paymentID := ""
	if req.Method == domain.PaymentMethodGateway {
		intent, err := s.gateway.Initiate(ctx, s.paymentRequest(req))
		if err != nil {
			s.record(req.Method, err)
			return Result{}, err
		}
		conf, err := s.gateway.Await(ctx, intent.ID)
		if err != nil {
			s.record(req.Method, err)
			return Result{}, err
		}
		paymentID = conf.PaymentID
	}
	return s.place(ctx, req, paymentID)
}

func (s *Service) paymentRequest(req Request) payment.Request {
	return payment.Request{
		Amount:   domain.ToMinorUnits(domain.CartTotal(req.Cart)),
		Customer: req.Customer,
		UserID:   req.Principal.UserID,
	}
}

// place runs the stock loop, persists the order and clears the cart.
func (s *Service) place(ctx context.Context, req Request, paymentID string) (Result, error) {
	log := s.logger.WithFields(logrus.Fields{"user_id": req.Principal.UserID, "payment_method": req.Method})

	for _, item := range req.Cart {
		product, err := s.catalog.GetProduct(ctx, item.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				err = &domain.StockError{ProductID: item.ID, Name: item.Name, Requested: item.Quantity, Missing: true}
			}
			log.WithError(err).WithField("product_id", item.ID).Warn("stock check failed")
			s.record(req.Method, err)
			return Result{}, err
		}
		if product.Stock < item.Quantity {
			err := &domain.StockError{ProductID: item.ID, Name: item.Name, Requested: item.Quantity, Available: product.Stock}
			log.WithError(err).WithField("product_id", item.ID).Warn("insufficient stock")
			s.record(req.Method, err)
			return Result{}, err
		}
		if err := s.catalog.UpdateStock(ctx, item.ID, product.Stock-item.Quantity); err != nil {
			log.WithError(err).WithField("product_id", item.ID).Error("stock decrement failed")
			s.record(req.Method, err)
			return Result{}, err
		}
		metrics.StockDecrementsTotal.Inc()
	}

	order := s.buildOrder(req, paymentID)
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		log.WithError(err).WithField("order_id", order.ID).Error("create order failed")
		s.record(req.Method, err)
		return Result{}, err
	}

	if err := s.cart.Clear(ctx, req.Principal.UserID, store.CollectionCart); err != nil {
		log.WithError(err).WithField("order_id", order.ID).Error("order placed but cart not cleared")
	}
	if err := s.events.PublishOrderPlaced(ctx, order); err != nil {
		log.WithError(err).WithField("order_id", order.ID).Warn("publish order event")
	}

	s.record(req.Method, nil)
	total, _ := order.Total().Float64()
	metrics.OrderAmount.Observe(total)
	log.WithFields(logrus.Fields{"order_id": order.ID, "amount": order.Amount}).Info("order placed")

	return Result{Order: order, Status: SuccessMessage(order)}, nil
}

func (s *Service) buildOrder(req Request, paymentID string) domain.Order {
	now := s.now()
	millis := strconv.FormatInt(now.UnixMilli(), 10)
	order := domain.Order{
		Items:         domain.LinesFromCart(req.Cart),
		Amount:        domain.ToMinorUnits(domain.CartTotal(req.Cart)),
		PaymentMethod: req.Method,
		Timestamp:     now.UTC(),
		UserID:        req.Principal.UserID,
		Customer:      req.Customer,
	}
	if req.Method == domain.PaymentMethodGateway {
		var advance int64
		order.ID = "ONLINE_" + millis + "_" + paymentID
		order.Status = domain.OrderStatusCompleted
		order.AdvanceAmount = &advance
	} else {
		order.ID = "COD_" + millis
		order.Status = domain.OrderStatusPending
	}
	return order
}

func (s *Service) record(method domain.PaymentMethod, err error) {
	metrics.CheckoutsTotal.WithLabelValues(string(method), outcome(err)).Inc()
}

func outcome(err error) string {
	var (
		verr *domain.ValidationError
		serr *domain.StockError
		gerr *domain.GatewayError
		nerr *domain.NetworkError
	)
	switch {
	case err == nil:
		return "placed"
	case errors.As(err, &verr):
		return "invalid"
	case errors.As(err, &serr):
		return "stock"
	case errors.As(err, &gerr):
		return "gateway"
	case errors.As(err, &nerr):
		return "network"
	default:
		return "error"
	}
}
