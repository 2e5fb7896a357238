package orders

import (
	"context"
	"io"
	"sort"
	"time"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type orderSource interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error)
}

// Scope selects every order when UserID is empty, otherwise one user's orders.
type Scope struct {
	UserID string
}

// All is the administrative scope.
var All = Scope{}

// ForUser scopes to the orders of one user.
func ForUser(userID string) Scope {
	return Scope{UserID: userID}
}

type Service struct {
	source orderSource
	loc    *time.Location
	logger logrus.FieldLogger
}

// New builds the order view. Dates are bucketed in loc, or UTC when nil.
func New(source orderSource, loc *time.Location, logger logrus.FieldLogger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	return &Service{source: source, loc: loc, logger: logger.WithField("component", "orders")}
}

// FetchOrders returns the persisted orders in scope, unmodified.
func (s *Service) FetchOrders(ctx context.Context, scope Scope) ([]domain.Order, error) {
	if scope.UserID == "" {
		return s.source.ListOrders(ctx)
	}
	return s.source.ListOrdersByUser(ctx, scope.UserID)
}

// Report fetches the orders in scope and aggregates them.
func (s *Service) Report(ctx context.Context, scope Scope) (Report, error) {
	list, err := s.FetchOrders(ctx, scope)
	if err != nil {
		return Report{}, err
	}
	s.logger.WithFields(logrus.Fields{"user_id": scope.UserID, "orders": len(list)}).Debug("building report")
	return BuildReport(list, s.loc), nil
}

// DailyTotal is the summed order amount for one calendar date, in major units.
type DailyTotal struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
}

// Report is recomputed from the fetched orders on every call.
type Report struct {
	Orders          int                          `json:"orders"`
	TotalSpent      decimal.Decimal              `json:"totalSpent"`
	SalesByDate     []DailyTotal                 `json:"salesByDate"`
	ByPaymentMethod map[domain.PaymentMethod]int `json:"byPaymentMethod"`
	ByStatus        map[domain.OrderStatus]int   `json:"byStatus"`
}

// BuildReport aggregates orders for display.
func BuildReport(list []domain.Order, loc *time.Location) Report {
	byStatus := map[domain.OrderStatus]int{}
	for _, o := range list {
		byStatus[o.Status]++
	}
	return Report{
		Orders:          len(list),
		TotalSpent:      TotalSpent(list),
		SalesByDate:     SalesByDate(list, loc),
		ByPaymentMethod: CountByPaymentMethod(list),
		ByStatus:        byStatus,
	}
}

// SalesByDate sums amounts per calendar date of each order's timestamp in loc,
// ascending by date.
func SalesByDate(list []domain.Order, loc *time.Location) []DailyTotal {
	if loc == nil {
		loc = time.UTC
	}
	sums := map[string]decimal.Decimal{}
	for _, o := range list {
		day := o.Timestamp.In(loc).Format(time.DateOnly)
		sums[day] = sums[day].Add(o.Total())
	}
	out := make([]DailyTotal, 0, len(sums))
	for day, total := range sums {
		out = append(out, DailyTotal{Date: day, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// CountByPaymentMethod tallies orders per payment method. Both supported
// methods are always present.
func CountByPaymentMethod(list []domain.Order) map[domain.PaymentMethod]int {
	counts := map[domain.PaymentMethod]int{
		domain.PaymentMethodGateway: 0,
		domain.PaymentMethodCOD:     0,
	}
	for _, o := range list {
		counts[o.PaymentMethod]++
	}
	return counts
}

// TotalSpent sums every order amount in major units.
func TotalSpent(list []domain.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range list {
		total = total.Add(o.Total())
	}
	return total
}
