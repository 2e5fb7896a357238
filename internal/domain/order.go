package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodGateway PaymentMethod = "razorpay"
	PaymentMethodCOD     PaymentMethod = "cash_on_delivery"
)

// Valid reports whether m is one of the supported payment methods.
func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodGateway || m == PaymentMethodCOD
}

type OrderStatus string

const (
	OrderStatusCompleted OrderStatus = "Completed (Fully Paid)"
	OrderStatusPending   OrderStatus = "Pending"
)

// OrderLine is a point-in-time snapshot of a purchased product.
type OrderLine struct {
	ProductID string          `json:"_id"`
	Name      string          `json:"productName"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Order is created once by checkout and never mutated afterwards.
// Amount is in minor currency units.
type Order struct {
	ID            string          `json:"paymentId"`
	Items         []OrderLine     `json:"items"`
	Amount        int64           `json:"amount"`
	AdvanceAmount *int64          `json:"advanceAmount,omitempty"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Status        OrderStatus     `json:"status"`
	Timestamp     time.Time       `json:"timestamp"`
	UserID        string          `json:"userId"`
	Customer      CustomerDetails `json:"customer"`
}

// UnmarshalJSON accepts fractional amounts, which older clients wrote by
// multiplying a float total by 100, and rounds them to whole minor units.
func (o *Order) UnmarshalJSON(data []byte) error {
	type plain Order
	aux := struct {
		*plain
		Amount        decimal.Decimal  `json:"amount"`
		AdvanceAmount *decimal.Decimal `json:"advanceAmount"`
	}{plain: (*plain)(o)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	o.Amount = aux.Amount.Round(0).IntPart()
	o.AdvanceAmount = nil
	if aux.AdvanceAmount != nil {
		advance := aux.AdvanceAmount.Round(0).IntPart()
		o.AdvanceAmount = &advance
	}
	return nil
}

// Total returns the order amount in major units.
func (o Order) Total() decimal.Decimal {
	return FromMinorUnits(o.Amount)
}

// LinesFromCart snapshots cart items into order lines.
func LinesFromCart(items []CartItem) []OrderLine {
	lines := make([]OrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, OrderLine{
			ProductID: item.ID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return lines
}
