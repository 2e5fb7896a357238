package checkout

import (
	"errors"
	"fmt"

	"storefront/internal/domain"
)

// ProcessingMessage is shown while a gateway payment is being settled.
const ProcessingMessage = "Processing payment..."

// SuccessMessage reports a placed order.
func SuccessMessage(order domain.Order) string {
	if order.PaymentMethod == domain.PaymentMethodCOD {
		return fmt.Sprintf("Order placed successfully! Order ID: %s. Payable on delivery: ₹%s", order.ID, order.Total().StringFixed(2))
	}
	return fmt.Sprintf("Order placed successfully! Order ID: %s. Payment completed.", order.ID)
}

// StatusMessage converts a checkout failure into the line shown to the customer.
func StatusMessage(err error) string {
	var (
		verr *domain.ValidationError
		gerr *domain.GatewayError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return verr.Message
	case errors.As(err, &gerr):
		return "Payment Failed: " + gerr.Message
	default:
		return "Error processing payment: " + err.Error()
	}
}
