package httpserver

import (
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/payment"
	"storefront/internal/service/checkout"

	"github.com/gin-gonic/gin"
)

type checkoutRequest struct {
	PaymentMethod domain.PaymentMethod   `json:"paymentMethod"`
	Customer      domain.CustomerDetails `json:"customer"`
}

// startCheckout reads the cart from the store. Cash on delivery completes
// synchronously; gateway payments return the intent for the browser and finish
// once the callback arrives.
func (h *handlers) startCheckout(c *gin.Context) {
	var body checkoutRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid checkout body")
		return
	}
	ctx := c.Request.Context()
	p := principal(c)
	cart, err := h.store.GetCart(ctx, p.UserID)
	if err != nil {
		h.respondCheckoutError(c, err)
		return
	}
	req := checkout.Request{Principal: p, Cart: cart, Customer: body.Customer, Method: body.PaymentMethod}

	if body.PaymentMethod == domain.PaymentMethodGateway {
		intent, err := h.checkout.Begin(ctx, req)
		if err != nil {
			h.respondCheckoutError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"intent": intent, "status": checkout.ProcessingMessage})
		return
	}

	result, err := h.checkout.Checkout(ctx, req)
	if err != nil {
		h.respondCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *handlers) checkoutStatus(c *gin.Context) {
	attempt, err := h.checkout.Status(c.Param("intentId"), principal(c).UserID)
	if err != nil {
		h.respondCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, attempt)
}

func (h *handlers) checkoutCallback(c *gin.Context) {
	var out payment.Outcome
	if err := c.ShouldBindJSON(&out); err != nil {
		badRequest(c, "invalid callback body")
		return
	}
	if out.PaymentID == "" && out.ErrorCode == "" && out.ErrorDescription == "" {
		badRequest(c, "paymentId or error is required")
		return
	}
	if err := h.checkout.Resolve(c.Param("intentId"), principal(c).UserID, out); err != nil {
		h.respondCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": checkout.ProcessingMessage})
}
