package httpserver

import (
	"errors"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/payment"
	"storefront/internal/service/checkout"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func errorStatus(err error) int {
	var (
		verr *domain.ValidationError
		serr *domain.StockError
		gerr *domain.GatewayError
		nerr *domain.NetworkError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.As(err, &serr):
		return http.StatusConflict
	case errors.As(err, &gerr):
		return http.StatusPaymentRequired
	case errors.As(err, &nerr):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, checkout.ErrAttemptNotFound),
		errors.Is(err, payment.ErrUnknownIntent):
		return http.StatusNotFound
	case errors.Is(err, payment.ErrAlreadyResolved), errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func (h *handlers) respondError(c *gin.Context, err error) {
	h.writeError(c, err, gin.H{"error": err.Error()})
}

// respondCheckoutError adds the status line shown to the customer.
func (h *handlers) respondCheckoutError(c *gin.Context, err error) {
	h.writeError(c, err, gin.H{"error": err.Error(), "status": checkout.StatusMessage(err)})
}

func (h *handlers) writeError(c *gin.Context, err error, body gin.H) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError || status == http.StatusBadGateway {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"path":       c.FullPath(),
			"request_id": c.GetString(requestIDHeader),
		}).Error("request failed")
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
