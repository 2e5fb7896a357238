package httpserver

import (
	"net/http"

	"storefront/internal/service/orders"

	"github.com/gin-gonic/gin"
)

func (h *handlers) myOrders(c *gin.Context) {
	h.listOrders(c, orders.ForUser(principal(c).UserID))
}

func (h *handlers) myReport(c *gin.Context) {
	h.report(c, orders.ForUser(principal(c).UserID))
}

func (h *handlers) allOrders(c *gin.Context) {
	h.listOrders(c, orders.All)
}

func (h *handlers) allReport(c *gin.Context) {
	h.report(c, orders.All)
}

func (h *handlers) listOrders(c *gin.Context, scope orders.Scope) {
	list, err := h.orders.FetchOrders(c.Request.Context(), scope)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(list), "results": list})
}

func (h *handlers) report(c *gin.Context, scope orders.Scope) {
	r, err := h.orders.Report(c.Request.Context(), scope)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}
