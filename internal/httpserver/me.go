package httpserver

import (
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/service/store"

	"github.com/gin-gonic/gin"
)

type productRef struct {
	ProductID string `json:"productId" binding:"required"`
}

type quantityRequest struct {
	Delta int `json:"delta" binding:"required"`
}

func cartResponse(items []domain.CartItem) gin.H {
	return gin.H{"items": items, "total": domain.CartTotal(items)}
}

func (h *handlers) getCart(c *gin.Context) {
	items, err := h.store.GetCart(c.Request.Context(), principal(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(items))
}

// replaceCart keeps the submitted quantities but refreshes each product from
// the catalog.
func (h *handlers) replaceCart(c *gin.Context) {
	var items []domain.CartItem
	if err := c.ShouldBindJSON(&items); err != nil {
		badRequest(c, "invalid cart body")
		return
	}
	ctx := c.Request.Context()
	for i := range items {
		product, err := h.catalog.GetProduct(ctx, items[i].ID)
		if err != nil {
			h.respondError(c, err)
			return
		}
		items[i].Product = product
	}
	userID := principal(c).UserID
	if err := h.store.SetCart(ctx, userID, items); err != nil {
		h.respondError(c, err)
		return
	}
	stored, err := h.store.GetCart(ctx, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(stored))
}

func (h *handlers) clearCollection(which store.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.store.Clear(c.Request.Context(), principal(c).UserID, which); err != nil {
			h.respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// addCartItem snapshots the current catalog record rather than trusting a
// client-supplied price.
func (h *handlers) addCartItem(c *gin.Context) {
	var ref productRef
	if err := c.ShouldBindJSON(&ref); err != nil {
		badRequest(c, "productId is required")
		return
	}
	ctx := c.Request.Context()
	product, err := h.catalog.GetProduct(ctx, ref.ProductID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	items, err := h.store.AddToCart(ctx, principal(c).UserID, product)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(items))
}

func (h *handlers) updateCartItem(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "delta is required")
		return
	}
	items, err := h.store.UpdateQuantity(c.Request.Context(), principal(c).UserID, c.Param("id"), req.Delta)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(items))
}

func (h *handlers) removeCartItem(c *gin.Context) {
	items, err := h.store.RemoveFromCart(c.Request.Context(), principal(c).UserID, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(items))
}

func (h *handlers) removeOneCartItem(c *gin.Context) {
	items, err := h.store.RemoveOne(c.Request.Context(), principal(c).UserID, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(items))
}

func (h *handlers) getWishlist(c *gin.Context) {
	items, err := h.store.GetWishlist(c.Request.Context(), principal(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *handlers) addWishlistItem(c *gin.Context) {
	var ref productRef
	if err := c.ShouldBindJSON(&ref); err != nil {
		badRequest(c, "productId is required")
		return
	}
	ctx := c.Request.Context()
	product, err := h.catalog.GetProduct(ctx, ref.ProductID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	items, err := h.store.AddToWishlist(ctx, principal(c).UserID, product)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *handlers) removeWishlistItem(c *gin.Context) {
	items, err := h.store.RemoveFromWishlist(c.Request.Context(), principal(c).UserID, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
