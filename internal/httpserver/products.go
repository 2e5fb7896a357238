package httpserver

import (
	"net/http"

	"storefront/internal/service/catalog"

	"github.com/gin-gonic/gin"
)

func (h *handlers) listProducts(c *gin.Context) {
	q := catalog.Query{
		Category: c.Query("category"),
		Sort:     catalog.SortOrder(c.Query("sort")),
		Search:   c.Query("q"),
	}
	if !catalog.ValidSort(q.Sort) {
		badRequest(c, "unsupported sort "+string(q.Sort))
		return
	}
	products, err := h.catalog.FetchProducts(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	results := catalog.Apply(products, q)
	c.JSON(http.StatusOK, gin.H{"count": len(results), "results": results})
}

func (h *handlers) getProduct(c *gin.Context) {
	p, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) listCategories(c *gin.Context) {
	products, err := h.catalog.FetchProducts(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": catalog.Categories(products)})
}
