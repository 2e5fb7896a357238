package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/backend"
	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (h *handlers) createProduct(c *gin.Context) {
	in, image, err := bindProduct(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if image != nil {
		defer image.Close()
	}
	p, err := h.catalog.CreateProduct(c.Request.Context(), in, image.toBackend())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *handlers) updateProduct(c *gin.Context) {
	in, image, err := bindProduct(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if image != nil {
		defer image.Close()
	}
	p, err := h.catalog.UpdateProduct(c.Request.Context(), c.Param("id"), in, image.toBackend())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) deleteProduct(c *gin.Context) {
	if err := h.catalog.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type uploadedImage struct {
	backend.Image
	close func() error
}

func (u *uploadedImage) Close() error {
	return u.close()
}

func (u *uploadedImage) toBackend() *backend.Image {
	if u == nil {
		return nil
	}
	return &u.Image
}

// bindProduct accepts either a JSON body or the multipart form the admin
// screen posts, where sizes are comma separated and "image" is optional.
func bindProduct(c *gin.Context) (domain.ProductInput, *uploadedImage, error) {
	var in domain.ProductInput
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBindJSON(&in); err != nil {
			return in, nil, errors.New("invalid product body")
		}
		return in, nil, nil
	}

	in.Name = c.PostForm("productName")
	in.Description = c.PostForm("description")
	in.Category = c.PostForm("category")
	in.ImagePath = c.PostForm("imagePath")
	for _, s := range strings.Split(c.PostForm("sizes"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			in.Sizes = append(in.Sizes, s)
		}
	}

	price, err := decimal.NewFromString(strings.TrimSpace(c.PostForm("price")))
	if err != nil {
		return in, nil, fmt.Errorf("invalid price %q", c.PostForm("price"))
	}
	in.Price = price

	if raw := strings.TrimSpace(c.PostForm("stockAvailable")); raw != "" {
		stock, err := strconv.Atoi(raw)
		if err != nil {
			return in, nil, fmt.Errorf("invalid stockAvailable %q", raw)
		}
		in.Stock = stock
	}
	if raw := strings.TrimSpace(c.PostForm("rating")); raw != "" {
		rating, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return in, nil, fmt.Errorf("invalid rating %q", raw)
		}
		in.Rating = &rating
	}

	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil, nil
	}
	if err != nil {
		return in, nil, errors.New("invalid image upload")
	}
	f, err := fh.Open()
	if err != nil {
		return in, nil, errors.New("invalid image upload")
	}
	return in, &uploadedImage{Image: backend.Image{Filename: fh.Filename, Reader: f}, close: f.Close}, nil
}
