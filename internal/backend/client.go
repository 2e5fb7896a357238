package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/metrics"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// Image is an optional product image uploaded with create and update calls.
type Image struct {
	Filename string
	Reader   io.Reader
}

// Client talks to the REST backend. Calls are never retried automatically;
// transport failures, 5xx responses and an open circuit surface as
// domain.NetworkError.
type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
	logger  logrus.FieldLogger
}

func New(baseURL string, timeout time.Duration, logger logrus.FieldLogger) *Client {
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	logger = logger.WithField("component", "backend")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "backend",
		MaxRequests: 3,
		Interval:    15 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BackendBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			logger.WithFields(logrus.Fields{"circuit": name, "from": from.String(), "to": to.String()}).
				Warn("circuit breaker state changed")
		},
	})
	metrics.BackendBreakerState.WithLabelValues("backend").Set(0)

	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(timeout).
			SetRetryCount(0).
			SetHeader("Accept", "application/json"),
		breaker: breaker,
		logger:  logger,
	}
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}

// do runs one request through the circuit breaker. Responses below 500 are
// returned to the caller for status handling.
func (c *Client) do(ctx context.Context, op string, send func(*resty.Request) (*resty.Response, error)) (*resty.Response, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := send(c.http.R().SetContext(ctx))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			return nil, &domain.NetworkError{Op: op, StatusCode: resp.StatusCode()}
		}
		return resp, nil
	})
	if err != nil {
		metrics.BackendFailures.WithLabelValues(op).Inc()
		c.logger.WithError(err).WithField("op", op).Warn("backend call failed")
		var netErr *domain.NetworkError
		if errors.As(err, &netErr) {
			return nil, netErr
		}
		return nil, &domain.NetworkError{Op: op, Err: err}
	}
	return out.(*resty.Response), nil
}

func expectOK(op string, resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	if resp.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	metrics.BackendFailures.WithLabelValues(op).Inc()
	return &domain.NetworkError{Op: op, StatusCode: resp.StatusCode()}
}

func decode(op string, resp *resty.Response, dst interface{}) error {
	if err := json.Unmarshal(resp.Body(), dst); err != nil {
		return &domain.NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// ListProducts returns every product record.
func (c *Client) ListProducts(ctx context.Context) ([]ProductRecord, error) {
	const op = "list products"
	resp, err := c.do(ctx, op, func(r *resty.Request) (*resty.Response, error) {
		return r.Get("/api/products")
	})
	if err != nil {
		return nil, err
	}
	if err := expectOK(op, resp); err != nil {
		return nil, err
	}
	var records []ProductRecord
	if err := decode(op, resp, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// GetProduct returns one product record or domain.ErrNotFound.
func (c *Client) GetProduct(ctx context.Context, id string) (*ProductRecord, error) {
	const op = "get product"
	resp, err := c.do(ctx, op, func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("id", id).Get("/api/products/{id}")
	})
	if err != nil {
		return nil, err
	}
	if err := expectOK(op, resp); err != nil {
		return nil, err
	}
	var record ProductRecord
	if err := decode(op, resp, &record); err != nil {
		return nil, err
	}
	if record.ID == "" {
		return nil, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return &record, nil
}

// CreateProduct posts a multipart product form.
func (c *Client) CreateProduct(ctx context.Context, in domain.ProductInput, image *Image) (*ProductRecord, error) {
	const op = "create product"
	resp, err := c.do(ctx, op, func(r *resty.Request) (*resty.Response, error) {
		return productForm(r, in, image).Post("/api/products")
	})
	if err != nil {
		return nil, err
	}
	if err := expectOK(op, resp); err != nil {
		return nil, err
	}
	var record ProductRecord
	if err := decode(op, resp, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateProduct replaces a product with a multipart form. Without an image the
// current imagePath is sent back unchanged.
func (c *Client) UpdateProduct(ctx context.Context, id string, in domain.ProductInput, image *Image) (*ProductRecord, error) {
	const op = "update product"
	resp, err := c.do(ctx, op, func(r *resty.Request) (*resty.Response, error) {
		return productForm(r, in, image).SetPathParam("id", id).Put("/api/products/{id}")
	})
	if err != nil {
		return nil, err
	}
	if err := expectOK(op, resp); err != nil {
		return nil, err
	}
	var record ProductRecord
	if err := decode(op, resp, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func productForm(r *resty.Request, in domain.ProductInput, image *Image) *resty.Request {
	fields := map[string]string{
		"productName":    in.Name,
		"description":    in.Description,
		"price":          in.Price.String(),
		"stockAvailable": strconv.Itoa(in.Stock),
		"category":       in.Category,
		"sizes":          strings.Join(in.Sizes, ","),
	}
	if in.Rating != nil {
		fields["rating"] = strconv.FormatFloat(*in.Rating, 'f', -1, 64)
	}
	if image != nil {
		r.SetFileReader("image", image.Filename, image.Reader)
	} else if in.ImagePath != "" {
		fields["imagePath"] = in.ImagePath
	}
	return r.SetMultipartFormData(fields)
}

// UpdateStock sets the stock count with a JSON partial update.
func (c *Client) UpdateStock(ctx context.Context, id string, stock int) error {
	const op = "update stock"
	resp, err := c.do(ctx, op, func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("id", id).
			SetHeader("Content-Type", "application/json").
			SetBody(map[string]int{"stockAvailable": stock}).
			Put("/api/products/{id}")
	})
	if err != nil {
		return err
	}
	return expectOK(op, resp)
}

// DeleteProduct removes a product.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	const op = "delete product"
	resp, err := c.do(ctx, op, func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("id", id).Delete("/api/products/{id}")
	})
	if err != nil {
		return err
	}
	return expectOK(op, resp)
}

// ListOrders returns every order.
func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return c.listOrders(ctx, "list orders", "/api/orders", nil)
}

// ListOrdersByUser returns the orders placed by one user.
func (c *Client) ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return c.listOrders(ctx, "list user orders", "/api/orders/user/{userId}", map[string]string{"userId": userID})
}

func (c *Client) listOrders(ctx context.Context, op, path string, params map[string]string) ([]domain.Order, error) {
	resp, err := c.do(ctx, op, func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParams(params).Get(path)
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return []domain.Order{}, nil
	}
	if err := expectOK(op, resp); err != nil {
		return nil, err
	}
	orders := []domain.Order{}
	if err := decode(op, resp, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// CreateOrder persists an order record.
func (c *Client) CreateOrder(ctx context.Context, order domain.Order) error {
	const op = "create order"
	resp, err := c.do(ctx, op, func(r *resty.Request) (*resty.Response, error) {
		return r.SetHeader("Content-Type", "application/json").SetBody(order).Post("/api/orders")
	})
	if err != nil {
		return err
	}
	return expectOK(op, resp)
}
