package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 2*time.Second, nil)
}

func TestListProducts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/products" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"_id":"p1","productName":"Lamp","price":"499","rating":4.5,"stockAvailable":3,"category":"eletronics","sizes":["S"]}]`)
	})

	records, err := client.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(records) != 1 || records[0].ID != "p1" || records[0].Category != "eletronics" {
		t.Fatalf("unexpected records: %+v", records)
	}
	if string(records[0].Price) != `"499"` {
		t.Fatalf("expected raw price to be preserved, got %s", records[0].Price)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	_, err := client.GetProduct(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestServerErrorIsNetworkError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := client.ListOrders(context.Background())
	var netErr *domain.NetworkError
	if !errors.As(err, &netErr) || netErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected NetworkError with status 502, got %v", err)
	}
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	client := New("http://127.0.0.1:1", 200*time.Millisecond, nil)
	err := client.UpdateStock(context.Background(), "p1", 3)
	var netErr *domain.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestUpdateStock_SendsJSONPartialUpdate(t *testing.T) {
	var got map[string]int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/products/p1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			t.Errorf("expected json body, got %s", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	})
	if err := client.UpdateStock(context.Background(), "p1", 7); err != nil {
		t.Fatalf("update stock: %v", err)
	}
	if got["stockAvailable"] != 7 {
		t.Fatalf("expected stockAvailable 7, got %+v", got)
	}
}

func TestCreateProduct_SendsMultipartForm(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if r.FormValue("productName") != "Mug" || r.FormValue("sizes") != "S,M" || r.FormValue("price") != "12.5" {
			t.Errorf("unexpected form: %+v", r.MultipartForm.Value)
		}
		if _, ok := r.MultipartForm.Value["rating"]; ok {
			t.Errorf("absent rating must not be sent")
		}
		if _, _, err := r.FormFile("image"); err != nil {
			t.Errorf("expected image part: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"_id":"new-id","productName":"Mug"}`)
	})
	in := domain.ProductInput{
		Name:     "Mug",
		Price:    decimal.RequireFromString("12.5"),
		Stock:    4,
		Category: "Home",
		Sizes:    []string{"S", "M"},
	}
	record, err := client.CreateProduct(context.Background(), in, &Image{Filename: "mug.png", Reader: strings.NewReader("png")})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if record.ID != "new-id" {
		t.Fatalf("expected created id, got %+v", record)
	}
}

func TestCreateOrder_PostsWireFields(t *testing.T) {
	var body map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/orders" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	})
	order := domain.Order{
		ID:            "COD_1",
		Amount:        25000,
		PaymentMethod: domain.PaymentMethodCOD,
		Status:        domain.OrderStatusPending,
		UserID:        "u1",
		Customer:      domain.CustomerDetails{Name: "A", Email: "a@example.com", Phone: "1", Address: "x"},
	}
	if err := client.CreateOrder(context.Background(), order); err != nil {
		t.Fatalf("create order: %v", err)
	}
	if body["paymentId"] != "COD_1" || body["paymentMethod"] != "cash_on_delivery" || body["amount"].(float64) != 25000 {
		t.Fatalf("unexpected order body: %+v", body)
	}
	customer := body["customer"].(map[string]interface{})
	if customer["contact"] != "1" {
		t.Fatalf("expected customer contact field, got %+v", customer)
	}
}

func TestListOrdersByUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/orders/user/u-42" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `[{"paymentId":"COD_1","amount":10000,"paymentMethod":"cash_on_delivery","status":"Pending","timestamp":"2024-03-01T10:00:00.000Z","userId":"u-42"}]`)
	})
	orders, err := client.ListOrdersByUser(context.Background(), "u-42")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orders) != 1 || orders[0].Amount != 10000 || orders[0].Timestamp.IsZero() {
		t.Fatalf("unexpected orders: %+v", orders)
	}
}

func TestListOrders_FractionalLegacyAmount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[
			{"paymentId":"ONLINE_1709289000000_pay_1","amount":1998.9999999999998,"paymentMethod":"razorpay","status":"Completed (Fully Paid)","timestamp":"2024-03-01T10:00:00.000Z","userId":"u-1"},
			{"paymentId":"COD_1709289000001","amount":5000,"paymentMethod":"cash_on_delivery","status":"Pending","timestamp":"2024-03-01T11:00:00.000Z","userId":"u-2"}
		]`)
	})
	orders, err := client.ListOrders(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected both orders, got %+v", orders)
	}
	if orders[0].Amount != 1999 || orders[1].Amount != 5000 {
		t.Fatalf("unexpected amounts %d %d", orders[0].Amount, orders[1].Amount)
	}
}
