package domain

import (
	"encoding/json"
	"testing"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

func TestCartTotal(t *testing.T) {
	items := []CartItem{
		{Product: Product{ID: "a", Price: decimal.NewFromInt(100)}, Quantity: 2},
		{Product: Product{ID: "b", Price: decimal.NewFromInt(50)}, Quantity: 1},
	}
	total := CartTotal(items)
	if !total.Equal(decimal.RequireFromString("250.00")) {
		t.Fatalf("expected total 250.00, got %s", total)
	}
	if got := ToMinorUnits(total); got != 25000 {
		t.Fatalf("expected 25000 minor units, got %d", got)
	}
}

func TestMinorUnitsRoundTrip(t *testing.T) {
	amount := decimal.RequireFromString("19.99")
	if got := ToMinorUnits(amount); got != 1999 {
		t.Fatalf("expected 1999, got %d", got)
	}
	if got := FromMinorUnits(1999); !got.Equal(amount) {
		t.Fatalf("expected 19.99, got %s", got)
	}
}

func TestCanonicalCategory(t *testing.T) {
	cases := map[string]string{
		"eletronics":     "Electronics",
		"ELETRONICS":     "Electronics",
		"fansy":          "Fancy",
		"birthdayspary":  "Birthday Spray",
		"Birthday Spray": "Birthday Spray",
		"Shoes":          "Shoes",
		"SAREE":          "Saree",
		"électronique":   "Électronique",
		"ÉCHARPE":        "Écharpe",
		"ñandú":          "Ñandú",
		"":               "",
	}
	for in, want := range cases {
		got := CanonicalCategory(in)
		if got != want {
			t.Fatalf("CanonicalCategory(%q) = %q, want %q", in, got, want)
		}
		if !utf8.ValidString(got) {
			t.Fatalf("CanonicalCategory(%q) produced invalid UTF-8 %q", in, got)
		}
		if again := CanonicalCategory(CanonicalCategory(in)); again != want {
			t.Fatalf("CanonicalCategory not idempotent for %q: %q", in, again)
		}
	}
}

func TestProductJSONKeepsAbsentRating(t *testing.T) {
	raw, err := json.Marshal(Product{ID: "p1", Price: decimal.NewFromInt(10)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v, ok := decoded["rating"]; !ok || v != nil {
		t.Fatalf("expected explicit null rating, got %v", decoded["rating"])
	}
	if _, ok := decoded["price"].(float64); !ok {
		t.Fatalf("expected numeric price, got %T", decoded["price"])
	}
}

func TestProductInputValidate(t *testing.T) {
	five := 5.0
	six := 6.0
	valid := ProductInput{Name: "Mug", Category: "Home", Price: decimal.NewFromInt(10), Stock: 3, Rating: &five}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}
	bad := valid
	bad.Rating = &six
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected rating error")
	}
	bad = valid
	bad.Price = decimal.Zero
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected price error")
	}
}

func TestOrderUnmarshalRoundsFractionalAmounts(t *testing.T) {
	var orders []Order
	raw := `[
		{"paymentId":"ONLINE_1_pay","amount":1998.9999999999998,"advanceAmount":0,"paymentMethod":"razorpay"},
		{"paymentId":"COD_2","amount":"2500.5","paymentMethod":"cash_on_delivery"},
		{"paymentId":"COD_3","amount":10000,"paymentMethod":"cash_on_delivery"}
	]`
	if err := json.Unmarshal([]byte(raw), &orders); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(orders))
	}
	if orders[0].Amount != 1999 || orders[0].ID != "ONLINE_1_pay" || orders[0].PaymentMethod != PaymentMethodGateway {
		t.Fatalf("unexpected first order %+v", orders[0])
	}
	if orders[0].AdvanceAmount == nil || *orders[0].AdvanceAmount != 0 {
		t.Fatalf("expected advance amount 0, got %v", orders[0].AdvanceAmount)
	}
	if orders[1].Amount != 2501 || orders[1].AdvanceAmount != nil {
		t.Fatalf("unexpected second order %+v", orders[1])
	}
	if orders[2].Amount != 10000 {
		t.Fatalf("expected 10000, got %d", orders[2].Amount)
	}
}
