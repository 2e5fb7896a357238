package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"storefront/internal/backend"
	"storefront/internal/domain"

	"github.com/shopspring/decimal"
)

var errInvalidRecord = errors.New("invalid product record")

// Normalize validates a backend record and converts it to a Product.
// Records without an id or name, or with an unreadable or negative price, are
// rejected. Negative stock is clamped to zero.
func Normalize(rec backend.ProductRecord) (domain.Product, error) {
	id := strings.TrimSpace(rec.ID)
	name := strings.TrimSpace(rec.Name)
	if id == "" {
		return domain.Product{}, fmt.Errorf("%w: missing id", errInvalidRecord)
	}
	if name == "" {
		return domain.Product{}, fmt.Errorf("%w: %s: missing name", errInvalidRecord, id)
	}

	price, err := parseDecimal(rec.Price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%w: %s: price: %v", errInvalidRecord, id, err)
	}
	if price.IsNegative() {
		return domain.Product{}, fmt.Errorf("%w: %s: negative price", errInvalidRecord, id)
	}

	stock, err := parseStock(rec.Stock)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%w: %s: stock: %v", errInvalidRecord, id, err)
	}

	return domain.Product{
		ID:          id,
		Name:        name,
		Description: rec.Description,
		Price:       price,
		Rating:      parseRating(rec.Rating),
		Stock:       stock,
		Category:    domain.CanonicalCategory(rec.Category),
		ImagePath:   rec.ImagePath,
		Sizes:       parseSizes(rec.Sizes),
	}, nil
}

// Renormalize applies the display rules to an already normalized product.
// It returns its input unchanged for products produced by Normalize.
func Renormalize(p domain.Product) domain.Product {
	p.Category = domain.CanonicalCategory(p.Category)
	if p.Sizes == nil {
		p.Sizes = []string{}
	}
	if p.Stock < 0 {
		p.Stock = 0
	}
	return p
}

func parseDecimal(raw json.RawMessage) (decimal.Decimal, error) {
	if backend.IsNull(raw) {
		return decimal.Zero, nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(raw); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

func parseStock(raw json.RawMessage) (int, error) {
	if backend.IsNull(raw) {
		return 0, nil
	}
	d, err := parseDecimal(raw)
	if err != nil {
		return 0, err
	}
	stock := int(d.IntPart())
	if stock < 0 {
		stock = 0
	}
	return stock, nil
}

// parseRating coerces numbers and numeric strings. Anything else is absent,
// never zero.
func parseRating(raw json.RawMessage) *float64 {
	if backend.IsNull(raw) {
		return nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return &v
		}
	}
	return nil
}

// parseSizes passes through a non-empty list. A comma separated string is split.
func parseSizes(raw json.RawMessage) []string {
	sizes := []string{}
	if backend.IsNull(raw) {
		return sizes
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		var joined string
		if err := json.Unmarshal(raw, &joined); err != nil {
			return sizes
		}
		list = strings.Split(joined, ",")
	}
	for _, size := range list {
		if size = strings.TrimSpace(size); size != "" {
			sizes = append(sizes, size)
		}
	}
	return sizes
}
