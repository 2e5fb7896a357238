package catalog

import (
	"sort"
	"strings"

	"storefront/internal/domain"
)

type SortOrder string

const (
	SortNone      SortOrder = ""
	SortPriceAsc  SortOrder = "low-to-high"
	SortPriceDesc SortOrder = "high-to-low"
	SortRating    SortOrder = "top-rating"
)

// AllCategories selects every category.
const AllCategories = "all"

// Query filters and orders a product list for display.
type Query struct {
	Category string
	Sort     SortOrder
	Search   string
}

// Apply returns the products matching q in the requested order. The input is
// not modified.
func Apply(products []domain.Product, q Query) []domain.Product {
	category := strings.ToLower(strings.TrimSpace(q.Category))
	search := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if category != "" && category != AllCategories && strings.ToLower(p.Category) != category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		out = append(out, p)
	}

	switch q.Sort {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.GreaterThan(out[j].Price) })
	case SortRating:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].Rating, out[j].Rating
			switch {
			case a == nil:
				return false
			case b == nil:
				return true
			default:
				return *a > *b
			}
		})
	}
	return out
}

// Categories lists the distinct categories in first-seen order, preceded by "all".
func Categories(products []domain.Product) []string {
	seen := map[string]struct{}{}
	out := []string{AllCategories}
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

// ValidSort reports whether s is a supported sort order.
func ValidSort(s SortOrder) bool {
	switch s {
	case SortNone, SortPriceAsc, SortPriceDesc, SortRating:
		return true
	}
	return false
}
