package seed

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/backend"
	"storefront/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type catalog interface {
	FetchProducts(ctx context.Context) ([]domain.Product, error)
	CreateProduct(ctx context.Context, in domain.ProductInput, image *backend.Image) (domain.Product, error)
}

func rating(v float64) *float64 { return &v }

// Products is the demo catalog used for manual testing.
var Products = []domain.ProductInput{
	{
		Name:        "Wireless Headphones",
		Description: "Over-ear headphones with 30 hour battery",
		Price:       decimal.RequireFromString("2499.00"),
		Rating:      rating(4.4),
		Stock:       25,
		Category:    "Electronics",
	},
	{
		Name:        "Cotton Kurta",
		Description: "Hand block printed cotton kurta",
		Price:       decimal.RequireFromString("899.00"),
		Rating:      rating(4.1),
		Stock:       40,
		Category:    "Fashion",
		Sizes:       []string{"S", "M", "L", "XL"},
	},
	{
		Name:        "Party Popper Pack",
		Description: "Pack of 12 confetti poppers",
		Price:       decimal.RequireFromString("249.50"),
		Stock:       100,
		Category:    "Birthday Spray",
	},
	{
		Name:        "Ceramic Mug",
		Description: "350ml mug, dishwasher safe",
		Price:       decimal.RequireFromString("199.00"),
		Rating:      rating(3.8),
		Stock:       0,
		Category:    "Home",
	},
}

// Apply creates the demo products that are not in the catalog yet, matching by
// name. It returns how many were created.
func Apply(ctx context.Context, c catalog, logger logrus.FieldLogger) (int, error) {
	existing, err := c.FetchProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch products: %w", err)
	}
	seen := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		seen[strings.ToLower(p.Name)] = struct{}{}
	}

	created := 0
	for _, in := range Products {
		if _, ok := seen[strings.ToLower(in.Name)]; ok {
			continue
		}
		p, err := c.CreateProduct(ctx, in, nil)
		if err != nil {
			return created, fmt.Errorf("create product %s: %w", in.Name, err)
		}
		created++
		if logger != nil {
			logger.WithFields(logrus.Fields{"id": p.ID, "name": p.Name}).Info("seeded product")
		}
	}
	return created, nil
}
