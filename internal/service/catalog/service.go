package catalog

import (
	"context"
	"fmt"
	"io"

	"storefront/internal/backend"
	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

type productBackend interface {
	ListProducts(ctx context.Context) ([]backend.ProductRecord, error)
	GetProduct(ctx context.Context, id string) (*backend.ProductRecord, error)
	CreateProduct(ctx context.Context, in domain.ProductInput, image *backend.Image) (*backend.ProductRecord, error)
	UpdateProduct(ctx context.Context, id string, in domain.ProductInput, image *backend.Image) (*backend.ProductRecord, error)
	UpdateStock(ctx context.Context, id string, stock int) error
	DeleteProduct(ctx context.Context, id string) error
}

// Service fetches products from the backend and normalizes them at the boundary.
type Service struct {
	backend productBackend
	logger  logrus.FieldLogger
}

func New(b productBackend, logger logrus.FieldLogger) *Service {
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	return &Service{backend: b, logger: logger.WithField("component", "catalog")}
}

// FetchProducts returns every valid product. Invalid records are logged and skipped.
func (s *Service) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	records, err := s.backend.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(records))
	for _, rec := range records {
		p, err := Normalize(rec)
		if err != nil {
			s.logger.WithError(err).Warn("skipping product record")
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

// GetProduct returns one normalized product or domain.ErrNotFound.
func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	rec, err := s.backend.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	p, err := Normalize(*rec)
	if err != nil {
		s.logger.WithError(err).WithField("product_id", id).Warn("product record rejected")
		return domain.Product{}, fmt.Errorf("get product %s: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

// UpdateStock sets the remote stock count of a product.
func (s *Service) UpdateStock(ctx context.Context, id string, stock int) error {
	return s.backend.UpdateStock(ctx, id, stock)
}

// CreateProduct validates and creates a product.
func (s *Service) CreateProduct(ctx context.Context, in domain.ProductInput, image *backend.Image) (domain.Product, error) {
	if err := in.Validate(); err != nil {
		return domain.Product{}, err
	}
	rec, err := s.backend.CreateProduct(ctx, in, image)
	if err != nil {
		return domain.Product{}, err
	}
	s.logger.WithFields(logrus.Fields{"product_id": rec.ID, "name": in.Name}).Info("product created")
	return s.fromWrite(*rec, in), nil
}

// UpdateProduct validates and replaces a product.
func (s *Service) UpdateProduct(ctx context.Context, id string, in domain.ProductInput, image *backend.Image) (domain.Product, error) {
	if id == "" {
		return domain.Product{}, &domain.ValidationError{Message: "product id is required"}
	}
	if err := in.Validate(); err != nil {
		return domain.Product{}, err
	}
	rec, err := s.backend.UpdateProduct(ctx, id, in, image)
	if err != nil {
		return domain.Product{}, err
	}
	if rec.ID == "" {
		rec.ID = id
	}
	s.logger.WithField("product_id", id).Info("product updated")
	return s.fromWrite(*rec, in), nil
}

// DeleteProduct removes a product.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if id == "" {
		return &domain.ValidationError{Message: "product id is required"}
	}
	if err := s.backend.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.logger.WithField("product_id", id).Info("product deleted")
	return nil
}

// fromWrite prefers the record echoed by the backend and falls back to the
// submitted input when the echo is incomplete.
func (s *Service) fromWrite(rec backend.ProductRecord, in domain.ProductInput) domain.Product {
	if p, err := Normalize(rec); err == nil {
		return p
	}
	sizes := in.Sizes
	if sizes == nil {
		sizes = []string{}
	}
	return Renormalize(domain.Product{
		ID:          rec.ID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Rating:      in.Rating,
		Stock:       in.Stock,
		Category:    in.Category,
		ImagePath:   in.ImagePath,
		Sizes:       sizes,
	})
}
