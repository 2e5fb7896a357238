package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/repository/localstate"

	"github.com/sirupsen/logrus"
)

// Collection names the two durable entries kept per session.
type Collection string

const (
	CollectionCart     Collection = "cart"
	CollectionWishlist Collection = "wishlist"
)

// Valid reports whether c names a known collection.
func (c Collection) Valid() bool {
	return c == CollectionCart || c == CollectionWishlist
}

// Service is the cart and wishlist store. Every read decodes the persisted entry
// and every mutation rewrites the whole collection, so all callers observe the
// same state. Read-modify-write operations are serialized per session.
type Service struct {
	repo   localstate.Repository
	logger logrus.FieldLogger

	mu    sync.Mutex
	locks map[string]*sessionLock
}

// sessionLock is dropped from Service.locks once no caller holds or waits on it.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func New(repo localstate.Repository, logger logrus.FieldLogger) *Service {
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	return &Service{
		repo:   repo,
		logger: logger.WithField("component", "store"),
		locks:  make(map[string]*sessionLock),
	}
}

func (s *Service) lock(session string) func() {
	s.mu.Lock()
	l, ok := s.locks[session]
	if !ok {
		l = &sessionLock{}
		s.locks[session] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, session)
		}
		s.mu.Unlock()
	}
}

// GetCart returns the session cart. A missing or corrupt entry reads as empty.
func (s *Service) GetCart(ctx context.Context, session string) ([]domain.CartItem, error) {
	return readCollection[domain.CartItem](ctx, s, session, CollectionCart)
}

// SetCart overwrites the session cart. Items with a quantity below one are dropped.
func (s *Service) SetCart(ctx context.Context, session string, items []domain.CartItem) error {
	defer s.lock(session)()
	return s.writeCart(ctx, session, items)
}

// GetWishlist returns the session wishlist. A missing or corrupt entry reads as empty.
func (s *Service) GetWishlist(ctx context.Context, session string) ([]domain.WishlistItem, error) {
	return readCollection[domain.WishlistItem](ctx, s, session, CollectionWishlist)
}

// SetWishlist overwrites the session wishlist, keeping the first entry per product id.
func (s *Service) SetWishlist(ctx context.Context, session string, items []domain.WishlistItem) error {
	defer s.lock(session)()
	return s.writeWishlist(ctx, session, items)
}

// Clear removes one collection entirely.
func (s *Service) Clear(ctx context.Context, session string, which Collection) error {
	if !which.Valid() {
		return &domain.ValidationError{Message: fmt.Sprintf("unknown collection %q", which)}
	}
	defer s.lock(session)()
	if err := s.repo.Delete(ctx, session, string(which)); err != nil {
		return fmt.Errorf("clear %s: %w", which, err)
	}
	return nil
}

// AddToCart increments the quantity of an existing entry or appends the product
// with quantity one.
func (s *Service) AddToCart(ctx context.Context, session string, product domain.Product) ([]domain.CartItem, error) {
	if product.ID == "" {
		return nil, &domain.ValidationError{Message: "product id is required"}
	}
	return s.mutateCart(ctx, session, func(items []domain.CartItem) []domain.CartItem {
		for i := range items {
			if items[i].ID == product.ID {
				items[i].Quantity++
				return items
			}
		}
		return append(items, domain.CartItem{Product: product, Quantity: 1})
	})
}

// RemoveFromCart drops the entry for productID. Unknown ids are a no-op.
func (s *Service) RemoveFromCart(ctx context.Context, session, productID string) ([]domain.CartItem, error) {
	return s.mutateCart(ctx, session, func(items []domain.CartItem) []domain.CartItem {
		out := items[:0]
		for _, item := range items {
			if item.ID != productID {
				out = append(out, item)
			}
		}
		return out
	})
}

// RemoveOne takes a single unit off an entry, dropping it when none remain.
func (s *Service) RemoveOne(ctx context.Context, session, productID string) ([]domain.CartItem, error) {
	return s.mutateCart(ctx, session, func(items []domain.CartItem) []domain.CartItem {
		for i := range items {
			if items[i].ID == productID {
				items[i].Quantity--
			}
		}
		return items
	})
}

// UpdateQuantity adjusts an entry by delta, never going below one.
func (s *Service) UpdateQuantity(ctx context.Context, session, productID string, delta int) ([]domain.CartItem, error) {
	return s.mutateCart(ctx, session, func(items []domain.CartItem) []domain.CartItem {
		for i := range items {
			if items[i].ID == productID {
				items[i].Quantity = max(1, items[i].Quantity+delta)
			}
		}
		return items
	})
}

// AddToWishlist appends the product unless an entry with the same id exists.
func (s *Service) AddToWishlist(ctx context.Context, session string, product domain.Product) ([]domain.WishlistItem, error) {
	if product.ID == "" {
		return nil, &domain.ValidationError{Message: "product id is required"}
	}
	defer s.lock(session)()
	items, err := s.GetWishlist(ctx, session)
	if err != nil {
		return nil, err
	}
	items = append(items, product)
	if err := s.writeWishlist(ctx, session, items); err != nil {
		return nil, err
	}
	return s.GetWishlist(ctx, session)
}

// RemoveFromWishlist drops the entry for productID. Unknown ids are a no-op.
func (s *Service) RemoveFromWishlist(ctx context.Context, session, productID string) ([]domain.WishlistItem, error) {
	defer s.lock(session)()
	items, err := s.GetWishlist(ctx, session)
	if err != nil {
		return nil, err
	}
	out := items[:0]
	for _, item := range items {
		if item.ID != productID {
			out = append(out, item)
		}
	}
	if err := s.writeWishlist(ctx, session, out); err != nil {
		return nil, err
	}
	return s.GetWishlist(ctx, session)
}

func (s *Service) mutateCart(ctx context.Context, session string, fn func([]domain.CartItem) []domain.CartItem) ([]domain.CartItem, error) {
	defer s.lock(session)()
	items, err := s.GetCart(ctx, session)
	if err != nil {
		return nil, err
	}
	if err := s.writeCart(ctx, session, fn(items)); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, session)
}

func (s *Service) writeCart(ctx context.Context, session string, items []domain.CartItem) error {
	kept := make([]domain.CartItem, 0, len(items))
	for _, item := range items {
		if item.Quantity >= 1 {
			kept = append(kept, item)
		}
	}
	return s.write(ctx, session, CollectionCart, kept)
}

func (s *Service) writeWishlist(ctx context.Context, session string, items []domain.WishlistItem) error {
	seen := make(map[string]struct{}, len(items))
	kept := make([]domain.WishlistItem, 0, len(items))
	for _, item := range items {
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		kept = append(kept, item)
	}
	return s.write(ctx, session, CollectionWishlist, kept)
}

func readCollection[T any](ctx context.Context, s *Service, session string, which Collection) ([]T, error) {
	raw, err := s.repo.Get(ctx, session, string(which))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", which, err)
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{"session": session, "collection": which}).
			Warn("discarding corrupt entry")
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (s *Service) write(ctx context.Context, session string, which Collection, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", which, err)
	}
	if err := s.repo.Put(ctx, session, string(which), raw); err != nil {
		return fmt.Errorf("write %s: %w", which, err)
	}
	return nil
}
