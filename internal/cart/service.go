package cart

import (
	"context"

	"storefront/internal/domain"
)

// Service applies cart mutations as read-modify-write against a Store
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, userID int64) (*domain.Cart, error) {
	return s.store.Get(ctx, userID)
}

func (s *Service) Add(ctx context.Context, userID int64, product domain.Product, quantity int) (*domain.Cart, error) {
	c, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := c.AddItem(product, quantity); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, userID, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Remove(ctx context.Context, userID int64, productID int64) (*domain.Cart, error) {
	c, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	before := len(c.Items)
	c.RemoveItem(productID)
	if len(c.Items) == before {
		return c, nil
	}

	if c.IsEmpty() {
		err = s.store.Clear(ctx, userID)
	} else {
		err = s.store.Save(ctx, userID, c)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Clear(ctx context.Context, userID int64) error {
	return s.store.Clear(ctx, userID)
}
