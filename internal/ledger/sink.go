// Package ledger records completed orders.
package ledger

import (
	"context"

	"storefront/internal/domain"
)

// Sink appends one record per order. Records are never updated or deleted.
type Sink interface {
	Save(ctx context.Context, order *domain.Order) error
}

// MultiSink writes to each sink in order and stops at the first failure,
// so later sinks only see orders the earlier ones accepted.
type MultiSink []Sink

func (m MultiSink) Save(ctx context.Context, order *domain.Order) error {
	for _, sink := range m {
		if err := sink.Save(ctx, order); err != nil {
			return err
		}
	}
	return nil
}

// OrderSubmitter is the backend order API
type OrderSubmitter interface {
	CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
}

// APISink forwards orders to the backend
type APISink struct {
	api OrderSubmitter
}

func NewAPISink(api OrderSubmitter) *APISink {
	return &APISink{api: api}
}

func (s *APISink) Save(ctx context.Context, order *domain.Order) error {
	_, err := s.api.CreateOrder(ctx, order)
	return err
}
