// Package cart persists shopping carts in Redis, one JSON document per user.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/redis/go-redis/v9"
)

// Store is the per-user cart persistence. A missing cart reads as empty.
type Store interface {
	Get(ctx context.Context, userID int64) (*domain.Cart, error)
	Save(ctx context.Context, userID int64, cart *domain.Cart) error
	Clear(ctx context.Context, userID int64) error
}

type redisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func Key(userID int64) string {
	return fmt.Sprintf("cart:%d", userID)
}

func (s *redisStore) Get(ctx context.Context, userID int64) (*domain.Cart, error) {
	data, err := s.client.Get(ctx, Key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &domain.Cart{Items: []domain.CartItem{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	cart := &domain.Cart{}
	if err := json.Unmarshal(data, cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return cart, nil
}

// Save overwrites the stored cart without expiry
func (s *redisStore) Save(ctx context.Context, userID int64, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	if err := s.client.Set(ctx, Key(userID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (s *redisStore) Clear(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, Key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
