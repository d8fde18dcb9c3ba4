// Package checkout drives the name, address and phone dialogue that turns a
// cart into a pending order with a payment link.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// State is the step of the conversation a user is in
type State string

const (
	StateViewingCart     State = "viewing_cart"
	StateAwaitingName    State = "awaiting_name"
	StateAwaitingAddress State = "awaiting_address"
	StateAwaitingPhone   State = "awaiting_phone"
)

// next is the only state each state may advance to
var next = map[State]State{
	StateViewingCart:     StateAwaitingName,
	StateAwaitingName:    StateAwaitingAddress,
	StateAwaitingAddress: StateAwaitingPhone,
}

// Session is the conversation state plus the details collected so far.
// OrderID is reserved on the first finalize attempt and reused while the
// cart still matches CartKey.
type Session struct {
	State   State     `json:"state"`
	Name    string    `json:"name,omitempty"`
	Address string    `json:"address,omitempty"`
	Phone   string    `json:"phone,omitempty"`
	OrderID uuid.UUID `json:"order_id"`
	CartKey string    `json:"cart_key,omitempty"`
}

// SessionStore keeps one session per user. A missing session means the
// user is browsing the catalog.
type SessionStore interface {
	Get(ctx context.Context, userID int64) (*Session, error)
	Save(ctx context.Context, userID int64, session *Session) error
	Delete(ctx context.Context, userID int64) error
}

type redisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore stores sessions with a TTL that reclaims abandoned checkouts
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) SessionStore {
	return &redisSessionStore{client: client, ttl: ttl}
}

func SessionKey(userID int64) string {
	return fmt.Sprintf("checkout:%d", userID)
}

func (s *redisSessionStore) Get(ctx context.Context, userID int64) (*Session, error) {
	raw, err := s.client.Get(ctx, SessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checkout session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}
	return &session, nil
}

func (s *redisSessionStore) Save(ctx context.Context, userID int64, session *Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode checkout session: %w", err)
	}
	if err := s.client.Set(ctx, SessionKey(userID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save checkout session: %w", err)
	}
	return nil
}

func (s *redisSessionStore) Delete(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, SessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete checkout session: %w", err)
	}
	return nil
}
