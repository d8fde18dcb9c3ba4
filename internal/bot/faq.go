package bot

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"storefront/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	faqCacheKey = "faq:all"

	// MaxInlineResults is the Telegram limit for one inline answer
	MaxInlineResults = 50
)

// FAQSource loads the FAQ from the backend
type FAQSource interface {
	ListFAQ(ctx context.Context) ([]domain.FAQ, error)
}

// FAQCache keeps the FAQ list in Redis for ttl
type FAQCache struct {
	client *redis.Client
	source FAQSource
	ttl    time.Duration
	logger *zap.Logger
}

func NewFAQCache(client *redis.Client, source FAQSource, ttl time.Duration, logger *zap.Logger) *FAQCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &FAQCache{client: client, source: source, ttl: ttl, logger: logger}
}

// List returns the cached FAQ, loading it from the source on a miss.
// Redis failures fall through to the source.
func (c *FAQCache) List(ctx context.Context) ([]domain.FAQ, error) {
	data, err := c.client.Get(ctx, faqCacheKey).Bytes()
	switch {
	case err == nil:
		var items []domain.FAQ
		if err := json.Unmarshal(data, &items); err == nil {
			return items, nil
		}
		c.logger.Warn("Discarding unreadable FAQ cache entry")
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("FAQ cache read failed", zap.Error(err))
	}

	items, err := c.source.ListFAQ(ctx)
	if err != nil {
		return nil, err
	}

	// empty lists are not cached so a new FAQ shows up on the next request
	if len(items) > 0 {
		payload, err := json.Marshal(items)
		if err == nil {
			err = c.client.Set(ctx, faqCacheKey, payload, c.ttl).Err()
		}
		if err != nil {
			c.logger.Warn("FAQ cache write failed", zap.Error(err))
		}
	}
	return items, nil
}

// Find returns the item with id, or false
func (c *FAQCache) Find(ctx context.Context, id int64) (domain.FAQ, bool, error) {
	items, err := c.List(ctx)
	if err != nil {
		return domain.FAQ{}, false, err
	}
	for _, item := range items {
		if item.ID == id {
			return item, true, nil
		}
	}
	return domain.FAQ{}, false, nil
}

// SearchFAQ matches query case-insensitively against the questions.
// An empty query matches everything. At most limit items are returned.
func SearchFAQ(items []domain.FAQ, query string, limit int) []domain.FAQ {
	query = strings.ToLower(strings.TrimSpace(query))
	var out []domain.FAQ
	for _, item := range items {
		if len(out) >= limit {
			break
		}
		if query == "" || strings.Contains(strings.ToLower(item.Question), query) {
			out = append(out, item)
		}
	}
	return out
}

// snippet shortens an answer for the inline result description
func snippet(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
