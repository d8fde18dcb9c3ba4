// Package outbox relays committed outbox rows to Kafka.
package outbox

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/events"
	"storefront/internal/repository"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Relay struct {
	repo     repository.OutboxRepository
	writer   events.Writer
	interval time.Duration
	batch    int
	logger   *zap.Logger
}

func NewRelay(repo repository.OutboxRepository, writer events.Writer, interval time.Duration, batch int, logger *zap.Logger) *Relay {
	return &Relay{
		repo:     repo,
		writer:   writer,
		interval: interval,
		batch:    batch,
		logger:   logger,
	}
}

// Run polls until ctx is cancelled. Failed rounds are logged and retried on the next tick.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("Outbox relay started", zap.Duration("interval", r.interval))
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Outbox relay stopped")
			return nil
		case <-ticker.C:
			if _, err := r.RelayOnce(ctx); err != nil && ctx.Err() == nil {
				r.logger.Error("Outbox relay round failed", zap.Error(err))
			}
		}
	}
}

// RelayOnce publishes one batch in creation order and stops at the first
// failure so later events never overtake earlier ones.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	pending, err := r.repo.FetchPending(ctx, r.batch)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, msg := range pending {
		err := r.writer.WriteMessages(ctx, kafka.Message{
			Topic: msg.Topic,
			Key:   []byte(msg.Key),
			Value: msg.Payload,
			Time:  msg.CreatedAt,
		})
		if err != nil {
			return sent, fmt.Errorf("failed to publish outbox message %s: %w", msg.ID, err)
		}

		if err := r.repo.MarkSent(ctx, msg.ID); err != nil {
			return sent, err
		}
		sent++
	}

	if sent > 0 {
		r.logger.Debug("Outbox messages relayed", zap.Int("count", sent))
	}
	return sent, nil
}
