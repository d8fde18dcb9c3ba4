package repository

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

// OutboxRepository stores events awaiting delivery to the broker
type OutboxRepository interface {
	Insert(ctx context.Context, msg *domain.OutboxMessage) error
	FetchPending(ctx context.Context, limit int) ([]*domain.OutboxMessage, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
}

type outboxRepository struct {
	db *sql.DB
}

func NewOutboxRepository(db *sql.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

func insertOutbox(ctx context.Context, db execer, msg *domain.OutboxMessage) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO outbox (id, topic, key, payload) VALUES ($1, $2, $3, $4)`,
		msg.ID, msg.Topic, msg.Key, msg.Payload,
	)
	if err != nil {
		return fmt.Errorf("failed to insert outbox message: %w", err)
	}
	return nil
}

func (r *outboxRepository) Insert(ctx context.Context, msg *domain.OutboxMessage) error {
	return insertOutbox(ctx, r.db, msg)
}

// FetchPending returns unsent messages oldest first
func (r *outboxRepository) FetchPending(ctx context.Context, limit int) ([]*domain.OutboxMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, topic, key, payload, created_at
		FROM outbox
		WHERE sent_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending outbox messages: %w", err)
	}
	defer rows.Close()

	var messages []*domain.OutboxMessage
	for rows.Next() {
		msg := &domain.OutboxMessage{}
		if err := rows.Scan(&msg.ID, &msg.Topic, &msg.Key, &msg.Payload, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		messages = append(messages, msg)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outbox messages: %w", err)
	}

	return messages, nil
}

func (r *outboxRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE outbox SET sent_at = NOW() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to mark outbox message sent: %w", err)
	}
	return nil
}
