package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"
)

var ErrFAQNotFound = errors.New("faq entry not found")

type FAQRepository interface {
	Create(ctx context.Context, faq *domain.FAQ) error
	List(ctx context.Context) ([]*domain.FAQ, error)
	FindByID(ctx context.Context, id int64) (*domain.FAQ, error)
}

type faqRepository struct {
	db *sql.DB
}

func NewFAQRepository(db *sql.DB) FAQRepository {
	return &faqRepository{db: db}
}

func (r *faqRepository) Create(ctx context.Context, faq *domain.FAQ) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO faq (question, answer) VALUES ($1, $2) RETURNING id`,
		faq.Question, faq.Answer,
	).Scan(&faq.ID)
	if err != nil {
		return fmt.Errorf("failed to create faq entry: %w", err)
	}
	return nil
}

func (r *faqRepository) List(ctx context.Context) ([]*domain.FAQ, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, question, answer FROM faq ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list faq: %w", err)
	}
	defer rows.Close()

	items := []*domain.FAQ{}
	for rows.Next() {
		item := &domain.FAQ{}
		if err := rows.Scan(&item.ID, &item.Question, &item.Answer); err != nil {
			return nil, fmt.Errorf("failed to scan faq: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating faq: %w", err)
	}

	return items, nil
}

func (r *faqRepository) FindByID(ctx context.Context, id int64) (*domain.FAQ, error) {
	item := &domain.FAQ{}
	err := r.db.QueryRowContext(ctx, `SELECT id, question, answer FROM faq WHERE id = $1`, id).
		Scan(&item.ID, &item.Question, &item.Answer)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFAQNotFound
		}
		return nil, fmt.Errorf("failed to find faq by ID: %w", err)
	}
	return item, nil
}
