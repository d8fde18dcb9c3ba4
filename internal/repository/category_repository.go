package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"
)

var (
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryAlreadyExists = errors.New("category with this name already exists")
	ErrSubcategoryNotFound   = errors.New("subcategory not found")
)

// CategoryRepository defines the interface for category and subcategory data access
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	CreateSubcategory(ctx context.Context, subcategory *domain.Subcategory) error
	List(ctx context.Context) ([]*domain.Category, error)
	FindByID(ctx context.Context, id int64) (*domain.Category, error)
	ListSubcategories(ctx context.Context, categoryID int64) ([]*domain.Subcategory, error)
	FindSubcategoryByID(ctx context.Context, id int64) (*domain.Subcategory, error)
}

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create inserts a category and fills in its generated id
func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (name, image_url)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query, category.Name, category.ImageURL).
		Scan(&category.ID, &category.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrCategoryAlreadyExists
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// CreateSubcategory inserts a subcategory under an existing category
func (r *categoryRepository) CreateSubcategory(ctx context.Context, subcategory *domain.Subcategory) error {
	query := `
		INSERT INTO subcategories (category_id, name, image_url)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query, subcategory.CategoryID, subcategory.Name, subcategory.ImageURL).
		Scan(&subcategory.ID, &subcategory.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrCategoryAlreadyExists
		}
		return fmt.Errorf("failed to create subcategory: %w", err)
	}

	return nil
}

// List retrieves all categories ordered by name
func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	query := `
		SELECT id, name, image_url, created_at
		FROM categories
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		category := &domain.Category{}
		if err := rows.Scan(&category.ID, &category.Name, &category.ImageURL, &category.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// FindByID retrieves a category by ID
func (r *categoryRepository) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	query := `
		SELECT id, name, image_url, created_at
		FROM categories
		WHERE id = $1
	`

	category := &domain.Category{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&category.ID,
		&category.Name,
		&category.ImageURL,
		&category.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by ID: %w", err)
	}

	return category, nil
}

// ListSubcategories returns the subcategories of one category ordered by name
func (r *categoryRepository) ListSubcategories(ctx context.Context, categoryID int64) ([]*domain.Subcategory, error) {
	query := `
		SELECT id, category_id, name, image_url, created_at
		FROM subcategories
		WHERE category_id = $1
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subcategories: %w", err)
	}
	defer rows.Close()

	subcategories := []*domain.Subcategory{}
	for rows.Next() {
		sub := &domain.Subcategory{}
		if err := rows.Scan(&sub.ID, &sub.CategoryID, &sub.Name, &sub.ImageURL, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subcategory: %w", err)
		}
		subcategories = append(subcategories, sub)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subcategories: %w", err)
	}

	return subcategories, nil
}

func (r *categoryRepository) FindSubcategoryByID(ctx context.Context, id int64) (*domain.Subcategory, error) {
	query := `
		SELECT id, category_id, name, image_url, created_at
		FROM subcategories
		WHERE id = $1
	`

	sub := &domain.Subcategory{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&sub.ID, &sub.CategoryID, &sub.Name, &sub.ImageURL, &sub.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubcategoryNotFound
		}
		return nil, fmt.Errorf("failed to find subcategory by ID: %w", err)
	}

	return sub, nil
}
