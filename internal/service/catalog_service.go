package service

import (
	"context"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

const (
	DefaultPageSize = 5
	MaxPageSize     = 20
)

// CatalogService serves the read-only catalog
type CatalogService interface {
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	ListSubcategories(ctx context.Context, categoryID int64) ([]*domain.Subcategory, error)
	ListProducts(ctx context.Context, subcategoryID int64, page, limit int) (*domain.Page[*domain.Product], error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
}

type catalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
}

func NewCatalogService(categoryRepo repository.CategoryRepository, productRepo repository.ProductRepository) CatalogService {
	return &catalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
	}
}

func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

// ListSubcategories fails with repository.ErrCategoryNotFound for unknown categories
func (s *catalogService) ListSubcategories(ctx context.Context, categoryID int64) ([]*domain.Subcategory, error) {
	if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
		return nil, err
	}
	return s.categoryRepo.ListSubcategories(ctx, categoryID)
}

// NormalizePage clamps page to >= 1 and limit to [1, MaxPageSize], defaulting limit to DefaultPageSize
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

func (s *catalogService) ListProducts(ctx context.Context, subcategoryID int64, page, limit int) (*domain.Page[*domain.Product], error) {
	if _, err := s.categoryRepo.FindSubcategoryByID(ctx, subcategoryID); err != nil {
		return nil, err
	}

	page, limit = NormalizePage(page, limit)

	items, total, err := s.productRepo.ListBySubcategory(ctx, subcategoryID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return &domain.Page[*domain.Product]{
		Items: items,
		Total: total,
		Pages: domain.PageCount(total, limit),
		Page:  page,
		Limit: limit,
	}, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}
