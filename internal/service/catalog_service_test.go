package service

import (
	"context"
	"fmt"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededCatalog(t *testing.T, products int) (CatalogService, int64) {
	t.Helper()
	ctx := context.Background()
	categories := newMockCategoryRepository()
	productRepo := &mockProductRepository{}

	category := &domain.Category{Name: "Tea"}
	require.NoError(t, categories.Create(ctx, category))
	sub := &domain.Subcategory{CategoryID: category.ID, Name: "Green"}
	require.NoError(t, categories.CreateSubcategory(ctx, sub))

	for i := 0; i < products; i++ {
		require.NoError(t, productRepo.Create(ctx, &domain.Product{
			SubcategoryID: sub.ID,
			Name:          fmt.Sprintf("p%d", i),
			Price:         decimal.NewFromInt(10),
		}))
	}

	return NewCatalogService(categories, productRepo), sub.ID
}

func TestListProductsFiveWithLimitTwo(t *testing.T) {
	svc, subID := seededCatalog(t, 5)
	ctx := context.Background()

	page, err := svc.ListProducts(ctx, subID, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 3, page.Pages)

	page, err = svc.ListProducts(ctx, subID, 3, 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}

func TestListProductsUnknownSubcategory(t *testing.T) {
	svc, _ := seededCatalog(t, 0)

	_, err := svc.ListProducts(context.Background(), 99, 1, 5)
	assert.ErrorIs(t, err, repository.ErrSubcategoryNotFound)

	_, err = svc.ListSubcategories(context.Background(), 99)
	assert.ErrorIs(t, err, repository.ErrCategoryNotFound)
}

// Feature: storefront, Property 12: Page parameters are clamped
// Validates: default limit 5, max 20, page >= 1
func TestProperty_NormalizePageClamps(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("normalized page and limit are always within bounds", prop.ForAll(
		func(page int, limit int) bool {
			p, l := NormalizePage(page, limit)
			if p < 1 || l < 1 || l > MaxPageSize {
				return false
			}
			if limit <= 0 && l != DefaultPageSize {
				return false
			}
			if limit > 0 && limit <= MaxPageSize && l != limit {
				return false
			}
			return page < 1 || p == page
		},
		gen.IntRange(-10, 100),
		gen.IntRange(-10, 100),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
