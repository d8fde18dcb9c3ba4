package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"storefront/internal/domain"
)

// CatalogClient is the read-only catalog gateway used by the bot
type CatalogClient interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListSubcategories(ctx context.Context, categoryID int64) ([]domain.Subcategory, error)
	ListProducts(ctx context.Context, subcategoryID int64, page, pageSize int) (*domain.Page[domain.Product], error)
	GetProduct(ctx context.Context, productID int64) (*domain.Product, error)
}

var _ CatalogClient = (*Client)(nil)

func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if _, err := c.do(ctx, http.MethodGet, "/categories", nil, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) ListSubcategories(ctx context.Context, categoryID int64) ([]domain.Subcategory, error) {
	var subcategories []domain.Subcategory
	path := fmt.Sprintf("/categories/%d/subcategories", categoryID)
	if _, err := c.do(ctx, http.MethodGet, path, nil, nil, &subcategories); err != nil {
		return nil, err
	}
	return subcategories, nil
}

// ListProducts returns one 1-indexed page. Pages is recomputed from the
// total so callers get ceil(total/pageSize) whatever the server sends.
func (c *Client) ListProducts(ctx context.Context, subcategoryID int64, page, pageSize int) (*domain.Page[domain.Product], error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(pageSize))

	var result domain.Page[domain.Product]
	path := fmt.Sprintf("/subcategories/%d/products", subcategoryID)
	if _, err := c.do(ctx, http.MethodGet, path, query, nil, &result); err != nil {
		return nil, err
	}

	if result.Limit == 0 {
		result.Limit = pageSize
	}
	if result.Page == 0 {
		result.Page = page
	}
	result.Pages = domain.PageCount(result.Total, result.Limit)
	return &result, nil
}

func (c *Client) GetProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	var product domain.Product
	if _, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", productID), nil, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}
