package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is a top-level catalog grouping
type Category struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	ImageURL  string    `json:"image_url,omitempty" db:"image_url"`
	CreatedAt time.Time `json:"-" db:"created_at"`
}

// Subcategory belongs to exactly one Category
type Subcategory struct {
	ID         int64     `json:"id" db:"id"`
	CategoryID int64     `json:"category_id" db:"category_id"`
	Name       string    `json:"name" db:"name"`
	ImageURL   string    `json:"image_url,omitempty" db:"image_url"`
	CreatedAt  time.Time `json:"-" db:"created_at"`
}

// Product represents a product in the catalog
type Product struct {
	ID            int64           `json:"id" db:"id"`
	SubcategoryID int64           `json:"subcategory_id" db:"subcategory_id"`
	Name          string          `json:"name" db:"name"`
	Description   string          `json:"description" db:"description"`
	Price         decimal.Decimal `json:"price" db:"price"`
	ImageURL      string          `json:"image_url,omitempty" db:"image_url"`
	CreatedAt     time.Time       `json:"-" db:"created_at"`
}

// Page is one page of a paginated listing. Pages are 1-indexed.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Pages int `json:"pages"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// PageCount returns ceil(total / limit)
func PageCount(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// FAQ is a single question and answer pair
type FAQ struct {
	ID       int64  `json:"id" db:"id"`
	Question string `json:"question" db:"question"`
	Answer   string `json:"answer" db:"answer"`
}
