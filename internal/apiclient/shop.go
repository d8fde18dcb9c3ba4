package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"storefront/internal/domain"
)

func (c *Client) ListFAQ(ctx context.Context) ([]domain.FAQ, error) {
	var items []domain.FAQ
	if _, err := c.do(ctx, http.MethodGet, "/faq", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

type registerRequest struct {
	TelegramID int64  `json:"telegram_id"`
	Username   string `json:"username,omitempty"`
	FirstName  string `json:"first_name,omitempty"`
}

// RegisterUser registers a Telegram user. created is false when the user already existed.
func (c *Client) RegisterUser(ctx context.Context, telegramID int64, username, firstName string) (bool, error) {
	status, err := c.do(ctx, http.MethodPost, "/users/register", nil, registerRequest{
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
	}, nil)
	if err != nil {
		return false, err
	}
	return status == http.StatusCreated, nil
}

// CreateOrder submits the order with its client-generated id
func (c *Client) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	var stored domain.Order
	if _, err := c.do(ctx, http.MethodPost, "/orders", nil, order, &stored); err != nil {
		return nil, fmt.Errorf("failed to submit order: %w", err)
	}
	return &stored, nil
}
