// Package payment creates hosted payment sessions and verifies processor webhooks.
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrAmountBelowMinimum = errors.New("amount is below the minimum chargeable amount")

// DeclineError is a processor-side refusal to create the payment
type DeclineError struct {
	Code    string
	Message string
}

func (e *DeclineError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("payment declined: %s", e.Message)
	}
	return fmt.Sprintf("payment declined (%s): %s", e.Code, e.Message)
}

// Payment is a created payment session the shopper completes at RedirectURL
type Payment struct {
	ID          string
	OrderID     uuid.UUID
	Amount      decimal.Decimal
	RedirectURL string
}

// Gateway issues payment links for an order amount
type Gateway interface {
	CreatePayment(ctx context.Context, amount decimal.Decimal, orderID uuid.UUID) (*Payment, error)
}

// CheckMinimum returns ErrAmountBelowMinimum when amount < minimum
func CheckMinimum(amount, minimum decimal.Decimal) error {
	if amount.LessThan(minimum) {
		return fmt.Errorf("%w: %s < %s", ErrAmountBelowMinimum, amount.StringFixed(2), minimum.StringFixed(2))
	}
	return nil
}
