package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the payment status of an order
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusPaid    OrderStatus = "paid"
	OrderStatusFailed  OrderStatus = "failed"
)

// CanTransitionTo reports whether the status may change to next.
// Only pending orders move, and only to paid or failed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return s == OrderStatusPending && (next == OrderStatusPaid || next == OrderStatusFailed)
}

// Order is a checkout request with a mutable payment status
type Order struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	UserID    int64           `json:"user_id" db:"user_id"`
	Items     []OrderItem     `json:"items"`
	Total     decimal.Decimal `json:"total" db:"total"`
	Name      string          `json:"name" db:"name"`
	Address   string          `json:"address" db:"address"`
	Phone     string          `json:"phone" db:"phone"`
	Status    OrderStatus     `json:"status" db:"status"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// OrderItem stores the price at the time of ordering
type OrderItem struct {
	ProductID int64           `json:"product_id" db:"product_id"`
	Name      string          `json:"name" db:"name"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Price     decimal.Decimal `json:"price" db:"price"`
}

// NewOrderFromCart builds a pending order snapshot of the cart
func NewOrderFromCart(id uuid.UUID, userID int64, cart *Cart, name, address, phone string) *Order {
	items := make([]OrderItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, OrderItem{
			ProductID: item.Product.ID,
			Name:      item.Product.Name,
			Quantity:  item.Quantity,
			Price:     item.Product.Price,
		})
	}

	now := time.Now().UTC()
	return &Order{
		ID:        id,
		UserID:    userID,
		Items:     items,
		Total:     cart.Total(),
		Name:      name,
		Address:   address,
		Phone:     phone,
		Status:    OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ItemsTotal recomputes Σ price × quantity from the order lines
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
