package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrInvalidQuantity = errors.New("quantity must be positive")

// CartItem is a product snapshot together with the chosen quantity
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal returns price × quantity
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart holds at most one item per product id, in insertion order
type Cart struct {
	Items []CartItem `json:"items"`
}

// AddItem appends the product or merges the quantity into an existing line
func (c *Cart) AddItem(product Product, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	for i := range c.Items {
		if c.Items[i].Product.ID == product.ID {
			c.Items[i].Quantity += quantity
			return nil
		}
	}

	c.Items = append(c.Items, CartItem{Product: product, Quantity: quantity})
	return nil
}

// RemoveItem drops the line for productID. Unknown ids are ignored.
func (c *Cart) RemoveItem(productID int64) {
	for i := range c.Items {
		if c.Items[i].Product.ID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// Total is the exact sum of all line subtotals
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
