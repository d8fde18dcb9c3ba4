package domain

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id int64, price string) Product {
	return Product{ID: id, Name: "product", Price: decimal.RequireFromString(price)}
}

// Feature: storefront, Property 1: Adding the same product merges quantities
// Validates: Cart invariant, one line per product id
func TestProperty_AddItemMergesQuantities(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("repeated adds of one product produce a single line with the summed quantity", prop.ForAll(
		func(first int, second int) bool {
			cart := &Cart{}
			p := product(1, "1500")

			if err := cart.AddItem(p, first); err != nil {
				return false
			}
			if err := cart.AddItem(p, second); err != nil {
				return false
			}

			return len(cart.Items) == 1 && cart.Items[0].Quantity == first+second
		},
		gen.IntRange(1, 1000),
		gen.IntRange(1, 1000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: storefront, Property 2: Removing an unknown product is a no-op
// Validates: Cart RemoveItem
func TestProperty_RemoveUnknownItemIsNoop(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("cart contents are unchanged after removing an absent product", prop.ForAll(
		func(ids []int64, missing int64) bool {
			cart := &Cart{}
			for _, id := range ids {
				if id == missing {
					continue
				}
				_ = cart.AddItem(product(id, "10.50"), 1)
			}

			before := len(cart.Items)
			total := cart.Total()

			cart.RemoveItem(missing)

			return len(cart.Items) == before && cart.Total().Equal(total)
		},
		gen.SliceOf(gen.Int64Range(1, 50)),
		gen.Int64Range(51, 100),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: storefront, Property 3: Total is the exact decimal sum
// Validates: Cart Total
func TestProperty_TotalIsExactSum(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("total equals the sum of price in cents times quantity", prop.ForAll(
		func(cents []int64) bool {
			cart := &Cart{}
			var expected int64
			for i, c := range cents {
				qty := i%3 + 1
				_ = cart.AddItem(Product{ID: int64(i + 1), Price: decimal.New(c, -2)}, qty)
				expected += c * int64(qty)
			}

			return cart.Total().Equal(decimal.New(expected, -2))
		},
		gen.SliceOf(gen.Int64Range(1, 1_000_000)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestCartTotalExample(t *testing.T) {
	cart := &Cart{}
	require.NoError(t, cart.AddItem(product(1, "1500"), 2))
	require.NoError(t, cart.AddItem(product(4, "3500"), 1))

	assert.Equal(t, "6500.00", cart.Total().StringFixed(2))
	assert.False(t, cart.IsEmpty())
}

func TestCartRejectsNonPositiveQuantity(t *testing.T) {
	cart := &Cart{}
	assert.ErrorIs(t, cart.AddItem(product(1, "1"), 0), ErrInvalidQuantity)
	assert.ErrorIs(t, cart.AddItem(product(1, "1"), -2), ErrInvalidQuantity)
	assert.True(t, cart.IsEmpty())
}

func TestCartRemoveKeepsOrder(t *testing.T) {
	cart := &Cart{}
	for _, id := range []int64{1, 2, 3} {
		require.NoError(t, cart.AddItem(product(id, "1"), 1))
	}

	cart.RemoveItem(2)

	require.Len(t, cart.Items, 2)
	assert.Equal(t, int64(1), cart.Items[0].Product.ID)
	assert.Equal(t, int64(3), cart.Items[1].Product.ID)
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 3, PageCount(5, 2))
	assert.Equal(t, 1, PageCount(5, 5))
	assert.Equal(t, 0, PageCount(0, 5))
	assert.Equal(t, 0, PageCount(5, 0))
}

func TestOrderStatusTransitions(t *testing.T) {
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusPaid))
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusFailed))
	assert.False(t, OrderStatusPaid.CanTransitionTo(OrderStatusFailed))
	assert.False(t, OrderStatusFailed.CanTransitionTo(OrderStatusPaid))
	assert.False(t, OrderStatusPending.CanTransitionTo(OrderStatusPending))
}
