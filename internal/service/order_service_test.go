package service

import (
	"context"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/metrics"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newOrderFixture() (*orderService, *mockOrderRepository) {
	repo := newMockOrderRepository()
	m := metrics.NewServerMetrics(prometheus.NewRegistry())
	return NewOrderService(repo, "orders", m, zap.NewNop()).(*orderService), repo
}

func orderWithItems(total string) *domain.Order {
	return &domain.Order{
		UserID: 1,
		Items: []domain.OrderItem{
			{ProductID: 1, Name: "Tea", Quantity: 2, Price: decimal.RequireFromString("1500")},
			{ProductID: 4, Name: "Cup", Quantity: 1, Price: decimal.RequireFromString("3500")},
		},
		Total:   decimal.RequireFromString(total),
		Name:    "Ann",
		Address: "Main st",
		Phone:   "+1",
	}
}

func TestCreateOrder(t *testing.T) {
	svc, repo := newOrderFixture()
	ctx := context.Background()

	stored, created, err := svc.Create(ctx, orderWithItems("6500.00"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, uuid.Nil, stored.ID)
	assert.Equal(t, domain.OrderStatusPending, stored.Status)
	assert.Len(t, repo.orders, 1)
	assert.Equal(t, float64(1), testutil.ToFloat64(svc.metrics.Orders.WithLabelValues("pending")))
}

func TestCreateOrderRejectsBadTotals(t *testing.T) {
	svc, _ := newOrderFixture()
	ctx := context.Background()

	_, _, err := svc.Create(ctx, orderWithItems("6499.99"))
	assert.ErrorIs(t, err, ErrTotalMismatch)

	_, _, err = svc.Create(ctx, &domain.Order{Total: decimal.Zero})
	assert.ErrorIs(t, err, ErrEmptyOrder)
}

func TestCreateOrderIsIdempotentOnID(t *testing.T) {
	svc, repo := newOrderFixture()
	ctx := context.Background()

	order := orderWithItems("6500")
	order.ID = uuid.New()

	_, created, err := svc.Create(ctx, order)
	require.NoError(t, err)
	assert.True(t, created)

	resend := orderWithItems("6500")
	resend.ID = order.ID
	stored, created, err := svc.Create(ctx, resend)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, order.ID, stored.ID)
	assert.Len(t, repo.orders, 1)
}

// Feature: storefront, Property 21: Payment results only settle pending orders
// Validates: webhook status transitions and no-op on settled orders
func TestProperty_PaymentResultSettlesOnce(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("the first result wins and later ones are no-ops", prop.ForAll(
		func(picks []int) bool {
			statuses := []domain.OrderStatus{domain.OrderStatusPaid, domain.OrderStatusFailed}
			svc, repo := newOrderFixture()
			ctx := context.Background()

			stored, _, err := svc.Create(ctx, orderWithItems("6500"))
			if err != nil {
				return false
			}

			for i, pick := range picks {
				order, changed, err := svc.ApplyPaymentResult(ctx, stored.ID, statuses[pick])
				if err != nil {
					return false
				}
				if changed != (i == 0) {
					return false
				}
				if order.Status != statuses[picks[0]] {
					return false
				}
			}

			return len(repo.events) == 1
		},
		gen.SliceOfN(4, gen.IntRange(0, 1)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestApplyPaymentResultUnknownOrder(t *testing.T) {
	svc, _ := newOrderFixture()

	_, _, err := svc.ApplyPaymentResult(context.Background(), uuid.New(), domain.OrderStatusPaid)
	assert.Error(t, err)
}
