package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/metrics"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrEmptyOrder    = errors.New("order must contain at least one item")
	ErrTotalMismatch = errors.New("order total does not match its items")
)

// OrderService defines the interface for order business logic
type OrderService interface {
	// Create stores a new pending order. Resubmitting an existing id returns
	// the stored order with created=false.
	Create(ctx context.Context, order *domain.Order) (stored *domain.Order, created bool, err error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	// ApplyPaymentResult moves a pending order to paid or failed. An order that
	// already left pending is returned unchanged with changed=false.
	ApplyPaymentResult(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (order *domain.Order, changed bool, err error)
}

type orderService struct {
	orderRepo repository.OrderRepository
	topic     string
	metrics   *metrics.ServerMetrics
	logger    *zap.Logger
}

// NewOrderService creates an OrderService; status events are written to the outbox under topic
func NewOrderService(orderRepo repository.OrderRepository, topic string, m *metrics.ServerMetrics, logger *zap.Logger) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		topic:     topic,
		metrics:   m,
		logger:    logger,
	}
}

func (s *orderService) Create(ctx context.Context, order *domain.Order) (*domain.Order, bool, error) {
	if len(order.Items) == 0 {
		return nil, false, ErrEmptyOrder
	}
	if !order.ItemsTotal().Equal(order.Total) {
		return nil, false, ErrTotalMismatch
	}

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	now := time.Now().UTC()
	order.Status = domain.OrderStatusPending
	order.CreatedAt = now
	order.UpdatedAt = now

	err := s.orderRepo.Create(ctx, order)
	if errors.Is(err, repository.ErrOrderAlreadyExists) {
		existing, findErr := s.orderRepo.FindByID(ctx, order.ID)
		if findErr != nil {
			return nil, false, fmt.Errorf("failed to load existing order: %w", findErr)
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to create order: %w", err)
	}

	s.observe(domain.OrderStatusPending)
	s.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.Int64("user_id", order.UserID),
		zap.String("total", order.Total.StringFixed(2)),
	)

	return order, true, nil
}

func (s *orderService) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.orderRepo.FindByID(ctx, id)
}

func (s *orderService) ApplyPaymentResult(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, bool, error) {
	order, err := s.orderRepo.UpdateStatus(ctx, id, status, s.topic)
	if errors.Is(err, repository.ErrInvalidStatusTransition) {
		current, findErr := s.orderRepo.FindByID(ctx, id)
		if findErr != nil {
			return nil, false, findErr
		}
		s.logger.Info("Ignoring payment result for settled order",
			zap.String("order_id", id.String()),
			zap.String("status", string(current.Status)),
			zap.String("requested", string(status)),
		)
		return current, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	s.observe(order.Status)
	s.logger.Info("Order status changed",
		zap.String("order_id", order.ID.String()),
		zap.String("status", string(order.Status)),
	)

	return order, true, nil
}

func (s *orderService) observe(status domain.OrderStatus) {
	if s.metrics != nil {
		s.metrics.Orders.WithLabelValues(string(status)).Inc()
	}
}
