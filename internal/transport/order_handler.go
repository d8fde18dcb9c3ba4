package transport

import (
	"errors"
	"net/http"

	"storefront/internal/auth"
	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateOrderRequest is the order submitted by the bot at checkout
type CreateOrderRequest struct {
	ID      uuid.UUID          `json:"id"`
	UserID  int64              `json:"user_id" validate:"required"`
	Items   []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	Total   decimal.Decimal    `json:"total" validate:"money"`
	Name    string             `json:"name" validate:"required,max=255"`
	Address string             `json:"address" validate:"required"`
	Phone   string             `json:"phone" validate:"required,max=64"`
}

type OrderItemRequest struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Name      string          `json:"name" validate:"max=255"`
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
	Price     decimal.Decimal `json:"price" validate:"money"`
}

func (req *CreateOrderRequest) toDomain() *domain.Order {
	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return &domain.Order{
		ID:      req.ID,
		UserID:  req.UserID,
		Items:   items,
		Total:   req.Total,
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
	}
}

// OrderHandler accepts orders from the bot. All routes need a service token.
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireRole(h.logger, auth.RoleService))
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
	})
}

// Create stores a pending order. A resubmitted id returns the stored order with 200.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Order validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, created, err := h.orderService.Create(r.Context(), req.toDomain())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTotalMismatch), errors.Is(err, service.ErrEmptyOrder):
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("Failed to create order", zap.Int64("user_id", req.UserID), zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create order")
		}
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	middleware.RespondWithJSON(w, status, order)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.orderService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error("Failed to get order", zap.String("order_id", id.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get order")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, order)
}
