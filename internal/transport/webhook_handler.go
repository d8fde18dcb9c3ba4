package transport

import (
	"errors"
	"io"
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/payment"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxWebhookBody = 64 << 10

// WebhookResponse acknowledges a processed payment event
type WebhookResponse struct {
	Received bool   `json:"received"`
	Status   string `json:"status,omitempty"`
}

// WebhookHandler applies payment processor events to orders
type WebhookHandler struct {
	verifier     *payment.WebhookVerifier
	orderService service.OrderService
	logger       *zap.Logger
}

func NewWebhookHandler(verifier *payment.WebhookVerifier, orderService service.OrderService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifier:     verifier,
		orderService: orderService,
		logger:       logger,
	}
}

func (h *WebhookHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/webhooks/stripe", h.Stripe)
}

// Stripe answers 400 for bad signatures or payloads and 404 for unknown
// orders so the processor redelivers. Settled orders and unhandled event
// types are acknowledged with 200.
func (h *WebhookHandler) Stripe(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	event, err := h.verifier.Parse(payload, r.Header.Get("Stripe-Signature"))
	switch {
	case errors.Is(err, payment.ErrIgnoredEvent):
		h.logger.Debug("Ignoring payment event", zap.String("type", event.Type))
		middleware.RespondWithJSON(w, http.StatusOK, WebhookResponse{Received: true})
		return
	case errors.Is(err, payment.ErrInvalidSignature):
		h.logger.Warn("Rejected webhook signature", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid signature")
		return
	case err != nil:
		h.logger.Warn("Rejected webhook payload", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	order, changed, err := h.orderService.ApplyPaymentResult(r.Context(), event.OrderID, event.Status)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			h.logger.Warn("Payment event for unknown order",
				zap.String("event_id", event.ID),
				zap.String("order_id", event.OrderID.String()),
			)
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error("Failed to apply payment event",
			zap.String("event_id", event.ID),
			zap.String("order_id", event.OrderID.String()),
			zap.Error(err),
		)
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to apply payment event")
		return
	}

	h.logger.Info("Payment event applied",
		zap.String("event_id", event.ID),
		zap.String("type", event.Type),
		zap.String("order_id", order.ID.String()),
		zap.String("status", string(order.Status)),
		zap.Bool("changed", changed),
	)
	middleware.RespondWithJSON(w, http.StatusOK, WebhookResponse{Received: true, Status: string(order.Status)})
}
