package transport

import (
	"errors"
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type FAQHandler struct {
	faqService service.FAQService
	logger     *zap.Logger
}

func NewFAQHandler(faqService service.FAQService, logger *zap.Logger) *FAQHandler {
	return &FAQHandler{
		faqService: faqService,
		logger:     logger,
	}
}

func (h *FAQHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/faq", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
	})
}

func (h *FAQHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.faqService.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list FAQ", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list faq")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, items)
}

func (h *FAQHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid faq id")
		return
	}

	item, err := h.faqService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrFAQNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "faq item not found")
			return
		}
		h.logger.Error("Failed to get FAQ item", zap.Int64("faq_id", id), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get faq item")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, item)
}
