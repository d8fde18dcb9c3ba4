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

// CatalogHandler serves categories, subcategories and products
type CatalogHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

func NewCatalogHandler(catalogService service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Get("/{id}/subcategories", h.ListSubcategories)
	})
	r.Get("/api/subcategories/{id}/products", h.ListProducts)
	r.Get("/api/products/{id}", h.GetProduct)
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

func (h *CatalogHandler) ListSubcategories(w http.ResponseWriter, r *http.Request) {
	categoryID, err := pathID(r, "id")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	subcategories, err := h.catalogService.ListSubcategories(r.Context(), categoryID)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "category not found")
			return
		}
		h.logger.Error("Failed to list subcategories", zap.Int64("category_id", categoryID), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list subcategories")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, subcategories)
}

// ListProducts returns one page of a subcategory. page defaults to 1 and limit to 5.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	subcategoryID, err := pathID(r, "id")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid subcategory id")
		return
	}

	page, err := queryInt(r, "page", 1)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "page must be an integer")
		return
	}
	limit, err := queryInt(r, "limit", service.DefaultPageSize)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}

	result, err := h.catalogService.ListProducts(r.Context(), subcategoryID, page, limit)
	if err != nil {
		if errors.Is(err, repository.ErrSubcategoryNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "subcategory not found")
			return
		}
		h.logger.Error("Failed to list products", zap.Int64("subcategory_id", subcategoryID), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, result)
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "id")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.catalogService.GetProduct(r.Context(), productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to get product", zap.Int64("product_id", productID), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}
