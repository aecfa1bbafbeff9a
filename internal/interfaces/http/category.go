package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"finanzas/internal/domain/category"
	"finanzas/internal/domain/transaction"
)

type CategoryHandler struct {
	categories *category.Service
}

func NewCategoryHandler(categories *category.Service) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

type CreateCategoryRequest struct {
	Name   string           `json:"name"`
	Type   transaction.Type `json:"type"`
	Icon   string           `json:"icon"`
	Color  string           `json:"color"`
	Budget decimal.Decimal  `json:"budget"`
}

type UpdateCategoryRequest struct {
	Name   *string           `json:"name"`
	Type   *transaction.Type `json:"type"`
	Icon   *string           `json:"icon"`
	Color  *string           `json:"color"`
	Budget *decimal.Decimal  `json:"budget"`
}

// HandleCategories handles GET (list) and POST (create) on /api/categories/
func (h *CategoryHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		categories, err := h.categories.ListCategories(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if categories == nil {
			categories = []*category.Category{}
		}
		writeJSON(w, http.StatusOK, categories)
	case http.MethodPost:
		var req CreateCategoryRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		c, err := h.categories.CreateCategory(r.Context(), category.CreateParams{
			UserID: userID,
			Name:   req.Name,
			Type:   req.Type,
			Icon:   req.Icon,
			Color:  req.Color,
			Budget: req.Budget,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	default:
		methodNotAllowed(w)
	}
}

// HandleCategoryByID handles GET, PATCH and DELETE on /api/categories/{id}
func (h *CategoryHandler) HandleCategoryByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		c, err := h.categories.GetCategory(r.Context(), userID, id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	case http.MethodPatch:
		var req UpdateCategoryRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		c, err := h.categories.UpdateCategory(r.Context(), userID, id, category.UpdateParams{
			Name:   req.Name,
			Type:   req.Type,
			Icon:   req.Icon,
			Color:  req.Color,
			Budget: req.Budget,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	case http.MethodDelete:
		if err := h.categories.DeleteCategory(r.Context(), userID, id); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w)
	}
}
