package handler

import (
	"context"
	"net/http"

	"pos-terminal/internal/model"

	"github.com/rs/zerolog"
)

// MenuReader serves the menu catalog, live-first with cache fallback.
type MenuReader interface {
	Categories(ctx context.Context) ([]model.MenuCategory, error)
	Assignments(ctx context.Context, categoryID int) ([]model.MenuItemAssignment, error)
}

// MenuHandler exposes the menu catalog to the order-capture UI.
type MenuHandler struct {
	menu   MenuReader
	logger zerolog.Logger
}

// NewMenuHandler creates a new menu handler.
func NewMenuHandler(menu MenuReader, logger zerolog.Logger) *MenuHandler {
	return &MenuHandler{
		menu:   menu,
		logger: logger.With().Str("handler", "menu").Logger(),
	}
}

// Categories handles GET /api/menu/categories requests.
func (h *MenuHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.menu.Categories(r.Context())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if categories == nil {
		categories = []model.MenuCategory{}
	}
	writeJSON(w, http.StatusOK, categories)
}

// Assignments handles GET /api/menu/categories/{id}/items requests.
func (h *MenuHandler) Assignments(w http.ResponseWriter, r *http.Request, categoryID int) {
	assignments, err := h.menu.Assignments(r.Context(), categoryID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if assignments == nil {
		assignments = []model.MenuItemAssignment{}
	}
	writeJSON(w, http.StatusOK, assignments)
}
