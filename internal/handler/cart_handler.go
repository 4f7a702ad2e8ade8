package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"pos-terminal/internal/capture"
	"pos-terminal/internal/checkout"
	"pos-terminal/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CheckoutService finalizes the cart into an order.
type CheckoutService interface {
	Checkout(ctx context.Context, memo string) (*capture.CheckoutResult, error)
}

// CartHandler exposes the order-capture cart over the control surface.
type CartHandler struct {
	cart     *checkout.Cart
	checkout CheckoutService
	logger   zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(cart *checkout.Cart, checkoutSvc CheckoutService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		cart:     cart,
		checkout: checkoutSvc,
		logger:   logger.With().Str("handler", "cart").Logger(),
	}
}

// cartView is the cart plus a fresh totals breakdown; totals are never
// served stale.
type cartView struct {
	Lines  []model.CartLine         `json:"lines"`
	Totals checkout.TotalsBreakdown `json:"totals"`
}

// Get handles GET /api/cart requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, cartView{
		Lines:  h.cart.Lines(),
		Totals: h.cart.Totals(),
	})
}

type addItemRequest struct {
	ItemID   int             `json:"item_id"`
	ItemName string          `json:"item_name"`
	Price    decimal.Decimal `json:"price"`
}

// AddItem handles POST /api/cart/items requests.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if req.ItemID < 1 {
		writeBadRequest(w, model.ErrCodeInvalidJSON, "item_id is required", h.logger)
		return
	}

	if req.Price.IsNegative() {
		writeBadRequest(w, model.ErrCodeInvalidJSON, "price cannot be negative", h.logger)
		return
	}

	h.cart.Add(req.ItemID, req.ItemName, req.Price)
	writeJSON(w, http.StatusOK, cartView{Lines: h.cart.Lines(), Totals: h.cart.Totals()})
}

// RemoveItem handles DELETE /api/cart/items/{itemId} requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request, itemID int) {
	if err := h.cart.Remove(itemID); err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cartView{Lines: h.cart.Lines(), Totals: h.cart.Totals()})
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateQuantity handles PUT /api/cart/items/{itemId}/quantity requests.
// Quantities below 1 leave the line unchanged.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request, itemID int) {
	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if err := h.cart.UpdateQuantity(itemID, req.Quantity); err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cartView{Lines: h.cart.Lines(), Totals: h.cart.Totals()})
}

type discountRequest struct {
	Type  string          `json:"type"`
	Value decimal.Decimal `json:"value"`
}

// SetDiscount handles POST /api/cart/discount requests. The selection is
// replaced wholesale, so senior/PWD and manual discounts are mutually
// exclusive no matter what order the operator toggles them in.
func (h *CartHandler) SetDiscount(w http.ResponseWriter, r *http.Request) {
	var req discountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	var selection checkout.DiscountSelection
	switch strings.ToUpper(req.Type) {
	case "NONE":
		selection = checkout.NoDiscount()
	case "PERCENTAGE":
		if req.Value.IsNegative() || req.Value.GreaterThan(decimal.NewFromInt(100)) {
			writeError(w, model.ErrInvalidDiscount, h.logger)
			return
		}
		selection = checkout.PercentDiscount(req.Value)
	case "AMOUNT":
		if req.Value.IsNegative() {
			writeError(w, model.ErrInvalidDiscount, h.logger)
			return
		}
		selection = checkout.AmountDiscount(req.Value)
	case "SENIOR":
		selection = checkout.SeniorDiscount()
	case "PWD":
		selection = checkout.PWDDiscount()
	default:
		writeError(w, model.ErrInvalidDiscount, h.logger)
		return
	}

	h.cart.SetDiscount(selection)
	writeJSON(w, http.StatusOK, cartView{Lines: h.cart.Lines(), Totals: h.cart.Totals()})
}

type checkoutRequest struct {
	Memo string `json:"memo"`
}

// Checkout handles POST /api/checkout requests.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadRequest(w, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
			return
		}
	}

	result, err := h.checkout.Checkout(r.Context(), req.Memo)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	status := http.StatusCreated
	if result.Queued {
		// The order is durable but not yet on the backend.
		status = http.StatusAccepted
	}
	writeJSON(w, status, result)
}

// ItemIDFromPath extracts the item id segment from a cart item path.
func ItemIDFromPath(path, prefix string) (int, bool) {
	rest := strings.TrimPrefix(path, prefix)
	rest = strings.TrimSuffix(rest, "/quantity")
	rest = strings.Trim(rest, "/")
	if rest == "" {
		return 0, false
	}
	id, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return id, true
}
