package router

import (
	"net/http"
	"strconv"
	"strings"

	"pos-terminal/internal/handler"
	"pos-terminal/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates the control-surface router with all routes and middleware
// configured.
func New(
	cartHandler *handler.CartHandler,
	menuHandler *handler.MenuHandler,
	statusHandler *handler.StatusHandler,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Process liveness, distinct from backend reachability
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	mux.HandleFunc("/api/status", requireMethod(http.MethodGet, statusHandler.Status))
	mux.HandleFunc("/api/sync/retry", requireMethod(http.MethodPost, statusHandler.Retry))
	mux.HandleFunc("/api/sync/rejected", requireMethod(http.MethodGet, statusHandler.Rejected))

	// Menu: /api/menu/categories and /api/menu/categories/{id}/items
	mux.HandleFunc("/api/menu/categories", requireMethod(http.MethodGet, menuHandler.Categories))
	mux.HandleFunc("/api/menu/categories/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		rest := strings.TrimPrefix(r.URL.Path, "/api/menu/categories/")
		if !strings.HasSuffix(rest, "/items") {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		id, err := strconv.Atoi(strings.Trim(strings.TrimSuffix(rest, "/items"), "/"))
		if err != nil {
			http.Error(w, "invalid category ID", http.StatusBadRequest)
			return
		}
		menuHandler.Assignments(w, r, id)
	})

	mux.HandleFunc("/api/cart", requireMethod(http.MethodGet, cartHandler.Get))
	mux.HandleFunc("/api/cart/items", requireMethod(http.MethodPost, cartHandler.AddItem))
	mux.HandleFunc("/api/cart/items/", func(w http.ResponseWriter, r *http.Request) {
		id, ok := handler.ItemIDFromPath(r.URL.Path, "/api/cart/items/")
		if !ok {
			http.Error(w, "invalid item ID", http.StatusBadRequest)
			return
		}

		switch {
		case r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/quantity"):
			cartHandler.UpdateQuantity(w, r, id)
		case r.Method == http.MethodDelete:
			cartHandler.RemoveItem(w, r, id)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/cart/discount", requireMethod(http.MethodPost, cartHandler.SetDiscount))
	mux.HandleFunc("/api/checkout", requireMethod(http.MethodPost, cartHandler.Checkout))

	// Apply middleware: recovery (outermost), then logging, then CORS
	var h http.Handler = mux
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}

// requireMethod rejects every method but the one given.
func requireMethod(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}
