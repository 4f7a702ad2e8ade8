package handler

import (
	"context"
	"net/http"

	"pos-terminal/internal/model"
	"pos-terminal/internal/syncqueue"

	"github.com/rs/zerolog"
)

// SyncController is the slice of the sync manager the operator surface
// needs.
type SyncController interface {
	Status() syncqueue.Status
	TriggerRetry(ctx context.Context)
}

// RejectedLister reads the rejected-order log.
type RejectedLister interface {
	Rejected(ctx context.Context) ([]model.RejectedOrder, error)
}

// StatusHandler exposes sync state, the manual retry affordance, and the
// rejected-order log.
type StatusHandler struct {
	sync     SyncController
	rejected RejectedLister
	logger   zerolog.Logger
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(sync SyncController, rejected RejectedLister, logger zerolog.Logger) *StatusHandler {
	return &StatusHandler{
		sync:     sync,
		rejected: rejected,
		logger:   logger.With().Str("handler", "status").Logger(),
	}
}

// Status handles GET /api/status requests.
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sync.Status())
}

// Retry handles POST /api/sync/retry requests. The drain runs in the
// background; a drain already in progress makes the trigger a no-op.
func (h *StatusHandler) Retry(w http.ResponseWriter, r *http.Request) {
	h.logger.Info().Msg("manual sync retry requested")
	h.sync.TriggerRetry(context.WithoutCancel(r.Context()))
	writeJSON(w, http.StatusAccepted, h.sync.Status())
}

// Rejected handles GET /api/sync/rejected requests.
func (h *StatusHandler) Rejected(w http.ResponseWriter, r *http.Request) {
	rejected, err := h.rejected.Rejected(r.Context())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if rejected == nil {
		rejected = []model.RejectedOrder{}
	}
	writeJSON(w, http.StatusOK, rejected)
}
