package capture

import (
	"context"
	"fmt"
	"time"

	"pos-terminal/internal/checkout"
	"pos-terminal/internal/model"
	"pos-terminal/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderAPI is the direct-submission slice of the backend.
type OrderAPI interface {
	CreateOrder(ctx context.Context, payload *model.OrderPayload) (*model.OrderAck, error)
}

// Service runs the checkout workflow: compute totals, stamp the payload,
// submit directly, and park the order in the durable queue when the backend
// cannot be reached.
type Service struct {
	api      OrderAPI
	queue    storage.OrderQueue
	cart     *checkout.Cart
	terminal model.TerminalContext
	logger   zerolog.Logger
}

// NewService creates the order-capture service.
func NewService(api OrderAPI, queue storage.OrderQueue, cart *checkout.Cart, terminal model.TerminalContext, logger zerolog.Logger) *Service {
	return &Service{
		api:      api,
		queue:    queue,
		cart:     cart,
		terminal: terminal,
		logger:   logger.With().Str("component", "order-capture").Logger(),
	}
}

// CheckoutResult reports how an order left the terminal.
type CheckoutResult struct {
	OfflineUUID string                   `json:"offline_uuid"`
	Queued      bool                     `json:"queued"`
	OrderNumber string                   `json:"orderNumber,omitempty"`
	Totals      checkout.TotalsBreakdown `json:"totals"`
}

// Checkout finalizes the current cart. The offline UUID is assigned before
// any network attempt, so a direct attempt and a later queued retry are the
// same order to the backend.
//
// Outcomes: direct success returns the backend's ack; a definitive
// rejection is surfaced immediately and never queued; an unreachable
// backend parks the payload in the queue; a queue write failure is the one
// error that must always reach the operator, because past this point a
// failed order is a lost order.
func (s *Service) Checkout(ctx context.Context, memo string) (*CheckoutResult, error) {
	lines := s.cart.Lines()
	if len(lines) == 0 {
		return nil, model.ErrEmptyCart
	}

	selection := s.cart.Discount()
	totals := checkout.Calculate(lines, selection)
	payload := s.buildPayload(lines, selection, totals, memo)

	ack, err := s.api.CreateOrder(ctx, payload)
	if err == nil {
		s.cart.Clear()
		s.logger.Info().
			Str("offline_uuid", payload.OfflineUUID).
			Str("order_number", ack.OrderNumber).
			Msg("order submitted directly")
		return &CheckoutResult{
			OfflineUUID: payload.OfflineUUID,
			OrderNumber: ack.OrderNumber,
			Totals:      totals,
		}, nil
	}

	if model.IsRejection(err) {
		s.logger.Warn().
			Err(err).
			Str("offline_uuid", payload.OfflineUUID).
			Msg("backend rejected order, not queueing")
		return nil, err
	}

	s.logger.Warn().
		Err(err).
		Str("offline_uuid", payload.OfflineUUID).
		Msg("direct submission failed, queueing order")

	if addErr := s.queue.Add(ctx, payload); addErr != nil {
		s.logger.Error().
			Err(addErr).
			Str("offline_uuid", payload.OfflineUUID).
			Msg("offline queue write failed, order is NOT saved")
		return nil, fmt.Errorf("%w: %v", model.ErrQueueWriteFailed, addErr)
	}

	s.cart.Clear()
	return &CheckoutResult{
		OfflineUUID: payload.OfflineUUID,
		Queued:      true,
		Totals:      totals,
	}, nil
}

// buildPayload turns the cart snapshot and its computed totals into the
// order body, stamped with the terminal's identity.
func (s *Service) buildPayload(lines []model.CartLine, selection checkout.DiscountSelection, totals checkout.TotalsBreakdown, memo string) *model.OrderPayload {
	taxPct := checkout.TaxPercentage(selection)

	items := make([]model.OrderItemPayload, len(lines))
	for i, line := range lines {
		lt := totals.PerLine[i]
		items[i] = model.OrderItemPayload{
			ItemID:        line.ItemID,
			Quantity:      line.Quantity,
			Rate:          line.UnitPrice,
			TaxAmount:     lt.Tax,
			TaxPercentage: taxPct,
			Amount:        lt.Total,
		}
	}

	return &model.OrderPayload{
		OfflineUUID:       uuid.NewString(),
		UserID:            s.terminal.UserID,
		LocationID:        s.terminal.LocationID,
		OrderTypeID:       s.terminal.OrderTypeID,
		Items:             items,
		Subtotal:          totals.Subtotal,
		TaxAmount:         totals.Tax,
		DiscountAmount:    totals.Discount,
		Total:             totals.Total,
		IsSenior:          selection.Kind() == checkout.DiscountSenior,
		IsPWD:             selection.Kind() == checkout.DiscountPWD,
		Memo:              memo,
		POSTerminalNumber: s.terminal.TerminalNumber,
		CreatedAt:         time.Now().UTC(),
	}
}
