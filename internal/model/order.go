package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TerminalContext identifies the terminal and the operator that orders are
// captured under. It is passed explicitly into every component that stamps
// orders, so nothing reads identity from ambient state.
type TerminalContext struct {
	UserID         int
	LocationID     int
	OrderTypeID    int
	TerminalNumber string
}

// CartLine is a single line of the in-memory cart.
type CartLine struct {
	ItemID    int             `json:"item_id"`
	ItemName  string          `json:"item_name"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// OrderItemPayload is one line of an order as submitted to the backend.
type OrderItemPayload struct {
	ItemID        int             `json:"item_id"`
	Quantity      int             `json:"quantity"`
	Rate          decimal.Decimal `json:"rate"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	TaxPercentage decimal.Decimal `json:"tax_percentage"`
	Amount        decimal.Decimal `json:"amount"`
}

// OrderPayload is the unit of durability: the fully-formed order body that is
// either submitted directly or parked in the offline queue. OfflineUUID is
// assigned once, before any network attempt, and is the sole deduplication
// key the backend and the local queue agree on.
type OrderPayload struct {
	OfflineUUID       string             `json:"offline_uuid"`
	UserID            int                `json:"user_id"`
	LocationID        int                `json:"location_id"`
	OrderTypeID       int                `json:"order_type_id"`
	Items             []OrderItemPayload `json:"items"`
	Subtotal          decimal.Decimal    `json:"subtotal"`
	TaxAmount         decimal.Decimal    `json:"tax_amount"`
	DiscountAmount    decimal.Decimal    `json:"discount_amount"`
	Total             decimal.Decimal    `json:"total"`
	IsSenior          bool               `json:"isSenior"`
	IsPWD             bool               `json:"isPWD"`
	Memo              string             `json:"memo,omitempty"`
	POSTerminalNumber string             `json:"pos_terminal_number"`
	CreatedAt         time.Time          `json:"created_at"`
}

// QueueEntry is one persisted row of the offline queue.
type QueueEntry struct {
	OfflineUUID string       `json:"offline_uuid"`
	Payload     OrderPayload `json:"payload"`
	EnqueuedAt  time.Time    `json:"enqueued_at"`
}

// RejectedOrder is a queued order the backend definitively refused (4xx).
// It is kept out of the drain path but never silently discarded.
type RejectedOrder struct {
	OfflineUUID string       `json:"offline_uuid"`
	Payload     OrderPayload `json:"payload"`
	Reason      string       `json:"reason"`
	RejectedAt  time.Time    `json:"rejected_at"`
}

// OrderAck is the backend's acknowledgement of a submitted order.
type OrderAck struct {
	OrderNumber string `json:"orderNumber"`
	ServerID    int    `json:"server_id"`
}
