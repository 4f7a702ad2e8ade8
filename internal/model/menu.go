package model

import "github.com/shopspring/decimal"

// MenuCategory is a read-only replica of a backend layout: a named tab of
// the order-capture grid. Owned by the backend, replicated locally by a
// full-replace sync, never mutated on the terminal.
type MenuCategory struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	LocationID int    `json:"location_id"`
	SortOrder  int    `json:"sort_order"`
}

// MenuItemAssignment places one item in a category slot. CategoryID is
// carried as a plain denormalized field so cached reads never depend on a
// prior category fetch having succeeded.
type MenuItemAssignment struct {
	ID         int             `json:"id"`
	CategoryID int             `json:"layout_id"`
	ItemID     int             `json:"item_id"`
	ItemName   string          `json:"item_name"`
	Price      decimal.Decimal `json:"price"`
	SlotIndex  int             `json:"layout_indices_id"`
}
