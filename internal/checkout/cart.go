package checkout

import (
	"sync"

	"pos-terminal/internal/model"

	"github.com/shopspring/decimal"
)

// Cart is the in-memory order being captured on this terminal. It is safe
// for use from the control surface and the capture workflow concurrently.
type Cart struct {
	mu        sync.Mutex
	lines     []model.CartLine
	selection DiscountSelection
}

// NewCart creates an empty cart with no discount selected.
func NewCart() *Cart {
	return &Cart{selection: NoDiscount()}
}

// Add puts one unit of an item in the cart, merging into an existing line
// for the same item.
func (c *Cart) Add(itemID int, itemName string, unitPrice decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			c.lines[i].Quantity++
			return
		}
	}

	c.lines = append(c.lines, model.CartLine{
		ItemID:    itemID,
		ItemName:  itemName,
		UnitPrice: unitPrice,
		Quantity:  1,
	})
}

// Remove deletes an item's line entirely.
func (c *Cart) Remove(itemID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return nil
		}
	}

	return model.ErrItemNotInCart
}

// UpdateQuantity sets a line's quantity. A requested quantity below 1 is a
// no-op, not a removal.
func (c *Cart) UpdateQuantity(itemID, quantity int) error {
	if quantity < 1 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			c.lines[i].Quantity = quantity
			return nil
		}
	}

	return model.ErrItemNotInCart
}

// SetDiscount replaces the cart's discount selection wholesale. Because the
// selection is a single tagged value, choosing senior/PWD implicitly clears
// any manual discount and vice versa.
func (c *Cart) SetDiscount(sel DiscountSelection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection = sel
}

// Discount returns the active discount selection.
func (c *Cart) Discount() DiscountSelection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection
}

// Clear empties the cart and resets the discount selection.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	c.selection = NoDiscount()
}

// Lines returns a snapshot of the cart's lines.
func (c *Cart) Lines() []model.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := make([]model.CartLine, len(c.lines))
	copy(snapshot, c.lines)
	return snapshot
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines) == 0
}

// Totals computes a fresh breakdown for the cart's current state.
func (c *Cart) Totals() TotalsBreakdown {
	c.mu.Lock()
	lines := make([]model.CartLine, len(c.lines))
	copy(lines, c.lines)
	sel := c.selection
	c.mu.Unlock()

	return Calculate(lines, sel)
}
