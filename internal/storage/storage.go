package storage

import (
	"context"

	"pos-terminal/internal/model"
)

// OrderQueue is the durable store of orders awaiting upload. Add is
// append-only and must survive process restarts; Remove is idempotent;
// Count reads durable state, never an in-memory shadow.
type OrderQueue interface {
	// Add persists a fully-formed order payload. A returned error means the
	// order is NOT durable and must be surfaced to the operator.
	Add(ctx context.Context, payload *model.OrderPayload) error

	// GetAll returns every queued entry in insertion order.
	GetAll(ctx context.Context) ([]model.QueueEntry, error)

	// Remove deletes the entry with the given offline UUID. Removing an
	// absent UUID is a no-op.
	Remove(ctx context.Context, offlineUUID string) error

	// Count returns the number of queued entries.
	Count(ctx context.Context) (int, error)

	// Reject moves an entry out of the queue into the rejected log in one
	// transaction, so it can neither block the drain nor be lost.
	Reject(ctx context.Context, entry model.QueueEntry, reason string) error

	// Rejected returns the rejected-order log, newest first.
	Rejected(ctx context.Context) ([]model.RejectedOrder, error)
}

// MenuCache is the local read-through replica of the menu catalog. Replace
// is all-or-nothing; reads are pure local and never touch the network.
type MenuCache interface {
	// Replace atomically swaps the entire cached catalog for a location.
	Replace(ctx context.Context, locationID int, categories []model.MenuCategory, assignments map[int][]model.MenuItemAssignment) error

	// Categories returns the cached categories for a location in sort order.
	Categories(ctx context.Context, locationID int) ([]model.MenuCategory, error)

	// Assignments returns the cached item assignments for one category.
	Assignments(ctx context.Context, categoryServerID int) ([]model.MenuItemAssignment, error)
}
