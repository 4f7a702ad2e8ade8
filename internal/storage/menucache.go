package storage

import (
	"context"
	"database/sql"
	"fmt"

	"pos-terminal/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// menuCache implements MenuCache on the embedded database.
type menuCache struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewMenuCache creates the local menu catalog replica.
func NewMenuCache(db *sql.DB, logger zerolog.Logger) MenuCache {
	return &menuCache{
		db:     db,
		logger: logger.With().Str("component", "menu-cache").Logger(),
	}
}

// Replace swaps the whole cached catalog in one transaction, so a reader
// never observes a mix of old and new category sets.
func (c *menuCache) Replace(ctx context.Context, locationID int, categories []model.MenuCategory, assignments map[int][]model.MenuItemAssignment) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM offline_layout_items`); err != nil {
		return fmt.Errorf("failed to clear cached items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM offline_layouts`); err != nil {
		return fmt.Errorf("failed to clear cached layouts: %w", err)
	}

	insertLayout := `
		INSERT INTO offline_layouts (server_id, name, location_id, sort_order)
		VALUES (?, ?, ?, ?)
	`
	insertItem := `
		INSERT INTO offline_layout_items (server_id, layout_server_id, item_id, item_name, price, layout_indices_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	itemCount := 0
	for _, cat := range categories {
		if _, err := tx.ExecContext(ctx, insertLayout, cat.ID, cat.Name, locationID, cat.SortOrder); err != nil {
			return fmt.Errorf("failed to cache layout %d: %w", cat.ID, err)
		}

		for _, item := range assignments[cat.ID] {
			if _, err := tx.ExecContext(ctx, insertItem,
				item.ID, cat.ID, item.ItemID, item.ItemName, item.Price.String(), item.SlotIndex,
			); err != nil {
				return fmt.Errorf("failed to cache item %d: %w", item.ID, err)
			}
			itemCount++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cache replace: %w", err)
	}

	c.logger.Info().
		Int("location_id", locationID).
		Int("categories", len(categories)).
		Int("items", itemCount).
		Msg("menu cache replaced")

	return nil
}

// Categories returns the cached categories for a location in sort order.
func (c *menuCache) Categories(ctx context.Context, locationID int) ([]model.MenuCategory, error) {
	query := `
		SELECT server_id, name, location_id, sort_order
		FROM offline_layouts
		WHERE location_id = ?
		ORDER BY sort_order, server_id
	`

	rows, err := c.db.QueryContext(ctx, query, locationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cached categories: %w", err)
	}
	defer rows.Close()

	var categories []model.MenuCategory
	for rows.Next() {
		var cat model.MenuCategory
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.LocationID, &cat.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan cached category: %w", err)
		}
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cached categories: %w", err)
	}

	return categories, nil
}

// Assignments returns the cached item assignments for one category, in slot
// order.
func (c *menuCache) Assignments(ctx context.Context, categoryServerID int) ([]model.MenuItemAssignment, error) {
	query := `
		SELECT server_id, layout_server_id, item_id, item_name, price, layout_indices_id
		FROM offline_layout_items
		WHERE layout_server_id = ?
		ORDER BY layout_indices_id, server_id
	`

	rows, err := c.db.QueryContext(ctx, query, categoryServerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cached assignments: %w", err)
	}
	defer rows.Close()

	var assignments []model.MenuItemAssignment
	for rows.Next() {
		var (
			item  model.MenuItemAssignment
			price string
		)
		if err := rows.Scan(&item.ID, &item.CategoryID, &item.ItemID, &item.ItemName, &price, &item.SlotIndex); err != nil {
			return nil, fmt.Errorf("failed to scan cached assignment: %w", err)
		}
		item.Price, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("invalid cached price %q for item %d: %w", price, item.ID, err)
		}
		assignments = append(assignments, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cached assignments: %w", err)
	}

	return assignments, nil
}
