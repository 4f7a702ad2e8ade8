package storage

import (
	"context"
	"testing"

	"pos-terminal/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLocationID = 15

func sampleCatalog() ([]model.MenuCategory, map[int][]model.MenuItemAssignment) {
	categories := []model.MenuCategory{
		{ID: 2, Name: "Drinks", LocationID: testLocationID, SortOrder: 1},
		{ID: 1, Name: "Mains", LocationID: testLocationID, SortOrder: 0},
	}
	assignments := map[int][]model.MenuItemAssignment{
		1: {
			{ID: 11, CategoryID: 1, ItemID: 101, ItemName: "Adobo", Price: decimal.RequireFromString("250"), SlotIndex: 1},
			{ID: 12, CategoryID: 1, ItemID: 102, ItemName: "Sisig", Price: decimal.RequireFromString("199.50"), SlotIndex: 2},
		},
		2: {
			{ID: 21, CategoryID: 2, ItemID: 201, ItemName: "Iced Tea", Price: decimal.RequireFromString("90"), SlotIndex: 1},
		},
	}
	return categories, assignments
}

func TestMenuCache_ReplaceAndRead(t *testing.T) {
	db, _ := openTestDB(t)
	cache := NewMenuCache(db, zerolog.Nop())
	ctx := context.Background()

	categories, assignments := sampleCatalog()
	require.NoError(t, cache.Replace(ctx, testLocationID, categories, assignments))

	got, err := cache.Categories(ctx, testLocationID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Sort order, not insertion order
	assert.Equal(t, "Mains", got[0].Name)
	assert.Equal(t, "Drinks", got[1].Name)

	items, err := cache.Assignments(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Adobo", items[0].ItemName)
	assert.True(t, items[1].Price.Equal(decimal.RequireFromString("199.50")),
		"price must round-trip exactly, got %s", items[1].Price)
	assert.Equal(t, 1, items[0].CategoryID)
}

func TestMenuCache_ReplaceIsFullSwap(t *testing.T) {
	db, _ := openTestDB(t)
	cache := NewMenuCache(db, zerolog.Nop())
	ctx := context.Background()

	categories, assignments := sampleCatalog()
	require.NoError(t, cache.Replace(ctx, testLocationID, categories, assignments))

	// Second sync carries a smaller catalog; nothing old may survive
	newCategories := []model.MenuCategory{
		{ID: 3, Name: "Desserts", LocationID: testLocationID, SortOrder: 0},
	}
	newAssignments := map[int][]model.MenuItemAssignment{
		3: {{ID: 31, CategoryID: 3, ItemID: 301, ItemName: "Halo-Halo", Price: decimal.RequireFromString("120"), SlotIndex: 1}},
	}
	require.NoError(t, cache.Replace(ctx, testLocationID, newCategories, newAssignments))

	got, err := cache.Categories(ctx, testLocationID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Desserts", got[0].Name)

	stale, err := cache.Assignments(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, stale, "assignments of replaced categories must be gone")
}

func TestMenuCache_CategoryWithNoItems(t *testing.T) {
	db, _ := openTestDB(t)
	cache := NewMenuCache(db, zerolog.Nop())
	ctx := context.Background()

	categories := []model.MenuCategory{
		{ID: 1, Name: "Mains", LocationID: testLocationID, SortOrder: 0},
	}
	// A category whose item fetch failed is cached with an empty list
	require.NoError(t, cache.Replace(ctx, testLocationID, categories, map[int][]model.MenuItemAssignment{1: nil}))

	got, err := cache.Categories(ctx, testLocationID)
	require.NoError(t, err)
	require.Len(t, got, 1)

	items, err := cache.Assignments(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMenuCache_OtherLocationInvisible(t *testing.T) {
	db, _ := openTestDB(t)
	cache := NewMenuCache(db, zerolog.Nop())
	ctx := context.Background()

	categories, assignments := sampleCatalog()
	require.NoError(t, cache.Replace(ctx, testLocationID, categories, assignments))

	got, err := cache.Categories(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMenuCache_DurableAcrossReopen(t *testing.T) {
	db, path := openTestDB(t)
	cache := NewMenuCache(db, zerolog.Nop())
	ctx := context.Background()

	categories, assignments := sampleCatalog()
	require.NoError(t, cache.Replace(ctx, testLocationID, categories, assignments))
	require.NoError(t, db.Close())

	db2, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	defer db2.Close()

	got, err := NewMenuCache(db2, zerolog.Nop()).Categories(ctx, testLocationID)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
