package repository

import (
	"context"
	"testing"
	"time"

	"drugbee/internal/billing"
	"drugbee/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeProduct() *model.Product {
	return &model.Product{
		ID:         uuid.New(),
		Name:       "Dolo 650",
		Batch:      "B001",
		ExpiryDate: time.Now().AddDate(1, 0, 0),
		MRP:        decimal.NewFromInt(33),
		Price:      decimal.NewFromInt(33),
		Stock:      50,
		CgstRate:   decimal.NewFromInt(6),
		SgstRate:   decimal.NewFromInt(6),
		Active:     true,
	}
}

func TestMemoryDraftStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDraftStore()

	d := billing.NewDraft()
	require.NoError(t, d.AddItem(storeProduct(), 2))
	require.NoError(t, store.Put(ctx, d))

	got, err := store.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.True(t, got.Items[0].LineTotal.Equal(decimal.NewFromInt(66)))
}

func TestMemoryDraftStore_CopySemantics(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDraftStore()

	d := billing.NewDraft()
	require.NoError(t, d.AddItem(storeProduct(), 2))
	require.NoError(t, store.Put(ctx, d))

	// Mutating the caller's copy after Put must not leak into the store
	d.Items[0].Quantity = 99

	got, err := store.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Items[0].Quantity)

	// Likewise, mutating a Get result leaves the stored draft untouched
	got.CustomerName = "changed"
	again, err := store.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Empty(t, again.CustomerName)
}

func TestMemoryDraftStore_GetMissing(t *testing.T) {
	store := NewMemoryDraftStore()

	_, err := store.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestMemoryDraftStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDraftStore()

	d := billing.NewDraft()
	require.NoError(t, store.Put(ctx, d))
	require.NoError(t, store.Delete(ctx, d.ID))

	_, err := store.Get(ctx, d.ID)
	assert.ErrorIs(t, err, ErrDraftNotFound)

	// Deleting twice is harmless
	assert.NoError(t, store.Delete(ctx, d.ID))
}
