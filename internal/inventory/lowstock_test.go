package inventory

import (
	"context"
	"testing"

	"starpos-backend/internal/models"
	"starpos-backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLowThreshold(t *testing.T) {
	cases := []struct {
		qty  float64
		want bool
	}{
		{1.8, true},
		{2.0, true},
		{2.1, false},
		{-1, true},
		{10, false},
	}
	for _, tc := range cases {
		ing := models.Ingredient{Name: "Milk", Quantity: tc.qty, InitialQuantity: 10}
		assert.Equal(t, tc.want, IsLow(ing), "quantity %v", tc.qty)
	}
}

func TestLowStockNotifiesOncePerCrossing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, storage.NewMemory())
	ing := milk(t, f)

	_, err := f.store.UpdateIngredientQuantity(ctx, ing.ID, 1.8, "")
	require.NoError(t, err)
	_, err = f.store.UpdateIngredientQuantity(ctx, ing.ID, 1.5, "")
	require.NoError(t, err)

	notes := f.notes.List()
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationLowStock, notes[0].Type)
	assert.Equal(t, "Low Stock Alert", notes[0].Title)
	assert.Equal(t, "Milk is running low (1.8 l remaining)", notes[0].Message)

	// back above threshold clears the marker
	_, err = f.store.Restock(ctx, ing.ID, 5)
	require.NoError(t, err)
	_, err = f.store.UpdateIngredientQuantity(ctx, ing.ID, 1, "")
	require.NoError(t, err)

	assert.Len(t, f.notes.List(), 2)
}

func TestScanReportsLowIngredientsWithoutRepeatingAlerts(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	f := newFixture(t, kv)
	ing := milk(t, f)
	_, err := f.store.UpdateIngredientQuantity(ctx, ing.ID, 2, "")
	require.NoError(t, err)
	require.Len(t, f.notes.List(), 1)

	reloaded := newFixture(t, kv)
	low, err := reloaded.eval.Scan(ctx, reloaded.store.List())
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, ing.ID, low[0].ID)
	assert.Len(t, reloaded.notes.List(), 1, "marker survives restart")
}

func TestDeletingLowIngredientClearsMarker(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, storage.NewMemory())
	ing := milk(t, f)
	_, err := f.store.UpdateIngredientQuantity(ctx, ing.ID, 0.5, "")
	require.NoError(t, err)

	require.NoError(t, f.store.DeleteIngredient(ctx, ing.ID))

	var markers []int64
	_, err = storage.GetJSON(ctx, f.kv, storage.KeyLowStockMarkers, &markers)
	require.NoError(t, err)
	assert.Empty(t, markers)
}
