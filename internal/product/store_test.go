package product

import (
	"context"
	"errors"
	"testing"
	"time"

	"starpos-backend/internal/clock"
	"starpos-backend/internal/idgen"
	"starpos-backend/internal/models"
	"starpos-backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type catalog map[int64]models.Ingredient

func (c catalog) Get(id int64) (models.Ingredient, error) {
	ing, ok := c[id]
	if !ok {
		return models.Ingredient{}, errors.New("missing")
	}
	return ing, nil
}

var testCatalog = catalog{
	1: {ID: 1, Name: "Milk", Unit: models.UnitLiter, Quantity: 10, InitialQuantity: 10},
	2: {ID: 2, Name: "Espresso Beans", Unit: models.UnitGram, Quantity: 1000, InitialQuantity: 1000},
}

func newTestStore(t *testing.T, kv storage.Store) *Store {
	t.Helper()
	clk := clock.NewFakeClock(time.Date(2026, time.October, 16, 10, 0, 0, 0, time.UTC))
	s := NewStore(kv, idgen.NewSequence(500), clk, testCatalog, zap.NewNop())
	require.NoError(t, s.Load(context.Background()))
	return s
}

func latte() NewProduct {
	return NewProduct{
		Title:          "Latte",
		Price:          120,
		CostPerServing: 45,
		Image:          "file:///latte.jpg",
		Ingredients: []models.ProductIngredient{
			{IngredientID: 1, QuantityPerUnit: 0.2},
			{IngredientID: 2, QuantityPerUnit: 18},
		},
	}
}

func TestAddProductAssignsIDAndCreatedAt(t *testing.T) {
	s := newTestStore(t, storage.NewMemory())

	p, err := s.AddProduct(context.Background(), latte())
	require.NoError(t, err)

	assert.Equal(t, int64(500), p.ID)
	assert.Equal(t, "October 16, 2026", p.CreatedAt)
	require.Len(t, p.Ingredients, 2)
	assert.Equal(t, "Milk", p.Ingredients[0].Name)
	assert.Equal(t, models.UnitLiter, p.Ingredients[0].Unit)
	assert.Equal(t, []models.Product{p}, s.List())
}

func TestAddProductValidation(t *testing.T) {
	s := newTestStore(t, storage.NewMemory())

	noTitle := latte()
	noTitle.Title = "  "
	negative := latte()
	negative.Price = -1
	empty := latte()
	empty.Ingredients = nil
	unknown := latte()
	unknown.Ingredients = []models.ProductIngredient{{IngredientID: 99, QuantityPerUnit: 1}}
	zeroQty := latte()
	zeroQty.Ingredients = []models.ProductIngredient{{IngredientID: 1, QuantityPerUnit: 0}}

	for name, in := range map[string]NewProduct{
		"title": noTitle, "price": negative, "empty": empty, "unknown": unknown, "zero": zeroQty,
	} {
		_, err := s.AddProduct(context.Background(), in)
		var vErr *models.ValidationError
		assert.ErrorAs(t, err, &vErr, name)
	}
	assert.Empty(t, s.List())
}

func TestUpdateProductMergesPatch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())
	p, err := s.AddProduct(ctx, latte())
	require.NoError(t, err)

	price := 135.0
	desc := "double shot"
	updated, err := s.UpdateProduct(ctx, p.ID, ProductPatch{Price: &price, Description: &desc})
	require.NoError(t, err)

	assert.Equal(t, "Latte", updated.Title)
	assert.Equal(t, 135.0, updated.Price)
	assert.Equal(t, "double shot", updated.Description)
	assert.Equal(t, p.Ingredients, updated.Ingredients)
	assert.Equal(t, p.CreatedAt, updated.CreatedAt)

	_, err = s.UpdateProduct(ctx, 1234, ProductPatch{Price: &price})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestDeleteProduct(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s := newTestStore(t, kv)
	p, err := s.AddProduct(ctx, latte())
	require.NoError(t, err)

	assert.ErrorIs(t, s.DeleteProduct(ctx, 1234), ErrProductNotFound)
	require.NoError(t, s.DeleteProduct(ctx, p.ID))
	assert.Empty(t, s.List())

	_, err = s.Get(p.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)

	assert.Empty(t, newTestStore(t, kv).List())
}

func TestReferencingIngredient(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())
	p, err := s.AddProduct(ctx, latte())
	require.NoError(t, err)

	espresso := NewProduct{Title: "Espresso", Price: 90, Ingredients: []models.ProductIngredient{{IngredientID: 2, QuantityPerUnit: 18}}}
	_, err = s.AddProduct(ctx, espresso)
	require.NoError(t, err)

	refs := s.ReferencingIngredient(1)
	require.Len(t, refs, 1)
	assert.Equal(t, p.ID, refs[0].ID)
	assert.Len(t, s.ReferencingIngredient(2), 2)
	assert.Empty(t, s.ReferencingIngredient(3))
}

func TestAddProductWriteFailureKeepsList(t *testing.T) {
	faulty := storage.NewFaulty(storage.NewMemory())
	s := newTestStore(t, faulty)
	faulty.FailWrites(storage.KeyProducts, errors.New("disk full"))

	_, err := s.AddProduct(context.Background(), latte())
	require.Error(t, err)
	assert.Empty(t, s.List())
}
