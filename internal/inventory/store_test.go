package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"starpos-backend/internal/audit"
	"starpos-backend/internal/clock"
	"starpos-backend/internal/idgen"
	"starpos-backend/internal/models"
	"starpos-backend/internal/notification"
	"starpos-backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	kv      storage.Store
	clock   *clock.FakeClock
	store   *Store
	eval    *Evaluator
	notes   *notification.Store
	journal *audit.Journal
}

func newFixture(t *testing.T, kv storage.Store) *fixture {
	t.Helper()
	ctx := context.Background()
	log := zap.NewNop()
	clk := clock.NewFakeClock(time.Date(2026, time.October, 16, 8, 30, 0, 0, time.UTC))
	ids := idgen.NewSequence(100)

	notes := notification.NewStore(kv, ids, clk, log)
	require.NoError(t, notes.Load(ctx))
	journal := audit.NewJournal(kv, log, 0)
	require.NoError(t, journal.Load(ctx))
	eval := NewEvaluator(kv, notes, DefaultLowStockRatio, nil, log)
	require.NoError(t, eval.Load(ctx))

	s := NewStore(kv, ids, clk, log, WithObserver(eval), WithJournal(journal))
	require.NoError(t, s.Load(ctx))

	return &fixture{kv: kv, clock: clk, store: s, eval: eval, notes: notes, journal: journal}
}

func milk(t *testing.T, f *fixture) models.Ingredient {
	t.Helper()
	ing, merged, err := f.store.AddIngredient(context.Background(), AddIngredientInput{Name: "Milk", Quantity: 10, Unit: "l", Cost: 50})
	require.NoError(t, err)
	require.False(t, merged)
	return ing
}

func TestAddIngredientCreatesRecord(t *testing.T) {
	f := newFixture(t, storage.NewMemory())

	ing := milk(t, f)

	assert.NotZero(t, ing.ID)
	assert.Equal(t, "Milk", ing.Name)
	assert.Equal(t, models.UnitLiter, ing.Unit)
	assert.Equal(t, 10.0, ing.Quantity)
	assert.Equal(t, 10.0, ing.InitialQuantity)
	assert.Equal(t, 50.0, ing.Cost)
	assert.Equal(t, "October 16, 2026", ing.LastAdded)
}

func TestAddIngredientMergesOnNormalizedNameAndUnit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, storage.NewMemory())
	first := milk(t, f)

	f.clock.Advance(48 * time.Hour)
	merged, ok, err := f.store.AddIngredient(ctx, AddIngredientInput{Name: "  mILK ", Quantity: 5, Unit: "L", Cost: 55})
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, first.ID, merged.ID)
	assert.Equal(t, "Milk", merged.Name)
	assert.Equal(t, 15.0, merged.Quantity)
	assert.Equal(t, 15.0, merged.InitialQuantity)
	assert.Equal(t, 55.0, merged.Cost, "cost is replaced, not averaged")
	assert.Equal(t, "October 18, 2026", merged.LastAdded)
	assert.Len(t, f.store.List(), 1)
}

func TestAddIngredientDifferentUnitIsSeparateRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, storage.NewMemory())
	milk(t, f)

	_, merged, err := f.store.AddIngredient(ctx, AddIngredientInput{Name: "Milk", Quantity: 500, Unit: "ml", Cost: 3})
	require.NoError(t, err)
	assert.False(t, merged)
	assert.Len(t, f.store.List(), 2)
}

func TestAddIngredientTwiceSumsQuantities(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, storage.NewMemory())

	for _, q := range []struct {
		qty, cost float64
	}{{2.5, 10}, {1.25, 12}} {
		_, _, err := f.store.AddIngredient(ctx, AddIngredientInput{Name: "Sugar", Quantity: q.qty, Unit: "kg", Cost: q.cost})
		require.NoError(t, err)
	}

	items := f.store.List()
	require.Len(t, items, 1)
	assert.Equal(t, 3.75, items[0].Quantity)
	assert.Equal(t, 3.75, items[0].InitialQuantity)
	assert.Equal(t, 12.0, items[0].Cost)
}

func TestAddIngredientValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, storage.NewMemory())

	cases := []AddIngredientInput{
		{Name: " ", Quantity: 1, Unit: "g", Cost: 1},
		{Name: "Beans", Quantity: 1, Unit: "cup", Cost: 1},
		{Name: "Beans", Quantity: 0, Unit: "g", Cost: 1},
		{Name: "Beans", Quantity: 1, Unit: "g", Cost: -1},
	}
	for _, in := range cases {
		_, _, err := f.store.AddIngredient(ctx, in)
		var vErr *models.ValidationError
		assert.ErrorAs(t, err, &vErr, "%+v", in)
	}
	assert.Empty(t, f.store.List())
}

func TestUpdateIngredientQuantityKeepsInitialQuantity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, storage.NewMemory())
	ing := milk(t, f)

	updated, err := f.store.UpdateIngredientQuantity(ctx, ing.ID, 7.5, "October 20, 2026")
	require.NoError(t, err)
	assert.Equal(t, 7.5, updated.Quantity)
	assert.Equal(t, 10.0, updated.InitialQuantity)
	assert.Equal(t, "October 20, 2026", updated.LastAdded)
}

func TestUnknownIDsReturnNotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, storage.NewMemory())
	milk(t, f)
	before := f.store.List()

	_, err := f.store.UpdateIngredientQuantity(ctx, 42, 1, "")
	assert.ErrorIs(t, err, ErrIngredientNotFound)

	_, err = f.store.Restock(ctx, 42, 1)
	assert.ErrorIs(t, err, ErrIngredientNotFound)

	err = f.store.DeleteIngredient(ctx, 42)
	assert.ErrorIs(t, err, ErrIngredientNotFound)

	assert.Equal(t, before, f.store.List())
}

func TestDeleteIngredient(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	f := newFixture(t, kv)
	ing := milk(t, f)

	require.NoError(t, f.store.DeleteIngredient(ctx, ing.ID))
	assert.Empty(t, f.store.List())

	reloaded := newFixture(t, kv)
	assert.Empty(t, reloaded.store.List())
}

func TestRestockAddsToQuantityOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, storage.NewMemory())
	ing := milk(t, f)

	got, err := f.store.Restock(ctx, ing.ID, 2.5)
	require.NoError(t, err)
	assert.Equal(t, 12.5, got.Quantity)
	assert.Equal(t, 10.0, got.InitialQuantity)

	_, err = f.store.Restock(ctx, ing.ID, -1)
	var vErr *models.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestStatePersistsAcrossReload(t *testing.T) {
	kv := storage.NewMemory()
	f := newFixture(t, kv)
	milk(t, f)

	reloaded := newFixture(t, kv)
	assert.Equal(t, f.store.List(), reloaded.store.List())
}

func TestFailedWriteLeavesMemoryUnchanged(t *testing.T) {
	ctx := context.Background()
	faulty := storage.NewFaulty(storage.NewMemory())
	f := newFixture(t, faulty)
	ing := milk(t, f)

	faulty.FailWrites(storage.KeyIngredients, errors.New("write failed"))

	_, _, err := f.store.AddIngredient(ctx, AddIngredientInput{Name: "milk", Quantity: 5, Unit: "l", Cost: 60})
	require.Error(t, err)

	_, err = f.store.UpdateIngredientQuantity(ctx, ing.ID, 1, "")
	require.Error(t, err)

	got, err := f.store.Get(ing.ID)
	require.NoError(t, err)
	assert.Equal(t, ing, got)
}

func TestMutationsAreJournaled(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, storage.NewMemory())
	ing := milk(t, f)

	_, err := f.store.Restock(ctx, ing.ID, 1)
	require.NoError(t, err)
	_, err = f.store.UpdateIngredientQuantity(ctx, ing.ID, 4, "")
	require.NoError(t, err)

	moves := f.journal.List(ing.ID)
	require.Len(t, moves, 3)
	assert.Equal(t, models.MovementAdjustment, moves[0].Kind)
	assert.Equal(t, -7.0, moves[0].Delta)
	assert.Equal(t, models.MovementRestock, moves[1].Kind)
	assert.Equal(t, models.MovementCreate, moves[2].Kind)
}
