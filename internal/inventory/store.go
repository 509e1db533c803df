package inventory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"starpos-backend/internal/clock"
	"starpos-backend/internal/idgen"
	"starpos-backend/internal/models"
	"starpos-backend/internal/storage"

	"go.uber.org/zap"
)

var ErrIngredientNotFound = errors.New("ingredient not found")

// StockObserver is told about every persisted ingredient change.
type StockObserver interface {
	IngredientChanged(ctx context.Context, ing models.Ingredient) error
	IngredientRemoved(ctx context.Context, id int64) error
}

type MovementRecorder interface {
	Append(ctx context.Context, moves ...models.StockMovement) error
}

type Option func(*Store)

func WithObserver(o StockObserver) Option {
	return func(s *Store) { s.observer = o }
}

func WithJournal(j MovementRecorder) Option {
	return func(s *Store) { s.journal = j }
}

// Store owns the ingredient list. Every mutation is written through before
// the in-memory list is replaced.
type Store struct {
	mu       sync.Mutex
	kv       storage.Store
	ids      idgen.Generator
	clock    clock.Clock
	log      *zap.Logger
	observer StockObserver
	journal  MovementRecorder
	items    []models.Ingredient
}

func NewStore(kv storage.Store, ids idgen.Generator, clk clock.Clock, log *zap.Logger, opts ...Option) *Store {
	s := &Store{kv: kv, ids: ids, clock: clk, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type AddIngredientInput struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Cost     float64 `json:"cost"`
}

func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []models.Ingredient
	if _, err := storage.GetJSON(ctx, s.kv, storage.KeyIngredients, &items); err != nil {
		return err
	}
	s.items = items
	s.log.Info("ingredients loaded", zap.Int("count", len(items)))
	return nil
}

func (s *Store) List() []models.Ingredient {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) Get(id int64) (models.Ingredient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOf(s.items, id)
	if idx < 0 {
		return models.Ingredient{}, ErrIngredientNotFound
	}
	return s.items[idx], nil
}

// AddIngredient merges into the record with the same normalized name and unit,
// or creates a new one. The bool result reports a merge.
func (s *Store) AddIngredient(ctx context.Context, in AddIngredientInput) (models.Ingredient, bool, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Ingredient{}, false, models.Invalid("name", "is required")
	}
	unit, ok := models.ParseUnit(in.Unit)
	if !ok {
		return models.Ingredient{}, false, models.Invalid("unit", "must be one of g, kg, ml, l, pc")
	}
	if !finite(in.Quantity) || in.Quantity <= 0 {
		return models.Ingredient{}, false, models.Invalid("quantity", "must be greater than zero")
	}
	if !finite(in.Cost) || in.Cost < 0 {
		return models.Ingredient{}, false, models.Invalid("cost", "cannot be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	today := now.Format(models.LongDateLayout)
	next := s.snapshot()

	var (
		result models.Ingredient
		move   models.StockMovement
		merged bool
	)
	if idx := findByNameUnit(next, name, unit); idx >= 0 {
		ing := next[idx]
		prev := ing.Quantity
		ing.Quantity = roundQty(ing.Quantity + in.Quantity)
		ing.InitialQuantity = roundQty(ing.InitialQuantity + in.Quantity)
		ing.Cost = in.Cost
		ing.LastAdded = today
		next[idx] = ing

		result, merged = ing, true
		move = movement(ing, models.MovementRestock, prev, "")
	} else {
		result = models.Ingredient{
			ID:              s.ids.Next(),
			Name:            name,
			Unit:            unit,
			Quantity:        roundQty(in.Quantity),
			InitialQuantity: roundQty(in.Quantity),
			Cost:            in.Cost,
			LastAdded:       today,
		}
		next = append(next, result)
		move = movement(result, models.MovementCreate, 0, "")
	}
	move.At = now

	if err := s.save(ctx, next); err != nil {
		return models.Ingredient{}, false, err
	}
	s.afterChange(ctx, []models.Ingredient{result}, []models.StockMovement{move})
	return result, merged, nil
}

// UpdateIngredientQuantity overwrites quantity and lastAdded. initialQuantity is untouched.
// An empty lastAdded stamps today.
func (s *Store) UpdateIngredientQuantity(ctx context.Context, id int64, newQuantity float64, lastAdded string) (models.Ingredient, error) {
	if !finite(newQuantity) {
		return models.Ingredient{}, models.Invalid("quantity", "must be a number")
	}
	return s.setQuantity(ctx, id, func(float64) float64 { return newQuantity }, lastAdded, models.MovementAdjustment)
}

// Restock adds delta to the current quantity (inventory screen "add stock").
func (s *Store) Restock(ctx context.Context, id int64, delta float64) (models.Ingredient, error) {
	if !finite(delta) || delta <= 0 {
		return models.Ingredient{}, models.Invalid("quantity", "must be greater than zero")
	}
	return s.setQuantity(ctx, id, func(cur float64) float64 { return cur + delta }, "", models.MovementRestock)
}

func (s *Store) setQuantity(ctx context.Context, id int64, fn func(float64) float64, lastAdded string, kind models.MovementKind) (models.Ingredient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOf(s.items, id)
	if idx < 0 {
		return models.Ingredient{}, ErrIngredientNotFound
	}

	now := s.clock.Now()
	if lastAdded == "" {
		lastAdded = now.Format(models.LongDateLayout)
	}

	next := s.snapshot()
	ing := next[idx]
	prev := ing.Quantity
	ing.Quantity = roundQty(fn(prev))
	ing.LastAdded = lastAdded
	next[idx] = ing

	if err := s.save(ctx, next); err != nil {
		return models.Ingredient{}, err
	}

	move := movement(ing, kind, prev, "")
	move.At = now
	s.afterChange(ctx, []models.Ingredient{ing}, []models.StockMovement{move})
	return ing, nil
}

// DeleteIngredient removes the record. Products still referencing it are left as is.
func (s *Store) DeleteIngredient(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOf(s.items, id)
	if idx < 0 {
		return ErrIngredientNotFound
	}

	removed := s.items[idx]
	next := make([]models.Ingredient, 0, len(s.items)-1)
	next = append(next, s.items[:idx]...)
	next = append(next, s.items[idx+1:]...)

	if err := s.save(ctx, next); err != nil {
		return err
	}

	if s.journal != nil {
		move := models.StockMovement{
			IngredientID: removed.ID,
			Name:         removed.Name,
			Unit:         removed.Unit,
			Kind:         models.MovementDelete,
			Delta:        -removed.Quantity,
			Previous:     removed.Quantity,
			At:           s.clock.Now(),
		}
		if err := s.journal.Append(ctx, move); err != nil {
			s.log.Warn("stock movement not journaled", zap.Int64("ingredient_id", id), zap.Error(err))
		}
	}
	if s.observer != nil {
		if err := s.observer.IngredientRemoved(ctx, id); err != nil {
			s.log.Warn("stock observer failed", zap.Int64("ingredient_id", id), zap.Error(err))
		}
	}
	return nil
}

func (s *Store) save(ctx context.Context, next []models.Ingredient) error {
	if err := storage.PutJSON(ctx, s.kv, storage.KeyIngredients, next); err != nil {
		return fmt.Errorf("save ingredients: %w", err)
	}
	s.items = next
	return nil
}

func (s *Store) afterChange(ctx context.Context, changed []models.Ingredient, moves []models.StockMovement) {
	if s.journal != nil {
		if err := s.journal.Append(ctx, moves...); err != nil {
			s.log.Warn("stock movements not journaled", zap.Int("count", len(moves)), zap.Error(err))
		}
	}
	if s.observer == nil {
		return
	}
	for _, ing := range changed {
		if err := s.observer.IngredientChanged(ctx, ing); err != nil {
			s.log.Warn("stock observer failed", zap.Int64("ingredient_id", ing.ID), zap.Error(err))
		}
	}
}

func (s *Store) snapshot() []models.Ingredient {
	return append([]models.Ingredient(nil), s.items...)
}

func indexOf(items []models.Ingredient, id int64) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func findByNameUnit(items []models.Ingredient, name string, unit models.Unit) int {
	for i, it := range items {
		if it.Matches(name, unit) {
			return i
		}
	}
	return -1
}

func movement(ing models.Ingredient, kind models.MovementKind, prev float64, ref string) models.StockMovement {
	return models.StockMovement{
		IngredientID: ing.ID,
		Name:         ing.Name,
		Unit:         ing.Unit,
		Kind:         kind,
		Delta:        roundQty(ing.Quantity - prev),
		Previous:     prev,
		New:          ing.Quantity,
		Reference:    ref,
	}
}

// roundQty keeps repeated float accumulation at six decimal places.
func roundQty(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
