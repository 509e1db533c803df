package product

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

var ErrProductNotFound = errors.New("product not found")

// IngredientCatalog resolves recipe lines against the ingredient list.
type IngredientCatalog interface {
	Get(id int64) (models.Ingredient, error)
}

type NewProduct struct {
	Title          string                     `json:"title"`
	Price          float64                    `json:"price"`
	CostPerServing float64                    `json:"costPerServing"`
	Description    string                     `json:"description"`
	Image          string                     `json:"image"`
	Ingredients    []models.ProductIngredient `json:"ingredients"`
}

// ProductPatch carries the editable fields; nil means unchanged.
// Recipe composition is fixed once a product exists.
type ProductPatch struct {
	Title          *string  `json:"title"`
	Price          *float64 `json:"price"`
	CostPerServing *float64 `json:"costPerServing"`
	Description    *string  `json:"description"`
	Image          *string  `json:"image"`
}

type Store struct {
	mu      sync.Mutex
	kv      storage.Store
	ids     idgen.Generator
	clock   clock.Clock
	catalog IngredientCatalog
	log     *zap.Logger
	items   []models.Product
}

// NewStore builds a product store. catalog may be nil, in which case recipe
// lines are stored as given.
func NewStore(kv storage.Store, ids idgen.Generator, clk clock.Clock, catalog IngredientCatalog, log *zap.Logger) *Store {
	return &Store{kv: kv, ids: ids, clock: clk, catalog: catalog, log: log}
}

func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []models.Product
	if _, err := storage.GetJSON(ctx, s.kv, storage.KeyProducts, &items); err != nil {
		return err
	}
	s.items = items
	s.log.Info("products loaded", zap.Int("count", len(items)))
	return nil
}

func (s *Store) List() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Product(nil), s.items...)
}

func (s *Store) Get(id int64) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return models.Product{}, ErrProductNotFound
	}
	return s.items[idx], nil
}

// AddProduct assigns id and createdAt and appends the product.
func (s *Store) AddProduct(ctx context.Context, in NewProduct) (models.Product, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.Product{}, models.Invalid("title", "is required")
	}
	if err := checkAmount("price", in.Price); err != nil {
		return models.Product{}, err
	}
	if err := checkAmount("costPerServing", in.CostPerServing); err != nil {
		return models.Product{}, err
	}
	lines, err := s.resolveLines(in.Ingredients)
	if err != nil {
		return models.Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := models.Product{
		ID:             s.ids.Next(),
		Title:          title,
		Price:          in.Price,
		CostPerServing: in.CostPerServing,
		Description:    strings.TrimSpace(in.Description),
		Image:          in.Image,
		CreatedAt:      clock.Today(s.clock),
		Ingredients:    lines,
	}

	next := make([]models.Product, 0, len(s.items)+1)
	next = append(next, s.items...)
	next = append(next, p)
	if err := s.save(ctx, next); err != nil {
		return models.Product{}, err
	}
	s.log.Info("product added", zap.Int64("product_id", p.ID), zap.String("title", p.Title))
	return p, nil
}

func (s *Store) UpdateProduct(ctx context.Context, id int64, patch ProductPatch) (models.Product, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return models.Product{}, models.Invalid("title", "cannot be empty")
	}
	if patch.Price != nil {
		if err := checkAmount("price", *patch.Price); err != nil {
			return models.Product{}, err
		}
	}
	if patch.CostPerServing != nil {
		if err := checkAmount("costPerServing", *patch.CostPerServing); err != nil {
			return models.Product{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return models.Product{}, ErrProductNotFound
	}

	next := append([]models.Product(nil), s.items...)
	p := next[idx]
	if patch.Title != nil {
		p.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.CostPerServing != nil {
		p.CostPerServing = *patch.CostPerServing
	}
	if patch.Description != nil {
		p.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	next[idx] = p

	if err := s.save(ctx, next); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return ErrProductNotFound
	}

	next := make([]models.Product, 0, len(s.items)-1)
	next = append(next, s.items[:idx]...)
	next = append(next, s.items[idx+1:]...)
	if err := s.save(ctx, next); err != nil {
		return err
	}
	s.log.Info("product deleted", zap.Int64("product_id", id))
	return nil
}

// ReferencingIngredient lists products whose recipe names the ingredient.
func (s *Store) ReferencingIngredient(id int64) []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Product
	for _, p := range s.items {
		if p.UsesIngredient(id) {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) resolveLines(in []models.ProductIngredient) ([]models.ProductIngredient, error) {
	if len(in) == 0 {
		return nil, models.Invalid("ingredients", "add at least one ingredient")
	}

	out := make([]models.ProductIngredient, 0, len(in))
	seen := make(map[int64]bool, len(in))
	for i, line := range in {
		field := fmt.Sprintf("ingredients[%d]", i)
		if line.IngredientID <= 0 {
			return nil, models.Invalid(field, "ingredientId is required")
		}
		if seen[line.IngredientID] {
			return nil, models.Invalid(field, "ingredient listed twice")
		}
		seen[line.IngredientID] = true
		if math.IsNaN(line.QuantityPerUnit) || math.IsInf(line.QuantityPerUnit, 0) || line.QuantityPerUnit <= 0 {
			return nil, models.Invalid(field, "quantityPerUnit must be greater than zero")
		}

		if s.catalog != nil {
			ing, err := s.catalog.Get(line.IngredientID)
			if err != nil {
				return nil, models.Invalid(field, fmt.Sprintf("unknown ingredient %d", line.IngredientID))
			}
			line.Name = ing.Name
			line.Unit = ing.Unit
		}
		if !line.Unit.Valid() {
			return nil, models.Invalid(field, "unit must be one of g, kg, ml, l, pc")
		}
		out = append(out, line)
	}
	return out, nil
}

func (s *Store) save(ctx context.Context, next []models.Product) error {
	if err := storage.PutJSON(ctx, s.kv, storage.KeyProducts, next); err != nil {
		return fmt.Errorf("save products: %w", err)
	}
	s.items = next
	return nil
}

func (s *Store) indexOf(id int64) int {
	for i, p := range s.items {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func checkAmount(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return models.Invalid(field, "cannot be negative")
	}
	return nil
}
