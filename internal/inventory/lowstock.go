package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"starpos-backend/internal/models"
	"starpos-backend/internal/storage"

	"go.uber.org/zap"
)

const DefaultLowStockRatio = 0.2

// IsLow reports quantity <= 20% of initialQuantity, boundary inclusive.
func IsLow(ing models.Ingredient) bool {
	return IsLowAt(ing, DefaultLowStockRatio)
}

func IsLowAt(ing models.Ingredient, ratio float64) bool {
	return ing.Quantity <= ing.InitialQuantity*ratio
}

type Notifier interface {
	Add(ctx context.Context, title, message string, typ models.NotificationType) (models.Notification, error)
}

type LowStockGauge interface {
	SetLowStock(n int)
}

// Evaluator raises one low_stock notification per ingredient each time it
// crosses into the low zone. The persisted marker is cleared once the
// ingredient is above the threshold again or is deleted.
type Evaluator struct {
	mu       sync.Mutex
	kv       storage.Store
	notifier Notifier
	gauge    LowStockGauge
	ratio    float64
	log      *zap.Logger
	marked   map[int64]bool
}

func NewEvaluator(kv storage.Store, notifier Notifier, ratio float64, gauge LowStockGauge, log *zap.Logger) *Evaluator {
	if ratio <= 0 {
		ratio = DefaultLowStockRatio
	}
	return &Evaluator{
		kv:       kv,
		notifier: notifier,
		gauge:    gauge,
		ratio:    ratio,
		log:      log,
		marked:   map[int64]bool{},
	}
}

func (e *Evaluator) Load(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var ids []int64
	if _, err := storage.GetJSON(ctx, e.kv, storage.KeyLowStockMarkers, &ids); err != nil {
		return err
	}
	e.marked = make(map[int64]bool, len(ids))
	for _, id := range ids {
		e.marked[id] = true
	}
	e.publish()
	return nil
}

func (e *Evaluator) IsLow(ing models.Ingredient) bool {
	return IsLowAt(ing, e.ratio)
}

func (e *Evaluator) IngredientChanged(ctx context.Context, ing models.Ingredient) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	low := e.IsLow(ing)
	switch {
	case low && !e.marked[ing.ID]:
		msg := fmt.Sprintf("%s is running low (%s %s remaining)", ing.Name, formatQuantity(ing.Quantity), ing.Unit)
		if _, err := e.notifier.Add(ctx, "Low Stock Alert", msg, models.NotificationLowStock); err != nil {
			return fmt.Errorf("low stock notification for %d: %w", ing.ID, err)
		}
		e.log.Info("low stock", zap.Int64("ingredient_id", ing.ID), zap.String("name", ing.Name), zap.Float64("quantity", ing.Quantity))
		return e.setMarker(ctx, ing.ID, true)
	case !low && e.marked[ing.ID]:
		return e.setMarker(ctx, ing.ID, false)
	}
	return nil
}

func (e *Evaluator) IngredientRemoved(ctx context.Context, id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.marked[id] {
		return nil
	}
	return e.setMarker(ctx, id, false)
}

// Scan evaluates every ingredient (inventory screen load) and returns the low ones.
func (e *Evaluator) Scan(ctx context.Context, ings []models.Ingredient) ([]models.Ingredient, error) {
	low := make([]models.Ingredient, 0)
	var errs []error
	for _, ing := range ings {
		if e.IsLow(ing) {
			low = append(low, ing)
		}
		if err := e.IngredientChanged(ctx, ing); err != nil {
			errs = append(errs, err)
		}
	}
	return low, errors.Join(errs...)
}

func (e *Evaluator) setMarker(ctx context.Context, id int64, on bool) error {
	next := make(map[int64]bool, len(e.marked)+1)
	for k := range e.marked {
		next[k] = true
	}
	if on {
		next[id] = true
	} else {
		delete(next, id)
	}

	ids := make([]int64, 0, len(next))
	for k := range next {
		ids = append(ids, k)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if err := storage.PutJSON(ctx, e.kv, storage.KeyLowStockMarkers, ids); err != nil {
		return fmt.Errorf("save low stock markers: %w", err)
	}
	e.marked = next
	e.publish()
	return nil
}

func (e *Evaluator) publish() {
	if e.gauge != nil {
		e.gauge.SetLowStock(len(e.marked))
	}
}

func formatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
