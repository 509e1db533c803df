package audit

import (
	"context"
	"fmt"
	"sync"

	"starpos-backend/internal/models"
	"starpos-backend/internal/storage"

	"go.uber.org/zap"
)

const DefaultLimit = 1000

// Journal records stock movements, newest first, bounded to limit entries.
type Journal struct {
	mu      sync.Mutex
	kv      storage.Store
	log     *zap.Logger
	limit   int
	entries []models.StockMovement
}

func NewJournal(kv storage.Store, log *zap.Logger, limit int) *Journal {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Journal{kv: kv, log: log, limit: limit}
}

func (j *Journal) Load(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	var entries []models.StockMovement
	if _, err := storage.GetJSON(ctx, j.kv, storage.KeyStockMovements, &entries); err != nil {
		return err
	}
	j.entries = entries
	j.log.Debug("stock movements loaded", zap.Int("count", len(entries)))
	return nil
}

// Append adds movements in the order given; the last one ends up first.
func (j *Journal) Append(ctx context.Context, moves ...models.StockMovement) error {
	if len(moves) == 0 {
		return nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	next := make([]models.StockMovement, 0, len(j.entries)+len(moves))
	for i := len(moves) - 1; i >= 0; i-- {
		next = append(next, moves[i])
	}
	next = append(next, j.entries...)
	if len(next) > j.limit {
		next = next[:j.limit]
	}

	if err := storage.PutJSON(ctx, j.kv, storage.KeyStockMovements, next); err != nil {
		return fmt.Errorf("save stock movements: %w", err)
	}
	j.entries = next
	return nil
}

// List returns movements for one ingredient, or all of them when ingredientID is 0.
func (j *Journal) List(ingredientID int64) []models.StockMovement {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]models.StockMovement, 0)
	for _, m := range j.entries {
		if ingredientID == 0 || m.IngredientID == ingredientID {
			out = append(out, m)
		}
	}
	return out
}
