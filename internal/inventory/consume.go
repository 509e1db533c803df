package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"starpos-backend/internal/models"
)

var ErrInsufficientStock = errors.New("insufficient stock")

// StockPolicy decides what happens when a sale needs more than is on hand.
type StockPolicy string

const (
	// PolicyAllow lets quantity go negative, flagging over-selling.
	PolicyAllow StockPolicy = "allow"
	// PolicyClamp floors quantity at zero.
	PolicyClamp StockPolicy = "clamp"
	// PolicyReject refuses the whole consumption.
	PolicyReject StockPolicy = "reject"
)

func ParseStockPolicy(s string) (StockPolicy, error) {
	switch p := StockPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyAllow, PolicyClamp, PolicyReject:
		return p, nil
	case "":
		return PolicyAllow, nil
	default:
		return "", fmt.Errorf("unknown stock policy %q", s)
	}
}

type Deduction struct {
	IngredientID int64
	Amount       float64
}

type AppliedDeduction struct {
	IngredientID int64       `json:"ingredientId"`
	Name         string      `json:"name"`
	Unit         models.Unit `json:"unit"`
	Used         float64     `json:"used"`
	Previous     float64     `json:"previous"`
	Remaining    float64     `json:"remaining"`
}

type ConsumptionResult struct {
	Applied []AppliedDeduction `json:"applied"`
	Skipped []int64            `json:"skipped"` // ingredient ids no longer in stock list
}

type Shortage struct {
	IngredientID int64       `json:"ingredientId"`
	Name         string      `json:"name"`
	Unit         models.Unit `json:"unit"`
	Required     float64     `json:"required"`
	Available    float64     `json:"available"`
}

type ShortageError struct {
	Shortages []Shortage
}

func (e *ShortageError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, sh := range e.Shortages {
		parts = append(parts, fmt.Sprintf("%s (need %v %s, have %v)", sh.Name, sh.Required, sh.Unit, sh.Available))
	}
	return "insufficient stock: " + strings.Join(parts, ", ")
}

func (e *ShortageError) Unwrap() error { return ErrInsufficientStock }

// Consume subtracts every deduction in a single write. Deductions for the same
// ingredient are summed first. Ingredients missing from the list are skipped.
func (s *Store) Consume(ctx context.Context, deductions []Deduction, policy StockPolicy, reference string) (ConsumptionResult, error) {
	return s.ConsumeFor(ctx, deductions, policy, reference, nil)
}

// ConsumeFor is Consume for a sale that commit records. The shortage check,
// commit and the stock write all run under the store lock, so no other
// quantity change lands between them. When the check or commit fails nothing
// is deducted.
func (s *Store) ConsumeFor(ctx context.Context, deductions []Deduction, policy StockPolicy, reference string, commit func(context.Context) error) (ConsumptionResult, error) {
	totals := aggregate(deductions)

	s.mu.Lock()
	defer s.mu.Unlock()

	if policy == PolicyReject {
		if short := shortages(s.items, totals); len(short) > 0 {
			return ConsumptionResult{}, &ShortageError{Shortages: short}
		}
	}

	now := s.clock.Now()
	today := now.Format(models.LongDateLayout)
	next := s.snapshot()

	var (
		result  ConsumptionResult
		changed []models.Ingredient
		moves   []models.StockMovement
	)
	for _, d := range totals {
		idx := indexOf(next, d.IngredientID)
		if idx < 0 {
			result.Skipped = append(result.Skipped, d.IngredientID)
			continue
		}

		ing := next[idx]
		prev := ing.Quantity
		remaining := roundQty(prev - d.Amount)
		if policy == PolicyClamp && remaining < 0 {
			remaining = 0
		}
		ing.Quantity = remaining
		ing.LastAdded = today
		next[idx] = ing

		result.Applied = append(result.Applied, AppliedDeduction{
			IngredientID: ing.ID,
			Name:         ing.Name,
			Unit:         ing.Unit,
			Used:         roundQty(prev - remaining),
			Previous:     prev,
			Remaining:    remaining,
		})
		changed = append(changed, ing)

		move := movement(ing, models.MovementConsumption, prev, reference)
		move.At = now
		moves = append(moves, move)
	}

	if commit != nil {
		if err := commit(ctx); err != nil {
			return ConsumptionResult{}, err
		}
	}

	if len(changed) == 0 {
		return result, nil
	}
	if err := s.save(ctx, next); err != nil {
		return ConsumptionResult{}, err
	}
	s.afterChange(ctx, changed, moves)
	return result, nil
}

func aggregate(deductions []Deduction) []Deduction {
	out := make([]Deduction, 0, len(deductions))
	pos := make(map[int64]int, len(deductions))
	for _, d := range deductions {
		if i, ok := pos[d.IngredientID]; ok {
			out[i].Amount += d.Amount
			continue
		}
		pos[d.IngredientID] = len(out)
		out = append(out, d)
	}
	for i := range out {
		out[i].Amount = roundQty(out[i].Amount)
	}
	return out
}

func shortages(items []models.Ingredient, totals []Deduction) []Shortage {
	var out []Shortage
	for _, d := range totals {
		idx := indexOf(items, d.IngredientID)
		if idx < 0 {
			continue
		}
		if ing := items[idx]; ing.Quantity < d.Amount {
			out = append(out, Shortage{
				IngredientID: ing.ID,
				Name:         ing.Name,
				Unit:         ing.Unit,
				Required:     d.Amount,
				Available:    ing.Quantity,
			})
		}
	}
	return out
}
