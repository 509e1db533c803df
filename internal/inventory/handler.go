package inventory

import (
	"errors"
	"strconv"

	"starpos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type IngredientResponse struct {
	models.Ingredient
	Low bool `json:"low"`
}

type UpdateQuantityRequest struct {
	Quantity  *float64 `json:"quantity"`
	LastAdded string   `json:"lastAdded"`
}

type RestockRequest struct {
	Quantity float64 `json:"quantity"`
}

type DeleteIngredientResponse struct {
	ID               int64    `json:"id"`
	DanglingProducts []int64  `json:"danglingProducts"`
	DanglingTitles   []string `json:"danglingTitles"`
}

// ProductReferences finds products whose recipe still names an ingredient.
type ProductReferences interface {
	ReferencingIngredient(id int64) []models.Product
}

func toResponse(ev *Evaluator, ing models.Ingredient) IngredientResponse {
	return IngredientResponse{Ingredient: ing, Low: ev.IsLow(ing)}
}

// GET /api/ingredients
func ListIngredientsHandler(s *Store, ev *Evaluator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items := s.List()
		res := make([]IngredientResponse, 0, len(items))
		for _, ing := range items {
			res = append(res, toResponse(ev, ing))
		}
		return c.JSON(res)
	}
}

// GET /api/ingredients/low-stock
// Evaluates every ingredient like the inventory screen does on load.
func LowStockHandler(s *Store, ev *Evaluator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		low, err := ev.Scan(c.UserContext(), s.List())
		if err != nil {
			return err
		}
		return c.JSON(low)
	}
}

// POST /api/ingredients
// 201 when a new record is created, 200 when merged into an existing one.
func CreateIngredientHandler(s *Store, ev *Evaluator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body AddIngredientInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		ing, merged, err := s.AddIngredient(c.UserContext(), body)
		if err != nil {
			return toFiberError(err)
		}

		status := fiber.StatusCreated
		if merged {
			status = fiber.StatusOK
		}
		return c.Status(status).JSON(toResponse(ev, ing))
	}
}

// PUT /api/ingredients/:id/quantity
func UpdateQuantityHandler(s *Store, ev *Evaluator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		var body UpdateQuantityRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.Quantity == nil {
			return fiber.NewError(fiber.StatusBadRequest, "quantity is required")
		}

		ing, err := s.UpdateIngredientQuantity(c.UserContext(), id, *body.Quantity, body.LastAdded)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(toResponse(ev, ing))
	}
}

// POST /api/ingredients/:id/restock
func RestockHandler(s *Store, ev *Evaluator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		var body RestockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		ing, err := s.Restock(c.UserContext(), id, body.Quantity)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(toResponse(ev, ing))
	}
}

// DELETE /api/ingredients/:id
// The ingredient is removed even when recipes still reference it; those
// products are reported so the caller can fix them.
func DeleteIngredientHandler(s *Store, refs ProductReferences) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		if err := s.DeleteIngredient(c.UserContext(), id); err != nil {
			return toFiberError(err)
		}

		res := DeleteIngredientResponse{ID: id, DanglingProducts: []int64{}, DanglingTitles: []string{}}
		for _, p := range refs.ReferencingIngredient(id) {
			res.DanglingProducts = append(res.DanglingProducts, p.ID)
			res.DanglingTitles = append(res.DanglingTitles, p.Title)
		}
		return c.JSON(res)
	}
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid ingredient id")
	}
	return id, nil
}

func toFiberError(err error) error {
	var vErr *models.ValidationError
	switch {
	case errors.As(err, &vErr):
		return fiber.NewError(fiber.StatusBadRequest, vErr.Error())
	case errors.Is(err, ErrIngredientNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrInsufficientStock):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	return err
}
