package audit

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// GET /api/ingredients/:id/movements
func ListMovementsHandler(j *Journal) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid ingredient id")
		}
		return c.JSON(j.List(id))
	}
}

// GET /api/stock-movements
func ListAllMovementsHandler(j *Journal) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(j.List(0))
	}
}
