package profile

import (
	"errors"

	"starpos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GET /api/profile
func GetProfileHandler(s *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(s.Get())
	}
}

// PUT /api/profile
func UpdateProfileHandler(s *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body Patch
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		info, err := s.Update(c.UserContext(), body)
		if err != nil {
			var vErr *models.ValidationError
			if errors.As(err, &vErr) {
				return fiber.NewError(fiber.StatusBadRequest, vErr.Error())
			}
			return err
		}
		return c.JSON(info)
	}
}
