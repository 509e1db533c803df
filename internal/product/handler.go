package product

import (
	"errors"
	"strconv"

	"starpos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GET /api/products
func ListProductsHandler(s *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(s.List())
	}
}

// GET /api/products/:id
func GetProductHandler(s *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		p, err := s.Get(id)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(p)
	}
}

// POST /api/products
func CreateProductHandler(s *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body NewProduct
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		p, err := s.AddProduct(c.UserContext(), body)
		if err != nil {
			return toFiberError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// PUT /api/products/:id
func UpdateProductHandler(s *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		var body ProductPatch
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		p, err := s.UpdateProduct(c.UserContext(), id, body)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(p)
	}
}

// DELETE /api/products/:id
func DeleteProductHandler(s *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		if err := s.DeleteProduct(c.UserContext(), id); err != nil {
			return toFiberError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}
	return id, nil
}

func toFiberError(err error) error {
	var vErr *models.ValidationError
	switch {
	case errors.As(err, &vErr):
		return fiber.NewError(fiber.StatusBadRequest, vErr.Error())
	case errors.Is(err, ErrProductNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return err
}
