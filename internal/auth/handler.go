package auth

import (
	"errors"

	"starpos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/signup
func SignUpHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SignUpInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		acc, err := s.SignUp(c.UserContext(), body)
		if err != nil {
			return toFiberError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"firstName": acc.FirstName,
			"lastName":  acc.LastName,
			"email":     acc.Email,
		})
	}
}

// POST /api/auth/login
func LoginHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		token, err := s.SignIn(body.Email, body.Password)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(fiber.Map{"token": token})
	}
}

// PUT /api/auth/password
func ChangePasswordHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ChangePasswordInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := s.ChangePassword(c.UserContext(), body); err != nil {
			return toFiberError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/auth/me
func MeHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		acc, ok := s.Account()
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, ErrNoAccount.Error())
		}
		return c.JSON(fiber.Map{
			"firstName": acc.FirstName,
			"lastName":  acc.LastName,
			"email":     acc.Email,
		})
	}
}

func toFiberError(err error) error {
	var vErr *models.ValidationError
	switch {
	case errors.As(err, &vErr):
		return fiber.NewError(fiber.StatusBadRequest, vErr.Error())
	case errors.Is(err, ErrInvalidCredentials):
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrNoAccount):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrAccountExists):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	return err
}
