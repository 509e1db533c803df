package checkout

import (
	"errors"

	"starpos-backend/internal/inventory"
	"starpos-backend/internal/ledger"
	"starpos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type QuoteRequest struct {
	Lines []Line `json:"lines"`
}

// POST /api/checkout/quote
func QuoteHandler(e *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body QuoteRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		q, err := e.Quote(body.Lines)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(q)
	}
}

// POST /api/checkout/complete
func CompleteHandler(e *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body Order
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		res, err := e.Complete(c.UserContext(), body)
		if err != nil {
			if res.Transaction.ID != 0 {
				// sale is on the ledger; stock needs a manual fix
				return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
					"transaction": res.Transaction,
					"warning":     err.Error(),
				})
			}
			return toFiberError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

func toFiberError(err error) error {
	var (
		vErr  *models.ValidationError
		short *inventory.ShortageError
	)
	switch {
	case errors.As(err, &vErr):
		return fiber.NewError(fiber.StatusBadRequest, vErr.Error())
	case errors.As(err, &short):
		return fiber.NewError(fiber.StatusConflict, short.Error())
	case errors.Is(err, ErrEmptyOrder),
		errors.Is(err, ErrUnknownProduct),
		errors.Is(err, ErrInsufficientPayment):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrDuplicateReceipt), errors.Is(err, ledger.ErrStaleReceipt):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	return err
}
