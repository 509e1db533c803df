package ledger

import (
	"errors"
	"fmt"
	"strconv"

	"starpos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type BusinessInfo interface {
	Get() models.UserInfo
}

// RenderFunc turns a transaction into a printable document.
type RenderFunc func(business models.UserInfo, tx models.Transaction) ([]byte, error)

// GET /api/transactions
func ListTransactionsHandler(l *Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(l.List())
	}
}

// GET /api/transactions/next-receipt
func NextReceiptHandler(l *Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"receiptNo": l.NextReceiptNumber()})
	}
}

// GET /api/transactions/:id
func GetTransactionHandler(l *Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		tx, err := l.Get(id)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(tx)
	}
}

// DELETE /api/transactions/:id
func DeleteTransactionHandler(l *Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		if err := l.Delete(c.UserContext(), id); err != nil {
			return toFiberError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/transactions/:id/receipt.pdf
func ReceiptHandler(l *Ledger, business BusinessInfo, render RenderFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		tx, err := l.Get(id)
		if err != nil {
			return toFiberError(err)
		}

		doc, err := render(business.Get(), tx)
		if err != nil {
			return err
		}

		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="receipt-%s.pdf"`, tx.ReceiptNo))
		return c.Send(doc)
	}
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid transaction id")
	}
	return id, nil
}

func toFiberError(err error) error {
	var vErr *models.ValidationError
	switch {
	case errors.As(err, &vErr):
		return fiber.NewError(fiber.StatusBadRequest, vErr.Error())
	case errors.Is(err, ErrTransactionNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrDuplicateReceipt), errors.Is(err, ErrStaleReceipt):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	return err
}
