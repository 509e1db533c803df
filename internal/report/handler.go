package report

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"starpos-backend/internal/clock"
	"starpos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type TransactionSource interface {
	List() []models.Transaction
}

// fromQuery reads ?duration=Weekly&start=2026-10-12. start defaults to today;
// a Single Day report cannot start in the future.
func fromQuery(c *fiber.Ctx, clk clock.Clock) (Range, Duration, error) {
	d, err := ParseDuration(c.Query("duration", string(Weekly)))
	if err != nil {
		return Range{}, "", err
	}

	now := clk.Now()
	start := startOfDay(now)
	if s := c.Query("start"); s != "" {
		start, err = time.ParseInLocation(dayLayout, s, now.Location())
		if err != nil {
			return Range{}, "", models.Invalid("start", "use YYYY-MM-DD")
		}
	}
	if d == Daily {
		start = startOfDay(now)
	}
	if d == SingleDay && start.After(startOfDay(now)) {
		return Range{}, "", models.Invalid("start", "you cannot select a future date")
	}

	rng := RangeFor(d, start)
	if s := c.Query("end"); s != "" && d != SingleDay && d != Daily {
		end, err := time.ParseInLocation(dayLayout, s, now.Location())
		if err != nil {
			return Range{}, "", models.Invalid("end", "use YYYY-MM-DD")
		}
		if end.Before(rng.From) {
			return Range{}, "", models.Invalid("end", "must not be before start")
		}
		rng.To = end
	}
	return rng, d, nil
}

// GET /api/reports/sales
func SalesReportHandler(src TransactionSource, clk clock.Clock) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rng, d, err := fromQuery(c, clk)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(Build(src.List(), rng, d))
	}
}

// GET /api/reports/sales.xlsx
func SalesReportXLSXHandler(src TransactionSource, clk clock.Clock) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rng, d, err := fromQuery(c, clk)
		if err != nil {
			return toFiberError(err)
		}

		r := Build(src.List(), rng, d)
		var buf bytes.Buffer
		if err := WriteXLSX(&buf, r); err != nil {
			return err
		}

		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="sales-%s-%s.xlsx"`, r.From, r.To))
		return c.Send(buf.Bytes())
	}
}

func toFiberError(err error) error {
	var vErr *models.ValidationError
	if errors.As(err, &vErr) {
		return fiber.NewError(fiber.StatusBadRequest, vErr.Error())
	}
	return err
}
