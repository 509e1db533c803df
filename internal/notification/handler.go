package notification

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// GET /api/notifications
func ListNotificationsHandler(s *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(s.List())
	}
}

// GET /api/notifications/unread-count
func UnreadCountHandler(s *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"unread": s.UnreadCount()})
	}
}

// PUT /api/notifications/:id/read
func MarkAsReadHandler(s *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid notification id")
		}
		if err := s.MarkAsRead(c.UserContext(), id); err != nil {
			return toFiberError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DELETE /api/notifications/:id
func DeleteNotificationHandler(s *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid notification id")
		}
		if err := s.Delete(c.UserContext(), id); err != nil {
			return toFiberError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func toFiberError(err error) error {
	if errors.Is(err, ErrNotificationNotFound) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return err
}
