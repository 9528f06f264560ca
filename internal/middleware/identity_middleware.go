package middleware

import (
	"strings"

	"github.com/fadilmartias/notice-radar/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	UserIDHeader = "X-User-ID"
	userIDKey    = "user_id"
)

// Identity reads the caller's user id from the X-User-ID header. A missing
// header leaves the request anonymous; a malformed one is rejected.
func Identity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Get(UserIDHeader))
		if raw == "" {
			c.Locals(userIDKey, uuid.Nil)
			return c.Next()
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusBadRequest,
				Message: "invalid " + UserIDHeader + " header",
			}, err)
		}
		c.Locals(userIDKey, id)
		return c.Next()
	}
}

// UserID returns the identity stored by Identity, uuid.Nil when anonymous.
func UserID(c *fiber.Ctx) uuid.UUID {
	if id, ok := c.Locals(userIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}
