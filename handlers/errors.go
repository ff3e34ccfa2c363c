package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"leadscout/config"
	"leadscout/utils"
)

// ErrorHandler renders errors returned from REST handlers in the standard
// error envelope. Unknown errors are logged and hidden behind a 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return utils.RespondWithError(c, fe.Code, fe.Message)
	}
	if config.Log != nil {
		config.Log.WithError(err).WithField("uri", c.OriginalURL()).Error("Unhandled handler error")
	}
	return utils.RespondWithError(c, fiber.StatusInternalServerError, "Internal server error")
}
