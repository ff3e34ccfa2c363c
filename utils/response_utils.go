package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// RespondWithError sends a JSON error response.
func RespondWithError(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  "error",
		"message": message,
	})
}

// RespondWithJSON sends a JSON success response.
func RespondWithJSON(c *fiber.Ctx, statusCode int, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status": "success",
		"data":   data,
	})
}

// RespondWithFunctionError sends the bare {"error": ...} body the function
// endpoints have always answered with.
func RespondWithFunctionError(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(fiber.Map{"error": message})
}

// ValidateStruct runs the struct's validate tags.
func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// FormatValidationErrors formats validation errors from validator/v10.
func FormatValidationErrors(err error) []string {
	var errs []string
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		if err != nil {
			errs = append(errs, err.Error())
		}
		return errs
	}
	for _, fe := range verrs {
		element := fmt.Sprintf("Field '%s' failed on the '%s' tag", fe.Field(), fe.Tag())
		if fe.Param() != "" {
			element = fmt.Sprintf("%s (value: %s)", element, fe.Param())
		}
		errs = append(errs, element)
	}
	return errs
}

// SanitizeInput trims whitespace and collapses inner runs of it.
func SanitizeInput(input string) string {
	return strings.Join(strings.Fields(input), " ")
}

// SanitizeList sanitizes every entry and drops the empty ones.
func SanitizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = SanitizeInput(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
