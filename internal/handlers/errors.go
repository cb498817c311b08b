package handlers

import (
	"errors"
	"fmt"
	"log"

	"candleshop/internal/repositories"
	"candleshop/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// WarningHeader carries the stale-count notice on otherwise successful
// responses.
const WarningHeader = "Warning"

const staleCountWarning = "Product saved, but category product counts could not be updated"

// respondError logs err and writes the matching status and body.
func respondError(c *fiber.Ctx, action string, err error) error {
	log.Printf("Error %s: %v", action, err)

	var verrs services.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  verrs,
		})
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Resource not found",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrUpload):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message": "Failed to upload image. Please try again.",
		})
	case errors.Is(err, services.ErrInvalidMove):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Please select a different category",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Not enough stock to complete the order",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication failed",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": fmt.Sprintf("Failed %s. Please try again.", action),
	})
}

// respondWithWarning writes a successful response. A stale-count error is
// reported in the Warning header and a "warning" field instead of failing.
func respondWithWarning(c *fiber.Ctx, status int, message string, data interface{}, err error) error {
	body := fiber.Map{"message": message}
	if data != nil {
		body["data"] = data
	}
	if err != nil {
		log.Printf("Warning: %s: %v", message, err)
		c.Set(WarningHeader, `199 - "`+staleCountWarning+`"`)
		body["warning"] = staleCountWarning
	}
	return c.Status(status).JSON(body)
}

func isStaleCount(err error) bool {
	return errors.Is(err, services.ErrStaleCount)
}

func validationFailed(c *fiber.Ctx, err error) error {
	errorMessages := make(map[string]string)
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

func badBody(c *fiber.Ctx, err error) error {
	log.Printf("Error parsing request body: %v", err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}
