package controllers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"counselkit_go/services/scheduling"
)

var validate = validator.New()

// respondError maps core errors onto HTTP responses: validation errors
// carry their kind as 400/404, anything else is an opaque storage
// failure logged as 500.
func respondError(c *fiber.Ctx, err error) error {
	if kind := scheduling.KindOf(err); kind != "" {
		status := fiber.StatusBadRequest
		if kind == scheduling.KindNotFound {
			status = fiber.StatusNotFound
		}
		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
			"kind":  kind,
		})
	}

	logrus.WithError(err).WithFields(logrus.Fields{
		"path":   c.Path(),
		"method": c.Method(),
	}).Error("Request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal Server Error",
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}
