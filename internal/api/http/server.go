package http

import (
	"github.com/gofiber/fiber/v2"
)

// NewApp builds the fiber app with the JSON error fallback installed.
func NewApp(name string) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:               name,
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
	})
}
