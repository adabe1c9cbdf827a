// Package respond writes the response envelope every API endpoint uses.
// Successful responses carry {"success": true, "data": ...}; errors are
// shaped by the server error handler.
package respond

import "github.com/gofiber/fiber/v2"

func OK(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"success": true, "data": data})
}

func Created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": data})
}
