package routes

import (
	"github.com/gofiber/fiber/v2"

	"marathon-admin/internal/shared/respond"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/", func(c *fiber.Ctx) error {
		list, err := svc.List(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return respond.OK(c, list)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		route, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "route not found")
		}
		return respond.OK(c, route)
	})

	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req Route
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		route, err := svc.Create(c.Context(), req)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return respond.Created(c, route)
	})

	r.Put("/:id", authMiddleware, func(c *fiber.Ctx) error {
		var req Route
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		route, err := svc.Update(c.Context(), c.Params("id"), req)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "route not found")
		}
		return respond.OK(c, route)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Context(), c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return respond.OK(c, fiber.Map{"deleted": true})
	})

	r.Put("/:id/activate", authMiddleware, func(c *fiber.Ctx) error {
		route, err := svc.Activate(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return respond.OK(c, route)
	})

	r.Get("/:id/gpx", func(c *fiber.Ctx) error {
		points, err := svc.Path(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "route trace not found")
		}
		return respond.OK(c, points)
	})

	r.Put("/:id/path", authMiddleware, func(c *fiber.Ctx) error {
		var points []PathPoint
		if err := c.BodyParser(&points); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := svc.SetPath(c.Context(), c.Params("id"), points); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return respond.OK(c, fiber.Map{"updated": true})
	})
}
