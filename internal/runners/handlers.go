package runners

import (
	"github.com/gofiber/fiber/v2"

	"marathon-admin/internal/shared/respond"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/", func(c *fiber.Ctx) error {
		filters := Filters{
			Category: c.Query("category"),
			Status:   c.Query("status"),
			Search:   c.Query("search"),
			Page:     c.QueryInt("page", 1),
			PerPage:  c.QueryInt("perPage", 0),
		}
		page, err := svc.List(c.Context(), filters)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return respond.OK(c, page)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		runner, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "runner not found")
		}
		return respond.OK(c, runner)
	})

	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req Runner
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		runner, err := svc.Create(c.Context(), req)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return respond.Created(c, runner)
	})

	r.Put("/:id", authMiddleware, func(c *fiber.Ctx) error {
		var req Runner
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		runner, err := svc.Update(c.Context(), c.Params("id"), req)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "runner not found")
		}
		return respond.OK(c, runner)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Context(), c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return respond.OK(c, fiber.Map{"deleted": true})
	})
}
