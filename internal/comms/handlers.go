package comms

import (
	"github.com/gofiber/fiber/v2"

	"marathon-admin/internal/shared/respond"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/templates", authMiddleware, func(c *fiber.Ctx) error {
		templates, err := svc.ListTemplates(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return respond.OK(c, templates)
	})

	r.Post("/templates", authMiddleware, func(c *fiber.Ctx) error {
		var req Template
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		tpl, err := svc.CreateTemplate(c.Context(), req)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return respond.Created(c, tpl)
	})

	r.Put("/templates/:id", authMiddleware, func(c *fiber.Ctx) error {
		var req Template
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		tpl, err := svc.UpdateTemplate(c.Context(), c.Params("id"), req)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "template not found")
		}
		return respond.OK(c, tpl)
	})

	r.Delete("/templates/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.DeleteTemplate(c.Context(), c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return respond.OK(c, fiber.Map{"deleted": true})
	})

	r.Post("/email", authMiddleware, func(c *fiber.Ctx) error {
		var req EmailRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		record, err := svc.QueueEmail(c.Context(), req)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return respond.Created(c, record)
	})

	r.Post("/announce", authMiddleware, func(c *fiber.Ctx) error {
		var req Announcement
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		ann, err := svc.Announce(c.Context(), req)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return respond.Created(c, ann)
	})
}
