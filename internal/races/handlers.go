package races

import (
	"github.com/gofiber/fiber/v2"

	"marathon-admin/internal/shared/respond"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/", func(c *fiber.Ctx) error {
		filters := Filters{
			Status:   c.Query("status"),
			Category: c.Query("category"),
			Search:   c.Query("search"),
		}
		list, err := svc.List(c.Context(), filters)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return respond.OK(c, list)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		race, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "race not found")
		}
		return respond.OK(c, race)
	})

	r.Post("/:id/track", authMiddleware, func(c *fiber.Ctx) error {
		var req TrackPointInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		point, err := svc.AddTrackPoint(c.Context(), c.Params("id"), req)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return respond.Created(c, point)
	})

	r.Post("/:id/checkpoints", authMiddleware, func(c *fiber.Ctx) error {
		var req Checkpoint
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		crossing, err := svc.RecordCheckpoint(c.Context(), c.Params("id"), req)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return respond.Created(c, crossing)
	})

	r.Post("/:id/complete", authMiddleware, func(c *fiber.Ctx) error {
		var req CompleteRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		result, err := svc.Complete(c.Context(), c.Params("id"), req)
		if err != nil {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return respond.OK(c, result)
	})

	r.Get("/:id/certificate", func(c *fiber.Ctx) error {
		pdf, err := svc.Certificate(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "certificate not found")
		}
		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="race-certificate-`+c.Params("id")+`.pdf"`)
		return c.Send(pdf)
	})
}
