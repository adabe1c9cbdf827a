package auth

import (
	"github.com/gofiber/fiber/v2"

	"marathon-admin/internal/shared/respond"
)

func RegisterRoutes(r fiber.Router, svc *Service, protected fiber.Handler) {
	r.Post("/login", func(c *fiber.Ctx) error {
		var req LoginRequest
		if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "email and password required")
		}
		resp, err := svc.Login(c.Context(), req)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		return respond.OK(c, resp)
	})

	r.Post("/refresh", func(c *fiber.Ctx) error {
		var req RefreshRequest
		if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
			return fiber.NewError(fiber.StatusBadRequest, "refreshToken required")
		}
		resp, err := svc.Refresh(c.Context(), req.RefreshToken)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		return respond.OK(c, resp)
	})

	r.Post("/create-admin", protected, func(c *fiber.Ctx) error {
		var req CreateAdminRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		user, err := svc.CreateAdmin(c.Context(), req)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return respond.Created(c, user)
	})

	r.Get("/admins", protected, func(c *fiber.Ctx) error {
		users, err := svc.ListAdmins(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return respond.OK(c, users)
	})

	r.Get("/admins/:id", protected, func(c *fiber.Ctx) error {
		user, err := svc.GetAdmin(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "admin user not found")
		}
		return respond.OK(c, user)
	})

	r.Put("/admins/:id", protected, func(c *fiber.Ctx) error {
		var req UpdateAdminRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		user, err := svc.UpdateAdmin(c.Context(), c.Params("id"), req)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "admin user not found")
		}
		return respond.OK(c, user)
	})

	r.Delete("/admins/:id", protected, func(c *fiber.Ctx) error {
		if err := svc.DeleteAdmin(c.Context(), c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return respond.OK(c, fiber.Map{"deleted": true})
	})
}
