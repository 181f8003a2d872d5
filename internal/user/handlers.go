package user

import (
	"github.com/b-marinov/euro-bakshish/internal/apperrors"
	"github.com/b-marinov/euro-bakshish/internal/auth"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/me", authMiddleware, func(c *fiber.Ctx) error {
		profile, err := svc.Get(c.Context(), auth.CurrentUser(c))
		if err != nil {
			return apperrors.Fiber(err)
		}
		return c.JSON(profile)
	})

	r.Put("/me", authMiddleware, func(c *fiber.Ctx) error {
		var req UpdateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		profile, err := svc.Update(c.Context(), auth.CurrentUser(c), req)
		if err != nil {
			return apperrors.Fiber(err)
		}
		return c.JSON(profile)
	})

	r.Delete("/me", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Deactivate(c.Context(), auth.CurrentUser(c)); err != nil {
			return apperrors.Fiber(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/:id", authMiddleware, func(c *fiber.Ctx) error {
		profile, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return apperrors.Fiber(err)
		}
		return c.JSON(profile)
	})

	r.Post("/driver/availability", authMiddleware, func(c *fiber.Ctx) error {
		available, err := svc.ToggleAvailability(c.Context(), auth.CurrentUser(c))
		if err != nil {
			return apperrors.Fiber(err)
		}
		return c.JSON(fiber.Map{"is_available": available})
	})

	r.Get("/drivers/available", authMiddleware, func(c *fiber.Ctx) error {
		drivers, err := svc.AvailableDrivers(c.Context())
		if err != nil {
			return apperrors.Fiber(err)
		}
		return c.JSON(drivers)
	})
}
