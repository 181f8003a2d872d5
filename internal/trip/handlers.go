package trip

import (
	"github.com/b-marinov/euro-bakshish/internal/apperrors"
	"github.com/b-marinov/euro-bakshish/internal/auth"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req CreateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		t, err := svc.Create(c.Context(), auth.CurrentUser(c), req)
		if err != nil {
			return apperrors.Fiber(err)
		}
		return c.Status(fiber.StatusCreated).JSON(t)
	})

	r.Get("/mine", authMiddleware, func(c *fiber.Ctx) error {
		trips, err := svc.MyTrips(c.Context(), auth.CurrentUser(c))
		if err != nil {
			return apperrors.Fiber(err)
		}
		return c.JSON(trips)
	})

	r.Get("/history", authMiddleware, func(c *fiber.Ctx) error {
		trips, err := svc.History(c.Context(), auth.CurrentUser(c), c.Query("role", "all"))
		if err != nil {
			return apperrors.Fiber(err)
		}
		return c.JSON(trips)
	})

	r.Get("/pending", authMiddleware, func(c *fiber.Ctx) error {
		trips, err := svc.Pending(c.Context(), auth.CurrentUser(c))
		if err != nil {
			return apperrors.Fiber(err)
		}
		return c.JSON(trips)
	})

	r.Get("/:id", authMiddleware, func(c *fiber.Ctx) error {
		t, err := svc.Get(c.Context(), c.Params("id"), auth.CurrentUser(c))
		if err != nil {
			return apperrors.Fiber(err)
		}
		return c.JSON(t)
	})

	r.Post("/:id/accept", authMiddleware, func(c *fiber.Ctx) error {
		t, err := svc.Accept(c.Context(), c.Params("id"), auth.CurrentUser(c))
		if err != nil {
			return apperrors.Fiber(err)
		}
		return c.JSON(t)
	})

	r.Post("/:id/start", authMiddleware, func(c *fiber.Ctx) error {
		t, err := svc.Start(c.Context(), c.Params("id"), auth.CurrentUser(c))
		if err != nil {
			return apperrors.Fiber(err)
		}
		return c.JSON(t)
	})

	r.Post("/:id/complete", authMiddleware, func(c *fiber.Ctx) error {
		t, err := svc.Complete(c.Context(), c.Params("id"), auth.CurrentUser(c))
		if err != nil {
			return apperrors.Fiber(err)
		}
		return c.JSON(t)
	})

	r.Post("/:id/cancel", authMiddleware, func(c *fiber.Ctx) error {
		t, err := svc.Cancel(c.Context(), c.Params("id"), auth.CurrentUser(c))
		if err != nil {
			return apperrors.Fiber(err)
		}
		return c.JSON(t)
	})
}
