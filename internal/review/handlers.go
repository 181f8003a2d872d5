package review

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
		rev, err := svc.Record(c.Context(), auth.CurrentUser(c), req)
		if err != nil {
			return apperrors.Fiber(err)
		}
		return c.Status(fiber.StatusCreated).JSON(rev)
	})

	r.Get("/given", authMiddleware, func(c *fiber.Ctx) error {
		reviews, err := svc.Given(c.Context(), auth.CurrentUser(c))
		if err != nil {
			return apperrors.Fiber(err)
		}
		return c.JSON(reviews)
	})

	r.Get("/received", authMiddleware, func(c *fiber.Ctx) error {
		reviews, err := svc.Received(c.Context(), auth.CurrentUser(c))
		if err != nil {
			return apperrors.Fiber(err)
		}
		return c.JSON(reviews)
	})

	r.Get("/pending", authMiddleware, func(c *fiber.Ctx) error {
		pending, err := svc.PendingReviews(c.Context(), auth.CurrentUser(c))
		if err != nil {
			return apperrors.Fiber(err)
		}
		return c.JSON(pending)
	})

	r.Get("/user/:id/summary", authMiddleware, func(c *fiber.Ctx) error {
		summary, err := svc.Summary(c.Context(), c.Params("id"))
		if err != nil {
			return apperrors.Fiber(err)
		}
		return c.JSON(summary)
	})
}
