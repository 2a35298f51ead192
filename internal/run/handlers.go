package run

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Frawatson/FitLog-sub000/internal/shared/geo"
)

func ownerID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNoActiveRun):
		return fiber.StatusNotFound
	case errors.Is(err, ErrInvalidTransition):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func RegisterRoutes(r fiber.Router, m *Manager, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req struct {
			Goal  *Goal `json:"goal"`
			Units Units `json:"units"`
		}
		if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.Goal != nil {
			if req.Goal.Kind != GoalDistance && req.Goal.Kind != GoalTime {
				return fiber.NewError(fiber.StatusBadRequest, "goal kind must be distance or time")
			}
			if req.Goal.Target <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "goal target must be positive")
			}
		}
		snap, err := m.Start(c.Context(), ownerID(c), req.Goal, req.Units)
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(snap)
	})

	r.Get("/current", authMiddleware, func(c *fiber.Ctx) error {
		snap, err := m.Snapshot(ownerID(c))
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(snap)
	})

	r.Post("/current/pause", authMiddleware, func(c *fiber.Ctx) error {
		snap, err := m.Pause(ownerID(c))
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(snap)
	})

	r.Post("/current/resume", authMiddleware, func(c *fiber.Ctx) error {
		snap, err := m.Resume(ownerID(c))
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(snap)
	})

	r.Post("/current/stop", authMiddleware, func(c *fiber.Ctx) error {
		snap, err := m.Stop(c.Context(), ownerID(c))
		if err != nil {
			// Storage failures surface unchanged; the caller may retry.
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(snap)
	})

	r.Post("/current/fixes", authMiddleware, func(c *fiber.Ctx) error {
		var fix geo.Coordinate
		if err := c.BodyParser(&fix); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		accepted, err := m.Offer(ownerID(c), fix)
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(fiber.Map{"accepted": accepted})
	})
}
