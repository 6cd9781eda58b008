package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jobup-app/backend/internal/services/reputation"
)

type WorkerHandler struct {
	Reputation *reputation.Service
}

func NewWorkerHandler(repSvc *reputation.Service) *WorkerHandler {
	return &WorkerHandler{Reputation: repSvc}
}

func (h *WorkerHandler) RatingStats(c *fiber.Ctx) error {
	workerUUID, err := uuid.Parse(c.Params("workerId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid worker ID"})
	}

	stats, err := h.Reputation.Stats(workerUUID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": stats})
}

// RecomputeAll is admin-only, guarded by role middleware on the route.
func (h *WorkerHandler) RecomputeAll(c *fiber.Ctx) error {
	updated, err := h.Reputation.RecomputeAll()
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Reputation recompute finished",
		"data":    fiber.Map{"updated": updated},
	})
}
