package handlers

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobup-app/backend/internal/apperr"
	"github.com/jobup-app/backend/internal/models"
)

func getUserUUID(c *fiber.Ctx) (uuid.UUID, error) {
	v := c.Locals("userId")
	if v == nil {
		return uuid.Nil, fmt.Errorf("unauthorized")
	}

	switch t := v.(type) {
	case uuid.UUID:
		return t, nil
	case string:
		return uuid.Parse(t)
	case []byte:
		return uuid.ParseBytes(t)
	default:
		return uuid.Nil, fmt.Errorf("invalid userId type: %T", v)
	}
}

// partyFor resolves a user's display name and role for chat and
// notification payloads.
func partyFor(db *gorm.DB, id uuid.UUID) (models.Party, error) {
	var u models.User
	if err := db.First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Party{}, apperr.NotFound("user", id.String())
		}
		return models.Party{}, err
	}
	return models.Party{ID: u.ID, Name: u.Name, Role: u.Role}, nil
}

// respondErr maps the service error taxonomy onto HTTP. The code field
// lets clients tell a duplicate apart from a validation failure, and
// invalid transitions report both sides so the UI can resync.
func respondErr(c *fiber.Ctx, err error) error {
	var (
		notFound     *apperr.NotFoundError
		transition   *apperr.InvalidTransitionError
		precondition *apperr.PreconditionFailedError
		validation   *apperr.ValidationError
		duplicate    *apperr.DuplicateConflictError
	)

	switch {
	case errors.As(err, &notFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false, "code": "not_found", "message": err.Error(),
		})
	case errors.As(err, &transition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false, "code": "invalid_transition", "message": err.Error(),
			"from": transition.From, "to": transition.To,
		})
	case errors.As(err, &duplicate):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false, "code": "duplicate", "message": err.Error(),
		})
	case errors.As(err, &precondition):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false, "code": "precondition_failed", "message": err.Error(),
		})
	case errors.As(err, &validation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "code": "validation", "message": err.Error(),
		})
	default:
		log.Println("internal error:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "code": "internal", "message": "Internal server error",
		})
	}
}
