package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobup-app/backend/internal/services/post"
)

type PostHandler struct {
	DB    *gorm.DB
	Posts *post.Service
}

func NewPostHandler(db *gorm.DB, posts *post.Service) *PostHandler {
	return &PostHandler{DB: db, Posts: posts}
}

type CreatePostRequest struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Location          string   `json:"location"`
	AttachmentFileIDs []string `json:"attachment_file_ids"`
}

func (h *PostHandler) Create(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	var req CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}

	// the caller is the creator, never a body field
	author, err := partyFor(h.DB, userUUID)
	if err != nil {
		return respondErr(c, err)
	}

	p, err := h.Posts.Create(author, post.CreateParams{
		Title:             req.Title,
		Description:       req.Description,
		Location:          req.Location,
		AttachmentFileIDs: req.AttachmentFileIDs,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"success": true, "data": p})
}

func (h *PostHandler) List(c *fiber.Ctx) error {
	out, err := h.Posts.List()
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": out})
}

func (h *PostHandler) Get(c *fiber.Ctx) error {
	postUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid post ID"})
	}

	p, err := h.Posts.Get(postUUID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": p})
}

func (h *PostHandler) ToggleLike(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	postUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid post ID"})
	}

	user, err := partyFor(h.DB, userUUID)
	if err != nil {
		return respondErr(c, err)
	}

	p, liked, err := h.Posts.ToggleLike(c.Context(), postUUID, user)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": p, "liked": liked})
}

func (h *PostHandler) ToggleSave(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	postUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid post ID"})
	}

	user, err := partyFor(h.DB, userUUID)
	if err != nil {
		return respondErr(c, err)
	}

	p, saved, err := h.Posts.ToggleSave(postUUID, user)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": p, "saved": saved})
}

type AddCommentRequest struct {
	Content string `json:"content"`
}

func (h *PostHandler) AddComment(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	postUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid post ID"})
	}

	var req AddCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}

	author, err := partyFor(h.DB, userUUID)
	if err != nil {
		return respondErr(c, err)
	}

	p, err := h.Posts.AddComment(c.Context(), postUUID, author, req.Content)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"success": true, "data": p})
}

func (h *PostHandler) SavedByUser(c *fiber.Ctx) error {
	userUUID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid user ID"})
	}

	out, err := h.Posts.SavedByUser(userUUID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": out})
}

func (h *PostHandler) ByCreator(c *fiber.Ctx) error {
	userUUID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid user ID"})
	}

	out, err := h.Posts.ByCreator(userUUID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": out})
}
