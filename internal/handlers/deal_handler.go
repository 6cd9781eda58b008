package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobup-app/backend/internal/models"
	"github.com/jobup-app/backend/internal/realtime"
	"github.com/jobup-app/backend/internal/services/deal"
	"github.com/jobup-app/backend/internal/services/notification"
	"github.com/jobup-app/backend/internal/services/rating"
)

type DealHandler struct {
	DB            *gorm.DB
	Deals         *deal.Service
	Ratings       *rating.Service
	Notifications *notification.Service
	Hub           *realtime.Hub
}

func NewDealHandler(db *gorm.DB, deals *deal.Service, ratings *rating.Service, notifs *notification.Service, hub *realtime.Hub) *DealHandler {
	return &DealHandler{DB: db, Deals: deals, Ratings: ratings, Notifications: notifs, Hub: hub}
}

// CreateFromProposal is the explicit confirmation endpoint. It is safe
// to call even if acceptance already created the deal: the same deal
// comes back.
func (h *DealHandler) CreateFromProposal(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	proposalUUID, err := uuid.Parse(c.Params("proposalId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid proposal ID"})
	}

	actor, err := partyFor(h.DB, userUUID)
	if err != nil {
		return respondErr(c, err)
	}

	d, err := h.Deals.CreateFromProposal(proposalUUID)
	if err != nil {
		return respondErr(c, err)
	}

	h.notifyDeal(c, d, actor, models.NotifDealConfirmed)

	h.Hub.SendToPair(d.ClientID, d.WorkerID, fiber.Map{
		"type": "deal_update",
		"deal": d,
	})

	return c.Status(201).JSON(fiber.Map{"success": true, "data": d})
}

type UpdateDealStatusRequest struct {
	Status string `json:"status"`
}

func (h *DealHandler) UpdateStatus(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	dealUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid deal ID"})
	}

	var req UpdateDealStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}

	actor, err := partyFor(h.DB, userUUID)
	if err != nil {
		return respondErr(c, err)
	}

	d, err := h.Deals.AdvanceStatus(dealUUID, models.DealStatus(req.Status), actor)
	if err != nil {
		return respondErr(c, err)
	}

	switch d.Status {
	case models.DealInProgress:
		h.notifyDeal(c, d, actor, models.NotifDealInProgress)
	case models.DealCompleted:
		h.notifyDeal(c, d, actor, models.NotifDealCompleted)
	case models.DealCancelled:
		h.notifyDeal(c, d, actor, models.NotifDealCancelled)
	}

	h.Hub.SendToPair(d.ClientID, d.WorkerID, fiber.Map{
		"type": "deal_update",
		"deal": d,
	})

	return c.JSON(fiber.Map{"success": true, "data": d})
}

// notifyDeal informs the party who did not trigger the change. When the
// actor is neither side (an admin), both parties hear about it.
func (h *DealHandler) notifyDeal(c *fiber.Ctx, d *models.Deal, actor models.Party, notifType models.NotificationType) {
	recipients := []uuid.UUID{}
	switch actor.ID {
	case d.ClientID:
		recipients = append(recipients, d.WorkerID)
	case d.WorkerID:
		recipients = append(recipients, d.ClientID)
	default:
		recipients = append(recipients, d.ClientID, d.WorkerID)
	}

	for _, recipient := range recipients {
		if _, err := h.Notifications.Notify(c.Context(), notification.NotifyParams{
			RecipientID: recipient,
			SenderID:    actor.ID,
			SenderName:  actor.Name,
			RefID:       d.ID.String(),
			RefTitle:    d.Title,
			Type:        notifType,
		}); err != nil {
			log.Printf("deal: notify %s: %v", recipient, err)
		}
	}
}

func (h *DealHandler) ByChat(c *fiber.Ctx) error {
	out, err := h.Deals.ByChat(c.Params("chatId"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": out})
}

func (h *DealHandler) ByWorker(c *fiber.Ctx) error {
	workerUUID, err := uuid.Parse(c.Params("workerId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid worker ID"})
	}

	var out []models.Deal
	if c.Query("completed") == "true" {
		out, err = h.Deals.CompletedByWorker(workerUUID)
	} else {
		out, err = h.Deals.ByWorker(workerUUID)
	}
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": out})
}

func (h *DealHandler) CanRate(c *fiber.Ctx) error {
	dealUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid deal ID"})
	}

	ok, err := h.Ratings.CanRate(dealUUID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"can_rate": ok}})
}

type AddRatingRequest struct {
	Stars  int    `json:"stars"`
	Review string `json:"review"`
}

func (h *DealHandler) AddRating(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	dealUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid deal ID"})
	}

	var req AddRatingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}

	client, err := partyFor(h.DB, userUUID)
	if err != nil {
		return respondErr(c, err)
	}

	r, err := h.Ratings.Add(dealUUID, client.ID, req.Stars, req.Review)
	if err != nil {
		return respondErr(c, err)
	}

	if _, err := h.Notifications.Notify(c.Context(), notification.NotifyParams{
		RecipientID: r.WorkerID,
		SenderID:    client.ID,
		SenderName:  client.Name,
		RefID:       r.ID.String(),
		Type:        models.NotifRatingAdded,
	}); err != nil {
		log.Printf("rating: notify worker %s: %v", r.WorkerID, err)
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "data": r})
}

func (h *DealHandler) RatingsByWorker(c *fiber.Ctx) error {
	workerUUID, err := uuid.Parse(c.Params("workerId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid worker ID"})
	}
	out, err := h.Ratings.ByWorker(workerUUID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": out})
}
