package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobup-app/backend/internal/models"
	"github.com/jobup-app/backend/internal/realtime"
	"github.com/jobup-app/backend/internal/services/deal"
	"github.com/jobup-app/backend/internal/services/notification"
	"github.com/jobup-app/backend/internal/services/proposal"
)

type ProposalHandler struct {
	DB            *gorm.DB
	Proposals     *proposal.Service
	Deals         *deal.Service
	Notifications *notification.Service
	Hub           *realtime.Hub
}

func NewProposalHandler(db *gorm.DB, proposals *proposal.Service, deals *deal.Service, notifs *notification.Service, hub *realtime.Hub) *ProposalHandler {
	return &ProposalHandler{DB: db, Proposals: proposals, Deals: deals, Notifications: notifs, Hub: hub}
}

type CreateProposalRequest struct {
	ChatID          string    `json:"chat_id"`
	ReceiverID      string    `json:"receiver_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	DurationMinutes int       `json:"duration_minutes"`
	Price           int64     `json:"price"`
	Location        string    `json:"location"`
	ScheduledAt     time.Time `json:"scheduled_at"`
}

func (h *ProposalHandler) Create(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	var req CreateProposalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}

	if req.Title == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Title is required"})
	}
	if req.Price <= 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Price is required and must be positive"})
	}

	receiverUUID, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid receiver ID"})
	}

	sender, err := partyFor(h.DB, userUUID)
	if err != nil {
		return respondErr(c, err)
	}
	receiver, err := partyFor(h.DB, receiverUUID)
	if err != nil {
		return respondErr(c, err)
	}

	p, err := h.Proposals.Create(req.ChatID, sender, receiver, proposal.Terms{
		Title:           req.Title,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		Location:        req.Location,
		ScheduledAt:     req.ScheduledAt,
	})
	if err != nil {
		return respondErr(c, err)
	}

	if _, err := h.Notifications.Notify(c.Context(), notification.NotifyParams{
		RecipientID:   receiver.ID,
		RecipientName: receiver.Name,
		SenderID:      sender.ID,
		SenderName:    sender.Name,
		RefID:         p.ID.String(),
		RefTitle:      p.Title,
		Type:          models.NotifProposalReceived,
	}); err != nil {
		log.Printf("proposal: notify receiver %s: %v", receiver.ID, err)
	}

	h.Hub.SendToPair(p.ClientID, p.WorkerID, fiber.Map{
		"type":     "proposal_update",
		"proposal": p,
	})

	return c.Status(201).JSON(fiber.Map{"success": true, "data": p})
}

type UpdateProposalStatusRequest struct {
	Status string `json:"status"`
}

func (h *ProposalHandler) UpdateStatus(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	proposalUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid proposal ID"})
	}

	var req UpdateProposalStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}

	actor, err := partyFor(h.DB, userUUID)
	if err != nil {
		return respondErr(c, err)
	}

	p, err := h.Proposals.Transition(proposalUUID, models.ProposalStatus(req.Status), actor)
	if err != nil {
		return respondErr(c, err)
	}

	h.notifyTransition(c, p, actor)

	h.Hub.SendToPair(p.ClientID, p.WorkerID, fiber.Map{
		"type":     "proposal_update",
		"proposal": p,
	})

	// Acceptance implies a deal. The explicit deals endpoint covers the
	// case where this automatic reaction fails.
	if p.Status == models.ProposalAccepted {
		d, err := h.Deals.CreateFromProposal(p.ID)
		if err != nil {
			log.Printf("proposal: auto-create deal for %s: %v", p.ID, err)
		} else {
			h.notifyDealConfirmed(c, d, actor)
			h.Hub.SendToPair(d.ClientID, d.WorkerID, fiber.Map{
				"type": "deal_update",
				"deal": d,
			})
		}
	}

	return c.JSON(fiber.Map{"success": true, "data": p})
}

func (h *ProposalHandler) notifyTransition(c *fiber.Ctx, p *models.Proposal, actor models.Party) {
	var notifType models.NotificationType
	switch p.Status {
	case models.ProposalAccepted:
		notifType = models.NotifProposalAccepted
	case models.ProposalDeclined:
		notifType = models.NotifProposalDeclined
	default:
		return
	}

	other := p.OtherParty(actor.ID)
	if _, err := h.Notifications.Notify(c.Context(), notification.NotifyParams{
		RecipientID:   other.ID,
		RecipientName: other.Name,
		SenderID:      actor.ID,
		SenderName:    actor.Name,
		RefID:         p.ID.String(),
		RefTitle:      p.Title,
		Type:          notifType,
	}); err != nil {
		log.Printf("proposal: notify %s: %v", other.ID, err)
	}
}

func (h *ProposalHandler) notifyDealConfirmed(c *fiber.Ctx, d *models.Deal, actor models.Party) {
	for _, recipient := range []uuid.UUID{d.ClientID, d.WorkerID} {
		if _, err := h.Notifications.Notify(c.Context(), notification.NotifyParams{
			RecipientID: recipient,
			SenderID:    actor.ID,
			SenderName:  actor.Name,
			RefID:       d.ID.String(),
			RefTitle:    d.Title,
			Type:        models.NotifDealConfirmed,
		}); err != nil {
			log.Printf("deal: notify %s: %v", recipient, err)
		}
	}
}

func (h *ProposalHandler) ByChat(c *fiber.Ctx) error {
	out, err := h.Proposals.ByChat(c.Params("chatId"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": out})
}

func (h *ProposalHandler) ByWorker(c *fiber.Ctx) error {
	workerUUID, err := uuid.Parse(c.Params("workerId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid worker ID"})
	}
	out, err := h.Proposals.ByWorker(workerUUID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": out})
}

func (h *ProposalHandler) ByClient(c *fiber.Ctx) error {
	clientUUID, err := uuid.Parse(c.Params("clientId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid client ID"})
	}
	out, err := h.Proposals.ByClient(clientUUID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": out})
}
