// Package proposal is the ledger of job-terms offers. It owns the
// proposal state machine and writes a chat message for every event so
// the conversation doubles as an audit trail of the negotiation.
package proposal

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobup-app/backend/internal/apperr"
	"github.com/jobup-app/backend/internal/models"
	"github.com/jobup-app/backend/internal/services/chat"
)

type Service struct {
	db   *gorm.DB
	chat *chat.Service
}

func NewService(db *gorm.DB, chatSvc *chat.Service) *Service {
	return &Service{db: db, chat: chatSvc}
}

// Terms carries the offer content. The ledger stores it but never
// interprets it.
type Terms struct {
	Title           string
	Description     string
	DurationMinutes int
	Price           int64
	Location        string
	ScheduledAt     time.Time
}

// Create opens a proposal in pending status. The sender/receiver pair
// must contain exactly one client and one worker; the canonical
// clientId/workerId are derived here once and reused by everything
// downstream.
func (s *Service) Create(chatID string, sender, receiver models.Party, terms Terms) (*models.Proposal, error) {
	client, worker, err := models.DeriveClientWorker(sender, receiver)
	if err != nil {
		return nil, err
	}

	if chatID == "" {
		chatID = models.ChatIDFor(client.ID, worker.ID)
	}

	p := &models.Proposal{
		ChatID:          chatID,
		SenderID:        sender.ID,
		SenderName:      sender.Name,
		SenderRole:      sender.Role,
		ReceiverID:      receiver.ID,
		ReceiverName:    receiver.Name,
		ReceiverRole:    receiver.Role,
		ClientID:        client.ID,
		WorkerID:        worker.ID,
		Title:           terms.Title,
		Description:     terms.Description,
		DurationMinutes: terms.DurationMinutes,
		Price:           terms.Price,
		Location:        terms.Location,
		ScheduledAt:     terms.ScheduledAt,
		Status:          models.ProposalPending,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		_, err := s.chat.AppendTx(tx, chat.AppendParams{
			ChatID:     chatID,
			Sender:     sender,
			Receiver:   receiver,
			Content:    "Sent a proposal: " + terms.Title,
			Type:       models.MessageProposal,
			ProposalID: &p.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Transition moves a proposal through its state machine and records
// the response in chat. Accepted and declined are terminal for this
// ledger; deal creation happens downstream.
func (s *Service) Transition(proposalID uuid.UUID, next models.ProposalStatus, actor models.Party) (*models.Proposal, error) {
	if !next.Valid() {
		return nil, apperr.Validation("unknown proposal status %q", next)
	}

	var p models.Proposal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, "id = ?", proposalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("proposal", proposalID.String())
			}
			return err
		}

		if !p.Status.CanTransitionTo(next) {
			return apperr.InvalidTransition("proposal", string(p.Status), string(next))
		}

		p.Status = next
		p.UpdatedAt = time.Now()
		if err := tx.Save(&p).Error; err != nil {
			return err
		}

		receiver := p.OtherParty(actor.ID)
		_, err := s.chat.AppendTx(tx, chat.AppendParams{
			ChatID:     p.ChatID,
			Sender:     actor,
			Receiver:   receiver,
			Content:    transitionMessage(next),
			Type:       models.MessageProposalResponse,
			ProposalID: &p.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func transitionMessage(status models.ProposalStatus) string {
	switch status {
	case models.ProposalAccepted:
		return "Accepted the proposal"
	case models.ProposalDeclined:
		return "Declined the proposal"
	case models.ProposalNegotiating:
		return "Wants to negotiate the proposal"
	default:
		return "Updated the proposal"
	}
}

func (s *Service) Get(proposalID uuid.UUID) (*models.Proposal, error) {
	var p models.Proposal
	if err := s.db.First(&p, "id = ?", proposalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("proposal", proposalID.String())
		}
		return nil, err
	}
	return &p, nil
}

func (s *Service) ByChat(chatID string) ([]models.Proposal, error) {
	var out []models.Proposal
	err := s.db.Where("chat_id = ?", chatID).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (s *Service) ByWorker(workerID uuid.UUID) ([]models.Proposal, error) {
	var out []models.Proposal
	err := s.db.Where("worker_id = ?", workerID).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (s *Service) ByClient(clientID uuid.UUID) ([]models.Proposal, error) {
	var out []models.Proposal
	err := s.db.Where("client_id = ?", clientID).Order("created_at DESC").Find(&out).Error
	return out, err
}
