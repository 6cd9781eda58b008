// Package deal converts accepted proposals into confirmed deals and
// drives the deal state machine. Creation is idempotent per proposal:
// the unique index on proposal_id is the authority, not a pre-check, so
// the race between the explicit endpoint and the automatic reaction to
// acceptance collapses to one row.
package deal

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

// CreateFromProposal confirms the deal for an accepted proposal. Safe
// to call repeatedly: if a deal already references the proposal, that
// deal is returned unchanged.
func (s *Service) CreateFromProposal(proposalID uuid.UUID) (*models.Deal, error) {
	var p models.Proposal
	if err := s.db.First(&p, "id = ?", proposalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("proposal", proposalID.String())
		}
		return nil, err
	}

	if p.Status != models.ProposalAccepted {
		return nil, apperr.PreconditionFailed(
			"proposal %s must be accepted to create a deal (status %s)", p.ID, p.Status)
	}

	// Fast path for repeat calls.
	if existing, err := s.byProposal(proposalID); err == nil {
		return existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	d := &models.Deal{
		ProposalID:      p.ID,
		ChatID:          p.ChatID,
		ClientID:        p.ClientID,
		WorkerID:        p.WorkerID,
		Title:           p.Title,
		Description:     p.Description,
		DurationMinutes: p.DurationMinutes,
		Price:           p.Price,
		Location:        p.Location,
		ScheduledAt:     p.ScheduledAt,
		Status:          models.DealConfirmed,
		ConfirmedAt:     time.Now(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(d).Error; err != nil {
			return err
		}
		_, err := s.chat.AppendTx(tx, chat.AppendParams{
			ChatID:   p.ChatID,
			Sender:   p.ClientParty(),
			Receiver: p.WorkerParty(),
			Content:  "Deal confirmed: " + p.Title,
			Type:     models.MessageJobState,
			DealID:   &d.ID,
		})
		return err
	})
	if err != nil {
		// A concurrent caller won the insert; theirs is the deal.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.byProposal(proposalID)
		}
		return nil, err
	}
	return d, nil
}

// AdvanceStatus moves a deal through confirmed -> in_progress ->
// completed, with cancellation allowed from the two non-terminal
// states. Completion stamps completedAt and is what makes the deal
// ratable. The chat record names actor as the one who drove the
// transition.
func (s *Service) AdvanceStatus(dealID uuid.UUID, next models.DealStatus, actor models.Party) (*models.Deal, error) {
	if !next.Valid() {
		return nil, apperr.Validation("unknown deal status %q", next)
	}

	var d models.Deal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&d, "id = ?", dealID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("deal", dealID.String())
			}
			return err
		}

		if !d.Status.CanTransitionTo(next) {
			return apperr.InvalidTransition("deal", string(d.Status), string(next))
		}

		d.Status = next
		d.UpdatedAt = time.Now()
		if next == models.DealCompleted {
			now := time.Now()
			d.CompletedAt = &now
		}
		if err := tx.Save(&d).Error; err != nil {
			return err
		}

		receiver := models.Party{ID: d.WorkerID, Role: models.RoleWorker}
		if actor.ID == d.WorkerID {
			receiver = models.Party{ID: d.ClientID, Role: models.RoleClient}
		}
		_, err := s.chat.AppendTx(tx, chat.AppendParams{
			ChatID:   d.ChatID,
			Sender:   actor,
			Receiver: receiver,
			Content:  stateMessage(next) + ": " + d.Title,
			Type:     models.MessageJobState,
			DealID:   &d.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func stateMessage(status models.DealStatus) string {
	switch status {
	case models.DealInProgress:
		return "Deal in progress"
	case models.DealCompleted:
		return "Deal completed"
	case models.DealCancelled:
		return "Deal cancelled"
	default:
		return "Deal updated"
	}
}

func (s *Service) Get(dealID uuid.UUID) (*models.Deal, error) {
	var d models.Deal
	if err := s.db.First(&d, "id = ?", dealID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("deal", dealID.String())
		}
		return nil, err
	}
	return &d, nil
}

func (s *Service) byProposal(proposalID uuid.UUID) (*models.Deal, error) {
	var d models.Deal
	if err := s.db.First(&d, "proposal_id = ?", proposalID).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Service) ByChat(chatID string) ([]models.Deal, error) {
	var out []models.Deal
	err := s.db.Where("chat_id = ?", chatID).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (s *Service) ByWorker(workerID uuid.UUID) ([]models.Deal, error) {
	var out []models.Deal
	err := s.db.Where("worker_id = ?", workerID).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (s *Service) CompletedByWorker(workerID uuid.UUID) ([]models.Deal, error) {
	var out []models.Deal
	err := s.db.
		Where("worker_id = ? AND status = ?", workerID, models.DealCompleted).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}
