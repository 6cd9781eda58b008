// Package rating records one client review per completed deal. The
// unique index on deal_id closes the check-then-act race: CanRate is
// advisory, the insert is the decision.
package rating

import (
	"errors"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobup-app/backend/internal/apperr"
	"github.com/jobup-app/backend/internal/models"
	"github.com/jobup-app/backend/internal/services/reputation"
)

type Service struct {
	db         *gorm.DB
	reputation *reputation.Service
}

func NewService(db *gorm.DB, repSvc *reputation.Service) *Service {
	return &Service{db: db, reputation: repSvc}
}

// CanRate reports whether the deal exists, is completed, and has no
// rating yet. Callers must still handle Add failing: this answer can
// go stale the moment it is returned.
func (s *Service) CanRate(dealID uuid.UUID) (bool, error) {
	var d models.Deal
	if err := s.db.First(&d, "id = ?", dealID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	if d.Status != models.DealCompleted {
		return false, nil
	}

	var count int64
	if err := s.db.Model(&models.Rating{}).Where("deal_id = ?", dealID).Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}

// Add validates and persists the rating, then recomputes the worker's
// reputation as a best-effort side effect. A recompute failure is
// logged and never fails the rating write.
func (s *Service) Add(dealID, clientID uuid.UUID, stars int, review string) (*models.Rating, error) {
	if stars < 1 || stars > 5 {
		return nil, apperr.Validation("stars must be between 1 and 5")
	}
	if len(review) > models.MaxReviewLength {
		return nil, apperr.Validation("review must be at most %d characters", models.MaxReviewLength)
	}

	var d models.Deal
	if err := s.db.First(&d, "id = ?", dealID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("deal", dealID.String())
		}
		return nil, err
	}

	if d.Status != models.DealCompleted {
		return nil, apperr.PreconditionFailed(
			"deal %s is not ratable: only completed deals can be rated (status %s)", d.ID, d.Status)
	}

	r := &models.Rating{
		DealID:   dealID,
		ClientID: clientID,
		WorkerID: d.WorkerID,
		Stars:    stars,
		Review:   review,
	}
	if err := s.db.Create(r).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.DuplicateConflict("rating", "deal "+dealID.String())
		}
		return nil, err
	}

	if _, err := s.reputation.Recompute(d.WorkerID); err != nil {
		log.Printf("rating: recompute reputation for worker %s: %v", d.WorkerID, err)
	}

	return r, nil
}

func (s *Service) ByWorker(workerID uuid.UUID) ([]models.Rating, error) {
	var out []models.Rating
	err := s.db.Where("worker_id = ?", workerID).Order("created_at DESC").Find(&out).Error
	return out, err
}
