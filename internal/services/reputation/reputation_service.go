// Package reputation derives a worker's displayed rating from the full
// set of ratings. The stored aggregate is a rebuildable cache: every
// recompute starts from the ratings table, so it can run at any time
// without coordination and always lands on the same answer.
package reputation

import (
	"errors"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jobup-app/backend/internal/models"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Recompute rebuilds the worker's aggregate from scratch. Zero ratings
// resets a stale aggregate to (0, 0) rather than leaving the old
// numbers in place.
func (s *Service) Recompute(workerID uuid.UUID) (*models.WorkerReputation, error) {
	var ratings []models.Rating
	if err := s.db.Where("worker_id = ?", workerID).Find(&ratings).Error; err != nil {
		return nil, err
	}

	var sum int64
	var dist models.StarDistribution
	for _, r := range ratings {
		sum += int64(r.Stars)
		switch r.Stars {
		case 1:
			dist.OneStar++
		case 2:
			dist.TwoStars++
		case 3:
			dist.ThreeStars++
		case 4:
			dist.FourStars++
		case 5:
			dist.FiveStars++
		}
	}

	avg := 0.0
	if len(ratings) > 0 {
		avg = math.Round(float64(sum)/float64(len(ratings))*100) / 100
	}

	rep := models.WorkerReputation{
		WorkerID:      workerID,
		AverageRating: avg,
		RatingsCount:  int64(len(ratings)),
		Distribution:  datatypes.NewJSONType(dist),
		UpdatedAt:     time.Now(),
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "worker_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"average_rating", "ratings_count", "distribution", "updated_at"}),
	}).Create(&rep).Error
	if err != nil {
		return nil, err
	}

	log.Printf("reputation: worker %s -> %.2f (%d ratings)", workerID, avg, len(ratings))
	return &rep, nil
}

// WorkerRatingStats is the read projection: the aggregate plus the
// worker's completed-deal count. Completed deals may exceed rated
// deals since rating is optional.
type WorkerRatingStats struct {
	WorkerID           uuid.UUID               `json:"worker_id"`
	AverageRating      float64                 `json:"average_rating"`
	TotalRatings       int64                   `json:"total_ratings"`
	TotalCompletedJobs int64                   `json:"total_completed_jobs"`
	Distribution       models.StarDistribution `json:"rating_distribution"`
}

func (s *Service) Stats(workerID uuid.UUID) (*WorkerRatingStats, error) {
	var rep models.WorkerReputation
	err := s.db.First(&rep, "worker_id = ?", workerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fresh, rerr := s.Recompute(workerID)
		if rerr != nil {
			return nil, rerr
		}
		rep = *fresh
	} else if err != nil {
		return nil, err
	}

	var completed int64
	if err := s.db.Model(&models.Deal{}).
		Where("worker_id = ? AND status = ?", workerID, models.DealCompleted).
		Count(&completed).Error; err != nil {
		return nil, err
	}

	return &WorkerRatingStats{
		WorkerID:           workerID,
		AverageRating:      rep.AverageRating,
		TotalRatings:       rep.RatingsCount,
		TotalCompletedJobs: completed,
		Distribution:       rep.Distribution.Data(),
	}, nil
}

// RecomputeAll refreshes every worker's aggregate. Individual failures
// are logged and skipped so one bad worker never aborts the batch.
func (s *Service) RecomputeAll() (int, error) {
	var workerIDs []uuid.UUID
	if err := s.db.Model(&models.User{}).
		Where("role = ?", models.RoleWorker).
		Pluck("id", &workerIDs).Error; err != nil {
		return 0, err
	}

	log.Printf("reputation: batch recompute for %d workers", len(workerIDs))
	updated := 0
	for _, id := range workerIDs {
		if _, err := s.Recompute(id); err != nil {
			log.Printf("reputation: recompute worker %s: %v", id, err)
			continue
		}
		updated++
	}
	log.Printf("reputation: batch recompute done (%d/%d updated)", updated, len(workerIDs))
	return updated, nil
}
