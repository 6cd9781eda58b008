package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// StarDistribution counts ratings per star bucket.
type StarDistribution struct {
	OneStar    int64 `json:"one_star"`
	TwoStars   int64 `json:"two_stars"`
	ThreeStars int64 `json:"three_stars"`
	FourStars  int64 `json:"four_stars"`
	FiveStars  int64 `json:"five_stars"`
}

// WorkerReputation is a derived aggregate over a worker's ratings. It
// has no independent write path: Recompute rebuilds it from scratch, so
// a stale or missing row is never more than one recompute away from
// correct.
type WorkerReputation struct {
	WorkerID      uuid.UUID                            `gorm:"type:uuid;primaryKey" json:"worker_id"`
	AverageRating float64                              `json:"average_rating"` // rounded to 2 decimals
	RatingsCount  int64                                `json:"ratings_count"`
	Distribution  datatypes.JSONType[StarDistribution] `json:"distribution"`

	UpdatedAt time.Time `json:"updated_at"`
}
