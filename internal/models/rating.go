package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const MaxReviewLength = 1000

// Rating holds one client review of a completed deal. The unique index
// on DealID enforces at-most-one rating per deal at the storage layer.
type Rating struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DealID uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"deal_id"`

	ClientID uuid.UUID `gorm:"type:uuid;index" json:"client_id"`
	WorkerID uuid.UUID `gorm:"type:uuid;index" json:"worker_id"`

	Stars  int    `gorm:"not null" json:"stars"` // 1-5
	Review string `gorm:"type:text" json:"review"`

	CreatedAt time.Time `json:"created_at"`
}

func (r *Rating) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
