package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DealStatus string

const (
	DealConfirmed  DealStatus = "confirmed"
	DealInProgress DealStatus = "in_progress"
	DealCompleted  DealStatus = "completed"
	DealCancelled  DealStatus = "cancelled"
)

var dealTransitions = map[DealStatus][]DealStatus{
	DealConfirmed:  {DealInProgress, DealCancelled},
	DealInProgress: {DealCompleted, DealCancelled},
	DealCompleted:  {},
	DealCancelled:  {},
}

func (s DealStatus) Valid() bool {
	_, ok := dealTransitions[s]
	return ok
}

func (s DealStatus) CanTransitionTo(next DealStatus) bool {
	for _, allowed := range dealTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Deal is the confirmed agreement created from an accepted proposal.
// The unique index on ProposalID is what makes creation idempotent:
// a concurrent second insert fails with a duplicate-key error and the
// caller returns the existing row instead.
type Deal struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProposalID uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"proposal_id"`
	ChatID     string    `gorm:"size:80;index" json:"chat_id"`

	ClientID uuid.UUID `gorm:"type:uuid;index" json:"client_id"`
	WorkerID uuid.UUID `gorm:"type:uuid;index" json:"worker_id"`

	// Terms copied from the proposal at creation time, immutable afterward.
	Title           string    `json:"title"`
	Description     string    `gorm:"type:text" json:"description"`
	DurationMinutes int       `json:"duration_minutes"`
	Price           int64     `json:"price"`
	Location        string    `json:"location"`
	ScheduledAt     time.Time `json:"scheduled_at"`

	Status DealStatus `gorm:"type:varchar(20);default:'confirmed';index" json:"status"`

	ConfirmedAt time.Time  `json:"confirmed_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d *Deal) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return
}
