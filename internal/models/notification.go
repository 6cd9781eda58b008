package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotifPostLiked        NotificationType = "post_liked"
	NotifPostCommented    NotificationType = "post_commented"
	NotifPostSaved        NotificationType = "post_saved"
	NotifProposalReceived NotificationType = "proposal_received"
	NotifProposalAccepted NotificationType = "proposal_accepted"
	NotifProposalDeclined NotificationType = "proposal_declined"
	NotifDealConfirmed    NotificationType = "deal_confirmed"
	NotifDealInProgress   NotificationType = "deal_in_progress"
	NotifDealCompleted    NotificationType = "deal_completed"
	NotifDealCancelled    NotificationType = "deal_cancelled"
	NotifRatingAdded      NotificationType = "rating_added"
)

type Notification struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	RecipientID   uuid.UUID `gorm:"type:uuid;index" json:"recipient_id"`
	RecipientName string    `json:"recipient_name"`
	SenderID      uuid.UUID `gorm:"type:uuid" json:"sender_id"`
	SenderName    string    `json:"sender_name"`

	// Generic business reference: proposal, deal or post id.
	RefID    string `gorm:"size:80" json:"ref_id"`
	RefTitle string `json:"ref_title"`

	Type      NotificationType `gorm:"type:varchar(30);index" json:"type"`
	Message   string           `gorm:"type:text" json:"message"`
	ActionURL string           `json:"action_url"`

	Read bool `gorm:"default:false;index" json:"read"`

	CreatedAt time.Time `json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return
}
