package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageType string

const (
	MessageText             MessageType = "text"
	MessageProposal         MessageType = "proposal"
	MessageProposalResponse MessageType = "proposal_response"
	MessageJobState         MessageType = "job_state"
)

// ChatIDFor builds the canonical conversation key for a client-worker
// pair. The smaller UUID always comes first so both sides derive the
// same key.
func ChatIDFor(a, b uuid.UUID) string {
	if a.String() < b.String() {
		return a.String() + "_" + b.String()
	}
	return b.String() + "_" + a.String()
}

// Conversation tracks per-chat bookkeeping: the canonical participant
// pair, the last activity timestamp, and LastSeq, the monotonic counter
// that orders messages even when createdAt timestamps collide.
type Conversation struct {
	ChatID string `gorm:"primaryKey;size:80" json:"chat_id"`

	ClientID uuid.UUID `gorm:"type:uuid;index" json:"client_id"`
	WorkerID uuid.UUID `gorm:"type:uuid;index" json:"worker_id"`

	LastSeq       int64     `gorm:"default:0" json:"last_seq"`
	LastMessageAt time.Time `json:"last_message_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatMessage is append-only: rows are never updated or deleted.
type ChatMessage struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChatID string    `gorm:"size:80;index:idx_chat_seq,unique" json:"chat_id"`
	Seq    int64     `gorm:"index:idx_chat_seq,unique" json:"seq"`

	SenderID   uuid.UUID `gorm:"type:uuid;index" json:"sender_id"`
	SenderName string    `json:"sender_name"`
	SenderRole Role      `gorm:"type:varchar(20)" json:"sender_role"`

	ReceiverID   uuid.UUID `gorm:"type:uuid" json:"receiver_id"`
	ReceiverName string    `json:"receiver_name"`
	ReceiverRole Role      `gorm:"type:varchar(20)" json:"receiver_role"`

	Content string      `gorm:"type:text" json:"content"`
	Type    MessageType `gorm:"type:varchar(30);default:'text'" json:"type"`

	// Set when the message documents a proposal or deal event.
	ProposalID *uuid.UUID `gorm:"type:uuid;index" json:"proposal_id,omitempty"`
	DealID     *uuid.UUID `gorm:"type:uuid;index" json:"deal_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
