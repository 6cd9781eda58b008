package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProposalStatus string

const (
	ProposalPending     ProposalStatus = "pending"
	ProposalAccepted    ProposalStatus = "accepted"
	ProposalDeclined    ProposalStatus = "declined"
	ProposalNegotiating ProposalStatus = "negotiating"
)

// proposalTransitions defines the proposal state machine. Accepted and
// declined are terminal; negotiating may loop (each counter-offer is a
// new negotiating round on the same record).
var proposalTransitions = map[ProposalStatus][]ProposalStatus{
	ProposalPending:     {ProposalAccepted, ProposalDeclined, ProposalNegotiating},
	ProposalNegotiating: {ProposalAccepted, ProposalDeclined, ProposalNegotiating},
	ProposalAccepted:    {},
	ProposalDeclined:    {},
}

func (s ProposalStatus) Valid() bool {
	_, ok := proposalTransitions[s]
	return ok
}

func (s ProposalStatus) CanTransitionTo(next ProposalStatus) bool {
	for _, allowed := range proposalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Proposal struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChatID string    `gorm:"size:80;index" json:"chat_id"`

	SenderID   uuid.UUID `gorm:"type:uuid;index" json:"sender_id"`
	SenderName string    `json:"sender_name"`
	SenderRole Role      `gorm:"type:varchar(20)" json:"sender_role"`

	ReceiverID   uuid.UUID `gorm:"type:uuid;index" json:"receiver_id"`
	ReceiverName string    `json:"receiver_name"`
	ReceiverRole Role      `gorm:"type:varchar(20)" json:"receiver_role"`

	// Canonical roles derived from the sender/receiver pairing,
	// used by everything downstream of the proposal.
	ClientID uuid.UUID `gorm:"type:uuid;index" json:"client_id"`
	WorkerID uuid.UUID `gorm:"type:uuid;index" json:"worker_id"`

	Title           string    `json:"title"`
	Description     string    `gorm:"type:text" json:"description"`
	DurationMinutes int       `json:"duration_minutes"`
	Price           int64     `json:"price"`
	Location        string    `json:"location"`
	ScheduledAt     time.Time `json:"scheduled_at"`

	Status ProposalStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OtherParty returns the counterpart of the given user in this
// proposal's sender/receiver pair.
func (p *Proposal) OtherParty(userID uuid.UUID) Party {
	if p.SenderID == userID {
		return Party{ID: p.ReceiverID, Name: p.ReceiverName, Role: p.ReceiverRole}
	}
	return Party{ID: p.SenderID, Name: p.SenderName, Role: p.SenderRole}
}

// ClientParty and WorkerParty map the sender/receiver pair onto the
// canonical roles.
func (p *Proposal) ClientParty() Party {
	if p.SenderRole == RoleClient {
		return Party{ID: p.SenderID, Name: p.SenderName, Role: RoleClient}
	}
	return Party{ID: p.ReceiverID, Name: p.ReceiverName, Role: RoleClient}
}

func (p *Proposal) WorkerParty() Party {
	if p.SenderRole == RoleWorker {
		return Party{ID: p.SenderID, Name: p.SenderName, Role: RoleWorker}
	}
	return Party{ID: p.ReceiverID, Name: p.ReceiverName, Role: RoleWorker}
}

func (p *Proposal) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
