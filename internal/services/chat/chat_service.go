// Package chat is the append-only conversation log. Messages are
// ordered by a per-chat sequence number assigned at append time, so
// ordering stays stable even when createdAt timestamps collide.
package chat

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobup-app/backend/internal/apperr"
	"github.com/jobup-app/backend/internal/models"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type AppendParams struct {
	ChatID   string
	Sender   models.Party
	Receiver models.Party
	Content  string
	Type     models.MessageType

	ProposalID *uuid.UUID
	DealID     *uuid.UUID
}

// Append writes one message. The backing store is the only thing that
// can fail here; there is no content validation beyond requiring a
// sender and non-empty content.
func (s *Service) Append(p AppendParams) (*models.ChatMessage, error) {
	var msg *models.ChatMessage
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		msg, txErr = s.AppendTx(tx, p)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// AppendTx is Append running inside the caller's transaction, for
// services that log a message atomically with a state change.
func (s *Service) AppendTx(tx *gorm.DB, p AppendParams) (*models.ChatMessage, error) {
	if p.Sender.ID == uuid.Nil {
		return nil, apperr.Validation("sender is required")
	}
	if p.Content == "" {
		return nil, apperr.Validation("content is required")
	}
	if p.ChatID == "" {
		return nil, apperr.Validation("chat id is required")
	}
	if p.Type == "" {
		p.Type = models.MessageText
	}

	now := time.Now()

	// Conversation rows are bookkeeping only; the client/worker split is
	// best effort for plain text messages where roles may be absent.
	client, worker, err := models.DeriveClientWorker(p.Sender, p.Receiver)
	if err != nil {
		client, worker = p.Sender, p.Receiver
	}

	conv := models.Conversation{
		ChatID:        p.ChatID,
		ClientID:      client.ID,
		WorkerID:      worker.ID,
		LastMessageAt: now,
	}
	// A concurrent first message may insert the conversation between the
	// lookup and the create; the row existing is all that matters here.
	if err := tx.Where(models.Conversation{ChatID: p.ChatID}).FirstOrCreate(&conv).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
	}

	if err := tx.Model(&models.Conversation{}).
		Where("chat_id = ?", p.ChatID).
		Updates(map[string]interface{}{
			"last_seq":        gorm.Expr("last_seq + 1"),
			"last_message_at": now,
		}).Error; err != nil {
		return nil, err
	}

	var seq int64
	if err := tx.Model(&models.Conversation{}).
		Where("chat_id = ?", p.ChatID).
		Pluck("last_seq", &seq).Error; err != nil {
		return nil, err
	}

	msg := &models.ChatMessage{
		ChatID:       p.ChatID,
		Seq:          seq,
		SenderID:     p.Sender.ID,
		SenderName:   p.Sender.Name,
		SenderRole:   p.Sender.Role,
		ReceiverID:   p.Receiver.ID,
		ReceiverName: p.Receiver.Name,
		ReceiverRole: p.Receiver.Role,
		Content:      p.Content,
		Type:         p.Type,
		ProposalID:   p.ProposalID,
		DealID:       p.DealID,
	}
	if err := tx.Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}

// List returns a page of messages in ascending sequence order. A zero
// beforeSeq means the latest page; pass the first seq of the previous
// page to scroll back.
func (s *Service) List(chatID string, limit int, beforeSeq int64) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	q := s.db.Where("chat_id = ?", chatID)
	if beforeSeq > 0 {
		q = q.Where("seq < ?", beforeSeq)
	}

	var msgs []models.ChatMessage
	if err := q.Order("seq DESC").Limit(limit).Find(&msgs).Error; err != nil {
		return nil, err
	}

	// fetched newest-first, flip to ascending
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
