// Package notification persists user-facing event records and pushes
// them over the realtime channel. Persistence is the contract; the
// push (and the unread-count push after it) is best effort and never
// fails the write.
package notification

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobup-app/backend/internal/apperr"
	"github.com/jobup-app/backend/internal/models"
	"github.com/jobup-app/backend/internal/realtime"
)

const DefaultPageSize = 100

// Queue names for the per-user realtime channels.
const (
	QueueNotifications = "notifications"
	QueueUnreadCount   = "notification-count"
)

type Service struct {
	db  *gorm.DB
	pub *realtime.Publisher
}

func NewService(db *gorm.DB, pub *realtime.Publisher) *Service {
	return &Service{db: db, pub: pub}
}

type NotifyParams struct {
	RecipientID   uuid.UUID
	RecipientName string
	SenderID      uuid.UUID
	SenderName    string

	RefID    string
	RefTitle string

	Type models.NotificationType

	// CustomMessage overrides the per-type template when set.
	CustomMessage string
}

func (s *Service) Notify(ctx context.Context, p NotifyParams) (*models.Notification, error) {
	msg := p.CustomMessage
	if msg == "" {
		msg = defaultMessage(p.Type, p.SenderName, p.RefTitle)
	}

	n := &models.Notification{
		RecipientID:   p.RecipientID,
		RecipientName: p.RecipientName,
		SenderID:      p.SenderID,
		SenderName:    p.SenderName,
		RefID:         p.RefID,
		RefTitle:      p.RefTitle,
		Type:          p.Type,
		Message:       msg,
		ActionURL:     defaultActionURL(p.Type, p.RefID),
	}
	if err := s.db.Create(n).Error; err != nil {
		return nil, err
	}

	s.push(ctx, n)
	return n, nil
}

func (s *Service) push(ctx context.Context, n *models.Notification) {
	if s.pub == nil {
		return
	}
	s.pub.PublishToUser(ctx, n.RecipientID, QueueNotifications, map[string]interface{}{
		"type":         "notification",
		"notification": n,
	})

	unread, err := s.UnreadCount(n.RecipientID)
	if err != nil {
		log.Printf("notification: unread count for %s: %v", n.RecipientID, err)
		return
	}
	s.pub.PublishToUser(ctx, n.RecipientID, QueueUnreadCount, map[string]interface{}{
		"type":  "notification_count",
		"count": unread,
	})
}

func defaultMessage(t models.NotificationType, senderName, refTitle string) string {
	switch t {
	case models.NotifPostLiked:
		return senderName + " liked your post: " + refTitle
	case models.NotifPostCommented:
		return senderName + " commented on your post: " + refTitle
	case models.NotifPostSaved:
		return senderName + " saved your post: " + refTitle
	case models.NotifProposalReceived:
		return senderName + " sent you a proposal: " + refTitle
	case models.NotifProposalAccepted:
		return senderName + " accepted your proposal: " + refTitle
	case models.NotifProposalDeclined:
		return senderName + " declined your proposal: " + refTitle
	case models.NotifDealConfirmed:
		return "Deal confirmed: " + refTitle
	case models.NotifDealInProgress:
		return "Deal in progress: " + refTitle
	case models.NotifDealCompleted:
		return "Deal completed: " + refTitle
	case models.NotifDealCancelled:
		return "Deal cancelled: " + refTitle
	case models.NotifRatingAdded:
		return senderName + " left a rating on: " + refTitle
	default:
		return senderName + " sent you a notification"
	}
}

func defaultActionURL(t models.NotificationType, refID string) string {
	switch t {
	case models.NotifPostLiked, models.NotifPostCommented, models.NotifPostSaved:
		return "/client/my-posts"
	case models.NotifProposalReceived, models.NotifProposalAccepted, models.NotifProposalDeclined:
		return "/client/proposals"
	case models.NotifDealConfirmed, models.NotifDealInProgress, models.NotifDealCompleted, models.NotifDealCancelled:
		return "/client/deals/" + refID
	case models.NotifRatingAdded:
		return "/worker/ratings"
	default:
		return "/"
	}
}

func (s *Service) List(recipientID uuid.UUID, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	var out []models.Notification
	err := s.db.Where("recipient_id = ?", recipientID).
		Order("created_at DESC").Limit(limit).Find(&out).Error
	return out, err
}

func (s *Service) ListUnread(recipientID uuid.UUID, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	var out []models.Notification
	err := s.db.Where("recipient_id = ? AND read = ?", recipientID, false).
		Order("created_at DESC").Limit(limit).Find(&out).Error
	return out, err
}

func (s *Service) UnreadCount(recipientID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

func (s *Service) MarkRead(id uuid.UUID) (*models.Notification, error) {
	var n models.Notification
	if err := s.db.First(&n, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("notification", id.String())
		}
		return nil, err
	}
	if !n.Read {
		n.Read = true
		if err := s.db.Save(&n).Error; err != nil {
			return nil, err
		}
	}
	return &n, nil
}

func (s *Service) MarkAllRead(recipientID uuid.UUID) error {
	return s.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Update("read", true).Error
}

func (s *Service) Delete(id uuid.UUID) error {
	res := s.db.Delete(&models.Notification{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("notification", id.String())
	}
	return nil
}
