// Package post is the job-post board: clients publish job ads, workers
// like, save and comment on them. Likes and saves are toggles; a like
// or comment on someone else's post notifies the owner, and that
// notification never fails the write.
package post

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobup-app/backend/internal/apperr"
	"github.com/jobup-app/backend/internal/models"
	"github.com/jobup-app/backend/internal/services/notification"
)

type Service struct {
	db     *gorm.DB
	notifs *notification.Service
}

func NewService(db *gorm.DB, notifSvc *notification.Service) *Service {
	return &Service{db: db, notifs: notifSvc}
}

type CreateParams struct {
	Title             string
	Description       string
	Location          string
	AttachmentFileIDs []string
}

func (s *Service) Create(author models.Party, p CreateParams) (*models.JobPost, error) {
	if p.Title == "" {
		return nil, apperr.Validation("title is required")
	}

	post := &models.JobPost{
		CreatedByID:       author.ID,
		CreatedByName:     author.Name,
		Title:             p.Title,
		Description:       p.Description,
		Location:          p.Location,
		AttachmentFileIDs: p.AttachmentFileIDs,
	}
	if err := s.db.Create(post).Error; err != nil {
		return nil, err
	}
	post.LikedBy = []uuid.UUID{}
	post.SavedBy = []uuid.UUID{}
	return post, nil
}

func (s *Service) Get(postID uuid.UUID) (*models.JobPost, error) {
	var post models.JobPost
	err := s.db.Preload("Comments", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).First(&post, "id = ?", postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("post", postID.String())
		}
		return nil, err
	}
	if err := s.hydrate(&post); err != nil {
		return nil, err
	}
	return &post, nil
}

// ToggleLike likes the post if the user has not liked it, unlikes it
// otherwise. A fresh like on someone else's post notifies the owner.
func (s *Service) ToggleLike(ctx context.Context, postID uuid.UUID, user models.Party) (*models.JobPost, bool, error) {
	post, err := s.Get(postID)
	if err != nil {
		return nil, false, err
	}

	liked, err := s.toggle(&models.PostLike{PostID: postID, UserID: user.ID}, postID, user.ID)
	if err != nil {
		return nil, false, err
	}

	if liked && user.ID != post.CreatedByID {
		if _, err := s.notifs.Notify(ctx, notification.NotifyParams{
			RecipientID:   post.CreatedByID,
			RecipientName: post.CreatedByName,
			SenderID:      user.ID,
			SenderName:    user.Name,
			RefID:         post.ID.String(),
			RefTitle:      post.Title,
			Type:          models.NotifPostLiked,
		}); err != nil {
			log.Printf("post: like notification for %s: %v", post.CreatedByID, err)
		}
	}

	if err := s.hydrate(post); err != nil {
		return nil, false, err
	}
	return post, liked, nil
}

// ToggleSave bookmarks or un-bookmarks the post for the user. Saving is
// private to the saver, so no notification is sent.
func (s *Service) ToggleSave(postID uuid.UUID, user models.Party) (*models.JobPost, bool, error) {
	post, err := s.Get(postID)
	if err != nil {
		return nil, false, err
	}

	saved, err := s.toggle(&models.PostSave{PostID: postID, UserID: user.ID}, postID, user.ID)
	if err != nil {
		return nil, false, err
	}

	if err := s.hydrate(post); err != nil {
		return nil, false, err
	}
	return post, saved, nil
}

// toggle deletes the row if present, inserts it otherwise. A racing
// duplicate insert means someone else just set the same state; treat it
// as set.
func (s *Service) toggle(row interface{}, postID, userID uuid.UUID) (bool, error) {
	res := s.db.Where("post_id = ? AND user_id = ?", postID, userID).Delete(row)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return false, nil
	}
	if err := s.db.Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return true, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Service) AddComment(ctx context.Context, postID uuid.UUID, author models.Party, content string) (*models.JobPost, error) {
	if content == "" {
		return nil, apperr.Validation("content is required")
	}

	post, err := s.Get(postID)
	if err != nil {
		return nil, err
	}

	comment := models.PostComment{
		PostID:     postID,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Content:    content,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}

	if author.ID != post.CreatedByID {
		if _, err := s.notifs.Notify(ctx, notification.NotifyParams{
			RecipientID:   post.CreatedByID,
			RecipientName: post.CreatedByName,
			SenderID:      author.ID,
			SenderName:    author.Name,
			RefID:         post.ID.String(),
			RefTitle:      post.Title,
			Type:          models.NotifPostCommented,
		}); err != nil {
			log.Printf("post: comment notification for %s: %v", post.CreatedByID, err)
		}
	}

	return s.Get(postID)
}

func (s *Service) List() ([]models.JobPost, error) {
	var posts []models.JobPost
	err := s.db.Preload("Comments", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).Order("created_at DESC").Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, s.hydrateAll(posts)
}

func (s *Service) SavedByUser(userID uuid.UUID) ([]models.JobPost, error) {
	var posts []models.JobPost
	err := s.db.Preload("Comments", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).
		Joins("JOIN post_saves ON post_saves.post_id = job_posts.id").
		Where("post_saves.user_id = ?", userID).
		Order("job_posts.created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, s.hydrateAll(posts)
}

func (s *Service) ByCreator(userID uuid.UUID) ([]models.JobPost, error) {
	var posts []models.JobPost
	err := s.db.Preload("Comments", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).
		Where("created_by_id = ?", userID).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, s.hydrateAll(posts)
}

func (s *Service) hydrate(post *models.JobPost) error {
	post.LikedBy = []uuid.UUID{}
	post.SavedBy = []uuid.UUID{}
	if err := s.db.Model(&models.PostLike{}).
		Where("post_id = ?", post.ID).
		Pluck("user_id", &post.LikedBy).Error; err != nil {
		return err
	}
	return s.db.Model(&models.PostSave{}).
		Where("post_id = ?", post.ID).
		Pluck("user_id", &post.SavedBy).Error
}

func (s *Service) hydrateAll(posts []models.JobPost) error {
	for i := range posts {
		if err := s.hydrate(&posts[i]); err != nil {
			return err
		}
	}
	return nil
}
