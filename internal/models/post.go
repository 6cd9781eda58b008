package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// JobPost is a client's public job ad. Likes and saves live in their
// own tables; LikedBy/SavedBy are hydrated on read for the response.
// Attachments are opaque file ids owned by the upload collaborator.
type JobPost struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	CreatedByID   uuid.UUID `gorm:"type:uuid;index:idx_post_creator_created" json:"created_by_id"`
	CreatedByName string    `json:"created_by_name"`

	Title       string `json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Location    string `json:"location"`

	AttachmentFileIDs datatypes.JSONSlice[string] `json:"attachment_file_ids"`

	LikedBy  []uuid.UUID   `gorm:"-" json:"likes"`
	SavedBy  []uuid.UUID   `gorm:"-" json:"saved_by"`
	Comments []PostComment `gorm:"foreignKey:PostID" json:"comments"`

	CreatedAt time.Time `gorm:"index:idx_post_creator_created" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *JobPost) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

// PostLike and PostSave are toggle rows. The unique pair index makes a
// racing double-toggle land on one row instead of two.
type PostLike struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PostID uuid.UUID `gorm:"type:uuid;index:idx_like_post_user,unique" json:"post_id"`
	UserID uuid.UUID `gorm:"type:uuid;index:idx_like_post_user,unique" json:"user_id"`

	CreatedAt time.Time `json:"created_at"`
}

func (l *PostLike) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return
}

type PostSave struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PostID uuid.UUID `gorm:"type:uuid;index:idx_save_post_user,unique" json:"post_id"`
	UserID uuid.UUID `gorm:"type:uuid;index:idx_save_post_user,unique" json:"user_id"`

	CreatedAt time.Time `json:"created_at"`
}

func (s *PostSave) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}

type PostComment struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PostID uuid.UUID `gorm:"type:uuid;index" json:"post_id"`

	AuthorID   uuid.UUID `gorm:"type:uuid" json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `gorm:"type:text" json:"content"`

	CreatedAt time.Time `json:"created_at"`
}

func (c *PostComment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
