package post

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jobup-app/backend/internal/apperr"
	"github.com/jobup-app/backend/internal/models"
	"github.com/jobup-app/backend/internal/services/notification"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(
		&models.JobPost{}, &models.PostLike{}, &models.PostSave{}, &models.PostComment{},
		&models.Notification{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

type fixture struct {
	posts *Service
	db    *gorm.DB
	owner models.Party
	other models.Party
}

func setup(t *testing.T) *fixture {
	gdb := testDB(t)
	return &fixture{
		posts: NewService(gdb, notification.NewService(gdb, nil)),
		db:    gdb,
		owner: models.Party{ID: uuid.New(), Name: "Alice", Role: models.RoleClient},
		other: models.Party{ID: uuid.New(), Name: "Bob", Role: models.RoleWorker},
	}
}

func (f *fixture) post(t *testing.T, title string) *models.JobPost {
	t.Helper()
	p, err := f.posts.Create(f.owner, CreateParams{Title: title, Description: "desc", Location: "Bandung"})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

func (f *fixture) notifCount(t *testing.T, recipient uuid.UUID, typ models.NotificationType) int64 {
	t.Helper()
	var count int64
	if err := f.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND type = ?", recipient, typ).
		Count(&count).Error; err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	return count
}

func TestCreateRequiresTitle(t *testing.T) {
	f := setup(t)

	_, err := f.posts.Create(f.owner, CreateParams{Description: "no title"})
	var verr *apperr.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
}

func TestCreateAndGet(t *testing.T) {
	f := setup(t)
	p := f.post(t, "Paint the fence")

	if p.CreatedByID != f.owner.ID || p.CreatedByName != f.owner.Name {
		t.Fatalf("creator = %s (%q), want %s (%q)", p.CreatedByID, p.CreatedByName, f.owner.ID, f.owner.Name)
	}

	got, err := f.posts.Get(p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Paint the fence" || got.Location != "Bandung" {
		t.Fatalf("post not persisted: %+v", got)
	}
	if got.LikedBy == nil || got.SavedBy == nil {
		t.Fatalf("liked/saved not hydrated to empty slices")
	}
}

func TestGetMissing(t *testing.T) {
	f := setup(t)

	_, err := f.posts.Get(uuid.New())
	var nfErr *apperr.NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("got %v, want NotFoundError", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	f := setup(t)
	old := f.post(t, "old")
	if err := f.db.Model(&models.JobPost{}).
		Where("id = ?", old.ID).
		Update("created_at", time.Now().Add(-time.Hour)).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}
	f.post(t, "new")

	out, err := f.posts.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("list size = %d, want 2", len(out))
	}
	if out[0].Title != "new" || out[1].Title != "old" {
		t.Fatalf("order = %q, %q; want newest first", out[0].Title, out[1].Title)
	}
}

func TestToggleLikeNotifiesOwnerOnce(t *testing.T) {
	f := setup(t)
	p := f.post(t, "Fix the sink")

	got, liked, err := f.posts.ToggleLike(context.Background(), p.ID, f.other)
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if !liked {
		t.Fatalf("first toggle did not like")
	}
	if len(got.LikedBy) != 1 || got.LikedBy[0] != f.other.ID {
		t.Fatalf("liked_by = %v, want [%s]", got.LikedBy, f.other.ID)
	}
	if n := f.notifCount(t, f.owner.ID, models.NotifPostLiked); n != 1 {
		t.Fatalf("like notification count = %d, want 1", n)
	}

	got, liked, err = f.posts.ToggleLike(context.Background(), p.ID, f.other)
	if err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if liked {
		t.Fatalf("second toggle did not unlike")
	}
	if len(got.LikedBy) != 0 {
		t.Fatalf("liked_by = %v after unlike, want empty", got.LikedBy)
	}
	// the unlike stays silent
	if n := f.notifCount(t, f.owner.ID, models.NotifPostLiked); n != 1 {
		t.Fatalf("like notification count = %d after unlike, want 1", n)
	}
}

func TestSelfLikeDoesNotNotify(t *testing.T) {
	f := setup(t)
	p := f.post(t, "Fix the sink")

	_, liked, err := f.posts.ToggleLike(context.Background(), p.ID, f.owner)
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if !liked {
		t.Fatalf("self like rejected")
	}
	if n := f.notifCount(t, f.owner.ID, models.NotifPostLiked); n != 0 {
		t.Fatalf("like notification count = %d for self like, want 0", n)
	}
}

func TestToggleSaveIsPrivate(t *testing.T) {
	f := setup(t)
	p := f.post(t, "Fix the sink")

	got, saved, err := f.posts.ToggleSave(p.ID, f.other)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !saved {
		t.Fatalf("first toggle did not save")
	}
	if len(got.SavedBy) != 1 || got.SavedBy[0] != f.other.ID {
		t.Fatalf("saved_by = %v, want [%s]", got.SavedBy, f.other.ID)
	}
	if n := f.notifCount(t, f.owner.ID, models.NotifPostSaved); n != 0 {
		t.Fatalf("save notification count = %d, want 0", n)
	}

	got, saved, err = f.posts.ToggleSave(p.ID, f.other)
	if err != nil {
		t.Fatalf("unsave: %v", err)
	}
	if saved || len(got.SavedBy) != 0 {
		t.Fatalf("second toggle did not unsave: saved=%v saved_by=%v", saved, got.SavedBy)
	}
}

func TestAddCommentNotifiesOwner(t *testing.T) {
	f := setup(t)
	p := f.post(t, "Fix the sink")

	_, err := f.posts.AddComment(context.Background(), p.ID, f.other, "")
	var verr *apperr.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationError for empty content", err)
	}

	got, err := f.posts.AddComment(context.Background(), p.ID, f.other, "is it still open?")
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	if len(got.Comments) != 1 {
		t.Fatalf("comment count = %d, want 1", len(got.Comments))
	}
	if got.Comments[0].AuthorID != f.other.ID || got.Comments[0].AuthorName != f.other.Name {
		t.Fatalf("comment author = %s (%q)", got.Comments[0].AuthorID, got.Comments[0].AuthorName)
	}
	if n := f.notifCount(t, f.owner.ID, models.NotifPostCommented); n != 1 {
		t.Fatalf("comment notification count = %d, want 1", n)
	}

	// the owner replying on their own post stays silent
	if _, err := f.posts.AddComment(context.Background(), p.ID, f.owner, "yes"); err != nil {
		t.Fatalf("owner comment: %v", err)
	}
	if n := f.notifCount(t, f.owner.ID, models.NotifPostCommented); n != 1 {
		t.Fatalf("comment notification count = %d after self comment, want 1", n)
	}
}

func TestSavedByUserAndByCreator(t *testing.T) {
	f := setup(t)
	first := f.post(t, "first")
	f.post(t, "second")

	if _, _, err := f.posts.ToggleSave(first.ID, f.other); err != nil {
		t.Fatalf("save: %v", err)
	}

	saved, err := f.posts.SavedByUser(f.other.ID)
	if err != nil {
		t.Fatalf("saved by user: %v", err)
	}
	if len(saved) != 1 || saved[0].ID != first.ID {
		t.Fatalf("saved posts = %d, want just %q", len(saved), first.Title)
	}

	mine, err := f.posts.ByCreator(f.owner.ID)
	if err != nil {
		t.Fatalf("by creator: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("creator posts = %d, want 2", len(mine))
	}

	none, err := f.posts.ByCreator(f.other.ID)
	if err != nil {
		t.Fatalf("by creator: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("creator posts = %d for non-creator, want 0", len(none))
	}
}
