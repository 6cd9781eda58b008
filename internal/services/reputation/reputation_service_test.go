package reputation

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jobup-app/backend/internal/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(
		&models.User{}, &models.Deal{}, &models.Rating{}, &models.WorkerReputation{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

func seedRatings(t *testing.T, gdb *gorm.DB, workerID uuid.UUID, stars ...int) {
	t.Helper()
	for _, s := range stars {
		r := models.Rating{
			DealID:   uuid.New(),
			ClientID: uuid.New(),
			WorkerID: workerID,
			Stars:    s,
		}
		if err := gdb.Create(&r).Error; err != nil {
			t.Fatalf("seed rating: %v", err)
		}
	}
}

func TestRecomputeAverageRounding(t *testing.T) {
	cases := []struct {
		name  string
		stars []int
		want  float64
	}{
		{"single", []int{4}, 4.0},
		{"half", []int{4, 5}, 4.5},
		{"thirds", []int{5, 4, 4}, 4.33},
		{"two thirds", []int{5, 5, 4}, 4.67},
		{"all ones", []int{1, 1, 1}, 1.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gdb := testDB(t)
			svc := NewService(gdb)
			workerID := uuid.New()
			seedRatings(t, gdb, workerID, tc.stars...)

			rep, err := svc.Recompute(workerID)
			if err != nil {
				t.Fatalf("recompute: %v", err)
			}
			if rep.AverageRating != tc.want {
				t.Fatalf("average = %v, want %v", rep.AverageRating, tc.want)
			}
			if rep.RatingsCount != int64(len(tc.stars)) {
				t.Fatalf("count = %d, want %d", rep.RatingsCount, len(tc.stars))
			}
		})
	}
}

func TestRecomputeDistribution(t *testing.T) {
	gdb := testDB(t)
	svc := NewService(gdb)
	workerID := uuid.New()
	seedRatings(t, gdb, workerID, 5, 5, 4, 2, 1, 1)

	rep, err := svc.Recompute(workerID)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}

	dist := rep.Distribution.Data()
	want := models.StarDistribution{OneStar: 2, TwoStars: 1, FourStars: 1, FiveStars: 2}
	if dist != want {
		t.Fatalf("distribution = %+v, want %+v", dist, want)
	}
}

func TestRecomputeResetsToZero(t *testing.T) {
	gdb := testDB(t)
	svc := NewService(gdb)
	workerID := uuid.New()
	seedRatings(t, gdb, workerID, 5, 3)

	if _, err := svc.Recompute(workerID); err != nil {
		t.Fatalf("recompute: %v", err)
	}

	// ratings gone, the aggregate must not keep the old numbers
	if err := gdb.Delete(&models.Rating{}, "worker_id = ?", workerID).Error; err != nil {
		t.Fatalf("delete ratings: %v", err)
	}

	rep, err := svc.Recompute(workerID)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if rep.AverageRating != 0 || rep.RatingsCount != 0 {
		t.Fatalf("stale aggregate kept: %.2f/%d", rep.AverageRating, rep.RatingsCount)
	}
	if rep.Distribution.Data() != (models.StarDistribution{}) {
		t.Fatalf("stale distribution kept: %+v", rep.Distribution.Data())
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	gdb := testDB(t)
	svc := NewService(gdb)
	workerID := uuid.New()
	seedRatings(t, gdb, workerID, 5, 4)

	first, err := svc.Recompute(workerID)
	if err != nil {
		t.Fatalf("first recompute: %v", err)
	}
	second, err := svc.Recompute(workerID)
	if err != nil {
		t.Fatalf("second recompute: %v", err)
	}
	if first.AverageRating != second.AverageRating || first.RatingsCount != second.RatingsCount {
		t.Fatalf("repeat recompute changed the aggregate")
	}

	var rows int64
	if err := gdb.Model(&models.WorkerReputation{}).Where("worker_id = ?", workerID).Count(&rows).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if rows != 1 {
		t.Fatalf("aggregate rows = %d, want 1", rows)
	}
}

func TestStatsIncludesCompletedJobs(t *testing.T) {
	gdb := testDB(t)
	svc := NewService(gdb)
	workerID := uuid.New()
	seedRatings(t, gdb, workerID, 5)

	now := time.Now()
	for _, status := range []models.DealStatus{models.DealCompleted, models.DealCompleted, models.DealInProgress} {
		d := models.Deal{
			ProposalID: uuid.New(),
			WorkerID:   workerID,
			ClientID:   uuid.New(),
			Status:     status,
		}
		if status == models.DealCompleted {
			d.CompletedAt = &now
		}
		if err := gdb.Create(&d).Error; err != nil {
			t.Fatalf("seed deal: %v", err)
		}
	}

	stats, err := svc.Stats(workerID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalCompletedJobs != 2 {
		t.Fatalf("completed jobs = %d, want 2", stats.TotalCompletedJobs)
	}
	if stats.TotalRatings != 1 || stats.AverageRating != 5.0 {
		t.Fatalf("ratings = %d avg %.2f, want 1 avg 5.00", stats.TotalRatings, stats.AverageRating)
	}
}

func TestStatsForUnratedWorker(t *testing.T) {
	gdb := testDB(t)
	svc := NewService(gdb)

	stats, err := svc.Stats(uuid.New())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.AverageRating != 0 || stats.TotalRatings != 0 || stats.TotalCompletedJobs != 0 {
		t.Fatalf("fresh worker stats not zero: %+v", stats)
	}
}

func TestRecomputeAll(t *testing.T) {
	gdb := testDB(t)
	svc := NewService(gdb)

	workers := make([]uuid.UUID, 3)
	for i := range workers {
		u := models.User{
			Name:     fmt.Sprintf("worker %d", i),
			Email:    fmt.Sprintf("w%d@example.com", i),
			Password: "x",
			Role:     models.RoleWorker,
		}
		if err := gdb.Create(&u).Error; err != nil {
			t.Fatalf("seed worker: %v", err)
		}
		workers[i] = u.ID
	}
	// a client must not get an aggregate row
	if err := gdb.Create(&models.User{
		Name: "client", Email: "c@example.com", Password: "x", Role: models.RoleClient,
	}).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}

	seedRatings(t, gdb, workers[0], 5, 5)
	seedRatings(t, gdb, workers[1], 2)

	updated, err := svc.RecomputeAll()
	if err != nil {
		t.Fatalf("recompute all: %v", err)
	}
	if updated != 3 {
		t.Fatalf("updated = %d, want 3", updated)
	}

	var rows int64
	if err := gdb.Model(&models.WorkerReputation{}).Count(&rows).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if rows != 3 {
		t.Fatalf("aggregate rows = %d, want 3", rows)
	}

	var rep models.WorkerReputation
	if err := gdb.First(&rep, "worker_id = ?", workers[0]).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if rep.AverageRating != 5.0 {
		t.Fatalf("worker 0 average = %.2f, want 5.00", rep.AverageRating)
	}
}
