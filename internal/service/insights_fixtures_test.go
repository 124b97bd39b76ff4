package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/course-insights-api/internal/models"
	"github.com/noah-isme/course-insights-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func setupInsightsDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:insights_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Course{}, &models.Step{}, &models.CourseCompletion{}))
	return db
}

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func intPtr(v int) *int { return &v }

func uintPtr(v uint) *uint { return &v }

// seedCourse stores course 1 with one text step and four graded steps:
//
//	11 module 1 lesson 1: good
//	12 module 2 lesson 1: one bad next to a good, forgiven to normal
//	13 module 1 lesson 2: normal
//	14 module 2 no lesson position: no voting reading
func seedCourse(t *testing.T, db *gorm.DB) {
	t.Helper()

	snapshot := models.Snapshot{
		Course: models.Course{ID: 1, Title: "Data analysis"},
		Steps: []models.Step{
			{
				ID: 10, TitleShort: "Reading", ModuleID: uintPtr(3), ModuleTitle: "Extras", ModulePosition: intPtr(3),
				LessonPosition: intPtr(1), StepPosition: intPtr(1), StepType: "text",
				Metrics: datatypes.JSONMap{"views": 500},
			},
			{
				ID: 11, TitleShort: "Means", ModuleID: uintPtr(1), ModuleTitle: "Basics", ModulePosition: intPtr(1),
				LessonID: uintPtr(100), LessonPosition: intPtr(1), StepPosition: intPtr(2), StepType: "choice",
				Metrics: datatypes.JSONMap{"success_rate": 0.9, "avg_attempts_per_passed": 1.2},
			},
			{
				ID: 12, TitleShort: "Variance", ModuleID: uintPtr(2), ModulePosition: intPtr(2),
				LessonID: uintPtr(200), LessonPosition: intPtr(1), StepPosition: intPtr(1), StepType: "code",
				Metrics: datatypes.JSONMap{"success_rate": 0.5, "difficulty_index": 0.8},
			},
			{
				ID: 13, ModuleID: uintPtr(1), ModuleTitle: "Basics", ModulePosition: intPtr(1),
				LessonID: uintPtr(101), LessonPosition: intPtr(2), StepPosition: intPtr(1), StepType: "choice",
				Metrics: datatypes.JSONMap{"success_rate": 0.82},
			},
			{
				ID: 14, TitleShort: "Outro", ModuleID: uintPtr(2), ModulePosition: intPtr(2), StepType: "code",
				Metrics: datatypes.JSONMap{"comment_count": 4, "success_rate": nil},
			},
		},
		Completion: &models.CourseCompletion{
			TotalLearners: 200,
			Ranges: datatypes.JSONMap{
				"lt_25":        map[string]interface{}{"count": 50},
				"gte_80":       map[string]interface{}{"count": 60, "percentage": 0.3},
				"gte_50_lt_80": map[string]interface{}{"count": 40, "percentage": 0.2},
				"dropped":      map[string]interface{}{"count": 10},
			},
		},
	}

	require.NoError(t, repository.NewCourseRepository(db).ReplaceSnapshot(context.Background(), snapshot))
}
