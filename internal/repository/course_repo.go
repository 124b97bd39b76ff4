package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/course-insights-api/internal/models"
)

const stepBatchSize = 200

// ErrStepOwnedElsewhere reports a snapshot step id already stored under
// another course.
var ErrStepOwnedElsewhere = errors.New("step id owned by another course")

// CourseRepository persists courses and their imported snapshots.
type CourseRepository interface {
	List(ctx context.Context) ([]models.Course, error)
	Get(ctx context.Context, id uint) (models.Course, error)
	GetCompletion(ctx context.Context, courseID uint) (models.CourseCompletion, error)
	ReplaceSnapshot(ctx context.Context, snapshot models.Snapshot) error
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository constructs the repository implementation.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) List(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) Get(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).First(&course, "id = ?", id).Error; err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (r *courseRepository) GetCompletion(ctx context.Context, courseID uint) (models.CourseCompletion, error) {
	var completion models.CourseCompletion
	if err := r.db.WithContext(ctx).First(&completion, "course_id = ?", courseID).Error; err != nil {
		return models.CourseCompletion{}, err
	}
	return completion, nil
}

// ReplaceSnapshot swaps every step of the course for the snapshot's steps in
// one transaction. A nil completion removes the stored buckets. Step ids are
// global, so a step stored under another course fails with
// ErrStepOwnedElsewhere and nothing is written.
func (r *courseRepository) ReplaceSnapshot(ctx context.Context, snapshot models.Snapshot) error {
	courseID := snapshot.Course.ID

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureStepOwnership(tx, courseID, snapshot.Steps); err != nil {
			return err
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "recommendations", "updated_at"}),
		}).Create(&snapshot.Course).Error; err != nil {
			return err
		}

		if err := tx.Where("course_id = ?", courseID).Delete(&models.Step{}).Error; err != nil {
			return err
		}

		if len(snapshot.Steps) > 0 {
			steps := make([]models.Step, len(snapshot.Steps))
			for i, step := range snapshot.Steps {
				step.CourseID = courseID
				steps[i] = step
			}
			if err := tx.CreateInBatches(&steps, stepBatchSize).Error; err != nil {
				return err
			}
		}

		if snapshot.Completion == nil {
			return tx.Where("course_id = ?", courseID).Delete(&models.CourseCompletion{}).Error
		}

		completion := *snapshot.Completion
		completion.CourseID = courseID
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "course_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"total_learners", "ranges", "updated_at"}),
		}).Create(&completion).Error
	})
}

func ensureStepOwnership(tx *gorm.DB, courseID uint, steps []models.Step) error {
	if len(steps) == 0 {
		return nil
	}
	ids := make([]uint, len(steps))
	for i, step := range steps {
		ids[i] = step.ID
	}

	var conflict models.Step
	err := tx.Select("id", "course_id").
		Where("id IN ? AND course_id <> ?", ids, courseID).
		Order("id ASC").
		Take(&conflict).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: step_id %d belongs to course %d", ErrStepOwnedElsewhere, conflict.ID, conflict.CourseID)
}
