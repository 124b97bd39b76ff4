package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/course-insights-api/internal/models"
)

// StepRepository reads imported steps.
type StepRepository interface {
	ListByCourse(ctx context.Context, courseID uint) ([]models.Step, error)
	Get(ctx context.Context, id uint) (models.Step, error)
	ListByIDs(ctx context.Context, courseID uint, ids []uint) ([]models.Step, error)
}

type stepRepository struct {
	db *gorm.DB
}

// NewStepRepository constructs the repository implementation.
func NewStepRepository(db *gorm.DB) StepRepository {
	return &stepRepository{db: db}
}

func (r *stepRepository) ListByCourse(ctx context.Context, courseID uint) ([]models.Step, error) {
	var steps []models.Step
	if err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("id ASC").
		Find(&steps).Error; err != nil {
		return nil, err
	}
	return steps, nil
}

func (r *stepRepository) Get(ctx context.Context, id uint) (models.Step, error) {
	var step models.Step
	if err := r.db.WithContext(ctx).First(&step, "id = ?", id).Error; err != nil {
		return models.Step{}, err
	}
	return step, nil
}

// ListByIDs returns the steps of the course matching ids, in no particular
// order. Unknown ids are skipped.
func (r *stepRepository) ListByIDs(ctx context.Context, courseID uint, ids []uint) ([]models.Step, error) {
	if len(ids) == 0 {
		return []models.Step{}, nil
	}

	var steps []models.Step
	if err := r.db.WithContext(ctx).
		Where("course_id = ? AND id IN ?", courseID, ids).
		Find(&steps).Error; err != nil {
		return nil, err
	}
	return steps, nil
}
