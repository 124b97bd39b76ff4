package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/course-insights-api/internal/dto"
	"github.com/noah-isme/course-insights-api/internal/metrics"
	"github.com/noah-isme/course-insights-api/internal/models"
	"github.com/noah-isme/course-insights-api/internal/repository"
)

// DefaultComparisonInsightLimit caps insight entries per list on a comparison card.
const DefaultComparisonInsightLimit = 3

// ErrComparisonEmpty indicates no step ids were supplied.
var ErrComparisonEmpty = errors.New("at least one step id is required")

// ComparisonService puts several steps of one course side by side.
type ComparisonService interface {
	Compare(ctx context.Context, courseID uint, stepIDs []uint, limit int) (dto.ComparisonResponse, error)
}

type comparisonService struct {
	courses repository.CourseRepository
	steps   repository.StepRepository
	logger  zerolog.Logger
	tracer  trace.Tracer
}

// NewComparisonService constructs the comparison service.
func NewComparisonService(courses repository.CourseRepository, steps repository.StepRepository, logger zerolog.Logger) ComparisonService {
	return &comparisonService{
		courses: courses,
		steps:   steps,
		logger:  logger.With().Str("component", "comparison_service").Logger(),
		tracer:  otel.Tracer("github.com/noah-isme/course-insights-api/internal/service/comparison"),
	}
}

func (s *comparisonService) Compare(ctx context.Context, courseID uint, stepIDs []uint, limit int) (dto.ComparisonResponse, error) {
	ids := uniqueIDs(stepIDs)
	if len(ids) == 0 {
		return dto.ComparisonResponse{}, ErrComparisonEmpty
	}
	if limit <= 0 {
		limit = DefaultComparisonInsightLimit
	}

	ctx, span := s.tracer.Start(ctx, "steps.compare", trace.WithAttributes(
		attribute.Int64("course.id", int64(courseID)),
		attribute.Int("compare.requested", len(ids)),
	))
	defer span.End()

	if _, err := s.courses.Get(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ComparisonResponse{}, ErrCourseNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "load_course_failed")
		return dto.ComparisonResponse{}, fmt.Errorf("load course: %w", err)
	}

	found, err := s.steps.ListByIDs(ctx, courseID, ids)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_steps_failed")
		return dto.ComparisonResponse{}, fmt.Errorf("list steps: %w", err)
	}

	byID := make(map[uint]models.Step, len(found))
	for _, step := range found {
		byID[step.ID] = step
	}

	defs := metrics.Definitions()
	response := dto.ComparisonResponse{
		CourseID: courseID,
		Steps:    make([]dto.ComparisonCard, 0, len(ids)),
		Missing:  make([]uint, 0),
	}
	for _, id := range ids {
		step, ok := byID[id]
		if !ok {
			response.Missing = append(response.Missing, id)
			continue
		}
		record := toStepRecord(step)
		evaluation := evaluateRecord(record, defs)
		response.Steps = append(response.Steps, dto.ComparisonCard{
			Step:     dto.NewStepSummary(record),
			Metrics:  evaluation.Metrics,
			Verdict:  evaluation.Verdict,
			Insights: metrics.Insights(record.Metrics).Limit(limit),
		})
	}

	span.SetAttributes(attribute.Int("compare.missing", len(response.Missing)))
	if len(response.Steps) == 0 {
		return dto.ComparisonResponse{}, ErrStepNotFound
	}
	if len(response.Missing) > 0 {
		s.logger.Debug().Uint("course_id", courseID).Interface("missing", response.Missing).Msg("comparison skipped unknown steps")
	}
	return response, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
