package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/course-insights-api/internal/dto"
	"github.com/noah-isme/course-insights-api/internal/metrics"
	"github.com/noah-isme/course-insights-api/internal/observability"
	"github.com/noah-isme/course-insights-api/internal/repository"
)

// ErrStepNotFound indicates the requested step does not exist.
var ErrStepNotFound = errors.New("step not found")

// StepAnalysisService explains a single step.
type StepAnalysisService interface {
	Analyze(ctx context.Context, stepID uint) (dto.StepAnalysisResponse, error)
}

type stepAnalysisService struct {
	steps  repository.StepRepository
	logger zerolog.Logger
	tracer trace.Tracer
}

// NewStepAnalysisService constructs the analysis service.
func NewStepAnalysisService(steps repository.StepRepository, logger zerolog.Logger) StepAnalysisService {
	return &stepAnalysisService{
		steps:  steps,
		logger: logger.With().Str("component", "step_analysis_service").Logger(),
		tracer: otel.Tracer("github.com/noah-isme/course-insights-api/internal/service/step_analysis"),
	}
}

func (s *stepAnalysisService) Analyze(ctx context.Context, stepID uint) (dto.StepAnalysisResponse, error) {
	ctx, span := s.tracer.Start(ctx, "steps.analyze", trace.WithAttributes(attribute.Int64("step.id", int64(stepID))))
	defer span.End()

	step, err := s.steps.Get(ctx, stepID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StepAnalysisResponse{}, ErrStepNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "load_step_failed")
		return dto.StepAnalysisResponse{}, fmt.Errorf("load step: %w", err)
	}

	start := time.Now()
	record := toStepRecord(step)
	evaluation := evaluateRecord(record, metrics.Definitions())
	insights := metrics.Insights(record.Metrics)
	observability.EvaluationDuration().WithLabelValues("analysis").Observe(time.Since(start).Seconds())

	span.SetAttributes(attribute.String("step.verdict", string(evaluation.Verdict)))
	s.logger.Debug().Uint("step_id", stepID).Str("verdict", string(evaluation.Verdict)).Msg("step analysed")

	return dto.StepAnalysisResponse{
		CourseID: step.CourseID,
		Step:     dto.NewStepSummary(record),
		Metrics:  evaluation.Metrics,
		Verdict:  evaluation.Verdict,
		Insights: insights,
	}, nil
}
