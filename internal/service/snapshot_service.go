package service

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/noah-isme/course-insights-api/internal/dto"
	"github.com/noah-isme/course-insights-api/internal/metrics"
	"github.com/noah-isme/course-insights-api/internal/models"
	"github.com/noah-isme/course-insights-api/internal/observability"
	"github.com/noah-isme/course-insights-api/internal/repository"
)

// SnapshotImportedSubject is the NATS subject announcing a finished import.
const SnapshotImportedSubject = "insights.snapshot.imported"

const snapshotSchemaURL = "snapshot.schema.json"

// ErrInvalidSnapshot indicates the uploaded snapshot failed validation.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

//go:embed schema/snapshot.schema.json
var snapshotSchemaSource []byte

var snapshotSchema = mustCompileSnapshotSchema()

func mustCompileSnapshotSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(snapshotSchemaURL, bytes.NewReader(snapshotSchemaSource)); err != nil {
		panic(fmt.Sprintf("load snapshot schema: %v", err))
	}
	return compiler.MustCompile(snapshotSchemaURL)
}

// SnapshotImportedEvent is published after a snapshot replaced a course.
type SnapshotImportedEvent struct {
	CourseID     uint      `json:"course_id"`
	StepCount    int       `json:"step_count"`
	CacheVersion int64     `json:"cache_version"`
	ImportedAt   time.Time `json:"imported_at"`
}

// SnapshotService ingests pre-computed course analytics.
type SnapshotService interface {
	Import(ctx context.Context, raw []byte) (dto.SnapshotImportResponse, error)
}

type snapshotService struct {
	courses   repository.CourseRepository
	cache     *redis.Client
	nats      *nats.Conn
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewSnapshotService constructs the import pipeline. Cache and NATS are optional.
func NewSnapshotService(courses repository.CourseRepository, cache *redis.Client, natsConn *nats.Conn, validate *validator.Validate, logger zerolog.Logger) SnapshotService {
	return &snapshotService{
		courses:   courses,
		cache:     cache,
		nats:      natsConn,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "snapshot_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/course-insights-api/internal/service/snapshot"),
		now:       time.Now,
	}
}

func (s *snapshotService) Import(ctx context.Context, raw []byte) (dto.SnapshotImportResponse, error) {
	ctx, span := s.tracer.Start(ctx, "snapshots.import", trace.WithAttributes(attribute.Int("snapshot.bytes", len(raw))))
	defer span.End()

	snapshot, err := s.parse(raw)
	if err != nil {
		observability.SnapshotImports().WithLabelValues("invalid").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid_snapshot")
		return dto.SnapshotImportResponse{}, err
	}
	courseID := snapshot.Course.ID
	span.SetAttributes(attribute.Int64("course.id", int64(courseID)), attribute.Int("snapshot.steps", len(snapshot.Steps)))

	if err := s.courses.ReplaceSnapshot(ctx, snapshot); err != nil {
		if errors.Is(err, repository.ErrStepOwnedElsewhere) {
			observability.SnapshotImports().WithLabelValues("invalid").Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, "invalid_snapshot")
			return dto.SnapshotImportResponse{}, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
		}
		observability.SnapshotImports().WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "replace_snapshot_failed")
		return dto.SnapshotImportResponse{}, fmt.Errorf("replace snapshot: %w", err)
	}

	version := s.bumpVersion(ctx, courseID)
	response := dto.SnapshotImportResponse{
		CourseID:     courseID,
		StepCount:    len(snapshot.Steps),
		CacheVersion: version,
	}

	s.publish(SnapshotImportedEvent{
		CourseID:     courseID,
		StepCount:    response.StepCount,
		CacheVersion: version,
		ImportedAt:   s.now().UTC(),
	})

	observability.SnapshotImports().WithLabelValues("success").Inc()
	observability.SnapshotImportedSteps().Add(float64(response.StepCount))
	s.logger.Info().Uint("course_id", courseID).Int("steps", response.StepCount).Int64("cache_version", version).Msg("snapshot imported")

	return response, nil
}

func (s *snapshotService) parse(raw []byte) (models.Snapshot, error) {
	var document interface{}
	if err := json.Unmarshal(raw, &document); err != nil {
		return models.Snapshot{}, fmt.Errorf("%w: malformed json: %v", ErrInvalidSnapshot, err)
	}
	if err := snapshotSchema.Validate(document); err != nil {
		return models.Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	var request dto.SnapshotImportRequest
	if err := json.Unmarshal(raw, &request); err != nil {
		return models.Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if err := s.validator.Struct(request); err != nil {
		return models.Snapshot{}, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	title := s.clean(request.Course.Title)
	if title == "" {
		return models.Snapshot{}, fmt.Errorf("%w: course title empty after sanitization", ErrInvalidSnapshot)
	}

	snapshot := models.Snapshot{
		Course: models.Course{ID: request.Course.ID, Title: title},
		Steps:  make([]models.Step, 0, len(request.Steps)),
	}
	snapshot.Course.SetRecommendations(s.recommendations(request.Recommendations))

	seen := make(map[uint]struct{}, len(request.Steps))
	for _, step := range request.Steps {
		if _, dup := seen[step.StepID]; dup {
			return models.Snapshot{}, fmt.Errorf("%w: duplicate step_id %d", ErrInvalidSnapshot, step.StepID)
		}
		seen[step.StepID] = struct{}{}

		snapshot.Steps = append(snapshot.Steps, models.Step{
			ID:             step.StepID,
			CourseID:       request.Course.ID,
			TitleFull:      s.clean(step.TitleFull),
			TitleShort:     s.clean(step.TitleShort),
			ModuleID:       step.ModuleID,
			ModuleTitle:    s.clean(step.ModuleTitle),
			ModulePosition: step.ModulePosition,
			LessonID:       step.LessonID,
			LessonPosition: step.LessonPosition,
			StepPosition:   step.StepPosition,
			StepType:       strings.ToLower(strings.TrimSpace(step.StepType)),
			Metrics:        decodeMetrics(step.Metrics),
		})
	}

	if request.Completion != nil {
		ranges := datatypes.JSONMap{}
		for key, bucket := range request.Completion.Ranges {
			entry := map[string]interface{}{"count": bucket.Count}
			if bucket.Percentage != nil {
				entry["percentage"] = *bucket.Percentage
			}
			ranges[key] = entry
		}
		snapshot.Completion = &models.CourseCompletion{
			CourseID:      request.Course.ID,
			TotalLearners: request.Completion.TotalLearners,
			Ranges:        ranges,
		}
	}

	return snapshot, nil
}

func (s *snapshotService) clean(input string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(input))
}

// recommendations sanitizes the optional advice and drops blank entries.
func (s *snapshotService) recommendations(input *dto.SnapshotRecommendations) *models.CourseRecommendations {
	if input == nil {
		return nil
	}
	out := &models.CourseRecommendations{
		General:   s.cleanAll(input.General),
		Strengths: s.cleanAll(input.Strengths),
	}
	for _, focus := range input.MetricsFocus {
		metric, suggestion := s.clean(focus.Metric), s.clean(focus.Suggestion)
		if metric == "" || suggestion == "" {
			continue
		}
		out.MetricsFocus = append(out.MetricsFocus, models.MetricFocus{Metric: metric, Suggestion: suggestion})
	}
	return out
}

func (s *snapshotService) cleanAll(inputs []string) []string {
	var out []string
	for _, input := range inputs {
		if cleaned := s.clean(input); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}

// decodeMetrics keeps finite readings and stores everything else as null.
func decodeMetrics(raw map[string]json.RawMessage) datatypes.JSONMap {
	out := datatypes.JSONMap{}
	for key, message := range raw {
		var value metrics.Value
		if err := json.Unmarshal(message, &value); err != nil {
			out[key] = nil
			continue
		}
		if f, ok := value.Float(); ok {
			out[key] = f
		} else {
			out[key] = nil
		}
	}
	return out
}

func (s *snapshotService) bumpVersion(ctx context.Context, courseID uint) int64 {
	if s.cache == nil {
		return 0
	}
	version, err := s.cache.Incr(ctx, courseVersionKey(courseID)).Result()
	if err != nil {
		s.logger.Warn().Err(err).Uint("course_id", courseID).Msg("failed to bump course cache version")
		return 0
	}
	return version
}

func (s *snapshotService) publish(event SnapshotImportedEvent) {
	if s.nats == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode snapshot event")
		return
	}
	if err := s.nats.Publish(SnapshotImportedSubject, payload); err != nil {
		s.logger.Warn().Err(err).Uint("course_id", event.CourseID).Msg("failed to publish snapshot event")
	}
}
