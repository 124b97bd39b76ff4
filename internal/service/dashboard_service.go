package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
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

// ErrCourseNotFound indicates the requested course has no imported snapshot.
var ErrCourseNotFound = errors.New("course not found")

// DashboardService builds the course dashboard: the step table and the chart
// of one selected metric.
type DashboardService interface {
	GetDashboard(ctx context.Context, courseID uint, moduleIDs []int64, metricKey string) (dto.DashboardResponse, error)
}

type dashboardService struct {
	courses  repository.CourseRepository
	steps    repository.StepRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// NewDashboardService constructs the dashboard service. A nil cache disables caching.
func NewDashboardService(courses repository.CourseRepository, steps repository.StepRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		courses:  courses,
		steps:    steps,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "dashboard_service").Logger(),
		tracer:   otel.Tracer("github.com/noah-isme/course-insights-api/internal/service/dashboard"),
	}
}

func (s *dashboardService) GetDashboard(ctx context.Context, courseID uint, moduleIDs []int64, metricKey string) (dto.DashboardResponse, error) {
	def := metrics.Resolve(metricKey)
	selected := normaliseModuleIDs(moduleIDs)

	ctx, span := s.tracer.Start(ctx, "dashboard.build", trace.WithAttributes(
		attribute.Int64("course.id", int64(courseID)),
		attribute.String("dashboard.metric", def.Key),
		attribute.Int("dashboard.module_count", len(selected)),
	))
	defer span.End()

	cacheKey := s.cacheKey(ctx, courseID, selected, def.Key)
	if cached, ok := s.readCache(ctx, cacheKey); ok {
		span.SetAttributes(attribute.Bool("dashboard.cache_hit", true))
		return cached, nil
	}

	if _, err := s.courses.Get(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DashboardResponse{}, ErrCourseNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "load_course_failed")
		return dto.DashboardResponse{}, fmt.Errorf("load course: %w", err)
	}

	steps, err := s.steps.ListByCourse(ctx, courseID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_steps_failed")
		return dto.DashboardResponse{}, fmt.Errorf("list steps: %w", err)
	}

	start := time.Now()
	response := s.build(courseID, toStepRecords(steps), selected, def)
	observability.EvaluationDuration().WithLabelValues("dashboard").Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("dashboard.row_count", len(response.Rows)))

	s.writeCache(ctx, cacheKey, response)
	return response, nil
}

func (s *dashboardService) build(courseID uint, records []metrics.StepRecord, selected []int64, def metrics.Definition) dto.DashboardResponse {
	visible := metrics.ExcludeTypes(records, metrics.StepTypeText)
	modules := metrics.DeriveModules(visible)
	ordered := metrics.SortSteps(metrics.FilterByModules(visible, selected))

	defs := metrics.Definitions()
	rows := make([]dto.DashboardRow, 0, len(ordered))
	counts := map[string]int{
		string(metrics.VerdictGood):    0,
		string(metrics.VerdictNormal):  0,
		string(metrics.VerdictBad):     0,
		string(metrics.VerdictDefault): 0,
	}
	points := make([]dto.ChartPoint, 0, len(ordered))
	series := make([]metrics.Value, 0, len(ordered))

	for _, record := range ordered {
		evaluation := evaluateRecord(record, defs)
		rows = append(rows, dto.DashboardRow{
			Step:    dto.NewStepSummary(record),
			Metrics: evaluation.Metrics,
			Verdict: evaluation.Verdict,
		})
		counts[string(evaluation.Verdict)]++

		value := record.Metrics[def.Key]
		series = append(series, value)
		points = append(points, dto.ChartPoint{
			StepID: record.StepID,
			Label:  record.Label(),
			Value:  metrics.ChartValue(def, value),
			Class:  metrics.Classify(value, def),
		})
	}

	lines := metrics.ReferenceLines(def)
	if lines == nil {
		lines = []metrics.ReferenceLine{}
	}

	return dto.DashboardResponse{
		CourseID:        courseID,
		Metric:          def.Key,
		Modules:         modules,
		SelectedModules: selected,
		Rows:            rows,
		Chart: dto.DashboardChart{
			Metric:         def.Key,
			Label:          def.Label,
			Kind:           def.Kind,
			Invert:         def.Invert,
			Points:         points,
			Domain:         metrics.DomainFor(def, series),
			ReferenceLines: lines,
		},
		VerdictCounts: counts,
	}
}

// cacheKey embeds the course version so an import invalidates every
// dashboard variant of the course at once.
func (s *dashboardService) cacheKey(ctx context.Context, courseID uint, selected []int64, metric string) string {
	version := int64(0)
	if s.cache != nil {
		v, err := s.cache.Get(ctx, courseVersionKey(courseID)).Int64()
		switch {
		case err == nil:
			version = v
		case !errors.Is(err, redis.Nil):
			s.logger.Warn().Err(err).Uint("course_id", courseID).Msg("failed to read course cache version")
		}
	}
	return fmt.Sprintf("insights:dashboard:%d:v%d:%s:%s", courseID, version, metric, joinIDs(selected))
}

func (s *dashboardService) readCache(ctx context.Context, key string) (dto.DashboardResponse, bool) {
	if s.cache == nil {
		return dto.DashboardResponse{}, false
	}

	cached, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
		observability.CacheLookups().WithLabelValues("miss").Inc()
		return dto.DashboardResponse{}, false
	}

	var response dto.DashboardResponse
	if err := json.Unmarshal([]byte(cached), &response); err != nil {
		s.logger.Warn().Err(err).Msg("discarding malformed dashboard cache entry")
		observability.CacheLookups().WithLabelValues("miss").Inc()
		return dto.DashboardResponse{}, false
	}

	observability.CacheLookups().WithLabelValues("hit").Inc()
	response.CacheHit = true
	return response, true
}

func (s *dashboardService) writeCache(ctx context.Context, key string, response dto.DashboardResponse) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(response)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode dashboard cache entry")
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
	}
}
