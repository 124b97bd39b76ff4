package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/course-insights-api/internal/dto"
	"github.com/noah-isme/course-insights-api/internal/metrics"
	"github.com/noah-isme/course-insights-api/internal/repository"
)

// ErrCompletionNotFound indicates the course snapshot carried no progress buckets.
var ErrCompletionNotFound = errors.New("course completion not found")

var completionRangeOrder = []string{"gte_80", "gte_50_lt_80", "gte_25_lt_50", "lt_25"}

var completionRangeTitles = map[string]string{
	"gte_80":       "Completed (≥80%)",
	"gte_50_lt_80": "In progress (50-79%)",
	"gte_25_lt_50": "Started (25-49%)",
	"lt_25":        "Low progress (<25%)",
}

// CourseService lists imported courses and their global progress metrics.
type CourseService interface {
	List(ctx context.Context) ([]dto.CourseResponse, error)
	Get(ctx context.Context, id uint) (dto.CourseResponse, error)
	Completion(ctx context.Context, id uint) (dto.CourseCompletionResponse, error)
}

type courseService struct {
	courses repository.CourseRepository
	logger  zerolog.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(courses repository.CourseRepository, logger zerolog.Logger) CourseService {
	return &courseService{
		courses: courses,
		logger:  logger.With().Str("component", "course_service").Logger(),
	}
}

func (s *courseService) List(ctx context.Context) ([]dto.CourseResponse, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	out := make([]dto.CourseResponse, 0, len(courses))
	for _, course := range courses {
		out = append(out, dto.NewCourseResponse(course))
	}
	return out, nil
}

func (s *courseService) Get(ctx context.Context, id uint) (dto.CourseResponse, error) {
	course, err := s.courses.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, fmt.Errorf("load course: %w", err)
	}
	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Completion(ctx context.Context, id uint) (dto.CourseCompletionResponse, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return dto.CourseCompletionResponse{}, err
	}

	completion, err := s.courses.GetCompletion(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseCompletionResponse{}, ErrCompletionNotFound
		}
		return dto.CourseCompletionResponse{}, fmt.Errorf("load completion: %w", err)
	}

	keys := orderedRangeKeys(completion.Ranges)
	ranges := make([]dto.CompletionRangeResponse, 0, len(keys))
	for _, key := range keys {
		entry, ok := completion.Ranges[key].(map[string]interface{})
		if !ok {
			s.logger.Warn().Uint("course_id", id).Str("range", key).Msg("skipping malformed completion range")
			continue
		}

		count := int64(0)
		if f, ok := metrics.ValueFromAny(entry["count"]).Float(); ok {
			count = int64(math.Round(f))
		}
		percentage, ok := metrics.ValueFromAny(entry["percentage"]).Float()
		if !ok {
			percentage = 0
			if completion.TotalLearners > 0 {
				percentage = float64(count) / float64(completion.TotalLearners)
			}
		}

		title, known := completionRangeTitles[key]
		if !known {
			title = key
		}
		ranges = append(ranges, dto.CompletionRangeResponse{
			Key:        key,
			Title:      title,
			Count:      count,
			Percentage: percentage,
			Display:    metrics.FormatPercent(percentage),
		})
	}

	return dto.CourseCompletionResponse{
		CourseID:      id,
		TotalLearners: completion.TotalLearners,
		Ranges:        ranges,
	}, nil
}

// orderedRangeKeys puts the known buckets first, best to worst, and any
// other keys after them alphabetically.
func orderedRangeKeys(ranges map[string]interface{}) []string {
	keys := make([]string, 0, len(ranges))
	for _, key := range completionRangeOrder {
		if _, ok := ranges[key]; ok {
			keys = append(keys, key)
		}
	}
	extra := make([]string, 0)
	for key := range ranges {
		if _, known := completionRangeTitles[key]; !known {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}
