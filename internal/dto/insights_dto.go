package dto

import (
	"time"

	"github.com/noah-isme/course-insights-api/internal/metrics"
	"github.com/noah-isme/course-insights-api/internal/models"
)

// ThresholdResponse exposes a good/bad cut pair.
type ThresholdResponse struct {
	Good float64 `json:"good"`
	Bad  float64 `json:"bad"`
}

// AxisResponse exposes the fixed chart bounds of a metric.
type AxisResponse struct {
	Min   *float64  `json:"min,omitempty"`
	Max   *float64  `json:"max,omitempty"`
	Ticks []float64 `json:"ticks,omitempty"`
}

// MetricDefinitionResponse serializes one catalog entry.
type MetricDefinitionResponse struct {
	Key         string             `json:"key"`
	Label       string             `json:"label"`
	Description string             `json:"description"`
	Kind        metrics.Kind       `json:"kind"`
	Decimals    int                `json:"decimals"`
	Thresholds  *ThresholdResponse `json:"thresholds,omitempty"`
	Invert      bool               `json:"invert"`
	Votes       bool               `json:"votes"`
	Axis        *AxisResponse      `json:"axis,omitempty"`
}

// NewMetricDefinitionResponse maps a catalog definition into its DTO.
func NewMetricDefinitionResponse(def metrics.Definition) MetricDefinitionResponse {
	response := MetricDefinitionResponse{
		Key:         def.Key,
		Label:       def.Label,
		Description: def.Description,
		Kind:        def.Kind,
		Decimals:    def.Decimals,
		Invert:      def.Invert,
		Votes:       def.Votes,
	}
	if def.Thresholds != nil {
		response.Thresholds = &ThresholdResponse{Good: def.Thresholds.Good, Bad: def.Thresholds.Bad}
	}
	if def.Axis != nil {
		response.Axis = &AxisResponse{Min: def.Axis.Min, Max: def.Axis.Max, Ticks: def.Axis.Ticks}
	}
	return response
}

// CourseResponse serializes a course.
type CourseResponse struct {
	ID              uint                          `json:"id"`
	Title           string                        `json:"title"`
	Recommendations *models.CourseRecommendations `json:"recommendations,omitempty"`
	UpdatedAt       time.Time                     `json:"updated_at"`
}

// NewCourseResponse maps a course model into its DTO.
func NewCourseResponse(model models.Course) CourseResponse {
	return CourseResponse{
		ID:              model.ID,
		Title:           model.Title,
		Recommendations: model.RecommendationSet(),
		UpdatedAt:       model.UpdatedAt,
	}
}

// CompletionRangeResponse is one learner progress bucket.
type CompletionRangeResponse struct {
	Key        string  `json:"key"`
	Title      string  `json:"title"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
	Display    string  `json:"display"`
}

// CourseCompletionResponse groups the progress buckets of a course.
type CourseCompletionResponse struct {
	CourseID      uint                      `json:"course_id"`
	TotalLearners int64                     `json:"total_learners"`
	Ranges        []CompletionRangeResponse `json:"ranges"`
}

// StepSummary identifies a step on every analytics payload.
type StepSummary struct {
	StepID         int64  `json:"step_id"`
	Label          string `json:"label"`
	TitleFull      string `json:"title_full,omitempty"`
	ModuleID       *int64 `json:"module_id,omitempty"`
	ModuleTitle    string `json:"module_title,omitempty"`
	ModulePosition *int   `json:"module_position,omitempty"`
	LessonID       *int64 `json:"lesson_id,omitempty"`
	LessonPosition *int   `json:"lesson_position,omitempty"`
	StepPosition   *int   `json:"step_position,omitempty"`
	StepType       string `json:"step_type,omitempty"`
}

// NewStepSummary maps an engine record into its summary.
func NewStepSummary(record metrics.StepRecord) StepSummary {
	return StepSummary{
		StepID:         record.StepID,
		Label:          record.Label(),
		TitleFull:      record.TitleFull,
		ModuleID:       record.ModuleID,
		ModuleTitle:    record.ModuleTitle,
		ModulePosition: record.ModulePosition,
		LessonID:       record.LessonID,
		LessonPosition: record.LessonPosition,
		StepPosition:   record.StepPosition,
		StepType:       record.StepType,
	}
}

// DashboardRow is one table row of the dashboard.
type DashboardRow struct {
	Step    StepSummary          `json:"step"`
	Metrics []metrics.Evaluation `json:"metrics"`
	Verdict metrics.Verdict      `json:"verdict"`
}

// ChartPoint is one step on the dashboard chart. Value is in chart scale.
type ChartPoint struct {
	StepID int64                  `json:"step_id"`
	Label  string                 `json:"label"`
	Value  metrics.Value          `json:"value"`
	Class  metrics.Classification `json:"class"`
}

// DashboardChart is the series of the selected metric.
type DashboardChart struct {
	Metric         string                  `json:"metric"`
	Label          string                  `json:"label"`
	Kind           metrics.Kind            `json:"kind"`
	Invert         bool                    `json:"invert"`
	Points         []ChartPoint            `json:"points"`
	Domain         metrics.Domain          `json:"domain"`
	ReferenceLines []metrics.ReferenceLine `json:"reference_lines"`
}

// DashboardResponse is the full dashboard payload of a course.
type DashboardResponse struct {
	CourseID        uint                   `json:"course_id"`
	Metric          string                 `json:"metric"`
	Modules         []metrics.ModuleRecord `json:"modules"`
	SelectedModules []int64                `json:"selected_modules"`
	Rows            []DashboardRow         `json:"rows"`
	Chart           DashboardChart         `json:"chart"`
	VerdictCounts   map[string]int         `json:"verdict_counts"`
	CacheHit        bool                   `json:"cache_hit"`
}

// StepAnalysisResponse describes one step in depth.
type StepAnalysisResponse struct {
	CourseID uint                  `json:"course_id"`
	Step     StepSummary           `json:"step"`
	Metrics  []metrics.Evaluation  `json:"metrics"`
	Verdict  metrics.Verdict       `json:"verdict"`
	Insights metrics.InsightReport `json:"insights"`
}

// ComparisonCard is one step column on the comparison page.
type ComparisonCard struct {
	Step     StepSummary           `json:"step"`
	Metrics  []metrics.Evaluation  `json:"metrics"`
	Verdict  metrics.Verdict       `json:"verdict"`
	Insights metrics.InsightReport `json:"insights"`
}

// ComparisonResponse lists the compared steps in request order.
type ComparisonResponse struct {
	CourseID uint             `json:"course_id"`
	Steps    []ComparisonCard `json:"steps"`
	Missing  []uint           `json:"missing"`
}
