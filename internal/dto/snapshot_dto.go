package dto

import "encoding/json"

// SnapshotCourse identifies the course of an imported snapshot.
type SnapshotCourse struct {
	ID    uint   `json:"id" validate:"required,gt=0"`
	Title string `json:"title" validate:"required,min=1,max=255"`
}

// SnapshotStep is one step of an imported snapshot.
type SnapshotStep struct {
	StepID         uint                       `json:"step_id" validate:"required,gt=0"`
	TitleFull      string                     `json:"step_title_full" validate:"max=4000"`
	TitleShort     string                     `json:"step_title_short" validate:"max=255"`
	ModuleID       *uint                      `json:"module_id" validate:"omitempty,gt=0"`
	ModuleTitle    string                     `json:"module_title" validate:"max=255"`
	ModulePosition *int                       `json:"module_position" validate:"omitempty,gte=0"`
	LessonID       *uint                      `json:"lesson_id" validate:"omitempty,gt=0"`
	LessonPosition *int                       `json:"lesson_position" validate:"omitempty,gte=0"`
	StepPosition   *int                       `json:"step_position" validate:"omitempty,gte=0"`
	StepType       string                     `json:"step_type" validate:"max=64"`
	Metrics        map[string]json.RawMessage `json:"metrics"`
}

// SnapshotRange is one progress bucket of an imported snapshot.
type SnapshotRange struct {
	Count      int64    `json:"count" validate:"gte=0"`
	Percentage *float64 `json:"percentage" validate:"omitempty,gte=0"`
}

// SnapshotCompletion carries the course progress buckets.
type SnapshotCompletion struct {
	TotalLearners int64                    `json:"total_learners_on_course" validate:"gte=0"`
	Ranges        map[string]SnapshotRange `json:"ranges" validate:"dive"`
}

// SnapshotMetricFocus is one targeted suggestion of a snapshot.
type SnapshotMetricFocus struct {
	Metric     string `json:"metric" validate:"required,max=255"`
	Suggestion string `json:"suggestion" validate:"required,max=2000"`
}

// SnapshotRecommendations carries optional curated advice for the course.
type SnapshotRecommendations struct {
	General      []string              `json:"general" validate:"max=50,dive,max=2000"`
	MetricsFocus []SnapshotMetricFocus `json:"metrics_focus" validate:"max=50,dive"`
	Strengths    []string              `json:"strengths" validate:"max=50,dive,max=2000"`
}

// SnapshotImportRequest replaces all analytics of one course.
type SnapshotImportRequest struct {
	Course          SnapshotCourse           `json:"course" validate:"required"`
	Steps           []SnapshotStep           `json:"steps" validate:"required,dive"`
	Completion      *SnapshotCompletion      `json:"completion" validate:"omitempty"`
	Recommendations *SnapshotRecommendations `json:"recommendations" validate:"omitempty"`
}

// SnapshotImportResponse reports the outcome of an import.
type SnapshotImportResponse struct {
	CourseID     uint  `json:"course_id"`
	StepCount    int   `json:"step_count"`
	CacheVersion int64 `json:"cache_version"`
}
