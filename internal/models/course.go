package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Course is a course whose step analytics have been imported.
type Course struct {
	ID              uint           `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Title           string         `gorm:"size:255;not null" json:"title"`
	Recommendations datatypes.JSON `gorm:"type:json" json:"-"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// CourseRecommendations is the curated advice shipped with a snapshot.
type CourseRecommendations struct {
	General      []string      `json:"general"`
	MetricsFocus []MetricFocus `json:"metrics_focus"`
	Strengths    []string      `json:"strengths"`
}

// MetricFocus pairs a step or module reference with a suggestion.
type MetricFocus struct {
	Metric     string `json:"metric"`
	Suggestion string `json:"suggestion"`
}

// Empty reports whether no advice is present.
func (r CourseRecommendations) Empty() bool {
	return len(r.General) == 0 && len(r.MetricsFocus) == 0 && len(r.Strengths) == 0
}

// SetRecommendations serializes the advice into the JSON column. Nil or empty
// advice clears it.
func (c *Course) SetRecommendations(recommendations *CourseRecommendations) {
	if recommendations == nil || recommendations.Empty() {
		c.Recommendations = nil
		return
	}
	data, err := json.Marshal(recommendations)
	if err != nil {
		c.Recommendations = nil
		return
	}
	c.Recommendations = datatypes.JSON(data)
}

// RecommendationSet deserializes the stored advice, nil when none is stored.
func (c Course) RecommendationSet() *CourseRecommendations {
	if len(c.Recommendations) == 0 {
		return nil
	}

	var recommendations CourseRecommendations
	if err := json.Unmarshal(c.Recommendations, &recommendations); err != nil || recommendations.Empty() {
		return nil
	}
	return &recommendations
}

// Step is one step of a course together with its pre-computed metric readings.
type Step struct {
	ID             uint              `gorm:"primaryKey;autoIncrement:false" json:"step_id"`
	CourseID       uint              `gorm:"index;not null" json:"course_id"`
	TitleFull      string            `gorm:"type:text" json:"step_title_full"`
	TitleShort     string            `gorm:"size:255" json:"step_title_short"`
	ModuleID       *uint             `gorm:"index" json:"module_id"`
	ModuleTitle    string            `gorm:"size:255" json:"module_title"`
	ModulePosition *int              `json:"module_position"`
	LessonID       *uint             `json:"lesson_id"`
	LessonPosition *int              `json:"lesson_position"`
	StepPosition   *int              `json:"step_position"`
	StepType       string            `gorm:"size:64" json:"step_type"`
	Metrics        datatypes.JSONMap `gorm:"type:json" json:"metrics"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// CourseCompletion stores the learner progress buckets of a course.
type CourseCompletion struct {
	CourseID      uint              `gorm:"primaryKey;autoIncrement:false" json:"course_id"`
	TotalLearners int64             `json:"total_learners"`
	Ranges        datatypes.JSONMap `gorm:"type:json" json:"ranges"`
	UpdatedAt     time.Time         `json:"updated_at"`
}
