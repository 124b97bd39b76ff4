package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gorm.io/datatypes"

	"github.com/noah-isme/course-insights-api/internal/metrics"
	"github.com/noah-isme/course-insights-api/internal/models"
	"github.com/noah-isme/course-insights-api/internal/observability"
)

func courseVersionKey(courseID uint) string {
	return fmt.Sprintf("insights:course:%d:version", courseID)
}

func toStepRecord(step models.Step) metrics.StepRecord {
	courseID := int64(step.CourseID)
	return metrics.StepRecord{
		StepID:         int64(step.ID),
		TitleFull:      step.TitleFull,
		TitleShort:     step.TitleShort,
		CourseID:       &courseID,
		ModuleID:       widenID(step.ModuleID),
		ModuleTitle:    step.ModuleTitle,
		ModulePosition: step.ModulePosition,
		LessonID:       widenID(step.LessonID),
		LessonPosition: step.LessonPosition,
		StepPosition:   step.StepPosition,
		StepType:       step.StepType,
		Metrics:        metricValues(step.Metrics),
	}
}

func toStepRecords(steps []models.Step) []metrics.StepRecord {
	records := make([]metrics.StepRecord, 0, len(steps))
	for _, step := range steps {
		records = append(records, toStepRecord(step))
	}
	return records
}

func widenID(id *uint) *int64 {
	if id == nil {
		return nil
	}
	v := int64(*id)
	return &v
}

func metricValues(raw datatypes.JSONMap) map[string]metrics.Value {
	values := make(map[string]metrics.Value, len(raw))
	for key, value := range raw {
		values[key] = metrics.ValueFromAny(value)
	}
	return values
}

// evaluateRecord runs the classifier over the whole catalog and records the
// verdict.
func evaluateRecord(record metrics.StepRecord, defs []metrics.Definition) metrics.StepEvaluation {
	evaluation := metrics.Evaluate(record.Metrics, defs)
	observability.EvaluatedSteps().WithLabelValues(string(evaluation.Verdict)).Inc()
	return evaluation
}

// normaliseModuleIDs sorts and deduplicates a module selection so equal
// selections share a cache entry.
func normaliseModuleIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return []int64{}
	}
	out := append([]int64(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	unique := out[:1]
	for _, id := range out[1:] {
		if id != unique[len(unique)-1] {
			unique = append(unique, id)
		}
	}
	return unique
}

func joinIDs(ids []int64) string {
	if len(ids) == 0 {
		return "all"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
