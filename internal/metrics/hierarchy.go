package metrics

import (
	"fmt"
	"sort"
)

// StepRecord is one step with its positions and metric readings. Nil
// positions sort last.
type StepRecord struct {
	StepID         int64            `json:"step_id"`
	TitleFull      string           `json:"step_title_full,omitempty"`
	TitleShort     string           `json:"step_title_short,omitempty"`
	CourseID       *int64           `json:"course_id,omitempty"`
	ModuleID       *int64           `json:"module_id,omitempty"`
	ModuleTitle    string           `json:"module_title,omitempty"`
	ModulePosition *int             `json:"module_position,omitempty"`
	LessonID       *int64           `json:"lesson_id,omitempty"`
	LessonPosition *int             `json:"lesson_position,omitempty"`
	StepPosition   *int             `json:"step_position,omitempty"`
	StepType       string           `json:"step_type,omitempty"`
	Metrics        map[string]Value `json:"metrics"`
}

// Label is the short chart label of the step.
func (s StepRecord) Label() string {
	if s.TitleShort != "" {
		return s.TitleShort
	}
	return fmt.Sprintf("Step %d", s.StepID)
}

// ModuleRecord is derived from steps and never stored on its own.
type ModuleRecord struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Position *int   `json:"position,omitempty"`
}

// StepTypeText marks pure reading steps.
const StepTypeText = "text"

// comparePositions orders two optional positions ascending with missing
// values treated as +Inf. Two missing values compare equal.
func comparePositions(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	default:
		return 0
	}
}

// DeriveModules lists the distinct modules in first-seen order, then sorts
// them by position.
func DeriveModules(steps []StepRecord) []ModuleRecord {
	seen := make(map[int64]struct{})
	modules := make([]ModuleRecord, 0)
	for _, step := range steps {
		if step.ModuleID == nil {
			continue
		}
		id := *step.ModuleID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		title := step.ModuleTitle
		if title == "" {
			title = fmt.Sprintf("Module %d", id)
		}
		modules = append(modules, ModuleRecord{ID: id, Title: title, Position: step.ModulePosition})
	}

	sort.SliceStable(modules, func(i, j int) bool {
		return comparePositions(modules[i].Position, modules[j].Position) < 0
	})
	return modules
}

// FilterByModules keeps steps belonging to one of the selected modules. An
// empty selection means no filter.
func FilterByModules(steps []StepRecord, moduleIDs []int64) []StepRecord {
	out := make([]StepRecord, 0, len(steps))
	if len(moduleIDs) == 0 {
		return append(out, steps...)
	}

	selected := make(map[int64]struct{}, len(moduleIDs))
	for _, id := range moduleIDs {
		selected[id] = struct{}{}
	}
	for _, step := range steps {
		if step.ModuleID == nil {
			continue
		}
		if _, ok := selected[*step.ModuleID]; ok {
			out = append(out, step)
		}
	}
	return out
}

// ExcludeTypes drops steps of the given types.
func ExcludeTypes(steps []StepRecord, types ...string) []StepRecord {
	out := make([]StepRecord, 0, len(steps))
	for _, step := range steps {
		skip := false
		for _, t := range types {
			if step.StepType == t {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, step)
		}
	}
	return out
}

// SortSteps returns a sorted copy ordered by module, lesson and step
// position. Each level puts missing positions last on its own.
func SortSteps(steps []StepRecord) []StepRecord {
	out := make([]StepRecord, len(steps))
	copy(out, steps)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if c := comparePositions(a.ModulePosition, b.ModulePosition); c != 0 {
			return c < 0
		}
		if c := comparePositions(a.LessonPosition, b.LessonPosition); c != 0 {
			return c < 0
		}
		return comparePositions(a.StepPosition, b.StepPosition) < 0
	})
	return out
}
