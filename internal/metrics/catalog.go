// Package metrics evaluates pre-computed step analytics: it classifies metric
// readings against thresholds, rolls them up into a step verdict, writes
// narrative insights and sizes chart axes. Everything here is pure.
package metrics

// Kind tags the scale a metric is measured on.
type Kind string

const (
	KindRate     Kind = "rate"
	KindIndex    Kind = "index"
	KindCount    Kind = "count"
	KindDuration Kind = "duration"
)

// Metric keys known to the catalog.
const (
	KeySuccessRate       = "success_rate"
	KeyDifficultyIndex   = "difficulty_index"
	KeyDiscrimination    = "discrimination_index"
	KeySkipRate          = "skip_rate"
	KeyCompletionIndex   = "completion_index"
	KeyAvgCompletionTime = "avg_completion_time_filtered_seconds"
	KeyAvgAttemptsPassed = "avg_attempts_per_passed"
	KeyCommentRate       = "comment_rate"
	KeyCommentCount      = "comment_count"
	KeyUsefulnessIndex   = "usefulness_index"
	KeyPassedUsers       = "passed_users_sub"
	KeyAllUsersAttempted = "all_users_attempted"
	KeyViews             = "views"
	KeyUniqueViews       = "unique_views"
)

// DefaultDashboardMetric is charted when no metric is selected.
const DefaultDashboardMetric = KeySuccessRate

// Thresholds is a good/bad cut pair in the metric's native scale.
type Thresholds struct {
	Good float64
	Bad  float64
}

// Axis pins chart bounds for a metric. A nil bound is computed from data.
type Axis struct {
	Min   *float64
	Max   *float64
	Ticks []float64
}

// Definition describes how to read, format and judge one metric.
type Definition struct {
	Key         string
	Label       string
	Description string
	Kind        Kind
	Decimals    int
	Thresholds  *Thresholds
	Invert      bool
	Axis        *Axis
	IndexFloor  float64
	// Votes marks metrics that count toward the step verdict.
	Votes       bool
}

// Rated reports whether the definition carries display thresholds. Voting
// metrics without thresholds still classify finite readings as normal.
func (d Definition) Rated() bool {
	return d.Thresholds != nil
}

func (d Definition) clone() Definition {
	if d.Thresholds != nil {
		t := *d.Thresholds
		d.Thresholds = &t
	}
	if d.Axis != nil {
		a := Axis{Ticks: append([]float64(nil), d.Axis.Ticks...)}
		if d.Axis.Min != nil {
			a.Min = bound(*d.Axis.Min)
		}
		if d.Axis.Max != nil {
			a.Max = bound(*d.Axis.Max)
		}
		d.Axis = &a
	}
	return d
}

func cut(good, bad float64) *Thresholds {
	return &Thresholds{Good: good, Bad: bad}
}

func bound(v float64) *float64 {
	return &v
}

var catalog = []Definition{
	{
		Key:         KeySuccessRate,
		Label:       "Step success rate (%)",
		Description: "Share of unique learners who solved the step out of all unique learners who attempted it.",
		Kind:        KindRate,
		Thresholds:  cut(0.85, 0.80),
		Axis:        &Axis{Min: bound(75), Max: bound(100), Ticks: []float64{70, 75, 80, 85, 90, 95, 100}},
		Votes:       true,
	},
	{
		Key:         KeyDifficultyIndex,
		Label:       "Step difficulty (index)",
		Description: "Correct submissions over all submissions on the step. Values close to 1 mean most attempts succeed.",
		Kind:        KindIndex,
		Decimals:    3,
		Thresholds:  cut(0.70, 0.30),
		Axis:        &Axis{Min: bound(0), Max: bound(1)},
		Votes:       true,
	},
	{
		Key:         KeyDiscrimination,
		Label:       "Discrimination (index)",
		Description: "How well the step separates strong learners from weak ones, comparing the top and bottom 27% by lesson score.",
		Kind:        KindIndex,
		Decimals:    3,
		Thresholds:  cut(0.35, 0.15),
		Axis:        &Axis{Min: bound(-0.25), Max: bound(1.05), Ticks: []float64{-0.2, 0, 0.2, 0.4, 0.6, 0.8, 1.0}},
		IndexFloor:  -0.2,
		Votes:       true,
	},
	{
		Key:         KeySkipRate,
		Label:       "Continued after failing (%)",
		Description: "Share of learners who failed this step but later solved at least one of the following steps.",
		Kind:        KindRate,
		Axis:        &Axis{Min: bound(0), Max: bound(100.5)},
		Votes:       true,
	},
	{
		Key:         KeyCompletionIndex,
		Label:       "Drop-off after step (%)",
		Description: "Share of learners who attempted this step and made no attempts on any later step.",
		Kind:        KindRate,
		Thresholds:  cut(0.05, 0.15),
		Invert:      true,
		Axis:        &Axis{Min: bound(0), Max: bound(25.5), Ticks: []float64{0, 5, 10, 15, 20, 25}},
		Votes:       true,
	},
	{
		Key:         KeyAvgCompletionTime,
		Label:       "Avg. completion time (sec, filtered)",
		Description: "Mean time between the first attempt and the last correct attempt for learners who passed. Sessions over three hours are excluded.",
		Kind:        KindDuration,
		Axis:        &Axis{Min: bound(0)},
	},
	{
		Key:         KeyAvgAttemptsPassed,
		Label:       "Avg. attempts (to pass)",
		Description: "All submissions on the step divided by the number of unique learners who passed it.",
		Kind:        KindCount,
		Decimals:    1,
		Thresholds:  cut(1.5, 3.5),
		Invert:      true,
		Axis:        &Axis{Min: bound(0), Max: bound(5), Ticks: []float64{0, 1, 2, 3, 4, 5}},
		Votes:       true,
	},
	{
		Key:         KeyCommentRate,
		Label:       "Commenting learners (%)",
		Description: "Unique learners who commented on the step over unique learners who viewed it.",
		Kind:        KindRate,
		Thresholds:  cut(0.10, 0.02),
		Axis:        &Axis{Min: bound(0), Max: bound(20.5), Ticks: []float64{0, 5, 10, 15, 20}},
		Votes:       true,
	},
	{
		Key:         KeyCommentCount,
		Label:       "Comments (total)",
		Description: "Total number of comments left on the step.",
		Kind:        KindCount,
		Axis:        &Axis{Min: bound(0)},
	},
	{
		Key:         KeyUsefulnessIndex,
		Label:       "View engagement index",
		Description: "All views over unique viewers. Values above 3 suggest learners keep coming back to the step.",
		Kind:        KindCount,
		Decimals:    1,
		Thresholds:  cut(3.0, 1.0),
		Axis:        &Axis{Min: bound(0)},
		Votes:       true,
	},
	{
		Key:         KeyPassedUsers,
		Label:       "Passed (unique learners)",
		Description: "Unique learners whose submission on the step was accepted.",
		Kind:        KindCount,
		Axis:        &Axis{Min: bound(0)},
	},
	{
		Key:         KeyAllUsersAttempted,
		Label:       "Attempted (unique learners)",
		Description: "Unique learners who made at least one submission on the step.",
		Kind:        KindCount,
		Axis:        &Axis{Min: bound(0)},
	},
	{
		Key:         KeyViews,
		Label:       "Views (total)",
		Description: "Total number of step views, not deduplicated.",
		Kind:        KindCount,
		Axis:        &Axis{Min: bound(0)},
	},
	{
		Key:         KeyUniqueViews,
		Label:       "Unique views (learners)",
		Description: "Unique learners who viewed the step at least once.",
		Kind:        KindCount,
		Axis:        &Axis{Min: bound(0)},
	},
}

var catalogIndex = func() map[string]int {
	index := make(map[string]int, len(catalog))
	for i, def := range catalog {
		index[def.Key] = i
	}
	return index
}()

// Definitions returns the catalog in display order. Callers get their own copy.
func Definitions() []Definition {
	out := make([]Definition, len(catalog))
	for i, def := range catalog {
		out[i] = def.clone()
	}
	return out
}

// Lookup resolves a definition by metric key.
func Lookup(key string) (Definition, bool) {
	i, ok := catalogIndex[key]
	if !ok {
		return Definition{}, false
	}
	return catalog[i].clone(), true
}

// Resolve returns the definition for key, falling back to the default
// dashboard metric when the key is unknown.
func Resolve(key string) Definition {
	if def, ok := Lookup(key); ok {
		return def
	}
	def, _ := Lookup(DefaultDashboardMetric)
	return def
}
