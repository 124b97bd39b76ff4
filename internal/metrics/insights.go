package metrics

// InsightCategory tells strengths apart from improvement areas.
type InsightCategory string

const (
	CategoryStrength    InsightCategory = "strength"
	CategoryImprovement InsightCategory = "improvement"
)

// FallbackNote is the note attached when no curated metric stands out.
const FallbackNote = "Key metrics are within the normal range or need more context to interpret."

// InsightEntry is one templated observation. Metric and Value are empty only
// on the fallback entry.
type InsightEntry struct {
	Key      string          `json:"key,omitempty"`
	Metric   string          `json:"metric,omitempty"`
	Value    string          `json:"value,omitempty"`
	Note     string          `json:"note"`
	Category InsightCategory `json:"category"`
}

// InsightReport groups entries the way the analysis page renders them.
type InsightReport struct {
	Strengths           []InsightEntry `json:"strengths"`
	AreasForImprovement []InsightEntry `json:"areas_for_improvement"`
}

type insightRule struct {
	key      string
	kind     Kind
	decimals int
	invert   bool
	// inclusive bad cut; only usefulness uses it
	badInclusive bool
	good, bad    float64

	strengthLabel, improvementLabel string
	strengthNote, improvementNote   string
}

// Curated cuts are coarser than the display thresholds. Order is the order
// entries appear in.
var insightRules = []insightRule{
	{
		key: KeySuccessRate, kind: KindRate, good: 0.80, bad: 0.50,
		strengthLabel: "Success rate", improvementLabel: "Success rate",
		strengthNote: "High", improvementNote: "Low, needs attention",
	},
	{
		key: KeyDifficultyIndex, kind: KindIndex, decimals: 2, good: 0.70, bad: 0.30,
		strengthLabel: "Difficulty", improvementLabel: "Difficulty",
		strengthNote: "Relatively easy", improvementNote: "High, the step may be too hard",
	},
	{
		key: KeyDiscrimination, kind: KindIndex, decimals: 2, good: 0.35, bad: 0.15,
		strengthLabel: "Discrimination", improvementLabel: "Discrimination",
		strengthNote: "Separates strong and weak learners well", improvementNote: "Separates learners poorly",
	},
	{
		key: KeyAvgAttemptsPassed, kind: KindCount, decimals: 1, invert: true, good: 1.5, bad: 3.5,
		strengthLabel: "Avg. attempts", improvementLabel: "Avg. attempts",
		strengthNote: "Few, solved quickly", improvementNote: "Many, the task may be unclear",
	},
	{
		key: KeyCompletionIndex, kind: KindRate, invert: true, good: 0.05, bad: 0.15,
		strengthLabel: "Retention", improvementLabel: "Drop-off after step",
		strengthNote: "Low drop-off after the step", improvementNote: "High, critical",
	},
	{
		key: KeySkipRate, kind: KindRate, good: 0.70, bad: 0.30,
		strengthLabel: "Recovery after failure", improvementLabel: "Recovery after failure",
		strengthNote: "Many continue even without passing", improvementNote: "Few continue after failing",
	},
	{
		key: KeyUsefulnessIndex, kind: KindCount, decimals: 1, badInclusive: true, good: 3.0, bad: 1.0,
		strengthLabel: "Engagement (views)", improvementLabel: "Engagement (views)",
		strengthNote: "Often revisited", improvementNote: "Rarely revisited",
	},
}

func (r insightRule) judge(f float64) (InsightCategory, bool) {
	if r.invert {
		switch {
		case f <= r.good:
			return CategoryStrength, true
		case f > r.bad:
			return CategoryImprovement, true
		}
		return "", false
	}

	switch {
	case f >= r.good:
		return CategoryStrength, true
	case f < r.bad, r.badInclusive && f == r.bad:
		return CategoryImprovement, true
	}
	return "", false
}

// Insights evaluates the curated metrics of one step. At most one entry is
// produced per metric. When nothing stands out a single fallback improvement
// entry carrying only a note is returned.
func Insights(values map[string]Value) InsightReport {
	report := InsightReport{
		Strengths:           []InsightEntry{},
		AreasForImprovement: []InsightEntry{},
	}

	for _, rule := range insightRules {
		v := values[rule.key]
		f, ok := v.Float()
		if !ok {
			continue
		}
		category, hit := rule.judge(f)
		if !hit {
			continue
		}

		display := formatKind(rule.kind, rule.decimals, v)
		if category == CategoryStrength {
			report.Strengths = append(report.Strengths, InsightEntry{
				Key: rule.key, Metric: rule.strengthLabel, Value: display,
				Note: rule.strengthNote, Category: CategoryStrength,
			})
			continue
		}
		report.AreasForImprovement = append(report.AreasForImprovement, InsightEntry{
			Key: rule.key, Metric: rule.improvementLabel, Value: display,
			Note: rule.improvementNote, Category: CategoryImprovement,
		})
	}

	if len(report.Strengths) == 0 && len(report.AreasForImprovement) == 0 {
		report.AreasForImprovement = append(report.AreasForImprovement, InsightEntry{
			Note:     FallbackNote,
			Category: CategoryImprovement,
		})
	}

	return report
}

// Limit keeps at most n entries per list. n <= 0 leaves the report as is.
func (r InsightReport) Limit(n int) InsightReport {
	if n <= 0 {
		return r
	}
	out := InsightReport{
		Strengths:           r.Strengths,
		AreasForImprovement: r.AreasForImprovement,
	}
	if len(out.Strengths) > n {
		out.Strengths = out.Strengths[:n:n]
	}
	if len(out.AreasForImprovement) > n {
		out.AreasForImprovement = out.AreasForImprovement[:n:n]
	}
	return out
}
