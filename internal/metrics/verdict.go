package metrics

// Verdict is the overall judgement of a step.
type Verdict string

const (
	VerdictGood    Verdict = "good"
	VerdictNormal  Verdict = "normal"
	VerdictBad     Verdict = "bad"
	VerdictDefault Verdict = "default"
)

// Aggregate folds per-metric classifications into one step verdict. Only the
// counts matter and unrated entries are ignored. The rules are checked in
// order and the first match wins:
//
//  1. nothing rated                                   -> default
//  2. exactly one bad next to any good or normal      -> normal
//  3. more than one bad, or bad strictly dominating   -> bad
//  4. good >= normal                                  -> good
//  5. normal > good                                   -> normal
//  6. a lone bad                                      -> bad
//
// Rule 2 is a heuristic: one noisy metric only downgrades a step to a
// warning. Confirm with product before changing it.
func Aggregate(classes []Classification) Verdict {
	var bad, normal, good int
	for _, c := range classes {
		switch c {
		case ClassBad:
			bad++
		case ClassNormal:
			normal++
		case ClassGood:
			good++
		}
	}

	if bad+normal+good == 0 {
		return VerdictDefault
	}
	if bad == 1 && (good > 0 || normal > 0) {
		return VerdictNormal
	}
	if bad > 1 || (bad > 0 && bad > good && bad > normal) {
		return VerdictBad
	}
	if good >= normal {
		return VerdictGood
	}
	if normal > good {
		return VerdictNormal
	}
	if bad == 1 && good == 0 && normal == 0 {
		return VerdictBad
	}
	return VerdictDefault
}

// Evaluation is the display form of one metric on one step.
type Evaluation struct {
	Key     string         `json:"key"`
	Label   string         `json:"label"`
	Value   Value          `json:"value"`
	Display string         `json:"display"`
	Class   Classification `json:"class"`
}

// StepEvaluation bundles a step's per-metric evaluations with its verdict.
type StepEvaluation struct {
	Metrics []Evaluation `json:"metrics"`
	Verdict Verdict      `json:"verdict"`
}

// Evaluate classifies every catalog metric present on the step, in catalog
// order, and aggregates the classes of the voting metrics.
func Evaluate(values map[string]Value, defs []Definition) StepEvaluation {
	evaluations := make([]Evaluation, 0, len(defs))
	classes := make([]Classification, 0, len(defs))
	for _, def := range defs {
		v, ok := values[def.Key]
		if !ok {
			continue
		}
		class := Classify(v, def)
		evaluations = append(evaluations, Evaluation{
			Key:     def.Key,
			Label:   def.Label,
			Value:   v,
			Display: Format(def, v),
			Class:   class,
		})
		if def.Votes {
			classes = append(classes, class)
		}
	}

	return StepEvaluation{Metrics: evaluations, Verdict: Aggregate(classes)}
}
