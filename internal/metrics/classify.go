package metrics

// Classification is the verdict for a single metric reading.
type Classification string

const (
	ClassGood    Classification = "good"
	ClassNormal  Classification = "normal"
	ClassBad     Classification = "bad"
	ClassUnrated Classification = "unrated"
)

// Classify judges v against the definition's display thresholds. The good
// cut is inclusive and the bad cut strict; Invert flips the direction.
// Only absent or non-finite readings are unrated; a finite reading of a
// metric without thresholds is normal.
func Classify(v Value, def Definition) Classification {
	f, ok := v.Float()
	if !ok {
		return ClassUnrated
	}
	if def.Thresholds == nil {
		return ClassNormal
	}

	t := def.Thresholds
	if def.Invert {
		switch {
		case f <= t.Good:
			return ClassGood
		case f > t.Bad:
			return ClassBad
		default:
			return ClassNormal
		}
	}

	switch {
	case f >= t.Good:
		return ClassGood
	case f < t.Bad:
		return ClassBad
	default:
		return ClassNormal
	}
}
