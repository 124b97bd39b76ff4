package metrics

import "math"

const (
	rateStep        = 5.0
	rateCeiling     = 100.5
	rateFlatPadding = 5.0
	ratePadFloor    = 2.0
	rateMinSpan     = 10.0
	rateDefaultMax  = 100.0

	indexDecimals    = 2
	indexCeiling     = 1.05
	indexFlatPadding = 0.1
	indexPadFloor    = 0.02
	indexMinSpan     = 0.2
	indexDefaultMax  = 1.0

	countFlatPadding = 2.0
	countPadFloor    = 1.0
	countMinSpan     = 5.0
	countDefaultMax  = 10.0

	// share of the data range used as padding
	paddingRatio = 0.1
)

// Domain is a chart axis range.
type Domain struct {
	Min   float64   `json:"min"`
	Max   float64   `json:"max"`
	Ticks []float64 `json:"ticks,omitempty"`
	Fixed bool      `json:"fixed"`
}

// AutoDomain computes an axis range for the finite values. floor is the
// natural lower bound of index kinds and is ignored otherwise. Rate values
// are expected on the 0-100 chart scale.
func AutoDomain(values []float64, kind Kind, floor float64) Domain {
	finiteValues := make([]float64, 0, len(values))
	for _, v := range values {
		if finite(v) {
			finiteValues = append(finiteValues, v)
		}
	}
	if len(finiteValues) == 0 {
		return defaultDomain(kind, floor)
	}

	dataMin, dataMax := finiteValues[0], finiteValues[0]
	for _, v := range finiteValues[1:] {
		dataMin = math.Min(dataMin, v)
		dataMax = math.Max(dataMax, v)
	}

	flat, padFloor, span := paddingFor(kind)
	padding := flat
	if r := dataMax - dataMin; r != 0 {
		padding = math.Max(math.Abs(r*paddingRatio), padFloor)
	}

	lo, hi := dataMin-padding, dataMax+padding
	switch kind {
	case KindRate:
		lo = math.Max(0, math.Floor(lo/rateStep)*rateStep)
		hi = math.Min(rateCeiling, math.Ceil(hi/rateStep)*rateStep)
	case KindIndex:
		lo = math.Max(floor, roundTo(lo, indexDecimals))
		hi = math.Min(indexCeiling, roundTo(hi, indexDecimals))
	default:
		lo = math.Floor(lo)
		hi = math.Ceil(hi)
	}
	if lo >= hi {
		hi = lo + span
	}

	return Domain{Min: lo, Max: hi}
}

func paddingFor(kind Kind) (flat, padFloor, span float64) {
	switch kind {
	case KindRate:
		return rateFlatPadding, ratePadFloor, rateMinSpan
	case KindIndex:
		return indexFlatPadding, indexPadFloor, indexMinSpan
	default:
		return countFlatPadding, countPadFloor, countMinSpan
	}
}

func defaultDomain(kind Kind, floor float64) Domain {
	switch kind {
	case KindRate:
		return Domain{Min: 0, Max: rateDefaultMax}
	case KindIndex:
		return Domain{Min: floor, Max: indexDefaultMax}
	default:
		return Domain{Min: 0, Max: countDefaultMax}
	}
}

func roundTo(f float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(f*p) / p
}

// ChartValue converts a reading to chart scale. Rates in [0,1] become
// percentages.
func ChartValue(def Definition, v Value) Value {
	f, ok := v.Float()
	if !ok {
		return Absent()
	}
	if def.Kind == KindRate && f >= 0 && f <= 1 {
		return Of(f * 100)
	}
	return v
}

// DomainFor returns the axis for a chart series of def. A fixed axis wins;
// a fixed min alone pins the lower bound of the computed range.
func DomainFor(def Definition, series []Value) Domain {
	if def.Axis != nil && def.Axis.Min != nil && def.Axis.Max != nil {
		return Domain{
			Min:   *def.Axis.Min,
			Max:   *def.Axis.Max,
			Ticks: append([]float64(nil), def.Axis.Ticks...),
			Fixed: true,
		}
	}

	values := make([]float64, 0, len(series))
	for _, v := range series {
		if f, ok := ChartValue(def, v).Float(); ok {
			values = append(values, f)
		}
	}
	d := AutoDomain(values, def.Kind, def.IndexFloor)

	if def.Axis != nil {
		if def.Axis.Min != nil {
			d.Min = *def.Axis.Min
			if d.Min >= d.Max {
				_, _, span := paddingFor(def.Kind)
				d.Max = d.Min + span
			}
		}
		if len(def.Axis.Ticks) > 0 {
			d.Ticks = append([]float64(nil), def.Axis.Ticks...)
		}
	}
	return d
}

// ReferenceLine is a dashed threshold marker on the chart.
type ReferenceLine struct {
	Class Classification `json:"class"`
	Value float64        `json:"value"`
	Label string         `json:"label"`
}

// ReferenceLines returns the bad and good threshold lines of def in chart
// scale. Unrated metrics have none.
func ReferenceLines(def Definition) []ReferenceLine {
	if def.Thresholds == nil {
		return nil
	}

	goodOp, badOp := ">", "<"
	if def.Invert {
		goodOp, badOp = "<", ">"
	}

	lines := make([]ReferenceLine, 0, 2)
	for _, line := range []struct {
		class Classification
		word  string
		op    string
		raw   float64
	}{
		{ClassBad, "Bad", badOp, def.Thresholds.Bad},
		{ClassGood, "Good", goodOp, def.Thresholds.Good},
	} {
		y, ok := ChartValue(def, Of(line.raw)).Float()
		if !ok {
			continue
		}
		lines = append(lines, ReferenceLine{
			Class: line.class,
			Value: y,
			Label: line.word + " " + line.op + " " + Format(def, Of(line.raw)),
		})
	}
	return lines
}
