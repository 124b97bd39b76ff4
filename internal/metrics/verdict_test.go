package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	cases := []struct {
		name    string
		classes []Classification
		want    Verdict
	}{
		{"empty", nil, VerdictDefault},
		{"only unrated", []Classification{ClassUnrated, ClassUnrated}, VerdictDefault},
		{"single bad forgiven", []Classification{ClassBad, ClassGood, ClassGood}, VerdictNormal},
		{"single bad next to normal", []Classification{ClassNormal, ClassBad}, VerdictNormal},
		{"two bads", []Classification{ClassBad, ClassBad, ClassGood}, VerdictBad},
		{"good majority", []Classification{ClassGood, ClassGood, ClassNormal}, VerdictGood},
		{"tie goes to good", []Classification{ClassGood, ClassNormal}, VerdictGood},
		{"normal majority", []Classification{ClassNormal, ClassNormal, ClassGood}, VerdictNormal},
		{"lone bad", []Classification{ClassBad}, VerdictBad},
		{"lone bad with unrated", []Classification{ClassUnrated, ClassBad, ClassUnrated}, VerdictBad},
		{"lone good", []Classification{ClassGood}, VerdictGood},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Aggregate(tc.classes))
		})
	}
}

func TestAggregateIgnoresOrder(t *testing.T) {
	a := Aggregate([]Classification{ClassBad, ClassNormal, ClassNormal, ClassGood})
	b := Aggregate([]Classification{ClassGood, ClassNormal, ClassBad, ClassNormal})
	require.Equal(t, a, b)
}

func TestEvaluate(t *testing.T) {
	values := map[string]Value{
		KeyViews:             Of(100),
		KeyAvgAttemptsPassed: Of(4),
		KeySuccessRate:       Of(0.9),
		"unknown_metric":     Of(1),
	}

	result := Evaluate(values, Definitions())
	require.Len(t, result.Metrics, 3)

	assert.Equal(t, KeySuccessRate, result.Metrics[0].Key)
	assert.Equal(t, "90.0%", result.Metrics[0].Display)
	assert.Equal(t, ClassGood, result.Metrics[0].Class)

	assert.Equal(t, KeyAvgAttemptsPassed, result.Metrics[1].Key)
	assert.Equal(t, "4.0", result.Metrics[1].Display)
	assert.Equal(t, ClassBad, result.Metrics[1].Class)

	assert.Equal(t, KeyViews, result.Metrics[2].Key)
	assert.Equal(t, "100", result.Metrics[2].Display)
	assert.Equal(t, ClassNormal, result.Metrics[2].Class)

	// views does not vote; one bad next to a good reading is forgiven
	assert.Equal(t, VerdictNormal, result.Verdict)

	require.Equal(t, result, Evaluate(values, Definitions()))
}

func TestEvaluateSkipRateVotesNormal(t *testing.T) {
	result := Evaluate(map[string]Value{
		KeySuccessRate: Of(0.5),
		KeySkipRate:    Of(0.9),
	}, Definitions())

	require.Len(t, result.Metrics, 2)
	assert.Equal(t, ClassBad, result.Metrics[0].Class)
	assert.Equal(t, KeySkipRate, result.Metrics[1].Key)
	assert.Equal(t, ClassNormal, result.Metrics[1].Class)
	assert.Equal(t, VerdictNormal, result.Verdict)
}

func TestEvaluateNonVotingMetricsStayOutOfVerdict(t *testing.T) {
	result := Evaluate(map[string]Value{
		KeySuccessRate:  Of(0.5),
		KeyViews:        Of(100),
		KeyCommentCount: Of(3),
	}, Definitions())

	require.Len(t, result.Metrics, 3)
	assert.Equal(t, VerdictBad, result.Verdict)
}

func TestEvaluateWithoutReadings(t *testing.T) {
	result := Evaluate(map[string]Value{KeySuccessRate: Absent()}, Definitions())
	require.Len(t, result.Metrics, 1)
	require.Equal(t, NotAvailable, result.Metrics[0].Display)
	require.Equal(t, VerdictDefault, result.Verdict)
}
