package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-insights-api/internal/dto"
	"github.com/noah-isme/course-insights-api/internal/metrics"
	"github.com/noah-isme/course-insights-api/internal/repository"
)

func setupComparisonService(t *testing.T) ComparisonService {
	t.Helper()
	db := setupInsightsDB(t)
	seedCourse(t, db)
	return NewComparisonService(repository.NewCourseRepository(db), repository.NewStepRepository(db), testLogger())
}

func cardIDs(cards []dto.ComparisonCard) []int64 {
	ids := make([]int64, 0, len(cards))
	for _, card := range cards {
		ids = append(ids, card.Step.StepID)
	}
	return ids
}

func TestComparisonServiceKeepsRequestOrder(t *testing.T) {
	svc := setupComparisonService(t)

	response, err := svc.Compare(context.Background(), 1, []uint{13, 999, 11, 13}, 0)
	require.NoError(t, err)
	require.Equal(t, []int64{13, 11}, cardIDs(response.Steps))
	require.Equal(t, []uint{999}, response.Missing)
	require.Equal(t, metrics.VerdictNormal, response.Steps[0].Verdict)
	require.Equal(t, metrics.VerdictGood, response.Steps[1].Verdict)
}

func TestComparisonServiceLimitsInsights(t *testing.T) {
	svc := setupComparisonService(t)

	response, err := svc.Compare(context.Background(), 1, []uint{11}, 1)
	require.NoError(t, err)
	require.Len(t, response.Steps, 1)
	require.Len(t, response.Steps[0].Insights.Strengths, 1)
	require.Empty(t, response.Missing)
}

func TestComparisonServiceErrors(t *testing.T) {
	svc := setupComparisonService(t)
	ctx := context.Background()

	_, err := svc.Compare(ctx, 1, nil, 0)
	require.ErrorIs(t, err, ErrComparisonEmpty)

	_, err = svc.Compare(ctx, 1, []uint{0}, 0)
	require.ErrorIs(t, err, ErrComparisonEmpty)

	_, err = svc.Compare(ctx, 1, []uint{999}, 0)
	require.ErrorIs(t, err, ErrStepNotFound)

	_, err = svc.Compare(ctx, 2, []uint{11}, 0)
	require.ErrorIs(t, err, ErrCourseNotFound)
}
