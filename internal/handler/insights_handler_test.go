package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-insights-api/internal/dto"
	"github.com/noah-isme/course-insights-api/internal/metrics"
	"github.com/noah-isme/course-insights-api/internal/service"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
	Details json.RawMessage `json:"details"`
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	var payload envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return payload
}

type dashboardStub struct {
	courseID uint
	modules  []int64
	metric   string
	response dto.DashboardResponse
	err      error
}

func (s *dashboardStub) GetDashboard(_ context.Context, courseID uint, moduleIDs []int64, metricKey string) (dto.DashboardResponse, error) {
	s.courseID, s.modules, s.metric = courseID, moduleIDs, metricKey
	return s.response, s.err
}

type comparisonStub struct {
	steps    []uint
	limit    int
	response dto.ComparisonResponse
	err      error
}

func (s *comparisonStub) Compare(_ context.Context, courseID uint, stepIDs []uint, limit int) (dto.ComparisonResponse, error) {
	s.steps, s.limit = stepIDs, limit
	s.response.CourseID = courseID
	return s.response, s.err
}

type stepStub struct {
	response dto.StepAnalysisResponse
	err      error
}

func (s *stepStub) Analyze(context.Context, uint) (dto.StepAnalysisResponse, error) {
	return s.response, s.err
}

type courseStub struct {
	courses    []dto.CourseResponse
	completion dto.CourseCompletionResponse
	err        error
}

func (s *courseStub) List(context.Context) ([]dto.CourseResponse, error) { return s.courses, s.err }

func (s *courseStub) Get(_ context.Context, id uint) (dto.CourseResponse, error) {
	for _, course := range s.courses {
		if course.ID == id {
			return course, nil
		}
	}
	return dto.CourseResponse{}, service.ErrCourseNotFound
}

func (s *courseStub) Completion(context.Context, uint) (dto.CourseCompletionResponse, error) {
	return s.completion, s.err
}

type snapshotStub struct {
	raw []byte
	err error
}

func (s *snapshotStub) Import(_ context.Context, raw []byte) (dto.SnapshotImportResponse, error) {
	s.raw = raw
	if s.err != nil {
		return dto.SnapshotImportResponse{}, s.err
	}
	return dto.SnapshotImportResponse{CourseID: 1, StepCount: 2, CacheVersion: 3}, nil
}

func TestDashboardHandlerPassesFilters(t *testing.T) {
	stub := &dashboardStub{response: dto.DashboardResponse{CourseID: 5, Metric: metrics.KeySuccessRate, CacheHit: true}}
	app := fiber.New()
	NewDashboardHandler(stub, &comparisonStub{}, zerolog.Nop()).Register(app.Group("/courses"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/courses/5/dashboard?modules=2,%201&metric=skip_rate", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	payload := decodeEnvelope(t, resp)
	require.True(t, payload.Success)
	require.Equal(t, true, payload.Meta["cache_hit"])
	require.Equal(t, uint(5), stub.courseID)
	require.Equal(t, []int64{2, 1}, stub.modules)
	require.Equal(t, "skip_rate", stub.metric)
}

func TestDashboardHandlerRejectsBadInput(t *testing.T) {
	app := fiber.New()
	NewDashboardHandler(&dashboardStub{}, &comparisonStub{}, zerolog.Nop()).Register(app.Group("/courses"))

	for _, target := range []string{
		"/courses/abc/dashboard",
		"/courses/0/dashboard",
		"/courses/1/dashboard?modules=1,x",
		"/courses/1/compare?steps=1&limit=-2",
	} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode, target)
	}
}

func TestDashboardHandlerMapsNotFound(t *testing.T) {
	app := fiber.New()
	NewDashboardHandler(&dashboardStub{err: service.ErrCourseNotFound}, &comparisonStub{}, zerolog.Nop()).Register(app.Group("/courses"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/courses/9/dashboard", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestComparisonHandler(t *testing.T) {
	stub := &comparisonStub{response: dto.ComparisonResponse{Missing: []uint{7}}}
	app := fiber.New()
	NewDashboardHandler(&dashboardStub{}, stub, zerolog.Nop()).Register(app.Group("/courses"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/courses/1/compare?steps=3,7&limit=2", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, []uint{3, 7}, stub.steps)
	require.Equal(t, 2, stub.limit)

	payload := decodeEnvelope(t, resp)
	require.Equal(t, float64(2), payload.Meta["requested"])

	stub.err = service.ErrComparisonEmpty
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/courses/1/compare", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestStepHandler(t *testing.T) {
	stub := &stepStub{response: dto.StepAnalysisResponse{CourseID: 1, Verdict: metrics.VerdictGood}}
	app := fiber.New()
	NewStepHandler(stub, zerolog.Nop()).Register(app.Group("/steps"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/steps/11/analysis", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	stub.err = fmt.Errorf("load: %w", service.ErrStepNotFound)
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/steps/11/analysis", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	stub.err = errors.New("boom")
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/steps/11/analysis", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, "failed to analyse step", decodeEnvelope(t, resp).Message)
}

func TestCourseHandler(t *testing.T) {
	stub := &courseStub{
		courses:    []dto.CourseResponse{{ID: 1, Title: "Intro"}},
		completion: dto.CourseCompletionResponse{CourseID: 1, TotalLearners: 10},
	}
	app := fiber.New()
	NewCourseHandler(stub, zerolog.Nop()).Register(app.Group("/courses"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/courses", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, float64(1), decodeEnvelope(t, resp).Meta["count"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/courses/2", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/courses/1/completion", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	stub.err = service.ErrCompletionNotFound
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/courses/1/completion", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCatalogHandler(t *testing.T) {
	app := fiber.New()
	NewCatalogHandler(service.NewCatalogService(), zerolog.Nop()).Register(app.Group("/metrics"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics/catalog", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	payload := decodeEnvelope(t, resp)
	require.Equal(t, float64(len(metrics.Definitions())), payload.Meta["count"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics/catalog/success_rate", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics/catalog/unknown", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func snapshotApp(stub *snapshotStub, maxBytes int64) *fiber.App {
	app := fiber.New()
	NewSnapshotHandler(stub, maxBytes, zerolog.Nop()).Register(app.Group("/admin"))
	return app
}

func TestSnapshotHandlerAcceptsRawJSON(t *testing.T) {
	stub := &snapshotStub{}
	body := `{"course":{"id":1,"title":"Intro"},"steps":[]}`

	req := httptest.NewRequest(http.MethodPost, "/admin/snapshots", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := snapshotApp(stub, 0).Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.JSONEq(t, body, string(stub.raw))
}

func TestSnapshotHandlerAcceptsMultipartFile(t *testing.T) {
	stub := &snapshotStub{}
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "snapshot.json")
	require.NoError(t, err)
	_, err = io.WriteString(part, `{"course":{"id":1,"title":"Intro"},"steps":[]}`)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/snapshots", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := snapshotApp(stub, 0).Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Contains(t, string(stub.raw), `"Intro"`)
}

func TestSnapshotHandlerRejectsPayloads(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		maxBytes int64
		status   int
	}{
		{name: "empty", body: "", status: fiber.StatusBadRequest},
		{name: "not json", body: "course,title\n1,Intro\n", status: fiber.StatusUnsupportedMediaType},
		{name: "too large", body: `{"course":{"id":1,"title":"Intro"}}`, maxBytes: 8, status: fiber.StatusRequestEntityTooLarge},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin/snapshots", bytes.NewBufferString(tc.body))
			resp, err := snapshotApp(&snapshotStub{}, tc.maxBytes).Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestSnapshotHandlerReportsValidationDetails(t *testing.T) {
	validationErr := validator.New().Struct(dto.SnapshotCourse{})
	stub := &snapshotStub{err: fmt.Errorf("%w: %w", service.ErrInvalidSnapshot, validationErr)}

	req := httptest.NewRequest(http.MethodPost, "/admin/snapshots", bytes.NewBufferString(`{"course":{}}`))
	resp, err := snapshotApp(stub, 0).Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	payload := decodeEnvelope(t, resp)
	var details map[string]string
	require.NoError(t, json.Unmarshal(payload.Details, &details))
	require.Equal(t, "required", details["SnapshotCourse.ID"])
	require.Equal(t, "required", details["SnapshotCourse.Title"])
}

func TestSplitAndParseIDs(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, splitAndTrim(" a, ,b ,"))

	ids, err := parseIDList("3, 1")
	require.NoError(t, err)
	require.Equal(t, []uint64{3, 1}, ids)

	ids, err = parseIDList("")
	require.NoError(t, err)
	require.Empty(t, ids)

	_, err = parseIDList("1,0")
	require.Error(t, err)
}
