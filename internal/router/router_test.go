package router

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-insights-api/internal/config"
	"github.com/noah-isme/course-insights-api/internal/dto"
	"github.com/noah-isme/course-insights-api/internal/handler"
	"github.com/noah-isme/course-insights-api/internal/middleware"
	"github.com/noah-isme/course-insights-api/internal/service"
)

type importStub struct{}

func (importStub) Import(context.Context, []byte) (dto.SnapshotImportResponse, error) {
	return dto.SnapshotImportResponse{CourseID: 1}, nil
}

func newTestApp() *fiber.App {
	cfg := config.Config{AppName: "insights", JWTSecret: "router-secret"}
	app := fiber.New()
	Register(app, cfg, Dependencies{
		CatalogHandler:   handler.NewCatalogHandler(service.NewCatalogService(), zerolog.Nop()),
		SnapshotHandler:  handler.NewSnapshotHandler(importStub{}, 0, zerolog.Nop()),
		ImportRateLimit:  100,
		ImportRateWindow: time.Minute,
	})
	return app
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ops",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte("router-secret"))
	require.NoError(t, err)
	return "Bearer " + signed
}

func TestPublicRoutes(t *testing.T) {
	app := newTestApp()

	for _, target := range []string{"/api/v1/health", "/api/v1/metrics/catalog", "/metrics"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, target)
	}
}

func TestSnapshotImportRequiresRole(t *testing.T) {
	app := newTestApp()
	body := `{"course":{"id":1,"title":"Intro"},"steps":[]}`

	send := func(authorization string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/snapshots", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	require.Equal(t, fiber.StatusUnauthorized, send(""))
	require.Equal(t, fiber.StatusForbidden, send(bearer(t, "student")))
	require.Equal(t, fiber.StatusCreated, send(bearer(t, "teacher")))
}
