package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/course-insights-api/internal/service"
	"github.com/noah-isme/course-insights-api/internal/utils"
)

// DashboardHandler exposes the course dashboard and step comparison.
type DashboardHandler struct {
	dashboard  service.DashboardService
	comparison service.ComparisonService
	logger     zerolog.Logger
}

// NewDashboardHandler creates a new handler instance.
func NewDashboardHandler(dashboard service.DashboardService, comparison service.ComparisonService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboard:  dashboard,
		comparison: comparison,
		logger:     logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// Register attaches the dashboard endpoints under a course group.
func (h *DashboardHandler) Register(router fiber.Router) {
	router.Get("/:id/dashboard", h.getDashboard)
	router.Get("/:id/compare", h.compare)
}

func (h *DashboardHandler) getDashboard(c *fiber.Ctx) error {
	courseID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	rawModules, err := parseIDList(c.Query("modules"))
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid modules filter")
	}
	modules := make([]int64, 0, len(rawModules))
	for _, id := range rawModules {
		modules = append(modules, int64(id))
	}

	dashboard, err := h.dashboard.GetDashboard(c.UserContext(), courseID, modules, c.Query("metric"))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to load dashboard")
	}

	meta := fiber.Map{
		"cache_hit": dashboard.CacheHit,
		"rows":      len(dashboard.Rows),
	}
	return utils.OK(c, dashboard, "dashboard retrieved", meta)
}

func (h *DashboardHandler) compare(c *fiber.Ctx) error {
	courseID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	rawSteps, err := parseIDList(c.Query("steps"))
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid steps list")
	}
	steps := make([]uint, 0, len(rawSteps))
	for _, id := range rawSteps {
		steps = append(steps, uint(id))
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil || limit < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	comparison, err := h.comparison.Compare(c.UserContext(), courseID, steps, limit)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to compare steps")
	}

	meta := fiber.Map{
		"requested": len(steps),
		"found":     len(comparison.Steps),
		"missing":   comparison.Missing,
	}
	return utils.OK(c, comparison, "steps compared", meta)
}
