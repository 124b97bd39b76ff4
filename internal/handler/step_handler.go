package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/course-insights-api/internal/service"
	"github.com/noah-isme/course-insights-api/internal/utils"
)

// StepHandler exposes per-step analysis.
type StepHandler struct {
	service service.StepAnalysisService
	logger  zerolog.Logger
}

// NewStepHandler creates a new handler instance.
func NewStepHandler(service service.StepAnalysisService, logger zerolog.Logger) *StepHandler {
	return &StepHandler{
		service: service,
		logger:  logger.With().Str("component", "step_handler").Logger(),
	}
}

// Register attaches the step endpoints.
func (h *StepHandler) Register(router fiber.Router) {
	router.Get("/:id/analysis", h.analyze)
}

func (h *StepHandler) analyze(c *fiber.Ctx) error {
	stepID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid step id")
	}

	analysis, err := h.service.Analyze(c.UserContext(), stepID)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to analyse step")
	}
	return utils.SendSuccess(c, "step analysed", analysis)
}
