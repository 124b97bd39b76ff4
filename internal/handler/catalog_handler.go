package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/course-insights-api/internal/service"
	"github.com/noah-isme/course-insights-api/internal/utils"
)

// CatalogHandler exposes the metric catalog.
type CatalogHandler struct {
	service service.CatalogService
	logger  zerolog.Logger
}

// NewCatalogHandler creates a new handler instance.
func NewCatalogHandler(service service.CatalogService, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger.With().Str("component", "catalog_handler").Logger(),
	}
}

// Register attaches the catalog endpoints.
func (h *CatalogHandler) Register(router fiber.Router) {
	router.Get("/catalog", h.list)
	router.Get("/catalog/:key", h.get)
}

func (h *CatalogHandler) list(c *fiber.Ctx) error {
	definitions := h.service.List()
	return utils.OK(c, definitions, "metric catalog retrieved", fiber.Map{"count": len(definitions)})
}

func (h *CatalogHandler) get(c *fiber.Ctx) error {
	definition, ok := h.service.Get(c.Params("key"))
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "metric not found")
	}
	return utils.SendSuccess(c, "metric retrieved", definition)
}
