package handler

import (
	"bytes"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/course-insights-api/internal/service"
	"github.com/noah-isme/course-insights-api/internal/utils"
)

const defaultSnapshotMaxBytes = 8 << 20

// SnapshotHandler accepts analytics snapshot imports.
type SnapshotHandler struct {
	service  service.SnapshotService
	maxBytes int64
	logger   zerolog.Logger
}

// NewSnapshotHandler creates a new handler instance. maxBytes <= 0 uses the default limit.
func NewSnapshotHandler(service service.SnapshotService, maxBytes int64, logger zerolog.Logger) *SnapshotHandler {
	if maxBytes <= 0 {
		maxBytes = defaultSnapshotMaxBytes
	}
	return &SnapshotHandler{
		service:  service,
		maxBytes: maxBytes,
		logger:   logger.With().Str("component", "snapshot_handler").Logger(),
	}
}

// Register attaches the import endpoint.
func (h *SnapshotHandler) Register(router fiber.Router) {
	router.Post("/snapshots", h.importSnapshot)
}

func (h *SnapshotHandler) importSnapshot(c *fiber.Ctx) error {
	log := requestLogger(h.logger, c)

	payload, status, message := h.readPayload(c)
	if status != 0 {
		return utils.SendError(c, status, message)
	}

	detected := mimetype.Detect(payload)
	if !detected.Is("application/json") {
		log.Warn().Str("mime", detected.String()).Msg("rejected snapshot upload")
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, "snapshot must be a JSON document")
	}

	result, err := h.service.Import(c.UserContext(), payload)
	if err != nil {
		return sendServiceError(c, log, err, "failed to import snapshot")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "snapshot imported", result)
}

// readPayload takes the snapshot from a multipart "file" field when present
// and from the raw body otherwise.
func (h *SnapshotHandler) readPayload(c *fiber.Ctx) ([]byte, int, string) {
	if file, err := c.FormFile("file"); err == nil {
		if file.Size > h.maxBytes {
			return nil, fiber.StatusRequestEntityTooLarge, "snapshot too large"
		}
		data, err := readMultipart(file, h.maxBytes)
		if err != nil {
			return nil, fiber.StatusBadRequest, "unable to read snapshot file"
		}
		return data, 0, ""
	}

	body := c.Body()
	if len(body) == 0 {
		return nil, fiber.StatusBadRequest, "snapshot body is required"
	}
	if int64(len(body)) > h.maxBytes {
		return nil, fiber.StatusRequestEntityTooLarge, "snapshot too large"
	}
	return append([]byte(nil), body...), 0, ""
}

func readMultipart(header *multipart.FileHeader, limit int64) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(file, limit)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
