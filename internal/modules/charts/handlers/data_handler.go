package handlers

import (
	"errors"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/chartgen/chartgen-api/internal/core/dataset"
	"github.com/chartgen/chartgen-api/internal/modules/charts/repositories"
	"github.com/chartgen/chartgen-api/internal/modules/charts/services"
)

// DataHandler handles dataset upload and session HTTP requests
type DataHandler struct {
	dataService      *services.DataService
	maxUploadSize    int64
	allowedFileTypes []string
}

// NewDataHandler creates a new data handler
func NewDataHandler(dataService *services.DataService, maxUploadSize int64, allowedFileTypes []string) *DataHandler {
	return &DataHandler{
		dataService:      dataService,
		maxUploadSize:    maxUploadSize,
		allowedFileTypes: allowedFileTypes,
	}
}

// UploadData godoc
// @Summary Upload a dataset to a session
// @Description Upload a csv, json or xlsx file and profile it for chart generation
// @Tags Data
// @Accept multipart/form-data
// @Produce json
// @Param session_id path string true "Session ID"
// @Param file formData file true "Tabular data file"
// @Success 200 {object} models.UploadResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 413 {object} map[string]interface{}
// @Router /api/data/upload/{session_id} [post]
func (h *DataHandler) UploadData(c *fiber.Ctx) error {
	return h.handleUpload(c, c.Params("session_id"))
}

// UploadDataLegacy godoc
// @Summary Upload a dataset with a generated session id
// @Description Upload a file without naming a session; the server generates one
// @Tags Data
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Tabular data file"
// @Success 200 {object} models.UploadResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 413 {object} map[string]interface{}
// @Router /api/data/upload [post]
func (h *DataHandler) UploadDataLegacy(c *fiber.Ctx) error {
	return h.handleUpload(c, uuid.New().String())
}

func (h *DataHandler) handleUpload(c *fiber.Ctx, sessionID string) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file uploaded",
		})
	}

	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileHeader.Filename), "."))
	if !h.formatAllowed(format) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unsupported file type. Allowed: " + strings.Join(h.allowedFileTypes, ", "),
		})
	}

	if fileHeader.Size > h.maxUploadSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": "File exceeds the maximum upload size",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read uploaded file",
		})
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read uploaded file",
		})
	}

	result, err := h.dataService.Upload(sessionID, fileHeader.Filename, content, format)
	if err != nil {
		if errors.Is(err, dataset.ErrUnsupportedFormat) ||
			errors.Is(err, dataset.ErrParse) ||
			errors.Is(err, services.ErrInvalidData) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		log.Printf("❌ Failed to process upload: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process uploaded file",
		})
	}

	log.Printf("✅ Dataset uploaded: %s (%d rows, session %s)", fileHeader.Filename, result.RowCount, sessionID)

	return c.JSON(result)
}

func (h *DataHandler) formatAllowed(format string) bool {
	for _, allowed := range h.allowedFileTypes {
		if format == allowed {
			return true
		}
	}
	return false
}

// GetSession godoc
// @Summary Get session info
// @Description Get the stored dataset summary with per-column sample values
// @Tags Data
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} models.SessionInfoResponse
// @Failure 404 {object} map[string]interface{}
// @Router /api/data/sessions/{session_id} [get]
func (h *DataHandler) GetSession(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")

	info, err := h.dataService.GetSession(sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrUnknownSession) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Session not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(info)
}

// DeleteSession godoc
// @Summary Delete a session
// @Description Remove a stored dataset and free its memory
// @Tags Data
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/data/sessions/{session_id} [delete]
func (h *DataHandler) DeleteSession(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")

	if err := h.dataService.DeleteSession(sessionID); err != nil {
		if errors.Is(err, repositories.ErrUnknownSession) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Session not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	log.Printf("✅ Session deleted: %s", sessionID)

	return c.JSON(fiber.Map{
		"message":    "Session deleted successfully",
		"session_id": sessionID,
	})
}
