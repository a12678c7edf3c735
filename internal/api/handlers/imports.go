package handlers

import (
	"errors"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/aicaddy/caddy-api/internal/services"
	"github.com/aicaddy/caddy-api/pkg/logger"
	"github.com/aicaddy/caddy-api/pkg/utils"
)

// ImportHandler handles launch monitor import endpoints
type ImportHandler struct {
	imports        *services.ImportService
	logger         *logrus.Logger
	maxImportBytes int64
}

func NewImportHandler(imports *services.ImportService, log *logrus.Logger, maxImportBytes int64) *ImportHandler {
	return &ImportHandler{
		imports:        imports,
		logger:         log,
		maxImportBytes: maxImportBytes,
	}
}

// Upload handles POST /api/v1/imports. Accepts a multipart file upload,
// parses it, and returns a preview of the shots that would be created.
func (h *ImportHandler) Upload(c *gin.Context) {
	userID := currentUserID(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.SendValidationError(c, "A file upload is required", err.Error())
		return
	}
	if fileHeader.Size > h.maxImportBytes {
		utils.SendValidationError(c, "File exceeds the maximum import size", "")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.SendInternalError(c, "Failed to read upload")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxImportBytes+1))
	if err != nil {
		utils.SendInternalError(c, "Failed to read upload")
		return
	}
	if int64(len(data)) > h.maxImportBytes {
		utils.SendValidationError(c, "File exceeds the maximum import size", "")
		return
	}

	imp, err := h.imports.CreateImport(c.Request.Context(), userID, fileHeader.Filename, data)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create import")
		utils.SendInternalError(c, "Failed to process import")
		return
	}

	logger.WithImportContext(imp.ID.String(), string(imp.DeviceType)).Info("Import uploaded")
	utils.SendCreated(c, imp)
}

// GetImport handles GET /api/v1/imports/:id
func (h *ImportHandler) GetImport(c *gin.Context) {
	userID := currentUserID(c)

	imp, err := h.imports.GetImport(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.SendNotFound(c, "Import not found")
			return
		}
		utils.SendInternalError(c, "Failed to fetch import")
		return
	}

	utils.SendSuccess(c, imp)
}

// ListImports handles GET /api/v1/imports
func (h *ImportHandler) ListImports(c *gin.Context) {
	userID := currentUserID(c)

	imports, err := h.imports.ListImports(c.Request.Context(), userID)
	if err != nil {
		utils.SendInternalError(c, "Failed to fetch imports")
		return
	}

	utils.SendSuccess(c, gin.H{
		"imports": imports,
		"count":   len(imports),
	})
}

// Confirm handles POST /api/v1/imports/:id/confirm. Materializes a
// previewed import into rounds and shots.
func (h *ImportHandler) Confirm(c *gin.Context) {
	userID := currentUserID(c)

	imp, err := h.imports.ConfirmImport(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.SendNotFound(c, "Import not found")
			return
		}
		if strings.Contains(err.Error(), "only preview imports") {
			utils.SendConflict(c, err.Error())
			return
		}
		h.logger.WithError(err).Error("Failed to confirm import")
		utils.SendInternalError(c, "Failed to confirm import")
		return
	}

	utils.SendSuccess(c, imp)
}
