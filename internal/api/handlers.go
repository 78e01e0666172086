package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/logwardstack/logward-detect/internal/services"
	"github.com/logwardstack/logward-detect/internal/utils"
)

// Handlers exposes the detection service over HTTP.
type Handlers struct {
	service        *services.AnalysisService
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewHandlers constructs the HTTP handler set.
func NewHandlers(service *services.AnalysisService, logger *slog.Logger, maxUploadBytes int64) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = 32 << 20
	}
	return &Handlers{service: service, logger: logger, maxUploadBytes: maxUploadBytes}
}

// Register attaches the API routes to the router.
func (h *Handlers) Register(router *gin.Engine) {
	router.GET("/health", h.health)

	v1 := router.Group("/api/v1")
	v1.POST("/analyze", h.analyze)
	v1.GET("/results/:id", h.result)
}

func (h *Handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// analyze accepts a multipart CSV upload and returns the full detection report.
func (h *Handlers) analyze(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
		return
	}
	if ext := strings.ToLower(filepath.Ext(fileHeader.Filename)); ext != ".csv" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only .csv uploads are supported"})
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "uploaded file exceeds size limit"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open uploaded file"})
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded file"})
		return
	}
	if int64(len(raw)) > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "uploaded file exceeds size limit"})
		return
	}

	report, err := h.service.Analyze(c.Request.Context(), fileHeader.Filename, raw)
	if err != nil {
		var se *utils.SchemaError
		var ve *utils.ValidationError
		if errors.As(err, &se) || errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("analysis request failed",
			slog.String("file", fileHeader.Filename), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// result returns a previously produced report by submission ID.
func (h *Handlers) result(c *gin.Context) {
	id := c.Param("id")
	report, ok := h.service.Report(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	c.JSON(http.StatusOK, report)
}
