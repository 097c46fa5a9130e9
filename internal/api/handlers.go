// handlers.go - HTTP host surface: OCR, settings and prompt selection

package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/bosocmputer/ocr_gemini_plugin/internal/ai"
	"github.com/bosocmputer/ocr_gemini_plugin/internal/common"
	"github.com/bosocmputer/ocr_gemini_plugin/internal/processor"
	"github.com/bosocmputer/ocr_gemini_plugin/internal/settings"
	"github.com/gin-gonic/gin"
)

// SettingsManager is the part of settings.Manager the handlers use
type SettingsManager interface {
	Current() settings.Settings
	Prompts() []settings.Prompt
	ActivePrompt() (settings.Prompt, bool)
	SelectPrompt(ctx context.Context, index int) error
	Update(ctx context.Context, s settings.Settings) error
}

// ImageOptions controls normalization of uploads before OCR
type ImageOptions struct {
	Preprocess   bool
	MaxDimension int
}

// Handler serves the API routes
type Handler struct {
	provider ai.OCRProvider
	settings SettingsManager
	images   ImageOptions
}

func NewHandler(provider ai.OCRProvider, manager SettingsManager, images ImageOptions) *Handler {
	return &Handler{
		provider: provider,
		settings: manager,
		images:   images,
	}
}

// RegisterRoutes mounts every API route on router
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)

	v1 := router.Group("/api/v1")
	v1.POST("/ocr", h.RecognizeHandler)
	v1.GET("/languages", h.LanguagesHandler)
	v1.GET("/settings", h.GetSettingsHandler)
	v1.PUT("/settings", h.UpdateSettingsHandler)
	v1.GET("/prompts", h.ListPromptsHandler)
	v1.POST("/prompts/:index/select", h.SelectPromptHandler)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "ocr-gemini-plugin",
		"provider": h.provider.GetProviderName(),
		"version":  "1.0.0",
	})
}

// RecognizeHandler handles POST /api/v1/ocr (multipart: image file, optional language)
func (h *Handler) RecognizeHandler(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    "image is required",
			"details":  err.Error(),
			"expected": "multipart/form-data with an image file field and optional language field",
		})
		return
	}

	language, err := ai.ParseLanguage(c.PostForm("language"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid language",
			"details": err.Error(),
		})
		return
	}

	imageData, err := readUpload(c, "image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Failed to read image",
			"details": err.Error(),
		})
		return
	}
	if len(imageData) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image is empty"})
		return
	}

	reqCtx := common.NewRequestContext(c.ClientIP())
	reqCtx.LogInfo("📄 Upload: %s (%d bytes) | Language: %s", fileHeader.Filename, len(imageData), language)

	if h.images.Preprocess {
		imageData = h.normalize(imageData, reqCtx)
	}

	result, err := h.provider.Recognize(c.Request.Context(), ai.OCRRequest{
		ImageData: imageData,
		Language:  language,
	}, reqCtx)
	if err != nil {
		geminiErr := ai.CategorizeError(err)
		reqCtx.LogError("OCR failed: %s", geminiErr.Error())

		body := ai.BuildUserFriendlyError(geminiErr)
		body["request_id"] = reqCtx.RequestID
		c.JSON(geminiErr.HTTPStatus, body)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"request_id": reqCtx.RequestID,
		"contents":   result.OCRContents,
		"text":       result.Text(),
		"summary":    reqCtx.GetSummary(),
	})
}

// normalize falls back to the original bytes when the upload cannot be decoded
func (h *Handler) normalize(data []byte, reqCtx *common.RequestContext) []byte {
	reqCtx.StartStep("normalize_image")
	normalized, err := processor.NormalizeImage(data, h.images.MaxDimension)
	if err != nil {
		reqCtx.LogWarning("Image normalization failed, using original: %v", err)
		reqCtx.EndStep("failed", nil, err)
		return data
	}
	reqCtx.EndStep("success", nil, nil)
	reqCtx.LogInfo("🖼️ Normalized image: %d → %d bytes", len(data), len(normalized))
	return normalized
}

func readUpload(c *gin.Context, field string) ([]byte, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, err
	}
	f, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return data, nil
}

// LanguagesHandler handles GET /api/v1/languages
func (h *Handler) LanguagesHandler(c *gin.Context) {
	langs := ai.SupportedLanguages()
	out := make([]gin.H, 0, len(langs))
	for _, l := range langs {
		out = append(out, gin.H{
			"name":         l.String(),
			"display_name": l.DisplayName(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"languages": out})
}

// GetSettingsHandler handles GET /api/v1/settings. The API key is masked.
func (h *Handler) GetSettingsHandler(c *gin.Context) {
	current := h.settings.Current()
	current.APIKey = maskAPIKey(current.APIKey)
	c.JSON(http.StatusOK, current)
}

// UpdateSettingsHandler handles PUT /api/v1/settings.
// Sending back the masked key keeps the stored one.
func (h *Handler) UpdateSettingsHandler(c *gin.Context) {
	var next settings.Settings
	if err := c.ShouldBindJSON(&next); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	current := h.settings.Current()
	if next.APIKey == maskAPIKey(current.APIKey) {
		next.APIKey = current.APIKey
	}

	if err := h.settings.Update(c.Request.Context(), next); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to save settings",
			"details": err.Error(),
		})
		return
	}

	updated := h.settings.Current()
	updated.APIKey = maskAPIKey(updated.APIKey)
	c.JSON(http.StatusOK, updated)
}

// ListPromptsHandler handles GET /api/v1/prompts
func (h *Handler) ListPromptsHandler(c *gin.Context) {
	body := gin.H{"prompts": h.settings.Prompts(), "active": nil}
	if active, ok := h.settings.ActivePrompt(); ok {
		body["active"] = active.Name
	}
	c.JSON(http.StatusOK, body)
}

// SelectPromptHandler handles POST /api/v1/prompts/:index/select
func (h *Handler) SelectPromptHandler(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "prompt index must be an integer",
			"details": err.Error(),
		})
		return
	}

	if index < 0 || index >= len(h.settings.Prompts()) {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("prompt %d not found", index)})
		return
	}

	if err := h.settings.SelectPrompt(c.Request.Context(), index); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to select prompt",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"prompts": h.settings.Prompts()})
}

func maskAPIKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
