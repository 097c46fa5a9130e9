// interface.go - OCR Provider Interface and the collaborators injected into providers

package ai

import (
	"context"

	"github.com/bosocmputer/ocr_gemini_plugin/internal/common"
	"github.com/bosocmputer/ocr_gemini_plugin/internal/settings"
)

// OCRProvider defines the interface that all OCR providers must implement
type OCRProvider interface {
	// Recognize runs one OCR call for request.
	// ctx cancels the in-flight network call; reqCtx is used for logging and tracking.
	Recognize(ctx context.Context, request OCRRequest, reqCtx *common.RequestContext) (*OCRResult, error)

	// GetProviderName returns the name of the provider (e.g., "gemini")
	GetProviderName() string
}

// HTTPService is the host's HTTP capability. PostJSON serializes body as JSON,
// POSTs it to url and returns the raw response text.
type HTTPService interface {
	PostJSON(ctx context.Context, url string, body interface{}) (string, error)
}

// SettingsSource hands out a consistent snapshot of the current settings
type SettingsSource interface {
	Current() settings.Settings
}
