// errors.go - Error taxonomy for OCR calls and its mapping to API responses

package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"google.golang.org/api/googleapi"
)

// Configuration errors, returned before any network call
var (
	ErrPromptNotConfigured = errors.New("Prompt configuration incomplete")
	ErrPromptEmpty         = errors.New("Prompt configuration empty")
	ErrInvalidEndpoint     = errors.New("Endpoint configuration invalid")
)

// IsConfigurationError reports whether err comes from the settings rather than the call
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrPromptNotConfigured) ||
		errors.Is(err, ErrPromptEmpty) ||
		errors.Is(err, ErrInvalidEndpoint)
}

// NoDataError is returned when the response lacks candidates[0].content.parts[0]
// or cannot be decoded. Raw always carries the response body.
type NoDataError struct {
	Raw string
	Err error
}

func (e *NoDataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("No data (%v)\nRaw: %s", e.Err, e.Raw)
	}
	return "No data\nRaw: " + e.Raw
}

func (e *NoDataError) Unwrap() error {
	return e.Err
}

// GeminiError represents a categorized OCR failure
type GeminiError struct {
	OriginalError error
	Category      string
	StatusCode    int // upstream status, 0 when the call never got a response
	HTTPStatus    int // status the host API answers with
	Message       string
}

func (e *GeminiError) Error() string {
	return fmt.Sprintf("[%s] %s (status: %d)", e.Category, e.Message, e.StatusCode)
}

func (e *GeminiError) Unwrap() error {
	return e.OriginalError
}

// StatusClientClosedRequest is answered when the caller went away mid-call
const StatusClientClosedRequest = 499

// CategorizeError analyzes an OCR error for reporting. It never changes what
// Recognize returns; errors stay unwrapped for callers.
func CategorizeError(err error) *GeminiError {
	if err == nil {
		return nil
	}

	geminiErr := &GeminiError{
		OriginalError: err,
		Category:      "unknown",
		HTTPStatus:    http.StatusBadGateway,
		Message:       err.Error(),
	}

	if IsConfigurationError(err) {
		geminiErr.Category = "configuration"
		geminiErr.HTTPStatus = http.StatusBadRequest
		return geminiErr
	}

	var noData *NoDataError
	if errors.As(err, &noData) {
		geminiErr.Category = "no_data"
		geminiErr.Message = "Gemini returned no recognizable data"
		return geminiErr
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		geminiErr.StatusCode = apiErr.Code

		switch apiErr.Code {
		case 400:
			geminiErr.Category = "bad_request"
			geminiErr.Message = "Invalid request format or parameters"

		case 401:
			geminiErr.Category = "unauthorized"
			geminiErr.Message = "Invalid API key or authentication failed"

		case 403:
			geminiErr.Category = "forbidden"
			geminiErr.Message = "API key lacks required permissions"

		case 404:
			geminiErr.Category = "not_found"
			geminiErr.Message = "Model not found or invalid endpoint"

		case 413:
			geminiErr.Category = "payload_too_large"
			geminiErr.Message = "Request size exceeds limit (reduce image size)"
			geminiErr.HTTPStatus = http.StatusRequestEntityTooLarge

		case 429:
			geminiErr.Category = "rate_limit"
			geminiErr.Message = "Rate limit exceeded - too many requests"
			geminiErr.HTTPStatus = http.StatusTooManyRequests

		case 500, 502, 503, 504:
			geminiErr.Category = "server_error"
			geminiErr.Message = fmt.Sprintf("Gemini server error (%d)", apiErr.Code)

		default:
			geminiErr.Category = "unknown_api_error"
			geminiErr.Message = fmt.Sprintf("API error: %s", apiErr.Message)
		}

		return geminiErr
	}

	if errors.Is(err, context.Canceled) {
		geminiErr.Category = "canceled"
		geminiErr.Message = "Request was canceled"
		geminiErr.HTTPStatus = StatusClientClosedRequest
		return geminiErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		geminiErr.Category = "timeout"
		geminiErr.Message = "Request timeout - processing took too long"
		geminiErr.HTTPStatus = http.StatusGatewayTimeout
		return geminiErr
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			geminiErr.Category = "timeout"
			geminiErr.Message = "Request timeout"
			geminiErr.HTTPStatus = http.StatusGatewayTimeout
			return geminiErr
		}
		geminiErr.Category = "network_error"
		geminiErr.Message = "Network connection error"
		return geminiErr
	}

	return geminiErr
}

// BuildUserFriendlyError converts a categorized error to an API response body
func BuildUserFriendlyError(geminiErr *GeminiError) map[string]interface{} {
	errorResponse := map[string]interface{}{
		"error":    "OCR failed",
		"category": geminiErr.Category,
		"details":  geminiErr.Message,
	}

	switch geminiErr.Category {
	case "configuration":
		errorResponse["details"] = geminiErr.OriginalError.Error()
		errorResponse["suggestion"] = "Complete the prompt and endpoint settings, then try again."
		errorResponse["action_required"] = "update_settings"

	case "no_data":
		errorResponse["suggestion"] = "The model answered without text. Try another prompt or a clearer image."
		errorResponse["raw"] = geminiErr.OriginalError.Error()

	case "rate_limit":
		errorResponse["suggestion"] = "Too many requests. Please wait a moment and try again."

	case "unauthorized", "forbidden":
		errorResponse["suggestion"] = "API authentication failed. Check the API key in settings."
		errorResponse["action_required"] = "check_api_key"

	case "not_found":
		errorResponse["suggestion"] = "Check the model name and endpoint URL in settings."
		errorResponse["action_required"] = "update_settings"

	case "payload_too_large":
		errorResponse["suggestion"] = "Image size is too large. Please use a smaller image."
		errorResponse["action_required"] = "reduce_image_size"

	case "timeout", "server_error", "network_error":
		errorResponse["suggestion"] = "Gemini is unreachable or slow right now. Please try again in a few minutes."

	case "canceled":
		errorResponse["suggestion"] = "The request was canceled before Gemini answered."

	default:
		errorResponse["suggestion"] = "An unexpected error occurred. Please try again or contact support."
	}

	return errorResponse
}
