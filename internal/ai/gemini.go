// gemini.go - Gemini OCR provider: request construction and the generateContent call

package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/bosocmputer/ocr_gemini_plugin/internal/common"
	"github.com/bosocmputer/ocr_gemini_plugin/internal/settings"
)

const (
	// targetPlaceholder is replaced by the language display name in every prompt item
	targetPlaceholder = "$target"

	// fixed label, the source format is not sniffed
	imageMIMEType = "image/png"
)

// --- Gemini generateContent request payload ---

type geminiRequest struct {
	Contents       []geminiContent       `json:"contents"`
	SafetySettings []geminiSafetySetting `json:"safetySettings"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
	Text       *string           `json:"text,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// All four harm-category filters are disabled on every call
var safetySettings = []geminiSafetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_NONE"},
}

func textPart(text string) geminiPart {
	return geminiPart{Text: &text}
}

// GeminiProvider implements OCRProvider on the Gemini REST API.
// A path on the configured base URL is kept as a prefix (reverse proxies);
// any query string on it is replaced by ?key=.
type GeminiProvider struct {
	settings SettingsSource
	http     HTTPService
}

// NewGeminiProvider creates a new Gemini provider. Settings are read per call.
func NewGeminiProvider(source SettingsSource, httpService HTTPService) *GeminiProvider {
	return &GeminiProvider{
		settings: source,
		http:     httpService,
	}
}

// GetProviderName returns "gemini"
func (g *GeminiProvider) GetProviderName() string {
	return "gemini"
}

// Recognize builds the request from the current settings, posts it once and maps the response.
// Transport errors and cancellation are returned as the HTTP service reported them.
func (g *GeminiProvider) Recognize(ctx context.Context, request OCRRequest, reqCtx *common.RequestContext) (*OCRResult, error) {
	reqCtx.StartStep("gemini_ocr")

	current := g.settings.Current()

	reqCtx.StartSubStep("build_request")
	endpoint, body, err := buildGeminiRequest(current, request)
	if err != nil {
		reqCtx.EndSubStep("")
		reqCtx.EndStep("failed", nil, err)
		return nil, err
	}
	reqCtx.EndSubStep(fmt.Sprintf("%d messages", len(body.Contents)))

	// temperature is logged only; no generationConfig is sent
	reqCtx.LogInfo("📖 Model: %s | Language: %s | Temperature: %.2f (not sent) | Image: %.2f KB",
		current.ResolvedModel(), request.Language, current.ClampedTemperature(), float64(len(request.ImageData))/1024.0)

	reqCtx.StartSubStep("call_gemini")
	raw, err := g.http.PostJSON(ctx, endpoint, body)
	if err != nil {
		reqCtx.EndSubStep("")
		reqCtx.EndStep("failed", nil, err)
		return nil, err
	}
	reqCtx.EndSubStep(fmt.Sprintf("%d bytes", len(raw)))

	reqCtx.StartSubStep("parse_response")
	result, usage, err := parseGeminiResponse(raw)
	if err != nil {
		reqCtx.EndSubStep("")
		reqCtx.EndStep("failed", nil, err)
		return nil, err
	}
	reqCtx.EndSubStep(fmt.Sprintf("%d contents", len(result.OCRContents)))

	reqCtx.EndStep("success", usage, nil)
	return result, nil
}

// buildGeminiRequest returns the endpoint URL and the request body for one call
func buildGeminiRequest(s settings.Settings, request OCRRequest) (string, *geminiRequest, error) {
	active, ok := settings.NewPromptSet(s.Prompts).Active()
	if !ok {
		return "", nil, ErrPromptNotConfigured
	}
	if len(active.Items) == 0 {
		return "", nil, ErrPromptEmpty
	}

	endpoint, err := buildEndpoint(s.URL, s.ResolvedModel(), s.APIKey)
	if err != nil {
		return "", nil, err
	}

	// active is already a copy; rewriting its items leaves stored settings untouched
	language := request.Language.DisplayName()
	items := active.Items
	for i := range items {
		items[i].Content = strings.ReplaceAll(items[i].Content, targetPlaceholder, language)
	}

	userPrompt := items[len(items)-1]
	contextItems := items[:len(items)-1]

	contents := make([]geminiContent, 0, len(items))
	for _, item := range contextItems {
		contents = append(contents, geminiContent{
			Role:  item.Role,
			Parts: []geminiPart{textPart(item.Content)},
		})
	}
	contents = append(contents, geminiContent{
		Role: "user",
		Parts: []geminiPart{
			{
				InlineData: &geminiInlineData{
					MimeType: imageMIMEType,
					Data:     base64.StdEncoding.EncodeToString(request.ImageData),
				},
			},
			textPart(userPrompt.Content),
		},
	})

	return endpoint, &geminiRequest{
		Contents:       contents,
		SafetySettings: safetySettings,
	}, nil
}

// buildEndpoint returns {baseURL}/v1beta/models/{model}:generateContent?key={apiKey}
func buildEndpoint(baseURL, model, apiKey string) (string, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = settings.DefaultURL
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not an absolute URL", ErrInvalidEndpoint, baseURL)
	}

	u.Path = u.Path + "/v1beta/models/" + model + ":generateContent"
	u.RawPath = ""
	u.RawQuery = url.Values{"key": {apiKey}}.Encode()
	u.Fragment = ""

	return u.String(), nil
}
