// gemini_response.go - Maps a generateContent response to an OCRResult

package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bosocmputer/ocr_gemini_plugin/internal/common"
)

type geminiResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []json.RawMessage `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata,omitempty"`
}

// geminiResultPart is parts[0]: either a structured words_result array or plain text
type geminiResultPart struct {
	WordsResult json.RawMessage `json:"words_result"`
	Text        *string         `json:"text"`
}

// parseGeminiResponse decodes raw and picks the words_result or text branch.
// Token usage is nil when the response carries no usageMetadata.
func parseGeminiResponse(raw string) (*OCRResult, *common.TokenUsage, error) {
	var resp geminiResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, nil, &NoDataError{Raw: raw, Err: fmt.Errorf("failed to parse response: %w", err)}
	}

	firstPart, ok := resp.firstPart()
	if !ok {
		return nil, nil, &NoDataError{Raw: raw}
	}

	var part geminiResultPart
	if err := json.Unmarshal(firstPart, &part); err != nil {
		return nil, nil, &NoDataError{Raw: raw, Err: fmt.Errorf("failed to parse content part: %w", err)}
	}

	var result *OCRResult
	if isJSONArray(part.WordsResult) {
		var items []WordsResultItem
		if err := json.Unmarshal(part.WordsResult, &items); err != nil {
			return nil, nil, &NoDataError{Raw: raw, Err: fmt.Errorf("failed to parse words_result: %w", err)}
		}
		result = mapWordsResult(items)
	} else {
		if part.Text == nil {
			return nil, nil, &NoDataError{Raw: raw}
		}
		result = mapPlainText(*part.Text)
	}

	return result, resp.tokenUsage(), nil
}

// firstPart returns candidates[0].content.parts[0] when present and not null
func (r *geminiResponse) firstPart() (json.RawMessage, bool) {
	if len(r.Candidates) == 0 {
		return nil, false
	}
	content := r.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return nil, false
	}
	part := content.Parts[0]
	if len(part) == 0 || string(part) == "null" {
		return nil, false
	}
	return part, true
}

func (r *geminiResponse) tokenUsage() *common.TokenUsage {
	if r.UsageMetadata == nil {
		return nil
	}
	usage := common.CalculateTokenCost(r.UsageMetadata.PromptTokenCount, r.UsageMetadata.CandidatesTokenCount)
	if r.UsageMetadata.TotalTokenCount > 0 {
		usage.TotalTokens = r.UsageMetadata.TotalTokenCount
	}
	return &usage
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// mapWordsResult keeps one content per entry. Corners at exactly (0,0) are
// dropped one by one; the entry itself always stays.
func mapWordsResult(items []WordsResultItem) *OCRResult {
	result := &OCRResult{OCRContents: make([]OCRContent, 0, len(items))}
	for _, item := range items {
		content := OCRContent{Text: item.Words, BoxPoints: []BoxPoint{}}
		for _, pt := range BoxPointsFromLocation(item.Location) {
			if pt.X == 0 && pt.Y == 0 {
				continue
			}
			content.BoxPoints = append(content.BoxPoints, pt)
		}
		result.OCRContents = append(result.OCRContents, content)
	}
	return result
}

// mapPlainText returns one content per line, empty lines included
func mapPlainText(text string) *OCRResult {
	lines := strings.Split(text, "\n")
	result := &OCRResult{OCRContents: make([]OCRContent, 0, len(lines))}
	for _, line := range lines {
		result.OCRContents = append(result.OCRContents, OCRContent{Text: line, BoxPoints: []BoxPoint{}})
	}
	return result
}
