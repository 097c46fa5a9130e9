// settings.go - Persisted plugin settings and prompt templates

package settings

import (
	"math"
	"strings"
)

const (
	DefaultURL         = "https://generativelanguage.googleapis.com"
	DefaultModel       = "gemini-flash-latest"
	DefaultTemperature = 0.7

	MinTemperature = 0.0
	MaxTemperature = 2.0
)

// PromptItem is one role-tagged message template
type PromptItem struct {
	Role    string `json:"role" yaml:"role" bson:"role"`
	Content string `json:"content" yaml:"content" bson:"content"`
}

// Prompt is an ordered list of message templates. The last item is the user turn.
type Prompt struct {
	Name      string       `json:"name" yaml:"name" bson:"name"`
	Items     []PromptItem `json:"items" yaml:"items" bson:"items"`
	IsEnabled bool         `json:"isEnabled" yaml:"isEnabled" bson:"isEnabled"`
}

// Clone returns a deep copy so callers can rewrite item contents freely
func (p Prompt) Clone() Prompt {
	items := make([]PromptItem, len(p.Items))
	copy(items, p.Items)
	p.Items = items
	return p
}

// Settings is the document stored in the settings slot
type Settings struct {
	URL         string   `json:"url" yaml:"url" bson:"url"`
	APIKey      string   `json:"apiKey" yaml:"apiKey" bson:"apiKey"`
	Model       string   `json:"model" yaml:"model" bson:"model"`
	Temperature float64  `json:"temperature" yaml:"temperature" bson:"temperature"`
	Prompts     []Prompt `json:"prompts" yaml:"prompts" bson:"prompts"`
}

// Clone returns a deep copy of the settings
func (s Settings) Clone() Settings {
	prompts := make([]Prompt, len(s.Prompts))
	for i, p := range s.Prompts {
		prompts[i] = p.Clone()
	}
	s.Prompts = prompts
	return s
}

// ClampedTemperature returns the temperature limited to [0, 2]. NaN yields the default.
func (s Settings) ClampedTemperature() float64 {
	if math.IsNaN(s.Temperature) {
		return DefaultTemperature
	}
	return max(MinTemperature, min(MaxTemperature, s.Temperature))
}

// ResolvedModel returns the trimmed model name or the default model
func (s Settings) ResolvedModel() string {
	model := strings.TrimSpace(s.Model)
	if model == "" {
		return DefaultModel
	}
	return model
}

// DefaultPrompt is the prompt written into a fresh settings slot
func DefaultPrompt() Prompt {
	return Prompt{
		Name: "OCR",
		Items: []PromptItem{
			{
				Role:    "user",
				Content: "You are a specialized OCR engine that accurately extracts each text from the image. Output only the recognized text, one line per line of the image, without any explanation. The language of the text in the image: $target.",
			},
		},
		IsEnabled: true,
	}
}

// Defaults returns the settings used when the slot holds nothing yet
func Defaults() *Settings {
	return &Settings{
		URL:         DefaultURL,
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		Prompts:     []Prompt{DefaultPrompt()},
	}
}
