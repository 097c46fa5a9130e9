// factory.go - OCR Provider Factory for creating provider instances

package ai

import (
	"fmt"
	"log"
)

// CreateOCRProvider creates the OCR provider named by provider ("" means gemini)
func CreateOCRProvider(provider string, source SettingsSource, httpService HTTPService) (OCRProvider, error) {
	switch provider {
	case "", "gemini":
		log.Printf("🔵 Creating Gemini OCR provider")
		return NewGeminiProvider(source, httpService), nil

	default:
		return nil, fmt.Errorf("unsupported OCR provider: %s (supported: gemini)", provider)
	}
}
