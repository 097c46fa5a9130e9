// config.go - Configuration loaded from environment variables

package configs

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	// OCR provider selection ("gemini")
	OCR_PROVIDER string

	// Gemini seed values, only used when the settings slot is still empty
	GEMINI_URL     string
	GEMINI_API_KEY string
	MODEL_NAME     string

	// Gemini Pricing Configuration (per 1M tokens in USD)
	GEMINI_INPUT_PRICE_PER_MILLION  float64
	GEMINI_OUTPUT_PRICE_PER_MILLION float64

	// Transport
	HTTP_TIMEOUT_SECONDS int

	// Server Configuration
	PORT            string
	ALLOWED_ORIGINS string

	// Settings storage slot: "file", "mongo" or "redis"
	SETTINGS_STORE string
	SETTINGS_SLOT  string
	SETTINGS_FILE  string

	// MongoDB Configuration
	MONGO_URI     string
	MONGO_DB_NAME string

	// Redis Configuration
	REDIS_URL    string
	REDIS_PREFIX string

	// Image preprocessing settings
	ENABLE_IMAGE_PREPROCESSING bool
	MAX_IMAGE_DIMENSION        int
)

// LoadConfig loads configuration from environment variables
func LoadConfig() {
	// Load .env file if exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	OCR_PROVIDER = getEnv("OCR_PROVIDER", "gemini")

	GEMINI_URL = getEnv("GEMINI_URL", "https://generativelanguage.googleapis.com")
	GEMINI_API_KEY = getEnv("GEMINI_API_KEY", "")
	MODEL_NAME = getEnv("MODEL_NAME", "gemini-flash-latest")
	if GEMINI_API_KEY == "" {
		log.Println("GEMINI_API_KEY not set, the API key must come from stored settings")
	}

	// Gemini Pricing (default to Flash pricing)
	GEMINI_INPUT_PRICE_PER_MILLION = getEnvFloat("GEMINI_INPUT_PRICE_PER_MILLION", 0.30)
	GEMINI_OUTPUT_PRICE_PER_MILLION = getEnvFloat("GEMINI_OUTPUT_PRICE_PER_MILLION", 2.50)

	HTTP_TIMEOUT_SECONDS = getEnvInt("HTTP_TIMEOUT_SECONDS", 60)

	PORT = getEnv("PORT", "8080")
	ALLOWED_ORIGINS = getEnv("ALLOWED_ORIGINS", "*")

	SETTINGS_STORE = getEnv("SETTINGS_STORE", "file")
	SETTINGS_SLOT = getEnv("SETTINGS_SLOT", "ocr.gemini")
	SETTINGS_FILE = getEnv("SETTINGS_FILE", "settings.yaml")

	MONGO_URI = getEnv("MONGO_URI", "mongodb://localhost:27017")
	MONGO_DB_NAME = getEnv("MONGO_DB_NAME", "ocr_plugin")

	REDIS_URL = getEnv("REDIS_URL", "redis://localhost:6379/0")
	REDIS_PREFIX = getEnv("REDIS_PREFIX", "ocr")

	// Image Processing
	ENABLE_IMAGE_PREPROCESSING = getEnvBool("ENABLE_IMAGE_PREPROCESSING", false)
	MAX_IMAGE_DIMENSION = getEnvInt("MAX_IMAGE_DIMENSION", 2500)

	log.Println("✓ Configuration loaded successfully")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
