// main.go - The entry point and router setup.

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bosocmputer/ocr_gemini_plugin/configs"
	"github.com/bosocmputer/ocr_gemini_plugin/internal/ai"
	"github.com/bosocmputer/ocr_gemini_plugin/internal/api"
	"github.com/bosocmputer/ocr_gemini_plugin/internal/httpclient"
	"github.com/bosocmputer/ocr_gemini_plugin/internal/settings"
	"github.com/gin-gonic/gin"
)

func main() {
	// Step 0: Load configuration from environment variables
	configs.LoadConfig()

	if ginMode := os.Getenv("GIN_MODE"); ginMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Step 1: Open the settings slot
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 15*time.Second)
	store, closeStore, err := settings.NewStore(startupCtx, settings.StoreConfig{
		Kind:        configs.SETTINGS_STORE,
		Slot:        configs.SETTINGS_SLOT,
		FilePath:    configs.SETTINGS_FILE,
		MongoURI:    configs.MONGO_URI,
		MongoDBName: configs.MONGO_DB_NAME,
		RedisURL:    configs.REDIS_URL,
		RedisPrefix: configs.REDIS_PREFIX,
	})
	if err != nil {
		log.Fatalf("Failed to open settings store: %v", err)
	}
	defer closeStore()

	// Step 1.5: Seed an empty slot from the environment
	seed := settings.Defaults()
	seed.URL = configs.GEMINI_URL
	seed.APIKey = configs.GEMINI_API_KEY
	seed.Model = configs.MODEL_NAME
	seeded, err := settings.Seed(startupCtx, store, seed)
	if err != nil {
		log.Fatalf("Failed to seed settings: %v", err)
	}
	if seeded {
		log.Printf("✓ Settings slot %q seeded from environment", configs.SETTINGS_SLOT)
	}

	manager, err := settings.NewManager(startupCtx, store)
	cancelStartup()
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	// Step 2: Build the OCR provider
	transport := httpclient.NewService(time.Duration(configs.HTTP_TIMEOUT_SECONDS) * time.Second)
	provider, err := ai.CreateOCRProvider(configs.OCR_PROVIDER, manager, transport)
	if err != nil {
		log.Fatalf("Failed to create OCR provider: %v", err)
	}

	// Step 3: Initialize the Gin router
	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", configs.ALLOWED_ORIGINS)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, PUT, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	router.GET("/", func(c *gin.Context) {
		c.String(200, "ok")
	})

	handler := api.NewHandler(provider, manager, api.ImageOptions{
		Preprocess:   configs.ENABLE_IMAGE_PREPROCESSING,
		MaxDimension: configs.MAX_IMAGE_DIMENSION,
	})
	handler.RegisterRoutes(router)

	// Step 4: Setup HTTP server with timeouts
	srv := &http.Server{
		Addr:           ":" + configs.PORT,
		Handler:        router,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   3 * time.Minute,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Printf("Starting server on :%s (provider: %s, store: %s)",
			configs.PORT, provider.GetProviderName(), configs.SETTINGS_STORE)
		log.Println("API Endpoints:")
		log.Println("  POST /api/v1/ocr")
		log.Println("  GET  /api/v1/languages")
		log.Println("  GET  /api/v1/settings")
		log.Println("  PUT  /api/v1/settings")
		log.Println("  GET  /api/v1/prompts")
		log.Println("  POST /api/v1/prompts/:index/select")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
