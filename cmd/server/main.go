package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"minichat-backend/internal/config"
	"minichat-backend/internal/gemini"
	"minichat-backend/internal/handlers"
	"minichat-backend/internal/router"
)

func main() {
	log.Println("🚀 Starting Minichat Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	if cfg.GeminiAPIKey == "" {
		log.Println("⚠ GEMINI_API_KEY is not set; chat requests will fail with 500 until it is configured")
	}

	// ──── Step 2: Initialize Gemini Client ────
	client := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiBaseURL, cfg.GeminiTimeout)
	log.Printf("✓ Gemini client initialized (%s, %s)", gemini.Model, gemini.APIVersion)

	// ──── Initialize Handlers ────
	chatHandler := handlers.NewChatHandler(client, cfg.GeminiAPIKey)

	// ──── Step 3: Start HTTP Server ────
	r := router.New(chatHandler, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// Writes must outlive the upstream call, which can take the
		// full GeminiTimeout before producing anything.
		WriteTimeout: cfg.GeminiTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Minichat ready on http://localhost:%s", cfg.Port)
	log.Printf("  Chat: http://localhost:%s/", cfg.Port)
	log.Printf("  API:  http://localhost:%s/api/v1/chat", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
