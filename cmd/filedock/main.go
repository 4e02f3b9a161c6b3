package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"filedock/internal/app"

	"github.com/joho/godotenv"
)

const shutdownGrace = 10 * time.Second

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: no .env file loaded")
	}

	log.SetOutput(os.Stderr)

	service, err := app.InitializeService()
	if err != nil {
		log.Fatalf("Failed to initialize service: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- service.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server stopped: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received %s, shutting down", sig)

		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()

		if err := service.Shutdown(ctx); err != nil {
			log.Fatalf("Shutdown failed: %v", err)
		}
	}
}
