package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"cardstock/internal/config"
	"cardstock/internal/render"
	"cardstock/internal/session"
	"cardstock/internal/store"
	"cardstock/ui"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := os.MkdirAll(appConfig.Paths.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	// Durable store: SQLite bulk tier plus a small JSON metadata file.
	bulk, err := store.NewSQLiteBulkTier(filepath.Join(appConfig.Paths.DataDir, "dataset.db"))
	if err != nil {
		log.Fatalf("Failed to open bulk store: %v", err)
	}
	defer bulk.Close()

	meta := store.NewFileMetaTier(filepath.Join(appConfig.Paths.DataDir, "meta.json"))
	durable := store.New(bulk, meta)

	templates, err := ui.ParseTemplates()
	if err != nil {
		log.Fatalf("Failed to parse templates: %v", err)
	}

	hub := ui.NewHub()
	frame := ui.NewSSEFrame(hub, templates)
	renderer := render.New(frame, render.Options{
		PageSize:  appConfig.View.PageSize,
		ChunkSize: appConfig.View.ChunkSize,
	})

	controller := session.NewController(durable, renderer, appConfig.View.Debounce)
	if err := controller.Restore(context.Background()); err != nil {
		log.Printf("WARNING - Failed to restore persisted state: %v", err)
	}

	archive := store.NewArchive(filepath.Join(appConfig.Paths.DataDir, "uploads"))

	app := ui.NewApp(appConfig, controller, hub, archive, templates)
	if err := app.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
