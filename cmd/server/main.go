package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/llamaio/task-api/internal/api"
	"github.com/llamaio/task-api/internal/config"
	"github.com/llamaio/task-api/internal/database"
	"github.com/llamaio/task-api/internal/repository"
	"github.com/llamaio/task-api/internal/service"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := database.Connect(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database connection: %v", err)
		}
	}()

	if cfg.Server.AutoMigrate {
		if err := database.CreateSchema(context.Background(), db); err != nil {
			log.Fatalf("Failed to create schema: %v", err)
		}
	}

	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)

	relService := service.NewRelationshipService(taskRepo, userRepo)
	taskService := service.NewTaskService(taskRepo, userRepo, relService)
	userService := service.NewUserService(userRepo, taskRepo, relService)

	server := &http.Server{
		Addr:    ":" + cfg.Server.HTTPPort,
		Handler: api.SetupRouter(taskService, userService),
	}

	go func() {
		log.Printf("Task API listening on port %s", cfg.Server.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	log.Println("Server shutdown complete")
}
