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

	"examino-backend/internal/config"
	"examino-backend/internal/database"
	"examino-backend/internal/handlers"
	"examino-backend/internal/repository"
	"examino-backend/internal/router"
	"examino-backend/internal/services"
	"examino-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting Examino Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Client ────
	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClient.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	questionRepo := repository.NewQuestionRepo(pool)
	attemptRepo := repository.NewAttemptRepo(pool)
	statsRepo := repository.NewStatsRepo(pool)

	// ──── Step 5: Build the Generator Chain ────
	// Gemini first when a key is configured, heuristic always last so
	// generation degrades instead of failing.
	var generators []services.QuestionGenerator
	var geminiGen *services.GeminiGenerator

	if cfg.GeminiAPIKey != "" {
		geminiGen, err = services.NewGeminiGenerator(
			cfg.GeminiAPIKey,
			cfg.GeminiConcurrentReqs,
			cfg.QuestionsPerChunk,
			time.Duration(cfg.GeminiTimeoutSecs)*time.Second,
		)
		if err != nil {
			log.Fatalf("✗ Gemini client initialization failed: %v", err)
		}
		defer geminiGen.Close()
		generators = append(generators, geminiGen)
		log.Println("✓ Gemini Flash generator initialized")
	} else {
		log.Println("! GEMINI_API_KEY not set, running heuristic-only generation")
	}
	generators = append(generators, services.NewHeuristicGenerator(cfg.QuestionsPerChunk))
	chain := services.NewGeneratorChain(generators...)

	// ──── Initialize Services ────
	fileExtract := services.NewFileExtractService()
	bank := services.NewBankSynchronizer(cfg.BankPath, cfg.BankBackupDir)
	ingestService := services.NewIngestService(fileExtract, chain, questionRepo, bank, redisClient)
	practiceService := services.NewPracticeService(questionRepo, attemptRepo, statsRepo)

	// ──── Step 6: Seed the Store from the Master Bank ────
	seeded, err := ingestService.SeedFromBank(context.Background())
	if err != nil {
		log.Fatalf("✗ Bank seeding failed: %v", err)
	}
	if seeded > 0 {
		log.Printf("✓ Seeded %d questions from master bank", seeded)
	}

	// ──── Initialize Handlers ────
	ingestHandler := handlers.NewIngestHandler(ingestService, cfg.MaxUploadBytes)
	questionHandler := handlers.NewQuestionHandler(practiceService)
	attemptHandler := handlers.NewAttemptHandler(practiceService)
	bankHandler := handlers.NewBankHandler(bank)

	// ──── Step 7: Start Bank Sync Worker Pool ────
	workerPool := worker.NewPool(redisClient, ingestService, 2)
	workerPool.Start()
	log.Println("✓ Worker pool started (2 goroutines)")

	// ──── Step 8: Start HTTP Server ────
	r := router.New(ingestHandler, questionHandler, attemptHandler, bankHandler, cfg.FrontendURL)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		workerPool.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Examino Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  Bank: %s", cfg.BankPath)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
