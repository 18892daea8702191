package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"frigo/internal/cache"
	"frigo/internal/config"
	"frigo/internal/handler"
	"frigo/internal/llm"
	"frigo/internal/llm/claude"
	"frigo/internal/llm/openai"
	"frigo/internal/match"
	"frigo/internal/repository/postgres"
	"frigo/internal/router"
	"frigo/internal/service"
	"frigo/internal/standardize"
	s3storage "frigo/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	ingredientRepo := postgres.NewIngredientRepo(db)
	recipeRepo := postgres.NewRecipeRepo(db)
	importJobRepo := postgres.NewImportJobRepo(db)
	bookRepo := postgres.NewBookRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize LLM providers
	llm.RegisterProvider("claude", func(c *config.LLMProviderConfig) (llm.Provider, error) {
		return claude.NewClient(c), nil
	})
	llm.RegisterProvider("openai", func(c *config.LLMProviderConfig) (llm.Provider, error) {
		return openai.NewClient(c), nil
	})

	primary, err := llm.NewProvider(&cfg.LLM.Primary)
	if err != nil {
		return fmt.Errorf("failed to initialize LLM provider: %w", err)
	}
	var structurer llm.Provider = primary
	if secondaryCfg := cfg.LLM.SecondaryConfig(); secondaryCfg != nil {
		secondary, err := llm.NewProvider(secondaryCfg)
		if err != nil {
			return fmt.Errorf("failed to initialize secondary LLM provider: %w", err)
		}
		structurer = llm.NewFallbackProvider(
			[]llm.Provider{primary, secondary},
			[]string{cfg.LLM.Primary.Provider, secondaryCfg.Provider},
		)
	}

	// Initialize extraction cache
	extractionCache, err := cache.NewRedisCache(&cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to initialize extraction cache: %w", err)
	}
	defer extractionCache.Close()

	// Initialize pipeline stages
	webStd := standardize.NewWebStandardizer(&cfg.Fetch)
	photoStd := standardize.NewPhotoStandardizer(s3Client, structurer)
	matcher := match.NewCatalogMatcher(ingredientRepo)

	// Initialize services
	authSvc := service.NewAuthService(userRepo, cfg.JWT)
	importSvc := service.NewImportService(
		importJobRepo, recipeRepo, ingredientRepo, bookRepo,
		s3Client, webStd, photoStd, structurer, matcher, extractionCache,
		cfg.Fetch, cfg.S3,
	)
	recipeSvc := service.NewRecipeService(recipeRepo)
	catalogSvc := service.NewCatalogService(ingredientRepo)
	bookSvc := service.NewBookService(bookRepo)

	// Initialize handlers
	authH := handler.NewAuthHandler(authSvc)
	importH := handler.NewImportHandler(importSvc)
	recipeH := handler.NewRecipeHandler(recipeSvc)
	ingredientH := handler.NewIngredientHandler(catalogSvc)
	bookH := handler.NewBookHandler(bookSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(authSvc, cfg.CORS.AllowedOrigins, authH, importH, recipeH, ingredientH, bookH, healthH)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start the retry queue worker
	worker := service.NewImportQueueWorker(importJobRepo, importSvc, service.ImportQueueConfig{
		PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
		MaxAttempts:  cfg.Queue.MaxAttempts,
		Concurrency:  cfg.Queue.Concurrency,
	})
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Start(ctx)
	}()

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Printf("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	<-workerDone

	return nil
}
