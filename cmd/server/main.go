package main

import (
	"context"
	"fmt"
	"log"

	"invoicevision/internal/config"
	"invoicevision/internal/domain"
	"invoicevision/internal/handler"
	"invoicevision/internal/imaging"
	"invoicevision/internal/port"
	"invoicevision/internal/provider"
	"invoicevision/internal/provider/gemini"
	"invoicevision/internal/provider/openrouter"
	"invoicevision/internal/router"
	"invoicevision/internal/service"
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

	// Register provider factories
	provider.Register("openrouter", func(pc *config.ProviderConfig) (port.ModelExtractor, error) {
		return openrouter.NewClient(pc), nil
	})
	provider.Register("gemini", func(pc *config.ProviderConfig) (port.ModelExtractor, error) {
		return gemini.NewClient(context.Background(), pc)
	})

	extractor, err := provider.New(&cfg.Provider)
	if err != nil {
		return fmt.Errorf("failed to initialize model provider: %w", err)
	}

	retryCfg := provider.DefaultRetryConfig()
	if cfg.Provider.MaxRetries > 0 {
		retryCfg.MaxAttempts = cfg.Provider.MaxRetries
	}
	retrying := provider.NewRetrying(extractor, retryCfg)

	normalizer := imaging.NewNormalizer(cfg.Upload.MaxFileSizeBytes(), cfg.Upload.MaxLongEdge)

	defaultFields := domain.FieldSelection{
		VendorInfo:     cfg.Extraction.VendorInfo,
		InvoiceDetails: cfg.Extraction.InvoiceDetails,
		Financial:      cfg.Extraction.Financial,
		LineItems:      cfg.Extraction.LineItems,
	}
	extractionSvc := service.NewExtractionService(normalizer, retrying, defaultFields, cfg.Provider.DefaultModel)

	// Initialize handlers
	extractH := handler.NewExtractHandler(extractionSvc)
	exportH := handler.NewExportHandler()
	healthH := handler.NewHealthHandler()

	// Setup router
	r := router.Setup(extractH, exportH, healthH, cfg.CORS.AllowedOrigins)

	log.Printf("Server starting on %s (provider=%s, model=%s)",
		cfg.Server.Port, cfg.Provider.Provider, cfg.Provider.DefaultModel)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
