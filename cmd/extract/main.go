// Command extract runs a single invoice extraction from the command line and
// prints the result, for scripting and quick checks without the HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"invoicevision/internal/config"
	"invoicevision/internal/domain"
	"invoicevision/internal/export"
	"invoicevision/internal/imaging"
	"invoicevision/internal/port"
	"invoicevision/internal/provider"
	"invoicevision/internal/provider/gemini"
	"invoicevision/internal/provider/openrouter"
	"invoicevision/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var (
		filePath = flag.String("file", "", "path to the invoice image (png or jpg)")
		format   = flag.String("format", "json", "output format: json or csv")
		model    = flag.String("model", "", "model override (default from config)")
	)
	flag.Parse()

	if *filePath == "" {
		flag.Usage()
		return fmt.Errorf("-file is required")
	}
	if *format != "json" && *format != "csv" {
		return fmt.Errorf("unsupported format %q; use json or csv", *format)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

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

	normalizer := imaging.NewNormalizer(cfg.Upload.MaxFileSizeBytes(), cfg.Upload.MaxLongEdge)
	svc := service.NewExtractionService(normalizer, provider.NewRetrying(extractor, retryCfg),
		domain.DefaultFieldSelection(), cfg.Provider.DefaultModel)

	data, err := os.ReadFile(*filePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", *filePath, err)
	}

	result, err := svc.Extract(context.Background(), data, contentTypeFor(*filePath), domain.DefaultFieldSelection(), *model)
	if err != nil {
		return err
	}

	for _, issue := range result.Issues {
		fmt.Fprintf(os.Stderr, "issue: %s: %s (%s)\n", issue.FieldPath, issue.Detail, issue.Kind)
	}

	switch *format {
	case "csv":
		w := export.NewWriter(os.Stdout)
		if err := w.WriteHeader(); err != nil {
			return err
		}
		if err := w.WriteRecord(result.Record); err != nil {
			return err
		}
		w.Flush()
		return w.Error()
	default:
		out, err := export.ToJSON(result.Record)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}
}

// contentTypeFor guesses the MIME type from the file extension. The
// normalizer trusts the decoded bytes over this hint anyway.
func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	default:
		return "image/jpeg"
	}
}
