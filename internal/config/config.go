package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Log        LogConfig
	Upload     UploadConfig
	Provider   ProviderConfig
	Extraction ExtractionConfig
	CORS       CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// UploadConfig holds upload acceptance and normalization settings.
type UploadConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
	MaxLongEdge   int   `mapstructure:"max_long_edge"`
}

// MaxFileSizeBytes returns the upload size limit in bytes.
func (u *UploadConfig) MaxFileSizeBytes() int64 {
	return u.MaxFileSizeMB * 1024 * 1024
}

// ProviderConfig holds settings for the vision-language model provider.
type ProviderConfig struct {
	Provider     string  `mapstructure:"provider"`
	APIKey       string  `mapstructure:"api_key"`
	BaseURL      string  `mapstructure:"base_url"`
	DefaultModel string  `mapstructure:"default_model"`
	TimeoutSecs  int     `mapstructure:"timeout_secs"`
	MaxRetries   int     `mapstructure:"max_retries"`
	Temperature  float64 `mapstructure:"temperature"`
	MaxTokens    int     `mapstructure:"max_tokens"`
	SiteURL      string  `mapstructure:"site_url"`
	SiteName     string  `mapstructure:"site_name"`
}

// ExtractionConfig holds the default field group toggles.
type ExtractionConfig struct {
	VendorInfo     bool `mapstructure:"vendor_info"`
	InvoiceDetails bool `mapstructure:"invoice_details"`
	Financial      bool `mapstructure:"financial"`
	LineItems      bool `mapstructure:"line_items"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from environment variables with the
// INVOICEVISION_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("INVOICEVISION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Upload defaults
	v.SetDefault("upload.max_file_size_mb", 5)
	v.SetDefault("upload.max_long_edge", 2000)

	// Provider defaults
	v.SetDefault("provider.provider", "openrouter")
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("provider.default_model", "qwen/qwen2.5-vl-72b-instruct:free")
	v.SetDefault("provider.timeout_secs", 60)
	v.SetDefault("provider.max_retries", 3)
	v.SetDefault("provider.temperature", 0.4)
	v.SetDefault("provider.max_tokens", 2000)
	v.SetDefault("provider.site_url", "")
	v.SetDefault("provider.site_name", "InvoiceVision")

	// Extraction defaults: all field groups on
	v.SetDefault("extraction.vendor_info", true)
	v.SetDefault("extraction.invoice_details", true)
	v.SetDefault("extraction.financial", true)
	v.SetDefault("extraction.line_items", true)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                "INVOICEVISION_SERVER_PORT",
		"server.read_timeout":        "INVOICEVISION_SERVER_READ_TIMEOUT",
		"server.write_timeout":       "INVOICEVISION_SERVER_WRITE_TIMEOUT",
		"server.environment":         "INVOICEVISION_SERVER_ENVIRONMENT",
		"log.level":                  "INVOICEVISION_LOG_LEVEL",
		"log.format":                 "INVOICEVISION_LOG_FORMAT",
		"upload.max_file_size_mb":    "INVOICEVISION_UPLOAD_MAX_FILE_SIZE_MB",
		"upload.max_long_edge":       "INVOICEVISION_UPLOAD_MAX_LONG_EDGE",
		"provider.provider":          "INVOICEVISION_PROVIDER_PROVIDER",
		"provider.api_key":           "INVOICEVISION_PROVIDER_API_KEY",
		"provider.base_url":          "INVOICEVISION_PROVIDER_BASE_URL",
		"provider.default_model":     "INVOICEVISION_PROVIDER_DEFAULT_MODEL",
		"provider.timeout_secs":      "INVOICEVISION_PROVIDER_TIMEOUT_SECS",
		"provider.max_retries":       "INVOICEVISION_PROVIDER_MAX_RETRIES",
		"provider.temperature":       "INVOICEVISION_PROVIDER_TEMPERATURE",
		"provider.max_tokens":        "INVOICEVISION_PROVIDER_MAX_TOKENS",
		"provider.site_url":          "INVOICEVISION_PROVIDER_SITE_URL",
		"provider.site_name":         "INVOICEVISION_PROVIDER_SITE_NAME",
		"extraction.vendor_info":     "INVOICEVISION_EXTRACTION_VENDOR_INFO",
		"extraction.invoice_details": "INVOICEVISION_EXTRACTION_INVOICE_DETAILS",
		"extraction.financial":       "INVOICEVISION_EXTRACTION_FINANCIAL",
		"extraction.line_items":      "INVOICEVISION_EXTRACTION_LINE_ITEMS",
		"cors.allowed_origins":       "INVOICEVISION_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if the explicit port is
	// not set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("INVOICEVISION_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
		MaxLongEdge:   v.GetInt("upload.max_long_edge"),
	}
	cfg.Provider = ProviderConfig{
		Provider:     v.GetString("provider.provider"),
		APIKey:       v.GetString("provider.api_key"),
		BaseURL:      v.GetString("provider.base_url"),
		DefaultModel: v.GetString("provider.default_model"),
		TimeoutSecs:  v.GetInt("provider.timeout_secs"),
		MaxRetries:   v.GetInt("provider.max_retries"),
		Temperature:  v.GetFloat64("provider.temperature"),
		MaxTokens:    v.GetInt("provider.max_tokens"),
		SiteURL:      v.GetString("provider.site_url"),
		SiteName:     v.GetString("provider.site_name"),
	}
	cfg.Extraction = ExtractionConfig{
		VendorInfo:     v.GetBool("extraction.vendor_info"),
		InvoiceDetails: v.GetBool("extraction.invoice_details"),
		Financial:      v.GetBool("extraction.financial"),
		LineItems:      v.GetBool("extraction.line_items"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	return cfg, nil
}
