package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	// Enable ENV override like SINKS_CRM_API_KEY
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment overlay, optional by design.
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	if cfg.App.Environment == "" {
		cfg.App.Environment = env
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the usual run directories.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}
	for _, p := range possiblePaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "leadpipe"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15
	}
	if cfg.RateLimit.MaxRequests == 0 {
		cfg.RateLimit.MaxRequests = 10
	}
	if cfg.RateLimit.WindowSeconds == 0 {
		cfg.RateLimit.WindowSeconds = 60
	}
	if cfg.Scoring.ReconcileTolerance == 0 {
		cfg.Scoring.ReconcileTolerance = 5
	}
	if cfg.Identity.StoragePrefix == "" {
		cfg.Identity.StoragePrefix = "mslu_"
	}
	if cfg.Identity.LeadTTLDays == 0 {
		cfg.Identity.LeadTTLDays = 365
	}
	if cfg.Identity.SessionTimeoutMinutes == 0 {
		cfg.Identity.SessionTimeoutMinutes = 30
	}
	if cfg.Redis.Address == "" {
		cfg.Redis.Address = "localhost:6379"
	}
	if cfg.Redis.LeadCacheHours == 0 {
		cfg.Redis.LeadCacheHours = 72
	}
	if cfg.Sinks.TimeoutSeconds == 0 {
		cfg.Sinks.TimeoutSeconds = 5
	}
	if cfg.Sinks.MaxRetries == 0 {
		cfg.Sinks.MaxRetries = 3
	}
	if cfg.Sinks.RetryBaseDelayMS == 0 {
		cfg.Sinks.RetryBaseDelayMS = 200
	}
	if cfg.Sinks.MailerLite.BaseURL == "" {
		cfg.Sinks.MailerLite.BaseURL = "https://api.mailerlite.com/api/v2"
	}
	if cfg.Sinks.Segment.BaseURL == "" {
		cfg.Sinks.Segment.BaseURL = "https://api.segment.io/v1"
	}
	if cfg.Sinks.GA4.BaseURL == "" {
		cfg.Sinks.GA4.BaseURL = "https://www.google-analytics.com"
	}
	if cfg.Scheduling.CalendlyBaseURL == "" {
		cfg.Scheduling.CalendlyBaseURL = "https://calendly.com/mentoria-seja-livre"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", cfg.Server.Port)
	}
	if cfg.RateLimit.MaxRequests < 1 {
		return fmt.Errorf("rate_limit.max_requests must be positive")
	}
	if cfg.Scoring.ReconcileTolerance < 0 {
		return fmt.Errorf("scoring.reconcile_tolerance must not be negative")
	}
	if cfg.Sinks.CRM.Enabled && cfg.Sinks.CRM.WebhookURL == "" {
		return fmt.Errorf("sinks.crm.webhook_url required when CRM sink is enabled")
	}
	if cfg.Sinks.GA4.Enabled && (cfg.Sinks.GA4.MeasurementID == "" || cfg.Sinks.GA4.APISecret == "") {
		return fmt.Errorf("sinks.ga4 requires measurement_id and api_secret when enabled")
	}
	if cfg.Notifications.Enabled && cfg.Notifications.AWSRegion == "" {
		return fmt.Errorf("notifications.aws_region required when notifications are enabled")
	}
	return nil
}
