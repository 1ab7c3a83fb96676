package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Server        ServerConfig       `mapstructure:"server"`
	RateLimit     RateLimitConfig    `mapstructure:"rate_limit"`
	Scoring       ScoringConfig      `mapstructure:"scoring"`
	Identity      IdentityConfig     `mapstructure:"identity"`
	Redis         RedisConfig        `mapstructure:"redis"`
	Sinks         SinksConfig        `mapstructure:"sinks"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Scheduling    SchedulingConfig   `mapstructure:"scheduling"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	// ProductionHost is the canonical host; any other host runs in test mode.
	ProductionHost string `mapstructure:"production_host"`
	SiteURL        string `mapstructure:"site_url"`
}

type ServerConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // seconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // seconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // seconds
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowSeconds int `mapstructure:"window_seconds"`
}

func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

type ScoringConfig struct {
	// ReconcileTolerance is the max client/server score delta before the
	// server value silently replaces the client one.
	ReconcileTolerance int `mapstructure:"reconcile_tolerance"`
}

type IdentityConfig struct {
	StoragePrefix         string `mapstructure:"storage_prefix"`
	LeadTTLDays           int    `mapstructure:"lead_ttl_days"`
	SessionTimeoutMinutes int    `mapstructure:"session_timeout_minutes"`
}

func (i IdentityConfig) LeadTTL() time.Duration {
	return time.Duration(i.LeadTTLDays) * 24 * time.Hour
}

func (i IdentityConfig) SessionTimeout() time.Duration {
	return time.Duration(i.SessionTimeoutMinutes) * time.Minute
}

type RedisConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Address        string `mapstructure:"address"`
	Password       string `mapstructure:"password"`
	DB             int    `mapstructure:"db"`
	LeadCacheHours int    `mapstructure:"lead_cache_hours"`
}

func (r RedisConfig) LeadCacheTTL() time.Duration {
	return time.Duration(r.LeadCacheHours) * time.Hour
}

// SinksConfig holds per-destination settings plus shared dispatch policy.
type SinksConfig struct {
	CRM        CRMSinkConfig        `mapstructure:"crm"`
	MailerLite MailerLiteSinkConfig `mapstructure:"mailerlite"`
	Segment    SegmentSinkConfig    `mapstructure:"segment"`
	GA4        GA4SinkConfig        `mapstructure:"ga4"`

	TimeoutSeconds   int `mapstructure:"timeout_seconds"`    // per-sink dispatch timeout
	MaxRetries       int `mapstructure:"max_retries"`        // attempts per sink call
	RetryBaseDelayMS int `mapstructure:"retry_base_delay_ms"` // doubles per attempt
}

func (s SinksConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

func (s SinksConfig) RetryBaseDelay() time.Duration {
	return time.Duration(s.RetryBaseDelayMS) * time.Millisecond
}

type CRMSinkConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	WebhookURL string `mapstructure:"webhook_url"`
	APIKey     string `mapstructure:"api_key"`
}

type MailerLiteSinkConfig struct {
	Enabled                   bool   `mapstructure:"enabled"`
	BaseURL                   string `mapstructure:"base_url"`
	APIKey                    string `mapstructure:"api_key"`
	QuestionnaireAutomationID string `mapstructure:"questionnaire_automation_id"`
}

type SegmentSinkConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BaseURL  string `mapstructure:"base_url"`
	WriteKey string `mapstructure:"write_key"`
}

type GA4SinkConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	BaseURL       string `mapstructure:"base_url"`
	MeasurementID string `mapstructure:"measurement_id"`
	APISecret     string `mapstructure:"api_secret"`
}

// NotificationConfig drives the high-priority lead alerts.
type NotificationConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	AWSRegion  string `mapstructure:"aws_region"`
	FromEmail  string `mapstructure:"from_email"`
	SalesEmail string `mapstructure:"sales_email"`
	SNSTopic   string `mapstructure:"sns_topic_arn"`
}

type SchedulingConfig struct {
	CalendlyBaseURL string `mapstructure:"calendly_base_url"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
