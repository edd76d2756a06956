// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// AuthServiceConfig provides settings needed by the auth service.
type AuthServiceConfig interface {
	JWTConfig
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
}

// CookieConfig provides settings for refresh token cookies.
type CookieConfig interface {
	GetRefreshCookieName() string
	GetRefreshCookieDomain() string
	GetRefreshCookiePath() string
	GetRefreshCookieSecure() bool
	GetRefreshCookieSameSite() http.SameSite
	GetRefreshTokenTTL() time.Duration
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// MailCredentials is the OAuth triple used by the Gmail transport.
type MailCredentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// Complete reports whether every part of the triple is present.
func (c MailCredentials) Complete() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// MailConfig provides settings for the outbound mail transport.
type MailConfig interface {
	GetMailTransport() string
	GetMailFromName() string
	GetMailFromAddress() string
	GetMailTimeout() time.Duration
	// GetMailCredentials resolves the OAuth triple from the environment on
	// every call so rotated secrets are picked up without a restart.
	GetMailCredentials() MailCredentials
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
}

// AIConfig provides settings for the generative text provider.
type AIConfig interface {
	GetAIProvider() string
	GetAIModel() string
	GetAITimeout() time.Duration
	GetGeminiAPIKey() string
	GetOpenAIAPIKey() string
	GetOpenAIBaseURL() string
	IsAIEnabled() bool
}

// AutomationConfig provides settings for the automation engine.
type AutomationConfig interface {
	GetAutomationInterval() time.Duration
	GetWelcomeGrace() time.Duration
	GetAutomationLockTTL() time.Duration
}

// SchedulerConfig provides settings for the Redis-backed scheduler.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// IntakeConfig provides settings for the public intake endpoint.
type IntakeConfig interface {
	GetPhoneRegion() string
	GetIntakeRatePerMinute() int
}

// BrandConfig provides the company identity used in outbound copy.
type BrandConfig interface {
	GetCompanyName() string
	GetCompanyURL() string
}

// ScoringConfig provides the optional scoring rules override.
type ScoringConfig interface {
	GetScoringRulesPath() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                   string
	HTTPAddr              string
	DatabaseURL           string
	JWTAccessSecret       string
	AccessTokenTTL        time.Duration
	RefreshTokenTTL       time.Duration
	CORSAllowAll          bool
	CORSOrigins           []string
	CORSAllowCreds        bool
	RefreshCookieName     string
	RefreshCookieDomain   string
	RefreshCookiePath     string
	RefreshCookieSecure   bool
	RefreshCookieSameSite http.SameSite
	MailTransport         string
	MailFromName          string
	MailFromAddress       string
	MailTimeout           time.Duration
	SMTPHost              string
	SMTPPort              int
	SMTPUsername          string
	SMTPPassword          string
	AIProvider            string
	AIModel               string
	AITimeout             time.Duration
	GeminiAPIKey          string
	OpenAIAPIKey          string
	OpenAIBaseURL         string
	AutomationInterval    time.Duration
	WelcomeGrace          time.Duration
	AutomationLockTTL     time.Duration
	RedisURL              string
	RedisTLSInsecure      bool
	AsynqQueueName        string
	AsynqConcurrency      int
	PhoneRegion           string
	IntakeRatePerMinute   int
	CompanyName           string
	CompanyURL            string
	ScoringRulesPath      string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// AuthServiceConfig implementation
func (c *Config) GetAccessTokenTTL() time.Duration  { return c.AccessTokenTTL }
func (c *Config) GetRefreshTokenTTL() time.Duration { return c.RefreshTokenTTL }

// CookieConfig implementation
func (c *Config) GetRefreshCookieName() string            { return c.RefreshCookieName }
func (c *Config) GetRefreshCookieDomain() string          { return c.RefreshCookieDomain }
func (c *Config) GetRefreshCookiePath() string            { return c.RefreshCookiePath }
func (c *Config) GetRefreshCookieSecure() bool            { return c.RefreshCookieSecure }
func (c *Config) GetRefreshCookieSameSite() http.SameSite { return c.RefreshCookieSameSite }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// MailConfig implementation
func (c *Config) GetMailTransport() string      { return c.MailTransport }
func (c *Config) GetMailFromName() string       { return c.MailFromName }
func (c *Config) GetMailFromAddress() string    { return c.MailFromAddress }
func (c *Config) GetMailTimeout() time.Duration { return c.MailTimeout }
func (c *Config) GetSMTPHost() string           { return c.SMTPHost }
func (c *Config) GetSMTPPort() int              { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string       { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string       { return c.SMTPPassword }

func (c *Config) GetMailCredentials() MailCredentials {
	return MailCredentials{
		ClientID:     strings.TrimSpace(getEnv("GMAIL_CLIENT_ID", "")),
		ClientSecret: strings.TrimSpace(getEnv("GMAIL_CLIENT_SECRET", "")),
		RefreshToken: strings.TrimSpace(getEnv("GMAIL_REFRESH_TOKEN", "")),
	}
}

// AIConfig implementation
func (c *Config) GetAIProvider() string       { return c.AIProvider }
func (c *Config) GetAIModel() string          { return c.AIModel }
func (c *Config) GetAITimeout() time.Duration { return c.AITimeout }
func (c *Config) GetGeminiAPIKey() string     { return c.GeminiAPIKey }
func (c *Config) GetOpenAIAPIKey() string     { return c.OpenAIAPIKey }
func (c *Config) GetOpenAIBaseURL() string    { return c.OpenAIBaseURL }
func (c *Config) IsAIEnabled() bool {
	switch c.AIProvider {
	case "openai":
		return c.OpenAIAPIKey != ""
	default:
		return c.GeminiAPIKey != ""
	}
}

// AutomationConfig implementation
func (c *Config) GetAutomationInterval() time.Duration { return c.AutomationInterval }
func (c *Config) GetWelcomeGrace() time.Duration       { return c.WelcomeGrace }
func (c *Config) GetAutomationLockTTL() time.Duration  { return c.AutomationLockTTL }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string        { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool  { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string  { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int   { return c.AsynqConcurrency }

// IntakeConfig implementation
func (c *Config) GetPhoneRegion() string      { return c.PhoneRegion }
func (c *Config) GetIntakeRatePerMinute() int { return c.IntakeRatePerMinute }

// BrandConfig implementation
func (c *Config) GetCompanyName() string { return c.CompanyName }
func (c *Config) GetCompanyURL() string  { return c.CompanyURL }

// ScoringConfig implementation
func (c *Config) GetScoringRulesPath() string { return c.ScoringRulesPath }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	refreshCookieSecure := strings.EqualFold(getEnv("REFRESH_COOKIE_SECURE", ""), "true")
	if getEnv("REFRESH_COOKIE_SECURE", "") == "" {
		refreshCookieSecure = strings.EqualFold(getEnv("APP_ENV", "development"), "production")
	}

	cfg := &Config{
		Env:                   getEnv("APP_ENV", "development"),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		JWTAccessSecret:       getEnv("JWT_ACCESS_SECRET", ""),
		AccessTokenTTL:        mustDuration(getEnv("JWT_ACCESS_TTL", "15m")),
		RefreshTokenTTL:       mustDuration(getEnv("JWT_REFRESH_TTL", "168h")),
		CORSAllowAll:          corsAllowAll,
		CORSOrigins:           corsOrigins,
		CORSAllowCreds:        strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		RefreshCookieName:     getEnv("REFRESH_COOKIE_NAME", "leads_refresh"),
		RefreshCookieDomain:   getEnv("REFRESH_COOKIE_DOMAIN", ""),
		RefreshCookiePath:     getEnv("REFRESH_COOKIE_PATH", "/api/v1/auth"),
		RefreshCookieSecure:   refreshCookieSecure,
		RefreshCookieSameSite: parseSameSite(getEnv("REFRESH_COOKIE_SAMESITE", "Lax")),
		MailTransport:         strings.ToLower(getEnv("MAIL_TRANSPORT", "gmail")),
		MailFromName:          getEnv("MAIL_FROM_NAME", "Apex IT Consulting"),
		MailFromAddress:       getEnv("MAIL_FROM_ADDRESS", ""),
		MailTimeout:           mustDuration(getEnv("MAIL_TIMEOUT", "20s")),
		SMTPHost:              getEnv("SMTP_HOST", ""),
		SMTPPort:              mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:          getEnv("SMTP_USERNAME", ""),
		SMTPPassword:          getEnv("SMTP_PASSWORD", ""),
		AIProvider:            strings.ToLower(getEnv("AI_PROVIDER", "gemini")),
		AIModel:               getEnv("AI_MODEL", ""),
		AITimeout:             mustDuration(getEnv("AI_TIMEOUT", "20s")),
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:          getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:         getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		AutomationInterval:    mustDuration(getEnv("AUTOMATION_INTERVAL", "2m")),
		WelcomeGrace:          mustDuration(getEnv("AUTOMATION_WELCOME_GRACE", "5m")),
		AutomationLockTTL:     mustDuration(getEnv("AUTOMATION_LOCK_TTL", "10m")),
		RedisURL:              getEnv("REDIS_URL", ""),
		RedisTLSInsecure:      strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:        getEnv("ASYNQ_QUEUE", "leads"),
		AsynqConcurrency:      mustInt(getEnv("ASYNQ_CONCURRENCY", "2")),
		PhoneRegion:           strings.ToUpper(getEnv("PHONE_DEFAULT_REGION", "US")),
		IntakeRatePerMinute:   mustInt(getEnv("INTAKE_RATE_PER_MINUTE", "10")),
		CompanyName:           getEnv("COMPANY_NAME", "Apex IT Consulting"),
		CompanyURL:            getEnv("COMPANY_URL", "https://example.com"),
		ScoringRulesPath:      getEnv("SCORING_RULES_PATH", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	switch cfg.MailTransport {
	case "gmail", "smtp":
	default:
		return nil, fmt.Errorf("MAIL_TRANSPORT must be gmail or smtp, got %q", cfg.MailTransport)
	}
	switch cfg.AIProvider {
	case "gemini", "openai":
	default:
		return nil, fmt.Errorf("AI_PROVIDER must be gemini or openai, got %q", cfg.AIProvider)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}

func parseSameSite(value string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "none":
		return http.SameSiteNoneMode
	case "strict":
		return http.SameSiteStrictMode
	default:
		return http.SameSiteLaxMode
	}
}
