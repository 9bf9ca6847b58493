package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Cache backends understood by NewStore in the cache package.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Email providers understood by the email package.
const (
	EmailProviderLog    = "log"
	EmailProviderResend = "resend"
)

// Provider exposes configuration values through getters so packages can depend
// on an interface instead of the concrete Config struct.
type Provider interface {
	GetAppAddr() string
	GetAppBaseURL() string
	GetSessionSecret() string
	GetAPIBaseURL() string
	GetAPITimeout() time.Duration
	GetAPIRetries() int
	GetCacheBackend() string
	GetRedisAddr() string
	GetCacheTTL() time.Duration
	GetPageSize() int
	GetPromoScript() string
	GetPromoWatch() bool
	GetGoogleAPIKey() string
	GetQueryRewriterModel() string
	GetRateLimitPerMinute() int
	GetDevAPIAddr() string
	GetDevAPIJWTSecret() string
	GetDevAPISeed() string
	GetEmailProvider() string
	GetEmailSender() string
	GetEmailAPIKey() string
	GetTracingEnabled() bool
	GetTracingServiceName() string
	GetTracingZipkinURL() string
}

// Config holds all configuration for the application.
type Config struct {
	AppAddr            string
	AppBaseURL         string
	SessionSecret      string
	APIBaseURL         string
	APITimeout         time.Duration
	APIRetries         int
	CacheBackend       string
	RedisAddr          string
	CacheTTL           time.Duration
	PageSize           int
	PromoScript        string
	PromoWatch         bool
	GoogleAPIKey       string
	QueryRewriterModel string
	RateLimitPerMinute int
	DevAPIAddr         string
	DevAPIJWTSecret    string
	DevAPISeed         string
	EmailProvider      string
	EmailSender        string
	EmailAPIKey        string
	TracingEnabled     bool
	TracingServiceName string
	TracingZipkinURL   string
}

// New loads configuration from environment variables, reading a .env file
// first when one exists.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	return FromEnv()
}

// MustNew is New for process entrypoints; it exits on invalid configuration.
func MustNew() *Config {
	cfg, err := New()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	return cfg
}

// FromEnv builds a Config from the current environment without touching .env files.
func FromEnv() (*Config, error) {
	var errs []error

	cfg := &Config{
		AppAddr:            getEnv("APP_ADDR", ":8080"),
		AppBaseURL:         getEnv("APP_BASE_URL", "http://localhost:8080"),
		SessionSecret:      getEnv("SESSION_SECRET", "dev-only-session-secret-change-me!!"),
		APIBaseURL:         strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8090/api"), "/"),
		CacheBackend:       strings.ToLower(getEnv("CACHE_BACKEND", CacheBackendMemory)),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		PromoScript:        os.Getenv("PROMO_SCRIPT"),
		GoogleAPIKey:       os.Getenv("GOOGLE_API_KEY"),
		QueryRewriterModel: getEnv("QUERY_REWRITER_MODEL", "gemini-1.5-flash"),
		DevAPIAddr:         getEnv("DEVAPI_ADDR", ":8090"),
		DevAPIJWTSecret:    getEnv("DEVAPI_JWT_SECRET", "dev-only-jwt-secret"),
		DevAPISeed:         os.Getenv("DEVAPI_SEED"),
		EmailProvider:      strings.ToLower(getEnv("EMAIL_PROVIDER", EmailProviderLog)),
		EmailSender:        getEnv("EMAIL_SENDER", "Zina <no-reply@zina.example>"),
		EmailAPIKey:        os.Getenv("EMAIL_API_KEY"),
		TracingServiceName: getEnv("TRACING_SERVICE_NAME", "zina-storefront"),
		TracingZipkinURL:   getEnv("TRACING_ZIPKIN_URL", "http://localhost:9411/api/v2/spans"),
	}

	cfg.APITimeout = getDuration("API_TIMEOUT", 10*time.Second, &errs)
	cfg.CacheTTL = getDuration("CACHE_TTL", 5*time.Minute, &errs)
	cfg.APIRetries = getInt("API_RETRIES", 2, &errs)
	cfg.PageSize = getInt("PAGE_SIZE", 12, &errs)
	cfg.RateLimitPerMinute = getInt("RATE_LIMIT_PER_MIN", 10, &errs)
	cfg.PromoWatch = getBool("PROMO_WATCH", false, &errs)
	cfg.TracingEnabled = getBool("TRACING_ENABLED", false, &errs)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the application cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.APIBaseURL == "" {
		errs = append(errs, errors.New("API_BASE_URL must not be empty"))
	}
	switch c.CacheBackend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required when CACHE_BACKEND=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown CACHE_BACKEND %q", c.CacheBackend))
	}
	switch c.EmailProvider {
	case "", EmailProviderLog:
	case EmailProviderResend:
		if c.EmailAPIKey == "" {
			errs = append(errs, errors.New("EMAIL_API_KEY is required when EMAIL_PROVIDER=resend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown EMAIL_PROVIDER %q", c.EmailProvider))
	}
	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("PAGE_SIZE must be positive, got %d", c.PageSize))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("CACHE_TTL must be positive, got %s", c.CacheTTL))
	}
	if c.APIRetries < 1 {
		errs = append(errs, fmt.Errorf("API_RETRIES must be at least 1, got %d", c.APIRetries))
	}
	if c.RateLimitPerMinute <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_PER_MIN must be positive, got %d", c.RateLimitPerMinute))
	}
	if len(c.SessionSecret) < 32 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 32 bytes"))
	}
	return errors.Join(errs...)
}

func (c *Config) GetAppAddr() string { return c.AppAddr }
func (c *Config) GetAppBaseURL() string { return c.AppBaseURL }
func (c *Config) GetSessionSecret() string { return c.SessionSecret }
func (c *Config) GetAPIBaseURL() string { return c.APIBaseURL }
func (c *Config) GetAPITimeout() time.Duration { return c.APITimeout }
func (c *Config) GetAPIRetries() int { return c.APIRetries }
func (c *Config) GetCacheBackend() string { return c.CacheBackend }
func (c *Config) GetRedisAddr() string { return c.RedisAddr }
func (c *Config) GetCacheTTL() time.Duration { return c.CacheTTL }
func (c *Config) GetPageSize() int { return c.PageSize }
func (c *Config) GetPromoScript() string { return c.PromoScript }
func (c *Config) GetPromoWatch() bool { return c.PromoWatch }
func (c *Config) GetGoogleAPIKey() string { return c.GoogleAPIKey }
func (c *Config) GetQueryRewriterModel() string { return c.QueryRewriterModel }
func (c *Config) GetRateLimitPerMinute() int { return c.RateLimitPerMinute }
func (c *Config) GetDevAPIAddr() string { return c.DevAPIAddr }
func (c *Config) GetDevAPIJWTSecret() string { return c.DevAPIJWTSecret }
func (c *Config) GetDevAPISeed() string { return c.DevAPISeed }
func (c *Config) GetEmailProvider() string { return c.EmailProvider }
func (c *Config) GetEmailSender() string { return c.EmailSender }
func (c *Config) GetEmailAPIKey() string { return c.EmailAPIKey }
func (c *Config) GetTracingEnabled() bool { return c.TracingEnabled }
func (c *Config) GetTracingServiceName() string { return c.TracingServiceName }
func (c *Config) GetTracingZipkinURL() string { return c.TracingZipkinURL }

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int, errs *[]error) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func getBool(key string, fallback bool, errs *[]error) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}
