package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// MinDecimalPrecision is the smallest quotient precision the pricing engine accepts.
const MinDecimalPrecision = 40

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration

	Obs     ObsConfig
	Pricing PricingConfig
	HTTP    HTTPConfig
}

// ObsConfig controls logging, metrics and tracing.
type ObsConfig struct {
	LogFormat        string
	LogLevel         string
	MetricsNamespace string
	MetricsBuckets   string
	EnablePrometheus bool
	EnableTracing    bool
	TracingExporter  string
	OTLPEndpoint     string
	SamplingRatio    float64
}

// PricingConfig controls the decimal engine.
type PricingConfig struct {
	DecimalPrecision int32
	ReadyTimeout     time.Duration
}

// HTTPConfig holds request guards applied in front of the API.
type HTTPConfig struct {
	BodyLimitBytes      int64
	RateLimitWindow     time.Duration
	RateLimitMax        int
	SecureHeadersEnable bool
	EnableHSTS          bool
	// TrustProxy honours X-Forwarded-For and X-Real-IP. Enable it only behind a proxy that
	// overwrites those headers, otherwise clients can pick their own rate limit key.
	TrustProxy          bool
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	precision, err := parseInt(k.String("PRICING_DECIMAL_PRECISION"), MinDecimalPrecision)
	if err != nil {
		return nil, fmt.Errorf("PRICING_DECIMAL_PRECISION: %w", err)
	}
	if precision < MinDecimalPrecision {
		return nil, fmt.Errorf("PRICING_DECIMAL_PRECISION must be at least %d, got %d", MinDecimalPrecision, precision)
	}
	ratio, err := parseFloat(k.String("OBS_TRACING_SAMPLING_RATIO"), 1.0)
	if err != nil {
		return nil, fmt.Errorf("OBS_TRACING_SAMPLING_RATIO: %w", err)
	}
	bodyLimit, err := parseInt(k.String("HTTP_BODY_LIMIT_BYTES"), 64<<10)
	if err != nil {
		return nil, fmt.Errorf("HTTP_BODY_LIMIT_BYTES: %w", err)
	}
	rateMax, err := parseInt(k.String("RATE_LIMIT_MAX"), 120)
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_MAX: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		ShutdownTimeout:    parseDuration(k.String("SHUTDOWN_TIMEOUT"), "10s"),
		Obs: ObsConfig{
			LogFormat:        valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
			LogLevel:         valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
			MetricsNamespace: valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "margin"),
			MetricsBuckets:   k.String("OBS_METRICS_BUCKETS_MS"),
			EnablePrometheus: parseBool(k.String("OBS_ENABLE_PROMETHEUS"), true),
			EnableTracing:    parseBool(k.String("OBS_ENABLE_TRACING"), false),
			TracingExporter:  valueOrDefault(k.String("OBS_TRACING_EXPORTER"), "otlp"),
			OTLPEndpoint:     strings.TrimSpace(k.String("OBS_OTLP_ENDPOINT")),
			SamplingRatio:    ratio,
		},
		Pricing: PricingConfig{
			DecimalPrecision: int32(precision),
			ReadyTimeout:     parseDuration(k.String("HEALTH_READY_TIMEOUT"), "500ms"),
		},
		HTTP: HTTPConfig{
			BodyLimitBytes:      int64(bodyLimit),
			RateLimitWindow:     parseDuration(k.String("RATE_LIMIT_WINDOW"), "1m"),
			RateLimitMax:        rateMax,
			SecureHeadersEnable: parseBool(k.String("SECURE_HEADERS_ENABLE"), true),
			EnableHSTS:          parseBool(k.String("SECURE_HSTS_ENABLE"), false),
			TrustProxy:          parseBool(k.String("HTTP_TRUST_PROXY"), false),
		},
	}

	if cfg.Obs.SamplingRatio < 0 || cfg.Obs.SamplingRatio > 1 {
		return nil, errors.New("OBS_TRACING_SAMPLING_RATIO must be within [0, 1]")
	}
	if cfg.HTTP.RateLimitMax < 0 {
		return nil, errors.New("RATE_LIMIT_MAX must not be negative")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// AllowedOriginsCSV joins the CORS allowlist back into its environment form.
func (c *Config) AllowedOriginsCSV() string {
	return strings.Join(c.CORSAllowedOrigins, ",")
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "t", "true", "yes", "on":
		return true
	case "0", "f", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func parseInt(value string, fallback int) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	return strconv.Atoi(value)
}

func parseFloat(value string, fallback float64) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(value, 64)
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
