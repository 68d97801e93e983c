// Package config reads the server configuration from the environment.
//
// Config is built once in main and passed explicitly; nothing else in the
// module reads environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/sakif/second-brain/internal/auth"
	"github.com/sakif/second-brain/internal/handler"
)

// Config holds everything the server needs to start.
type Config struct {
	Port        int
	DatabaseURL string
	JWTSecret   string
	TokenTTL    time.Duration // 0 = tokens never expire

	StatusCodes handler.StatusMode
	CORSOrigins []string

	ServerURL         string // public base URL for keep-alive; empty disables it
	KeepAliveInterval time.Duration

	RateLimitRPS   float64 // 0 disables rate limiting
	RateLimitBurst int

	MetricsEnabled bool
	PasswordCost   int // 0 = auth.DefaultCost

	Env       string
	LogLevel  string
	LogFormat string
}

// Defaults.
const (
	DefaultPort              = 3000
	DefaultCORSOrigin        = "http://localhost:5173"
	DefaultKeepAliveInterval = 8 * time.Minute
	DefaultRateLimitRPS      = 5
	DefaultRateLimitBurst    = 10
)

// Load reads envFile (if it exists) into the process environment, then
// builds a Config from it. Variables already set in the environment win
// over the file. An empty envFile skips the file.
//
// Every problem is reported, joined, rather than only the first.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: loading %s: %w", envFile, err)
		}
	}
	return fromEnv(os.Getenv)
}

func fromEnv(getenv func(string) string) (*Config, error) {
	p := parser{getenv: getenv}

	cfg := &Config{
		Port:              p.int("PORT", DefaultPort),
		DatabaseURL:       strings.TrimSpace(getenv("DATABASE_URL")),
		JWTSecret:         getenv("JWT_SECRET"),
		TokenTTL:          p.duration("TOKEN_TTL", 0),
		CORSOrigins:       p.list("CORS_ORIGINS", []string{DefaultCORSOrigin}),
		ServerURL:         strings.TrimSpace(getenv("SERVER_URL")),
		KeepAliveInterval: p.duration("KEEPALIVE_INTERVAL", DefaultKeepAliveInterval),
		RateLimitRPS:      p.float("RATE_LIMIT_RPS", DefaultRateLimitRPS),
		RateLimitBurst:    p.int("RATE_LIMIT_BURST", DefaultRateLimitBurst),
		MetricsEnabled:    p.bool("METRICS_ENABLED", true),
		PasswordCost:      p.int("PASSWORD_COST", 0),
		Env:               p.str("ENV", "development"),
		LogLevel:          p.str("LOG_LEVEL", "info"),
		LogFormat:         strings.ToLower(getenv("LOG_FORMAT")),
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
		if cfg.IsProduction() {
			cfg.LogFormat = "json"
		}
	}

	mode, err := handler.ParseStatusMode(p.str("STATUS_CODES", string(handler.StatusLegacy)))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("STATUS_CODES: %w", err))
	}
	cfg.StatusCodes = mode

	// Fail closed: there is no built-in database or signing secret.
	if cfg.DatabaseURL == "" {
		p.errs = append(p.errs, errors.New("DATABASE_URL is required"))
	}
	if len(cfg.JWTSecret) < auth.MinSecretLength {
		p.errs = append(p.errs, fmt.Errorf("JWT_SECRET is required and must be at least %d characters", auth.MinSecretLength))
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		p.errs = append(p.errs, fmt.Errorf("PORT %d out of range", cfg.Port))
	}
	if cfg.TokenTTL < 0 {
		p.errs = append(p.errs, errors.New("TOKEN_TTL must not be negative"))
	}
	if cfg.RateLimitRPS < 0 || cfg.RateLimitBurst < 0 {
		p.errs = append(p.errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must not be negative"))
	}

	if err := errors.Join(p.errs...); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Addr is the listen address for net/http.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// parser reads typed values, collecting errors instead of stopping at the
// first one.
type parser struct {
	getenv func(string) string
	errs   []error
}

func (p *parser) str(key, def string) string {
	if v := strings.TrimSpace(p.getenv(key)); v != "" {
		return v
	}
	return def
}

func (p *parser) int(key string, def int) int {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not an integer", key, v))
		return def
	}
	return n
}

func (p *parser) float(key string, def float64) float64 {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a number", key, v))
		return def
	}
	return f
}

func (p *parser) bool(key string, def bool) bool {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a boolean", key, v))
		return def
	}
	return b
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a duration (e.g. 24h, 90m)", key, v))
		return def
	}
	return d
}

func (p *parser) list(key string, def []string) []string {
	v := p.getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
