package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	// devJWTSecret is only ever used when app.env is development.
	devJWTSecret = "entrepreneurhub-dev-secret-do-not-use-in-production"
)

var defaultCORSOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}

// envKeys maps supported environment variables to koanf keys.
var envKeys = map[string]string{
	"APP_ENV":                    "app.env",
	"SERVER_PORT":                "server.port",
	"SERVER_READ_HEADER_TIMEOUT": "server.read_header_timeout",
	"SERVER_WRITE_TIMEOUT":       "server.write_timeout",
	"SERVER_IDLE_TIMEOUT":        "server.idle_timeout",
	"REQUEST_TIMEOUT":            "server.request_timeout",
	"SHUTDOWN_TIMEOUT":           "server.shutdown_timeout",
	"METRICS_PORT":               "server.metrics_port",
	"DATABASE_DRIVER":            "database.driver",
	"DATABASE_URL":               "database.dsn",
	"DATABASE_MAX_OPEN_CONNS":    "database.max_open_conns",
	"JWT_SECRET":                 "jwt.secret",
	"JWT_TTL":                    "jwt.ttl",
	"COOKIE_SECURE":              "cookie.secure",
	"COOKIE_SAME_SITE":           "cookie.same_site",
	"CORS_ORIGINS":               "cors.origins",
	"RATE_LIMIT_RPM":             "rate_limit.general_rpm",
	"AUTH_RATE_LIMIT_RPM":        "rate_limit.auth_rpm",
	"CACHE_TTL":                  "cache.ttl",
	"LOG_LEVEL":                  "log.level",
	"LOG_FORMAT":                 "log.format",
}

// listKeys holds the keys whose environment value is a comma-separated list.
var listKeys = map[string]struct{}{
	"cors.origins": {},
}

type Config struct {
	App       AppConfig       `koanf:"app"`
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	JWT       JWTConfig       `koanf:"jwt"`
	Cookie    CookieConfig    `koanf:"cookie"`
	CORS      CORSConfig      `koanf:"cors"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Cache     CacheConfig     `koanf:"cache"`
	Log       LogConfig       `koanf:"log"`

	// DevSecretInUse is set when the development fallback secret was applied.
	DevSecretInUse bool `koanf:"-"`
}

type AppConfig struct {
	Env string `koanf:"env"`
}

type ServerConfig struct {
	Port              string        `koanf:"port"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
	RequestTimeout    time.Duration `koanf:"request_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	MetricsPort       string        `koanf:"metrics_port"`
}

type DatabaseConfig struct {
	Driver       string `koanf:"driver"`
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
}

type JWTConfig struct {
	Secret string        `koanf:"secret"`
	TTL    time.Duration `koanf:"ttl"`
}

type CookieConfig struct {
	Secure   bool   `koanf:"secure"`
	SameSite string `koanf:"same_site"`
}

type CORSConfig struct {
	Origins []string `koanf:"origins"`
}

type RateLimitConfig struct {
	GeneralRPM int `koanf:"general_rpm"`
	AuthRPM    int `koanf:"auth_rpm"`
}

type CacheConfig struct {
	TTL time.Duration `koanf:"ttl"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func Default() *Config {
	return &Config{
		App: AppConfig{Env: EnvProduction},
		Server: ServerConfig{
			Port:              "5000",
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
			RequestTimeout:    30 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			MetricsPort:       "9090",
		},
		Database: DatabaseConfig{
			Driver:       DriverSQLite,
			DSN:          "file:entrepreneurhub.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
			MaxOpenConns: 10,
		},
		JWT:       JWTConfig{TTL: 7 * 24 * time.Hour},
		Cookie:    CookieConfig{Secure: false, SameSite: "lax"},
		RateLimit: RateLimitConfig{GeneralRPM: 300, AuthRPM: 20},
		CORS:      CORSConfig{Origins: append([]string(nil), defaultCORSOrigins...)},
		Cache:     CacheConfig{TTL: 5 * time.Minute},
		Log:       LogConfig{Level: "info", Format: "pretty"},
	}
}

// Load layers defaults, an optional YAML file named by CONFIG_FILE and the
// environment (after .env), then validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	// decoded below or restored by normalize
	cfg.CORS.Origins = nil
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.normalize()

	if cfg.JWT.Secret == "" && cfg.IsDevelopment() {
		cfg.JWT.Secret = devJWTSecret
		cfg.DevSecretInUse = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// envValue maps a known variable to its config key. List-valued keys are
// split on commas; unknown variables map to "" and are skipped.
func envValue(name, value string) (string, any) {
	key := envKeys[name]
	if key == "" {
		return "", nil
	}
	if _, ok := listKeys[key]; ok {
		return key, strings.Split(value, ",")
	}
	return key, value
}

func (c *Config) normalize() {
	c.App.Env = strings.ToLower(strings.TrimSpace(c.App.Env))
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	c.JWT.Secret = strings.TrimSpace(c.JWT.Secret)
	c.Cookie.SameSite = strings.ToLower(strings.TrimSpace(c.Cookie.SameSite))

	origins := make([]string, 0, len(c.CORS.Origins))
	for _, origin := range c.CORS.Origins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	if len(origins) == 0 {
		origins = append(origins, defaultCORSOrigins...)
	}
	c.CORS.Origins = origins
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if strings.TrimSpace(c.Server.Port) == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("DATABASE_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.Database.Driver)
	}

	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("DATABASE_URL cannot be empty")
	}

	if c.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}

	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.Cache.TTL < 0 {
		return fmt.Errorf("CACHE_TTL cannot be negative")
	}

	switch c.Cookie.SameSite {
	case "lax", "strict", "none":
	default:
		return fmt.Errorf("COOKIE_SAME_SITE must be lax, strict or none, got %q", c.Cookie.SameSite)
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == EnvDevelopment
}

// SameSiteMode maps cookie.same_site onto net/http.
func (c CookieConfig) SameSiteMode() http.SameSite {
	switch c.SameSite {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// SecureFlag reports whether cookies must carry Secure. Browsers drop
// SameSite=None cookies without it.
func (c CookieConfig) SecureFlag() bool {
	return c.Secure || c.SameSite == "none"
}
