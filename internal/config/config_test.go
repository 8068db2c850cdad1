package config

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for name := range envKeys {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
	t.Setenv("CONFIG_FILE", "")
	require.NoError(t, os.Unsetenv("CONFIG_FILE"))
}

func TestLoad_RequiresSecretOutsideDevelopment(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_DevelopmentFallbackSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.DevSecretInUse)
	assert.NotEmpty(t, cfg.JWT.Secret)
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.DevSecretInUse)
	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, defaultCORSOrigins, cfg.CORS.Origins)
	assert.Equal(t, http.SameSiteLaxMode, cfg.Cookie.SameSiteMode())
	assert.False(t, cfg.Cookie.SecureFlag())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SERVER_PORT", "8081")
	t.Setenv("DATABASE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/db?sslmode=disable")
	t.Setenv("JWT_TTL", "1h")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("COOKIE_SAME_SITE", "none")
	t.Setenv("AUTH_RATE_LIMIT_RPM", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, time.Hour, cfg.JWT.TTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.Origins)
	assert.Equal(t, http.SameSiteNoneMode, cfg.Cookie.SameSiteMode())
	assert.True(t, cfg.Cookie.SecureFlag())
	assert.Equal(t, 5, cfg.RateLimit.AuthRPM)
}

func TestLoad_YAMLFileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "7000"
jwt:
  secret: from-file
cache:
  ttl: 30s
log:
  format: json
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SERVER_PORT", "7001")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7001", cfg.Server.Port)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.JWT.Secret = "x"
		return cfg
	}

	require.NoError(t, valid().Validate())

	cases := map[string]func(*Config){
		"driver":    func(c *Config) { c.Database.Driver = "mysql" },
		"dsn":       func(c *Config) { c.Database.DSN = " " },
		"port":      func(c *Config) { c.Server.Port = "" },
		"ttl":       func(c *Config) { c.JWT.TTL = 0 },
		"timeout":   func(c *Config) { c.Server.RequestTimeout = 0 },
		"same_site": func(c *Config) { c.Cookie.SameSite = "sometimes" },
		"cache":     func(c *Config) { c.Cache.TTL = -time.Second },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_CORSOriginsSplitOnCommas(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example,,https://c.example,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example", "https://b.example", "https://c.example"}, cfg.CORS.Origins)
}

func TestEnvValue(t *testing.T) {
	key, value := envValue("CORS_ORIGINS", "https://a.example,https://b.example")
	assert.Equal(t, "cors.origins", key)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, value)

	key, value = envValue("SERVER_PORT", "8081")
	assert.Equal(t, "server.port", key)
	assert.Equal(t, "8081", value)

	key, _ = envValue("HOME", "/root")
	assert.Empty(t, key)
}
