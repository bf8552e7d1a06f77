package session_gateway_config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setSecrets(t *testing.T) {
	t.Helper()
	t.Setenv("AUTH_ACCESS_SECRET", "access-secret")
	t.Setenv("AUTH_REFRESH_SECRET", "refresh-secret")
}

func TestLoad_DefaultsAndEnv(t *testing.T) {
	setSecrets(t)
	t.Setenv("AUTH_ACCESS_TTL", "30m")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "access-secret", cfg.Auth.AccessSecret)
	require.Equal(t, "refresh-secret", cfg.Auth.RefreshSecret)
	require.Equal(t, 30*time.Minute, cfg.Auth.AccessTTL)
	require.Equal(t, 168*time.Hour, cfg.Auth.RefreshTTL)
	require.Equal(t, 10, cfg.Auth.HashCost)
	require.Equal(t, ":3000", cfg.Server.HTTPAddr)
	require.True(t, cfg.App.IsProduction())
}

func TestLoad_FromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gateway.yaml")
	yaml := []byte(`
app:
  env: staging
auth:
  access_secret: a
  refresh_secret: b
  hash_cost: 12
  revocation: true
redis:
  addr: redis:6379
`)
	require.NoError(t, os.WriteFile(path, yaml, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "staging", cfg.App.Env)
	require.False(t, cfg.App.IsProduction())
	require.Equal(t, 12, cfg.Auth.HashCost)
	require.True(t, cfg.Auth.Revocation)
	require.Equal(t, "redis:6379", cfg.Redis.Addr)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	setSecrets(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		c := Config{
			Auth: Auth{
				AccessSecret:  "a",
				RefreshSecret: "b",
				AccessTTL:     time.Hour,
				RefreshTTL:    7 * 24 * time.Hour,
				HashCost:      10,
			},
		}
		c.DB.URL = "postgres://x"
		return c
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   error
	}{
		{"ok", func(*Config) {}, nil},
		{"no db", func(c *Config) { c.DB.URL = "" }, ErrNoDatabase},
		{"no access secret", func(c *Config) { c.Auth.AccessSecret = "" }, ErrNoAccessSecret},
		{"no refresh secret", func(c *Config) { c.Auth.RefreshSecret = "" }, ErrNoRefreshSecret},
		{"shared secret", func(c *Config) { c.Auth.RefreshSecret = "a" }, ErrSharedSecret},
		{"ttl order", func(c *Config) { c.Auth.AccessTTL = c.Auth.RefreshTTL }, ErrTTLOrder},
		{"zero ttl", func(c *Config) { c.Auth.AccessTTL = 0 }, ErrTTLOrder},
		{"cost", func(c *Config) { c.Auth.HashCost = 3 }, ErrHashCost},
		{"leeway", func(c *Config) { c.Auth.Leeway = -time.Second }, ErrNegativeLeeway},
		{"revocation without redis", func(c *Config) { c.Auth.Revocation = true }, ErrNoRedis},
		{"kafka without brokers", func(c *Config) { c.Kafka.Enable = true }, ErrNoKafkaBrokers},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
		})
	}
}
