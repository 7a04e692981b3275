package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SK_AUTH_JWT_KEY", testKey)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, ":8443", cfg.Server.Addr)
	require.Equal(t, ":9090", cfg.Server.HTTPAddr)
	require.False(t, cfg.Server.TLS())
	require.Equal(t, 12*time.Hour, cfg.Auth.AccessTTL)
	require.Equal(t, 3, cfg.Auth.LockAfter)
	require.Equal(t, 10, cfg.Auth.VerifyAfter)
	require.Equal(t, 5*time.Minute, cfg.Auth.LockFor)
	require.Equal(t, 15*time.Minute, cfg.Auth.CodeTTL)
	require.Equal(t, DriverFile, cfg.Store.Driver)
	require.Equal(t, "store", cfg.Store.Key)
	require.Equal(t, 10, cfg.Reports.LowStockThreshold)
	require.False(t, cfg.Reports.StrictStock)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvFileAndOverrides(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	content := "SK_AUTH_JWT_KEY=" + testKey + "\n" +
		"SK_STORE_DRIVER=redis\n" +
		"SK_STORE_REDIS_URL=redis://localhost:6379/2\n" +
		"SK_REPORTS_STRICT_STOCK=true\n" +
		"SK_AUTH_LOCK_FOR=2m\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	// godotenv does not override variables that are already set
	t.Setenv("SK_AUTH_LOCK_FOR", "7m")
	for _, k := range []string{"SK_AUTH_JWT_KEY", "SK_STORE_DRIVER", "SK_STORE_REDIS_URL", "SK_REPORTS_STRICT_STOCK"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, err := Load(envFile)
	require.NoError(t, err)
	require.Equal(t, DriverRedis, cfg.Store.Driver)
	require.Equal(t, "redis://localhost:6379/2", cfg.Store.RedisURL)
	require.True(t, cfg.Reports.StrictStock)
	require.Equal(t, 7*time.Minute, cfg.Auth.LockFor)
}

func TestLoad_MissingJWTKey(t *testing.T) {
	t.Setenv("SK_AUTH_JWT_KEY", "")
	require.NoError(t, os.Unsetenv("SK_AUTH_JWT_KEY"))

	_, err := Load(filepath.Join(t.TempDir(), "none.env"))
	require.Error(t, err)
}

func valid() Config {
	return Config{
		Auth:  AuthConfig{JWTKey: testKey},
		Store: StoreConfig{Driver: DriverMemory},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, (&Config{Auth: AuthConfig{JWTKey: testKey}, Store: StoreConfig{Driver: DriverFile, Path: "x.json"}}).Validate())

	cases := map[string]func(c *Config){
		"short key":       func(c *Config) { c.Auth.JWTKey = "short" },
		"half tls":        func(c *Config) { c.Server.TLSCert = "cert.pem" },
		"unknown driver":  func(c *Config) { c.Store.Driver = "sqlite" },
		"file no path":    func(c *Config) { c.Store.Driver = DriverFile },
		"postgres no dsn": func(c *Config) { c.Store.Driver = DriverPostgres },
		"mongo no uri":    func(c *Config) { c.Store.Driver = DriverMongo },
		"redis no addr":   func(c *Config) { c.Store.Driver = DriverRedis },
		"half owner":      func(c *Config) { c.Owner.Username = "boss" },
		"negative low":    func(c *Config) { c.Reports.LowStockThreshold = -1 },
	}
	for name, mutate := range cases {
		c := valid()
		mutate(&c)
		require.Errorf(t, c.Validate(), "case %s", name)
	}

	var nilCfg *Config
	require.Error(t, nilCfg.Validate())
}
