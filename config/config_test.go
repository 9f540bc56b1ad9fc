package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir()) // no .env here
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, DefaultExpoPushURL, cfg.ExpoPushURL)
	assert.Equal(t, "123456", cfg.OTPSeedCode)
	assert.Equal(t, 30*24*time.Hour, cfg.ListingTTL)
	assert.Equal(t, 24*time.Hour, cfg.AdminTokenTTL)
	assert.True(t, cfg.PushEnabled)
}

func TestLoadFromEnvAndDotenv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT=9191\nLISTING_TTL_DAYS=7\n"), 0o600))
	chdir(t, dir)
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("PUSH_TIMEOUT_SECONDS", "not-a-number")
	t.Setenv("PUSH_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9191", cfg.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.ListingTTL)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 10*time.Second, cfg.PushTimeout)
	assert.False(t, cfg.PushEnabled)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DB_DRIVER", "mysql")
	_, err := Load()
	assert.ErrorContains(t, err, "unsupported DB_DRIVER")
}

func TestNewLogger(t *testing.T) {
	cfg := &Config{LogLevel: "debug", LogFormat: "text"}
	logger := cfg.NewLogger()
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)

	cfg = &Config{LogLevel: "loud", LogFormat: "json"}
	logger = cfg.NewLogger()
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
}

func TestLoadCatalog(t *testing.T) {
	cat, err := LoadCatalog("")
	require.NoError(t, err)
	assert.Contains(t, cat.VendorCategories, "restaurant")
	assert.Contains(t, cat.OrderMessages, "confirmed")

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
vendor_categories: [kebab, market]
order_messages:
  delivered:
    title: Delivered
    body: "Order #{order_id} arrived"
`), 0o600))

	cat, err = LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"kebab", "market"}, cat.VendorCategories)
	assert.Equal(t, "Delivered", cat.OrderMessages["delivered"].Title)
	assert.Equal(t, "Siparişiniz yolda", cat.OrderMessages["delivering"].Title)
}

func TestLoadCatalogErrors(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vendor_categories: {"), 0o600))
	_, err = LoadCatalog(path)
	assert.ErrorContains(t, err, "parse catalog")
}

func TestOpenDB(t *testing.T) {
	db, err := OpenDB("sqlite", "file:config_test?mode=memory&cache=shared")
	require.NoError(t, err)
	assert.True(t, db.Migrator().HasTable("varto_orders"))
	assert.True(t, db.Migrator().HasTable("varto_notifications"))

	_, err = OpenDB("oracle", "x")
	assert.Error(t, err)
}

// chdir mirrors testing.T.Chdir (Go 1.24+): it switches the working
// directory for the test and restores the previous one on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
