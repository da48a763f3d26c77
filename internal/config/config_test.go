package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "Production")
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://ligue.com.br, https://www.ligue.com.br,")
	t.Setenv("RATE_LIMIT_WINDOW_MS", "60000")
	t.Setenv("RATE_LIMIT_MAX_REQUESTS", "50")
	t.Setenv("RATE_LIMIT_CREATE_WINDOW", "1h")
	t.Setenv("LEADS_EXISTING_EMAIL_MODE", "conflict")
	t.Setenv("TRUSTED_PROXY_HOPS", "2")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"https://ligue.com.br", "https://www.ligue.com.br"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, time.Minute, cfg.RateLimit.Global.Window)
	assert.Equal(t, 50, cfg.RateLimit.Global.Max)
	assert.Equal(t, time.Hour, cfg.RateLimit.LeadCreation.Window)
	assert.Equal(t, 5, cfg.RateLimit.LeadCreation.Max)
	assert.Equal(t, "conflict", cfg.Leads.ExistingEmailMode)
	assert.Equal(t, 2, cfg.Server.TrustedProxyHops)
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("RATE_LIMIT_WINDOW_MS", "abc")
	t.Setenv("RATE_LIMIT_LOOKUP_MAX", "vinte")
	t.Setenv("DB_AUTO_MIGRATE", "talvez")

	cfg := Load()

	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Global.Window)
	assert.Equal(t, 20, cfg.RateLimit.LeadLookup.Max)
	assert.True(t, cfg.Database.AutoMigrate)
}

func TestLogWriter(t *testing.T) {
	assert.Equal(t, os.Stdout, LogConfig{}.LogWriter())

	path := filepath.Join(t.TempDir(), "leads.log")
	w := LogConfig{FilePath: path, MaxSizeMB: 1}.LogWriter()
	_, err := w.Write([]byte("linha\n"))
	assert.NoError(t, err)
	assert.FileExists(t, path)
}
