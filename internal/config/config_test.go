package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"TOURBOOK_HTTP_ADDR", "TOURBOOK_STORE", "TOURBOOK_TIMEZONE", "TOURBOOK_SESSION_TTL_MIN", "SMTP_PORT"} {
		t.Setenv(key, "")
	}
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, "Atlantic/Reykjavik", cfg.Wizard.Location.String())
	assert.Equal(t, 2*time.Hour, cfg.Wizard.SessionTTL)
	assert.Equal(t, 587, cfg.SMTP.Port)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TOURBOOK_STORE", "memory")
	t.Setenv("TOURBOOK_TIMEZONE", "UTC")
	t.Setenv("TOURBOOK_SESSION_TTL_MIN", "15")
	t.Setenv("SMTP_PORT", "not-a-number")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, time.UTC, cfg.Wizard.Location)
	assert.Equal(t, 15*time.Minute, cfg.Wizard.SessionTTL)
	assert.Equal(t, 587, cfg.SMTP.Port)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("TOURBOOK_STORE", "sqlite")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("TOURBOOK_STORE", "memory")
	t.Setenv("TOURBOOK_TIMEZONE", "Mars/Olympus")
	_, err = Load()
	assert.Error(t, err)
}
