package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestParseDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Parse()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	require.Equal(t, 15*time.Minute, cfg.JWT.AccessExpiry)
	require.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshExpiry)
	require.Equal(t, 2000.0, cfg.Limits.NearbyRadius)
	require.Equal(t, time.Hour, cfg.Database.CleanupInterval)
	require.False(t, cfg.Email.Enabled())
	require.Len(t, cfg.Server.CORSOrigins, 2)
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("SERVER_PORT", "8443")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("RESEND_API_KEY", "re_test")
	t.Setenv("MESSAGE_COOLDOWN", "30s")

	cfg, err := Parse()
	require.NoError(t, err)

	require.Equal(t, 8443, cfg.Server.Port)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	require.True(t, cfg.Email.Enabled())
	require.Equal(t, 30*time.Second, cfg.Limits.MessageCooldown)
}

func TestParseRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Parse()
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "short")
	_, err = Parse()
	require.ErrorContains(t, err, "at least 32")
}

func TestParseRejectsBadRadius(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("WHISPER_NEARBY_RADIUS_M", "50000")

	_, err := Parse()
	require.Error(t, err)
}
