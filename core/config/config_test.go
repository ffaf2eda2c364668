package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNormalizeDefaults(t *testing.T) {
	cfg := &Config{Telegram: TelegramConfig{Token: "t"}}
	cfg.RateLimit.ExcludeUpdates = []string{" Command ", ""}
	require.NoError(t, Normalize(cfg))
	require.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
	require.Equal(t, DefaultSessionTTL, cfg.Session.TTL)
	require.Equal(t, DefaultSessionSweep, cfg.Session.Sweep)
	require.Equal(t, []string{UpdateCommand}, cfg.RateLimit.ExcludeUpdates)
}

func TestNormalizeRejects(t *testing.T) {
	cases := map[string]Config{
		"missing token":  {},
		"bad run mode":   {Telegram: TelegramConfig{Token: "t", RunMode: "carrier-pigeon"}},
		"webhook no url": {Telegram: TelegramConfig{Token: "t", RunMode: "webhook"}},
		"bad exclude":    {Telegram: TelegramConfig{Token: "t"}, RateLimit: RateLimitConfig{ExcludeUpdates: []string{"callback"}}},
		"negative ttl":   {Telegram: TelegramConfig{Token: "t"}, Session: SessionConfig{TTL: -time.Second}},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			require.Error(t, Normalize(&cfg))
		})
	}
	require.Error(t, Normalize(nil))
}

func TestLoadOverlaysEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
telegram:
  token: from-file
  run_mode: polling
session:
  ttl: 10m
ops:
  listen: ":8081"
`), 0o600))
	t.Setenv("BOT_TOKEN", "from-env")

	var cfg Config
	require.NoError(t, Load(path, &cfg))
	require.NoError(t, Normalize(&cfg))
	require.Equal(t, "from-env", cfg.Telegram.Token)
	require.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
	require.Equal(t, 10*time.Minute, cfg.Session.TTL)
	require.Equal(t, ":8081", cfg.Ops.Listen)
}

func TestLoadMissingFile(t *testing.T) {
	var cfg Config
	require.Error(t, Load(filepath.Join(t.TempDir(), "nope.yaml"), &cfg))
}
