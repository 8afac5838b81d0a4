package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsMatchOriginalTool(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, []string{"bitcoin", "ethereum", "solana", "boricoin", "pepe", "bonk", "ripple", "xyo"}, c.Watchlist.Assets)
	assert.Equal(t, "usd", c.Watchlist.Currency)
	assert.Equal(t, 100, c.Watchlist.PerPage)
	assert.Equal(t, 10*time.Second, c.Poller.Interval)
	assert.Equal(t, 3, c.CoinGecko.Retries)
	assert.Equal(t, 1.0, c.CoinGecko.BackoffFactor)
	assert.Equal(t, 10*time.Second, c.CoinGecko.Timeout)
	assert.Equal(t, 60*time.Second, c.CoinGecko.RateLimitCooldown)
	assert.True(t, c.Display.Enabled)
	assert.False(t, c.TelegramEnabled())
	assert.Empty(t, c.Trade.Mode)
}

func TestParseKeepsExplicitFalse(t *testing.T) {
	c, err := Parse([]byte(`
watchlist:
  assets: [pepe, bonk]
  currency: eur
poller:
  interval: 30s
display:
  enabled: false
  style: plain
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"pepe", "bonk"}, c.Watchlist.Assets)
	assert.Equal(t, "eur", c.Watchlist.Currency)
	assert.Equal(t, 30*time.Second, c.Poller.Interval)
	assert.False(t, c.Display.Enabled)
	assert.Equal(t, "plain", c.Display.Style)
	assert.Equal(t, 3, c.CoinGecko.Retries)
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"interval below 1s":     "poller:\n  interval: 500ms\n",
		"unknown style":         "display:\n  style: neon\n",
		"empty watchlist":       "watchlist:\n  assets: []\n",
		"webhook without url":   "trade:\n  mode: webhook\n",
		"kafka without brokers": "kafka:\n  enabled: true\n",
		"unknown trade mode":    "trade:\n  mode: margin\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	env := map[string]string{
		"CRYPTOS":            "bitcoin, pepe",
		"CURRENCY":           "EUR",
		"UPDATE_INTERVAL":    "15",
		"TELEGRAM_BOT_TOKEN": "123:abc",
		"TELEGRAM_CHAT_ID":   "-100",
		"KAFKA_BROKERS":      "k1:9092,k2:9092",
		"REDIS_ADDR":         "cache:6380",
		"TRADE_MODE":         "paper",
		"TRADE_NOTIONAL":     "40",
	}
	require.NoError(t, c.applyEnv(func(k string) string { return env[k] }))

	assert.Equal(t, []string{"bitcoin", "pepe"}, c.Watchlist.Assets)
	assert.Equal(t, "eur", c.Watchlist.Currency)
	assert.Equal(t, 15*time.Second, c.Poller.Interval)
	assert.True(t, c.TelegramEnabled())
	assert.True(t, c.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "cache", c.Redis.Host)
	assert.Equal(t, 6380, c.Redis.Port)
	assert.Equal(t, "paper", c.Trade.Mode)
	assert.Equal(t, 40.0, c.Trade.Notional)
	require.NoError(t, c.Validate())
}

func TestApplyEnvRejectsBadInterval(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	err = c.applyEnv(func(k string) string {
		if k == "UPDATE_INTERVAL" {
			return "ten"
		}
		return ""
	})
	assert.Error(t, err)
}

func TestLoadWithEnvWithoutFile(t *testing.T) {
	t.Setenv("CRYPTOS", "solana")
	c, err := LoadWithEnv(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"solana"}, c.Watchlist.Assets)
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("environment: test\nwatchlist:\n  per_page: 50\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test", c.Environment)
	assert.Equal(t, 50, c.Watchlist.PerPage)

	_, err = Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
