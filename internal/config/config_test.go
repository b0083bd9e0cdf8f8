package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://split-timer.nohumanman.com/callback", s.Discord.RedirectURL)
	assert.Equal(t, "https://discord.com/api", s.Discord.APIBaseURL)
	assert.Equal(t, []string{"identify"}, s.Discord.Scopes)
	assert.False(t, s.Discord.OAuthEnabled())
	assert.False(t, s.Discord.WebhookEnabled())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SPLITTIMER_DISCORD_CLIENT_ID", "client")
	t.Setenv("SPLITTIMER_DISCORD_CLIENT_SECRET", "secret")
	t.Setenv("SPLITTIMER_DISCORD_SCOPES", "identify,connections")
	t.Setenv("SPLITTIMER_DISCORD_WEBHOOK_ID", "123")
	t.Setenv("SPLITTIMER_DISCORD_WEBHOOK_TOKEN", "hook")

	s, err := Load()
	require.NoError(t, err)

	assert.True(t, s.Discord.OAuthEnabled())
	assert.True(t, s.Discord.WebhookEnabled())
	assert.Equal(t, []string{"identify", "connections"}, s.Discord.Scopes)
}

type badConfig struct {
	Port int `env:"SPLITTIMER_TEST_PORT"`
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("SPLITTIMER_TEST_PORT", "not-an-int")

	var cfg badConfig
	err := ParseEnv(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}
