// Package config loads secrets and third-party integration settings from the
// environment. Operational flags live on the server command.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Discord holds the OAuth application and webhook settings
type Discord struct {
	ClientID     string   `env:"SPLITTIMER_DISCORD_CLIENT_ID"`
	ClientSecret string   `env:"SPLITTIMER_DISCORD_CLIENT_SECRET"`
	RedirectURL  string   `env:"SPLITTIMER_DISCORD_REDIRECT_URL" envDefault:"https://split-timer.nohumanman.com/callback"`
	APIBaseURL   string   `env:"SPLITTIMER_DISCORD_API_BASE_URL" envDefault:"https://discord.com/api"`
	Scopes       []string `env:"SPLITTIMER_DISCORD_SCOPES" envSeparator:"," envDefault:"identify"`

	WebhookID    string `env:"SPLITTIMER_DISCORD_WEBHOOK_ID"`
	WebhookToken string `env:"SPLITTIMER_DISCORD_WEBHOOK_TOKEN"`
}

// OAuthEnabled reports whether dashboard login can be offered
func (d Discord) OAuthEnabled() bool {
	return d.ClientID != "" && d.ClientSecret != ""
}

// WebhookEnabled reports whether verified times can be announced
func (d Discord) WebhookEnabled() bool {
	return d.WebhookID != "" && d.WebhookToken != ""
}

// Secrets is everything read from the environment at startup
type Secrets struct {
	Discord Discord
}

// Load parses Secrets from the environment
func Load() (Secrets, error) {
	var s Secrets
	if err := ParseEnv(&s); err != nil {
		return Secrets{}, err
	}
	return s, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
