package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/nohumanman/descenders-modding/internal/model"
)

// DiscordConfig identifies the webhook that receives announcements
type DiscordConfig struct {
	WebhookID    string
	WebhookToken string

	// TimeURLBase is prepended to "/time/<id>" to link a run
	TimeURLBase string
}

// Discord posts announcements to a Discord channel webhook
type Discord struct {
	session *discordgo.Session
	cfg     DiscordConfig
	logger  *slog.Logger
}

var _ Notifier = (*Discord)(nil)

// NewDiscord creates a webhook notifier. Webhook execution needs no bot
// token, so the session is created without one.
func NewDiscord(cfg DiscordConfig, logger *slog.Logger) (*Discord, error) {
	if cfg.WebhookID == "" || cfg.WebhookToken == "" {
		return nil, fmt.Errorf("discord webhook id and token are required")
	}
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	return NewDiscordWithSession(session, cfg, logger), nil
}

// NewDiscordWithSession creates a webhook notifier on an existing session (for testing)
func NewDiscordWithSession(session *discordgo.Session, cfg DiscordConfig, logger *slog.Logger) *Discord {
	cfg.TimeURLBase = strings.TrimRight(cfg.TimeURLBase, "/")
	return &Discord{
		session: session,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "discord-notifier")),
	}
}

// NotifyTimeVerified posts a link to the verified run
func (d *Discord) NotifyTimeVerified(ctx context.Context, rec *model.TimeRecord) error {
	params := &discordgo.WebhookParams{
		Content: VerifiedMessage(d.cfg.TimeURLBase, rec),
	}
	if _, err := d.session.WebhookExecute(d.cfg.WebhookID, d.cfg.WebhookToken, false, params, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("execute webhook: %w", err)
	}
	d.logger.Debug("verified time announced", slog.String("time_id", string(rec.ID)))
	return nil
}

// VerifiedMessage formats the announcement for a verified run
func VerifiedMessage(base string, rec *model.TimeRecord) string {
	return fmt.Sprintf("[Time](%s/time/%s) by %s of %s on %s is verified.",
		strings.TrimRight(base, "/"),
		rec.ID,
		rec.PlayerName,
		strconv.FormatFloat(rec.TotalTime, 'f', -1, 64),
		rec.TrailName,
	)
}
