package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// DiscordSink posts to a channel through a bot session.
type DiscordSink struct {
	session   *discordgo.Session
	channelID string
}

// NewDiscordSink opens a bot session. The caller owns Close.
func NewDiscordSink(token, channelID string) (*DiscordSink, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("open discord session: %w", err)
	}

	return &DiscordSink{session: session, channelID: channelID}, nil
}

func (d *DiscordSink) Name() string {
	return "discord"
}

// Check resolves the channel from the gateway cache, falling back to REST.
func (d *DiscordSink) Check(ctx context.Context) error {
	if _, err := d.session.State.Channel(d.channelID); err == nil {
		return nil
	}
	if _, err := d.session.Channel(d.channelID, discordgo.WithContext(ctx)); err != nil {
		return unavailable(fmt.Sprintf("discord channel %s", d.channelID), err)
	}
	return nil
}

func (d *DiscordSink) Send(ctx context.Context, text string) error {
	if _, err := d.session.ChannelMessageSend(d.channelID, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord send: %w", err)
	}
	return nil
}

func (d *DiscordSink) Close() error {
	return d.session.Close()
}
