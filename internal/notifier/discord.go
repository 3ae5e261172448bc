package notifier

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// MessageSender is the part of *discordgo.Session the notifier uses.
type MessageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type DiscordNotifier struct {
	session   MessageSender
	channelID string
}

func NewDiscordNotifier(session MessageSender, channelID string) *DiscordNotifier {
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
	}
}

// NewDiscordSession opens a bot session for token.
func NewDiscordSession(token string) (*discordgo.Session, error) {
	if token == "" {
		return nil, fmt.Errorf("discord bot token is empty")
	}
	return discordgo.New("Bot " + token)
}

// Notify posts celebrations to the channel. Other event kinds are ignored.
func (n *DiscordNotifier) Notify(_ context.Context, ev Event) error {
	if !ev.Celebration() {
		return nil
	}
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	_, err := n.session.ChannelMessageSend(n.channelID, FormatCelebration(ev))
	if err != nil {
		return fmt.Errorf("send discord message: %w", err)
	}
	return nil
}

func FormatCelebration(ev Event) string {
	title := "🎉 **New achievement unlocked**"
	if ev.Kind == EventTierCrossed {
		title = "🏅 **New medal earned**"
	}
	return fmt.Sprintf("%s\n**User:** `%s`\n%s %s", title, ev.UserID, ev.Icon, ev.Name)
}
