package discord

import (
	"fmt"

	"hamsterhub/internal/logger"

	"github.com/bwmarrin/discordgo"
)

// Notifier sends DMs to community members over the Discord gateway. A nil
// Notifier is safe to call, so the app runs without a bot token configured.
type Notifier struct {
	session *discordgo.Session
	guildID string
}

// NewNotifier opens a Discord session. Returns nil when no token is set.
func NewNotifier(botToken, guildID string) (*Notifier, error) {
	if botToken == "" {
		return nil, nil
	}

	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("discord gateway: %w", err)
	}

	logger.Info("discord notifier connected", "guild", guildID)
	return &Notifier{session: session, guildID: guildID}, nil
}

// Close shuts the gateway connection down
func (n *Notifier) Close() {
	if n == nil || n.session == nil {
		return
	}
	_ = n.session.Close()
}

// ResolveUsername looks the member up in the guild, falling back to the
// global user record
func (n *Notifier) ResolveUsername(discordID string) (string, error) {
	if n == nil {
		return "", fmt.Errorf("discord not configured")
	}

	if n.guildID != "" {
		member, err := n.session.GuildMember(n.guildID, discordID)
		if err == nil {
			if member.Nick != "" {
				return member.Nick, nil
			}
			return member.User.Username, nil
		}
	}

	user, err := n.session.User(discordID)
	if err != nil {
		return "", fmt.Errorf("discord user lookup: %w", err)
	}
	return user.Username, nil
}

// NotifyReward DMs the member about a task payout
func (n *Notifier) NotifyReward(discordID, taskName string, reward int64) {
	if n == nil {
		return
	}

	channel, err := n.session.UserChannelCreate(discordID)
	if err != nil {
		logger.Warn("discord dm channel failed", "discord_id", discordID, "error", err)
		return
	}

	msg := fmt.Sprintf("You won %d hamsterCoins for completing \"%s\" on the Hamsterboard!", reward, taskName)
	if _, err := n.session.ChannelMessageSend(channel.ID, msg); err != nil {
		logger.Warn("discord dm send failed", "discord_id", discordID, "error", err)
	}
}
