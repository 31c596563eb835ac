// Package membership checks whether a chat has joined the required channel.
package membership

import (
	"context"
	"log/slog"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/vacancybot/core/logger"
)

// Channel is a public channel addressed by its @username.
type Channel string

// Recipient implements tele.Recipient.
func (c Channel) Recipient() string {
	s := strings.TrimSpace(string(c))
	if s != "" && !strings.HasPrefix(s, "@") && !strings.HasPrefix(s, "-") {
		s = "@" + s
	}
	return s
}

// Link returns the public t.me URL of the channel.
func (c Channel) Link() string {
	return "https://t.me/" + strings.TrimPrefix(c.Recipient(), "@")
}

// MemberLookup is the part of *tele.Bot the gate needs.
type MemberLookup interface {
	ChatMemberOf(chat, user tele.Recipient) (*tele.ChatMember, error)
}

// Gate answers membership questions for one channel.
type Gate struct {
	bot     MemberLookup
	channel Channel
}

// NewGate returns a gate for channel.
func NewGate(bot MemberLookup, channel Channel) *Gate {
	return &Gate{bot: bot, channel: channel}
}

// IsMember reports whether chatID is a creator, administrator or member of
// the channel. Lookup errors count as not a member.
func (g *Gate) IsMember(ctx context.Context, chatID int64) bool {
	m, err := g.bot.ChatMemberOf(g.channel, tele.ChatID(chatID))
	if err != nil {
		logger.Warn(ctx, logger.CompTG, "membership.check",
			slog.String("status", "fail"),
			slog.String("action", g.channel.Recipient()),
			logger.Err(err),
		)
		return false
	}
	switch m.Role {
	case tele.Creator, tele.Administrator, tele.Member:
		return true
	}
	return false
}
