// Package flow holds the two dialog engines: the per-chat conversation that
// registers users and takes payment receipts, and the admin workflow that
// authors vacancies and decides payments.
package flow

import (
	"context"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/vacancybot/core/logger"
	"github.com/m3rciful/vacancybot/core/telegram/state"
	"github.com/m3rciful/vacancybot/internal/membership"
	"github.com/m3rciful/vacancybot/internal/storage"
	"github.com/m3rciful/vacancybot/internal/texts"
)

// DefaultPaymentWindow is how long a receipt is awaited when unset.
const DefaultPaymentWindow = 3 * time.Minute

// Messenger is the part of *tele.Bot the engines talk through.
type Messenger interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
	EditReplyMarkup(msg tele.Editable, markup *tele.ReplyMarkup) (*tele.Message, error)
}

// MembershipChecker answers whether a chat joined the required channel.
type MembershipChecker interface {
	IsMember(ctx context.Context, chatID int64) bool
}

// Runner executes best-effort calls off the update path.
type Runner interface {
	Enqueue(ctx context.Context, action, endpoint string, run func() error) error
}

// Settings are the deployment specific values the engines need.
type Settings struct {
	AdminIDs      []int64
	Channel       membership.Channel
	BotUsername   string
	PaymentWindow time.Duration
	Contacts      texts.Contacts
}

// Deps wires the engines. Members and Runner may be nil: every chat then
// counts as a channel member and best-effort calls run inline.
type Deps struct {
	Bot           Messenger
	Store         storage.Store
	Sessions      state.Store[Session]
	AdminSessions state.Store[AdminSession]
	Members       MembershipChecker
	Runner        Runner
	Settings      Settings
	Now           func() time.Time
}

func (d *Deps) normalize() {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Settings.PaymentWindow <= 0 {
		d.Settings.PaymentWindow = DefaultPaymentWindow
	}
	d.Settings.Contacts = d.Settings.Contacts.WithDefaults()
}

func (d *Deps) isAdmin(chatID int64) bool {
	for _, id := range d.Settings.AdminIDs {
		if id == chatID {
			return true
		}
	}
	return false
}

func (d *Deps) isMember(ctx context.Context, chatID int64) bool {
	if d.Members == nil {
		return true
	}
	return d.Members.IsMember(ctx, chatID)
}

func sendOptions(m texts.Message) *tele.SendOptions {
	return &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: m.Markup}
}

// send delivers m to a chat or channel and returns the sent message.
func (d *Deps) send(ctx context.Context, component string, to tele.Recipient, m texts.Message) (*tele.Message, error) {
	msg, err := d.Bot.Send(to, m.Text, sendOptions(m))
	if err != nil {
		logger.Warn(ctx, component, "message.send",
			slog.String("status", "fail"),
			slog.String("to", to.Recipient()),
			logger.Err(err),
		)
	}
	return msg, err
}

// say sends m to chatID; failures are logged only.
func (d *Deps) say(ctx context.Context, component string, chatID int64, m texts.Message) {
	_, _ = d.send(ctx, component, tele.ChatID(chatID), m)
}

// bestEffort runs fn through the Runner, or inline when none is available.
func (d *Deps) bestEffort(ctx context.Context, component, action, endpoint string, fn func() error) {
	if d.Runner != nil {
		if err := d.Runner.Enqueue(ctx, action, endpoint, fn); err == nil {
			return
		}
	}
	if err := fn(); err != nil {
		logger.Warn(ctx, component, action,
			slog.String("status", "fail"),
			slog.String("endpoint", endpoint),
			logger.Err(err),
		)
	}
}
