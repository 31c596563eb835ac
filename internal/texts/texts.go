// Package texts holds the user-facing copy and the keyboards that go with
// it. Everything is rendered for HTML parse mode; user-supplied values are
// escaped here so callers can send the result as is.
package texts

import (
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/vacancybot/core/telegram/keyboard"
	"github.com/m3rciful/vacancybot/internal/action"
)

// Message is a text together with the markup it is sent with. A nil Markup
// leaves the current keyboard alone.
type Message struct {
	Text   string
	Markup *tele.ReplyMarkup
}

// Plain wraps text without markup.
func Plain(text string) Message {
	return Message{Text: text}
}

// Reply keyboard labels of the main menu.
const (
	BtnApplications = "📋 Mening arizalarim"
	BtnInfo         = "ℹ️ Ma'lumot"
	BtnSupport      = "📞 Qo'llab-quvvatlash"
	BtnMainMenu     = "🔙 Asosiy menyu"
)

// IsMenuButton reports whether text is one of the reply keyboard labels.
func IsMenuButton(text string) bool {
	switch text {
	case BtnApplications, BtnInfo, BtnSupport, BtnMainMenu:
		return true
	}
	return false
}

// Contacts are the deployment specific details quoted in the copy.
type Contacts struct {
	// Card is the card number payments go to.
	Card string
	// Handoff is the @username an approved applicant writes to.
	Handoff string
	// SupportPhone and SupportUsername are shown on the support screen.
	SupportPhone    string
	SupportUsername string
}

// DefaultContacts are used for any field left empty in the configuration.
var DefaultContacts = Contacts{
	Card:            "9860 1601 1896 8066",
	Handoff:         "@ManMode_admin1",
	SupportPhone:    "+998 77-999-14-64",
	SupportUsername: "@Mode_Menejer",
}

// WithDefaults fills empty fields from DefaultContacts.
func (c Contacts) WithDefaults() Contacts {
	if c.Card == "" {
		c.Card = DefaultContacts.Card
	}
	if c.Handoff == "" {
		c.Handoff = DefaultContacts.Handoff
	}
	if c.SupportPhone == "" {
		c.SupportPhone = DefaultContacts.SupportPhone
	}
	if c.SupportUsername == "" {
		c.SupportUsername = DefaultContacts.SupportUsername
	}
	return c
}

func backToMenu() *tele.ReplyMarkup {
	return keyboard.Reply([]string{BtnMainMenu})
}

func button(k action.Kind, text string) keyboard.InlineBtn {
	return action.Of(k).Button(text)
}

const (
	UnknownCommand  = "⛔ Noma'lum buyruq."
	GenericFailure  = "❌ Xatolik yuz berdi. Iltimos, qayta urinib ko‘ring."
	AckUnsupported  = "Bu tugma endi ishlamaydi."
	AckLimited      = "Iltimos, biroz kuting."
	SessionExpired  = "⌛ Sessiya muddati tugadi. Iltimos, /start buyrug‘ini qayta yuboring."
	AckVacancyGone  = "Ushbu vakansiya mavjud emas yoki yopilgan."
	VacancyGoneText = "❌ " + AckVacancyGone
)
