package router

import (
	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/vacancybot/core/telegram"
)

// MessageRoutes sends text, contact, photo, and document messages to one handler.
func MessageRoutes(h tele.HandlerFunc) []tg.Route {
	wrap := func(name string) tele.HandlerFunc {
		return func(c tele.Context) error {
			return handleWithSummary(c, name, func() error { return h(c) })
		}
	}
	return []tg.Route{
		{Endpoint: tele.OnText, Handler: wrap("message.text")},
		{Endpoint: tele.OnContact, Handler: wrap("message.contact")},
		{Endpoint: tele.OnPhoto, Handler: wrap("message.photo")},
		{Endpoint: tele.OnDocument, Handler: wrap("message.document")},
	}
}
