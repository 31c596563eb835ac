// Package bot binds telebot updates to the dialog engines and assembles the
// running application.
package bot

import (
	"log/slog"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/vacancybot/core/logger"
	tg "github.com/m3rciful/vacancybot/core/telegram"
	tghelpers "github.com/m3rciful/vacancybot/core/telegram/helpers"
	"github.com/m3rciful/vacancybot/core/telegram/router"
	"github.com/m3rciful/vacancybot/internal/action"
	"github.com/m3rciful/vacancybot/internal/flow"
	"github.com/m3rciful/vacancybot/internal/texts"
)

// Dispatcher routes updates: admin dialogs first, then the conversation.
type Dispatcher struct {
	conv  *flow.Conversation
	admin *flow.Admin
}

// NewDispatcher wires the two engines.
func NewDispatcher(conv *flow.Conversation, admin *flow.Admin) *Dispatcher {
	return &Dispatcher{conv: conv, admin: admin}
}

// Start handles /start [arg].
func (d *Dispatcher) Start(c tele.Context) error {
	var arg string
	if msg := c.Message(); msg != nil {
		arg = msg.Payload
	}
	return d.conv.Start(tghelpers.BuildContext(c), tghelpers.ChatID(c), arg)
}

// Panel handles /panel; the route is guarded by the admin check.
func (d *Dispatcher) Panel(c tele.Context) error {
	return d.admin.Panel(tghelpers.BuildContext(c), tghelpers.ChatID(c))
}

// RejectCommand answers commands the chat may not use.
func RejectCommand(c tele.Context) error {
	return c.Send(texts.UnknownCommand)
}

// Message handles text, contact, photo and document messages.
func (d *Dispatcher) Message(c tele.Context) error {
	msg := c.Message()
	if msg == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	chatID := tghelpers.ChatID(c)

	handled, err := d.admin.HandleMessage(ctx, chatID, msg.Text)
	if handled || err != nil {
		return err
	}
	if strings.HasPrefix(msg.Text, "/") {
		return c.Send(texts.UnknownCommand)
	}

	in := flow.Incoming{ChatID: chatID, Text: msg.Text}
	if msg.Contact != nil {
		in.ContactPhone = msg.Contact.PhoneNumber
	}
	if msg.Photo != nil {
		in.PhotoFileID = msg.Photo.FileID
	}
	return d.conv.HandleMessage(ctx, in)
}

// Callback handles every inline button press. The router answers the
// callback with the text recorded through router.Ack.
func (d *Dispatcher) Callback(c tele.Context) error {
	cb := c.Callback()
	if cb == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	chatID := tghelpers.ChatID(c)

	act, err := action.Decode(cb)
	if err != nil {
		logger.Warn(ctx, logger.CompTG, "callback.decode",
			slog.String("status", "skip"),
			logger.Err(err),
		)
		router.Ack(c, texts.AckUnsupported)
		return nil
	}

	if d.admin.IsAdmin(chatID) {
		var origin tele.Editable
		if cb.Message != nil {
			origin = cb.Message
		}
		ack, handled, err := d.admin.HandleCallback(ctx, chatID, act, origin)
		if handled {
			router.Ack(c, ack)
			return err
		}
	}

	ack, err := d.conv.HandleCallback(ctx, chatID, act)
	router.Ack(c, ack)
	return err
}

// Register puts the commands and every action code into reg.
func (d *Dispatcher) Register(reg *tg.Registry) error {
	if err := reg.RegisterCommand("/start", tg.Command{
		Handler:     d.Start,
		Description: "Botni ishga tushirish",
	}); err != nil {
		return err
	}
	if err := reg.RegisterCommand("/panel", tg.Command{
		Handler:   d.Panel,
		AdminOnly: true,
		Hidden:    true,
	}); err != nil {
		return err
	}
	for _, k := range action.Kinds() {
		if err := reg.RegisterCallback(action.Code(k), d.Callback); err != nil {
			return err
		}
	}
	reg.SetCallbackNotFound(d.Callback)
	return nil
}

// Routes turns reg and the message handler into telebot routes.
func (d *Dispatcher) Routes(reg *tg.Registry) []tg.Route {
	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		IsAdmin:       d.admin.IsAdmin,
		OnAdminReject: RejectCommand,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{NotFoundText: texts.AckUnsupported}))
	return append(routes, router.MessageRoutes(d.Message)...)
}
