package router

import (
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/vacancybot/core/logger"
	tg "github.com/m3rciful/vacancybot/core/telegram"
	"github.com/m3rciful/vacancybot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/vacancybot/core/telegram/helpers"
)

const ackKey = "cb_ack"

// Ack records the toast text for the current callback. The router answers
// the callback exactly once after the handler returns, so handlers never call
// c.Respond themselves.
func Ack(c tele.Context, text string) {
	c.Set(ackKey, text)
}

// CallbackOptions customises the callback route.
type CallbackOptions struct {
	// NotFoundText is shown for keys with no registered handler.
	NotFoundText string
}

// CallbackRoute routes every callback through the registry by unique key.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		if c.Callback() == nil {
			return nil
		}
		key := callbacks.Key(c)
		name := "callback." + normalizeHandlerName(key)

		h, ok := reg.GetCallback(key)
		if !ok {
			h = reg.CallbackNotFound()
			if h == nil {
				h = func(c tele.Context) error {
					Ack(c, opts.NotFoundText)
					return nil
				}
			}
		}

		err := handleWithSummary(c, name, func() error { return h(c) },
			slog.String("cb_key", key))
		respond(c)
		return err
	}
	return tg.Route{Endpoint: tele.OnCallback, Handler: handler}
}

func respond(c tele.Context) {
	text, _ := c.Get(ackKey).(string)
	if err := c.Respond(&tele.CallbackResponse{Text: text}); err != nil {
		logger.Warn(tghelpers.BuildContext(c), logger.CompTG, "callback.respond",
			slog.String("status", "fail"),
			logger.Err(err),
		)
	}
}
