package middleware

import (
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/vacancybot/core/logger"
	"github.com/m3rciful/vacancybot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/vacancybot/core/telegram/helpers"
)

// LoggerMiddleware builds the request context and logs one receipt line per update.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		c.Set("update_start", time.Now())
		ctx := tghelpers.BuildContext(c)
		upd := c.Update()

		attrs := []slog.Attr{slog.String("status", "ok")}
		if chat := c.Chat(); chat != nil {
			attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
		}
		if user := c.Sender(); user != nil && user.Username != "" {
			attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
		}

		switch {
		case upd.Callback != nil:
			key, fields := callbacks.Parse(upd.Callback)
			attrs = append(attrs, slog.String("cb_key", logger.SanitizeLimit(key, 64)))
			if len(fields) > 0 {
				attrs = append(attrs, slog.Int("count", len(fields)))
			}
		case upd.Message != nil:
			switch m := upd.Message; {
			case m.Photo != nil:
				attrs = append(attrs, slog.String("payload", "<photo>"))
			case m.Contact != nil:
				attrs = append(attrs, slog.String("payload", "<contact>"))
			case m.Text != "":
				attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(m.Text, 128)))
			}
		}

		logger.Debug(ctx, logger.CompTG, "update.received", attrs...)
		return next(c)
	}
}
