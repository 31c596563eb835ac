package router

import (
	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/vacancybot/core/telegram"
	"github.com/m3rciful/vacancybot/core/telegram/middleware"
)

// CommandRouteOptions configures command wrapping.
type CommandRouteOptions struct {
	IsAdmin       func(chatID int64) bool
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes turns the registry's commands into routes; admin-only ones
// are guarded by the admin check.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}
	guard := middleware.AdminOnly(middleware.AdminOptions{
		IsAdmin:  opts.IsAdmin,
		OnReject: opts.OnAdminReject,
	})

	routes := make([]tg.Route, 0, len(reg.Commands()))
	for name, def := range reg.Commands() {
		h := def.Handler
		if def.AdminOnly {
			h = guard(h)
		}
		handlerName := normalizeHandlerName(name)
		wrapped := h
		routes = append(routes, tg.Route{
			Endpoint: name,
			Handler: func(c tele.Context) error {
				return handleWithSummary(c, handlerName, func() error { return wrapped(c) })
			},
		})
	}
	return routes
}
