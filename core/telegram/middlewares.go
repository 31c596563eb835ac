package telegram

import (
	"time"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/vacancybot/core/config"
	"github.com/m3rciful/vacancybot/core/telegram/middleware"
)

// DefaultMiddlewares builds the shared chain: recover, rate limit, receipt
// logging, then per-chat serialization.
func DefaultMiddlewares(cfg *coreconfig.Config, locks *middleware.ChatLocks, onLimited tele.HandlerFunc) []Middleware {
	mws := []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
	}

	if cfg != nil {
		if interval := time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond; interval > 0 {
			ex := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
			for _, t := range cfg.RateLimit.ExcludeUpdates {
				ex[t] = struct{}{}
			}
			mws = append(mws, Middleware{
				Name: "rate_limit",
				Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
					Interval:  interval,
					Exclude:   ex,
					OnLimited: onLimited,
				}),
			})
		}
	}

	mws = append(mws, Middleware{Name: "logger", Use: middleware.LoggerMiddleware})
	if locks != nil {
		mws = append(mws, Middleware{Name: "chat_lock", Use: middleware.ChatLockMiddleware(locks)})
	}
	return mws
}
