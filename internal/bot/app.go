package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/vacancybot/core/bootstrap"
	"github.com/m3rciful/vacancybot/core/cmd"
	coreconfig "github.com/m3rciful/vacancybot/core/config"
	coredatabase "github.com/m3rciful/vacancybot/core/database"
	"github.com/m3rciful/vacancybot/core/logger"
	tg "github.com/m3rciful/vacancybot/core/telegram"
	"github.com/m3rciful/vacancybot/core/telegram/middleware"
	"github.com/m3rciful/vacancybot/core/telegram/sender"
	"github.com/m3rciful/vacancybot/core/telegram/state"
	"github.com/m3rciful/vacancybot/internal/config"
	"github.com/m3rciful/vacancybot/internal/flow"
	"github.com/m3rciful/vacancybot/internal/health"
	"github.com/m3rciful/vacancybot/internal/membership"
	"github.com/m3rciful/vacancybot/internal/storage"
	"github.com/m3rciful/vacancybot/internal/storage/memory"
	"github.com/m3rciful/vacancybot/internal/storage/postgres"
	"github.com/m3rciful/vacancybot/internal/texts"
	"github.com/m3rciful/vacancybot/migrations"
)

const redisPingTimeout = 3 * time.Second

// App owns everything Bootstrap opened.
type App struct {
	cfg *config.Config

	db            *sqlx.DB
	redis         *redis.Client
	store         storage.Store
	sessions      state.Store[flow.Session]
	adminSessions state.Store[flow.AdminSession]
	health        *health.Server
	closers       []func()
}

// Bootstrap implements cmd.Options.Bootstrap.
func Bootstrap(ctx context.Context, carrier cmd.ConfigCarrier) (cmd.TelegramApp, error) {
	cfg, ok := carrier.(*config.Config)
	if !ok {
		return nil, fmt.Errorf("bot: unexpected config type %T", carrier)
	}

	var dbCfg *coredatabase.Config
	if cfg.Storage.Backend == storage.BackendPostgres {
		dbCfg = &cfg.Database
	}
	res, err := bootstrap.Run(ctx, bootstrap.Options{
		Config:     &cfg.Config,
		Database:   dbCfg,
		Migrations: migrations.FS,
	})
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, db: res.DB}
	checks := map[string]health.Check{}
	if res.DB != nil {
		pg := postgres.New(res.DB)
		a.store = pg
		checks["postgres"] = pg.Ping
	} else {
		a.store = memory.New()
	}

	if cfg.State.Backend == coreconfig.StateRedis {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.State.Redis.Addr,
			Password: cfg.State.Redis.Password,
			DB:       cfg.State.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		err := a.redis.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("bot: redis ping: %w", err)
		}
		client := a.redis
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}

	var cmdable redis.Cmdable
	if a.redis != nil {
		cmdable = a.redis
	}
	sessions, closeSessions, err := state.Open[flow.Session](cfg.State, "conv", cmdable)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.sessions = sessions
	a.closers = append(a.closers, closeSessions)

	adminSessions, closeAdmin, err := state.Open[flow.AdminSession](cfg.State, "admin", cmdable)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.adminSessions = adminSessions
	a.closers = append(a.closers, closeAdmin)

	a.health = health.New(cfg.Health.Listen, checks)

	logger.Info(ctx, logger.CompApp, "bootstrap",
		slog.String("status", "ok"),
		slog.String("storage", cfg.Storage.Backend),
		slog.String("state", cfg.State.Backend),
	)
	return a, nil
}

func (a *App) settings(botUsername string) flow.Settings {
	return flow.Settings{
		AdminIDs:      a.cfg.Telegram.AdminIDs,
		Channel:       membership.Channel(a.cfg.Bot.RequiredChannel),
		BotUsername:   botUsername,
		PaymentWindow: a.cfg.Bot.PaymentWindow,
		Contacts: texts.Contacts{
			Card:            a.cfg.Bot.CardNumber,
			Handoff:         a.cfg.Bot.HandoffContact,
			SupportPhone:    a.cfg.Bot.SupportPhone,
			SupportUsername: a.cfg.Bot.SupportUsername,
		},
	}
}

func onLimited(c tele.Context) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: texts.AckLimited})
	}
	return nil
}

// TelegramRunOptions implements cmd.TelegramApp.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	locks := middleware.NewChatLocks()
	return tg.RunOptions{
		Config:   &a.cfg.Config,
		Registry: tg.NewRegistry(),
		DispatcherOptions: sender.Options{
			MaxRetries: 2,
		},
		Middlewares: tg.DefaultMiddlewares(&a.cfg.Config, locks, onLimited),
		BuildRoutes: func(rt tg.Runtime) ([]tg.Route, error) {
			username := a.cfg.Telegram.BotUsername
			if username == "" && rt.Bot.Me != nil {
				username = rt.Bot.Me.Username
			}
			settings := a.settings(username)
			deps := flow.Deps{
				Bot:           rt.Bot,
				Store:         a.store,
				Sessions:      a.sessions,
				AdminSessions: a.adminSessions,
				Members:       membership.NewGate(rt.Bot, settings.Channel),
				Runner:        rt.Dispatcher,
				Settings:      settings,
			}
			d := NewDispatcher(flow.NewConversation(deps), flow.NewAdmin(deps))
			if err := d.Register(rt.Registry); err != nil {
				return nil, err
			}
			return d.Routes(rt.Registry), nil
		},
		OnStart: func(ctx context.Context, _ tg.Runtime) error {
			a.health.Start(ctx)
			return nil
		},
		OnStop: func(ctx context.Context, _ tg.Runtime) error {
			return a.health.Shutdown(ctx)
		},
	}, nil
}

// Close releases the session stores, redis and the database pool.
func (a *App) Close() error {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil

	var errs []error
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
		a.redis = nil
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("db close: %w", err))
		}
		a.db = nil
	}
	return errors.Join(errs...)
}
