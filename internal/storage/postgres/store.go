// Package postgres is the record store backed by sqlx and lib/pq. Queries
// are built with squirrel.
package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/m3rciful/vacancybot/core/logger"
	"github.com/m3rciful/vacancybot/internal/domain"
)

const (
	usersTable        = "users"
	vacanciesTable    = "vacancies"
	applicationsTable = "applications"

	userColumns    = `chat_id, full_name, phone, age, weight, created_at`
	vacancyColumns = `id, "when", title, workers_needed, work_type, salary, meal, work_time, address, service_fee, extra, status, channel_chat_id, channel_message_id, created_at`

	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Store implements storage.Store on a Postgres pool.
type Store struct {
	db *sqlx.DB
}

// New wraps an open pool.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Ping reports whether the database answers; used by the health check.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func pgCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// observe logs a failed query at error level and a slow one at warn.
// Sentinel outcomes are left to the caller.
func observe(ctx context.Context, op string, start time.Time, err error) {
	took := logger.Took(start)
	switch {
	case errors.Is(err, domain.ErrDuplicate), errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalid):
	case err != nil:
		logger.Error(ctx, logger.CompStore, op,
			slog.String("status", "fail"),
			slog.Duration("duration", took),
			logger.Err(err),
		)
	case took > 500*time.Millisecond:
		logger.Warn(ctx, logger.CompStore, op,
			slog.String("status", "ok"),
			slog.Duration("duration", took),
		)
	}
}
