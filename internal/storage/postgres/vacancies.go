package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m3rciful/vacancybot/internal/domain"
)

// CreateVacancy implements storage.Vacancies.
func (s *Store) CreateVacancy(ctx context.Context, v domain.Vacancy) (out domain.Vacancy, err error) {
	start := time.Now()
	defer func() { observe(ctx, "vacancy.create", start, err) }()
	if err = domain.ValidateVacancy(v); err != nil {
		return domain.Vacancy{}, err
	}
	v.ID = uuid.NewString()
	query, args, err := insertVacancyQuery(v)
	if err != nil {
		return domain.Vacancy{}, fmt.Errorf("build vacancy insert: %w", err)
	}
	if err = s.db.GetContext(ctx, &out, query, args...); err != nil {
		return domain.Vacancy{}, fmt.Errorf("insert vacancy: %w", err)
	}
	return out, nil
}

func insertVacancyQuery(v domain.Vacancy) (string, []any, error) {
	return psql.Insert(vacanciesTable).
		Columns("id", `"when"`, "title", "workers_needed", "work_type", "salary", "meal", "work_time", "address", "service_fee", "extra", "status").
		Values(v.ID, v.When, v.Title, v.WorkersNeeded, v.WorkType, v.Salary, v.Meal, v.Time, v.Address, v.ServiceFee, v.Extra, string(domain.VacancyActive)).
		Suffix("RETURNING " + vacancyColumns).
		ToSql()
}

// VacancyByID implements storage.Vacancies.
func (s *Store) VacancyByID(ctx context.Context, id string) (domain.Vacancy, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Vacancy{}, fmt.Errorf("vacancy %q: %w", id, domain.ErrNotFound)
	}
	query, args, err := psql.Select(vacancyColumns).From(vacanciesTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return domain.Vacancy{}, fmt.Errorf("build vacancy query: %w", err)
	}
	var v domain.Vacancy
	if err := s.db.GetContext(ctx, &v, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Vacancy{}, fmt.Errorf("vacancy %s: %w", id, domain.ErrNotFound)
		}
		return domain.Vacancy{}, fmt.Errorf("get vacancy %s: %w", id, err)
	}
	return v, nil
}

// SetChannelPost implements storage.Vacancies.
func (s *Store) SetChannelPost(ctx context.Context, id string, chatID, messageID int64) (err error) {
	start := time.Now()
	defer func() { observe(ctx, "vacancy.channel_post", start, err) }()
	query, args, err := psql.Update(vacanciesTable).
		Set("channel_chat_id", chatID).
		Set("channel_message_id", messageID).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build channel post update: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update vacancy %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("vacancy %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// CountVacancies implements storage.Vacancies.
func (s *Store) CountVacancies(ctx context.Context, statuses ...domain.VacancyStatus) (int, error) {
	query, args, err := countVacanciesQuery(statuses)
	if err != nil {
		return 0, fmt.Errorf("build vacancy count: %w", err)
	}
	var n int
	if err := s.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, fmt.Errorf("count vacancies: %w", err)
	}
	return n, nil
}

func countVacanciesQuery(statuses []domain.VacancyStatus) (string, []any, error) {
	values := make([]string, len(statuses))
	for i, st := range statuses {
		values[i] = string(st)
	}
	return psql.Select("COUNT(*)").From(vacanciesTable).Where(sq.Eq{"status": values}).ToSql()
}

// ReserveSeat implements storage.Vacancies. The decrement, the close at zero
// and the guard are one statement, so concurrent approvals cannot oversell.
func (s *Store) ReserveSeat(ctx context.Context, id string) (v domain.Vacancy, changed bool, err error) {
	start := time.Now()
	defer func() { observe(ctx, "vacancy.reserve", start, err) }()
	query, args, err := reserveSeatQuery(id)
	if err != nil {
		return domain.Vacancy{}, false, fmt.Errorf("build reserve: %w", err)
	}
	err = s.db.GetContext(ctx, &v, query, args...)
	if err == nil {
		return v, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.Vacancy{}, false, fmt.Errorf("reserve seat %s: %w", id, err)
	}
	v, err = s.VacancyByID(ctx, id)
	return v, false, err
}

func reserveSeatQuery(id string) (string, []any, error) {
	return psql.Update(vacanciesTable).
		Set("workers_needed", sq.Expr("workers_needed - 1")).
		Set("status", sq.Expr("CASE WHEN workers_needed <= 1 THEN ? ELSE status END", string(domain.VacancyClosed))).
		Where(sq.Eq{"id": id, "status": string(domain.VacancyActive)}).
		Where(sq.Gt{"workers_needed": 0}).
		Suffix("RETURNING " + vacancyColumns).
		ToSql()
}
