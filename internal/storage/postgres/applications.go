package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/m3rciful/vacancybot/internal/domain"
)

// CreateApplication implements storage.Applications.
func (s *Store) CreateApplication(ctx context.Context, applicantChatID int64, vacancyID string) (created bool, err error) {
	start := time.Now()
	defer func() { observe(ctx, "application.create", start, err) }()
	query, args, err := insertApplicationQuery(applicantChatID, vacancyID)
	if err != nil {
		return false, fmt.Errorf("build application insert: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			return false, fmt.Errorf("vacancy %s: %w", vacancyID, domain.ErrNotFound)
		}
		return false, fmt.Errorf("insert application: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert application: %w", err)
	}
	return n == 1, nil
}

func insertApplicationQuery(applicantChatID int64, vacancyID string) (string, []any, error) {
	return psql.Insert(applicationsTable).
		Columns("applicant_chat_id", "vacancy_id", "status", "confirmed_at").
		Values(applicantChatID, vacancyID, domain.ApplicationConfirmed, sq.Expr("NOW()")).
		Suffix("ON CONFLICT (applicant_chat_id, vacancy_id) DO NOTHING").
		ToSql()
}

// DeleteApplication implements storage.Applications.
func (s *Store) DeleteApplication(ctx context.Context, applicantChatID int64, vacancyID string) (err error) {
	start := time.Now()
	defer func() { observe(ctx, "application.delete", start, err) }()
	query, args, err := deleteApplicationQuery(applicantChatID, vacancyID)
	if err != nil {
		return fmt.Errorf("build application delete: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	return nil
}

func deleteApplicationQuery(applicantChatID int64, vacancyID string) (string, []any, error) {
	return psql.Delete(applicationsTable).
		Where(sq.Eq{"applicant_chat_id": applicantChatID, "vacancy_id": vacancyID}).
		ToSql()
}

// ApplicationsByApplicant implements storage.Applications.
func (s *Store) ApplicationsByApplicant(ctx context.Context, chatID int64, limit int) ([]domain.ApplicationView, error) {
	query, args, err := applicationsByApplicantQuery(chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("build applications query: %w", err)
	}
	var out []domain.ApplicationView
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list applications of %d: %w", chatID, err)
	}
	return out, nil
}

func applicationsByApplicantQuery(chatID int64, limit int) (string, []any, error) {
	b := psql.Select(
		"a.id", "a.applicant_chat_id", "a.vacancy_id", "a.status", "a.applied_at", "a.confirmed_at",
		"v.title AS vacancy_title", "v.status AS vacancy_status",
	).
		From(applicationsTable + " a").
		Join(vacanciesTable + " v ON v.id = a.vacancy_id").
		Where(sq.Eq{"a.applicant_chat_id": chatID}).
		OrderBy("a.applied_at DESC", "a.id DESC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	return b.ToSql()
}
