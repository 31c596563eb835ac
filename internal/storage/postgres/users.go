package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/m3rciful/vacancybot/internal/domain"
)

// UserByChatID implements storage.Users.
func (s *Store) UserByChatID(ctx context.Context, chatID int64) (domain.User, error) {
	query, args, err := psql.Select(userColumns).From(usersTable).Where(sq.Eq{"chat_id": chatID}).ToSql()
	if err != nil {
		return domain.User{}, fmt.Errorf("build user query: %w", err)
	}
	var u domain.User
	if err := s.db.GetContext(ctx, &u, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, fmt.Errorf("user %d: %w", chatID, domain.ErrNotFound)
		}
		return domain.User{}, fmt.Errorf("get user %d: %w", chatID, err)
	}
	return u, nil
}

// CreateUser implements storage.Users.
func (s *Store) CreateUser(ctx context.Context, u domain.User) (err error) {
	start := time.Now()
	defer func() { observe(ctx, "user.create", start, err) }()
	query, args, err := insertUserQuery(u)
	if err != nil {
		return fmt.Errorf("build user insert: %w", err)
	}
	if _, err = s.db.ExecContext(ctx, query, args...); err != nil {
		if pgCode(err) == codeUniqueViolation {
			return fmt.Errorf("user %d: %w", u.ChatID, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert user %d: %w", u.ChatID, err)
	}
	return nil
}

func insertUserQuery(u domain.User) (string, []any, error) {
	return psql.Insert(usersTable).
		Columns("chat_id", "full_name", "phone", "age", "weight").
		Values(u.ChatID, u.FullName, u.Phone, u.Age, u.Weight).
		ToSql()
}

// CountUsers implements storage.Users.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	query, args, err := psql.Select("COUNT(*)").From(usersTable).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build user count: %w", err)
	}
	var n int
	if err := s.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// ListUsers implements storage.Users.
func (s *Store) ListUsers(ctx context.Context, limit int) ([]domain.User, error) {
	b := psql.Select(userColumns).From(usersTable).OrderBy("created_at ASC", "chat_id ASC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build user list: %w", err)
	}
	var users []domain.User
	if err := s.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
