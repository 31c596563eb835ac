// Package storage defines the record store the bot engines work against.
package storage

import (
	"context"

	"github.com/m3rciful/vacancybot/internal/domain"
)

// Backend names accepted by the storage.backend setting.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Limits used by the listing screens.
const (
	UsersListLimit        = 50
	ApplicationsListLimit = 10
)

// Users persists registered chats.
type Users interface {
	// UserByChatID returns domain.ErrNotFound when the chat never registered.
	UserByChatID(ctx context.Context, chatID int64) (domain.User, error)
	// CreateUser returns domain.ErrDuplicate when the chat is already registered.
	CreateUser(ctx context.Context, u domain.User) error
	CountUsers(ctx context.Context) (int, error)
	// ListUsers returns at most limit users, oldest first.
	ListUsers(ctx context.Context, limit int) ([]domain.User, error)
}

// Vacancies persists job postings.
type Vacancies interface {
	// CreateVacancy assigns the id, status and creation time and returns the stored row.
	CreateVacancy(ctx context.Context, v domain.Vacancy) (domain.Vacancy, error)
	// VacancyByID returns domain.ErrNotFound for unknown or malformed ids.
	VacancyByID(ctx context.Context, id string) (domain.Vacancy, error)
	SetChannelPost(ctx context.Context, id string, chatID, messageID int64) error
	// CountVacancies counts vacancies in any of the given statuses.
	CountVacancies(ctx context.Context, statuses ...domain.VacancyStatus) (int, error)
	// ReserveSeat atomically takes one seat of an active vacancy and closes it
	// when none are left. changed is false when the vacancy was not active or
	// had no seats; the returned vacancy is then the current row.
	ReserveSeat(ctx context.Context, id string) (v domain.Vacancy, changed bool, err error)
}

// Applications persists confirmed applications.
type Applications interface {
	// CreateApplication inserts the pairing once; created is false when it already existed.
	CreateApplication(ctx context.Context, applicantChatID int64, vacancyID string) (created bool, err error)
	// DeleteApplication removes the pairing; deleting a missing one is not an error.
	DeleteApplication(ctx context.Context, applicantChatID int64, vacancyID string) error
	// ApplicationsByApplicant returns the newest applications first, at most limit.
	ApplicationsByApplicant(ctx context.Context, chatID int64, limit int) ([]domain.ApplicationView, error)
}

// Store is the complete record store.
type Store interface {
	Users
	Vacancies
	Applications
}
