// Package memory is a process-local record store for development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/vacancybot/internal/domain"
)

// Store keeps all records in maps under one mutex.
type Store struct {
	mu           sync.Mutex
	users        map[int64]domain.User
	vacancies    map[string]domain.Vacancy
	applications []domain.Application
	seq          int64
	now          func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:     make(map[int64]domain.User),
		vacancies: make(map[string]domain.Vacancy),
		now:       time.Now,
	}
}

// UserByChatID implements storage.Users.
func (s *Store) UserByChatID(_ context.Context, chatID int64) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[chatID]
	if !ok {
		return domain.User{}, fmt.Errorf("user %d: %w", chatID, domain.ErrNotFound)
	}
	return u, nil
}

// CreateUser implements storage.Users.
func (s *Store) CreateUser(_ context.Context, u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ChatID]; ok {
		return fmt.Errorf("user %d: %w", u.ChatID, domain.ErrDuplicate)
	}
	u.CreatedAt = s.now()
	s.users[u.ChatID] = u
	return nil
}

// CountUsers implements storage.Users.
func (s *Store) CountUsers(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users), nil
}

// ListUsers implements storage.Users.
func (s *Store) ListUsers(_ context.Context, limit int) ([]domain.User, error) {
	s.mu.Lock()
	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ChatID < out[j].ChatID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CreateVacancy implements storage.Vacancies.
func (s *Store) CreateVacancy(_ context.Context, v domain.Vacancy) (domain.Vacancy, error) {
	if err := domain.ValidateVacancy(v); err != nil {
		return domain.Vacancy{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v.ID = uuid.NewString()
	v.Status = domain.VacancyActive
	v.CreatedAt = s.now()
	v.ChannelChatID, v.ChannelMessageID = nil, nil
	s.vacancies[v.ID] = v
	return v, nil
}

// VacancyByID implements storage.Vacancies.
func (s *Store) VacancyByID(_ context.Context, id string) (domain.Vacancy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vacancies[id]
	if !ok {
		return domain.Vacancy{}, fmt.Errorf("vacancy %s: %w", id, domain.ErrNotFound)
	}
	return v, nil
}

// SetChannelPost implements storage.Vacancies.
func (s *Store) SetChannelPost(_ context.Context, id string, chatID, messageID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vacancies[id]
	if !ok {
		return fmt.Errorf("vacancy %s: %w", id, domain.ErrNotFound)
	}
	v.ChannelChatID, v.ChannelMessageID = &chatID, &messageID
	s.vacancies[id] = v
	return nil
}

// CountVacancies implements storage.Vacancies.
func (s *Store) CountVacancies(_ context.Context, statuses ...domain.VacancyStatus) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.vacancies {
		for _, st := range statuses {
			if v.Status == st {
				n++
				break
			}
		}
	}
	return n, nil
}

// ReserveSeat implements storage.Vacancies.
func (s *Store) ReserveSeat(_ context.Context, id string) (domain.Vacancy, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vacancies[id]
	if !ok {
		return domain.Vacancy{}, false, fmt.Errorf("vacancy %s: %w", id, domain.ErrNotFound)
	}
	if v.Status != domain.VacancyActive || v.WorkersNeeded <= 0 {
		return v, false, nil
	}
	v.WorkersNeeded--
	if v.WorkersNeeded == 0 {
		v.Status = domain.VacancyClosed
	}
	s.vacancies[id] = v
	return v, true, nil
}

// CreateApplication implements storage.Applications.
func (s *Store) CreateApplication(_ context.Context, applicantChatID int64, vacancyID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vacancies[vacancyID]; !ok {
		return false, fmt.Errorf("vacancy %s: %w", vacancyID, domain.ErrNotFound)
	}
	for _, a := range s.applications {
		if a.ApplicantChatID == applicantChatID && a.VacancyID == vacancyID {
			return false, nil
		}
	}
	s.seq++
	now := s.now()
	s.applications = append(s.applications, domain.Application{
		ID:              s.seq,
		ApplicantChatID: applicantChatID,
		VacancyID:       vacancyID,
		Status:          domain.ApplicationConfirmed,
		AppliedAt:       now,
		ConfirmedAt:     &now,
	})
	return true, nil
}

// DeleteApplication implements storage.Applications.
func (s *Store) DeleteApplication(_ context.Context, applicantChatID int64, vacancyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.applications[:0]
	for _, a := range s.applications {
		if a.ApplicantChatID == applicantChatID && a.VacancyID == vacancyID {
			continue
		}
		kept = append(kept, a)
	}
	s.applications = kept
	return nil
}

// ApplicationsByApplicant implements storage.Applications.
func (s *Store) ApplicationsByApplicant(_ context.Context, chatID int64, limit int) ([]domain.ApplicationView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.ApplicationView
	for i := len(s.applications) - 1; i >= 0; i-- {
		a := s.applications[i]
		if a.ApplicantChatID != chatID {
			continue
		}
		v := s.vacancies[a.VacancyID]
		out = append(out, domain.ApplicationView{
			Application:   a,
			VacancyTitle:  v.Title,
			VacancyStatus: v.Status,
		})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
