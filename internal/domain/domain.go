// Package domain holds the records the bot keeps: registered users, vacancies
// and the applications that join them.
package domain

import (
	"errors"
	"time"
)

var (
	// ErrNotFound means the record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate means a record with the same key already exists.
	ErrDuplicate = errors.New("duplicate")
	// ErrInvalid means the input failed validation.
	ErrInvalid = errors.New("invalid")
)

// VacancyStatus is the lifecycle state of a vacancy.
type VacancyStatus string

const (
	VacancyActive VacancyStatus = "active"
	VacancyDone   VacancyStatus = "done"
	VacancyClosed VacancyStatus = "closed"
)

// ApplicationConfirmed is the only status an application is created with.
const ApplicationConfirmed = "confirmed"

// User is a chat that completed registration.
type User struct {
	ChatID    int64     `db:"chat_id" validate:"required"`
	FullName  string    `db:"full_name" validate:"required,fullname"`
	Phone     string    `db:"phone" validate:"required,uzphone"`
	Age       int       `db:"age" validate:"min=15,max=65"`
	Weight    int       `db:"weight" validate:"min=40,max=150"`
	CreatedAt time.Time `db:"created_at"`
}

// Vacancy is one job posting.
type Vacancy struct {
	ID               string        `db:"id"`
	When             string        `db:"when"`
	Title            string        `db:"title" validate:"required"`
	WorkersNeeded    int           `db:"workers_needed" validate:"min=0"`
	WorkType         string        `db:"work_type"`
	Salary           string        `db:"salary"`
	Meal             string        `db:"meal"`
	Time             string        `db:"work_time"`
	Address          string        `db:"address"`
	ServiceFee       string        `db:"service_fee"`
	Extra            string        `db:"extra"`
	Status           VacancyStatus `db:"status"`
	ChannelChatID    *int64        `db:"channel_chat_id"`
	ChannelMessageID *int64        `db:"channel_message_id"`
	CreatedAt        time.Time     `db:"created_at"`
}

// Active reports whether the vacancy still accepts applicants.
func (v Vacancy) Active() bool {
	return v.Status == VacancyActive
}

// Published reports whether the channel post location is on record.
func (v Vacancy) Published() bool {
	return v.ChannelChatID != nil && v.ChannelMessageID != nil
}

// Application is a confirmed applicant/vacancy pairing.
type Application struct {
	ID              int64      `db:"id"`
	ApplicantChatID int64      `db:"applicant_chat_id"`
	VacancyID       string     `db:"vacancy_id"`
	Status          string     `db:"status"`
	AppliedAt       time.Time  `db:"applied_at"`
	ConfirmedAt     *time.Time `db:"confirmed_at"`
}

// ApplicationView is an application joined with its vacancy title.
type ApplicationView struct {
	Application
	VacancyTitle  string        `db:"vacancy_title"`
	VacancyStatus VacancyStatus `db:"vacancy_status"`
}
