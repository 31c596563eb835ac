package flow

import (
	"time"

	"github.com/m3rciful/vacancybot/internal/domain"
)

// Step is where a chat stands in the conversation.
type Step string

const (
	StepNone       Step = ""
	StepFullName   Step = "full_name"
	StepPhone      Step = "phone"
	StepAge        Step = "age"
	StepWeight     Step = "weight"
	StepConfirm    Step = "confirm"
	StepPayment    Step = "payment"
	StepAwaitAdmin Step = "await_admin"
)

// Steps lists every conversation step.
func Steps() []Step {
	return []Step{StepNone, StepFullName, StepPhone, StepAge, StepWeight, StepConfirm, StepPayment, StepAwaitAdmin}
}

// Session is the transient per-chat conversation record.
type Session struct {
	Step     Step   `json:"step"`
	FullName string `json:"full_name,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Age      int    `json:"age,omitempty"`
	Weight   int    `json:"weight,omitempty"`
	// VacancyID is the vacancy being paid for in the payment steps.
	VacancyID string `json:"vacancy_id,omitempty"`
	// PendingVacancyID is the vacancy to resume once registration completes.
	PendingVacancyID string    `json:"pending_vacancy_id,omitempty"`
	PaymentDeadline  time.Time `json:"payment_deadline,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// empty sessions carry nothing worth keeping and are deleted instead of saved.
func (s Session) empty() bool {
	return s.Step == StepNone && s.PendingVacancyID == ""
}

// restartRegistration clears the profile fields and asks for the name again.
func (s Session) restartRegistration() Session {
	return Session{Step: StepFullName, PendingVacancyID: s.PendingVacancyID}
}

func (s Session) user(chatID int64) domain.User {
	return domain.User{
		ChatID:   chatID,
		FullName: s.FullName,
		Phone:    s.Phone,
		Age:      s.Age,
		Weight:   s.Weight,
	}
}

// AdminStep is where an admin stands in an authoring dialog.
type AdminStep string

const (
	AdminIdle          AdminStep = ""
	AdminChannelAdd    AdminStep = "channel_add"
	AdminChannelRemove AdminStep = "channel_remove"

	AdminVacWhen          AdminStep = "vac_when"
	AdminVacTitle         AdminStep = "vac_title"
	AdminVacWorkersNeeded AdminStep = "vac_workers_needed"
	AdminVacWorkType      AdminStep = "vac_work_type"
	AdminVacSalary        AdminStep = "vac_salary"
	AdminVacMeal          AdminStep = "vac_meal"
	AdminVacTime          AdminStep = "vac_time"
	AdminVacAddress       AdminStep = "vac_address"
	AdminVacServiceFee    AdminStep = "vac_service_fee"
	AdminVacExtra         AdminStep = "vac_extra"
)

// AdminSession is the transient per-admin authoring record.
type AdminSession struct {
	Step      AdminStep      `json:"step"`
	Draft     domain.Vacancy `json:"draft"`
	UpdatedAt time.Time      `json:"updated_at"`
}
