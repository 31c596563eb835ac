// Package action is the typed vocabulary of inline button presses. Each
// Kind has a short wire code so the encoded data stays within the 64-byte
// callback limit even with a chat id and a vacancy UUID attached.
package action

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/vacancybot/core/telegram/callbacks"
	"github.com/m3rciful/vacancybot/core/telegram/keyboard"
)

// Kind names a button action.
type Kind string

const (
	Agree         Kind = "agree"
	Disagree      Kind = "disagree"
	Restart       Kind = "restart"
	Confirm       Kind = "confirm"
	Reenter       Kind = "reenter"
	CancelPayment Kind = "cancel_payment"
	Apply         Kind = "apply_vac"

	AdminStats         Kind = "admin_stats"
	AdminUsers         Kind = "admin_users"
	AdminChannels      Kind = "admin_channels"
	AdminChannelAdd    Kind = "admin_channel_add"
	AdminChannelRemove Kind = "admin_channel_remove"
	AdminAddVacancy    Kind = "admin_add_vacancy"
	AdminBack          Kind = "admin_back"
	AdminConfirmPay    Kind = "admin_confirm_pay"
	AdminCancelPay     Kind = "admin_cancel_pay"
)

type shape int

const (
	bare shape = iota
	withVacancy
	withApplicant
)

type spec struct {
	code  string
	shape shape
	admin bool
}

var kinds = map[Kind]spec{
	Agree:         {code: "agree"},
	Disagree:      {code: "disagree"},
	Restart:       {code: "restart"},
	Confirm:       {code: "confirm"},
	Reenter:       {code: "reenter"},
	CancelPayment: {code: "cancel_pay"},
	Apply:         {code: "apply", shape: withVacancy},

	AdminStats:         {code: "adm_stats", admin: true},
	AdminUsers:         {code: "adm_users", admin: true},
	AdminChannels:      {code: "adm_ch", admin: true},
	AdminChannelAdd:    {code: "adm_ch_add", admin: true},
	AdminChannelRemove: {code: "adm_ch_rm", admin: true},
	AdminAddVacancy:    {code: "adm_vac", admin: true},
	AdminBack:          {code: "adm_back", admin: true},
	AdminConfirmPay:    {code: "adm_pay_ok", shape: withApplicant, admin: true},
	AdminCancelPay:     {code: "adm_pay_no", shape: withApplicant, admin: true},
}

var byCode = func() map[string]Kind {
	m := make(map[string]Kind, len(kinds))
	for k, s := range kinds {
		m[s.code] = k
	}
	return m
}()

// ErrMalformed is returned for data that does not decode to a known action.
var ErrMalformed = errors.New("malformed callback")

// Action is one decoded button press.
type Action struct {
	Kind        Kind
	ApplicantID int64
	VacancyID   string
}

// Kinds lists every known kind.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	return out
}

// Code returns the wire code of k, or "" for unknown kinds.
func Code(k Kind) string {
	return kinds[k].code
}

// IsAdmin reports whether k belongs to the admin panel.
func (k Kind) IsAdmin() bool {
	return kinds[k].admin
}

func (a Action) fields() []string {
	switch kinds[a.Kind].shape {
	case withVacancy:
		return []string{a.VacancyID}
	case withApplicant:
		return []string{strconv.FormatInt(a.ApplicantID, 10), a.VacancyID}
	}
	return nil
}

// Encode returns the callback data for a, checking the size limit.
func (a Action) Encode() (string, error) {
	s, ok := kinds[a.Kind]
	if !ok {
		return "", fmt.Errorf("action: unknown kind %q", a.Kind)
	}
	return callbacks.Encode(s.code, a.fields()...)
}

// Button returns an inline button that fires a.
func (a Action) Button(text string) keyboard.InlineBtn {
	return keyboard.InlineBtn{Text: text, Unique: Code(a.Kind), Data: a.fields()}
}

// Of is shorthand for a fieldless action.
func Of(k Kind) Action {
	return Action{Kind: k}
}

// Decode parses a callback and validates its fields for the kind.
func Decode(cb *tele.Callback) (Action, error) {
	code, fields := callbacks.Parse(cb)
	kind, ok := byCode[code]
	if !ok {
		return Action{}, fmt.Errorf("%w: unknown code %q", ErrMalformed, code)
	}
	a := Action{Kind: kind}

	switch kinds[kind].shape {
	case bare:
		if len(fields) != 0 {
			return Action{}, fmt.Errorf("%w: %s takes no fields", ErrMalformed, code)
		}
	case withVacancy:
		if len(fields) != 1 || !validUUID(fields[0]) {
			return Action{}, fmt.Errorf("%w: %s wants a vacancy id", ErrMalformed, code)
		}
		a.VacancyID = fields[0]
	case withApplicant:
		if len(fields) != 2 || !validUUID(fields[1]) {
			return Action{}, fmt.Errorf("%w: %s wants chat id and vacancy id", ErrMalformed, code)
		}
		id, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil || id == 0 {
			return Action{}, fmt.Errorf("%w: %s chat id %q", ErrMalformed, code, fields[0])
		}
		a.ApplicantID, a.VacancyID = id, fields[1]
	}
	return a, nil
}

func validUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
