package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/vacancybot/core/logger"
	"github.com/m3rciful/vacancybot/internal/action"
	"github.com/m3rciful/vacancybot/internal/domain"
	"github.com/m3rciful/vacancybot/internal/storage"
	"github.com/m3rciful/vacancybot/internal/texts"
)

// draftField is one prompt of the vacancy authoring dialog.
type draftField struct {
	step   AdminStep
	prompt string
	// set stores text on the draft; false asks for the field again.
	set func(v *domain.Vacancy, text string) bool
}

func verbatim(dst func(v *domain.Vacancy) *string) func(*domain.Vacancy, string) bool {
	return func(v *domain.Vacancy, text string) bool {
		*dst(v) = text
		return true
	}
}

var draftFields = []draftField{
	{AdminVacWhen, texts.AskWhen, verbatim(func(v *domain.Vacancy) *string { return &v.When })},
	{AdminVacTitle, texts.AskTitle, verbatim(func(v *domain.Vacancy) *string { return &v.Title })},
	{AdminVacWorkersNeeded, texts.AskWorkersNeeded, func(v *domain.Vacancy, text string) bool {
		n, ok := domain.ParsePositive(text)
		v.WorkersNeeded = n
		return ok
	}},
	{AdminVacWorkType, texts.AskWorkType, verbatim(func(v *domain.Vacancy) *string { return &v.WorkType })},
	{AdminVacSalary, texts.AskSalary, verbatim(func(v *domain.Vacancy) *string { return &v.Salary })},
	{AdminVacMeal, texts.AskMeal, verbatim(func(v *domain.Vacancy) *string { return &v.Meal })},
	{AdminVacTime, texts.AskTime, verbatim(func(v *domain.Vacancy) *string { return &v.Time })},
	{AdminVacAddress, texts.AskAddress, verbatim(func(v *domain.Vacancy) *string { return &v.Address })},
	{AdminVacServiceFee, texts.AskServiceFee, verbatim(func(v *domain.Vacancy) *string { return &v.ServiceFee })},
	{AdminVacExtra, texts.AskExtra, verbatim(func(v *domain.Vacancy) *string { return &v.Extra })},
}

func draftIndex(step AdminStep) int {
	for i, f := range draftFields {
		if f.step == step {
			return i
		}
	}
	return -1
}

// Admin is the admin panel and payment decision engine.
type Admin struct {
	d Deps
}

// NewAdmin builds the engine.
func NewAdmin(d Deps) *Admin {
	d.normalize()
	return &Admin{d: d}
}

// IsAdmin reports whether chatID is a configured admin.
func (a *Admin) IsAdmin(chatID int64) bool {
	return a.d.isAdmin(chatID)
}

func (a *Admin) say(ctx context.Context, chatID int64, m texts.Message) {
	a.d.say(ctx, logger.CompAdmin, chatID, m)
}

func (a *Admin) setSession(ctx context.Context, chatID int64, s AdminSession) error {
	s.UpdatedAt = a.d.Now()
	if err := a.d.AdminSessions.Set(ctx, chatID, s); err != nil {
		return fmt.Errorf("save admin session %d: %w", chatID, err)
	}
	return nil
}

func (a *Admin) clearSession(ctx context.Context, chatID int64) error {
	if err := a.d.AdminSessions.Delete(ctx, chatID); err != nil {
		return fmt.Errorf("delete admin session %d: %w", chatID, err)
	}
	return nil
}

// Panel shows the admin home screen.
func (a *Admin) Panel(ctx context.Context, chatID int64) error {
	a.say(ctx, chatID, texts.AdminPanel())
	return nil
}

// HandleMessage consumes text typed during an authoring dialog. handled is
// false when the chat is not an admin or has no dialog open.
func (a *Admin) HandleMessage(ctx context.Context, chatID int64, text string) (bool, error) {
	if !a.IsAdmin(chatID) {
		return false, nil
	}
	s, ok, err := a.d.AdminSessions.Get(ctx, chatID)
	if err != nil {
		return false, fmt.Errorf("load admin session %d: %w", chatID, err)
	}
	if !ok || s.Step == AdminIdle {
		return false, nil
	}
	text = strings.TrimSpace(text)

	switch s.Step {
	case AdminChannelAdd, AdminChannelRemove:
		if text == "" {
			return true, nil
		}
		reply := texts.ChannelAdded(text)
		if s.Step == AdminChannelRemove {
			reply = texts.ChannelRemoved(text)
		}
		logger.Info(ctx, logger.CompAdmin, "channel."+string(s.Step),
			slog.Int64("chat_id", chatID),
			slog.String("channel", text),
		)
		a.say(ctx, chatID, texts.Plain(reply))
		return true, a.clearSession(ctx, chatID)
	}

	i := draftIndex(s.Step)
	if i < 0 {
		logger.Warn(ctx, logger.CompAdmin, "session.step",
			slog.String("status", "skip"),
			slog.String("step", string(s.Step)),
		)
		return true, a.clearSession(ctx, chatID)
	}
	field := draftFields[i]
	if text == "" || !field.set(&s.Draft, text) {
		if field.step == AdminVacWorkersNeeded {
			a.say(ctx, chatID, texts.Plain(texts.BadWorkersNeeded))
		} else {
			a.say(ctx, chatID, texts.Plain(field.prompt))
		}
		return true, nil
	}

	if i+1 < len(draftFields) {
		s.Step = draftFields[i+1].step
		if err := a.setSession(ctx, chatID, s); err != nil {
			return true, err
		}
		a.say(ctx, chatID, texts.Plain(draftFields[i+1].prompt))
		return true, nil
	}

	a.publish(ctx, chatID, s.Draft)
	return true, a.clearSession(ctx, chatID)
}

// publish stores the draft and announces it in the required channel.
func (a *Admin) publish(ctx context.Context, chatID int64, draft domain.Vacancy) {
	v, err := a.d.Store.CreateVacancy(ctx, draft)
	if err != nil {
		logger.Error(ctx, logger.CompAdmin, "vacancy.create",
			slog.String("status", "fail"),
			logger.Err(err),
		)
		a.say(ctx, chatID, texts.Plain(texts.VacancyFailed))
		return
	}

	msg, err := a.d.send(ctx, logger.CompAdmin, a.d.Settings.Channel, texts.VacancyPost(v, a.d.Settings.BotUsername))
	if err != nil {
		a.say(ctx, chatID, texts.Plain(texts.VacancyFailed))
		return
	}
	if msg != nil && msg.Chat != nil {
		if err := a.d.Store.SetChannelPost(ctx, v.ID, msg.Chat.ID, int64(msg.ID)); err != nil {
			logger.Error(ctx, logger.CompAdmin, "vacancy.channel_post",
				slog.String("status", "fail"),
				slog.String("vacancy_id", v.ID),
				logger.Err(err),
			)
		}
	}
	logger.Info(ctx, logger.CompAdmin, "vacancy.published",
		slog.String("status", "ok"),
		slog.String("vacancy_id", v.ID),
		slog.Int("workers_needed", v.WorkersNeeded),
	)
	a.say(ctx, chatID, texts.Plain(texts.VacancyPublished))
}

// HandleCallback runs an admin button press. handled is false for kinds
// outside the admin panel, which belong to the conversation. origin is the
// message carrying the pressed button, if any.
func (a *Admin) HandleCallback(ctx context.Context, chatID int64, act action.Action, origin tele.Editable) (ack string, handled bool, err error) {
	if !act.Kind.IsAdmin() {
		return "", false, nil
	}
	if !a.IsAdmin(chatID) {
		return texts.UnknownCommand, true, nil
	}

	switch act.Kind {
	case action.AdminBack:
		if err := a.clearSession(ctx, chatID); err != nil {
			return "", true, err
		}
		a.say(ctx, chatID, texts.AdminPanel())
	case action.AdminStats:
		return "", true, a.stats(ctx, chatID)
	case action.AdminUsers:
		users, err := a.d.Store.ListUsers(ctx, storage.UsersListLimit)
		if err != nil {
			return texts.GenericFailure, true, fmt.Errorf("list users: %w", err)
		}
		a.say(ctx, chatID, texts.Users(users))
	case action.AdminChannels:
		a.say(ctx, chatID, texts.Channels())
	case action.AdminChannelAdd:
		if err := a.setSession(ctx, chatID, AdminSession{Step: AdminChannelAdd}); err != nil {
			return "", true, err
		}
		a.say(ctx, chatID, texts.Plain(texts.AskChannelAdd))
	case action.AdminChannelRemove:
		if err := a.setSession(ctx, chatID, AdminSession{Step: AdminChannelRemove}); err != nil {
			return "", true, err
		}
		a.say(ctx, chatID, texts.Plain(texts.AskChannelRemove))
	case action.AdminAddVacancy:
		if err := a.setSession(ctx, chatID, AdminSession{Step: draftFields[0].step}); err != nil {
			return "", true, err
		}
		a.say(ctx, chatID, texts.Plain(draftFields[0].prompt))
	case action.AdminConfirmPay:
		ack, err := a.approve(ctx, chatID, act.ApplicantID, act.VacancyID, origin)
		return ack, true, err
	case action.AdminCancelPay:
		ack, err := a.reject(ctx, act.ApplicantID, act.VacancyID)
		return ack, true, err
	}
	return "", true, nil
}

func (a *Admin) stats(ctx context.Context, chatID int64) error {
	users, err := a.d.Store.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	active, err := a.d.Store.CountVacancies(ctx, domain.VacancyActive)
	if err != nil {
		return fmt.Errorf("count active vacancies: %w", err)
	}
	finished, err := a.d.Store.CountVacancies(ctx, domain.VacancyDone, domain.VacancyClosed)
	if err != nil {
		return fmt.Errorf("count finished vacancies: %w", err)
	}
	a.say(ctx, chatID, texts.Stats(users, active, finished))
	return nil
}

// approve confirms an applicant's payment: it records the application once,
// notifies both sides, takes a seat and closes the channel post when the
// last seat is gone.
func (a *Admin) approve(ctx context.Context, adminID, applicantID int64, vacancyID string, origin tele.Editable) (string, error) {
	attrs := []slog.Attr{
		slog.Int64("applicant_id", applicantID),
		slog.String("vacancy_id", vacancyID),
	}

	v, err := a.d.Store.VacancyByID(ctx, vacancyID)
	if errors.Is(err, domain.ErrNotFound) {
		return texts.AckVacancyNotFound, nil
	}
	if err != nil {
		return texts.GenericFailure, fmt.Errorf("load vacancy %s: %w", vacancyID, err)
	}

	var applicant *domain.User
	if u, err := a.d.Store.UserByChatID(ctx, applicantID); err == nil {
		applicant = &u
	} else if !errors.Is(err, domain.ErrNotFound) {
		logger.Warn(ctx, logger.CompAdmin, "applicant.lookup",
			append(attrs, slog.String("status", "fail"), logger.Err(err))...)
	}

	created, err := a.d.Store.CreateApplication(ctx, applicantID, v.ID)
	switch {
	case err != nil:
		logger.Error(ctx, logger.CompAdmin, "application.create",
			append(attrs, slog.String("status", "fail"), logger.Err(err))...)
	case !created:
		logger.Info(ctx, logger.CompAdmin, "payment.approve",
			append(attrs, slog.String("status", "skip"), slog.String("reason", "already_confirmed"))...)
		return texts.AckAlreadyConfirmed, nil
	}

	updated, changed, err := a.d.Store.ReserveSeat(ctx, v.ID)
	if err != nil {
		a.dropApplication(ctx, created, applicantID, v.ID)
		return texts.GenericFailure, fmt.Errorf("reserve seat %s: %w", v.ID, err)
	}
	if !changed {
		return a.refuseFull(ctx, created, applicantID, updated, origin, attrs)
	}

	a.d.say(ctx, logger.CompAdmin, applicantID, texts.Plain(texts.PaymentApproved(a.d.Settings.Contacts.Handoff)))
	a.say(ctx, adminID, texts.Plain(texts.ApplicantRegistered(applicant, applicantID, v.Title)))

	if !updated.Active() && updated.Published() {
		a.closePost(ctx, updated)
	}
	a.updateReceipt(ctx, origin, updated)

	if err := a.clearApplicant(ctx, applicantID, v.ID); err != nil {
		return texts.AckApproved, err
	}
	logger.Info(ctx, logger.CompAdmin, "payment.approve",
		append(attrs,
			slog.String("status", "ok"),
			slog.Int("workers_needed", updated.WorkersNeeded),
			slog.String("vacancy_status", string(updated.Status)),
		)...)
	return texts.AckApproved, nil
}

// refuseFull handles an approval that came after the last seat was taken:
// the application is rolled back and the applicant told there is no room.
func (a *Admin) refuseFull(ctx context.Context, created bool, applicantID int64, v domain.Vacancy, origin tele.Editable, attrs []slog.Attr) (string, error) {
	a.dropApplication(ctx, created, applicantID, v.ID)
	a.d.say(ctx, logger.CompAdmin, applicantID, texts.Plain(texts.SeatsTaken))
	a.updateReceipt(ctx, origin, v)
	logger.Info(ctx, logger.CompAdmin, "payment.approve",
		append(attrs,
			slog.String("status", "skip"),
			slog.String("reason", "vacancy_full"),
			slog.String("vacancy_status", string(v.Status)),
		)...)
	if err := a.clearApplicant(ctx, applicantID, v.ID); err != nil {
		return texts.AckVacancyFull, err
	}
	return texts.AckVacancyFull, nil
}

// dropApplication undoes an application this approval created.
func (a *Admin) dropApplication(ctx context.Context, created bool, applicantID int64, vacancyID string) {
	if !created {
		return
	}
	if err := a.d.Store.DeleteApplication(ctx, applicantID, vacancyID); err != nil {
		logger.Error(ctx, logger.CompAdmin, "application.rollback",
			slog.Int64("applicant_id", applicantID),
			slog.String("vacancy_id", vacancyID),
			slog.String("status", "fail"),
			logger.Err(err),
		)
	}
}

// updateReceipt swaps the decided receipt's buttons.
func (a *Admin) updateReceipt(ctx context.Context, origin tele.Editable, v domain.Vacancy) {
	if origin == nil {
		return
	}
	markup := texts.DecidedReceiptButtons(v)
	a.d.bestEffort(ctx, logger.CompAdmin, "receipt.buttons", "editMessageReplyMarkup", func() error {
		_, err := a.d.Bot.EditReplyMarkup(origin, markup)
		return err
	})
}

// closePost rewrites the channel announcement with the closed banner and no button.
func (a *Admin) closePost(ctx context.Context, v domain.Vacancy) {
	post := tele.StoredMessage{
		MessageID: strconv.FormatInt(*v.ChannelMessageID, 10),
		ChatID:    *v.ChannelChatID,
	}
	m := texts.ClosedPost(v)
	a.d.bestEffort(ctx, logger.CompAdmin, "vacancy.close_post", "editMessageText", func() error {
		_, err := a.d.Bot.Edit(post, m.Text, sendOptions(m))
		return err
	})
}

func (a *Admin) reject(ctx context.Context, applicantID int64, vacancyID string) (string, error) {
	a.d.say(ctx, logger.CompAdmin, applicantID, texts.Plain(texts.PaymentRejected))
	logger.Info(ctx, logger.CompAdmin, "payment.reject",
		slog.Int64("applicant_id", applicantID),
		slog.String("vacancy_id", vacancyID),
	)
	if err := a.clearApplicant(ctx, applicantID, vacancyID); err != nil {
		return texts.AckRejected, err
	}
	return texts.AckRejected, nil
}

// clearApplicant drops the applicant's session if it is still waiting on
// this vacancy. A session that moved on to something else is left alone.
func (a *Admin) clearApplicant(ctx context.Context, applicantID int64, vacancyID string) error {
	s, ok, err := a.d.Sessions.Get(ctx, applicantID)
	if err != nil {
		return fmt.Errorf("load session %d: %w", applicantID, err)
	}
	if !ok || s.Step != StepAwaitAdmin || s.VacancyID != vacancyID {
		return nil
	}
	if err := a.d.Sessions.Delete(ctx, applicantID); err != nil {
		return fmt.Errorf("delete session %d: %w", applicantID, err)
	}
	return nil
}
