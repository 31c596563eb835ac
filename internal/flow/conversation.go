package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/vacancybot/core/logger"
	"github.com/m3rciful/vacancybot/internal/action"
	"github.com/m3rciful/vacancybot/internal/domain"
	"github.com/m3rciful/vacancybot/internal/storage"
	"github.com/m3rciful/vacancybot/internal/texts"
)

// Incoming is a user message reduced to what the conversation reads.
type Incoming struct {
	ChatID       int64
	Text         string
	ContactPhone string
	// PhotoFileID is the largest size of an attached photo.
	PhotoFileID string
}

type stepFunc func(c *Conversation, ctx context.Context, s Session, in Incoming) (Session, error)

// steps binds every conversation step to the function that consumes a
// message in it.
var steps = map[Step]stepFunc{
	StepNone:       (*Conversation).idle,
	StepFullName:   (*Conversation).fullName,
	StepPhone:      (*Conversation).phone,
	StepAge:        (*Conversation).age,
	StepWeight:     (*Conversation).weight,
	StepConfirm:    (*Conversation).confirmText,
	StepPayment:    (*Conversation).payment,
	StepAwaitAdmin: (*Conversation).awaitAdmin,
}

// Conversation is the per-chat registration and payment state machine.
type Conversation struct {
	d Deps
}

// NewConversation builds the engine.
func NewConversation(d Deps) *Conversation {
	d.normalize()
	return &Conversation{d: d}
}

func (c *Conversation) load(ctx context.Context, chatID int64) (Session, error) {
	s, _, err := c.d.Sessions.Get(ctx, chatID)
	if err != nil {
		return Session{}, fmt.Errorf("load session %d: %w", chatID, err)
	}
	return s, nil
}

func (c *Conversation) save(ctx context.Context, chatID int64, s Session) error {
	if s.empty() {
		if err := c.d.Sessions.Delete(ctx, chatID); err != nil {
			return fmt.Errorf("delete session %d: %w", chatID, err)
		}
		return nil
	}
	s.UpdatedAt = c.d.Now()
	if err := c.d.Sessions.Set(ctx, chatID, s); err != nil {
		return fmt.Errorf("save session %d: %w", chatID, err)
	}
	return nil
}

func (c *Conversation) say(ctx context.Context, chatID int64, m texts.Message) {
	c.d.say(ctx, logger.CompReg, chatID, m)
}

// registered returns the stored user; ok is false for unregistered chats.
func (c *Conversation) registered(ctx context.Context, chatID int64) (domain.User, bool, error) {
	u, err := c.d.Store.UserByChatID(ctx, chatID)
	switch {
	case err == nil:
		return u, true, nil
	case errors.Is(err, domain.ErrNotFound):
		return domain.User{}, false, nil
	default:
		return domain.User{}, false, err
	}
}

// Start handles /start with an optional argument.
func (c *Conversation) Start(ctx context.Context, chatID int64, arg string) error {
	arg = strings.TrimSpace(arg)
	if id, ok := strings.CutPrefix(arg, texts.DeepLinkPrefix); ok {
		if err := c.openVacancy(ctx, chatID, id, false); !errors.Is(err, errVacancyGone) {
			return err
		}
		return nil
	}

	if err := c.d.Sessions.Delete(ctx, chatID); err != nil {
		return fmt.Errorf("reset session %d: %w", chatID, err)
	}
	u, ok, err := c.registered(ctx, chatID)
	if err != nil {
		c.failed(ctx, chatID, "start.lookup", err)
		return nil
	}
	if ok {
		c.say(ctx, chatID, texts.MainMenu(u.FullName))
		return nil
	}
	c.say(ctx, chatID, texts.Offer(false))
	return nil
}

// openVacancy starts an application for id from a deep link or an apply
// button. fromButton only changes how a missing vacancy is reported.
func (c *Conversation) openVacancy(ctx context.Context, chatID int64, id string, fromButton bool) error {
	v, err := c.d.Store.VacancyByID(ctx, id)
	if err != nil || !v.Active() {
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			logger.Error(ctx, logger.CompPayment, "vacancy.lookup",
				slog.String("status", "fail"),
				slog.String("vacancy_id", id),
				logger.Err(err),
			)
		}
		if !fromButton {
			c.say(ctx, chatID, texts.Plain(texts.VacancyGoneText))
		}
		return errVacancyGone
	}

	_, ok, err := c.registered(ctx, chatID)
	if err != nil {
		c.failed(ctx, chatID, "apply.lookup", err)
		return nil
	}
	if !ok {
		if err := c.save(ctx, chatID, Session{PendingVacancyID: v.ID}); err != nil {
			return err
		}
		logger.Info(ctx, logger.CompPayment, "payment.deferred",
			slog.Int64("chat_id", chatID),
			slog.String("vacancy_id", v.ID),
		)
		c.say(ctx, chatID, texts.Offer(true))
		return nil
	}
	return c.enterPayment(ctx, chatID, v)
}

var errVacancyGone = errors.New("vacancy missing or inactive")

func (c *Conversation) enterPayment(ctx context.Context, chatID int64, v domain.Vacancy) error {
	s := Session{
		Step:            StepPayment,
		VacancyID:       v.ID,
		PaymentDeadline: c.d.Now().Add(c.d.Settings.PaymentWindow),
	}
	if err := c.save(ctx, chatID, s); err != nil {
		return err
	}
	logger.Info(ctx, logger.CompPayment, "payment.start",
		slog.Int64("chat_id", chatID),
		slog.String("vacancy_id", v.ID),
		slog.Time("deadline", s.PaymentDeadline),
	)
	c.d.say(ctx, logger.CompPayment, chatID, texts.PaymentPrompt(v, c.d.Settings.Contacts.Card, c.d.Settings.PaymentWindow))
	return nil
}

func (c *Conversation) failed(ctx context.Context, chatID int64, event string, err error) {
	logger.Error(ctx, logger.CompReg, event,
		slog.String("status", "fail"),
		slog.Int64("chat_id", chatID),
		logger.Err(err),
	)
	c.say(ctx, chatID, texts.Plain(texts.GenericFailure))
}

// HandleMessage feeds a text, contact or photo message to the chat's step.
func (c *Conversation) HandleMessage(ctx context.Context, in Incoming) error {
	s, err := c.load(ctx, in.ChatID)
	if err != nil {
		return err
	}
	if texts.IsMenuButton(in.Text) && (s.Step == StepNone || s.Step == StepAwaitAdmin) {
		c.menu(ctx, in.ChatID, in.Text)
		return nil
	}

	fn, ok := steps[s.Step]
	if !ok {
		logger.Warn(ctx, logger.CompReg, "session.step",
			slog.String("status", "skip"),
			slog.String("step", string(s.Step)),
		)
		return c.save(ctx, in.ChatID, Session{})
	}
	next, err := fn(c, ctx, s, in)
	if err != nil {
		return err
	}
	return c.save(ctx, in.ChatID, next)
}

func (c *Conversation) idle(ctx context.Context, s Session, in Incoming) (Session, error) {
	logger.Debug(ctx, logger.CompReg, "message.ignored",
		slog.Int64("chat_id", in.ChatID),
	)
	return s, nil
}

func (c *Conversation) fullName(ctx context.Context, s Session, in Incoming) (Session, error) {
	name, ok := domain.NormalizeFullName(in.Text)
	if !ok {
		c.say(ctx, in.ChatID, texts.Plain(texts.BadFullName))
		return s, nil
	}
	s.FullName = name
	s.Step = StepPhone
	c.say(ctx, in.ChatID, texts.AskPhone())
	return s, nil
}

func (c *Conversation) phone(ctx context.Context, s Session, in Incoming) (Session, error) {
	raw := in.ContactPhone
	if raw == "" {
		raw = in.Text
	}
	phone, ok := domain.NormalizePhone(raw)
	if !ok {
		c.say(ctx, in.ChatID, texts.Plain(texts.BadPhone))
		return s, nil
	}
	s.Phone = phone
	s.Step = StepAge
	c.say(ctx, in.ChatID, texts.AskAge())
	return s, nil
}

func (c *Conversation) age(ctx context.Context, s Session, in Incoming) (Session, error) {
	age, ok := domain.ParseAge(in.Text)
	if !ok {
		c.say(ctx, in.ChatID, texts.Plain(texts.BadAge))
		return s, nil
	}
	s.Age = age
	s.Step = StepWeight
	c.say(ctx, in.ChatID, texts.Plain(texts.AskWeight))
	return s, nil
}

func (c *Conversation) weight(ctx context.Context, s Session, in Incoming) (Session, error) {
	w, ok := domain.ParseWeight(in.Text)
	if !ok {
		c.say(ctx, in.ChatID, texts.Plain(texts.BadWeight))
		return s, nil
	}
	s.Weight = w
	s.Step = StepConfirm
	c.say(ctx, in.ChatID, texts.Summary(s.FullName, s.Phone, s.Age, s.Weight))
	return s, nil
}

func (c *Conversation) confirmText(ctx context.Context, s Session, in Incoming) (Session, error) {
	c.say(ctx, in.ChatID, texts.Summary(s.FullName, s.Phone, s.Age, s.Weight))
	return s, nil
}

func (c *Conversation) payment(ctx context.Context, s Session, in Incoming) (Session, error) {
	if !s.PaymentDeadline.IsZero() && c.d.Now().After(s.PaymentDeadline) {
		logger.Info(ctx, logger.CompPayment, "payment.expired",
			slog.Int64("chat_id", in.ChatID),
			slog.String("vacancy_id", s.VacancyID),
		)
		c.d.say(ctx, logger.CompPayment, in.ChatID, texts.Message{
			Text:   texts.PaymentExpired,
			Markup: texts.MainMenu("").Markup,
		})
		return Session{}, nil
	}
	if in.PhotoFileID == "" {
		c.d.say(ctx, logger.CompPayment, in.ChatID, texts.Plain(texts.PhotoOnly))
		return s, nil
	}

	s.Step = StepAwaitAdmin
	c.d.say(ctx, logger.CompPayment, in.ChatID, texts.Plain(texts.ReceiptSent))
	c.relayReceipt(ctx, in.ChatID, s.VacancyID, in.PhotoFileID)
	return s, nil
}

// relayReceipt forwards the receipt photo to every admin with the decision buttons.
func (c *Conversation) relayReceipt(ctx context.Context, applicantID int64, vacancyID, fileID string) {
	m := texts.ReceiptButtons(applicantID, vacancyID)
	for _, admin := range c.d.Settings.AdminIDs {
		photo := &tele.Photo{File: tele.File{FileID: fileID}, Caption: m.Text}
		_, err := c.d.Bot.Send(tele.ChatID(admin), photo, sendOptions(m))
		attrs := []slog.Attr{
			slog.String("status", logger.Status(err)),
			slog.Int64("admin_id", admin),
			slog.Int64("applicant_id", applicantID),
			slog.String("vacancy_id", vacancyID),
		}
		if err != nil {
			logger.Warn(ctx, logger.CompPayment, "receipt.relay", append(attrs, logger.Err(err))...)
			continue
		}
		logger.Info(ctx, logger.CompPayment, "receipt.relay", attrs...)
	}
}

func (c *Conversation) awaitAdmin(ctx context.Context, s Session, in Incoming) (Session, error) {
	c.d.say(ctx, logger.CompPayment, in.ChatID, texts.Plain(texts.AwaitingAdmin))
	return s, nil
}

// menu answers a reply keyboard button. Every item requires channel membership.
func (c *Conversation) menu(ctx context.Context, chatID int64, item string) {
	if !c.d.isMember(ctx, chatID) {
		ch := c.d.Settings.Channel
		c.say(ctx, chatID, texts.Subscribe(ch.Recipient(), ch.Link()))
		return
	}

	switch item {
	case texts.BtnApplications:
		list, err := c.d.Store.ApplicationsByApplicant(ctx, chatID, storage.ApplicationsListLimit)
		if err != nil {
			logger.Error(ctx, logger.CompReg, "applications.list",
				slog.String("status", "fail"),
				slog.Int64("chat_id", chatID),
				logger.Err(err),
			)
			c.say(ctx, chatID, texts.Plain(texts.ApplicationsFailed))
			return
		}
		c.say(ctx, chatID, texts.Applications(list))
	case texts.BtnInfo:
		c.say(ctx, chatID, texts.Info())
	case texts.BtnSupport:
		c.say(ctx, chatID, texts.Support(c.d.Settings.Contacts))
	case texts.BtnMainMenu:
		u, _, err := c.registered(ctx, chatID)
		if err != nil {
			logger.Warn(ctx, logger.CompReg, "user.lookup",
				slog.String("status", "fail"),
				logger.Err(err),
			)
		}
		c.say(ctx, chatID, texts.MainMenu(u.FullName))
	}
}

// HandleCallback runs a button press and returns the acknowledgment text.
func (c *Conversation) HandleCallback(ctx context.Context, chatID int64, a action.Action) (string, error) {
	switch a.Kind {
	case action.Agree:
		s, err := c.load(ctx, chatID)
		if err != nil {
			return "", err
		}
		if err := c.save(ctx, chatID, s.restartRegistration()); err != nil {
			return "", err
		}
		c.say(ctx, chatID, texts.Plain(texts.AskFullName))
		return "", nil

	case action.Disagree:
		c.say(ctx, chatID, texts.Rejected())
		return "", nil

	case action.Restart:
		c.say(ctx, chatID, texts.Offer(false))
		return "", nil

	case action.Confirm:
		return c.confirm(ctx, chatID)

	case action.Reenter:
		s, err := c.load(ctx, chatID)
		if err != nil {
			return "", err
		}
		if err := c.save(ctx, chatID, s.restartRegistration()); err != nil {
			return "", err
		}
		c.say(ctx, chatID, texts.Plain(texts.ReenterText))
		return "", nil

	case action.CancelPayment:
		if err := c.d.Sessions.Delete(ctx, chatID); err != nil {
			return "", fmt.Errorf("delete session %d: %w", chatID, err)
		}
		logger.Info(ctx, logger.CompPayment, "payment.cancelled",
			slog.Int64("chat_id", chatID),
		)
		c.d.say(ctx, logger.CompPayment, chatID, texts.Message{
			Text:   texts.PaymentCancelled,
			Markup: texts.MainMenu("").Markup,
		})
		return texts.AckPaymentCancelled, nil

	case action.Apply:
		err := c.openVacancy(ctx, chatID, a.VacancyID, true)
		if errors.Is(err, errVacancyGone) {
			return texts.AckVacancyGone, nil
		}
		return "", err
	}
	return texts.AckUnsupported, nil
}

func (c *Conversation) confirm(ctx context.Context, chatID int64) (string, error) {
	s, err := c.load(ctx, chatID)
	if err != nil {
		return "", err
	}
	if s.Step != StepConfirm {
		return texts.SessionExpired, nil
	}

	u := s.user(chatID)
	if err := domain.ValidateUser(u); err != nil {
		logger.Warn(ctx, logger.CompReg, "registration.validate",
			slog.String("status", "fail"),
			logger.Err(err),
		)
		if err := c.save(ctx, chatID, s.restartRegistration()); err != nil {
			return "", err
		}
		c.say(ctx, chatID, texts.Plain(texts.ReenterText))
		return "", nil
	}

	err = c.d.Store.CreateUser(ctx, u)
	switch {
	case errors.Is(err, domain.ErrDuplicate):
		existing, _, lookupErr := c.registered(ctx, chatID)
		if lookupErr != nil {
			existing = u
		}
		if err := c.save(ctx, chatID, Session{}); err != nil {
			return "", err
		}
		c.say(ctx, chatID, texts.MainMenu(existing.FullName))
		return "", nil
	case err != nil:
		c.failed(ctx, chatID, "registration.save", err)
		return "", nil
	}

	logger.Info(ctx, logger.CompReg, "registration.done",
		slog.String("status", "ok"),
		slog.Int64("chat_id", chatID),
	)
	if err := c.save(ctx, chatID, Session{}); err != nil {
		return "", err
	}
	c.say(ctx, chatID, texts.Plain(texts.Registered(u.FullName)))
	c.say(ctx, chatID, texts.MainMenu(u.FullName))

	if s.PendingVacancyID == "" {
		return "", nil
	}
	v, err := c.d.Store.VacancyByID(ctx, s.PendingVacancyID)
	if err != nil || !v.Active() {
		c.say(ctx, chatID, texts.Plain(texts.VacancyGoneText))
		return "", nil
	}
	return "", c.enterPayment(ctx, chatID, v)
}
