package flow

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/vacancybot/internal/action"
	"github.com/m3rciful/vacancybot/internal/domain"
	"github.com/m3rciful/vacancybot/internal/texts"
)

func press(t *testing.T, h *harness, act action.Action, origin tele.Editable) string {
	t.Helper()
	ack, handled, err := h.admin.HandleCallback(context.Background(), adminID, act, origin)
	require.NoError(t, err)
	require.True(t, handled)
	return ack
}

func approveAction(applicant int64, vacancyID string) action.Action {
	return action.Action{Kind: action.AdminConfirmPay, ApplicantID: applicant, VacancyID: vacancyID}
}

func TestAuthorVacancyPublishesToChannel(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	press(t, h, action.Of(action.AdminAddVacancy), nil)
	assert.Equal(t, texts.AskWhen, h.bot.last(t, adminID).text)

	answers := []string{"Ertaga", " Ish #1800 ", "ikki", "2", "Yuk tushirish", "250 000", "Bor", "08:00-18:00", "Chilonzor", "20 000", "—"}
	for _, text := range answers {
		handled, err := h.admin.HandleMessage(ctx, adminID, text)
		require.NoError(t, err)
		require.True(t, handled)
		if text == "ikki" {
			assert.Equal(t, texts.BadWorkersNeeded, h.bot.last(t, adminID).text)
		}
	}
	assert.Equal(t, texts.VacancyPublished, h.bot.last(t, adminID).text)

	_, ok, err := h.admins.Get(ctx, adminID)
	require.NoError(t, err)
	assert.False(t, ok, "admin session is deleted after publishing")

	var post sentMessage
	for _, m := range h.bot.sent {
		if m.to == channelName {
			post = m
		}
	}
	require.NotEmpty(t, post.text)
	assert.Contains(t, post.text, "🌟 Ish #1800\n🫂 2 nafar ishchi kerak")
	assert.Contains(t, post.markup.InlineKeyboard[0][0].URL, "https://t.me/ish_bot?start=vac_")

	active, err := h.store.CountVacancies(ctx, domain.VacancyActive)
	require.NoError(t, err)
	require.Equal(t, 1, active)
}

func TestAdminMessageWithoutDialogIsNotHandled(t *testing.T) {
	h := newHarness(t)
	handled, err := h.admin.HandleMessage(context.Background(), adminID, "salom")
	require.NoError(t, err)
	assert.False(t, handled)

	handled, err = h.admin.HandleMessage(context.Background(), userID, "salom")
	require.NoError(t, err)
	assert.False(t, handled)
}

func TestChannelStubAcknowledges(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	press(t, h, action.Of(action.AdminChannelAdd), nil)
	handled, err := h.admin.HandleMessage(ctx, adminID, "@yangi_kanal")
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, texts.ChannelAdded("@yangi_kanal"), h.bot.last(t, adminID).text)

	press(t, h, action.Of(action.AdminChannelRemove), nil)
	_, err = h.admin.HandleMessage(ctx, adminID, "@yangi_kanal")
	require.NoError(t, err)
	assert.Equal(t, texts.ChannelRemoved("@yangi_kanal"), h.bot.last(t, adminID).text)

	_, ok, err := h.admins.Get(ctx, adminID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStatsAndUsers(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, 1, "Aliyev Hamza")
	h.register(t, 2, "Karimov Bobur")
	h.vacancy(t, 1)
	closed := h.vacancy(t, 1)
	_, _, err := h.store.ReserveSeat(ctx, closed.ID)
	require.NoError(t, err)

	press(t, h, action.Of(action.AdminStats), nil)
	assert.Equal(t, texts.Stats(2, 1, 1).Text, h.bot.last(t, adminID).text)

	press(t, h, action.Of(action.AdminUsers), nil)
	last := h.bot.last(t, adminID).text
	assert.Contains(t, last, "Aliyev Hamza — +998901234567")
	assert.Contains(t, last, "Karimov Bobur — +998901234567")
}

func TestApproveClosesVacancyOnLastSeat(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	v := h.vacancy(t, 2)
	require.NoError(t, h.store.SetChannelPost(ctx, v.ID, channelChat, 77))
	origin := &tele.Message{ID: 5, Chat: &tele.Chat{ID: adminID}}

	h.register(t, 1, "Aliyev Hamza")
	assert.Equal(t, texts.AckApproved, press(t, h, approveAction(1, v.ID), origin))
	got, err := h.store.VacancyByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.WorkersNeeded)
	assert.Equal(t, domain.VacancyActive, got.Status)
	assert.Empty(t, h.bot.edits, "post stays while seats remain")
	require.Len(t, h.bot.markupEdits, 1)
	assert.Equal(t, action.Code(action.Apply), h.bot.markupEdits[0].markup.InlineKeyboard[0][0].Unique)

	assert.Equal(t, texts.AckApproved, press(t, h, approveAction(2, v.ID), origin))
	got, err = h.store.VacancyByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.WorkersNeeded)
	assert.Equal(t, domain.VacancyClosed, got.Status)

	require.Len(t, h.bot.edits, 1)
	edit := h.bot.edits[0]
	msgID, chatID := edit.msg.MessageSig()
	assert.Equal(t, strconv.Itoa(77), msgID)
	assert.Equal(t, channelChat, chatID)
	assert.Contains(t, edit.text, "🟥 Holat: Yopiq")
	assert.Empty(t, edit.markup.InlineKeyboard)

	require.Len(t, h.bot.markupEdits, 2)
	assert.Empty(t, h.bot.markupEdits[1].markup.InlineKeyboard)

	assert.Equal(t, texts.PaymentApproved(texts.DefaultContacts.Handoff), h.bot.last(t, 2).text)
}

func TestApproveRefusesWhenSeatsRunOut(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	v := h.vacancy(t, 1)
	require.NoError(t, h.store.SetChannelPost(ctx, v.ID, channelChat, 77))
	origin := &tele.Message{ID: 5, Chat: &tele.Chat{ID: adminID}}
	for _, id := range []int64{1, 2} {
		require.NoError(t, h.sessions.Set(ctx, id, Session{Step: StepAwaitAdmin, VacancyID: v.ID}))
	}

	assert.Equal(t, texts.AckApproved, press(t, h, approveAction(1, v.ID), origin))
	adminMsgs := len(h.bot.to(adminID))

	assert.Equal(t, texts.AckVacancyFull, press(t, h, approveAction(2, v.ID), origin))

	apps, err := h.store.ApplicationsByApplicant(ctx, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, apps, "refused application is rolled back")
	apps, err = h.store.ApplicationsByApplicant(ctx, 1, 10)
	require.NoError(t, err)
	assert.Len(t, apps, 1)

	got, err := h.store.VacancyByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.WorkersNeeded)
	assert.Equal(t, domain.VacancyClosed, got.Status)

	for _, m := range h.bot.to(2) {
		assert.NotEqual(t, texts.PaymentApproved(texts.DefaultContacts.Handoff), m.text)
	}
	assert.Equal(t, texts.SeatsTaken, h.bot.last(t, 2).text)
	assert.Len(t, h.bot.to(adminID), adminMsgs, "no applicant summary for a refused approval")
	assert.Len(t, h.bot.edits, 1, "channel post closed once")
	require.Len(t, h.bot.markupEdits, 2)
	assert.Empty(t, h.bot.markupEdits[1].markup.InlineKeyboard)

	_, ok := h.session(t, 2)
	assert.False(t, ok)

	assert.Equal(t, texts.AckVacancyFull, press(t, h, approveAction(2, v.ID), nil), "retry stays refused")
}

func TestApproveTwiceIsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	v := h.vacancy(t, 3)
	h.register(t, userID, "Aliyev Hamza")

	press(t, h, approveAction(userID, v.ID), nil)
	sentAfterFirst := len(h.bot.to(userID))

	assert.Equal(t, texts.AckAlreadyConfirmed, press(t, h, approveAction(userID, v.ID), nil))
	assert.Len(t, h.bot.to(userID), sentAfterFirst, "no second notification")

	got, err := h.store.VacancyByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.WorkersNeeded, "one seat per applicant")
	apps, err := h.store.ApplicationsByApplicant(ctx, userID, 10)
	require.NoError(t, err)
	assert.Len(t, apps, 1)
}

func TestApproveUnknownVacancy(t *testing.T) {
	h := newHarness(t)
	ack := press(t, h, approveAction(userID, "7a3d9b4e-0000-4000-8000-000000000000"), nil)
	assert.Equal(t, texts.AckVacancyNotFound, ack)
	assert.Empty(t, h.bot.to(userID))
}

func TestApproveUnregisteredApplicantUsesPlaceholder(t *testing.T) {
	h := newHarness(t)
	v := h.vacancy(t, 2)
	press(t, h, approveAction(userID, v.ID), nil)
	assert.Contains(t, h.bot.last(t, adminID).text, "ro'yxatdan o'tmagan (Chat ID: 101)")
}

func TestApproveClearsOnlyMatchingSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	v := h.vacancy(t, 5)
	other := h.vacancy(t, 5)

	require.NoError(t, h.sessions.Set(ctx, userID, Session{Step: StepAwaitAdmin, VacancyID: other.ID}))
	press(t, h, approveAction(userID, v.ID), nil)
	_, ok := h.session(t, userID)
	assert.True(t, ok, "a session waiting on another vacancy survives")

	require.NoError(t, h.sessions.Set(ctx, 202, Session{Step: StepAwaitAdmin, VacancyID: v.ID}))
	press(t, h, approveAction(202, v.ID), nil)
	_, ok = h.session(t, 202)
	assert.False(t, ok)
}

func TestCancelPayment(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	v := h.vacancy(t, 1)
	require.NoError(t, h.sessions.Set(ctx, userID, Session{Step: StepAwaitAdmin, VacancyID: v.ID}))

	ack := press(t, h, action.Action{Kind: action.AdminCancelPay, ApplicantID: userID, VacancyID: v.ID}, nil)
	assert.Equal(t, texts.AckRejected, ack)
	assert.Equal(t, texts.PaymentRejected, h.bot.last(t, userID).text)
	_, ok := h.session(t, userID)
	assert.False(t, ok)

	got, err := h.store.VacancyByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.WorkersNeeded, "vacancy untouched")
}

func TestNonAdminKindsAreLeftToConversation(t *testing.T) {
	h := newHarness(t)
	_, handled, err := h.admin.HandleCallback(context.Background(), adminID, action.Of(action.Agree), nil)
	require.NoError(t, err)
	assert.False(t, handled)
}
