package texts

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/vacancybot/internal/domain"
)

func sampleVacancy() domain.Vacancy {
	return domain.Vacancy{
		ID:            "6f1c7c3e-2a44-4d8e-9a7f-0c2b8f4e1d55",
		When:          "Ertaga",
		Title:         "Ish #1800",
		WorkersNeeded: 3,
		WorkType:      "Yuk tushirish",
		Salary:        "250 000",
		Meal:          "Bor",
		Time:          "08:00-18:00",
		Address:       "Chilonzor <7>",
		ServiceFee:    "20 000",
		Extra:         "—",
		Status:        domain.VacancyActive,
	}
}

func TestMainMenuGreeting(t *testing.T) {
	m := MainMenu("Ali <b>")
	assert.Contains(t, m.Text, "Salom, Ali &lt;b&gt;!")
	require.NotNil(t, m.Markup)
	require.Len(t, m.Markup.ReplyKeyboard, 2)
	assert.Equal(t, BtnApplications, m.Markup.ReplyKeyboard[0][0].Text)

	assert.Equal(t, "Quyidagi menyudan birini tanlang:", MainMenu("  ").Text)
}

func TestOfferRegisterFirst(t *testing.T) {
	assert.False(t, strings.HasPrefix(Offer(false).Text, RegisterFirstPrefix))
	assert.True(t, strings.HasPrefix(Offer(true).Text, RegisterFirstPrefix))
	require.Len(t, Offer(false).Markup.InlineKeyboard, 1)
	assert.Len(t, Offer(false).Markup.InlineKeyboard[0], 2)
}

func TestPaymentPromptMinutes(t *testing.T) {
	v := sampleVacancy()
	m := PaymentPrompt(v, "9860 0000", 3*time.Minute)
	assert.Contains(t, m.Text, "(3 daqiqa ichida)")
	assert.Contains(t, m.Text, "💳 9860 0000")
	assert.Contains(t, m.Text, "Ishga yozilish: Ish #1800")

	assert.Contains(t, PaymentPrompt(v, "x", 10*time.Second).Text, "(1 daqiqa ichida)")
}

func TestVacancyPostAndClosedPost(t *testing.T) {
	v := sampleVacancy()
	post := VacancyPost(v, "@jobs_bot")
	assert.Contains(t, post.Text, "🟢 Holat: Faol")
	assert.Contains(t, post.Text, "Chilonzor &lt;7&gt;")
	require.Len(t, post.Markup.InlineKeyboard, 1)
	assert.Equal(t, "https://t.me/jobs_bot?start=vac_"+v.ID, post.Markup.InlineKeyboard[0][0].URL)

	v.WorkersNeeded = 0
	v.Status = domain.VacancyClosed
	closed := ClosedPost(v)
	assert.Contains(t, closed.Text, "0 nafar ishchi kerak (to'ldirildi)")
	assert.Contains(t, closed.Text, "🟥 Holat: Yopiq")
	assert.Empty(t, closed.Markup.InlineKeyboard)
}

func TestDecidedReceiptButtons(t *testing.T) {
	v := sampleVacancy()
	active := DecidedReceiptButtons(v)
	require.Len(t, active.InlineKeyboard, 1)
	assert.Equal(t, "apply", active.InlineKeyboard[0][0].Unique)
	assert.Equal(t, v.ID, active.InlineKeyboard[0][0].Data)

	v.Status = domain.VacancyClosed
	assert.Empty(t, DecidedReceiptButtons(v).InlineKeyboard)
}

func TestApplicationsList(t *testing.T) {
	applied := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	list := []domain.ApplicationView{
		{Application: domain.Application{Status: domain.ApplicationConfirmed, AppliedAt: applied}, VacancyTitle: "Ish #2"},
		{Application: domain.Application{Status: domain.ApplicationConfirmed, AppliedAt: applied}, VacancyTitle: "Ish #1"},
	}
	m := Applications(list)
	assert.Contains(t, m.Text, "1. <b>Ish #2</b>\n   📅 Sana: 17/10/2026\n   💼 Holat: ✅ tasdiqlangan")
	assert.Contains(t, m.Text, "2. <b>Ish #1</b>")

	assert.Equal(t, NoApplications().Text, Applications(nil).Text)
}

func TestApplicantRegistered(t *testing.T) {
	u := &domain.User{FullName: "Aliyev Hamza", Phone: "+998901234567", Age: 30, Weight: 70}
	assert.Contains(t, ApplicantRegistered(u, 42, "Ish #1"), "Ismi: Aliyev Hamza\nTelefon: +998901234567\nYoshi: 30\nVazni: 70\nVakansiya: Ish #1")
	assert.Contains(t, ApplicantRegistered(nil, 42, "Ish #1"), "(Chat ID: 42)")
}

func TestSupportDefaults(t *testing.T) {
	m := Support(Contacts{SupportUsername: "@helpdesk"})
	assert.Contains(t, m.Text, DefaultContacts.SupportPhone)
	assert.Contains(t, m.Text, "@helpdesk ga yozing")
}

func TestIsMenuButton(t *testing.T) {
	assert.True(t, IsMenuButton(BtnInfo))
	assert.True(t, IsMenuButton(BtnMainMenu))
	assert.False(t, IsMenuButton("salom"))
}
