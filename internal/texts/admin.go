package texts

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/vacancybot/core/telegram/format"
	"github.com/m3rciful/vacancybot/core/telegram/keyboard"
	"github.com/m3rciful/vacancybot/internal/action"
	"github.com/m3rciful/vacancybot/internal/domain"
)

// DeepLinkPrefix marks a /start argument that opens a vacancy.
const DeepLinkPrefix = "vac_"

// DeepLink is the t.me link that starts the bot on vacancy id.
func DeepLink(botUsername, id string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s%s", strings.TrimPrefix(botUsername, "@"), DeepLinkPrefix, id)
}

// AdminPanel is the admin home screen.
func AdminPanel() Message {
	return Message{
		Text: "📊 Admin panelga xush kelibsiz",
		Markup: keyboard.Inline(
			[]keyboard.InlineBtn{
				button(action.AdminStats, "📈 Statistika"),
				button(action.AdminUsers, "📋 Foydalanuvchilar ro‘yxati"),
			},
			[]keyboard.InlineBtn{
				button(action.AdminChannels, "🏢 Kanal boshqaruvi"),
				button(action.AdminAddVacancy, "📝 Vakansiya qo‘shish"),
			},
		),
	}
}

func backToPanel() keyboard.InlineBtn {
	return button(action.AdminBack, "🔙 Orqaga")
}

// Stats shows the counters.
func Stats(users, active, finished int) Message {
	return Message{
		Text: fmt.Sprintf("📊 Statistika:\n\n👥 Foydalanuvchilar: %d\n🟢 Faol vakansiyalar: %d\n✅ Bajarilgan vakansiyalar: %d",
			users, active, finished),
		Markup: keyboard.Column(backToPanel()),
	}
}

// Users lists registered users, one name and phone per line.
func Users(list []domain.User) Message {
	if len(list) == 0 {
		return Message{Text: "👥 Hozircha foydalanuvchilar yo‘q.", Markup: keyboard.Column(backToPanel())}
	}
	lines := make([]string, 0, len(list))
	for _, u := range list {
		lines = append(lines, format.Escape(u.FullName)+" — "+format.Escape(u.Phone))
	}
	return Message{
		Text:   "👥 Foydalanuvchilar:\n\n" + strings.Join(lines, "\n"),
		Markup: keyboard.Column(backToPanel()),
	}
}

// Channels is the channel management submenu.
func Channels() Message {
	return Message{
		Text: "🔧 Kanal boshqaruvi:",
		Markup: keyboard.Inline(
			[]keyboard.InlineBtn{
				button(action.AdminChannelAdd, "➕ Kanal qo‘shish"),
				button(action.AdminChannelRemove, "➖ Kanal o‘chirish"),
			},
			[]keyboard.InlineBtn{backToPanel()},
		),
	}
}

const (
	AskChannelAdd    = "🔗 Kanal username’ini yuboring (masalan: @mychannel):"
	AskChannelRemove = "🗑 Kanal username’ini o‘chirish uchun yuboring (masalan: @mychannel):"
)

// ChannelAdded acknowledges a channel username.
func ChannelAdded(username string) string {
	return "Kanal qo‘shildi: " + format.Escape(username)
}

// ChannelRemoved acknowledges a channel username.
func ChannelRemoved(username string) string {
	return "Kanal o‘chirildi: " + format.Escape(username)
}

// Vacancy authoring prompts, in the order they are asked.
const (
	AskWhen          = "📅 Qachon (masalan: Ertaga / Bugun):"
	AskTitle         = "🌟 Ish nomi (masalan: Ish #1800):"
	AskWorkersNeeded = "🫂 N necha nafar ishchi kerak:"
	AskWorkType      = "🔧 Ish turi:"
	AskSalary        = "💰 Ish haqqi:"
	AskMeal          = "🍛 Ovqat:"
	AskTime          = "⏰ Ish vaqti:"
	AskAddress       = "📱 Manzil:"
	AskServiceFee    = "🌟 Xizmat haqi:"
	AskExtra         = "📝 Qo‘shimcha ma’lumot (agar bo‘lsa; bo‘lmasa “—” deb yuboring):"

	BadWorkersNeeded = "❌ Ishchilar sonini musbat butun son bilan kiriting."
	VacancyPublished = "✅ Vakansiya muvaffaqiyatli qo‘shildi va kanalda e’lon qilindi."
	VacancyFailed    = "❌ Vakansiya yaratishda xatolik yuz berdi."
)

func vacancyBody(v domain.Vacancy, closed bool) string {
	seats := fmt.Sprintf("🫂 %d nafar ishchi kerak", v.WorkersNeeded)
	status := "🟢 Holat: Faol"
	if closed {
		seats += " (to'ldirildi)"
		status = "🟥 Holat: Yopiq"
	}
	e := format.Escape
	return fmt.Sprintf("📅 Qachon: %s\n\n🌟 %s\n%s\n🔧 Ish turi: %s\n💰 Ish haqqi: %s\n🍛 Ovqat: %s\n⏰ Vaqt: %s\n"+
		"📱 Manzil: %s\n🌟 Xizmat haqi: %s\n📝 Qo‘shimcha: %s\n\n%s",
		e(v.When), e(v.Title), seats, e(v.WorkType), e(v.Salary), e(v.Meal), e(v.Time),
		e(v.Address), e(v.ServiceFee), e(v.Extra), status)
}

// VacancyPost is the channel announcement with the deep-link apply button.
func VacancyPost(v domain.Vacancy, botUsername string) Message {
	return Message{
		Text: vacancyBody(v, false),
		Markup: keyboard.Inline([]keyboard.InlineBtn{
			{Text: "📝 Ishga yozilish", URL: DeepLink(botUsername, v.ID)},
		}),
	}
}

// ClosedPost replaces the announcement once every seat is taken.
func ClosedPost(v domain.Vacancy) Message {
	return Message{Text: vacancyBody(v, true), Markup: keyboard.Empty()}
}

// ReceiptButtons are the approve and cancel buttons under a relayed receipt.
func ReceiptButtons(applicantID int64, vacancyID string) Message {
	ok := action.Action{Kind: action.AdminConfirmPay, ApplicantID: applicantID, VacancyID: vacancyID}
	no := action.Action{Kind: action.AdminCancelPay, ApplicantID: applicantID, VacancyID: vacancyID}
	return Message{
		Text: ReceiptCaption(applicantID, vacancyID),
		Markup: keyboard.Inline([]keyboard.InlineBtn{
			ok.Button("✅ Tasdiqlash"),
			no.Button("❌ Bekor qilish"),
		}),
	}
}

// DecidedReceiptButtons replaces the approve/cancel pair after approval:
// an apply button while the vacancy is active, nothing once it closed.
func DecidedReceiptButtons(v domain.Vacancy) *tele.ReplyMarkup {
	if !v.Active() {
		return keyboard.Empty()
	}
	apply := action.Action{Kind: action.Apply, VacancyID: v.ID}
	return keyboard.Column(apply.Button("📝 Ishga yozilish"))
}

// PaymentApproved tells the applicant whom to contact next.
func PaymentApproved(handoff string) string {
	return "✅ To'lovingiz tasdiqlandi! Endi adminga murojaat qiling: " + format.Escape(handoff)
}

// ApplicantRegistered summarises the approved applicant for the admin.
// u is nil when the applicant never registered.
func ApplicantRegistered(u *domain.User, applicantID int64, vacancyTitle string) string {
	var info string
	if u != nil {
		info = fmt.Sprintf("Ismi: %s\nTelefon: %s\nYoshi: %d\nVazni: %d",
			format.Escape(u.FullName), format.Escape(u.Phone), u.Age, u.Weight)
	} else {
		info = fmt.Sprintf("User ro'yxatdan o'tmagan (Chat ID: %d)", applicantID)
	}
	return fmt.Sprintf("✅ Foydalanuvchi ro‘yxatga olindi:\n\n%s\nVakansiya: %s", info, format.Escape(vacancyTitle))
}

// Payment decision notices and acknowledgments.
const (
	AckApproved         = "To‘lov tasdiqlandi."
	AckAlreadyConfirmed = "Bu to‘lov allaqachon tasdiqlangan."
	AckVacancyNotFound  = "Vakansiya topilmadi."
	PaymentRejected     = "❌ To‘lovingiz bekor qilindi."
	AckRejected         = "To‘lov bekor qilindi."
	AckVacancyFull      = "Vakansiyada bo‘sh joy qolmagan."
	SeatsTaken          = "😔 Afsuski, bu vakansiyada bo‘sh joy qolmadi. To‘lov bo‘yicha admin siz bilan bog‘lanadi."
)
