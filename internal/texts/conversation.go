package texts

import (
	"fmt"
	"strings"
	"time"

	"github.com/m3rciful/vacancybot/core/telegram/format"
	"github.com/m3rciful/vacancybot/core/telegram/keyboard"
	"github.com/m3rciful/vacancybot/internal/action"
	"github.com/m3rciful/vacancybot/internal/domain"
)

// MainMenu greets the user by name when it is known.
func MainMenu(name string) Message {
	text := "Quyidagi menyudan birini tanlang:"
	if name = strings.TrimSpace(name); name != "" {
		text = fmt.Sprintf("👋 Salom, %s!\n\nBotga xush kelibsiz! Quyidagi tugmalardan birini tanlang:", format.Escape(name))
	}
	return Message{
		Text: text,
		Markup: keyboard.Reply(
			[]string{BtnApplications, BtnInfo},
			[]string{BtnSupport},
		),
	}
}

const offerBody = `📋 <b>Foydalanuvchi Ofertasi</b>

ManMode Uz jamoasi tomonidan taqdim etiladigan xizmatlar uchun

<b>1. Umumiy qoidalar</b>
Ushbu kanaldan foydalanish orqali siz quyidagi shartlarga rozilik bildirasiz.
Bizning xizmat — kunlik ishlarga nomzodlarni ish beruvchilar bilan bog'lash.

<b>2. Xizmat haqi</b>
Har bir ish e'lonida xizmat haqi miqdori alohida ko'rsatiladi.
Nomzod ishga yozilishdan oldin ko'rsatilgan summani to'laydi va to'lov tasdig'ini (check) botga yuboradi.
Qalbaki check yuborish qat'iyan taqiqlanadi.

<b>3. Majburiyatlar</b>
To'lovdan so'ng nomzod ishga chiqishi shart. Sababsiz chiqmaslik xizmatdan chetlashtirishga olib keladi.
Biz ish beruvchi va nomzod o'rtasidagi nizolarga bevosita javobgar emasmiz, lekin imkon qadar yordam beramiz.

<b>4. Javobgarlik chegarasi</b>
Ish haqi, ish joyi sharoiti va boshqa qo'shimcha kelishuvlar uchun faqat ish beruvchi javobgar.
Bizning vazifamiz — faqat bog'lash va e'lonlarni yetkazish.

<b>5. To'lovni qaytarish</b>
Agar ish bekor qilinsa, pulingiz qaytarib beriladi — <b>faqatgina shanba va yakshanba kunlari</b>.

<b>6. Yakuniy shartlar</b>
Oferta va qoidalar vaqti-vaqti bilan yangilanishi mumkin.
Kanaldan foydalanish orqali siz ushbu shartlarga rozilik bildirgan bo'lasiz.`

// RegisterFirstPrefix heads the offer when a deep link reached an unregistered chat.
const RegisterFirstPrefix = "❌ Avval botda ro'yxatdan o'tishingiz kerak!"

// Offer shows the terms with agree and disagree buttons.
func Offer(registerFirst bool) Message {
	text := offerBody
	if registerFirst {
		text = RegisterFirstPrefix + "\n" + offerBody
	}
	return Message{
		Text: text,
		Markup: keyboard.Inline([]keyboard.InlineBtn{
			button(action.Agree, "✅ Roziman"),
			button(action.Disagree, "❌ Rad etaman"),
		}),
	}
}

// Rejected follows a disagree press.
func Rejected() Message {
	return Message{
		Text:   "❌ Siz shartlarni rad etdingiz.\n\nAgar qayta o‘qib chiqmoqchi bo‘lsangiz, pastdagi tugmadan foydalaning.",
		Markup: keyboard.Column(button(action.Restart, "🔁 Qayta boshlash")),
	}
}

// Registration prompts and their re-prompts.
const (
	AskFullName = "👤 Iltimos, ism va familiyangizni kiriting (Masalan: Aliyev Hamza):"
	BadFullName = "❌ Iltimos, to‘g‘ri ism familiya kiriting."
	BadPhone    = "❌ Telefon raqamingiz noto‘g‘ri. +998 bilan kiriting."
	BadAge      = "❌ Yoshingizni to‘g‘ri kiriting (15–65 oralig‘ida)."
	AskWeight   = "⚖️ Iltimos, vazningizni kiriting (40–150 kg):"
	BadWeight   = "❌ Vazn noto‘g‘ri. 40–150 kg oralig‘ida kiriting."
	ReenterText = "🔁 Qaytadan boshlaymiz. Iltimos, ism familiyangizni kiriting:"
)

// AskPhone offers a one-tap contact share.
func AskPhone() Message {
	return Message{
		Text:   "📞 Iltimos, telefon raqamingizni ulashing:",
		Markup: keyboard.ShareContact("📱 Raqamni ulashish"),
	}
}

// AskAge also drops the contact keyboard.
func AskAge() Message {
	return Message{
		Text:   "🧓 Iltimos, yoshingizni kiriting (15–65):",
		Markup: keyboard.Remove(),
	}
}

// Summary lists the collected profile with confirm and reenter buttons.
func Summary(fullName, phone string, age, weight int) Message {
	text := fmt.Sprintf("<b>📝 Ma'lumotlaringiz:</b>\n\n👤 Ism: %s\n📞 Telefon: %s\n🧓 Yosh: %d\n⚖️ Vazn: %d kg",
		format.Escape(fullName), format.Escape(phone), age, weight)
	return Message{
		Text: text,
		Markup: keyboard.Inline([]keyboard.InlineBtn{
			button(action.Confirm, "✅ Tasdiqlayman"),
			button(action.Reenter, "🔁 Qayta kiritaman"),
		}),
	}
}

// Registered confirms the new account.
func Registered(name string) string {
	return fmt.Sprintf("✅ Ro'yxatdan muvaffaqiyatli o'tdingiz, %s!", format.Escape(name))
}

// PaymentPrompt asks for the service fee receipt within window.
func PaymentPrompt(v domain.Vacancy, card string, window time.Duration) Message {
	minutes := int(window.Round(time.Minute) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	fee := format.Escape(v.ServiceFee)
	text := fmt.Sprintf("📝 Ishga yozilish: %s\n\n💰 Ish haqqi: %s\n🌟 Xizmat haqi: %s\n\n💳 %s\n\n"+
		"💳 Ushbu karta raqamga %s to‘lov qilib checkini yuboring (%d daqiqa ichida):",
		format.Escape(v.Title), format.Escape(v.Salary), fee, format.Escape(card), fee, minutes)
	return Message{
		Text:   text,
		Markup: keyboard.Column(button(action.CancelPayment, "❌ Bekor qilish")),
	}
}

// Payment step notices.
const (
	AckPaymentCancelled = "Bekor qilindi."
	PaymentCancelled    = "❌ Bekor qilindi. Asosiy menyuga qaytish."
	PhotoOnly           = "❌ Iltimos, faqat <b>chek rasmi</b>ni yuboring."
	ReceiptSent         = "✅ To'lov checki yuborildi! ⏳ Admin tomonidan tasdiqlanishini kuting."
	PaymentExpired      = "⌛ To‘lov vaqti tugadi. Ishga yozilish uchun e’londagi tugmani qayta bosing."
	AwaitingAdmin       = "⏳ To‘lov checkingiz admin tomonidan ko‘rib chiqilmoqda. Iltimos, kuting."
)

// ReceiptCaption labels the receipt photo relayed to admins.
func ReceiptCaption(applicantID int64, vacancyID string) string {
	return fmt.Sprintf("💳 Chek yuborildi:\nFoydalanuvchi Chat ID: %d\nVakansiya ID: %s", applicantID, format.Escape(vacancyID))
}

// Subscribe asks the user to join the required channel.
func Subscribe(channel, link string) Message {
	return Message{
		Text:   "🔐 Iltimos, kanalimizga obuna bo‘ling: " + format.Escape(channel),
		Markup: keyboard.Inline([]keyboard.InlineBtn{{Text: "📣 Kanalga obuna bo‘lish", URL: link}}),
	}
}

// NoApplications is the empty state of the applications screen.
func NoApplications() Message {
	return Message{
		Text:   "📝 Sizda hozircha ariza yo‘q.\n\nIshga yozilish uchun kanaldagi e'lonlardan birini tanlang.",
		Markup: backToMenu(),
	}
}

// ApplicationsFailed is shown when the list cannot be loaded.
const ApplicationsFailed = "❌ Arizalarni yuklashda xatolik. Qayta urinib ko'ring."

// Applications renders the list, newest first as given.
func Applications(list []domain.ApplicationView) Message {
	if len(list) == 0 {
		return NoApplications()
	}
	var b strings.Builder
	b.WriteString("📋 <b>Sizning arizalaringiz:</b>\n\n")
	for i, app := range list {
		mark := "❌"
		if app.Status == domain.ApplicationConfirmed {
			mark = "✅"
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, format.Bold(app.VacancyTitle))
		fmt.Fprintf(&b, "   📅 Sana: %s\n", app.AppliedAt.Format("02/01/2006"))
		fmt.Fprintf(&b, "   💼 Holat: %s tasdiqlangan\n\n", mark)
	}
	return Message{Text: strings.TrimRight(b.String(), "\n"), Markup: backToMenu()}
}

// Info describes the bot.
func Info() Message {
	return Message{
		Text: `ℹ️ <b>Bot haqida ma'lumot</b>:

🤖 Bu bot ishchi va ish beruvchilar o'rtasida aloqa o'rnatish uchun yaratilgan.

📋 Bot orqali quyidagi ishlarni bajarishingiz mumkin:
• Ish e'lonlarini ko'rish
• Ishlarga yozilish
• Arizalaringizni kuzatish
• To'lov checklarini yuborish

🔧 Bot ishlatish:
1. Kanaldagi ish e'lonlarini ko'ring
2. "Ishga yozilish" tugmasini bosing
3. To'lov checkini yuboring
4. Admin tasdiqlashini kuting

📞 Savollar bo'lsa, qo'llab-quvvatlash xizmatiga murojaat qiling.`,
		Markup: backToMenu(),
	}
}

// Support lists the support contacts.
func Support(c Contacts) Message {
	c = c.WithDefaults()
	text := fmt.Sprintf(`📞 <b>Qo'llab-quvvatlash xizmati</b>:

🔢 Telefon raqam: <b>%s</b>

⏰ Ish vaqti: 09:00 - 23:00
📅 Ish kunlari: Dushanba - Yakshanba

❓ Savollar bo'lsa, yuqoridagi raqamga qo'ng'iroq qiling.
📱 Yoki %s ga yozing.`, format.Escape(c.SupportPhone), format.Escape(c.SupportUsername))
	return Message{Text: text, Markup: backToMenu()}
}
