package flow

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/vacancybot/core/telegram/state"
	"github.com/m3rciful/vacancybot/internal/domain"
	"github.com/m3rciful/vacancybot/internal/membership"
	"github.com/m3rciful/vacancybot/internal/storage/memory"
)

const (
	adminID     int64 = 900
	channelName       = "@ishlar"
	channelChat int64 = -100500
)

type sentMessage struct {
	to     string
	text   string
	photo  string
	markup *tele.ReplyMarkup
}

type editedMessage struct {
	msg    tele.Editable
	text   string
	markup *tele.ReplyMarkup
}

// recordingBot stands in for *tele.Bot and records every call.
type recordingBot struct {
	mu          sync.Mutex
	nextID      int
	sent        []sentMessage
	edits       []editedMessage
	markupEdits []editedMessage
	failTo      map[string]error
}

func markupOf(opts []interface{}) *tele.ReplyMarkup {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			return v.ReplyMarkup
		case *tele.ReplyMarkup:
			return v
		}
	}
	return nil
}

func (b *recordingBot) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.failTo[to.Recipient()]; err != nil {
		return nil, err
	}
	m := sentMessage{to: to.Recipient(), markup: markupOf(opts)}
	switch v := what.(type) {
	case string:
		m.text = v
	case *tele.Photo:
		m.text = v.Caption
		m.photo = v.FileID
	}
	b.sent = append(b.sent, m)
	b.nextID++

	chatID := channelChat
	if id, err := strconv.ParseInt(to.Recipient(), 10, 64); err == nil {
		chatID = id
	}
	return &tele.Message{ID: b.nextID, Chat: &tele.Chat{ID: chatID}}, nil
}

func (b *recordingBot) Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	text, _ := what.(string)
	b.edits = append(b.edits, editedMessage{msg: msg, text: text, markup: markupOf(opts)})
	return &tele.Message{}, nil
}

func (b *recordingBot) EditReplyMarkup(msg tele.Editable, markup *tele.ReplyMarkup) (*tele.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.markupEdits = append(b.markupEdits, editedMessage{msg: msg, markup: markup})
	return &tele.Message{}, nil
}

// to returns the messages sent to chatID, oldest first.
func (b *recordingBot) to(chatID int64) []sentMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	want := strconv.FormatInt(chatID, 10)
	var out []sentMessage
	for _, m := range b.sent {
		if m.to == want {
			out = append(out, m)
		}
	}
	return out
}

func (b *recordingBot) last(t *testing.T, chatID int64) sentMessage {
	t.Helper()
	msgs := b.to(chatID)
	require.NotEmpty(t, msgs, "nothing sent to %d", chatID)
	return msgs[len(msgs)-1]
}

func (b *recordingBot) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent, b.edits, b.markupEdits = nil, nil, nil
}

type memberSet map[int64]bool

func (m memberSet) IsMember(_ context.Context, chatID int64) bool { return m[chatID] }

type harness struct {
	bot      *recordingBot
	store    *memory.Store
	sessions *state.Memory[Session]
	admins   *state.Memory[AdminSession]
	members  memberSet
	now      time.Time
	conv     *Conversation
	admin    *Admin
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		bot:      &recordingBot{failTo: map[string]error{}},
		store:    memory.New(),
		sessions: state.NewMemory[Session](time.Hour),
		admins:   state.NewMemory[AdminSession](time.Hour),
		members:  memberSet{},
		now:      time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC),
	}
	t.Cleanup(h.sessions.Close)
	t.Cleanup(h.admins.Close)

	d := Deps{
		Bot:           h.bot,
		Store:         h.store,
		Sessions:      h.sessions,
		AdminSessions: h.admins,
		Members:       h.members,
		Settings: Settings{
			AdminIDs:      []int64{adminID},
			Channel:       membership.Channel(channelName),
			BotUsername:   "ish_bot",
			PaymentWindow: 3 * time.Minute,
		},
		Now: func() time.Time { return h.now },
	}
	h.conv = NewConversation(d)
	h.admin = NewAdmin(d)
	return h
}

func (h *harness) session(t *testing.T, chatID int64) (Session, bool) {
	t.Helper()
	s, ok, err := h.sessions.Get(context.Background(), chatID)
	require.NoError(t, err)
	return s, ok
}

func (h *harness) register(t *testing.T, chatID int64, name string) {
	t.Helper()
	require.NoError(t, h.store.CreateUser(context.Background(), domain.User{
		ChatID: chatID, FullName: name, Phone: "+998901234567", Age: 30, Weight: 70,
	}))
}

func (h *harness) vacancy(t *testing.T, workers int) domain.Vacancy {
	t.Helper()
	v, err := h.store.CreateVacancy(context.Background(), domain.Vacancy{
		When: "Ertaga", Title: "Ish #1800", WorkersNeeded: workers,
		Salary: "250 000", ServiceFee: "20 000",
	})
	require.NoError(t, err)
	return v
}
