package membership

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"
)

type lookup struct {
	role tele.MemberStatus
	err  error
	chat string
	user string
}

func (l *lookup) ChatMemberOf(chat, user tele.Recipient) (*tele.ChatMember, error) {
	l.chat, l.user = chat.Recipient(), user.Recipient()
	if l.err != nil {
		return nil, l.err
	}
	return &tele.ChatMember{Role: l.role}, nil
}

func TestIsMember(t *testing.T) {
	ctx := context.Background()
	cases := map[tele.MemberStatus]bool{
		tele.Creator:       true,
		tele.Administrator: true,
		tele.Member:        true,
		tele.Left:          false,
		tele.Kicked:        false,
		tele.Restricted:    false,
	}
	for role, want := range cases {
		l := &lookup{role: role}
		assert.Equal(t, want, NewGate(l, "manmode_uz").IsMember(ctx, 42), role)
		assert.Equal(t, "@manmode_uz", l.chat)
		assert.Equal(t, "42", l.user)
	}
}

func TestIsMemberLookupError(t *testing.T) {
	g := NewGate(&lookup{err: errors.New("chat not found")}, "@manmode_uz")
	assert.False(t, g.IsMember(context.Background(), 42))
}

func TestChannelLink(t *testing.T) {
	assert.Equal(t, "https://t.me/manmode_uz", Channel("@manmode_uz").Link())
	assert.Equal(t, "@manmode_uz", Channel("manmode_uz").Recipient())
}
