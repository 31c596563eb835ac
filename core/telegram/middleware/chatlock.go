package middleware

import (
	"sync"

	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/m3rciful/vacancybot/core/telegram/helpers"
)

// ChatLocks hands out one mutex per chat. Entries are dropped once nobody
// holds or waits on them.
type ChatLocks struct {
	mu    sync.Mutex
	locks map[int64]*chatLock
}

type chatLock struct {
	mu   sync.Mutex
	refs int
}

// NewChatLocks returns an empty lock table.
func NewChatLocks() *ChatLocks {
	return &ChatLocks{locks: make(map[int64]*chatLock)}
}

// Lock blocks until chatID is free and returns the release func.
func (l *ChatLocks) Lock(chatID int64) func() {
	l.mu.Lock()
	cl, ok := l.locks[chatID]
	if !ok {
		cl = &chatLock{}
		l.locks[chatID] = cl
	}
	cl.refs++
	l.mu.Unlock()

	cl.mu.Lock()
	return func() {
		cl.mu.Unlock()
		l.mu.Lock()
		cl.refs--
		if cl.refs == 0 {
			delete(l.locks, chatID)
		}
		l.mu.Unlock()
	}
}

// Len reports how many chats currently hold or wait on a lock.
func (l *ChatLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

// ChatLockMiddleware runs updates of one chat strictly one after another.
// Different chats proceed in parallel.
func ChatLockMiddleware(locks *ChatLocks) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			id := tghelpers.ChatID(c)
			if id == 0 {
				return next(c)
			}
			unlock := locks.Lock(id)
			defer unlock()
			return next(c)
		}
	}
}
