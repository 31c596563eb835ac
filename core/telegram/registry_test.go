package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

func noop(tele.Context) error { return nil }

func TestRegistryCommands(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterCommand("/start", Command{Handler: noop, Description: "Boshlash"}))
	require.NoError(t, reg.RegisterCommand("/panel", Command{Handler: noop, Description: "Admin", AdminOnly: true}))
	assert.Error(t, reg.RegisterCommand("/start", Command{Handler: noop}))
	assert.Error(t, reg.RegisterCommand("start", Command{Handler: noop}))
	assert.Error(t, reg.RegisterCommand("/x", Command{}))

	assert.Equal(t, []tele.Command{{Text: "start", Description: "Boshlash"}}, reg.ListCommands(true))
	assert.Len(t, reg.ListCommands(false), 2)
}

func TestRegistryCallbacks(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterCallback("apply", noop))
	require.NoError(t, reg.RegisterCallback("agree", noop))
	assert.Error(t, reg.RegisterCallback("apply", noop))
	assert.Error(t, reg.RegisterCallback("", noop))

	_, ok := reg.GetCallback("apply")
	assert.True(t, ok)
	_, ok = reg.GetCallback("missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"agree", "apply"}, reg.ListCallbacks())
}
