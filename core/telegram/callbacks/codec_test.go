package callbacks

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

func TestEncodeParse(t *testing.T) {
	data, err := Encode("adm_pay_ok", "123456789", "0d6f1e0c-3b5e-4d1e-9a57-6f5b8d2c9e11")
	require.NoError(t, err)
	assert.Equal(t, "\fadm_pay_ok|123456789|0d6f1e0c-3b5e-4d1e-9a57-6f5b8d2c9e11", data)

	unique, fields := Parse(&tele.Callback{Data: data})
	assert.Equal(t, "adm_pay_ok", unique)
	assert.Equal(t, []string{"123456789", "0d6f1e0c-3b5e-4d1e-9a57-6f5b8d2c9e11"}, fields)
}

func TestParseWithoutFields(t *testing.T) {
	unique, fields := Parse(&tele.Callback{Data: "\fagree"})
	assert.Equal(t, "agree", unique)
	assert.Empty(t, fields)

	unique, fields = Parse(&tele.Callback{Data: "\fagree|"})
	assert.Equal(t, "agree", unique)
	assert.Empty(t, fields)
}

func TestParsePreSplit(t *testing.T) {
	unique, fields := Parse(&tele.Callback{Unique: "apply", Data: "abc"})
	assert.Equal(t, "apply", unique)
	assert.Equal(t, []string{"abc"}, fields)
}

func TestEncodeRejectsOversizedData(t *testing.T) {
	_, err := Encode("x", strings.Repeat("a", 70))
	assert.Error(t, err)
	_, err = Encode("x|y")
	assert.Error(t, err)
	_, err = Encode("x", "a|b")
	assert.Error(t, err)
}
