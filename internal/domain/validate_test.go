package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"998 90 123-45-67", "+998901234567", true},
		{"+998901234567", "+998901234567", true},
		{"998901234567", "+998901234567", true},
		{"+99890123456", "+99890123456", false},
		{"+9989012345678", "+9989012345678", false},
		{"901234567", "901234567", false},
		{"+7 900 123 45 67", "+79001234567", false},
		{"+998\t901234567", "+998901234567", true},
		{" +998 90\u00a0123 45 67\n", "+998901234567", true},
		{"+998 (90) 123-45-67", "+998(90)1234567", false},
	}
	for _, tc := range cases {
		got, ok := NormalizePhone(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestNormalizeFullName(t *testing.T) {
	name, ok := NormalizeFullName("  Aliyev Vali ")
	assert.True(t, ok)
	assert.Equal(t, "Aliyev Vali", name)

	_, ok = NormalizeFullName("Иван Петров")
	assert.True(t, ok)

	for _, bad := range []string{"Al", "Ali2", "📋 Mening arizalarim", "", "   "} {
		_, ok := NormalizeFullName(bad)
		assert.False(t, ok, bad)
	}
}

func TestParseAgeBounds(t *testing.T) {
	for in, want := range map[string]bool{"14": false, "15": true, "65": true, "66": false, "abc": false, " 30 ": true} {
		_, ok := ParseAge(in)
		assert.Equal(t, want, ok, in)
	}
}

func TestParseWeightBounds(t *testing.T) {
	for in, want := range map[string]bool{"39": false, "40": true, "150": true, "151": false, "70kg": false} {
		_, ok := ParseWeight(in)
		assert.Equal(t, want, ok, in)
	}
}

func TestParsePositive(t *testing.T) {
	n, ok := ParsePositive("3")
	assert.True(t, ok)
	assert.Equal(t, 3, n)
	for _, bad := range []string{"0", "-1", "two", ""} {
		_, ok := ParsePositive(bad)
		assert.False(t, ok, bad)
	}
}

func TestValidateUser(t *testing.T) {
	u := User{ChatID: 1, FullName: "Aliyev Vali", Phone: "+998901234567", Age: 25, Weight: 70}
	require.NoError(t, ValidateUser(u))

	u.Age = 70
	err := ValidateUser(u)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))
}

func TestVacancyHelpers(t *testing.T) {
	id, msg := int64(-100), int64(5)
	v := Vacancy{Status: VacancyActive}
	assert.True(t, v.Active())
	assert.False(t, v.Published())
	v.ChannelChatID, v.ChannelMessageID = &id, &msg
	assert.True(t, v.Published())
	v.Status = VacancyClosed
	assert.False(t, v.Active())
}
