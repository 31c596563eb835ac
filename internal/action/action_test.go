package action

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/vacancybot/core/telegram/callbacks"
)

const vacID = "0d6f1e0c-3b5e-4d1e-9a57-6f5b8d2c9e11"

func sample(k Kind) Action {
	switch kinds[k].shape {
	case withVacancy:
		return Action{Kind: k, VacancyID: vacID}
	case withApplicant:
		return Action{Kind: k, ApplicantID: 9_876_543_210, VacancyID: vacID}
	}
	return Of(k)
}

func TestEveryKindRoundTrips(t *testing.T) {
	for _, k := range Kinds() {
		a := sample(k)
		data, err := a.Encode()
		require.NoError(t, err, k)
		assert.LessOrEqual(t, len(data), callbacks.MaxDataLen, k)

		got, err := Decode(&tele.Callback{Data: data})
		require.NoError(t, err, k)
		assert.Equal(t, a, got)
	}
}

func TestApplicantActionFitsWithChannelSizedIDs(t *testing.T) {
	_, err := Action{Kind: AdminConfirmPay, ApplicantID: -1001234567890, VacancyID: vacID}.Encode()
	assert.NoError(t, err)
}

func TestWireCodesAreUnique(t *testing.T) {
	assert.Len(t, byCode, len(kinds))
}

func TestButtonMatchesEncode(t *testing.T) {
	a := sample(AdminCancelPay)
	btn := a.Button("Bekor qilish")
	data, err := callbacks.Encode(btn.Unique, btn.Data...)
	require.NoError(t, err)
	want, _ := a.Encode()
	assert.Equal(t, want, data)
}

func TestDecodeRejectsMalformed(t *testing.T) {
	for _, data := range []string{
		"",
		"\fnope",
		"\fagree|extra",
		"\fapply",
		"\fapply|not-a-uuid",
		"\fadm_pay_ok|" + vacID,
		"\fadm_pay_ok|abc|" + vacID,
		"\fadm_pay_ok|0|" + vacID,
		"\fadm_pay_no|1|2|3",
	} {
		_, err := Decode(&tele.Callback{Data: data})
		assert.True(t, errors.Is(err, ErrMalformed), "%q", data)
	}
}

func TestAdminKinds(t *testing.T) {
	assert.True(t, AdminConfirmPay.IsAdmin())
	assert.True(t, AdminBack.IsAdmin())
	assert.False(t, Apply.IsAdmin())
	assert.False(t, CancelPayment.IsAdmin())
}
