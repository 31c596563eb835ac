package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/vacancybot/internal/domain"
	"github.com/m3rciful/vacancybot/internal/storage"
)

var _ storage.Store = (*Store)(nil)

func TestReserveSeatQueryIsConditional(t *testing.T) {
	query, args, err := reserveSeatQuery("0d6f1e0c-3b5e-4d1e-9a57-6f5b8d2c9e11")
	require.NoError(t, err)
	assert.Contains(t, query, "UPDATE vacancies SET workers_needed = workers_needed - 1")
	assert.Contains(t, query, "CASE WHEN workers_needed <= 1 THEN $1 ELSE status END")
	assert.Contains(t, query, "workers_needed > $")
	assert.Contains(t, query, "RETURNING id,")
	assert.Contains(t, args, "closed")
	assert.Contains(t, args, "active")
	assert.Contains(t, args, "0d6f1e0c-3b5e-4d1e-9a57-6f5b8d2c9e11")
}

func TestInsertApplicationQueryIgnoresDuplicates(t *testing.T) {
	query, args, err := insertApplicationQuery(42, "v-1")
	require.NoError(t, err)
	assert.Contains(t, query, "ON CONFLICT (applicant_chat_id, vacancy_id) DO NOTHING")
	assert.Equal(t, []any{int64(42), "v-1", "confirmed"}, args)
}

func TestDeleteApplicationQueryMatchesPair(t *testing.T) {
	query, args, err := deleteApplicationQuery(42, "v-1")
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM applications WHERE applicant_chat_id = $1 AND vacancy_id = $2", query)
	assert.Equal(t, []any{int64(42), "v-1"}, args)
}

func TestApplicationsQueryNewestFirstWithLimit(t *testing.T) {
	query, args, err := applicationsByApplicantQuery(7, storage.ApplicationsListLimit)
	require.NoError(t, err)
	assert.Contains(t, query, "JOIN vacancies v ON v.id = a.vacancy_id")
	assert.Contains(t, query, "ORDER BY a.applied_at DESC, a.id DESC LIMIT 10")
	assert.Equal(t, []any{int64(7)}, args)
}

func TestCountVacanciesQueryUsesIn(t *testing.T) {
	query, args, err := countVacanciesQuery([]domain.VacancyStatus{domain.VacancyDone, domain.VacancyClosed})
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM vacancies WHERE status IN ($1,$2)", query)
	assert.Equal(t, []any{"done", "closed"}, args)
}

func TestInsertVacancyQuotesReservedColumn(t *testing.T) {
	query, _, err := insertVacancyQuery(domain.Vacancy{ID: "x", Title: "Ish", WorkersNeeded: 2})
	require.NoError(t, err)
	assert.Contains(t, query, `INSERT INTO vacancies (id,"when",title`)
}
