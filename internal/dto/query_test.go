package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRange_DateOnly(t *testing.T) {
	q := DateRangeQuery{StartDate: "2025-01-01", EndDate: "2025-01-31"}
	start, end, err := q.Range()
	require.NoError(t, err)
	require.NotNil(t, start)
	require.NotNil(t, end)

	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *start)
	// Конец дня: иначе "по 31 января" молча теряет весь день.
	assert.Equal(t, time.Date(2025, 1, 31, 23, 59, 59, 999000000, time.UTC), *end)
}

func TestRange_RFC3339(t *testing.T) {
	q := DateRangeQuery{StartDate: "2025-01-01T10:00:00Z", EndDate: "2025-01-02T18:30:00Z"}
	start, end, err := q.Range()
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), *start)
	// Точное время не расширяется до конца дня.
	assert.Equal(t, time.Date(2025, 1, 2, 18, 30, 0, 0, time.UTC), *end)
}

func TestRange_Empty(t *testing.T) {
	start, end, err := DateRangeQuery{}.Range()
	require.NoError(t, err)
	assert.Nil(t, start)
	assert.Nil(t, end)
}

func TestRange_BadFormat(t *testing.T) {
	_, _, err := DateRangeQuery{StartDate: "01.02.2025"}.Range()
	assert.Error(t, err)

	_, _, err = DateRangeQuery{StartDate: "2025-01-01", EndDate: "вчера"}.Range()
	assert.Error(t, err)
}

func TestRange_EndBeforeStart(t *testing.T) {
	q := DateRangeQuery{StartDate: "2025-02-01", EndDate: "2025-01-01"}
	_, _, err := q.Range()
	assert.Error(t, err)
}

func TestRange_MaxWindow(t *testing.T) {
	// Ровно 365 дней проходят: ширина считается до расширения конца дня.
	q := DateRangeQuery{StartDate: "2024-06-01", EndDate: "2025-06-01"}
	_, _, err := q.Range()
	assert.NoError(t, err)

	q = DateRangeQuery{StartDate: "2024-01-01", EndDate: "2025-06-01"}
	_, _, err = q.Range()
	assert.Error(t, err)
}

func TestEndOfDay_KeepsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	e := EndOfDay(time.Date(2025, 3, 10, 14, 0, 0, 0, loc))
	assert.Equal(t, time.Date(2025, 3, 10, 23, 59, 59, 999000000, loc), e)
}
