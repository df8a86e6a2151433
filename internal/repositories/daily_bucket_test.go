package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"callcentre-backend/internal/entities"
)

var errStop = errors.New("stop")

// recordingQuerier перехватывает SQL и обрывает выполнение:
// проверяем текст запроса, не ходя в базу.
type recordingQuerier struct {
	sql  string
	args []any
}

func (q *recordingQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.sql, q.args = sql, args
	return nil, errStop
}

func (q *recordingQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("не используется в этих тестах")
}

func (q *recordingQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errStop
}

// Суточные корзины должны резаться по UTC: date_trunc по timestamptz
// без приведения зависит от таймзоны сессии и сдвигает границы дней.
func TestGroupOrdersByDay_BucketsInUTC(t *testing.T) {
	q := &recordingQuerier{}
	repo := NewAnalyticsRepository(q, zap.NewNop())

	_, err := repo.GroupOrdersByDay(context.Background(), entities.ReportFilter{}, []string{"Закрыт"})
	assert.ErrorIs(t, err, errStop)

	assert.Contains(t, q.sql, "date_trunc('day', create_date AT TIME ZONE 'UTC')")
	assert.NotContains(t, q.sql, "date_trunc('day', create_date)")
}

func TestGetDailyCalls_BucketsInUTC(t *testing.T) {
	q := &recordingQuerier{}
	repo := NewStatsRepository(q, zap.NewNop())

	_, err := repo.GetDailyCalls(context.Background(), entities.ReportFilter{}, nil)
	assert.ErrorIs(t, err, errStop)

	assert.Contains(t, q.sql, "date_trunc('day', date_create AT TIME ZONE 'UTC')")
	assert.NotContains(t, q.sql, "date_trunc('day', date_create)")
}
