package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"callcentre-backend/internal/dto"
	"callcentre-backend/internal/entities"
	apperrors "callcentre-backend/pkg/errors"
	"callcentre-backend/pkg/types"
)

type fakeStatsRepo struct {
	mu sync.Mutex

	operator      *entities.Operator
	callGroups    []types.StatusCountGroup
	avgDuration   float64
	orderGroups   []types.StatusCountGroup
	daily         []types.DailyCountGroup
	cities        []types.KeyCountGroup
	campaigns     []types.KeyCountGroup
	volume        []types.OperatorCountGroup
	names         map[int64]string
	orders        int64
	activeOps     int64
	directors     int64
	masters       int64
	cleanSum      float64
	cashIncome    float64
	cashExpense   float64

	statsFilter entities.ReportFilter
	dailyFilter entities.ReportFilter
	cashFrom    time.Time
	cashTo      time.Time
}

func (r *fakeStatsRepo) GetOperatorByID(ctx context.Context, id int64) (*entities.Operator, error) {
	if r.operator == nil {
		return nil, apperrors.ErrNotFound
	}
	return r.operator, nil
}

func (r *fakeStatsRepo) GroupCallsByStatus(ctx context.Context, f entities.ReportFilter) ([]types.StatusCountGroup, error) {
	r.mu.Lock()
	r.statsFilter = f
	r.mu.Unlock()
	return r.callGroups, nil
}

func (r *fakeStatsRepo) GetAvgCallDuration(ctx context.Context, f entities.ReportFilter) (float64, error) {
	return r.avgDuration, nil
}

func (r *fakeStatsRepo) GroupOrdersByStatus(ctx context.Context, f entities.ReportFilter) ([]types.StatusCountGroup, error) {
	return r.orderGroups, nil
}

func (r *fakeStatsRepo) GetDailyCalls(ctx context.Context, f entities.ReportFilter, statuses []string) ([]types.DailyCountGroup, error) {
	r.mu.Lock()
	r.dailyFilter = f
	r.mu.Unlock()
	return r.daily, nil
}

func (r *fakeStatsRepo) GroupCallsByCity(ctx context.Context, f entities.ReportFilter, statuses []string) ([]types.KeyCountGroup, error) {
	return r.cities, nil
}

func (r *fakeStatsRepo) GroupCallsByRK(ctx context.Context, f entities.ReportFilter, statuses []string) ([]types.KeyCountGroup, error) {
	return r.campaigns, nil
}

func (r *fakeStatsRepo) GroupCallsByOperator(ctx context.Context, f entities.ReportFilter) ([]types.OperatorCountGroup, error) {
	return r.volume, nil
}

func (r *fakeStatsRepo) GetOperatorNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	return r.names, nil
}

func (r *fakeStatsRepo) CountOrders(ctx context.Context, f entities.ReportFilter) (int64, error) {
	return r.orders, nil
}

func (r *fakeStatsRepo) CountActiveOperators(ctx context.Context) (int64, error) {
	return r.activeOps, nil
}

func (r *fakeStatsRepo) CountDirectors(ctx context.Context) (int64, error) {
	return r.directors, nil
}

func (r *fakeStatsRepo) CountWorkingMasters(ctx context.Context) (int64, error) {
	return r.masters, nil
}

func (r *fakeStatsRepo) SumCleanClosedBetween(ctx context.Context, from, to time.Time) (float64, error) {
	return r.cleanSum, nil
}

func (r *fakeStatsRepo) SumCashBetween(ctx context.Context, name string, from, to time.Time) (float64, error) {
	r.mu.Lock()
	r.cashFrom, r.cashTo = from, to
	r.mu.Unlock()
	if name == "приход" {
		return r.cashIncome, nil
	}
	return r.cashExpense, nil
}

func newStatsService(repo *fakeStatsRepo) *StatsService {
	return NewStatsService(repo, zap.NewNop())
}

func TestGetOperatorStats(t *testing.T) {
	repo := &fakeStatsRepo{
		operator: &entities.Operator{ID: 3, Name: "Анна", StatusWork: "работает"},
		callGroups: []types.StatusCountGroup{
			{Status: "answered", Count: 12},
			{Status: "missed", Count: 2},
			{Status: "no_answer", Count: 1},
			// Прочие статусы телефонии в счет не идут.
			{Status: "voicemail", Count: 5},
		},
		avgDuration: 93.7,
		orderGroups: []types.StatusCountGroup{
			{Status: "Готово", Count: 4},
			{Status: "В работе", Count: 2},
		},
		daily:     []types.DailyCountGroup{{Day: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), Count: 3}},
		cities:    []types.KeyCountGroup{{Key: "Казань", Count: 7}, {Key: "Не указан", Count: 2}},
		campaigns: []types.KeyCountGroup{{Key: "avito-1", Count: 4}},
	}
	s := newStatsService(repo)

	result, err := s.GetOperatorStats(context.Background(), 3, dto.OperatorStatsQuery{})
	require.NoError(t, err)

	assert.Equal(t, int64(3), result.Operator.ID)
	assert.Equal(t, int64(15), result.Calls.Total)
	assert.Equal(t, int64(12), result.Calls.Accepted)
	assert.Equal(t, int64(3), result.Calls.Missed)
	assert.Equal(t, int64(80), result.Calls.AcceptanceRate)
	assert.Equal(t, int64(94), result.Calls.AvgDuration)

	assert.Equal(t, int64(6), result.Orders.Total)
	assert.Equal(t, int64(4), result.Orders.ByStatus["Готово"])
	assert.Equal(t, int64(2), result.Orders.ByStatus["В работе"])

	require.Len(t, result.DailyStats, 1)
	assert.Equal(t, "2025-06-10", result.DailyStats[0].Date)
	require.Len(t, result.CityStats, 2)
	assert.Equal(t, "Не указан", result.CityStats[1].City)
}

func TestGetOperatorStats_NotFound(t *testing.T) {
	s := newStatsService(&fakeStatsRepo{})

	_, err := s.GetOperatorStats(context.Background(), 404, dto.OperatorStatsQuery{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetOperatorStats_DefaultWindow(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	repo := &fakeStatsRepo{operator: &entities.Operator{ID: 1}}
	s := newStatsService(repo)
	s.now = func() time.Time { return now }

	result, err := s.GetOperatorStats(context.Background(), 1, dto.OperatorStatsQuery{})
	require.NoError(t, err)

	// Дефолтное окно: последние 30 дней от текущего момента.
	require.NotNil(t, repo.statsFilter.Start)
	assert.Equal(t, now.AddDate(0, 0, -30), *repo.statsFilter.Start)
	assert.Equal(t, now, *repo.statsFilter.End)
	assert.Equal(t, "2025-05-16T12:00:00Z", result.Period.StartDate)

	// Суточная разбивка привязана к концу запрошенного окна.
	require.NotNil(t, repo.dailyFilter.Start)
	assert.Equal(t, now.AddDate(0, 0, -7), *repo.dailyFilter.Start)
	assert.Equal(t, now, *repo.dailyFilter.End)
}

func TestGetOperatorStats_DailySeriesFollowsWindow(t *testing.T) {
	end := "2025-03-31"
	repo := &fakeStatsRepo{operator: &entities.Operator{ID: 1}}
	s := newStatsService(repo)

	_, err := s.GetOperatorStats(context.Background(), 1, dto.OperatorStatsQuery{
		DateRangeQuery: dto.DateRangeQuery{StartDate: "2025-03-01", EndDate: end},
	})
	require.NoError(t, err)

	// Историческое окно: неделя отсчитывается от его конца, не от "сейчас".
	endOfDay := time.Date(2025, 3, 31, 23, 59, 59, 999000000, time.UTC)
	require.NotNil(t, repo.dailyFilter.Start)
	assert.Equal(t, endOfDay.AddDate(0, 0, -7), *repo.dailyFilter.Start)
	assert.Equal(t, endOfDay, *repo.dailyFilter.End)
}

func TestGetOverallStats(t *testing.T) {
	repo := &fakeStatsRepo{
		callGroups: []types.StatusCountGroup{
			{Status: "answered", Count: 30},
			{Status: "missed", Count: 10},
		},
		orders: 25,
		volume: []types.OperatorCountGroup{
			{OperatorID: 1, Count: 22},
			{OperatorID: 2, Count: 18},
		},
		names:  map[int64]string{1: "Анна"},
		cities: []types.KeyCountGroup{{Key: "Казань", Count: 15}},
	}
	s := newStatsService(repo)

	result, err := s.GetOverallStats(context.Background(), dto.OperatorStatsQuery{})
	require.NoError(t, err)

	assert.Equal(t, int64(40), result.Calls.Total)
	assert.Equal(t, int64(75), result.Calls.AcceptanceRate)
	assert.Equal(t, int64(25), result.Orders.Total)

	require.Len(t, result.OperatorStats, 2)
	assert.Equal(t, "Анна", result.OperatorStats[0].OperatorName)
	// Оператор без имени в справочнике.
	assert.Equal(t, "Не указан", result.OperatorStats[1].OperatorName)
}

func TestGetAdminDashboard(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	repo := &fakeStatsRepo{
		activeOps:   8,
		directors:   2,
		masters:     12,
		orders:      140,
		cleanSum:    250000.4,
		cashIncome:  90000.6,
		cashExpense: 40000.2,
	}
	s := newStatsService(repo)
	s.now = func() time.Time { return now }

	result, err := s.GetAdminDashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(8), result.Employees.CallCentre)
	assert.Equal(t, int64(2), result.Employees.Directors)
	assert.Equal(t, int64(12), result.Employees.Masters)
	assert.Equal(t, int64(140), result.Orders)

	assert.Equal(t, int64(250000), result.Finance.Revenue)
	// Прибыль админки — приход кассы.
	assert.Equal(t, int64(90001), result.Finance.Profit)
	assert.Equal(t, int64(40000), result.Finance.Expenses)

	// Окно — календарный месяц целиком.
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), repo.cashFrom)
	assert.Equal(t, time.Date(2025, 6, 30, 23, 59, 59, 999000000, time.UTC), repo.cashTo)
}
