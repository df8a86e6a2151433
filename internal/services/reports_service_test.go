package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"callcentre-backend/internal/dto"
	"callcentre-backend/internal/entities"
	"callcentre-backend/pkg/config"
	"callcentre-backend/pkg/constants"
	"callcentre-backend/pkg/types"
	"callcentre-backend/pkg/utils"
)

type fakeReportsRepo struct {
	mu      sync.Mutex
	queries int

	orders       []entities.Order
	summary      types.OrdersSummary
	masters      []entities.Master
	master       *entities.Master
	masterGroups []types.MasterOrderGroup
	cash         []entities.CashTransaction
	income       float64
	expense      float64
	callFunnel   types.CallFunnel
	cityGroups   []types.CityStatusGroup
	checks       []types.CityCheckGroup
	escalated    []types.CityCountGroup
	cityCash     []types.CityCashGroup
	cityOrders   []entities.OrderWithMaster
	campaigns    []types.CampaignCityGroup

	cashFilter entities.ReportFilter
}

func (r *fakeReportsRepo) hit() {
	r.mu.Lock()
	r.queries++
	r.mu.Unlock()
}

func (r *fakeReportsRepo) queryCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queries
}

func (r *fakeReportsRepo) ListOrders(ctx context.Context, f entities.ReportFilter) ([]entities.Order, error) {
	r.hit()
	return r.orders, nil
}

func (r *fakeReportsRepo) GetOrdersSummary(ctx context.Context, f entities.ReportFilter, completed []string) (*types.OrdersSummary, error) {
	r.hit()
	summary := r.summary
	return &summary, nil
}

func (r *fakeReportsRepo) GetMasters(ctx context.Context, masterID *int64, cities []string) ([]entities.Master, error) {
	r.hit()
	return r.masters, nil
}

func (r *fakeReportsRepo) GetMasterByID(ctx context.Context, id int64) (*entities.Master, error) {
	r.hit()
	return r.master, nil
}

func (r *fakeReportsRepo) GroupOrdersByMasterCityStatus(ctx context.Context, f entities.ReportFilter, statuses []string) ([]types.MasterOrderGroup, error) {
	r.hit()
	return r.masterGroups, nil
}

func (r *fakeReportsRepo) ListCash(ctx context.Context, f entities.ReportFilter) ([]entities.CashTransaction, error) {
	r.hit()
	return r.cash, nil
}

func (r *fakeReportsRepo) GetCashTotals(ctx context.Context, f entities.ReportFilter) (income, expense float64, err error) {
	r.hit()
	return r.income, r.expense, nil
}

func (r *fakeReportsRepo) GetCallsSummary(ctx context.Context, f entities.ReportFilter) (*types.CallFunnel, error) {
	r.hit()
	funnel := r.callFunnel
	return &funnel, nil
}

func (r *fakeReportsRepo) GroupOrdersByCityStatusPartner(ctx context.Context, f entities.ReportFilter, statuses []string) ([]types.CityStatusGroup, error) {
	r.hit()
	return r.cityGroups, nil
}

func (r *fakeReportsRepo) GetCityCheckBuckets(ctx context.Context, f entities.ReportFilter, completed []string) ([]types.CityCheckGroup, error) {
	r.hit()
	return r.checks, nil
}

func (r *fakeReportsRepo) CountEscalatedByCity(ctx context.Context, cities []string) ([]types.CityCountGroup, error) {
	r.hit()
	return r.escalated, nil
}

func (r *fakeReportsRepo) GetCashByCity(ctx context.Context, f entities.ReportFilter) ([]types.CityCashGroup, error) {
	r.hit()
	r.mu.Lock()
	r.cashFilter = f
	r.mu.Unlock()
	return r.cityCash, nil
}

func (r *fakeReportsRepo) ListCityOrders(ctx context.Context, city string, f entities.ReportFilter) ([]entities.OrderWithMaster, error) {
	r.hit()
	return r.cityOrders, nil
}

func (r *fakeReportsRepo) GroupCampaignsByCityRK(ctx context.Context, f entities.ReportFilter, statuses []string) ([]types.CampaignCityGroup, error) {
	r.hit()
	return r.campaigns, nil
}

func newReportsService(repo *fakeReportsRepo) *ReportsService {
	return NewReportsService(repo, nil, config.CacheConfig{}, zap.NewNop())
}

func TestGetOrdersReport_StatsFromSummary(t *testing.T) {
	// Сводка считается отдельным запросом: лимит листинга не влияет
	// на итоги.
	repo := &fakeReportsRepo{
		orders:  []entities.Order{{ID: 1, City: "Казань"}},
		summary: types.OrdersSummary{Total: 1500, Completed: 600, Revenue: 900000},
	}
	s := newReportsService(repo)

	result, err := s.GetOrdersReport(context.Background(), dto.OrdersReportQuery{})
	require.NoError(t, err)

	assert.Len(t, result.Orders, 1)
	assert.Equal(t, int64(1500), result.Stats.TotalCount)
	assert.Equal(t, int64(600), result.Stats.CompletedCount)
	assert.Equal(t, 900000.0, result.Stats.TotalRevenue)
	assert.Equal(t, int64(1500), result.Stats.AvgRevenue)
	assert.Equal(t, 2, repo.queryCount())
}

func TestGetMastersReport_Reduce(t *testing.T) {
	repo := &fakeReportsRepo{
		masters: []entities.Master{
			{ID: 1, Name: "Иванов", Cities: []string{"Казань", "Пермь"}},
		},
		masterGroups: []types.MasterOrderGroup{
			{MasterID: 1, City: "Казань", Status: constants.OrderStatusCompleted, Count: 4, CleanSum: 10000, ChangeSum: 4000},
			{MasterID: 1, City: "Казань", Status: constants.OrderStatusRefused, Count: 1, CleanSum: 500, ChangeSum: 200},
			{MasterID: 1, City: "Пермь", Status: constants.OrderStatusCompleted, Count: 2, CleanSum: 3000, ChangeSum: 1000},
		},
	}
	s := newReportsService(repo)

	result, err := s.GetMastersReport(context.Background(), dto.MastersReportQuery{})
	require.NoError(t, err)
	require.Len(t, result, 2)

	kazan := result[0]
	assert.Equal(t, "Казань", kazan.City)
	// Всего = Готово + Отказ, деньги — только Готово.
	assert.Equal(t, int64(5), kazan.TotalOrders)
	assert.Equal(t, 10000.0, kazan.Turnover)
	assert.Equal(t, 4000.0, kazan.Salary)
	assert.Equal(t, 2000.0, kazan.AvgCheck)

	perm := result[1]
	assert.Equal(t, "Пермь", perm.City)
	assert.Equal(t, int64(2), perm.TotalOrders)
	assert.Equal(t, 3000.0, perm.Turnover)

	assert.Equal(t, 2, repo.queryCount())
}

func TestGetMastersReport_DirectorScope(t *testing.T) {
	repo := &fakeReportsRepo{
		masters: []entities.Master{
			{ID: 1, Name: "Иванов", Cities: []string{"Казань", "Москва"}},
		},
	}
	s := newReportsService(repo)

	ctx := utils.WithIdentity(context.Background(), 5, constants.RoleDirector, "director", []string{"Казань"})
	result, err := s.GetMastersReport(ctx, dto.MastersReportQuery{})
	require.NoError(t, err)

	// Москва вне зоны директора и в отчет не попадает.
	require.Len(t, result, 1)
	assert.Equal(t, "Казань", result[0].City)
}

func TestGetFinanceReport(t *testing.T) {
	repo := &fakeReportsRepo{
		cash:    []entities.CashTransaction{{ID: 1, Name: constants.CashIncome, Amount: 700}},
		income:  700,
		expense: 300,
	}
	s := newReportsService(repo)

	result, err := s.GetFinanceReport(context.Background(), dto.FinanceReportQuery{})
	require.NoError(t, err)

	assert.Equal(t, 1000.0, result.Total)
	assert.Equal(t, 700.0, result.ByName.Income)
	assert.Equal(t, 300.0, result.ByName.Expense)
	assert.Len(t, result.Transactions, 1)
}

func TestGetCallsReport(t *testing.T) {
	repo := &fakeReportsRepo{
		callFunnel: types.CallFunnel{Total: 30, Answered: 20, Missed: 10, AvgDuration: 84.6},
	}
	s := newReportsService(repo)

	result, err := s.GetCallsReport(context.Background(), dto.CallsReportQuery{})
	require.NoError(t, err)

	assert.Equal(t, int64(30), result.TotalCalls)
	assert.Equal(t, int64(10), result.MissedCalls)
	assert.Equal(t, int64(85), result.AvgDuration)
	// Процент ответа здесь до целого.
	assert.Equal(t, int64(67), result.AnswerRate)
}

func TestGetCityReport_Reduce(t *testing.T) {
	repo := &fakeReportsRepo{
		cityGroups: []types.CityStatusGroup{
			{City: "Казань", Status: constants.OrderStatusCompleted, Partner: false, Count: 4, CleanSum: 20000, ChangeSum: 8000, MaxClean: 9000},
			{City: "Казань", Status: constants.OrderStatusCompleted, Partner: true, Count: 2, CleanSum: 12000, ChangeSum: 5000, MaxClean: 11000},
			// Готово без денег: нулевые заказы.
			{City: "Казань", Status: constants.OrderStatusCompleted, Partner: false, Count: 1, CleanSum: 0, ChangeSum: 0},
			{City: "Казань", Status: constants.OrderStatusRefused, Count: 2, CleanSum: 0, ChangeSum: 0},
			{City: "Казань", Status: constants.OrderStatusNonOrder, Count: 3},
		},
		checks:    []types.CityCheckGroup{{City: "Казань", MicroCount: 2, Over10kCount: 1}},
		escalated: []types.CityCountGroup{{City: "Казань", Count: 4}},
		cityCash: []types.CityCashGroup{
			{City: "Казань", Name: constants.CashIncome, Amount: 5000},
			{City: "Казань", Name: constants.CashExpense, Amount: 2000},
		},
	}
	s := newReportsService(repo)

	result, err := s.GetCityReport(context.Background(), dto.CityReportQuery{})
	require.NoError(t, err)
	require.Len(t, result, 1)
	row := result[0]

	// Всего = Готово+Отказ+Незаказ, закрытые работы = Готово+Отказ.
	assert.Equal(t, int64(12), row.Stats.TotalOrders)
	assert.Equal(t, int64(9), row.Stats.CompletedOrders)
	assert.Equal(t, int64(3), row.Stats.NonOrders)
	assert.Equal(t, int64(2), row.Orders.Refusals)
	// Нулевые: Готово и Отказ без денег.
	assert.Equal(t, int64(3), row.Stats.ZeroOrders)
	// Закрыто с деньгами 6 из 9 закрытых работ.
	assert.Equal(t, 66.67, row.Stats.CompletedPercent)

	assert.Equal(t, 32000.0, row.Stats.Turnover)
	assert.Equal(t, 13000.0, row.Stats.Profit)
	assert.Equal(t, 20000.0, row.Orders.TotalCleanOwn)
	assert.Equal(t, 12000.0, row.Orders.TotalCleanPartner)
	assert.Equal(t, 11000.0, row.Stats.MaxCheck)
	assert.Equal(t, int64(2), row.Stats.MicroCheckCount)
	assert.Equal(t, int64(1), row.Stats.Over10kCount)
	assert.Equal(t, int64(4), row.Stats.EscalatedOrders)

	assert.Equal(t, 5000.0, row.Cash.Income)
	assert.Equal(t, 3000.0, row.Cash.Balance)

	// Средний чек: оборот на закрытую работу.
	assert.InDelta(t, 3555.56, row.Stats.AvgCheck, 0.01)
	assert.Equal(t, 4, repo.queryCount())
}

func TestGetCityReport_CashWithoutDates(t *testing.T) {
	repo := &fakeReportsRepo{}
	s := newReportsService(repo)

	q := dto.CityReportQuery{DateRangeQuery: dto.DateRangeQuery{StartDate: "2025-01-01", EndDate: "2025-01-31"}}
	_, err := s.GetCityReport(context.Background(), q)
	require.NoError(t, err)

	// Баланс города накопительный: касса не режется датами отчета.
	assert.Nil(t, repo.cashFilter.Start)
	assert.Nil(t, repo.cashFilter.End)
}

func TestGetCityReport_DirectorEmptyScope(t *testing.T) {
	repo := &fakeReportsRepo{}
	s := newReportsService(repo)

	ctx := utils.WithIdentity(context.Background(), 5, constants.RoleDirector, "director", []string{"Казань"})
	moscow := "Москва"
	result, err := s.GetCityReport(ctx, dto.CityReportQuery{City: &moscow})
	require.NoError(t, err)

	assert.Empty(t, result)
	// Заведомо пустой результат не ходит в базу.
	assert.Equal(t, 0, repo.queryCount())
}

func TestGetCityReport_DirectorSeesAllHisCities(t *testing.T) {
	// Города зоны без данных тоже попадают в отчет нулевыми строками.
	repo := &fakeReportsRepo{
		cityGroups: []types.CityStatusGroup{
			{City: "Казань", Status: constants.OrderStatusCompleted, Count: 1, CleanSum: 1000},
		},
	}
	s := newReportsService(repo)

	ctx := utils.WithIdentity(context.Background(), 5, constants.RoleDirector, "director", []string{"Казань", "Пермь"})
	result, err := s.GetCityReport(ctx, dto.CityReportQuery{})
	require.NoError(t, err)

	require.Len(t, result, 2)
	assert.Equal(t, "Казань", result[0].City)
	assert.Equal(t, "Пермь", result[1].City)
	assert.Equal(t, int64(0), result[1].Stats.TotalOrders)
}

func TestGetCityDetail_OutOfScope(t *testing.T) {
	repo := &fakeReportsRepo{
		cityOrders: []entities.OrderWithMaster{{Order: entities.Order{ID: 1}}},
	}
	s := newReportsService(repo)

	ctx := utils.WithIdentity(context.Background(), 5, constants.RoleDirector, "director", []string{"Казань"})
	result, err := s.GetCityDetail(ctx, "Москва", dto.CityReportQuery{})
	require.NoError(t, err)

	assert.Equal(t, "Москва", result.City)
	assert.Empty(t, result.Orders)
	assert.Equal(t, 0, repo.queryCount())
}

func TestGetMasterStatistics(t *testing.T) {
	repo := &fakeReportsRepo{
		master: &entities.Master{ID: 9, Name: "Петров", Cities: []string{"Казань", "Пермь"}},
		masterGroups: []types.MasterOrderGroup{
			{MasterID: 9, City: "Казань", Status: constants.OrderStatusCompleted, Count: 5, CleanSum: 25000, ChangeSum: 10000},
			{MasterID: 9, City: "Казань", Status: constants.OrderStatusEscalated, Count: 2},
		},
	}
	s := newReportsService(repo)

	ctx := utils.WithIdentity(context.Background(), 9, constants.RoleMaster, "master", nil)
	result, err := s.GetMasterStatistics(ctx, dto.OperatorStatsQuery{})
	require.NoError(t, err)
	require.Len(t, result, 2)

	kazan := result[0]
	assert.Equal(t, int64(5), kazan.ClosedOrders)
	assert.Equal(t, int64(2), kazan.EscalatedOrders)
	assert.Equal(t, 25000.0, kazan.TotalRevenue)
	assert.Equal(t, 5000.0, kazan.AvgCheck)
	assert.Equal(t, 10000.0, kazan.Salary)

	// Город без заказов отдается нулевой строкой.
	perm := result[1]
	assert.Equal(t, "Пермь", perm.City)
	assert.Equal(t, int64(0), perm.ClosedOrders)

	// Поиск мастера и одна группировка.
	assert.Equal(t, 2, repo.queryCount())
}

func TestGetCampaignsReport_GroupedByCity(t *testing.T) {
	avito := "Ремонт холодильников"
	repo := &fakeReportsRepo{
		campaigns: []types.CampaignCityGroup{
			{City: "Казань", RK: "avito-1", AvitoName: &avito, Count: 3, CleanSum: 9000, ChangeSum: 3000},
			{City: "Казань", RK: "avito-2", Count: 1, CleanSum: 2000, ChangeSum: 500},
			{City: "Пермь", RK: "avito-1", Count: 2, CleanSum: 4000, ChangeSum: 1500},
		},
	}
	s := newReportsService(repo)

	result, err := s.GetCampaignsReport(context.Background(), dto.CampaignsReportQuery{})
	require.NoError(t, err)
	require.Len(t, result, 2)

	assert.Equal(t, "Казань", result[0].City)
	require.Len(t, result[0].Campaigns, 2)
	assert.Equal(t, "avito-1", result[0].Campaigns[0].RK)
	assert.Equal(t, 9000.0, result[0].Campaigns[0].Revenue)

	assert.Equal(t, "Пермь", result[1].City)
	require.Len(t, result[1].Campaigns, 1)
}
