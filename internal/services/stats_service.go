package services

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"callcentre-backend/internal/dto"
	"callcentre-backend/internal/entities"
	"callcentre-backend/internal/repositories"
	"callcentre-backend/pkg/constants"
	apperrors "callcentre-backend/pkg/errors"
	"callcentre-backend/pkg/types"
)

// Дефолтное окно личной и общей статистики.
const defaultStatsWindow = 30 * 24 * time.Hour

// StatsService — личная статистика операторов, общая статистика
// колл-центра и сводка для админки.
type StatsService struct {
	repo   repositories.StatsRepositoryInterface
	logger *zap.Logger

	now func() time.Time
}

func NewStatsService(repo repositories.StatsRepositoryInterface, logger *zap.Logger) *StatsService {
	return &StatsService{repo: repo, logger: logger, now: time.Now}
}

// statsRange - явные границы или последние 30 дней.
func (s *StatsService) statsRange(q dto.OperatorStatsQuery) (time.Time, time.Time, error) {
	start, end, err := q.Range()
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	now := s.now()
	if end == nil {
		end = &now
	}
	if start == nil {
		from := end.Add(-defaultStatsWindow)
		start = &from
	}
	return *start, *end, nil
}

// GetOperatorStats - статистика одного оператора: звонки по статусам,
// заказы, разбивки по дням, городам и кампаниям. Шесть параллельных
// запросов после проверки существования оператора.
func (s *StatsService) GetOperatorStats(ctx context.Context, operatorID int64, q dto.OperatorStatsQuery) (*dto.OperatorStatsDTO, error) {
	operator, err := s.repo.GetOperatorByID(ctx, operatorID)
	if err != nil {
		return nil, err
	}

	start, end, err := s.statsRange(q)
	if err != nil {
		return nil, err
	}
	f := entities.ReportFilter{Start: &start, End: &end, OperatorID: &operatorID}

	// Суточная разбивка всегда за последнюю неделю.
	weekAgo := end.AddDate(0, 0, -7)
	dailyFilter := entities.ReportFilter{Start: &weekAgo, End: &end, OperatorID: &operatorID}
	answered := []string{constants.CallStatusAnswered}

	var (
		wg          sync.WaitGroup
		callGroups  []types.StatusCountGroup
		avgDuration float64
		orderGroups []types.StatusCountGroup
		daily       []types.DailyCountGroup
		cities      []types.KeyCountGroup
		campaigns   []types.KeyCountGroup

		errs []error
		mu   sync.Mutex
	)

	addTask := func(fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}

	addTask(func() (err error) { callGroups, err = s.repo.GroupCallsByStatus(ctx, f); return })
	addTask(func() (err error) { avgDuration, err = s.repo.GetAvgCallDuration(ctx, f); return })
	addTask(func() (err error) { orderGroups, err = s.repo.GroupOrdersByStatus(ctx, f); return })
	addTask(func() (err error) { daily, err = s.repo.GetDailyCalls(ctx, dailyFilter, answered); return })
	addTask(func() (err error) { cities, err = s.repo.GroupCallsByCity(ctx, f, answered); return })
	addTask(func() (err error) { campaigns, err = s.repo.GroupCallsByRK(ctx, f, answered); return })

	wg.Wait()

	if len(errs) > 0 {
		s.logger.Error("ошибка статистики оператора", zap.Int64("operator_id", operatorID), zap.Error(errs[0]))
		return nil, apperrors.NewInternalError("Ошибка загрузки статистики")
	}

	var accepted, missed int64
	for _, g := range callGroups {
		switch {
		case g.Status == constants.CallStatusAnswered:
			accepted += g.Count
		case contains(constants.MissedCallStatuses, g.Status):
			missed += g.Count
		}
	}
	// Всего = принятые + пропущенные; прочие статусы телефонии
	// в счет не идут.
	totalCalls := accepted + missed

	byStatus := make(map[string]int64, len(orderGroups))
	var totalOrders int64
	for _, g := range orderGroups {
		byStatus[g.Status] = g.Count
		totalOrders += g.Count
	}

	dailyStats := make([]dto.DailyCallsDTO, 0, len(daily))
	for _, d := range daily {
		dailyStats = append(dailyStats, dto.DailyCallsDTO{Date: isoDate(d.Day), Calls: d.Count})
	}
	cityStats := make([]dto.CityCallsDTO, 0, len(cities))
	for _, c := range cities {
		cityStats = append(cityStats, dto.CityCallsDTO{City: c.Key, Calls: c.Count})
	}
	rkStats := make([]dto.RKCallsDTO, 0, len(campaigns))
	for _, c := range campaigns {
		rkStats = append(rkStats, dto.RKCallsDTO{RK: c.Key, Calls: c.Count})
	}

	return &dto.OperatorStatsDTO{
		Operator: dto.OperatorInfoDTO{
			ID:         operator.ID,
			Name:       operator.Name,
			City:       operator.City,
			StatusWork: operator.StatusWork,
		},
		Period: dto.StatsPeriodDTO{
			StartDate: start.UTC().Format(time.RFC3339),
			EndDate:   end.UTC().Format(time.RFC3339),
		},
		Calls: dto.StatsCallsDTO{
			Total:          totalCalls,
			Accepted:       accepted,
			Missed:         missed,
			AcceptanceRate: rateInt(accepted, totalCalls),
			AvgDuration:    int64(math.Round(avgDuration)),
		},
		Orders: dto.StatsOrdersDTO{
			Total:    totalOrders,
			ByStatus: byStatus,
		},
		DailyStats: dailyStats,
		CityStats:  cityStats,
		RKStats:    rkStats,
	}, nil
}

// GetOverallStats - общая статистика колл-центра: звонки, заказы,
// нагрузка операторов, разбивки по городам и кампаниям.
func (s *StatsService) GetOverallStats(ctx context.Context, q dto.OperatorStatsQuery) (*dto.OverallStatsDTO, error) {
	start, end, err := s.statsRange(q)
	if err != nil {
		return nil, err
	}
	f := entities.ReportFilter{Start: &start, End: &end}

	var (
		wg          sync.WaitGroup
		callGroups  []types.StatusCountGroup
		totalOrders int64
		volume      []types.OperatorCountGroup
		cities      []types.KeyCountGroup
		campaigns   []types.KeyCountGroup

		errs []error
		mu   sync.Mutex
	)

	addTask := func(fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}

	addTask(func() (err error) { callGroups, err = s.repo.GroupCallsByStatus(ctx, f); return })
	addTask(func() (err error) { totalOrders, err = s.repo.CountOrders(ctx, f); return })
	addTask(func() (err error) { volume, err = s.repo.GroupCallsByOperator(ctx, f); return })
	addTask(func() (err error) { cities, err = s.repo.GroupCallsByCity(ctx, f, nil); return })
	addTask(func() (err error) { campaigns, err = s.repo.GroupCallsByRK(ctx, f, nil); return })

	wg.Wait()

	if len(errs) > 0 {
		s.logger.Error("ошибка общей статистики", zap.Error(errs[0]))
		return nil, apperrors.NewInternalError("Ошибка загрузки статистики")
	}

	// Имена операторов зависят от результата группировки,
	// этот запрос последовательный.
	ids := make([]int64, 0, len(volume))
	for _, v := range volume {
		ids = append(ids, v.OperatorID)
	}
	names, err := s.repo.GetOperatorNames(ctx, ids)
	if err != nil {
		s.logger.Error("ошибка загрузки имен операторов", zap.Error(err))
		return nil, apperrors.NewInternalError("Ошибка загрузки статистики")
	}

	var totalCalls, accepted, missed int64
	for _, g := range callGroups {
		totalCalls += g.Count
		switch {
		case g.Status == constants.CallStatusAnswered:
			accepted += g.Count
		case contains(constants.MissedCallStatuses, g.Status):
			missed += g.Count
		}
	}

	operatorStats := make([]dto.OperatorVolumeDTO, 0, len(volume))
	for _, v := range volume {
		name := names[v.OperatorID]
		if name == "" {
			name = "Не указан"
		}
		operatorStats = append(operatorStats, dto.OperatorVolumeDTO{
			OperatorID:   v.OperatorID,
			OperatorName: name,
			Calls:        v.Count,
		})
	}
	cityStats := make([]dto.CityCallsDTO, 0, len(cities))
	for _, c := range cities {
		cityStats = append(cityStats, dto.CityCallsDTO{City: c.Key, Calls: c.Count})
	}
	rkStats := make([]dto.RKCallsDTO, 0, len(campaigns))
	for _, c := range campaigns {
		rkStats = append(rkStats, dto.RKCallsDTO{RK: c.Key, Calls: c.Count})
	}

	return &dto.OverallStatsDTO{
		Period: dto.StatsPeriodDTO{
			StartDate: start.UTC().Format(time.RFC3339),
			EndDate:   end.UTC().Format(time.RFC3339),
		},
		Calls: dto.OverallCallsDTO{
			Total:          totalCalls,
			Accepted:       accepted,
			Missed:         missed,
			AcceptanceRate: rateInt(accepted, totalCalls),
		},
		Orders:        dto.StatsOrdersDTO{Total: totalOrders},
		OperatorStats: operatorStats,
		CityStats:     cityStats,
		RKStats:       rkStats,
	}, nil
}

// GetAdminDashboard - сводка за текущий календарный месяц: штат,
// заказы и деньги.
func (s *StatsService) GetAdminDashboard(ctx context.Context) (*dto.AdminDashboardDTO, error) {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := dto.EndOfDay(monthStart.AddDate(0, 1, -1))
	monthFilter := entities.ReportFilter{Start: &monthStart, End: &monthEnd}

	var (
		wg                           sync.WaitGroup
		operators, directors, masters int64
		orders                       int64
		revenue, income, expenses    float64

		errs []error
		mu   sync.Mutex
	)

	addTask := func(fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}

	addTask(func() (err error) { operators, err = s.repo.CountActiveOperators(ctx); return })
	addTask(func() (err error) { directors, err = s.repo.CountDirectors(ctx); return })
	addTask(func() (err error) { masters, err = s.repo.CountWorkingMasters(ctx); return })
	addTask(func() (err error) { orders, err = s.repo.CountOrders(ctx, monthFilter); return })
	addTask(func() (err error) { revenue, err = s.repo.SumCleanClosedBetween(ctx, monthStart, monthEnd); return })
	addTask(func() (err error) {
		income, err = s.repo.SumCashBetween(ctx, constants.CashIncome, monthStart, monthEnd)
		return
	})
	addTask(func() (err error) {
		expenses, err = s.repo.SumCashBetween(ctx, constants.CashExpense, monthStart, monthEnd)
		return
	})

	wg.Wait()

	if len(errs) > 0 {
		s.logger.Error("ошибка сводки админки", zap.Error(errs[0]))
		return nil, apperrors.NewInternalError("Ошибка загрузки статистики")
	}

	return &dto.AdminDashboardDTO{
		Employees: dto.AdminEmployeesDTO{
			CallCentre: operators,
			Directors:  directors,
			Masters:    masters,
		},
		Orders: orders,
		// "Прибыль" в админке — это приход кассы, так сложилось
		// в отчетности и так его читает фронт.
		Finance: dto.AdminFinanceDTO{
			Revenue:  int64(math.Round(revenue)),
			Profit:   int64(math.Round(income)),
			Expenses: int64(math.Round(expenses)),
		},
	}, nil
}
