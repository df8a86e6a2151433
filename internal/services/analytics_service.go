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
	"callcentre-backend/pkg/config"
	"callcentre-backend/pkg/constants"
	apperrors "callcentre-backend/pkg/errors"
	"callcentre-backend/pkg/types"
	"callcentre-backend/pkg/utils"
)

// AnalyticsService собирает аналитические отчеты: параллельные
// группирующие запросы, join-ожидание, свертка в памяти.
// Количество запросов на отчет фиксировано и не зависит от числа
// операторов, городов и кампаний.
type AnalyticsService struct {
	repo   repositories.AnalyticsRepositoryInterface
	rc     reportCache
	ttl    config.CacheConfig
	logger *zap.Logger

	// Подменяется в тестах: дефолтные окна отчетов считаются от now.
	now func() time.Time
}

func NewAnalyticsService(
	repo repositories.AnalyticsRepositoryInterface,
	cache repositories.CacheRepositoryInterface,
	ttl config.CacheConfig,
	logger *zap.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		repo:   repo,
		rc:     reportCache{cache: cache, logger: logger},
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

func (s *AnalyticsService) buildFilter(ctx context.Context, start, end *time.Time) entities.ReportFilter {
	f := entities.ReportFilter{Start: start, End: end}
	if utils.GetRoleFromCtx(ctx) == constants.RoleDirector {
		f.AllowedCities = utils.GetCitiesFromCtx(ctx)
	}
	return f
}

// GetOperatorAnalytics - статистика по каждому оператору: звонки,
// заказы, выручка. Четыре запроса независимо от числа операторов.
func (s *AnalyticsService) GetOperatorAnalytics(ctx context.Context, q dto.OperatorAnalyticsQuery) ([]dto.OperatorAnalyticsDTO, error) {
	start, end, err := q.Range()
	if err != nil {
		return nil, err
	}
	f := s.buildFilter(ctx, start, end)
	f.OperatorID = q.OperatorID

	key := s.rc.key("operators", fmtTime(start), fmtTime(end), fmtInt(q.OperatorID))
	var cached []dto.OperatorAnalyticsDTO
	if s.rc.read(ctx, key, &cached) {
		return cached, nil
	}

	var (
		wg        sync.WaitGroup
		operators []entities.Operator
		calls     []types.OperatorCallGroup
		orders    []types.OperatorOrderGroup
		revenue   []types.OperatorSumGroup

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

	addTask(func() (err error) { operators, err = s.repo.GetOperators(ctx, q.OperatorID); return })
	addTask(func() (err error) { calls, err = s.repo.GroupCallsByOperatorStatus(ctx, f); return })
	addTask(func() (err error) { orders, err = s.repo.GroupOrdersByOperatorStatus(ctx, f); return })
	addTask(func() (err error) {
		revenue, err = s.repo.SumRevenueByOperator(ctx, f, constants.AnalyticsPolicy.Completed)
		return
	})

	wg.Wait()

	if len(errs) > 0 {
		s.logger.Error("ошибка сбора статистики операторов", zap.Error(errs[0]))
		return nil, apperrors.NewInternalError("Ошибка загрузки аналитики")
	}

	revenueByOp := make(map[int64]float64, len(revenue))
	for _, g := range revenue {
		revenueByOp[g.OperatorID] = g.Sum
	}

	result := make([]dto.OperatorAnalyticsDTO, 0, len(operators))
	for _, op := range operators {
		var opCalls []types.OperatorCallGroup
		var callsTotal, answered, missed int64
		for _, g := range calls {
			if g.OperatorID != op.ID {
				continue
			}
			opCalls = append(opCalls, g)
			callsTotal += g.Count
			switch {
			case g.Status == constants.CallStatusAnswered:
				answered += g.Count
			case contains(constants.MissedCallStatuses, g.Status):
				missed += g.Count
			}
		}

		var ordersTotal, completed int64
		for _, g := range orders {
			if g.OperatorID != op.ID {
				continue
			}
			ordersTotal += g.Count
			if constants.AnalyticsPolicy.InCompleted(g.Status) {
				completed += g.Count
			}
		}
		opRevenue := revenueByOp[op.ID]

		result = append(result, dto.OperatorAnalyticsDTO{
			OperatorID:   op.ID,
			OperatorName: op.Name,
			Status:       op.StatusWork,
			Calls: dto.OperatorCallsDTO{
				Total:       callsTotal,
				Answered:    answered,
				Missed:      missed,
				AvgDuration: int64(math.Round(weightedAvgDuration(opCalls))),
				AnswerRate:  rate(answered, callsTotal),
			},
			Orders: dto.OperatorOrdersDTO{
				Total:          ordersTotal,
				Completed:      completed,
				ConversionRate: rate(ordersTotal, answered),
				TotalRevenue:   opRevenue,
				AvgRevenue:     intAvg(opRevenue, completed),
			},
		})
	}

	s.rc.write(ctx, key, result, s.ttl.AnalyticsTTL)
	return result, nil
}

// GetCityAnalytics - сводка по городам. Звонки не несут города,
// поэтому в каждую строку подставляется общий объем звонков за
// период — известное ограничение телефонии.
func (s *AnalyticsService) GetCityAnalytics(ctx context.Context, q dto.CityAnalyticsQuery) ([]dto.CityAnalyticsDTO, error) {
	start, end, err := q.Range()
	if err != nil {
		return nil, err
	}
	f := s.buildFilter(ctx, start, end)
	f.City = q.City

	key := s.rc.key("cities", fmtTime(start), fmtTime(end), fmtStr(q.City))
	var cached []dto.CityAnalyticsDTO
	if s.rc.read(ctx, key, &cached) {
		return cached, nil
	}

	var (
		wg     sync.WaitGroup
		cities []types.CityOrderGroup
		funnel *types.CallFunnel

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

	addTask(func() (err error) {
		cities, err = s.repo.GroupOrdersByCity(ctx, f, constants.AnalyticsPolicy.Completed)
		return
	})
	addTask(func() (err error) {
		funnel, err = s.repo.GetCallFunnel(ctx, entities.ReportFilter{Start: start, End: end})
		return
	})

	wg.Wait()

	if len(errs) > 0 {
		s.logger.Error("ошибка сбора аналитики по городам", zap.Error(errs[0]))
		return nil, apperrors.NewInternalError("Ошибка загрузки аналитики")
	}

	result := make([]dto.CityAnalyticsDTO, 0, len(cities))
	for _, c := range cities {
		result = append(result, dto.CityAnalyticsDTO{
			City: c.City,
			Calls: dto.GroupCallsDTO{
				Total:    funnel.Total,
				Answered: funnel.Answered,
			},
			Orders: dto.GroupOrdersDTO{
				Total:          c.Count,
				Completed:      c.Completed,
				CompletionRate: rate(c.Completed, c.Count),
			},
			Revenue: dto.GroupRevenueDTO{
				Total: c.Revenue,
				Avg:   intAvg(c.Revenue, c.Completed),
			},
			ConversionRate: rate(c.Count, funnel.Answered),
		})
	}

	s.rc.write(ctx, key, result, s.ttl.AnalyticsTTL)
	return result, nil
}

// GetCampaignAnalytics - сводка по рекламным кампаниям, та же форма
// плюс ROI (выручка на заказ).
func (s *AnalyticsService) GetCampaignAnalytics(ctx context.Context, q dto.CampaignAnalyticsQuery) ([]dto.CampaignAnalyticsDTO, error) {
	start, end, err := q.Range()
	if err != nil {
		return nil, err
	}
	f := s.buildFilter(ctx, start, end)
	f.Campaign = q.Campaign

	key := s.rc.key("campaigns", fmtTime(start), fmtTime(end), fmtStr(q.Campaign))
	var cached []dto.CampaignAnalyticsDTO
	if s.rc.read(ctx, key, &cached) {
		return cached, nil
	}

	var (
		wg        sync.WaitGroup
		campaigns []types.CampaignOrderGroup
		funnel    *types.CallFunnel

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

	addTask(func() (err error) {
		campaigns, err = s.repo.GroupOrdersByCampaign(ctx, f, constants.AnalyticsPolicy.Completed)
		return
	})
	addTask(func() (err error) {
		funnel, err = s.repo.GetCallFunnel(ctx, entities.ReportFilter{Start: start, End: end})
		return
	})

	wg.Wait()

	if len(errs) > 0 {
		s.logger.Error("ошибка сбора аналитики по кампаниям", zap.Error(errs[0]))
		return nil, apperrors.NewInternalError("Ошибка загрузки аналитики")
	}

	result := make([]dto.CampaignAnalyticsDTO, 0, len(campaigns))
	for _, c := range campaigns {
		result = append(result, dto.CampaignAnalyticsDTO{
			Campaign: c.RK,
			Calls: dto.GroupCallsDTO{
				Total:    funnel.Total,
				Answered: funnel.Answered,
			},
			Orders: dto.GroupOrdersDTO{
				Total:          c.Count,
				Completed:      c.Completed,
				CompletionRate: rate(c.Completed, c.Count),
			},
			Revenue: dto.CampaignRevenueDTO{
				Total: c.Revenue,
				Avg:   intAvg(c.Revenue, c.Completed),
				ROI:   roi(c.Revenue, c.Count),
			},
			ConversionRate: rate(c.Count, funnel.Answered),
		})
	}

	s.rc.write(ctx, key, result, s.ttl.AnalyticsTTL)
	return result, nil
}

// GetDailyMetrics - временной ряд по дням. Дефолтное окно: с первого
// числа текущего месяца по текущий момент.
func (s *AnalyticsService) GetDailyMetrics(ctx context.Context, q dto.DailyAnalyticsQuery) ([]dto.DailyMetricDTO, error) {
	start, end, err := q.Range()
	if err != nil {
		return nil, err
	}
	if start == nil {
		now := s.now()
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		start = &monthStart
		if end == nil {
			end = &now
		}
	}
	f := s.buildFilter(ctx, start, end)
	f.City = q.City

	key := s.rc.key("daily", fmtTime(start), fmtTime(end), fmtStr(q.City))
	var cached []dto.DailyMetricDTO
	if s.rc.read(ctx, key, &cached) {
		return cached, nil
	}

	days, err := s.repo.GroupOrdersByDay(ctx, f, constants.AnalyticsPolicy.Completed)
	if err != nil {
		s.logger.Error("ошибка сбора суточных метрик", zap.Error(err))
		return nil, apperrors.NewInternalError("Ошибка загрузки аналитики")
	}

	result := make([]dto.DailyMetricDTO, 0, len(days))
	for _, d := range days {
		result = append(result, dto.DailyMetricDTO{
			Date:            isoDate(d.Day),
			TotalOrders:     d.Total,
			CompletedOrders: d.Completed,
			TotalRevenue:    d.Revenue,
		})
	}

	s.rc.write(ctx, key, result, s.ttl.AnalyticsTTL)
	return result, nil
}

// GetDashboard - моментальный снимок за именованный период.
// Три фиксированных запроса.
func (s *AnalyticsService) GetDashboard(ctx context.Context, q dto.DashboardQuery) (*dto.DashboardDTO, error) {
	period := q.Period
	if period == "" {
		period = "today"
	}

	now := s.now()
	var start time.Time
	switch period {
	case "week":
		start = now.AddDate(0, 0, -7)
	case "month":
		// С первого числа текущего месяца, не скользящий месяц назад.
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	default:
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}
	f := entities.ReportFilter{Start: &start, End: &now}

	key := s.rc.key("dashboard", period)
	var cached dto.DashboardDTO
	if s.rc.read(ctx, key, &cached) {
		return &cached, nil
	}

	var (
		wg        sync.WaitGroup
		orders    *types.OrderFunnel
		calls     *types.CallFunnel
		operators int64

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

	inProgress := []string{
		constants.OrderStatusInProgress,
		constants.OrderStatusMasterAssigned,
		constants.OrderStatusMasterOnRoute,
	}
	addTask(func() (err error) {
		orders, err = s.repo.GetOrderFunnel(ctx, f, constants.AnalyticsPolicy.Completed, inProgress)
		return
	})
	addTask(func() (err error) { calls, err = s.repo.GetCallFunnel(ctx, f); return })
	addTask(func() (err error) { operators, err = s.repo.CountActiveOperators(ctx); return })

	wg.Wait()

	if len(errs) > 0 {
		s.logger.Error("ошибка сбора дашборда", zap.Error(errs[0]))
		return nil, apperrors.NewInternalError("Ошибка загрузки дашборда")
	}

	result := &dto.DashboardDTO{
		Period: period,
		Orders: dto.DashboardOrdersDTO{
			Total:          orders.Total,
			Completed:      orders.Completed,
			InProgress:     orders.InProgress,
			CompletionRate: rate(orders.Completed, orders.Total),
		},
		Revenue: dto.GroupRevenueDTO{
			Total: orders.Revenue,
			Avg:   intAvg(orders.Revenue, orders.Completed),
		},
		Calls: dto.DashboardCallsDTO{
			Total:       calls.Total,
			Answered:    calls.Answered,
			AvgDuration: int64(math.Round(calls.AvgDuration)),
			AnswerRate:  rate(calls.Answered, calls.Total),
		},
		Performance: dto.DashboardPerformanceDTO{
			ConversionRate:  rate(orders.Total, calls.Answered),
			ActiveOperators: operators,
		},
	}

	s.rc.write(ctx, key, result, s.ttl.DashboardTTL)
	return result, nil
}

// GetPerformanceMetrics - воронка, времена и финансовый профиль за
// период. Шесть фиксированных запросов.
func (s *AnalyticsService) GetPerformanceMetrics(ctx context.Context, q dto.PerformanceQuery) (*dto.PerformanceDTO, error) {
	start, end, err := q.Range()
	if err != nil {
		return nil, err
	}
	f := s.buildFilter(ctx, start, end)

	key := s.rc.key("performance", fmtTime(start), fmtTime(end))
	var cached dto.PerformanceDTO
	if s.rc.read(ctx, key, &cached) {
		return &cached, nil
	}

	var (
		wg          sync.WaitGroup
		orderGroups []types.StatusCountGroup
		callGroups  []types.StatusCountGroup
		revenue     float64
		expenditure float64
		completion  []types.TimePair
		assignment  []types.TimePair

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

	addTask(func() (err error) { orderGroups, err = s.repo.GroupOrdersByStatus(ctx, f); return })
	addTask(func() (err error) { callGroups, err = s.repo.GroupCallsByStatus(ctx, f); return })
	addTask(func() (err error) {
		revenue, err = s.repo.SumOrderRevenue(ctx, f, constants.AnalyticsPolicy.Completed)
		return
	})
	addTask(func() (err error) { expenditure, err = s.repo.SumOrderExpenditure(ctx, f); return })
	addTask(func() (err error) {
		completion, err = s.repo.GetCompletionPairs(ctx, f, constants.AnalyticsPolicy.Completed)
		return
	})
	addTask(func() (err error) { assignment, err = s.repo.GetAssignmentPairs(ctx, f); return })

	wg.Wait()

	if len(errs) > 0 {
		s.logger.Error("ошибка сбора метрик эффективности", zap.Error(errs[0]))
		return nil, apperrors.NewInternalError("Ошибка загрузки аналитики")
	}

	var ordersTotal, completed, cancelled int64
	for _, g := range orderGroups {
		ordersTotal += g.Count
		if constants.AnalyticsPolicy.InCompleted(g.Status) {
			completed += g.Count
		}
		if g.Status == constants.OrderStatusCancelled || g.Status == constants.OrderStatusRefused {
			cancelled += g.Count
		}
	}

	var callsTotal, answered, missed int64
	for _, g := range callGroups {
		callsTotal += g.Count
		switch {
		case g.Status == constants.CallStatusAnswered:
			answered += g.Count
		case contains(constants.MissedCallStatuses, g.Status):
			missed += g.Count
		}
	}

	profit := revenue - expenditure
	result := &dto.PerformanceDTO{
		Orders: dto.PerformanceOrdersDTO{
			Total:            ordersTotal,
			Completed:        completed,
			Cancelled:        cancelled,
			CompletionRate:   rate(completed, ordersTotal),
			CancellationRate: rate(cancelled, ordersTotal),
		},
		Calls: dto.PerformanceCallsDTO{
			Total:      callsTotal,
			Answered:   answered,
			Missed:     missed,
			AnswerRate: rate(answered, callsTotal),
			MissRate:   rate(missed, callsTotal),
		},
		Timing: dto.PerformanceTimingDTO{
			AvgCompletionHours: avgHours(completion),
			AvgAssignHours:     avgHours(assignment),
		},
		Finance: dto.PerformanceFinanceDTO{
			Revenue:      revenue,
			Expenditure:  expenditure,
			Profit:       profit,
			ProfitMargin: moneyRate(profit, revenue),
		},
		Conversion: dto.PerformanceConversionDTO{
			CallToOrder:       rate(ordersTotal, answered),
			OrderToCompletion: rate(completed, ordersTotal),
		},
	}

	s.rc.write(ctx, key, result, s.ttl.AnalyticsTTL)
	return result, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
