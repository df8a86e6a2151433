package services

import (
	"context"
	"math"
	"sort"
	"sync"

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

// ReportsService собирает операционные отчеты: заказы, мастера,
// касса, звонки, города, кампании. Та же схема, что и в аналитике:
// фильтр, параллельные группирующие запросы, свертка в памяти.
type ReportsService struct {
	repo   repositories.ReportsRepositoryInterface
	rc     reportCache
	ttl    config.CacheConfig
	logger *zap.Logger
}

func NewReportsService(
	repo repositories.ReportsRepositoryInterface,
	cache repositories.CacheRepositoryInterface,
	ttl config.CacheConfig,
	logger *zap.Logger,
) *ReportsService {
	return &ReportsService{
		repo:   repo,
		rc:     reportCache{cache: cache, logger: logger},
		ttl:    ttl,
		logger: logger,
	}
}

func (s *ReportsService) scopeToDirector(ctx context.Context, f *entities.ReportFilter) {
	if utils.GetRoleFromCtx(ctx) == constants.RoleDirector {
		f.AllowedCities = utils.GetCitiesFromCtx(ctx)
	}
}

// GetOrdersReport - листинг заказов со сводкой. Листинг и сводка
// считаются параллельно, сводка не зависит от лимита листинга.
func (s *ReportsService) GetOrdersReport(ctx context.Context, q dto.OrdersReportQuery) (*dto.OrdersReportDTO, error) {
	start, end, err := q.Range()
	if err != nil {
		return nil, err
	}
	f := entities.ReportFilter{
		Start:      start,
		End:        end,
		City:       q.City,
		Status:     q.Status,
		OperatorID: q.OperatorID,
		MasterID:   q.MasterID,
	}
	s.scopeToDirector(ctx, &f)

	key := s.rc.key("orders",
		fmtTime(start), fmtTime(end), fmtStr(q.City), fmtStr(q.Status), fmtInt(q.OperatorID), fmtInt(q.MasterID))
	var cached dto.OrdersReportDTO
	if s.rc.read(ctx, key, &cached) {
		return &cached, nil
	}

	var (
		wg      sync.WaitGroup
		orders  []entities.Order
		summary *types.OrdersSummary

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

	addTask(func() (err error) { orders, err = s.repo.ListOrders(ctx, f); return })
	addTask(func() (err error) {
		summary, err = s.repo.GetOrdersSummary(ctx, f, constants.AnalyticsPolicy.Completed)
		return
	})

	wg.Wait()

	if len(errs) > 0 {
		s.logger.Error("ошибка отчета по заказам", zap.Error(errs[0]))
		return nil, apperrors.NewInternalError("Ошибка формирования отчета")
	}
	if orders == nil {
		orders = []entities.Order{}
	}

	result := &dto.OrdersReportDTO{
		Orders: orders,
		Stats: dto.OrdersReportStatsDTO{
			TotalCount:     summary.Total,
			CompletedCount: summary.Completed,
			TotalRevenue:   summary.Revenue,
			AvgRevenue:     intAvg(summary.Revenue, summary.Completed),
		},
	}

	s.rc.write(ctx, key, result, s.ttl.ReportsTTL)
	return result, nil
}

// GetMastersReport - статистика мастеров по городам. Два запроса
// вместо четырех на каждую пару (мастер, город): список мастеров и
// одна группировка по (мастер, город, статус).
func (s *ReportsService) GetMastersReport(ctx context.Context, q dto.MastersReportQuery) ([]dto.MasterReportRowDTO, error) {
	start, end, err := q.Range()
	if err != nil {
		return nil, err
	}
	f := entities.ReportFilter{Start: start, End: end, City: q.City, MasterID: q.MasterID}
	s.scopeToDirector(ctx, &f)

	key := s.rc.key("masters", fmtTime(start), fmtTime(end), fmtStr(q.City), fmtInt(q.MasterID))
	var cached []dto.MasterReportRowDTO
	if s.rc.read(ctx, key, &cached) {
		return cached, nil
	}

	var (
		wg      sync.WaitGroup
		masters []entities.Master
		groups  []types.MasterOrderGroup

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

	addTask(func() (err error) { masters, err = s.repo.GetMasters(ctx, q.MasterID, f.AllowedCities); return })
	addTask(func() (err error) {
		groups, err = s.repo.GroupOrdersByMasterCityStatus(ctx, f, constants.MasterReportPolicy.Total)
		return
	})

	wg.Wait()

	if len(errs) > 0 {
		s.logger.Error("ошибка отчета по мастерам", zap.Error(errs[0]))
		return nil, apperrors.NewInternalError("Ошибка формирования отчета")
	}

	result := make([]dto.MasterReportRowDTO, 0, len(masters))
	for _, master := range masters {
		for _, city := range master.Cities {
			if len(f.AllowedCities) > 0 && !contains(f.AllowedCities, city) {
				continue
			}
			if q.City != nil && *q.City != city {
				continue
			}

			var totalOrders int64
			var turnover, salary float64
			for _, g := range groups {
				if g.MasterID != master.ID || g.City != city {
					continue
				}
				if constants.MasterReportPolicy.InTotal(g.Status) {
					totalOrders += g.Count
				}
				if constants.MasterReportPolicy.InCompleted(g.Status) {
					turnover += g.CleanSum
					salary += g.ChangeSum
				}
			}

			result = append(result, dto.MasterReportRowDTO{
				MasterID:    master.ID,
				MasterName:  master.Name,
				City:        city,
				TotalOrders: totalOrders,
				Turnover:    turnover,
				AvgCheck:    avgCheck(turnover, totalOrders),
				Salary:      salary,
			})
		}
	}

	s.rc.write(ctx, key, result, s.ttl.ReportsTTL)
	return result, nil
}

// GetFinanceReport - кассовая книга: итоги по приходу и расходу
// плюс листинг операций.
func (s *ReportsService) GetFinanceReport(ctx context.Context, q dto.FinanceReportQuery) (*dto.FinanceReportDTO, error) {
	start, end, err := q.Range()
	if err != nil {
		return nil, err
	}
	f := entities.ReportFilter{Start: start, End: end, City: q.City}
	s.scopeToDirector(ctx, &f)

	key := s.rc.key("finance", fmtTime(start), fmtTime(end), fmtStr(q.City))
	var cached dto.FinanceReportDTO
	if s.rc.read(ctx, key, &cached) {
		return &cached, nil
	}

	var (
		wg              sync.WaitGroup
		transactions    []entities.CashTransaction
		income, expense float64

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

	addTask(func() (err error) { transactions, err = s.repo.ListCash(ctx, f); return })
	addTask(func() (err error) { income, expense, err = s.repo.GetCashTotals(ctx, f); return })

	wg.Wait()

	if len(errs) > 0 {
		s.logger.Error("ошибка финансового отчета", zap.Error(errs[0]))
		return nil, apperrors.NewInternalError("Ошибка формирования отчета")
	}
	if transactions == nil {
		transactions = []entities.CashTransaction{}
	}

	result := &dto.FinanceReportDTO{
		Total:        income + expense,
		ByName:       dto.FinanceTotalsDTO{Income: income, Expense: expense},
		Transactions: transactions,
	}

	s.rc.write(ctx, key, result, s.ttl.ReportsTTL)
	return result, nil
}

// GetCallsReport - сводка звонков. Процент ответа здесь до целого.
func (s *ReportsService) GetCallsReport(ctx context.Context, q dto.CallsReportQuery) (*dto.CallsReportDTO, error) {
	start, end, err := q.Range()
	if err != nil {
		return nil, err
	}
	f := entities.ReportFilter{Start: start, End: end, OperatorID: q.OperatorID}

	key := s.rc.key("calls", fmtTime(start), fmtTime(end), fmtInt(q.OperatorID))
	var cached dto.CallsReportDTO
	if s.rc.read(ctx, key, &cached) {
		return &cached, nil
	}

	funnel, err := s.repo.GetCallsSummary(ctx, f)
	if err != nil {
		s.logger.Error("ошибка отчета по звонкам", zap.Error(err))
		return nil, apperrors.NewInternalError("Ошибка формирования отчета")
	}

	result := &dto.CallsReportDTO{
		TotalCalls:    funnel.Total,
		AnsweredCalls: funnel.Answered,
		MissedCalls:   funnel.Missed,
		AvgDuration:   int64(math.Round(funnel.AvgDuration)),
		AnswerRate:    rateInt(funnel.Answered, funnel.Total),
	}

	s.rc.write(ctx, key, result, s.ttl.ReportsTTL)
	return result, nil
}

// GetCityReport - развернутая сводка по городам: статусные группы,
// распределение чеков, модерация, касса. Четыре запроса на все города.
func (s *ReportsService) GetCityReport(ctx context.Context, q dto.CityReportQuery) ([]dto.CityReportRowDTO, error) {
	start, end, err := q.Range()
	if err != nil {
		return nil, err
	}
	f := entities.ReportFilter{Start: start, End: end, City: q.City}
	s.scopeToDirector(ctx, &f)

	scopedCities, emptyScope := f.EffectiveCities()
	if emptyScope {
		return []dto.CityReportRowDTO{}, nil
	}

	key := s.rc.key("city", fmtTime(start), fmtTime(end), fmtStr(q.City))
	var cached []dto.CityReportRowDTO
	if s.rc.read(ctx, key, &cached) {
		return cached, nil
	}

	var (
		wg        sync.WaitGroup
		groups    []types.CityStatusGroup
		checks    []types.CityCheckGroup
		escalated []types.CityCountGroup
		cash      []types.CityCashGroup

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
		groups, err = s.repo.GroupOrdersByCityStatusPartner(ctx, f, constants.CityReportPolicy.Total)
		return
	})
	addTask(func() (err error) {
		checks, err = s.repo.GetCityCheckBuckets(ctx, f, []string{constants.OrderStatusCompleted})
		return
	})
	addTask(func() (err error) { escalated, err = s.repo.CountEscalatedByCity(ctx, scopedCities); return })
	addTask(func() (err error) {
		// Касса без фильтра по датам: баланс города накопительный.
		cash, err = s.repo.GetCashByCity(ctx, entities.ReportFilter{City: f.City, AllowedCities: f.AllowedCities})
		return
	})

	wg.Wait()

	if len(errs) > 0 {
		s.logger.Error("ошибка отчета по городам", zap.Error(errs[0]))
		return nil, apperrors.NewInternalError("Ошибка формирования отчета")
	}

	cityList := scopedCities
	if len(cityList) == 0 {
		seen := map[string]bool{}
		for _, g := range groups {
			seen[g.City] = true
		}
		for _, g := range checks {
			seen[g.City] = true
		}
		for _, g := range escalated {
			seen[g.City] = true
		}
		for city := range seen {
			cityList = append(cityList, city)
		}
		sort.Strings(cityList)
	}

	result := make([]dto.CityReportRowDTO, 0, len(cityList))
	for _, city := range cityList {
		result = append(result, s.reduceCityRow(city, groups, checks, escalated, cash))
	}

	s.rc.write(ctx, key, result, s.ttl.ReportsTTL)
	return result, nil
}

// reduceCityRow сворачивает группы одного города в строку отчета.
func (s *ReportsService) reduceCityRow(
	city string,
	groups []types.CityStatusGroup,
	checks []types.CityCheckGroup,
	escalated []types.CityCountGroup,
	cash []types.CityCashGroup,
) dto.CityReportRowDTO {
	var totalOrders, completedOrders, nonOrders, refusals, zeroOrders, completedWithMoney int64
	var turnover, turnoverOwn, turnoverPartner, profit, maxCheck float64

	for _, g := range groups {
		if g.City != city {
			continue
		}
		if constants.CityReportPolicy.InTotal(g.Status) {
			totalOrders += g.Count
		}
		if constants.CityReportPolicy.InCompleted(g.Status) {
			completedOrders += g.Count
			if g.CleanSum == 0 {
				zeroOrders += g.Count
			}
		}
		switch g.Status {
		case constants.OrderStatusNonOrder:
			nonOrders += g.Count
		case constants.OrderStatusRefused:
			refusals += g.Count
		case constants.OrderStatusCompleted:
			turnover += g.CleanSum
			profit += g.ChangeSum
			if g.Partner {
				turnoverPartner += g.CleanSum
			} else {
				turnoverOwn += g.CleanSum
			}
			if g.CleanSum > 0 {
				completedWithMoney += g.Count
			}
			if g.MaxClean > maxCheck {
				maxCheck = g.MaxClean
			}
		}
	}

	var microCount, over10kCount int64
	for _, c := range checks {
		if c.City == city {
			microCount = c.MicroCount
			over10kCount = c.Over10kCount
			break
		}
	}

	var escalatedCount int64
	for _, e := range escalated {
		if e.City == city {
			escalatedCount = e.Count
			break
		}
	}

	var income, expense float64
	for _, c := range cash {
		if c.City != city {
			continue
		}
		switch c.Name {
		case constants.CashIncome:
			income += c.Amount
		case constants.CashExpense:
			expense += c.Amount
		}
	}

	cityAvgCheck := avgCheck(turnover, completedOrders)
	return dto.CityReportRowDTO{
		City: city,
		Orders: dto.CityReportOrdersDTO{
			ClosedOrders:      completedOrders,
			Refusals:          refusals,
			NonOrders:         nonOrders,
			TotalClean:        turnover,
			TotalCleanOwn:     turnoverOwn,
			TotalCleanPartner: turnoverPartner,
			TotalMasterChange: profit,
			AvgCheck:          cityAvgCheck,
		},
		Stats: dto.CityReportStatsDTO{
			Turnover:         turnover,
			Profit:           profit,
			TotalOrders:      totalOrders,
			NonOrders:        nonOrders,
			ZeroOrders:       zeroOrders,
			CompletedOrders:  completedOrders,
			CompletedPercent: rate(completedWithMoney, completedOrders),
			MicroCheckCount:  microCount,
			Over10kCount:     over10kCount,
			AvgCheck:         cityAvgCheck,
			MaxCheck:         maxCheck,
			EscalatedOrders:  escalatedCount,
		},
		Cash: dto.CityReportCashDTO{
			Income:  income,
			Expense: expense,
			Balance: income - expense,
		},
	}
}

// GetCityDetail - детализация заказов одного города. Город вне зоны
// директора дает пустой результат, а не ошибку.
func (s *ReportsService) GetCityDetail(ctx context.Context, city string, q dto.CityReportQuery) (*dto.CityDetailDTO, error) {
	start, end, err := q.Range()
	if err != nil {
		return nil, err
	}
	f := entities.ReportFilter{Start: start, End: end}
	s.scopeToDirector(ctx, &f)
	if len(f.AllowedCities) > 0 && !contains(f.AllowedCities, city) {
		return &dto.CityDetailDTO{City: city, Orders: []entities.OrderWithMaster{}}, nil
	}

	orders, err := s.repo.ListCityOrders(ctx, city, f)
	if err != nil {
		s.logger.Error("ошибка детализации по городу", zap.String("city", city), zap.Error(err))
		return nil, apperrors.NewInternalError("Ошибка формирования отчета")
	}
	if orders == nil {
		orders = []entities.OrderWithMaster{}
	}
	return &dto.CityDetailDTO{City: city, Orders: orders}, nil
}

// GetMasterStatistics - личная статистика мастера из токена: по
// каждому его городу закрытые работы, модерация, выручка и сдача.
// Одна группировка вместо четырех запросов на город.
func (s *ReportsService) GetMasterStatistics(ctx context.Context, q dto.OperatorStatsQuery) ([]dto.MasterStatsDTO, error) {
	masterID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	start, end, err := q.Range()
	if err != nil {
		return nil, err
	}

	master, err := s.repo.GetMasterByID(ctx, masterID)
	if err != nil {
		return nil, err
	}

	f := entities.ReportFilter{Start: start, End: end, MasterID: &masterID}
	statuses := []string{constants.OrderStatusCompleted, constants.OrderStatusEscalated}
	groups, err := s.repo.GroupOrdersByMasterCityStatus(ctx, f, statuses)
	if err != nil {
		s.logger.Error("ошибка статистики мастера", zap.Int64("master_id", masterID), zap.Error(err))
		return nil, apperrors.NewInternalError("Ошибка формирования отчета")
	}

	result := make([]dto.MasterStatsDTO, 0, len(master.Cities))
	for _, city := range master.Cities {
		var closed, escalated int64
		var revenue, salary float64
		for _, g := range groups {
			if g.City != city {
				continue
			}
			switch g.Status {
			case constants.OrderStatusCompleted:
				closed += g.Count
				revenue += g.CleanSum
				salary += g.ChangeSum
			case constants.OrderStatusEscalated:
				escalated += g.Count
			}
		}
		result = append(result, dto.MasterStatsDTO{
			City:            city,
			ClosedOrders:    closed,
			EscalatedOrders: escalated,
			TotalRevenue:    revenue,
			AvgCheck:        avgCheck(revenue, closed),
			Salary:          salary,
		})
	}
	return result, nil
}

// GetCampaignsReport - кампании по городам одним запросом.
func (s *ReportsService) GetCampaignsReport(ctx context.Context, q dto.CampaignsReportQuery) ([]dto.CityCampaignsDTO, error) {
	start, end, err := q.Range()
	if err != nil {
		return nil, err
	}
	f := entities.ReportFilter{Start: start, End: end, City: q.City}
	s.scopeToDirector(ctx, &f)

	key := s.rc.key("campaigns-by-city", fmtTime(start), fmtTime(end), fmtStr(q.City))
	var cached []dto.CityCampaignsDTO
	if s.rc.read(ctx, key, &cached) {
		return cached, nil
	}

	groups, err := s.repo.GroupCampaignsByCityRK(ctx, f, constants.MasterReportPolicy.Total)
	if err != nil {
		s.logger.Error("ошибка отчета по кампаниям", zap.Error(err))
		return nil, apperrors.NewInternalError("Ошибка формирования отчета")
	}

	byCity := make(map[string][]dto.CityCampaignDTO)
	var cityOrder []string
	for _, g := range groups {
		if _, ok := byCity[g.City]; !ok {
			cityOrder = append(cityOrder, g.City)
		}
		byCity[g.City] = append(byCity[g.City], dto.CityCampaignDTO{
			RK:          g.RK,
			AvitoName:   g.AvitoName,
			OrdersCount: g.Count,
			Revenue:     g.CleanSum,
			Profit:      g.ChangeSum,
		})
	}

	result := make([]dto.CityCampaignsDTO, 0, len(cityOrder))
	for _, city := range cityOrder {
		result = append(result, dto.CityCampaignsDTO{City: city, Campaigns: byCity[city]})
	}

	s.rc.write(ctx, key, result, s.ttl.ReportsTTL)
	return result, nil
}

