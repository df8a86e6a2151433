package repositories

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"callcentre-backend/internal/entities"
	"callcentre-backend/pkg/constants"
	apperrors "callcentre-backend/pkg/errors"
	"callcentre-backend/pkg/types"
)

// Листинги ограничены: отчет — это сводка, а не выгрузка всей БД.
const reportListLimit = 1000

// ReportsRepositoryInterface — запросы операционных отчетов.
// Группирующие методы возвращают плоские строки "ключи + агрегаты",
// раскладка по отчетам происходит в сервисе.
type ReportsRepositoryInterface interface {
	ListOrders(ctx context.Context, f entities.ReportFilter) ([]entities.Order, error)
	GetOrdersSummary(ctx context.Context, f entities.ReportFilter, completed []string) (*types.OrdersSummary, error)
	GetMasters(ctx context.Context, masterID *int64, cities []string) ([]entities.Master, error)
	GetMasterByID(ctx context.Context, id int64) (*entities.Master, error)
	GroupOrdersByMasterCityStatus(ctx context.Context, f entities.ReportFilter, statuses []string) ([]types.MasterOrderGroup, error)
	ListCash(ctx context.Context, f entities.ReportFilter) ([]entities.CashTransaction, error)
	GetCashTotals(ctx context.Context, f entities.ReportFilter) (income, expense float64, err error)
	GetCallsSummary(ctx context.Context, f entities.ReportFilter) (*types.CallFunnel, error)
	GroupOrdersByCityStatusPartner(ctx context.Context, f entities.ReportFilter, statuses []string) ([]types.CityStatusGroup, error)
	GetCityCheckBuckets(ctx context.Context, f entities.ReportFilter, completed []string) ([]types.CityCheckGroup, error)
	CountEscalatedByCity(ctx context.Context, cities []string) ([]types.CityCountGroup, error)
	GetCashByCity(ctx context.Context, f entities.ReportFilter) ([]types.CityCashGroup, error)
	ListCityOrders(ctx context.Context, city string, f entities.ReportFilter) ([]entities.OrderWithMaster, error)
	GroupCampaignsByCityRK(ctx context.Context, f entities.ReportFilter, statuses []string) ([]types.CampaignCityGroup, error)
}

type ReportsRepository struct {
	storage Querier
	logger  *zap.Logger
}

func NewReportsRepository(storage Querier, logger *zap.Logger) ReportsRepositoryInterface {
	return &ReportsRepository{storage: storage, logger: logger}
}

var orderColumns = []string{
	"id", "operator_name_id", "master_id", "city", "rk", "avito_name",
	"client_name", "phone", "status_order", "create_date", "closing_data",
	"date_meeting", "result", "clean", "master_change", "expenditure", "partner",
}

func (r *ReportsRepository) ListOrders(ctx context.Context, f entities.ReportFilter) ([]entities.Order, error) {
	b := sq.Select(orderColumns...).
		From("orders").
		OrderBy("create_date DESC").
		Limit(reportListLimit)
	b = f.ApplyDateRange(b, entities.OrderDateCreated)
	b = f.ApplyOperator(b, "operator_name_id")
	b = f.ApplyMaster(b, "master_id")
	if f.Status != nil {
		b = b.Where(sq.Eq{"status_order": *f.Status})
	}
	b, empty := f.ApplyCityScope(b, "city")
	if empty {
		return []entities.Order{}, nil
	}

	sqlStr, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowToStructByName[entities.Order])
}

// GetOrdersSummary - сводка по той же выборке, но отдельным
// агрегирующим запросом: лимит листинга не искажает итоги.
func (r *ReportsRepository) GetOrdersSummary(ctx context.Context, f entities.ReportFilter, completed []string) (*types.OrdersSummary, error) {
	b := sq.Select().
		Column(sq.Expr("COUNT(id) AS total")).
		Column(sq.Expr("COUNT(id) FILTER (WHERE status_order = ANY(?)) AS completed", completed)).
		Column(sq.Expr("COALESCE(SUM(result) FILTER (WHERE status_order = ANY(?)), 0) AS revenue", completed)).
		From("orders")
	b = f.ApplyDateRange(b, entities.OrderDateCreated)
	b = f.ApplyOperator(b, "operator_name_id")
	b = f.ApplyMaster(b, "master_id")
	if f.Status != nil {
		b = b.Where(sq.Eq{"status_order": *f.Status})
	}
	b, empty := f.ApplyCityScope(b, "city")
	if empty {
		return &types.OrdersSummary{}, nil
	}

	sqlStr, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}
	summary := &types.OrdersSummary{}
	err = r.storage.QueryRow(ctx, sqlStr, args...).
		Scan(&summary.Total, &summary.Completed, &summary.Revenue)
	return summary, err
}

// GetMasters - мастера, опционально суженные до одного id и до зоны
// директора. Пересечение городов через оператор && по массиву.
func (r *ReportsRepository) GetMasters(ctx context.Context, masterID *int64, cities []string) ([]entities.Master, error) {
	b := sq.Select("id", "name", "cities", "status_work").
		From("masters").
		OrderBy("name ASC")
	if masterID != nil {
		b = b.Where(sq.Eq{"id": *masterID})
	}
	if len(cities) > 0 {
		b = b.Where(sq.Expr("cities && ?", cities))
	}

	sqlStr, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowToStructByName[entities.Master])
}

func (r *ReportsRepository) GetMasterByID(ctx context.Context, id int64) (*entities.Master, error) {
	b := sq.Select("id", "name", "cities", "status_work").
		From("masters").
		Where(sq.Eq{"id": id})

	sqlStr, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	master, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[entities.Master])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &master, nil
}

// GroupOrdersByMasterCityStatus - заказы по тройкам (мастер, город,
// статус) с суммами денег. Один запрос на весь отчет по мастерам.
// Деньги фильтруются по дате закрытия: зарплата считается за период
// фактического закрытия работ.
func (r *ReportsRepository) GroupOrdersByMasterCityStatus(ctx context.Context, f entities.ReportFilter, statuses []string) ([]types.MasterOrderGroup, error) {
	b := sq.Select(
		"master_id",
		"city",
		"status_order AS status",
		"COUNT(id) AS count",
		"COALESCE(SUM(clean), 0) AS clean_sum",
		"COALESCE(SUM(master_change), 0) AS change_sum",
	).From("orders").
		Where("master_id IS NOT NULL").
		Where(sq.Eq{"status_order": statuses}).
		GroupBy("master_id", "city", "status_order")
	b = f.ApplyDateRange(b, entities.OrderDateClosed)
	b = f.ApplyMaster(b, "master_id")
	b, empty := f.ApplyCityScope(b, "city")
	if empty {
		return []types.MasterOrderGroup{}, nil
	}

	sqlStr, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowToStructByName[types.MasterOrderGroup])
}

func (r *ReportsRepository) ListCash(ctx context.Context, f entities.ReportFilter) ([]entities.CashTransaction, error) {
	b := sq.Select("id", "city", "name", "amount", "date", "created_at").
		From("cash").
		OrderBy("created_at DESC").
		Limit(reportListLimit)
	b = f.ApplyDateRange(b, entities.CashDateCreated)
	b, empty := f.ApplyCityScope(b, "city")
	if empty {
		return []entities.CashTransaction{}, nil
	}

	sqlStr, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowToStructByName[entities.CashTransaction])
}

// GetCashTotals - приход и расход одним запросом.
func (r *ReportsRepository) GetCashTotals(ctx context.Context, f entities.ReportFilter) (float64, float64, error) {
	b := sq.Select().
		Column(sq.Expr("COALESCE(SUM(amount) FILTER (WHERE name = ?), 0)", constants.CashIncome)).
		Column(sq.Expr("COALESCE(SUM(amount) FILTER (WHERE name = ?), 0)", constants.CashExpense)).
		From("cash")
	b = f.ApplyDateRange(b, entities.CashDateCreated)
	b, empty := f.ApplyCityScope(b, "city")
	if empty {
		return 0, 0, nil
	}

	sqlStr, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return 0, 0, err
	}
	var income, expense float64
	err = r.storage.QueryRow(ctx, sqlStr, args...).Scan(&income, &expense)
	return income, expense, err
}

func (r *ReportsRepository) GetCallsSummary(ctx context.Context, f entities.ReportFilter) (*types.CallFunnel, error) {
	b := sq.Select().
		Column(sq.Expr("COUNT(id)")).
		Column(sq.Expr("COUNT(id) FILTER (WHERE status = ?)", constants.CallStatusAnswered)).
		Column(sq.Expr("COUNT(id) FILTER (WHERE status = ANY(?))", constants.MissedCallStatuses)).
		Column(sq.Expr("COALESCE(AVG(duration), 0)")).
		From("calls")
	b = f.ApplyDateRange(b, entities.CallDateCreated)
	b = f.ApplyOperator(b, "operator_id")

	sqlStr, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}
	funnel := &types.CallFunnel{}
	err = r.storage.QueryRow(ctx, sqlStr, args...).
		Scan(&funnel.Total, &funnel.Answered, &funnel.Missed, &funnel.AvgDuration)
	return funnel, err
}

// GroupOrdersByCityStatusPartner - основа отчета по городам: четверки
// (город, статус, партнер) с количеством, суммами и максимальным
// чеком. Партнерские и свои заказы различаются в зарплатной части.
func (r *ReportsRepository) GroupOrdersByCityStatusPartner(ctx context.Context, f entities.ReportFilter, statuses []string) ([]types.CityStatusGroup, error) {
	b := sq.Select(
		"city",
		"status_order AS status",
		"partner",
		"COUNT(id) AS count",
		"COALESCE(SUM(clean), 0) AS clean_sum",
		"COALESCE(SUM(master_change), 0) AS change_sum",
		"COALESCE(MAX(clean), 0) AS max_clean",
	).From("orders").
		Where(sq.Eq{"status_order": statuses}).
		GroupBy("city", "status_order", "partner")
	b = f.ApplyDateRange(b, entities.OrderDateClosed)
	b, empty := f.ApplyCityScope(b, "city")
	if empty {
		return []types.CityStatusGroup{}, nil
	}

	sqlStr, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowToStructByName[types.CityStatusGroup])
}

// GetCityCheckBuckets - распределение чеков по городам: микрочеки
// (меньше 10 тысяч) и крупные. Считается только по выполненным.
func (r *ReportsRepository) GetCityCheckBuckets(ctx context.Context, f entities.ReportFilter, completed []string) ([]types.CityCheckGroup, error) {
	b := sq.Select("city").
		Column(sq.Expr("COUNT(id) FILTER (WHERE clean > 0 AND clean < 10000) AS micro_count")).
		Column(sq.Expr("COUNT(id) FILTER (WHERE clean >= 10000) AS over10k_count")).
		From("orders").
		Where(sq.Eq{"status_order": completed}).
		GroupBy("city")
	b = f.ApplyDateRange(b, entities.OrderDateClosed)
	b, empty := f.ApplyCityScope(b, "city")
	if empty {
		return []types.CityCheckGroup{}, nil
	}

	sqlStr, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowToStructByName[types.CityCheckGroup])
}

// CountEscalatedByCity - текущие заказы на модерации по городам.
// Без фильтра по датам: это бэклог, а не периодная метрика.
func (r *ReportsRepository) CountEscalatedByCity(ctx context.Context, cities []string) ([]types.CityCountGroup, error) {
	b := sq.Select("city", "COUNT(id) AS count").
		From("orders").
		Where(sq.Eq{"status_order": constants.OrderStatusEscalated}).
		GroupBy("city")
	if len(cities) > 0 {
		b = b.Where(sq.Eq{"city": cities})
	}

	sqlStr, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowToStructByName[types.CityCountGroup])
}

func (r *ReportsRepository) GetCashByCity(ctx context.Context, f entities.ReportFilter) ([]types.CityCashGroup, error) {
	b := sq.Select("city", "name", "COALESCE(SUM(amount), 0) AS amount").
		From("cash").
		GroupBy("city", "name")
	b = f.ApplyDateRange(b, entities.CashDate)
	b, empty := f.ApplyCityScope(b, "city")
	if empty {
		return []types.CityCashGroup{}, nil
	}

	sqlStr, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowToStructByName[types.CityCashGroup])
}

// ListCityOrders - детализация заказов одного города с именем мастера.
// Фильтр по дате создания: дрилдаун показывает весь поток заказов
// города, включая еще не закрытые.
func (r *ReportsRepository) ListCityOrders(ctx context.Context, city string, f entities.ReportFilter) ([]entities.OrderWithMaster, error) {
	b := sq.Select(
		"o.id", "o.operator_name_id", "o.master_id", "o.city", "o.rk",
		"o.avito_name", "o.client_name", "o.phone", "o.status_order",
		"o.create_date", "o.closing_data", "o.date_meeting", "o.result",
		"o.clean", "o.master_change", "o.expenditure", "o.partner",
		"m.name AS master_name",
	).From("orders o").
		LeftJoin("masters m ON o.master_id = m.id").
		Where(sq.Eq{"o.city": city}).
		OrderBy("o.create_date DESC").
		Limit(reportListLimit)
	b = f.ApplyDateRange(b, "o."+entities.OrderDateCreated)

	sqlStr, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowToStructByName[entities.OrderWithMaster])
}

// GroupCampaignsByCityRK - рекламные кампании по городам: тройки
// (город, рк, имя на Авито) с количеством и деньгами.
func (r *ReportsRepository) GroupCampaignsByCityRK(ctx context.Context, f entities.ReportFilter, statuses []string) ([]types.CampaignCityGroup, error) {
	b := sq.Select(
		"city",
		"rk",
		"avito_name",
		"COUNT(id) AS count",
		"COALESCE(SUM(clean), 0) AS clean_sum",
		"COALESCE(SUM(master_change), 0) AS change_sum",
	).From("orders").
		Where(sq.Eq{"status_order": statuses}).
		GroupBy("city", "rk", "avito_name").
		OrderBy("city ASC", "count DESC")
	b = f.ApplyDateRange(b, entities.OrderDateClosed)
	b, empty := f.ApplyCityScope(b, "city")
	if empty {
		return []types.CampaignCityGroup{}, nil
	}

	sqlStr, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowToStructByName[types.CampaignCityGroup])
}
