package repositories

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"callcentre-backend/internal/entities"
	"callcentre-backend/pkg/constants"
	"callcentre-backend/pkg/types"
)

// AnalyticsRepositoryInterface — группирующие запросы аналитики.
// Каждый метод — ровно один запрос к базе; количество запросов
// не зависит от числа операторов, городов и кампаний.
type AnalyticsRepositoryInterface interface {
	GetOperators(ctx context.Context, operatorID *int64) ([]entities.Operator, error)
	GroupCallsByOperatorStatus(ctx context.Context, f entities.ReportFilter) ([]types.OperatorCallGroup, error)
	GroupOrdersByOperatorStatus(ctx context.Context, f entities.ReportFilter) ([]types.OperatorOrderGroup, error)
	SumRevenueByOperator(ctx context.Context, f entities.ReportFilter, completed []string) ([]types.OperatorSumGroup, error)
	GroupOrdersByCity(ctx context.Context, f entities.ReportFilter, completed []string) ([]types.CityOrderGroup, error)
	GroupOrdersByCampaign(ctx context.Context, f entities.ReportFilter, completed []string) ([]types.CampaignOrderGroup, error)
	GroupOrdersByDay(ctx context.Context, f entities.ReportFilter, completed []string) ([]types.DailyOrderGroup, error)
	GetOrderFunnel(ctx context.Context, f entities.ReportFilter, completed, inProgress []string) (*types.OrderFunnel, error)
	GetCallFunnel(ctx context.Context, f entities.ReportFilter) (*types.CallFunnel, error)
	GroupOrdersByStatus(ctx context.Context, f entities.ReportFilter) ([]types.StatusCountGroup, error)
	GroupCallsByStatus(ctx context.Context, f entities.ReportFilter) ([]types.StatusCountGroup, error)
	SumOrderRevenue(ctx context.Context, f entities.ReportFilter, completed []string) (float64, error)
	SumOrderExpenditure(ctx context.Context, f entities.ReportFilter) (float64, error)
	GetCompletionPairs(ctx context.Context, f entities.ReportFilter, completed []string) ([]types.TimePair, error)
	GetAssignmentPairs(ctx context.Context, f entities.ReportFilter) ([]types.TimePair, error)
	CountActiveOperators(ctx context.Context) (int64, error)
}

type AnalyticsRepository struct {
	storage Querier
	logger  *zap.Logger
}

func NewAnalyticsRepository(storage Querier, logger *zap.Logger) AnalyticsRepositoryInterface {
	return &AnalyticsRepository{storage: storage, logger: logger}
}

func (r *AnalyticsRepository) GetOperators(ctx context.Context, operatorID *int64) ([]entities.Operator, error) {
	b := sq.Select("id", "name", "login", "city", "status", "status_work", "role").
		From("operators").
		OrderBy("name ASC")
	if operatorID != nil {
		b = b.Where(sq.Eq{"id": *operatorID})
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
	return pgx.CollectRows(rows, pgx.RowToStructByName[entities.Operator])
}

// GroupCallsByOperatorStatus - звонки по парам (оператор, статус).
// AVG(duration) пропускает NULL, звонки без длительности не
// занижают среднее.
func (r *AnalyticsRepository) GroupCallsByOperatorStatus(ctx context.Context, f entities.ReportFilter) ([]types.OperatorCallGroup, error) {
	b := sq.Select(
		"operator_id",
		"status",
		"COUNT(id) AS count",
		"COALESCE(AVG(duration), 0) AS avg_duration",
	).From("calls").
		GroupBy("operator_id", "status")
	b = f.ApplyDateRange(b, entities.CallDateCreated)
	b = f.ApplyOperator(b, "operator_id")

	sqlStr, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowToStructByName[types.OperatorCallGroup])
}

func (r *AnalyticsRepository) GroupOrdersByOperatorStatus(ctx context.Context, f entities.ReportFilter) ([]types.OperatorOrderGroup, error) {
	b := sq.Select(
		"operator_name_id AS operator_id",
		"status_order AS status",
		"COUNT(id) AS count",
	).From("orders").
		Where("operator_name_id IS NOT NULL").
		GroupBy("operator_name_id", "status_order")
	b = f.ApplyDateRange(b, entities.OrderDateCreated)
	b = f.ApplyOperator(b, "operator_name_id")

	sqlStr, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowToStructByName[types.OperatorOrderGroup])
}

// SumRevenueByOperator суммирует выручку завершенных заказов по
// операторам. Фильтр по статусу, а не по наличию суммы: частично
// заполненный result незавершенного заказа не должен попадать в деньги.
func (r *AnalyticsRepository) SumRevenueByOperator(ctx context.Context, f entities.ReportFilter, completed []string) ([]types.OperatorSumGroup, error) {
	b := sq.Select(
		"operator_name_id AS operator_id",
		"COALESCE(SUM(result), 0) AS sum",
	).From("orders").
		Where("operator_name_id IS NOT NULL").
		Where(sq.Eq{"status_order": completed}).
		GroupBy("operator_name_id")
	b = f.ApplyDateRange(b, entities.OrderDateCreated)
	b = f.ApplyOperator(b, "operator_name_id")

	sqlStr, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowToStructByName[types.OperatorSumGroup])
}

func (r *AnalyticsRepository) GroupOrdersByCity(ctx context.Context, f entities.ReportFilter, completed []string) ([]types.CityOrderGroup, error) {
	b := sq.Select("city").
		Column(sq.Expr("COUNT(id) AS count")).
		Column(sq.Expr("COUNT(id) FILTER (WHERE status_order = ANY(?)) AS completed", completed)).
		Column(sq.Expr("COALESCE(SUM(result) FILTER (WHERE status_order = ANY(?)), 0) AS revenue", completed)).
		From("orders").
		GroupBy("city").
		OrderBy("count DESC")
	b = f.ApplyDateRange(b, entities.OrderDateCreated)
	b, empty := f.ApplyCityScope(b, "city")
	if empty {
		return []types.CityOrderGroup{}, nil
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
	return pgx.CollectRows(rows, pgx.RowToStructByName[types.CityOrderGroup])
}

func (r *AnalyticsRepository) GroupOrdersByCampaign(ctx context.Context, f entities.ReportFilter, completed []string) ([]types.CampaignOrderGroup, error) {
	b := sq.Select("rk").
		Column(sq.Expr("COUNT(id) AS count")).
		Column(sq.Expr("COUNT(id) FILTER (WHERE status_order = ANY(?)) AS completed", completed)).
		Column(sq.Expr("COALESCE(SUM(result) FILTER (WHERE status_order = ANY(?)), 0) AS revenue", completed)).
		From("orders").
		GroupBy("rk").
		OrderBy("revenue DESC")
	b = f.ApplyDateRange(b, entities.OrderDateCreated)
	if f.Campaign != nil {
		b = b.Where(sq.Eq{"rk": *f.Campaign})
	}
	if len(f.AllowedCities) > 0 {
		b = b.Where(sq.Eq{"city": f.AllowedCities})
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
	return pgx.CollectRows(rows, pgx.RowToStructByName[types.CampaignOrderGroup])
}

// GroupOrdersByDay - суточные метрики одним запросом за весь период.
// Сутки режутся по UTC, а не по таймзоне сессии: границы дней не
// должны зависеть от настроек соединения.
func (r *AnalyticsRepository) GroupOrdersByDay(ctx context.Context, f entities.ReportFilter, completed []string) ([]types.DailyOrderGroup, error) {
	b := sq.Select("date_trunc('day', create_date AT TIME ZONE 'UTC') AS day").
		Column(sq.Expr("COUNT(id) AS total")).
		Column(sq.Expr("COUNT(id) FILTER (WHERE status_order = ANY(?)) AS completed", completed)).
		Column(sq.Expr("COALESCE(SUM(result) FILTER (WHERE status_order = ANY(?)), 0) AS revenue", completed)).
		From("orders").
		GroupBy("date_trunc('day', create_date AT TIME ZONE 'UTC')").
		OrderBy("day ASC")
	b = f.ApplyDateRange(b, entities.OrderDateCreated)
	b, empty := f.ApplyCityScope(b, "city")
	if empty {
		return []types.DailyOrderGroup{}, nil
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
	return pgx.CollectRows(rows, pgx.RowToStructByName[types.DailyOrderGroup])
}

// GetOrderFunnel - воронка заказов одним запросом: FILTER-агрегаты
// вместо запроса на каждый статус.
func (r *AnalyticsRepository) GetOrderFunnel(ctx context.Context, f entities.ReportFilter, completed, inProgress []string) (*types.OrderFunnel, error) {
	b := sq.Select().
		Column(sq.Expr("COUNT(id)")).
		Column(sq.Expr("COUNT(id) FILTER (WHERE status_order = ANY(?))", completed)).
		Column(sq.Expr("COUNT(id) FILTER (WHERE status_order = ANY(?))", inProgress)).
		Column(sq.Expr("COALESCE(SUM(result) FILTER (WHERE status_order = ANY(?)), 0)", completed)).
		From("orders")
	b = f.ApplyDateRange(b, entities.OrderDateCreated)
	b, empty := f.ApplyCityScope(b, "city")
	if empty {
		return &types.OrderFunnel{}, nil
	}

	sqlStr, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}
	funnel := &types.OrderFunnel{}
	err = r.storage.QueryRow(ctx, sqlStr, args...).
		Scan(&funnel.Total, &funnel.Completed, &funnel.InProgress, &funnel.Revenue)
	return funnel, err
}

// GetCallFunnel - воронка звонков одним запросом.
func (r *AnalyticsRepository) GetCallFunnel(ctx context.Context, f entities.ReportFilter) (*types.CallFunnel, error) {
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

func (r *AnalyticsRepository) GroupOrdersByStatus(ctx context.Context, f entities.ReportFilter) ([]types.StatusCountGroup, error) {
	b := sq.Select("status_order AS status", "COUNT(id) AS count").
		From("orders").
		GroupBy("status_order")
	b = f.ApplyDateRange(b, entities.OrderDateCreated)

	sqlStr, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowToStructByName[types.StatusCountGroup])
}

func (r *AnalyticsRepository) GroupCallsByStatus(ctx context.Context, f entities.ReportFilter) ([]types.StatusCountGroup, error) {
	b := sq.Select("status", "COUNT(id) AS count").
		From("calls").
		GroupBy("status")
	b = f.ApplyDateRange(b, entities.CallDateCreated)

	sqlStr, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowToStructByName[types.StatusCountGroup])
}

func (r *AnalyticsRepository) SumOrderRevenue(ctx context.Context, f entities.ReportFilter, completed []string) (float64, error) {
	b := sq.Select("COALESCE(SUM(result), 0)").
		From("orders").
		Where(sq.Eq{"status_order": completed})
	b = f.ApplyDateRange(b, entities.OrderDateCreated)

	sqlStr, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return 0, err
	}
	var sum float64
	err = r.storage.QueryRow(ctx, sqlStr, args...).Scan(&sum)
	return sum, err
}

func (r *AnalyticsRepository) SumOrderExpenditure(ctx context.Context, f entities.ReportFilter) (float64, error) {
	b := sq.Select("COALESCE(SUM(expenditure), 0)").
		From("orders").
		Where("expenditure IS NOT NULL")
	b = f.ApplyDateRange(b, entities.OrderDateCreated)

	sqlStr, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return 0, err
	}
	var sum float64
	err = r.storage.QueryRow(ctx, sqlStr, args...).Scan(&sum)
	return sum, err
}

// GetCompletionPairs - пары (создан, закрыт) завершенных заказов для
// среднего времени закрытия. Выборка ограничена, чтобы расчет среднего
// не тянул в память весь исторический период.
func (r *AnalyticsRepository) GetCompletionPairs(ctx context.Context, f entities.ReportFilter, completed []string) ([]types.TimePair, error) {
	b := sq.Select("create_date AS start_at", "closing_data AS end_at").
		From("orders").
		Where(sq.Eq{"status_order": completed}).
		Where("closing_data IS NOT NULL").
		OrderBy("closing_data DESC").
		Limit(1000)
	b = f.ApplyDateRange(b, entities.OrderDateCreated)

	sqlStr, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowToStructByName[types.TimePair])
}

// GetAssignmentPairs - пары (создан, встреча назначена) заказов с
// мастером для среднего времени назначения.
func (r *AnalyticsRepository) GetAssignmentPairs(ctx context.Context, f entities.ReportFilter) ([]types.TimePair, error) {
	b := sq.Select("create_date AS start_at", "date_meeting AS end_at").
		From("orders").
		Where("master_id IS NOT NULL").
		Where("date_meeting IS NOT NULL").
		OrderBy("date_meeting DESC").
		Limit(1000)
	b = f.ApplyDateRange(b, entities.OrderDateCreated)

	sqlStr, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowToStructByName[types.TimePair])
}

func (r *AnalyticsRepository) CountActiveOperators(ctx context.Context) (int64, error) {
	b := sq.Select("COUNT(id)").
		From("operators").
		Where(sq.Eq{"status": constants.OperatorStatusActive})

	sqlStr, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return 0, err
	}
	var count int64
	err = r.storage.QueryRow(ctx, sqlStr, args...).Scan(&count)
	return count, err
}
