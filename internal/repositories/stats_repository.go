package repositories

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"callcentre-backend/internal/entities"
	"callcentre-backend/pkg/constants"
	apperrors "callcentre-backend/pkg/errors"
	"callcentre-backend/pkg/types"
)

// StatsRepositoryInterface — запросы личной и общей статистики.
type StatsRepositoryInterface interface {
	GetOperatorByID(ctx context.Context, id int64) (*entities.Operator, error)
	GroupCallsByStatus(ctx context.Context, f entities.ReportFilter) ([]types.StatusCountGroup, error)
	GetAvgCallDuration(ctx context.Context, f entities.ReportFilter) (float64, error)
	GroupOrdersByStatus(ctx context.Context, f entities.ReportFilter) ([]types.StatusCountGroup, error)
	GetDailyCalls(ctx context.Context, f entities.ReportFilter, statuses []string) ([]types.DailyCountGroup, error)
	GroupCallsByCity(ctx context.Context, f entities.ReportFilter, statuses []string) ([]types.KeyCountGroup, error)
	GroupCallsByRK(ctx context.Context, f entities.ReportFilter, statuses []string) ([]types.KeyCountGroup, error)
	GroupCallsByOperator(ctx context.Context, f entities.ReportFilter) ([]types.OperatorCountGroup, error)
	GetOperatorNames(ctx context.Context, ids []int64) (map[int64]string, error)
	CountOrders(ctx context.Context, f entities.ReportFilter) (int64, error)
	CountActiveOperators(ctx context.Context) (int64, error)
	CountDirectors(ctx context.Context) (int64, error)
	CountWorkingMasters(ctx context.Context) (int64, error)
	SumCleanClosedBetween(ctx context.Context, from, to time.Time) (float64, error)
	SumCashBetween(ctx context.Context, name string, from, to time.Time) (float64, error)
}

type StatsRepository struct {
	storage Querier
	logger  *zap.Logger
}

func NewStatsRepository(storage Querier, logger *zap.Logger) StatsRepositoryInterface {
	return &StatsRepository{storage: storage, logger: logger}
}

func (r *StatsRepository) GetOperatorByID(ctx context.Context, id int64) (*entities.Operator, error) {
	b := sq.Select("id", "name", "login", "city", "status", "status_work", "role").
		From("operators").
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
	operator, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[entities.Operator])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &operator, nil
}

func (r *StatsRepository) GroupCallsByStatus(ctx context.Context, f entities.ReportFilter) ([]types.StatusCountGroup, error) {
	b := sq.Select("status", "COUNT(id) AS count").
		From("calls").
		GroupBy("status")
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
	return pgx.CollectRows(rows, pgx.RowToStructByName[types.StatusCountGroup])
}

func (r *StatsRepository) GetAvgCallDuration(ctx context.Context, f entities.ReportFilter) (float64, error) {
	b := sq.Select("COALESCE(AVG(duration), 0)").
		From("calls").
		Where(sq.Eq{"status": constants.CallStatusAnswered})
	b = f.ApplyDateRange(b, entities.CallDateCreated)
	b = f.ApplyOperator(b, "operator_id")

	sqlStr, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return 0, err
	}
	var avg float64
	err = r.storage.QueryRow(ctx, sqlStr, args...).Scan(&avg)
	return avg, err
}

func (r *StatsRepository) GroupOrdersByStatus(ctx context.Context, f entities.ReportFilter) ([]types.StatusCountGroup, error) {
	b := sq.Select("status_order AS status", "COUNT(id) AS count").
		From("orders").
		GroupBy("status_order")
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
	return pgx.CollectRows(rows, pgx.RowToStructByName[types.StatusCountGroup])
}

// GetDailyCalls - звонки по дням одним запросом. Пустой список
// статусов означает "все". Сутки режутся по UTC независимо от
// таймзоны сессии.
func (r *StatsRepository) GetDailyCalls(ctx context.Context, f entities.ReportFilter, statuses []string) ([]types.DailyCountGroup, error) {
	b := sq.Select("date_trunc('day', date_create AT TIME ZONE 'UTC') AS day", "COUNT(id) AS count").
		From("calls").
		GroupBy("date_trunc('day', date_create AT TIME ZONE 'UTC')").
		OrderBy("day ASC")
	if len(statuses) > 0 {
		b = b.Where(sq.Eq{"status": statuses})
	}
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
	return pgx.CollectRows(rows, pgx.RowToStructByName[types.DailyCountGroup])
}

func (r *StatsRepository) GroupCallsByCity(ctx context.Context, f entities.ReportFilter, statuses []string) ([]types.KeyCountGroup, error) {
	b := sq.Select("COALESCE(city, 'Не указан') AS key", "COUNT(id) AS count").
		From("calls").
		GroupBy("city").
		OrderBy("count DESC")
	if len(statuses) > 0 {
		b = b.Where(sq.Eq{"status": statuses})
	}
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
	return pgx.CollectRows(rows, pgx.RowToStructByName[types.KeyCountGroup])
}

func (r *StatsRepository) GroupCallsByRK(ctx context.Context, f entities.ReportFilter, statuses []string) ([]types.KeyCountGroup, error) {
	b := sq.Select("COALESCE(rk, 'Не указан') AS key", "COUNT(id) AS count").
		From("calls").
		GroupBy("rk").
		OrderBy("count DESC")
	if len(statuses) > 0 {
		b = b.Where(sq.Eq{"status": statuses})
	}
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
	return pgx.CollectRows(rows, pgx.RowToStructByName[types.KeyCountGroup])
}

func (r *StatsRepository) GroupCallsByOperator(ctx context.Context, f entities.ReportFilter) ([]types.OperatorCountGroup, error) {
	b := sq.Select("operator_id", "COUNT(id) AS count").
		From("calls").
		GroupBy("operator_id").
		OrderBy("count DESC")
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
	return pgx.CollectRows(rows, pgx.RowToStructByName[types.OperatorCountGroup])
}

func (r *StatsRepository) GetOperatorNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	if len(ids) == 0 {
		return map[int64]string{}, nil
	}
	b := sq.Select("id", "name").
		From("operators").
		Where(sq.Eq{"id": ids})

	sqlStr, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[int64]string, len(ids))
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}

func (r *StatsRepository) CountOrders(ctx context.Context, f entities.ReportFilter) (int64, error) {
	b := sq.Select("COUNT(id)").From("orders")
	b = f.ApplyDateRange(b, entities.OrderDateCreated)
	b = f.ApplyOperator(b, "operator_name_id")

	sqlStr, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return 0, err
	}
	var count int64
	err = r.storage.QueryRow(ctx, sqlStr, args...).Scan(&count)
	return count, err
}

func (r *StatsRepository) CountActiveOperators(ctx context.Context) (int64, error) {
	return r.countWhere(ctx, "operators", sq.Eq{"status": constants.OperatorStatusActive})
}

func (r *StatsRepository) CountDirectors(ctx context.Context) (int64, error) {
	return r.countWhere(ctx, "directors", nil)
}

func (r *StatsRepository) CountWorkingMasters(ctx context.Context) (int64, error) {
	return r.countWhere(ctx, "masters", sq.Eq{"status_work": constants.MasterStatusWorking})
}

func (r *StatsRepository) countWhere(ctx context.Context, table string, cond sq.Sqlizer) (int64, error) {
	b := sq.Select("COUNT(id)").From(table)
	if cond != nil {
		b = b.Where(cond)
	}
	sqlStr, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return 0, err
	}
	var count int64
	err = r.storage.QueryRow(ctx, sqlStr, args...).Scan(&count)
	return count, err
}

// SumCleanClosedBetween - чистая выручка по заказам, закрытым в окне.
func (r *StatsRepository) SumCleanClosedBetween(ctx context.Context, from, to time.Time) (float64, error) {
	b := sq.Select("COALESCE(SUM(clean), 0)").
		From("orders").
		Where(sq.Eq{"status_order": constants.OrderStatusCompleted}).
		Where(sq.GtOrEq{"closing_data": from}).
		Where(sq.LtOrEq{"closing_data": to})

	sqlStr, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return 0, err
	}
	var sum float64
	err = r.storage.QueryRow(ctx, sqlStr, args...).Scan(&sum)
	return sum, err
}

func (r *StatsRepository) SumCashBetween(ctx context.Context, name string, from, to time.Time) (float64, error) {
	b := sq.Select("COALESCE(SUM(amount), 0)").
		From("cash").
		Where(sq.Eq{"name": name}).
		Where(sq.GtOrEq{"date": from}).
		Where(sq.LtOrEq{"date": to})

	sqlStr, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return 0, err
	}
	var sum float64
	err = r.storage.QueryRow(ctx, sqlStr, args...).Scan(&sum)
	return sum, err
}
