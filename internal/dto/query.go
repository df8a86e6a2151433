package dto

import (
	"math"
	"time"

	apperrors "callcentre-backend/pkg/errors"
)

// Максимальная ширина окна отчета. Более широкие окна означают
// полное сканирование исторических партиций и отклоняются на входе.
const maxRangeDays = 365

// DateRangeQuery — общие параметры периода. Даты принимаются как
// YYYY-MM-DD или RFC3339. Для конца диапазона, заданного только
// датой, граница расширяется до конца дня, иначе "по сегодня"
// молча теряет весь текущий день.
type DateRangeQuery struct {
	StartDate string `query:"startDate" validate:"omitempty,max=35"`
	EndDate   string `query:"endDate" validate:"omitempty,max=35"`
}

// Range разбирает и проверяет границы. Ширина окна проверяется до
// расширения конца дня, чтобы ровно 365 дней проходили.
func (q DateRangeQuery) Range() (*time.Time, *time.Time, error) {
	var start, end *time.Time

	if q.StartDate != "" {
		s, _, err := parseDate(q.StartDate)
		if err != nil {
			return nil, nil, apperrors.NewValidationError("неверный формат startDate: %s", q.StartDate)
		}
		start = &s
	}
	if q.EndDate != "" {
		e, dateOnly, err := parseDate(q.EndDate)
		if err != nil {
			return nil, nil, apperrors.NewValidationError("неверный формат endDate: %s", q.EndDate)
		}
		if start != nil {
			if e.Before(*start) {
				return nil, nil, apperrors.NewValidationError("endDate раньше startDate")
			}
			days := int(math.Ceil(e.Sub(*start).Hours() / 24))
			if days > maxRangeDays {
				return nil, nil, apperrors.NewValidationError("диапазон дат не может превышать %d дней", maxRangeDays)
			}
		}
		if dateOnly {
			e = EndOfDay(e)
		}
		end = &e
	}
	return start, end, nil
}

func parseDate(v string) (t time.Time, dateOnly bool, err error) {
	if t, err = time.Parse("2006-01-02", v); err == nil {
		return t, true, nil
	}
	t, err = time.Parse(time.RFC3339, v)
	return t, false, err
}

// EndOfDay - последняя миллисекунда суток, в том же часовом поясе.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 999000000, t.Location())
}

// --- Аналитика ---

type OperatorAnalyticsQuery struct {
	DateRangeQuery
	OperatorID *int64 `query:"operatorId" validate:"omitempty,gt=0"`
}

type CityAnalyticsQuery struct {
	DateRangeQuery
	City *string `query:"city" validate:"omitempty,max=100"`
}

type CampaignAnalyticsQuery struct {
	DateRangeQuery
	Campaign *string `query:"rk" validate:"omitempty,max=100"`
}

type DailyAnalyticsQuery struct {
	DateRangeQuery
	City *string `query:"city" validate:"omitempty,max=100"`
}

type DashboardQuery struct {
	Period string `query:"period" validate:"omitempty,oneof=today week month"`
}

type PerformanceQuery struct {
	DateRangeQuery
}

// --- Отчеты ---

type OrdersReportQuery struct {
	DateRangeQuery
	City       *string `query:"city" validate:"omitempty,max=100"`
	Status     *string `query:"status" validate:"omitempty,max=50"`
	OperatorID *int64  `query:"operatorId" validate:"omitempty,gt=0"`
	MasterID   *int64  `query:"masterId" validate:"omitempty,gt=0"`
}

type MastersReportQuery struct {
	DateRangeQuery
	City     *string `query:"city" validate:"omitempty,max=100"`
	MasterID *int64  `query:"masterId" validate:"omitempty,gt=0"`
}

type FinanceReportQuery struct {
	DateRangeQuery
	City *string `query:"city" validate:"omitempty,max=100"`
}

type CallsReportQuery struct {
	DateRangeQuery
	OperatorID *int64 `query:"operatorId" validate:"omitempty,gt=0"`
}

type CityReportQuery struct {
	DateRangeQuery
	City *string `query:"city" validate:"omitempty,max=100"`
}

type CampaignsReportQuery struct {
	DateRangeQuery
	City *string `query:"city" validate:"omitempty,max=100"`
}

// --- Статистика ---

type OperatorStatsQuery struct {
	DateRangeQuery
}
