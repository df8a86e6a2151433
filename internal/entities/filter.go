package entities

import (
	"time"

	sq "github.com/Masterminds/squirrel"
)

// Колонки временных меток. Отчеты о выручке фильтруют по дате закрытия,
// воронка и объемы — по дате создания: фильтр выручки по дате создания
// тихо захватывает деньги заказов, закрытых вне окна.
const (
	OrderDateCreated = "create_date"
	OrderDateClosed  = "closing_data"
	CallDateCreated  = "date_create"
	CashDateCreated  = "created_at"
	CashDate         = "date"
)

// ReportFilter — нормализованный предикат отчета. Собирается один раз
// на запрос и передается по конвейеру неизменяемым.
type ReportFilter struct {
	Start      *time.Time
	End        *time.Time
	City       *string
	OperatorID *int64
	MasterID   *int64
	Campaign   *string
	Status     *string

	// AllowedCities — зона ответственности директора.
	// Пустой срез означает отсутствие ограничений.
	AllowedCities []string
}

// ApplyDateRange добавляет inclusive-границы диапазона к колонке.
// Отсутствующая граница не дает условия.
func (f ReportFilter) ApplyDateRange(b sq.SelectBuilder, col string) sq.SelectBuilder {
	if f.Start != nil {
		b = b.Where(sq.GtOrEq{col: *f.Start})
	}
	if f.End != nil {
		b = b.Where(sq.LtOrEq{col: *f.End})
	}
	return b
}

// EffectiveCities возвращает города для выборки и признак заведомо
// пустого результата: запрошенный город вне зоны директора дает
// пустой отчет, а не ошибку.
func (f ReportFilter) EffectiveCities() (cities []string, empty bool) {
	if f.City != nil {
		if len(f.AllowedCities) > 0 && !containsString(f.AllowedCities, *f.City) {
			return nil, true
		}
		return []string{*f.City}, false
	}
	return f.AllowedCities, false
}

// ApplyCityScope ограничивает выборку городом запроса и зоной директора.
// Второе значение — признак заведомо пустого результата.
func (f ReportFilter) ApplyCityScope(b sq.SelectBuilder, col string) (sq.SelectBuilder, bool) {
	cities, empty := f.EffectiveCities()
	if empty {
		return b, true
	}
	if len(cities) > 0 {
		b = b.Where(sq.Eq{col: cities})
	}
	return b, false
}

func (f ReportFilter) ApplyOperator(b sq.SelectBuilder, col string) sq.SelectBuilder {
	if f.OperatorID != nil {
		b = b.Where(sq.Eq{col: *f.OperatorID})
	}
	return b
}

func (f ReportFilter) ApplyMaster(b sq.SelectBuilder, col string) sq.SelectBuilder {
	if f.MasterID != nil {
		b = b.Where(sq.Eq{col: *f.MasterID})
	}
	return b
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
