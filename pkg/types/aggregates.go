package types

import "time"

// Строки группирующих запросов: каждый тип — одна строка
// "ключи измерений + агрегаты". db-теги под pgx.RowToStructByName.

type OperatorCallGroup struct {
	OperatorID  int64   `db:"operator_id" json:"operator_id"`
	Status      string  `db:"status" json:"status"`
	Count       int64   `db:"count" json:"count"`
	AvgDuration float64 `db:"avg_duration" json:"avg_duration"`
}

type OperatorOrderGroup struct {
	OperatorID int64  `db:"operator_id" json:"operator_id"`
	Status     string `db:"status" json:"status"`
	Count      int64  `db:"count" json:"count"`
}

type OperatorSumGroup struct {
	OperatorID int64   `db:"operator_id" json:"operator_id"`
	Sum        float64 `db:"sum" json:"sum"`
}

type OperatorCountGroup struct {
	OperatorID int64 `db:"operator_id" json:"operator_id"`
	Count      int64 `db:"count" json:"count"`
}

type CityOrderGroup struct {
	City      string  `db:"city" json:"city"`
	Count     int64   `db:"count" json:"count"`
	Completed int64   `db:"completed" json:"completed"`
	Revenue   float64 `db:"revenue" json:"revenue"`
}

type CityCountGroup struct {
	City  string `db:"city" json:"city"`
	Count int64  `db:"count" json:"count"`
}

type CampaignOrderGroup struct {
	RK        string  `db:"rk" json:"rk"`
	Count     int64   `db:"count" json:"count"`
	Completed int64   `db:"completed" json:"completed"`
	Revenue   float64 `db:"revenue" json:"revenue"`
}

type DailyOrderGroup struct {
	Day       time.Time `db:"day" json:"day"`
	Total     int64     `db:"total" json:"total"`
	Completed int64     `db:"completed" json:"completed"`
	Revenue   float64   `db:"revenue" json:"revenue"`
}

type DailyCountGroup struct {
	Day   time.Time `db:"day" json:"day"`
	Count int64     `db:"count" json:"count"`
}

type StatusCountGroup struct {
	Status string `db:"status" json:"status"`
	Count  int64  `db:"count" json:"count"`
}

// TimePair — пара временных меток одного заказа для расчета
// средних времен (закрытие, назначение).
type TimePair struct {
	Start time.Time `db:"start_at" json:"start_at"`
	End   time.Time `db:"end_at" json:"end_at"`
}

// OrderFunnel — воронка заказов одним запросом (FILTER-агрегаты).
type OrderFunnel struct {
	Total      int64
	Completed  int64
	InProgress int64
	Revenue    float64
}

// OrdersSummary — сводка по выборке заказов одним запросом.
type OrdersSummary struct {
	Total     int64   `db:"total" json:"total"`
	Completed int64   `db:"completed" json:"completed"`
	Revenue   float64 `db:"revenue" json:"revenue"`
}

// CallFunnel — воронка звонков одним запросом.
type CallFunnel struct {
	Total       int64
	Answered    int64
	Missed      int64
	AvgDuration float64
}

type MasterOrderGroup struct {
	MasterID  int64   `db:"master_id" json:"master_id"`
	City      string  `db:"city" json:"city"`
	Status    string  `db:"status" json:"status"`
	Count     int64   `db:"count" json:"count"`
	CleanSum  float64 `db:"clean_sum" json:"clean_sum"`
	ChangeSum float64 `db:"change_sum" json:"change_sum"`
}

type CityStatusGroup struct {
	City      string  `db:"city" json:"city"`
	Status    string  `db:"status" json:"status"`
	Partner   bool    `db:"partner" json:"partner"`
	Count     int64   `db:"count" json:"count"`
	CleanSum  float64 `db:"clean_sum" json:"clean_sum"`
	ChangeSum float64 `db:"change_sum" json:"change_sum"`
	MaxClean  float64 `db:"max_clean" json:"max_clean"`
}

type CityCheckGroup struct {
	City         string `db:"city" json:"city"`
	MicroCount   int64  `db:"micro_count" json:"micro_count"`
	Over10kCount int64  `db:"over10k_count" json:"over10k_count"`
}

type CityCashGroup struct {
	City   string  `db:"city" json:"city"`
	Name   string  `db:"name" json:"name"`
	Amount float64 `db:"amount" json:"amount"`
}

type KeyCountGroup struct {
	Key   string `db:"key" json:"key"`
	Count int64  `db:"count" json:"count"`
}

type CampaignCityGroup struct {
	City      string  `db:"city" json:"city"`
	RK        string  `db:"rk" json:"rk"`
	AvitoName *string `db:"avito_name" json:"avito_name"`
	Count     int64   `db:"count" json:"count"`
	CleanSum  float64 `db:"clean_sum" json:"clean_sum"`
	ChangeSum float64 `db:"change_sum" json:"change_sum"`
}
