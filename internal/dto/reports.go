package dto

import "callcentre-backend/internal/entities"

type OrdersReportStatsDTO struct {
	TotalCount     int64   `json:"totalCount"`
	CompletedCount int64   `json:"completedCount"`
	TotalRevenue   float64 `json:"totalRevenue"`
	AvgRevenue     int64   `json:"avgRevenue"`
}

type OrdersReportDTO struct {
	Orders []entities.Order     `json:"orders"`
	Stats  OrdersReportStatsDTO `json:"stats"`
}

type MasterReportRowDTO struct {
	MasterID    int64   `json:"masterId"`
	MasterName  string  `json:"masterName"`
	City        string  `json:"city"`
	TotalOrders int64   `json:"totalOrders"`
	Turnover    float64 `json:"turnover"`
	AvgCheck    float64 `json:"avgCheck"`
	Salary      float64 `json:"salary"`
}

// Кассовые итоги: ключи совпадают с именами операций в БД.
type FinanceTotalsDTO struct {
	Income  float64 `json:"приход"`
	Expense float64 `json:"расход"`
}

type FinanceReportDTO struct {
	Total        float64                    `json:"total"`
	ByName       FinanceTotalsDTO           `json:"byName"`
	Transactions []entities.CashTransaction `json:"transactions"`
}

type CallsReportDTO struct {
	TotalCalls    int64 `json:"totalCalls"`
	AnsweredCalls int64 `json:"answeredCalls"`
	MissedCalls   int64 `json:"missedCalls"`
	AvgDuration   int64 `json:"avgDuration"`
	AnswerRate    int64 `json:"answerRate"`
}

type CityReportOrdersDTO struct {
	ClosedOrders      int64   `json:"closedOrders"`
	Refusals          int64   `json:"refusals"`
	NonOrders         int64   `json:"nonOrders"`
	TotalClean        float64 `json:"totalClean"`
	TotalCleanOwn     float64 `json:"totalCleanOwn"`
	TotalCleanPartner float64 `json:"totalCleanPartner"`
	TotalMasterChange float64 `json:"totalMasterChange"`
	AvgCheck          float64 `json:"avgCheck"`
}

type CityReportStatsDTO struct {
	Turnover         float64 `json:"turnover"`
	Profit           float64 `json:"profit"`
	TotalOrders      int64   `json:"totalOrders"`
	NonOrders        int64   `json:"nonOrders"`
	ZeroOrders       int64   `json:"zeroOrders"`
	CompletedOrders  int64   `json:"completedOrders"`
	CompletedPercent float64 `json:"completedPercent"`
	MicroCheckCount  int64   `json:"microCheckCount"`
	Over10kCount     int64   `json:"over10kCount"`
	AvgCheck         float64 `json:"avgCheck"`
	MaxCheck         float64 `json:"maxCheck"`
	EscalatedOrders  int64   `json:"escalatedOrders"`
}

type CityReportCashDTO struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"`
}

type CityReportRowDTO struct {
	City   string              `json:"city"`
	Orders CityReportOrdersDTO `json:"orders"`
	Stats  CityReportStatsDTO  `json:"stats"`
	Cash   CityReportCashDTO   `json:"cash"`
}

type CityDetailDTO struct {
	City   string                     `json:"city"`
	Orders []entities.OrderWithMaster `json:"orders"`
}

// MasterStatsDTO - личная статистика мастера в одном городе.
type MasterStatsDTO struct {
	City            string  `json:"city"`
	ClosedOrders    int64   `json:"closedOrders"`
	EscalatedOrders int64   `json:"modernOrders"`
	TotalRevenue    float64 `json:"totalRevenue"`
	AvgCheck        float64 `json:"averageCheck"`
	Salary          float64 `json:"salary"`
}

type CityCampaignDTO struct {
	RK          string  `json:"rk"`
	AvitoName   *string `json:"avitoName,omitempty"`
	OrdersCount int64   `json:"ordersCount"`
	Revenue     float64 `json:"revenue"`
	Profit      float64 `json:"profit"`
}

type CityCampaignsDTO struct {
	City      string            `json:"city"`
	Campaigns []CityCampaignDTO `json:"campaigns"`
}
