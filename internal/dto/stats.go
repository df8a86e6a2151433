package dto

type StatsPeriodDTO struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type OperatorInfoDTO struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	City       *string `json:"city,omitempty"`
	StatusWork string  `json:"statusWork"`
}

type StatsCallsDTO struct {
	Total          int64 `json:"total"`
	Accepted       int64 `json:"accepted"`
	Missed         int64 `json:"missed"`
	AcceptanceRate int64 `json:"acceptanceRate"`
	AvgDuration    int64 `json:"avgDuration"`
}

type StatsOrdersDTO struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"byStatus"`
}

type DailyCallsDTO struct {
	Date  string `json:"date"`
	Calls int64  `json:"calls"`
}

type CityCallsDTO struct {
	City  string `json:"city"`
	Calls int64  `json:"calls"`
}

type RKCallsDTO struct {
	RK    string `json:"rk"`
	Calls int64  `json:"calls"`
}

type OperatorStatsDTO struct {
	Operator   OperatorInfoDTO `json:"operator"`
	Period     StatsPeriodDTO  `json:"period"`
	Calls      StatsCallsDTO   `json:"calls"`
	Orders     StatsOrdersDTO  `json:"orders"`
	DailyStats []DailyCallsDTO `json:"dailyStats"`
	CityStats  []CityCallsDTO  `json:"cityStats"`
	RKStats    []RKCallsDTO    `json:"rkStats"`
}

type OperatorVolumeDTO struct {
	OperatorID   int64  `json:"operatorId"`
	OperatorName string `json:"operatorName"`
	Calls        int64  `json:"calls"`
}

type OverallCallsDTO struct {
	Total          int64 `json:"total"`
	Accepted       int64 `json:"accepted"`
	Missed         int64 `json:"missed"`
	AcceptanceRate int64 `json:"acceptanceRate"`
}

type OverallStatsDTO struct {
	Period        StatsPeriodDTO      `json:"period"`
	Calls         OverallCallsDTO     `json:"calls"`
	Orders        StatsOrdersDTO      `json:"orders"`
	OperatorStats []OperatorVolumeDTO `json:"operatorStats"`
	CityStats     []CityCallsDTO      `json:"cityStats"`
	RKStats       []RKCallsDTO        `json:"rkStats"`
}

type AdminEmployeesDTO struct {
	CallCentre int64 `json:"callCentre"`
	Directors  int64 `json:"directors"`
	Masters    int64 `json:"masters"`
}

type AdminFinanceDTO struct {
	Revenue  int64 `json:"revenue"`
	Expenses int64 `json:"expenses"`
	Profit   int64 `json:"profit"`
}

// AdminDashboardDTO - сводка за текущий месяц для администратора.
type AdminDashboardDTO struct {
	Employees AdminEmployeesDTO `json:"employees"`
	Orders    int64             `json:"orders"`
	Finance   AdminFinanceDTO   `json:"finance"`
}
