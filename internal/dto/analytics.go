package dto

// Ответы аналитики. Формы стабильны: фронтовые дашборды читают их
// напрямую, переименование поля ломает графики.

type OperatorCallsDTO struct {
	Total       int64   `json:"total"`
	Answered    int64   `json:"answered"`
	Missed      int64   `json:"missed"`
	AvgDuration int64   `json:"avgDuration"`
	AnswerRate  float64 `json:"answerRate"`
}

type OperatorOrdersDTO struct {
	Total          int64   `json:"total"`
	Completed      int64   `json:"completed"`
	ConversionRate float64 `json:"conversionRate"`
	TotalRevenue   float64 `json:"totalRevenue"`
	AvgRevenue     int64   `json:"avgRevenue"`
}

type OperatorAnalyticsDTO struct {
	OperatorID   int64             `json:"operatorId"`
	OperatorName string            `json:"operatorName"`
	Status       string            `json:"status"`
	Calls        OperatorCallsDTO  `json:"calls"`
	Orders       OperatorOrdersDTO `json:"orders"`
}

type GroupCallsDTO struct {
	Total    int64 `json:"total"`
	Answered int64 `json:"answered"`
}

type GroupOrdersDTO struct {
	Total          int64   `json:"total"`
	Completed      int64   `json:"completed"`
	CompletionRate float64 `json:"completionRate"`
}

type GroupRevenueDTO struct {
	Total float64 `json:"total"`
	Avg   int64   `json:"avg"`
}

type CityAnalyticsDTO struct {
	City           string          `json:"city"`
	Calls          GroupCallsDTO   `json:"calls"`
	Orders         GroupOrdersDTO  `json:"orders"`
	Revenue        GroupRevenueDTO `json:"revenue"`
	ConversionRate float64         `json:"conversionRate"`
}

type CampaignRevenueDTO struct {
	Total float64 `json:"total"`
	Avg   int64   `json:"avg"`
	ROI   int64   `json:"roi"`
}

type CampaignAnalyticsDTO struct {
	Campaign       string             `json:"campaign"`
	Calls          GroupCallsDTO      `json:"calls"`
	Orders         GroupOrdersDTO     `json:"orders"`
	Revenue        CampaignRevenueDTO `json:"revenue"`
	ConversionRate float64            `json:"conversionRate"`
}

type DailyMetricDTO struct {
	Date            string  `json:"date"`
	TotalOrders     int64   `json:"totalOrders"`
	CompletedOrders int64   `json:"completedOrders"`
	TotalRevenue    float64 `json:"totalRevenue"`
}

type DashboardOrdersDTO struct {
	Total          int64   `json:"total"`
	Completed      int64   `json:"completed"`
	InProgress     int64   `json:"inProgress"`
	CompletionRate float64 `json:"completionRate"`
}

type DashboardCallsDTO struct {
	Total       int64   `json:"total"`
	Answered    int64   `json:"answered"`
	AvgDuration int64   `json:"avgDuration"`
	AnswerRate  float64 `json:"answerRate"`
}

type DashboardPerformanceDTO struct {
	ConversionRate  float64 `json:"conversionRate"`
	ActiveOperators int64   `json:"activeOperators"`
}

type DashboardDTO struct {
	Period      string                  `json:"period"`
	Orders      DashboardOrdersDTO      `json:"orders"`
	Revenue     GroupRevenueDTO         `json:"revenue"`
	Calls       DashboardCallsDTO       `json:"calls"`
	Performance DashboardPerformanceDTO `json:"performance"`
}

type PerformanceOrdersDTO struct {
	Total            int64   `json:"total"`
	Completed        int64   `json:"completed"`
	Cancelled        int64   `json:"cancelled"`
	CompletionRate   float64 `json:"completionRate"`
	CancellationRate float64 `json:"cancellationRate"`
}

type PerformanceCallsDTO struct {
	Total      int64   `json:"total"`
	Answered   int64   `json:"answered"`
	Missed     int64   `json:"missed"`
	AnswerRate float64 `json:"answerRate"`
	MissRate   float64 `json:"missRate"`
}

// Времена в часах, один знак после запятой.
type PerformanceTimingDTO struct {
	AvgCompletionHours float64 `json:"avgCompletionHours"`
	AvgAssignHours     float64 `json:"avgAssignHours"`
}

type PerformanceFinanceDTO struct {
	Revenue      float64 `json:"revenue"`
	Expenditure  float64 `json:"expenditure"`
	Profit       float64 `json:"profit"`
	ProfitMargin float64 `json:"profitMargin"`
}

type PerformanceConversionDTO struct {
	CallToOrder       float64 `json:"callToOrder"`
	OrderToCompletion float64 `json:"orderToCompletion"`
}

type PerformanceDTO struct {
	Orders     PerformanceOrdersDTO     `json:"orders"`
	Calls      PerformanceCallsDTO      `json:"calls"`
	Timing     PerformanceTimingDTO     `json:"timing"`
	Finance    PerformanceFinanceDTO    `json:"finance"`
	Conversion PerformanceConversionDTO `json:"conversion"`
}
