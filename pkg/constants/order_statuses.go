package constants

// --- СТАТУСЫ ЗАКАЗОВ (значения как в операционной БД) ---
//
// Словари статусов исторически разошлись между подсистемами:
// аналитика выросла на старом значении "Закрыт", отчеты — на связке
// "Готово"/"Отказ"/"Незаказ". Каждый отчет объявляет свою StatusPolicy
// вместо строковых литералов в запросах.
const (
	OrderStatusCompleted      = "Готово"
	OrderStatusRefused        = "Отказ"
	OrderStatusNonOrder       = "Незаказ"
	OrderStatusInProgress     = "В работе"
	OrderStatusEscalated      = "Модерн"
	OrderStatusClosedLegacy   = "Закрыт"
	OrderStatusCancelled      = "Отменен"
	OrderStatusMasterAssigned = "Назначен мастер"
	OrderStatusMasterOnRoute  = "Мастер выехал"
)

// --- СТАТУСЫ ЗВОНКОВ (телефония) ---
const (
	CallStatusAnswered = "answered"
	CallStatusMissed   = "missed"
	CallStatusNoAnswer = "no_answer"
	CallStatusBusy     = "busy"
)

// MissedCallStatuses — все варианты неотвеченного звонка.
var MissedCallStatuses = []string{CallStatusMissed, CallStatusNoAnswer, CallStatusBusy}

// --- КАССА ---
const (
	CashIncome  = "приход"
	CashExpense = "расход"
)

// --- СТАТУСЫ СОТРУДНИКОВ ---
const (
	OperatorStatusActive = "active"   // у операторов поле status
	MasterStatusWorking  = "работает" // у мастеров поле status_work
)

// StatusPolicy объявляет, какие группы статусов образуют "всего"
// и "выполнено" для конкретного отчета. Пустой Total означает
// "все статусы".
type StatusPolicy struct {
	Total     []string
	Completed []string
}

var (
	// AnalyticsPolicy: выполненным считается только "Закрыт",
	// в "всего" входят все заказы.
	AnalyticsPolicy = StatusPolicy{
		Completed: []string{OrderStatusClosedLegacy},
	}

	// CityReportPolicy: всего = Готово+Отказ+Незаказ,
	// закрытые работы = Готово+Отказ.
	CityReportPolicy = StatusPolicy{
		Total:     []string{OrderStatusCompleted, OrderStatusRefused, OrderStatusNonOrder},
		Completed: []string{OrderStatusCompleted, OrderStatusRefused},
	}

	// MasterReportPolicy: всего = Готово+Отказ, деньги — только Готово.
	MasterReportPolicy = StatusPolicy{
		Total:     []string{OrderStatusCompleted, OrderStatusRefused},
		Completed: []string{OrderStatusCompleted},
	}
)

func (p StatusPolicy) InTotal(status string) bool {
	if len(p.Total) == 0 {
		return true
	}
	return contains(p.Total, status)
}

func (p StatusPolicy) InCompleted(status string) bool {
	return contains(p.Completed, status)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
