package entities

import "time"

// Order — заказ колл-центра. Read-only вход для отчетов.
// Денежные поля имеют смысл только для завершенных статусов,
// агрегаты обязаны фильтровать по статусу, а не по наличию суммы.
type Order struct {
	ID           int64      `db:"id" json:"id"`
	OperatorID   *int64     `db:"operator_name_id" json:"operatorId,omitempty"`
	MasterID     *int64     `db:"master_id" json:"masterId,omitempty"`
	City         string     `db:"city" json:"city"`
	RK           string     `db:"rk" json:"rk"`
	AvitoName    *string    `db:"avito_name" json:"avitoName,omitempty"`
	ClientName   *string    `db:"client_name" json:"clientName,omitempty"`
	Phone        *string    `db:"phone" json:"phone,omitempty"`
	StatusOrder  string     `db:"status_order" json:"statusOrder"`
	CreateDate   time.Time  `db:"create_date" json:"createDate"`
	ClosingData  *time.Time `db:"closing_data" json:"closingData,omitempty"`
	DateMeeting  *time.Time `db:"date_meeting" json:"dateMeeting,omitempty"`
	Result       *float64   `db:"result" json:"result,omitempty"`
	Clean        *float64   `db:"clean" json:"clean,omitempty"`
	MasterChange *float64   `db:"master_change" json:"masterChange,omitempty"`
	Expenditure  *float64   `db:"expenditure" json:"expenditure,omitempty"`
	Partner      bool       `db:"partner" json:"partner"`
}

// OrderWithMaster — строка детального отчета по городу.
type OrderWithMaster struct {
	Order
	MasterName *string `db:"master_name" json:"masterName,omitempty"`
}
