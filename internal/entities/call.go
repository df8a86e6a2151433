package entities

import "time"

// Call — запись звонка из телефонии. Создается интеграцией,
// для этой системы неизменяема.
type Call struct {
	ID         int64     `db:"id" json:"id"`
	OperatorID int64     `db:"operator_id" json:"operatorId"`
	City       *string   `db:"city" json:"city,omitempty"`
	RK         *string   `db:"rk" json:"rk,omitempty"`
	Status     string    `db:"status" json:"status"`
	Duration   *int      `db:"duration" json:"duration,omitempty"`
	DateCreate time.Time `db:"date_create" json:"dateCreate"`
}
