package entities

import "time"

// CashTransaction — кассовая операция, не привязана к заказам.
// Name принимает значения "приход" или "расход".
type CashTransaction struct {
	ID        int64     `db:"id" json:"id"`
	City      string    `db:"city" json:"city"`
	Name      string    `db:"name" json:"name"`
	Amount    float64   `db:"amount" json:"amount"`
	Date      time.Time `db:"date" json:"date"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
