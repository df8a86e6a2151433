package entities

// Operator — сотрудник колл-центра.
type Operator struct {
	ID         int64   `db:"id" json:"id"`
	Name       string  `db:"name" json:"name"`
	Login      string  `db:"login" json:"login"`
	City       *string `db:"city" json:"city,omitempty"`
	Status     string  `db:"status" json:"status"`
	StatusWork string  `db:"status_work" json:"statusWork"`
	Role       string  `db:"role" json:"role"`
}

// Master — выездной мастер. Работает минимум в одном городе;
// вся его статистика считается отдельно по каждому городу.
type Master struct {
	ID         int64    `db:"id" json:"id"`
	Name       string   `db:"name" json:"name"`
	Cities     []string `db:"cities" json:"cities"`
	StatusWork string   `db:"status_work" json:"statusWork"`
}
