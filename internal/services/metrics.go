package services

import (
	"math"
	"time"

	"callcentre-backend/pkg/types"
)

// Формулы производных метрик. Все деления защищены: нулевой
// знаменатель дает 0, а не NaN — эти значения уходят прямиком
// в финансовые таблицы.

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// rate - доля part от total в процентах, два знака.
func rate(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(part) / float64(total) * 100)
}

// rateInt - то же, но до целого (отчет по звонкам).
func rateInt(part, total int64) int64 {
	if total == 0 {
		return 0
	}
	return int64(math.Round(float64(part) / float64(total) * 100))
}

// moneyRate - процент от денежной базы, 0 при неположительной базе.
func moneyRate(part, base float64) float64 {
	if base <= 0 {
		return 0
	}
	return round2(part / base * 100)
}

// intAvg - средний чек до целого рубля.
func intAvg(sum float64, n int64) int64 {
	if n == 0 {
		return 0
	}
	return int64(math.Round(sum / float64(n)))
}

// avgCheck - средний чек с копейками (отчеты по городам и мастерам).
func avgCheck(sum float64, n int64) float64 {
	if n == 0 {
		return 0
	}
	return round2(sum / float64(n))
}

// roi - выручка на заказ, до целого. Неположительная выручка дает 0.
func roi(revenue float64, orders int64) int64 {
	if orders == 0 || revenue <= 0 {
		return 0
	}
	return int64(math.Round(revenue / float64(orders)))
}

// weightedAvgDuration сворачивает средние по статусным корзинам в
// общее среднее, взвешенное количеством звонков в корзине.
func weightedAvgDuration(groups []types.OperatorCallGroup) float64 {
	var weighted float64
	var total int64
	for _, g := range groups {
		weighted += g.AvgDuration * float64(g.Count)
		total += g.Count
	}
	if total == 0 {
		return 0
	}
	return weighted / float64(total)
}

// avgHours - среднее время между парами меток в часах, один знак.
// Пары с перепутанным порядком меток отбрасываются.
func avgHours(pairs []types.TimePair) float64 {
	var sum float64
	var n int
	for _, p := range pairs {
		d := p.End.Sub(p.Start)
		if d < 0 {
			continue
		}
		sum += d.Hours()
		n++
	}
	if n == 0 {
		return 0
	}
	return round1(sum / float64(n))
}

// isoDate - дата в формате YYYY-MM-DD по UTC.
func isoDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
