package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"callcentre-backend/pkg/types"
)

func TestRate(t *testing.T) {
	assert.Equal(t, 70.0, rate(7, 10))
	assert.Equal(t, 57.14, rate(4, 7))
	assert.Equal(t, 100.0, rate(3, 3))

	// Нулевой знаменатель всегда дает 0, а не NaN.
	assert.Equal(t, 0.0, rate(5, 0))
	assert.Equal(t, 0.0, rate(0, 0))
}

func TestRateInt(t *testing.T) {
	assert.Equal(t, int64(70), rateInt(7, 10))
	assert.Equal(t, int64(67), rateInt(2, 3))
	assert.Equal(t, int64(0), rateInt(1, 0))
}

func TestMoneyRate(t *testing.T) {
	assert.Equal(t, 25.0, moneyRate(2500, 10000))
	assert.Equal(t, -10.0, moneyRate(-1000, 10000))

	// Неположительная база — 0.
	assert.Equal(t, 0.0, moneyRate(500, 0))
	assert.Equal(t, 0.0, moneyRate(500, -100))
}

func TestIntAvg(t *testing.T) {
	assert.Equal(t, int64(1250), intAvg(2500, 2))
	assert.Equal(t, int64(833), intAvg(2500, 3))
	assert.Equal(t, int64(0), intAvg(2500, 0))
}

func TestAvgCheck(t *testing.T) {
	assert.Equal(t, 833.33, avgCheck(2500, 3))
	assert.Equal(t, 0.0, avgCheck(2500, 0))
}

func TestROI(t *testing.T) {
	assert.Equal(t, int64(625), roi(2500, 4))
	assert.Equal(t, int64(0), roi(2500, 0))
	assert.Equal(t, int64(0), roi(0, 4))
	assert.Equal(t, int64(0), roi(-500, 4))
}

func TestWeightedAvgDuration(t *testing.T) {
	groups := []types.OperatorCallGroup{
		{Status: "answered", Count: 8, AvgDuration: 120},
		{Status: "missed", Count: 2, AvgDuration: 0},
	}
	// (120*8 + 0*2) / 10 = 96.
	assert.Equal(t, 96.0, weightedAvgDuration(groups))

	assert.Equal(t, 0.0, weightedAvgDuration(nil))
}

func TestAvgHours(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	pairs := []types.TimePair{
		{Start: base, End: base.Add(2 * time.Hour)},
		{Start: base, End: base.Add(3 * time.Hour)},
		// Перепутанные метки отбрасываются.
		{Start: base, End: base.Add(-time.Hour)},
	}
	assert.Equal(t, 2.5, avgHours(pairs))

	assert.Equal(t, 0.0, avgHours(nil))
}

func TestIsoDate(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	// 02:30 по UTC+5 — это еще 28 февраля по UTC.
	assert.Equal(t, "2025-02-28", isoDate(time.Date(2025, 3, 1, 2, 30, 0, 0, loc)))
}
