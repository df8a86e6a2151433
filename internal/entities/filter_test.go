package entities

import (
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveCities(t *testing.T) {
	kazan := "Казань"
	moscow := "Москва"

	t.Run("без ограничений", func(t *testing.T) {
		cities, empty := ReportFilter{}.EffectiveCities()
		assert.False(t, empty)
		assert.Empty(t, cities)
	})

	t.Run("только город запроса", func(t *testing.T) {
		cities, empty := ReportFilter{City: &kazan}.EffectiveCities()
		assert.False(t, empty)
		assert.Equal(t, []string{"Казань"}, cities)
	})

	t.Run("зона директора без города", func(t *testing.T) {
		f := ReportFilter{AllowedCities: []string{"Казань", "Пермь"}}
		cities, empty := f.EffectiveCities()
		assert.False(t, empty)
		assert.Equal(t, []string{"Казань", "Пермь"}, cities)
	})

	t.Run("город в зоне", func(t *testing.T) {
		f := ReportFilter{City: &kazan, AllowedCities: []string{"Казань", "Пермь"}}
		cities, empty := f.EffectiveCities()
		assert.False(t, empty)
		assert.Equal(t, []string{"Казань"}, cities)
	})

	t.Run("город вне зоны - заведомо пустой результат", func(t *testing.T) {
		f := ReportFilter{City: &moscow, AllowedCities: []string{"Казань"}}
		cities, empty := f.EffectiveCities()
		assert.True(t, empty)
		assert.Nil(t, cities)
	})
}

func TestApplyDateRange(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 23, 59, 59, 999000000, time.UTC)

	b := sq.Select("count(*)").From("orders")
	b = ReportFilter{Start: &start, End: &end}.ApplyDateRange(b, OrderDateCreated)

	query, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "create_date >= $1")
	assert.Contains(t, query, "create_date <= $2")
	assert.Equal(t, []interface{}{start, end}, args)
}

func TestApplyDateRange_OpenEnds(t *testing.T) {
	b := sq.Select("count(*)").From("orders")
	b = ReportFilter{}.ApplyDateRange(b, OrderDateCreated)

	query, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, query, "WHERE")
	assert.Empty(t, args)
}

func TestApplyCityScope(t *testing.T) {
	f := ReportFilter{AllowedCities: []string{"Казань", "Пермь"}}

	b := sq.Select("count(*)").From("orders")
	b, empty := f.ApplyCityScope(b, "city")
	require.False(t, empty)

	query, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "city IN ($1,$2)")
	assert.Equal(t, []interface{}{"Казань", "Пермь"}, args)
}

func TestApplyCityScope_OutOfScope(t *testing.T) {
	moscow := "Москва"
	f := ReportFilter{City: &moscow, AllowedCities: []string{"Казань"}}

	_, empty := f.ApplyCityScope(sq.Select("1").From("orders"), "city")
	assert.True(t, empty)
}

func TestApplyOperatorAndMaster(t *testing.T) {
	opID := int64(7)
	masterID := int64(3)
	f := ReportFilter{OperatorID: &opID, MasterID: &masterID}

	b := sq.Select("count(*)").From("orders")
	b = f.ApplyOperator(b, "operator_name_id")
	b = f.ApplyMaster(b, "master_id")

	query, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "operator_name_id = $1")
	assert.Contains(t, query, "master_id = $2")
	assert.Equal(t, []interface{}{int64(7), int64(3)}, args)
}
