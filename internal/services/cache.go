package services

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"callcentre-backend/internal/repositories"
)

// reportCache — best-effort фасад над Redis для ответов отчетов.
// Любая ошибка кэша — это промах: отчет пересчитывается из базы,
// запрос не падает.
type reportCache struct {
	cache  repositories.CacheRepositoryInterface
	logger *zap.Logger
}

// key строит детерминированный ключ: имя отчета и все параметры
// фильтра в фиксированном порядке.
func (c reportCache) key(report string, parts ...string) string {
	return "report:" + report + ":" + strings.Join(parts, ":")
}

func (c reportCache) read(ctx context.Context, key string, out any) bool {
	if c.cache == nil {
		return false
	}
	raw, err := c.cache.Get(ctx, key)
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		c.logger.Warn("битое значение в кеше, пересчитываем", zap.String("key", key))
		return false
	}
	return true
}

func (c reportCache) write(ctx context.Context, key string, val any, ttl time.Duration) {
	if c.cache == nil {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, string(data), ttl); err != nil {
		c.logger.Warn("не удалось записать кеш", zap.String("key", key), zap.Error(err))
	}
}

func fmtTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func fmtStr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func fmtInt(p *int64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatInt(*p, 10)
}
