package repositories

import (
	"context"
	"time"
)

// CacheRepositoryInterface — best-effort кэш отчетов. Любая ошибка
// кэша не должна ронять запрос: сервисы логируют и идут в базу.
type CacheRepositoryInterface interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}
