package utils

import (
	"context"

	"callcentre-backend/pkg/contextkeys"
	apperrors "callcentre-backend/pkg/errors"
)

// WithIdentity кладет проверенную личность в контекст запроса.
// Ядро отчетов исходит из того, что личность всегда присутствует.
func WithIdentity(ctx context.Context, userID int64, role, login string, cities []string) context.Context {
	ctx = context.WithValue(ctx, contextkeys.UserIDKey, userID)
	ctx = context.WithValue(ctx, contextkeys.UserRoleKey, role)
	ctx = context.WithValue(ctx, contextkeys.UserLoginKey, login)
	ctx = context.WithValue(ctx, contextkeys.UserCitiesKey, cities)
	return ctx
}

func GetUserIDFromCtx(ctx context.Context) (int64, error) {
	id, ok := ctx.Value(contextkeys.UserIDKey).(int64)
	if !ok {
		return 0, apperrors.ErrUserIDNotFoundInContext
	}
	return id, nil
}

func GetRoleFromCtx(ctx context.Context) string {
	role, _ := ctx.Value(contextkeys.UserRoleKey).(string)
	return role
}

// GetCitiesFromCtx — список разрешенных городов директора.
// Пустой список означает отсутствие ограничений.
func GetCitiesFromCtx(ctx context.Context) []string {
	cities, _ := ctx.Value(contextkeys.UserCitiesKey).([]string)
	return cities
}
