package middleware

import (
	"context"
	"fmt"
	"strings"

	"callcentre-backend/pkg/constants"
	apperrors "callcentre-backend/pkg/errors"
	"callcentre-backend/pkg/service"
	"callcentre-backend/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// forceLogoutChecker — минимальный срез кеша для проверки флага
// принудительной деавторизации.
type forceLogoutChecker interface {
	Get(ctx context.Context, key string) (string, error)
}

type AuthMiddleware struct {
	jwtService service.JWTService
	cache      forceLogoutChecker
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, cache forceLogoutChecker, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtSvc,
		cache:      cache,
		logger:     logger,
	}
}

// Auth извлекает токен из заголовка Authorization или из cookie
// access_token, валидирует его и кладет личность в контекст запроса.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenString, err := m.extractToken(c)
		if err != nil {
			m.logger.Warn("AuthMiddleware: токен не найден в запросе", zap.Error(err))
			return utils.ErrorResponse(c, err, m.logger)
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			m.logger.Warn("AuthMiddleware: ошибка валидации токена", zap.Error(err))
			return utils.ErrorResponse(c, err, m.logger)
		}

		if claims.IsRefreshToken {
			m.logger.Warn("AuthMiddleware: попытка доступа с refresh токеном")
			return utils.ErrorResponse(c, apperrors.ErrTokenIsNotAccess, m.logger)
		}

		if m.isForcedLogout(c.Request().Context(), claims) {
			return utils.ErrorResponse(c, apperrors.ErrForcedLogout, m.logger)
		}

		ctx := utils.WithIdentity(c.Request().Context(), claims.UserID, claims.Role, claims.Login, claims.Cities)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}

// RequireRoles пропускает запрос только при совпадении роли из claims
// с одной из разрешенных.
func (m *AuthMiddleware) RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := utils.GetRoleFromCtx(c.Request().Context())
			for _, allowed := range roles {
				if role == allowed {
					return next(c)
				}
			}
			m.logger.Warn("AuthMiddleware: роль не допущена к маршруту",
				zap.String("role", role),
				zap.String("path", c.Path()),
			)
			return utils.ErrorResponse(c, apperrors.ErrForbidden, m.logger)
		}
	}
}

func (m *AuthMiddleware) extractToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", apperrors.ErrInvalidAuthHeader
		}
		return parts[1], nil
	}

	if cookie, err := c.Cookie("access_token"); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	return "", apperrors.ErrEmptyAuthHeader
}

// isForcedLogout проверяет флаг force_logout в Redis. Недоступный Redis
// не блокирует пользователя: кеш — best-effort.
func (m *AuthMiddleware) isForcedLogout(ctx context.Context, claims *service.JwtCustomClaim) bool {
	if m.cache == nil {
		return false
	}
	key := fmt.Sprintf(constants.CacheKeyForceLogout, claims.Role, claims.UserID)
	val, err := m.cache.Get(ctx, key)
	if err != nil {
		return false
	}
	return val == "1"
}
