package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"callcentre-backend/internal/repositories"
	"callcentre-backend/internal/services"
	"callcentre-backend/pkg/config"
	"callcentre-backend/pkg/middleware"
	"callcentre-backend/pkg/service"
)

func InitRouter(e *echo.Echo, dbConn *pgxpool.Pool, redisClient *redis.Client, jwtSvc service.JWTService, logger *zap.Logger, cfg *config.Config) {
	logger.Info("InitRouter: начало создания маршрутов")

	api := e.Group("/api")
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)
	authMW := middleware.NewAuthMiddleware(jwtSvc, cacheRepo, logger)

	analyticsRepo := repositories.NewAnalyticsRepository(dbConn, logger)
	reportsRepo := repositories.NewReportsRepository(dbConn, logger)
	statsRepo := repositories.NewStatsRepository(dbConn, logger)

	analyticsService := services.NewAnalyticsService(analyticsRepo, cacheRepo, cfg.Cache, logger)
	reportsService := services.NewReportsService(reportsRepo, cacheRepo, cfg.Cache, logger)
	statsService := services.NewStatsService(statsRepo, logger)

	secureGroup := api.Group("", authMW.Auth)

	runAnalyticsRouter(secureGroup, analyticsService, logger, authMW)
	runReportsRouter(secureGroup, reportsService, logger, authMW)
	runStatsRouter(secureGroup, statsService, logger, authMW)

	logger.Info("InitRouter: создание маршрутов завершено")
}
