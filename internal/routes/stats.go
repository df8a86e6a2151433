package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"callcentre-backend/internal/controllers"
	"callcentre-backend/internal/services"
	"callcentre-backend/pkg/constants"
	"callcentre-backend/pkg/middleware"
)

func runStatsRouter(
	secureGroup *echo.Group,
	statsService *services.StatsService,
	logger *zap.Logger,
	authMW *middleware.AuthMiddleware,
) {
	statsController := controllers.NewStatsController(statsService, logger)

	g := secureGroup.Group("/stats")
	g.GET("/my", statsController.GetMyStats,
		authMW.RequireRoles(constants.RoleOperator))
	g.GET("/operator/:id", statsController.GetOperatorStats,
		authMW.RequireRoles(constants.RoleDirector, constants.RoleAdmin))
	g.GET("/overall", statsController.GetOverallStats,
		authMW.RequireRoles(constants.RoleDirector, constants.RoleAdmin))
	g.GET("/dashboard", statsController.GetDashboard,
		authMW.RequireRoles(constants.RoleAdmin))
}
