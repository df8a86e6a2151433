package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"callcentre-backend/internal/controllers"
	"callcentre-backend/internal/services"
	"callcentre-backend/pkg/constants"
	"callcentre-backend/pkg/middleware"
)

func runAnalyticsRouter(
	secureGroup *echo.Group,
	analyticsService *services.AnalyticsService,
	logger *zap.Logger,
	authMW *middleware.AuthMiddleware,
) {
	analyticsController := controllers.NewAnalyticsController(analyticsService, logger)

	management := authMW.RequireRoles(constants.RoleDirector, constants.RoleAdmin)

	g := secureGroup.Group("/analytics")
	g.GET("/operators", analyticsController.GetOperators, management)
	g.GET("/cities", analyticsController.GetCities, management)
	g.GET("/campaigns", analyticsController.GetCampaigns, management)
	g.GET("/daily", analyticsController.GetDaily, management)
	g.GET("/dashboard", analyticsController.GetDashboard,
		authMW.RequireRoles(constants.RoleDirector, constants.RoleAdmin, constants.RoleOperator))
	g.GET("/performance", analyticsController.GetPerformance,
		authMW.RequireRoles(constants.RoleDirector))
}
