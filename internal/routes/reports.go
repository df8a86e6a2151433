package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"callcentre-backend/internal/controllers"
	"callcentre-backend/internal/services"
	"callcentre-backend/pkg/constants"
	"callcentre-backend/pkg/middleware"
)

func runReportsRouter(
	secureGroup *echo.Group,
	reportsService *services.ReportsService,
	logger *zap.Logger,
	authMW *middleware.AuthMiddleware,
) {
	reportsController := controllers.NewReportsController(reportsService, logger)

	management := authMW.RequireRoles(constants.RoleDirector, constants.RoleAdmin)

	g := secureGroup.Group("/reports")
	g.GET("/orders", reportsController.GetOrders, management)
	g.GET("/masters", reportsController.GetMasters, management)
	g.GET("/finance", reportsController.GetFinance, management)
	g.GET("/calls", reportsController.GetCalls, management)
	g.GET("/city", reportsController.GetCityReport, management)
	g.GET("/city/:city", reportsController.GetCityDetail, management)
	g.GET("/campaigns", reportsController.GetCampaigns, management)
	g.GET("/export/excel", reportsController.ExportExcel, management)

	// Личная статистика мастера, id берется из токена.
	g.GET("/statistics/master", reportsController.GetMasterStatistics,
		authMW.RequireRoles(constants.RoleMaster))
}
