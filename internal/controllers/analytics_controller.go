package controllers

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"callcentre-backend/internal/dto"
	"callcentre-backend/internal/services"
	"callcentre-backend/pkg/utils"
)

type AnalyticsController struct {
	service *services.AnalyticsService
	logger  *zap.Logger
}

func NewAnalyticsController(service *services.AnalyticsService, logger *zap.Logger) *AnalyticsController {
	return &AnalyticsController{service: service, logger: logger}
}

func (c *AnalyticsController) GetOperators(ctx echo.Context) error {
	var q dto.OperatorAnalyticsQuery
	if err := ctx.Bind(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	data, err := c.service.GetOperatorAnalytics(ctx.Request().Context(), q)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, data)
}

func (c *AnalyticsController) GetCities(ctx echo.Context) error {
	var q dto.CityAnalyticsQuery
	if err := ctx.Bind(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	data, err := c.service.GetCityAnalytics(ctx.Request().Context(), q)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, data)
}

func (c *AnalyticsController) GetCampaigns(ctx echo.Context) error {
	var q dto.CampaignAnalyticsQuery
	if err := ctx.Bind(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	data, err := c.service.GetCampaignAnalytics(ctx.Request().Context(), q)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, data)
}

func (c *AnalyticsController) GetDaily(ctx echo.Context) error {
	var q dto.DailyAnalyticsQuery
	if err := ctx.Bind(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	data, err := c.service.GetDailyMetrics(ctx.Request().Context(), q)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, data)
}

func (c *AnalyticsController) GetDashboard(ctx echo.Context) error {
	var q dto.DashboardQuery
	if err := ctx.Bind(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	data, err := c.service.GetDashboard(ctx.Request().Context(), q)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, data)
}

func (c *AnalyticsController) GetPerformance(ctx echo.Context) error {
	var q dto.PerformanceQuery
	if err := ctx.Bind(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	data, err := c.service.GetPerformanceMetrics(ctx.Request().Context(), q)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, data)
}
