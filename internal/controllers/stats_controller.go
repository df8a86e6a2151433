package controllers

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"callcentre-backend/internal/dto"
	"callcentre-backend/internal/services"
	apperrors "callcentre-backend/pkg/errors"
	"callcentre-backend/pkg/utils"
)

type StatsController struct {
	service *services.StatsService
	logger  *zap.Logger
}

func NewStatsController(service *services.StatsService, logger *zap.Logger) *StatsController {
	return &StatsController{service: service, logger: logger}
}

// GetMyStats - личная статистика оператора, id берется из токена.
func (c *StatsController) GetMyStats(ctx echo.Context) error {
	operatorID, err := utils.GetUserIDFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var q dto.OperatorStatsQuery
	if err := ctx.Bind(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	data, err := c.service.GetOperatorStats(ctx.Request().Context(), operatorID, q)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, data)
}

func (c *StatsController) GetOperatorStats(ctx echo.Context) error {
	operatorID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("некорректный id оператора"), c.logger)
	}

	var q dto.OperatorStatsQuery
	if err := ctx.Bind(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	data, err := c.service.GetOperatorStats(ctx.Request().Context(), operatorID, q)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, data)
}

func (c *StatsController) GetOverallStats(ctx echo.Context) error {
	var q dto.OperatorStatsQuery
	if err := ctx.Bind(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	data, err := c.service.GetOverallStats(ctx.Request().Context(), q)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, data)
}

func (c *StatsController) GetDashboard(ctx echo.Context) error {
	data, err := c.service.GetAdminDashboard(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, data)
}
