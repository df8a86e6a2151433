package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"callcentre-backend/internal/dto"
	"callcentre-backend/internal/entities"
	"callcentre-backend/internal/services"
	"callcentre-backend/pkg/utils"
)

type ReportsController struct {
	service *services.ReportsService
	logger  *zap.Logger
}

func NewReportsController(service *services.ReportsService, logger *zap.Logger) *ReportsController {
	return &ReportsController{service: service, logger: logger}
}

func (c *ReportsController) GetOrders(ctx echo.Context) error {
	var q dto.OrdersReportQuery
	if err := ctx.Bind(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	data, err := c.service.GetOrdersReport(ctx.Request().Context(), q)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, data)
}

func (c *ReportsController) GetMasters(ctx echo.Context) error {
	var q dto.MastersReportQuery
	if err := ctx.Bind(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	data, err := c.service.GetMastersReport(ctx.Request().Context(), q)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, data)
}

func (c *ReportsController) GetFinance(ctx echo.Context) error {
	var q dto.FinanceReportQuery
	if err := ctx.Bind(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	data, err := c.service.GetFinanceReport(ctx.Request().Context(), q)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, data)
}

func (c *ReportsController) GetCalls(ctx echo.Context) error {
	var q dto.CallsReportQuery
	if err := ctx.Bind(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	data, err := c.service.GetCallsReport(ctx.Request().Context(), q)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, data)
}

func (c *ReportsController) GetCityReport(ctx echo.Context) error {
	var q dto.CityReportQuery
	if err := ctx.Bind(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	data, err := c.service.GetCityReport(ctx.Request().Context(), q)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, data)
}

func (c *ReportsController) GetCityDetail(ctx echo.Context) error {
	var q dto.CityReportQuery
	if err := ctx.Bind(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	data, err := c.service.GetCityDetail(ctx.Request().Context(), ctx.Param("city"), q)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, data)
}

func (c *ReportsController) GetCampaigns(ctx echo.Context) error {
	var q dto.CampaignsReportQuery
	if err := ctx.Bind(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	data, err := c.service.GetCampaignsReport(ctx.Request().Context(), q)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, data)
}

func (c *ReportsController) GetMasterStatistics(ctx echo.Context) error {
	var q dto.OperatorStatsQuery
	if err := ctx.Bind(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	data, err := c.service.GetMasterStatistics(ctx.Request().Context(), q)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, data)
}

// ExportExcel выгружает отчет по заказам книгой Excel.
func (c *ReportsController) ExportExcel(ctx echo.Context) error {
	var q dto.OrdersReportQuery
	if err := ctx.Bind(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	report, err := c.service.GetOrdersReport(ctx.Request().Context(), q)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return c.respondWithXLSX(ctx, report.Orders)
}

var exportHeaders = []string{"RK", "Клиент", "Телефон", "Город", "Статус", "Сумма", "Дата"}

func orderToRow(order entities.Order) []interface{} {
	var client, phone string
	if order.ClientName != nil {
		client = *order.ClientName
	}
	if order.Phone != nil {
		phone = *order.Phone
	}
	var amount float64
	if order.Result != nil {
		amount = *order.Result
	}
	return []interface{}{
		order.RK, client, phone, order.City, order.StatusOrder,
		amount, order.CreateDate.Format("02.01.2006 15:04"),
	}
}

func (c *ReportsController) respondWithXLSX(ctx echo.Context, orders []entities.Order) error {
	f := excelize.NewFile()
	sheet := "Отчет по заказам"
	f.SetSheetName("Sheet1", sheet)
	f.SetSheetRow(sheet, "A1", &exportHeaders)
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, "A1", "G1", style)

	for i, order := range orders {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := orderToRow(order)
		f.SetSheetRow(sheet, cell, &row)
	}
	f.SetColWidth(sheet, "B", "B", 25)
	f.SetColWidth(sheet, "C", "E", 15)
	f.SetColWidth(sheet, "G", "G", 20)

	fileName := fmt.Sprintf("orders_%s.xlsx", time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set("Content-Disposition", "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}
