package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"dashboard-api/internal/http/middleware"
	"dashboard-api/internal/model"
	"dashboard-api/internal/service"
)

type Handler struct {
	reports *service.ReportService
	log     zerolog.Logger
}

func NewHandler(reports *service.ReportService, log zerolog.Logger) *Handler {
	return &Handler{reports: reports, log: log}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := r.Group("/reports")
	protected.Use(authMiddleware)

	protected.GET("/geography/countries", h.getGeography)
	protected.GET("/geography/trend", h.getGeographyTrend)
	protected.GET("/requisitions", h.getRequisitions)
	protected.GET("/requisitions/trend", h.getRequisitionTrend)
	protected.GET("/customers/overview", h.getCustomerOverview)
	protected.GET("/customers/trend", h.getCustomerTrend)
	protected.GET("/customers/top", h.getTopCustomers)
	protected.GET("/customers/company-sizes", h.getCompanySizes)
	protected.GET("/customers/industries", h.getIndustries)
	protected.GET("/benefits/insurance", h.getInsurance)
	protected.GET("/addons", h.getAddons)
	protected.GET("/revenue", h.getRevenue)
	protected.GET("/revenue/trend", h.getRevenueTrend)
	protected.GET("/revenue/subscription-trend", h.getSubscriptionTrend)
	protected.GET("/:report/export", h.exportSnapshot)
}

func (h *Handler) getGeography(c *gin.Context) {
	report, err := h.reports.Geography(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(report))
}

func (h *Handler) getGeographyTrend(c *gin.Context) {
	trend, err := h.reports.GeographyTrend(c.Request.Context(), h.parseMonths(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(trend))
}

func (h *Handler) getRequisitions(c *gin.Context) {
	report, err := h.reports.Requisitions(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(report))
}

func (h *Handler) getRequisitionTrend(c *gin.Context) {
	trend, err := h.reports.RequisitionTrend(c.Request.Context(), h.parseMonths(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(trend))
}

func (h *Handler) getCustomerOverview(c *gin.Context) {
	overview, err := h.reports.CustomerOverview(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(overview))
}

func (h *Handler) getCustomerTrend(c *gin.Context) {
	trend, err := h.reports.CustomerTrend(c.Request.Context(), h.parseMonths(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(trend))
}

func (h *Handler) getTopCustomers(c *gin.Context) {
	customers, err := h.reports.TopCustomers(c.Request.Context(), h.parseLimit(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(customers))
}

func (h *Handler) getCompanySizes(c *gin.Context) {
	sizes, err := h.reports.CompanySizes(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(sizes))
}

func (h *Handler) getIndustries(c *gin.Context) {
	by := strings.ToLower(strings.TrimSpace(c.Query("by")))
	industries, err := h.reports.Industries(c.Request.Context(), by, h.parseLimit(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(industries))
}

func (h *Handler) getInsurance(c *gin.Context) {
	report, err := h.reports.Insurance(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(report))
}

func (h *Handler) getAddons(c *gin.Context) {
	report, err := h.reports.Addons(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(report))
}

func (h *Handler) getRevenue(c *gin.Context) {
	snapshot, err := h.reports.Revenue(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(snapshot))
}

func (h *Handler) getRevenueTrend(c *gin.Context) {
	trend, err := h.reports.RevenueTrend(c.Request.Context(), h.parseMonths(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(trend))
}

func (h *Handler) getSubscriptionTrend(c *gin.Context) {
	trend, err := h.reports.SubscriptionTrend(c.Request.Context(), h.parseMonths(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(trend))
}

func (h *Handler) exportSnapshot(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	report := model.Report(strings.TrimSpace(c.Param("report")))
	workbook, filename, err := h.reports.Export(c.Request.Context(), principal, report)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", workbook)
}

func (h *Handler) parseMonths(c *gin.Context) int {
	months, err := strconv.Atoi(strings.TrimSpace(c.DefaultQuery("months", "0")))
	if err != nil {
		return 0
	}
	return months
}

func (h *Handler) parseLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(strings.TrimSpace(c.DefaultQuery("limit", "0")))
	if err != nil {
		return 0
	}
	return limit
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Str("request_id", middleware.GetRequestID(c)).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{"data": data}
}

func errorResponse(message string) gin.H {
	return gin.H{"error": message}
}
