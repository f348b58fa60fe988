package admin

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-admin-backend/internal/common/handler"
	"github.com/dumeirei/hotel-admin-backend/internal/common/response"
	analyticsService "github.com/dumeirei/hotel-admin-backend/internal/service/analytics"
)

// AnalyticsHandler 仪表盘与访客统计处理器
type AnalyticsHandler struct {
	analyticsService *analyticsService.AnalyticsService
}

// NewAnalyticsHandler 创建统计处理器
func NewAnalyticsHandler(analyticsSvc *analyticsService.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsSvc}
}

// RegisterRoutes 注册路由
func (h *AnalyticsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/dashboard", h.GetDashboard)
	r.GET("/analytics/daily", h.ListDailyStats)
	r.GET("/analytics/top-pages", h.TopPages)
	r.GET("/analytics/today", h.TodayVisitCount)
}

// GetDashboard 获取仪表盘汇总
// @Summary 获取仪表盘汇总
// @Tags 统计分析
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=analyticsService.DashboardSummary}
// @Router /api/admin/dashboard [get]
func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	summary, err := h.analyticsService.GetDashboardSummary(c.Request.Context())
	handler.MustSucceed(c, err, summary)
}

// ListDailyStats 获取按日访问统计
// @Summary 获取按日访问统计
// @Tags 统计分析
// @Produce json
// @Security Bearer
// @Param start_date query string true "开始日期"
// @Param end_date query string true "结束日期"
// @Success 200 {object} response.Response{data=[]models.DailyVisitStat}
// @Router /api/admin/analytics/daily [get]
func (h *AnalyticsHandler) ListDailyStats(c *gin.Context) {
	from, to, ok := handler.ParseRequiredQueryDateRange(c)
	if !ok {
		return
	}

	stats, err := h.analyticsService.ListDailyStats(c.Request.Context(), from, to)
	handler.MustSucceed(c, err, stats)
}

// TopPages 获取访问量最高的页面
// @Summary 获取访问量最高的页面
// @Tags 统计分析
// @Produce json
// @Security Bearer
// @Param start_date query string false "开始日期"
// @Param end_date query string false "结束日期"
// @Param limit query int false "返回数量"
// @Success 200 {object} response.Response{data=[]repository.PathVisitCount}
// @Router /api/admin/analytics/top-pages [get]
func (h *AnalyticsHandler) TopPages(c *gin.Context) {
	from, to, ok := handler.ParseQueryDateRange(c)
	if !ok {
		return
	}

	// 默认最近30天
	end := time.Now()
	start := end.AddDate(0, 0, -30)
	if from != nil {
		start = *from
	}
	if to != nil {
		end = *to
	}

	limit := 10
	limitPtr, ok := handler.ParseQueryID(c, "limit", "数量")
	if !ok {
		return
	}
	if limitPtr != nil && *limitPtr > 0 {
		limit = int(*limitPtr)
	}

	pages, err := h.analyticsService.TopPages(c.Request.Context(), start, end, limit)
	handler.MustSucceed(c, err, pages)
}

// TodayVisitCount 获取今日访问量
// @Summary 获取今日访问量
// @Tags 统计分析
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response
// @Router /api/admin/analytics/today [get]
func (h *AnalyticsHandler) TodayVisitCount(c *gin.Context) {
	count, err := h.analyticsService.TodayVisitCount(c.Request.Context())
	if handler.HandleError(c, err) {
		return
	}
	response.Success(c, gin.H{"visits_today": count})
}
