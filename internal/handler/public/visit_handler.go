// Package public 提供官网侧无需认证的接口
package public

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-admin-backend/internal/common/handler"
	"github.com/dumeirei/hotel-admin-backend/internal/common/response"
	analyticsService "github.com/dumeirei/hotel-admin-backend/internal/service/analytics"
)

// VisitHandler 页面访问上报处理器
type VisitHandler struct {
	analyticsService *analyticsService.AnalyticsService
}

// NewVisitHandler 创建访问上报处理器
func NewVisitHandler(analyticsSvc *analyticsService.AnalyticsService) *VisitHandler {
	return &VisitHandler{analyticsService: analyticsSvc}
}

// RegisterRoutes 注册路由
func (h *VisitHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/visits", h.RecordVisit)
}

// RecordVisit 上报一次页面访问
// @Summary 上报一次页面访问
// @Tags 访问统计
// @Accept json
// @Produce json
// @Param request body analyticsService.RecordVisitRequest true "请求参数"
// @Success 200 {object} response.Response
// @Router /api/v1/visits [post]
func (h *VisitHandler) RecordVisit(c *gin.Context) {
	var req analyticsService.RecordVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	// IP 以服务端看到的为准，不信任上报值
	req.IP = c.ClientIP()
	if req.UserAgent == nil {
		if ua := c.Request.UserAgent(); ua != "" {
			req.UserAgent = &ua
		}
	}

	visitorID, err := h.analyticsService.RecordVisit(c.Request.Context(), &req)
	if handler.HandleError(c, err) {
		return
	}
	response.Success(c, gin.H{"visitor_id": visitorID})
}
