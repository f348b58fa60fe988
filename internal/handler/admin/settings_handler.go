package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-admin-backend/internal/common/handler"
	"github.com/dumeirei/hotel-admin-backend/internal/common/response"
	settingsService "github.com/dumeirei/hotel-admin-backend/internal/service/settings"
)

// SettingsHandler 系统设置处理器
type SettingsHandler struct {
	settingsService *settingsService.SettingsService
}

// NewSettingsHandler 创建系统设置处理器
func NewSettingsHandler(settingsSvc *settingsService.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsSvc}
}

// RegisterRoutes 注册路由（挂在超级管理员分组下）
func (h *SettingsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/settings", h.GetAll)
	r.GET("/settings/:key", h.GetValue)
	r.PUT("/settings", h.Upsert)
}

// GetAll 获取全部设置
// @Summary 获取全部设置
// @Tags 系统设置
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=[]models.Setting}
// @Router /api/admin/settings [get]
func (h *SettingsHandler) GetAll(c *gin.Context) {
	settings, err := h.settingsService.GetAll(c.Request.Context())
	handler.MustSucceed(c, err, settings)
}

// GetValue 获取单个设置值
// @Summary 获取单个设置值
// @Tags 系统设置
// @Produce json
// @Security Bearer
// @Param key path string true "设置键"
// @Success 200 {object} response.Response
// @Router /api/admin/settings/{key} [get]
func (h *SettingsHandler) GetValue(c *gin.Context) {
	key := c.Param("key")
	if key == "" {
		response.BadRequest(c, "设置键不能为空")
		return
	}

	value, err := h.settingsService.GetValue(c.Request.Context(), key)
	if handler.HandleError(c, err) {
		return
	}
	response.Success(c, gin.H{"key": key, "value": value})
}

// Upsert 更新设置
// @Summary 更新设置
// @Tags 系统设置
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body settingsService.UpsertRequest true "请求参数"
// @Success 200 {object} response.Response
// @Router /api/admin/settings [put]
func (h *SettingsHandler) Upsert(c *gin.Context) {
	adminID, ok := handler.RequireAdminID(c)
	if !ok {
		return
	}

	var req settingsService.UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	handler.MustSucceed(c, h.settingsService.Upsert(c.Request.Context(), adminID, &req), nil)
}
