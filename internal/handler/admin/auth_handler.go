// Package admin 提供管理后台的 HTTP Handler
package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-admin-backend/internal/common/handler"
	"github.com/dumeirei/hotel-admin-backend/internal/common/response"
	authService "github.com/dumeirei/hotel-admin-backend/internal/service/auth"
)

// AuthHandler 认证与账号管理处理器
type AuthHandler struct {
	authService *authService.AuthService
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(authSvc *authService.AuthService) *AuthHandler {
	return &AuthHandler{authService: authSvc}
}

// RegisterPublicRoutes 注册无需认证的路由
func (h *AuthHandler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.POST("/login", h.Login)
	r.POST("/token/refresh", h.RefreshToken)
}

// RegisterRoutes 注册需认证的路由
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/profile", h.GetProfile)
	r.PUT("/password", h.ChangePassword)
	r.GET("/logs/operation", h.ListOperationLogs)
}

// RegisterSuperRoutes 注册仅超级管理员可用的路由
func (h *AuthHandler) RegisterSuperRoutes(r *gin.RouterGroup) {
	r.GET("/admins", h.ListAdmins)
	r.POST("/admins", h.CreateAdmin)
	r.GET("/admins/:id", h.GetAdmin)
	r.PUT("/admins/:id", h.UpdateAdmin)
}

// Login 管理员登录
// @Summary 管理员登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body authService.LoginRequest true "请求参数"
// @Success 200 {object} response.Response{data=authService.LoginResult}
// @Router /api/admin/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req authService.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req, c.ClientIP())
	handler.MustSucceed(c, err, result)
}

// RefreshTokenRequest 刷新令牌请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshToken 刷新令牌
// @Summary 刷新令牌
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body RefreshTokenRequest true "请求参数"
// @Success 200 {object} response.Response{data=jwt.TokenPair}
// @Router /api/admin/token/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	pair, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	handler.MustSucceed(c, err, pair)
}

// GetProfile 获取当前管理员信息
// @Summary 获取当前管理员信息
// @Tags 认证
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=authService.AdminInfo}
// @Router /api/admin/profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	adminID, ok := handler.RequireAdminID(c)
	if !ok {
		return
	}

	info, err := h.authService.GetAdmin(c.Request.Context(), adminID)
	handler.MustSucceed(c, err, info)
}

// ChangePassword 修改本人密码
// @Summary 修改本人密码
// @Tags 认证
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body authService.ChangePasswordRequest true "请求参数"
// @Success 200 {object} response.Response
// @Router /api/admin/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	adminID, ok := handler.RequireAdminID(c)
	if !ok {
		return
	}

	var req authService.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	handler.MustSucceed(c, h.authService.ChangePassword(c.Request.Context(), adminID, &req), nil)
}

// ListAdmins 获取管理员列表
// @Summary 获取管理员列表
// @Tags 账号管理
// @Produce json
// @Security Bearer
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=[]authService.AdminInfo}
// @Router /api/admin/admins [get]
func (h *AuthHandler) ListAdmins(c *gin.Context) {
	p := handler.BindPagination(c)
	admins, total, err := h.authService.ListAdmins(c.Request.Context(), p.Page, p.PageSize)
	handler.MustSucceedPage(c, err, admins, total, p.Page, p.PageSize)
}

// CreateAdmin 创建管理员账号
// @Summary 创建管理员账号
// @Tags 账号管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body authService.CreateAdminRequest true "请求参数"
// @Success 200 {object} response.Response{data=authService.AdminInfo}
// @Router /api/admin/admins [post]
func (h *AuthHandler) CreateAdmin(c *gin.Context) {
	var req authService.CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	info, err := h.authService.CreateAdmin(c.Request.Context(), &req)
	handler.MustSucceed(c, err, info)
}

// GetAdmin 获取管理员详情
// @Summary 获取管理员详情
// @Tags 账号管理
// @Produce json
// @Security Bearer
// @Param id path int true "管理员ID"
// @Success 200 {object} response.Response{data=authService.AdminInfo}
// @Router /api/admin/admins/{id} [get]
func (h *AuthHandler) GetAdmin(c *gin.Context) {
	id, ok := handler.ParseID(c, "管理员")
	if !ok {
		return
	}

	info, err := h.authService.GetAdmin(c.Request.Context(), id)
	handler.MustSucceed(c, err, info)
}

// UpdateAdmin 更新管理员账号
// @Summary 更新管理员账号
// @Tags 账号管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "管理员ID"
// @Param request body authService.UpdateAdminRequest true "请求参数"
// @Success 200 {object} response.Response{data=authService.AdminInfo}
// @Router /api/admin/admins/{id} [put]
func (h *AuthHandler) UpdateAdmin(c *gin.Context) {
	id, ok := handler.ParseID(c, "管理员")
	if !ok {
		return
	}

	var req authService.UpdateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	info, err := h.authService.UpdateAdmin(c.Request.Context(), id, &req)
	handler.MustSucceed(c, err, info)
}

// ListOperationLogs 获取操作日志
// @Summary 获取操作日志
// @Tags 账号管理
// @Produce json
// @Security Bearer
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Param admin_id query int false "按管理员过滤"
// @Success 200 {object} response.Response{data=[]models.OperationLog}
// @Router /api/admin/logs/operation [get]
func (h *AuthHandler) ListOperationLogs(c *gin.Context) {
	if _, ok := handler.RequireAdminID(c); !ok {
		return
	}

	p := handler.BindPagination(c)
	adminID, ok := handler.ParseQueryID(c, "admin_id", "管理员")
	if !ok {
		return
	}

	var filterID int64
	if adminID != nil {
		filterID = *adminID
	}

	logs, total, err := h.authService.ListOperationLogs(c.Request.Context(), p.Page, p.PageSize, filterID)
	handler.MustSucceedPage(c, err, logs, total, p.Page, p.PageSize)
}
