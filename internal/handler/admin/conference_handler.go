package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-admin-backend/internal/common/handler"
	"github.com/dumeirei/hotel-admin-backend/internal/common/response"
	conferenceService "github.com/dumeirei/hotel-admin-backend/internal/service/conference"
)

// ConferenceHandler 会议咨询处理器
type ConferenceHandler struct {
	conferenceService *conferenceService.ConferenceService
}

// NewConferenceHandler 创建会议咨询处理器
func NewConferenceHandler(conferenceSvc *conferenceService.ConferenceService) *ConferenceHandler {
	return &ConferenceHandler{conferenceService: conferenceSvc}
}

// RegisterRoutes 注册路由
func (h *ConferenceHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/inquiries", h.ListInquiries)
	r.POST("/inquiries", h.CreateInquiry)
	r.GET("/inquiries/reference/:reference", h.GetInquiryByReference)
	r.GET("/inquiries/:id", h.GetInquiry)
	r.PUT("/inquiries/:id", h.UpdateInquiry)
	r.POST("/inquiries/:id/transition", h.TransitionInquiry)

	r.GET("/conference-rooms", h.ListRooms)
	r.POST("/conference-rooms", h.CreateRoom)
	r.GET("/conference-rooms/:id", h.GetRoom)
	r.PUT("/conference-rooms/:id", h.UpdateRoom)
	r.DELETE("/conference-rooms/:id", h.DeleteRoom)
}

// CreateInquiry 创建会议咨询
// @Summary 创建会议咨询
// @Tags 会议管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body conferenceService.CreateInquiryRequest true "请求参数"
// @Success 200 {object} response.Response{data=conferenceService.InquiryInfo}
// @Router /api/admin/inquiries [post]
func (h *ConferenceHandler) CreateInquiry(c *gin.Context) {
	var req conferenceService.CreateInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	inquiry, err := h.conferenceService.CreateInquiry(c.Request.Context(), &req)
	handler.MustSucceed(c, err, inquiry)
}

// GetInquiry 获取会议咨询详情
// @Summary 获取会议咨询详情
// @Tags 会议管理
// @Produce json
// @Security Bearer
// @Param id path int true "咨询ID"
// @Success 200 {object} response.Response{data=conferenceService.InquiryInfo}
// @Router /api/admin/inquiries/{id} [get]
func (h *ConferenceHandler) GetInquiry(c *gin.Context) {
	id, ok := handler.ParseID(c, "咨询")
	if !ok {
		return
	}

	inquiry, err := h.conferenceService.GetInquiry(c.Request.Context(), id)
	handler.MustSucceed(c, err, inquiry)
}

// GetInquiryByReference 按咨询编号查询
// @Summary 按咨询编号查询
// @Tags 会议管理
// @Produce json
// @Security Bearer
// @Param reference path string true "咨询编号"
// @Success 200 {object} response.Response{data=conferenceService.InquiryInfo}
// @Router /api/admin/inquiries/reference/{reference} [get]
func (h *ConferenceHandler) GetInquiryByReference(c *gin.Context) {
	reference := c.Param("reference")
	if reference == "" {
		response.BadRequest(c, "咨询编号不能为空")
		return
	}

	inquiry, err := h.conferenceService.GetInquiryByReference(c.Request.Context(), reference)
	handler.MustSucceed(c, err, inquiry)
}

// ListInquiries 获取会议咨询列表
// @Summary 获取会议咨询列表
// @Tags 会议管理
// @Produce json
// @Security Bearer
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Param status query string false "状态"
// @Param conference_room_id query int false "会议室ID"
// @Param keyword query string false "联系人/单位/编号"
// @Param start_date query string false "活动开始日期"
// @Param end_date query string false "活动结束日期"
// @Success 200 {object} response.Response{data=[]conferenceService.InquiryInfo}
// @Router /api/admin/inquiries [get]
func (h *ConferenceHandler) ListInquiries(c *gin.Context) {
	var req conferenceService.ListInquiriesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	req.Normalize()

	inquiries, total, err := h.conferenceService.ListInquiries(c.Request.Context(), &req)
	handler.MustSucceedPage(c, err, inquiries, total, req.Page, req.PageSize)
}

// UpdateInquiry 更新会议咨询
// @Summary 更新会议咨询
// @Tags 会议管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "咨询ID"
// @Param request body conferenceService.UpdateInquiryRequest true "请求参数"
// @Success 200 {object} response.Response{data=conferenceService.InquiryInfo}
// @Router /api/admin/inquiries/{id} [put]
func (h *ConferenceHandler) UpdateInquiry(c *gin.Context) {
	id, ok := handler.ParseID(c, "咨询")
	if !ok {
		return
	}

	var req conferenceService.UpdateInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	inquiry, err := h.conferenceService.UpdateInquiry(c.Request.Context(), id, &req)
	handler.MustSucceed(c, err, inquiry)
}

// TransitionInquiryRequest 咨询状态流转请求
type TransitionInquiryRequest struct {
	Target     string  `json:"target" binding:"required"`
	AdminNotes *string `json:"admin_notes"`
}

// TransitionInquiry 流转咨询状态
// @Summary 流转咨询状态
// @Tags 会议管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "咨询ID"
// @Param request body TransitionInquiryRequest true "请求参数"
// @Success 200 {object} response.Response{data=conferenceService.InquiryInfo}
// @Router /api/admin/inquiries/{id}/transition [post]
func (h *ConferenceHandler) TransitionInquiry(c *gin.Context) {
	id, ok := handler.ParseID(c, "咨询")
	if !ok {
		return
	}

	var req TransitionInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	inquiry, err := h.conferenceService.TransitionInquiry(c.Request.Context(), id, req.Target, req.AdminNotes)
	handler.MustSucceed(c, err, inquiry)
}

// CreateRoom 创建会议室
// @Summary 创建会议室
// @Tags 会议管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body conferenceService.CreateRoomRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.ConferenceRoom}
// @Router /api/admin/conference-rooms [post]
func (h *ConferenceHandler) CreateRoom(c *gin.Context) {
	var req conferenceService.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	room, err := h.conferenceService.CreateRoom(c.Request.Context(), &req)
	handler.MustSucceed(c, err, room)
}

// GetRoom 获取会议室详情
// @Summary 获取会议室详情
// @Tags 会议管理
// @Produce json
// @Security Bearer
// @Param id path int true "会议室ID"
// @Success 200 {object} response.Response{data=models.ConferenceRoom}
// @Router /api/admin/conference-rooms/{id} [get]
func (h *ConferenceHandler) GetRoom(c *gin.Context) {
	id, ok := handler.ParseID(c, "会议室")
	if !ok {
		return
	}

	room, err := h.conferenceService.GetRoom(c.Request.Context(), id)
	handler.MustSucceed(c, err, room)
}

// ListRooms 获取会议室列表
// @Summary 获取会议室列表
// @Tags 会议管理
// @Produce json
// @Security Bearer
// @Param only_active query bool false "仅启用"
// @Success 200 {object} response.Response{data=[]models.ConferenceRoom}
// @Router /api/admin/conference-rooms [get]
func (h *ConferenceHandler) ListRooms(c *gin.Context) {
	onlyActive := c.Query("only_active") == "true"
	rooms, err := h.conferenceService.ListRooms(c.Request.Context(), onlyActive)
	handler.MustSucceed(c, err, rooms)
}

// UpdateRoom 更新会议室
// @Summary 更新会议室
// @Tags 会议管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "会议室ID"
// @Param request body conferenceService.UpdateRoomRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.ConferenceRoom}
// @Router /api/admin/conference-rooms/{id} [put]
func (h *ConferenceHandler) UpdateRoom(c *gin.Context) {
	id, ok := handler.ParseID(c, "会议室")
	if !ok {
		return
	}

	var req conferenceService.UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	room, err := h.conferenceService.UpdateRoom(c.Request.Context(), id, &req)
	handler.MustSucceed(c, err, room)
}

// DeleteRoom 停用会议室
// @Summary 停用会议室
// @Tags 会议管理
// @Produce json
// @Security Bearer
// @Param id path int true "会议室ID"
// @Success 200 {object} response.Response
// @Router /api/admin/conference-rooms/{id} [delete]
func (h *ConferenceHandler) DeleteRoom(c *gin.Context) {
	id, ok := handler.ParseID(c, "会议室")
	if !ok {
		return
	}

	handler.MustSucceed(c, h.conferenceService.DeleteRoom(c.Request.Context(), id), nil)
}
