package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-admin-backend/internal/common/handler"
	"github.com/dumeirei/hotel-admin-backend/internal/common/response"
	bookingService "github.com/dumeirei/hotel-admin-backend/internal/service/booking"
)

// BookingHandler 客房预订处理器
type BookingHandler struct {
	bookingService *bookingService.BookingService
}

// NewBookingHandler 创建预订处理器
func NewBookingHandler(bookingSvc *bookingService.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingSvc}
}

// RegisterRoutes 注册路由
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/bookings", h.ListBookings)
	r.POST("/bookings", h.CreateBooking)
	r.POST("/bookings/quote", h.QuoteBooking)
	r.GET("/bookings/reference/:reference", h.GetBookingByReference)
	r.GET("/bookings/:id", h.GetBooking)
	r.PUT("/bookings/:id", h.UpdateBooking)
	r.POST("/bookings/:id/confirm", h.ConfirmBooking)
	r.POST("/bookings/:id/check-in", h.CheckIn)
	r.POST("/bookings/:id/undo-check-in", h.UndoCheckIn)
	r.POST("/bookings/:id/check-out", h.CheckOut)
	r.POST("/bookings/:id/cancel", h.CancelBooking)
	r.POST("/bookings/:id/convert", h.ConvertTentative)
	r.GET("/bookings/:id/tentative-logs", h.ListTentativeLogs)
}

// CreateBooking 创建预订
// @Summary 创建预订
// @Tags 预订管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body bookingService.CreateBookingRequest true "请求参数"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Router /api/admin/bookings [post]
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	adminID, ok := handler.RequireAdminID(c)
	if !ok {
		return
	}

	var req bookingService.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), adminID, &req)
	handler.MustSucceed(c, err, booking)
}

// QuoteRequest 报价请求
type QuoteRequest struct {
	RoomID        int64    `json:"room_id" binding:"required"`
	CheckInDate   string   `json:"check_in_date" binding:"required"`
	CheckOutDate  string   `json:"check_out_date" binding:"required"`
	OccupancyType string   `json:"occupancy_type"`
	TotalOverride *float64 `json:"total_override"`
}

// QuoteBooking 预订报价（不落库）
// @Summary 预订报价
// @Tags 预订管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body QuoteRequest true "请求参数"
// @Success 200 {object} response.Response{data=bookingService.Quote}
// @Router /api/admin/bookings/quote [post]
func (h *BookingHandler) QuoteBooking(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	quote, err := h.bookingService.QuoteBooking(
		c.Request.Context(),
		req.RoomID, req.CheckInDate, req.CheckOutDate, req.OccupancyType, req.TotalOverride,
	)
	handler.MustSucceed(c, err, quote)
}

// GetBooking 获取预订详情
// @Summary 获取预订详情
// @Tags 预订管理
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Router /api/admin/bookings/{id} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	id, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}

	booking, err := h.bookingService.GetBooking(c.Request.Context(), id)
	handler.MustSucceed(c, err, booking)
}

// GetBookingByReference 按预订编号查询
// @Summary 按预订编号查询
// @Tags 预订管理
// @Produce json
// @Security Bearer
// @Param reference path string true "预订编号"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Router /api/admin/bookings/reference/{reference} [get]
func (h *BookingHandler) GetBookingByReference(c *gin.Context) {
	reference := c.Param("reference")
	if reference == "" {
		response.BadRequest(c, "预订编号不能为空")
		return
	}

	booking, err := h.bookingService.GetBookingByReference(c.Request.Context(), reference)
	handler.MustSucceed(c, err, booking)
}

// ListBookings 获取预订列表
// @Summary 获取预订列表
// @Tags 预订管理
// @Produce json
// @Security Bearer
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Param room_id query int false "房型ID"
// @Param status query string false "预订状态"
// @Param payment_status query string false "付款状态"
// @Param keyword query string false "客人姓名/邮箱/编号"
// @Param start_date query string false "入住开始日期"
// @Param end_date query string false "入住结束日期"
// @Success 200 {object} response.Response{data=[]bookingService.BookingInfo}
// @Router /api/admin/bookings [get]
func (h *BookingHandler) ListBookings(c *gin.Context) {
	var req bookingService.ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	req.Normalize()

	bookings, total, err := h.bookingService.ListBookings(c.Request.Context(), &req)
	handler.MustSucceedPage(c, err, bookings, total, req.Page, req.PageSize)
}

// UpdateBooking 修改预订
// @Summary 修改预订
// @Tags 预订管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Param request body bookingService.UpdateBookingRequest true "请求参数"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Router /api/admin/bookings/{id} [put]
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	adminID, id, ok := handler.RequireAdminAndParseID(c, "预订")
	if !ok {
		return
	}

	var req bookingService.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	booking, err := h.bookingService.UpdateBooking(c.Request.Context(), adminID, id, &req)
	handler.MustSucceed(c, err, booking)
}

// ConfirmBooking 确认预订
// @Summary 确认预订
// @Tags 预订管理
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Router /api/admin/bookings/{id}/confirm [post]
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	adminID, id, ok := handler.RequireAdminAndParseID(c, "预订")
	if !ok {
		return
	}

	booking, err := h.bookingService.ConfirmBooking(c.Request.Context(), adminID, id)
	handler.MustSucceed(c, err, booking)
}

// CheckIn 办理入住
// @Summary 办理入住
// @Tags 预订管理
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Router /api/admin/bookings/{id}/check-in [post]
func (h *BookingHandler) CheckIn(c *gin.Context) {
	adminID, id, ok := handler.RequireAdminAndParseID(c, "预订")
	if !ok {
		return
	}

	booking, err := h.bookingService.CheckIn(c.Request.Context(), adminID, id)
	handler.MustSucceed(c, err, booking)
}

// UndoCheckIn 撤销入住
// @Summary 撤销入住
// @Tags 预订管理
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Router /api/admin/bookings/{id}/undo-check-in [post]
func (h *BookingHandler) UndoCheckIn(c *gin.Context) {
	adminID, id, ok := handler.RequireAdminAndParseID(c, "预订")
	if !ok {
		return
	}

	booking, err := h.bookingService.UndoCheckIn(c.Request.Context(), adminID, id)
	handler.MustSucceed(c, err, booking)
}

// CheckOut 办理退房
// @Summary 办理退房
// @Tags 预订管理
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Router /api/admin/bookings/{id}/check-out [post]
func (h *BookingHandler) CheckOut(c *gin.Context) {
	adminID, id, ok := handler.RequireAdminAndParseID(c, "预订")
	if !ok {
		return
	}

	booking, err := h.bookingService.CheckOut(c.Request.Context(), adminID, id)
	handler.MustSucceed(c, err, booking)
}

// CancelBookingRequest 取消预订请求
type CancelBookingRequest struct {
	Reason *string `json:"reason"`
}

// CancelBooking 取消预订
// @Summary 取消预订
// @Tags 预订管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Param request body CancelBookingRequest false "请求参数"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Router /api/admin/bookings/{id}/cancel [post]
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	adminID, id, ok := handler.RequireAdminAndParseID(c, "预订")
	if !ok {
		return
	}

	var req CancelBookingRequest
	_ = c.ShouldBindJSON(&req)

	booking, err := h.bookingService.CancelBooking(c.Request.Context(), adminID, id, req.Reason)
	handler.MustSucceed(c, err, booking)
}

// ConvertTentative 临时预订转正式
// @Summary 临时预订转正式
// @Tags 预订管理
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Router /api/admin/bookings/{id}/convert [post]
func (h *BookingHandler) ConvertTentative(c *gin.Context) {
	adminID, id, ok := handler.RequireAdminAndParseID(c, "预订")
	if !ok {
		return
	}

	booking, err := h.bookingService.ConvertTentative(c.Request.Context(), adminID, id)
	handler.MustSucceed(c, err, booking)
}

// ListTentativeLogs 获取临时预订操作日志
// @Summary 获取临时预订操作日志
// @Tags 预订管理
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response{data=[]models.TentativeBookingLog}
// @Router /api/admin/bookings/{id}/tentative-logs [get]
func (h *BookingHandler) ListTentativeLogs(c *gin.Context) {
	id, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}

	logs, err := h.bookingService.ListTentativeLogs(c.Request.Context(), id)
	handler.MustSucceed(c, err, logs)
}
