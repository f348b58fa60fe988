package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-admin-backend/internal/common/handler"
	"github.com/dumeirei/hotel-admin-backend/internal/common/response"
	paymentService "github.com/dumeirei/hotel-admin-backend/internal/service/payment"
)

// PaymentHandler 收款与发票处理器
type PaymentHandler struct {
	paymentService *paymentService.PaymentService
}

// NewPaymentHandler 创建收款处理器
func NewPaymentHandler(paymentSvc *paymentService.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentSvc}
}

// RegisterRoutes 注册路由
func (h *PaymentHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/payments", h.ListPayments)
	r.POST("/payments", h.RecordPayment)
	r.GET("/payments/:id", h.GetPayment)
	r.DELETE("/payments/:id", h.DeletePayment)
	r.POST("/payments/:id/invoice/resend", h.ResendInvoice)
	r.POST("/payments/:id/invoice/regenerate", h.RegenerateInvoice)
	r.GET("/bookings/:id/payments", h.ListByBooking)
	r.POST("/bookings/:id/reconcile", h.ReconcileBooking)
	r.POST("/inquiries/:id/reconcile", h.ReconcileInquiry)
}

// RecordPayment 录入收款
// @Summary 录入收款
// @Tags 收款管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body paymentService.RecordPaymentRequest true "请求参数"
// @Success 200 {object} response.Response{data=paymentService.PaymentInfo}
// @Router /api/admin/payments [post]
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	adminID, ok := handler.RequireAdminID(c)
	if !ok {
		return
	}

	var req paymentService.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	payment, err := h.paymentService.RecordPayment(c.Request.Context(), adminID, &req)
	handler.MustSucceed(c, err, payment)
}

// GetPayment 获取收款详情
// @Summary 获取收款详情
// @Tags 收款管理
// @Produce json
// @Security Bearer
// @Param id path int true "收款ID"
// @Success 200 {object} response.Response{data=paymentService.PaymentInfo}
// @Router /api/admin/payments/{id} [get]
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id, ok := handler.ParseID(c, "收款")
	if !ok {
		return
	}

	payment, err := h.paymentService.GetPayment(c.Request.Context(), id)
	handler.MustSucceed(c, err, payment)
}

// ListPayments 获取收款列表
// @Summary 获取收款列表
// @Tags 收款管理
// @Produce json
// @Security Bearer
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Param booking_type query string false "业务类型 room/conference"
// @Param payment_method query string false "收款方式"
// @Param status query string false "收款状态"
// @Param start_date query string false "开始日期"
// @Param end_date query string false "结束日期"
// @Success 200 {object} response.Response{data=[]paymentService.PaymentInfo}
// @Router /api/admin/payments [get]
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	var req paymentService.ListPaymentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	req.Normalize()

	payments, total, err := h.paymentService.ListPayments(c.Request.Context(), &req)
	handler.MustSucceedPage(c, err, payments, total, req.Page, req.PageSize)
}

// DeletePayment 删除收款记录
// @Summary 删除收款记录（软删除并重算父级汇总）
// @Tags 收款管理
// @Produce json
// @Security Bearer
// @Param id path int true "收款ID"
// @Success 200 {object} response.Response
// @Router /api/admin/payments/{id} [delete]
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	adminID, id, ok := handler.RequireAdminAndParseID(c, "收款")
	if !ok {
		return
	}

	handler.MustSucceed(c, h.paymentService.DeletePayment(c.Request.Context(), adminID, id), nil)
}

// ResendInvoice 重发发票邮件
// @Summary 重发发票邮件
// @Tags 收款管理
// @Produce json
// @Security Bearer
// @Param id path int true "收款ID"
// @Success 200 {object} response.Response
// @Router /api/admin/payments/{id}/invoice/resend [post]
func (h *PaymentHandler) ResendInvoice(c *gin.Context) {
	id, ok := handler.ParseID(c, "收款")
	if !ok {
		return
	}

	handler.MustSucceed(c, h.paymentService.ResendInvoice(c.Request.Context(), id), nil)
}

// RegenerateInvoice 重新生成发票
// @Summary 重新生成发票
// @Tags 收款管理
// @Produce json
// @Security Bearer
// @Param id path int true "收款ID"
// @Success 200 {object} response.Response{data=paymentService.PaymentInfo}
// @Router /api/admin/payments/{id}/invoice/regenerate [post]
func (h *PaymentHandler) RegenerateInvoice(c *gin.Context) {
	id, ok := handler.ParseID(c, "收款")
	if !ok {
		return
	}

	payment, err := h.paymentService.RegenerateInvoice(c.Request.Context(), id)
	handler.MustSucceed(c, err, payment)
}

// ListByBooking 获取预订下的收款记录
// @Summary 获取预订下的收款记录
// @Tags 收款管理
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response{data=[]paymentService.PaymentInfo}
// @Router /api/admin/bookings/{id}/payments [get]
func (h *PaymentHandler) ListByBooking(c *gin.Context) {
	id, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}

	payments, err := h.paymentService.ListByBooking(c.Request.Context(), id)
	handler.MustSucceed(c, err, payments)
}

// ReconcileBooking 重算预订付款汇总
// @Summary 重算预订付款汇总
// @Tags 收款管理
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response{data=paymentService.Aggregates}
// @Router /api/admin/bookings/{id}/reconcile [post]
func (h *PaymentHandler) ReconcileBooking(c *gin.Context) {
	id, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}

	aggregates, err := h.paymentService.ReconcileBooking(c.Request.Context(), id)
	handler.MustSucceed(c, err, aggregates)
}

// ReconcileInquiry 重算会议咨询付款汇总
// @Summary 重算会议咨询付款汇总
// @Tags 收款管理
// @Produce json
// @Security Bearer
// @Param id path int true "咨询ID"
// @Success 200 {object} response.Response{data=paymentService.Aggregates}
// @Router /api/admin/inquiries/{id}/reconcile [post]
func (h *PaymentHandler) ReconcileInquiry(c *gin.Context) {
	id, ok := handler.ParseID(c, "咨询")
	if !ok {
		return
	}

	aggregates, err := h.paymentService.ReconcileInquiry(c.Request.Context(), id)
	handler.MustSucceed(c, err, aggregates)
}
