// Package payment 提供收款台账服务
// 只有 completed 状态的收款计入父级的已付金额缓存，缓存统一以明细重算方式维护
package payment

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-admin-backend/internal/common/errors"
	"github.com/dumeirei/hotel-admin-backend/internal/common/logger"
	"github.com/dumeirei/hotel-admin-backend/internal/common/metrics"
	"github.com/dumeirei/hotel-admin-backend/internal/common/utils"
	"github.com/dumeirei/hotel-admin-backend/internal/models"
	"github.com/dumeirei/hotel-admin-backend/internal/repository"
	"github.com/dumeirei/hotel-admin-backend/internal/service/invoice"
)

const maxReferenceAttempts = 5

// Notifier 收款通知投递接口，事务提交后调用
type Notifier interface {
	SendPaymentInvoice(ctx context.Context, b *models.Booking, p *models.Payment, invoiceFile string) error
}

// PaymentService 收款服务
type PaymentService struct {
	db             *gorm.DB
	paymentRepo    *repository.PaymentRepository
	bookingRepo    *repository.BookingRepository
	conferenceRepo *repository.ConferenceRepository
	invoiceService *invoice.InvoiceService
	settings       models.BookingSettings
	notifier       Notifier
}

// NewPaymentService 创建收款服务
func NewPaymentService(
	db *gorm.DB,
	paymentRepo *repository.PaymentRepository,
	bookingRepo *repository.BookingRepository,
	conferenceRepo *repository.ConferenceRepository,
	invoiceSvc *invoice.InvoiceService,
	settings models.BookingSettings,
	notifier Notifier,
) *PaymentService {
	return &PaymentService{
		db:             db,
		paymentRepo:    paymentRepo,
		bookingRepo:    bookingRepo,
		conferenceRepo: conferenceRepo,
		invoiceService: invoiceSvc,
		settings:       settings,
		notifier:       notifier,
	}
}

// RecordPaymentRequest 录入收款请求
type RecordPaymentRequest struct {
	BookingType   string   `json:"booking_type"`
	BookingID     *int64   `json:"booking_id"`
	InquiryID     *int64   `json:"inquiry_id"`
	Amount        float64  `json:"amount" binding:"required,gt=0"`
	PaymentMethod string   `json:"payment_method" binding:"required"`
	PaymentType   string   `json:"payment_type"`
	Status        string   `json:"status"`
	Notes         *string  `json:"notes"`
	PaidAt        *string  `json:"paid_at"`
	SkipInvoice   bool     `json:"skip_invoice"`
}

// PaymentInfo 收款信息
type PaymentInfo struct {
	ID               int64     `json:"id"`
	PaymentReference string    `json:"payment_reference"`
	BookingType      string    `json:"booking_type"`
	BookingID        *int64    `json:"booking_id,omitempty"`
	InquiryID        *int64    `json:"inquiry_id,omitempty"`
	Amount           float64   `json:"amount"`
	VATRate          float64   `json:"vat_rate"`
	VATAmount        float64   `json:"vat_amount"`
	TotalAmount      float64   `json:"total_amount"`
	PaymentMethod    string    `json:"payment_method"`
	PaymentType      string    `json:"payment_type"`
	Status           string    `json:"status"`
	StatusName       string    `json:"status_name"`
	Notes            *string   `json:"notes,omitempty"`
	InvoiceNumber    *string   `json:"invoice_number,omitempty"`
	InvoicePath      *string   `json:"invoice_path,omitempty"`
	InvoiceGenerated bool      `json:"invoice_generated"`
	RecordedBy       *int64    `json:"recorded_by,omitempty"`
	PaidAt           time.Time `json:"paid_at"`
	CreatedAt        time.Time `json:"created_at"`
}

// Aggregates 父级已付金额汇总快照
type Aggregates struct {
	AmountPaid      float64    `json:"amount_paid"`
	AmountDue       float64    `json:"amount_due"`
	PaymentStatus   string     `json:"payment_status,omitempty"`
	LastPaymentDate *time.Time `json:"last_payment_date,omitempty"`
}

// RecordPayment 录入收款
// completed 状态的收款在同一事务内回写父级的已付金额缓存；发票与邮件在提交后尽力处理
func (s *PaymentService) RecordPayment(ctx context.Context, adminID int64, req *RecordPaymentRequest) (*PaymentInfo, error) {
	if req.Amount <= 0 {
		return nil, errors.ErrPaymentAmountError
	}

	bookingType := req.BookingType
	if bookingType == "" {
		bookingType = models.BookingTypeRoom
	}

	status := req.Status
	if status == "" {
		status = models.PaymentStatusCompleted
	}
	switch status {
	case models.PaymentStatusPending, models.PaymentStatusCompleted, models.PaymentStatusFailed,
		models.PaymentStatusRefunded, models.PaymentStatusPartiallyRefunded:
	default:
		return nil, errors.ErrInvalidParams.WithMessage("无效的收款状态: " + status)
	}

	paymentType := req.PaymentType
	if paymentType == "" {
		paymentType = models.PaymentTypeFull
	}

	paidAt := time.Now()
	if req.PaidAt != nil && *req.PaidAt != "" {
		parsed, err := parsePaidAt(*req.PaidAt)
		if err != nil {
			return nil, errors.ErrInvalidParams.WithMessage("无效的收款时间: " + *req.PaidAt)
		}
		paidAt = parsed
	}

	// 定位父级实体，增值税率沿用预订创建时的值，会议收款用当前设置
	var booking *models.Booking
	var inquiry *models.ConferenceInquiry
	var vatRate float64
	var referenceSeed int64

	switch bookingType {
	case models.BookingTypeRoom:
		if req.BookingID == nil {
			return nil, errors.ErrInvalidParams.WithMessage("客房收款必须指定 booking_id")
		}
		var err error
		booking, err = s.bookingRepo.GetByIDWithRoom(ctx, *req.BookingID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, errors.ErrBookingNotFound
			}
			return nil, errors.ErrDatabaseError.WithError(err)
		}
		vatRate = booking.VATRate
		referenceSeed = booking.ID
	case models.BookingTypeConference:
		if req.InquiryID == nil {
			return nil, errors.ErrInvalidParams.WithMessage("会议收款必须指定 inquiry_id")
		}
		var err error
		inquiry, err = s.conferenceRepo.GetInquiryByID(ctx, *req.InquiryID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, errors.ErrInquiryNotFound
			}
			return nil, errors.ErrDatabaseError.WithError(err)
		}
		vatRate = s.settings.EffectiveVATRate()
		referenceSeed = inquiry.ID
	default:
		return nil, errors.ErrInvalidParams.WithMessage("无效的收款归属类型: " + bookingType)
	}

	reference, err := s.generateReference(ctx, referenceSeed)
	if err != nil {
		return nil, err
	}

	amount := utils.Round2(req.Amount)
	vatAmount := utils.Round2(amount * vatRate / 100)

	payment := &models.Payment{
		PaymentReference: reference,
		BookingType:      bookingType,
		BookingID:        req.BookingID,
		InquiryID:        req.InquiryID,
		Amount:           amount,
		VATRate:          vatRate,
		VATAmount:        vatAmount,
		TotalAmount:      utils.Round2(amount + vatAmount),
		PaymentMethod:    req.PaymentMethod,
		PaymentType:      paymentType,
		Status:           status,
		Notes:            req.Notes,
		RecordedBy:       &adminID,
		PaidAt:           paidAt,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(payment).Error; err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		if payment.CountsTowardPaid() {
			return s.refreshParentTx(tx, bookingType, payment)
		}
		return nil
	})
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			return nil, appErr
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	metrics.GetMetrics().RecordPayment(req.PaymentMethod, status)
	logger.Info("收款已录入",
		logger.PaymentRef(payment.PaymentReference),
		logger.Float64("amount", payment.Amount),
		logger.AdminID(adminID),
	)

	// 事务已提交，发票生成与邮件通知失败不影响收款结果
	if status == models.PaymentStatusCompleted && !req.SkipInvoice {
		s.generateAndSendInvoice(ctx, payment, booking, inquiry)
	}

	return s.toPaymentInfo(payment), nil
}

// generateAndSendInvoice 生成发票并发送收款邮件（尽力而为）
func (s *PaymentService) generateAndSendInvoice(ctx context.Context, p *models.Payment, booking *models.Booking, inquiry *models.ConferenceInquiry) {
	result, err := s.invoiceService.GenerateInvoice(ctx, p, booking, inquiry)
	if err != nil {
		logger.Warn("发票生成失败", logger.PaymentRef(p.PaymentReference), logger.Err(err))
		return
	}

	fields := map[string]interface{}{
		"invoice_number":    result.InvoiceNumber,
		"invoice_path":      result.Path,
		"invoice_generated": true,
	}
	if err := s.paymentRepo.UpdateFields(ctx, p.ID, fields); err != nil {
		logger.Warn("发票信息回写失败", logger.PaymentRef(p.PaymentReference), logger.Err(err))
		return
	}
	p.InvoiceNumber = &result.InvoiceNumber
	p.InvoicePath = &result.Path
	p.InvoiceGenerated = true

	if booking == nil || s.notifier == nil {
		return
	}

	// 用回写后的汇总数据生成邮件内容
	refreshed, err := s.bookingRepo.GetByIDWithRoom(ctx, booking.ID)
	if err != nil {
		refreshed = booking
	}
	if err := s.notifier.SendPaymentInvoice(ctx, refreshed, p, s.invoiceService.AbsolutePath(result.Path)); err != nil {
		logger.Warn("收款邮件发送失败", logger.PaymentRef(p.PaymentReference), logger.Err(err))
	}
}

// DeletePayment 删除收款（软删除）
// completed 收款被删除后，父级的已付金额缓存按剩余明细重算
func (s *PaymentService) DeletePayment(ctx context.Context, adminID int64, paymentID int64) error {
	p, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrPaymentNotFound
		}
		return errors.ErrDatabaseError.WithError(err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Payment{}, p.ID).Error; err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		if p.CountsTowardPaid() {
			return s.refreshParentTx(tx, p.BookingType, p)
		}
		return nil
	})
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			return appErr
		}
		return errors.ErrDatabaseError.WithError(err)
	}

	logger.Info("收款已删除",
		logger.PaymentRef(p.PaymentReference),
		logger.AdminID(adminID),
	)
	return nil
}

// ReconcileBooking 按收款明细修复预订的已付金额缓存
// 缓存与明细漂移时的人工修复入口，返回修复后的汇总
func (s *PaymentService) ReconcileBooking(ctx context.Context, bookingID int64) (*Aggregates, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrBookingNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return refreshBookingAggregatesTx(tx, b.ID)
	})
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			return nil, appErr
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	updated, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	logger.Info("预订收款汇总已修复",
		logger.BookingID(bookingID),
		logger.Float64("amount_paid", updated.AmountPaid),
	)

	return &Aggregates{
		AmountPaid:      updated.AmountPaid,
		AmountDue:       updated.AmountDue,
		PaymentStatus:   updated.PaymentStatus,
		LastPaymentDate: updated.LastPaymentDate,
	}, nil
}

// ReconcileInquiry 按收款明细修复会议咨询的已付金额缓存
func (s *PaymentService) ReconcileInquiry(ctx context.Context, inquiryID int64) (*Aggregates, error) {
	inq, err := s.conferenceRepo.GetInquiryByID(ctx, inquiryID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrInquiryNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return refreshInquiryAggregatesTx(tx, inq.ID)
	})
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	updated, err := s.conferenceRepo.GetInquiryByID(ctx, inquiryID)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	return &Aggregates{
		AmountPaid:      updated.AmountPaid,
		AmountDue:       updated.AmountDue,
		LastPaymentDate: updated.LastPaymentDate,
	}, nil
}

// ResendInvoice 重发发票邮件
func (s *PaymentService) ResendInvoice(ctx context.Context, paymentID int64) error {
	p, err := s.paymentRepo.GetByIDWithBooking(ctx, paymentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrPaymentNotFound
		}
		return errors.ErrDatabaseError.WithError(err)
	}
	if p.InvoiceNumber == nil || p.InvoicePath == nil {
		return errors.ErrInvoiceNotFound
	}
	if p.Booking == nil {
		return errors.ErrInvoiceSendFail.WithMessage("会议收款发票暂不支持邮件发送")
	}
	if s.notifier == nil {
		return errors.ErrInvoiceSendFail.WithMessage("邮件服务未配置")
	}

	if err := s.notifier.SendPaymentInvoice(ctx, p.Booking, p, s.invoiceService.AbsolutePath(*p.InvoicePath)); err != nil {
		return errors.ErrInvoiceSendFail.WithError(err)
	}
	return nil
}

// RegenerateInvoice 重新生成发票（取新发票号，覆盖原有发票信息）
func (s *PaymentService) RegenerateInvoice(ctx context.Context, paymentID int64) (*PaymentInfo, error) {
	p, err := s.paymentRepo.GetByIDWithBooking(ctx, paymentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrPaymentNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	result, err := s.invoiceService.GenerateInvoice(ctx, p, p.Booking, p.Inquiry)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"invoice_number":    result.InvoiceNumber,
		"invoice_path":      result.Path,
		"invoice_generated": true,
	}
	if err := s.paymentRepo.UpdateFields(ctx, p.ID, fields); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	p.InvoiceNumber = &result.InvoiceNumber
	p.InvoicePath = &result.Path
	p.InvoiceGenerated = true

	logger.Info("发票已重新生成",
		logger.PaymentRef(p.PaymentReference),
		logger.String("invoice_number", result.InvoiceNumber),
	)

	return s.toPaymentInfo(p), nil
}

// GetPayment 获取收款详情
func (s *PaymentService) GetPayment(ctx context.Context, paymentID int64) (*PaymentInfo, error) {
	p, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrPaymentNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return s.toPaymentInfo(p), nil
}

// ListPaymentsRequest 收款列表查询参数
type ListPaymentsRequest struct {
	utils.Pagination
	BookingID     int64  `form:"booking_id"`
	InquiryID     int64  `form:"inquiry_id"`
	BookingType   string `form:"booking_type"`
	Status        string `form:"status"`
	PaymentMethod string `form:"payment_method"`
	StartDate     string `form:"start_date"`
	EndDate       string `form:"end_date"`
}

// ListPayments 获取收款列表
func (s *PaymentService) ListPayments(ctx context.Context, req *ListPaymentsRequest) ([]*PaymentInfo, int64, error) {
	req.Normalize()

	filters := map[string]interface{}{}
	if req.BookingID > 0 {
		filters["booking_id"] = req.BookingID
	}
	if req.InquiryID > 0 {
		filters["inquiry_id"] = req.InquiryID
	}
	if req.BookingType != "" {
		filters["booking_type"] = req.BookingType
	}
	if req.Status != "" {
		filters["status"] = req.Status
	}
	if req.PaymentMethod != "" {
		filters["payment_method"] = req.PaymentMethod
	}
	if req.StartDate != "" {
		if start, err := time.Parse("2006-01-02", req.StartDate); err == nil {
			filters["start_date"] = start
		}
	}
	if req.EndDate != "" {
		if end, err := time.Parse("2006-01-02", req.EndDate); err == nil {
			filters["end_date"] = end
		}
	}

	payments, total, err := s.paymentRepo.List(ctx, req.GetOffset(), req.GetLimit(), filters)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}

	result := make([]*PaymentInfo, len(payments))
	for i, p := range payments {
		result[i] = s.toPaymentInfo(p)
	}
	return result, total, nil
}

// ListByBooking 获取预订的全部收款
func (s *PaymentService) ListByBooking(ctx context.Context, bookingID int64) ([]*PaymentInfo, error) {
	payments, err := s.paymentRepo.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	result := make([]*PaymentInfo, len(payments))
	for i, p := range payments {
		result[i] = s.toPaymentInfo(p)
	}
	return result, nil
}

// refreshParentTx 事务内重算父级的已付金额缓存
func (s *PaymentService) refreshParentTx(tx *gorm.DB, bookingType string, p *models.Payment) error {
	switch bookingType {
	case models.BookingTypeRoom:
		if p.BookingID == nil {
			return nil
		}
		return refreshBookingAggregatesTx(tx, *p.BookingID)
	case models.BookingTypeConference:
		if p.InquiryID == nil {
			return nil
		}
		return refreshInquiryAggregatesTx(tx, *p.InquiryID)
	}
	return nil
}

// refreshBookingAggregatesTx 按明细重算预订的已付金额、未付金额与付款状态
// 软删除与非 completed 的收款不计入
func refreshBookingAggregatesTx(tx *gorm.DB, bookingID int64) error {
	var b models.Booking
	if err := tx.First(&b, bookingID).Error; err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}

	paid, last, err := sumCompletedTx(tx, "booking_id", bookingID)
	if err != nil {
		return err
	}

	return tx.Model(&models.Booking{}).Where("id = ?", bookingID).Updates(map[string]interface{}{
		"amount_paid":       paid,
		"amount_due":        utils.Round2(b.TotalWithVAT - paid),
		"payment_status":    models.DerivePaymentState(paid, b.TotalWithVAT),
		"last_payment_date": last,
	}).Error
}

// refreshInquiryAggregatesTx 按明细重算会议咨询的已付金额缓存
func refreshInquiryAggregatesTx(tx *gorm.DB, inquiryID int64) error {
	var inq models.ConferenceInquiry
	if err := tx.First(&inq, inquiryID).Error; err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}

	paid, last, err := sumCompletedTx(tx, "inquiry_id", inquiryID)
	if err != nil {
		return err
	}

	due := 0.0
	if inq.QuotedAmount != nil {
		due = utils.Round2(utils.Max(*inq.QuotedAmount-paid, 0))
	}

	return tx.Model(&models.ConferenceInquiry{}).Where("id = ?", inquiryID).Updates(map[string]interface{}{
		"amount_paid":       paid,
		"amount_due":        due,
		"last_payment_date": last,
	}).Error
}

// sumCompletedTx 事务内汇总已完成收款的含税金额与最近收款时间
func sumCompletedTx(tx *gorm.DB, column string, id int64) (float64, *time.Time, error) {
	var total *float64
	if err := tx.Model(&models.Payment{}).
		Select("SUM(total_amount)").
		Where(column+" = ?", id).
		Where("status = ?", models.PaymentStatusCompleted).
		Scan(&total).Error; err != nil {
		return 0, nil, errors.ErrDatabaseError.WithError(err)
	}

	paid := 0.0
	if total != nil {
		paid = utils.Round2(*total)
	}

	var last *time.Time
	var p models.Payment
	err := tx.Where(column+" = ?", id).
		Where("status = ?", models.PaymentStatusCompleted).
		Order("paid_at DESC").
		First(&p).Error
	if err == nil {
		last = &p.PaidAt
	} else if err != gorm.ErrRecordNotFound {
		return 0, nil, errors.ErrDatabaseError.WithError(err)
	}

	return paid, last, nil
}

// generateReference 生成唯一收款编号
// 基础格式含父级 ID，同一父级多笔收款时追加随机后缀
// 查重必须含软删除记录，编号的唯一索引不排除已删除行
func (s *PaymentService) generateReference(ctx context.Context, seed int64) (string, error) {
	base := utils.GeneratePaymentReference(seed)
	candidate := base
	for i := 0; i < maxReferenceAttempts; i++ {
		exists, err := s.paymentRepo.ExistsByReference(ctx, candidate)
		if err != nil {
			return "", errors.ErrDatabaseError.WithError(err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%s", base, utils.GenerateRandomNumber(3))
	}
	return "", errors.ErrPaymentRefGenFail
}

// parsePaidAt 解析收款时间，支持日期或日期时间
func parsePaidAt(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02 15:04:05", value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

// toPaymentInfo 转换为收款信息
func (s *PaymentService) toPaymentInfo(p *models.Payment) *PaymentInfo {
	return &PaymentInfo{
		ID:               p.ID,
		PaymentReference: p.PaymentReference,
		BookingType:      p.BookingType,
		BookingID:        p.BookingID,
		InquiryID:        p.InquiryID,
		Amount:           p.Amount,
		VATRate:          p.VATRate,
		VATAmount:        p.VATAmount,
		TotalAmount:      p.TotalAmount,
		PaymentMethod:    p.PaymentMethod,
		PaymentType:      p.PaymentType,
		Status:           p.Status,
		StatusName:       s.getStatusName(p.Status),
		Notes:            p.Notes,
		InvoiceNumber:    p.InvoiceNumber,
		InvoicePath:      p.InvoicePath,
		InvoiceGenerated: p.InvoiceGenerated,
		RecordedBy:       p.RecordedBy,
		PaidAt:           p.PaidAt,
		CreatedAt:        p.CreatedAt,
	}
}

// getStatusName 获取状态名称
func (s *PaymentService) getStatusName(status string) string {
	switch status {
	case models.PaymentStatusPending:
		return "待确认"
	case models.PaymentStatusCompleted:
		return "已完成"
	case models.PaymentStatusFailed:
		return "失败"
	case models.PaymentStatusRefunded:
		return "已退款"
	case models.PaymentStatusPartiallyRefunded:
		return "部分退款"
	default:
		return "未知"
	}
}
