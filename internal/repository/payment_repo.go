// Package repository 提供数据访问层
package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-admin-backend/internal/models"
)

// PaymentRepository 收款仓储
// Payment 带 gorm.DeletedAt，常规查询自动排除已删除记录
type PaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建收款仓储
func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create 创建收款记录
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// GetByID 根据 ID 获取收款记录
func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetByIDWithBooking 根据 ID 获取收款记录（包含预订信息）
func (r *PaymentRepository) GetByIDWithBooking(ctx context.Context, id int64) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Preload("Booking").
		Preload("Booking.Room").
		Preload("Inquiry").
		First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetByReference 根据收款编号获取收款记录
func (r *PaymentRepository) GetByReference(ctx context.Context, reference string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("payment_reference = ?", reference).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// ExistsByReference 判断收款编号是否已被占用
// 查重含软删除记录，payment_reference 的唯一索引同样覆盖已删除行
func (r *PaymentRepository) ExistsByReference(ctx context.Context, reference string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().
		Model(&models.Payment{}).
		Where("payment_reference = ?", reference).
		Count(&count).Error
	return count > 0, err
}

// GetByInvoiceNumber 根据发票号获取收款记录
func (r *PaymentRepository) GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("invoice_number = ?", invoiceNumber).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// Update 更新收款记录
func (r *PaymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

// UpdateFields 更新指定字段
func (r *PaymentRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Payment{}).Where("id = ?", id).Updates(fields).Error
}

// Delete 软删除收款记录
func (r *PaymentRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Payment{}, id).Error
}

// List 获取收款列表
func (r *PaymentRepository) List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.Payment, int64, error) {
	var payments []*models.Payment
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Payment{})

	// 应用过滤条件
	if bookingID, ok := filters["booking_id"].(int64); ok && bookingID > 0 {
		query = query.Where("booking_id = ?", bookingID)
	}
	if inquiryID, ok := filters["inquiry_id"].(int64); ok && inquiryID > 0 {
		query = query.Where("inquiry_id = ?", inquiryID)
	}
	if bookingType, ok := filters["booking_type"].(string); ok && bookingType != "" {
		query = query.Where("booking_type = ?", bookingType)
	}
	if status, ok := filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if method, ok := filters["payment_method"].(string); ok && method != "" {
		query = query.Where("payment_method = ?", method)
	}
	if startDate, ok := filters["start_date"].(time.Time); ok {
		query = query.Where("paid_at >= ?", startDate)
	}
	if endDate, ok := filters["end_date"].(time.Time); ok {
		query = query.Where("paid_at <= ?", endDate)
	}

	// 统计总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 查询列表
	if err := query.
		Order("paid_at DESC").
		Offset(offset).Limit(limit).
		Find(&payments).Error; err != nil {
		return nil, 0, err
	}

	return payments, total, nil
}

// ListByBooking 获取预订的全部收款记录
func (r *PaymentRepository) ListByBooking(ctx context.Context, bookingID int64) ([]*models.Payment, error) {
	var payments []*models.Payment
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("paid_at ASC").
		Find(&payments).Error
	return payments, err
}

// ListByInquiry 获取会议咨询的全部收款记录
func (r *PaymentRepository) ListByInquiry(ctx context.Context, inquiryID int64) ([]*models.Payment, error) {
	var payments []*models.Payment
	err := r.db.WithContext(ctx).
		Where("inquiry_id = ?", inquiryID).
		Order("paid_at ASC").
		Find(&payments).Error
	return payments, err
}

// SumCompletedByBooking 汇总预订已完成收款的含税金额
// 软删除与非 completed 状态的记录不计入
func (r *PaymentRepository) SumCompletedByBooking(ctx context.Context, bookingID int64) (float64, error) {
	var total *float64
	err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Select("SUM(total_amount)").
		Where("booking_id = ?", bookingID).
		Where("status = ?", models.PaymentStatusCompleted).
		Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, nil
}

// SumCompletedByInquiry 汇总会议咨询已完成收款的含税金额
func (r *PaymentRepository) SumCompletedByInquiry(ctx context.Context, inquiryID int64) (float64, error) {
	var total *float64
	err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Select("SUM(total_amount)").
		Where("inquiry_id = ?", inquiryID).
		Where("status = ?", models.PaymentStatusCompleted).
		Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, nil
}

// LastCompletedPaidAt 获取预订最近一笔已完成收款时间
func (r *PaymentRepository) LastCompletedPaidAt(ctx context.Context, bookingID int64) (*time.Time, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Where("status = ?", models.PaymentStatusCompleted).
		Order("paid_at DESC").
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment.PaidAt, nil
}

// NextInvoiceSerial 取下一个发票流水号（按年份递增）
// 先自增再读回，UPDATE 的行锁串行化并发取号，避免两个事务读到同一个值
func (r *PaymentRepository) NextInvoiceSerial(ctx context.Context, year int) (int64, error) {
	var serial int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.InvoiceSequence{}).
			Where("year = ?", year).
			UpdateColumn("next_value", gorm.Expr("next_value + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// 年份首次取号，year 上的唯一索引挡住并发重复插入
			seq := models.InvoiceSequence{Year: year, NextValue: 2}
			if err := tx.Create(&seq).Error; err != nil {
				return err
			}
			serial = 1
			return nil
		}

		var seq models.InvoiceSequence
		if err := tx.Where("year = ?", year).First(&seq).Error; err != nil {
			return err
		}
		serial = seq.NextValue - 1
		return nil
	})
	return serial, err
}

// SumCompletedBetween 汇总时间段内已完成收款的含税金额
func (r *PaymentRepository) SumCompletedBetween(ctx context.Context, from, to time.Time) (float64, error) {
	var total *float64
	err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Select("SUM(total_amount)").
		Where("status = ?", models.PaymentStatusCompleted).
		Where("paid_at >= ? AND paid_at < ?", from, to).
		Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, nil
}
