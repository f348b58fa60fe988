// Package repository 提供数据访问层
package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-admin-backend/internal/models"
)

// BookingRepository 预订仓储
type BookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository 创建预订仓储
func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create 创建预订
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

// GetByID 根据 ID 获取预订
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).First(&booking, id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetByIDWithRoom 根据 ID 获取预订（包含房型信息）
func (r *BookingRepository) GetByIDWithRoom(ctx context.Context, id int64) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Preload("Room").
		First(&booking, id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetByReference 根据预订编号获取预订
func (r *BookingRepository) GetByReference(ctx context.Context, reference string) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Preload("Room").
		Where("booking_reference = ?", reference).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// ExistsByReference 检查预订编号是否已存在
func (r *BookingRepository) ExistsByReference(ctx context.Context, reference string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("booking_reference = ?", reference).
		Count(&count).Error
	return count > 0, err
}

// Update 更新预订
func (r *BookingRepository) Update(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Save(booking).Error
}

// UpdateFields 更新指定字段
func (r *BookingRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Booking{}).Where("id = ?", id).Updates(fields).Error
}

// List 获取预订列表
func (r *BookingRepository) List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.Booking, int64, error) {
	var bookings []*models.Booking
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Booking{})

	// 应用过滤条件
	if roomID, ok := filters["room_id"].(int64); ok && roomID > 0 {
		query = query.Where("room_id = ?", roomID)
	}
	if status, ok := filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if statuses, ok := filters["statuses"].([]string); ok && len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	if paymentStatus, ok := filters["payment_status"].(string); ok && paymentStatus != "" {
		query = query.Where("payment_status = ?", paymentStatus)
	}
	if keyword, ok := filters["keyword"].(string); ok && keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where(
			"booking_reference LIKE ? OR guest_name LIKE ? OR guest_email LIKE ? OR guest_phone LIKE ?",
			like, like, like, like,
		)
	}
	if startDate, ok := filters["start_date"].(time.Time); ok {
		query = query.Where("check_in_date >= ?", startDate)
	}
	if endDate, ok := filters["end_date"].(time.Time); ok {
		query = query.Where("check_in_date <= ?", endDate)
	}

	// 统计总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 查询列表
	if err := query.
		Preload("Room").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&bookings).Error; err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

// ListArrivalsOn 获取指定日期入住的预订
func (r *BookingRepository) ListArrivalsOn(ctx context.Context, date time.Time) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := r.db.WithContext(ctx).
		Preload("Room").
		Where("check_in_date = ?", date.Format("2006-01-02")).
		Where("status IN ?", []string{
			models.BookingStatusConfirmed,
			models.BookingStatusTentative,
			models.BookingStatusPending,
		}).
		Order("created_at ASC").
		Find(&bookings).Error
	return bookings, err
}

// ListDeparturesOn 获取指定日期退房的预订
func (r *BookingRepository) ListDeparturesOn(ctx context.Context, date time.Time) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := r.db.WithContext(ctx).
		Preload("Room").
		Where("check_out_date = ?", date.Format("2006-01-02")).
		Where("status = ?", models.BookingStatusCheckedIn).
		Order("created_at ASC").
		Find(&bookings).Error
	return bookings, err
}

// ListExpiredTentative 获取已过期的临时预订
func (r *BookingRepository) ListExpiredTentative(ctx context.Context, now time.Time, limit int) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := r.db.WithContext(ctx).
		Where("status = ?", models.BookingStatusTentative).
		Where("tentative_expires_at IS NOT NULL AND tentative_expires_at < ?", now).
		Limit(limit).
		Find(&bookings).Error
	return bookings, err
}

// CountByStatus 按状态统计预订数量
func (r *BookingRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

// CountCreatedBetween 统计时间段内创建的预订数量
func (r *BookingRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return count, err
}

// SumRevenueBetween 统计时间段内已付清金额总和
func (r *BookingRepository) SumRevenueBetween(ctx context.Context, from, to time.Time) (float64, error) {
	var total *float64
	err := r.db.WithContext(ctx).Model(&models.Booking{}).
		Select("SUM(amount_paid)").
		Where("created_at >= ? AND created_at < ?", from, to).
		Where("status <> ?", models.BookingStatusCancelled).
		Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, nil
}

// CreateTentativeLog 写入临时预订操作日志
func (r *BookingRepository) CreateTentativeLog(ctx context.Context, log *models.TentativeBookingLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// ListTentativeLogs 获取预订的临时操作日志
func (r *BookingRepository) ListTentativeLogs(ctx context.Context, bookingID int64) ([]*models.TentativeBookingLog, error) {
	var logs []*models.TentativeBookingLog
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&logs).Error
	return logs, err
}
