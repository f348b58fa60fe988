// Package repository 提供数据访问层
package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-admin-backend/internal/models"
)

// ConferenceRepository 会议咨询仓储
type ConferenceRepository struct {
	db *gorm.DB
}

// NewConferenceRepository 创建会议咨询仓储
func NewConferenceRepository(db *gorm.DB) *ConferenceRepository {
	return &ConferenceRepository{db: db}
}

// CreateInquiry 创建会议咨询
func (r *ConferenceRepository) CreateInquiry(ctx context.Context, inquiry *models.ConferenceInquiry) error {
	return r.db.WithContext(ctx).Create(inquiry).Error
}

// GetInquiryByID 根据 ID 获取会议咨询
func (r *ConferenceRepository) GetInquiryByID(ctx context.Context, id int64) (*models.ConferenceInquiry, error) {
	var inquiry models.ConferenceInquiry
	err := r.db.WithContext(ctx).
		Preload("ConferenceRoom").
		First(&inquiry, id).Error
	if err != nil {
		return nil, err
	}
	return &inquiry, nil
}

// GetInquiryByReference 根据咨询编号获取会议咨询
func (r *ConferenceRepository) GetInquiryByReference(ctx context.Context, reference string) (*models.ConferenceInquiry, error) {
	var inquiry models.ConferenceInquiry
	err := r.db.WithContext(ctx).
		Preload("ConferenceRoom").
		Where("inquiry_reference = ?", reference).
		First(&inquiry).Error
	if err != nil {
		return nil, err
	}
	return &inquiry, nil
}

// UpdateInquiry 更新会议咨询
func (r *ConferenceRepository) UpdateInquiry(ctx context.Context, inquiry *models.ConferenceInquiry) error {
	return r.db.WithContext(ctx).Save(inquiry).Error
}

// UpdateInquiryFields 更新指定字段
func (r *ConferenceRepository) UpdateInquiryFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.ConferenceInquiry{}).Where("id = ?", id).Updates(fields).Error
}

// ListInquiries 获取会议咨询列表
func (r *ConferenceRepository) ListInquiries(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.ConferenceInquiry, int64, error) {
	var inquiries []*models.ConferenceInquiry
	var total int64

	query := r.db.WithContext(ctx).Model(&models.ConferenceInquiry{})

	// 应用过滤条件
	if status, ok := filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if roomID, ok := filters["conference_room_id"].(int64); ok && roomID > 0 {
		query = query.Where("conference_room_id = ?", roomID)
	}
	if keyword, ok := filters["keyword"].(string); ok && keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where(
			"inquiry_reference LIKE ? OR contact_name LIKE ? OR contact_email LIKE ? OR organization LIKE ?",
			like, like, like, like,
		)
	}
	if startDate, ok := filters["start_date"].(time.Time); ok {
		query = query.Where("event_start_date >= ?", startDate)
	}
	if endDate, ok := filters["end_date"].(time.Time); ok {
		query = query.Where("event_start_date <= ?", endDate)
	}

	// 统计总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 查询列表
	if err := query.
		Preload("ConferenceRoom").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&inquiries).Error; err != nil {
		return nil, 0, err
	}

	return inquiries, total, nil
}

// CountInquiriesByStatus 按状态统计会议咨询数量
func (r *ConferenceRepository) CountInquiriesByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ConferenceInquiry{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

// CreateRoom 创建会议室
func (r *ConferenceRepository) CreateRoom(ctx context.Context, room *models.ConferenceRoom) error {
	return r.db.WithContext(ctx).Create(room).Error
}

// GetRoomByID 根据 ID 获取会议室
func (r *ConferenceRepository) GetRoomByID(ctx context.Context, id int64) (*models.ConferenceRoom, error) {
	var room models.ConferenceRoom
	err := r.db.WithContext(ctx).First(&room, id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// GetRoomBySlug 根据 slug 获取会议室
func (r *ConferenceRepository) GetRoomBySlug(ctx context.Context, slug string) (*models.ConferenceRoom, error) {
	var room models.ConferenceRoom
	err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// UpdateRoom 更新会议室
func (r *ConferenceRepository) UpdateRoom(ctx context.Context, room *models.ConferenceRoom) error {
	return r.db.WithContext(ctx).Save(room).Error
}

// ListRooms 获取会议室列表
func (r *ConferenceRepository) ListRooms(ctx context.Context, onlyActive bool) ([]*models.ConferenceRoom, error) {
	var rooms []*models.ConferenceRoom
	query := r.db.WithContext(ctx).Model(&models.ConferenceRoom{})
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("sort_order ASC, id ASC").Find(&rooms).Error
	return rooms, err
}

// DeleteRoom 删除会议室
func (r *ConferenceRepository) DeleteRoom(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.ConferenceRoom{}, id).Error
}
