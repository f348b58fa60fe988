// Package repository 提供数据访问层
package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-admin-backend/internal/models"
)

// RoomRepository 房型仓储
type RoomRepository struct {
	db *gorm.DB
}

// NewRoomRepository 创建房型仓储
func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// Create 创建房型
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

// GetByID 根据 ID 获取房型
func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).First(&room, id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// GetBySlug 根据 slug 获取房型
func (r *RoomRepository) GetBySlug(ctx context.Context, slug string) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// Update 更新房型
func (r *RoomRepository) Update(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Save(room).Error
}

// UpdateFields 更新指定字段
func (r *RoomRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Room{}).Where("id = ?", id).Updates(fields).Error
}

// List 获取房型列表
func (r *RoomRepository) List(ctx context.Context, offset, limit int, onlyActive bool) ([]*models.Room, int64, error) {
	var rooms []*models.Room
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Room{})
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Order("sort_order ASC, id ASC").
		Offset(offset).Limit(limit).
		Find(&rooms).Error; err != nil {
		return nil, 0, err
	}

	return rooms, total, nil
}

// ListAll 获取全部房型（不分页）
func (r *RoomRepository) ListAll(ctx context.Context, onlyActive bool) ([]*models.Room, error) {
	var rooms []*models.Room
	query := r.db.WithContext(ctx).Model(&models.Room{})
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("sort_order ASC, id ASC").Find(&rooms).Error
	return rooms, err
}

// DecrementAvailability 占用一间房，可用数为 0 时返回 false
// 条件更新保证并发下不会超卖
func (r *RoomRepository) DecrementAvailability(ctx context.Context, id int64) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Room{}).
		Where("id = ? AND rooms_available > 0", id).
		UpdateColumn("rooms_available", gorm.Expr("rooms_available - 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// IncrementAvailability 释放一间房，已到总数上限时返回 false
func (r *RoomRepository) IncrementAvailability(ctx context.Context, id int64) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Room{}).
		Where("id = ? AND rooms_available < total_rooms", id).
		UpdateColumn("rooms_available", gorm.Expr("rooms_available + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SetAvailability 直接设置可用房间数（人工修正用）
func (r *RoomRepository) SetAvailability(ctx context.Context, id int64, available int) error {
	return r.db.WithContext(ctx).Model(&models.Room{}).
		Where("id = ?", id).
		UpdateColumn("rooms_available", available).Error
}

// ExistsBySlug 检查 slug 是否已存在
func (r *RoomRepository) ExistsBySlug(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Room{}).Where("slug = ?", slug)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// Delete 删除房型
func (r *RoomRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Room{}, id).Error
}
