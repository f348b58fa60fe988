// Package repository 提供数据访问层
package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-admin-backend/internal/models"
)

// ContentRepository 内容管理仓储（图库与静态页面）
type ContentRepository struct {
	db *gorm.DB
}

// NewContentRepository 创建内容管理仓储
func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// CreateImage 创建图库图片
func (r *ContentRepository) CreateImage(ctx context.Context, image *models.GalleryImage) error {
	return r.db.WithContext(ctx).Create(image).Error
}

// GetImageByID 根据 ID 获取图片
func (r *ContentRepository) GetImageByID(ctx context.Context, id int64) (*models.GalleryImage, error) {
	var image models.GalleryImage
	err := r.db.WithContext(ctx).First(&image, id).Error
	if err != nil {
		return nil, err
	}
	return &image, nil
}

// UpdateImage 更新图片
func (r *ContentRepository) UpdateImage(ctx context.Context, image *models.GalleryImage) error {
	return r.db.WithContext(ctx).Save(image).Error
}

// DeleteImage 删除图片
func (r *ContentRepository) DeleteImage(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.GalleryImage{}, id).Error
}

// ListImages 获取图片列表
func (r *ContentRepository) ListImages(ctx context.Context, offset, limit int, category string, onlyActive bool) ([]*models.GalleryImage, int64, error) {
	var images []*models.GalleryImage
	var total int64

	query := r.db.WithContext(ctx).Model(&models.GalleryImage{})
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Order("sort_order ASC, id DESC").
		Offset(offset).Limit(limit).
		Find(&images).Error; err != nil {
		return nil, 0, err
	}

	return images, total, nil
}

// CreatePage 创建静态页面
func (r *ContentRepository) CreatePage(ctx context.Context, page *models.StaticPage) error {
	return r.db.WithContext(ctx).Create(page).Error
}

// GetPageByID 根据 ID 获取静态页面
func (r *ContentRepository) GetPageByID(ctx context.Context, id int64) (*models.StaticPage, error) {
	var page models.StaticPage
	err := r.db.WithContext(ctx).First(&page, id).Error
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// GetPageBySlug 根据 slug 获取静态页面
func (r *ContentRepository) GetPageBySlug(ctx context.Context, slug string) (*models.StaticPage, error) {
	var page models.StaticPage
	err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&page).Error
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// ExistsPageBySlug 检查页面 slug 是否已存在
func (r *ContentRepository) ExistsPageBySlug(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.StaticPage{}).Where("slug = ?", slug)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// UpdatePage 更新静态页面
func (r *ContentRepository) UpdatePage(ctx context.Context, page *models.StaticPage) error {
	return r.db.WithContext(ctx).Save(page).Error
}

// DeletePage 删除静态页面
func (r *ContentRepository) DeletePage(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.StaticPage{}, id).Error
}

// ListPages 获取静态页面列表
func (r *ContentRepository) ListPages(ctx context.Context, onlyActive bool) ([]*models.StaticPage, error) {
	var pages []*models.StaticPage
	query := r.db.WithContext(ctx).Model(&models.StaticPage{})
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("slug ASC").Find(&pages).Error
	return pages, err
}
