package models

import (
	"time"
)

// GalleryImage 图库图片模型
type GalleryImage struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"type:varchar(150)" json:"title"`
	Category  string    `gorm:"type:varchar(50);index" json:"category"`
	ImagePath string    `gorm:"type:varchar(255);not null" json:"image_path"`
	AltText   string    `gorm:"type:varchar(255)" json:"alt_text"`
	IsActive  bool      `gorm:"not null;default:true;index" json:"is_active"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (GalleryImage) TableName() string {
	return "gallery_images"
}

// StaticPage 静态页面模型
type StaticPage struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Slug            string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"slug"`
	Title           string    `gorm:"type:varchar(150);not null" json:"title"`
	Content         string    `gorm:"type:text" json:"content"`
	MetaDescription *string   `gorm:"type:varchar(255)" json:"meta_description,omitempty"`
	IsActive        bool      `gorm:"not null;default:true;index" json:"is_active"`
	UpdatedBy       *int64    `gorm:"index" json:"updated_by,omitempty"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (StaticPage) TableName() string {
	return "static_pages"
}
