package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Room 房型模型（每个房型包含若干间实际房间）
type Room struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(100);not null" json:"name"`
	Slug        string `gorm:"type:varchar(120);uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`

	PricePerNight float64  `gorm:"type:decimal(12,2);not null" json:"price_per_night"`
	PriceSingle   *float64 `gorm:"type:decimal(12,2)" json:"price_single,omitempty"`
	PriceDouble   *float64 `gorm:"type:decimal(12,2)" json:"price_double,omitempty"`
	PriceTriple   *float64 `gorm:"type:decimal(12,2)" json:"price_triple,omitempty"`

	MaxGuests      int `gorm:"not null;default:2" json:"max_guests"`
	TotalRooms     int `gorm:"not null;default:1" json:"total_rooms"`
	RoomsAvailable int `gorm:"not null;default:1" json:"rooms_available"`

	SizeSqm   *float64 `gorm:"type:decimal(6,1)" json:"size_sqm,omitempty"`
	BedType   string   `gorm:"type:varchar(50)" json:"bed_type"`
	Amenities JSON     `gorm:"type:json" json:"amenities,omitempty"`
	CoverImage string  `gorm:"type:varchar(255)" json:"cover_image"`

	IsActive  bool      `gorm:"not null;default:true;index" json:"is_active"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (Room) TableName() string {
	return "rooms"
}

// NightlyRate 按入住档位取每晚价格，未配置档位价时回退到基础价
func (r *Room) NightlyRate(occupancyType string) float64 {
	switch occupancyType {
	case OccupancySingle:
		if r.PriceSingle != nil {
			return *r.PriceSingle
		}
	case OccupancyDouble:
		if r.PriceDouble != nil {
			return *r.PriceDouble
		}
	case OccupancyTriple:
		if r.PriceTriple != nil {
			return *r.PriceTriple
		}
	}
	return r.PricePerNight
}

// JSON 自定义JSON类型，用于gorm存储
type JSON map[string]interface{}

// Scan 实现sql.Scanner接口
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("unsupported type for JSON scan")
	}

	return json.Unmarshal(bytes, j)
}

// Value 实现driver.Valuer接口
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Unmarshal 将JSON解析到目标结构
func (j JSON) Unmarshal(target interface{}) error {
	bytes, err := json.Marshal(j)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, target)
}
