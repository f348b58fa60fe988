package models

import (
	"time"
)

// Setting 系统设置项（键值对）
type Setting struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Key         string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"key"`
	Value       string    `gorm:"type:text;not null" json:"value"`
	ValueType   string    `gorm:"type:varchar(20);not null;default:'string'" json:"value_type"`
	Description string    `gorm:"type:varchar(255)" json:"description"`
	UpdatedBy   *int64    `json:"updated_by,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (Setting) TableName() string {
	return "settings"
}

// 设置键名
const (
	SettingKeyVATEnabled             = "vat_enabled"
	SettingKeyVATRate                = "vat_rate"
	SettingKeyCurrencySymbol         = "currency_symbol"
	SettingKeyTentativeDurationHours = "tentative_duration_hours"
	SettingKeyBookingReferencePrefix = "booking_reference_prefix"
	SettingKeyHotelName              = "hotel_name"
	SettingKeyHotelEmail             = "hotel_email"
	SettingKeyHotelPhone             = "hotel_phone"
	SettingKeyHotelAddress           = "hotel_address"
)

// BookingSettings 预订相关设置快照
// 启动时从settings表加载一次，通过构造函数传入各服务
type BookingSettings struct {
	VATEnabled             bool    `json:"vat_enabled"`
	VATRate                float64 `json:"vat_rate"`
	CurrencySymbol         string  `json:"currency_symbol"`
	TentativeDurationHours int     `json:"tentative_duration_hours"`
	BookingReferencePrefix string  `json:"booking_reference_prefix"`
}

// EffectiveVATRate 启用增值税时返回税率，否则为0
func (s BookingSettings) EffectiveVATRate() float64 {
	if !s.VATEnabled {
		return 0
	}
	return s.VATRate
}
