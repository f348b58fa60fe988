package models

import (
	"time"
)

// ConferenceInquiry 会议咨询模型（与客房预订并行的独立实体）
type ConferenceInquiry struct {
	ID               int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	InquiryReference string `gorm:"type:varchar(64);uniqueIndex;not null" json:"inquiry_reference"`
	ConferenceRoomID *int64 `gorm:"index" json:"conference_room_id,omitempty"`

	ContactName    string  `gorm:"type:varchar(100);not null" json:"contact_name"`
	ContactEmail   string  `gorm:"type:varchar(100);not null" json:"contact_email"`
	ContactPhone   string  `gorm:"type:varchar(30);not null" json:"contact_phone"`
	Organization   *string `gorm:"type:varchar(150)" json:"organization,omitempty"`
	EventType      string  `gorm:"type:varchar(50)" json:"event_type"`
	EventStartDate time.Time `gorm:"type:date;not null" json:"event_start_date"`
	EventEndDate   time.Time `gorm:"type:date;not null" json:"event_end_date"`

	ExpectedAttendees int     `gorm:"not null;default:0" json:"expected_attendees"`
	Message           *string `gorm:"type:text" json:"message,omitempty"`

	QuotedAmount    *float64   `gorm:"type:decimal(12,2)" json:"quoted_amount,omitempty"`
	DepositRequired *float64   `gorm:"type:decimal(12,2)" json:"deposit_required,omitempty"`
	AmountPaid      float64    `gorm:"type:decimal(12,2);not null;default:0" json:"amount_paid"`
	AmountDue       float64    `gorm:"type:decimal(12,2);not null;default:0" json:"amount_due"`
	LastPaymentDate *time.Time `json:"last_payment_date,omitempty"`

	Status     string  `gorm:"type:varchar(20);not null;default:'new';index" json:"status"`
	AdminNotes *string `gorm:"type:text" json:"admin_notes,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	ConferenceRoom *ConferenceRoom `gorm:"foreignKey:ConferenceRoomID" json:"conference_room,omitempty"`
}

// TableName 表名
func (ConferenceInquiry) TableName() string {
	return "conference_inquiries"
}

// InquiryStatus 会议咨询状态
const (
	InquiryStatusNew       = "new"       // 新咨询
	InquiryStatusContacted = "contacted" // 已联系
	InquiryStatusConverted = "converted" // 已成单
	InquiryStatusClosed    = "closed"    // 已结束
	InquiryStatusCancelled = "cancelled" // 已取消
)

// IsTerminal 是否处于终态
func (i *ConferenceInquiry) IsTerminal() bool {
	return i.Status == InquiryStatusClosed || i.Status == InquiryStatusCancelled
}

// ConferenceRoom 会议室模型
type ConferenceRoom struct {
	ID          int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"type:varchar(100);not null" json:"name"`
	Slug        string  `gorm:"type:varchar(120);uniqueIndex;not null" json:"slug"`
	Description string  `gorm:"type:text" json:"description"`
	Capacity    int     `gorm:"not null;default:0" json:"capacity"`
	AreaSqm     *float64 `gorm:"type:decimal(6,1)" json:"area_sqm,omitempty"`
	HalfDayRate *float64 `gorm:"type:decimal(12,2)" json:"half_day_rate,omitempty"`
	FullDayRate *float64 `gorm:"type:decimal(12,2)" json:"full_day_rate,omitempty"`
	Equipment   JSON    `gorm:"type:json" json:"equipment,omitempty"`
	CoverImage  string  `gorm:"type:varchar(255)" json:"cover_image"`
	IsActive    bool    `gorm:"not null;default:true;index" json:"is_active"`
	SortOrder   int     `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (ConferenceRoom) TableName() string {
	return "conference_rooms"
}
