package models

import (
	"time"
)

// Booking 客房预订模型
// 金额约定：TotalAmount 为不含税金额，VATAmount 在其之上计算，TotalWithVAT = TotalAmount + VATAmount
type Booking struct {
	ID               int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	BookingReference string  `gorm:"type:varchar(64);uniqueIndex;not null" json:"booking_reference"`
	RoomID           int64   `gorm:"index;not null" json:"room_id"`
	CheckInDate      time.Time `gorm:"type:date;not null;index" json:"check_in_date"`
	CheckOutDate     time.Time `gorm:"type:date;not null" json:"check_out_date"`
	NumberOfNights   int     `gorm:"not null" json:"number_of_nights"`
	NumberOfGuests   int     `gorm:"not null;default:1" json:"number_of_guests"`
	OccupancyType    string  `gorm:"type:varchar(10);not null;default:'double'" json:"occupancy_type"`

	GuestName       string  `gorm:"type:varchar(100);not null" json:"guest_name"`
	GuestEmail      string  `gorm:"type:varchar(100);not null" json:"guest_email"`
	GuestPhone      string  `gorm:"type:varchar(30);not null" json:"guest_phone"`
	GuestCountry    *string `gorm:"type:varchar(50)" json:"guest_country,omitempty"`
	GuestAddress    *string `gorm:"type:varchar(255)" json:"guest_address,omitempty"`
	SpecialRequests *string `gorm:"type:text" json:"special_requests,omitempty"`

	TotalAmount     float64    `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	VATRate         float64    `gorm:"type:decimal(5,2);not null;default:0" json:"vat_rate"`
	VATAmount       float64    `gorm:"type:decimal(12,2);not null;default:0" json:"vat_amount"`
	TotalWithVAT    float64    `gorm:"type:decimal(12,2);not null" json:"total_with_vat"`
	AmountPaid      float64    `gorm:"type:decimal(12,2);not null;default:0" json:"amount_paid"`
	AmountDue       float64    `gorm:"type:decimal(12,2);not null;default:0" json:"amount_due"`
	LastPaymentDate *time.Time `json:"last_payment_date,omitempty"`

	Status             string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaymentStatus      string     `gorm:"type:varchar(20);not null;default:'unpaid'" json:"payment_status"`
	TentativeExpiresAt *time.Time `gorm:"index" json:"tentative_expires_at,omitempty"`

	ConfirmedAt  *time.Time `json:"confirmed_at,omitempty"`
	CheckedInAt  *time.Time `json:"checked_in_at,omitempty"`
	CheckedOutAt *time.Time `json:"checked_out_at,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CancelReason *string    `gorm:"type:varchar(255)" json:"cancel_reason,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	Room *Room `gorm:"foreignKey:RoomID" json:"room,omitempty"`
}

// TableName 表名
func (Booking) TableName() string {
	return "bookings"
}

// BookingStatus 预订状态
const (
	BookingStatusPending    = "pending"     // 待确认
	BookingStatusConfirmed  = "confirmed"   // 已确认
	BookingStatusTentative  = "tentative"   // 临时保留（限时）
	BookingStatusCheckedIn  = "checked_in"  // 已入住
	BookingStatusCheckedOut = "checked_out" // 已退房
	BookingStatusCancelled  = "cancelled"   // 已取消
)

// PaymentState 预订付款状态
const (
	PaymentStateUnpaid  = "unpaid"  // 未付款
	PaymentStatePartial = "partial" // 部分付款
	PaymentStatePaid    = "paid"    // 已付清
)

// DerivePaymentState 按已付金额推导付款状态
// 金额按两位小数比较，避免浮点误差把付清判成部分付款
func DerivePaymentState(amountPaid, totalWithVAT float64) string {
	switch {
	case amountPaid <= 0:
		return PaymentStateUnpaid
	case amountPaid+0.005 >= totalWithVAT:
		return PaymentStatePaid
	default:
		return PaymentStatePartial
	}
}

// OccupancyType 入住价格档位（与实际人数无关）
const (
	OccupancySingle = "single" // 单人价
	OccupancyDouble = "double" // 双人价
	OccupancyTriple = "triple" // 三人价
)

// IsTerminal 是否处于终态
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingStatusCheckedOut || b.Status == BookingStatusCancelled
}

// OccupiesRoom 当前状态是否占用实际房间库存
func (b *Booking) OccupiesRoom() bool {
	return IsOccupyingStatus(b.Status)
}

// IsOccupyingStatus 判断状态是否占用房间库存
func IsOccupyingStatus(status string) bool {
	return status == BookingStatusConfirmed || status == BookingStatusCheckedIn
}

// TentativeBookingLog 临时预订操作日志
type TentativeBookingLog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	BookingID int64     `gorm:"index;not null" json:"booking_id"`
	Action    string    `gorm:"type:varchar(20);not null" json:"action"`
	AdminID   *int64    `gorm:"index" json:"admin_id,omitempty"`
	Note      *string   `gorm:"type:varchar(255)" json:"note,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// 关联
	Booking *Booking `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
}

// TableName 表名
func (TentativeBookingLog) TableName() string {
	return "tentative_booking_log"
}

// TentativeAction 临时预订操作类型
const (
	TentativeActionCreated   = "created"   // 创建
	TentativeActionConverted = "converted" // 转为正式预订
	TentativeActionCancelled = "cancelled" // 取消
	TentativeActionExpired   = "expired"   // 过期自动取消
)
