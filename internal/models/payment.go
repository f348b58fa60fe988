package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment 收款记录模型
// 软删除：DeletedAt 非空的记录不参与任何读取与汇总
type Payment struct {
	ID               int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	PaymentReference string `gorm:"type:varchar(64);uniqueIndex;not null" json:"payment_reference"`
	BookingType      string `gorm:"type:varchar(20);not null;default:'room';index" json:"booking_type"`
	BookingID        *int64 `gorm:"index" json:"booking_id,omitempty"`
	InquiryID        *int64 `gorm:"index" json:"inquiry_id,omitempty"`

	Amount      float64 `gorm:"type:decimal(12,2);not null" json:"amount"`
	VATRate     float64 `gorm:"type:decimal(5,2);not null;default:0" json:"vat_rate"`
	VATAmount   float64 `gorm:"type:decimal(12,2);not null;default:0" json:"vat_amount"`
	TotalAmount float64 `gorm:"type:decimal(12,2);not null" json:"total_amount"`

	PaymentMethod string  `gorm:"type:varchar(20);not null" json:"payment_method"`
	PaymentType   string  `gorm:"type:varchar(20);not null;default:'full'" json:"payment_type"`
	Status        string  `gorm:"type:varchar(20);not null;default:'completed';index" json:"status"`
	Notes         *string `gorm:"type:varchar(500)" json:"notes,omitempty"`

	InvoiceNumber    *string `gorm:"type:varchar(64);index" json:"invoice_number,omitempty"`
	InvoicePath      *string `gorm:"type:varchar(255)" json:"invoice_path,omitempty"`
	InvoiceGenerated bool    `gorm:"not null;default:false" json:"invoice_generated"`

	RecordedBy *int64         `gorm:"index" json:"recorded_by,omitempty"`
	PaidAt     time.Time      `gorm:"not null" json:"paid_at"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// 关联
	Booking *Booking           `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
	Inquiry *ConferenceInquiry `gorm:"foreignKey:InquiryID" json:"inquiry,omitempty"`
}

// TableName 表名
func (Payment) TableName() string {
	return "payments"
}

// PaymentStatus 收款状态
const (
	PaymentStatusPending           = "pending"            // 待确认
	PaymentStatusCompleted         = "completed"          // 已完成
	PaymentStatusFailed            = "failed"             // 失败
	PaymentStatusRefunded          = "refunded"           // 已退款
	PaymentStatusPartiallyRefunded = "partially_refunded" // 部分退款
)

// PaymentMethod 收款方式
const (
	PaymentMethodCash     = "cash"      // 现金
	PaymentMethodCard     = "card"      // 刷卡
	PaymentMethodTransfer = "transfer"  // 银行转账
	PaymentMethodMobile   = "mobile"    // 移动支付
	PaymentMethodOnline   = "online"    // 在线支付
)

// PaymentType 收款类型
const (
	PaymentTypeFull    = "full"    // 全额
	PaymentTypeDeposit = "deposit" // 定金
	PaymentTypePartial = "partial" // 分期
	PaymentTypeBalance = "balance" // 尾款
)

// BookingType 收款归属类型
const (
	BookingTypeRoom       = "room"       // 客房预订
	BookingTypeConference = "conference" // 会议咨询
)

// CountsTowardPaid 是否计入已付金额汇总
func (p *Payment) CountsTowardPaid() bool {
	return p.Status == PaymentStatusCompleted
}

// InvoiceSequence 发票流水号序列（按年份取号）
type InvoiceSequence struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Year      int       `gorm:"uniqueIndex;not null" json:"year"`
	NextValue int64     `gorm:"not null;default:1" json:"next_value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (InvoiceSequence) TableName() string {
	return "invoice_sequences"
}
