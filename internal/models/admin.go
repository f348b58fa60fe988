package models

import (
	"time"
)

// Admin 管理员账号模型
type Admin struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	PasswordHash string     `gorm:"type:varchar(100);not null" json:"-"`
	DisplayName  string     `gorm:"type:varchar(100)" json:"display_name"`
	Email        string     `gorm:"type:varchar(100)" json:"email"`
	Role         string     `gorm:"type:varchar(20);not null;default:'staff'" json:"role"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	LastLoginIP  *string    `gorm:"type:varchar(45)" json:"last_login_ip,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (Admin) TableName() string {
	return "admins"
}

// AdminRole 管理员角色
const (
	AdminRoleSuper = "super" // 超级管理员
	AdminRoleStaff = "staff" // 普通员工
)

// OperationLog 管理端操作日志
type OperationLog struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AdminID    int64     `gorm:"index;not null" json:"admin_id"`
	Method     string    `gorm:"type:varchar(10);not null" json:"method"`
	Path       string    `gorm:"type:varchar(255);not null" json:"path"`
	Action     string    `gorm:"type:varchar(50);index" json:"action"`
	TargetType string    `gorm:"type:varchar(30)" json:"target_type"`
	TargetID   *int64    `json:"target_id,omitempty"`
	RequestBody *string  `gorm:"type:text" json:"request_body,omitempty"`
	StatusCode int       `gorm:"not null" json:"status_code"`
	IP         string    `gorm:"type:varchar(45)" json:"ip"`
	CostMs     int64     `gorm:"not null;default:0" json:"cost_ms"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName 表名
func (OperationLog) TableName() string {
	return "operation_logs"
}
