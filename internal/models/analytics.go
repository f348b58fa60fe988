package models

import (
	"time"
)

// PageVisit 页面访问记录
type PageVisit struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Path      string    `gorm:"type:varchar(255);not null;index" json:"path"`
	VisitorID string    `gorm:"type:varchar(64);index" json:"visitor_id"`
	Referrer  *string   `gorm:"type:varchar(255)" json:"referrer,omitempty"`
	UserAgent *string   `gorm:"type:varchar(255)" json:"user_agent,omitempty"`
	IP        string    `gorm:"type:varchar(45)" json:"ip"`
	VisitedAt time.Time `gorm:"not null;index" json:"visited_at"`
}

// TableName 表名
func (PageVisit) TableName() string {
	return "page_visits"
}

// DailyVisitStat 按天汇总的访问统计
type DailyVisitStat struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Date           time.Time `gorm:"type:date;uniqueIndex:idx_daily_visit_date_path;not null" json:"date"`
	Path           string    `gorm:"type:varchar(255);uniqueIndex:idx_daily_visit_date_path;not null" json:"path"`
	VisitCount     int64     `gorm:"not null;default:0" json:"visit_count"`
	UniqueVisitors int64     `gorm:"not null;default:0" json:"unique_visitors"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (DailyVisitStat) TableName() string {
	return "daily_visit_stats"
}
