// Package repository 提供数据访问层
package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-admin-backend/internal/models"
)

// AnalyticsRepository 访问统计仓储
type AnalyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository 创建访问统计仓储
func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// CreateVisit 写入页面访问记录
func (r *AnalyticsRepository) CreateVisit(ctx context.Context, visit *models.PageVisit) error {
	return r.db.WithContext(ctx).Create(visit).Error
}

// CountVisitsBetween 统计时间段内访问量
func (r *AnalyticsRepository) CountVisitsBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PageVisit{}).
		Where("visited_at >= ? AND visited_at < ?", from, to).
		Count(&count).Error
	return count, err
}

// CountUniqueVisitorsBetween 统计时间段内独立访客数
func (r *AnalyticsRepository) CountUniqueVisitorsBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PageVisit{}).
		Where("visited_at >= ? AND visited_at < ?", from, to).
		Distinct("visitor_id").
		Count(&count).Error
	return count, err
}

// ListVisitsByPath 统计时间段内各路径访问量
func (r *AnalyticsRepository) ListVisitsByPath(ctx context.Context, from, to time.Time, limit int) ([]PathVisitCount, error) {
	var results []PathVisitCount
	err := r.db.WithContext(ctx).Model(&models.PageVisit{}).
		Select("path, COUNT(*) AS visit_count").
		Where("visited_at >= ? AND visited_at < ?", from, to).
		Group("path").
		Order("visit_count DESC").
		Limit(limit).
		Scan(&results).Error
	return results, err
}

// PathVisitCount 路径访问量聚合结果
type PathVisitCount struct {
	Path       string `json:"path"`
	VisitCount int64  `json:"visit_count"`
}

// PathVisitAgg 路径访问量与独立访客聚合结果
type PathVisitAgg struct {
	Path           string `json:"path"`
	VisitCount     int64  `json:"visit_count"`
	UniqueVisitors int64  `json:"unique_visitors"`
}

// AggVisitsByPath 按路径聚合时间段内访问量与独立访客数（日汇总用）
func (r *AnalyticsRepository) AggVisitsByPath(ctx context.Context, from, to time.Time) ([]PathVisitAgg, error) {
	var results []PathVisitAgg
	err := r.db.WithContext(ctx).Model(&models.PageVisit{}).
		Select("path, COUNT(*) AS visit_count, COUNT(DISTINCT visitor_id) AS unique_visitors").
		Where("visited_at >= ? AND visited_at < ?", from, to).
		Group("path").
		Scan(&results).Error
	return results, err
}

// UpsertDailyStat 累加当天路径访问统计，不存在时创建
func (r *AnalyticsRepository) UpsertDailyStat(ctx context.Context, date time.Time, path string, visits, uniqueVisitors int64) error {
	day := date.Format("2006-01-02")
	var stat models.DailyVisitStat
	err := r.db.WithContext(ctx).
		Where("date = ? AND path = ?", day, path).
		First(&stat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.WithContext(ctx).Create(&models.DailyVisitStat{
			Date:           date,
			Path:           path,
			VisitCount:     visits,
			UniqueVisitors: uniqueVisitors,
		}).Error
	}
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Model(&models.DailyVisitStat{}).
		Where("id = ?", stat.ID).
		Updates(map[string]interface{}{
			"visit_count":     gorm.Expr("visit_count + ?", visits),
			"unique_visitors": uniqueVisitors,
		}).Error
}

// ListDailyStats 获取时间段内每日访问统计
func (r *AnalyticsRepository) ListDailyStats(ctx context.Context, from, to time.Time) ([]*models.DailyVisitStat, error) {
	var stats []*models.DailyVisitStat
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", from.Format("2006-01-02"), to.Format("2006-01-02")).
		Order("date ASC, path ASC").
		Find(&stats).Error
	return stats, err
}

// DeleteVisitsBefore 清理指定时间之前的原始访问记录
func (r *AnalyticsRepository) DeleteVisitsBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("visited_at < ?", before).
		Delete(&models.PageVisit{})
	return result.RowsAffected, result.Error
}
