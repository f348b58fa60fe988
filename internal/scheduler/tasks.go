// Package scheduler 提供后台定时任务
package scheduler

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-admin-backend/internal/common/config"
	"github.com/dumeirei/hotel-admin-backend/internal/common/logger"
	"github.com/dumeirei/hotel-admin-backend/internal/common/metrics"
	"github.com/dumeirei/hotel-admin-backend/internal/models"
	"github.com/dumeirei/hotel-admin-backend/internal/repository"
	analyticsService "github.com/dumeirei/hotel-admin-backend/internal/service/analytics"
)

// 单轮过期扫描的最大处理量
const expireSweepBatchSize = 100

// TaskHandler 任务处理器
type TaskHandler struct {
	db          *gorm.DB
	bookingRepo *repository.BookingRepository
	analytics   *analyticsService.AnalyticsService
	cfg         config.BusinessConfig
}

// NewTaskHandler 创建任务处理器
func NewTaskHandler(
	db *gorm.DB,
	bookingRepo *repository.BookingRepository,
	analytics *analyticsService.AnalyticsService,
	cfg config.BusinessConfig,
) *TaskHandler {
	return &TaskHandler{
		db:          db,
		bookingRepo: bookingRepo,
		analytics:   analytics,
		cfg:         cfg,
	}
}

// ExpireTentativeBookings 取消保留期已过的临时预订
// 临时预订不占用房间库存，过期只改状态不恢复可用数
func (h *TaskHandler) ExpireTentativeBookings(ctx context.Context) error {
	now := time.Now()
	bookings, err := h.bookingRepo.ListExpiredTentative(ctx, now, expireSweepBatchSize)
	if err != nil {
		return err
	}
	if len(bookings) == 0 {
		return nil
	}

	expired := 0
	for _, booking := range bookings {
		err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			reason := "临时保留到期自动取消"
			result := tx.Model(&models.Booking{}).
				Where("id = ? AND status = ?", booking.ID, models.BookingStatusTentative).
				Updates(map[string]interface{}{
					"status":        models.BookingStatusCancelled,
					"cancelled_at":  now,
					"cancel_reason": reason,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				// 扫描到执行之间状态被人工改过，跳过
				return nil
			}

			return tx.Create(&models.TentativeBookingLog{
				BookingID: booking.ID,
				Action:    models.TentativeActionExpired,
			}).Error
		})
		if err != nil {
			logger.Error("临时预订过期处理失败",
				logger.BookingID(booking.ID),
				logger.BookingRef(booking.BookingReference),
				logger.Err(err),
			)
			continue
		}
		expired++
	}

	if expired > 0 {
		metrics.GetMetrics().RecordTentativeExpired(expired)
		logger.Info("临时预订过期扫描完成",
			logger.Int("scanned", len(bookings)),
			logger.Int("expired", expired),
		)
	}
	return nil
}

// RollupDailyVisits 汇总昨日访问统计
// 按路径 Upsert，重复执行幂等
func (h *TaskHandler) RollupDailyVisits(ctx context.Context) error {
	yesterday := time.Now().AddDate(0, 0, -1)
	paths, err := h.analytics.RollupDay(ctx, yesterday)
	if err != nil {
		return err
	}
	if paths > 0 {
		logger.Info("访问日汇总完成",
			logger.String("date", yesterday.Format("2006-01-02")),
			logger.Int("paths", paths),
		)
	}
	return nil
}

// CleanupOldVisits 清理超出保留期的访问明细
func (h *TaskHandler) CleanupOldVisits(ctx context.Context) error {
	deleted, err := h.analytics.CleanupVisits(ctx, h.cfg.Analytics.VisitRetentionDays)
	if err != nil {
		return err
	}
	if deleted > 0 {
		logger.Info("访问明细清理完成",
			logger.Int64("deleted", deleted),
			logger.Int("retention_days", h.cfg.Analytics.VisitRetentionDays),
		)
	}
	return nil
}

// SetupTasks 注册所有后台任务
func SetupTasks(scheduler *Scheduler, handler *TaskHandler) {
	sweepInterval := time.Duration(handler.cfg.Booking.ExpirySweepInterval) * time.Minute
	if sweepInterval <= 0 {
		sweepInterval = 10 * time.Minute
	}

	scheduler.AddTask("ExpireTentativeBookings", sweepInterval, handler.ExpireTentativeBookings)
	scheduler.AddTask("RollupDailyVisits", time.Hour, handler.RollupDailyVisits)
	scheduler.AddTask("CleanupOldVisits", 24*time.Hour, handler.CleanupOldVisits)
}
