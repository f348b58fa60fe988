// Package analytics 提供访客统计与管理后台仪表盘服务
// 原始访问记录落库，Redis 计数器提供当日快速读数，定时任务做日汇总与清理
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/dumeirei/hotel-admin-backend/internal/common/cache"
	"github.com/dumeirei/hotel-admin-backend/internal/common/errors"
	"github.com/dumeirei/hotel-admin-backend/internal/common/logger"
	"github.com/dumeirei/hotel-admin-backend/internal/common/metrics"
	"github.com/dumeirei/hotel-admin-backend/internal/common/utils"
	"github.com/dumeirei/hotel-admin-backend/internal/models"
	"github.com/dumeirei/hotel-admin-backend/internal/repository"
)

const (
	visitorIDLength = 16
	dateLayout      = "2006-01-02"

	// 当日计数器保留到次日凌晨汇总后自然过期
	visitCounterTTL = 48 * time.Hour
)

// AnalyticsService 访客统计服务
type AnalyticsService struct {
	analyticsRepo  *repository.AnalyticsRepository
	bookingRepo    *repository.BookingRepository
	paymentRepo    *repository.PaymentRepository
	roomRepo       *repository.RoomRepository
	conferenceRepo *repository.ConferenceRepository
}

// NewAnalyticsService 创建访客统计服务
func NewAnalyticsService(
	analyticsRepo *repository.AnalyticsRepository,
	bookingRepo *repository.BookingRepository,
	paymentRepo *repository.PaymentRepository,
	roomRepo *repository.RoomRepository,
	conferenceRepo *repository.ConferenceRepository,
) *AnalyticsService {
	return &AnalyticsService{
		analyticsRepo:  analyticsRepo,
		bookingRepo:    bookingRepo,
		paymentRepo:    paymentRepo,
		roomRepo:       roomRepo,
		conferenceRepo: conferenceRepo,
	}
}

// RecordVisitRequest 访问上报请求
type RecordVisitRequest struct {
	Path      string  `json:"path" binding:"required"`
	VisitorID string  `json:"visitor_id"`
	Referrer  *string `json:"referrer"`
	UserAgent *string `json:"user_agent"`
	IP        string  `json:"ip"`
}

// RecordVisit 记录一次页面访问
// 访客标识缺失时生成新标识并返回，前端负责回种 Cookie
func (s *AnalyticsService) RecordVisit(ctx context.Context, req *RecordVisitRequest) (string, error) {
	visitorID := req.VisitorID
	if visitorID == "" {
		visitorID = utils.GenerateVisitorID(visitorIDLength)
	}

	now := time.Now()
	visit := &models.PageVisit{
		Path:      req.Path,
		VisitorID: visitorID,
		Referrer:  req.Referrer,
		UserAgent: req.UserAgent,
		IP:        req.IP,
		VisitedAt: now,
	}
	if err := s.analyticsRepo.CreateVisit(ctx, visit); err != nil {
		return "", errors.ErrDatabaseError.WithError(err)
	}

	// Redis 当日计数器为尽力而为，失败不影响落库
	s.bumpCounters(ctx, now, visitorID)
	metrics.GetMetrics().RecordPageVisit(req.Path)

	return visitorID, nil
}

func (s *AnalyticsService) bumpCounters(ctx context.Context, now time.Time, visitorID string) {
	if cache.GetClient() == nil {
		return
	}
	day := now.Format(dateLayout)

	countKey := cache.BuildKey(cache.KeyPrefixVisit, day, "count")
	if _, err := cache.Incr(ctx, countKey); err != nil {
		logger.Warn("访问计数器更新失败", logger.String("key", countKey), logger.Err(err))
		return
	}
	_ = cache.Expire(ctx, countKey, visitCounterTTL)

	visitorKey := cache.BuildKey(cache.KeyPrefixVisit, day, "visitors")
	if err := cache.SAdd(ctx, visitorKey, visitorID); err != nil {
		logger.Warn("访客集合更新失败", logger.String("key", visitorKey), logger.Err(err))
		return
	}
	_ = cache.Expire(ctx, visitorKey, visitCounterTTL)
}

// TodayVisitCount 读取当日访问计数
// 优先读 Redis 计数器，缓存不可用时回退数据库
func (s *AnalyticsService) TodayVisitCount(ctx context.Context) (int64, error) {
	day := time.Now().Format(dateLayout)
	if cache.GetClient() != nil {
		countKey := cache.BuildKey(cache.KeyPrefixVisit, day, "count")
		if raw, err := cache.GetString(ctx, countKey); err == nil {
			metrics.GetMetrics().RecordCacheHit("visit_counter")
			var count int64
			if _, err := fmt.Sscanf(raw, "%d", &count); err == nil {
				return count, nil
			}
		}
		metrics.GetMetrics().RecordCacheMiss("visit_counter")
	}

	from, to := dayBounds(time.Now())
	count, err := s.analyticsRepo.CountVisitsBetween(ctx, from, to)
	if err != nil {
		return 0, errors.ErrDatabaseError.WithError(err)
	}
	return count, nil
}

// RollupDay 将指定日期的原始访问记录汇总进日统计表
func (s *AnalyticsService) RollupDay(ctx context.Context, date time.Time) (int, error) {
	from, to := dayBounds(date)
	aggs, err := s.analyticsRepo.AggVisitsByPath(ctx, from, to)
	if err != nil {
		return 0, errors.ErrDatabaseError.WithError(err)
	}

	for _, agg := range aggs {
		if err := s.analyticsRepo.UpsertDailyStat(ctx, from, agg.Path, agg.VisitCount, agg.UniqueVisitors); err != nil {
			return 0, errors.ErrDatabaseError.WithError(err)
		}
	}

	if len(aggs) > 0 {
		logger.Info("访问日汇总完成",
			logger.String("date", from.Format(dateLayout)),
			logger.Int("paths", len(aggs)),
		)
	}
	return len(aggs), nil
}

// CleanupVisits 清理保留期之前的原始访问记录（日汇总仍保留）
func (s *AnalyticsService) CleanupVisits(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	before := time.Now().AddDate(0, 0, -retentionDays)
	deleted, err := s.analyticsRepo.DeleteVisitsBefore(ctx, before)
	if err != nil {
		return 0, errors.ErrDatabaseError.WithError(err)
	}
	if deleted > 0 {
		logger.Info("过期访问记录已清理",
			logger.Int64("deleted", deleted),
			logger.String("before", before.Format(dateLayout)),
		)
	}
	return deleted, nil
}

// ListDailyStats 获取时间段内每日访问统计
func (s *AnalyticsService) ListDailyStats(ctx context.Context, from, to time.Time) ([]*models.DailyVisitStat, error) {
	stats, err := s.analyticsRepo.ListDailyStats(ctx, from, to)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return stats, nil
}

// TopPages 获取时间段内访问量最高的页面
func (s *AnalyticsService) TopPages(ctx context.Context, from, to time.Time, limit int) ([]repository.PathVisitCount, error) {
	if limit <= 0 {
		limit = 10
	}
	pages, err := s.analyticsRepo.ListVisitsByPath(ctx, from, to, limit)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return pages, nil
}

// DashboardSummary 仪表盘汇总数据
type DashboardSummary struct {
	Date string `json:"date"`

	BookingsToday   int64   `json:"bookings_today"`
	RevenueToday    float64 `json:"revenue_today"`
	ArrivalsToday   int     `json:"arrivals_today"`
	DeparturesToday int     `json:"departures_today"`

	PendingBookings   int64 `json:"pending_bookings"`
	TentativeBookings int64 `json:"tentative_bookings"`
	CheckedInBookings int64 `json:"checked_in_bookings"`
	NewInquiries      int64 `json:"new_inquiries"`

	TotalRooms    int     `json:"total_rooms"`
	OccupiedRooms int     `json:"occupied_rooms"`
	OccupancyRate float64 `json:"occupancy_rate"`
	VisitsToday   int64   `json:"visits_today"`
	VisitorsToday int64   `json:"visitors_today"`
}

// GetDashboardSummary 汇总当日运营概览
func (s *AnalyticsService) GetDashboardSummary(ctx context.Context) (*DashboardSummary, error) {
	now := time.Now()
	from, to := dayBounds(now)
	summary := &DashboardSummary{Date: from.Format(dateLayout)}

	var err error
	if summary.BookingsToday, err = s.bookingRepo.CountCreatedBetween(ctx, from, to); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if summary.RevenueToday, err = s.paymentRepo.SumCompletedBetween(ctx, from, to); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	arrivals, err := s.bookingRepo.ListArrivalsOn(ctx, from)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	summary.ArrivalsToday = len(arrivals)

	departures, err := s.bookingRepo.ListDeparturesOn(ctx, from)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	summary.DeparturesToday = len(departures)

	if summary.PendingBookings, err = s.bookingRepo.CountByStatus(ctx, models.BookingStatusPending); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if summary.TentativeBookings, err = s.bookingRepo.CountByStatus(ctx, models.BookingStatusTentative); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if summary.CheckedInBookings, err = s.bookingRepo.CountByStatus(ctx, models.BookingStatusCheckedIn); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if summary.NewInquiries, err = s.conferenceRepo.CountInquiriesByStatus(ctx, models.InquiryStatusNew); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	rooms, err := s.roomRepo.ListAll(ctx, true)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	for _, room := range rooms {
		summary.TotalRooms += room.TotalRooms
		summary.OccupiedRooms += room.TotalRooms - room.RoomsAvailable
	}
	if summary.TotalRooms > 0 {
		summary.OccupancyRate = utils.Round2(float64(summary.OccupiedRooms) / float64(summary.TotalRooms) * 100)
	}

	if summary.VisitsToday, err = s.analyticsRepo.CountVisitsBetween(ctx, from, to); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if summary.VisitorsToday, err = s.analyticsRepo.CountUniqueVisitorsBetween(ctx, from, to); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	return summary, nil
}

// dayBounds 返回日期所在自然日的 [当天零点, 次日零点)
func dayBounds(t time.Time) (time.Time, time.Time) {
	from := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return from, from.AddDate(0, 0, 1)
}
