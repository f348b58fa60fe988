// Package settings 提供系统设置服务
// 设置以键值对落库，读取走 Redis 读穿缓存；预订相关设置在启动时
// 组装为快照注入各服务，修改后需重启或重新加载快照才生效
package settings

import (
	"context"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-admin-backend/internal/common/cache"
	"github.com/dumeirei/hotel-admin-backend/internal/common/config"
	"github.com/dumeirei/hotel-admin-backend/internal/common/errors"
	"github.com/dumeirei/hotel-admin-backend/internal/common/logger"
	"github.com/dumeirei/hotel-admin-backend/internal/common/metrics"
	"github.com/dumeirei/hotel-admin-backend/internal/models"
	"github.com/dumeirei/hotel-admin-backend/internal/repository"
)

const settingCacheTTL = 10 * time.Minute

// SettingsService 系统设置服务
type SettingsService struct {
	settingRepo *repository.SettingRepository
	defaults    config.BookingConfig
}

// NewSettingsService 创建系统设置服务
func NewSettingsService(settingRepo *repository.SettingRepository, defaults config.BookingConfig) *SettingsService {
	return &SettingsService{settingRepo: settingRepo, defaults: defaults}
}

// GetValue 读取设置值，Redis 缓存优先，未命中回源数据库
func (s *SettingsService) GetValue(ctx context.Context, key string) (string, error) {
	cacheKey := cache.BuildKey(cache.KeyPrefixSetting, key)
	if cache.GetClient() != nil {
		if value, err := cache.GetString(ctx, cacheKey); err == nil {
			metrics.GetMetrics().RecordCacheHit("setting")
			return value, nil
		}
		metrics.GetMetrics().RecordCacheMiss("setting")
	}

	setting, err := s.settingRepo.GetByKey(ctx, key)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", errors.ErrSettingNotFound.WithMessage("设置项不存在: " + key)
		}
		return "", errors.ErrDatabaseError.WithError(err)
	}

	if cache.GetClient() != nil {
		if err := cache.SetString(ctx, cacheKey, setting.Value, settingCacheTTL); err != nil {
			logger.Warn("设置缓存写入失败", logger.String("key", key), logger.Err(err))
		}
	}
	return setting.Value, nil
}

// UpsertRequest 更新设置请求
type UpsertRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value" binding:"required"`
}

// Upsert 更新设置值并失效缓存
func (s *SettingsService) Upsert(ctx context.Context, adminID int64, req *UpsertRequest) error {
	if err := validateSetting(req.Key, req.Value); err != nil {
		return err
	}

	if err := s.settingRepo.Upsert(ctx, req.Key, req.Value, &adminID); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}

	if cache.GetClient() != nil {
		cacheKey := cache.BuildKey(cache.KeyPrefixSetting, req.Key)
		if err := cache.Delete(ctx, cacheKey); err != nil {
			logger.Warn("设置缓存失效失败", logger.String("key", req.Key), logger.Err(err))
		}
	}

	logger.Info("系统设置已更新",
		logger.AdminID(adminID),
		logger.String("key", req.Key),
		logger.String("value", req.Value),
	)
	return nil
}

// GetAll 获取全部设置项
func (s *SettingsService) GetAll(ctx context.Context) ([]*models.Setting, error) {
	settings, err := s.settingRepo.GetAll(ctx)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return settings, nil
}

// LoadBookingSettings 组装预订设置快照
// 数据库未配置的键用配置文件默认值兜底
func (s *SettingsService) LoadBookingSettings(ctx context.Context) (models.BookingSettings, error) {
	snapshot := models.BookingSettings{
		VATEnabled:             s.defaults.VATEnabled,
		VATRate:                s.defaults.VATRate,
		CurrencySymbol:         s.defaults.CurrencySymbol,
		TentativeDurationHours: s.defaults.TentativeDurationHours,
		BookingReferencePrefix: s.defaults.ReferencePrefix,
	}

	settings, err := s.settingRepo.GetAll(ctx)
	if err != nil {
		return snapshot, errors.ErrDatabaseError.WithError(err)
	}

	for _, setting := range settings {
		switch setting.Key {
		case models.SettingKeyVATEnabled:
			if v, err := strconv.ParseBool(setting.Value); err == nil {
				snapshot.VATEnabled = v
			}
		case models.SettingKeyVATRate:
			if v, err := strconv.ParseFloat(setting.Value, 64); err == nil {
				snapshot.VATRate = v
			}
		case models.SettingKeyCurrencySymbol:
			snapshot.CurrencySymbol = setting.Value
		case models.SettingKeyTentativeDurationHours:
			if v, err := strconv.Atoi(setting.Value); err == nil {
				snapshot.TentativeDurationHours = v
			}
		case models.SettingKeyBookingReferencePrefix:
			snapshot.BookingReferencePrefix = setting.Value
		}
	}

	return snapshot, nil
}

// validateSetting 已知键做类型与范围校验，未知键按字符串放行
func validateSetting(key, value string) error {
	switch key {
	case models.SettingKeyVATEnabled:
		if _, err := strconv.ParseBool(value); err != nil {
			return errors.ErrSettingValueError.WithMessage("vat_enabled 必须是布尔值")
		}
	case models.SettingKeyVATRate:
		rate, err := strconv.ParseFloat(value, 64)
		if err != nil || rate < 0 || rate > 100 {
			return errors.ErrSettingValueError.WithMessage("vat_rate 必须在 0 到 100 之间")
		}
	case models.SettingKeyTentativeDurationHours:
		hours, err := strconv.Atoi(value)
		if err != nil || hours <= 0 {
			return errors.ErrSettingValueError.WithMessage("tentative_duration_hours 必须是正整数")
		}
	}
	return nil
}
