// Package repository 系统设置仓储单元测试
package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dumeirei/hotel-admin-backend/internal/models"
)

func setupSettingTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.Setting{})
	require.NoError(t, err)

	return db
}

func TestSettingRepository_Create(t *testing.T) {
	db := setupSettingTestDB(t)
	repo := NewSettingRepository(db)
	ctx := context.Background()

	setting := &models.Setting{
		Key:       models.SettingKeyVATRate,
		Value:     "16.0",
		ValueType: "float",
	}

	err := repo.Create(ctx, setting)
	require.NoError(t, err)
	assert.NotZero(t, setting.ID)
}

func TestSettingRepository_GetByKey(t *testing.T) {
	db := setupSettingTestDB(t)
	repo := NewSettingRepository(db)
	ctx := context.Background()

	db.Create(&models.Setting{Key: models.SettingKeyCurrencySymbol, Value: "KSh"})

	found, err := repo.GetByKey(ctx, models.SettingKeyCurrencySymbol)
	require.NoError(t, err)
	assert.Equal(t, "KSh", found.Value)

	_, err = repo.GetByKey(ctx, "missing_key")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSettingRepository_Upsert(t *testing.T) {
	db := setupSettingTestDB(t)
	repo := NewSettingRepository(db)
	ctx := context.Background()

	adminID := int64(1)

	// 不存在时创建
	err := repo.Upsert(ctx, models.SettingKeyVATEnabled, "true", &adminID)
	require.NoError(t, err)

	found, err := repo.GetByKey(ctx, models.SettingKeyVATEnabled)
	require.NoError(t, err)
	assert.Equal(t, "true", found.Value)

	// 已存在时更新
	err = repo.Upsert(ctx, models.SettingKeyVATEnabled, "false", &adminID)
	require.NoError(t, err)

	found, err = repo.GetByKey(ctx, models.SettingKeyVATEnabled)
	require.NoError(t, err)
	assert.Equal(t, "false", found.Value)

	// 不会产生重复记录
	var count int64
	db.Model(&models.Setting{}).Where("key = ?", models.SettingKeyVATEnabled).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSettingRepository_GetAll(t *testing.T) {
	db := setupSettingTestDB(t)
	repo := NewSettingRepository(db)
	ctx := context.Background()

	db.Create(&models.Setting{Key: models.SettingKeyVATRate, Value: "16.0"})
	db.Create(&models.Setting{Key: models.SettingKeyHotelName, Value: "Sunrise Palm Hotel"})
	db.Create(&models.Setting{Key: models.SettingKeyCurrencySymbol, Value: "KSh"})

	settings, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, settings, 3)
}

func TestSettingRepository_Delete(t *testing.T) {
	db := setupSettingTestDB(t)
	repo := NewSettingRepository(db)
	ctx := context.Background()

	db.Create(&models.Setting{Key: "temp_key", Value: "x"})

	err := repo.Delete(ctx, "temp_key")
	require.NoError(t, err)

	_, err = repo.GetByKey(ctx, "temp_key")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
