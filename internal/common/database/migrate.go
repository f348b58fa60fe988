package database

import (
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-admin-backend/internal/models"
)

// Migrate 执行表结构自动迁移
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Admin{},
		&models.OperationLog{},
		&models.Room{},
		&models.Booking{},
		&models.TentativeBookingLog{},
		&models.Payment{},
		&models.InvoiceSequence{},
		&models.ConferenceRoom{},
		&models.ConferenceInquiry{},
		&models.GalleryImage{},
		&models.StaticPage{},
		&models.Setting{},
		&models.PageVisit{},
		&models.DailyVisitStat{},
	)
}
