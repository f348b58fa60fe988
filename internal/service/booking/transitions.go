package booking

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-admin-backend/internal/common/errors"
	"github.com/dumeirei/hotel-admin-backend/internal/models"
)

// transitionRule 状态迁移规则
// availabilityDelta：-1 进入占用状态时占用一间房，+1 离开占用状态时释放一间
// timestampField：迁移成功后写入的时间戳列
// logAction：非空时向 tentative_booking_log 写入一条审计记录
type transitionRule struct {
	availabilityDelta int
	timestampField    string
	logAction         string
}

// transitionTable 合法状态迁移表
// 库存变化只在这里声明，调用方不允许自行加减
var transitionTable = map[[2]string]transitionRule{
	{models.BookingStatusPending, models.BookingStatusConfirmed}: {
		availabilityDelta: -1,
		timestampField:    "confirmed_at",
	},
	{models.BookingStatusTentative, models.BookingStatusConfirmed}: {
		availabilityDelta: -1,
		timestampField:    "confirmed_at",
		logAction:         models.TentativeActionConverted,
	},
	{models.BookingStatusConfirmed, models.BookingStatusCheckedIn}: {
		availabilityDelta: 0,
		timestampField:    "checked_in_at",
	},
	// 入住撤销，回到已确认
	{models.BookingStatusCheckedIn, models.BookingStatusConfirmed}: {
		availabilityDelta: 0,
	},
	{models.BookingStatusCheckedIn, models.BookingStatusCheckedOut}: {
		availabilityDelta: +1,
		timestampField:    "checked_out_at",
	},
	{models.BookingStatusPending, models.BookingStatusCancelled}: {
		availabilityDelta: 0,
		timestampField:    "cancelled_at",
	},
	{models.BookingStatusConfirmed, models.BookingStatusCancelled}: {
		availabilityDelta: +1,
		timestampField:    "cancelled_at",
	},
	{models.BookingStatusCheckedIn, models.BookingStatusCancelled}: {
		availabilityDelta: +1,
		timestampField:    "cancelled_at",
	},
	{models.BookingStatusTentative, models.BookingStatusCancelled}: {
		availabilityDelta: 0,
		timestampField:    "cancelled_at",
		logAction:         models.TentativeActionCancelled,
	},
}

// lookupTransition 查询迁移规则，不存在则为非法迁移
func lookupTransition(from, to string) (transitionRule, bool) {
	rule, ok := transitionTable[[2]string{from, to}]
	return rule, ok
}

// guardTransition 迁移表之外的业务守卫
func guardTransition(b *models.Booking, to string) error {
	if b.Status == models.BookingStatusConfirmed && to == models.BookingStatusCheckedIn {
		if b.PaymentStatus != models.PaymentStatePaid {
			return errors.ErrBookingNotPaid
		}
	}
	return nil
}

// occupyRoomTx 事务内占用一间房，无可用房时返回业务错误
func occupyRoomTx(tx *gorm.DB, roomID int64) error {
	result := tx.Model(&models.Room{}).
		Where("id = ? AND rooms_available > 0", roomID).
		UpdateColumn("rooms_available", gorm.Expr("rooms_available - 1"))
	if result.Error != nil {
		return errors.ErrDatabaseError.WithError(result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrRoomNotAvailable
	}
	return nil
}

// releaseRoomTx 事务内释放一间房，已达总数上限说明台账有偏差，同样上报
func releaseRoomTx(tx *gorm.DB, roomID int64) error {
	result := tx.Model(&models.Room{}).
		Where("id = ? AND rooms_available < total_rooms", roomID).
		UpdateColumn("rooms_available", gorm.Expr("rooms_available + 1"))
	if result.Error != nil {
		return errors.ErrDatabaseError.WithError(result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrAvailabilityExceed.WithMessage(
			fmt.Sprintf("房型 %d 可用数已达总数上限，无法再释放", roomID),
		)
	}
	return nil
}

// applyAvailabilityDelta 按迁移规则调整房型库存
func applyAvailabilityDelta(tx *gorm.DB, roomID int64, delta int) error {
	switch delta {
	case -1:
		return occupyRoomTx(tx, roomID)
	case +1:
		return releaseRoomTx(tx, roomID)
	}
	return nil
}
