// Package booking 预订服务单元测试
package booking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dumeirei/hotel-admin-backend/internal/common/errors"
	"github.com/dumeirei/hotel-admin-backend/internal/models"
	"github.com/dumeirei/hotel-admin-backend/internal/repository"
	"github.com/dumeirei/hotel-admin-backend/internal/service/notification"
)

func setupBookingTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.Room{}, &models.Booking{}, &models.TentativeBookingLog{})
	require.NoError(t, err)

	return db
}

var testSettings = models.BookingSettings{
	VATEnabled:             true,
	VATRate:                16.0,
	CurrencySymbol:         "KSh",
	TentativeDurationHours: 48,
	BookingReferencePrefix: "BK",
}

// captureNotifier 记录通知调用，测试断言用
type captureNotifier struct {
	confirmed []string
	holds     []string
	converted []string
	modified  [][]notification.FieldChange
}

func (n *captureNotifier) SendBookingConfirmed(_ context.Context, b *models.Booking) error {
	n.confirmed = append(n.confirmed, b.BookingReference)
	return nil
}

func (n *captureNotifier) SendTentativeHold(_ context.Context, b *models.Booking) error {
	n.holds = append(n.holds, b.BookingReference)
	return nil
}

func (n *captureNotifier) SendTentativeConverted(_ context.Context, b *models.Booking) error {
	n.converted = append(n.converted, b.BookingReference)
	return nil
}

func (n *captureNotifier) SendBookingModified(_ context.Context, _ *models.Booking, changes []notification.FieldChange) error {
	n.modified = append(n.modified, changes)
	return nil
}

func newTestService(t *testing.T) (*BookingService, *gorm.DB, *captureNotifier) {
	db := setupBookingTestDB(t)
	notifier := &captureNotifier{}
	svc := NewBookingService(
		db,
		repository.NewBookingRepository(db),
		repository.NewRoomRepository(db),
		testSettings,
		notifier,
	)
	return svc, db, notifier
}

func createTestRoom(t *testing.T, db *gorm.DB, available int) *models.Room {
	room := &models.Room{
		Name:           "Deluxe Ocean View",
		Slug:           fmt.Sprintf("deluxe-ocean-view-%d", time.Now().UnixNano()),
		PricePerNight:  10000,
		MaxGuests:      3,
		TotalRooms:     5,
		RoomsAvailable: available,
		IsActive:       true,
	}
	require.NoError(t, db.Create(room).Error)
	return room
}

func roomAvailability(t *testing.T, db *gorm.DB, roomID int64) int {
	var room models.Room
	require.NoError(t, db.First(&room, roomID).Error)
	return room.RoomsAvailable
}

func validCreateRequest(roomID int64) *CreateBookingRequest {
	return &CreateBookingRequest{
		RoomID:         roomID,
		CheckInDate:    "2026-04-10",
		CheckOutDate:   "2026-04-13",
		NumberOfGuests: 2,
		GuestName:      "Jane Wanjiru",
		GuestEmail:     "jane@example.com",
		GuestPhone:     "+254712345678",
	}
}

// ==================== 价格计算测试 ====================

func TestQuotePrice_VATExclusive(t *testing.T) {
	room := &models.Room{PricePerNight: 500, MaxGuests: 2}
	checkIn := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	override := 1000.0
	quote, err := quotePrice(room, checkIn, checkIn.AddDate(0, 0, 2), models.OccupancyDouble, &override, 16.5)
	require.NoError(t, err)

	// 不含税金额1000，16.5%增值税另计
	assert.Equal(t, 1000.00, quote.TotalAmount)
	assert.Equal(t, 165.00, quote.VATAmount)
	assert.Equal(t, 1165.00, quote.TotalWithVAT)
}

func TestQuotePrice_RateTimesNights(t *testing.T) {
	room := &models.Room{PricePerNight: 10000, MaxGuests: 2}
	checkIn := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	quote, err := quotePrice(room, checkIn, checkIn.AddDate(0, 0, 3), models.OccupancyDouble, nil, 16.0)
	require.NoError(t, err)

	assert.Equal(t, 3, quote.Nights)
	assert.Equal(t, 30000.00, quote.TotalAmount)
	assert.Equal(t, 4800.00, quote.VATAmount)
	assert.Equal(t, 34800.00, quote.TotalWithVAT)
}

func TestQuotePrice_OccupancyRateFallback(t *testing.T) {
	single := 8000.0
	room := &models.Room{PricePerNight: 10000, PriceSingle: &single}
	checkIn := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	checkOut := checkIn.AddDate(0, 0, 1)

	quote, err := quotePrice(room, checkIn, checkOut, models.OccupancySingle, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 8000.00, quote.TotalAmount)

	// 未配置三人价时回退到基础价
	quote, err = quotePrice(room, checkIn, checkOut, models.OccupancyTriple, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 10000.00, quote.TotalAmount)
}

func TestQuotePrice_InvalidDates(t *testing.T) {
	room := &models.Room{PricePerNight: 10000}
	checkIn := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	// 同日往返
	_, err := quotePrice(room, checkIn, checkIn, models.OccupancyDouble, nil, 16.0)
	require.Error(t, err)
	assert.Equal(t, errors.ErrBookingDatesInvalid.Code, errors.GetAppError(err).Code)

	// 退房早于入住
	_, err = quotePrice(room, checkIn, checkIn.AddDate(0, 0, -2), models.OccupancyDouble, nil, 16.0)
	require.Error(t, err)
	assert.Equal(t, errors.ErrBookingDatesInvalid.Code, errors.GetAppError(err).Code)
}

// ==================== 创建预订测试 ====================

func TestCreateBooking_Pending(t *testing.T) {
	svc, db, notifier := newTestService(t)
	room := createTestRoom(t, db, 5)
	ctx := context.Background()

	info, err := svc.CreateBooking(ctx, 1, validCreateRequest(room.ID))
	require.NoError(t, err)

	assert.Equal(t, models.BookingStatusPending, info.Status)
	assert.Equal(t, 3, info.NumberOfNights)
	assert.Contains(t, info.BookingReference, "BK-")
	assert.Equal(t, 30000.00, info.TotalAmount)
	assert.Equal(t, 4800.00, info.VATAmount)
	assert.Equal(t, 34800.00, info.TotalWithVAT)
	assert.Equal(t, 34800.00, info.AmountDue)
	assert.Equal(t, models.PaymentStateUnpaid, info.PaymentStatus)

	// 待确认状态不占库存，也不发通知
	assert.Equal(t, 5, roomAvailability(t, db, room.ID))
	assert.Empty(t, notifier.confirmed)
}

func TestCreateBooking_ConfirmedTakesRoom(t *testing.T) {
	svc, db, notifier := newTestService(t)
	room := createTestRoom(t, db, 5)
	ctx := context.Background()

	req := validCreateRequest(room.ID)
	req.Status = models.BookingStatusConfirmed

	info, err := svc.CreateBooking(ctx, 1, req)
	require.NoError(t, err)

	assert.Equal(t, models.BookingStatusConfirmed, info.Status)
	assert.NotNil(t, info.ConfirmedAt)
	assert.Equal(t, 4, roomAvailability(t, db, room.ID))
	assert.Equal(t, []string{info.BookingReference}, notifier.confirmed)
}

func TestCreateBooking_Tentative(t *testing.T) {
	svc, db, notifier := newTestService(t)
	room := createTestRoom(t, db, 5)
	ctx := context.Background()

	req := validCreateRequest(room.ID)
	req.Status = models.BookingStatusTentative

	info, err := svc.CreateBooking(ctx, 1, req)
	require.NoError(t, err)

	assert.Equal(t, models.BookingStatusTentative, info.Status)
	require.NotNil(t, info.TentativeExpiresAt)
	assert.WithinDuration(t, time.Now().Add(48*time.Hour), *info.TentativeExpiresAt, time.Minute)

	// 临时保留不占库存
	assert.Equal(t, 5, roomAvailability(t, db, room.ID))
	assert.Equal(t, []string{info.BookingReference}, notifier.holds)

	// 写入创建审计日志
	logs, err := svc.ListTentativeLogs(ctx, info.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.TentativeActionCreated, logs[0].Action)
}

func TestCreateBooking_InvalidDates(t *testing.T) {
	svc, db, _ := newTestService(t)
	room := createTestRoom(t, db, 5)
	ctx := context.Background()

	req := validCreateRequest(room.ID)
	req.CheckOutDate = req.CheckInDate

	_, err := svc.CreateBooking(ctx, 1, req)
	require.Error(t, err)
	assert.Equal(t, errors.ErrBookingDatesInvalid.Code, errors.GetAppError(err).Code)
}

func TestCreateBooking_GuestsExceedLimit(t *testing.T) {
	svc, db, _ := newTestService(t)
	room := createTestRoom(t, db, 5) // max_guests = 3
	ctx := context.Background()

	req := validCreateRequest(room.ID)
	req.NumberOfGuests = 5

	_, err := svc.CreateBooking(ctx, 1, req)
	require.Error(t, err)

	appErr := errors.GetAppError(err)
	assert.Equal(t, errors.ErrGuestsExceedLimit.Code, appErr.Code)
	// 错误信息同时包含请求人数与房型上限
	assert.Contains(t, appErr.Message, "5")
	assert.Contains(t, appErr.Message, "3")
}

func TestCreateBooking_NoAvailability(t *testing.T) {
	svc, db, _ := newTestService(t)
	room := createTestRoom(t, db, 0)
	ctx := context.Background()

	req := validCreateRequest(room.ID)
	req.Status = models.BookingStatusConfirmed

	_, err := svc.CreateBooking(ctx, 1, req)
	require.Error(t, err)
	assert.Equal(t, errors.ErrRoomNotAvailable.Code, errors.GetAppError(err).Code)

	// 事务回滚，预订不落库
	var count int64
	db.Model(&models.Booking{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCreateBooking_LastRoom(t *testing.T) {
	svc, db, _ := newTestService(t)
	room := createTestRoom(t, db, 1)
	ctx := context.Background()

	req := validCreateRequest(room.ID)
	req.Status = models.BookingStatusConfirmed

	_, err := svc.CreateBooking(ctx, 1, req)
	require.NoError(t, err)
	assert.Equal(t, 0, roomAvailability(t, db, room.ID))

	// 最后一间已被占用，再次创建失败
	_, err = svc.CreateBooking(ctx, 1, req)
	require.Error(t, err)
	assert.Equal(t, errors.ErrRoomNotAvailable.Code, errors.GetAppError(err).Code)
	assert.Equal(t, 0, roomAvailability(t, db, room.ID))
}

func TestCreateBooking_InactiveRoom(t *testing.T) {
	svc, db, _ := newTestService(t)
	room := createTestRoom(t, db, 5)
	db.Model(room).Update("is_active", false)
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, 1, validCreateRequest(room.ID))
	require.Error(t, err)
	assert.Equal(t, errors.ErrRoomDisabled.Code, errors.GetAppError(err).Code)
}

func TestCreateBooking_UniqueReferences(t *testing.T) {
	svc, db, _ := newTestService(t)
	room := createTestRoom(t, db, 5)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		info, err := svc.CreateBooking(ctx, 1, validCreateRequest(room.ID))
		require.NoError(t, err)
		assert.False(t, seen[info.BookingReference], "预订编号重复: %s", info.BookingReference)
		seen[info.BookingReference] = true
	}
}

// ==================== 状态迁移测试 ====================

func createBookingWithStatus(t *testing.T, svc *BookingService, roomID int64, status string) *BookingInfo {
	req := validCreateRequest(roomID)
	req.Status = status
	info, err := svc.CreateBooking(context.Background(), 1, req)
	require.NoError(t, err)
	return info
}

func TestConfirmBooking_TakesRoom(t *testing.T) {
	svc, db, _ := newTestService(t)
	room := createTestRoom(t, db, 5)
	ctx := context.Background()

	info := createBookingWithStatus(t, svc, room.ID, models.BookingStatusPending)
	assert.Equal(t, 5, roomAvailability(t, db, room.ID))

	confirmed, err := svc.ConfirmBooking(ctx, 1, info.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, confirmed.Status)
	assert.NotNil(t, confirmed.ConfirmedAt)
	assert.Equal(t, 4, roomAvailability(t, db, room.ID))
}

func TestCheckIn_RequiresPaid(t *testing.T) {
	svc, db, _ := newTestService(t)
	room := createTestRoom(t, db, 5)
	ctx := context.Background()

	info := createBookingWithStatus(t, svc, room.ID, models.BookingStatusConfirmed)

	// 未付清不允许入住
	_, err := svc.CheckIn(ctx, 1, info.ID)
	require.Error(t, err)
	assert.Equal(t, errors.ErrBookingNotPaid.Code, errors.GetAppError(err).Code)

	// 付清后放行
	db.Model(&models.Booking{}).Where("id = ?", info.ID).
		Update("payment_status", models.PaymentStatePaid)

	checkedIn, err := svc.CheckIn(ctx, 1, info.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCheckedIn, checkedIn.Status)
	assert.NotNil(t, checkedIn.CheckedInAt)

	// 入住不再额外占库存
	assert.Equal(t, 4, roomAvailability(t, db, room.ID))
}

func TestCheckIn_FromPendingRejected(t *testing.T) {
	svc, db, _ := newTestService(t)
	room := createTestRoom(t, db, 5)
	ctx := context.Background()

	info := createBookingWithStatus(t, svc, room.ID, models.BookingStatusPending)

	_, err := svc.CheckIn(ctx, 1, info.ID)
	require.Error(t, err)
	assert.Equal(t, errors.ErrBookingStatusError.Code, errors.GetAppError(err).Code)
}

func TestCheckOut_ReleasesRoom(t *testing.T) {
	svc, db, _ := newTestService(t)
	room := createTestRoom(t, db, 5)
	ctx := context.Background()

	info := createBookingWithStatus(t, svc, room.ID, models.BookingStatusConfirmed)
	db.Model(&models.Booking{}).Where("id = ?", info.ID).
		Update("payment_status", models.PaymentStatePaid)

	_, err := svc.CheckIn(ctx, 1, info.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, roomAvailability(t, db, room.ID))

	checkedOut, err := svc.CheckOut(ctx, 1, info.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCheckedOut, checkedOut.Status)
	assert.NotNil(t, checkedOut.CheckedOutAt)
	assert.Equal(t, 5, roomAvailability(t, db, room.ID))
}

func TestUndoCheckIn(t *testing.T) {
	svc, db, _ := newTestService(t)
	room := createTestRoom(t, db, 5)
	ctx := context.Background()

	info := createBookingWithStatus(t, svc, room.ID, models.BookingStatusConfirmed)
	db.Model(&models.Booking{}).Where("id = ?", info.ID).
		Update("payment_status", models.PaymentStatePaid)

	_, err := svc.CheckIn(ctx, 1, info.ID)
	require.NoError(t, err)

	reverted, err := svc.UndoCheckIn(ctx, 1, info.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, reverted.Status)
	// 仍占用房间
	assert.Equal(t, 4, roomAvailability(t, db, room.ID))

	// 未入住的预订不允许撤销入住
	_, err = svc.UndoCheckIn(ctx, 1, info.ID)
	require.Error(t, err)
	assert.Equal(t, errors.ErrBookingNotCheckedIn.Code, errors.GetAppError(err).Code)
}

func TestCancelBooking_RestoresAvailability(t *testing.T) {
	svc, db, _ := newTestService(t)
	room := createTestRoom(t, db, 5)
	ctx := context.Background()

	info := createBookingWithStatus(t, svc, room.ID, models.BookingStatusConfirmed)
	assert.Equal(t, 4, roomAvailability(t, db, room.ID))

	reason := "客人行程变更"
	cancelled, err := svc.CancelBooking(ctx, 1, info.ID, &reason)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
	require.NotNil(t, cancelled.CancelReason)
	assert.Equal(t, reason, *cancelled.CancelReason)
	assert.Equal(t, 5, roomAvailability(t, db, room.ID))
}

func TestCancelBooking_Idempotent(t *testing.T) {
	svc, db, _ := newTestService(t)
	room := createTestRoom(t, db, 5)
	ctx := context.Background()

	info := createBookingWithStatus(t, svc, room.ID, models.BookingStatusConfirmed)

	_, err := svc.CancelBooking(ctx, 1, info.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, roomAvailability(t, db, room.ID))

	// 重复取消不报错，库存不会二次释放
	again, err := svc.CancelBooking(ctx, 1, info.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, again.Status)
	assert.Equal(t, 5, roomAvailability(t, db, room.ID))
}

func TestCancelBooking_PendingNoRelease(t *testing.T) {
	svc, db, _ := newTestService(t)
	room := createTestRoom(t, db, 5)
	ctx := context.Background()

	info := createBookingWithStatus(t, svc, room.ID, models.BookingStatusPending)

	_, err := svc.CancelBooking(ctx, 1, info.ID, nil)
	require.NoError(t, err)
	// 待确认未占库存，取消也不释放
	assert.Equal(t, 5, roomAvailability(t, db, room.ID))
}

func TestCancelBooking_TerminalCheckedOut(t *testing.T) {
	svc, db, _ := newTestService(t)
	room := createTestRoom(t, db, 5)
	ctx := context.Background()

	info := createBookingWithStatus(t, svc, room.ID, models.BookingStatusConfirmed)
	db.Model(&models.Booking{}).Where("id = ?", info.ID).
		Update("payment_status", models.PaymentStatePaid)
	_, err := svc.CheckIn(ctx, 1, info.ID)
	require.NoError(t, err)
	_, err = svc.CheckOut(ctx, 1, info.ID)
	require.NoError(t, err)

	// 已退房为终态，不允许取消
	_, err = svc.CancelBooking(ctx, 1, info.ID, nil)
	require.Error(t, err)
	assert.Equal(t, errors.ErrBookingStatusError.Code, errors.GetAppError(err).Code)
}

// ==================== 临时预订测试 ====================

func TestConvertTentative(t *testing.T) {
	svc, db, notifier := newTestService(t)
	room := createTestRoom(t, db, 5)
	ctx := context.Background()

	info := createBookingWithStatus(t, svc, room.ID, models.BookingStatusTentative)

	converted, err := svc.ConvertTentative(ctx, 2, info.ID)
	require.NoError(t, err)

	assert.Equal(t, models.BookingStatusConfirmed, converted.Status)
	assert.Nil(t, converted.TentativeExpiresAt, "转正式后清除过期时间")
	assert.NotNil(t, converted.ConfirmedAt)
	// 转正式时占用库存
	assert.Equal(t, 4, roomAvailability(t, db, room.ID))
	assert.Equal(t, []string{info.BookingReference}, notifier.converted)

	// 审计日志：created + converted
	logs, err := svc.ListTentativeLogs(ctx, info.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, models.TentativeActionConverted, logs[1].Action)
}

func TestConvertTentative_GuardsStatus(t *testing.T) {
	svc, db, _ := newTestService(t)
	room := createTestRoom(t, db, 5)
	ctx := context.Background()

	info := createBookingWithStatus(t, svc, room.ID, models.BookingStatusPending)

	_, err := svc.ConvertTentative(ctx, 1, info.ID)
	require.Error(t, err)
	assert.Equal(t, errors.ErrBookingNotTentative.Code, errors.GetAppError(err).Code)
}

func TestCancelTentative_WritesLog(t *testing.T) {
	svc, db, _ := newTestService(t)
	room := createTestRoom(t, db, 5)
	ctx := context.Background()

	info := createBookingWithStatus(t, svc, room.ID, models.BookingStatusTentative)

	reason := "客人未确认"
	_, err := svc.CancelBooking(ctx, 1, info.ID, &reason)
	require.NoError(t, err)

	logs, err := svc.ListTentativeLogs(ctx, info.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, models.TentativeActionCancelled, logs[1].Action)
	require.NotNil(t, logs[1].Note)
	assert.Equal(t, reason, *logs[1].Note)
}

// ==================== 修改预订测试 ====================

func TestUpdateBooking_SpecialRequestsNoNotify(t *testing.T) {
	svc, db, notifier := newTestService(t)
	room := createTestRoom(t, db, 5)
	ctx := context.Background()

	info := createBookingWithStatus(t, svc, room.ID, models.BookingStatusConfirmed)
	notifier.modified = nil

	requests := "海景朝向，高楼层"
	updated, err := svc.UpdateBooking(ctx, 1, info.ID, &UpdateBookingRequest{
		SpecialRequests: &requests,
	})
	require.NoError(t, err)

	require.NotNil(t, updated.SpecialRequests)
	assert.Equal(t, requests, *updated.SpecialRequests)
	// 仅修改特殊要求不发变更通知
	assert.Empty(t, notifier.modified)
}

func TestUpdateBooking_GuestNameNotifies(t *testing.T) {
	svc, db, notifier := newTestService(t)
	room := createTestRoom(t, db, 5)
	ctx := context.Background()

	info := createBookingWithStatus(t, svc, room.ID, models.BookingStatusConfirmed)
	notifier.modified = nil

	name := "Grace Achieng"
	updated, err := svc.UpdateBooking(ctx, 1, info.ID, &UpdateBookingRequest{
		GuestName: &name,
	})
	require.NoError(t, err)
	assert.Equal(t, name, updated.GuestName)

	require.Len(t, notifier.modified, 1)
	require.Len(t, notifier.modified[0], 1)
	change := notifier.modified[0][0]
	assert.Equal(t, "guest_name", change.Field)
	assert.Equal(t, "Jane Wanjiru", change.Before)
	assert.Equal(t, "Grace Achieng", change.After)
}

func TestUpdateBooking_DatesReprice(t *testing.T) {
	svc, db, notifier := newTestService(t)
	room := createTestRoom(t, db, 5)
	ctx := context.Background()

	info := createBookingWithStatus(t, svc, room.ID, models.BookingStatusConfirmed)
	notifier.modified = nil

	newCheckOut := "2026-04-15" // 3晚 → 5晚
	updated, err := svc.UpdateBooking(ctx, 1, info.ID, &UpdateBookingRequest{
		CheckOutDate: &newCheckOut,
	})
	require.NoError(t, err)

	assert.Equal(t, 5, updated.NumberOfNights)
	assert.Equal(t, 50000.00, updated.TotalAmount)
	assert.Equal(t, 8000.00, updated.VATAmount)
	assert.Equal(t, 58000.00, updated.TotalWithVAT)
	assert.Equal(t, 58000.00, updated.AmountDue)

	require.Len(t, notifier.modified, 1)
	fields := make([]string, 0)
	for _, c := range notifier.modified[0] {
		fields = append(fields, c.Field)
	}
	assert.Contains(t, fields, "check_out_date")
	assert.Contains(t, fields, "total_amount")
}

func TestUpdateBooking_RoomReassignment(t *testing.T) {
	svc, db, _ := newTestService(t)
	oldRoom := createTestRoom(t, db, 5)
	newRoom := createTestRoom(t, db, 2)
	ctx := context.Background()

	info := createBookingWithStatus(t, svc, oldRoom.ID, models.BookingStatusConfirmed)
	assert.Equal(t, 4, roomAvailability(t, db, oldRoom.ID))

	updated, err := svc.UpdateBooking(ctx, 1, info.ID, &UpdateBookingRequest{
		RoomID: &newRoom.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, newRoom.ID, updated.RoomID)
	// 旧房释放，新房占用
	assert.Equal(t, 5, roomAvailability(t, db, oldRoom.ID))
	assert.Equal(t, 1, roomAvailability(t, db, newRoom.ID))
}

func TestUpdateBooking_RoomReassignmentNoAvailability(t *testing.T) {
	svc, db, _ := newTestService(t)
	oldRoom := createTestRoom(t, db, 5)
	fullRoom := createTestRoom(t, db, 0)
	ctx := context.Background()

	info := createBookingWithStatus(t, svc, oldRoom.ID, models.BookingStatusConfirmed)
	assert.Equal(t, 4, roomAvailability(t, db, oldRoom.ID))

	_, err := svc.UpdateBooking(ctx, 1, info.ID, &UpdateBookingRequest{
		RoomID: &fullRoom.ID,
	})
	require.Error(t, err)
	assert.Equal(t, errors.ErrRoomNotAvailable.Code, errors.GetAppError(err).Code)

	// 整体回滚，旧房的释放也被撤销
	assert.Equal(t, 4, roomAvailability(t, db, oldRoom.ID))
	assert.Equal(t, 0, roomAvailability(t, db, fullRoom.ID))

	found, err := svc.GetBooking(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, oldRoom.ID, found.RoomID)
}

func TestUpdateBooking_TerminalRejected(t *testing.T) {
	svc, db, _ := newTestService(t)
	room := createTestRoom(t, db, 5)
	ctx := context.Background()

	info := createBookingWithStatus(t, svc, room.ID, models.BookingStatusConfirmed)
	_, err := svc.CancelBooking(ctx, 1, info.ID, nil)
	require.NoError(t, err)

	name := "New Name"
	_, err = svc.UpdateBooking(ctx, 1, info.ID, &UpdateBookingRequest{GuestName: &name})
	require.Error(t, err)
	assert.Equal(t, errors.ErrBookingStatusError.Code, errors.GetAppError(err).Code)
}

// ==================== 查询测试 ====================

func TestGetBookingByReference(t *testing.T) {
	svc, db, _ := newTestService(t)
	room := createTestRoom(t, db, 5)
	ctx := context.Background()

	info := createBookingWithStatus(t, svc, room.ID, models.BookingStatusPending)

	found, err := svc.GetBookingByReference(ctx, info.BookingReference)
	require.NoError(t, err)
	assert.Equal(t, info.ID, found.ID)
	assert.Equal(t, "Deluxe Ocean View", found.RoomName)

	_, err = svc.GetBookingByReference(ctx, "BK-2026-000000")
	require.Error(t, err)
	assert.Equal(t, errors.ErrBookingNotFound.Code, errors.GetAppError(err).Code)
}

func TestListBookings_Filters(t *testing.T) {
	svc, db, _ := newTestService(t)
	room := createTestRoom(t, db, 5)
	ctx := context.Background()

	createBookingWithStatus(t, svc, room.ID, models.BookingStatusPending)
	createBookingWithStatus(t, svc, room.ID, models.BookingStatusConfirmed)
	createBookingWithStatus(t, svc, room.ID, models.BookingStatusConfirmed)

	t.Run("按状态过滤", func(t *testing.T) {
		list, total, err := svc.ListBookings(ctx, &ListBookingsRequest{
			Status: models.BookingStatusConfirmed,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, list, 2)
	})

	t.Run("按客人姓名搜索", func(t *testing.T) {
		_, total, err := svc.ListBookings(ctx, &ListBookingsRequest{
			Keyword: "Wanjiru",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
	})

	t.Run("无匹配", func(t *testing.T) {
		_, total, err := svc.ListBookings(ctx, &ListBookingsRequest{
			Keyword: "nonexistent",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})
}
