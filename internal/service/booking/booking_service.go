// Package booking 提供客房预订服务
// 预订状态机、房型库存台账与价格计算都在这里实现
package booking

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-admin-backend/internal/common/errors"
	"github.com/dumeirei/hotel-admin-backend/internal/common/logger"
	"github.com/dumeirei/hotel-admin-backend/internal/common/metrics"
	"github.com/dumeirei/hotel-admin-backend/internal/common/utils"
	"github.com/dumeirei/hotel-admin-backend/internal/models"
	"github.com/dumeirei/hotel-admin-backend/internal/repository"
	"github.com/dumeirei/hotel-admin-backend/internal/service/notification"
)

const (
	dateLayout           = "2006-01-02"
	maxReferenceAttempts = 5
)

// Notifier 预订通知投递接口
// 所有方法都在事务提交之后调用，失败不回滚业务结果
type Notifier interface {
	SendBookingConfirmed(ctx context.Context, b *models.Booking) error
	SendTentativeHold(ctx context.Context, b *models.Booking) error
	SendTentativeConverted(ctx context.Context, b *models.Booking) error
	SendBookingModified(ctx context.Context, b *models.Booking, changes []notification.FieldChange) error
}

// BookingService 预订服务
type BookingService struct {
	db          *gorm.DB
	bookingRepo *repository.BookingRepository
	roomRepo    *repository.RoomRepository
	settings    models.BookingSettings
	notifier    Notifier
}

// NewBookingService 创建预订服务
// settings 为启动时从 settings 表加载的快照，notifier 可为 nil（不发通知）
func NewBookingService(
	db *gorm.DB,
	bookingRepo *repository.BookingRepository,
	roomRepo *repository.RoomRepository,
	settings models.BookingSettings,
	notifier Notifier,
) *BookingService {
	return &BookingService{
		db:          db,
		bookingRepo: bookingRepo,
		roomRepo:    roomRepo,
		settings:    settings,
		notifier:    notifier,
	}
}

// CreateBookingRequest 创建预订请求
type CreateBookingRequest struct {
	RoomID          int64    `json:"room_id" binding:"required"`
	CheckInDate     string   `json:"check_in_date" binding:"required"`
	CheckOutDate    string   `json:"check_out_date" binding:"required"`
	NumberOfGuests  int      `json:"number_of_guests" binding:"required,min=1"`
	OccupancyType   string   `json:"occupancy_type"`
	GuestName       string   `json:"guest_name" binding:"required"`
	GuestEmail      string   `json:"guest_email" binding:"required,email"`
	GuestPhone      string   `json:"guest_phone" binding:"required"`
	GuestCountry    *string  `json:"guest_country"`
	GuestAddress    *string  `json:"guest_address"`
	SpecialRequests *string  `json:"special_requests"`
	TotalOverride   *float64 `json:"total_override"`
	Status          string   `json:"status"`
}

// UpdateBookingRequest 修改预订请求（字段为空表示不变）
type UpdateBookingRequest struct {
	RoomID          *int64   `json:"room_id"`
	CheckInDate     *string  `json:"check_in_date"`
	CheckOutDate    *string  `json:"check_out_date"`
	NumberOfGuests  *int     `json:"number_of_guests"`
	OccupancyType   *string  `json:"occupancy_type"`
	GuestName       *string  `json:"guest_name"`
	GuestEmail      *string  `json:"guest_email"`
	GuestPhone      *string  `json:"guest_phone"`
	GuestCountry    *string  `json:"guest_country"`
	GuestAddress    *string  `json:"guest_address"`
	SpecialRequests *string  `json:"special_requests"`
	TotalOverride   *float64 `json:"total_override"`
}

// ListBookingsRequest 预订列表查询参数
type ListBookingsRequest struct {
	utils.Pagination
	RoomID        int64  `form:"room_id"`
	Status        string `form:"status"`
	PaymentStatus string `form:"payment_status"`
	Keyword       string `form:"keyword"`
	StartDate     string `form:"start_date"`
	EndDate       string `form:"end_date"`
}

// BookingInfo 预订信息
type BookingInfo struct {
	ID                 int64      `json:"id"`
	BookingReference   string     `json:"booking_reference"`
	RoomID             int64      `json:"room_id"`
	RoomName           string     `json:"room_name,omitempty"`
	CheckInDate        string     `json:"check_in_date"`
	CheckOutDate       string     `json:"check_out_date"`
	NumberOfNights     int        `json:"number_of_nights"`
	NumberOfGuests     int        `json:"number_of_guests"`
	OccupancyType      string     `json:"occupancy_type"`
	GuestName          string     `json:"guest_name"`
	GuestEmail         string     `json:"guest_email"`
	GuestPhone         string     `json:"guest_phone"`
	GuestCountry       *string    `json:"guest_country,omitempty"`
	GuestAddress       *string    `json:"guest_address,omitempty"`
	SpecialRequests    *string    `json:"special_requests,omitempty"`
	TotalAmount        float64    `json:"total_amount"`
	VATRate            float64    `json:"vat_rate"`
	VATAmount          float64    `json:"vat_amount"`
	TotalWithVAT       float64    `json:"total_with_vat"`
	AmountPaid         float64    `json:"amount_paid"`
	AmountDue          float64    `json:"amount_due"`
	LastPaymentDate    *time.Time `json:"last_payment_date,omitempty"`
	Status             string     `json:"status"`
	StatusName         string     `json:"status_name"`
	PaymentStatus      string     `json:"payment_status"`
	TentativeExpiresAt *time.Time `json:"tentative_expires_at,omitempty"`
	ConfirmedAt        *time.Time `json:"confirmed_at,omitempty"`
	CheckedInAt        *time.Time `json:"checked_in_at,omitempty"`
	CheckedOutAt       *time.Time `json:"checked_out_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancelReason       *string    `json:"cancel_reason,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// CreateBooking 创建预订
// 初始状态允许 pending / confirmed / tentative，进入占用状态时同事务扣减库存
func (s *BookingService) CreateBooking(ctx context.Context, adminID int64, req *CreateBookingRequest) (*BookingInfo, error) {
	occupancy := req.OccupancyType
	if occupancy == "" {
		occupancy = models.OccupancyDouble
	}
	if occupancy != models.OccupancySingle && occupancy != models.OccupancyDouble && occupancy != models.OccupancyTriple {
		return nil, errors.ErrInvalidParams.WithMessage("入住档位仅支持 single/double/triple")
	}

	status := req.Status
	if status == "" {
		status = models.BookingStatusPending
	}
	if status != models.BookingStatusPending &&
		status != models.BookingStatusConfirmed &&
		status != models.BookingStatusTentative {
		return nil, errors.ErrInvalidParams.WithMessage("初始状态仅支持 pending/confirmed/tentative")
	}

	checkIn, err := time.Parse(dateLayout, req.CheckInDate)
	if err != nil {
		return nil, errors.ErrBookingDatesInvalid.WithError(err)
	}
	checkOut, err := time.Parse(dateLayout, req.CheckOutDate)
	if err != nil {
		return nil, errors.ErrBookingDatesInvalid.WithError(err)
	}

	room, err := s.roomRepo.GetByID(ctx, req.RoomID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrRoomNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if !room.IsActive {
		return nil, errors.ErrRoomDisabled
	}
	if req.NumberOfGuests > room.MaxGuests {
		return nil, errors.ErrGuestsExceedLimit.WithMessage(
			fmt.Sprintf("入住人数 %d 超过房型上限 %d", req.NumberOfGuests, room.MaxGuests),
		)
	}

	quote, err := quotePrice(room, checkIn, checkOut, occupancy, req.TotalOverride, s.settings.EffectiveVATRate())
	if err != nil {
		return nil, err
	}

	reference, err := s.generateReference(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	booking := &models.Booking{
		BookingReference: reference,
		RoomID:           room.ID,
		CheckInDate:      checkIn,
		CheckOutDate:     checkOut,
		NumberOfNights:   quote.Nights,
		NumberOfGuests:   req.NumberOfGuests,
		OccupancyType:    occupancy,
		GuestName:        req.GuestName,
		GuestEmail:       req.GuestEmail,
		GuestPhone:       req.GuestPhone,
		GuestCountry:     req.GuestCountry,
		GuestAddress:     req.GuestAddress,
		SpecialRequests:  req.SpecialRequests,
		TotalAmount:      quote.TotalAmount,
		VATRate:          quote.VATRate,
		VATAmount:        quote.VATAmount,
		TotalWithVAT:     quote.TotalWithVAT,
		AmountDue:        quote.TotalWithVAT,
		Status:           status,
		PaymentStatus:    models.PaymentStateUnpaid,
	}

	switch status {
	case models.BookingStatusConfirmed:
		booking.ConfirmedAt = &now
	case models.BookingStatusTentative:
		expires := now.Add(time.Duration(s.settings.TentativeDurationHours) * time.Hour)
		booking.TentativeExpiresAt = &expires
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(booking).Error; err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}

		if models.IsOccupyingStatus(status) {
			if err := occupyRoomTx(tx, room.ID); err != nil {
				return err
			}
		}

		if status == models.BookingStatusTentative {
			if err := tx.Create(&models.TentativeBookingLog{
				BookingID: booking.ID,
				Action:    models.TentativeActionCreated,
				AdminID:   &adminID,
			}).Error; err != nil {
				return errors.ErrDatabaseError.WithError(err)
			}
		}

		return nil
	})
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			return nil, appErr
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	metrics.GetMetrics().RecordBooking(status)
	logger.Info("预订已创建",
		logger.BookingRef(booking.BookingReference),
		logger.BookingID(booking.ID),
		logger.RoomID(room.ID),
		logger.AdminID(adminID),
	)

	booking.Room = room

	// 事务已提交，通知尽力投递
	switch status {
	case models.BookingStatusConfirmed:
		s.notify(func() error { return s.notifier.SendBookingConfirmed(ctx, booking) })
	case models.BookingStatusTentative:
		s.notify(func() error { return s.notifier.SendTentativeHold(ctx, booking) })
	}

	return s.toBookingInfo(booking), nil
}

// UpdateBooking 修改预订
// 客人可见字段发生变化时发送变更通知，special_requests 只保存不通知
// 占用中的预订换房时先释放旧房再占用新房，新房无库存则整体回滚
func (s *BookingService) UpdateBooking(ctx context.Context, adminID int64, bookingID int64, req *UpdateBookingRequest) (*BookingInfo, error) {
	b, err := s.bookingRepo.GetByIDWithRoom(ctx, bookingID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrBookingNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if b.IsTerminal() {
		return nil, errors.ErrBookingStatusError.WithMessage("已退房或已取消的预订不允许修改")
	}

	// 计算修改后的生效值
	newRoom := b.Room
	roomChanged := false
	if req.RoomID != nil && *req.RoomID != b.RoomID {
		newRoom, err = s.roomRepo.GetByID(ctx, *req.RoomID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, errors.ErrRoomNotFound
			}
			return nil, errors.ErrDatabaseError.WithError(err)
		}
		if !newRoom.IsActive {
			return nil, errors.ErrRoomDisabled
		}
		roomChanged = true
	}
	if newRoom == nil {
		return nil, errors.ErrRoomNotFound
	}

	newCheckIn := b.CheckInDate
	if req.CheckInDate != nil {
		newCheckIn, err = time.Parse(dateLayout, *req.CheckInDate)
		if err != nil {
			return nil, errors.ErrBookingDatesInvalid.WithError(err)
		}
	}
	newCheckOut := b.CheckOutDate
	if req.CheckOutDate != nil {
		newCheckOut, err = time.Parse(dateLayout, *req.CheckOutDate)
		if err != nil {
			return nil, errors.ErrBookingDatesInvalid.WithError(err)
		}
	}

	newGuests := b.NumberOfGuests
	if req.NumberOfGuests != nil {
		newGuests = *req.NumberOfGuests
	}
	if newGuests > newRoom.MaxGuests {
		return nil, errors.ErrGuestsExceedLimit.WithMessage(
			fmt.Sprintf("入住人数 %d 超过房型上限 %d", newGuests, newRoom.MaxGuests),
		)
	}

	newOccupancy := b.OccupancyType
	if req.OccupancyType != nil {
		newOccupancy = *req.OccupancyType
		if newOccupancy != models.OccupancySingle && newOccupancy != models.OccupancyDouble && newOccupancy != models.OccupancyTriple {
			return nil, errors.ErrInvalidParams.WithMessage("入住档位仅支持 single/double/triple")
		}
	}

	// 影响价格的字段有变化时整体重算，增值税率沿用预订创建时的值
	repriced := roomChanged ||
		!newCheckIn.Equal(b.CheckInDate) || !newCheckOut.Equal(b.CheckOutDate) ||
		newOccupancy != b.OccupancyType || req.TotalOverride != nil
	quote := &Quote{
		Nights:       b.NumberOfNights,
		TotalAmount:  b.TotalAmount,
		VATRate:      b.VATRate,
		VATAmount:    b.VATAmount,
		TotalWithVAT: b.TotalWithVAT,
	}
	if repriced {
		quote, err = quotePrice(newRoom, newCheckIn, newCheckOut, newOccupancy, req.TotalOverride, b.VATRate)
		if err != nil {
			return nil, err
		}
	}

	// 客人可见字段的变更明细，special_requests 不在其中
	changes := make([]notification.FieldChange, 0, 4)
	addChange := func(field, before, after string) {
		if before != after {
			changes = append(changes, notification.FieldChange{Field: field, Before: before, After: after})
		}
	}
	oldRoomName := ""
	if b.Room != nil {
		oldRoomName = b.Room.Name
	}
	if roomChanged {
		addChange("room", oldRoomName, newRoom.Name)
	}
	addChange("check_in_date", b.CheckInDate.Format(dateLayout), newCheckIn.Format(dateLayout))
	addChange("check_out_date", b.CheckOutDate.Format(dateLayout), newCheckOut.Format(dateLayout))
	addChange("number_of_guests", strconv.Itoa(b.NumberOfGuests), strconv.Itoa(newGuests))
	addChange("occupancy_type", b.OccupancyType, newOccupancy)
	addChange("total_amount", fmt.Sprintf("%.2f", b.TotalWithVAT), fmt.Sprintf("%.2f", quote.TotalWithVAT))
	if req.GuestName != nil {
		addChange("guest_name", b.GuestName, *req.GuestName)
	}
	if req.GuestEmail != nil {
		addChange("guest_email", b.GuestEmail, *req.GuestEmail)
	}
	if req.GuestPhone != nil {
		addChange("guest_phone", b.GuestPhone, *req.GuestPhone)
	}

	updates := map[string]interface{}{
		"room_id":          newRoom.ID,
		"check_in_date":    newCheckIn,
		"check_out_date":   newCheckOut,
		"number_of_nights": quote.Nights,
		"number_of_guests": newGuests,
		"occupancy_type":   newOccupancy,
	}
	if repriced {
		updates["total_amount"] = quote.TotalAmount
		updates["vat_amount"] = quote.VATAmount
		updates["total_with_vat"] = quote.TotalWithVAT
		updates["amount_due"] = utils.Round2(quote.TotalWithVAT - b.AmountPaid)
		updates["payment_status"] = models.DerivePaymentState(b.AmountPaid, quote.TotalWithVAT)
	}
	if req.GuestName != nil {
		updates["guest_name"] = *req.GuestName
	}
	if req.GuestEmail != nil {
		updates["guest_email"] = *req.GuestEmail
	}
	if req.GuestPhone != nil {
		updates["guest_phone"] = *req.GuestPhone
	}
	if req.GuestCountry != nil {
		updates["guest_country"] = *req.GuestCountry
	}
	if req.GuestAddress != nil {
		updates["guest_address"] = *req.GuestAddress
	}
	if req.SpecialRequests != nil {
		updates["special_requests"] = *req.SpecialRequests
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if roomChanged && models.IsOccupyingStatus(b.Status) {
			if err := releaseRoomTx(tx, b.RoomID); err != nil {
				return err
			}
			if err := occupyRoomTx(tx, newRoom.ID); err != nil {
				return err
			}
		}

		if err := tx.Model(&models.Booking{}).Where("id = ?", b.ID).Updates(updates).Error; err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		return nil
	})
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			return nil, appErr
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	updated, err := s.bookingRepo.GetByIDWithRoom(ctx, b.ID)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	logger.Info("预订已修改",
		logger.BookingRef(updated.BookingReference),
		logger.BookingID(updated.ID),
		logger.AdminID(adminID),
		logger.Int("changed_fields", len(changes)),
	)

	if len(changes) > 0 {
		s.notify(func() error { return s.notifier.SendBookingModified(ctx, updated, changes) })
	}

	return s.toBookingInfo(updated), nil
}

// ConfirmBooking 确认预订（pending → confirmed，无付款前置条件）
func (s *BookingService) ConfirmBooking(ctx context.Context, adminID int64, bookingID int64) (*BookingInfo, error) {
	b, err := s.transition(ctx, adminID, bookingID, models.BookingStatusConfirmed, nil)
	if err != nil {
		return nil, err
	}
	s.notify(func() error { return s.notifier.SendBookingConfirmed(ctx, b) })
	return s.toBookingInfo(b), nil
}

// CheckIn 办理入住（仅允许已付清的已确认预订）
func (s *BookingService) CheckIn(ctx context.Context, adminID int64, bookingID int64) (*BookingInfo, error) {
	b, err := s.transition(ctx, adminID, bookingID, models.BookingStatusCheckedIn, nil)
	if err != nil {
		return nil, err
	}
	return s.toBookingInfo(b), nil
}

// UndoCheckIn 撤销入住，回到已确认
func (s *BookingService) UndoCheckIn(ctx context.Context, adminID int64, bookingID int64) (*BookingInfo, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrBookingNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if b.Status != models.BookingStatusCheckedIn {
		return nil, errors.ErrBookingNotCheckedIn
	}

	updated, err := s.transition(ctx, adminID, bookingID, models.BookingStatusConfirmed, nil)
	if err != nil {
		return nil, err
	}
	return s.toBookingInfo(updated), nil
}

// CheckOut 办理退房，释放房间库存
func (s *BookingService) CheckOut(ctx context.Context, adminID int64, bookingID int64) (*BookingInfo, error) {
	b, err := s.transition(ctx, adminID, bookingID, models.BookingStatusCheckedOut, nil)
	if err != nil {
		return nil, err
	}
	return s.toBookingInfo(b), nil
}

// CancelBooking 取消预订
// 已取消的预订再次取消为幂等空操作，不报错也不重复释放库存
func (s *BookingService) CancelBooking(ctx context.Context, adminID int64, bookingID int64, reason *string) (*BookingInfo, error) {
	b, err := s.transition(ctx, adminID, bookingID, models.BookingStatusCancelled, reason)
	if err != nil {
		return nil, err
	}
	return s.toBookingInfo(b), nil
}

// ConvertTentative 将临时预订转为正式预订
func (s *BookingService) ConvertTentative(ctx context.Context, adminID int64, bookingID int64) (*BookingInfo, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrBookingNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if b.Status != models.BookingStatusTentative {
		return nil, errors.ErrBookingNotTentative
	}

	updated, err := s.transition(ctx, adminID, bookingID, models.BookingStatusConfirmed, nil)
	if err != nil {
		return nil, err
	}

	s.notify(func() error { return s.notifier.SendTentativeConverted(ctx, updated) })
	return s.toBookingInfo(updated), nil
}

// transition 执行一次状态迁移
// 迁移规则与库存变化全部来自迁移表，整个过程在一个事务内完成
func (s *BookingService) transition(ctx context.Context, adminID int64, bookingID int64, target string, reason *string) (*models.Booking, error) {
	var result *models.Booking
	var from string
	var noop bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b models.Booking
		if err := tx.Preload("Room").First(&b, bookingID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrBookingNotFound
			}
			return errors.ErrDatabaseError.WithError(err)
		}
		from = b.Status

		// 重复取消是幂等空操作
		if target == models.BookingStatusCancelled && b.Status == models.BookingStatusCancelled {
			noop = true
			result = &b
			return nil
		}

		rule, ok := lookupTransition(b.Status, target)
		if !ok {
			return errors.ErrBookingStatusError.WithMessage(
				fmt.Sprintf("不允许从 %s 迁移到 %s", b.Status, target),
			)
		}
		if err := guardTransition(&b, target); err != nil {
			return err
		}

		if err := applyAvailabilityDelta(tx, b.RoomID, rule.availabilityDelta); err != nil {
			return err
		}

		now := time.Now()
		updates := map[string]interface{}{"status": target}
		if rule.timestampField != "" {
			updates[rule.timestampField] = now
		}
		if target == models.BookingStatusCancelled && reason != nil {
			updates["cancel_reason"] = *reason
		}
		if b.Status == models.BookingStatusTentative && target == models.BookingStatusConfirmed {
			updates["tentative_expires_at"] = nil
		}

		if err := tx.Model(&models.Booking{}).Where("id = ?", b.ID).Updates(updates).Error; err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}

		if rule.logAction != "" {
			if err := tx.Create(&models.TentativeBookingLog{
				BookingID: b.ID,
				Action:    rule.logAction,
				AdminID:   &adminID,
				Note:      reason,
			}).Error; err != nil {
				return errors.ErrDatabaseError.WithError(err)
			}
		}

		var updated models.Booking
		if err := tx.Preload("Room").First(&updated, b.ID).Error; err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		result = &updated
		return nil
	})
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			return nil, appErr
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	if !noop {
		metrics.GetMetrics().RecordBookingTransition(from, target)
		logger.Info("预订状态已变更",
			logger.BookingRef(result.BookingReference),
			logger.BookingID(result.ID),
			logger.String("from", from),
			logger.String("to", target),
			logger.AdminID(adminID),
		)
	}

	return result, nil
}

// GetBooking 获取预订详情
func (s *BookingService) GetBooking(ctx context.Context, bookingID int64) (*BookingInfo, error) {
	b, err := s.bookingRepo.GetByIDWithRoom(ctx, bookingID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrBookingNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return s.toBookingInfo(b), nil
}

// GetBookingByReference 根据预订编号获取预订详情
func (s *BookingService) GetBookingByReference(ctx context.Context, reference string) (*BookingInfo, error) {
	b, err := s.bookingRepo.GetByReference(ctx, reference)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrBookingNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return s.toBookingInfo(b), nil
}

// ListBookings 获取预订列表
func (s *BookingService) ListBookings(ctx context.Context, req *ListBookingsRequest) ([]*BookingInfo, int64, error) {
	req.Normalize()

	filters := map[string]interface{}{}
	if req.RoomID > 0 {
		filters["room_id"] = req.RoomID
	}
	if req.Status != "" {
		filters["status"] = req.Status
	}
	if req.PaymentStatus != "" {
		filters["payment_status"] = req.PaymentStatus
	}
	if req.Keyword != "" {
		filters["keyword"] = req.Keyword
	}
	if req.StartDate != "" {
		if start, err := time.Parse(dateLayout, req.StartDate); err == nil {
			filters["start_date"] = start
		}
	}
	if req.EndDate != "" {
		if end, err := time.Parse(dateLayout, req.EndDate); err == nil {
			filters["end_date"] = end
		}
	}

	bookings, total, err := s.bookingRepo.List(ctx, req.GetOffset(), req.GetLimit(), filters)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}

	result := make([]*BookingInfo, len(bookings))
	for i, b := range bookings {
		result[i] = s.toBookingInfo(b)
	}
	return result, total, nil
}

// ListTentativeLogs 获取预订的临时操作日志
func (s *BookingService) ListTentativeLogs(ctx context.Context, bookingID int64) ([]*models.TentativeBookingLog, error) {
	logs, err := s.bookingRepo.ListTentativeLogs(ctx, bookingID)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return logs, nil
}

// QuoteBooking 试算预订价格（不落库）
func (s *BookingService) QuoteBooking(ctx context.Context, roomID int64, checkInDate, checkOutDate, occupancyType string, override *float64) (*Quote, error) {
	checkIn, err := time.Parse(dateLayout, checkInDate)
	if err != nil {
		return nil, errors.ErrBookingDatesInvalid.WithError(err)
	}
	checkOut, err := time.Parse(dateLayout, checkOutDate)
	if err != nil {
		return nil, errors.ErrBookingDatesInvalid.WithError(err)
	}

	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrRoomNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	if occupancyType == "" {
		occupancyType = models.OccupancyDouble
	}
	return quotePrice(room, checkIn, checkOut, occupancyType, override, s.settings.EffectiveVATRate())
}

// generateReference 生成唯一预订编号，重试数次仍冲突则报错
func (s *BookingService) generateReference(ctx context.Context) (string, error) {
	for i := 0; i < maxReferenceAttempts; i++ {
		ref := utils.GenerateBookingReference(s.settings.BookingReferencePrefix)
		exists, err := s.bookingRepo.ExistsByReference(ctx, ref)
		if err != nil {
			return "", errors.ErrDatabaseError.WithError(err)
		}
		if !exists {
			return ref, nil
		}
	}
	return "", errors.ErrBookingRefGenFail
}

// notify 事务提交后尽力投递通知，失败只记日志
func (s *BookingService) notify(send func() error) {
	if s.notifier == nil {
		return
	}
	if err := send(); err != nil {
		logger.Warn("预订通知发送失败", logger.Err(err))
	}
}

// toBookingInfo 转换为预订信息
func (s *BookingService) toBookingInfo(b *models.Booking) *BookingInfo {
	info := &BookingInfo{
		ID:                 b.ID,
		BookingReference:   b.BookingReference,
		RoomID:             b.RoomID,
		CheckInDate:        b.CheckInDate.Format(dateLayout),
		CheckOutDate:       b.CheckOutDate.Format(dateLayout),
		NumberOfNights:     b.NumberOfNights,
		NumberOfGuests:     b.NumberOfGuests,
		OccupancyType:      b.OccupancyType,
		GuestName:          b.GuestName,
		GuestEmail:         b.GuestEmail,
		GuestPhone:         b.GuestPhone,
		GuestCountry:       b.GuestCountry,
		GuestAddress:       b.GuestAddress,
		SpecialRequests:    b.SpecialRequests,
		TotalAmount:        b.TotalAmount,
		VATRate:            b.VATRate,
		VATAmount:          b.VATAmount,
		TotalWithVAT:       b.TotalWithVAT,
		AmountPaid:         b.AmountPaid,
		AmountDue:          b.AmountDue,
		LastPaymentDate:    b.LastPaymentDate,
		Status:             b.Status,
		StatusName:         s.getStatusName(b.Status),
		PaymentStatus:      b.PaymentStatus,
		TentativeExpiresAt: b.TentativeExpiresAt,
		ConfirmedAt:        b.ConfirmedAt,
		CheckedInAt:        b.CheckedInAt,
		CheckedOutAt:       b.CheckedOutAt,
		CancelledAt:        b.CancelledAt,
		CancelReason:       b.CancelReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
	if b.Room != nil {
		info.RoomName = b.Room.Name
	}
	return info
}

// getStatusName 获取状态名称
func (s *BookingService) getStatusName(status string) string {
	switch status {
	case models.BookingStatusPending:
		return "待确认"
	case models.BookingStatusConfirmed:
		return "已确认"
	case models.BookingStatusTentative:
		return "临时保留"
	case models.BookingStatusCheckedIn:
		return "已入住"
	case models.BookingStatusCheckedOut:
		return "已退房"
	case models.BookingStatusCancelled:
		return "已取消"
	default:
		return "未知"
	}
}
