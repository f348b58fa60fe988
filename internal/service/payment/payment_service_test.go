// Package payment 收款服务单元测试
package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dumeirei/hotel-admin-backend/internal/common/config"
	"github.com/dumeirei/hotel-admin-backend/internal/common/errors"
	"github.com/dumeirei/hotel-admin-backend/internal/common/utils"
	"github.com/dumeirei/hotel-admin-backend/internal/models"
	"github.com/dumeirei/hotel-admin-backend/internal/repository"
	"github.com/dumeirei/hotel-admin-backend/internal/service/invoice"
)

var testSettings = models.BookingSettings{
	VATEnabled:     true,
	VATRate:        16.0,
	CurrencySymbol: "KSh",
}

// captureNotifier 记录发票邮件调用
type captureNotifier struct {
	sent []string // invoice file paths
}

func (n *captureNotifier) SendPaymentInvoice(_ context.Context, _ *models.Booking, _ *models.Payment, invoiceFile string) error {
	n.sent = append(n.sent, invoiceFile)
	return nil
}

func newTestService(t *testing.T) (*PaymentService, *gorm.DB, *captureNotifier) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Room{},
		&models.Booking{},
		&models.ConferenceInquiry{},
		&models.Payment{},
		&models.InvoiceSequence{},
	)
	require.NoError(t, err)

	paymentRepo := repository.NewPaymentRepository(db)
	invoiceSvc := invoice.NewInvoiceService(config.InvoiceConfig{
		OutputDir:    t.TempDir(),
		NumberPrefix: "INV",
		HotelName:    "Sunrise Palm Hotel",
	}, paymentRepo, "KSh")

	notifier := &captureNotifier{}
	svc := NewPaymentService(
		db,
		paymentRepo,
		repository.NewBookingRepository(db),
		repository.NewConferenceRepository(db),
		invoiceSvc,
		testSettings,
		notifier,
	)
	return svc, db, notifier
}

// createTestBooking 不含税1000、税率16.5%、含税1165 的预订
func createTestBooking(t *testing.T, db *gorm.DB) *models.Booking {
	checkIn := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	booking := &models.Booking{
		BookingReference: "BK-2026-" + utils.GenerateRandomNumber(6),
		RoomID:           1,
		CheckInDate:      checkIn,
		CheckOutDate:     checkIn.AddDate(0, 0, 2),
		NumberOfNights:   2,
		NumberOfGuests:   2,
		OccupancyType:    models.OccupancyDouble,
		GuestName:        "Jane Wanjiru",
		GuestEmail:       "jane@example.com",
		GuestPhone:       "+254712345678",
		TotalAmount:      1000,
		VATRate:          16.5,
		VATAmount:        165,
		TotalWithVAT:     1165,
		AmountDue:        1165,
		Status:           models.BookingStatusConfirmed,
		PaymentStatus:    models.PaymentStateUnpaid,
	}
	require.NoError(t, db.Create(booking).Error)
	return booking
}

func getBooking(t *testing.T, db *gorm.DB, id int64) *models.Booking {
	var b models.Booking
	require.NoError(t, db.First(&b, id).Error)
	return &b
}

// ==================== 录入收款测试 ====================

func TestRecordPayment_FullPaymentVAT(t *testing.T) {
	svc, db, notifier := newTestService(t)
	booking := createTestBooking(t, db)
	ctx := context.Background()

	info, err := svc.RecordPayment(ctx, 1, &RecordPaymentRequest{
		BookingID:     &booking.ID,
		Amount:        1000,
		PaymentMethod: models.PaymentMethodMobile,
	})
	require.NoError(t, err)

	// 不含税1000，按预订税率16.5%另计增值税
	assert.Equal(t, 1000.00, info.Amount)
	assert.Equal(t, 16.5, info.VATRate)
	assert.Equal(t, 165.00, info.VATAmount)
	assert.Equal(t, 1165.00, info.TotalAmount)
	assert.Contains(t, info.PaymentReference, "PAY-")
	assert.Equal(t, models.PaymentStatusCompleted, info.Status)

	// 预订汇总回写：付清
	updated := getBooking(t, db, booking.ID)
	assert.Equal(t, 1165.00, updated.AmountPaid)
	assert.Equal(t, 0.00, updated.AmountDue)
	assert.Equal(t, models.PaymentStatePaid, updated.PaymentStatus)
	require.NotNil(t, updated.LastPaymentDate)

	// 发票已生成并发出邮件
	require.Len(t, notifier.sent, 1)
	found, err := svc.GetPayment(ctx, info.ID)
	require.NoError(t, err)
	assert.True(t, found.InvoiceGenerated)
	require.NotNil(t, found.InvoiceNumber)
	assert.Contains(t, *found.InvoiceNumber, "INV-")
}

func TestRecordPayment_PartialThenBalance(t *testing.T) {
	svc, db, _ := newTestService(t)
	booking := createTestBooking(t, db)
	ctx := context.Background()

	// 定金：不含税500 → 含税582.50
	_, err := svc.RecordPayment(ctx, 1, &RecordPaymentRequest{
		BookingID:     &booking.ID,
		Amount:        500,
		PaymentMethod: models.PaymentMethodCash,
		PaymentType:   models.PaymentTypeDeposit,
		SkipInvoice:   true,
	})
	require.NoError(t, err)

	updated := getBooking(t, db, booking.ID)
	assert.Equal(t, 582.50, updated.AmountPaid)
	assert.Equal(t, 582.50, updated.AmountDue)
	assert.Equal(t, models.PaymentStatePartial, updated.PaymentStatus)

	// 尾款付清
	_, err = svc.RecordPayment(ctx, 1, &RecordPaymentRequest{
		BookingID:     &booking.ID,
		Amount:        500,
		PaymentMethod: models.PaymentMethodMobile,
		PaymentType:   models.PaymentTypeBalance,
		SkipInvoice:   true,
	})
	require.NoError(t, err)

	updated = getBooking(t, db, booking.ID)
	assert.Equal(t, 1165.00, updated.AmountPaid)
	assert.Equal(t, 0.00, updated.AmountDue)
	assert.Equal(t, models.PaymentStatePaid, updated.PaymentStatus)
}

func TestRecordPayment_PendingNotCounted(t *testing.T) {
	svc, db, notifier := newTestService(t)
	booking := createTestBooking(t, db)
	ctx := context.Background()

	_, err := svc.RecordPayment(ctx, 1, &RecordPaymentRequest{
		BookingID:     &booking.ID,
		Amount:        1000,
		PaymentMethod: models.PaymentMethodTransfer,
		Status:        models.PaymentStatusPending,
	})
	require.NoError(t, err)

	// 待确认收款不计入汇总，也不生成发票
	updated := getBooking(t, db, booking.ID)
	assert.Equal(t, 0.00, updated.AmountPaid)
	assert.Equal(t, models.PaymentStateUnpaid, updated.PaymentStatus)
	assert.Empty(t, notifier.sent)
}

func TestRecordPayment_InvalidAmount(t *testing.T) {
	svc, db, _ := newTestService(t)
	booking := createTestBooking(t, db)
	ctx := context.Background()

	_, err := svc.RecordPayment(ctx, 1, &RecordPaymentRequest{
		BookingID:     &booking.ID,
		Amount:        0,
		PaymentMethod: models.PaymentMethodCash,
	})
	require.Error(t, err)
	assert.Equal(t, errors.ErrPaymentAmountError.Code, errors.GetAppError(err).Code)
}

func TestRecordPayment_BookingNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	missing := int64(999)
	_, err := svc.RecordPayment(ctx, 1, &RecordPaymentRequest{
		BookingID:     &missing,
		Amount:        1000,
		PaymentMethod: models.PaymentMethodCash,
	})
	require.Error(t, err)
	assert.Equal(t, errors.ErrBookingNotFound.Code, errors.GetAppError(err).Code)
}

func TestRecordPayment_UniqueReferences(t *testing.T) {
	svc, db, _ := newTestService(t)
	booking := createTestBooking(t, db)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		info, err := svc.RecordPayment(ctx, 1, &RecordPaymentRequest{
			BookingID:     &booking.ID,
			Amount:        100,
			PaymentMethod: models.PaymentMethodCash,
			SkipInvoice:   true,
		})
		require.NoError(t, err)
		assert.False(t, seen[info.PaymentReference], "收款编号重复: %s", info.PaymentReference)
		seen[info.PaymentReference] = true
	}
}

func TestRecordPayment_Conference(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	quoted := 50000.0
	start := time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)
	inquiry := &models.ConferenceInquiry{
		InquiryReference: "CONF-2026-100001",
		ContactName:      "David Kimani",
		ContactEmail:     "david@example.com",
		ContactPhone:     "+254701234567",
		EventStartDate:   start,
		EventEndDate:     start.AddDate(0, 0, 2),
		QuotedAmount:     &quoted,
		Status:           models.InquiryStatusContacted,
	}
	require.NoError(t, db.Create(inquiry).Error)

	info, err := svc.RecordPayment(ctx, 1, &RecordPaymentRequest{
		BookingType:   models.BookingTypeConference,
		InquiryID:     &inquiry.ID,
		Amount:        10000,
		PaymentMethod: models.PaymentMethodTransfer,
		PaymentType:   models.PaymentTypeDeposit,
		SkipInvoice:   true,
	})
	require.NoError(t, err)

	// 会议收款用当前设置的税率
	assert.Equal(t, 16.0, info.VATRate)
	assert.Equal(t, 1600.00, info.VATAmount)
	assert.Equal(t, 11600.00, info.TotalAmount)

	var updated models.ConferenceInquiry
	require.NoError(t, db.First(&updated, inquiry.ID).Error)
	assert.Equal(t, 11600.00, updated.AmountPaid)
	assert.Equal(t, 38400.00, updated.AmountDue)
	require.NotNil(t, updated.LastPaymentDate)
}

// ==================== 删除与修复测试 ====================

func TestDeletePayment_RederivesAggregates(t *testing.T) {
	svc, db, _ := newTestService(t)
	booking := createTestBooking(t, db)
	ctx := context.Background()

	info, err := svc.RecordPayment(ctx, 1, &RecordPaymentRequest{
		BookingID:     &booking.ID,
		Amount:        1000,
		PaymentMethod: models.PaymentMethodMobile,
		SkipInvoice:   true,
	})
	require.NoError(t, err)

	updated := getBooking(t, db, booking.ID)
	assert.Equal(t, models.PaymentStatePaid, updated.PaymentStatus)

	err = svc.DeletePayment(ctx, 1, info.ID)
	require.NoError(t, err)

	// 软删除后汇总回退
	updated = getBooking(t, db, booking.ID)
	assert.Equal(t, 0.00, updated.AmountPaid)
	assert.Equal(t, 1165.00, updated.AmountDue)
	assert.Equal(t, models.PaymentStateUnpaid, updated.PaymentStatus)
	assert.Nil(t, updated.LastPaymentDate)

	// 原始记录仍在
	var count int64
	db.Unscoped().Model(&models.Payment{}).Where("id = ?", info.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	// 重复删除报记录不存在
	err = svc.DeletePayment(ctx, 1, info.ID)
	require.Error(t, err)
	assert.Equal(t, errors.ErrPaymentNotFound.Code, errors.GetAppError(err).Code)
}

func TestRecordPayment_AfterDeleteOnSameBooking(t *testing.T) {
	svc, db, _ := newTestService(t)
	booking := createTestBooking(t, db)
	ctx := context.Background()

	first, err := svc.RecordPayment(ctx, 1, &RecordPaymentRequest{
		BookingID:     &booking.ID,
		Amount:        1000,
		PaymentMethod: models.PaymentMethodMobile,
		SkipInvoice:   true,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeletePayment(ctx, 1, first.ID))

	// 软删除行仍占着编号唯一索引，重新录入必须拿到带后缀的新编号
	second, err := svc.RecordPayment(ctx, 1, &RecordPaymentRequest{
		BookingID:     &booking.ID,
		Amount:        1000,
		PaymentMethod: models.PaymentMethodMobile,
		SkipInvoice:   true,
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.PaymentReference, second.PaymentReference)
	assert.Contains(t, second.PaymentReference, first.PaymentReference+"-")

	updated := getBooking(t, db, booking.ID)
	assert.Equal(t, 1165.00, updated.AmountPaid)
	assert.Equal(t, models.PaymentStatePaid, updated.PaymentStatus)
}

func TestReconcileBooking_RepairsDrift(t *testing.T) {
	svc, db, _ := newTestService(t)
	booking := createTestBooking(t, db)
	ctx := context.Background()

	_, err := svc.RecordPayment(ctx, 1, &RecordPaymentRequest{
		BookingID:     &booking.ID,
		Amount:        1000,
		PaymentMethod: models.PaymentMethodMobile,
		SkipInvoice:   true,
	})
	require.NoError(t, err)

	// 人为制造缓存漂移
	require.NoError(t, db.Model(&models.Booking{}).Where("id = ?", booking.ID).Updates(map[string]interface{}{
		"amount_paid":    123.45,
		"amount_due":     999.99,
		"payment_status": models.PaymentStatePartial,
	}).Error)

	agg, err := svc.ReconcileBooking(ctx, booking.ID)
	require.NoError(t, err)

	assert.Equal(t, 1165.00, agg.AmountPaid)
	assert.Equal(t, 0.00, agg.AmountDue)
	assert.Equal(t, models.PaymentStatePaid, agg.PaymentStatus)

	updated := getBooking(t, db, booking.ID)
	assert.Equal(t, 1165.00, updated.AmountPaid)
	assert.Equal(t, models.PaymentStatePaid, updated.PaymentStatus)
}

// ==================== 发票测试 ====================

func TestResendInvoice(t *testing.T) {
	svc, db, notifier := newTestService(t)
	booking := createTestBooking(t, db)
	ctx := context.Background()

	info, err := svc.RecordPayment(ctx, 1, &RecordPaymentRequest{
		BookingID:     &booking.ID,
		Amount:        1000,
		PaymentMethod: models.PaymentMethodMobile,
	})
	require.NoError(t, err)
	require.Len(t, notifier.sent, 1)

	err = svc.ResendInvoice(ctx, info.ID)
	require.NoError(t, err)
	assert.Len(t, notifier.sent, 2)
}

func TestResendInvoice_NoInvoice(t *testing.T) {
	svc, db, _ := newTestService(t)
	booking := createTestBooking(t, db)
	ctx := context.Background()

	info, err := svc.RecordPayment(ctx, 1, &RecordPaymentRequest{
		BookingID:     &booking.ID,
		Amount:        1000,
		PaymentMethod: models.PaymentMethodMobile,
		SkipInvoice:   true,
	})
	require.NoError(t, err)

	err = svc.ResendInvoice(ctx, info.ID)
	require.Error(t, err)
	assert.Equal(t, errors.ErrInvoiceNotFound.Code, errors.GetAppError(err).Code)
}

func TestRegenerateInvoice(t *testing.T) {
	svc, db, _ := newTestService(t)
	booking := createTestBooking(t, db)
	ctx := context.Background()

	info, err := svc.RecordPayment(ctx, 1, &RecordPaymentRequest{
		BookingID:     &booking.ID,
		Amount:        1000,
		PaymentMethod: models.PaymentMethodMobile,
	})
	require.NoError(t, err)

	first, err := svc.GetPayment(ctx, info.ID)
	require.NoError(t, err)
	require.NotNil(t, first.InvoiceNumber)

	regenerated, err := svc.RegenerateInvoice(ctx, info.ID)
	require.NoError(t, err)
	require.NotNil(t, regenerated.InvoiceNumber)
	// 重新生成取新发票号
	assert.NotEqual(t, *first.InvoiceNumber, *regenerated.InvoiceNumber)
	assert.True(t, regenerated.InvoiceGenerated)
}

// ==================== 查询测试 ====================

func TestListPayments_Filters(t *testing.T) {
	svc, db, _ := newTestService(t)
	booking := createTestBooking(t, db)
	ctx := context.Background()

	_, err := svc.RecordPayment(ctx, 1, &RecordPaymentRequest{
		BookingID:     &booking.ID,
		Amount:        500,
		PaymentMethod: models.PaymentMethodCash,
		SkipInvoice:   true,
	})
	require.NoError(t, err)

	_, err = svc.RecordPayment(ctx, 1, &RecordPaymentRequest{
		BookingID:     &booking.ID,
		Amount:        300,
		PaymentMethod: models.PaymentMethodMobile,
		SkipInvoice:   true,
	})
	require.NoError(t, err)

	t.Run("按收款方式过滤", func(t *testing.T) {
		list, total, err := svc.ListPayments(ctx, &ListPaymentsRequest{
			PaymentMethod: models.PaymentMethodCash,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, 500.00, list[0].Amount)
	})

	t.Run("按预订过滤", func(t *testing.T) {
		list, err := svc.ListByBooking(ctx, booking.ID)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})
}
