// Package invoice 发票服务单元测试
package invoice

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dumeirei/hotel-admin-backend/internal/common/config"
	"github.com/dumeirei/hotel-admin-backend/internal/models"
	"github.com/dumeirei/hotel-admin-backend/internal/repository"
)

func setupInvoiceTest(t *testing.T) (*InvoiceService, string) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.InvoiceSequence{}))

	dir := t.TempDir()
	svc := NewInvoiceService(config.InvoiceConfig{
		OutputDir:    dir,
		NumberPrefix: "INV",
		HotelName:    "Sunrise Palm Hotel",
		HotelAddress: "Diani Beach Road, Kwale",
		TaxID:        "P051234567X",
	}, repository.NewPaymentRepository(db), "KSh")

	return svc, dir
}

func testPayment(year int) *models.Payment {
	return &models.Payment{
		ID:               1,
		PaymentReference: "PAY-2026-000001",
		Amount:           30000,
		VATRate:          16,
		VATAmount:        4800,
		TotalAmount:      34800,
		PaymentMethod:    models.PaymentMethodMobile,
		Status:           models.PaymentStatusCompleted,
		PaidAt:           time.Date(year, 4, 12, 10, 0, 0, 0, time.UTC),
	}
}

func testBookingForInvoice() *models.Booking {
	checkIn := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	return &models.Booking{
		ID:               1,
		BookingReference: "BK-2026-123456",
		CheckInDate:      checkIn,
		CheckOutDate:     checkIn.AddDate(0, 0, 3),
		NumberOfNights:   3,
		GuestName:        "Jane Wanjiru",
		GuestEmail:       "jane@example.com",
		Room:             &models.Room{Name: "Deluxe Ocean View"},
	}
}

func TestGenerateInvoice_Booking(t *testing.T) {
	svc, dir := setupInvoiceTest(t)
	ctx := context.Background()

	result, err := svc.GenerateInvoice(ctx, testPayment(2026), testBookingForInvoice(), nil)
	require.NoError(t, err)

	assert.Equal(t, "INV-2026-000001", result.InvoiceNumber)
	assert.Equal(t, "INV-2026-000001.html", result.Path)

	content, err := os.ReadFile(filepath.Join(dir, result.Path))
	require.NoError(t, err)
	html := string(content)
	assert.Contains(t, html, "Sunrise Palm Hotel")
	assert.Contains(t, html, "INV-2026-000001")
	assert.Contains(t, html, "BK-2026-123456")
	assert.Contains(t, html, "Jane Wanjiru")
	assert.Contains(t, html, "Deluxe Ocean View")
	assert.Contains(t, html, "KSh 34800.00")
	assert.Contains(t, html, "16.00")
}

func TestGenerateInvoice_SerialIncrements(t *testing.T) {
	svc, _ := setupInvoiceTest(t)
	ctx := context.Background()
	booking := testBookingForInvoice()

	first, err := svc.GenerateInvoice(ctx, testPayment(2026), booking, nil)
	require.NoError(t, err)
	second, err := svc.GenerateInvoice(ctx, testPayment(2026), booking, nil)
	require.NoError(t, err)

	assert.Equal(t, "INV-2026-000001", first.InvoiceNumber)
	assert.Equal(t, "INV-2026-000002", second.InvoiceNumber)

	// 新年份从1重新开始
	third, err := svc.GenerateInvoice(ctx, testPayment(2027), booking, nil)
	require.NoError(t, err)
	assert.Equal(t, "INV-2027-000001", third.InvoiceNumber)
}

func TestGenerateInvoice_Inquiry(t *testing.T) {
	svc, dir := setupInvoiceTest(t)
	ctx := context.Background()

	start := time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)
	inquiry := &models.ConferenceInquiry{
		ID:               1,
		InquiryReference: "CONF-2026-100001",
		ContactName:      "David Kimani",
		ContactEmail:     "david@example.com",
		EventStartDate:   start,
		EventEndDate:     start.AddDate(0, 0, 2),
	}

	result, err := svc.GenerateInvoice(ctx, testPayment(2026), nil, inquiry)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(dir, result.Path))
	require.NoError(t, err)
	assert.Contains(t, string(content), "CONF-2026-100001")
	assert.Contains(t, string(content), "David Kimani")
	assert.Contains(t, string(content), "Conference booking")
}

func TestGenerateInvoice_NoParent(t *testing.T) {
	svc, _ := setupInvoiceTest(t)

	_, err := svc.GenerateInvoice(context.Background(), testPayment(2026), nil, nil)
	assert.Error(t, err)
}

func TestAbsolutePath(t *testing.T) {
	svc, dir := setupInvoiceTest(t)
	assert.Equal(t, filepath.Join(dir, "INV-2026-000001.html"), svc.AbsolutePath("INV-2026-000001.html"))
}
