// Package notification 邮件通知服务单元测试
package notification

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/hotel-admin-backend/internal/common/config"
	"github.com/dumeirei/hotel-admin-backend/internal/models"
)

func newTestBooking() *models.Booking {
	checkIn := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	return &models.Booking{
		ID:               1,
		BookingReference: "BK-2026-123456",
		RoomID:           1,
		CheckInDate:      checkIn,
		CheckOutDate:     checkIn.AddDate(0, 0, 3),
		NumberOfNights:   3,
		NumberOfGuests:   2,
		OccupancyType:    models.OccupancyDouble,
		GuestName:        "Jane Wanjiru",
		GuestEmail:       "jane@example.com",
		GuestPhone:       "+254712345678",
		TotalAmount:      30000,
		VATRate:          16,
		VATAmount:        4800,
		TotalWithVAT:     34800,
		AmountDue:        34800,
		Status:           models.BookingStatusConfirmed,
		Room:             &models.Room{ID: 1, Name: "Deluxe Ocean View"},
	}
}

func TestEmailService_Disabled(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	svc := NewEmailService(config.EmailConfig{
		Enabled:    false,
		APIBaseURL: server.URL,
	}, "KSh")

	err := svc.SendBookingConfirmed(context.Background(), newTestBooking())
	require.NoError(t, err)
	assert.False(t, called, "未启用时不应调用邮件接口")
}

func TestEmailService_SendBookingConfirmed(t *testing.T) {
	var captured sendRequest
	var apiKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("api-key")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	svc := NewEmailService(config.EmailConfig{
		Enabled:     true,
		APIBaseURL:  server.URL,
		APIKey:      "test-key",
		SenderName:  "Hotel Reservations",
		SenderEmail: "reservations@example.com",
		Timeout:     5,
	}, "KSh")

	err := svc.SendBookingConfirmed(context.Background(), newTestBooking())
	require.NoError(t, err)

	assert.Equal(t, "test-key", apiKey)
	assert.Equal(t, "reservations@example.com", captured.Sender.Email)
	require.Len(t, captured.To, 1)
	assert.Equal(t, "jane@example.com", captured.To[0].Email)
	assert.Contains(t, captured.Subject, "BK-2026-123456")
	assert.Contains(t, captured.HTMLContent, "Deluxe Ocean View")
	assert.Contains(t, captured.HTMLContent, "KSh 34800.00")
}

func TestEmailService_SendBookingModified(t *testing.T) {
	var captured sendRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	svc := NewEmailService(config.EmailConfig{
		Enabled:     true,
		APIBaseURL:  server.URL,
		APIKey:      "test-key",
		SenderEmail: "reservations@example.com",
	}, "KSh")

	changes := []FieldChange{
		{Field: "check_in_date", Before: "2026-04-10", After: "2026-04-12"},
		{Field: "number_of_guests", Before: "2", After: "3"},
	}

	err := svc.SendBookingModified(context.Background(), newTestBooking(), changes)
	require.NoError(t, err)

	assert.Contains(t, captured.Subject, "Updated")
	assert.Contains(t, captured.HTMLContent, "2026-04-12")
	assert.Contains(t, captured.HTMLContent, "number_of_guests")
}

func TestEmailService_SendPaymentInvoice_WithAttachment(t *testing.T) {
	var captured sendRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	dir := t.TempDir()
	invoiceFile := filepath.Join(dir, "INV-2026-000001.html")
	require.NoError(t, os.WriteFile(invoiceFile, []byte("<html>invoice</html>"), 0o644))

	svc := NewEmailService(config.EmailConfig{
		Enabled:     true,
		APIBaseURL:  server.URL,
		APIKey:      "test-key",
		SenderEmail: "reservations@example.com",
	}, "KSh")

	booking := newTestBooking()
	booking.AmountPaid = 34800
	booking.AmountDue = 0

	invoiceNo := "INV-2026-000001"
	payment := &models.Payment{
		ID:               1,
		PaymentReference: "PAY-2026-000001",
		Amount:           34800,
		Status:           models.PaymentStatusCompleted,
		InvoiceNumber:    &invoiceNo,
	}

	err := svc.SendPaymentInvoice(context.Background(), booking, payment, invoiceFile)
	require.NoError(t, err)

	assert.Contains(t, captured.HTMLContent, "INV-2026-000001")
	require.Len(t, captured.Attachment, 1)
	assert.Equal(t, "INV-2026-000001.html", captured.Attachment[0].Name)
	assert.NotEmpty(t, captured.Attachment[0].Content)
}

func TestEmailService_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	svc := NewEmailService(config.EmailConfig{
		Enabled:     true,
		APIBaseURL:  server.URL,
		APIKey:      "bad-key",
		SenderEmail: "reservations@example.com",
	}, "KSh")

	err := svc.SendBookingConfirmed(context.Background(), newTestBooking())
	assert.Error(t, err)
}
