// Package notification 提供事务性邮件通知服务
// 所有发送均在数据库事务提交之后进行，失败只记日志与指标，不影响业务结果
package notification

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dumeirei/hotel-admin-backend/internal/common/config"
	"github.com/dumeirei/hotel-admin-backend/internal/common/logger"
	"github.com/dumeirei/hotel-admin-backend/internal/common/metrics"
	"github.com/dumeirei/hotel-admin-backend/internal/models"
)

// 邮件模板名（指标与日志用）
const (
	TemplateBookingConfirmed   = "booking_confirmed"
	TemplateTentativeHold      = "tentative_hold"
	TemplateTentativeConverted = "tentative_converted"
	TemplateBookingModified    = "booking_modified"
	TemplatePaymentInvoice     = "payment_invoice"
)

// FieldChange 预订修改时的单个字段变更
type FieldChange struct {
	Field  string `json:"field"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// EmailService 邮件通知服务（事务性邮件HTTP接口）
type EmailService struct {
	cfg      config.EmailConfig
	currency string
	client   *http.Client
}

// NewEmailService 创建邮件通知服务
func NewEmailService(cfg config.EmailConfig, currencySymbol string) *EmailService {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if cfg.Timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &EmailService{
		cfg:      cfg,
		currency: currencySymbol,
		client:   &http.Client{Timeout: timeout},
	}
}

// sendRequest 邮件接口请求体
type sendRequest struct {
	Sender      emailAddress   `json:"sender"`
	To          []emailAddress `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
	Attachment  []attachment   `json:"attachment,omitempty"`
}

type emailAddress struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type attachment struct {
	Name    string `json:"name"`
	Content string `json:"content"` // base64
}

// send 调用邮件接口发送单封邮件
func (s *EmailService) send(ctx context.Context, template, toEmail, toName, subject, html string, attachments []attachment) error {
	if !s.cfg.Enabled {
		logger.Debug("邮件服务未启用，跳过发送",
			logger.String("template", template),
			logger.String("to", toEmail),
		)
		metrics.GetMetrics().RecordEmail(template, "skipped")
		return nil
	}

	payload := sendRequest{
		Sender:      emailAddress{Name: s.cfg.SenderName, Email: s.cfg.SenderEmail},
		To:          []emailAddress{{Name: toName, Email: toEmail}},
		Subject:     subject,
		HTMLContent: html,
		Attachment:  attachments,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		metrics.GetMetrics().RecordEmail(template, "failed")
		return fmt.Errorf("marshal email payload: %w", err)
	}

	url := strings.TrimRight(s.cfg.APIBaseURL, "/") + "/smtp/email"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		metrics.GetMetrics().RecordEmail(template, "failed")
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		metrics.GetMetrics().RecordEmail(template, "failed")
		logger.Warn("邮件发送失败",
			logger.String("template", template),
			logger.String("to", toEmail),
			logger.Err(err),
		)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		metrics.GetMetrics().RecordEmail(template, "failed")
		logger.Warn("邮件接口返回异常状态",
			logger.String("template", template),
			logger.String("to", toEmail),
			logger.Int("status", resp.StatusCode),
		)
		return fmt.Errorf("email api status %d", resp.StatusCode)
	}

	metrics.GetMetrics().RecordEmail(template, "sent")
	logger.Info("邮件已发送",
		logger.String("template", template),
		logger.String("to", toEmail),
	)
	return nil
}

// SendBookingConfirmed 发送预订确认邮件
func (s *EmailService) SendBookingConfirmed(ctx context.Context, b *models.Booking) error {
	subject := fmt.Sprintf("Booking Confirmed - %s", b.BookingReference)
	html := s.bookingSummaryHTML(b,
		"Your booking has been confirmed.",
		"We look forward to welcoming you.",
	)
	return s.send(ctx, TemplateBookingConfirmed, b.GuestEmail, b.GuestName, subject, html, nil)
}

// SendTentativeHold 发送临时保留确认邮件
func (s *EmailService) SendTentativeHold(ctx context.Context, b *models.Booking) error {
	subject := fmt.Sprintf("Booking On Hold - %s", b.BookingReference)
	intro := "Your booking is being held for you."
	if b.TentativeExpiresAt != nil {
		intro = fmt.Sprintf(
			"Your booking is being held for you until %s. Please confirm before then to secure your room.",
			b.TentativeExpiresAt.Format("02 Jan 2006 15:04"),
		)
	}
	html := s.bookingSummaryHTML(b, intro, "Contact us to confirm your reservation.")
	return s.send(ctx, TemplateTentativeHold, b.GuestEmail, b.GuestName, subject, html, nil)
}

// SendTentativeConverted 发送临时预订转正式邮件
func (s *EmailService) SendTentativeConverted(ctx context.Context, b *models.Booking) error {
	subject := fmt.Sprintf("Booking Confirmed - %s", b.BookingReference)
	html := s.bookingSummaryHTML(b,
		"Good news - your held booking is now confirmed.",
		"We look forward to welcoming you.",
	)
	return s.send(ctx, TemplateTentativeConverted, b.GuestEmail, b.GuestName, subject, html, nil)
}

// SendBookingModified 发送预订变更邮件（附字段变更明细）
func (s *EmailService) SendBookingModified(ctx context.Context, b *models.Booking, changes []FieldChange) error {
	subject := fmt.Sprintf("Booking Updated - %s", b.BookingReference)

	var rows strings.Builder
	for _, c := range changes {
		rows.WriteString(fmt.Sprintf(
			"<tr><td>%s</td><td>%s</td><td>%s</td></tr>",
			c.Field, c.Before, c.After,
		))
	}

	html := fmt.Sprintf(`<html><body>
<p>Dear %s,</p>
<p>Your booking <strong>%s</strong> has been updated. The following details changed:</p>
<table border="1" cellpadding="6" cellspacing="0">
<tr><th>Detail</th><th>Previous</th><th>New</th></tr>
%s
</table>
%s
<p>If anything looks wrong, please contact us.</p>
</body></html>`,
		b.GuestName, b.BookingReference, rows.String(), s.bookingTableHTML(b))
	return s.send(ctx, TemplateBookingModified, b.GuestEmail, b.GuestName, subject, html, nil)
}

// SendPaymentInvoice 发送收款确认与发票邮件
// invoiceFile 为发票文件的绝对路径，存在时作为附件发送
func (s *EmailService) SendPaymentInvoice(ctx context.Context, b *models.Booking, p *models.Payment, invoiceFile string) error {
	subject := fmt.Sprintf("Payment Received - %s", b.BookingReference)

	invoiceLine := ""
	if p.InvoiceNumber != nil {
		invoiceLine = fmt.Sprintf("<p>Invoice number: <strong>%s</strong> (attached).</p>", *p.InvoiceNumber)
	}

	html := fmt.Sprintf(`<html><body>
<p>Dear %s,</p>
<p>We have received your payment of <strong>%s %.2f</strong> for booking <strong>%s</strong>.</p>
%s
<p>Amount paid to date: %s %.2f<br>Balance due: %s %.2f</p>
<p>Thank you.</p>
</body></html>`,
		b.GuestName,
		s.currency, p.Amount, b.BookingReference,
		invoiceLine,
		s.currency, b.AmountPaid,
		s.currency, b.AmountDue,
	)

	var attachments []attachment
	if invoiceFile != "" {
		if content, err := os.ReadFile(invoiceFile); err == nil {
			attachments = append(attachments, attachment{
				Name:    filepath.Base(invoiceFile),
				Content: base64.StdEncoding.EncodeToString(content),
			})
		} else {
			logger.Warn("发票附件读取失败", logger.String("file", invoiceFile), logger.Err(err))
		}
	}

	return s.send(ctx, TemplatePaymentInvoice, b.GuestEmail, b.GuestName, subject, html, attachments)
}

// bookingSummaryHTML 生成预订摘要邮件正文
func (s *EmailService) bookingSummaryHTML(b *models.Booking, intro, outro string) string {
	return fmt.Sprintf(`<html><body>
<p>Dear %s,</p>
<p>%s</p>
%s
<p>%s</p>
</body></html>`, b.GuestName, intro, s.bookingTableHTML(b), outro)
}

// bookingTableHTML 生成预订明细表格
func (s *EmailService) bookingTableHTML(b *models.Booking) string {
	roomName := "-"
	if b.Room != nil {
		roomName = b.Room.Name
	}
	return fmt.Sprintf(`<table border="1" cellpadding="6" cellspacing="0">
<tr><td>Reference</td><td>%s</td></tr>
<tr><td>Room</td><td>%s</td></tr>
<tr><td>Check-in</td><td>%s</td></tr>
<tr><td>Check-out</td><td>%s</td></tr>
<tr><td>Nights</td><td>%d</td></tr>
<tr><td>Guests</td><td>%d</td></tr>
<tr><td>Total (excl. VAT)</td><td>%s %.2f</td></tr>
<tr><td>VAT (%.2f%%)</td><td>%s %.2f</td></tr>
<tr><td>Total</td><td>%s %.2f</td></tr>
</table>`,
		b.BookingReference,
		roomName,
		b.CheckInDate.Format("02 Jan 2006"),
		b.CheckOutDate.Format("02 Jan 2006"),
		b.NumberOfNights,
		b.NumberOfGuests,
		s.currency, b.TotalAmount,
		b.VATRate, s.currency, b.VATAmount,
		s.currency, b.TotalWithVAT,
	)
}
