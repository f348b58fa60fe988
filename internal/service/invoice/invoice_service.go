// Package invoice 提供发票生成服务
// 发票号按年份从序列表取号，发票文件以HTML形式写入配置目录
package invoice

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/dumeirei/hotel-admin-backend/internal/common/config"
	"github.com/dumeirei/hotel-admin-backend/internal/common/errors"
	"github.com/dumeirei/hotel-admin-backend/internal/common/logger"
	"github.com/dumeirei/hotel-admin-backend/internal/common/metrics"
	"github.com/dumeirei/hotel-admin-backend/internal/models"
	"github.com/dumeirei/hotel-admin-backend/internal/repository"
)

// InvoiceService 发票服务
type InvoiceService struct {
	cfg         config.InvoiceConfig
	paymentRepo *repository.PaymentRepository
	currency    string
	tmpl        *template.Template
}

// NewInvoiceService 创建发票服务
func NewInvoiceService(cfg config.InvoiceConfig, paymentRepo *repository.PaymentRepository, currencySymbol string) *InvoiceService {
	return &InvoiceService{
		cfg:         cfg,
		paymentRepo: paymentRepo,
		currency:    currencySymbol,
		tmpl:        template.Must(template.New("invoice").Parse(invoiceTemplate)),
	}
}

// InvoiceResult 发票生成结果
type InvoiceResult struct {
	InvoiceNumber string `json:"invoice_number"`
	Path          string `json:"path"` // 相对输出目录的文件名
}

// invoiceView 发票模板数据
type invoiceView struct {
	HotelName     string
	HotelAddress  string
	TaxID         string
	InvoiceNumber string
	IssuedAt      string
	Reference     string
	BillToName    string
	BillToEmail   string
	Description   string
	Currency      string
	Amount        string
	VATRate       string
	VATAmount     string
	Total         string
	PaymentMethod string
	PaidAt        string
}

// GenerateInvoice 为一笔收款生成发票
// booking 与 inquiry 二选一，对应收款的归属类型
func (s *InvoiceService) GenerateInvoice(ctx context.Context, p *models.Payment, booking *models.Booking, inquiry *models.ConferenceInquiry) (*InvoiceResult, error) {
	year := p.PaidAt.Year()
	serial, err := s.paymentRepo.NextInvoiceSerial(ctx, year)
	if err != nil {
		metrics.GetMetrics().RecordInvoice("failed")
		return nil, errors.ErrInvoiceGenFail.WithError(err)
	}

	prefix := s.cfg.NumberPrefix
	if prefix == "" {
		prefix = "INV"
	}
	number := fmt.Sprintf("%s-%d-%06d", prefix, year, serial)

	view := invoiceView{
		HotelName:     s.cfg.HotelName,
		HotelAddress:  s.cfg.HotelAddress,
		TaxID:         s.cfg.TaxID,
		InvoiceNumber: number,
		IssuedAt:      time.Now().Format("02 Jan 2006"),
		Currency:      s.currency,
		Amount:        fmt.Sprintf("%.2f", p.Amount),
		VATRate:       fmt.Sprintf("%.2f", p.VATRate),
		VATAmount:     fmt.Sprintf("%.2f", p.VATAmount),
		Total:         fmt.Sprintf("%.2f", p.TotalAmount),
		PaymentMethod: p.PaymentMethod,
		PaidAt:        p.PaidAt.Format("02 Jan 2006"),
	}

	switch {
	case booking != nil:
		view.Reference = booking.BookingReference
		view.BillToName = booking.GuestName
		view.BillToEmail = booking.GuestEmail
		roomName := ""
		if booking.Room != nil {
			roomName = booking.Room.Name + ", "
		}
		view.Description = fmt.Sprintf("Accommodation: %s%d night(s), %s to %s",
			roomName,
			booking.NumberOfNights,
			booking.CheckInDate.Format("02 Jan 2006"),
			booking.CheckOutDate.Format("02 Jan 2006"),
		)
	case inquiry != nil:
		view.Reference = inquiry.InquiryReference
		view.BillToName = inquiry.ContactName
		view.BillToEmail = inquiry.ContactEmail
		view.Description = fmt.Sprintf("Conference booking: %s to %s",
			inquiry.EventStartDate.Format("02 Jan 2006"),
			inquiry.EventEndDate.Format("02 Jan 2006"),
		)
	default:
		metrics.GetMetrics().RecordInvoice("failed")
		return nil, errors.ErrInvoiceGenFail.WithMessage("收款缺少归属的预订或会议咨询")
	}

	if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
		metrics.GetMetrics().RecordInvoice("failed")
		return nil, errors.ErrInvoiceGenFail.WithError(err)
	}

	filename := number + ".html"
	file, err := os.Create(filepath.Join(s.cfg.OutputDir, filename))
	if err != nil {
		metrics.GetMetrics().RecordInvoice("failed")
		return nil, errors.ErrInvoiceGenFail.WithError(err)
	}
	defer file.Close()

	if err := s.tmpl.Execute(file, view); err != nil {
		metrics.GetMetrics().RecordInvoice("failed")
		return nil, errors.ErrInvoiceGenFail.WithError(err)
	}

	metrics.GetMetrics().RecordInvoice("generated")
	logger.Info("发票已生成",
		logger.String("invoice_number", number),
		logger.PaymentRef(p.PaymentReference),
	)

	return &InvoiceResult{InvoiceNumber: number, Path: filename}, nil
}

// AbsolutePath 将发票相对路径转换为绝对路径
func (s *InvoiceService) AbsolutePath(relative string) string {
	return filepath.Join(s.cfg.OutputDir, relative)
}

const invoiceTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Invoice {{.InvoiceNumber}}</title>
<style>
body { font-family: Arial, sans-serif; margin: 40px; color: #333; }
h1 { font-size: 22px; }
table { border-collapse: collapse; width: 100%; margin-top: 16px; }
th, td { border: 1px solid #ccc; padding: 8px; text-align: left; }
.meta { margin-top: 8px; color: #666; }
.total { font-weight: bold; }
</style>
</head>
<body>
<h1>{{.HotelName}}</h1>
<p class="meta">{{.HotelAddress}}{{if .TaxID}}<br>Tax ID: {{.TaxID}}{{end}}</p>

<h2>Invoice {{.InvoiceNumber}}</h2>
<p class="meta">Issued: {{.IssuedAt}}</p>

<p>Billed to: <strong>{{.BillToName}}</strong> ({{.BillToEmail}})<br>
Reference: {{.Reference}}</p>

<table>
<tr><th>Description</th><th>Amount</th></tr>
<tr><td>{{.Description}}</td><td>{{.Currency}} {{.Amount}}</td></tr>
<tr><td>VAT ({{.VATRate}}%)</td><td>{{.Currency}} {{.VATAmount}}</td></tr>
<tr class="total"><td>Total</td><td>{{.Currency}} {{.Total}}</td></tr>
</table>

<p class="meta">Paid by {{.PaymentMethod}} on {{.PaidAt}}.</p>
</body>
</html>
`
