package booking

import (
	"time"

	"github.com/dumeirei/hotel-admin-backend/internal/common/errors"
	"github.com/dumeirei/hotel-admin-backend/internal/common/utils"
	"github.com/dumeirei/hotel-admin-backend/internal/models"
)

// Quote 价格测算结果
// TotalAmount 为不含税金额，VATAmount 在其之上计算
type Quote struct {
	NightlyRate  float64 `json:"nightly_rate"`
	Nights       int     `json:"nights"`
	TotalAmount  float64 `json:"total_amount"`
	VATRate      float64 `json:"vat_rate"`
	VATAmount    float64 `json:"vat_amount"`
	TotalWithVAT float64 `json:"total_with_vat"`
}

// quotePrice 计算预订价格
// override 非空时以其为准覆盖 rate × nights，增值税始终按不含税金额另计
func quotePrice(room *models.Room, checkIn, checkOut time.Time, occupancyType string, override *float64, vatRate float64) (*Quote, error) {
	nights := utils.NightsBetween(checkIn, checkOut)
	if nights <= 0 {
		return nil, errors.ErrBookingDatesInvalid
	}

	rate := room.NightlyRate(occupancyType)
	total := utils.Round2(rate * float64(nights))
	if override != nil {
		if *override < 0 {
			return nil, errors.ErrInvalidParams.WithMessage("覆盖金额不能为负数")
		}
		total = utils.Round2(*override)
	}

	vatAmount := utils.Round2(total * vatRate / 100)

	return &Quote{
		NightlyRate:  rate,
		Nights:       nights,
		TotalAmount:  total,
		VATRate:      vatRate,
		VATAmount:    vatAmount,
		TotalWithVAT: utils.Round2(total + vatAmount),
	}, nil
}
