// Package conference 提供会议咨询与会议室管理服务
// 会议咨询与客房预订是并行的独立实体，不占用客房库存
package conference

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-admin-backend/internal/common/errors"
	"github.com/dumeirei/hotel-admin-backend/internal/common/logger"
	"github.com/dumeirei/hotel-admin-backend/internal/common/metrics"
	"github.com/dumeirei/hotel-admin-backend/internal/common/utils"
	"github.com/dumeirei/hotel-admin-backend/internal/models"
	"github.com/dumeirei/hotel-admin-backend/internal/repository"
)

const (
	dateLayout           = "2006-01-02"
	maxReferenceAttempts = 5
)

// ConferenceService 会议服务
type ConferenceService struct {
	conferenceRepo *repository.ConferenceRepository
}

// NewConferenceService 创建会议服务
func NewConferenceService(conferenceRepo *repository.ConferenceRepository) *ConferenceService {
	return &ConferenceService{conferenceRepo: conferenceRepo}
}

// inquiryTransitions 咨询状态允许的迁移
var inquiryTransitions = map[string][]string{
	models.InquiryStatusNew:       {models.InquiryStatusContacted, models.InquiryStatusConverted, models.InquiryStatusClosed, models.InquiryStatusCancelled},
	models.InquiryStatusContacted: {models.InquiryStatusConverted, models.InquiryStatusClosed, models.InquiryStatusCancelled},
	models.InquiryStatusConverted: {models.InquiryStatusClosed, models.InquiryStatusCancelled},
}

func canTransition(from, to string) bool {
	for _, allowed := range inquiryTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CreateInquiryRequest 创建会议咨询请求
type CreateInquiryRequest struct {
	ConferenceRoomID  *int64  `json:"conference_room_id"`
	ContactName       string  `json:"contact_name" binding:"required"`
	ContactEmail      string  `json:"contact_email" binding:"required,email"`
	ContactPhone      string  `json:"contact_phone" binding:"required"`
	Organization      *string `json:"organization"`
	EventType         string  `json:"event_type"`
	EventStartDate    string  `json:"event_start_date" binding:"required"`
	EventEndDate      string  `json:"event_end_date" binding:"required"`
	ExpectedAttendees int     `json:"expected_attendees"`
	Message           *string `json:"message"`
}

// UpdateInquiryRequest 更新会议咨询请求
type UpdateInquiryRequest struct {
	ConferenceRoomID  *int64   `json:"conference_room_id"`
	ContactName       *string  `json:"contact_name"`
	ContactEmail      *string  `json:"contact_email"`
	ContactPhone      *string  `json:"contact_phone"`
	Organization      *string  `json:"organization"`
	EventType         *string  `json:"event_type"`
	EventStartDate    *string  `json:"event_start_date"`
	EventEndDate      *string  `json:"event_end_date"`
	ExpectedAttendees *int     `json:"expected_attendees"`
	QuotedAmount      *float64 `json:"quoted_amount"`
	DepositRequired   *float64 `json:"deposit_required"`
	AdminNotes        *string  `json:"admin_notes"`
}

// ListInquiriesRequest 会议咨询列表请求
type ListInquiriesRequest struct {
	utils.Pagination
	Status           string `form:"status"`
	ConferenceRoomID int64  `form:"conference_room_id"`
	Keyword          string `form:"keyword"`
	StartDate        string `form:"start_date"`
	EndDate          string `form:"end_date"`
}

// InquiryInfo 会议咨询信息
type InquiryInfo struct {
	ID                 int64    `json:"id"`
	InquiryReference   string   `json:"inquiry_reference"`
	ConferenceRoomID   *int64   `json:"conference_room_id,omitempty"`
	ConferenceRoomName string   `json:"conference_room_name,omitempty"`
	ContactName        string   `json:"contact_name"`
	ContactEmail       string   `json:"contact_email"`
	ContactPhone       string   `json:"contact_phone"`
	Organization       *string  `json:"organization,omitempty"`
	EventType          string   `json:"event_type"`
	EventStartDate     string   `json:"event_start_date"`
	EventEndDate       string   `json:"event_end_date"`
	ExpectedAttendees  int      `json:"expected_attendees"`
	Message            *string  `json:"message,omitempty"`
	QuotedAmount       *float64 `json:"quoted_amount,omitempty"`
	DepositRequired    *float64 `json:"deposit_required,omitempty"`
	AmountPaid         float64  `json:"amount_paid"`
	AmountDue          float64  `json:"amount_due"`
	Status             string   `json:"status"`
	StatusName         string   `json:"status_name"`
	AdminNotes         *string  `json:"admin_notes,omitempty"`
	CreatedAt          string   `json:"created_at"`
}

// CreateInquiry 创建会议咨询
func (s *ConferenceService) CreateInquiry(ctx context.Context, req *CreateInquiryRequest) (*InquiryInfo, error) {
	start, end, err := parseEventDates(req.EventStartDate, req.EventEndDate)
	if err != nil {
		return nil, err
	}

	if req.ConferenceRoomID != nil {
		if _, err := s.conferenceRepo.GetRoomByID(ctx, *req.ConferenceRoomID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, errors.ErrConferenceRoomNotFound
			}
			return nil, errors.ErrDatabaseError.WithError(err)
		}
	}

	reference, err := s.generateReference(ctx)
	if err != nil {
		return nil, err
	}

	inquiry := &models.ConferenceInquiry{
		InquiryReference:  reference,
		ConferenceRoomID:  req.ConferenceRoomID,
		ContactName:       req.ContactName,
		ContactEmail:      req.ContactEmail,
		ContactPhone:      req.ContactPhone,
		Organization:      req.Organization,
		EventType:         req.EventType,
		EventStartDate:    start,
		EventEndDate:      end,
		ExpectedAttendees: req.ExpectedAttendees,
		Message:           req.Message,
		Status:            models.InquiryStatusNew,
	}

	if err := s.conferenceRepo.CreateInquiry(ctx, inquiry); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	metrics.GetMetrics().RecordInquiry(models.InquiryStatusNew)
	logger.Info("会议咨询已创建",
		logger.String("inquiry_reference", reference),
		logger.String("contact_name", req.ContactName),
	)

	return s.toInquiryInfo(inquiry), nil
}

// UpdateInquiry 更新会议咨询
// 终态咨询不允许修改；报价变更时重算待付金额
func (s *ConferenceService) UpdateInquiry(ctx context.Context, id int64, req *UpdateInquiryRequest) (*InquiryInfo, error) {
	inquiry, err := s.getInquiry(ctx, id)
	if err != nil {
		return nil, err
	}
	if inquiry.IsTerminal() {
		return nil, errors.ErrInquiryStatusError.WithMessage(fmt.Sprintf("咨询已处于终态 %s，不允许修改", inquiry.Status))
	}

	updates := make(map[string]interface{})

	if req.ConferenceRoomID != nil {
		if _, err := s.conferenceRepo.GetRoomByID(ctx, *req.ConferenceRoomID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, errors.ErrConferenceRoomNotFound
			}
			return nil, errors.ErrDatabaseError.WithError(err)
		}
		updates["conference_room_id"] = *req.ConferenceRoomID
	}

	start := inquiry.EventStartDate
	end := inquiry.EventEndDate
	if req.EventStartDate != nil {
		start, err = time.Parse(dateLayout, *req.EventStartDate)
		if err != nil {
			return nil, errors.ErrInvalidParams.WithError(err)
		}
		updates["event_start_date"] = start
	}
	if req.EventEndDate != nil {
		end, err = time.Parse(dateLayout, *req.EventEndDate)
		if err != nil {
			return nil, errors.ErrInvalidParams.WithError(err)
		}
		updates["event_end_date"] = end
	}
	if end.Before(start) {
		return nil, errors.ErrInquiryDatesInvalid
	}

	if req.ContactName != nil {
		updates["contact_name"] = *req.ContactName
	}
	if req.ContactEmail != nil {
		updates["contact_email"] = *req.ContactEmail
	}
	if req.ContactPhone != nil {
		updates["contact_phone"] = *req.ContactPhone
	}
	if req.Organization != nil {
		updates["organization"] = *req.Organization
	}
	if req.EventType != nil {
		updates["event_type"] = *req.EventType
	}
	if req.ExpectedAttendees != nil {
		updates["expected_attendees"] = *req.ExpectedAttendees
	}
	if req.DepositRequired != nil {
		updates["deposit_required"] = utils.Round2(*req.DepositRequired)
	}
	if req.AdminNotes != nil {
		updates["admin_notes"] = *req.AdminNotes
	}
	if req.QuotedAmount != nil {
		if *req.QuotedAmount < 0 {
			return nil, errors.ErrInvalidParams.WithMessage("报价金额不能为负")
		}
		quoted := utils.Round2(*req.QuotedAmount)
		updates["quoted_amount"] = quoted
		due := quoted - inquiry.AmountPaid
		if due < 0 {
			due = 0
		}
		updates["amount_due"] = utils.Round2(due)
	}

	if len(updates) == 0 {
		return s.toInquiryInfo(inquiry), nil
	}

	if err := s.conferenceRepo.UpdateInquiryFields(ctx, id, updates); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	inquiry, err = s.getInquiry(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toInquiryInfo(inquiry), nil
}

// TransitionInquiry 变更咨询状态
func (s *ConferenceService) TransitionInquiry(ctx context.Context, id int64, target string, notes *string) (*InquiryInfo, error) {
	switch target {
	case models.InquiryStatusContacted, models.InquiryStatusConverted,
		models.InquiryStatusClosed, models.InquiryStatusCancelled:
	default:
		return nil, errors.ErrInvalidParams.WithMessage("无效的咨询状态: " + target)
	}

	inquiry, err := s.getInquiry(ctx, id)
	if err != nil {
		return nil, err
	}
	if inquiry.Status == target {
		return s.toInquiryInfo(inquiry), nil
	}
	if !canTransition(inquiry.Status, target) {
		return nil, errors.ErrInquiryStatusError.WithMessage(
			fmt.Sprintf("不允许从 %s 迁移到 %s", inquiry.Status, target))
	}

	updates := map[string]interface{}{"status": target}
	if notes != nil {
		updates["admin_notes"] = *notes
	}
	if err := s.conferenceRepo.UpdateInquiryFields(ctx, id, updates); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	metrics.GetMetrics().RecordInquiry(target)
	logger.Info("会议咨询状态已变更",
		logger.String("inquiry_reference", inquiry.InquiryReference),
		logger.String("from", inquiry.Status),
		logger.String("to", target),
	)

	inquiry, err = s.getInquiry(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toInquiryInfo(inquiry), nil
}

// GetInquiry 获取会议咨询详情
func (s *ConferenceService) GetInquiry(ctx context.Context, id int64) (*InquiryInfo, error) {
	inquiry, err := s.getInquiry(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toInquiryInfo(inquiry), nil
}

// GetInquiryByReference 根据咨询编号获取详情
func (s *ConferenceService) GetInquiryByReference(ctx context.Context, reference string) (*InquiryInfo, error) {
	inquiry, err := s.conferenceRepo.GetInquiryByReference(ctx, reference)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrInquiryNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return s.toInquiryInfo(inquiry), nil
}

// ListInquiries 获取会议咨询列表
func (s *ConferenceService) ListInquiries(ctx context.Context, req *ListInquiriesRequest) ([]*InquiryInfo, int64, error) {
	req.Normalize()

	filters := make(map[string]interface{})
	if req.Status != "" {
		filters["status"] = req.Status
	}
	if req.ConferenceRoomID > 0 {
		filters["conference_room_id"] = req.ConferenceRoomID
	}
	if req.Keyword != "" {
		filters["keyword"] = req.Keyword
	}
	if req.StartDate != "" {
		if t, err := time.Parse(dateLayout, req.StartDate); err == nil {
			filters["start_date"] = t
		}
	}
	if req.EndDate != "" {
		if t, err := time.Parse(dateLayout, req.EndDate); err == nil {
			filters["end_date"] = t
		}
	}

	inquiries, total, err := s.conferenceRepo.ListInquiries(ctx, req.GetOffset(), req.GetLimit(), filters)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}

	infos := make([]*InquiryInfo, 0, len(inquiries))
	for _, inquiry := range inquiries {
		infos = append(infos, s.toInquiryInfo(inquiry))
	}
	return infos, total, nil
}

// CreateRoomRequest 创建会议室请求
type CreateRoomRequest struct {
	Name        string      `json:"name" binding:"required"`
	Slug        string      `json:"slug"`
	Description string      `json:"description"`
	Capacity    int         `json:"capacity"`
	AreaSqm     *float64    `json:"area_sqm"`
	HalfDayRate *float64    `json:"half_day_rate"`
	FullDayRate *float64    `json:"full_day_rate"`
	Equipment   models.JSON `json:"equipment"`
	CoverImage  string      `json:"cover_image"`
	SortOrder   int         `json:"sort_order"`
}

// UpdateRoomRequest 更新会议室请求
type UpdateRoomRequest struct {
	Name        *string     `json:"name"`
	Description *string     `json:"description"`
	Capacity    *int        `json:"capacity"`
	AreaSqm     *float64    `json:"area_sqm"`
	HalfDayRate *float64    `json:"half_day_rate"`
	FullDayRate *float64    `json:"full_day_rate"`
	Equipment   models.JSON `json:"equipment"`
	CoverImage  *string     `json:"cover_image"`
	IsActive    *bool       `json:"is_active"`
	SortOrder   *int        `json:"sort_order"`
}

// CreateRoom 创建会议室
func (s *ConferenceService) CreateRoom(ctx context.Context, req *CreateRoomRequest) (*models.ConferenceRoom, error) {
	slug := req.Slug
	if slug == "" {
		slug = utils.Slugify(req.Name)
	}

	if _, err := s.conferenceRepo.GetRoomBySlug(ctx, slug); err == nil {
		return nil, errors.ErrRoomSlugExists
	} else if err != gorm.ErrRecordNotFound {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	room := &models.ConferenceRoom{
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		Capacity:    req.Capacity,
		AreaSqm:     req.AreaSqm,
		HalfDayRate: req.HalfDayRate,
		FullDayRate: req.FullDayRate,
		Equipment:   req.Equipment,
		CoverImage:  req.CoverImage,
		IsActive:    true,
		SortOrder:   req.SortOrder,
	}
	if err := s.conferenceRepo.CreateRoom(ctx, room); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return room, nil
}

// UpdateRoom 更新会议室
func (s *ConferenceService) UpdateRoom(ctx context.Context, id int64, req *UpdateRoomRequest) (*models.ConferenceRoom, error) {
	room, err := s.conferenceRepo.GetRoomByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrConferenceRoomNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	if req.Name != nil {
		room.Name = *req.Name
	}
	if req.Description != nil {
		room.Description = *req.Description
	}
	if req.Capacity != nil {
		room.Capacity = *req.Capacity
	}
	if req.AreaSqm != nil {
		room.AreaSqm = req.AreaSqm
	}
	if req.HalfDayRate != nil {
		room.HalfDayRate = req.HalfDayRate
	}
	if req.FullDayRate != nil {
		room.FullDayRate = req.FullDayRate
	}
	if req.Equipment != nil {
		room.Equipment = req.Equipment
	}
	if req.CoverImage != nil {
		room.CoverImage = *req.CoverImage
	}
	if req.IsActive != nil {
		room.IsActive = *req.IsActive
	}
	if req.SortOrder != nil {
		room.SortOrder = *req.SortOrder
	}

	if err := s.conferenceRepo.UpdateRoom(ctx, room); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return room, nil
}

// GetRoom 获取会议室详情
func (s *ConferenceService) GetRoom(ctx context.Context, id int64) (*models.ConferenceRoom, error) {
	room, err := s.conferenceRepo.GetRoomByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrConferenceRoomNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return room, nil
}

// ListRooms 获取会议室列表
func (s *ConferenceService) ListRooms(ctx context.Context, onlyActive bool) ([]*models.ConferenceRoom, error) {
	rooms, err := s.conferenceRepo.ListRooms(ctx, onlyActive)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return rooms, nil
}

// DeleteRoom 删除会议室
func (s *ConferenceService) DeleteRoom(ctx context.Context, id int64) error {
	if _, err := s.conferenceRepo.GetRoomByID(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrConferenceRoomNotFound
		}
		return errors.ErrDatabaseError.WithError(err)
	}
	return s.conferenceRepo.DeleteRoom(ctx, id)
}

func (s *ConferenceService) getInquiry(ctx context.Context, id int64) (*models.ConferenceInquiry, error) {
	inquiry, err := s.conferenceRepo.GetInquiryByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrInquiryNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return inquiry, nil
}

// generateReference 生成唯一咨询编号
func (s *ConferenceService) generateReference(ctx context.Context) (string, error) {
	for i := 0; i < maxReferenceAttempts; i++ {
		reference := utils.GenerateInquiryReference()
		_, err := s.conferenceRepo.GetInquiryByReference(ctx, reference)
		if err == gorm.ErrRecordNotFound {
			return reference, nil
		}
		if err != nil {
			return "", errors.ErrDatabaseError.WithError(err)
		}
	}
	return "", errors.ErrInvalidParams.WithMessage("咨询编号生成失败")
}

func parseEventDates(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, errors.ErrInvalidParams.WithError(err)
	}
	end, err := time.Parse(dateLayout, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, errors.ErrInvalidParams.WithError(err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.ErrInquiryDatesInvalid
	}
	return start, end, nil
}

func (s *ConferenceService) toInquiryInfo(inquiry *models.ConferenceInquiry) *InquiryInfo {
	info := &InquiryInfo{
		ID:                inquiry.ID,
		InquiryReference:  inquiry.InquiryReference,
		ConferenceRoomID:  inquiry.ConferenceRoomID,
		ContactName:       inquiry.ContactName,
		ContactEmail:      inquiry.ContactEmail,
		ContactPhone:      inquiry.ContactPhone,
		Organization:      inquiry.Organization,
		EventType:         inquiry.EventType,
		EventStartDate:    inquiry.EventStartDate.Format(dateLayout),
		EventEndDate:      inquiry.EventEndDate.Format(dateLayout),
		ExpectedAttendees: inquiry.ExpectedAttendees,
		Message:           inquiry.Message,
		QuotedAmount:      inquiry.QuotedAmount,
		DepositRequired:   inquiry.DepositRequired,
		AmountPaid:        inquiry.AmountPaid,
		AmountDue:         inquiry.AmountDue,
		Status:            inquiry.Status,
		StatusName:        getStatusName(inquiry.Status),
		AdminNotes:        inquiry.AdminNotes,
		CreatedAt:         inquiry.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if inquiry.ConferenceRoom != nil {
		info.ConferenceRoomName = inquiry.ConferenceRoom.Name
	}
	return info
}

// getStatusName 获取状态中文名
func getStatusName(status string) string {
	switch status {
	case models.InquiryStatusNew:
		return "新咨询"
	case models.InquiryStatusContacted:
		return "已联系"
	case models.InquiryStatusConverted:
		return "已成单"
	case models.InquiryStatusClosed:
		return "已结束"
	case models.InquiryStatusCancelled:
		return "已取消"
	default:
		return "未知"
	}
}
