// Package content 提供官网内容管理服务（房型、图库、静态页面）
package content

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-admin-backend/internal/common/errors"
	"github.com/dumeirei/hotel-admin-backend/internal/common/logger"
	"github.com/dumeirei/hotel-admin-backend/internal/common/metrics"
	"github.com/dumeirei/hotel-admin-backend/internal/common/utils"
	"github.com/dumeirei/hotel-admin-backend/internal/models"
	"github.com/dumeirei/hotel-admin-backend/internal/repository"
)

// ContentService 内容管理服务
type ContentService struct {
	contentRepo *repository.ContentRepository
	roomRepo    *repository.RoomRepository
}

// NewContentService 创建内容管理服务
func NewContentService(contentRepo *repository.ContentRepository, roomRepo *repository.RoomRepository) *ContentService {
	return &ContentService{contentRepo: contentRepo, roomRepo: roomRepo}
}

// ==================== 房型管理 ====================

// CreateRoomRequest 创建房型请求
type CreateRoomRequest struct {
	Name          string      `json:"name" binding:"required"`
	Slug          string      `json:"slug"`
	Description   string      `json:"description"`
	PricePerNight float64     `json:"price_per_night" binding:"required,gt=0"`
	PriceSingle   *float64    `json:"price_single"`
	PriceDouble   *float64    `json:"price_double"`
	PriceTriple   *float64    `json:"price_triple"`
	MaxGuests     int         `json:"max_guests"`
	TotalRooms    int         `json:"total_rooms"`
	SizeSqm       *float64    `json:"size_sqm"`
	BedType       string      `json:"bed_type"`
	Amenities     models.JSON `json:"amenities"`
	CoverImage    string      `json:"cover_image"`
	SortOrder     int         `json:"sort_order"`
}

// UpdateRoomRequest 更新房型请求
type UpdateRoomRequest struct {
	Name          *string     `json:"name"`
	Slug          *string     `json:"slug"`
	Description   *string     `json:"description"`
	PricePerNight *float64    `json:"price_per_night"`
	PriceSingle   *float64    `json:"price_single"`
	PriceDouble   *float64    `json:"price_double"`
	PriceTriple   *float64    `json:"price_triple"`
	MaxGuests     *int        `json:"max_guests"`
	TotalRooms    *int        `json:"total_rooms"`
	SizeSqm       *float64    `json:"size_sqm"`
	BedType       *string     `json:"bed_type"`
	Amenities     models.JSON `json:"amenities"`
	CoverImage    *string     `json:"cover_image"`
	IsActive      *bool       `json:"is_active"`
	SortOrder     *int        `json:"sort_order"`
}

// CreateRoom 创建房型，初始可用数等于房间总数
func (s *ContentService) CreateRoom(ctx context.Context, req *CreateRoomRequest) (*models.Room, error) {
	slug := req.Slug
	if slug == "" {
		slug = utils.Slugify(req.Name)
	}

	exists, err := s.roomRepo.ExistsBySlug(ctx, slug, 0)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if exists {
		return nil, errors.ErrRoomSlugExists
	}

	maxGuests := req.MaxGuests
	if maxGuests <= 0 {
		maxGuests = 2
	}
	totalRooms := req.TotalRooms
	if totalRooms <= 0 {
		totalRooms = 1
	}

	room := &models.Room{
		Name:           req.Name,
		Slug:           slug,
		Description:    req.Description,
		PricePerNight:  utils.Round2(req.PricePerNight),
		PriceSingle:    req.PriceSingle,
		PriceDouble:    req.PriceDouble,
		PriceTriple:    req.PriceTriple,
		MaxGuests:      maxGuests,
		TotalRooms:     totalRooms,
		RoomsAvailable: totalRooms,
		SizeSqm:        req.SizeSqm,
		BedType:        req.BedType,
		Amenities:      req.Amenities,
		CoverImage:     req.CoverImage,
		IsActive:       true,
		SortOrder:      req.SortOrder,
	}
	if err := s.roomRepo.Create(ctx, room); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	metrics.GetMetrics().SetRoomsAvailable(room.Name, float64(room.RoomsAvailable))
	logger.Info("房型已创建", logger.RoomID(room.ID), logger.String("slug", room.Slug))
	return room, nil
}

// UpdateRoom 更新房型
// 调低房间总数时同步收缩可用数，保持 0 <= 可用 <= 总数
func (s *ContentService) UpdateRoom(ctx context.Context, id int64, req *UpdateRoomRequest) (*models.Room, error) {
	room, err := s.getRoom(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Slug != nil && *req.Slug != room.Slug {
		exists, err := s.roomRepo.ExistsBySlug(ctx, *req.Slug, id)
		if err != nil {
			return nil, errors.ErrDatabaseError.WithError(err)
		}
		if exists {
			return nil, errors.ErrRoomSlugExists
		}
		room.Slug = *req.Slug
	}

	if req.Name != nil {
		room.Name = *req.Name
	}
	if req.Description != nil {
		room.Description = *req.Description
	}
	if req.PricePerNight != nil {
		if *req.PricePerNight <= 0 {
			return nil, errors.ErrInvalidParams.WithMessage("每晚价格必须大于0")
		}
		room.PricePerNight = utils.Round2(*req.PricePerNight)
	}
	if req.PriceSingle != nil {
		room.PriceSingle = req.PriceSingle
	}
	if req.PriceDouble != nil {
		room.PriceDouble = req.PriceDouble
	}
	if req.PriceTriple != nil {
		room.PriceTriple = req.PriceTriple
	}
	if req.MaxGuests != nil {
		room.MaxGuests = *req.MaxGuests
	}
	if req.TotalRooms != nil {
		if *req.TotalRooms < 0 {
			return nil, errors.ErrInvalidParams.WithMessage("房间总数不能为负")
		}
		room.TotalRooms = *req.TotalRooms
		if room.RoomsAvailable > room.TotalRooms {
			room.RoomsAvailable = room.TotalRooms
		}
	}
	if req.SizeSqm != nil {
		room.SizeSqm = req.SizeSqm
	}
	if req.BedType != nil {
		room.BedType = *req.BedType
	}
	if req.Amenities != nil {
		room.Amenities = req.Amenities
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

	if err := s.roomRepo.Update(ctx, room); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	metrics.GetMetrics().SetRoomsAvailable(room.Name, float64(room.RoomsAvailable))
	return room, nil
}

// SetRoomAvailability 人工修正可用房间数
func (s *ContentService) SetRoomAvailability(ctx context.Context, id int64, available int) (*models.Room, error) {
	room, err := s.getRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	if available < 0 || available > room.TotalRooms {
		return nil, errors.ErrAvailabilityExceed
	}

	if err := s.roomRepo.SetAvailability(ctx, id, available); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	room.RoomsAvailable = available

	metrics.GetMetrics().SetRoomsAvailable(room.Name, float64(available))
	logger.Info("可用房间数已人工修正",
		logger.RoomID(id),
		logger.Int("rooms_available", available),
	)
	return room, nil
}

// GetRoom 获取房型详情
func (s *ContentService) GetRoom(ctx context.Context, id int64) (*models.Room, error) {
	return s.getRoom(ctx, id)
}

// GetRoomBySlug 根据 slug 获取房型详情
func (s *ContentService) GetRoomBySlug(ctx context.Context, slug string) (*models.Room, error) {
	room, err := s.roomRepo.GetBySlug(ctx, slug)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrRoomNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return room, nil
}

// ListRooms 获取房型列表
func (s *ContentService) ListRooms(ctx context.Context, page, pageSize int, onlyActive bool) ([]*models.Room, int64, error) {
	p := utils.Pagination{Page: page, PageSize: pageSize}
	p.Normalize()
	rooms, total, err := s.roomRepo.List(ctx, p.GetOffset(), p.GetLimit(), onlyActive)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return rooms, total, nil
}

// DeleteRoom 删除房型
func (s *ContentService) DeleteRoom(ctx context.Context, id int64) error {
	if _, err := s.getRoom(ctx, id); err != nil {
		return err
	}
	if err := s.roomRepo.Delete(ctx, id); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	return nil
}

func (s *ContentService) getRoom(ctx context.Context, id int64) (*models.Room, error) {
	room, err := s.roomRepo.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrRoomNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return room, nil
}

// ==================== 图库管理 ====================

// CreateImageRequest 创建图片请求
type CreateImageRequest struct {
	Title     string `json:"title"`
	Category  string `json:"category"`
	ImagePath string `json:"image_path" binding:"required"`
	AltText   string `json:"alt_text"`
	SortOrder int    `json:"sort_order"`
}

// UpdateImageRequest 更新图片请求
type UpdateImageRequest struct {
	Title     *string `json:"title"`
	Category  *string `json:"category"`
	ImagePath *string `json:"image_path"`
	AltText   *string `json:"alt_text"`
	IsActive  *bool   `json:"is_active"`
	SortOrder *int    `json:"sort_order"`
}

// CreateImage 创建图库图片
func (s *ContentService) CreateImage(ctx context.Context, req *CreateImageRequest) (*models.GalleryImage, error) {
	image := &models.GalleryImage{
		Title:     req.Title,
		Category:  req.Category,
		ImagePath: req.ImagePath,
		AltText:   req.AltText,
		IsActive:  true,
		SortOrder: req.SortOrder,
	}
	if err := s.contentRepo.CreateImage(ctx, image); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return image, nil
}

// UpdateImage 更新图库图片
func (s *ContentService) UpdateImage(ctx context.Context, id int64, req *UpdateImageRequest) (*models.GalleryImage, error) {
	image, err := s.contentRepo.GetImageByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrImageNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	if req.Title != nil {
		image.Title = *req.Title
	}
	if req.Category != nil {
		image.Category = *req.Category
	}
	if req.ImagePath != nil {
		image.ImagePath = *req.ImagePath
	}
	if req.AltText != nil {
		image.AltText = *req.AltText
	}
	if req.IsActive != nil {
		image.IsActive = *req.IsActive
	}
	if req.SortOrder != nil {
		image.SortOrder = *req.SortOrder
	}

	if err := s.contentRepo.UpdateImage(ctx, image); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return image, nil
}

// ListImages 获取图库图片列表
func (s *ContentService) ListImages(ctx context.Context, page, pageSize int, category string, onlyActive bool) ([]*models.GalleryImage, int64, error) {
	p := utils.Pagination{Page: page, PageSize: pageSize}
	p.Normalize()
	images, total, err := s.contentRepo.ListImages(ctx, p.GetOffset(), p.GetLimit(), category, onlyActive)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return images, total, nil
}

// DeleteImage 删除图库图片
func (s *ContentService) DeleteImage(ctx context.Context, id int64) error {
	if _, err := s.contentRepo.GetImageByID(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrImageNotFound
		}
		return errors.ErrDatabaseError.WithError(err)
	}
	return s.contentRepo.DeleteImage(ctx, id)
}

// ==================== 静态页面管理 ====================

// CreatePageRequest 创建静态页面请求
type CreatePageRequest struct {
	Slug            string  `json:"slug"`
	Title           string  `json:"title" binding:"required"`
	Content         string  `json:"content"`
	MetaDescription *string `json:"meta_description"`
}

// UpdatePageRequest 更新静态页面请求
type UpdatePageRequest struct {
	Slug            *string `json:"slug"`
	Title           *string `json:"title"`
	Content         *string `json:"content"`
	MetaDescription *string `json:"meta_description"`
	IsActive        *bool   `json:"is_active"`
}

// CreatePage 创建静态页面
func (s *ContentService) CreatePage(ctx context.Context, adminID int64, req *CreatePageRequest) (*models.StaticPage, error) {
	slug := req.Slug
	if slug == "" {
		slug = utils.Slugify(req.Title)
	}

	exists, err := s.contentRepo.ExistsPageBySlug(ctx, slug, 0)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if exists {
		return nil, errors.ErrPageSlugExists
	}

	page := &models.StaticPage{
		Slug:            slug,
		Title:           req.Title,
		Content:         req.Content,
		MetaDescription: req.MetaDescription,
		IsActive:        true,
		UpdatedBy:       &adminID,
	}
	if err := s.contentRepo.CreatePage(ctx, page); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return page, nil
}

// UpdatePage 更新静态页面
func (s *ContentService) UpdatePage(ctx context.Context, adminID, id int64, req *UpdatePageRequest) (*models.StaticPage, error) {
	page, err := s.contentRepo.GetPageByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrPageNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	if req.Slug != nil && *req.Slug != page.Slug {
		exists, err := s.contentRepo.ExistsPageBySlug(ctx, *req.Slug, id)
		if err != nil {
			return nil, errors.ErrDatabaseError.WithError(err)
		}
		if exists {
			return nil, errors.ErrPageSlugExists
		}
		page.Slug = *req.Slug
	}

	if req.Title != nil {
		page.Title = *req.Title
	}
	if req.Content != nil {
		page.Content = *req.Content
	}
	if req.MetaDescription != nil {
		page.MetaDescription = req.MetaDescription
	}
	if req.IsActive != nil {
		page.IsActive = *req.IsActive
	}
	page.UpdatedBy = &adminID

	if err := s.contentRepo.UpdatePage(ctx, page); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return page, nil
}

// GetPageBySlug 根据 slug 获取静态页面
func (s *ContentService) GetPageBySlug(ctx context.Context, slug string) (*models.StaticPage, error) {
	page, err := s.contentRepo.GetPageBySlug(ctx, slug)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrPageNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return page, nil
}

// ListPages 获取静态页面列表
func (s *ContentService) ListPages(ctx context.Context, onlyActive bool) ([]*models.StaticPage, error) {
	pages, err := s.contentRepo.ListPages(ctx, onlyActive)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return pages, nil
}

// DeletePage 删除静态页面
func (s *ContentService) DeletePage(ctx context.Context, id int64) error {
	if _, err := s.contentRepo.GetPageByID(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrPageNotFound
		}
		return errors.ErrDatabaseError.WithError(err)
	}
	return s.contentRepo.DeletePage(ctx, id)
}
