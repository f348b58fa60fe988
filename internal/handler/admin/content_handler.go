package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-admin-backend/internal/common/handler"
	"github.com/dumeirei/hotel-admin-backend/internal/common/response"
	contentService "github.com/dumeirei/hotel-admin-backend/internal/service/content"
)

// ContentHandler 房型与内容管理处理器
type ContentHandler struct {
	contentService *contentService.ContentService
}

// NewContentHandler 创建内容管理处理器
func NewContentHandler(contentSvc *contentService.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentSvc}
}

// RegisterRoutes 注册路由
func (h *ContentHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/rooms", h.ListRooms)
	r.POST("/rooms", h.CreateRoom)
	r.GET("/rooms/slug/:slug", h.GetRoomBySlug)
	r.GET("/rooms/:id", h.GetRoom)
	r.PUT("/rooms/:id", h.UpdateRoom)
	r.PUT("/rooms/:id/availability", h.SetRoomAvailability)
	r.DELETE("/rooms/:id", h.DeleteRoom)

	r.GET("/gallery", h.ListImages)
	r.POST("/gallery", h.CreateImage)
	r.PUT("/gallery/:id", h.UpdateImage)
	r.DELETE("/gallery/:id", h.DeleteImage)

	r.GET("/pages", h.ListPages)
	r.POST("/pages", h.CreatePage)
	r.GET("/pages/slug/:slug", h.GetPageBySlug)
	r.PUT("/pages/:id", h.UpdatePage)
	r.DELETE("/pages/:id", h.DeletePage)
}

// CreateRoom 创建房型
// @Summary 创建房型
// @Tags 房型管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body contentService.CreateRoomRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.Room}
// @Router /api/admin/rooms [post]
func (h *ContentHandler) CreateRoom(c *gin.Context) {
	var req contentService.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	room, err := h.contentService.CreateRoom(c.Request.Context(), &req)
	handler.MustSucceed(c, err, room)
}

// GetRoom 获取房型详情
// @Summary 获取房型详情
// @Tags 房型管理
// @Produce json
// @Security Bearer
// @Param id path int true "房型ID"
// @Success 200 {object} response.Response{data=models.Room}
// @Router /api/admin/rooms/{id} [get]
func (h *ContentHandler) GetRoom(c *gin.Context) {
	id, ok := handler.ParseID(c, "房型")
	if !ok {
		return
	}

	room, err := h.contentService.GetRoom(c.Request.Context(), id)
	handler.MustSucceed(c, err, room)
}

// GetRoomBySlug 按标识获取房型
// @Summary 按标识获取房型
// @Tags 房型管理
// @Produce json
// @Security Bearer
// @Param slug path string true "房型标识"
// @Success 200 {object} response.Response{data=models.Room}
// @Router /api/admin/rooms/slug/{slug} [get]
func (h *ContentHandler) GetRoomBySlug(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		response.BadRequest(c, "房型标识不能为空")
		return
	}

	room, err := h.contentService.GetRoomBySlug(c.Request.Context(), slug)
	handler.MustSucceed(c, err, room)
}

// ListRooms 获取房型列表
// @Summary 获取房型列表
// @Tags 房型管理
// @Produce json
// @Security Bearer
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Param only_active query bool false "仅上架"
// @Success 200 {object} response.Response{data=[]models.Room}
// @Router /api/admin/rooms [get]
func (h *ContentHandler) ListRooms(c *gin.Context) {
	p := handler.BindPagination(c)
	onlyActive := c.Query("only_active") == "true"

	rooms, total, err := h.contentService.ListRooms(c.Request.Context(), p.Page, p.PageSize, onlyActive)
	handler.MustSucceedPage(c, err, rooms, total, p.Page, p.PageSize)
}

// UpdateRoom 更新房型
// @Summary 更新房型
// @Tags 房型管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "房型ID"
// @Param request body contentService.UpdateRoomRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.Room}
// @Router /api/admin/rooms/{id} [put]
func (h *ContentHandler) UpdateRoom(c *gin.Context) {
	id, ok := handler.ParseID(c, "房型")
	if !ok {
		return
	}

	var req contentService.UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	room, err := h.contentService.UpdateRoom(c.Request.Context(), id, &req)
	handler.MustSucceed(c, err, room)
}

// SetAvailabilityRequest 设置可用房间数请求
type SetAvailabilityRequest struct {
	RoomsAvailable *int `json:"rooms_available" binding:"required"`
}

// SetRoomAvailability 设置可用房间数
// @Summary 设置可用房间数
// @Tags 房型管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "房型ID"
// @Param request body SetAvailabilityRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.Room}
// @Router /api/admin/rooms/{id}/availability [put]
func (h *ContentHandler) SetRoomAvailability(c *gin.Context) {
	id, ok := handler.ParseID(c, "房型")
	if !ok {
		return
	}

	var req SetAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	room, err := h.contentService.SetRoomAvailability(c.Request.Context(), id, *req.RoomsAvailable)
	handler.MustSucceed(c, err, room)
}

// DeleteRoom 下架房型
// @Summary 下架房型
// @Tags 房型管理
// @Produce json
// @Security Bearer
// @Param id path int true "房型ID"
// @Success 200 {object} response.Response
// @Router /api/admin/rooms/{id} [delete]
func (h *ContentHandler) DeleteRoom(c *gin.Context) {
	id, ok := handler.ParseID(c, "房型")
	if !ok {
		return
	}

	handler.MustSucceed(c, h.contentService.DeleteRoom(c.Request.Context(), id), nil)
}

// CreateImage 添加图库图片
// @Summary 添加图库图片
// @Tags 内容管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body contentService.CreateImageRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.GalleryImage}
// @Router /api/admin/gallery [post]
func (h *ContentHandler) CreateImage(c *gin.Context) {
	var req contentService.CreateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	image, err := h.contentService.CreateImage(c.Request.Context(), &req)
	handler.MustSucceed(c, err, image)
}

// ListImages 获取图库列表
// @Summary 获取图库列表
// @Tags 内容管理
// @Produce json
// @Security Bearer
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Param category query string false "分类"
// @Param only_active query bool false "仅展示中"
// @Success 200 {object} response.Response{data=[]models.GalleryImage}
// @Router /api/admin/gallery [get]
func (h *ContentHandler) ListImages(c *gin.Context) {
	p := handler.BindPagination(c)
	category := c.Query("category")
	onlyActive := c.Query("only_active") == "true"

	images, total, err := h.contentService.ListImages(c.Request.Context(), p.Page, p.PageSize, category, onlyActive)
	handler.MustSucceedPage(c, err, images, total, p.Page, p.PageSize)
}

// UpdateImage 更新图库图片
// @Summary 更新图库图片
// @Tags 内容管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "图片ID"
// @Param request body contentService.UpdateImageRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.GalleryImage}
// @Router /api/admin/gallery/{id} [put]
func (h *ContentHandler) UpdateImage(c *gin.Context) {
	id, ok := handler.ParseID(c, "图片")
	if !ok {
		return
	}

	var req contentService.UpdateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	image, err := h.contentService.UpdateImage(c.Request.Context(), id, &req)
	handler.MustSucceed(c, err, image)
}

// DeleteImage 删除图库图片
// @Summary 删除图库图片
// @Tags 内容管理
// @Produce json
// @Security Bearer
// @Param id path int true "图片ID"
// @Success 200 {object} response.Response
// @Router /api/admin/gallery/{id} [delete]
func (h *ContentHandler) DeleteImage(c *gin.Context) {
	id, ok := handler.ParseID(c, "图片")
	if !ok {
		return
	}

	handler.MustSucceed(c, h.contentService.DeleteImage(c.Request.Context(), id), nil)
}

// CreatePage 创建静态页面
// @Summary 创建静态页面
// @Tags 内容管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body contentService.CreatePageRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.StaticPage}
// @Router /api/admin/pages [post]
func (h *ContentHandler) CreatePage(c *gin.Context) {
	adminID, ok := handler.RequireAdminID(c)
	if !ok {
		return
	}

	var req contentService.CreatePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	page, err := h.contentService.CreatePage(c.Request.Context(), adminID, &req)
	handler.MustSucceed(c, err, page)
}

// GetPageBySlug 按标识获取页面
// @Summary 按标识获取页面
// @Tags 内容管理
// @Produce json
// @Security Bearer
// @Param slug path string true "页面标识"
// @Success 200 {object} response.Response{data=models.StaticPage}
// @Router /api/admin/pages/slug/{slug} [get]
func (h *ContentHandler) GetPageBySlug(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		response.BadRequest(c, "页面标识不能为空")
		return
	}

	page, err := h.contentService.GetPageBySlug(c.Request.Context(), slug)
	handler.MustSucceed(c, err, page)
}

// ListPages 获取页面列表
// @Summary 获取页面列表
// @Tags 内容管理
// @Produce json
// @Security Bearer
// @Param only_active query bool false "仅发布"
// @Success 200 {object} response.Response{data=[]models.StaticPage}
// @Router /api/admin/pages [get]
func (h *ContentHandler) ListPages(c *gin.Context) {
	onlyActive := c.Query("only_active") == "true"
	pages, err := h.contentService.ListPages(c.Request.Context(), onlyActive)
	handler.MustSucceed(c, err, pages)
}

// UpdatePage 更新静态页面
// @Summary 更新静态页面
// @Tags 内容管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "页面ID"
// @Param request body contentService.UpdatePageRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.StaticPage}
// @Router /api/admin/pages/{id} [put]
func (h *ContentHandler) UpdatePage(c *gin.Context) {
	adminID, id, ok := handler.RequireAdminAndParseID(c, "页面")
	if !ok {
		return
	}

	var req contentService.UpdatePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	page, err := h.contentService.UpdatePage(c.Request.Context(), adminID, id, &req)
	handler.MustSucceed(c, err, page)
}

// DeletePage 删除静态页面
// @Summary 删除静态页面
// @Tags 内容管理
// @Produce json
// @Security Bearer
// @Param id path int true "页面ID"
// @Success 200 {object} response.Response
// @Router /api/admin/pages/{id} [delete]
func (h *ContentHandler) DeletePage(c *gin.Context) {
	id, ok := handler.ParseID(c, "页面")
	if !ok {
		return
	}

	handler.MustSucceed(c, h.contentService.DeletePage(c.Request.Context(), id), nil)
}
