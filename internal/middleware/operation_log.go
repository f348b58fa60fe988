package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-admin-backend/internal/common/logger"
	"github.com/dumeirei/hotel-admin-backend/internal/models"
	"github.com/dumeirei/hotel-admin-backend/internal/repository"
)

// 操作日志请求体截断长度
const maxOperationBodySize = 2000

// OperationLog 操作审计中间件，记录登录管理员的写操作
// 只记录 POST/PUT/PATCH/DELETE，读接口不落库
func OperationLog(adminRepo *repository.AdminRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			c.Next()
			return
		}

		var body string
		if c.Request.Body != nil {
			raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxOperationBodySize+1))
			if err == nil {
				// 读走的部分拼回去，超限的尾巴仍留在原 Body 里
				c.Request.Body = struct {
					io.Reader
					io.Closer
				}{io.MultiReader(bytes.NewReader(raw), c.Request.Body), c.Request.Body}
				if len(raw) > maxOperationBodySize {
					raw = raw[:maxOperationBodySize]
				}
				body = string(raw)
			}
		}

		start := time.Now()
		c.Next()

		adminID := GetAdminID(c)
		if adminID == 0 {
			return
		}

		entry := &models.OperationLog{
			AdminID:    adminID,
			Method:     c.Request.Method,
			Path:       c.FullPath(),
			Action:     operationAction(c.Request.Method, c.FullPath()),
			StatusCode: c.Writer.Status(),
			IP:         c.ClientIP(),
			CostMs:     time.Since(start).Milliseconds(),
		}
		if entry.Path == "" {
			entry.Path = c.Request.URL.Path
		}
		if body != "" {
			entry.RequestBody = &body
		}

		// 请求上下文可能已取消，审计写入用独立超时
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := adminRepo.CreateOperationLog(ctx, entry); err != nil {
			logger.Warn("操作日志写入失败",
				logger.AdminID(adminID),
				logger.String("path", entry.Path),
				logger.Err(err),
			)
		}
	}
}

// operationAction 从方法和路由推导操作名，如 "POST /api/admin/bookings" -> "bookings:create"
func operationAction(method, path string) string {
	resource := ""
	for _, segment := range strings.Split(path, "/") {
		if segment == "" || strings.HasPrefix(segment, ":") || strings.HasPrefix(segment, "*") {
			continue
		}
		if segment == "api" || segment == "admin" {
			continue
		}
		resource = segment
	}
	if resource == "" {
		resource = "unknown"
	}

	var verb string
	switch method {
	case http.MethodPost:
		verb = "create"
	case http.MethodPut, http.MethodPatch:
		verb = "update"
	case http.MethodDelete:
		verb = "delete"
	default:
		verb = strings.ToLower(method)
	}
	return resource + ":" + verb
}
