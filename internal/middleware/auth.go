// Package middleware 提供 Gin 中间件
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-admin-backend/internal/common/errors"
	"github.com/dumeirei/hotel-admin-backend/internal/common/jwt"
	"github.com/dumeirei/hotel-admin-backend/internal/common/response"
)

// 上下文键
const (
	ContextKeyAdminID  = "admin_id"
	ContextKeyUsername = "username"
	ContextKeyRole     = "role"
	ContextKeyClaims   = "claims"
)

// AdminAuth 管理员认证中间件
// 校验失败直接返回 401 并终止请求
func AdminAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			abortWithError(c, http.StatusUnauthorized, errors.ErrUnauthorized)
			return
		}

		claims, err := jwtManager.ParseToken(token)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				abortWithError(c, http.StatusUnauthorized, errors.ErrTokenExpired)
			} else {
				abortWithError(c, http.StatusUnauthorized, errors.ErrTokenInvalid)
			}
			return
		}

		c.Set(ContextKeyAdminID, claims.AdminID)
		c.Set(ContextKeyUsername, claims.Username)
		c.Set(ContextKeyRole, claims.Role)
		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// OptionalAuth 可选认证中间件
// 有令牌就解析并注入上下文，没有或解析失败照常放行
func OptionalAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token != "" {
			if claims, err := jwtManager.ParseToken(token); err == nil {
				c.Set(ContextKeyAdminID, claims.AdminID)
				c.Set(ContextKeyUsername, claims.Username)
				c.Set(ContextKeyRole, claims.Role)
				c.Set(ContextKeyClaims, claims)
			}
		}
		c.Next()
	}
}

// abortWithError 以指定 HTTP 状态返回业务错误码并终止请求
func abortWithError(c *gin.Context, status int, appErr *errors.AppError) {
	c.AbortWithStatusJSON(status, response.Response{
		Code:    appErr.Code,
		Message: appErr.Message,
	})
}

// extractToken 提取令牌，优先级: Header > Query > Cookie
func extractToken(c *gin.Context) string {
	// Authorization: Bearer xxx
	auth := c.GetHeader("Authorization")
	if auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	if token := c.Query("token"); token != "" {
		return token
	}

	if token, err := c.Cookie("access_token"); err == nil && token != "" {
		return token
	}
	return ""
}

// GetAdminID 从上下文获取当前管理员 ID，未登录返回 0
func GetAdminID(c *gin.Context) int64 {
	value, exists := c.Get(ContextKeyAdminID)
	if !exists {
		return 0
	}
	id, ok := value.(int64)
	if !ok {
		return 0
	}
	return id
}

// GetUsername 从上下文获取当前管理员用户名
func GetUsername(c *gin.Context) string {
	value, exists := c.Get(ContextKeyUsername)
	if !exists {
		return ""
	}
	username, _ := value.(string)
	return username
}

// GetRole 从上下文获取当前管理员角色
func GetRole(c *gin.Context) string {
	value, exists := c.Get(ContextKeyRole)
	if !exists {
		return ""
	}
	role, _ := value.(string)
	return role
}

// GetClaims 从上下文获取 JWT 声明
func GetClaims(c *gin.Context) *jwt.Claims {
	value, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, _ := value.(*jwt.Claims)
	return claims
}

// IsLoggedIn 是否已登录
func IsLoggedIn(c *gin.Context) bool {
	return GetAdminID(c) > 0
}
