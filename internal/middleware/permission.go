package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-admin-backend/internal/common/errors"
	"github.com/dumeirei/hotel-admin-backend/internal/models"
)

// RequireRoles 角色校验中间件，需在 AdminAuth 之后挂载
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		if !IsLoggedIn(c) {
			abortWithError(c, http.StatusUnauthorized, errors.ErrUnauthorized)
			return
		}
		if _, ok := allowed[GetRole(c)]; !ok {
			abortWithError(c, http.StatusForbidden, errors.ErrPermissionDenied)
			return
		}
		c.Next()
	}
}

// RequireSuperAdmin 仅超级管理员可访问
func RequireSuperAdmin() gin.HandlerFunc {
	return RequireRoles(models.AdminRoleSuper)
}
