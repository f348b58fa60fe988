package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-admin-backend/internal/common/cache"
	"github.com/dumeirei/hotel-admin-backend/internal/common/errors"
	"github.com/dumeirei/hotel-admin-backend/internal/common/logger"
)

// RateLimitOptions 限流中间件选项
type RateLimitOptions struct {
	// KeyPrefix 限流维度前缀，拼在 Redis 键里区分不同限流器
	KeyPrefix string
	// Limit 窗口内允许的最大请求数
	Limit int64
	// Window 固定窗口长度
	Window time.Duration
	// KeyFunc 提取限流主体，默认按客户端 IP
	KeyFunc func(c *gin.Context) string
}

// RateLimit 基于 Redis 固定窗口的限流中间件
// Redis 不可用时放行，限流是保护手段而非强一致约束
func RateLimit(opts RateLimitOptions) gin.HandlerFunc {
	if opts.KeyFunc == nil {
		opts.KeyFunc = func(c *gin.Context) string {
			return c.ClientIP()
		}
	}
	if opts.Window <= 0 {
		opts.Window = time.Minute
	}

	return func(c *gin.Context) {
		if cache.GetClient() == nil {
			c.Next()
			return
		}

		subject := opts.KeyFunc(c)
		if subject == "" {
			c.Next()
			return
		}

		window := time.Now().Unix() / int64(opts.Window.Seconds())
		key := cache.BuildKey(cache.KeyPrefixRateLimit, opts.KeyPrefix, subject, fmt.Sprintf("%d", window))

		count, err := cache.Incr(c.Request.Context(), key)
		if err != nil {
			logger.Warn("限流计数失败", logger.String("key", key), logger.Err(err))
			c.Next()
			return
		}
		if count == 1 {
			if err := cache.Expire(c.Request.Context(), key, opts.Window); err != nil {
				logger.Warn("限流键过期设置失败", logger.String("key", key), logger.Err(err))
			}
		}

		remaining := opts.Limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.FormatInt(opts.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > opts.Limit {
			abortWithError(c, http.StatusTooManyRequests, errors.ErrRateLimitExceed)
			return
		}
		c.Next()
	}
}

// IPRateLimit 按客户端 IP 限流
func IPRateLimit(limit int64, window time.Duration) gin.HandlerFunc {
	return RateLimit(RateLimitOptions{
		KeyPrefix: "ip",
		Limit:     limit,
		Window:    window,
	})
}

// AdminRateLimit 按登录管理员限流，未登录请求回落到 IP 维度
func AdminRateLimit(limit int64, window time.Duration) gin.HandlerFunc {
	return RateLimit(RateLimitOptions{
		KeyPrefix: "admin",
		Limit:     limit,
		Window:    window,
		KeyFunc: func(c *gin.Context) string {
			if adminID := GetAdminID(c); adminID > 0 {
				return strconv.FormatInt(adminID, 10)
			}
			return c.ClientIP()
		},
	})
}

// LoginRateLimit 登录接口限流，按 IP 收紧防止口令爆破
func LoginRateLimit() gin.HandlerFunc {
	return RateLimit(RateLimitOptions{
		KeyPrefix: "login",
		Limit:     10,
		Window:    time.Minute,
	})
}
