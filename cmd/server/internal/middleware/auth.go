package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/houzhh15/taskable/pkg/auth"
)

// Context keys set by BearerAuth.
const (
	AccessTokenKey = "access_token"
	UserKey        = "user"
)

// expiryLeeway 提前视为过期，避免转发后在上游过期
const expiryLeeway = 10 * time.Second

// BearerAuth 要求 Authorization: Bearer <token>
// JWT 令牌会检查过期时间并记录用户；不透明令牌直接交给 Usable 验证
func BearerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized",
				"details": "No access token. Send Authorization: Bearer <token>.",
				"code":    "NO_ACCESS_TOKEN",
			})
			return
		}

		if info, err := auth.Inspect(token); err == nil {
			if info.Expired(time.Now(), expiryLeeway) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":   "Unauthorized",
					"details": "Access token expired. Sign in again to refresh your authentication.",
					"code":    "TOKEN_EXPIRED",
				})
				return
			}
			user := info.Username
			if user == "" {
				user = info.Subject
			}
			c.Set(UserKey, user)
		}

		c.Set(AccessTokenKey, token)
		c.Next()
	}
}

// AccessToken 返回 BearerAuth 保存的令牌
func AccessToken(c *gin.Context) string {
	return c.GetString(AccessTokenKey)
}
