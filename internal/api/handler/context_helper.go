package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sidsagwekar16/construct-sync-backend-sub001/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	return mustGetString(c, "user_id")
}

// MustGetCompanyID 从 Gin 上下文中安全提取 company_id。
func MustGetCompanyID(c *gin.Context) (string, bool) {
	return mustGetString(c, "company_id")
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetTokenMeta 提取 JWT ID 与过期时间（登出加黑名单用）
func MustGetTokenMeta(c *gin.Context) (jti string, expiresAt time.Time, ok bool) {
	jti, ok = mustGetString(c, "token_jti")
	if !ok {
		return "", time.Time{}, false
	}
	v, exists := c.Get("token_expires_at")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", time.Time{}, false
	}
	exp, castOK := v.(time.Time)
	if !castOK {
		response.Unauthorized(c, 10002, "未认证")
		return "", time.Time{}, false
	}
	return jti, exp, true
}
