package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sidsagwekar16/construct-sync-backend-sub001/config"
	"github.com/sidsagwekar16/construct-sync-backend-sub001/internal/api/handler"
	"github.com/sidsagwekar16/construct-sync-backend-sub001/internal/api/middleware"
	"github.com/sidsagwekar16/construct-sync-backend-sub001/pkg/jwt"
	"github.com/sidsagwekar16/construct-sync-backend-sub001/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20)) // 1MB

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)

			// 考勤打卡模块
			// 签到/签退仅限现场角色；限流应对闸机设备异常重试，窗口 30 次/分钟
			checkIns := authorized.Group("/check-ins")
			{
				fieldOnly := middleware.RoleAuth("worker", "foreman")
				checkIns.POST("/check-in", fieldOnly, middleware.RateLimit(rdb, 30, time.Minute), h.Attendance.CheckIn)
				checkIns.POST("/check-out", fieldOnly, middleware.RateLimit(rdb, 30, time.Minute), h.Attendance.CheckOut)
				checkIns.GET("", h.Attendance.History)
				checkIns.GET("/summary", h.Attendance.BillableSummary)
			}
		}
	}

	return r
}
