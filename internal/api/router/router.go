package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/config"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/api/handler"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/api/middleware"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/api/validation"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/model"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/pkg/jwt"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// db 仅用于健康检查，可为 nil
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	if err := validation.Register(); err != nil {
		logger.Fatal("注册校验规则失败", zap.Error(err))
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders(strings.HasPrefix(cfg.Server.BaseURL, "https://")))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimitBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(c.Request.Context())
			}
			if err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	admin := middleware.RoleAuth(string(model.RoleAdmin))
	student := middleware.RoleAuth(string(model.RoleStudent))

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, "login", cfg.RateLimit.LoginPerMinute, time.Minute), h.Auth.Login)
			auth.POST("/register", middleware.RateLimit(rdb, "register", cfg.RateLimit.RegisterPerMinute, time.Minute), h.Auth.Register)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)

			// 编辑权限（只读）
			authorized.GET("/edit-permission", h.EditPermission.Get)

			// 周进度（学生）
			submissions := authorized.Group("/submissions", student)
			{
				submissions.GET("/available-weeks", h.Submission.AvailableWeeks)
				submissions.GET("/me", h.Submission.ListMine)
				submissions.POST("", h.Submission.Submit)
			}

			// 消息模块
			messages := authorized.Group("/messages")
			{
				messages.GET("/group", h.Message.ListGroup)
				messages.POST("/group", h.Message.PostGroup)
				messages.PUT("/group/:id", h.Message.EditGroup)
				messages.DELETE("/group/:id", h.Message.DeleteGroup)

				messages.GET("/contacts", h.Message.ListContacts)
				messages.GET("/private/:userId", h.Message.ListPrivate)
				messages.POST("/private/:userId", h.Message.PostPrivate)
				messages.PUT("/private/msg/:id", h.Message.EditPrivate)
				messages.DELETE("/private/msg/:id", h.Message.DeletePrivate)

				messages.POST("/hide", h.Message.Hide)
				messages.DELETE("/hide", h.Message.Unhide)
				messages.DELETE("/all", admin, h.Message.DeleteAll)
			}

			// 管理端
			adminGroup := authorized.Group("/admin", admin)
			{
				adminGroup.GET("/edit-permission", h.EditPermission.Get)
				adminGroup.PUT("/edit-permission", h.EditPermission.Set)

				adminGroup.GET("/dashboard", h.Dashboard.Dashboard)
				adminGroup.GET("/audit-logs", h.Dashboard.ListAuditLogs)
				adminGroup.GET("/export/updates", h.Export.ExportUpdates)

				adminGroup.GET("/updates", h.Submission.ListAll)
				adminGroup.DELETE("/updates", h.Submission.ClearAll)
				adminGroup.DELETE("/updates/weeks/:week", h.Submission.ClearWeekForAll)

				users := adminGroup.Group("/users")
				{
					users.GET("", h.User.ListUsers)
					users.POST("", h.User.CreateUser)
					users.POST("/import", h.User.ImportUsers)
					users.GET("/:id", h.User.GetUser)
					users.PUT("/:id", h.User.UpdateUser)
					users.DELETE("/:id", h.User.DeleteUser)
					users.POST("/:id/reset-password", h.User.ResetPassword)

					users.GET("/:id/updates", h.Submission.ListByUser)
					users.DELETE("/:id/updates", h.Submission.ClearUser)
					users.PUT("/:id/updates/:week", h.Submission.AdminEdit)
					users.DELETE("/:id/updates/:week", h.Submission.ClearWeekForUser)
				}
			}
		}
	}

	return r
}
