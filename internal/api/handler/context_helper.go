package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/api/middleware"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/model"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/service"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/pkg/response"
)

// MustGetActor 从 Gin 上下文中提取当前调用者。
// 如果 JWT 中间件未正确注入用户信息，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetActor(c *gin.Context) (service.Actor, bool) {
	userID := c.GetString(middleware.CtxUserID)
	role, err := model.ParseRole(c.GetString(middleware.CtxRole))
	if userID == "" || err != nil {
		response.Unauthorized(c, 10002, "未认证")
		return service.Actor{}, false
	}
	return service.Actor{
		UserID:   userID,
		Username: c.GetString(middleware.CtxUsername),
		Role:     role,
	}, true
}

// tokenInfo 当前 Access Token 的 JTI 与过期时间（登出时加入黑名单）
func tokenInfo(c *gin.Context) (string, time.Time) {
	exp, _ := c.Get(middleware.CtxTokenExp)
	t, _ := exp.(time.Time)
	return c.GetString(middleware.CtxJTI), t
}

// weekParam 解析路径中的周次；非数字时写入 400
// 取值范围由 service 层校验
func weekParam(c *gin.Context, name string) (int, bool) {
	week, err := strconv.Atoi(c.Param(name))
	if err != nil {
		response.BadRequest(c, 10001, "周次必须为数字")
		return 0, false
	}
	return week, true
}

// idParam 解析路径中的 UUID；格式非法的引用按不存在处理，写入 404
func idParam(c *gin.Context, name string, code int, message string) (string, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.NotFound(c, code, message)
		return "", false
	}
	return id.String(), true
}

// failWith 未分类错误按错误类别兜底，仍无法分类时返回 500
func failWith(c *gin.Context, err error) {
	if !response.FromError(c, err) {
		response.InternalError(c)
	}
}
