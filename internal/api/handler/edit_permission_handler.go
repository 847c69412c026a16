package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/dto"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/service"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/pkg/response"
)

// EditPermissionHandler 编辑权限开关 HTTP 处理器
type EditPermissionHandler struct {
	editSvc service.EditPermissionService
}

// NewEditPermissionHandler 创建 EditPermissionHandler
func NewEditPermissionHandler(editSvc service.EditPermissionService) *EditPermissionHandler {
	return &EditPermissionHandler{editSvc: editSvc}
}

// Get 查询编辑权限（所有登录用户可见）
// GET /api/v1/edit-permission
func (h *EditPermissionHandler) Get(c *gin.Context) {
	result, err := h.editSvc.Get(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, result)
}

// Set 切换编辑权限
// PUT /api/v1/admin/edit-permission
func (h *EditPermissionHandler) Set(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.SetEditPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.editSvc.Set(c.Request.Context(), actor, *req.AllowEdits)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *EditPermissionHandler) handleError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrSystemConfigNotFound) {
		response.NotFound(c, 17001, "系统配置未初始化")
		return
	}
	failWith(c, err)
}
