package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/service"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportUpdates 导出周进度
// GET /api/v1/admin/export/updates?user_id=xxx（user_id 为空时导出全部学生）
func (h *ExportHandler) ExportUpdates(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	userID := c.Query("user_id")
	if userID != "" {
		id, err := uuid.Parse(userID)
		if err != nil {
			response.NotFound(c, 20001, "用户不存在")
			return
		}
		userID = id.String()
	}

	buf, filename, err := h.exportSvc.ExportUpdates(c.Request.Context(), actor, userID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoData):
		response.NotFound(c, 16101, "暂无可导出的周进度")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 20001, "用户不存在")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		failWith(c, err)
	}
}
