package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/dto"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/service"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/pkg/response"
)

// DashboardHandler 管理端看板与审计日志
type DashboardHandler struct {
	dashboardSvc service.DashboardService
	auditSvc     service.AuditService
}

// NewDashboardHandler 创建 DashboardHandler
func NewDashboardHandler(dashboardSvc service.DashboardService, auditSvc service.AuditService) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc, auditSvc: auditSvc}
}

// Dashboard 提交统计
// GET /api/v1/admin/dashboard?week=3
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.DashboardRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.dashboardSvc.Stats(c.Request.Context(), actor, req.Week)
	if err != nil {
		failWith(c, err)
		return
	}
	response.OK(c, result)
}

// ListAuditLogs 审计日志
// GET /api/v1/admin/audit-logs
func (h *DashboardHandler) ListAuditLogs(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.AuditLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	logs, total, err := h.auditSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		failWith(c, err)
		return
	}
	response.OKPage(c, logs, total, req.GetPage(), req.GetPageSize())
}
