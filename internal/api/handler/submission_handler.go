package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/dto"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/service"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/pkg/response"
)

// SubmissionHandler 周进度 HTTP 处理器
type SubmissionHandler struct {
	submissionSvc service.SubmissionService
}

// NewSubmissionHandler 创建 SubmissionHandler
func NewSubmissionHandler(submissionSvc service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionSvc: submissionSvc}
}

// ────────────────────── 学生 ──────────────────────

// AvailableWeeks 可提交的周次
// GET /api/v1/submissions/available-weeks
func (h *SubmissionHandler) AvailableWeeks(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.submissionSvc.ListAvailableWeeks(c.Request.Context(), actor)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OK(c, result)
}

// ListMine 我的全部提交
// GET /api/v1/submissions/me
func (h *SubmissionHandler) ListMine(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	list, err := h.submissionSvc.ListMine(c.Request.Context(), actor)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// Submit 提交或更新周进度
// POST /api/v1/submissions
func (h *SubmissionHandler) Submit(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.SubmitUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.submissionSvc.SubmitOrUpdate(c.Request.Context(), actor, req.Week, req.Content)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	if result.Created {
		response.Created(c, result)
		return
	}
	response.OK(c, result)
}

// ────────────────────── 管理员 ──────────────────────

// ListAll 全部学生的提交（可按周过滤）
// GET /api/v1/admin/updates?week=3
func (h *SubmissionHandler) ListAll(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	var week *int
	if req.Week != 0 {
		week = &req.Week
	}

	list, err := h.submissionSvc.ListAll(c.Request.Context(), actor, week)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// ListByUser 指定学生的提交
// GET /api/v1/admin/users/:id/updates
func (h *SubmissionHandler) ListByUser(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	userID, ok := idParam(c, "id", 20001, "用户不存在")
	if !ok {
		return
	}

	list, err := h.submissionSvc.ListByUser(c.Request.Context(), actor, userID)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// AdminEdit 修改学生某周的提交
// PUT /api/v1/admin/users/:id/updates/:week
func (h *SubmissionHandler) AdminEdit(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	week, ok := weekParam(c, "week")
	if !ok {
		return
	}

	userID, ok := idParam(c, "id", 20001, "用户不存在")
	if !ok {
		return
	}

	var req dto.AdminEditUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.submissionSvc.AdminEdit(c.Request.Context(), actor, userID, week, req.Content)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OK(c, result)
}

// ClearWeekForUser 清空学生某周
// DELETE /api/v1/admin/users/:id/updates/:week
func (h *SubmissionHandler) ClearWeekForUser(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	week, ok := weekParam(c, "week")
	if !ok {
		return
	}

	userID, ok := idParam(c, "id", 20001, "用户不存在")
	if !ok {
		return
	}

	n, err := h.submissionSvc.ClearWeekForUser(c.Request.Context(), actor, userID, week)
	h.respondCleared(c, n, err)
}

// ClearUser 清空学生全部周
// DELETE /api/v1/admin/users/:id/updates
func (h *SubmissionHandler) ClearUser(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	userID, ok := idParam(c, "id", 20001, "用户不存在")
	if !ok {
		return
	}

	n, err := h.submissionSvc.ClearUser(c.Request.Context(), actor, userID)
	h.respondCleared(c, n, err)
}

// ClearAll 清空全部提交
// DELETE /api/v1/admin/updates
func (h *SubmissionHandler) ClearAll(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	n, err := h.submissionSvc.ClearAll(c.Request.Context(), actor)
	h.respondCleared(c, n, err)
}

// ClearWeekForAll 清空所有学生的某周
// DELETE /api/v1/admin/updates/weeks/:week
func (h *SubmissionHandler) ClearWeekForAll(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	week, ok := weekParam(c, "week")
	if !ok {
		return
	}

	n, err := h.submissionSvc.ClearWeekForAll(c.Request.Context(), actor, week)
	h.respondCleared(c, n, err)
}

func (h *SubmissionHandler) respondCleared(c *gin.Context, n int64, err error) {
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}
	response.OK(c, dto.ClearResultResponse{Deleted: n})
}

// handleSubmissionError 统一处理周进度模块业务错误
func (h *SubmissionHandler) handleSubmissionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWeekOutOfRange):
		response.BadRequest(c, 30001, "周次必须在 1-10 之间")
	case errors.Is(err, service.ErrEmptyContent):
		response.BadRequest(c, 30002, "进度内容不能为空")
	case errors.Is(err, service.ErrWeekLocked):
		response.Conflict(c, 30003, "该周已提交，当前未开放修改")
	case errors.Is(err, service.ErrUpdateNotFound):
		response.NotFound(c, 30004, "该周进度不存在")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 20001, "用户不存在")
	case errors.Is(err, service.ErrSystemConfigNotFound):
		response.NotFound(c, 17001, "系统配置未初始化")
	default:
		failWith(c, err)
	}
}
