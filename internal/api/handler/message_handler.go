package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/dto"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/model"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/service"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/pkg/response"
)

// MessageHandler 群聊 / 私聊 HTTP 处理器
type MessageHandler struct {
	messageSvc service.MessageService
}

// NewMessageHandler 创建 MessageHandler
func NewMessageHandler(messageSvc service.MessageService) *MessageHandler {
	return &MessageHandler{messageSvc: messageSvc}
}

// ────────────────────── 群聊 ──────────────────────

// ListGroup 群聊消息
// GET /api/v1/messages/group
func (h *MessageHandler) ListGroup(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.messageSvc.ListGroup(c.Request.Context(), actor)
	if err != nil {
		h.handleMessageError(c, err)
		return
	}
	response.OK(c, result)
}

// PostGroup 发送群聊消息
// POST /api/v1/messages/group
func (h *MessageHandler) PostGroup(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "消息内容不能为空")
		return
	}

	result, err := h.messageSvc.PostGroup(c.Request.Context(), actor, req.Content)
	if err != nil {
		h.handleMessageError(c, err)
		return
	}
	response.Created(c, result)
}

// EditGroup 编辑群聊消息
// PUT /api/v1/messages/group/:id
func (h *MessageHandler) EditGroup(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	id, ok := idParam(c, "id", 40002, "消息不存在")
	if !ok {
		return
	}

	var req dto.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "消息内容不能为空")
		return
	}

	if err := h.messageSvc.EditGroup(c.Request.Context(), actor, id, req.Content); err != nil {
		h.handleMessageError(c, err)
		return
	}
	response.OK(c, nil)
}

// DeleteGroup 删除群聊消息（仅发送者）
// DELETE /api/v1/messages/group/:id
func (h *MessageHandler) DeleteGroup(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	id, ok := idParam(c, "id", 40002, "消息不存在")
	if !ok {
		return
	}

	if err := h.messageSvc.DeleteGroup(c.Request.Context(), actor, id); err != nil {
		h.handleMessageError(c, err)
		return
	}
	response.OK(c, nil)
}

// ────────────────────── 私聊 ──────────────────────

// ListContacts 可私聊的对象
// GET /api/v1/messages/contacts
func (h *MessageHandler) ListContacts(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	list, err := h.messageSvc.ListContacts(c.Request.Context(), actor)
	if err != nil {
		h.handleMessageError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// ListPrivate 与某用户的私聊消息
// GET /api/v1/messages/private/:userId
func (h *MessageHandler) ListPrivate(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	peerID, ok := idParam(c, "userId", 40004, "接收者不存在")
	if !ok {
		return
	}

	result, err := h.messageSvc.ListPrivate(c.Request.Context(), actor, peerID)
	if err != nil {
		h.handleMessageError(c, err)
		return
	}
	response.OK(c, result)
}

// PostPrivate 发送私聊消息
// POST /api/v1/messages/private/:userId
func (h *MessageHandler) PostPrivate(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	peerID, ok := idParam(c, "userId", 40004, "接收者不存在")
	if !ok {
		return
	}

	var req dto.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "消息内容不能为空")
		return
	}

	result, err := h.messageSvc.PostPrivate(c.Request.Context(), actor, peerID, req.Content)
	if err != nil {
		h.handleMessageError(c, err)
		return
	}
	response.Created(c, result)
}

// EditPrivate 编辑私聊消息
// PUT /api/v1/messages/private/msg/:id
func (h *MessageHandler) EditPrivate(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	id, ok := idParam(c, "id", 40002, "消息不存在")
	if !ok {
		return
	}

	var req dto.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "消息内容不能为空")
		return
	}

	if err := h.messageSvc.EditPrivate(c.Request.Context(), actor, id, req.Content); err != nil {
		h.handleMessageError(c, err)
		return
	}
	response.OK(c, nil)
}

// DeletePrivate 删除私聊消息
// DELETE /api/v1/messages/private/msg/:id
func (h *MessageHandler) DeletePrivate(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	id, ok := idParam(c, "id", 40002, "消息不存在")
	if !ok {
		return
	}

	if err := h.messageSvc.DeletePrivate(c.Request.Context(), actor, id); err != nil {
		h.handleMessageError(c, err)
		return
	}
	response.OK(c, nil)
}

// ────────────────────── 清空 ──────────────────────

// Hide 仅对自己清空会话
// POST /api/v1/messages/hide
func (h *MessageHandler) Hide(c *gin.Context) {
	h.toggleHide(c, true)
}

// Unhide 恢复显示会话
// DELETE /api/v1/messages/hide
func (h *MessageHandler) Unhide(c *gin.Context) {
	h.toggleHide(c, false)
}

func (h *MessageHandler) toggleHide(c *gin.Context, hide bool) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.MessageScopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40006, "会话范围无效")
		return
	}
	scopeKey := model.GroupScopeKey
	if req.Scope == "private" {
		scopeKey = model.PrivateScopeKey(req.UserID)
	}

	var err error
	if hide {
		err = h.messageSvc.HideForSelf(c.Request.Context(), actor, scopeKey)
	} else {
		err = h.messageSvc.Unhide(c.Request.Context(), actor, scopeKey)
	}
	if err != nil {
		h.handleMessageError(c, err)
		return
	}
	response.OK(c, nil)
}

// DeleteAll 对所有人删除会话内全部消息（管理员）
// DELETE /api/v1/messages/all
func (h *MessageHandler) DeleteAll(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.MessageScopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40006, "会话范围无效")
		return
	}

	n, err := h.messageSvc.DeleteAllForEveryone(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleMessageError(c, err)
		return
	}
	response.OK(c, dto.ClearResultResponse{Deleted: n})
}

// handleMessageError 统一处理消息模块业务错误
func (h *MessageHandler) handleMessageError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyMessage):
		response.BadRequest(c, 40001, "消息内容不能为空")
	case errors.Is(err, service.ErrMessageNotFound):
		response.NotFound(c, 40002, "消息不存在")
	case errors.Is(err, service.ErrMessageNoPermission):
		response.Forbidden(c, 40003, "无权操作该消息")
	case errors.Is(err, service.ErrReceiverNotFound):
		response.NotFound(c, 40004, "接收者不存在")
	case errors.Is(err, service.ErrInvalidConversation):
		response.BadRequest(c, 40005, "无法与该用户私聊")
	case errors.Is(err, service.ErrInvalidMessageScope):
		response.BadRequest(c, 40006, "会话范围无效")
	default:
		failWith(c, err)
	}
}
