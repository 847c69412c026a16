package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/dto"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/service"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/pkg/response"
)

// 导入文件大小上限
const maxImportFileSize = 5 << 20

// UserHandler 用户管理 HTTP 处理器（管理员）
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// ListUsers 用户列表
// GET /api/v1/admin/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	users, total, err := h.userSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OKPage(c, users, total, req.GetPage(), req.GetPageSize())
}

// GetUser 用户详情
// GET /api/v1/admin/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	userID, ok := idParam(c, "id", 20001, "用户不存在")
	if !ok {
		return
	}

	user, err := h.userSvc.GetByID(c.Request.Context(), actor, userID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// CreateUser 添加用户
// POST /api/v1/admin/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	user, err := h.userSvc.CreateUser(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.Created(c, user)
}

// UpdateUser 重命名 / 修改密码
// PUT /api/v1/admin/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	userID, ok := idParam(c, "id", 20001, "用户不存在")
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	user, err := h.userSvc.Update(c.Request.Context(), actor, userID, &req)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// DeleteUser 删除用户（连同其周进度）
// DELETE /api/v1/admin/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	userID, ok := idParam(c, "id", 20001, "用户不存在")
	if !ok {
		return
	}

	if err := h.userSvc.Delete(c.Request.Context(), actor, userID); err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, nil)
}

// ResetPassword 重置密码
// POST /api/v1/admin/users/:id/reset-password
func (h *UserHandler) ResetPassword(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	userID, ok := idParam(c, "id", 20001, "用户不存在")
	if !ok {
		return
	}

	var req dto.ResetPasswordRequest
	// 请求体可为空
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 10001, "参数校验失败")
			return
		}
	}

	result, err := h.userSvc.ResetPassword(c.Request.Context(), actor, userID, &req)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, result)
}

// ImportUsers Excel 批量导入学生
// POST /api/v1/admin/users/import (multipart, 字段 file)
func (h *UserHandler) ImportUsers(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "请上传 Excel 文件")
		return
	}
	if fileHeader.Size > maxImportFileSize {
		response.BadRequest(c, 20004, "文件过大（上限 5MB）")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, 20004, "无法读取上传文件")
		return
	}
	defer file.Close()

	rows, err := h.userSvc.ParseImportFile(file)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	result, err := h.userSvc.ImportStudents(c.Request.Context(), actor, rows)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, result)
}

// handleUserError 统一处理用户模块业务错误
func (h *UserHandler) handleUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 20001, "用户不存在")
	case errors.Is(err, service.ErrUsernameExists):
		response.Conflict(c, 20002, "用户名已存在")
	case errors.Is(err, service.ErrUserSelfDelete):
		response.BadRequest(c, 20003, "不能删除自己")
	case errors.Is(err, service.ErrImportNoData),
		errors.Is(err, service.ErrImportTooManyRows),
		errors.Is(err, service.ErrImportBadHeader),
		errors.Is(err, service.ErrImportBadFile):
		response.BadRequest(c, 20004, err.Error())
	case errors.Is(err, service.ErrPasswordTooShort):
		response.BadRequest(c, 11003, err.Error())
	default:
		failWith(c, err)
	}
}
