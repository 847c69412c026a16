package service

import (
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/model"
	pkgerrors "github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/pkg/errors"
)

// Actor 当前请求的调用者，由认证中间件根据 Token 构造后逐层显式传递
type Actor struct {
	UserID   string
	Username string
	Role     model.Role
}

// IsAdmin 是否管理员
func (a Actor) IsAdmin() bool { return a.Role.IsAdmin() }

// ── 通用权限错误 ──

var (
	ErrAdminOnly   = pkgerrors.New(pkgerrors.ErrForbidden, "仅管理员可执行该操作")
	ErrStudentOnly = pkgerrors.New(pkgerrors.ErrForbidden, "仅学生可执行该操作")
)
