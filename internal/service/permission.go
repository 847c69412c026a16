package service

import "github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/model"

// 每个操作一个权限判断函数，调用方不直接比较角色

func requireAdmin(a Actor) error {
	if !a.IsAdmin() {
		return ErrAdminOnly
	}
	return nil
}

func requireStudent(a Actor) error {
	if a.Role != model.RoleStudent {
		return ErrStudentOnly
	}
	return nil
}

// 群聊：发送者或管理员可编辑
func canEditGroupMessage(a Actor, m *model.GroupMessage) bool {
	return m.SenderID == a.UserID || a.IsAdmin()
}

// 群聊：仅发送者可删除单条消息（管理员走批量删除）
func canDeleteGroupMessage(a Actor, m *model.GroupMessage) bool {
	return m.SenderID == a.UserID
}

// 私聊：仅发送者可编辑，管理员也不例外
func canEditPrivateMessage(a Actor, m *model.PrivateMessage) bool {
	return m.SenderID == a.UserID
}

func canDeletePrivateMessage(a Actor, m *model.PrivateMessage) bool {
	return m.SenderID == a.UserID
}

// 私聊对象：不能是自己；管理员之间不建立私聊
func canConverse(a Actor, other *model.User) bool {
	if other.UserID == a.UserID {
		return false
	}
	return !(a.IsAdmin() && other.Role.IsAdmin())
}
