package model

import "fmt"

// Role 用户角色（封闭集合）
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// ParseRole 解析角色字符串，不在集合内返回错误
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStudent, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("未知角色: %q", s)
	}
}

// IsAdmin 是否管理员
func (r Role) IsAdmin() bool { return r == RoleAdmin }

func (r Role) String() string { return string(r) }
