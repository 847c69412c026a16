package model

import (
	"time"

	"gorm.io/datatypes"
)

// 审计动作
const (
	AuditToggleEditPermission = "toggle_edit_permission"
	AuditClearWeekForUser     = "clear_week_for_user"
	AuditClearUser            = "clear_user_updates"
	AuditClearAll             = "clear_all_updates"
	AuditClearWeekForAll      = "clear_week_for_all"
	AuditDeleteUser           = "delete_user"
	AuditDeleteAllMessages    = "delete_all_messages"
)

// AuditLog 管理员操作审计表 — 对应 audit_logs
type AuditLog struct {
	AuditLogID string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"audit_log_id"`
	ActorID    string         `gorm:"type:uuid;not null"                             json:"actor_id"`
	Action     string         `gorm:"type:varchar(50);not null"                      json:"action"`
	Detail     datatypes.JSON `gorm:"type:jsonb;not null"                            json:"detail"`
	CreatedAt  time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (AuditLog) TableName() string { return "audit_logs" }
