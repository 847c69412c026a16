package model

import "time"

// SystemConfig 系统配置表 — 对应 system_config（单行强类型）
type SystemConfig struct {
	Singleton  bool      `gorm:"primaryKey;default:true"            json:"-"`
	AllowEdits bool      `gorm:"not null;default:false"             json:"allow_edits"`
	UpdatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy  *string   `gorm:"type:uuid"                          json:"updated_by,omitempty"`
}

// TableName 指定表名
func (SystemConfig) TableName() string { return "system_config" }
