package model

import "time"

// WeeklyUpdate 周进度提交表 — 对应 weekly_updates
// (user_id, week) 唯一
type WeeklyUpdate struct {
	UpdateID       string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"update_id"`
	UserID         string    `gorm:"type:uuid;not null;uniqueIndex:uq_weekly_updates_user_week" json:"user_id"`
	Week           int       `gorm:"type:smallint;not null;uniqueIndex:uq_weekly_updates_user_week" json:"week"`
	Content        string    `gorm:"type:text;not null"                             json:"content"`
	LastModifiedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"last_modified_at"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (WeeklyUpdate) TableName() string { return "weekly_updates" }
