package model

import (
	"strings"
	"time"
)

// GroupMessage 群聊消息表 — 对应 group_messages
type GroupMessage struct {
	MessageID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"message_id"`
	SenderID  string    `gorm:"type:uuid;not null"                             json:"sender_id"`
	Content   string    `gorm:"type:text;not null"                             json:"content"`
	SentAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"sent_at"`
	Edited    bool      `gorm:"not null;default:false"                         json:"edited"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Sender *User `gorm:"foreignKey:SenderID;references:UserID" json:"sender,omitempty"`
}

// TableName 指定表名
func (GroupMessage) TableName() string { return "group_messages" }

// PrivateMessage 私聊消息表 — 对应 private_messages
type PrivateMessage struct {
	MessageID  string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"message_id"`
	SenderID   string    `gorm:"type:uuid;not null"                             json:"sender_id"`
	ReceiverID string    `gorm:"type:uuid;not null"                             json:"receiver_id"`
	Content    string    `gorm:"type:text;not null"                             json:"content"`
	SentAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"sent_at"`
	Edited     bool      `gorm:"not null;default:false"                         json:"edited"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Sender *User `gorm:"foreignKey:SenderID;references:UserID" json:"sender,omitempty"`
}

// TableName 指定表名
func (PrivateMessage) TableName() string { return "private_messages" }

// Involves 判断用户是否为该私聊消息的参与者
func (m *PrivateMessage) Involves(userID string) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}

// MessageHide "仅对自己清空"记录 — 对应 message_hides
// 记录存在期间，viewer 在该会话内看不到任何消息
type MessageHide struct {
	ViewerID string    `gorm:"type:uuid;primaryKey"                 json:"viewer_id"`
	ScopeKey string    `gorm:"type:varchar(80);primaryKey"          json:"scope_key"`
	HiddenAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"   json:"hidden_at"`
}

// TableName 指定表名
func (MessageHide) TableName() string { return "message_hides" }

// ── 会话范围 ──

// GroupScopeKey 群聊会话
const GroupScopeKey = "group"

const privateScopePrefix = "private:"

// PrivateScopeKey 从查看者视角标识与 otherID 的私聊会话
func PrivateScopeKey(otherID string) string {
	return privateScopePrefix + otherID
}

// ParseScopeKey 解析会话范围，返回 (isGroup, otherID, ok)
func ParseScopeKey(key string) (isGroup bool, otherID string, ok bool) {
	if key == GroupScopeKey {
		return true, "", true
	}
	if rest, found := strings.CutPrefix(key, privateScopePrefix); found && rest != "" {
		return false, rest, true
	}
	return false, "", false
}
