package dto

// ── 消息模块 DTO ──

// PostMessageRequest 发送消息请求
type PostMessageRequest struct {
	Content string `json:"content" binding:"required,notblank,max=4000"`
}

// EditMessageRequest 编辑消息请求
type EditMessageRequest struct {
	Content string `json:"content" binding:"required,notblank,max=4000"`
}

// MessageScopeRequest 会话范围请求
// Scope: group | private；private 时 UserID 为对方，UserA 可选（默认当前用户）
type MessageScopeRequest struct {
	Scope  string `json:"scope"   binding:"required,oneof=group private"`
	UserID string `json:"user_id" binding:"omitempty,uuid"`
	UserA  string `json:"user_a"  binding:"omitempty,uuid"`
}

// MessageResponse 会话中的单条消息
type MessageResponse struct {
	ID             string `json:"id"`
	SenderID       string `json:"sender_id"`
	SenderUsername string `json:"sender_username"`
	SenderRole     string `json:"sender_role"`
	ReceiverID     string `json:"receiver_id,omitempty"`
	Content        string `json:"content"`
	SentAt         string `json:"sent_at"`
	Edited         bool   `json:"edited"`
	IsSelf         bool   `json:"is_self"`
	CanEdit        bool   `json:"can_edit"`
	CanDelete      bool   `json:"can_delete"`
}

// ConversationResponse 会话内容
// Hidden 为 true 表示当前用户已"仅对自己清空"该会话
type ConversationResponse struct {
	Scope    string            `json:"scope"`
	Hidden   bool              `json:"hidden"`
	Messages []MessageResponse `json:"messages"`
}

// PostMessageResponse 发送消息响应
type PostMessageResponse struct {
	ID     string `json:"id"`
	SentAt string `json:"sent_at"`
}

// ContactResponse 可聊天对象
type ContactResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}
