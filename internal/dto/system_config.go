package dto

// ── 编辑权限 DTO ──

// SetEditPermissionRequest 切换编辑权限请求
type SetEditPermissionRequest struct {
	AllowEdits *bool `json:"allow_edits" binding:"required"`
}

// EditPermissionResponse 编辑权限状态
type EditPermissionResponse struct {
	AllowEdits bool    `json:"allow_edits"`
	UpdatedAt  string  `json:"updated_at"`
	UpdatedBy  *string `json:"updated_by,omitempty"`
}
