package dto

// ── 周进度模块 DTO ──

// SubmitUpdateRequest 提交 / 更新周进度请求
type SubmitUpdateRequest struct {
	Week    int    `json:"week"    binding:"required"`
	Content string `json:"content"`
}

// AdminEditUpdateRequest 管理员修改学生周进度请求
type AdminEditUpdateRequest struct {
	Content string `json:"content" binding:"required,notblank"`
}

// UpdateListRequest 全部进度查询参数
type UpdateListRequest struct {
	Week int `form:"week" binding:"omitempty,min=1,max=10"`
}

// AvailableWeeksResponse 可提交周次
// AllSubmitted 为 true 表示 10 周均已提交且编辑权限关闭
type AvailableWeeksResponse struct {
	Weeks        []int `json:"weeks"`
	AllowEdits   bool  `json:"allow_edits"`
	AllSubmitted bool  `json:"all_submitted"`
}

// WeeklyUpdateResponse 周进度
type WeeklyUpdateResponse struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	Username       string `json:"username,omitempty"`
	Week           int    `json:"week"`
	Content        string `json:"content"`
	LastModifiedAt string `json:"last_modified_at"`
}

// SubmitResultResponse 提交结果
type SubmitResultResponse struct {
	Week           int    `json:"week"`
	Created        bool   `json:"created"` // false 表示覆盖了已有提交
	LastModifiedAt string `json:"last_modified_at"`
}

// ClearResultResponse 清空结果
type ClearResultResponse struct {
	Deleted int64 `json:"deleted"`
}
