package dto

// ── 用户模块 DTO ──

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	Role    string `form:"role"    binding:"omitempty,oneof=student admin"`
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// CreateUserRequest 管理员添加用户请求（不受学生用户名格式限制）
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,notblank,max=50"`
	Password string `json:"password" binding:"required,max=72"`
	Role     string `json:"role"     binding:"required,oneof=student admin"`
}

// UpdateUserRequest 重命名 / 修改密码请求
type UpdateUserRequest struct {
	Username *string `json:"username" binding:"omitempty,notblank,max=50"`
	Password *string `json:"password" binding:"omitempty,max=72"`
}

// ResetPasswordRequest 重置密码请求；Password 为空时生成临时密码
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"omitempty,max=72"`
}

// ResetPasswordResponse 重置密码响应
type ResetPasswordResponse struct {
	TempPassword string `json:"temp_password,omitempty"`
}

// ImportUserResponse 批量导入学生响应
type ImportUserResponse struct {
	Total   int               `json:"total"`
	Success int               `json:"success"`
	Failed  int               `json:"failed"`
	Errors  []ImportUserError `json:"errors,omitempty"`
}

// ImportUserError 导入错误详情
type ImportUserError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}
