package dto

// ── 管理端看板 / 审计 DTO ──

// DashboardRequest 看板查询参数
type DashboardRequest struct {
	Week int `form:"week" binding:"omitempty,min=1,max=10"`
}

// WeekStat 单周提交统计
type WeekStat struct {
	Week       int `json:"week"`
	Submitters int `json:"submitters"`
}

// DashboardResponse 管理端看板
type DashboardResponse struct {
	TotalUsers          int        `json:"total_users"`
	TotalStudents       int        `json:"total_students"`
	TotalAdmins         int        `json:"total_admins"`
	TotalUpdates        int        `json:"total_updates"`
	WeekStats           []WeekStat `json:"week_stats"`
	CompletedAllPercent float64    `json:"completed_all_percent"`
	AvgWeeksPerStudent  float64    `json:"avg_weeks_per_student"`
	SelectedWeek        int        `json:"selected_week"`
	SelectedWeekPercent float64    `json:"selected_week_percent"`
	SelectedWeekNames   []string   `json:"selected_week_submitters"`
	NoSubmissions       []string   `json:"no_submissions"`
}

// AuditLogListRequest 审计日志查询参数
type AuditLogListRequest struct {
	PaginationRequest
	Action string `form:"action" binding:"omitempty,max=50"`
}

// AuditLogResponse 审计日志
type AuditLogResponse struct {
	ID        string      `json:"id"`
	ActorID   string      `json:"actor_id"`
	Action    string      `json:"action"`
	Detail    interface{} `json:"detail"`
	CreatedAt string      `json:"created_at"`
}
