package handler

import "github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth           *AuthHandler
	User           *UserHandler
	Submission     *SubmissionHandler
	EditPermission *EditPermissionHandler
	Message        *MessageHandler
	Dashboard      *DashboardHandler
	Export         *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:           NewAuthHandler(svc.Auth),
		User:           NewUserHandler(svc.User),
		Submission:     NewSubmissionHandler(svc.Submission),
		EditPermission: NewEditPermissionHandler(svc.EditPermission),
		Message:        NewMessageHandler(svc.Message),
		Dashboard:      NewDashboardHandler(svc.Dashboard, svc.Audit),
		Export:         NewExportHandler(svc.Export),
	}
}
