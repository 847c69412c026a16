package service

import (
	"go.uber.org/zap"

	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/config"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/repository"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/pkg/jwt"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth           AuthService
	User           UserService
	EditPermission EditPermissionService
	Submission     SubmissionService
	Message        MessageService
	Dashboard      DashboardService
	Export         ExportService
	Audit          AuditService
}

// NewService 创建 Service 聚合
// rdb 为 nil 时不启用 Token 黑名单
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	var blacklist TokenBlacklist
	if rdb != nil {
		blacklist = rdb
	}

	audit := NewAuditService(repo, logger)
	permission := NewEditPermissionService(repo, audit, logger)

	return &Service{
		Auth:           NewAuthService(cfg, repo, jwtMgr, blacklist, logger),
		User:           NewUserService(repo, audit, logger),
		EditPermission: permission,
		Submission:     NewSubmissionService(repo, permission, audit, logger),
		Message:        NewMessageService(repo, audit, logger),
		Dashboard:      NewDashboardService(repo, logger),
		Export:         NewExportService(repo, logger),
		Audit:          audit,
	}
}
