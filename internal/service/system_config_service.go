package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/dto"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/model"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/repository"
	pkgerrors "github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/pkg/errors"
)

// ── 编辑权限模块业务错误 ──

var (
	ErrSystemConfigNotFound = pkgerrors.New(pkgerrors.ErrNotFound, "系统配置未初始化")
)

// EditPermissionService 编辑权限开关（全局单一布尔值，默认关闭）
type EditPermissionService interface {
	// Allowed 当前是否允许学生修改已提交的周进度
	Allowed(ctx context.Context) (bool, error)
	Get(ctx context.Context) (*dto.EditPermissionResponse, error)
	Set(ctx context.Context, actor Actor, allow bool) (*dto.EditPermissionResponse, error)
}

type editPermissionService struct {
	repo   *repository.Repository
	audit  AuditService
	logger *zap.Logger
}

// NewEditPermissionService 创建 EditPermissionService 实例
func NewEditPermissionService(repo *repository.Repository, audit AuditService, logger *zap.Logger) EditPermissionService {
	return &editPermissionService{repo: repo, audit: audit, logger: logger}
}

// ────────────────────── Get ──────────────────────

func (s *editPermissionService) Allowed(ctx context.Context) (bool, error) {
	cfg, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	return cfg.AllowEdits, nil
}

func (s *editPermissionService) Get(ctx context.Context) (*dto.EditPermissionResponse, error) {
	cfg, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return toEditPermissionResponse(cfg), nil
}

// ────────────────────── Set ──────────────────────

func (s *editPermissionService) Set(ctx context.Context, actor Actor, allow bool) (*dto.EditPermissionResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	cfg, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	previous := cfg.AllowEdits
	cfg.AllowEdits = allow
	cfg.UpdatedBy = &actor.UserID

	if err := s.repo.SystemConfig.Update(ctx, cfg); err != nil {
		s.logger.Error("更新编辑权限失败", zap.Error(err))
		return nil, err
	}

	s.audit.Record(ctx, actor, model.AuditToggleEditPermission, map[string]interface{}{
		"from": previous,
		"to":   allow,
	})

	return toEditPermissionResponse(cfg), nil
}

func (s *editPermissionService) load(ctx context.Context) (*model.SystemConfig, error) {
	cfg, err := s.repo.SystemConfig.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSystemConfigNotFound
		}
		s.logger.Error("查询系统配置失败", zap.Error(err))
		return nil, err
	}
	return cfg, nil
}

func toEditPermissionResponse(cfg *model.SystemConfig) *dto.EditPermissionResponse {
	return &dto.EditPermissionResponse{
		AllowEdits: cfg.AllowEdits,
		UpdatedAt:  cfg.UpdatedAt.Format(time.RFC3339),
		UpdatedBy:  cfg.UpdatedBy,
	}
}
