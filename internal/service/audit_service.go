package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/dto"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/model"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/repository"
)

// AuditService 管理员批量 / 破坏性操作审计
type AuditService interface {
	// Record 写入审计记录；失败只记日志，不影响主操作结果
	Record(ctx context.Context, actor Actor, action string, detail map[string]interface{})
	List(ctx context.Context, actor Actor, req *dto.AuditLogListRequest) ([]dto.AuditLogResponse, int64, error)
}

type auditService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAuditService 创建 AuditService 实例
func NewAuditService(repo *repository.Repository, logger *zap.Logger) AuditService {
	return &auditService{repo: repo, logger: logger}
}

func (s *auditService) Record(ctx context.Context, actor Actor, action string, detail map[string]interface{}) {
	if detail == nil {
		detail = map[string]interface{}{}
	}
	raw, err := json.Marshal(detail)
	if err != nil {
		s.logger.Error("序列化审计详情失败", zap.String("action", action), zap.Error(err))
		raw = []byte("{}")
	}

	entry := &model.AuditLog{
		ActorID: actor.UserID,
		Action:  action,
		Detail:  datatypes.JSON(raw),
	}
	if err := s.repo.AuditLog.Create(ctx, entry); err != nil {
		s.logger.Error("写入审计日志失败",
			zap.String("actor_id", actor.UserID),
			zap.String("action", action),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("管理员操作",
		zap.String("actor", actor.Username),
		zap.String("action", action),
		zap.ByteString("detail", raw),
	)
}

func (s *auditService) List(ctx context.Context, actor Actor, req *dto.AuditLogListRequest) ([]dto.AuditLogResponse, int64, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, 0, err
	}

	logs, total, err := s.repo.AuditLog.List(ctx, req.Action, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询审计日志失败", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		var detail interface{}
		if len(l.Detail) > 0 {
			_ = json.Unmarshal(l.Detail, &detail)
		}
		list = append(list, dto.AuditLogResponse{
			ID:        l.AuditLogID,
			ActorID:   l.ActorID,
			Action:    l.Action,
			Detail:    detail,
			CreatedAt: l.CreatedAt.Format(time.RFC3339),
		})
	}
	return list, total, nil
}
