package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/dto"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/model"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/repository"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/pkg/database"
	pkgerrors "github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/pkg/errors"
)

// ── 周进度模块业务错误 ──

var (
	ErrWeekOutOfRange = pkgerrors.New(pkgerrors.ErrValidation, "周次必须在 1-10 之间")
	ErrEmptyContent   = pkgerrors.New(pkgerrors.ErrValidation, "进度内容不能为空")
	ErrWeekLocked     = pkgerrors.New(pkgerrors.ErrConflict, "该周已提交，当前未开放修改")
	ErrUpdateNotFound = pkgerrors.New(pkgerrors.ErrNotFound, "该周进度不存在")
)

// SubmissionService 周进度提交与管理
type SubmissionService interface {
	// ListAvailableWeeks 编辑权限关闭时返回未提交的周次；开启时返回全部 10 周
	ListAvailableWeeks(ctx context.Context, actor Actor) (*dto.AvailableWeeksResponse, error)
	// SubmitOrUpdate 未提交的周新建；已提交的周仅在编辑权限开启时覆盖
	SubmitOrUpdate(ctx context.Context, actor Actor, week int, content string) (*dto.SubmitResultResponse, error)
	ListMine(ctx context.Context, actor Actor) ([]dto.WeeklyUpdateResponse, error)

	// ── 管理员 ──
	ListByUser(ctx context.Context, actor Actor, userID string) ([]dto.WeeklyUpdateResponse, error)
	ListAll(ctx context.Context, actor Actor, week *int) ([]dto.WeeklyUpdateResponse, error)
	// AdminEdit 管理员修改学生已有提交，不受编辑权限限制
	AdminEdit(ctx context.Context, actor Actor, userID string, week int, content string) (*dto.WeeklyUpdateResponse, error)

	// ── 清空（幂等，无数据可删时不报错） ──
	ClearWeekForUser(ctx context.Context, actor Actor, userID string, week int) (int64, error)
	ClearUser(ctx context.Context, actor Actor, userID string) (int64, error)
	ClearAll(ctx context.Context, actor Actor) (int64, error)
	ClearWeekForAll(ctx context.Context, actor Actor, week int) (int64, error)
}

type submissionService struct {
	repo       *repository.Repository
	permission EditPermissionService
	audit      AuditService
	logger     *zap.Logger
}

// NewSubmissionService 创建 SubmissionService 实例
func NewSubmissionService(
	repo *repository.Repository,
	permission EditPermissionService,
	audit AuditService,
	logger *zap.Logger,
) SubmissionService {
	return &submissionService{
		repo:       repo,
		permission: permission,
		audit:      audit,
		logger:     logger,
	}
}

// ────────────────────── ListAvailableWeeks ──────────────────────

func (s *submissionService) ListAvailableWeeks(ctx context.Context, actor Actor) (*dto.AvailableWeeksResponse, error) {
	if err := requireStudent(actor); err != nil {
		return nil, err
	}

	allow, err := s.permission.Allowed(ctx)
	if err != nil {
		return nil, err
	}

	submitted, err := s.repo.WeeklyUpdate.ListSubmittedWeeks(ctx, actor.UserID)
	if err != nil {
		s.logger.Error("查询已提交周次失败", zap.String("user_id", actor.UserID), zap.Error(err))
		return nil, err
	}

	weeks := AvailableWeeks(submitted, allow)
	return &dto.AvailableWeeksResponse{
		Weeks:        weeks,
		AllowEdits:   allow,
		AllSubmitted: len(weeks) == 0,
	}, nil
}

// AvailableWeeks allow 为 true 时返回 1..10，否则返回 1..10 中未出现在 submitted 的周次（升序）
func AvailableWeeks(submitted []int, allow bool) []int {
	done := make(map[int]bool, len(submitted))
	if !allow {
		for _, w := range submitted {
			done[w] = true
		}
	}
	weeks := make([]int, 0, model.WeekCount)
	for w := model.MinWeek; w <= model.MaxWeek; w++ {
		if !done[w] {
			weeks = append(weeks, w)
		}
	}
	return weeks
}

// ────────────────────── SubmitOrUpdate ──────────────────────

func (s *submissionService) SubmitOrUpdate(ctx context.Context, actor Actor, week int, content string) (*dto.SubmitResultResponse, error) {
	if err := requireStudent(actor); err != nil {
		return nil, err
	}
	content, err := validateUpdateInput(week, content)
	if err != nil {
		return nil, err
	}

	allow, err := s.permission.Allowed(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	update := &model.WeeklyUpdate{
		UserID:         actor.UserID,
		Week:           week,
		Content:        content,
		LastModifiedAt: now,
	}

	if !allow {
		// (user_id, week) 唯一约束是唯一的判定依据：已存在或并发抢先写入都视为锁定
		if err := s.repo.WeeklyUpdate.Create(ctx, update); err != nil {
			return nil, s.translateWriteError(actor, week, err)
		}
		return &dto.SubmitResultResponse{Week: week, Created: true, LastModifiedAt: now.Format(time.RFC3339)}, nil
	}

	// 编辑权限开启：查询仅用于区分新建/覆盖，写入本身是原子 upsert
	created := false
	if _, err := s.repo.WeeklyUpdate.GetByUserAndWeek(ctx, actor.UserID, week); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询周进度失败", zap.String("user_id", actor.UserID), zap.Int("week", week), zap.Error(err))
			return nil, err
		}
		created = true
	}

	if err := s.repo.WeeklyUpdate.Upsert(ctx, update); err != nil {
		return nil, s.translateWriteError(actor, week, err)
	}

	return &dto.SubmitResultResponse{Week: week, Created: created, LastModifiedAt: now.Format(time.RFC3339)}, nil
}

func (s *submissionService) translateWriteError(actor Actor, week int, err error) error {
	switch {
	case database.IsUniqueViolation(err):
		return ErrWeekLocked
	case database.IsForeignKeyViolation(err):
		// 用户已被删除而 Token 尚未过期
		return ErrUserNotFound
	default:
		s.logger.Error("写入周进度失败", zap.String("user_id", actor.UserID), zap.Int("week", week), zap.Error(err))
		return err
	}
}

// ────────────────────── List ──────────────────────

func (s *submissionService) ListMine(ctx context.Context, actor Actor) ([]dto.WeeklyUpdateResponse, error) {
	updates, err := s.repo.WeeklyUpdate.ListByUser(ctx, actor.UserID)
	if err != nil {
		s.logger.Error("查询周进度失败", zap.String("user_id", actor.UserID), zap.Error(err))
		return nil, err
	}
	return toWeeklyUpdateResponses(updates), nil
}

func (s *submissionService) ListByUser(ctx context.Context, actor Actor, userID string) ([]dto.WeeklyUpdateResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", userID), zap.Error(err))
		return nil, err
	}

	updates, err := s.repo.WeeklyUpdate.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询周进度失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	list := toWeeklyUpdateResponses(updates)
	for i := range list {
		list[i].Username = user.Username
	}
	return list, nil
}

func (s *submissionService) ListAll(ctx context.Context, actor Actor, week *int) ([]dto.WeeklyUpdateResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if week != nil && !model.ValidWeek(*week) {
		return nil, ErrWeekOutOfRange
	}

	updates, err := s.repo.WeeklyUpdate.ListAll(ctx, week)
	if err != nil {
		s.logger.Error("查询全部周进度失败", zap.Error(err))
		return nil, err
	}
	return toWeeklyUpdateResponses(updates), nil
}

// ────────────────────── AdminEdit ──────────────────────

func (s *submissionService) AdminEdit(ctx context.Context, actor Actor, userID string, week int, content string) (*dto.WeeklyUpdateResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	content, err := validateUpdateInput(week, content)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	n, err := s.repo.WeeklyUpdate.UpdateContent(ctx, userID, week, content, now)
	if err != nil {
		s.logger.Error("修改周进度失败", zap.String("user_id", userID), zap.Int("week", week), zap.Error(err))
		return nil, err
	}
	if n == 0 {
		return nil, ErrUpdateNotFound
	}

	updated, err := s.repo.WeeklyUpdate.GetByUserAndWeek(ctx, userID, week)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUpdateNotFound
		}
		return nil, err
	}
	resp := toWeeklyUpdateResponse(updated)
	return &resp, nil
}

// ────────────────────── Clear ──────────────────────

func (s *submissionService) ClearWeekForUser(ctx context.Context, actor Actor, userID string, week int) (int64, error) {
	if err := requireAdmin(actor); err != nil {
		return 0, err
	}
	if !model.ValidWeek(week) {
		return 0, ErrWeekOutOfRange
	}
	n, err := s.repo.WeeklyUpdate.DeleteByUserAndWeek(ctx, userID, week)
	if err != nil {
		s.logger.Error("清空用户单周进度失败", zap.String("user_id", userID), zap.Int("week", week), zap.Error(err))
		return 0, err
	}
	s.audit.Record(ctx, actor, model.AuditClearWeekForUser, map[string]interface{}{
		"user_id": userID, "week": week, "deleted": n,
	})
	return n, nil
}

func (s *submissionService) ClearUser(ctx context.Context, actor Actor, userID string) (int64, error) {
	if err := requireAdmin(actor); err != nil {
		return 0, err
	}
	n, err := s.repo.WeeklyUpdate.DeleteByUser(ctx, userID)
	if err != nil {
		s.logger.Error("清空用户进度失败", zap.String("user_id", userID), zap.Error(err))
		return 0, err
	}
	s.audit.Record(ctx, actor, model.AuditClearUser, map[string]interface{}{
		"user_id": userID, "deleted": n,
	})
	return n, nil
}

func (s *submissionService) ClearAll(ctx context.Context, actor Actor) (int64, error) {
	if err := requireAdmin(actor); err != nil {
		return 0, err
	}
	n, err := s.repo.WeeklyUpdate.DeleteAll(ctx)
	if err != nil {
		s.logger.Error("清空全部进度失败", zap.Error(err))
		return 0, err
	}
	s.audit.Record(ctx, actor, model.AuditClearAll, map[string]interface{}{"deleted": n})
	return n, nil
}

func (s *submissionService) ClearWeekForAll(ctx context.Context, actor Actor, week int) (int64, error) {
	if err := requireAdmin(actor); err != nil {
		return 0, err
	}
	if !model.ValidWeek(week) {
		return 0, ErrWeekOutOfRange
	}
	n, err := s.repo.WeeklyUpdate.DeleteByWeek(ctx, week)
	if err != nil {
		s.logger.Error("清空单周进度失败", zap.Int("week", week), zap.Error(err))
		return 0, err
	}
	s.audit.Record(ctx, actor, model.AuditClearWeekForAll, map[string]interface{}{
		"week": week, "deleted": n,
	})
	return n, nil
}

// ── 内部辅助方法 ──

// validateUpdateInput 校验周次与内容，返回去除首尾空白后的内容
func validateUpdateInput(week int, content string) (string, error) {
	if !model.ValidWeek(week) {
		return "", ErrWeekOutOfRange
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrEmptyContent
	}
	return content, nil
}

func toWeeklyUpdateResponse(u *model.WeeklyUpdate) dto.WeeklyUpdateResponse {
	resp := dto.WeeklyUpdateResponse{
		ID:             u.UpdateID,
		UserID:         u.UserID,
		Week:           u.Week,
		Content:        u.Content,
		LastModifiedAt: u.LastModifiedAt.Format(time.RFC3339),
	}
	if u.User != nil {
		resp.Username = u.User.Username
	}
	return resp
}

func toWeeklyUpdateResponses(updates []model.WeeklyUpdate) []dto.WeeklyUpdateResponse {
	list := make([]dto.WeeklyUpdateResponse, 0, len(updates))
	for i := range updates {
		list = append(list, toWeeklyUpdateResponse(&updates[i]))
	}
	return list
}
