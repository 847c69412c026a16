package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/model"
)

// WeeklyUpdateRepository 周进度数据访问接口
type WeeklyUpdateRepository interface {
	// Create 普通插入；(user_id, week) 已存在时返回唯一约束冲突
	Create(ctx context.Context, update *model.WeeklyUpdate) error
	// Upsert 原子写入：不存在则插入，存在则覆盖内容与修改时间
	Upsert(ctx context.Context, update *model.WeeklyUpdate) error
	GetByUserAndWeek(ctx context.Context, userID string, week int) (*model.WeeklyUpdate, error)
	// UpdateContent 覆盖已有提交，返回受影响行数
	UpdateContent(ctx context.Context, userID string, week int, content string, at time.Time) (int64, error)
	ListByUser(ctx context.Context, userID string) ([]model.WeeklyUpdate, error)
	ListSubmittedWeeks(ctx context.Context, userID string) ([]int, error)
	// ListAll 带用户信息，按用户名、周次排序；week 为 nil 时不按周过滤
	ListAll(ctx context.Context, week *int) ([]model.WeeklyUpdate, error)

	DeleteByUserAndWeek(ctx context.Context, userID string, week int) (int64, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
	DeleteByWeek(ctx context.Context, week int) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type weeklyUpdateRepo struct {
	db *gorm.DB
}

// NewWeeklyUpdateRepo 创建 WeeklyUpdateRepository 实例
func NewWeeklyUpdateRepo(db *gorm.DB) WeeklyUpdateRepository {
	return &weeklyUpdateRepo{db: db}
}

func (r *weeklyUpdateRepo) Create(ctx context.Context, update *model.WeeklyUpdate) error {
	return r.db.WithContext(ctx).Create(update).Error
}

func (r *weeklyUpdateRepo) Upsert(ctx context.Context, update *model.WeeklyUpdate) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "week"}},
			DoUpdates: clause.AssignmentColumns([]string{"content", "last_modified_at"}),
		}).
		Create(update).Error
}

func (r *weeklyUpdateRepo) GetByUserAndWeek(ctx context.Context, userID string, week int) (*model.WeeklyUpdate, error) {
	var u model.WeeklyUpdate
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND week = ?", userID, week).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *weeklyUpdateRepo) UpdateContent(ctx context.Context, userID string, week int, content string, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.WeeklyUpdate{}).
		Where("user_id = ? AND week = ?", userID, week).
		Updates(map[string]interface{}{
			"content":          content,
			"last_modified_at": at,
		})
	return result.RowsAffected, result.Error
}

func (r *weeklyUpdateRepo) ListByUser(ctx context.Context, userID string) ([]model.WeeklyUpdate, error) {
	var updates []model.WeeklyUpdate
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("week ASC").
		Find(&updates).Error
	return updates, err
}

func (r *weeklyUpdateRepo) ListSubmittedWeeks(ctx context.Context, userID string) ([]int, error) {
	var weeks []int
	err := r.db.WithContext(ctx).
		Model(&model.WeeklyUpdate{}).
		Where("user_id = ?", userID).
		Order("week ASC").
		Pluck("week", &weeks).Error
	return weeks, err
}

func (r *weeklyUpdateRepo) ListAll(ctx context.Context, week *int) ([]model.WeeklyUpdate, error) {
	var updates []model.WeeklyUpdate
	db := r.db.WithContext(ctx).Joins("User")
	if week != nil {
		db = db.Where("weekly_updates.week = ?", *week)
	}
	err := db.Order(`"User".username ASC, weekly_updates.week ASC`).
		Find(&updates).Error
	return updates, err
}

// ── 清空（幂等） ──

func (r *weeklyUpdateRepo) DeleteByUserAndWeek(ctx context.Context, userID string, week int) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND week = ?", userID, week).
		Delete(&model.WeeklyUpdate{})
	return result.RowsAffected, result.Error
}

func (r *weeklyUpdateRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.WeeklyUpdate{})
	return result.RowsAffected, result.Error
}

func (r *weeklyUpdateRepo) DeleteByWeek(ctx context.Context, week int) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("week = ?", week).
		Delete(&model.WeeklyUpdate{})
	return result.RowsAffected, result.Error
}

func (r *weeklyUpdateRepo) DeleteAll(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.WeeklyUpdate{})
	return result.RowsAffected, result.Error
}
