package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/model"
)

// ── 群聊 ──

// GroupMessageRepository 群聊消息数据访问接口
type GroupMessageRepository interface {
	Create(ctx context.Context, msg *model.GroupMessage) error
	GetByID(ctx context.Context, id string) (*model.GroupMessage, error)
	Update(ctx context.Context, msg *model.GroupMessage) error
	Delete(ctx context.Context, id string) error
	// List 按 sent_at 升序，同一时刻按创建顺序
	List(ctx context.Context) ([]model.GroupMessage, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type groupMessageRepo struct {
	db *gorm.DB
}

// NewGroupMessageRepo 创建 GroupMessageRepository 实例
func NewGroupMessageRepo(db *gorm.DB) GroupMessageRepository {
	return &groupMessageRepo{db: db}
}

func (r *groupMessageRepo) Create(ctx context.Context, msg *model.GroupMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *groupMessageRepo) GetByID(ctx context.Context, id string) (*model.GroupMessage, error) {
	var msg model.GroupMessage
	err := r.db.WithContext(ctx).
		Where("message_id = ?", id).
		First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *groupMessageRepo) Update(ctx context.Context, msg *model.GroupMessage) error {
	return r.db.WithContext(ctx).
		Model(&model.GroupMessage{}).
		Where("message_id = ?", msg.MessageID).
		Updates(map[string]interface{}{
			"content": msg.Content,
			"sent_at": msg.SentAt,
			"edited":  msg.Edited,
		}).Error
}

func (r *groupMessageRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("message_id = ?", id).
		Delete(&model.GroupMessage{}).Error
}

func (r *groupMessageRepo) List(ctx context.Context) ([]model.GroupMessage, error) {
	var msgs []model.GroupMessage
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Order("sent_at ASC, created_at ASC").
		Find(&msgs).Error
	return msgs, err
}

func (r *groupMessageRepo) DeleteAll(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.GroupMessage{})
	return result.RowsAffected, result.Error
}

// ── 私聊 ──

// PrivateMessageRepository 私聊消息数据访问接口
type PrivateMessageRepository interface {
	Create(ctx context.Context, msg *model.PrivateMessage) error
	GetByID(ctx context.Context, id string) (*model.PrivateMessage, error)
	Update(ctx context.Context, msg *model.PrivateMessage) error
	Delete(ctx context.Context, id string) error
	// ListBetween 两人之间的全部消息（不区分方向），按 sent_at 升序
	ListBetween(ctx context.Context, userA, userB string) ([]model.PrivateMessage, error)
	DeleteBetween(ctx context.Context, userA, userB string) (int64, error)
}

type privateMessageRepo struct {
	db *gorm.DB
}

// NewPrivateMessageRepo 创建 PrivateMessageRepository 实例
func NewPrivateMessageRepo(db *gorm.DB) PrivateMessageRepository {
	return &privateMessageRepo{db: db}
}

const betweenClause = "(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)"

func (r *privateMessageRepo) Create(ctx context.Context, msg *model.PrivateMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *privateMessageRepo) GetByID(ctx context.Context, id string) (*model.PrivateMessage, error) {
	var msg model.PrivateMessage
	err := r.db.WithContext(ctx).
		Where("message_id = ?", id).
		First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *privateMessageRepo) Update(ctx context.Context, msg *model.PrivateMessage) error {
	return r.db.WithContext(ctx).
		Model(&model.PrivateMessage{}).
		Where("message_id = ?", msg.MessageID).
		Updates(map[string]interface{}{
			"content": msg.Content,
			"sent_at": msg.SentAt,
			"edited":  msg.Edited,
		}).Error
}

func (r *privateMessageRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("message_id = ?", id).
		Delete(&model.PrivateMessage{}).Error
}

func (r *privateMessageRepo) ListBetween(ctx context.Context, userA, userB string) ([]model.PrivateMessage, error) {
	var msgs []model.PrivateMessage
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where(betweenClause, userA, userB, userB, userA).
		Order("sent_at ASC, created_at ASC").
		Find(&msgs).Error
	return msgs, err
}

func (r *privateMessageRepo) DeleteBetween(ctx context.Context, userA, userB string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where(betweenClause, userA, userB, userB, userA).
		Delete(&model.PrivateMessage{})
	return result.RowsAffected, result.Error
}

// ── 隐藏记录 ──

// MessageHideRepository "仅对自己清空"记录数据访问接口
type MessageHideRepository interface {
	// Hide 写入隐藏记录，已存在时刷新隐藏时间
	Hide(ctx context.Context, viewerID, scopeKey string) error
	Unhide(ctx context.Context, viewerID, scopeKey string) error
	IsHidden(ctx context.Context, viewerID, scopeKey string) (bool, error)
}

type messageHideRepo struct {
	db *gorm.DB
}

// NewMessageHideRepo 创建 MessageHideRepository 实例
func NewMessageHideRepo(db *gorm.DB) MessageHideRepository {
	return &messageHideRepo{db: db}
}

func (r *messageHideRepo) Hide(ctx context.Context, viewerID, scopeKey string) error {
	hide := &model.MessageHide{ViewerID: viewerID, ScopeKey: scopeKey}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "viewer_id"}, {Name: "scope_key"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"hidden_at": gorm.Expr("NOW()")}),
		}).
		Create(hide).Error
}

func (r *messageHideRepo) Unhide(ctx context.Context, viewerID, scopeKey string) error {
	return r.db.WithContext(ctx).
		Where("viewer_id = ? AND scope_key = ?", viewerID, scopeKey).
		Delete(&model.MessageHide{}).Error
}

func (r *messageHideRepo) IsHidden(ctx context.Context, viewerID, scopeKey string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.MessageHide{}).
		Where("viewer_id = ? AND scope_key = ?", viewerID, scopeKey).
		Count(&n).Error
	return n > 0, err
}
