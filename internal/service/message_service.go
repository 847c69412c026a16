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

// ── 消息模块业务错误 ──

var (
	ErrEmptyMessage        = pkgerrors.New(pkgerrors.ErrValidation, "消息内容不能为空")
	ErrMessageNotFound     = pkgerrors.New(pkgerrors.ErrNotFound, "消息不存在")
	ErrMessageNoPermission = pkgerrors.New(pkgerrors.ErrForbidden, "无权操作该消息")
	ErrReceiverNotFound    = pkgerrors.New(pkgerrors.ErrNotFound, "接收者不存在")
	ErrInvalidConversation = pkgerrors.New(pkgerrors.ErrValidation, "不能与该用户私聊")
	ErrInvalidMessageScope = pkgerrors.New(pkgerrors.ErrValidation, "会话范围无效")
)

// MessageService 群聊 / 私聊
type MessageService interface {
	PostGroup(ctx context.Context, actor Actor, content string) (*dto.PostMessageResponse, error)
	PostPrivate(ctx context.Context, actor Actor, receiverID, content string) (*dto.PostMessageResponse, error)

	EditGroup(ctx context.Context, actor Actor, messageID, content string) error
	EditPrivate(ctx context.Context, actor Actor, messageID, content string) error
	DeleteGroup(ctx context.Context, actor Actor, messageID string) error
	DeletePrivate(ctx context.Context, actor Actor, messageID string) error

	// ListGroup / ListPrivate 按发送时间升序；调用者隐藏了该会话时返回空列表且 Hidden=true
	ListGroup(ctx context.Context, actor Actor) (*dto.ConversationResponse, error)
	ListPrivate(ctx context.Context, actor Actor, otherID string) (*dto.ConversationResponse, error)
	ListContacts(ctx context.Context, actor Actor) ([]dto.ContactResponse, error)

	// HideForSelf "仅对自己清空"，不删除数据；Unhide（刷新）后恢复显示
	HideForSelf(ctx context.Context, actor Actor, scopeKey string) error
	Unhide(ctx context.Context, actor Actor, scopeKey string) error
	// DeleteAllForEveryone 管理员硬删除整个群聊或两人之间的全部私聊
	DeleteAllForEveryone(ctx context.Context, actor Actor, req *dto.MessageScopeRequest) (int64, error)
}

type messageService struct {
	repo   *repository.Repository
	audit  AuditService
	logger *zap.Logger
}

// NewMessageService 创建 MessageService 实例
func NewMessageService(repo *repository.Repository, audit AuditService, logger *zap.Logger) MessageService {
	return &messageService{repo: repo, audit: audit, logger: logger}
}

// ────────────────────── Post ──────────────────────

func (s *messageService) PostGroup(ctx context.Context, actor Actor, content string) (*dto.PostMessageResponse, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	msg := &model.GroupMessage{
		SenderID: actor.UserID,
		Content:  content,
		SentAt:   time.Now(),
	}
	if err := s.repo.GroupMessage.Create(ctx, msg); err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("发送群聊消息失败", zap.String("sender_id", actor.UserID), zap.Error(err))
		return nil, err
	}
	return &dto.PostMessageResponse{ID: msg.MessageID, SentAt: msg.SentAt.Format(time.RFC3339)}, nil
}

func (s *messageService) PostPrivate(ctx context.Context, actor Actor, receiverID, content string) (*dto.PostMessageResponse, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if _, err := s.conversationPartner(ctx, actor, receiverID); err != nil {
		return nil, err
	}

	msg := &model.PrivateMessage{
		SenderID:   actor.UserID,
		ReceiverID: receiverID,
		Content:    content,
		SentAt:     time.Now(),
	}
	if err := s.repo.PrivateMessage.Create(ctx, msg); err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, ErrReceiverNotFound
		}
		s.logger.Error("发送私聊消息失败", zap.String("sender_id", actor.UserID), zap.Error(err))
		return nil, err
	}
	return &dto.PostMessageResponse{ID: msg.MessageID, SentAt: msg.SentAt.Format(time.RFC3339)}, nil
}

// ────────────────────── Edit ──────────────────────

func (s *messageService) EditGroup(ctx context.Context, actor Actor, messageID, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyMessage
	}

	msg, err := s.getGroupMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if !canEditGroupMessage(actor, msg) {
		return ErrMessageNoPermission
	}

	msg.Content = content
	msg.Edited = true
	msg.SentAt = time.Now()
	if err := s.repo.GroupMessage.Update(ctx, msg); err != nil {
		s.logger.Error("编辑群聊消息失败", zap.String("id", messageID), zap.Error(err))
		return err
	}
	return nil
}

func (s *messageService) EditPrivate(ctx context.Context, actor Actor, messageID, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyMessage
	}

	msg, err := s.getPrivateMessage(ctx, actor, messageID)
	if err != nil {
		return err
	}
	if !canEditPrivateMessage(actor, msg) {
		return ErrMessageNoPermission
	}

	msg.Content = content
	msg.Edited = true
	msg.SentAt = time.Now()
	if err := s.repo.PrivateMessage.Update(ctx, msg); err != nil {
		s.logger.Error("编辑私聊消息失败", zap.String("id", messageID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Delete ──────────────────────

func (s *messageService) DeleteGroup(ctx context.Context, actor Actor, messageID string) error {
	msg, err := s.getGroupMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if !canDeleteGroupMessage(actor, msg) {
		return ErrMessageNoPermission
	}
	if err := s.repo.GroupMessage.Delete(ctx, messageID); err != nil {
		s.logger.Error("删除群聊消息失败", zap.String("id", messageID), zap.Error(err))
		return err
	}
	return nil
}

func (s *messageService) DeletePrivate(ctx context.Context, actor Actor, messageID string) error {
	msg, err := s.getPrivateMessage(ctx, actor, messageID)
	if err != nil {
		return err
	}
	if !canDeletePrivateMessage(actor, msg) {
		return ErrMessageNoPermission
	}
	if err := s.repo.PrivateMessage.Delete(ctx, messageID); err != nil {
		s.logger.Error("删除私聊消息失败", zap.String("id", messageID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── List ──────────────────────

func (s *messageService) ListGroup(ctx context.Context, actor Actor) (*dto.ConversationResponse, error) {
	resp := &dto.ConversationResponse{Scope: model.GroupScopeKey, Messages: []dto.MessageResponse{}}

	hidden, err := s.repo.MessageHide.IsHidden(ctx, actor.UserID, model.GroupScopeKey)
	if err != nil {
		s.logger.Error("查询隐藏记录失败", zap.Error(err))
		return nil, err
	}
	if hidden {
		resp.Hidden = true
		return resp, nil
	}

	msgs, err := s.repo.GroupMessage.List(ctx)
	if err != nil {
		s.logger.Error("查询群聊消息失败", zap.Error(err))
		return nil, err
	}

	senders := newSenderCache(s.repo.User)
	for i := range msgs {
		m := &msgs[i]
		sender := senders.resolve(ctx, m.SenderID, m.Sender)
		resp.Messages = append(resp.Messages, dto.MessageResponse{
			ID:             m.MessageID,
			SenderID:       m.SenderID,
			SenderUsername: sender.Username,
			SenderRole:     sender.Role.String(),
			Content:        m.Content,
			SentAt:         m.SentAt.Format(time.RFC3339),
			Edited:         m.Edited,
			IsSelf:         m.SenderID == actor.UserID,
			CanEdit:        canEditGroupMessage(actor, m),
			CanDelete:      canDeleteGroupMessage(actor, m),
		})
	}
	return resp, nil
}

func (s *messageService) ListPrivate(ctx context.Context, actor Actor, otherID string) (*dto.ConversationResponse, error) {
	other, err := s.conversationPartner(ctx, actor, otherID)
	if err != nil {
		return nil, err
	}

	scope := model.PrivateScopeKey(otherID)
	resp := &dto.ConversationResponse{Scope: scope, Messages: []dto.MessageResponse{}}

	hidden, err := s.repo.MessageHide.IsHidden(ctx, actor.UserID, scope)
	if err != nil {
		s.logger.Error("查询隐藏记录失败", zap.Error(err))
		return nil, err
	}
	if hidden {
		resp.Hidden = true
		return resp, nil
	}

	// 会话始终以调用者为一方，第三方无法读取他人会话
	msgs, err := s.repo.PrivateMessage.ListBetween(ctx, actor.UserID, otherID)
	if err != nil {
		s.logger.Error("查询私聊消息失败", zap.Error(err))
		return nil, err
	}

	self := &model.User{UserID: actor.UserID, Username: actor.Username, Role: actor.Role}
	for i := range msgs {
		m := &msgs[i]
		sender := other
		if m.SenderID == actor.UserID {
			sender = self
		}
		resp.Messages = append(resp.Messages, dto.MessageResponse{
			ID:             m.MessageID,
			SenderID:       m.SenderID,
			SenderUsername: sender.Username,
			SenderRole:     sender.Role.String(),
			ReceiverID:     m.ReceiverID,
			Content:        m.Content,
			SentAt:         m.SentAt.Format(time.RFC3339),
			Edited:         m.Edited,
			IsSelf:         m.SenderID == actor.UserID,
			CanEdit:        canEditPrivateMessage(actor, m),
			CanDelete:      canDeletePrivateMessage(actor, m),
		})
	}
	return resp, nil
}

// ListContacts 学生：其他学生与管理员；管理员：全部学生
func (s *messageService) ListContacts(ctx context.Context, actor Actor) ([]dto.ContactResponse, error) {
	roles := []model.Role{model.RoleStudent}
	if !actor.IsAdmin() {
		roles = append(roles, model.RoleAdmin)
	}

	contacts := []dto.ContactResponse{}
	for _, role := range roles {
		users, err := s.repo.User.ListByRole(ctx, role)
		if err != nil {
			s.logger.Error("查询联系人失败", zap.Error(err))
			return nil, err
		}
		for i := range users {
			u := &users[i]
			if !canConverse(actor, u) {
				continue
			}
			contacts = append(contacts, dto.ContactResponse{ID: u.UserID, Username: u.Username, Role: u.Role.String()})
		}
	}
	return contacts, nil
}

// ────────────────────── Hide ──────────────────────

func (s *messageService) HideForSelf(ctx context.Context, actor Actor, scopeKey string) error {
	if err := validateViewerScope(actor, scopeKey); err != nil {
		return err
	}
	if err := s.repo.MessageHide.Hide(ctx, actor.UserID, scopeKey); err != nil {
		s.logger.Error("写入隐藏记录失败", zap.String("scope", scopeKey), zap.Error(err))
		return err
	}
	return nil
}

func (s *messageService) Unhide(ctx context.Context, actor Actor, scopeKey string) error {
	if err := validateViewerScope(actor, scopeKey); err != nil {
		return err
	}
	if err := s.repo.MessageHide.Unhide(ctx, actor.UserID, scopeKey); err != nil {
		s.logger.Error("删除隐藏记录失败", zap.String("scope", scopeKey), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── DeleteAllForEveryone ──────────────────────

func (s *messageService) DeleteAllForEveryone(ctx context.Context, actor Actor, req *dto.MessageScopeRequest) (int64, error) {
	if err := requireAdmin(actor); err != nil {
		return 0, err
	}

	var (
		deleted  int64
		err      error
		ownScope string
		detail   map[string]interface{}
	)

	switch req.Scope {
	case "group":
		deleted, err = s.repo.GroupMessage.DeleteAll(ctx)
		ownScope = model.GroupScopeKey
		detail = map[string]interface{}{"scope": "group"}
	case "private":
		userA := req.UserA
		if userA == "" {
			userA = actor.UserID
		}
		if req.UserID == "" || userA == req.UserID {
			return 0, ErrInvalidMessageScope
		}
		deleted, err = s.repo.PrivateMessage.DeleteBetween(ctx, userA, req.UserID)
		switch actor.UserID {
		case userA:
			ownScope = model.PrivateScopeKey(req.UserID)
		case req.UserID:
			ownScope = model.PrivateScopeKey(userA)
		}
		detail = map[string]interface{}{"scope": "private", "user_a": userA, "user_b": req.UserID}
	default:
		return 0, ErrInvalidMessageScope
	}
	if err != nil {
		s.logger.Error("批量删除消息失败", zap.String("scope", req.Scope), zap.Error(err))
		return 0, err
	}

	// 会话已清空，调用者自己的隐藏记录一并清除
	if ownScope != "" {
		if err := s.repo.MessageHide.Unhide(ctx, actor.UserID, ownScope); err != nil {
			s.logger.Warn("清除隐藏记录失败", zap.String("scope", ownScope), zap.Error(err))
		}
	}

	detail["deleted"] = deleted
	s.audit.Record(ctx, actor, model.AuditDeleteAllMessages, detail)
	return deleted, nil
}

// ── 内部辅助方法 ──

func (s *messageService) getGroupMessage(ctx context.Context, id string) (*model.GroupMessage, error) {
	msg, err := s.repo.GroupMessage.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		s.logger.Error("查询群聊消息失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return msg, nil
}

// getPrivateMessage 非参与者一律返回 ErrMessageNotFound，不暴露消息是否存在
func (s *messageService) getPrivateMessage(ctx context.Context, actor Actor, id string) (*model.PrivateMessage, error) {
	msg, err := s.repo.PrivateMessage.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		s.logger.Error("查询私聊消息失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if !msg.Involves(actor.UserID) {
		return nil, ErrMessageNotFound
	}
	return msg, nil
}

// conversationPartner 校验私聊对象存在且允许与调用者私聊
func (s *messageService) conversationPartner(ctx context.Context, actor Actor, otherID string) (*model.User, error) {
	if otherID == "" || otherID == actor.UserID {
		return nil, ErrInvalidConversation
	}
	other, err := s.repo.User.GetByID(ctx, otherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReceiverNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", otherID), zap.Error(err))
		return nil, err
	}
	if !canConverse(actor, other) {
		return nil, ErrInvalidConversation
	}
	return other, nil
}

func validateViewerScope(actor Actor, scopeKey string) error {
	isGroup, otherID, ok := model.ParseScopeKey(scopeKey)
	if !ok {
		return ErrInvalidMessageScope
	}
	if !isGroup && otherID == actor.UserID {
		return ErrInvalidMessageScope
	}
	return nil
}

// senderCache 群聊消息发送者信息（未预加载时按需查询）
type senderCache struct {
	users repository.UserRepository
	cache map[string]*model.User
}

func newSenderCache(users repository.UserRepository) *senderCache {
	return &senderCache{users: users, cache: make(map[string]*model.User)}
}

func (c *senderCache) resolve(ctx context.Context, id string, preloaded *model.User) *model.User {
	if preloaded != nil {
		return preloaded
	}
	if u, ok := c.cache[id]; ok {
		return u
	}
	u, err := c.users.GetByID(ctx, id)
	if err != nil {
		u = &model.User{UserID: id}
	}
	c.cache[id] = u
	return u
}
