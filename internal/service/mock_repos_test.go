package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/model"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // key: user_id
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Username == user.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		user.UserID = "uid-" + user.Username
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) BatchCreate(ctx context.Context, users []model.User) error {
	for i := range users {
		if err := m.Create(ctx, &users[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Username == user.Username && u.UserID != user.UserID {
			return gorm.ErrDuplicatedKey
		}
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, filter repository.UserFilter, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.sorted() {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(strings.ToLower(u.Username), strings.ToLower(filter.Keyword)) {
			continue
		}
		all = append(all, u)
	}
	total := int64(len(all))
	if offset >= len(all) {
		return []model.User{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockUserRepo) ListByRole(_ context.Context, role model.Role) ([]model.User, error) {
	var result []model.User
	for _, u := range m.sorted() {
		if u.Role == role {
			result = append(result, u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) sorted() []model.User {
	list := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		list = append(list, *u)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Username < list[j].Username })
	return list
}

// ── Mock WeeklyUpdateRepository ──

type mockWeeklyUpdateRepo struct {
	users   *mockUserRepo
	updates map[string]*model.WeeklyUpdate // key: user_id:week
	seq     int
}

func newMockWeeklyUpdateRepo(users *mockUserRepo) *mockWeeklyUpdateRepo {
	return &mockWeeklyUpdateRepo{users: users, updates: make(map[string]*model.WeeklyUpdate)}
}

func updateKey(userID string, week int) string {
	return fmt.Sprintf("%s:%d", userID, week)
}

func (m *mockWeeklyUpdateRepo) Create(_ context.Context, update *model.WeeklyUpdate) error {
	if _, ok := m.users.users[update.UserID]; !ok {
		return gorm.ErrForeignKeyViolated
	}
	key := updateKey(update.UserID, update.Week)
	if _, ok := m.updates[key]; ok {
		return gorm.ErrDuplicatedKey
	}
	m.seq++
	if update.UpdateID == "" {
		update.UpdateID = fmt.Sprintf("upd-%d", m.seq)
	}
	update.CreatedAt = time.Now()
	cp := *update
	m.updates[key] = &cp
	return nil
}

func (m *mockWeeklyUpdateRepo) Upsert(ctx context.Context, update *model.WeeklyUpdate) error {
	if existing, ok := m.updates[updateKey(update.UserID, update.Week)]; ok {
		existing.Content = update.Content
		existing.LastModifiedAt = update.LastModifiedAt
		return nil
	}
	return m.Create(ctx, update)
}

func (m *mockWeeklyUpdateRepo) GetByUserAndWeek(_ context.Context, userID string, week int) (*model.WeeklyUpdate, error) {
	if u, ok := m.updates[updateKey(userID, week)]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWeeklyUpdateRepo) UpdateContent(_ context.Context, userID string, week int, content string, at time.Time) (int64, error) {
	u, ok := m.updates[updateKey(userID, week)]
	if !ok {
		return 0, nil
	}
	u.Content = content
	u.LastModifiedAt = at
	return 1, nil
}

func (m *mockWeeklyUpdateRepo) ListByUser(_ context.Context, userID string) ([]model.WeeklyUpdate, error) {
	var result []model.WeeklyUpdate
	for _, u := range m.updates {
		if u.UserID == userID {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Week < result[j].Week })
	return result, nil
}

func (m *mockWeeklyUpdateRepo) ListSubmittedWeeks(ctx context.Context, userID string) ([]int, error) {
	list, _ := m.ListByUser(ctx, userID)
	weeks := make([]int, 0, len(list))
	for _, u := range list {
		weeks = append(weeks, u.Week)
	}
	return weeks, nil
}

func (m *mockWeeklyUpdateRepo) ListAll(_ context.Context, week *int) ([]model.WeeklyUpdate, error) {
	var result []model.WeeklyUpdate
	for _, u := range m.updates {
		if week != nil && u.Week != *week {
			continue
		}
		cp := *u
		if user, ok := m.users.users[u.UserID]; ok {
			cp.User = user
		}
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool {
		ni, nj := usernameOf(&result[i]), usernameOf(&result[j])
		if ni != nj {
			return ni < nj
		}
		return result[i].Week < result[j].Week
	})
	return result, nil
}

func (m *mockWeeklyUpdateRepo) deleteWhere(match func(u *model.WeeklyUpdate) bool) int64 {
	var n int64
	for key, u := range m.updates {
		if match(u) {
			delete(m.updates, key)
			n++
		}
	}
	return n
}

func (m *mockWeeklyUpdateRepo) DeleteByUserAndWeek(_ context.Context, userID string, week int) (int64, error) {
	return m.deleteWhere(func(u *model.WeeklyUpdate) bool { return u.UserID == userID && u.Week == week }), nil
}

func (m *mockWeeklyUpdateRepo) DeleteByUser(_ context.Context, userID string) (int64, error) {
	return m.deleteWhere(func(u *model.WeeklyUpdate) bool { return u.UserID == userID }), nil
}

func (m *mockWeeklyUpdateRepo) DeleteByWeek(_ context.Context, week int) (int64, error) {
	return m.deleteWhere(func(u *model.WeeklyUpdate) bool { return u.Week == week }), nil
}

func (m *mockWeeklyUpdateRepo) DeleteAll(_ context.Context) (int64, error) {
	return m.deleteWhere(func(*model.WeeklyUpdate) bool { return true }), nil
}

// ── Mock SystemConfigRepository ──

type mockSystemConfigRepo struct {
	cfg *model.SystemConfig
}

func newMockSystemConfigRepo() *mockSystemConfigRepo {
	return &mockSystemConfigRepo{cfg: &model.SystemConfig{Singleton: true, UpdatedAt: time.Now()}}
}

func (m *mockSystemConfigRepo) Get(_ context.Context) (*model.SystemConfig, error) {
	if m.cfg == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *m.cfg
	return &cp, nil
}

func (m *mockSystemConfigRepo) Update(_ context.Context, cfg *model.SystemConfig) error {
	cfg.UpdatedAt = time.Now()
	cp := *cfg
	m.cfg = &cp
	return nil
}

// ── Mock GroupMessageRepository ──

type mockGroupMessageRepo struct {
	messages map[string]*model.GroupMessage
	seq      int
}

func newMockGroupMessageRepo() *mockGroupMessageRepo {
	return &mockGroupMessageRepo{messages: make(map[string]*model.GroupMessage)}
}

func (m *mockGroupMessageRepo) Create(_ context.Context, msg *model.GroupMessage) error {
	m.seq++
	msg.MessageID = fmt.Sprintf("gm-%d", m.seq)
	msg.CreatedAt = time.Now().Add(time.Duration(m.seq))
	cp := *msg
	m.messages[msg.MessageID] = &cp
	return nil
}

func (m *mockGroupMessageRepo) GetByID(_ context.Context, id string) (*model.GroupMessage, error) {
	if msg, ok := m.messages[id]; ok {
		cp := *msg
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGroupMessageRepo) Update(_ context.Context, msg *model.GroupMessage) error {
	cp := *msg
	m.messages[msg.MessageID] = &cp
	return nil
}

func (m *mockGroupMessageRepo) Delete(_ context.Context, id string) error {
	delete(m.messages, id)
	return nil
}

func (m *mockGroupMessageRepo) List(_ context.Context) ([]model.GroupMessage, error) {
	result := make([]model.GroupMessage, 0, len(m.messages))
	for _, msg := range m.messages {
		result = append(result, *msg)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].SentAt.Equal(result[j].SentAt) {
			return result[i].SentAt.Before(result[j].SentAt)
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *mockGroupMessageRepo) DeleteAll(_ context.Context) (int64, error) {
	n := int64(len(m.messages))
	m.messages = make(map[string]*model.GroupMessage)
	return n, nil
}

// ── Mock PrivateMessageRepository ──

type mockPrivateMessageRepo struct {
	messages map[string]*model.PrivateMessage
	seq      int
}

func newMockPrivateMessageRepo() *mockPrivateMessageRepo {
	return &mockPrivateMessageRepo{messages: make(map[string]*model.PrivateMessage)}
}

func (m *mockPrivateMessageRepo) Create(_ context.Context, msg *model.PrivateMessage) error {
	m.seq++
	msg.MessageID = fmt.Sprintf("pm-%d", m.seq)
	msg.CreatedAt = time.Now().Add(time.Duration(m.seq))
	cp := *msg
	m.messages[msg.MessageID] = &cp
	return nil
}

func (m *mockPrivateMessageRepo) GetByID(_ context.Context, id string) (*model.PrivateMessage, error) {
	if msg, ok := m.messages[id]; ok {
		cp := *msg
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPrivateMessageRepo) Update(_ context.Context, msg *model.PrivateMessage) error {
	cp := *msg
	m.messages[msg.MessageID] = &cp
	return nil
}

func (m *mockPrivateMessageRepo) Delete(_ context.Context, id string) error {
	delete(m.messages, id)
	return nil
}

func (m *mockPrivateMessageRepo) ListBetween(_ context.Context, userA, userB string) ([]model.PrivateMessage, error) {
	var result []model.PrivateMessage
	for _, msg := range m.messages {
		if msg.Involves(userA) && msg.Involves(userB) {
			result = append(result, *msg)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].SentAt.Equal(result[j].SentAt) {
			return result[i].SentAt.Before(result[j].SentAt)
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *mockPrivateMessageRepo) DeleteBetween(_ context.Context, userA, userB string) (int64, error) {
	var n int64
	for id, msg := range m.messages {
		if msg.Involves(userA) && msg.Involves(userB) {
			delete(m.messages, id)
			n++
		}
	}
	return n, nil
}

// ── Mock MessageHideRepository ──

type mockMessageHideRepo struct {
	hides map[string]time.Time // key: viewer_id|scope_key
}

func newMockMessageHideRepo() *mockMessageHideRepo {
	return &mockMessageHideRepo{hides: make(map[string]time.Time)}
}

func (m *mockMessageHideRepo) Hide(_ context.Context, viewerID, scopeKey string) error {
	m.hides[viewerID+"|"+scopeKey] = time.Now()
	return nil
}

func (m *mockMessageHideRepo) Unhide(_ context.Context, viewerID, scopeKey string) error {
	delete(m.hides, viewerID+"|"+scopeKey)
	return nil
}

func (m *mockMessageHideRepo) IsHidden(_ context.Context, viewerID, scopeKey string) (bool, error) {
	_, ok := m.hides[viewerID+"|"+scopeKey]
	return ok, nil
}

// ── Mock AuditLogRepository ──

type mockAuditLogRepo struct {
	logs []model.AuditLog
	err  error
}

func newMockAuditLogRepo() *mockAuditLogRepo {
	return &mockAuditLogRepo{}
}

func (m *mockAuditLogRepo) Create(_ context.Context, log *model.AuditLog) error {
	if m.err != nil {
		return m.err
	}
	log.AuditLogID = fmt.Sprintf("audit-%d", len(m.logs)+1)
	log.CreatedAt = time.Now()
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockAuditLogRepo) List(_ context.Context, action string, offset, limit int) ([]model.AuditLog, int64, error) {
	var all []model.AuditLog
	for i := len(m.logs) - 1; i >= 0; i-- {
		if action == "" || m.logs[i].Action == action {
			all = append(all, m.logs[i])
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return []model.AuditLog{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockAuditLogRepo) actions() []string {
	list := make([]string, 0, len(m.logs))
	for _, l := range m.logs {
		list = append(list, l.Action)
	}
	return list
}

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	revoked map[string]time.Duration
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{revoked: make(map[string]time.Duration)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	m.revoked[jti] = ttl
	return nil
}

func (m *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := m.revoked[jti]
	return ok, nil
}

// ── 测试环境 ──

type mockRepos struct {
	users    *mockUserRepo
	updates  *mockWeeklyUpdateRepo
	config   *mockSystemConfigRepo
	group    *mockGroupMessageRepo
	private  *mockPrivateMessageRepo
	hides    *mockMessageHideRepo
	auditLog *mockAuditLogRepo
}

// newMockRepository 返回不绑定数据库的 Repository 聚合（BeginTx 返回 nil 事务）
func newMockRepository() (*repository.Repository, *mockRepos) {
	users := newMockUserRepo()
	m := &mockRepos{
		users:    users,
		updates:  newMockWeeklyUpdateRepo(users),
		config:   newMockSystemConfigRepo(),
		group:    newMockGroupMessageRepo(),
		private:  newMockPrivateMessageRepo(),
		hides:    newMockMessageHideRepo(),
		auditLog: newMockAuditLogRepo(),
	}
	repo := &repository.Repository{
		User:           m.users,
		WeeklyUpdate:   m.updates,
		SystemConfig:   m.config,
		GroupMessage:   m.group,
		PrivateMessage: m.private,
		MessageHide:    m.hides,
		AuditLog:       m.auditLog,
	}
	return repo, m
}

// addUser 直接写入用户（密码 password123）并返回对应 Actor
func (m *mockRepos) addUser(username string, role model.Role) Actor {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &model.User{
		UserID:       "uid-" + username,
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}
	user.CreatedAt = time.Now()
	m.users.users[user.UserID] = user
	return Actor{UserID: user.UserID, Username: username, Role: role}
}

func (m *mockRepos) setAllowEdits(allow bool) {
	m.config.cfg.AllowEdits = allow
}
