package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/model"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/repository"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/service"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/tui"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/pkg/database"
)

var (
	errUsernameTaken = errors.New("用户名已存在")
	errUserNotFound  = errors.New("用户不存在")
	errWeekTaken     = errors.New("该用户此周已有提交")
)

func (cli *commandLine) listUsers() error {
	users, err := cli.allUsers(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprint(cli.out, tui.RenderUsers(users))
	return nil
}

func (cli *commandLine) listUpdates() error {
	updates, err := cli.repo.WeeklyUpdate.ListAll(context.Background(), nil)
	if err != nil {
		return err
	}
	fmt.Fprint(cli.out, tui.RenderUpdates(updates))
	return nil
}

// addAdmin 新建管理员；用户名不受学生格式限制
func (cli *commandLine) addAdmin(uname, pwd string) error {
	if err := service.ValidatePassword(pwd); err != nil {
		return err
	}
	hash, err := service.HashPassword(pwd)
	if err != nil {
		return err
	}

	user := &model.User{Username: uname, PasswordHash: hash, Role: model.RoleAdmin}
	if err := cli.repo.User.Create(context.Background(), user); err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s", errUsernameTaken, uname)
		}
		return err
	}
	fmt.Fprintf(cli.out, "管理员 %s 已创建\n", uname)
	return nil
}

func (cli *commandLine) resetPassword(uname, pwd string) error {
	ctx := context.Background()
	if err := service.ValidatePassword(pwd); err != nil {
		return err
	}
	user, err := cli.findUser(ctx, uname)
	if err != nil {
		return err
	}
	hash, err := service.HashPassword(pwd)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := cli.repo.User.Update(ctx, user); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "用户 %s 的密码已重置\n", uname)
	return nil
}

// addUpdate 插入一条样例周进度；(user, week) 已存在时拒绝
func (cli *commandLine) addUpdate(uname string, week int, content string) error {
	ctx := context.Background()
	if !model.ValidWeek(week) {
		return service.ErrWeekOutOfRange
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return service.ErrEmptyContent
	}
	user, err := cli.findUser(ctx, uname)
	if err != nil {
		return err
	}

	update := &model.WeeklyUpdate{
		UserID:         user.UserID,
		Week:           week,
		Content:        content,
		LastModifiedAt: time.Now(),
	}
	if err := cli.repo.WeeklyUpdate.Create(ctx, update); err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s 第 %d 周", errWeekTaken, uname, week)
		}
		return err
	}
	cli.logger.Debug("添加周进度", zap.String("username", uname), zap.Int("week", week))
	fmt.Fprintf(cli.out, "已为 %s 添加第 %d 周进度\n", uname, week)
	return nil
}

// allUsers 全部用户（limit -1 表示不分页）
func (cli *commandLine) allUsers(ctx context.Context) ([]model.User, error) {
	users, _, err := cli.repo.User.List(ctx, repository.UserFilter{}, 0, -1)
	return users, err
}

func (cli *commandLine) findUser(ctx context.Context, uname string) (*model.User, error) {
	user, err := cli.repo.User.GetByUsername(ctx, uname)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", errUserNotFound, uname)
		}
		return nil, err
	}
	return user, nil
}

// ── inspect ──

var runInspector = tui.Run // mockable

func (cli *commandLine) inspect() error {
	return runInspector(repoSource{cli: cli})
}

// repoSource 将 Repository 适配为检视器数据源
type repoSource struct {
	cli *commandLine
}

func (s repoSource) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.cli.allUsers(ctx)
}

func (s repoSource) ListUpdates(ctx context.Context) ([]model.WeeklyUpdate, error) {
	return s.cli.repo.WeeklyUpdate.ListAll(ctx, nil)
}
