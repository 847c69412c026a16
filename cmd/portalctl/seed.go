package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/model"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/service"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/pkg/database"
)

// fixtures YAML 样例数据
//
//	users:
//	  - username: AIE23001
//	    password: password123
//	    role: student
//	updates:
//	  - username: AIE23001
//	    week: 1
//	    content: "读完第一章"
type fixtures struct {
	Users   []fixtureUser   `yaml:"users"`
	Updates []fixtureUpdate `yaml:"updates"`
}

type fixtureUser struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

type fixtureUpdate struct {
	Username string `yaml:"username"`
	Week     int    `yaml:"week"`
	Content  string `yaml:"content"`
}

func loadFixtures(path string) (*fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取样例文件失败: %w", err)
	}
	var fx fixtures
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("解析样例文件失败: %w", err)
	}
	return &fx, nil
}

// seed 导入样例数据：已存在的用户跳过，周进度按 (user, week) 覆盖写入
func (cli *commandLine) seed(path string) error {
	fx, err := loadFixtures(path)
	if err != nil {
		return err
	}
	ctx := context.Background()

	created, skipped := 0, 0
	for i, fu := range fx.Users {
		role := model.RoleStudent
		if fu.Role != "" {
			if role, err = model.ParseRole(fu.Role); err != nil {
				return fmt.Errorf("users[%d]: %w", i, err)
			}
		}
		uname := strings.TrimSpace(fu.Username)
		if uname == "" {
			return fmt.Errorf("users[%d]: 用户名不能为空", i)
		}
		if err := service.ValidatePassword(fu.Password); err != nil {
			return fmt.Errorf("users[%d]: %w", i, err)
		}
		hash, err := service.HashPassword(fu.Password)
		if err != nil {
			return err
		}

		err = cli.repo.User.Create(ctx, &model.User{Username: uname, PasswordHash: hash, Role: role})
		switch {
		case err == nil:
			created++
		case database.IsUniqueViolation(err):
			skipped++
		default:
			return fmt.Errorf("users[%d]: %w", i, err)
		}
	}

	written := 0
	for i, fu := range fx.Updates {
		if !model.ValidWeek(fu.Week) {
			return fmt.Errorf("updates[%d]: %w", i, service.ErrWeekOutOfRange)
		}
		content := strings.TrimSpace(fu.Content)
		if content == "" {
			return fmt.Errorf("updates[%d]: %w", i, service.ErrEmptyContent)
		}
		user, err := cli.findUser(ctx, fu.Username)
		if err != nil {
			return fmt.Errorf("updates[%d]: %w", i, err)
		}
		err = cli.repo.WeeklyUpdate.Upsert(ctx, &model.WeeklyUpdate{
			UserID:         user.UserID,
			Week:           fu.Week,
			Content:        content,
			LastModifiedAt: time.Now(),
		})
		if err != nil {
			return fmt.Errorf("updates[%d]: %w", i, err)
		}
		written++
	}

	fmt.Fprintf(cli.out, "用户: 新建 %d，跳过 %d；周进度: 写入 %d\n", created, skipped, written)
	return nil
}
