package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/dto"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/model"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/repository"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/pkg/database"
	pkgerrors "github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/pkg/errors"
)

// ── 用户模块业务错误 ──

var (
	ErrUserSelfDelete = pkgerrors.New(pkgerrors.ErrValidation, "不能删除自己")
	ErrEmptyUsername  = pkgerrors.New(pkgerrors.ErrValidation, "用户名不能为空")
)

// UserService 用户管理业务接口（管理员）
type UserService interface {
	CreateUser(ctx context.Context, actor Actor, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	GetByID(ctx context.Context, actor Actor, id string) (*dto.UserResponse, error)
	List(ctx context.Context, actor Actor, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	Update(ctx context.Context, actor Actor, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, actor Actor, id string) error
	ResetPassword(ctx context.Context, actor Actor, id string, req *dto.ResetPasswordRequest) (*dto.ResetPasswordResponse, error)
	ParseImportFile(reader io.Reader) ([]ImportUserRow, error)
	ImportStudents(ctx context.Context, actor Actor, rows []ImportUserRow) (*dto.ImportUserResponse, error)
}

// ImportUserRow Excel 导入解析后的单行数据
type ImportUserRow struct {
	Row      int
	Username string
	Password string
}

type userService struct {
	repo   *repository.Repository
	audit  AuditService
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, audit AuditService, logger *zap.Logger) UserService {
	return &userService{repo: repo, audit: audit, logger: logger}
}

// ────────────────────── CreateUser ──────────────────────

// CreateUser 管理员添加用户，不受学生用户名格式限制
func (s *userService) CreateUser(ctx context.Context, actor Actor, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, ErrEmptyUsername
	}
	if err := ValidatePassword(req.Password); err != nil {
		return nil, err
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.ErrValidation, err.Error())
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrUsernameExists
		}
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	return toUserResponse(user), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *userService) GetByID(ctx context.Context, actor Actor, id string) (*dto.UserResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context, actor Actor, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, 0, err
	}

	filter := repository.UserFilter{Keyword: strings.TrimSpace(req.Keyword)}
	if req.Role != "" {
		role, err := model.ParseRole(req.Role)
		if err != nil {
			return nil, 0, pkgerrors.New(pkgerrors.ErrValidation, err.Error())
		}
		filter.Role = &role
	}

	users, total, err := s.repo.User.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		list = append(list, *toUserResponse(&users[i]))
	}
	return list, total, nil
}

// ────────────────────── Update ──────────────────────

// Update 重命名 / 修改密码；角色不可修改
func (s *userService) Update(ctx context.Context, actor Actor, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			return nil, ErrEmptyUsername
		}
		user.Username = username
	}
	if req.Password != nil {
		if err := ValidatePassword(*req.Password); err != nil {
			return nil, err
		}
		hash, err := HashPassword(*req.Password)
		if err != nil {
			s.logger.Error("密码哈希失败", zap.Error(err))
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.repo.User.Update(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrUsernameExists
		}
		s.logger.Error("更新用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toUserResponse(user), nil
}

// ────────────────────── Delete ──────────────────────

// Delete 删除用户：同一事务内先删除其周进度，再删除用户
// 消息与隐藏记录由外键级联删除
func (s *userService) Delete(ctx context.Context, actor Actor, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if id == actor.UserID {
		return ErrUserSelfDelete
	}

	user, err := s.getUser(ctx, id)
	if err != nil {
		return err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	deleted, err := txRepo.WeeklyUpdate.DeleteByUser(ctx, id)
	if err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("删除用户周进度失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := txRepo.User.Delete(ctx, id); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("删除用户失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return err
		}
	}

	s.audit.Record(ctx, actor, model.AuditDeleteUser, map[string]interface{}{
		"user_id":         id,
		"username":        user.Username,
		"updates_deleted": deleted,
	})
	return nil
}

// ────────────────────── ResetPassword ──────────────────────

// ResetPassword 指定新密码；未指定时生成 8 位临时密码并返回
func (s *userService) ResetPassword(ctx context.Context, actor Actor, id string, req *dto.ResetPasswordRequest) (*dto.ResetPasswordResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := &dto.ResetPasswordResponse{}
	password := req.Password
	if password == "" {
		password, err = generateTempPassword(minPasswordLength)
		if err != nil {
			s.logger.Error("生成临时密码失败", zap.Error(err))
			return nil, err
		}
		resp.TempPassword = password
	} else if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}
	user.PasswordHash = hash

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("重置密码失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return resp, nil
}

// ────────────────────── ParseImportFile ──────────────────────

const maxImportRows = 1000

var (
	ErrImportNoData      = pkgerrors.New(pkgerrors.ErrValidation, "Excel文件无数据行（第一行为表头）")
	ErrImportTooManyRows = pkgerrors.New(pkgerrors.ErrValidation, fmt.Sprintf("数据行数超过上限 %d 行", maxImportRows))
	ErrImportBadHeader   = pkgerrors.New(pkgerrors.ErrValidation, "Excel表头缺少必要列（用户名/密码）")
	ErrImportBadFile     = pkgerrors.New(pkgerrors.ErrValidation, "无法解析Excel文件")
)

// ParseImportFile 解析导入 Excel 文件（表头：用户名/username、密码/password）
func (s *userService) ParseImportFile(reader io.Reader) ([]ImportUserRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportBadFile, err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportBadFile, err)
	}

	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	colIndex := parseHeaderIndex(excelRows[0])
	if colIndex["username"] < 0 || colIndex["password"] < 0 {
		return nil, ErrImportBadHeader
	}

	var rows []ImportUserRow
	for i := 1; i < len(excelRows); i++ {
		row := excelRows[i]
		item := ImportUserRow{Row: i + 1}

		if idx := colIndex["username"]; idx < len(row) {
			item.Username = strings.TrimSpace(row[idx])
		}
		if idx := colIndex["password"]; idx < len(row) {
			item.Password = strings.TrimSpace(row[idx])
		}

		// 跳过全空行
		if item.Username == "" && item.Password == "" {
			continue
		}

		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}

	return rows, nil
}

// parseHeaderIndex 解析 Excel 表头，返回列名 -> 列索引映射
func parseHeaderIndex(header []string) map[string]int {
	idx := map[string]int{
		"username": -1,
		"password": -1,
	}
	for i, h := range header {
		lower := strings.ToLower(strings.TrimSpace(h))
		switch lower {
		case "用户名", "username":
			idx["username"] = i
		case "密码", "password":
			idx["password"] = i
		}
	}
	return idx
}

// ────────────────────── ImportStudents ──────────────────────

// ImportStudents 批量导入学生：逐行按学生规则校验，通过的行在同一事务中写入
func (s *userService) ImportStudents(ctx context.Context, actor Actor, rows []ImportUserRow) (*dto.ImportUserResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	resp := &dto.ImportUserResponse{Total: len(rows)}
	fail := func(row int, reason string) {
		resp.Failed++
		resp.Errors = append(resp.Errors, dto.ImportUserError{Row: row, Reason: reason})
	}

	// 第一阶段：数据预校验（不接触数据库写操作）
	var valid []model.User
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		if err := ValidateStudentUsername(row.Username); err != nil {
			fail(row.Row, err.Error())
			continue
		}
		if err := ValidatePassword(row.Password); err != nil {
			fail(row.Row, err.Error())
			continue
		}
		if seen[row.Username] {
			fail(row.Row, fmt.Sprintf("文件内用户名重复: %s", row.Username))
			continue
		}
		if _, err := s.repo.User.GetByUsername(ctx, row.Username); err == nil {
			fail(row.Row, fmt.Sprintf("用户名已存在: %s", row.Username))
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询用户失败", zap.Error(err))
			return nil, err
		}

		hash, err := HashPassword(row.Password)
		if err != nil {
			fail(row.Row, "密码哈希失败")
			continue
		}

		seen[row.Username] = true
		valid = append(valid, model.User{
			Username:     row.Username,
			PasswordHash: hash,
			Role:         model.RoleStudent,
		})
	}

	// 第二阶段：在事务中批量创建所有通过校验的用户
	if len(valid) > 0 {
		tx, err := s.repo.BeginTx(ctx)
		if err != nil {
			s.logger.Error("开启事务失败", zap.Error(err))
			return nil, err
		}
		defer func() {
			if r := recover(); r != nil {
				if tx != nil {
					tx.Rollback()
				}
				panic(r)
			}
		}()

		if err := s.repo.WithTx(tx).User.BatchCreate(ctx, valid); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			if database.IsUniqueViolation(err) {
				return nil, fmt.Errorf("%w，已回滚全部导入", ErrUsernameExists)
			}
			s.logger.Error("导入学生写入失败，事务回滚", zap.Error(err))
			return nil, fmt.Errorf("写入数据库失败，已回滚全部导入: %w", err)
		}

		if tx != nil {
			if err := tx.Commit().Error; err != nil {
				s.logger.Error("提交事务失败", zap.Error(err))
				return nil, err
			}
		}
		resp.Success = len(valid)
	}

	return resp, nil
}

// ── 内部辅助方法 ──

func (s *userService) getUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return user, nil
}
