package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/dto"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/model"
)

// ── 测试辅助 ──

func setupTestUserService() (UserService, *mockRepos) {
	repo, mocks := newMockRepository()
	logger := zap.NewNop()
	svc := NewUserService(repo, NewAuditService(repo, logger), logger)
	return svc, mocks
}

func strPtr(s string) *string { return &s }

// ── CreateUser 测试 ──

func TestUserService_CreateUser_Admin(t *testing.T) {
	svc, mocks := setupTestUserService()
	admin := mocks.addUser("admin", model.RoleAdmin)

	result, err := svc.CreateUser(context.Background(), admin, &dto.CreateUserRequest{
		Username: "teaching-assistant",
		Password: "password1",
		Role:     "admin",
	})
	if err != nil {
		t.Fatalf("CreateUser 应成功: %v", err)
	}
	if result.Role != "admin" {
		t.Errorf("期望 Role=admin，实际=%s", result.Role)
	}
}

func TestUserService_CreateUser_Duplicate(t *testing.T) {
	svc, mocks := setupTestUserService()
	admin := mocks.addUser("admin", model.RoleAdmin)

	_, err := svc.CreateUser(context.Background(), admin, &dto.CreateUserRequest{
		Username: "admin",
		Password: "password1",
		Role:     "admin",
	})
	if !errors.Is(err, ErrUsernameExists) {
		t.Errorf("期望 ErrUsernameExists，实际: %v", err)
	}
}

func TestUserService_CreateUser_StudentForbidden(t *testing.T) {
	svc, mocks := setupTestUserService()
	student := mocks.addUser("AIE23001", model.RoleStudent)

	_, err := svc.CreateUser(context.Background(), student, &dto.CreateUserRequest{
		Username: "x", Password: "password1", Role: "student",
	})
	if !errors.Is(err, ErrAdminOnly) {
		t.Errorf("期望 ErrAdminOnly，实际: %v", err)
	}
}

// ── GetByID / List 测试 ──

func TestUserService_GetByID_NotFound(t *testing.T) {
	svc, mocks := setupTestUserService()
	admin := mocks.addUser("admin", model.RoleAdmin)

	_, err := svc.GetByID(context.Background(), admin, "nonexistent")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}

func TestUserService_List_FilterByRole(t *testing.T) {
	svc, mocks := setupTestUserService()
	admin := mocks.addUser("admin", model.RoleAdmin)
	mocks.addUser("AIE23001", model.RoleStudent)
	mocks.addUser("AIE23002", model.RoleStudent)

	req := &dto.UserListRequest{Role: "student"}
	users, total, err := svc.List(context.Background(), admin, req)
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 2 || len(users) != 2 {
		t.Fatalf("期望 2 名学生，实际 total=%d len=%d", total, len(users))
	}
	if users[0].Username != "AIE23001" {
		t.Errorf("期望按用户名升序，首位=%s", users[0].Username)
	}
}

func TestUserService_List_Keyword(t *testing.T) {
	svc, mocks := setupTestUserService()
	admin := mocks.addUser("admin", model.RoleAdmin)
	mocks.addUser("AIE23001", model.RoleStudent)
	mocks.addUser("AIE230120", model.RoleStudent)

	users, total, err := svc.List(context.Background(), admin, &dto.UserListRequest{Keyword: "aie230120"})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 1 || users[0].Username != "AIE230120" {
		t.Errorf("关键字过滤结果不符: total=%d", total)
	}
}

// ── Update 测试 ──

func TestUserService_Update_RenameAndPassword(t *testing.T) {
	svc, mocks := setupTestUserService()
	admin := mocks.addUser("admin", model.RoleAdmin)
	student := mocks.addUser("AIE23001", model.RoleStudent)

	result, err := svc.Update(context.Background(), admin, student.UserID, &dto.UpdateUserRequest{
		Username: strPtr("AIE23011"),
		Password: strPtr("new-password"),
	})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if result.Username != "AIE23011" {
		t.Errorf("期望 Username=AIE23011，实际=%s", result.Username)
	}
	stored := mocks.users.users[student.UserID]
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("new-password")) != nil {
		t.Error("新密码应生效")
	}
}

func TestUserService_Update_RenameConflict(t *testing.T) {
	svc, mocks := setupTestUserService()
	admin := mocks.addUser("admin", model.RoleAdmin)
	student := mocks.addUser("AIE23001", model.RoleStudent)
	mocks.addUser("AIE23002", model.RoleStudent)

	_, err := svc.Update(context.Background(), admin, student.UserID, &dto.UpdateUserRequest{Username: strPtr("AIE23002")})
	if !errors.Is(err, ErrUsernameExists) {
		t.Errorf("期望 ErrUsernameExists，实际: %v", err)
	}
}

func TestUserService_Update_ShortPassword(t *testing.T) {
	svc, mocks := setupTestUserService()
	admin := mocks.addUser("admin", model.RoleAdmin)
	student := mocks.addUser("AIE23001", model.RoleStudent)

	_, err := svc.Update(context.Background(), admin, student.UserID, &dto.UpdateUserRequest{Password: strPtr("short")})
	if !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("期望 ErrPasswordTooShort，实际: %v", err)
	}
}

// ── Delete 测试 ──

func TestUserService_Delete_RemovesSubmissions(t *testing.T) {
	svc, mocks := setupTestUserService()
	admin := mocks.addUser("admin", model.RoleAdmin)
	student := mocks.addUser("AIE23001", model.RoleStudent)
	other := mocks.addUser("AIE23002", model.RoleStudent)

	ctx := context.Background()
	for _, w := range []int{1, 2, 3} {
		mocks.updates.Create(ctx, &model.WeeklyUpdate{UserID: student.UserID, Week: w, Content: "done"})
	}
	mocks.updates.Create(ctx, &model.WeeklyUpdate{UserID: other.UserID, Week: 1, Content: "done"})

	if err := svc.Delete(ctx, admin, student.UserID); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}

	if _, ok := mocks.users.users[student.UserID]; ok {
		t.Error("用户应已删除")
	}
	if left, _ := mocks.updates.ListByUser(ctx, student.UserID); len(left) != 0 {
		t.Errorf("删除用户后不应残留周进度，实际 %d 条", len(left))
	}
	if left, _ := mocks.updates.ListByUser(ctx, other.UserID); len(left) != 1 {
		t.Error("其他用户的周进度不应受影响")
	}
	if actions := mocks.auditLog.actions(); len(actions) != 1 || actions[0] != model.AuditDeleteUser {
		t.Errorf("期望写入 delete_user 审计，实际: %v", actions)
	}
}

func TestUserService_Delete_Self(t *testing.T) {
	svc, mocks := setupTestUserService()
	admin := mocks.addUser("admin", model.RoleAdmin)

	if err := svc.Delete(context.Background(), admin, admin.UserID); !errors.Is(err, ErrUserSelfDelete) {
		t.Errorf("期望 ErrUserSelfDelete，实际: %v", err)
	}
}

func TestUserService_Delete_NotFound(t *testing.T) {
	svc, mocks := setupTestUserService()
	admin := mocks.addUser("admin", model.RoleAdmin)

	if err := svc.Delete(context.Background(), admin, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}

// ── ResetPassword 测试 ──

func TestUserService_ResetPassword_Temp(t *testing.T) {
	svc, mocks := setupTestUserService()
	admin := mocks.addUser("admin", model.RoleAdmin)
	student := mocks.addUser("AIE23001", model.RoleStudent)

	result, err := svc.ResetPassword(context.Background(), admin, student.UserID, &dto.ResetPasswordRequest{})
	if err != nil {
		t.Fatalf("ResetPassword 应成功: %v", err)
	}
	if len(result.TempPassword) != 8 {
		t.Fatalf("期望返回 8 位临时密码，实际=%q", result.TempPassword)
	}
	stored := mocks.users.users[student.UserID]
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(result.TempPassword)) != nil {
		t.Error("临时密码应生效")
	}
}

func TestUserService_ResetPassword_Explicit(t *testing.T) {
	svc, mocks := setupTestUserService()
	admin := mocks.addUser("admin", model.RoleAdmin)
	student := mocks.addUser("AIE23001", model.RoleStudent)

	result, err := svc.ResetPassword(context.Background(), admin, student.UserID, &dto.ResetPasswordRequest{Password: "chosen-pass"})
	if err != nil {
		t.Fatalf("ResetPassword 应成功: %v", err)
	}
	if result.TempPassword != "" {
		t.Error("指定密码时不应返回临时密码")
	}
}

// ── 导入测试 ──

func buildImportFile(t *testing.T, rows [][]string) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		for j, v := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+1)
			f.SetCellValue("Sheet1", cell, v)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("生成测试 Excel 失败: %v", err)
	}
	return buf
}

func TestUserService_ParseImportFile(t *testing.T) {
	svc, _ := setupTestUserService()
	buf := buildImportFile(t, [][]string{
		{"用户名", "密码"},
		{"AIE23001", "password1"},
		{"", ""},
		{" AIE23002 ", "password2"},
	})

	rows, err := svc.ParseImportFile(buf)
	if err != nil {
		t.Fatalf("ParseImportFile 应成功: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("期望 2 行（跳过空行），实际=%d", len(rows))
	}
	if rows[1].Username != "AIE23002" || rows[1].Row != 4 {
		t.Errorf("第二行解析不符: %+v", rows[1])
	}
}

func TestUserService_ParseImportFile_BadHeader(t *testing.T) {
	svc, _ := setupTestUserService()
	buf := buildImportFile(t, [][]string{{"name", "pwd"}, {"a", "b"}})

	if _, err := svc.ParseImportFile(buf); !errors.Is(err, ErrImportBadHeader) {
		t.Errorf("期望 ErrImportBadHeader，实际: %v", err)
	}
}

func TestUserService_ParseImportFile_NotExcel(t *testing.T) {
	svc, _ := setupTestUserService()

	if _, err := svc.ParseImportFile(bytes.NewBufferString("not an excel file")); !errors.Is(err, ErrImportBadFile) {
		t.Errorf("期望 ErrImportBadFile，实际: %v", err)
	}
}

func TestUserService_ImportStudents(t *testing.T) {
	svc, mocks := setupTestUserService()
	admin := mocks.addUser("admin", model.RoleAdmin)
	mocks.addUser("AIE23003", model.RoleStudent)

	result, err := svc.ImportStudents(context.Background(), admin, []ImportUserRow{
		{Row: 2, Username: "AIE23001", Password: "password1"},
		{Row: 3, Username: "AIE23001", Password: "password1"}, // 文件内重复
		{Row: 4, Username: "AIE230999", Password: "password1"}, // 超出编号范围
		{Row: 5, Username: "AIE23002", Password: "short"},
		{Row: 6, Username: "AIE23003", Password: "password1"}, // 已存在
		{Row: 7, Username: "AIE230157", Password: "password1"},
	})
	if err != nil {
		t.Fatalf("ImportStudents 应成功: %v", err)
	}
	if result.Total != 6 || result.Success != 2 || result.Failed != 4 {
		t.Errorf("期望 total=6 success=2 failed=4，实际 %+v", result)
	}
	if u, err := mocks.users.GetByUsername(context.Background(), "AIE230157"); err != nil || u.Role != model.RoleStudent {
		t.Error("导入的用户应为学生")
	}
}
