package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/model"
)

// ── 测试辅助 ──

func setupTestEditPermissionService() (EditPermissionService, *mockRepos) {
	repo, mocks := newMockRepository()
	logger := zap.NewNop()
	svc := NewEditPermissionService(repo, NewAuditService(repo, logger), logger)
	return svc, mocks
}

// ── Get 测试 ──

func TestEditPermissionService_DefaultOff(t *testing.T) {
	svc, _ := setupTestEditPermissionService()

	allowed, err := svc.Allowed(context.Background())
	if err != nil {
		t.Fatalf("Allowed 应成功: %v", err)
	}
	if allowed {
		t.Error("编辑权限默认应关闭")
	}
}

func TestEditPermissionService_Get_NotFound(t *testing.T) {
	svc, mocks := setupTestEditPermissionService()
	mocks.config.cfg = nil

	_, err := svc.Get(context.Background())
	if !errors.Is(err, ErrSystemConfigNotFound) {
		t.Errorf("期望 ErrSystemConfigNotFound，实际: %v", err)
	}
}

// ── Set 测试 ──

func TestEditPermissionService_Set(t *testing.T) {
	svc, mocks := setupTestEditPermissionService()
	admin := mocks.addUser("admin", model.RoleAdmin)
	ctx := context.Background()

	result, err := svc.Set(ctx, admin, true)
	if err != nil {
		t.Fatalf("Set 应成功: %v", err)
	}
	if !result.AllowEdits {
		t.Error("期望 AllowEdits=true")
	}
	if result.UpdatedBy == nil || *result.UpdatedBy != admin.UserID {
		t.Error("UpdatedBy 应为操作的管理员")
	}

	allowed, _ := svc.Allowed(ctx)
	if !allowed {
		t.Error("设置后读取应为 true")
	}

	if len(mocks.auditLog.logs) != 1 {
		t.Fatalf("期望 1 条审计记录，实际 %d", len(mocks.auditLog.logs))
	}
	entry := mocks.auditLog.logs[0]
	if entry.Action != model.AuditToggleEditPermission || entry.ActorID != admin.UserID {
		t.Errorf("审计记录不符: %+v", entry)
	}
	var detail map[string]bool
	if err := json.Unmarshal(entry.Detail, &detail); err != nil {
		t.Fatalf("审计详情应为 JSON: %v", err)
	}
	if detail["from"] || !detail["to"] {
		t.Errorf("审计详情不符: %v", detail)
	}
}

func TestEditPermissionService_Set_StudentForbidden(t *testing.T) {
	svc, mocks := setupTestEditPermissionService()
	student := mocks.addUser("AIE23001", model.RoleStudent)

	if _, err := svc.Set(context.Background(), student, true); !errors.Is(err, ErrAdminOnly) {
		t.Errorf("期望 ErrAdminOnly，实际: %v", err)
	}
	if mocks.config.cfg.AllowEdits {
		t.Error("学生不应能修改编辑权限")
	}
}
